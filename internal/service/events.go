package service

// EventType labels what happened
type EventType string

const (
	EventHostIngested         EventType = "host_ingested"
	EventHostsImported        EventType = "hosts_imported"
	EventCorrelationCompleted EventType = "correlation_completed"
	EventConflictDetected     EventType = "conflict_detected"
	EventConflictResolved     EventType = "conflict_resolved"
	EventTopologyBuilt        EventType = "topology_built"
)

// Event is one system occurrence pushed to subscribers
type Event struct {
	Type    EventType   `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

// EventBus fans events out to subscriber channels. Publish never
// blocks; a subscriber that cannot keep up misses events.
type EventBus struct {
	subscribers []chan<- Event
}

// NewEventBus creates an empty bus
func NewEventBus() *EventBus {
	return &EventBus{subscribers: make([]chan<- Event, 0)}
}

// Subscribe adds a subscriber channel
func (eb *EventBus) Subscribe(ch chan<- Event) {
	eb.subscribers = append(eb.subscribers, ch)
}

// Publish sends an event to all subscribers
func (eb *EventBus) Publish(event Event) {
	for _, ch := range eb.subscribers {
		select {
		case ch <- event:
		default:
			// Subscriber is slow, skip
		}
	}
}
