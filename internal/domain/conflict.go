package domain

import "time"

// ConflictType names the field-level disagreement a Conflict records
type ConflictType string

const (
	ConflictMACMismatch      ConflictType = "mac_mismatch"
	ConflictHostnameMismatch ConflictType = "hostname_mismatch"
)

// ConflictValue is one observed value for the disputed field
type ConflictValue struct {
	Value      string    `json:"value"`
	Source     string    `json:"source"`
	ObservedAt time.Time `json:"observed_at"`
}

// Conflict is a detected disagreement between data sources about one
// attribute of a host. Resolved transitions false -> true only.
type Conflict struct {
	ID         string          `json:"id"`
	HostID     string          `json:"host_id"`
	Type       ConflictType    `json:"conflict_type"`
	Field      string          `json:"field"`
	Values     []ConflictValue `json:"values"`
	Resolved   bool            `json:"resolved"`
	Resolution string          `json:"resolution,omitempty"`
	ResolvedBy string          `json:"resolved_by,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}

// NewConflict creates an unresolved conflict for a host field
func NewConflict(id, hostID string, conflictType ConflictType, field string, values []ConflictValue) *Conflict {
	return &Conflict{
		ID:        id,
		HostID:    hostID,
		Type:      conflictType,
		Field:     field,
		Values:    values,
		CreatedAt: time.Now(),
	}
}

// Resolve marks the conflict resolved. Resolving an already-resolved
// conflict is a no-op so the transition stays one-way.
func (c *Conflict) Resolve(resolution, resolvedBy string) {
	if c.Resolved {
		return
	}
	c.Resolved = true
	c.Resolution = resolution
	c.ResolvedBy = resolvedBy
}
