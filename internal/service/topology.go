package service

import (
	"context"
	"fmt"

	"netograph/internal/domain"
	"netograph/internal/repository"
	"netograph/internal/topology"
)

// TopologyService assembles graph responses from store snapshots
type TopologyService struct {
	store    repository.Store
	eventBus *EventBus
}

// NewTopologyService creates the topology service
func NewTopologyService(store repository.Store, eventBus *EventBus) *TopologyService {
	return &TopologyService{store: store, eventBus: eventBus}
}

// BuildGraph synthesizes a topology graph and formats it per the
// requested wire format
func (s *TopologyService) BuildGraph(ctx context.Context, opts topology.Options) (any, error) {
	snapshot, err := s.snapshot(ctx, opts)
	if err != nil {
		return nil, err
	}

	graph, err := topology.Build(snapshot, opts)
	if err != nil {
		return nil, fmt.Errorf("build topology: %w", err)
	}

	s.eventBus.Publish(Event{Type: EventTopologyBuilt, Payload: graph.Stats})

	switch opts.Format {
	case topology.FormatLegacy:
		return topology.Legacy(graph), nil
	default:
		return topology.Cytoscape(graph), nil
	}
}

// snapshot pulls everything synthesis reads in a handful of batched
// queries; per-host open-port counts come from one grouped query.
func (s *TopologyService) snapshot(ctx context.Context, opts topology.Options) (topology.Snapshot, error) {
	var snap topology.Snapshot

	hosts, err := s.store.ListHosts(ctx, repository.HostFilter{IncludeInactive: opts.IncludeInactive})
	if err != nil {
		return snap, fmt.Errorf("list hosts: %w", err)
	}
	vlans, err := s.store.ListVLANs(ctx)
	if err != nil {
		return snap, fmt.Errorf("list vlans: %w", err)
	}
	identities, err := s.store.ListDeviceIdentities(ctx, true)
	if err != nil {
		return snap, fmt.Errorf("list device identities: %w", err)
	}
	portCounts, err := s.store.OpenPortCounts(ctx)
	if err != nil {
		return snap, fmt.Errorf("open port counts: %w", err)
	}
	conns, err := s.store.ListConnections(ctx)
	if err != nil {
		return snap, fmt.Errorf("list connections: %w", err)
	}

	snap.Hosts = hosts
	snap.VLANs = vlans
	snap.Identities = identities
	snap.PortCounts = portCounts
	snap.Connections = conns
	return snap, nil
}

// ListIdentities returns device identities for the API surface
func (s *TopologyService) ListIdentities(ctx context.Context, activeOnly bool) ([]domain.DeviceIdentity, error) {
	return s.store.ListDeviceIdentities(ctx, activeOnly)
}

// ListHosts returns hosts for the API surface
func (s *TopologyService) ListHosts(ctx context.Context, filter repository.HostFilter) ([]domain.Host, error) {
	return s.store.ListHosts(ctx, filter)
}

// DeactivateHost soft-deletes a host; the row survives for audit and
// merge history
func (s *TopologyService) DeactivateHost(ctx context.Context, id string) (*domain.Host, error) {
	host, err := s.store.GetHost(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get host: %w", err)
	}
	if host == nil {
		return nil, nil
	}
	if err := s.store.DeactivateHost(ctx, id); err != nil {
		return nil, fmt.Errorf("deactivate host: %w", err)
	}
	host.IsActive = false
	return host, nil
}

// GetHost returns one host with its conflicts
func (s *TopologyService) GetHost(ctx context.Context, id string) (*domain.Host, []domain.Conflict, error) {
	host, err := s.store.GetHost(ctx, id)
	if err != nil {
		return nil, nil, fmt.Errorf("get host: %w", err)
	}
	if host == nil {
		return nil, nil, nil
	}
	conflicts, err := s.store.ListHostConflicts(ctx, id, false)
	if err != nil {
		return nil, nil, fmt.Errorf("list host conflicts: %w", err)
	}
	return host, conflicts, nil
}
