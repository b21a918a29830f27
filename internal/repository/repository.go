package repository

import (
	"context"

	"netograph/internal/domain"
)

// HostFilter narrows host listings
type HostFilter struct {
	VLANID          int // 0 = any
	IncludeInactive bool
}

// Store defines data access for the identity store. The sqlite package
// provides the implementation; engine packages declare the narrow
// subsets they actually consume.
type Store interface {
	// Hosts
	ListHosts(ctx context.Context, filter HostFilter) ([]domain.Host, error)
	GetHost(ctx context.Context, id string) (*domain.Host, error)
	GetHostByIP(ctx context.Context, ip string) (*domain.Host, error)
	CreateHost(ctx context.Context, host *domain.Host) error
	UpdateHost(ctx context.Context, host *domain.Host) error
	DeactivateHost(ctx context.Context, id string) error

	// Ports and connections
	UpsertPort(ctx context.Context, port *domain.Port) error
	ReassignPorts(ctx context.Context, fromHostID, toHostID string) error
	OpenPortCounts(ctx context.Context) (map[string]int, error)
	InsertConnection(ctx context.Context, conn *domain.Connection) error
	ListConnections(ctx context.Context) ([]domain.Connection, error)
	ReassignConnections(ctx context.Context, fromHostID, toHostID string) error

	// ARP and routes
	InsertArpEntry(ctx context.Context, entry *domain.ArpEntry) error
	ListArpEntries(ctx context.Context) ([]domain.ArpEntry, error)
	ListRouteHops(ctx context.Context, destination string) ([]domain.RouteHop, error)

	// Conflicts
	CreateConflict(ctx context.Context, conflict *domain.Conflict) error
	SaveConflict(ctx context.Context, conflict *domain.Conflict) error
	GetConflict(ctx context.Context, id string) (*domain.Conflict, error)
	ListConflicts(ctx context.Context, unresolvedOnly bool) ([]domain.Conflict, error)
	ListHostConflicts(ctx context.Context, hostID string, unresolvedOnly bool) ([]domain.Conflict, error)

	// Device identities
	CreateDeviceIdentity(ctx context.Context, identity *domain.DeviceIdentity) error
	UpdateDeviceIdentity(ctx context.Context, identity *domain.DeviceIdentity) error
	GetDeviceIdentityByMAC(ctx context.Context, mac string) (*domain.DeviceIdentity, error)
	ListDeviceIdentities(ctx context.Context, activeOnly bool) ([]domain.DeviceIdentity, error)

	// VLAN configuration
	UpsertVLAN(ctx context.Context, vlan *domain.VLANConfig) error
	ListVLANs(ctx context.Context) ([]domain.VLANConfig, error)
}

// TxRunner runs a function against a transaction-scoped Store. The
// correlation pass uses this so a failure in any phase persists nothing.
type TxRunner interface {
	InTx(ctx context.Context, fn func(Store) error) error
}
