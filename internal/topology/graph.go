// Package topology synthesizes a renderable VLAN -> Subnet -> Host
// graph from the canonical host set, inferring gateways per subnet and
// classifying observed connections into edges. All graph values are
// ephemeral: they live for one synthesis pass and are never persisted.
package topology

import "netograph/internal/domain"

// NodeKind identifies what a graph node represents
type NodeKind string

const (
	NodeVLAN      NodeKind = "vlan"
	NodeSubnet    NodeKind = "subnet"
	NodeHost      NodeKind = "host"
	NodeGateway   NodeKind = "gateway"
	NodeInternet  NodeKind = "internet"
	NodePublicIPs NodeKind = "public_ips"
)

// EdgeKind classifies how a connection crosses the topology
type EdgeKind string

const (
	EdgeSameSubnet  EdgeKind = "same_subnet"
	EdgeCrossSubnet EdgeKind = "cross_subnet"
	EdgeCrossVLAN   EdgeKind = "cross_vlan"
	EdgeToGateway   EdgeKind = "to_gateway"
	EdgeInternet    EdgeKind = "internet"
)

// Node is one graph node. IDs are derived deterministically from entity
// identity (vlan_<id>, subnet_<cidr>, host_<id>, shared_gw_<device_id>,
// gw_<subnet_node_id>) so re-synthesis is idempotent.
type Node struct {
	ID          string            `json:"id"`
	Parent      string            `json:"parent,omitempty"`
	Kind        NodeKind          `json:"kind"`
	Label       string            `json:"label"`
	IP          string            `json:"ip,omitempty"`
	MAC         string            `json:"mac,omitempty"`
	DeviceType  domain.DeviceType `json:"device_type,omitempty"`
	VLANID      int               `json:"vlan_id,omitempty"`
	Subnet      string            `json:"subnet,omitempty"`
	IsGateway   bool              `json:"is_gateway,omitempty"`
	IsSynthetic bool              `json:"is_synthetic,omitempty"`
	HostCount   int               `json:"host_count,omitempty"`
	Shape       string            `json:"shape,omitempty"`
	Color       string            `json:"color,omitempty"`
	Size        int               `json:"size,omitempty"`
}

// Edge is one graph edge; ID is "{source}-{target}". At most one edge
// exists per unordered endpoint pair.
type Edge struct {
	ID            string   `json:"id"`
	Source        string   `json:"source"`
	Target        string   `json:"target"`
	Kind          EdgeKind `json:"kind"`
	PublicIPCount int      `json:"public_ip_count,omitempty"`
	PublicIPs     []string `json:"public_ips,omitempty"`
}

// Stats are the running counters accumulated during synthesis
type Stats struct {
	TotalNodes          int `json:"total_nodes"`
	TotalEdges          int `json:"total_edges"`
	CrossVLANConns      int `json:"cross_vlan_connections"`
	CrossSubnetConns    int `json:"cross_subnet_connections"`
	InternetConnections int `json:"internet_connections"`
	PublicIPHosts       int `json:"public_ip_hosts"`
	SharedGateways      int `json:"shared_gateways"`
}

// Graph is the synthesized topology before wire formatting
type Graph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
	Stats Stats  `json:"stats"`
}

// Snapshot is everything synthesis reads; the service fetches it from
// the store in a handful of batched queries.
type Snapshot struct {
	Hosts       []domain.Host
	VLANs       []domain.VLANConfig
	Identities  []domain.DeviceIdentity
	PortCounts  map[string]int
	Connections []domain.Connection
}
