package domain

import "time"

// Port is an observed open port on a host
type Port struct {
	ID       string `json:"id"`
	HostID   string `json:"host_id"`
	Number   int    `json:"number"`
	Protocol string `json:"protocol"`
	State    string `json:"state"`
	Service  string `json:"service,omitempty"`
	Banner   string `json:"banner,omitempty"`
}

// Connection is an observed socket between two endpoints. LocalIP ties
// the record to a host; RemoteIP may be any peer including public ones.
type Connection struct {
	ID          string `json:"id"`
	HostID      string `json:"host_id,omitempty"`
	LocalIP     string `json:"local_ip"`
	LocalPort   int    `json:"local_port"`
	RemoteIP    string `json:"remote_ip"`
	RemotePort  int    `json:"remote_port"`
	Protocol    string `json:"protocol"`
	State       string `json:"state,omitempty"`
	PID         int    `json:"pid,omitempty"`
	ProcessName string `json:"process_name,omitempty"`
}

// ArpEntry is one row from an ARP/neighbor table
type ArpEntry struct {
	ID         string    `json:"id"`
	IPAddress  string    `json:"ip_address"`
	MACAddress string    `json:"mac_address"`
	Interface  string    `json:"interface,omitempty"`
	EntryType  string    `json:"entry_type,omitempty"`
	Vendor     string    `json:"vendor,omitempty"`
	Source     string    `json:"source,omitempty"`
	SeenAt     time.Time `json:"seen_at"`
}

// RouteHop is one row from a routing table
type RouteHop struct {
	ID          string `json:"id"`
	Destination string `json:"destination"`
	Gateway     string `json:"gateway"`
	Interface   string `json:"interface,omitempty"`
	Metric      int    `json:"metric,omitempty"`
}

// VLANConfig describes one configured 802.1Q VLAN
type VLANConfig struct {
	VLANID      int      `json:"vlan_id" yaml:"id"`
	Name        string   `json:"name" yaml:"name"`
	SubnetCIDRs []string `json:"subnet_cidrs" yaml:"subnet_cidrs"`
	Color       string   `json:"color,omitempty" yaml:"color,omitempty"`
}
