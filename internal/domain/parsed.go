package domain

// Parsed records are the upstream producer contract: importers emit
// them, the ingest service turns them into store rows. They carry no
// IDs; identity is assigned on upsert.

// ParsedHost is one host as reported by a scanner
type ParsedHost struct {
	IPAddress    string       `json:"ip"`
	MACAddress   string       `json:"mac,omitempty"`
	Hostname     string       `json:"hostname,omitempty"`
	FQDN         string       `json:"fqdn,omitempty"`
	Vendor       string       `json:"vendor,omitempty"`
	OSName       string       `json:"os_name,omitempty"`
	OSVersion    string       `json:"os_version,omitempty"`
	OSFamily     string       `json:"os_family,omitempty"`
	OSConfidence float64      `json:"os_confidence,omitempty"`
	DeviceType   DeviceType   `json:"device_type,omitempty"`
	Ports        []ParsedPort `json:"ports,omitempty"`
}

// ParsedPort is one open port as reported by a scanner
type ParsedPort struct {
	Number   int    `json:"port"`
	Protocol string `json:"protocol"`
	State    string `json:"state"`
	Service  string `json:"service,omitempty"`
	Banner   string `json:"banner,omitempty"`
}

// ParsedConnection is one socket as reported by a connection listing
type ParsedConnection struct {
	LocalIP     string `json:"local_ip"`
	LocalPort   int    `json:"local_port"`
	RemoteIP    string `json:"remote_ip"`
	RemotePort  int    `json:"remote_port"`
	Protocol    string `json:"protocol"`
	State       string `json:"state,omitempty"`
	PID         int    `json:"pid,omitempty"`
	ProcessName string `json:"process_name,omitempty"`
}

// ParsedArpEntry is one row as reported by an ARP table listing
type ParsedArpEntry struct {
	IPAddress  string `json:"ip"`
	MACAddress string `json:"mac"`
	Interface  string `json:"interface,omitempty"`
	EntryType  string `json:"entry_type,omitempty"`
	Vendor     string `json:"vendor,omitempty"`
}
