package domain

import "time"

// DeviceIdentity groups host records that share a MAC address across two
// or more distinct IPs: one physical multi-homed device (typically a
// router with an interface per subnet). Hosts reference an identity by
// DeviceID; the identity never owns them.
type DeviceIdentity struct {
	ID           string     `json:"id"`
	Name         string     `json:"name,omitempty"`
	MACAddresses []string   `json:"mac_addresses"`
	IPAddresses  []string   `json:"ip_addresses"`
	DeviceType   DeviceType `json:"device_type,omitempty"`
	Source       string     `json:"source,omitempty"`
	IsActive     bool       `json:"is_active"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// NewDeviceIdentity creates an active identity for one MAC
func NewDeviceIdentity(id, mac string) *DeviceIdentity {
	now := time.Now()
	return &DeviceIdentity{
		ID:           id,
		MACAddresses: []string{mac},
		IsActive:     true,
		Source:       "correlation",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// HasIP reports whether the identity already spans the given IP
func (d *DeviceIdentity) HasIP(ip string) bool {
	for _, addr := range d.IPAddresses {
		if addr == ip {
			return true
		}
	}
	return false
}

// AddIP records an additional IP, keeping the set sorted
func (d *DeviceIdentity) AddIP(ip string) {
	if ip == "" || d.HasIP(ip) {
		return
	}
	d.IPAddresses = UnionStrings(d.IPAddresses, []string{ip})
}
