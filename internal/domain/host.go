package domain

import (
	"sort"
	"strings"
	"time"
)

// DeviceType classifies what kind of equipment a host is
type DeviceType string

const (
	DeviceTypeRouter      DeviceType = "router"
	DeviceTypeSwitch      DeviceType = "switch"
	DeviceTypeFirewall    DeviceType = "firewall"
	DeviceTypeServer      DeviceType = "server"
	DeviceTypeWorkstation DeviceType = "workstation"
	DeviceTypePrinter     DeviceType = "printer"
	DeviceTypeAccessPoint DeviceType = "access_point"
	DeviceTypeUnknown     DeviceType = "unknown"
)

// Host is the canonical identity record for one observed network host.
// IP address is the natural key among active hosts: after a correlation
// pass at most one active Host exists per IP.
type Host struct {
	ID           string     `json:"id"`
	IPAddress    string     `json:"ip_address"`
	MACAddress   string     `json:"mac_address,omitempty"`
	Hostname     string     `json:"hostname,omitempty"`
	FQDN         string     `json:"fqdn,omitempty"`
	NetBIOSName  string     `json:"netbios_name,omitempty"`
	Vendor       string     `json:"vendor,omitempty"`
	OSName       string     `json:"os_name,omitempty"`
	OSVersion    string     `json:"os_version,omitempty"`
	OSFamily     string     `json:"os_family,omitempty"`
	OSConfidence float64    `json:"os_confidence,omitempty"`
	DeviceType   DeviceType `json:"device_type,omitempty"`
	VLANID       int        `json:"vlan_id,omitempty"`
	Tags         []string   `json:"tags,omitempty"`
	SourceTypes  []string   `json:"source_types,omitempty"`
	IsActive     bool       `json:"is_active"`
	DeviceID     string     `json:"device_id,omitempty"`
	FirstSeen    time.Time  `json:"first_seen"`
	LastSeen     time.Time  `json:"last_seen"`
}

// NewHost creates an active host observed now
func NewHost(id, ip string) *Host {
	now := time.Now()
	return &Host{
		ID:        id,
		IPAddress: ip,
		IsActive:  true,
		FirstSeen: now,
		LastSeen:  now,
	}
}

// NormalizedMAC returns the MAC lower-cased for grouping, or "" if unset
func (h *Host) NormalizedMAC() string {
	return strings.ToLower(strings.TrimSpace(h.MACAddress))
}

// IsRouter reports whether the host is router-class equipment
func (h *Host) IsRouter() bool {
	return h.DeviceType == DeviceTypeRouter || h.DeviceType == DeviceTypeFirewall
}

// HasTag reports whether the host carries the given tag string
func (h *Host) HasTag(tag string) bool {
	for _, t := range h.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// AddTag appends a tag if not already present
func (h *Host) AddTag(tag string) {
	if tag == "" || h.HasTag(tag) {
		return
	}
	h.Tags = append(h.Tags, tag)
}

// AddSourceType records a data source that observed this host
func (h *Host) AddSourceType(source string) {
	if source == "" {
		return
	}
	for _, s := range h.SourceTypes {
		if s == source {
			return
		}
	}
	h.SourceTypes = append(h.SourceTypes, source)
}

// UnionStrings merges two string sets preserving uniqueness, sorted
func UnionStrings(a, b []string) []string {
	seen := make(map[string]struct{}, len(a)+len(b))
	for _, s := range a {
		seen[s] = struct{}{}
	}
	for _, s := range b {
		seen[s] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for s := range seen {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
