package codec

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"netograph/internal/domain"
)

// YAMLCodec handles the YAML inventory format: a hosts map keyed by
// name, each entry carrying addresses and equipment metadata
type YAMLCodec struct{}

// NewYAMLCodec creates a YAML codec
func NewYAMLCodec() *YAMLCodec {
	return &YAMLCodec{}
}

// Format returns the codec format identifier
func (c *YAMLCodec) Format() string {
	return "yaml"
}

type yamlInventory struct {
	Version int                 `yaml:"version,omitempty"`
	Hosts   map[string]yamlHost `yaml:"hosts"`
	VLANs   []domain.VLANConfig `yaml:"vlans,omitempty"`
}

type yamlHost struct {
	IP         string `yaml:"ip"`
	MAC        string `yaml:"mac,omitempty"`
	FQDN       string `yaml:"fqdn,omitempty"`
	Vendor     string `yaml:"vendor,omitempty"`
	DeviceType string `yaml:"device_type,omitempty"`
	OS         string `yaml:"os,omitempty"`
}

// Parse reads a YAML inventory into parsed host records. The map key
// becomes the hostname.
func (c *YAMLCodec) Parse(r io.Reader) ([]domain.ParsedHost, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read yaml inventory: %w", err)
	}

	var inv yamlInventory
	if err := yaml.Unmarshal(data, &inv); err != nil {
		return nil, fmt.Errorf("parse yaml inventory: %w", err)
	}

	hosts := make([]domain.ParsedHost, 0, len(inv.Hosts))
	for name, entry := range inv.Hosts {
		if entry.IP == "" {
			return nil, fmt.Errorf("host %q has no ip", name)
		}
		hosts = append(hosts, domain.ParsedHost{
			IPAddress:  entry.IP,
			MACAddress: entry.MAC,
			Hostname:   name,
			FQDN:       entry.FQDN,
			Vendor:     entry.Vendor,
			OSName:     entry.OS,
			DeviceType: domain.DeviceType(entry.DeviceType),
		})
	}
	return hosts, nil
}

// Export writes the host set as a YAML inventory. Hosts without a
// hostname are keyed by IP.
func (c *YAMLCodec) Export(hosts []domain.Host, w io.Writer) error {
	inv := yamlInventory{
		Version: 1,
		Hosts:   make(map[string]yamlHost, len(hosts)),
	}
	for i := range hosts {
		h := &hosts[i]
		key := h.Hostname
		if key == "" {
			key = h.IPAddress
		}
		inv.Hosts[key] = yamlHost{
			IP:         h.IPAddress,
			MAC:        h.MACAddress,
			FQDN:       h.FQDN,
			Vendor:     h.Vendor,
			DeviceType: string(h.DeviceType),
			OS:         h.OSName,
		}
	}

	data, err := yaml.Marshal(&inv)
	if err != nil {
		return fmt.Errorf("marshal yaml inventory: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write yaml inventory: %w", err)
	}
	return nil
}
