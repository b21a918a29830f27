package config

import (
	"fmt"

	"netograph/internal/domain"
	"netograph/internal/topology"
)

// Config is the full netograph.yaml schema
type Config struct {
	Version  int                 `yaml:"version"`
	Server   ServerConfig        `yaml:"server"`
	Database DatabaseConfig      `yaml:"database"`
	Ingest   IngestConfig        `yaml:"ingest"`
	Topology TopologyConfig      `yaml:"topology"`
	VLANs    []domain.VLANConfig `yaml:"vlans"`
}

// ServerConfig controls the HTTP listener
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// Addr renders the listen address
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// DatabaseConfig locates the sqlite store
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// IngestConfig controls the drop-directory watcher
type IngestConfig struct {
	Enabled bool   `yaml:"enabled"`
	Dir     string `yaml:"dir"`
}

// TopologyConfig carries the synthesis defaults applied when a request
// leaves an option unset
type TopologyConfig struct {
	SubnetPrefix        int    `yaml:"subnet_prefix"`
	ShowInternet        string `yaml:"show_internet"`
	RouteThroughGateway bool   `yaml:"route_through_gateway"`
}

// DefaultTopologyOptions converts the configured defaults into options
func (t TopologyConfig) DefaultTopologyOptions() topology.Options {
	opts := topology.DefaultOptions()
	if t.SubnetPrefix != 0 {
		opts.SubnetPrefix = t.SubnetPrefix
	}
	if t.ShowInternet != "" {
		opts.ShowInternet = topology.InternetMode(t.ShowInternet)
	}
	opts.RouteThroughGateway = t.RouteThroughGateway
	return opts
}

// Validate rejects configs the engine cannot run with
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}
	if err := c.Topology.DefaultTopologyOptions().Validate(); err != nil {
		return fmt.Errorf("topology defaults: %w", err)
	}
	for _, v := range c.VLANs {
		if v.VLANID < 1 || v.VLANID > 4094 {
			return fmt.Errorf("vlan id %d out of range [1,4094]", v.VLANID)
		}
	}
	return nil
}
