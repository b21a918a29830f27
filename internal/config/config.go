// Package config loads netograph.yaml. The config file carries the
// operator-declared knowledge the store cannot discover on its own,
// VLAN definitions above all; the database holds everything observed.
//
// Config file locations (priority order):
//  1. $NETOGRAPH_CONFIG
//  2. ./netograph.yaml
//  3. ~/.config/netograph/config.yaml
//  4. /etc/netograph/config.yaml
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Load finds and loads the config file, or returns defaults if none
// is found
func Load() (*Config, string, error) {
	path := FindConfigPath()
	if path == "" {
		return DefaultConfig(), "", nil
	}
	return LoadFromPath(path)
}

// LoadFromPath loads config from a specific path
func LoadFromPath(path string) (*Config, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, path, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, path, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, path, fmt.Errorf("validate config: %w", err)
	}
	return &cfg, path, nil
}

// Save writes config to the specified path
func (c *Config) Save(path string) error {
	if err := EnsureConfigDir(path); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// DefaultConfig returns the defaults for a new installation
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// applyDefaults fills in missing values
func (c *Config) applyDefaults() {
	if c.Version == 0 {
		c.Version = 1
	}
	if c.Server.Host == "" {
		c.Server.Host = "0.0.0.0"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Database.Path == "" {
		c.Database.Path = "./netograph.db"
	}
	if c.Ingest.Dir == "" {
		c.Ingest.Dir = "./ingest"
	}
	if c.Topology.SubnetPrefix == 0 {
		c.Topology.SubnetPrefix = 24
	}
	if c.Topology.ShowInternet == "" {
		c.Topology.ShowInternet = "cloud"
	}
}
