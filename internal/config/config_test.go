package config

import (
	"os"
	"path/filepath"
	"testing"

	"netograph/internal/domain"
)

func vlanFixture() domain.VLANConfig {
	return domain.VLANConfig{VLANID: 10, Name: "Servers", SubnetCIDRs: []string{"10.0.1.0/24"}}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Server.Addr() != "0.0.0.0:8080" {
		t.Errorf("addr = %q", cfg.Server.Addr())
	}
	if cfg.Database.Path != "./netograph.db" {
		t.Errorf("db path = %q", cfg.Database.Path)
	}
	if cfg.Topology.SubnetPrefix != 24 || cfg.Topology.ShowInternet != "cloud" {
		t.Errorf("topology defaults = %+v", cfg.Topology)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoadFromPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "netograph.yaml")

	raw := `version: 1
server:
  port: 9090
database:
  path: /var/lib/netograph/db.sqlite
ingest:
  enabled: true
  dir: /var/lib/netograph/drop
topology:
  subnet_prefix: 16
  show_internet: show
  route_through_gateway: true
vlans:
  - id: 10
    name: Servers
    subnet_cidrs: ["10.0.1.0/24"]
    color: "#336699"
`
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, loadedFrom, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loadedFrom != path {
		t.Errorf("loadedFrom = %q", loadedFrom)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("port = %d", cfg.Server.Port)
	}
	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("unset host should default: %q", cfg.Server.Host)
	}
	if !cfg.Ingest.Enabled || cfg.Ingest.Dir != "/var/lib/netograph/drop" {
		t.Errorf("ingest = %+v", cfg.Ingest)
	}
	if len(cfg.VLANs) != 1 || cfg.VLANs[0].VLANID != 10 || cfg.VLANs[0].Name != "Servers" {
		t.Errorf("vlans = %+v", cfg.VLANs)
	}

	opts := cfg.Topology.DefaultTopologyOptions()
	if opts.SubnetPrefix != 16 || string(opts.ShowInternet) != "show" || !opts.RouteThroughGateway {
		t.Errorf("options = %+v", opts)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.Server.Port = 9999
	cfg.VLANs = append(cfg.VLANs, vlanFixture())

	if err := cfg.Save(path); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, _, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if loaded.Server.Port != 9999 || len(loaded.VLANs) != 1 {
		t.Errorf("reloaded = %+v", loaded)
	}
}

func TestValidateRejections(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"port out of range", func(c *Config) { c.Server.Port = 70000 }},
		{"missing db path", func(c *Config) { c.Database.Path = "" }},
		{"bad subnet prefix", func(c *Config) { c.Topology.SubnetPrefix = 2 }},
		{"bad internet mode", func(c *Config) { c.Topology.ShowInternet = "sometimes" }},
		{"vlan id out of range", func(c *Config) {
			v := vlanFixture()
			v.VLANID = 5000
			c.VLANs = append(c.VLANs, v)
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestFindConfigPathEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.yaml")
	if err := os.WriteFile(path, []byte("version: 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("NETOGRAPH_CONFIG", path)
	if got := FindConfigPath(); got != path {
		t.Errorf("FindConfigPath = %q, want %q", got, path)
	}
}
