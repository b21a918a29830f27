package codec

import (
	"bytes"
	"strings"
	"testing"

	"netograph/internal/domain"
)

const sampleInventory = `version: 1
hosts:
  web1:
    ip: 10.0.1.10
    mac: aa:bb:cc:dd:ee:ff
    fqdn: web1.corp.example
    vendor: Dell Inc.
    device_type: server
    os: Ubuntu 22.04
  printer-3f:
    ip: 10.0.2.40
    device_type: printer
vlans:
  - id: 10
    name: Servers
    subnet_cidrs: ["10.0.1.0/24"]
`

func TestYAMLParse(t *testing.T) {
	hosts, err := NewYAMLCodec().Parse(strings.NewReader(sampleInventory))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(hosts) != 2 {
		t.Fatalf("hosts = %d, want 2", len(hosts))
	}

	byName := make(map[string]domain.ParsedHost)
	for _, h := range hosts {
		byName[h.Hostname] = h
	}

	web, ok := byName["web1"]
	if !ok {
		t.Fatal("web1 missing, map key should become the hostname")
	}
	if web.IPAddress != "10.0.1.10" || web.MACAddress != "aa:bb:cc:dd:ee:ff" {
		t.Errorf("web1 = %+v", web)
	}
	if web.DeviceType != domain.DeviceTypeServer || web.OSName != "Ubuntu 22.04" {
		t.Errorf("web1 = %+v", web)
	}

	if byName["printer-3f"].DeviceType != domain.DeviceTypePrinter {
		t.Errorf("printer-3f = %+v", byName["printer-3f"])
	}
}

func TestYAMLParseRejectsMissingIP(t *testing.T) {
	raw := "hosts:\n  broken:\n    mac: aa:bb:cc:dd:ee:ff\n"
	if _, err := NewYAMLCodec().Parse(strings.NewReader(raw)); err == nil {
		t.Error("host without ip should be rejected")
	}
}

func TestYAMLExportRoundTrip(t *testing.T) {
	hosts := []domain.Host{
		{ID: "h1", IPAddress: "10.0.1.10", Hostname: "web1", MACAddress: "aa:bb:cc:dd:ee:ff", DeviceType: domain.DeviceTypeServer},
		{ID: "h2", IPAddress: "10.0.2.20"},
	}

	var buf bytes.Buffer
	if err := NewYAMLCodec().Export(hosts, &buf); err != nil {
		t.Fatalf("export: %v", err)
	}

	parsed, err := NewYAMLCodec().Parse(&buf)
	if err != nil {
		t.Fatalf("reparse: %v", err)
	}
	if len(parsed) != 2 {
		t.Fatalf("parsed = %d, want 2", len(parsed))
	}
	for _, p := range parsed {
		if p.IPAddress == "10.0.2.20" && p.Hostname != "10.0.2.20" {
			t.Errorf("hostname-less host should be keyed by ip: %+v", p)
		}
	}
}

func TestJSONRoundTrip(t *testing.T) {
	raw := `[{"ip":"10.0.1.10","hostname":"web1","ports":[{"port":22,"protocol":"tcp","state":"open"}]}]`
	hosts, err := NewJSONCodec().Parse(strings.NewReader(raw))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(hosts) != 1 || hosts[0].Hostname != "web1" || len(hosts[0].Ports) != 1 {
		t.Fatalf("hosts = %+v", hosts)
	}

	var buf bytes.Buffer
	err = NewJSONCodec().Export([]domain.Host{{ID: "h1", IPAddress: "10.0.1.10"}}, &buf)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if !strings.Contains(buf.String(), `"10.0.1.10"`) {
		t.Errorf("export output missing host: %s", buf.String())
	}
}
