package adapter

import (
	"testing"

	"netograph/internal/domain"
)

const sampleNmapXML = `<?xml version="1.0" encoding="UTF-8"?>
<nmaprun scanner="nmap" start="1724500000" version="7.94">
  <host>
    <status state="up" reason="arp-response"/>
    <address addr="192.168.1.10" addrtype="ipv4"/>
    <address addr="AA:BB:CC:DD:EE:FF" addrtype="mac" vendor="Dell Inc."/>
    <hostnames>
      <hostname name="web1.corp.example" type="PTR"/>
    </hostnames>
    <ports>
      <port protocol="tcp" portid="22">
        <state state="open" reason="syn-ack"/>
        <service name="ssh" product="OpenSSH" version="9.6"/>
      </port>
      <port protocol="tcp" portid="443">
        <state state="open" reason="syn-ack"/>
        <service name="https" product="nginx" version="1.24.0"/>
      </port>
      <port protocol="tcp" portid="3306">
        <state state="closed" reason="reset"/>
      </port>
    </ports>
    <os>
      <osmatch name="Linux 5.15" accuracy="96">
        <osclass type="general purpose" vendor="Linux" osfamily="Linux" osgen="5.X" accuracy="96"/>
      </osmatch>
    </os>
  </host>
  <host>
    <status state="down" reason="no-response"/>
    <address addr="192.168.1.11" addrtype="ipv4"/>
  </host>
</nmaprun>`

func TestParseNmapXML(t *testing.T) {
	hosts, err := ParseNmapXML([]byte(sampleNmapXML))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(hosts) != 1 {
		t.Fatalf("expected 1 host (down host skipped), got %d", len(hosts))
	}

	h := hosts[0]
	t.Run("addresses", func(t *testing.T) {
		if h.IPAddress != "192.168.1.10" {
			t.Errorf("ip = %q", h.IPAddress)
		}
		if h.MACAddress != "aa:bb:cc:dd:ee:ff" {
			t.Errorf("mac = %q, want lowercased", h.MACAddress)
		}
		if h.Vendor != "Dell Inc." {
			t.Errorf("vendor = %q", h.Vendor)
		}
	})

	t.Run("names", func(t *testing.T) {
		if h.FQDN != "web1.corp.example" {
			t.Errorf("fqdn = %q", h.FQDN)
		}
		if h.Hostname != "web1" {
			t.Errorf("hostname = %q, want short label", h.Hostname)
		}
	})

	t.Run("ports", func(t *testing.T) {
		if len(h.Ports) != 2 {
			t.Fatalf("expected 2 open ports, got %d", len(h.Ports))
		}
		if h.Ports[0].Number != 22 || h.Ports[0].Service != "ssh" {
			t.Errorf("port[0] = %+v", h.Ports[0])
		}
		if h.Ports[1].Banner != "nginx 1.24.0" {
			t.Errorf("banner = %q", h.Ports[1].Banner)
		}
	})

	t.Run("os", func(t *testing.T) {
		if h.OSName != "Linux 5.15" {
			t.Errorf("os name = %q", h.OSName)
		}
		if h.OSFamily != "Linux" {
			t.Errorf("os family = %q", h.OSFamily)
		}
		if h.OSConfidence != 0.96 {
			t.Errorf("os confidence = %v", h.OSConfidence)
		}
	})

	t.Run("device type from ports", func(t *testing.T) {
		if h.DeviceType != domain.DeviceTypeServer {
			t.Errorf("device type = %q, want server", h.DeviceType)
		}
	})
}

func TestParseNmapXMLInvalid(t *testing.T) {
	if _, err := ParseNmapXML([]byte("not xml at all")); err == nil {
		t.Fatal("expected error for invalid document")
	}
}

func TestInferDeviceType(t *testing.T) {
	cases := []struct {
		name  string
		ports []int
		want  domain.DeviceType
	}{
		{"dns plus web is a router", []int{53, 80}, domain.DeviceTypeRouter},
		{"jetdirect is a printer", []int{9100}, domain.DeviceTypePrinter},
		{"smb is a server", []int{445}, domain.DeviceTypeServer},
		{"ssh only is a server", []int{22}, domain.DeviceTypeServer},
		{"nothing open is unknown", nil, domain.DeviceTypeUnknown},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ports := make([]domain.ParsedPort, len(tc.ports))
			for i, p := range tc.ports {
				ports[i] = domain.ParsedPort{Number: p, Protocol: "tcp", State: "open"}
			}
			if got := inferDeviceType(ports); got != tc.want {
				t.Errorf("inferDeviceType(%v) = %q, want %q", tc.ports, got, tc.want)
			}
		})
	}
}
