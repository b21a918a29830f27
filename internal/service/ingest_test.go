package service

import (
	"context"
	"testing"

	"netograph/internal/domain"
	"netograph/internal/repository/sqlite"
)

func newIngest(t *testing.T) (*IngestService, *sqlite.Repository) {
	t.Helper()
	repo, err := sqlite.NewMemory()
	if err != nil {
		t.Fatalf("open memory db: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return NewIngestService(repo, NewEventBus()), repo
}

func TestIngestHostsUpsertsByIP(t *testing.T) {
	ctx := context.Background()
	svc, repo := newIngest(t)

	first := []domain.ParsedHost{{
		IPAddress: "10.0.0.5",
		Hostname:  "web1",
		Ports: []domain.ParsedPort{
			{Number: 22, Protocol: "tcp", State: "open", Service: "ssh"},
		},
	}}
	n, err := svc.IngestHosts(ctx, first, "nmap")
	if err != nil {
		t.Fatalf("first ingest: %v", err)
	}
	if n != 1 {
		t.Fatalf("ingested = %d, want 1", n)
	}

	host, err := repo.GetHostByIP(ctx, "10.0.0.5")
	if err != nil || host == nil {
		t.Fatalf("host not stored: %v %v", host, err)
	}
	if host.Hostname != "web1" {
		t.Errorf("hostname = %q", host.Hostname)
	}

	// A second source for the same IP updates the existing row.
	second := []domain.ParsedHost{{
		IPAddress:  "10.0.0.5",
		MACAddress: "aa:bb:cc:dd:ee:ff",
		Vendor:     "Dell Inc.",
	}}
	if _, err := svc.IngestHosts(ctx, second, "arp_table"); err != nil {
		t.Fatalf("second ingest: %v", err)
	}

	again, _ := repo.GetHostByIP(ctx, "10.0.0.5")
	if again.ID != host.ID {
		t.Error("second observation should not create a new host")
	}
	if again.MACAddress != "aa:bb:cc:dd:ee:ff" || again.Vendor != "Dell Inc." {
		t.Errorf("fields not filled: %+v", again)
	}
	if len(again.SourceTypes) != 2 {
		t.Errorf("source types = %v", again.SourceTypes)
	}
}

func TestIngestSkipsEmptyIP(t *testing.T) {
	ctx := context.Background()
	svc, _ := newIngest(t)

	n, err := svc.IngestHosts(ctx, []domain.ParsedHost{{Hostname: "no-ip"}}, "nmap")
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if n != 0 {
		t.Errorf("ingested = %d, want 0", n)
	}
}

func TestApplyParsedFieldRules(t *testing.T) {
	t.Run("empty scalars never clobber", func(t *testing.T) {
		host := &domain.Host{Hostname: "web1", MACAddress: "aa:bb:cc:dd:ee:ff"}
		applyParsed(host, &domain.ParsedHost{Hostname: "", MACAddress: ""})
		if host.Hostname != "web1" || host.MACAddress != "aa:bb:cc:dd:ee:ff" {
			t.Errorf("got %+v", host)
		}
	})

	t.Run("known values win over new ones", func(t *testing.T) {
		host := &domain.Host{Hostname: "web1"}
		applyParsed(host, &domain.ParsedHost{Hostname: "other-name"})
		if host.Hostname != "web1" {
			t.Errorf("hostname = %q", host.Hostname)
		}
	})

	t.Run("os moves only on higher confidence", func(t *testing.T) {
		host := &domain.Host{OSName: "Linux 5.15", OSFamily: "Linux", OSConfidence: 0.9}

		applyParsed(host, &domain.ParsedHost{OSName: "FreeBSD", OSConfidence: 0.5})
		if host.OSName != "Linux 5.15" {
			t.Errorf("low confidence should not win: %q", host.OSName)
		}

		applyParsed(host, &domain.ParsedHost{OSName: "Linux 6.1", OSFamily: "Linux", OSVersion: "6.1", OSConfidence: 0.97})
		if host.OSName != "Linux 6.1" || host.OSConfidence != 0.97 || host.OSVersion != "6.1" {
			t.Errorf("higher confidence should win: %+v", host)
		}
	})

	t.Run("unknown device type is replaceable", func(t *testing.T) {
		host := &domain.Host{DeviceType: domain.DeviceTypeUnknown}
		applyParsed(host, &domain.ParsedHost{DeviceType: domain.DeviceTypeRouter})
		if host.DeviceType != domain.DeviceTypeRouter {
			t.Errorf("device type = %q", host.DeviceType)
		}

		applyParsed(host, &domain.ParsedHost{DeviceType: domain.DeviceTypeServer})
		if host.DeviceType != domain.DeviceTypeRouter {
			t.Errorf("known device type should stick: %q", host.DeviceType)
		}
	})
}

func TestDeriveTags(t *testing.T) {
	host := &domain.Host{
		IPAddress: "10.0.0.5",
		Hostname:  "web1",
		FQDN:      "web1.corp.example",
		Vendor:    "Cisco",
	}
	deriveTags(host)

	want := map[string]bool{
		"hostname:web1":          true,
		"fqdn:web1.corp.example": true,
		"ip:10.0.0.5":            true,
		"vendor:Cisco":           true,
	}
	if len(host.Tags) != len(want) {
		t.Fatalf("tags = %v", host.Tags)
	}
	for _, tag := range host.Tags {
		if !want[tag] {
			t.Errorf("unexpected tag %q", tag)
		}
	}

	t.Run("ambiguous hostname skipped", func(t *testing.T) {
		h := &domain.Host{IPAddress: "10.0.0.6", Hostname: "localhost"}
		deriveTags(h)
		for _, tag := range h.Tags {
			if tag == "hostname:localhost" {
				t.Error("ambiguous hostname should not become an identity tag")
			}
		}
	})
}

func TestIngestConnectionsAttachesHost(t *testing.T) {
	ctx := context.Background()
	svc, repo := newIngest(t)

	if _, err := svc.IngestHosts(ctx, []domain.ParsedHost{{IPAddress: "10.0.0.5"}}, "nmap"); err != nil {
		t.Fatalf("seed host: %v", err)
	}
	host, _ := repo.GetHostByIP(ctx, "10.0.0.5")

	parsed := []domain.ParsedConnection{
		{LocalIP: "10.0.0.5", LocalPort: 50000, RemoteIP: "10.0.0.9", RemotePort: 443, Protocol: "tcp", State: "established"},
		{LocalIP: "10.0.0.99", LocalPort: 50001, RemoteIP: "1.1.1.1", RemotePort: 53, Protocol: "udp"},
	}
	n, err := svc.IngestConnections(ctx, parsed, "netstat")
	if err != nil {
		t.Fatalf("ingest connections: %v", err)
	}
	if n != 2 {
		t.Fatalf("ingested = %d, want 2", n)
	}

	conns, err := repo.ListConnections(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(conns) != 2 {
		t.Fatalf("connections = %d", len(conns))
	}
	for _, c := range conns {
		switch c.LocalIP {
		case "10.0.0.5":
			if c.HostID != host.ID {
				t.Errorf("connection not attached to host: %+v", c)
			}
		case "10.0.0.99":
			if c.HostID != "" {
				t.Errorf("unknown local ip should stay unattached: %+v", c)
			}
		}
	}
}

func TestIngestArpEntries(t *testing.T) {
	ctx := context.Background()
	svc, repo := newIngest(t)

	parsed := []domain.ParsedArpEntry{
		{IPAddress: "10.0.0.1", MACAddress: "aa:bb:cc:00:00:01", Interface: "eth0", EntryType: "dynamic"},
	}
	n, err := svc.IngestArpEntries(ctx, parsed, "arp_table")
	if err != nil || n != 1 {
		t.Fatalf("ingest: %d %v", n, err)
	}

	entries, err := repo.ListArpEntries(ctx)
	if err != nil || len(entries) != 1 {
		t.Fatalf("entries = %v %v", entries, err)
	}
	e := entries[0]
	if e.Source != "arp_table" || e.SeenAt.IsZero() || e.ID == "" {
		t.Errorf("got %+v", e)
	}
}

func TestEventBusNonBlocking(t *testing.T) {
	bus := NewEventBus()
	full := make(chan Event) // unbuffered, no reader
	open := make(chan Event, 1)
	bus.Subscribe(full)
	bus.Subscribe(open)

	bus.Publish(Event{Type: EventHostIngested})

	select {
	case ev := <-open:
		if ev.Type != EventHostIngested {
			t.Errorf("event = %+v", ev)
		}
	default:
		t.Error("open subscriber should have received the event")
	}
}
