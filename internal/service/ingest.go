package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"netograph/internal/domain"
	"netograph/internal/repository"
)

// IngestService turns parsed scanner records into store rows. Each
// observed host is upserted by IP; correlation later decides whether
// rows from different sources describe the same machine.
type IngestService struct {
	store    repository.Store
	eventBus *EventBus
}

// NewIngestService creates the ingest service
func NewIngestService(store repository.Store, eventBus *EventBus) *IngestService {
	return &IngestService{store: store, eventBus: eventBus}
}

// IngestHosts upserts a batch of parsed hosts from one source
func (s *IngestService) IngestHosts(ctx context.Context, parsed []domain.ParsedHost, source string) (int, error) {
	count := 0
	for i := range parsed {
		host, err := s.ingestHost(ctx, &parsed[i], source)
		if err != nil {
			return count, fmt.Errorf("ingest host %s: %w", parsed[i].IPAddress, err)
		}
		if host != nil {
			count++
		}
	}

	if count > 0 {
		log.Printf("Ingested %d hosts from %s", count, source)
		s.eventBus.Publish(Event{Type: EventHostsImported, Payload: map[string]any{
			"source": source,
			"count":  count,
		}})
	}
	return count, nil
}

func (s *IngestService) ingestHost(ctx context.Context, parsed *domain.ParsedHost, source string) (*domain.Host, error) {
	if parsed.IPAddress == "" {
		return nil, nil
	}

	host, err := s.store.GetHostByIP(ctx, parsed.IPAddress)
	if err != nil {
		return nil, err
	}

	created := host == nil
	if created {
		host = domain.NewHost(uuid.NewString(), parsed.IPAddress)
	}

	applyParsed(host, parsed)
	host.AddSourceType(source)
	host.LastSeen = time.Now()
	deriveTags(host)

	if created {
		if err := s.store.CreateHost(ctx, host); err != nil {
			return nil, err
		}
	} else {
		if err := s.store.UpdateHost(ctx, host); err != nil {
			return nil, err
		}
	}

	for i := range parsed.Ports {
		p := &parsed.Ports[i]
		port := &domain.Port{
			ID:       uuid.NewString(),
			HostID:   host.ID,
			Number:   p.Number,
			Protocol: p.Protocol,
			State:    p.State,
			Service:  p.Service,
			Banner:   p.Banner,
		}
		if err := s.store.UpsertPort(ctx, port); err != nil {
			return nil, fmt.Errorf("upsert port %d: %w", p.Number, err)
		}
	}

	s.eventBus.Publish(Event{Type: EventHostIngested, Payload: host})
	return host, nil
}

// applyParsed copies parsed fields onto the host. Empty scalars never
// overwrite known values, and OS fields only move when the new
// observation is more confident.
func applyParsed(host *domain.Host, parsed *domain.ParsedHost) {
	if host.MACAddress == "" {
		host.MACAddress = parsed.MACAddress
	}
	if host.Hostname == "" {
		host.Hostname = parsed.Hostname
	}
	if host.FQDN == "" {
		host.FQDN = parsed.FQDN
	}
	if host.Vendor == "" {
		host.Vendor = parsed.Vendor
	}
	if host.DeviceType == "" || host.DeviceType == domain.DeviceTypeUnknown {
		host.DeviceType = parsed.DeviceType
	}
	if parsed.OSName != "" && parsed.OSConfidence > host.OSConfidence {
		host.OSName = parsed.OSName
		host.OSVersion = parsed.OSVersion
		host.OSFamily = parsed.OSFamily
		host.OSConfidence = parsed.OSConfidence
	}
}

// deriveTags records typed identity tags for the correlation engine
func deriveTags(host *domain.Host) {
	if host.Hostname != "" && !domain.AmbiguousHostname(host.Hostname) {
		host.AddTag(domain.Tag{Kind: domain.TagHostname, Value: host.Hostname}.String())
	}
	if host.FQDN != "" {
		host.AddTag(domain.Tag{Kind: domain.TagFqdn, Value: host.FQDN}.String())
	}
	host.AddTag(domain.Tag{Kind: domain.TagIP, Value: host.IPAddress}.String())
	if host.Vendor != "" {
		host.AddTag(domain.Tag{Kind: domain.TagVendor, Value: host.Vendor}.String())
	}
}

// IngestConnections stores parsed socket records, attaching each to the
// host owning its local IP when one exists
func (s *IngestService) IngestConnections(ctx context.Context, parsed []domain.ParsedConnection, source string) (int, error) {
	count := 0
	for i := range parsed {
		p := &parsed[i]
		conn := &domain.Connection{
			ID:          uuid.NewString(),
			LocalIP:     p.LocalIP,
			LocalPort:   p.LocalPort,
			RemoteIP:    p.RemoteIP,
			RemotePort:  p.RemotePort,
			Protocol:    p.Protocol,
			State:       p.State,
			PID:         p.PID,
			ProcessName: p.ProcessName,
		}
		if host, err := s.store.GetHostByIP(ctx, p.LocalIP); err == nil && host != nil {
			conn.HostID = host.ID
		}
		if err := s.store.InsertConnection(ctx, conn); err != nil {
			return count, fmt.Errorf("insert connection: %w", err)
		}
		count++
	}
	if count > 0 {
		log.Printf("Ingested %d connections from %s", count, source)
	}
	return count, nil
}

// IngestArpEntries stores parsed neighbor rows
func (s *IngestService) IngestArpEntries(ctx context.Context, parsed []domain.ParsedArpEntry, source string) (int, error) {
	count := 0
	now := time.Now()
	for i := range parsed {
		p := &parsed[i]
		entry := &domain.ArpEntry{
			ID:         uuid.NewString(),
			IPAddress:  p.IPAddress,
			MACAddress: p.MACAddress,
			Interface:  p.Interface,
			EntryType:  p.EntryType,
			Vendor:     p.Vendor,
			Source:     source,
			SeenAt:     now,
		}
		if err := s.store.InsertArpEntry(ctx, entry); err != nil {
			return count, fmt.Errorf("insert arp entry: %w", err)
		}
		count++
	}
	if count > 0 {
		log.Printf("Ingested %d arp entries from %s", count, source)
	}
	return count, nil
}
