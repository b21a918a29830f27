package correlate

import (
	"context"
	"log"
	"strings"

	"github.com/google/uuid"

	"netograph/internal/domain"
)

// detectConflicts compares each active host against ARP observations
// and its own name fields, recording conflicts where sources disagree.
// Detection never mutates hosts; it only files Conflict rows.
func (c *Correlator) detectConflicts(ctx context.Context, result *Result) error {
	hosts, err := c.activeHosts(ctx)
	if err != nil {
		return err
	}

	entries, err := c.store.ListArpEntries(ctx)
	if err != nil {
		return err
	}
	arpByIP := make(map[string][]domain.ArpEntry)
	for _, e := range entries {
		arpByIP[e.IPAddress] = append(arpByIP[e.IPAddress], e)
	}

	for i := range hosts {
		host := &hosts[i]

		created, err := c.checkMACMismatch(ctx, host, arpByIP[host.IPAddress])
		if err != nil {
			return err
		}
		if created {
			result.ConflictsDetected++
		}

		created, err = c.checkHostnameMismatch(ctx, host)
		if err != nil {
			return err
		}
		if created {
			result.ConflictsDetected++
		}
	}
	return nil
}

// checkMACMismatch files a mac_mismatch conflict when an ARP row for
// the host's IP reports a different MAC and no unresolved conflict of
// that type exists yet
func (c *Correlator) checkMACMismatch(ctx context.Context, host *domain.Host, entries []domain.ArpEntry) (bool, error) {
	hostMAC := host.NormalizedMAC()
	if hostMAC == "" {
		return false, nil
	}

	for _, entry := range entries {
		arpMAC := strings.ToLower(strings.TrimSpace(entry.MACAddress))
		if arpMAC == "" || arpMAC == hostMAC {
			continue
		}

		open, err := c.hasUnresolved(ctx, host.ID, domain.ConflictMACMismatch)
		if err != nil || open {
			return false, err
		}

		source := entry.Source
		if source == "" {
			source = "arp_table"
		}
		conflict := domain.NewConflict(uuid.NewString(), host.ID,
			domain.ConflictMACMismatch, "mac_address",
			[]domain.ConflictValue{
				{Value: hostMAC, Source: hostSourceLabel(host), ObservedAt: host.LastSeen},
				{Value: arpMAC, Source: source, ObservedAt: entry.SeenAt},
			})
		if err := c.store.CreateConflict(ctx, conflict); err != nil {
			return false, err
		}
		log.Printf("MAC mismatch for %s (%s): host=%s arp=%s", host.ID, host.IPAddress, hostMAC, arpMAC)
		return true, nil
	}
	return false, nil
}

// checkHostnameMismatch files a hostname_mismatch conflict when the
// host's hostname, FQDN, and NetBIOS name disagree. Names are compared
// by their first DNS label so "web1" and "web1.corp.example" agree.
func (c *Correlator) checkHostnameMismatch(ctx context.Context, host *domain.Host) (bool, error) {
	type nameField struct {
		field string
		value string
	}
	fields := []nameField{
		{"hostname", host.Hostname},
		{"fqdn", host.FQDN},
		{"netbios_name", host.NetBIOSName},
	}

	distinct := make(map[string]nameField)
	for _, f := range fields {
		if f.value == "" {
			continue
		}
		distinct[shortName(f.value)] = f
	}
	if len(distinct) < 2 {
		return false, nil
	}

	open, err := c.hasUnresolved(ctx, host.ID, domain.ConflictHostnameMismatch)
	if err != nil || open {
		return false, err
	}

	values := make([]domain.ConflictValue, 0, len(distinct))
	for _, f := range distinct {
		values = append(values, domain.ConflictValue{
			Value:      f.value,
			Source:     f.field,
			ObservedAt: host.LastSeen,
		})
	}

	conflict := domain.NewConflict(uuid.NewString(), host.ID,
		domain.ConflictHostnameMismatch, "hostname", values)
	if err := c.store.CreateConflict(ctx, conflict); err != nil {
		return false, err
	}
	log.Printf("Hostname mismatch for %s (%s): %d distinct names", host.ID, host.IPAddress, len(distinct))
	return true, nil
}

func (c *Correlator) hasUnresolved(ctx context.Context, hostID string, conflictType domain.ConflictType) (bool, error) {
	conflicts, err := c.store.ListHostConflicts(ctx, hostID, true)
	if err != nil {
		return false, err
	}
	for _, conflict := range conflicts {
		if conflict.Type == conflictType {
			return true, nil
		}
	}
	return false, nil
}

// shortName lower-cases a name and strips everything after the first dot
func shortName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if idx := strings.Index(name, "."); idx > 0 {
		return name[:idx]
	}
	return name
}

func hostSourceLabel(host *domain.Host) string {
	if len(host.SourceTypes) > 0 {
		return strings.Join(host.SourceTypes, ",")
	}
	return "host_record"
}
