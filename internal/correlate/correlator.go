// Package correlate reconciles overlapping host observations into a
// canonical identity set: duplicate records are merged, multi-homed
// devices get a DeviceIdentity, and disagreeing sources produce
// Conflict records instead of silent overwrites.
package correlate

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/google/uuid"

	"netograph/internal/domain"
	"netograph/internal/repository"
)

// Store is the identity-store subset the correlator consumes
type Store interface {
	ListHosts(ctx context.Context, filter repository.HostFilter) ([]domain.Host, error)
	GetHost(ctx context.Context, id string) (*domain.Host, error)
	UpdateHost(ctx context.Context, host *domain.Host) error
	DeactivateHost(ctx context.Context, id string) error
	ReassignPorts(ctx context.Context, fromHostID, toHostID string) error
	ReassignConnections(ctx context.Context, fromHostID, toHostID string) error
	ListArpEntries(ctx context.Context) ([]domain.ArpEntry, error)
	CreateConflict(ctx context.Context, conflict *domain.Conflict) error
	SaveConflict(ctx context.Context, conflict *domain.Conflict) error
	ListHostConflicts(ctx context.Context, hostID string, unresolvedOnly bool) ([]domain.Conflict, error)
	CreateDeviceIdentity(ctx context.Context, identity *domain.DeviceIdentity) error
	UpdateDeviceIdentity(ctx context.Context, identity *domain.DeviceIdentity) error
	GetDeviceIdentityByMAC(ctx context.Context, mac string) (*domain.DeviceIdentity, error)
}

// Result aggregates what one correlation pass changed
type Result struct {
	HostsMerged             int `json:"hosts_merged"`
	ConflictsDetected       int `json:"conflicts_detected"`
	DeviceIdentitiesCreated int `json:"device_identities_created"`
}

// Correlator runs correlation passes against one store scope. For an
// atomic pass, construct it over a transaction-scoped store.
type Correlator struct {
	store Store
}

// New creates a correlator bound to a store scope
func New(store Store) *Correlator {
	return &Correlator{store: store}
}

// Run executes the four correlation phases in order: exact-IP dedup,
// MAC grouping, tag-based merge, conflict detection. Any phase error
// aborts the pass.
func (c *Correlator) Run(ctx context.Context) (*Result, error) {
	result := &Result{}

	if err := c.dedupeByIP(ctx, result); err != nil {
		return nil, fmt.Errorf("ip dedup: %w", err)
	}
	if err := c.groupByMAC(ctx, result); err != nil {
		return nil, fmt.Errorf("mac grouping: %w", err)
	}
	if err := c.mergeByTag(ctx, result); err != nil {
		return nil, fmt.Errorf("tag merge: %w", err)
	}
	if err := c.detectConflicts(ctx, result); err != nil {
		return nil, fmt.Errorf("conflict detection: %w", err)
	}

	log.Printf("Correlation pass: %d merged, %d conflicts, %d device identities",
		result.HostsMerged, result.ConflictsDetected, result.DeviceIdentitiesCreated)
	return result, nil
}

func (c *Correlator) activeHosts(ctx context.Context) ([]domain.Host, error) {
	return c.store.ListHosts(ctx, repository.HostFilter{})
}

// dedupeByIP merges every active host sharing an IP into the
// earliest-seen record for that IP
func (c *Correlator) dedupeByIP(ctx context.Context, result *Result) error {
	hosts, err := c.activeHosts(ctx)
	if err != nil {
		return err
	}

	byIP := make(map[string][]domain.Host)
	for _, h := range hosts {
		byIP[h.IPAddress] = append(byIP[h.IPAddress], h)
	}

	for ip, group := range byIP {
		if len(group) < 2 {
			continue
		}
		sortByFirstSeen(group)
		primary := group[0]
		for _, secondary := range group[1:] {
			if err := c.MergeHosts(ctx, primary.ID, secondary.ID); err != nil {
				return err
			}
			result.HostsMerged++
			log.Printf("Merged duplicate host %s into %s (ip %s)", secondary.ID, primary.ID, ip)
		}
	}
	return nil
}

// groupByMAC builds DeviceIdentity records for MACs spanning multiple
// IPs and merges true duplicates (one MAC, one IP, several rows).
// Multi-homed hosts are deliberately not merged: each interface keeps
// its per-subnet host record.
func (c *Correlator) groupByMAC(ctx context.Context, result *Result) error {
	hosts, err := c.activeHosts(ctx)
	if err != nil {
		return err
	}

	byMAC := make(map[string][]domain.Host)
	for _, h := range hosts {
		if mac := h.NormalizedMAC(); mac != "" {
			byMAC[mac] = append(byMAC[mac], h)
		}
	}

	macs := make([]string, 0, len(byMAC))
	for mac := range byMAC {
		macs = append(macs, mac)
	}
	sort.Strings(macs)

	for _, mac := range macs {
		group := byMAC[mac]
		ips := distinctIPs(group)

		switch {
		case len(ips) > 1:
			created, err := c.ensureDeviceIdentity(ctx, mac, group, ips)
			if err != nil {
				return err
			}
			if created {
				result.DeviceIdentitiesCreated++
			}

		case len(group) > 1:
			// Same MAC, same IP, several rows: true duplicates.
			sortByFirstSeen(group)
			primary := group[0]
			for _, secondary := range group[1:] {
				if err := c.MergeHosts(ctx, primary.ID, secondary.ID); err != nil {
					return err
				}
				result.HostsMerged++
			}
		}
	}
	return nil
}

// ensureDeviceIdentity creates or extends the identity for one MAC and
// links every member host to it. Returns true when a new identity row
// was created.
func (c *Correlator) ensureDeviceIdentity(ctx context.Context, mac string, group []domain.Host, ips []string) (bool, error) {
	identity, err := c.store.GetDeviceIdentityByMAC(ctx, mac)
	if err != nil {
		return false, err
	}

	created := false
	if identity == nil {
		identity = domain.NewDeviceIdentity(uuid.NewString(), mac)
		identity.DeviceType = inferGroupDeviceType(group)
		identity.Name = firstHostname(group)
		for _, ip := range ips {
			identity.AddIP(ip)
		}
		if err := c.store.CreateDeviceIdentity(ctx, identity); err != nil {
			return false, err
		}
		created = true
		log.Printf("Created device identity %s for mac %s spanning %v", identity.ID, mac, ips)
	} else {
		changed := false
		for _, ip := range ips {
			if !identity.HasIP(ip) {
				identity.AddIP(ip)
				changed = true
			}
		}
		if changed {
			identity.UpdatedAt = time.Now()
			if err := c.store.UpdateDeviceIdentity(ctx, identity); err != nil {
				return false, err
			}
		}
	}

	for _, h := range group {
		if h.DeviceID == identity.ID {
			continue
		}
		h.DeviceID = identity.ID
		host := h
		if err := c.store.UpdateHost(ctx, &host); err != nil {
			return false, err
		}
	}
	return created, nil
}

// mergeByTag merges hosts grouped by high-confidence tags (hostname,
// fqdn). Groups keyed on ambiguous values are skipped, and two hosts
// carrying different non-empty MACs are never merged.
func (c *Correlator) mergeByTag(ctx context.Context, result *Result) error {
	hosts, err := c.activeHosts(ctx)
	if err != nil {
		return err
	}

	byTag := make(map[string][]domain.Host)
	for _, h := range hosts {
		for _, raw := range h.Tags {
			tag := domain.ParseTag(raw)
			if !tag.HighConfidence() || domain.AmbiguousHostname(tag.Value) {
				continue
			}
			key := tag.String()
			byTag[key] = append(byTag[key], h)
		}
	}

	keys := make([]string, 0, len(byTag))
	for key := range byTag {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	merged := make(map[string]bool)
	for _, key := range keys {
		group := byTag[key]
		if len(group) < 2 {
			continue
		}
		sortByFirstSeen(group)

		if merged[group[0].ID] {
			continue
		}
		// Earlier merges in this phase change rows behind the snapshot,
		// a primary absorbing a secondary's MAC in particular, so the
		// MAC check runs against fresh copies.
		primary, err := c.store.GetHost(ctx, group[0].ID)
		if err != nil {
			return err
		}
		if primary == nil || !primary.IsActive {
			continue
		}
		for _, member := range group[1:] {
			if merged[member.ID] || member.ID == primary.ID {
				continue
			}
			other, err := c.store.GetHost(ctx, member.ID)
			if err != nil {
				return err
			}
			if other == nil || !other.IsActive {
				continue
			}
			if macsConflict(primary, other) {
				continue
			}
			if err := c.MergeHosts(ctx, primary.ID, other.ID); err != nil {
				return err
			}
			merged[other.ID] = true
			result.HostsMerged++
			log.Printf("Merged host %s into %s via tag %s", other.ID, primary.ID, key)
			primary, err = c.store.GetHost(ctx, primary.ID)
			if err != nil {
				return err
			}
		}
	}
	return nil
}

// macsConflict reports whether both hosts carry MACs that disagree
func macsConflict(a, b *domain.Host) bool {
	am, bm := a.NormalizedMAC(), b.NormalizedMAC()
	return am != "" && bm != "" && am != bm
}

func sortByFirstSeen(hosts []domain.Host) {
	sort.Slice(hosts, func(i, j int) bool {
		if hosts[i].FirstSeen.Equal(hosts[j].FirstSeen) {
			return hosts[i].ID < hosts[j].ID
		}
		return hosts[i].FirstSeen.Before(hosts[j].FirstSeen)
	})
}

func distinctIPs(hosts []domain.Host) []string {
	seen := make(map[string]struct{})
	for _, h := range hosts {
		seen[h.IPAddress] = struct{}{}
	}
	ips := make([]string, 0, len(seen))
	for ip := range seen {
		ips = append(ips, ip)
	}
	sort.Strings(ips)
	return ips
}

// inferGroupDeviceType picks the identity type from its members; any
// router-class member makes the whole device a router.
func inferGroupDeviceType(hosts []domain.Host) domain.DeviceType {
	for _, h := range hosts {
		if h.IsRouter() {
			return domain.DeviceTypeRouter
		}
	}
	for _, h := range hosts {
		if h.DeviceType != "" && h.DeviceType != domain.DeviceTypeUnknown {
			return h.DeviceType
		}
	}
	return domain.DeviceTypeUnknown
}

func firstHostname(hosts []domain.Host) string {
	for _, h := range hosts {
		if h.Hostname != "" {
			return h.Hostname
		}
	}
	for _, h := range hosts {
		if h.FQDN != "" {
			return h.FQDN
		}
	}
	return ""
}
