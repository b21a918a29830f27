package correlate

import (
	"context"
	"fmt"
	"time"

	"netograph/internal/domain"
)

// MergeHosts folds the secondary host into the primary. The primary
// absorbs tags, source types, the higher-confidence OS triple, and any
// scalar it was missing; ports and connections are reassigned; the
// secondary is soft-deleted and its unresolved conflicts move to the
// primary, auto-resolved. Merge is one-way and not undoable.
func (c *Correlator) MergeHosts(ctx context.Context, primaryID, secondaryID string) error {
	primary, err := c.store.GetHost(ctx, primaryID)
	if err != nil {
		return err
	}
	if primary == nil {
		return fmt.Errorf("host %s not found", primaryID)
	}

	secondary, err := c.store.GetHost(ctx, secondaryID)
	if err != nil {
		return err
	}
	if secondary == nil {
		return fmt.Errorf("host %s not found", secondaryID)
	}

	absorb(primary, secondary)

	if err := c.store.ReassignPorts(ctx, secondaryID, primaryID); err != nil {
		return err
	}
	if err := c.store.ReassignConnections(ctx, secondaryID, primaryID); err != nil {
		return err
	}
	if err := c.store.DeactivateHost(ctx, secondaryID); err != nil {
		return err
	}
	if err := c.transferConflicts(ctx, primaryID, secondaryID); err != nil {
		return err
	}

	return c.store.UpdateHost(ctx, primary)
}

// absorb copies merge-eligible data from secondary onto primary
func absorb(primary, secondary *domain.Host) {
	primary.Tags = domain.UnionStrings(primary.Tags, secondary.Tags)
	primary.SourceTypes = domain.UnionStrings(primary.SourceTypes, secondary.SourceTypes)

	// OS triple follows the higher confidence; ties keep the primary.
	if secondary.OSConfidence > primary.OSConfidence {
		primary.OSName = secondary.OSName
		primary.OSVersion = secondary.OSVersion
		primary.OSFamily = secondary.OSFamily
		primary.OSConfidence = secondary.OSConfidence
	}

	if primary.MACAddress == "" {
		primary.MACAddress = secondary.MACAddress
	}
	if primary.Hostname == "" {
		primary.Hostname = secondary.Hostname
	}
	if primary.FQDN == "" {
		primary.FQDN = secondary.FQDN
	}
	if primary.NetBIOSName == "" {
		primary.NetBIOSName = secondary.NetBIOSName
	}
	if primary.Vendor == "" {
		primary.Vendor = secondary.Vendor
	}
	if primary.DeviceType == "" {
		primary.DeviceType = secondary.DeviceType
	}
	if primary.VLANID == 0 {
		primary.VLANID = secondary.VLANID
	}
	if primary.DeviceID == "" {
		primary.DeviceID = secondary.DeviceID
	}

	if secondary.FirstSeen.Before(primary.FirstSeen) {
		primary.FirstSeen = secondary.FirstSeen
	}
	primary.LastSeen = time.Now()
}

// transferConflicts reattaches the secondary's open conflicts to the
// primary, marking them resolved by the merge
func (c *Correlator) transferConflicts(ctx context.Context, primaryID, secondaryID string) error {
	conflicts, err := c.store.ListHostConflicts(ctx, secondaryID, true)
	if err != nil {
		return err
	}

	for i := range conflicts {
		conflict := conflicts[i]
		conflict.HostID = primaryID
		conflict.Resolve(
			fmt.Sprintf("host %s merged into %s", secondaryID, primaryID),
			"correlator",
		)
		if err := c.store.SaveConflict(ctx, &conflict); err != nil {
			return err
		}
	}
	return nil
}
