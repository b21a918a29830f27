package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"netograph/internal/domain"
)

// CreateConflict inserts a new conflict row
func (r *Repository) CreateConflict(ctx context.Context, conflict *domain.Conflict) error {
	valuesJSON, err := marshalToNull(conflict.Values)
	if err != nil {
		return fmt.Errorf("marshal conflict values: %w", err)
	}

	_, err = r.q.ExecContext(ctx, `
		INSERT INTO conflicts (id, host_id, conflict_type, field, value_list,
			resolved, resolution, resolved_by, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		conflict.ID, conflict.HostID, string(conflict.Type), conflict.Field,
		valuesJSON, conflict.Resolved, stringToNull(conflict.Resolution),
		stringToNull(conflict.ResolvedBy), conflict.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert conflict: %w", err)
	}
	return nil
}

// SaveConflict rewrites an existing conflict (resolution, reassignment)
func (r *Repository) SaveConflict(ctx context.Context, conflict *domain.Conflict) error {
	valuesJSON, err := marshalToNull(conflict.Values)
	if err != nil {
		return fmt.Errorf("marshal conflict values: %w", err)
	}

	result, err := r.q.ExecContext(ctx, `
		UPDATE conflicts SET host_id = ?, conflict_type = ?, field = ?,
			value_list = ?, resolved = ?, resolution = ?, resolved_by = ?
		WHERE id = ?`,
		conflict.HostID, string(conflict.Type), conflict.Field, valuesJSON,
		conflict.Resolved, stringToNull(conflict.Resolution),
		stringToNull(conflict.ResolvedBy), conflict.ID)
	if err != nil {
		return fmt.Errorf("update conflict %s: %w", conflict.ID, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("conflict %s not found", conflict.ID)
	}
	return nil
}

// GetConflict returns one conflict by id, or nil if absent
func (r *Repository) GetConflict(ctx context.Context, id string) (*domain.Conflict, error) {
	var row conflictRow
	err := r.q.QueryRowContext(ctx,
		`SELECT `+conflictColumns+` FROM conflicts WHERE id = ?`, id,
	).Scan(row.scanArgs()...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query conflict %s: %w", id, err)
	}
	return row.toDomain()
}

// ListConflicts returns all conflicts, optionally unresolved only
func (r *Repository) ListConflicts(ctx context.Context, unresolvedOnly bool) ([]domain.Conflict, error) {
	query := `SELECT ` + conflictColumns + ` FROM conflicts`
	if unresolvedOnly {
		query += ` WHERE resolved = 0`
	}
	query += ` ORDER BY created_at`
	return r.queryConflicts(ctx, query)
}

// ListHostConflicts returns conflicts attached to one host
func (r *Repository) ListHostConflicts(ctx context.Context, hostID string, unresolvedOnly bool) ([]domain.Conflict, error) {
	query := `SELECT ` + conflictColumns + ` FROM conflicts WHERE host_id = ?`
	if unresolvedOnly {
		query += ` AND resolved = 0`
	}
	return r.queryConflicts(ctx, query, hostID)
}

func (r *Repository) queryConflicts(ctx context.Context, query string, args ...any) ([]domain.Conflict, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query conflicts: %w", err)
	}
	defer rows.Close()

	var conflicts []domain.Conflict
	for rows.Next() {
		var row conflictRow
		if err := rows.Scan(row.scanArgs()...); err != nil {
			return nil, fmt.Errorf("scan conflict: %w", err)
		}
		conflict, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		conflicts = append(conflicts, *conflict)
	}
	return conflicts, rows.Err()
}

// CreateDeviceIdentity inserts a new device identity
func (r *Repository) CreateDeviceIdentity(ctx context.Context, identity *domain.DeviceIdentity) error {
	macsJSON, err := marshalToNull(identity.MACAddresses)
	if err != nil {
		return fmt.Errorf("marshal mac_addresses: %w", err)
	}
	ipsJSON, err := marshalToNull(identity.IPAddresses)
	if err != nil {
		return fmt.Errorf("marshal ip_addresses: %w", err)
	}

	_, err = r.q.ExecContext(ctx, `
		INSERT INTO device_identities (id, name, mac_addresses, ip_addresses,
			device_type, source, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		identity.ID, stringToNull(identity.Name), macsJSON, ipsJSON,
		stringToNull(string(identity.DeviceType)), stringToNull(identity.Source),
		identity.IsActive, identity.CreatedAt, identity.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert device identity: %w", err)
	}
	return nil
}

// UpdateDeviceIdentity rewrites an existing device identity
func (r *Repository) UpdateDeviceIdentity(ctx context.Context, identity *domain.DeviceIdentity) error {
	macsJSON, err := marshalToNull(identity.MACAddresses)
	if err != nil {
		return fmt.Errorf("marshal mac_addresses: %w", err)
	}
	ipsJSON, err := marshalToNull(identity.IPAddresses)
	if err != nil {
		return fmt.Errorf("marshal ip_addresses: %w", err)
	}

	result, err := r.q.ExecContext(ctx, `
		UPDATE device_identities SET name = ?, mac_addresses = ?, ip_addresses = ?,
			device_type = ?, source = ?, is_active = ?, updated_at = ?
		WHERE id = ?`,
		stringToNull(identity.Name), macsJSON, ipsJSON,
		stringToNull(string(identity.DeviceType)), stringToNull(identity.Source),
		identity.IsActive, identity.UpdatedAt, identity.ID)
	if err != nil {
		return fmt.Errorf("update device identity %s: %w", identity.ID, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("device identity %s not found", identity.ID)
	}
	return nil
}

// GetDeviceIdentityByMAC returns the active identity spanning the given
// MAC, or nil. MACs are stored lower-cased.
func (r *Repository) GetDeviceIdentityByMAC(ctx context.Context, mac string) (*domain.DeviceIdentity, error) {
	// mac_addresses is a small JSON array; LIKE on the quoted value is
	// sufficient at identity-table scale.
	var row identityRow
	err := r.q.QueryRowContext(ctx,
		`SELECT `+identityColumns+` FROM device_identities
		WHERE is_active = 1 AND mac_addresses LIKE ? LIMIT 1`,
		`%"`+mac+`"%`,
	).Scan(row.scanArgs()...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query device identity by mac %s: %w", mac, err)
	}
	return row.toDomain()
}

// ListDeviceIdentities returns identities, optionally active only
func (r *Repository) ListDeviceIdentities(ctx context.Context, activeOnly bool) ([]domain.DeviceIdentity, error) {
	query := `SELECT ` + identityColumns + ` FROM device_identities`
	if activeOnly {
		query += ` WHERE is_active = 1`
	}

	rows, err := r.q.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query device identities: %w", err)
	}
	defer rows.Close()

	var identities []domain.DeviceIdentity
	for rows.Next() {
		var row identityRow
		if err := rows.Scan(row.scanArgs()...); err != nil {
			return nil, fmt.Errorf("scan device identity: %w", err)
		}
		identity, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		identities = append(identities, *identity)
	}
	return identities, rows.Err()
}

// UpsertVLAN inserts or replaces one VLAN definition
func (r *Repository) UpsertVLAN(ctx context.Context, vlan *domain.VLANConfig) error {
	cidrsJSON, err := marshalToNull(vlan.SubnetCIDRs)
	if err != nil {
		return fmt.Errorf("marshal subnet_cidrs: %w", err)
	}

	_, err = r.q.ExecContext(ctx, `
		INSERT INTO vlans (vlan_id, name, subnet_cidrs, color)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (vlan_id) DO UPDATE SET
			name = excluded.name,
			subnet_cidrs = excluded.subnet_cidrs,
			color = excluded.color`,
		vlan.VLANID, stringToNull(vlan.Name), cidrsJSON, stringToNull(vlan.Color))
	if err != nil {
		return fmt.Errorf("upsert vlan %d: %w", vlan.VLANID, err)
	}
	return nil
}

// ListVLANs returns all VLAN definitions ordered by id
func (r *Repository) ListVLANs(ctx context.Context) ([]domain.VLANConfig, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT vlan_id, name, subnet_cidrs, color FROM vlans ORDER BY vlan_id`)
	if err != nil {
		return nil, fmt.Errorf("query vlans: %w", err)
	}
	defer rows.Close()

	var vlans []domain.VLANConfig
	for rows.Next() {
		var vlan domain.VLANConfig
		var name, cidrsJSON, color sql.NullString
		if err := rows.Scan(&vlan.VLANID, &name, &cidrsJSON, &color); err != nil {
			return nil, fmt.Errorf("scan vlan: %w", err)
		}
		vlan.Name = nullToString(name)
		vlan.Color = nullToString(color)
		if err := unmarshalJSONField(cidrsJSON, &vlan.SubnetCIDRs); err != nil {
			return nil, fmt.Errorf("unmarshal subnet_cidrs: %w", err)
		}
		vlans = append(vlans, vlan)
	}
	return vlans, rows.Err()
}
