package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"netograph/internal/domain"
	"netograph/internal/repository"
)

// ListHosts returns hosts matching the filter, active only unless
// IncludeInactive is set
func (r *Repository) ListHosts(ctx context.Context, filter repository.HostFilter) ([]domain.Host, error) {
	query := `SELECT ` + hostColumns + ` FROM hosts WHERE 1=1`
	var args []any

	if !filter.IncludeInactive {
		query += ` AND is_active = 1`
	}
	if filter.VLANID != 0 {
		query += ` AND vlan_id = ?`
		args = append(args, filter.VLANID)
	}
	query += ` ORDER BY ip_address`

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query hosts: %w", err)
	}
	defer rows.Close()

	var hosts []domain.Host
	for rows.Next() {
		var row hostRow
		if err := rows.Scan(row.scanArgs()...); err != nil {
			return nil, fmt.Errorf("scan host: %w", err)
		}
		host, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		hosts = append(hosts, *host)
	}
	return hosts, rows.Err()
}

// GetHost returns the host with the given id, or nil if absent
func (r *Repository) GetHost(ctx context.Context, id string) (*domain.Host, error) {
	var row hostRow
	err := r.q.QueryRowContext(ctx,
		`SELECT `+hostColumns+` FROM hosts WHERE id = ?`, id,
	).Scan(row.scanArgs()...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query host %s: %w", id, err)
	}
	return row.toDomain()
}

// GetHostByIP returns the active host with the given IP, or nil
func (r *Repository) GetHostByIP(ctx context.Context, ip string) (*domain.Host, error) {
	var row hostRow
	err := r.q.QueryRowContext(ctx,
		`SELECT `+hostColumns+` FROM hosts WHERE ip_address = ? AND is_active = 1 LIMIT 1`, ip,
	).Scan(row.scanArgs()...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query host by ip %s: %w", ip, err)
	}
	return row.toDomain()
}

// CreateHost inserts a new host row
func (r *Repository) CreateHost(ctx context.Context, host *domain.Host) error {
	args, err := hostWriteArgs(host)
	if err != nil {
		return err
	}

	_, err = r.q.ExecContext(ctx, `
		INSERT INTO hosts (id, ip_address, mac_address, hostname, fqdn, netbios_name,
			vendor, os_name, os_version, os_family, os_confidence, device_type,
			vlan_id, tags, source_types, is_active, device_id, first_seen, last_seen)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		append([]any{host.ID}, args...)...)
	if err != nil {
		return fmt.Errorf("insert host %s: %w", host.ID, err)
	}
	return nil
}

// UpdateHost rewrites all mutable columns of an existing host
func (r *Repository) UpdateHost(ctx context.Context, host *domain.Host) error {
	args, err := hostWriteArgs(host)
	if err != nil {
		return err
	}

	result, err := r.q.ExecContext(ctx, `
		UPDATE hosts SET ip_address = ?, mac_address = ?, hostname = ?, fqdn = ?,
			netbios_name = ?, vendor = ?, os_name = ?, os_version = ?, os_family = ?,
			os_confidence = ?, device_type = ?, vlan_id = ?, tags = ?, source_types = ?,
			is_active = ?, device_id = ?, first_seen = ?, last_seen = ?
		WHERE id = ?`,
		append(args, host.ID)...)
	if err != nil {
		return fmt.Errorf("update host %s: %w", host.ID, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("host %s not found", host.ID)
	}
	return nil
}

// DeactivateHost soft-deletes a host
func (r *Repository) DeactivateHost(ctx context.Context, id string) error {
	result, err := r.q.ExecContext(ctx, `UPDATE hosts SET is_active = 0 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deactivate host %s: %w", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("host %s not found", id)
	}
	return nil
}
