package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"netograph/internal/domain"
)

// UpsertPort inserts a port observation, replacing any previous row for
// the same (host, number, protocol)
func (r *Repository) UpsertPort(ctx context.Context, port *domain.Port) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO ports (id, host_id, number, protocol, state, service, banner)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (host_id, number, protocol) DO UPDATE SET
			state = excluded.state,
			service = excluded.service,
			banner = excluded.banner`,
		port.ID, port.HostID, port.Number, port.Protocol, port.State,
		stringToNull(port.Service), stringToNull(port.Banner))
	if err != nil {
		return fmt.Errorf("upsert port %d/%s for %s: %w", port.Number, port.Protocol, port.HostID, err)
	}
	return nil
}

// ReassignPorts moves all port rows from one host to another, used when
// a secondary host is merged into a primary
func (r *Repository) ReassignPorts(ctx context.Context, fromHostID, toHostID string) error {
	// A port the primary already knows would collide on the unique key;
	// drop the duplicate rather than carry two observations.
	_, err := r.q.ExecContext(ctx, `
		DELETE FROM ports WHERE host_id = ? AND EXISTS (
			SELECT 1 FROM ports p2
			WHERE p2.host_id = ? AND p2.number = ports.number AND p2.protocol = ports.protocol
		)`, fromHostID, toHostID)
	if err != nil {
		return fmt.Errorf("drop duplicate ports: %w", err)
	}

	_, err = r.q.ExecContext(ctx, `UPDATE ports SET host_id = ? WHERE host_id = ?`, toHostID, fromHostID)
	if err != nil {
		return fmt.Errorf("reassign ports %s -> %s: %w", fromHostID, toHostID, err)
	}
	return nil
}

// OpenPortCounts returns open-port counts for all hosts in one grouped
// query. Topology synthesis must use this instead of per-host lookups.
func (r *Repository) OpenPortCounts(ctx context.Context) (map[string]int, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT host_id, COUNT(*) FROM ports
		WHERE state = 'open'
		GROUP BY host_id`)
	if err != nil {
		return nil, fmt.Errorf("query port counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var hostID string
		var count int
		if err := rows.Scan(&hostID, &count); err != nil {
			return nil, fmt.Errorf("scan port count: %w", err)
		}
		counts[hostID] = count
	}
	return counts, rows.Err()
}

// InsertConnection records an observed socket
func (r *Repository) InsertConnection(ctx context.Context, conn *domain.Connection) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO connections (id, host_id, local_ip, local_port, remote_ip,
			remote_port, protocol, state, pid, process_name)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		conn.ID, stringToNull(conn.HostID), conn.LocalIP, conn.LocalPort,
		conn.RemoteIP, conn.RemotePort, conn.Protocol, stringToNull(conn.State),
		conn.PID, stringToNull(conn.ProcessName))
	if err != nil {
		return fmt.Errorf("insert connection: %w", err)
	}
	return nil
}

// ListConnections returns all recorded connections
func (r *Repository) ListConnections(ctx context.Context) ([]domain.Connection, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT id, host_id, local_ip, local_port, remote_ip, remote_port,
			protocol, state, pid, process_name
		FROM connections`)
	if err != nil {
		return nil, fmt.Errorf("query connections: %w", err)
	}
	defer rows.Close()

	var conns []domain.Connection
	for rows.Next() {
		var conn domain.Connection
		var hostID, state, process sql.NullString
		var pid sql.NullInt64
		if err := rows.Scan(&conn.ID, &hostID, &conn.LocalIP, &conn.LocalPort,
			&conn.RemoteIP, &conn.RemotePort, &conn.Protocol, &state, &pid, &process); err != nil {
			return nil, fmt.Errorf("scan connection: %w", err)
		}
		conn.HostID = nullToString(hostID)
		conn.State = nullToString(state)
		conn.PID = nullToInt(pid)
		conn.ProcessName = nullToString(process)
		conns = append(conns, conn)
	}
	return conns, rows.Err()
}

// ReassignConnections moves connection rows between hosts during merge
func (r *Repository) ReassignConnections(ctx context.Context, fromHostID, toHostID string) error {
	_, err := r.q.ExecContext(ctx, `UPDATE connections SET host_id = ? WHERE host_id = ?`, toHostID, fromHostID)
	if err != nil {
		return fmt.Errorf("reassign connections %s -> %s: %w", fromHostID, toHostID, err)
	}
	return nil
}

// InsertArpEntry records one ARP/neighbor table row
func (r *Repository) InsertArpEntry(ctx context.Context, entry *domain.ArpEntry) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO arp_entries (id, ip_address, mac_address, interface,
			entry_type, vendor, source, seen_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.IPAddress, entry.MACAddress, stringToNull(entry.Interface),
		stringToNull(entry.EntryType), stringToNull(entry.Vendor),
		stringToNull(entry.Source), entry.SeenAt)
	if err != nil {
		return fmt.Errorf("insert arp entry: %w", err)
	}
	return nil
}

// ListArpEntries returns all recorded ARP entries
func (r *Repository) ListArpEntries(ctx context.Context) ([]domain.ArpEntry, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT id, ip_address, mac_address, interface, entry_type, vendor, source, seen_at
		FROM arp_entries`)
	if err != nil {
		return nil, fmt.Errorf("query arp entries: %w", err)
	}
	defer rows.Close()

	var entries []domain.ArpEntry
	for rows.Next() {
		var entry domain.ArpEntry
		var iface, entryType, vendor, source sql.NullString
		if err := rows.Scan(&entry.ID, &entry.IPAddress, &entry.MACAddress,
			&iface, &entryType, &vendor, &source, &entry.SeenAt); err != nil {
			return nil, fmt.Errorf("scan arp entry: %w", err)
		}
		entry.Interface = nullToString(iface)
		entry.EntryType = nullToString(entryType)
		entry.Vendor = nullToString(vendor)
		entry.Source = nullToString(source)
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// ListRouteHops returns routing table rows, optionally filtered by
// destination
func (r *Repository) ListRouteHops(ctx context.Context, destination string) ([]domain.RouteHop, error) {
	query := `SELECT id, destination, gateway, interface, metric FROM routes`
	var args []any
	if destination != "" {
		query += ` WHERE destination = ?`
		args = append(args, destination)
	}

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query routes: %w", err)
	}
	defer rows.Close()

	var hops []domain.RouteHop
	for rows.Next() {
		var hop domain.RouteHop
		var iface sql.NullString
		if err := rows.Scan(&hop.ID, &hop.Destination, &hop.Gateway, &iface, &hop.Metric); err != nil {
			return nil, fmt.Errorf("scan route: %w", err)
		}
		hop.Interface = nullToString(iface)
		hops = append(hops, hop)
	}
	return hops, rows.Err()
}
