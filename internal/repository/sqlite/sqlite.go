// Package sqlite implements the identity store on an embedded SQLite
// database (modernc.org/sqlite, no cgo).
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"netograph/internal/repository"

	_ "modernc.org/sqlite"
)

// dbtx is the subset of *sql.DB and *sql.Tx the queries need, so the
// same methods serve both a plain repository and a transaction scope.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Repository implements repository.Store using SQLite
type Repository struct {
	db *sql.DB
	q  dbtx
}

var _ repository.Store = (*Repository)(nil)
var _ repository.TxRunner = (*Repository)(nil)

// New opens (creating if needed) the database at dbPath and migrates it
func New(dbPath string) (*Repository, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)", dbPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	repo := &Repository{db: db, q: db}
	if err := repo.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	return repo, nil
}

// NewMemory opens an in-memory database, used by tests
func NewMemory() (*Repository, error) {
	return New(":memory:")
}

// Close releases the underlying database handle
func (r *Repository) Close() error {
	return r.db.Close()
}

// InTx runs fn against a transaction-scoped store. A non-nil error from
// fn rolls everything back; otherwise the transaction commits.
func (r *Repository) InTx(ctx context.Context, fn func(repository.Store) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	txRepo := &Repository{db: r.db, q: tx}
	if err := fn(txRepo); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("rollback after %v: %w", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (r *Repository) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS hosts (
		id TEXT PRIMARY KEY,
		ip_address TEXT NOT NULL,
		mac_address TEXT,
		hostname TEXT,
		fqdn TEXT,
		netbios_name TEXT,
		vendor TEXT,
		os_name TEXT,
		os_version TEXT,
		os_family TEXT,
		os_confidence REAL NOT NULL DEFAULT 0,
		device_type TEXT,
		vlan_id INTEGER NOT NULL DEFAULT 0,
		tags TEXT,
		source_types TEXT,
		is_active INTEGER NOT NULL DEFAULT 1,
		device_id TEXT,
		first_seen DATETIME NOT NULL,
		last_seen DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS ports (
		id TEXT PRIMARY KEY,
		host_id TEXT NOT NULL REFERENCES hosts(id) ON DELETE CASCADE,
		number INTEGER NOT NULL,
		protocol TEXT NOT NULL DEFAULT 'tcp',
		state TEXT NOT NULL DEFAULT 'open',
		service TEXT,
		banner TEXT,
		UNIQUE (host_id, number, protocol)
	);

	CREATE TABLE IF NOT EXISTS connections (
		id TEXT PRIMARY KEY,
		host_id TEXT,
		local_ip TEXT NOT NULL,
		local_port INTEGER NOT NULL,
		remote_ip TEXT NOT NULL,
		remote_port INTEGER NOT NULL,
		protocol TEXT NOT NULL DEFAULT 'tcp',
		state TEXT,
		pid INTEGER,
		process_name TEXT
	);

	CREATE TABLE IF NOT EXISTS arp_entries (
		id TEXT PRIMARY KEY,
		ip_address TEXT NOT NULL,
		mac_address TEXT NOT NULL,
		interface TEXT,
		entry_type TEXT,
		vendor TEXT,
		source TEXT,
		seen_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS routes (
		id TEXT PRIMARY KEY,
		destination TEXT NOT NULL,
		gateway TEXT NOT NULL,
		interface TEXT,
		metric INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS conflicts (
		id TEXT PRIMARY KEY,
		host_id TEXT NOT NULL,
		conflict_type TEXT NOT NULL,
		field TEXT NOT NULL,
		value_list TEXT,
		resolved INTEGER NOT NULL DEFAULT 0,
		resolution TEXT,
		resolved_by TEXT,
		created_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS device_identities (
		id TEXT PRIMARY KEY,
		name TEXT,
		mac_addresses TEXT,
		ip_addresses TEXT,
		device_type TEXT,
		source TEXT,
		is_active INTEGER NOT NULL DEFAULT 1,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS vlans (
		vlan_id INTEGER PRIMARY KEY,
		name TEXT,
		subnet_cidrs TEXT,
		color TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_hosts_ip ON hosts(ip_address);
	CREATE INDEX IF NOT EXISTS idx_hosts_mac ON hosts(mac_address);
	CREATE INDEX IF NOT EXISTS idx_hosts_active ON hosts(is_active);
	CREATE INDEX IF NOT EXISTS idx_ports_host ON ports(host_id);
	CREATE INDEX IF NOT EXISTS idx_connections_host ON connections(host_id);
	CREATE INDEX IF NOT EXISTS idx_conflicts_host ON conflicts(host_id);
	CREATE INDEX IF NOT EXISTS idx_arp_ip ON arp_entries(ip_address);
	`

	_, err := r.db.Exec(schema)
	return err
}
