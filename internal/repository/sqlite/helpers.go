package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"netograph/internal/domain"
)

// Null conversion helpers

func nullToString(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}

func stringToNull(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullToInt(ni sql.NullInt64) int {
	if ni.Valid {
		return int(ni.Int64)
	}
	return 0
}

// JSON marshaling helpers

func unmarshalJSONField(ns sql.NullString, target any) error {
	if !ns.Valid || ns.String == "" {
		return nil
	}
	return json.Unmarshal([]byte(ns.String), target)
}

// marshalToNull marshals v to a nullable JSON string; nil and empty
// slices store as NULL rather than "[]"
func marshalToNull(v any) (sql.NullString, error) {
	if v == nil {
		return sql.NullString{}, nil
	}
	if s, ok := v.([]string); ok && len(s) == 0 {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

// Host row scanner
//
// Column order must match hostColumns exactly; scanArgs and the SELECT
// list are kept adjacent so additions stay in sync.

type hostRow struct {
	ID              string
	IPAddress       string
	MACAddress      sql.NullString
	Hostname        sql.NullString
	FQDN            sql.NullString
	NetBIOSName     sql.NullString
	Vendor          sql.NullString
	OSName          sql.NullString
	OSVersion       sql.NullString
	OSFamily        sql.NullString
	OSConfidence    float64
	DeviceType      sql.NullString
	VLANID          sql.NullInt64
	TagsJSON        sql.NullString
	SourceTypesJSON sql.NullString
	IsActive        bool
	DeviceID        sql.NullString
	FirstSeen       time.Time
	LastSeen        time.Time
}

const hostColumns = `id, ip_address, mac_address, hostname, fqdn, netbios_name,
	vendor, os_name, os_version, os_family, os_confidence, device_type,
	vlan_id, tags, source_types, is_active, device_id, first_seen, last_seen`

func (r *hostRow) scanArgs() []any {
	return []any{
		&r.ID,
		&r.IPAddress,
		&r.MACAddress,
		&r.Hostname,
		&r.FQDN,
		&r.NetBIOSName,
		&r.Vendor,
		&r.OSName,
		&r.OSVersion,
		&r.OSFamily,
		&r.OSConfidence,
		&r.DeviceType,
		&r.VLANID,
		&r.TagsJSON,
		&r.SourceTypesJSON,
		&r.IsActive,
		&r.DeviceID,
		&r.FirstSeen,
		&r.LastSeen,
	}
}

func (r *hostRow) toDomain() (*domain.Host, error) {
	host := &domain.Host{
		ID:           r.ID,
		IPAddress:    r.IPAddress,
		MACAddress:   nullToString(r.MACAddress),
		Hostname:     nullToString(r.Hostname),
		FQDN:         nullToString(r.FQDN),
		NetBIOSName:  nullToString(r.NetBIOSName),
		Vendor:       nullToString(r.Vendor),
		OSName:       nullToString(r.OSName),
		OSVersion:    nullToString(r.OSVersion),
		OSFamily:     nullToString(r.OSFamily),
		OSConfidence: r.OSConfidence,
		DeviceType:   domain.DeviceType(nullToString(r.DeviceType)),
		VLANID:       nullToInt(r.VLANID),
		IsActive:     r.IsActive,
		DeviceID:     nullToString(r.DeviceID),
		FirstSeen:    r.FirstSeen,
		LastSeen:     r.LastSeen,
	}

	if err := unmarshalJSONField(r.TagsJSON, &host.Tags); err != nil {
		return nil, fmt.Errorf("unmarshal tags: %w", err)
	}
	if err := unmarshalJSONField(r.SourceTypesJSON, &host.SourceTypes); err != nil {
		return nil, fmt.Errorf("unmarshal source_types: %w", err)
	}

	return host, nil
}

// hostWriteArgs prepares arguments for host INSERT/UPDATE in the same
// order as hostColumns minus the leading id
func hostWriteArgs(host *domain.Host) ([]any, error) {
	tagsJSON, err := marshalToNull(host.Tags)
	if err != nil {
		return nil, fmt.Errorf("marshal tags: %w", err)
	}
	sourcesJSON, err := marshalToNull(host.SourceTypes)
	if err != nil {
		return nil, fmt.Errorf("marshal source_types: %w", err)
	}

	return []any{
		host.IPAddress,
		stringToNull(host.MACAddress),
		stringToNull(host.Hostname),
		stringToNull(host.FQDN),
		stringToNull(host.NetBIOSName),
		stringToNull(host.Vendor),
		stringToNull(host.OSName),
		stringToNull(host.OSVersion),
		stringToNull(host.OSFamily),
		host.OSConfidence,
		stringToNull(string(host.DeviceType)),
		host.VLANID,
		tagsJSON,
		sourcesJSON,
		host.IsActive,
		stringToNull(host.DeviceID),
		host.FirstSeen,
		host.LastSeen,
	}, nil
}

// Conflict row scanner

type conflictRow struct {
	ID         string
	HostID     string
	Type       string
	Field      string
	ValuesJSON sql.NullString
	Resolved   bool
	Resolution sql.NullString
	ResolvedBy sql.NullString
	CreatedAt  time.Time
}

const conflictColumns = `id, host_id, conflict_type, field, value_list,
	resolved, resolution, resolved_by, created_at`

func (r *conflictRow) scanArgs() []any {
	return []any{
		&r.ID,
		&r.HostID,
		&r.Type,
		&r.Field,
		&r.ValuesJSON,
		&r.Resolved,
		&r.Resolution,
		&r.ResolvedBy,
		&r.CreatedAt,
	}
}

func (r *conflictRow) toDomain() (*domain.Conflict, error) {
	conflict := &domain.Conflict{
		ID:         r.ID,
		HostID:     r.HostID,
		Type:       domain.ConflictType(r.Type),
		Field:      r.Field,
		Resolved:   r.Resolved,
		Resolution: nullToString(r.Resolution),
		ResolvedBy: nullToString(r.ResolvedBy),
		CreatedAt:  r.CreatedAt,
	}

	if err := unmarshalJSONField(r.ValuesJSON, &conflict.Values); err != nil {
		return nil, fmt.Errorf("unmarshal conflict values: %w", err)
	}

	return conflict, nil
}

// Device identity row scanner

type identityRow struct {
	ID        string
	Name      sql.NullString
	MACsJSON  sql.NullString
	IPsJSON   sql.NullString
	Type      sql.NullString
	Source    sql.NullString
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

const identityColumns = `id, name, mac_addresses, ip_addresses, device_type,
	source, is_active, created_at, updated_at`

func (r *identityRow) scanArgs() []any {
	return []any{
		&r.ID,
		&r.Name,
		&r.MACsJSON,
		&r.IPsJSON,
		&r.Type,
		&r.Source,
		&r.IsActive,
		&r.CreatedAt,
		&r.UpdatedAt,
	}
}

func (r *identityRow) toDomain() (*domain.DeviceIdentity, error) {
	identity := &domain.DeviceIdentity{
		ID:         r.ID,
		Name:       nullToString(r.Name),
		DeviceType: domain.DeviceType(nullToString(r.Type)),
		Source:     nullToString(r.Source),
		IsActive:   r.IsActive,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}

	if err := unmarshalJSONField(r.MACsJSON, &identity.MACAddresses); err != nil {
		return nil, fmt.Errorf("unmarshal mac_addresses: %w", err)
	}
	if err := unmarshalJSONField(r.IPsJSON, &identity.IPAddresses); err != nil {
		return nil, fmt.Errorf("unmarshal ip_addresses: %w", err)
	}

	return identity, nil
}
