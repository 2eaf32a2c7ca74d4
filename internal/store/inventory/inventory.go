// Package inventory is the sqlite-backed device inventory. Devices,
// platforms and tags are written by whatever feeds the inventory; this
// service reads them and owns the software version and association
// tables.
package inventory

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	_ "modernc.org/sqlite" // database/sql driver

	"github.com/fleetward/osrecon/internal/model"
)

const schema = `
CREATE TABLE IF NOT EXISTS platforms (
	id   TEXT PRIMARY KEY,
	name TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS devices (
	id              TEXT PRIMARY KEY,
	name            TEXT NOT NULL,
	tenant_id       TEXT,
	tenant_group_id TEXT,
	location_id     TEXT,
	role_id         TEXT,
	rack_id         TEXT,
	rack_group_id   TEXT,
	manufacturer_id TEXT,
	device_type_id  TEXT,
	platform_id     TEXT REFERENCES platforms(id),
	status          TEXT NOT NULL DEFAULT 'active',
	primary_ip      TEXT
);

CREATE TABLE IF NOT EXISTS device_tags (
	device_id TEXT NOT NULL REFERENCES devices(id) ON DELETE CASCADE,
	tag       TEXT NOT NULL,
	PRIMARY KEY (device_id, tag)
);

CREATE TABLE IF NOT EXISTS software_versions (
	id          TEXT PRIMARY KEY,
	version     TEXT NOT NULL,
	platform_id TEXT NOT NULL REFERENCES platforms(id),
	UNIQUE (version, platform_id)
);

CREATE TABLE IF NOT EXISTS software_associations (
	id          TEXT PRIMARY KEY,
	device_id   TEXT NOT NULL UNIQUE REFERENCES devices(id) ON DELETE CASCADE,
	software_id TEXT NOT NULL REFERENCES software_versions(id) ON DELETE CASCADE
);
`

// Store implements store.Repository on a sqlite database.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the inventory database at path and
// runs the schema migration.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open inventory database")
	}

	// One connection: serializes writers, and keeps :memory: databases
	// from splitting across pool connections.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "failed to migrate inventory schema")
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

const deviceColumns = `d.id, d.name, d.tenant_id, d.tenant_group_id, d.location_id,
	d.role_id, d.rack_id, d.rack_group_id, d.manufacturer_id, d.device_type_id,
	p.id, p.name, d.status, d.primary_ip`

// DevicesByFilter returns the devices matching every supplied constraint.
func (s *Store) DevicesByFilter(ctx context.Context, filter *model.DeviceFilter) ([]model.Device, error) {
	query := `SELECT ` + deviceColumns + `
		FROM devices d LEFT JOIN platforms p ON p.id = d.platform_id`

	where, args := buildWhere(filter)
	if where != "" {
		query += " WHERE " + where
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query devices")
	}
	defer rows.Close()

	var devices []model.Device

	for rows.Next() {
		device, err := scanDevice(rows)
		if err != nil {
			return nil, err
		}

		devices = append(devices, *device)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate devices")
	}

	for i := range devices {
		tags, err := s.deviceTags(ctx, devices[i].ID)
		if err != nil {
			return nil, err
		}

		devices[i].Tags = tags
	}

	return devices, nil
}

// GetOrCreateSoftwareVersion returns the record for the (version,
// platform) pair, creating it when absent. Atomicity comes from the
// unique index plus sqlite's insert-or-ignore; concurrent first-seen
// callers converge on the same row.
func (s *Store) GetOrCreateSoftwareVersion(ctx context.Context, version string, platformID uuid.UUID) (*model.SoftwareVersion, bool, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO software_versions (id, version, platform_id) VALUES (?, ?, ?)
			ON CONFLICT (version, platform_id) DO NOTHING`,
		uuid.NewString(), version, platformID.String(),
	)
	if err != nil {
		return nil, false, errors.Wrap(err, "failed to insert software version")
	}

	inserted, err := res.RowsAffected()
	if err != nil {
		return nil, false, errors.Wrap(err, "failed to read insert result")
	}

	sv := &model.SoftwareVersion{Version: version, PlatformID: platformID}

	var id string

	err = s.db.QueryRowContext(ctx,
		`SELECT id FROM software_versions WHERE version = ? AND platform_id = ?`,
		version, platformID.String(),
	).Scan(&id)
	if err != nil {
		return nil, false, errors.Wrap(err, "failed to read software version")
	}

	sv.ID, err = uuid.Parse(id)
	if err != nil {
		return nil, false, errors.Wrap(err, "invalid software version id")
	}

	return sv, inserted == 1, nil
}

// SoftwareVersionByKey returns the record for the (version, platform)
// pair, or nil when none exists.
func (s *Store) SoftwareVersionByKey(ctx context.Context, version string, platformID uuid.UUID) (*model.SoftwareVersion, error) {
	var id string

	err := s.db.QueryRowContext(ctx,
		`SELECT id FROM software_versions WHERE version = ? AND platform_id = ?`,
		version, platformID.String(),
	).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}

	if err != nil {
		return nil, errors.Wrap(err, "failed to query software version")
	}

	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, errors.Wrap(err, "invalid software version id")
	}

	return &model.SoftwareVersion{ID: parsed, Version: version, PlatformID: platformID}, nil
}

// AssociationByDevice returns the device's association, or nil when the
// device has none.
func (s *Store) AssociationByDevice(ctx context.Context, deviceID uuid.UUID) (*model.SoftwareAssociation, error) {
	var id, softwareID string

	err := s.db.QueryRowContext(ctx,
		`SELECT id, software_id FROM software_associations WHERE device_id = ?`,
		deviceID.String(),
	).Scan(&id, &softwareID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}

	if err != nil {
		return nil, errors.Wrap(err, "failed to query association")
	}

	return parseAssociation(id, deviceID.String(), softwareID)
}

// CreateAssociation records that the device runs the given software. It
// fails if the device already has an association.
func (s *Store) CreateAssociation(ctx context.Context, deviceID, softwareID uuid.UUID) (*model.SoftwareAssociation, error) {
	assoc := &model.SoftwareAssociation{
		ID:         uuid.New(),
		DeviceID:   deviceID,
		SoftwareID: softwareID,
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO software_associations (id, device_id, software_id) VALUES (?, ?, ?)`,
		assoc.ID.String(), deviceID.String(), softwareID.String(),
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create association")
	}

	return assoc, nil
}

// ReplaceAssociation swaps the device's association for a new one in a
// single transaction, so no reader sees the device with zero or two
// associations.
func (s *Store) ReplaceAssociation(ctx context.Context, deviceID, softwareID uuid.UUID) (*model.SoftwareAssociation, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback() // nolint:errcheck // no-op after commit

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM software_associations WHERE device_id = ?`, deviceID.String(),
	); err != nil {
		return nil, errors.Wrap(err, "failed to delete stale association")
	}

	assoc := &model.SoftwareAssociation{
		ID:         uuid.New(),
		DeviceID:   deviceID,
		SoftwareID: softwareID,
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO software_associations (id, device_id, software_id) VALUES (?, ?, ?)`,
		assoc.ID.String(), deviceID.String(), softwareID.String(),
	); err != nil {
		return nil, errors.Wrap(err, "failed to create association")
	}

	if err := tx.Commit(); err != nil {
		return nil, errors.Wrap(err, "failed to commit association replace")
	}

	return assoc, nil
}

func (s *Store) deviceTags(ctx context.Context, deviceID uuid.UUID) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT tag FROM device_tags WHERE device_id = ? ORDER BY tag`, deviceID.String())
	if err != nil {
		return nil, errors.Wrap(err, "failed to query device tags")
	}
	defer rows.Close()

	var tags []string

	for rows.Next() {
		var tag string
		if err := rows.Scan(&tag); err != nil {
			return nil, errors.Wrap(err, "failed to scan device tag")
		}

		tags = append(tags, tag)
	}

	return tags, rows.Err()
}
