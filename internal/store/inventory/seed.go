package inventory

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/fleetward/osrecon/internal/model"
)

// CreatePlatform inserts a platform. Used by inventory importers and
// test fixtures; the reconciler itself never creates platforms.
func (s *Store) CreatePlatform(ctx context.Context, name string) (*model.Platform, error) {
	platform := &model.Platform{ID: uuid.New(), Name: name}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO platforms (id, name) VALUES (?, ?)`,
		platform.ID.String(), name,
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create platform")
	}

	return platform, nil
}

// CreateDevice inserts a device and its tags. Used by inventory
// importers and test fixtures.
func (s *Store) CreateDevice(ctx context.Context, device *model.Device) error {
	var platformID any
	if device.Platform != nil {
		platformID = device.Platform.ID.String()
	}

	var primaryIP any
	if device.PrimaryIP != nil {
		primaryIP = device.PrimaryIP.String()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO devices (id, name, tenant_id, tenant_group_id, location_id,
			role_id, rack_id, rack_group_id, manufacturer_id, device_type_id,
			platform_id, status, primary_ip)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		device.ID.String(), device.Name,
		nullableRef(device.Tenant), nullableRef(device.TenantGroup),
		nullableRef(device.Location), nullableRef(device.Role),
		nullableRef(device.Rack), nullableRef(device.RackGroup),
		nullableRef(device.Manufacturer), nullableRef(device.DeviceType),
		platformID, device.Status, primaryIP,
	)
	if err != nil {
		return errors.Wrap(err, "failed to create device")
	}

	for _, tag := range device.Tags {
		if _, err := s.db.ExecContext(ctx,
			`INSERT INTO device_tags (device_id, tag) VALUES (?, ?)`,
			device.ID.String(), tag,
		); err != nil {
			return errors.Wrap(err, "failed to tag device")
		}
	}

	return nil
}

func nullableRef(id uuid.UUID) any {
	if id == uuid.Nil {
		return nil
	}

	return id.String()
}
