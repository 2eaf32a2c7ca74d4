package inventory

import (
	"database/sql"
	"net"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/fleetward/osrecon/internal/model"
)

// inClause renders an "col IN (?, ...)" clause and its arguments.
func inClause(col string, values []string) (string, []any) {
	args := make([]any, 0, len(values))
	for _, v := range values {
		args = append(args, v)
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(values)), ", ")

	return col + " IN (" + placeholders + ")", args
}

func uuidStrings(ids []uuid.UUID) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, id.String())
	}

	return out
}

// buildWhere translates a device filter into a WHERE clause. Reference
// criteria constrain id columns, label criteria constrain names.
func buildWhere(filter *model.DeviceFilter) (string, []any) {
	if filter == nil {
		return "", nil
	}

	var (
		clauses []string
		args    []any
	)

	add := func(col string, values []string) {
		if len(values) == 0 {
			return
		}

		clause, clauseArgs := inClause(col, values)
		clauses = append(clauses, clause)
		args = append(args, clauseArgs...)
	}

	add("d.id", uuidStrings(filter.IDs))
	add("d.tenant_group_id", uuidStrings(filter.TenantGroups))
	add("d.tenant_id", uuidStrings(filter.Tenants))
	add("d.location_id", uuidStrings(filter.Locations))
	add("d.rack_group_id", uuidStrings(filter.RackGroups))
	add("d.rack_id", uuidStrings(filter.Racks))
	add("d.role_id", uuidStrings(filter.Roles))
	add("d.manufacturer_id", uuidStrings(filter.Manufacturers))
	add("d.platform_id", uuidStrings(filter.Platforms))
	add("d.device_type_id", uuidStrings(filter.DeviceTypes))
	add("d.status", filter.Statuses)

	if len(filter.Tags) > 0 {
		clause, clauseArgs := inClause("t.tag", filter.Tags)
		clauses = append(clauses,
			"EXISTS (SELECT 1 FROM device_tags t WHERE t.device_id = d.id AND "+clause+")")
		args = append(args, clauseArgs...)
	}

	return strings.Join(clauses, " AND "), args
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDevice(row rowScanner) (*model.Device, error) {
	var (
		id, name, status                          string
		tenant, tenantGroup, location, role       sql.NullString
		rack, rackGroup, manufacturer, deviceType sql.NullString
		platformID, platformName, primaryIP       sql.NullString
	)

	err := row.Scan(&id, &name, &tenant, &tenantGroup, &location, &role,
		&rack, &rackGroup, &manufacturer, &deviceType,
		&platformID, &platformName, &status, &primaryIP)
	if err != nil {
		return nil, errors.Wrap(err, "failed to scan device")
	}

	device := &model.Device{Name: name, Status: status}

	device.ID, err = uuid.Parse(id)
	if err != nil {
		return nil, errors.Wrap(err, "invalid device id")
	}

	for _, ref := range []struct {
		dst *uuid.UUID
		src sql.NullString
	}{
		{&device.Tenant, tenant},
		{&device.TenantGroup, tenantGroup},
		{&device.Location, location},
		{&device.Role, role},
		{&device.Rack, rack},
		{&device.RackGroup, rackGroup},
		{&device.Manufacturer, manufacturer},
		{&device.DeviceType, deviceType},
	} {
		if !ref.src.Valid {
			continue
		}

		*ref.dst, err = uuid.Parse(ref.src.String)
		if err != nil {
			return nil, errors.Wrap(err, "invalid device reference id")
		}
	}

	if platformID.Valid {
		pid, err := uuid.Parse(platformID.String)
		if err != nil {
			return nil, errors.Wrap(err, "invalid platform id")
		}

		device.Platform = &model.Platform{ID: pid, Name: platformName.String}
	}

	if primaryIP.Valid && primaryIP.String != "" {
		device.PrimaryIP = net.ParseIP(primaryIP.String)
	}

	return device, nil
}

func parseAssociation(id, deviceID, softwareID string) (*model.SoftwareAssociation, error) {
	assoc := &model.SoftwareAssociation{}

	var err error

	if assoc.ID, err = uuid.Parse(id); err != nil {
		return nil, errors.Wrap(err, "invalid association id")
	}

	if assoc.DeviceID, err = uuid.Parse(deviceID); err != nil {
		return nil, errors.Wrap(err, "invalid association device id")
	}

	if assoc.SoftwareID, err = uuid.Parse(softwareID); err != nil {
		return nil, errors.Wrap(err, "invalid association software id")
	}

	return assoc, nil
}
