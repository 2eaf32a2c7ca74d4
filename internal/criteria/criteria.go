// Package criteria turns the optional device selection criteria into a
// concrete, validated device set. Criteria combine with AND across
// categories and OR within one; no criterion is mandatory, and an empty
// set selects the whole fleet.
package criteria

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/fleetward/osrecon/internal/model"
)

// Input holds raw criterion values as received from the CLI or an API
// caller, before identity validation.
type Input struct {
	TenantGroups  []string
	Tenants       []string
	Locations     []string
	RackGroups    []string
	Racks         []string
	Roles         []string
	Manufacturers []string
	Platforms     []string
	DeviceTypes   []string
	Devices       []string
	Tags          []string
	Statuses      []string
}

// Parse validates raw criteria into a SelectionCriteria value. Any
// malformed identity is rejected with ErrInvalidCriteria before a query
// is attempted.
func Parse(in *Input) (*model.SelectionCriteria, error) {
	if in == nil {
		return &model.SelectionCriteria{}, nil
	}

	c := &model.SelectionCriteria{
		Tags:     in.Tags,
		Statuses: in.Statuses,
	}

	for _, field := range []struct {
		name string
		raw  []string
		dst  *[]uuid.UUID
	}{
		{"tenant-group", in.TenantGroups, &c.TenantGroups},
		{"tenant", in.Tenants, &c.Tenants},
		{"location", in.Locations, &c.Locations},
		{"rack-group", in.RackGroups, &c.RackGroups},
		{"rack", in.Racks, &c.Racks},
		{"role", in.Roles, &c.Roles},
		{"manufacturer", in.Manufacturers, &c.Manufacturers},
		{"platform", in.Platforms, &c.Platforms},
		{"device-type", in.DeviceTypes, &c.DeviceTypes},
		{"device", in.Devices, &c.Devices},
	} {
		ids, err := parseIDs(field.raw)
		if err != nil {
			return nil, errors.Wrapf(model.ErrInvalidCriteria, "%s: %s", field.name, err.Error())
		}

		*field.dst = ids
	}

	return c, nil
}

func parseIDs(raw []string) ([]uuid.UUID, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	ids := make([]uuid.UUID, 0, len(raw))

	for _, r := range raw {
		id, err := uuid.Parse(r)
		if err != nil {
			return nil, errors.Errorf("%q is not a valid identity", r)
		}

		ids = append(ids, id)
	}

	return ids, nil
}

// Filter translates the criteria into the constraint set the device
// store understands. Reference criteria become identity constraints,
// label criteria become name constraints, and the device criterion is
// an exact-identity constraint.
func Filter(c *model.SelectionCriteria) *model.DeviceFilter {
	if c == nil {
		return &model.DeviceFilter{}
	}

	return &model.DeviceFilter{
		IDs:           c.Devices,
		TenantGroups:  c.TenantGroups,
		Tenants:       c.Tenants,
		Locations:     c.Locations,
		RackGroups:    c.RackGroups,
		Racks:         c.Racks,
		Roles:         c.Roles,
		Manufacturers: c.Manufacturers,
		Platforms:     c.Platforms,
		DeviceTypes:   c.DeviceTypes,
		Tags:          c.Tags,
		Statuses:      c.Statuses,
	}
}

// DeviceLister is the read-only device query capability of the store.
type DeviceLister interface {
	DevicesByFilter(ctx context.Context, filter *model.DeviceFilter) ([]model.Device, error)
}

// Select resolves the criteria to the concrete device set.
func Select(ctx context.Context, lister DeviceLister, c *model.SelectionCriteria) ([]model.Device, error) {
	devices, err := lister.DevicesByFilter(ctx, Filter(c))
	if err != nil {
		return nil, errors.Wrap(err, "device selection failed")
	}

	return devices, nil
}
