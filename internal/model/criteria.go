package model

import "github.com/google/uuid"

// SelectionCriteria narrows the fleet to the devices a reconciliation run
// should cover. Every field is optional; criteria combine with AND across
// fields and OR within a field. The zero value selects the whole fleet.
//
// Reference criteria match by entity identity, label criteria (Tags,
// Statuses) match by name.
type SelectionCriteria struct {
	TenantGroups  []uuid.UUID
	Tenants       []uuid.UUID
	Locations     []uuid.UUID
	RackGroups    []uuid.UUID
	Racks         []uuid.UUID
	Roles         []uuid.UUID
	Manufacturers []uuid.UUID
	Platforms     []uuid.UUID
	DeviceTypes   []uuid.UUID

	// Devices selects by device identity directly.
	Devices []uuid.UUID

	Tags     []string
	Statuses []string
}

// DeviceFilter is the concrete constraint set a criteria selection
// translates into. Empty slices impose no constraint; a populated slice
// is an "is one of" constraint. Constraints combine with AND.
type DeviceFilter struct {
	IDs           []uuid.UUID
	TenantGroups  []uuid.UUID
	Tenants       []uuid.UUID
	Locations     []uuid.UUID
	RackGroups    []uuid.UUID
	Racks         []uuid.UUID
	Roles         []uuid.UUID
	Manufacturers []uuid.UUID
	Platforms     []uuid.UUID
	DeviceTypes   []uuid.UUID
	Tags          []string
	Statuses      []string
}

// IsEmpty reports whether no criterion was supplied.
func (c *SelectionCriteria) IsEmpty() bool {
	return len(c.TenantGroups) == 0 &&
		len(c.Tenants) == 0 &&
		len(c.Locations) == 0 &&
		len(c.RackGroups) == 0 &&
		len(c.Racks) == 0 &&
		len(c.Roles) == 0 &&
		len(c.Manufacturers) == 0 &&
		len(c.Platforms) == 0 &&
		len(c.DeviceTypes) == 0 &&
		len(c.Devices) == 0 &&
		len(c.Tags) == 0 &&
		len(c.Statuses) == 0
}
