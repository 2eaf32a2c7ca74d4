package model

import (
	"net"

	"github.com/google/uuid"
)

const (
	AppName = "osrecon"
)

// Platform identifies a network operating system family (e.g. IOS, EOS,
// Junos). SoftwareVersion records are scoped to a platform.
type Platform struct {
	ID   uuid.UUID
	Name string
}

// nolint:govet // prefer to keep field ordering as is
type Device struct {
	ID   uuid.UUID
	Name string

	// Grouping attributes, uuid.Nil when unset.
	Tenant       uuid.UUID
	TenantGroup  uuid.UUID
	Location     uuid.UUID
	Role         uuid.UUID
	Rack         uuid.UUID
	RackGroup    uuid.UUID
	Manufacturer uuid.UUID
	DeviceType   uuid.UUID

	// Platform is nil when the device has no platform assigned. A device
	// without a platform cannot be probed.
	Platform *Platform

	Status string
	Tags   []string

	// PrimaryIP is the management address, nil when unset.
	PrimaryIP net.IP
}

// HasPlatform reports whether the device has a platform assigned.
func (d *Device) HasPlatform() bool {
	return d.Platform != nil
}

// HasPrimaryIP reports whether the device has a primary management address.
func (d *Device) HasPrimaryIP() bool {
	return d.PrimaryIP != nil
}

func (d *Device) AsLogFields() map[string]interface{} {
	fields := map[string]interface{}{
		"deviceID": d.ID.String(),
		"device":   d.Name,
		"status":   d.Status,
	}

	if d.Platform != nil {
		fields["platform"] = d.Platform.Name
	}

	if d.PrimaryIP != nil {
		fields["address"] = d.PrimaryIP.String()
	}

	return fields
}

// SoftwareVersion is the canonical record for one (version, platform)
// pair. The inventory enforces uniqueness of the pair.
type SoftwareVersion struct {
	ID         uuid.UUID
	Version    string
	PlatformID uuid.UUID
}

// SoftwareAssociation links a device to the software version it was last
// observed running. At most one association exists per device.
type SoftwareAssociation struct {
	ID         uuid.UUID
	DeviceID   uuid.UUID
	SoftwareID uuid.UUID
}

type Args struct {
	LogLevel        string
	ConfigFile      string
	EnableProfiling bool
}
