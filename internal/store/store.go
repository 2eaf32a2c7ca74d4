package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/fleetward/osrecon/internal/config"
	"github.com/fleetward/osrecon/internal/model"
	"github.com/fleetward/osrecon/internal/store/inventory"
)

// Repository abstracts the inventory backing the reconciler: device
// reads, the software version registry primitive, and association
// mutations.
type Repository interface {
	// DevicesByFilter returns the devices matching every constraint in
	// the filter. A nil or empty filter returns the whole fleet.
	DevicesByFilter(ctx context.Context, filter *model.DeviceFilter) ([]model.Device, error)

	// GetOrCreateSoftwareVersion returns the record for the (version,
	// platform) pair, creating it when absent. The second return value
	// reports whether a record was created by this call. Creation is
	// atomic with respect to concurrent callers for the same pair.
	GetOrCreateSoftwareVersion(ctx context.Context, version string, platformID uuid.UUID) (*model.SoftwareVersion, bool, error)

	// SoftwareVersionByKey returns the record for the (version, platform)
	// pair, or nil when none exists.
	SoftwareVersionByKey(ctx context.Context, version string, platformID uuid.UUID) (*model.SoftwareVersion, error)

	// AssociationByDevice returns the device's current association, or
	// nil when none exists.
	AssociationByDevice(ctx context.Context, deviceID uuid.UUID) (*model.SoftwareAssociation, error)

	// CreateAssociation records that the device runs the given software.
	CreateAssociation(ctx context.Context, deviceID, softwareID uuid.UUID) (*model.SoftwareAssociation, error)

	// ReplaceAssociation removes any existing association for the device
	// and creates the new one in a single transaction, so no reader
	// observes two associations or a half-replaced state.
	ReplaceAssociation(ctx context.Context, deviceID, softwareID uuid.UUID) (*model.SoftwareAssociation, error)

	Close() error
}

// NewRepository opens the inventory store per the configuration. In
// dry-run mode mutations are simulated and never reach the database.
func NewRepository(ctx context.Context, cfg *config.Configuration, logger *logrus.Entry) (Repository, error) {
	repo, err := inventory.Open(ctx, cfg.Inventory.Path)
	if err != nil {
		return nil, err
	}

	if cfg.Dryrun {
		logger.Warn("running the inventory store in dryrun mode, no changes will be written")
		return NewDryRunRepository(repo), nil
	}

	return repo, nil
}
