package store

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/fleetward/osrecon/internal/model"
)

type softwareKey struct {
	version    string
	platformID uuid.UUID
}

// DryRunRepository is a simulated implementation of Repository. Reads
// pass through to the real inventory; mutations are recorded in memory
// so a dry run reports the same outcomes a real run would, without
// writing anything.
type DryRunRepository struct {
	real Repository

	mu           sync.Mutex
	software     map[softwareKey]*model.SoftwareVersion
	associations map[uuid.UUID]*model.SoftwareAssociation
	removed      map[uuid.UUID]bool
}

// NewDryRunRepository wraps a repository in a write-simulating layer.
func NewDryRunRepository(real Repository) *DryRunRepository {
	return &DryRunRepository{
		real:         real,
		software:     make(map[softwareKey]*model.SoftwareVersion),
		associations: make(map[uuid.UUID]*model.SoftwareAssociation),
		removed:      make(map[uuid.UUID]bool),
	}
}

func (d *DryRunRepository) DevicesByFilter(ctx context.Context, filter *model.DeviceFilter) ([]model.Device, error) {
	return d.real.DevicesByFilter(ctx, filter)
}

func (d *DryRunRepository) GetOrCreateSoftwareVersion(ctx context.Context, version string, platformID uuid.UUID) (*model.SoftwareVersion, bool, error) {
	existing, err := d.real.SoftwareVersionByKey(ctx, version, platformID)
	if err != nil {
		return nil, false, err
	}

	if existing != nil {
		return existing, false, nil
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	key := softwareKey{version: version, platformID: platformID}
	if sv, ok := d.software[key]; ok {
		return sv, false, nil
	}

	sv := &model.SoftwareVersion{ID: uuid.New(), Version: version, PlatformID: platformID}
	d.software[key] = sv

	return sv, true, nil
}

func (d *DryRunRepository) SoftwareVersionByKey(ctx context.Context, version string, platformID uuid.UUID) (*model.SoftwareVersion, error) {
	existing, err := d.real.SoftwareVersionByKey(ctx, version, platformID)
	if err != nil || existing != nil {
		return existing, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	return d.software[softwareKey{version: version, platformID: platformID}], nil
}

func (d *DryRunRepository) AssociationByDevice(ctx context.Context, deviceID uuid.UUID) (*model.SoftwareAssociation, error) {
	d.mu.Lock()

	if assoc, ok := d.associations[deviceID]; ok {
		d.mu.Unlock()
		return assoc, nil
	}

	removed := d.removed[deviceID]
	d.mu.Unlock()

	if removed {
		return nil, nil
	}

	return d.real.AssociationByDevice(ctx, deviceID)
}

func (d *DryRunRepository) CreateAssociation(_ context.Context, deviceID, softwareID uuid.UUID) (*model.SoftwareAssociation, error) {
	assoc := &model.SoftwareAssociation{
		ID:         uuid.New(),
		DeviceID:   deviceID,
		SoftwareID: softwareID,
	}

	d.mu.Lock()
	d.associations[deviceID] = assoc
	d.mu.Unlock()

	return assoc, nil
}

func (d *DryRunRepository) ReplaceAssociation(ctx context.Context, deviceID, softwareID uuid.UUID) (*model.SoftwareAssociation, error) {
	d.mu.Lock()
	d.removed[deviceID] = true
	d.mu.Unlock()

	return d.CreateAssociation(ctx, deviceID, softwareID)
}

func (d *DryRunRepository) Close() error {
	return d.real.Close()
}
