package reconcile

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/fleetward/osrecon/internal/model"
)

// SoftwareStore is the registry's persistence capability.
type SoftwareStore interface {
	GetOrCreateSoftwareVersion(ctx context.Context, version string, platformID uuid.UUID) (*model.SoftwareVersion, bool, error)
}

// Registry maps an observed (version, platform) pair to its canonical
// SoftwareVersion record, creating one on first sight. Creation is
// linearizable per pair: a key-scoped lock serializes first-seen
// callers on top of the store's atomic insert-if-absent.
type Registry struct {
	store SoftwareStore
	locks *keyedMutex
}

func NewRegistry(store SoftwareStore) *Registry {
	return &Registry{
		store: store,
		locks: newKeyedMutex(),
	}
}

// Get returns the canonical record for the pair, reporting whether this
// call created it.
func (r *Registry) Get(ctx context.Context, version string, platformID uuid.UUID) (*model.SoftwareVersion, bool, error) {
	unlock := r.locks.lock(version + "|" + platformID.String())
	defer unlock()

	sv, created, err := r.store.GetOrCreateSoftwareVersion(ctx, version, platformID)
	if err != nil {
		return nil, false, errors.Wrap(err, "software registry lookup failed")
	}

	// Defensive: the store must hand back the requested pair.
	if sv.Version != version || sv.PlatformID != platformID {
		return nil, false, errors.Wrapf(model.ErrRegistryConflict,
			"requested (%s, %s), got (%s, %s)", version, platformID, sv.Version, sv.PlatformID)
	}

	return sv, created, nil
}
