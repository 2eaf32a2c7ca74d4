package reconcile

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/fleetward/osrecon/internal/model"
)

// AssociationStore is the reconciler's persistence capability.
type AssociationStore interface {
	AssociationByDevice(ctx context.Context, deviceID uuid.UUID) (*model.SoftwareAssociation, error)
	CreateAssociation(ctx context.Context, deviceID, softwareID uuid.UUID) (*model.SoftwareAssociation, error)
	ReplaceAssociation(ctx context.Context, deviceID, softwareID uuid.UUID) (*model.SoftwareAssociation, error)
}

// Reconciler keeps the single "device runs software X" association in
// agreement with freshly observed facts. Reconciliation attempts for
// the same device are serialized by a device-scoped lock, so two
// concurrent runs cannot leave a device with zero or two associations.
type Reconciler struct {
	store AssociationStore
	locks *keyedMutex
}

func NewReconciler(store AssociationStore) *Reconciler {
	return &Reconciler{
		store: store,
		locks: newKeyedMutex(),
	}
}

// Reconcile ensures the device's association points at the desired
// software version. It is idempotent: re-running with the same desired
// version yields OutcomeUnchanged.
func (r *Reconciler) Reconcile(ctx context.Context, deviceID uuid.UUID, desired *model.SoftwareVersion) (model.OutcomeState, error) {
	unlock := r.locks.lock(deviceID.String())
	defer unlock()

	existing, err := r.store.AssociationByDevice(ctx, deviceID)
	if err != nil {
		return model.OutcomeFailed, errors.Wrap(err, "association lookup failed")
	}

	switch {
	case existing == nil:
		if _, err := r.store.CreateAssociation(ctx, deviceID, desired.ID); err != nil {
			return model.OutcomeFailed, errors.Wrap(err, "association create failed")
		}

		return model.OutcomeCreated, nil

	case existing.SoftwareID == desired.ID:
		return model.OutcomeUnchanged, nil

	default:
		if _, err := r.store.ReplaceAssociation(ctx, deviceID, desired.ID); err != nil {
			return model.OutcomeFailed, errors.Wrap(err, "association replace failed")
		}

		return model.OutcomeReplaced, nil
	}
}
