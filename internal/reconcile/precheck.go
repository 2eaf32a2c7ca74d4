package reconcile

import (
	"strings"

	"github.com/fleetward/osrecon/internal/model"
)

// PrecheckError reports every device failing one mandatory-attribute
// check. It is batch-fatal: no device in the run proceeds to probing.
type PrecheckError struct {
	Err     error
	Devices []model.Device
}

func (e *PrecheckError) Error() string {
	names := make([]string, 0, len(e.Devices))
	for i := range e.Devices {
		names = append(names, e.Devices[i].Name)
	}

	return e.Err.Error() + ": " + strings.Join(names, ", ")
}

func (e *PrecheckError) Unwrap() error {
	return e.Err
}

// Validate checks that every device carries the attributes remote
// querying requires. Each check runs over the full set before failing,
// so operators see every offending device in one pass. The platform
// check is reported first when both fail.
func Validate(devices []model.Device) error {
	var noPlatform []model.Device

	for i := range devices {
		if !devices[i].HasPlatform() {
			noPlatform = append(noPlatform, devices[i])
		}
	}

	if len(noPlatform) > 0 {
		return &PrecheckError{Err: model.ErrMissingPlatform, Devices: noPlatform}
	}

	var noAddress []model.Device

	for i := range devices {
		if !devices[i].HasPrimaryIP() {
			noAddress = append(noAddress, devices[i])
		}
	}

	if len(noAddress) > 0 {
		return &PrecheckError{Err: model.ErrMissingManagementAddress, Devices: noAddress}
	}

	return nil
}
