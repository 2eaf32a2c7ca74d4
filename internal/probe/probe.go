// Package probe retrieves the running OS version from a device. The
// transport is a pluggable capability; the reconciler only depends on
// the Prober interface.
package probe

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/fleetward/osrecon/internal/model"
)

// Prober is the injected "query device facts" capability. Retry and
// timeout policy live inside the implementation.
type Prober interface {
	// Query returns the OS version string the device reports.
	Query(ctx context.Context, device *model.Device) (string, error)
}

// QueryFunc adapts a plain function to the Prober interface.
type QueryFunc func(ctx context.Context, device *model.Device) (string, error)

func (f QueryFunc) Query(ctx context.Context, device *model.Device) (string, error) {
	return f(ctx, device)
}

// Error is a per-device probe failure. It carries the device identity
// and the underlying cause, and never aborts the batch it occurred in.
type Error struct {
	DeviceID   uuid.UUID
	DeviceName string
	Err        error
}

func (e *Error) Error() string {
	return fmt.Sprintf("failed to probe device %s: %s", e.DeviceName, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Collect invokes the capability for one device and wraps any failure
// with the device identity. It performs no retries and no mutation.
func Collect(ctx context.Context, prober Prober, device *model.Device) (string, error) {
	version, err := prober.Query(ctx, device)
	if err != nil {
		return "", &Error{DeviceID: device.ID, DeviceName: device.Name, Err: err}
	}

	return version, nil
}
