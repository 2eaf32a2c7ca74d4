package reconcile

import (
	"net"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetward/osrecon/internal/model"
)

func validDevice(name string) model.Device {
	return model.Device{
		ID:        uuid.New(),
		Name:      name,
		Platform:  &model.Platform{ID: uuid.New(), Name: "ios"},
		PrimaryIP: net.ParseIP("192.0.2.10"),
	}
}

func TestValidatePasses(t *testing.T) {
	devices := []model.Device{validDevice("sw01"), validDevice("sw02")}
	require.NoError(t, Validate(devices))
}

func TestValidateReportsEveryMissingPlatform(t *testing.T) {
	bad1 := validDevice("sw01")
	bad1.Platform = nil
	bad2 := validDevice("sw03")
	bad2.Platform = nil

	devices := []model.Device{bad1, validDevice("sw02"), bad2}

	err := Validate(devices)
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrMissingPlatform)

	var precheck *PrecheckError
	require.ErrorAs(t, err, &precheck)
	require.Len(t, precheck.Devices, 2)
	assert.Equal(t, "sw01", precheck.Devices[0].Name)
	assert.Equal(t, "sw03", precheck.Devices[1].Name)
	assert.Contains(t, err.Error(), "sw01, sw03")
}

func TestValidateReportsEveryMissingAddress(t *testing.T) {
	bad := validDevice("sw02")
	bad.PrimaryIP = nil

	devices := []model.Device{validDevice("sw01"), bad}

	err := Validate(devices)
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrMissingManagementAddress)

	var precheck *PrecheckError
	require.ErrorAs(t, err, &precheck)
	require.Len(t, precheck.Devices, 1)
	assert.Equal(t, "sw02", precheck.Devices[0].Name)
}

func TestValidatePlatformCheckReportedFirst(t *testing.T) {
	bad := validDevice("sw01")
	bad.Platform = nil
	bad.PrimaryIP = nil

	err := Validate([]model.Device{bad})
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrMissingPlatform)
}

func TestValidateEmptySet(t *testing.T) {
	require.NoError(t, Validate(nil))
}
