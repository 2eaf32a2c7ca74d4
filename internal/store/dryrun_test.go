package store

import (
	"context"
	"net"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetward/osrecon/internal/model"
	"github.com/fleetward/osrecon/internal/store/inventory"
)

func newDryRun(t *testing.T) (*DryRunRepository, *inventory.Store, *model.Platform, model.Device) {
	t.Helper()

	real, err := inventory.Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { real.Close() })

	platform, err := real.CreatePlatform(context.Background(), "ios")
	require.NoError(t, err)

	device := model.Device{
		ID:        uuid.New(),
		Name:      "sw01",
		Platform:  platform,
		Status:    "active",
		PrimaryIP: net.ParseIP("192.0.2.10"),
	}
	require.NoError(t, real.CreateDevice(context.Background(), &device))

	return NewDryRunRepository(real), real, platform, device
}

func TestDryRunSimulatesSoftwareCreation(t *testing.T) {
	dry, real, platform, _ := newDryRun(t)

	sv, created, err := dry.GetOrCreateSoftwareVersion(context.Background(), "15.2", platform.ID)
	require.NoError(t, err)
	assert.True(t, created)

	// repeated calls converge on the simulated record
	again, created, err := dry.GetOrCreateSoftwareVersion(context.Background(), "15.2", platform.ID)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, sv.ID, again.ID)

	// nothing reached the real store
	persisted, err := real.SoftwareVersionByKey(context.Background(), "15.2", platform.ID)
	require.NoError(t, err)
	assert.Nil(t, persisted)
}

func TestDryRunUsesExistingSoftware(t *testing.T) {
	dry, real, platform, _ := newDryRun(t)

	existing, _, err := real.GetOrCreateSoftwareVersion(context.Background(), "15.2", platform.ID)
	require.NoError(t, err)

	sv, created, err := dry.GetOrCreateSoftwareVersion(context.Background(), "15.2", platform.ID)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, existing.ID, sv.ID)
}

func TestDryRunAssociationsStayInMemory(t *testing.T) {
	dry, real, platform, device := newDryRun(t)

	sv, _, err := dry.GetOrCreateSoftwareVersion(context.Background(), "15.2", platform.ID)
	require.NoError(t, err)

	_, err = dry.CreateAssociation(context.Background(), device.ID, sv.ID)
	require.NoError(t, err)

	simulated, err := dry.AssociationByDevice(context.Background(), device.ID)
	require.NoError(t, err)
	require.NotNil(t, simulated)
	assert.Equal(t, sv.ID, simulated.SoftwareID)

	persisted, err := real.AssociationByDevice(context.Background(), device.ID)
	require.NoError(t, err)
	assert.Nil(t, persisted)
}

func TestDryRunReplaceShadowsRealAssociation(t *testing.T) {
	dry, real, platform, device := newDryRun(t)

	stale, _, err := real.GetOrCreateSoftwareVersion(context.Background(), "12.4", platform.ID)
	require.NoError(t, err)
	_, err = real.CreateAssociation(context.Background(), device.ID, stale.ID)
	require.NoError(t, err)

	desired, _, err := dry.GetOrCreateSoftwareVersion(context.Background(), "15.2", platform.ID)
	require.NoError(t, err)

	_, err = dry.ReplaceAssociation(context.Background(), device.ID, desired.ID)
	require.NoError(t, err)

	simulated, err := dry.AssociationByDevice(context.Background(), device.ID)
	require.NoError(t, err)
	require.NotNil(t, simulated)
	assert.Equal(t, desired.ID, simulated.SoftwareID)

	// the real association is untouched
	persisted, err := real.AssociationByDevice(context.Background(), device.ID)
	require.NoError(t, err)
	require.NotNil(t, persisted)
	assert.Equal(t, stale.ID, persisted.SoftwareID)
}
