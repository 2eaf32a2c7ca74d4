package reconcile

import (
	"context"
	"io"
	"net"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/fleetward/osrecon/internal/model"
	"github.com/fleetward/osrecon/internal/probe"
	"github.com/fleetward/osrecon/internal/store/inventory"
)

func newRepo(t *testing.T) *inventory.Store {
	t.Helper()

	repo, err := inventory.Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	return repo
}

func seedPlatform(t *testing.T, repo *inventory.Store, name string) *model.Platform {
	t.Helper()

	platform, err := repo.CreatePlatform(context.Background(), name)
	require.NoError(t, err)

	return platform
}

func seedDevice(t *testing.T, repo *inventory.Store, name string, platform *model.Platform) model.Device {
	t.Helper()

	device := model.Device{
		ID:        uuid.New(),
		Name:      name,
		Platform:  platform,
		Status:    "active",
		PrimaryIP: net.ParseIP("192.0.2.10"),
	}
	require.NoError(t, repo.CreateDevice(context.Background(), &device))

	return device
}

func proberSpy(called *bool) probe.Prober {
	return probe.QueryFunc(func(context.Context, *model.Device) (string, error) {
		*called = true
		return "15.2", nil
	})
}

func testLogger() *logrus.Entry {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	return logrus.NewEntry(logger)
}
