package probe

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetward/osrecon/internal/model"
)

func TestExtractVersion(t *testing.T) {
	tests := []struct {
		name     string
		sysDescr string
		want     string
	}{
		{
			name: "cisco ios",
			sysDescr: "Cisco IOS Software, C2960 Software (C2960-LANBASEK9-M), " +
				"Version 15.2(4)E7, RELEASE SOFTWARE (fc2)",
			want: "15.2(4)E7",
		},
		{
			name: "cisco ios xe",
			sysDescr: "Cisco IOS Software [Amsterdam], Catalyst L3 Switch Software " +
				"(CAT9K_IOSXE), Version 17.3.3, RELEASE SOFTWARE (fc7)",
			want: "17.3.3",
		},
		{
			name: "junos",
			sysDescr: "Juniper Networks, Inc. ex2200-24t-4g Ethernet Switch, " +
				"kernel JUNOS 12.3R12.4, Build date: 2016-01-20",
			want: "12.3R12.4",
		},
		{
			name:     "arista eos",
			sysDescr: "Arista Networks EOS version 4.28.3M running on an Arista Networks DCS-7050TX-64",
			want:     "4.28.3M",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractVersion(tt.sysDescr)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractVersionNotFound(t *testing.T) {
	_, err := ExtractVersion("Linux gw01 5.15.0 x86_64")
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrVersionNotFound)
}

func TestCollectWrapsFailure(t *testing.T) {
	device := &model.Device{ID: uuid.New(), Name: "sw-lab-01"}
	cause := errors.New("connection refused")

	prober := QueryFunc(func(context.Context, *model.Device) (string, error) {
		return "", cause
	})

	_, err := Collect(context.Background(), prober, device)
	require.Error(t, err)

	var probeErr *Error
	require.ErrorAs(t, err, &probeErr)
	assert.Equal(t, device.ID, probeErr.DeviceID)
	assert.Equal(t, "sw-lab-01", probeErr.DeviceName)
	assert.ErrorIs(t, err, cause)
}

func TestCollectReturnsVersion(t *testing.T) {
	device := &model.Device{ID: uuid.New(), Name: "sw-lab-01"}

	prober := QueryFunc(func(context.Context, *model.Device) (string, error) {
		return "15.2(4)E7", nil
	})

	version, err := Collect(context.Background(), prober, device)
	require.NoError(t, err)
	assert.Equal(t, "15.2(4)E7", version)
}
