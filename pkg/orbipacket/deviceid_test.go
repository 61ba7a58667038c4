package orbipacket

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDeviceIDFromByte(t *testing.T) {
	for code := 0; code <= 0xff; code++ {
		id, err := DeviceIDFromByte(uint8(code))
		if code < 16 {
			require.NoError(t, err)
			require.Equal(t, DeviceID(code), id)
			require.True(t, id.IsValid())
			continue
		}
		require.Error(t, err)
		invalid, ok := err.(*InvalidIDError)
		require.True(t, ok)
		require.Equal(t, uint8(code), invalid.ID)
	}
}

func TestDeviceIDNames(t *testing.T) {
	testCases := []struct {
		id      DeviceID
		name    string
		display string
	}{
		{System, "system", "System Device (ID 0)"},
		{GPS, "gps", "GPS Device (ID 2)"},
		{TemperatureSensor, "temperature", "Temperature Sensor Device (ID 9)"},
		{Mission3, "mission3", "Mission Device (ID 14)"},
		{DeviceID(20), "device20", "Unknown Device (ID 20)"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.name, tc.id.Name())
			require.Equal(t, tc.display, tc.id.String())
		})
	}
}

func TestParseDeviceID(t *testing.T) {
	for _, id := range DeviceIDs() {
		parsed, err := ParseDeviceID(id.Name())
		require.NoError(t, err)
		require.Equal(t, id, parsed)
	}

	id, err := ParseDeviceID(" GPS ")
	require.NoError(t, err)
	require.Equal(t, GPS, id)

	id, err = ParseDeviceID("11")
	require.NoError(t, err)
	require.Equal(t, RadiationSensor, id)

	_, err = ParseDeviceID("16")
	require.IsType(t, &InvalidIDError{}, err)

	_, err = ParseDeviceID("toaster")
	require.Error(t, err)
}

func TestDeviceIDs(t *testing.T) {
	ids := DeviceIDs()
	require.Len(t, ids, 16)
	require.Equal(t, System, ids[0])
	require.Equal(t, Mission4, ids[15])
}
