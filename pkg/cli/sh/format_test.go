package sh

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/orbipacket/pkg/orbipacket"
)

func TestParseHex(t *testing.T) {
	testCases := []struct {
		args   []string
		expect []byte
	}{
		{[]string{"0x0102ff"}, []byte{1, 2, 0xff}},
		{[]string{"01", "02", "FF"}, []byte{1, 2, 0xff}},
		{[]string{"01:02:ff"}, []byte{1, 2, 0xff}},
		{nil, []byte{}},
	}
	for _, tc := range testCases {
		data, err := ParseHex(tc.args...)
		require.NoError(t, err)
		require.Equal(t, tc.expect, data)
	}
	_, err := ParseHex("0g")
	require.Error(t, err)
	_, err = ParseHex("012")
	require.Error(t, err)
}

func TestParsePacket(t *testing.T) {
	pkt, err := ParsePacket(orbipacket.Telecommand, []string{"camera", "0x10", "de", "ad"})
	require.NoError(t, err)
	require.True(t, pkt.IsTc())
	require.Equal(t, orbipacket.Camera, pkt.DeviceID())
	require.Equal(t, uint64(16), pkt.Timestamp().Get())
	require.Equal(t, []byte{0xde, 0xad}, pkt.Payload().Bytes())
	require.Equal(t, "TC camera ts=16 payload=[de ad]", FormatPacket(pkt))

	pkt, err = ParsePacket(orbipacket.Telemetry, []string{"2", "5"})
	require.NoError(t, err)
	require.True(t, pkt.IsTm())
	require.Equal(t, orbipacket.GPS, pkt.DeviceID())
	require.Equal(t, 0, pkt.Payload().Length())

	for _, args := range [][]string{
		{"camera"},
		{"toaster", "1"},
		{"camera", "soon"},
		{"camera", "1", "zz"},
	} {
		_, err = ParsePacket(orbipacket.Telemetry, args)
		require.Error(t, err, "%v", args)
	}
}

func TestRecords(t *testing.T) {
	recs := Records([]orbipacket.Packet{
		orbipacket.NewTmPacket(orbipacket.GPS, orbipacket.NewTimestamp(1), orbipacket.Payload{}).Packet(),
	})
	require.Len(t, recs, 1)
	require.Equal(t, "gps", recs[0].Device)
}
