package record

import (
	"encoding/json"
	"testing"
	"time"

	structpb "github.com/golang/protobuf/ptypes/struct"
	"github.com/stretchr/testify/require"

	"github.com/robotalks/orbipacket/pkg/orbipacket"
)

func testRecord() Record {
	pkt := orbipacket.NewTcPacket(orbipacket.Camera, orbipacket.NewTimestamp(0xfedcba9876543210),
		orbipacket.MustPayload([]byte{0, 1, 2, 0xff})).Packet()
	r := FromPacket(pkt)
	r.Station = "gs1"
	r.ReceivedAt = time.Date(2026, 3, 1, 12, 30, 0, 1500, time.UTC)
	return r
}

func requireSameRecord(t *testing.T, expected, actual Record) {
	require.True(t, expected.ReceivedAt.Equal(actual.ReceivedAt))
	expected.ReceivedAt, actual.ReceivedAt = time.Time{}, time.Time{}
	require.Equal(t, expected, actual)
}

func TestFromPacket(t *testing.T) {
	r := testRecord()
	require.Equal(t, "TC", r.Direction)
	require.Equal(t, orbipacket.Version, r.Version)
	require.Equal(t, "camera", r.Device)
	require.Equal(t, uint8(orbipacket.Camera), r.DeviceID)
	require.Equal(t, uint64(0xfedcba9876543210), r.Timestamp)
	require.Equal(t, []byte{0, 1, 2, 0xff}, r.Payload)
}

func TestRecordPacket(t *testing.T) {
	pkt := orbipacket.NewTmPacket(orbipacket.GPS, orbipacket.NewTimestamp(7), orbipacket.MustPayload([]byte("fix"))).Packet()
	back, err := FromPacket(pkt).Packet()
	require.NoError(t, err)
	require.True(t, pkt.Equal(back))

	back, err = Record{Direction: "tc", DeviceID: 4, Timestamp: 9}.Packet()
	require.NoError(t, err)
	require.True(t, back.IsTc())
	require.Equal(t, orbipacket.Accelerometer, back.DeviceID())

	back, err = Record{Direction: "TM", Device: "gyroscope", DeviceID: 4}.Packet()
	require.NoError(t, err)
	require.Equal(t, orbipacket.Gyroscope, back.DeviceID())
}

func TestRecordPacketErrors(t *testing.T) {
	testCases := []struct {
		name string
		rec  Record
	}{
		{"direction", Record{Direction: "up"}},
		{"version", Record{Direction: "TM", Version: 2}},
		{"device name", Record{Direction: "TM", Device: "toaster"}},
		{"device id", Record{Direction: "TM", DeviceID: 16}},
		{"payload", Record{Direction: "TM", Payload: make([]byte, orbipacket.MaxPayloadSize+1)}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := tc.rec.Packet()
			require.Error(t, err)
		})
	}
}

func TestJSON(t *testing.T) {
	r := testRecord()
	data, err := json.Marshal(r)
	require.NoError(t, err)

	var fields map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &fields))
	require.Equal(t, "18364758544493064720", fields["timestamp"])
	require.Equal(t, "AAEC/w==", fields["payload"])
	require.Equal(t, "camera", fields["device"])

	back, err := FormatJSON.Unmarshal(data)
	require.NoError(t, err)
	requireSameRecord(t, r, back)
}

func TestStruct(t *testing.T) {
	r := testRecord()
	s := r.ToStruct()
	require.Equal(t, "18364758544493064720", s.Fields[FieldTimestamp].GetStringValue())
	require.Equal(t, float64(orbipacket.Camera), s.Fields[FieldDeviceID].GetNumberValue())

	back, err := FromStruct(s)
	require.NoError(t, err)
	requireSameRecord(t, r, back)
}

func TestProto(t *testing.T) {
	r := testRecord()
	data, err := FormatProto.Marshal(r)
	require.NoError(t, err)
	back, err := FormatProto.Unmarshal(data)
	require.NoError(t, err)
	requireSameRecord(t, r, back)

	_, err = Unmarshal([]byte{0xff})
	require.Error(t, err)
}

func TestFromStructErrors(t *testing.T) {
	valid := testRecord().ToStruct()
	testCases := []struct {
		name   string
		modify func(map[string]*structpb.Value)
	}{
		{"missing direction", func(f map[string]*structpb.Value) { delete(f, FieldDirection) }},
		{"missing timestamp", func(f map[string]*structpb.Value) { delete(f, FieldTimestamp) }},
		{"timestamp type", func(f map[string]*structpb.Value) { f[FieldTimestamp] = numberValue(1) }},
		{"timestamp value", func(f map[string]*structpb.Value) { f[FieldTimestamp] = stringValue("-1") }},
		{"device id range", func(f map[string]*structpb.Value) { f[FieldDeviceID] = numberValue(256) }},
		{"device id fraction", func(f map[string]*structpb.Value) { f[FieldDeviceID] = numberValue(1.5) }},
		{"payload", func(f map[string]*structpb.Value) { f[FieldPayload] = stringValue("!!") }},
		{"received at", func(f map[string]*structpb.Value) { f[FieldReceivedAt] = stringValue("noon") }},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			fields := make(map[string]*structpb.Value, len(valid.Fields))
			for k, v := range valid.Fields {
				fields[k] = v
			}
			tc.modify(fields)
			_, err := FromStruct(&structpb.Struct{Fields: fields})
			require.Error(t, err)
		})
	}
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("")
	require.NoError(t, err)
	require.Equal(t, FormatJSON, f)
	f, err = ParseFormat("proto")
	require.NoError(t, err)
	require.Equal(t, FormatProto, f)
	_, err = ParseFormat("xml")
	require.Error(t, err)
}
