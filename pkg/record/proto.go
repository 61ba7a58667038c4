package record

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"time"

	"github.com/golang/protobuf/proto"
	structpb "github.com/golang/protobuf/ptypes/struct"
)

// Struct field names.
const (
	FieldDirection  = "direction"
	FieldVersion    = "version"
	FieldDevice     = "device"
	FieldDeviceID   = "device_id"
	FieldTimestamp  = "timestamp"
	FieldPayload    = "payload"
	FieldStation    = "station"
	FieldReceivedAt = "received_at"
)

func stringValue(s string) *structpb.Value {
	return &structpb.Value{Kind: &structpb.Value_StringValue{StringValue: s}}
}

func numberValue(n float64) *structpb.Value {
	return &structpb.Value{Kind: &structpb.Value_NumberValue{NumberValue: n}}
}

// ToStruct converts the record to a protobuf Struct.
// The timestamp is a decimal string as a float64 can't hold 64 bits,
// and the payload is base64.
func (r Record) ToStruct() *structpb.Struct {
	fields := map[string]*structpb.Value{
		FieldDirection: stringValue(r.Direction),
		FieldVersion:   numberValue(float64(r.Version)),
		FieldDevice:    stringValue(r.Device),
		FieldDeviceID:  numberValue(float64(r.DeviceID)),
		FieldTimestamp: stringValue(strconv.FormatUint(r.Timestamp, 10)),
		FieldPayload:   stringValue(base64.StdEncoding.EncodeToString(r.Payload)),
	}
	if r.Station != "" {
		fields[FieldStation] = stringValue(r.Station)
	}
	if !r.ReceivedAt.IsZero() {
		fields[FieldReceivedAt] = stringValue(r.ReceivedAt.UTC().Format(time.RFC3339Nano))
	}
	return &structpb.Struct{Fields: fields}
}

type structReader struct {
	fields map[string]*structpb.Value
	err    error
}

func (r *structReader) stringField(name string, required bool) string {
	v, ok := r.fields[name]
	if !ok {
		if required && r.err == nil {
			r.err = fmt.Errorf("missing field %q", name)
		}
		return ""
	}
	s, ok := v.GetKind().(*structpb.Value_StringValue)
	if !ok {
		if r.err == nil {
			r.err = fmt.Errorf("field %q is not a string", name)
		}
		return ""
	}
	return s.StringValue
}

func (r *structReader) byteField(name string) uint8 {
	v, ok := r.fields[name]
	if !ok {
		return 0
	}
	n, ok := v.GetKind().(*structpb.Value_NumberValue)
	if !ok || n.NumberValue < 0 || n.NumberValue > 0xff || n.NumberValue != float64(uint8(n.NumberValue)) {
		if r.err == nil {
			r.err = fmt.Errorf("field %q is not a byte", name)
		}
		return 0
	}
	return uint8(n.NumberValue)
}

// FromStruct parses a Struct created by ToStruct.
func FromStruct(s *structpb.Struct) (Record, error) {
	var rec Record
	r := &structReader{fields: s.GetFields()}
	rec.Direction = r.stringField(FieldDirection, true)
	rec.Version = r.byteField(FieldVersion)
	rec.Device = r.stringField(FieldDevice, false)
	rec.DeviceID = r.byteField(FieldDeviceID)
	ts := r.stringField(FieldTimestamp, true)
	payload := r.stringField(FieldPayload, false)
	rec.Station = r.stringField(FieldStation, false)
	receivedAt := r.stringField(FieldReceivedAt, false)
	if r.err != nil {
		return rec, r.err
	}

	var err error
	if rec.Timestamp, err = strconv.ParseUint(ts, 10, 64); err != nil {
		return rec, fmt.Errorf("invalid timestamp: %w", err)
	}
	if rec.Payload, err = base64.StdEncoding.DecodeString(payload); err != nil {
		return rec, fmt.Errorf("invalid payload: %w", err)
	}
	if receivedAt != "" {
		if rec.ReceivedAt, err = time.Parse(time.RFC3339Nano, receivedAt); err != nil {
			return rec, fmt.Errorf("invalid receive time: %w", err)
		}
	}
	return rec, nil
}

// Marshal encodes the record as a binary protobuf Struct.
func (r Record) Marshal() ([]byte, error) {
	return proto.Marshal(r.ToStruct())
}

// Unmarshal decodes a record encoded by Marshal.
func Unmarshal(data []byte) (Record, error) {
	var s structpb.Struct
	if err := proto.Unmarshal(data, &s); err != nil {
		return Record{}, err
	}
	return FromStruct(&s)
}
