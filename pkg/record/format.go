package record

import (
	"encoding/json"
	"fmt"
)

// Format is the encoding of published records.
type Format string

// Formats.
const (
	FormatJSON  Format = "json"
	FormatProto Format = "proto"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case FormatJSON, FormatProto:
		return f, nil
	case "":
		return FormatJSON, nil
	}
	return "", fmt.Errorf("unknown record format %q", s)
}

// Marshal encodes r in format f.
func (f Format) Marshal(r Record) ([]byte, error) {
	if f == FormatProto {
		return r.Marshal()
	}
	return json.Marshal(r)
}

// Unmarshal decodes a record in format f.
func (f Format) Unmarshal(data []byte) (Record, error) {
	if f == FormatProto {
		return Unmarshal(data)
	}
	var r Record
	err := json.Unmarshal(data, &r)
	return r, err
}
