// Package record converts packets to self-describing records for
// ground-station consumers.
package record

import (
	"fmt"
	"strings"
	"time"

	"github.com/robotalks/orbipacket/pkg/orbipacket"
)

// Record is the structured form of a packet.
type Record struct {
	Direction  string    `json:"direction"`
	Version    uint8     `json:"version"`
	Device     string    `json:"device"`
	DeviceID   uint8     `json:"device_id"`
	Timestamp  uint64    `json:"timestamp,string"`
	Payload    []byte    `json:"payload"`
	Station    string    `json:"station,omitempty"`
	ReceivedAt time.Time `json:"received_at"`
}

// FromPacket creates a Record.
func FromPacket(pkt orbipacket.Packet) Record {
	return Record{
		Direction: pkt.Direction().String(),
		Version:   pkt.Version(),
		Device:    pkt.DeviceID().Name(),
		DeviceID:  uint8(pkt.DeviceID()),
		Timestamp: pkt.Timestamp().Get(),
		Payload:   pkt.Payload().Bytes(),
	}
}

// ParseDirection accepts TM or TC in any case.
func ParseDirection(s string) (orbipacket.Direction, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "TM":
		return orbipacket.Telemetry, nil
	case "TC":
		return orbipacket.Telecommand, nil
	}
	return 0, fmt.Errorf("invalid direction %q", s)
}

// Packet converts the record back to a packet.
// The device name takes precedence over the numeric id when set.
func (r Record) Packet() (orbipacket.Packet, error) {
	var pkt orbipacket.Packet
	dir, err := ParseDirection(r.Direction)
	if err != nil {
		return pkt, err
	}
	if r.Version != 0 && r.Version != orbipacket.Version {
		return pkt, &orbipacket.UnsupportedVersionError{Found: r.Version}
	}
	var id orbipacket.DeviceID
	if r.Device != "" {
		id, err = orbipacket.ParseDeviceID(r.Device)
	} else {
		id, err = orbipacket.DeviceIDFromByte(r.DeviceID)
	}
	if err != nil {
		return pkt, err
	}
	payload, err := orbipacket.PayloadFromBytes(r.Payload)
	if err != nil {
		return pkt, err
	}
	ts := orbipacket.NewTimestamp(r.Timestamp)
	if dir == orbipacket.Telecommand {
		return orbipacket.NewTcPacket(id, ts, payload).Packet(), nil
	}
	return orbipacket.NewTmPacket(id, ts, payload).Packet(), nil
}
