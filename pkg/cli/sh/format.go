package sh

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/robotalks/orbipacket/pkg/orbipacket"
	"github.com/robotalks/orbipacket/pkg/record"
)

// ParseHex parses hex bytes, ignoring spaces, colons and a 0x prefix.
func ParseHex(args ...string) ([]byte, error) {
	s := strings.Join(args, "")
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	s = strings.NewReplacer(" ", "", ":", "", "-", "").Replace(s)
	return hex.DecodeString(s)
}

// ParsePacket builds a packet from DEVICE TIMESTAMP [PAYLOAD-HEX...].
func ParsePacket(dir orbipacket.Direction, args []string) (orbipacket.Packet, error) {
	var pkt orbipacket.Packet
	if len(args) < 2 {
		return pkt, fmt.Errorf("DEVICE and TIMESTAMP required")
	}
	id, err := orbipacket.ParseDeviceID(args[0])
	if err != nil {
		return pkt, err
	}
	ts, err := strconv.ParseUint(args[1], 0, 64)
	if err != nil {
		return pkt, fmt.Errorf("invalid TIMESTAMP: %w", err)
	}
	data, err := ParseHex(args[2:]...)
	if err != nil {
		return pkt, fmt.Errorf("invalid PAYLOAD: %w", err)
	}
	payload, err := orbipacket.PayloadFromBytes(data)
	if err != nil {
		return pkt, err
	}
	if dir == orbipacket.Telecommand {
		return orbipacket.NewTcPacket(id, orbipacket.NewTimestamp(ts), payload).Packet(), nil
	}
	return orbipacket.NewTmPacket(id, orbipacket.NewTimestamp(ts), payload).Packet(), nil
}

// FormatPacket formats a packet on one line.
func FormatPacket(pkt orbipacket.Packet) string {
	return fmt.Sprintf("%s %s ts=%d payload=[%s]",
		pkt.Direction(), pkt.DeviceID().Name(), pkt.Timestamp().Get(), FormatHex(pkt.Payload().Bytes()))
}

// FormatHex formats bytes as space separated hex.
func FormatHex(data []byte) string {
	parts := make([]string, len(data))
	for n, b := range data {
		parts[n] = fmt.Sprintf("%02x", b)
	}
	return strings.Join(parts, " ")
}

// Records converts packets for JSON output.
func Records(pkts []orbipacket.Packet) []record.Record {
	recs := make([]record.Record, len(pkts))
	for n, pkt := range pkts {
		recs[n] = record.FromPacket(pkt)
	}
	return recs
}
