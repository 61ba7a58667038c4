package orbipacket

// Version is the protocol version this package speaks.
const Version uint8 = 0x01

// Overhead is the number of bytes a frame adds to its payload before
// stuffing: version, payload length, control, 8 bytes of timestamp and
// 2 bytes of CRC.
const Overhead = 1 + 1 + 1 + 8 + 2

// Direction tells which way a packet travels.
type Direction uint8

const (
	// Telemetry flows from the device to the ground station.
	Telemetry Direction = iota
	// Telecommand flows from the ground station to the device.
	Telecommand
)

// String implements fmt.Stringer.
func (d Direction) String() string {
	if d == Telecommand {
		return "TC"
	}
	return "TM"
}

// Timestamp is a device-local tick count.
type Timestamp struct {
	ticks uint64
}

// NewTimestamp creates a Timestamp.
func NewTimestamp(ticks uint64) Timestamp {
	return Timestamp{ticks: ticks}
}

// Get returns the tick count.
func (t Timestamp) Get() uint64 {
	return t.ticks
}

// packet is the representation shared by TmPacket and TcPacket.
type packet struct {
	version   uint8
	deviceID  DeviceID
	timestamp Timestamp
	payload   Payload
}

func newPacket(id DeviceID, ts Timestamp, payload Payload) packet {
	return packet{
		version:   Version,
		deviceID:  id,
		timestamp: ts,
		payload:   payload,
	}
}

// Version returns the protocol version of the packet.
func (p packet) Version() uint8 { return p.version }

// DeviceID returns the source (TM) or target (TC) device.
func (p packet) DeviceID() DeviceID { return p.deviceID }

// Timestamp returns the packet timestamp.
func (p packet) Timestamp() Timestamp { return p.timestamp }

// Payload returns the packet payload.
func (p packet) Payload() Payload { return p.payload }

func (p packet) equal(o packet) bool {
	return p.version == o.version &&
		p.deviceID == o.deviceID &&
		p.timestamp == o.timestamp &&
		p.payload.Equal(o.payload)
}

// TmPacket is a telemetry packet.
type TmPacket struct {
	packet
}

// NewTmPacket creates a telemetry packet.
func NewTmPacket(id DeviceID, ts Timestamp, payload Payload) TmPacket {
	return TmPacket{newPacket(id, ts, payload)}
}

// Packet wraps p into the Packet union.
func (p TmPacket) Packet() Packet {
	return Packet{dir: Telemetry, packet: p.packet}
}

// Equal compares all fields.
func (p TmPacket) Equal(o TmPacket) bool {
	return p.equal(o.packet)
}

// TcPacket is a telecommand packet.
type TcPacket struct {
	packet
}

// NewTcPacket creates a telecommand packet.
func NewTcPacket(id DeviceID, ts Timestamp, payload Payload) TcPacket {
	return TcPacket{newPacket(id, ts, payload)}
}

// Packet wraps p into the Packet union.
func (p TcPacket) Packet() Packet {
	return Packet{dir: Telecommand, packet: p.packet}
}

// Equal compares all fields.
func (p TcPacket) Equal(o TcPacket) bool {
	return p.equal(o.packet)
}

// Packet is either a TmPacket or a TcPacket, tagged by Direction.
// The zero value is an empty telemetry packet with version 0.
type Packet struct {
	dir Direction
	packet
}

// Direction returns the tag.
func (p Packet) Direction() Direction {
	return p.dir
}

// IsTm indicates a telemetry packet.
func (p Packet) IsTm() bool {
	return p.dir == Telemetry
}

// IsTc indicates a telecommand packet.
func (p Packet) IsTc() bool {
	return p.dir == Telecommand
}

// Tm extracts the telemetry packet.
func (p Packet) Tm() (TmPacket, bool) {
	if p.dir != Telemetry {
		return TmPacket{}, false
	}
	return TmPacket{p.packet}, true
}

// Tc extracts the telecommand packet.
func (p Packet) Tc() (TcPacket, bool) {
	if p.dir != Telecommand {
		return TcPacket{}, false
	}
	return TcPacket{p.packet}, true
}

// Equal compares the tag and all fields.
func (p Packet) Equal(o Packet) bool {
	return p.dir == o.dir && p.equal(o.packet)
}
