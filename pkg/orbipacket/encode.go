package orbipacket

import (
	"encoding/binary"

	"github.com/robotalks/orbipacket/pkg/cobs"
)

const (
	controlDirection = 0x80
	controlIDShift   = 2
	controlIDMask    = MaxDeviceID << controlIDShift

	headerSize   = Overhead - checksumSize
	checksumSize = 2
)

const (
	maxRawFrameSize = Overhead + MaxPayloadSize

	// MaxFrameSize is the longest stuffed frame, delimiter included.
	MaxFrameSize = maxRawFrameSize + (maxRawFrameSize+253)/254 + 1

	// MaxEncodeBufferSize is large enough to encode any packet.
	MaxEncodeBufferSize = maxRawFrameSize + MaxFrameSize
)

// The encoder writes the raw frame at the start of the buffer and stuffs
// it into the rest, so the buffer holds both at the same time.
func encodeBufferSize(payloadLen int) int {
	raw := Overhead + payloadLen
	return raw + cobs.MaxEncodedLen(raw) + 1
}

func (p packet) encodeBufferSize() int {
	return encodeBufferSize(p.payload.Length())
}

func (p packet) encode(buf []byte, dir Direction) ([]byte, error) {
	if required := p.encodeBufferSize(); len(buf) < required {
		return nil, &BufferTooSmallError{Required: required, Available: len(buf)}
	}
	if !p.deviceID.IsValid() {
		return nil, &InvalidIDError{ID: uint8(p.deviceID)}
	}

	control := uint8(p.deviceID) << controlIDShift & controlIDMask
	if dir == Telecommand {
		control |= controlDirection
	}
	buf[0] = p.version
	buf[1] = uint8(p.payload.Length())
	buf[2] = control
	binary.LittleEndian.PutUint64(buf[3:headerSize], p.timestamp.Get())
	n := headerSize + copy(buf[headerSize:], p.payload.Bytes())

	binary.LittleEndian.PutUint16(buf[n:], Checksum(buf[:n]))
	n += checksumSize

	raw, out := buf[:n], buf[n:]
	m := cobs.Encode(out, raw)
	out[m] = 0
	return out[:m+1], nil
}

// EncodeBufferSize returns the minimum buffer size Encode accepts.
func (p TmPacket) EncodeBufferSize() int {
	return p.encodeBufferSize()
}

// Encode writes the frame into buf and returns the slice of buf holding
// the stuffed frame, delimiter included. buf must be at least
// EncodeBufferSize() bytes long; it is reusable once the returned
// slice is no longer needed.
func (p TmPacket) Encode(buf []byte) ([]byte, error) {
	return p.encode(buf, Telemetry)
}

// EncodeBufferSize returns the minimum buffer size Encode accepts.
func (p TcPacket) EncodeBufferSize() int {
	return p.encodeBufferSize()
}

// Encode writes the frame into buf, see TmPacket.Encode.
func (p TcPacket) Encode(buf []byte) ([]byte, error) {
	return p.encode(buf, Telecommand)
}

// EncodeBufferSize returns the minimum buffer size Encode accepts.
func (p Packet) EncodeBufferSize() int {
	return p.encodeBufferSize()
}

// Encode writes the frame into buf with the packet's own direction,
// see TmPacket.Encode.
func (p Packet) Encode(buf []byte) ([]byte, error) {
	return p.encode(buf, p.dir)
}
