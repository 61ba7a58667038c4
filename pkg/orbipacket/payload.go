package orbipacket

import "bytes"

// MaxPayloadSize is the largest payload a packet can carry.
const MaxPayloadSize = 255

// Payload is the application data of one packet.
// Only the first Length() bytes are meaningful.
type Payload struct {
	data   [MaxPayloadSize]byte
	length uint8
}

// PayloadFromBytes copies b into a new Payload.
func PayloadFromBytes(b []byte) (Payload, error) {
	var p Payload
	if len(b) > MaxPayloadSize {
		return p, &PayloadTooLongError{Length: len(b)}
	}
	p.length = uint8(copy(p.data[:], b))
	return p, nil
}

// MustPayload is PayloadFromBytes which panics on error.
// Intended for literals in tests and examples.
func MustPayload(b []byte) Payload {
	p, err := PayloadFromBytes(b)
	if err != nil {
		panic(err)
	}
	return p
}

// Bytes returns the payload data. The slice refers to a copy
// and modifying it does not change the Payload.
func (p Payload) Bytes() []byte {
	return p.data[:p.length]
}

// Length returns the payload size in bytes.
func (p Payload) Length() int {
	return int(p.length)
}

// Equal compares the meaningful bytes of two payloads.
func (p Payload) Equal(o Payload) bool {
	return bytes.Equal(p.data[:p.length], o.data[:o.length])
}
