package orbipacket

import (
	"bytes"
	"encoding/binary"

	"github.com/robotalks/orbipacket/pkg/cobs"
)

// DecodeSingle decodes one stuffed frame, without its delimiter.
//
// The frame is unstuffed in place: buf is overwritten and the encoded
// bytes can't be recovered afterwards. The returned Packet owns a copy
// of the payload and does not refer to buf.
//
// Checks run in this order and the first failure is returned:
// stuffing, minimum size, version, checksum, declared length, device id.
// The checksum is verified before the length byte is trusted.
// Reserved control bits are ignored.
func DecodeSingle(buf []byte) (Packet, error) {
	var pkt Packet

	n, err := cobs.DecodeInPlace(buf)
	if err != nil {
		return pkt, &FramingError{Err: err}
	}
	if n < Overhead {
		return pkt, &BufferTooShortError{Length: n}
	}
	frame := buf[:n]

	if frame[0] != Version {
		return pkt, &UnsupportedVersionError{Found: frame[0]}
	}

	found := binary.LittleEndian.Uint16(frame[n-checksumSize:])
	if expected := Checksum(frame[:n-checksumSize]); found != expected {
		return pkt, &InvalidChecksumError{Expected: expected, Found: found}
	}

	payloadLen, actual := int(frame[1]), n-Overhead
	if payloadLen != actual {
		return pkt, &InvalidLengthError{Expected: actual, Found: payloadLen}
	}

	control := frame[2]
	id, err := DeviceIDFromByte((control & controlIDMask) >> controlIDShift)
	if err != nil {
		return pkt, err
	}
	if control&controlDirection != 0 {
		pkt.dir = Telecommand
	}

	pkt.version = frame[0]
	pkt.deviceID = id
	pkt.timestamp = NewTimestamp(binary.LittleEndian.Uint64(frame[3:headerSize]))
	pkt.payload.length = uint8(copy(pkt.payload.data[:], frame[headerSize:headerSize+payloadLen]))
	return pkt, nil
}

// DecodeStateless decodes the zero-delimited frames at the start of buf
// into out, in arrival order, until out is full or no delimiter is left.
//
// remaining is the sub-slice of buf starting at the first byte not
// consumed: the next undecoded frame or an incomplete trailing fragment.
// Keep it and prepend it to the bytes received next; nothing is buffered
// between calls. decoded is the populated prefix of out.
//
// Every decoded frame is unstuffed in place, see DecodeSingle. The first
// frame that fails to decode aborts the call with a *StreamError and no
// packets; choosing where to resynchronize is up to the caller.
func DecodeStateless(buf []byte, out []Packet) (remaining []byte, decoded []Packet, err error) {
	var offset, count int
	for count < len(out) {
		idx := bytes.IndexByte(buf[offset:], 0)
		if idx < 0 {
			break
		}
		end := offset + idx
		pkt, err := DecodeSingle(buf[offset:end])
		if err != nil {
			return nil, nil, &StreamError{
				Offset:    offset,
				Delimiter: end,
				Dropped:   count,
				Err:       err,
			}
		}
		out[count] = pkt
		count++
		offset = end + 1
	}
	return buf[offset:], out[:count], nil
}
