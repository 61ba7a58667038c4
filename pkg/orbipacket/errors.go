package orbipacket

import "fmt"

// PayloadTooLongError indicates an attempt to build a payload
// longer than MaxPayloadSize.
type PayloadTooLongError struct {
	Length int
}

// Error implements error.
func (e *PayloadTooLongError) Error() string {
	return fmt.Sprintf("payload too long: %d bytes (max %d)", e.Length, MaxPayloadSize)
}

// InvalidIDError indicates a device id code with no assigned device.
type InvalidIDError struct {
	ID uint8
}

// Error implements error.
func (e *InvalidIDError) Error() string {
	return fmt.Sprintf("invalid device id: %d", e.ID)
}

// BufferTooSmallError indicates the encode buffer can't hold the frame.
type BufferTooSmallError struct {
	Required  int
	Available int
}

// Error implements error.
func (e *BufferTooSmallError) Error() string {
	return fmt.Sprintf("buffer too small: required %d bytes, but only %d available", e.Required, e.Available)
}

// FramingError indicates the bytes are not valid stuffed data.
type FramingError struct {
	Err error
}

// Error implements error.
func (e *FramingError) Error() string {
	return "invalid frame: " + e.Err.Error()
}

// Unwrap returns the underlying cobs error.
func (e *FramingError) Unwrap() error {
	return e.Err
}

// BufferTooShortError indicates the unstuffed frame can't hold a packet.
type BufferTooShortError struct {
	Length int
}

// Error implements error.
func (e *BufferTooShortError) Error() string {
	return fmt.Sprintf("buffer too short to hold a complete packet (%d bytes long)", e.Length)
}

// UnsupportedVersionError indicates a protocol version other than Version.
type UnsupportedVersionError struct {
	Found uint8
}

// Error implements error.
func (e *UnsupportedVersionError) Error() string {
	return fmt.Sprintf("unsupported protocol version (%d)", e.Found)
}

// InvalidChecksumError indicates the frame failed the integrity check.
type InvalidChecksumError struct {
	Expected uint16
	Found    uint16
}

// Error implements error.
func (e *InvalidChecksumError) Error() string {
	return fmt.Sprintf("invalid packet checksum (expected 0x%04x, found 0x%04x)", e.Expected, e.Found)
}

// InvalidLengthError indicates the declared payload length disagrees
// with the frame size.
type InvalidLengthError struct {
	Expected int
	Found    int
}

// Error implements error.
func (e *InvalidLengthError) Error() string {
	return fmt.Sprintf("invalid packet length (expected %d, found %d)", e.Expected, e.Found)
}

// StreamError reports the frame which aborted DecodeStateless.
// Offset and Delimiter are indices into the buffer passed to
// DecodeStateless: the failing frame spans buf[Offset:Delimiter] and
// buf[Delimiter] is its terminating zero. Dropped is the number of
// frames decoded earlier in the same call and discarded with it;
// their bytes have already been unstuffed in place.
type StreamError struct {
	Offset    int
	Delimiter int
	Dropped   int
	Err       error
}

// Error implements error.
func (e *StreamError) Error() string {
	return fmt.Sprintf("frame at offset %d: %v", e.Offset, e.Err)
}

// Unwrap returns the frame error.
func (e *StreamError) Unwrap() error {
	return e.Err
}
