// Package cobs implements Consistent Overhead Byte Stuffing.
//
// Encoded data never contains a zero byte, so a single zero can delimit
// frames on a continuous byte stream. Encoding adds at most one byte per
// 254 bytes of input. Neither direction allocates: Encode works
// buffer-to-buffer and DecodeInPlace overwrites its input.
package cobs

import "errors"

const maxBlock = 0xff

var (
	// ErrZeroByte indicates a zero byte inside encoded data.
	ErrZeroByte = errors.New("cobs: unexpected zero byte")
	// ErrTruncated indicates a code byte pointing past the end of data.
	ErrTruncated = errors.New("cobs: truncated block")
)

// MaxEncodedLen returns the worst-case encoded length of n bytes,
// excluding the frame delimiter.
func MaxEncodedLen(n int) int {
	if n == 0 {
		return 1
	}
	return n + (n+maxBlock-2)/(maxBlock-1)
}

// Encode stuffs src into dst and returns the number of bytes written.
// No delimiter is appended. dst must be at least MaxEncodedLen(len(src))
// bytes long and must not overlap src.
func Encode(dst, src []byte) int {
	codeAt, out, code := 0, 1, byte(1)
	for i, b := range src {
		if b != 0 {
			dst[out] = b
			out++
			code++
			if code != maxBlock {
				continue
			}
			dst[codeAt] = code
			code = 1
			if i+1 == len(src) {
				return out
			}
			codeAt = out
			out++
			continue
		}
		dst[codeAt] = code
		codeAt = out
		out++
		code = 1
	}
	dst[codeAt] = code
	return out
}

// DecodeInPlace reverses Encode over buf, which must not include the
// delimiter. It returns the decoded length; buf[:n] holds the decoded
// bytes and the remainder of buf is left in an unspecified state.
// The original contents are not recoverable afterwards.
func DecodeInPlace(buf []byte) (int, error) {
	return decode(buf, buf)
}

// Decode reverses Encode from src into dst without modifying src.
// dst must be at least len(src) bytes long.
func Decode(dst, src []byte) (int, error) {
	return decode(dst, src)
}

// decode is safe for dst == src: the write index never passes the
// read index because every block starts with a consumed code byte.
func decode(dst, src []byte) (int, error) {
	r, w := 0, 0
	for r < len(src) {
		code := src[r]
		if code == 0 {
			return 0, ErrZeroByte
		}
		r++
		end := r + int(code) - 1
		if end > len(src) {
			return 0, ErrTruncated
		}
		for ; r < end; r++ {
			b := src[r]
			if b == 0 {
				return 0, ErrZeroByte
			}
			dst[w] = b
			w++
		}
		if code != maxBlock && r < len(src) {
			dst[w] = 0
			w++
		}
	}
	return w, nil
}
