package cobs

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncode(t *testing.T) {
	testCases := []struct {
		name   string
		in     []byte
		expect []byte
	}{
		{"empty", []byte{}, []byte{1}},
		{"single zero", []byte{0}, []byte{1, 1}},
		{"two zeros", []byte{0, 0}, []byte{1, 1, 1}},
		{"zero in middle", []byte{0x11, 0x22, 0, 0x33}, []byte{3, 0x11, 0x22, 2, 0x33}},
		{"no zero", []byte{0x11, 0x22, 0x33, 0x44}, []byte{5, 0x11, 0x22, 0x33, 0x44}},
		{"trailing zeros", []byte{0x11, 0, 0, 0}, []byte{2, 0x11, 1, 1, 1}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			dst := make([]byte, MaxEncodedLen(len(tc.in)))
			n := Encode(dst, tc.in)
			require.Equal(t, tc.expect, dst[:n])
			require.Equal(t, -1, bytes.IndexByte(dst[:n], 0))

			n, err := DecodeInPlace(dst[:n])
			require.NoError(t, err)
			require.Equal(t, tc.in, dst[:n])
		})
	}
}

func TestLongBlocks(t *testing.T) {
	for _, size := range []int{253, 254, 255, 508, 600} {
		for _, tail := range [][]byte{nil, {0}, {0, 7}} {
			in := make([]byte, size, size+len(tail))
			for i := range in {
				in[i] = byte(i%255) + 1
			}
			in = append(in, tail...)

			dst := make([]byte, MaxEncodedLen(len(in)))
			n := Encode(dst, in)
			require.True(t, n <= MaxEncodedLen(len(in)))
			require.Equal(t, -1, bytes.IndexByte(dst[:n], 0))

			out := make([]byte, n)
			m, err := Decode(out, dst[:n])
			require.NoError(t, err)
			require.Equal(t, in, out[:m], "size=%d tail=%v", size, tail)
		}
	}
}

func TestMaxEncodedLen(t *testing.T) {
	for n, expect := range map[int]int{
		0:   1,
		1:   2,
		253: 254,
		254: 255,
		255: 257,
		508: 510,
		509: 512,
	} {
		require.Equal(t, expect, MaxEncodedLen(n), "n=%d", n)
	}
}

func TestEncodeNeverWritesPastResult(t *testing.T) {
	in := bytes.Repeat([]byte{0xaa}, 254)
	dst := bytes.Repeat([]byte{0xee}, MaxEncodedLen(len(in))+4)
	n := Encode(dst, in)
	require.Equal(t, 255, n)
	require.Equal(t, MaxEncodedLen(len(in)), n)
	for _, b := range dst[n:] {
		require.Equal(t, byte(0xee), b)
	}
}

func TestDecodeErrors(t *testing.T) {
	testCases := []struct {
		name string
		in   []byte
		err  error
	}{
		{"zero code", []byte{0, 1}, ErrZeroByte},
		{"zero in block", []byte{3, 1, 0}, ErrZeroByte},
		{"truncated", []byte{5, 1, 2}, ErrTruncated},
		{"truncated after block", []byte{2, 1, 4, 9}, ErrTruncated},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := DecodeInPlace(append([]byte(nil), tc.in...))
			require.Equal(t, tc.err, err)
		})
	}
}

func TestDecodeLeavesSourceIntact(t *testing.T) {
	src := []byte{3, 0x11, 0x22, 2, 0x33}
	orig := append([]byte(nil), src...)
	dst := make([]byte, len(src))
	n, err := Decode(dst, src)
	require.NoError(t, err)
	require.Equal(t, []byte{0x11, 0x22, 0, 0x33}, dst[:n])
	require.Equal(t, orig, src)
}
