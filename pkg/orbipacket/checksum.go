package orbipacket

import "github.com/sigurn/crc16"

// CRC-16/OPENSAFETY-B
var crcTable = crc16.MakeTable(crc16.Params{
	Poly:   0x755b,
	Init:   0x0000,
	RefIn:  false,
	RefOut: false,
	XorOut: 0x0000,
	Check:  0x20fe,
	Name:   "CRC-16/OPENSAFETY-B",
})

// Checksum computes the frame integrity check over data.
// It detects corruption only and offers no protection against tampering.
func Checksum(data []byte) uint16 {
	return crc16.Checksum(data, crcTable)
}
