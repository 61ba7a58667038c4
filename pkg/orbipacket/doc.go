// Package orbipacket provides the packet codec of the OrbiPacket protocol.
package orbipacket

// OrbiPacket is communicated between a flight unit and its ground station
// over an unreliable byte-oriented link (e.g. a radio modem on a serial port).
// Telemetry (TM) flows from the device to the ground, telecommands (TC) the
// other way. Both share one frame layout, all integers little-endian:
//
//	offset  size  field
//	0       1     version
//	1       1     payload length (0-255)
//	2       1     control: bit 7 direction (0=TM, 1=TC), bits 6-2 device id
//	3       8     timestamp
//	11      n     payload
//	11+n    2     CRC-16/OPENSAFETY-B over bytes [0, 11+n)
//
// The frame is COBS-stuffed and terminated by a single zero byte, which
// lets a receiver find frame boundaries in a concatenated byte stream.
//
// This package only frames and verifies. It does not retransmit, acknowledge
// or secure anything. The codec keeps no state between calls: the streaming
// decoder returns the unconsumed tail of its input and the caller carries it
// over to the next call.
//
// Producer: flight unit (TM), ground station (TC)
// Consumer: ground station (TM), flight unit (TC)
