package codec

import (
	"bytes"
	"fmt"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/orbipacket/pkg/cli/sh"
	"github.com/robotalks/orbipacket/pkg/cobs"
	"github.com/robotalks/orbipacket/pkg/orbipacket"
)

type deviceInfo struct {
	ID      uint8  `json:"id"`
	Name    string `json:"name"`
	Display string `json:"display"`
}

type unstuffed struct {
	Raw      string `json:"raw"`
	Checksum string `json:"checksum"`
	Valid    bool   `json:"valid"`
}

func encodeCmd(dir orbipacket.Direction) func(c *ishell.Context) {
	return func(c *ishell.Context) {
		pkt, err := sh.ParsePacket(dir, c.Args)
		if err != nil {
			c.Err(err)
			return
		}
		var buf [orbipacket.MaxEncodeBufferSize]byte
		frame, err := pkt.Encode(buf[:])
		if err != nil {
			c.Err(err)
			return
		}
		sh.ShellFrom(c).Print(c, map[string]string{"frame": fmt.Sprintf("%x", frame)}, sh.FormatHex(frame))
	}
}

// DecodeFrames decodes a byte stream of frames. A missing final delimiter is added.
func DecodeFrames(data []byte) ([]orbipacket.Packet, error) {
	if len(data) > 0 && data[len(data)-1] != 0 {
		data = append(data, 0)
	}
	var pkts []orbipacket.Packet
	out := make([]orbipacket.Packet, 8)
	for len(data) > 0 {
		remaining, decoded, err := orbipacket.DecodeStateless(data, out)
		if err != nil {
			return pkts, err
		}
		pkts = append(pkts, decoded...)
		data = remaining
		if len(decoded) < len(out) {
			break
		}
	}
	return pkts, nil
}

// Unstuff removes the byte stuffing of a single frame and verifies the checksum.
func Unstuff(frame []byte) ([]byte, uint16, bool, error) {
	frame = bytes.TrimSuffix(frame, []byte{0})
	raw := make([]byte, len(frame))
	n, err := cobs.Decode(raw, frame)
	if err != nil {
		return nil, 0, false, err
	}
	raw = raw[:n]
	if n < 2 {
		return raw, 0, false, nil
	}
	found := uint16(raw[n-1])<<8 | uint16(raw[n-2])
	return raw, found, orbipacket.Checksum(raw[:n-2]) == found, nil
}

var (
	// DevicesCmd lists the device ids.
	DevicesCmd = ishell.Cmd{
		Name:    "devices",
		Aliases: []string{"dev"},
		Help:    "",
		Func: func(c *ishell.Context) {
			s := sh.ShellFrom(c)
			ids := orbipacket.DeviceIDs()
			if s.OutputJSON {
				infos := make([]deviceInfo, len(ids))
				for n, id := range ids {
					infos[n] = deviceInfo{ID: uint8(id), Name: id.Name(), Display: id.String()}
				}
				s.Print(c, infos, "")
				return
			}
			for _, id := range ids {
				c.Printf("%2d %-14s %s\n", uint8(id), id.Name(), id.String())
			}
		},
	}

	// EncodeTmCmd encodes a telemetry packet.
	EncodeTmCmd = ishell.Cmd{
		Name:    "encode.tm",
		Aliases: []string{"etm"},
		Help:    "DEVICE TIMESTAMP [PAYLOAD-HEX]",
		Func:    encodeCmd(orbipacket.Telemetry),
	}

	// EncodeTcCmd encodes a telecommand packet.
	EncodeTcCmd = ishell.Cmd{
		Name:    "encode.tc",
		Aliases: []string{"etc"},
		Help:    "DEVICE TIMESTAMP [PAYLOAD-HEX]",
		Func:    encodeCmd(orbipacket.Telecommand),
	}

	// DecodeCmd decodes frames.
	DecodeCmd = ishell.Cmd{
		Name:    "decode",
		Aliases: []string{"dec"},
		Help:    "FRAMES-HEX",
		Func: func(c *ishell.Context) {
			data, err := sh.ParseHex(c.Args...)
			if err != nil {
				c.Err(err)
				return
			}
			pkts, err := DecodeFrames(data)
			s := sh.ShellFrom(c)
			if s.OutputJSON {
				s.Print(c, sh.Records(pkts), "")
			} else {
				for _, pkt := range pkts {
					c.Println(sh.FormatPacket(pkt))
				}
			}
			if err != nil {
				c.Err(err)
			}
		},
	}

	// UnstuffCmd shows the raw bytes of a frame.
	UnstuffCmd = ishell.Cmd{
		Name: "unstuff",
		Help: "FRAME-HEX",
		Func: func(c *ishell.Context) {
			frame, err := sh.ParseHex(c.Args...)
			if err != nil {
				c.Err(err)
				return
			}
			raw, crc, valid, err := Unstuff(frame)
			if err != nil {
				c.Err(err)
				return
			}
			result := unstuffed{Raw: fmt.Sprintf("%x", raw), Checksum: fmt.Sprintf("%04x", crc), Valid: valid}
			text := fmt.Sprintf("%s\nchecksum %s", sh.FormatHex(raw), result.Checksum)
			if !valid {
				text += " (invalid)"
			}
			sh.ShellFrom(c).Print(c, result, text)
		},
	}
)

func init() {
	sh.AddCmds(&DevicesCmd, &EncodeTmCmd, &EncodeTcCmd, &DecodeCmd, &UnstuffCmd)
}
