package packet

import (
	"fmt"
	"strconv"
	"time"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/orbipacket/pkg/cli/sh"
	"github.com/robotalks/orbipacket/pkg/orbipacket"
	"github.com/robotalks/orbipacket/pkg/record"
)

const defaultRecvTimeout = 5 * time.Second

var (
	// SendCmd uplinks a telecommand.
	SendCmd = ishell.Cmd{
		Name:    "send",
		Aliases: []string{"tc"},
		Help:    "DEVICE TIMESTAMP [PAYLOAD-HEX]",
		Func: sh.MustBeOpen(func(c *ishell.Context) {
			pkt, err := sh.ParsePacket(orbipacket.Telecommand, c.Args)
			if err != nil {
				c.Err(err)
				return
			}
			if err := sh.ShellFrom(c).Conn.Link.Send(pkt); err != nil {
				c.Err(err)
				return
			}
			sh.ShellFrom(c).Print(c, record.FromPacket(pkt), "OK")
		}),
	}

	// RecvCmd prints received packets.
	RecvCmd = ishell.Cmd{
		Name:    "recv",
		Aliases: []string{"r"},
		Help:    "[COUNT] [TIMEOUT]",
		Func: sh.MustBeOpen(func(c *ishell.Context) {
			count, timeout := 1, defaultRecvTimeout
			var err error
			if len(c.Args) > 0 {
				if count, err = strconv.Atoi(c.Args[0]); err != nil || count < 1 {
					c.Err(fmt.Errorf("invalid COUNT: %q", c.Args[0]))
					return
				}
			}
			if len(c.Args) > 1 {
				if timeout, err = time.ParseDuration(c.Args[1]); err != nil {
					c.Err(fmt.Errorf("invalid TIMEOUT: %v", err))
					return
				}
			}

			s := sh.ShellFrom(c)
			deadline := time.After(timeout)
			for n := 0; n < count; n++ {
				select {
				case pkt := <-s.Conn.Packets.C():
					s.Print(c, record.FromPacket(pkt), sh.FormatPacket(pkt))
				case err := <-s.Conn.Done():
					s.Close()
					if err == nil {
						err = fmt.Errorf("link closed")
					}
					c.Err(err)
					return
				case <-deadline:
					c.Err(fmt.Errorf("timeout after %d packets", n))
					return
				}
			}
		}),
	}

	// StatsCmd prints the link counters.
	StatsCmd = ishell.Cmd{
		Name: "stats",
		Help: "",
		Func: sh.MustBeOpen(func(c *ishell.Context) {
			s := sh.ShellFrom(c)
			st := s.Conn.Link.Stats()
			s.Print(c, st, fmt.Sprintf(
				"received %d bytes, %d packets (%d not read)\n"+
					"decode errors %d, dropped %d bytes\n"+
					"sent %d packets, %d errors",
				st.BytesReceived, st.Packets, s.Conn.Packets.Dropped(),
				st.DecodeErrors, st.BytesDropped,
				st.PacketsSent, st.SendErrors))
		}),
	}
)

func init() {
	sh.AddCmds(&SendCmd, &RecvCmd, &StatsCmd)
}
