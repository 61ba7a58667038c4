package sh

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/orbipacket/pkg/env"
	"github.com/robotalks/orbipacket/pkg/link"
)

// Shell provides ishell backed interactive shell.
type Shell struct {
	Interactive bool
	OutputJSON  bool
	AutoOpen    bool

	Shell  *ishell.Shell
	Config *env.Config
	Conn   *Conn
}

// Conn is an open link with its receiving loop.
type Conn struct {
	Port    string
	Link    *link.Link
	Packets *link.PacketChan

	cancel func()
	done   chan error
}

const (
	shellKey     = "$shell"
	closedPrompt = "[closed] > "

	// packets buffered until read with recv.
	packetBacklog = 256
)

var (
	evalOnly   bool
	outputJSON bool

	commands = []*ishell.Cmd{
		&OpenCmd,
		&CloseCmd,
	}
)

func init() {
	flag.BoolVar(&evalOnly, "e", evalOnly, "Evaluation only, no interactive shell.")
	flag.BoolVar(&outputJSON, "json", outputJSON, "Print output in JSON.")
}

// AddCmds is used by other commands providers during init func.
func AddCmds(cmds ...*ishell.Cmd) {
	commands = append(commands, cmds...)
}

// New creates a new shell.
func New(conf *env.Config) *Shell {
	s := &Shell{
		Interactive: !evalOnly,
		OutputJSON:  outputJSON,

		Shell:  ishell.New(),
		Config: conf,
	}
	s.Shell.Set(shellKey, s)
	s.Shell.SetPrompt(closedPrompt)
	for _, cmd := range commands {
		s.Shell.AddCmd(cmd)
	}
	return s
}

// ShellFrom gets Shell from ishell context.
func ShellFrom(c *ishell.Context) *Shell {
	return c.Get(shellKey).(*Shell)
}

// MustBeOpen wraps command func requiring an open link.
func MustBeOpen(fn func(c *ishell.Context)) func(c *ishell.Context) {
	return func(c *ishell.Context) {
		if ShellFrom(c).Conn == nil {
			c.Err(fmt.Errorf("link not open"))
			return
		}
		fn(c)
	}
}

// Print prints v as JSON with -json, or the text otherwise.
func (s *Shell) Print(c *ishell.Context, v interface{}, text string) {
	if s.OutputJSON {
		out, err := json.Marshal(v)
		if err != nil {
			c.Err(err)
			return
		}
		c.Println(string(out))
		return
	}
	c.Println(text)
}

// Open opens the port and starts receiving.
func (s *Shell) Open(port string) error {
	conf := *s.Config
	conf.SerialPort = port
	if err := conf.Validate(); err != nil {
		return err
	}
	rwc, err := conf.OpenPort()
	if err != nil {
		return err
	}

	conn := &Conn{
		Port:    port,
		Link:    link.NewLink(rwc),
		Packets: link.NewPacketChan(packetBacklog),
		done:    make(chan error, 1),
	}
	conn.Link.BufferSize = conf.BufferSize
	conn.Link.BatchSize = conf.BatchSize
	conn.Link.Handler = conn.Packets

	var ctx context.Context
	ctx, conn.cancel = context.WithCancel(context.Background())
	go func() {
		conn.done <- conn.Link.Run(ctx)
		rwc.Close()
	}()

	s.Close()
	s.Conn = conn
	s.Shell.SetPrompt(fmt.Sprintf("[%s] > ", port))
	return nil
}

// Done delivers the result of the receiving loop once it stops.
func (c *Conn) Done() <-chan error {
	return c.done
}

// Close stops the current link.
func (s *Shell) Close() {
	if s.Conn != nil {
		s.Conn.cancel()
		s.Conn = nil
		s.Shell.SetPrompt(closedPrompt)
	}
}

// Run runs the shell.
func (s *Shell) Run(args ...string) {
	if s.AutoOpen && s.Config.SerialPort != "" {
		if s.Interactive {
			s.Shell.Printf("Opening %s ...\n", s.Config.SerialPort)
		}
		if err := s.Open(s.Config.SerialPort); err != nil {
			log.Fatalf("open %q failed: %v", s.Config.SerialPort, err)
		}
	}

	if len(args) > 0 {
		if err := s.Shell.Process(args...); err != nil {
			log.Fatalln(err)
		}
		return
	}
	if s.Interactive {
		s.Shell.Run()
		return
	}
	log.Fatalln("command expected")
}

var (
	// OpenCmd opens a link on a serial port.
	OpenCmd = ishell.Cmd{
		Name:    "open",
		Aliases: []string{"o"},
		Help:    "[PORT]",
		Func: func(c *ishell.Context) {
			s := ShellFrom(c)
			port := s.Config.SerialPort
			if len(c.Args) > 0 {
				port = c.Args[0]
			}
			if port == "" {
				c.Err(fmt.Errorf("PORT required"))
				return
			}
			if err := s.Open(port); err != nil {
				c.Err(err)
			}
		},
	}

	// CloseCmd closes the current link.
	CloseCmd = ishell.Cmd{
		Name: "close",
		Help: "",
		Func: func(c *ishell.Context) {
			ShellFrom(c).Close()
		},
	}
)

// Main is a helper to provide a single call in main.
func Main() {
	flag.Parse()
	New(env.NewConfig()).WithAutoOpen(true).Run(flag.Args()...)
}

// WithAutoOpen sets AutoOpen.
func (s *Shell) WithAutoOpen(en bool) *Shell {
	s.AutoOpen = en
	return s
}
