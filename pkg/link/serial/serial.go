// Package serial opens the radio modem serial port for a link.
package serial

import (
	"fmt"
	"strings"

	goserial "go.bug.st/serial"
)

// DefaultBaudRate is the air rate of the radio modems in use.
const DefaultBaudRate = 57600

var baudRates = []int{
	1200, 2400, 4800, 9600, 19200, 38400, 57600, 115200, 230400, 460800, 921600,
}

// PortOptions describes the serial line parameters.
type PortOptions struct {
	BaudRate int    `json:"baud_rate"`
	DataBits int    `json:"data_bits"`
	StopBits int    `json:"stop_bits"`
	Parity   string `json:"parity"`
}

// Normalize validates the options and fills in defaults for unset values.
func (o PortOptions) Normalize() (PortOptions, error) {
	opts := o
	if opts.BaudRate <= 0 {
		opts.BaudRate = DefaultBaudRate
	}
	if !validBaudRate(opts.BaudRate) {
		return opts, fmt.Errorf("unsupported baud rate %d", opts.BaudRate)
	}

	if opts.DataBits == 0 {
		opts.DataBits = 8
	}
	if opts.DataBits < 5 || opts.DataBits > 8 {
		return opts, fmt.Errorf("invalid data bits %d: must be between 5 and 8", opts.DataBits)
	}

	if opts.StopBits == 0 {
		opts.StopBits = 1
	}
	if opts.StopBits != 1 && opts.StopBits != 2 {
		return opts, fmt.Errorf("invalid stop bits %d: supported values are 1 or 2", opts.StopBits)
	}

	parity, err := ParseParity(opts.Parity)
	if err != nil {
		return opts, err
	}
	opts.Parity = parity
	return opts, nil
}

func validBaudRate(rate int) bool {
	for _, r := range baudRates {
		if r == rate {
			return true
		}
	}
	return false
}

// ParseParity accepts N, E, O or their long forms and returns the short form.
// Empty means none.
func ParseParity(s string) (string, error) {
	switch strings.TrimSpace(strings.ToUpper(s)) {
	case "", "N", "NONE":
		return "N", nil
	case "E", "EVEN":
		return "E", nil
	case "O", "ODD":
		return "O", nil
	}
	return "", fmt.Errorf("unsupported parity %q: expected N, E, or O", s)
}

// Equal reports whether both options describe the same line settings.
func (o PortOptions) Equal(other PortOptions) bool {
	a, errA := o.Normalize()
	b, errB := other.Normalize()
	return errA == nil && errB == nil && a == b
}

// String formats the options like 57600 8N1.
func (o PortOptions) String() string {
	return fmt.Sprintf("%d %d%s%d", o.BaudRate, o.DataBits, o.Parity, o.StopBits)
}

// SerialMode converts the options for go.bug.st/serial.
func (o PortOptions) SerialMode() (*goserial.Mode, error) {
	opts, err := o.Normalize()
	if err != nil {
		return nil, err
	}

	mode := &goserial.Mode{
		BaudRate: opts.BaudRate,
		DataBits: opts.DataBits,
		StopBits: goserial.OneStopBit,
	}
	if opts.StopBits == 2 {
		mode.StopBits = goserial.TwoStopBits
	}
	switch opts.Parity {
	case "E":
		mode.Parity = goserial.EvenParity
	case "O":
		mode.Parity = goserial.OddParity
	default:
		mode.Parity = goserial.NoParity
	}
	return mode, nil
}

// Open opens the serial port at path.
func Open(path string, opts PortOptions) (goserial.Port, error) {
	mode, err := opts.SerialMode()
	if err != nil {
		return nil, err
	}
	port, err := goserial.Open(path, mode)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return port, nil
}

// Ports lists the serial ports present on the system.
func Ports() ([]string, error) {
	return goserial.GetPortsList()
}
