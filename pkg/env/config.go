// Package env configures the ground-station components from flags and
// environment variables.
package env

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/robotalks/orbipacket/pkg/link"
	"github.com/robotalks/orbipacket/pkg/link/serial"
	"github.com/robotalks/orbipacket/pkg/record"
)

// StdioPort is the SerialPort value that selects stdin/stdout.
const StdioPort = "-"

// Config provides common options to set up an Env.
type Config struct {
	// SerialPort is the device path of the radio modem, or StdioPort.
	SerialPort string
	Serial     serial.PortOptions

	// MQTTBrokerURL specifies the MQTT broker to bridge to.
	// e.g. mqtt://host:port/topic-prefix
	MQTTBrokerURL string
	Station       string
	Format        string

	// WebsocketAddr is the listen address of the live feed.
	WebsocketAddr string

	BufferSize int
	BatchSize  int

	envErr error
}

var defaultConfig = Config{
	Serial:     serial.PortOptions{BaudRate: serial.DefaultBaudRate},
	Format:     string(record.FormatJSON),
	BufferSize: link.DefaultBufferSize,
	BatchSize:  link.DefaultBatchSize,
}

func init() {
	defaultConfig.envErr = defaultConfig.loadEnv(os.Getenv)
	if defaultConfig.Station == "" {
		defaultConfig.Station = StationID()
	}
}

func (c *Config) loadEnv(getenv func(string) string) error {
	if val := getenv("ORBI_SERIAL"); val != "" {
		c.SerialPort = val
	}
	if val := getenv("ORBI_BAUD"); val != "" {
		baud, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("ORBI_BAUD: %w", err)
		}
		c.Serial.BaudRate = baud
	}
	if val := getenv("ORBI_PARITY"); val != "" {
		c.Serial.Parity = val
	}
	if val := getenv("ORBI_MQTT_URL"); val != "" {
		c.MQTTBrokerURL = val
	}
	if val := getenv("ORBI_STATION"); val != "" {
		c.Station = val
	}
	if val := getenv("ORBI_FORMAT"); val != "" {
		c.Format = val
	}
	if val := getenv("ORBI_WS_ADDR"); val != "" {
		c.WebsocketAddr = val
	}
	return nil
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.StringVar(&defaultConfig.SerialPort, "serial", defaultConfig.SerialPort, "Serial port of the radio modem, - for stdio")
	flag.IntVar(&defaultConfig.Serial.BaudRate, "baud", defaultConfig.Serial.BaudRate, "Serial baud rate")
	flag.StringVar(&defaultConfig.Serial.Parity, "parity", defaultConfig.Serial.Parity, "Serial parity: N, E or O")
	flag.StringVar(&defaultConfig.MQTTBrokerURL, "mqtt", defaultConfig.MQTTBrokerURL, "MQTT broker URL")
	flag.StringVar(&defaultConfig.Station, "station", defaultConfig.Station, "Ground station name, first level of MQTT topics")
	flag.StringVar(&defaultConfig.Format, "format", defaultConfig.Format, "Record format on MQTT: json or proto")
	flag.StringVar(&defaultConfig.WebsocketAddr, "ws", defaultConfig.WebsocketAddr, "Listen address of the websocket feed")
	flag.IntVar(&defaultConfig.BufferSize, "rx-buffer", defaultConfig.BufferSize, "Receive buffer size in bytes")
}

// Default gets the default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a Config with default configurations.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// Validate checks the config.
func (c *Config) Validate() error {
	if c.envErr != nil {
		return c.envErr
	}
	if c.SerialPort == "" {
		return fmt.Errorf("serial port must be specified")
	}
	if c.SerialPort != StdioPort {
		if _, err := c.Serial.Normalize(); err != nil {
			return err
		}
	}
	if c.Station == "" {
		return fmt.Errorf("station must be specified")
	}
	if _, err := record.ParseFormat(c.Format); err != nil {
		return err
	}
	return nil
}

// MustNewEnv creates Env and fails on error.
func (c *Config) MustNewEnv() *Env {
	env, err := c.NewEnv()
	if err != nil {
		log.Fatalln(err)
	}
	return env
}
