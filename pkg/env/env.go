package env

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/golang/glog"

	fx "github.com/robotalks/orbipacket/pkg/framework"
	"github.com/robotalks/orbipacket/pkg/ground/mqtt"
	"github.com/robotalks/orbipacket/pkg/ground/websocket"
	"github.com/robotalks/orbipacket/pkg/link"
	"github.com/robotalks/orbipacket/pkg/link/serial"
	"github.com/robotalks/orbipacket/pkg/record"
)

// Env holds the components of a ground station.
type Env struct {
	Config *Config
	Port   io.ReadWriteCloser
	Link   *link.Link
	Mux    *link.HandlerMux
	Queue  *mqtt.Queue
	Bridge *mqtt.Bridge
	Hub    *websocket.Hub
}

type stdio struct {
	io.Reader
	io.Writer
}

func (stdio) Close() error {
	return os.Stdin.Close()
}

// OpenPort opens the configured serial port.
func (c *Config) OpenPort() (io.ReadWriteCloser, error) {
	if c.SerialPort == StdioPort {
		return stdio{Reader: os.Stdin, Writer: os.Stdout}, nil
	}
	return serial.Open(c.SerialPort, c.Serial)
}

// NewEnv opens the port and creates the configured components.
func (c *Config) NewEnv() (*Env, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	port, err := c.OpenPort()
	if err != nil {
		return nil, err
	}
	env, err := c.newEnvWithPort(port)
	if err != nil {
		port.Close()
		return nil, err
	}
	return env, nil
}

func (c *Config) newEnvWithPort(port io.ReadWriteCloser) (*Env, error) {
	env := &Env{
		Config: c,
		Port:   port,
		Link:   link.NewLink(port),
		Mux:    &link.HandlerMux{},
	}
	env.Link.BufferSize = c.BufferSize
	env.Link.BatchSize = c.BatchSize
	env.Link.Handler = env.Mux

	if c.MQTTBrokerURL != "" {
		format, err := record.ParseFormat(c.Format)
		if err != nil {
			return nil, err
		}
		if env.Queue, err = mqtt.NewQueueFromURL(c.MQTTBrokerURL); err != nil {
			return nil, fmt.Errorf("invalid MQTT broker URL: %w", err)
		}
		env.Bridge = mqtt.NewBridge(env.Queue, c.Station, env.Link)
		env.Bridge.Format = format
		env.Mux.Add(env.Bridge)
	}
	if c.WebsocketAddr != "" {
		env.Hub = websocket.NewHub(c.Station)
		env.Mux.Add(env.Hub)
	}
	return env, nil
}

// Runnables returns what to run for the configured components.
func (e *Env) Runnables() []fx.Runnable {
	runnables := []fx.Runnable{
		fx.NamedRun("link", fx.RunFunc(func(ctx context.Context) error {
			return fx.RunWithContextCloser(ctx, e.Port, func() error {
				return e.Link.Run(ctx)
			})
		})),
	}
	if e.Bridge != nil {
		runnables = append(runnables, fx.NamedRun("mqtt", fx.RunFunc(e.runBridge)))
	}
	if e.Hub != nil {
		runnables = append(runnables, fx.NamedRun("websocket", fx.RunFunc(e.runHub)))
	}
	return runnables
}

func (e *Env) runBridge(ctx context.Context) error {
	defer e.Queue.Close()
	token := e.Queue.Connect()
	if token.Wait() && token.Error() != nil {
		return fmt.Errorf("connect MQTT broker: %w", token.Error())
	}
	return e.Bridge.Run(ctx)
}

func (e *Env) runHub(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.Handle("/feed", e.Hub.Handler())
	srv := &http.Server{Addr: e.Config.WebsocketAddr, Handler: mux}
	errCh := make(chan error, 1)
	go func() {
		glog.Infof("websocket feed on %s/feed", e.Config.WebsocketAddr)
		errCh <- srv.ListenAndServe()
	}()
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return ctx.Err()
	}
}
