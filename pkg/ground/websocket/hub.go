// Package websocket streams received packets to browsers as JSON records.
package websocket

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/golang/glog"
	"golang.org/x/net/websocket"

	"github.com/robotalks/orbipacket/pkg/orbipacket"
	"github.com/robotalks/orbipacket/pkg/record"
)

// DefaultQueueSize is the number of records buffered per client.
const DefaultQueueSize = 64

type filter struct {
	device    string
	direction string
}

func (f filter) match(rec *record.Record) bool {
	return (f.device == "" || f.device == rec.Device) &&
		(f.direction == "" || f.direction == rec.Direction)
}

type client struct {
	filter  filter
	records chan *record.Record
}

// Hub fans packets out to websocket clients. A client that can't keep up
// loses records rather than stalling the link.
type Hub struct {
	Station   string
	QueueSize int

	lock    sync.Mutex
	clients map[*client]struct{}
	dropped uint64
	now     func() time.Time
}

// NewHub creates a Hub.
func NewHub(station string) *Hub {
	return &Hub{
		Station:   station,
		QueueSize: DefaultQueueSize,
		clients:   make(map[*client]struct{}),
		now:       time.Now,
	}
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.lock.Lock()
	defer h.lock.Unlock()
	return len(h.clients)
}

// Dropped returns the number of records not delivered to slow clients.
func (h *Hub) Dropped() uint64 {
	h.lock.Lock()
	defer h.lock.Unlock()
	return h.dropped
}

// HandlePacket implements link.PacketHandler.
func (h *Hub) HandlePacket(ctx context.Context, pkt orbipacket.Packet) {
	rec := record.FromPacket(pkt)
	rec.Station = h.Station
	rec.ReceivedAt = h.now()

	h.lock.Lock()
	defer h.lock.Unlock()
	for c := range h.clients {
		if !c.filter.match(&rec) {
			continue
		}
		select {
		case c.records <- &rec:
		default:
			h.dropped++
		}
	}
}

func (h *Hub) register(f filter) *client {
	size := h.QueueSize
	if size <= 0 {
		size = DefaultQueueSize
	}
	c := &client{filter: f, records: make(chan *record.Record, size)}
	h.lock.Lock()
	h.clients[c] = struct{}{}
	h.lock.Unlock()
	return c
}

func (h *Hub) unregister(c *client) {
	h.lock.Lock()
	delete(h.clients, c)
	h.lock.Unlock()
}

// Handler serves the feed. Query parameters device (name) and
// direction (TM or TC) narrow it down.
func (h *Hub) Handler() http.Handler {
	return websocket.Handler(h.serve)
}

func (h *Hub) serve(conn *websocket.Conn) {
	defer conn.Close()
	query := conn.Request().URL.Query()
	f := filter{device: query.Get("device")}
	if dir := query.Get("direction"); dir != "" {
		d, err := record.ParseDirection(dir)
		if err != nil {
			websocket.JSON.Send(conn, map[string]string{"error": err.Error()})
			return
		}
		f.direction = d.String()
	}

	c := h.register(f)
	defer h.unregister(c)
	glog.V(2).Infof("websocket client %s connected", conn.Request().RemoteAddr)

	// clients don't talk, reading only detects the close.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		var msg []byte
		for websocket.Message.Receive(conn, &msg) == nil {
		}
	}()

	for {
		select {
		case rec := <-c.records:
			if err := websocket.JSON.Send(conn, rec); err != nil {
				glog.V(2).Infof("websocket client %s: %v", conn.Request().RemoteAddr, err)
				return
			}
		case <-closed:
			glog.V(2).Infof("websocket client %s disconnected", conn.Request().RemoteAddr)
			return
		}
	}
}
