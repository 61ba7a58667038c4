package link

import (
	"context"
	"sync"

	"github.com/robotalks/orbipacket/pkg/orbipacket"
)

// PacketHandler is called when a packet is received.
type PacketHandler interface {
	HandlePacket(context.Context, orbipacket.Packet)
}

// HandlePacketFunc is func type of PacketHandler.
type HandlePacketFunc func(context.Context, orbipacket.Packet)

// HandlePacket implements PacketHandler.
func (f HandlePacketFunc) HandlePacket(ctx context.Context, pkt orbipacket.Packet) {
	f(ctx, pkt)
}

// HandlerMux dispatches every packet to all handlers, in the order they
// were added.
type HandlerMux struct {
	handlers []PacketHandler
	lock     sync.RWMutex
}

// Add appends handlers.
func (m *HandlerMux) Add(handlers ...PacketHandler) *HandlerMux {
	m.lock.Lock()
	m.handlers = append(m.handlers, handlers...)
	m.lock.Unlock()
	return m
}

// HandlePacket implements PacketHandler.
func (m *HandlerMux) HandlePacket(ctx context.Context, pkt orbipacket.Packet) {
	m.lock.RLock()
	handlers := m.handlers
	m.lock.RUnlock()
	for _, h := range handlers {
		h.HandlePacket(ctx, pkt)
	}
}

// PacketChan delivers received packets on a channel.
// When the channel is full, packets are dropped and counted.
type PacketChan struct {
	ch      chan orbipacket.Packet
	dropped uint64
	lock    sync.Mutex
}

// NewPacketChan creates a PacketChan with the given capacity.
func NewPacketChan(size int) *PacketChan {
	return &PacketChan{ch: make(chan orbipacket.Packet, size)}
}

// C returns the receiving end.
func (c *PacketChan) C() <-chan orbipacket.Packet {
	return c.ch
}

// Dropped returns the number of packets dropped so far.
func (c *PacketChan) Dropped() uint64 {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.dropped
}

// HandlePacket implements PacketHandler.
func (c *PacketChan) HandlePacket(ctx context.Context, pkt orbipacket.Packet) {
	select {
	case c.ch <- pkt:
	default:
		c.lock.Lock()
		c.dropped++
		c.lock.Unlock()
	}
}
