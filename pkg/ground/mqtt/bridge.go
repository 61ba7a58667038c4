package mqtt

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/orbipacket/pkg/orbipacket"
	"github.com/robotalks/orbipacket/pkg/record"
)

// Sender uplinks a packet.
type Sender interface {
	Send(orbipacket.Packet) error
}

// Bridge publishes received telemetry and uplinks telecommands
// published by ground operators.
//
// Topics, relative to the queue prefix:
//
//	<station>/tm/<device>  telemetry records, published
//	<station>/tc/<device>  telecommand records, subscribed
type Bridge struct {
	Queue   *Queue
	Station string
	Format  record.Format
	Sender  Sender

	now func() time.Time
}

// NewBridge creates a Bridge.
func NewBridge(q *Queue, station string, sender Sender) *Bridge {
	return &Bridge{
		Queue:   q,
		Station: station,
		Format:  record.FormatJSON,
		Sender:  sender,
		now:     time.Now,
	}
}

// TelemetryTopic is where telemetry of a device is published.
func (b *Bridge) TelemetryTopic(id orbipacket.DeviceID) string {
	return b.Station + "/tm/" + id.Name()
}

// TelecommandFilter matches the telecommand topics of all devices.
func (b *Bridge) TelecommandFilter() string {
	return b.Station + "/tc/+"
}

// HandlePacket implements link.PacketHandler.
func (b *Bridge) HandlePacket(ctx context.Context, pkt orbipacket.Packet) {
	if !pkt.IsTm() {
		glog.V(2).Infof("bridge: ignore %s packet from %s", pkt.Direction(), pkt.DeviceID().Name())
		return
	}
	rec := record.FromPacket(pkt)
	rec.Station = b.Station
	rec.ReceivedAt = b.now()
	data, err := b.Format.Marshal(rec)
	if err != nil {
		glog.Errorf("bridge: encode record: %v", err)
		return
	}
	b.Queue.Pub(b.TelemetryTopic(pkt.DeviceID()), data)
}

// Run subscribes to telecommands until ctx is done.
func (b *Bridge) Run(ctx context.Context) error {
	sub := b.Queue.Sub(b.TelecommandFilter(), b.handleCommand)
	defer sub.Close()
	if sub.Token.Wait() && sub.Token.Error() != nil {
		return fmt.Errorf("subscribe %s: %w", b.TelecommandFilter(), sub.Token.Error())
	}
	<-ctx.Done()
	return ctx.Err()
}

func (b *Bridge) handleCommand(topic string, payload []byte) {
	pkt, err := b.parseCommand(topic, payload)
	if err != nil {
		glog.Warningf("bridge: drop telecommand on %q: %v", topic, err)
		return
	}
	if err = b.Sender.Send(pkt); err != nil {
		glog.Errorf("bridge: send telecommand to %s: %v", pkt.DeviceID().Name(), err)
	}
}

func (b *Bridge) parseCommand(topic string, payload []byte) (orbipacket.Packet, error) {
	var pkt orbipacket.Packet
	device := topic[strings.LastIndexByte(topic, '/')+1:]
	topicID, err := orbipacket.ParseDeviceID(device)
	if err != nil {
		return pkt, err
	}
	rec, err := b.Format.Unmarshal(payload)
	if err != nil {
		return pkt, err
	}
	if rec.Direction == "" {
		rec.Direction = orbipacket.Telecommand.String()
	}
	if rec.Device == "" {
		rec.Device = device
	}
	if pkt, err = rec.Packet(); err != nil {
		return pkt, err
	}
	if pkt.DeviceID() != topicID {
		return pkt, fmt.Errorf("device %q does not match topic", rec.Device)
	}
	if !pkt.IsTc() {
		return pkt, fmt.Errorf("not a telecommand: %s", rec.Direction)
	}
	return pkt, nil
}
