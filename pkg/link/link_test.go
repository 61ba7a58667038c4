package link

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/orbipacket/pkg/orbipacket"
)

type testStream struct {
	chunks  chan []byte
	pending []byte
	written bytes.Buffer
	lock    sync.Mutex
}

func newTestStream(chunks ...[]byte) *testStream {
	s := &testStream{chunks: make(chan []byte, len(chunks))}
	for _, chunk := range chunks {
		s.chunks <- chunk
	}
	close(s.chunks)
	return s
}

func (s *testStream) Read(p []byte) (int, error) {
	if len(s.pending) == 0 {
		chunk, ok := <-s.chunks
		if !ok {
			return 0, io.EOF
		}
		s.pending = chunk
	}
	n := copy(p, s.pending)
	s.pending = s.pending[n:]
	return n, nil
}

func (s *testStream) Write(p []byte) (int, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.written.Write(p)
}

type collector struct {
	pkts []orbipacket.Packet
}

func (c *collector) HandlePacket(ctx context.Context, pkt orbipacket.Packet) {
	c.pkts = append(c.pkts, pkt)
}

func frameOf(t *testing.T, pkt orbipacket.Packet) []byte {
	buf := make([]byte, pkt.EncodeBufferSize())
	frame, err := pkt.Encode(buf)
	require.NoError(t, err)
	return append([]byte(nil), frame...)
}

func testPackets(n int) []orbipacket.Packet {
	pkts := make([]orbipacket.Packet, n)
	for i := range pkts {
		data := bytes.Repeat([]byte{byte(i), 0}, i*7%120)
		id := orbipacket.DeviceID(i % 16)
		if i%2 == 0 {
			pkts[i] = orbipacket.NewTmPacket(id, orbipacket.NewTimestamp(uint64(i)), orbipacket.MustPayload(data)).Packet()
		} else {
			pkts[i] = orbipacket.NewTcPacket(id, orbipacket.NewTimestamp(uint64(i)), orbipacket.MustPayload(data)).Packet()
		}
	}
	return pkts
}

func runLink(t *testing.T, l *Link) {
	done := make(chan error, 1)
	go func() { done <- l.Run(context.Background()) }()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("link did not stop at end of stream")
	}
}

func requirePackets(t *testing.T, expected, actual []orbipacket.Packet) {
	require.Len(t, actual, len(expected))
	for i := range expected {
		require.True(t, expected[i].Equal(actual[i]), "packet %d", i)
	}
}

func TestLinkReceive(t *testing.T) {
	pkts := testPackets(25)
	var stream []byte
	for _, pkt := range pkts {
		stream = append(stream, frameOf(t, pkt)...)
	}

	var chunks [][]byte
	for size := 1; len(stream) > 0; size = size*3%61 + 1 {
		if size > len(stream) {
			size = len(stream)
		}
		chunks = append(chunks, stream[:size])
		stream = stream[size:]
	}

	c := &collector{}
	l := NewLink(newTestStream(chunks...))
	l.Handler = c
	l.BatchSize = 4
	runLink(t, l)

	requirePackets(t, pkts, c.pkts)
	stats := l.Stats()
	require.Equal(t, uint64(len(pkts)), stats.Packets)
	require.Zero(t, stats.DecodeErrors)
	require.Zero(t, stats.BytesDropped)
}

func TestLinkResync(t *testing.T) {
	pkts := testPackets(4)
	bad := frameOf(t, pkts[1])
	// timestamp low byte, ahead of the first stuffed zero.
	require.Equal(t, byte(1), bad[4])
	bad[4] = 2

	c := &collector{}
	l := NewLink(newTestStream(
		frameOf(t, pkts[0]),
		bad,
		append(frameOf(t, pkts[2]), frameOf(t, pkts[3])...),
	))
	l.Handler = c
	runLink(t, l)

	requirePackets(t, []orbipacket.Packet{pkts[0], pkts[2], pkts[3]}, c.pkts)
	stats := l.Stats()
	require.Equal(t, uint64(1), stats.DecodeErrors)
	require.Equal(t, uint64(len(bad)), stats.BytesDropped)
}

func TestLinkResyncKeepsFramesInSameRead(t *testing.T) {
	pkts := testPackets(3)
	bad := frameOf(t, pkts[1])
	require.Equal(t, byte(1), bad[4])
	bad[4] = 2

	var chunk []byte
	chunk = append(chunk, frameOf(t, pkts[0])...)
	chunk = append(chunk, bad...)
	chunk = append(chunk, frameOf(t, pkts[2])...)

	c := &collector{}
	l := NewLink(newTestStream(chunk))
	l.Handler = c
	runLink(t, l)

	requirePackets(t, []orbipacket.Packet{pkts[0], pkts[2]}, c.pkts)
	stats := l.Stats()
	require.Equal(t, uint64(2), stats.Packets)
	require.Equal(t, uint64(1), stats.DecodeErrors)
	require.Equal(t, uint64(len(bad)), stats.BytesDropped)
}

func TestLinkOverflow(t *testing.T) {
	pkt := testPackets(1)[0]
	junk := bytes.Repeat([]byte{0x55}, orbipacket.MaxFrameSize+29)

	c := &collector{}
	l := NewLink(newTestStream(junk, []byte{0}, frameOf(t, pkt)))
	l.Handler = c
	l.BufferSize = orbipacket.MaxFrameSize
	runLink(t, l)

	requirePackets(t, []orbipacket.Packet{pkt}, c.pkts)
	stats := l.Stats()
	require.Equal(t, uint64(1), stats.DecodeErrors)
	require.Equal(t, uint64(len(junk)+1), stats.BytesDropped)
}

func TestLinkBufferTooSmall(t *testing.T) {
	l := NewLink(newTestStream())
	l.BufferSize = orbipacket.MaxFrameSize - 1
	require.Equal(t, ErrBufferSize, l.Run(context.Background()))
}

func TestLinkReadError(t *testing.T) {
	failure := errors.New("port gone")
	l := NewLink(struct {
		io.Reader
		io.Writer
	}{
		Reader: readerFunc(func([]byte) (int, error) { return 0, failure }),
		Writer: io.Discard,
	})
	require.Equal(t, failure, l.Run(context.Background()))
}

type readerFunc func([]byte) (int, error)

func (f readerFunc) Read(p []byte) (int, error) { return f(p) }

func TestLinkSend(t *testing.T) {
	pkts := testPackets(3)
	s := newTestStream()
	l := NewLink(s)

	var expected []byte
	for _, pkt := range pkts {
		require.NoError(t, l.Send(pkt))
		expected = append(expected, frameOf(t, pkt)...)
	}
	require.Equal(t, expected, s.written.Bytes())
	require.Equal(t, uint64(3), l.Stats().PacketsSent)

	invalid := orbipacket.NewTcPacket(orbipacket.DeviceID(20), orbipacket.NewTimestamp(0), orbipacket.Payload{}).Packet()
	require.IsType(t, &orbipacket.InvalidIDError{}, l.Send(invalid))
	require.Equal(t, uint64(1), l.Stats().SendErrors)
	require.Equal(t, expected, s.written.Bytes())
}

func TestHandlerMux(t *testing.T) {
	var order []int
	mux := &HandlerMux{}
	mux.Add(
		HandlePacketFunc(func(context.Context, orbipacket.Packet) { order = append(order, 1) }),
		HandlePacketFunc(func(context.Context, orbipacket.Packet) { order = append(order, 2) }),
	)
	mux.HandlePacket(context.Background(), testPackets(1)[0])
	require.Equal(t, []int{1, 2}, order)
}

func TestPacketChan(t *testing.T) {
	pkts := testPackets(3)
	ch := NewPacketChan(2)
	for _, pkt := range pkts {
		ch.HandlePacket(context.Background(), pkt)
	}
	require.Equal(t, uint64(1), ch.Dropped())
	require.True(t, pkts[0].Equal(<-ch.C()))
	require.True(t, pkts[1].Equal(<-ch.C()))
}
