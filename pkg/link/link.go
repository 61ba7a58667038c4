// Package link moves OrbiPacket frames over a byte stream.
//
// A Link owns a receive buffer. Incoming bytes are appended to it and
// complete frames are decoded one at a time; whatever follows the last
// delimiter stays at the front of the buffer until more bytes arrive.
// A frame that fails to decode is skipped up to its delimiter.
package link

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/golang/glog"

	"github.com/robotalks/orbipacket/pkg/orbipacket"
)

const (
	// DefaultBufferSize holds a few maximum-sized frames.
	DefaultBufferSize = 4 * orbipacket.MaxFrameSize
	// DefaultBatchSize is the number of packets dispatched together.
	DefaultBatchSize = 16

	readSize = 256
)

// ErrBufferSize indicates a receive buffer too small for a maximum-sized frame.
var ErrBufferSize = errors.New("receive buffer smaller than a frame")

// Stats are the counters of a Link.
type Stats struct {
	BytesReceived uint64
	// Packets decoded and dispatched.
	Packets uint64
	// Frames that failed to decode.
	DecodeErrors uint64
	// Bytes discarded while resynchronizing.
	BytesDropped uint64
	PacketsSent  uint64
	SendErrors   uint64
}

// Link sends and receives packets over ReadWriter.
type Link struct {
	ReadWriter io.ReadWriter
	Handler    PacketHandler
	BufferSize int
	BatchSize  int

	sendLock sync.Mutex
	sendBuf  [orbipacket.MaxEncodeBufferSize]byte

	stats     Stats
	statsLock sync.Mutex
}

// NewLink creates a Link.
func NewLink(rw io.ReadWriter) *Link {
	return &Link{
		ReadWriter: rw,
		BufferSize: DefaultBufferSize,
		BatchSize:  DefaultBatchSize,
	}
}

// Stats returns a snapshot of the counters.
func (l *Link) Stats() Stats {
	l.statsLock.Lock()
	defer l.statsLock.Unlock()
	return l.stats
}

func (l *Link) updateStats(fn func(*Stats)) {
	l.statsLock.Lock()
	fn(&l.stats)
	l.statsLock.Unlock()
}

// Send encodes a packet and writes the frame in a single Write.
func (l *Link) Send(pkt orbipacket.Packet) error {
	l.sendLock.Lock()
	defer l.sendLock.Unlock()
	frame, err := pkt.Encode(l.sendBuf[:])
	if err == nil {
		_, err = l.ReadWriter.Write(frame)
	}
	l.updateStats(func(s *Stats) {
		if err != nil {
			s.SendErrors++
		} else {
			s.PacketsSent++
		}
	})
	if err != nil {
		return err
	}
	if glog.V(3) {
		glog.Infof("SND %s %s ts=%d len=%d", pkt.Direction(), pkt.DeviceID().Name(),
			pkt.Timestamp().Get(), pkt.Payload().Length())
	}
	return nil
}

// Run receives until ctx is done or ReadWriter fails.
// End of stream is not an error.
func (l *Link) Run(ctx context.Context) error {
	rx, err := l.newReceiver()
	if err != nil {
		return err
	}

	chunkCh, errCh := make(chan []byte), make(chan error, 1)
	subCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go l.readLoop(subCtx, chunkCh, errCh)
	for {
		select {
		case chunk := <-chunkCh:
			rx.feed(ctx, chunk)
		case err := <-errCh:
			if err == io.EOF {
				return nil
			}
			return err
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (l *Link) readLoop(ctx context.Context, chunkCh chan []byte, errCh chan error) {
	for {
		buf := make([]byte, readSize)
		n, err := l.ReadWriter.Read(buf)
		if n > 0 {
			select {
			case chunkCh <- buf[:n]:
			case <-ctx.Done():
				return
			}
		}
		if err != nil {
			errCh <- err
			return
		}
	}
}

func (l *Link) newReceiver() (*receiver, error) {
	size, batch := l.BufferSize, l.BatchSize
	if size == 0 {
		size = DefaultBufferSize
	}
	if size < orbipacket.MaxFrameSize {
		return nil, ErrBufferSize
	}
	if batch <= 0 {
		batch = DefaultBatchSize
	}
	return &receiver{
		link: l,
		buf:  make([]byte, size),
		out:  make([]orbipacket.Packet, batch),
	}, nil
}

// receiver keeps the undecoded tail of the stream at the front of buf.
type receiver struct {
	link *Link
	buf  []byte
	n    int
	out  []orbipacket.Packet
}

func (r *receiver) feed(ctx context.Context, chunk []byte) {
	r.link.updateStats(func(s *Stats) { s.BytesReceived += uint64(len(chunk)) })
	for len(chunk) > 0 {
		if r.n == len(r.buf) {
			// no delimiter in a full buffer, nothing in it can be a frame.
			glog.Warningf("receive buffer overflow, dropping %d bytes", r.n)
			dropped := r.n
			r.link.updateStats(func(s *Stats) { s.BytesDropped += uint64(dropped) })
			r.n = 0
		}
		c := copy(r.buf[r.n:], chunk)
		r.n += c
		chunk = chunk[c:]
		r.drain(ctx)
	}
}

// drain decodes one frame per DecodeStateless call, so a bad frame
// costs only its own bytes. Packets are dispatched in batches.
func (r *receiver) drain(ctx context.Context) {
	start, n := 0, 0
	for {
		remaining, decoded, err := orbipacket.DecodeStateless(r.buf[start:r.n], r.out[n:n+1])
		if err != nil {
			start = r.resync(start, err)
			continue
		}
		if len(decoded) == 0 {
			break
		}
		start = r.n - len(remaining)
		if n++; n == len(r.out) {
			r.dispatch(ctx, r.out[:n])
			n = 0
		}
	}
	r.dispatch(ctx, r.out[:n])
	r.n = copy(r.buf, r.buf[start:r.n])
}

// resync skips the failed frame and returns the offset following it.
func (r *receiver) resync(start int, err error) int {
	var streamErr *orbipacket.StreamError
	if !errors.As(err, &streamErr) {
		streamErr = &orbipacket.StreamError{Delimiter: r.n - start - 1, Err: err}
	}
	skip := streamErr.Delimiter + 1
	glog.Warningf("decode error at offset %d: %v", start+streamErr.Offset, streamErr.Err)
	r.link.updateStats(func(s *Stats) {
		s.DecodeErrors++
		s.BytesDropped += uint64(skip - streamErr.Offset)
	})
	return start + skip
}

func (r *receiver) dispatch(ctx context.Context, pkts []orbipacket.Packet) {
	if len(pkts) == 0 {
		return
	}
	r.link.updateStats(func(s *Stats) { s.Packets += uint64(len(pkts)) })
	for _, pkt := range pkts {
		if glog.V(3) {
			glog.Infof("RCV %s %s ts=%d len=%d", pkt.Direction(), pkt.DeviceID().Name(),
				pkt.Timestamp().Get(), pkt.Payload().Length())
		}
		if h := r.link.Handler; h != nil {
			h.HandlePacket(ctx, pkt)
		}
	}
}
