package notify

import (
	"bufio"
	"math"
	"sync"

	"github.com/pkg/errors"

	"github.com/ddorgan/substrate/pkg/logging"
	"github.com/ddorgan/substrate/pkg/must"
	"github.com/ddorgan/substrate/pkg/notify/wire"
)

// OutboundSubstream is the sender-side steady-state endpoint: a bounded,
// buffered sink of messages. It owns the underlying Channel, a FIFO send
// queue capped at maxPending, and an unflushed-bytes flag realized directly
// as bufio.Writer.Buffered() > 0 rather than a separate boolean, since the
// buffered writer already tracks exactly that state.
type OutboundSubstream struct {
	channel Channel
	writer  *bufio.Writer
	encoder *wire.Encoder
	logger  *logging.Logger

	mu         sync.Mutex
	queue      [][]byte
	maxPending int
}

// newOutboundSubstream constructs an OutboundSubstream ready to transmit
// messages.
func newOutboundSubstream(channel Channel, maxPending int, logger *logging.Logger) *OutboundSubstream {
	writer := bufio.NewWriter(channel)
	return &OutboundSubstream{
		channel:    channel,
		writer:     writer,
		encoder:    wire.NewEncoder(writer),
		logger:     logger,
		maxPending: maxPending,
	}
}

// QueueLen returns the number of currently buffered, unflushed messages,
// saturated to a 32-bit maximum even though maxPending is always far
// smaller.
func (s *OutboundSubstream) QueueLen() uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.queue) > math.MaxUint32 {
		return math.MaxUint32
	}
	return uint32(len(s.queue))
}

// SendMessage enqueues m for transmission. It never touches the channel;
// draining happens only in Flush or Close. If the queue is already at
// capacity, it fails with ErrClogged and leaves the queue unmodified.
func (s *OutboundSubstream) SendMessage(m []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.queue) >= s.maxPending {
		return ErrClogged
	}
	s.queue = append(s.queue, m)
	return nil
}

// Flush drains the queue into the channel as far as possible and then
// flushes any buffered bytes. Messages are encoded and queued into the
// internal bufio.Writer in FIFO order; the peer observes them byte-exact
// and in enqueue order. On an encode/write error, messages not yet drained
// remain queued, but the substream should be dropped rather than reused
// after any error.
func (s *OutboundSubstream) Flush() error {
	for {
		s.mu.Lock()
		if len(s.queue) == 0 {
			s.mu.Unlock()
			break
		}
		message := s.queue[0]
		s.queue = s.queue[1:]
		s.mu.Unlock()

		if err := s.encoder.Encode(message); err != nil {
			return errors.Wrap(err, "notify: unable to encode queued message")
		}
	}

	if s.writer.Buffered() == 0 {
		return nil
	}
	if err := s.writer.Flush(); err != nil {
		return errors.Wrap(err, "notify: unable to flush outbound channel")
	}
	return nil
}

// Close flushes the substream to completion on a best-effort basis and then
// closes the underlying channel. A flush failure is reported; any failure
// closing the channel itself is merely logged, since there is no longer a
// meaningful way to act on it.
func (s *OutboundSubstream) Close() error {
	flushErr := s.Flush()
	if flushErr != nil {
		s.logger.Warnf("notify: outbound substream: flush on close failed: %v", flushErr)
	}
	must.Close(s.channel, s.logger)
	return flushErr
}
