package notify

import (
	"io"
	"sync"

	"github.com/pkg/errors"

	"github.com/ddorgan/substrate/pkg/logging"
	"github.com/ddorgan/substrate/pkg/must"
	"github.com/ddorgan/substrate/pkg/notify/wire"
)

// handshakeReplyState models the deferred accept/reject decision: a
// received substream isn't accepted until its reply is sent, so nothing is
// allowed to read from it before then. The four states and their
// transitions (NotSent -> PendingSend -> Closing -> Sent, monotonic, never
// reversed) are tracked explicitly even though this package's blocking I/O
// model drives the PendingSend/Closing transition through in a single call
// rather than across repeated polls.
type handshakeReplyState int

const (
	// stateNotSent is the initial state: no reply has been supplied yet.
	stateNotSent handshakeReplyState = iota
	// statePendingSend indicates a reply is being written to the channel.
	statePendingSend
	// stateClosing indicates the reply was written and the write half is
	// being closed.
	stateClosing
	// stateSent indicates the reply was flushed and the write half closed;
	// the substream may now emit received messages.
	stateSent
)

// InboundSubstream is the receiver-side steady-state endpoint. It owns the
// underlying Channel and a deferred handshake-reply state machine; once
// that reaches stateSent it behaves as a lazy sequence of received
// messages.
type InboundSubstream struct {
	channel Channel
	decoder *wire.Decoder
	logger  *logging.Logger

	mu    sync.Mutex
	state handshakeReplyState
}

// newInboundSubstream constructs an InboundSubstream still owing a
// handshake reply. decoder must be backed by the same buffered reader used
// to read the initial message, so that any bytes already buffered ahead of
// it are not discarded.
func newInboundSubstream(channel Channel, decoder *wire.Decoder, logger *logging.Logger) *InboundSubstream {
	return &InboundSubstream{
		channel: channel,
		decoder: decoder,
		logger:  logger,
		state:   stateNotSent,
	}
}

// SendHandshakeReply drives the handshake-reply state machine to
// completion: it writes payload, flushes it, and half-closes the channel's
// write side, which is the acceptance signal the peer observes. Closing the
// write half immediately after the reply is a protocol-level commitment:
// the receiver never sends additional data.
//
// Calling this after the first successful (or even partially-failed) call
// is a no-op: the duplicate payload is silently discarded and logged at
// error level. Payload size is not validated here; an oversized reply is
// the caller's mistake and will simply cause the peer's outbound handshake
// to fail with TooLargeError.
func (s *InboundSubstream) SendHandshakeReply(payload []byte) error {
	s.mu.Lock()
	if s.state != stateNotSent {
		s.mu.Unlock()
		s.logger.Errorf("notify: send-handshake-reply called more than once; discarding duplicate %d-byte payload", len(payload))
		return nil
	}
	s.state = statePendingSend
	s.mu.Unlock()

	if err := wire.WriteSized(s.channel, payload); err != nil {
		return errors.Wrap(err, "notify: unable to send handshake reply")
	}

	s.mu.Lock()
	s.state = stateClosing
	s.mu.Unlock()

	if err := s.channel.CloseWrite(); err != nil {
		return errors.Wrap(err, "notify: unable to close write half after handshake reply")
	}

	s.mu.Lock()
	s.state = stateSent
	s.mu.Unlock()
	return nil
}

// Recv reads and returns the next length-delimited message frame. It must
// only be called after SendHandshakeReply has completed successfully;
// calling it earlier returns ErrNotAccepted, since this package's blocking
// model has no separate poll step to silently wait on. io.EOF is returned
// unwrapped when the remote cleanly closes its write half, ending the
// sequence.
func (s *InboundSubstream) Recv() ([]byte, error) {
	s.mu.Lock()
	state := s.state
	s.mu.Unlock()
	if state != stateSent {
		return nil, ErrNotAccepted
	}

	message, err := s.decoder.Decode()
	if err == io.EOF {
		return nil, io.EOF
	} else if err != nil {
		return nil, errors.Wrap(err, "notify: unable to receive message")
	}
	return message, nil
}

// Close releases the substream's underlying channel on a best-effort basis,
// logging rather than returning any failure. It does not attempt to
// complete a pending handshake reply.
func (s *InboundSubstream) Close() {
	must.Close(s.channel, s.logger)
}
