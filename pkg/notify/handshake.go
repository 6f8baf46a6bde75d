package notify

import (
	"bufio"
	"context"
	"encoding/binary"

	"github.com/ddorgan/substrate/pkg/logging"
	"github.com/ddorgan/substrate/pkg/notify/wire"
)

// handshakeReaderBufferSize sizes the buffered reader used while reading a
// handshake preamble. It comfortably covers the varint header plus the
// largest handshake payload this side will accept.
func handshakeReaderBufferSize(maxHandshakeSize int) int {
	return maxHandshakeSize + binary.MaxVarintLen64
}

// InboundHandshake performs the receiver-side handshake: it reads the
// remote's initial message, validates its size, and returns an
// InboundSubstream that still owes a handshake reply. ctx is checked before
// any I/O begins; since Channel exposes no cancellable read, true mid-read
// cancellation is the caller's responsibility (e.g. closing the channel from
// another goroutine, or using a channel backed by a net.Conn with deadlines).
func InboundHandshake(ctx context.Context, channel Channel, config *Config, logger *logging.Logger) ([]byte, *InboundSubstream, error) {
	if logger == nil {
		logger = logging.RootLogger
	}
	cfg := config.normalize()
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	reader := bufio.NewReaderSize(channel, handshakeReaderBufferSize(cfg.MaxHandshakeSize))
	initial, requested, tooLarge, err := wire.ReadSized(reader, uint64(cfg.MaxHandshakeSize))
	if err != nil {
		logger.Warnf("notify: inbound handshake: unable to read initial message: %v", err)
		return nil, nil, &HandshakeError{Op: "read initial message", cause: err}
	}
	if tooLarge {
		return nil, nil, &TooLargeError{Requested: requested, Max: uint64(cfg.MaxHandshakeSize)}
	}

	substream := newInboundSubstream(channel, wire.NewDecoder(reader), logger)
	return initial, substream, nil
}

// OutboundHandshake performs the sender-side handshake: it writes our
// initial message, reads back the remote's handshake reply, validates its
// size, and returns an OutboundSubstream ready to transmit messages.
//
// If the remote silently refuses the substream (drops it without replying),
// this fails at the reply read with a plain HandshakeError wrapping an I/O
// error; there is no distinct "refused" kind on the wire.
func OutboundHandshake(ctx context.Context, channel Channel, initialMessage []byte, config *Config, logger *logging.Logger) ([]byte, *OutboundSubstream, error) {
	if logger == nil {
		logger = logging.RootLogger
	}
	cfg := config.normalize()
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	if err := wire.WriteSized(channel, initialMessage); err != nil {
		return nil, nil, &HandshakeError{Op: "write initial message", cause: err}
	}

	reader := bufio.NewReaderSize(channel, handshakeReaderBufferSize(cfg.MaxHandshakeSize))
	reply, requested, tooLarge, err := wire.ReadSized(reader, uint64(cfg.MaxHandshakeSize))
	if err != nil {
		logger.Warnf("notify: outbound handshake: unable to read handshake reply: %v", err)
		return nil, nil, &HandshakeError{Op: "read handshake reply", cause: err}
	}
	if tooLarge {
		return nil, nil, &TooLargeError{Requested: requested, Max: uint64(cfg.MaxHandshakeSize)}
	}

	substream := newOutboundSubstream(channel, cfg.MaxPendingMessages, logger)
	return reply, substream, nil
}
