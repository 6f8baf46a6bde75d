package notify

import (
	"context"

	"github.com/ddorgan/substrate/pkg/logging"
)

// In is the inbound upgrade descriptor: a small, cloneable value carrying
// the protocol name, handed to a multiplexer's negotiation layer. Once that
// layer has negotiated the protocol name on a freshly opened channel,
// Upgrade performs the inbound handshake on it.
type In struct {
	protocolName string
	logger       *logging.Logger
}

// NewIn constructs an inbound upgrade descriptor for protocolName, logging
// to logging.RootLogger.
func NewIn(protocolName string) *In {
	return NewInWithLogger(protocolName, logging.RootLogger)
}

// NewInWithLogger is NewIn with an explicit logger.
func NewInWithLogger(protocolName string, logger *logging.Logger) *In {
	logger.Debugf("notify: registered inbound protocol %q", protocolName)
	return &In{protocolName: protocolName, logger: logger}
}

// ProtocolName returns the protocol name this descriptor negotiates,
// exposed for the multiplexer's negotiation layer.
func (i *In) ProtocolName() string {
	return i.protocolName
}

// Upgrade performs the inbound handshake on a freshly negotiated channel.
func (i *In) Upgrade(ctx context.Context, channel Channel) ([]byte, *InboundSubstream, error) {
	return InboundHandshake(ctx, channel, nil, i.logger)
}

// Out is the outbound upgrade descriptor: it additionally carries the
// initial message to send once the protocol has been negotiated.
type Out struct {
	protocolName string
	initial      []byte
	logger       *logging.Logger
}

// NewOut constructs an outbound upgrade descriptor for protocolName, to be
// sent initialMessage as its initial handshake payload, logging to
// logging.RootLogger.
//
// Construction is synchronous and infallible: an oversized initialMessage is
// not rejected here, only warned about. Wire-level validation, performed
// when the handshake actually runs, is authoritative.
func NewOut(protocolName string, initialMessage []byte) *Out {
	return NewOutWithLogger(protocolName, initialMessage, logging.RootLogger)
}

// NewOutWithLogger is NewOut with an explicit logger.
func NewOutWithLogger(protocolName string, initialMessage []byte, logger *logging.Logger) *Out {
	if len(initialMessage) > MaxHandshakeSize {
		logger.Warnf("notify: initial message for protocol %q is %d bytes, exceeding the %d-byte handshake limit; the peer will reject it on read", protocolName, len(initialMessage), MaxHandshakeSize)
	}
	logger.Debugf("notify: registered outbound protocol %q", protocolName)
	return &Out{protocolName: protocolName, initial: initialMessage, logger: logger}
}

// ProtocolName returns the protocol name this descriptor negotiates.
func (o *Out) ProtocolName() string {
	return o.protocolName
}

// Upgrade performs the outbound handshake on a freshly negotiated channel.
func (o *Out) Upgrade(ctx context.Context, channel Channel) ([]byte, *OutboundSubstream, error) {
	return OutboundHandshake(ctx, channel, o.initial, nil, o.logger)
}
