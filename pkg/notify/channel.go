// Package notify implements the unidirectional notifications substream
// protocol: a single-round handshake carrying application context in both
// directions, followed by a lazy inbound stream of received messages or a
// bounded, buffered outbound sink, layered on top of any already-negotiated
// bidirectional byte stream.
//
// The package does not open connections, negotiate protocol names on a
// multiplexer, or know anything about peer identity or application-level
// message semantics; it consumes a previously negotiated Channel and yields
// either an error or a typed substream handle.
package notify

import "io"

// Channel is the bidirectional byte stream this package is layered on top
// of: a previously negotiated substream, typically from a multiplexer, but
// equally a raw net.Conn or an in-memory pipe. It must support closing its
// write half independently of its read half, since the inbound side's
// acceptance signal is exactly that half-close.
type Channel interface {
	io.Reader
	io.Writer
	io.Closer

	// CloseWrite closes the write half of the channel without affecting the
	// read half. The peer observes this as EOF on its own read side.
	CloseWrite() error
}

// halfCloseCloser is satisfied by any io.ReadWriteCloser that also supports
// half-closure, e.g. *net.TCPConn, *net.UnixConn, or a multiplexed substream
// implementing net.Conn plus CloseWrite.
type halfCloseCloser interface {
	io.Reader
	io.Writer
	io.Closer
	CloseWrite() error
}

// NewChannelFromConn adapts a connection that already exposes a CloseWrite
// method into a Channel. Connections lacking a native half-close (e.g.
// *tls.Conn without the underlying TCP conn exposed) cannot satisfy this
// protocol and must be wrapped by the caller with their own half-close shim.
func NewChannelFromConn(conn halfCloseCloser) Channel {
	return conn
}
