// Package wire implements the varint length-delimited framing used by the
// notifications substream protocol, both for the raw handshake messages and
// for the post-handshake message stream.
package wire

import (
	"bufio"
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
)

// WriteSized writes payload prefixed by its unsigned-varint length as a
// single logical write.
func WriteSized(w io.Writer, payload []byte) error {
	header := make([]byte, binary.MaxVarintLen64)
	n := binary.PutUvarint(header, uint64(len(payload)))
	framed := append(header[:n:n], payload...)
	if _, err := w.Write(framed); err != nil {
		return errors.Wrap(err, "unable to write length-prefixed payload")
	}
	return nil
}

// ReadSized reads an unsigned-varint length prefix followed by exactly that
// many bytes. If the announced length exceeds max, it returns
// (nil, length, true, nil) without attempting to read the payload, leaving
// the caller to construct the appropriate protocol-level "too large" error.
// A zero-length payload is reported without performing a read.
func ReadSized(r *bufio.Reader, max uint64) (payload []byte, requested uint64, tooLarge bool, err error) {
	length, err := binary.ReadUvarint(r)
	if err != nil {
		return nil, 0, false, errors.Wrap(err, "unable to read length prefix")
	}
	if length > max {
		return nil, length, true, nil
	}
	if length == 0 {
		return []byte{}, 0, false, nil
	}
	payload = make([]byte, length)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, 0, false, errors.Wrap(err, "unable to read payload")
	}
	return payload, 0, false, nil
}
