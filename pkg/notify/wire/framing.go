package wire

import (
	"bufio"
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
)

// defaultDecoderBufferSize sizes a standalone decoder's internal buffer.
const defaultDecoderBufferSize = 32 * 1024

// Encoder provides length-delimited encoding of raw byte messages onto the
// post-handshake message stream. It frames plain []byte payloads, since
// this protocol's payloads carry no application-level schema at this layer.
type Encoder struct {
	// writer is the destination for framed messages. Callers that want a
	// buffer-then-flush split should pass a *bufio.Writer here and call its
	// Flush explicitly; Encoder itself never flushes.
	writer io.Writer
	header []byte
}

// NewEncoder creates a new framing encoder writing to writer.
func NewEncoder(writer io.Writer) *Encoder {
	return &Encoder{writer: writer, header: make([]byte, binary.MaxVarintLen64)}
}

// Encode writes one length-delimited frame for message.
func (e *Encoder) Encode(message []byte) error {
	n := binary.PutUvarint(e.header, uint64(len(message)))
	if _, err := e.writer.Write(e.header[:n]); err != nil {
		return errors.Wrap(err, "unable to write frame length")
	}
	if len(message) > 0 {
		if _, err := e.writer.Write(message); err != nil {
			return errors.Wrap(err, "unable to write frame payload")
		}
	}
	return nil
}

// Decoder provides length-delimited decoding of raw byte messages from the
// post-handshake message stream.
type Decoder struct {
	reader *bufio.Reader
}

// NewDecoder wraps an already-buffered reader. Handshake code constructs
// this bufio.Reader itself (so that bytes buffered ahead while reading the
// handshake's initial message aren't discarded); see NewDecoderFromReader
// for standalone use.
func NewDecoder(reader *bufio.Reader) *Decoder {
	return &Decoder{reader: reader}
}

// NewDecoderFromReader wraps a plain io.Reader in a fresh buffered reader.
// It is a convenience for tests and callers that aren't also reading a
// handshake preamble from the same stream.
func NewDecoderFromReader(reader io.Reader) *Decoder {
	return NewDecoder(bufio.NewReaderSize(reader, defaultDecoderBufferSize))
}

// Decode reads the next length-delimited frame. io.EOF is returned
// unwrapped when the peer has cleanly closed its write half between frames;
// any other failure, including an EOF encountered mid-frame, is wrapped so
// it is distinguishable from a clean end of stream.
func (d *Decoder) Decode() ([]byte, error) {
	size, err := binary.ReadUvarint(d.reader)
	if err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, errors.Wrap(err, "unable to read frame length")
	}
	if size == 0 {
		return []byte{}, nil
	}
	buffer := make([]byte, size)
	if _, err := io.ReadFull(d.reader, buffer); err != nil {
		return nil, errors.Wrap(err, "unable to read frame payload")
	}
	return buffer, nil
}
