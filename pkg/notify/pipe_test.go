package notify_test

import "io"

// pipeChannel adapts a pair of io.Pipe halves into a notify.Channel with an
// independent half-close, built from two unidirectional pipes so that
// CloseWrite can close only the write side.
type pipeChannel struct {
	r *io.PipeReader
	w *io.PipeWriter
}

func (p *pipeChannel) Read(b []byte) (int, error) {
	return p.r.Read(b)
}

func (p *pipeChannel) Write(b []byte) (int, error) {
	return p.w.Write(b)
}

// CloseWrite closes only the write half, which the peer observes as a clean
// EOF on its corresponding Read calls.
func (p *pipeChannel) CloseWrite() error {
	return p.w.Close()
}

func (p *pipeChannel) Close() error {
	werr := p.w.Close()
	rerr := p.r.Close()
	if werr != nil {
		return werr
	}
	return rerr
}

// newChannelPair builds two connected Channels, each able to read what the
// other writes, with independently closable write halves.
func newChannelPair() (a, b *pipeChannel) {
	aToBReader, aToBWriter := io.Pipe()
	bToAReader, bToAWriter := io.Pipe()
	a = &pipeChannel{r: bToAReader, w: aToBWriter}
	b = &pipeChannel{r: aToBReader, w: bToAWriter}
	return a, b
}
