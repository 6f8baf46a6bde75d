package notify_test

import (
	"bytes"
	"context"
	"sync"
	"testing"

	stderrors "errors"

	"github.com/ddorgan/substrate/pkg/logging"
	"github.com/ddorgan/substrate/pkg/notify"
)

// testLogger returns a logger at LevelDisabled writing to a throwaway
// buffer, so handshake warnings and errors don't pollute test output.
func testLogger() *logging.Logger {
	return logging.NewLogger(logging.LevelDisabled, new(bytes.Buffer))
}

// TestBasicRoundTrip exercises a full handshake followed by a message send and receive.
func TestBasicRoundTrip(t *testing.T) {
	a, b := newChannelPair()
	logger := testLogger()

	var wg sync.WaitGroup
	var initial, reply []byte
	var inSub *notify.InboundSubstream
	var outSub *notify.OutboundSubstream
	var inErr, outErr error

	wg.Add(2)
	go func() {
		defer wg.Done()
		initial, inSub, inErr = notify.InboundHandshake(context.Background(), b, nil, logger)
		if inErr != nil {
			return
		}
		inErr = inSub.SendHandshakeReply([]byte("hello world"))
	}()
	go func() {
		defer wg.Done()
		reply, outSub, outErr = notify.OutboundHandshake(context.Background(), a, []byte("initial message"), nil, logger)
	}()
	wg.Wait()

	if inErr != nil {
		t.Fatalf("inbound handshake failed: %v", inErr)
	}
	if outErr != nil {
		t.Fatalf("outbound handshake failed: %v", outErr)
	}
	if string(initial) != "initial message" {
		t.Fatalf("responder observed initial %q, expected %q", initial, "initial message")
	}
	if string(reply) != "hello world" {
		t.Fatalf("initiator observed reply %q, expected %q", reply, "hello world")
	}

	if err := outSub.SendMessage([]byte("test message")); err != nil {
		t.Fatalf("unable to enqueue message: %v", err)
	}
	// The pipe is unbuffered, so Flush only returns once Recv consumes the
	// bytes; run it concurrently.
	flushErr := make(chan error, 1)
	go func() { flushErr <- outSub.Flush() }()

	message, err := inSub.Recv()
	if err != nil {
		t.Fatalf("unable to receive message: %v", err)
	}
	if err := <-flushErr; err != nil {
		t.Fatalf("unable to flush: %v", err)
	}
	if string(message) != "test message" {
		t.Fatalf("responder observed message %q, expected %q", message, "test message")
	}
}

// TestEmptyHandshake exercises the handshake and a message transfer with zero-length payloads throughout.
func TestEmptyHandshake(t *testing.T) {
	a, b := newChannelPair()
	logger := testLogger()

	var wg sync.WaitGroup
	var initial, reply []byte
	var inSub *notify.InboundSubstream
	var outSub *notify.OutboundSubstream
	var inErr, outErr error

	wg.Add(2)
	go func() {
		defer wg.Done()
		initial, inSub, inErr = notify.InboundHandshake(context.Background(), b, nil, logger)
		if inErr != nil {
			return
		}
		inErr = inSub.SendHandshakeReply(nil)
	}()
	go func() {
		defer wg.Done()
		reply, outSub, outErr = notify.OutboundHandshake(context.Background(), a, nil, nil, logger)
	}()
	wg.Wait()

	if inErr != nil {
		t.Fatalf("inbound handshake failed: %v", inErr)
	}
	if outErr != nil {
		t.Fatalf("outbound handshake failed: %v", outErr)
	}
	if len(initial) != 0 {
		t.Fatalf("expected empty initial message, got %d bytes", len(initial))
	}
	if len(reply) != 0 {
		t.Fatalf("expected empty reply, got %d bytes", len(reply))
	}

	if err := outSub.SendMessage(nil); err != nil {
		t.Fatalf("unable to enqueue empty message: %v", err)
	}
	flushErr := make(chan error, 1)
	go func() { flushErr <- outSub.Flush() }()

	message, err := inSub.Recv()
	if err != nil {
		t.Fatalf("unable to receive empty message: %v", err)
	}
	if err := <-flushErr; err != nil {
		t.Fatalf("unable to flush: %v", err)
	}
	if len(message) != 0 {
		t.Fatalf("expected empty message, got %d bytes", len(message))
	}
}

// TestSilentRefusal exercises a responder that drops the substream without ever sending a handshake reply.
func TestSilentRefusal(t *testing.T) {
	a, b := newChannelPair()
	logger := testLogger()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, sub, err := notify.InboundHandshake(context.Background(), b, nil, logger)
		if err != nil {
			return
		}
		// Refuse: drop the substream without ever calling SendHandshakeReply.
		sub.Close()
	}()

	_, _, outErr := notify.OutboundHandshake(context.Background(), a, []byte("hello"), nil, logger)
	wg.Wait()

	if outErr == nil {
		t.Fatal("expected outbound handshake to fail on silent refusal")
	}
}

// TestOversizedInitial exercises an initial message exceeding the handshake size limit.
func TestOversizedInitial(t *testing.T) {
	a, b := newChannelPair()
	logger := testLogger()

	var wg sync.WaitGroup
	var inErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, _, err := notify.InboundHandshake(context.Background(), b, nil, logger)
		inErr = err
		// Drop the channel so the initiator's stuck write unblocks with an
		// error instead of hanging, mirroring a real transport closing the
		// substream out from under an in-flight write.
		b.Close()
	}()

	initial := make([]byte, 32768)
	_, _, outErr := notify.OutboundHandshake(context.Background(), a, initial, nil, logger)
	wg.Wait()

	var tooLarge *notify.TooLargeError
	if !stderrors.As(inErr, &tooLarge) {
		t.Fatalf("expected responder to observe TooLargeError, got %v", inErr)
	}
	if tooLarge.Requested != 32768 || tooLarge.Max != notify.MaxHandshakeSize {
		t.Fatalf("unexpected TooLargeError fields: %+v", tooLarge)
	}
	if outErr == nil {
		t.Fatal("expected outbound handshake to fail once the peer dropped the channel")
	}
}

// TestOversizedReply exercises a handshake reply exceeding the handshake size limit.
func TestOversizedReply(t *testing.T) {
	a, b := newChannelPair()
	logger := testLogger()

	var wg sync.WaitGroup
	var replyErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, sub, err := notify.InboundHandshake(context.Background(), b, nil, logger)
		if err != nil {
			replyErr = err
			return
		}
		replyErr = sub.SendHandshakeReply(make([]byte, 32768))
	}()

	_, _, outErr := notify.OutboundHandshake(context.Background(), a, []byte("123456789012345"), nil, logger)

	var tooLarge *notify.TooLargeError
	if !stderrors.As(outErr, &tooLarge) {
		t.Fatalf("expected initiator to observe TooLargeError, got %v", outErr)
	}
	if tooLarge.Requested != 32768 || tooLarge.Max != notify.MaxHandshakeSize {
		t.Fatalf("unexpected TooLargeError fields: %+v", tooLarge)
	}

	// Drop our side so the responder's stuck reply write unblocks.
	a.Close()
	wg.Wait()
	if replyErr == nil {
		t.Fatal("expected SendHandshakeReply to fail once the initiator dropped the channel")
	}
}

// TestQueueSaturation exercises the send queue filling to capacity and rejecting further messages.
func TestQueueSaturation(t *testing.T) {
	a, b := newChannelPair()
	logger := testLogger()

	var wg sync.WaitGroup
	var outSub *notify.OutboundSubstream
	var outErr error
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, sub, err := notify.InboundHandshake(context.Background(), b, nil, logger)
		if err == nil {
			_ = sub.SendHandshakeReply(nil)
		}
	}()
	go func() {
		defer wg.Done()
		_, outSub, outErr = notify.OutboundHandshake(context.Background(), a, nil, nil, logger)
	}()
	wg.Wait()
	if outErr != nil {
		t.Fatalf("outbound handshake failed: %v", outErr)
	}

	for i := 0; i < notify.MaxPendingMessages; i++ {
		if err := outSub.SendMessage([]byte("x")); err != nil {
			t.Fatalf("unexpected error enqueuing message %d: %v", i, err)
		}
	}
	if got := outSub.QueueLen(); got != notify.MaxPendingMessages {
		t.Fatalf("expected queue length %d, got %d", notify.MaxPendingMessages, got)
	}

	if err := outSub.SendMessage([]byte("one too many")); err != notify.ErrClogged {
		t.Fatalf("expected ErrClogged, got %v", err)
	}
	if got := outSub.QueueLen(); got != notify.MaxPendingMessages {
		t.Fatalf("queue length changed after a clogged push: got %d, expected %d", got, notify.MaxPendingMessages)
	}
}

// TestFIFOOrdering verifies that messages are observed in enqueue order, byte-exact.
func TestFIFOOrdering(t *testing.T) {
	a, b := newChannelPair()
	logger := testLogger()

	var wg sync.WaitGroup
	var inSub *notify.InboundSubstream
	var outSub *notify.OutboundSubstream
	var inErr, outErr error
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, sub, err := notify.InboundHandshake(context.Background(), b, nil, logger)
		inErr = err
		if err == nil {
			inSub = sub
			inErr = sub.SendHandshakeReply(nil)
		}
	}()
	go func() {
		defer wg.Done()
		_, outSub, outErr = notify.OutboundHandshake(context.Background(), a, nil, nil, logger)
	}()
	wg.Wait()
	if inErr != nil || outErr != nil {
		t.Fatalf("handshake failed: in=%v out=%v", inErr, outErr)
	}

	messages := [][]byte{[]byte("one"), []byte("two"), []byte("three")}
	for _, m := range messages {
		if err := outSub.SendMessage(m); err != nil {
			t.Fatalf("unable to enqueue %q: %v", m, err)
		}
	}
	flushErr := make(chan error, 1)
	go func() { flushErr <- outSub.Flush() }()

	for _, want := range messages {
		got, err := inSub.Recv()
		if err != nil {
			t.Fatalf("unable to receive: %v", err)
		}
		if !bytes.Equal(got, want) {
			t.Fatalf("received %q, expected %q", got, want)
		}
	}
	if err := <-flushErr; err != nil {
		t.Fatalf("unable to flush: %v", err)
	}
}

// TestDuplicateHandshakeReplyIsNoop verifies the idempotent-reply-attempt
// invariant: only the first SendHandshakeReply call has any effect.
func TestDuplicateHandshakeReplyIsNoop(t *testing.T) {
	a, b := newChannelPair()
	logger := testLogger()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, sub, err := notify.InboundHandshake(context.Background(), b, nil, logger)
		if err != nil {
			return
		}
		if err := sub.SendHandshakeReply([]byte("first")); err != nil {
			t.Errorf("first reply failed: %v", err)
		}
		if err := sub.SendHandshakeReply([]byte("second")); err != nil {
			t.Errorf("duplicate reply should be a no-op, got error: %v", err)
		}
	}()

	reply, _, err := notify.OutboundHandshake(context.Background(), a, nil, nil, logger)
	wg.Wait()
	if err != nil {
		t.Fatalf("outbound handshake failed: %v", err)
	}
	if string(reply) != "first" {
		t.Fatalf("expected first reply to win, got %q", reply)
	}
}

// TestRecvBeforeAcceptedFails verifies that an InboundSubstream refuses to
// emit messages before its handshake reply has been sent.
func TestRecvBeforeAcceptedFails(t *testing.T) {
	a, b := newChannelPair()
	logger := testLogger()

	var wg sync.WaitGroup
	var recvErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, sub, err := notify.InboundHandshake(context.Background(), b, nil, logger)
		if err != nil {
			return
		}
		_, recvErr = sub.Recv()
		// Reply afterwards so that the initiator's handshake can complete.
		_ = sub.SendHandshakeReply(nil)
	}()

	_, _, err := notify.OutboundHandshake(context.Background(), a, nil, nil, logger)
	if err != nil {
		t.Fatalf("outbound handshake failed: %v", err)
	}
	wg.Wait()
	if recvErr != notify.ErrNotAccepted {
		t.Fatalf("expected ErrNotAccepted, got %v", recvErr)
	}
}
