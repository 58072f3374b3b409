// Package session implements the Connection Session (C3): one UDS stream,
// a writer coalescer, a reader loop, and the handshake on callback slot 0.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/valkey-io/valkey-glide-go/internal/glideerr"
	"github.com/valkey-io/valkey-glide-go/internal/ipc"
	"github.com/valkey-io/valkey-glide-go/internal/logger"
	"github.com/valkey-io/valkey-glide-go/internal/runtime"
)

// ClosedMessage is the synthetic message carried by the closing error
// raised when the stream read returns EOF or is otherwise severed.
const ClosedMessage = "The communication layer was unexpectedly closed."

// Dispatcher receives decoded responses from the reader loop: non-push
// responses go to the multiplexer, push responses go to the push channel.
type Dispatcher interface {
	DispatchResponse(*ipc.Response)
	DispatchPush(*ipc.Response)
	// DispatchClosing is called once, from whichever path observes
	// session closure first: EOF, a closing_error response, or an
	// explicit Close call.
	DispatchClosing(msg string)
	// DispatchWriteFailure routes a socket write error back to the
	// request whose write was in flight, by callback slot. Unknown-slot
	// failures (the handshake, which has no slot) are logged instead.
	DispatchWriteFailure(callbackIdx uint32, err error)
}

// Session owns one UDS stream for one client.
type Session struct {
	conn      net.Conn
	constants runtime.Constants
	dispatch  Dispatcher

	writer writerQueue

	closed    atomic.Bool
	closeOnce sync.Once

	group  *errgroup.Group
	cancel context.CancelFunc
}

// New wraps an already-connected UDS stream. Call Start to launch the
// reader loop.
func New(conn net.Conn, constants runtime.Constants, dispatch Dispatcher) *Session {
	return &Session{
		conn:      conn,
		constants: constants,
		dispatch:  dispatch,
	}
}

// Start launches the reader loop under an errgroup so its exit (error or
// not) is observable by Wait.
func (s *Session) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	group, ctx := errgroup.WithContext(ctx)
	s.group = group
	group.Go(func() error {
		return s.readLoop(ctx)
	})
}

// Wait blocks until the reader loop exits.
func (s *Session) Wait() error {
	if s.group == nil {
		return nil
	}
	return s.group.Wait()
}

// Schedule encodes msg and appends it to the writer coalescer. If another
// caller is currently draining the queue, this call returns once the
// message is enqueued; it does not wait for the write to complete.
func (s *Session) Schedule(msg ipc.Message) error {
	if s.closed.Load() {
		return &glideerr.ClosingError{Message: ClosedMessage}
	}

	return s.writer.schedule(msg, s.writeBatch)
}

// writeBatch encodes and writes a coalesced batch of messages in one
// syscall. On failure, every message in the batch is attributed back to
// its callback slot (the handshake request carries none, and is logged
// instead) so the caller whose write never reached the wire is unblocked
// rather than left waiting forever.
func (s *Session) writeBatch(msgs []ipc.Message) error {
	var buf []byte
	for _, msg := range msgs {
		encoded, err := ipc.EncodeDelimited(nil, msg)
		if err != nil {
			return fmt.Errorf("session: encode: %w", err)
		}
		buf = append(buf, encoded...)
	}

	if _, err := s.conn.Write(buf); err != nil {
		writeErr := fmt.Errorf("session: write: %w", err)
		for _, msg := range msgs {
			if cmd, ok := msg.(*ipc.CommandRequest); ok {
				s.dispatch.DispatchWriteFailure(cmd.CallbackIdx, writeErr)
				continue
			}
			logger.Warn("session: write failed for non-command message", "error", writeErr)
		}
		return writeErr
	}
	return nil
}

// readLoop reads chunks, concatenates with leftover bytes from the
// previous iteration, and decodes as many complete frames as are present.
func (s *Session) readLoop(ctx context.Context) error {
	chunkSize := s.constants.ReadChunkBytes
	if chunkSize == 0 {
		chunkSize = 64 * 1024
	}
	chunk := make([]byte, chunkSize)
	var leftover []byte

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		n, err := s.conn.Read(chunk)
		if n > 0 {
			leftover = append(leftover, chunk[:n]...)

			offset := 0
			for {
				var resp ipc.Response
				newOffset, derr := ipc.DecodeDelimited(leftover, offset, &resp)
				if errors.Is(derr, ipc.ErrPartialMessage) {
					break
				}
				if derr != nil {
					s.Close(ClosedMessage)
					return derr
				}
				offset = newOffset
				s.handleResponse(&resp)
			}
			leftover = append([]byte(nil), leftover[offset:]...)
		}

		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) {
				s.Close(ClosedMessage)
				return nil
			}
			logger.Warn("session: reader loop error", "error", err)
			s.Close(ClosedMessage)
			return err
		}
	}
}

func (s *Session) handleResponse(resp *ipc.Response) {
	if resp.RootSpanPtr != 0 {
		runtime.DropOtelSpan(resp.RootSpanPtr)
	}

	if resp.Kind == ipc.RespKindClosingError {
		s.Close(resp.ClosingError)
		return
	}

	if resp.IsPush {
		s.dispatch.DispatchPush(resp)
		return
	}
	s.dispatch.DispatchResponse(resp)
}

// Close idempotently tears the session down: it is always safe to call,
// including from the reader loop's own error path.
func (s *Session) Close(msg string) {
	s.closeOnce.Do(func() {
		s.closed.Store(true)
		if s.cancel != nil {
			s.cancel()
		}
		s.dispatch.DispatchClosing(msg)
		_ = s.conn.Close()
	})
}

// Closed reports whether Close has already run.
func (s *Session) Closed() bool {
	return s.closed.Load()
}
