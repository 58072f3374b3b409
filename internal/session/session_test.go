package session

import (
	"context"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valkey-io/valkey-glide-go/internal/ipc"
	"github.com/valkey-io/valkey-glide-go/internal/runtime"
)

type fakeDispatcher struct {
	mu            sync.Mutex
	responses     []*ipc.Response
	pushes        []*ipc.Response
	closingMsgs   []string
	writeFailures []uint32
}

func (f *fakeDispatcher) DispatchResponse(r *ipc.Response) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses = append(f.responses, r)
}

func (f *fakeDispatcher) DispatchPush(r *ipc.Response) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pushes = append(f.pushes, r)
}

func (f *fakeDispatcher) DispatchClosing(msg string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closingMsgs = append(f.closingMsgs, msg)
}

func (f *fakeDispatcher) DispatchWriteFailure(callbackIdx uint32, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writeFailures = append(f.writeFailures, callbackIdx)
}

func (f *fakeDispatcher) snapshotResponses() []*ipc.Response {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*ipc.Response(nil), f.responses...)
}

func (f *fakeDispatcher) snapshotClosing() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.closingMsgs...)
}

func testConstants() runtime.Constants {
	return runtime.Constants{
		DefaultTimeout:     time.Second,
		MaxInlineArgsBytes: 4096,
		ReadChunkBytes:     4096,
	}
}

func TestSession_ScheduleWritesFramesInOrder(t *testing.T) {
	clientConn, peer := net.Pipe()
	defer peer.Close()

	dispatch := &fakeDispatcher{}
	s := New(clientConn, testConstants(), dispatch)
	s.Start(context.Background())
	defer s.Close(ClosedMessage)

	read := make(chan []byte, 1)
	go func() {
		buf := make([]byte, 4096)
		n, _ := peer.Read(buf)
		read <- buf[:n]
	}()

	req := &ipc.CommandRequest{CallbackIdx: 7}
	require.NoError(t, s.Schedule(req))

	var got []byte
	select {
	case got = <-read:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for write")
	}

	var decoded ipc.CommandRequest
	offset, err := ipc.DecodeDelimited(got, 0, &decoded)
	require.NoError(t, err)
	assert.Equal(t, len(got), offset)
	assert.Equal(t, uint32(7), decoded.CallbackIdx)
}

func TestSession_ReadLoopDispatchesResponse(t *testing.T) {
	clientConn, peer := net.Pipe()
	defer peer.Close()

	dispatch := &fakeDispatcher{}
	s := New(clientConn, testConstants(), dispatch)
	s.Start(context.Background())
	defer s.Close(ClosedMessage)

	resp := &ipc.Response{CallbackIdx: 3, Kind: ipc.RespKindPointer, RespPointer: 42}
	frame, err := ipc.EncodeDelimited(nil, resp)
	require.NoError(t, err)

	go func() {
		_, _ = peer.Write(frame)
	}()

	require.Eventually(t, func() bool {
		return len(dispatch.snapshotResponses()) == 1
	}, time.Second, 10*time.Millisecond)

	got := dispatch.snapshotResponses()[0]
	assert.Equal(t, uint32(3), got.CallbackIdx)
	assert.Equal(t, uint64(42), got.RespPointer)
}

func TestSession_ReadLoopDispatchesPush(t *testing.T) {
	clientConn, peer := net.Pipe()
	defer peer.Close()

	dispatch := &fakeDispatcher{}
	s := New(clientConn, testConstants(), dispatch)
	s.Start(context.Background())
	defer s.Close(ClosedMessage)

	resp := &ipc.Response{IsPush: true, Kind: ipc.RespKindPointer, RespPointer: 99}
	frame, err := ipc.EncodeDelimited(nil, resp)
	require.NoError(t, err)

	go func() {
		_, _ = peer.Write(frame)
	}()

	require.Eventually(t, func() bool {
		dispatch.mu.Lock()
		defer dispatch.mu.Unlock()
		return len(dispatch.pushes) == 1
	}, time.Second, 10*time.Millisecond)
}

func TestSession_ClosingErrorResponseClosesSession(t *testing.T) {
	clientConn, peer := net.Pipe()
	defer peer.Close()

	dispatch := &fakeDispatcher{}
	s := New(clientConn, testConstants(), dispatch)
	s.Start(context.Background())

	resp := &ipc.Response{Kind: ipc.RespKindClosingError, ClosingError: "runtime shut down"}
	frame, err := ipc.EncodeDelimited(nil, resp)
	require.NoError(t, err)

	go func() {
		_, _ = peer.Write(frame)
	}()

	require.Eventually(t, func() bool {
		return s.Closed()
	}, time.Second, 10*time.Millisecond)

	closing := dispatch.snapshotClosing()
	require.Len(t, closing, 1)
	assert.Equal(t, "runtime shut down", closing[0])
}

func TestSession_EOFClosesSessionAndDispatchesClosing(t *testing.T) {
	clientConn, peer := net.Pipe()

	dispatch := &fakeDispatcher{}
	s := New(clientConn, testConstants(), dispatch)
	s.Start(context.Background())

	require.NoError(t, peer.Close())

	require.Eventually(t, func() bool {
		return s.Closed()
	}, time.Second, 10*time.Millisecond)

	closing := dispatch.snapshotClosing()
	require.Len(t, closing, 1)
	assert.Equal(t, ClosedMessage, closing[0])
}

func TestSession_ScheduleAfterCloseReturnsClosingError(t *testing.T) {
	clientConn, peer := net.Pipe()
	defer peer.Close()

	dispatch := &fakeDispatcher{}
	s := New(clientConn, testConstants(), dispatch)
	s.Start(context.Background())
	s.Close(ClosedMessage)

	err := s.Schedule(&ipc.CommandRequest{CallbackIdx: 1})
	require.Error(t, err)
}

func TestSession_CloseIsIdempotent(t *testing.T) {
	clientConn, peer := net.Pipe()
	defer peer.Close()

	dispatch := &fakeDispatcher{}
	s := New(clientConn, testConstants(), dispatch)
	s.Start(context.Background())

	s.Close(ClosedMessage)
	s.Close(ClosedMessage)
	s.Close(ClosedMessage)

	assert.Len(t, dispatch.snapshotClosing(), 1)
}
