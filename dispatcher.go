package glide

import (
	"github.com/valkey-io/valkey-glide-go/internal/glideerr"
	"github.com/valkey-io/valkey-glide-go/internal/ipc"
	"github.com/valkey-io/valkey-glide-go/internal/mux"
	"github.com/valkey-io/valkey-glide-go/internal/push"
)

// handshakeResult carries the outcome of the Connection Request sent on
// callback slot 0, which the multiplexer never sees: it is reserved for
// the handshake, per spec.md §4.4.
type handshakeResult struct {
	resp *ipc.Response
	err  error
}

// engineDispatcher implements session.Dispatcher by routing every decoded
// Response to the multiplexer or the push channel, and the handshake's
// slot-0 response to a dedicated one-shot channel Create waits on.
type engineDispatcher struct {
	mux       *mux.Multiplexer
	push      *push.Channel
	handshake chan handshakeResult
}

func newEngineDispatcher(m *mux.Multiplexer, p *push.Channel) *engineDispatcher {
	return &engineDispatcher{mux: m, push: p, handshake: make(chan handshakeResult, 1)}
}

func (d *engineDispatcher) DispatchResponse(resp *ipc.Response) {
	if resp.CallbackIdx == 0 {
		d.completeHandshake(handshakeResult{resp: resp})
		return
	}
	d.mux.Resolve(resp)
}

func (d *engineDispatcher) DispatchPush(resp *ipc.Response) {
	d.push.Dispatch(resp)
}

func (d *engineDispatcher) DispatchClosing(msg string) {
	d.mux.Close(msg)
	d.push.Close(msg)
	d.completeHandshake(handshakeResult{err: &glideerr.ClosingError{Message: msg}})
}

// DispatchWriteFailure routes a write failure back to its callback slot.
// The handshake's Connection Request carries no callback slot (it is not
// an *ipc.CommandRequest), so a write failure for it surfaces directly
// through Schedule's own return value instead of this path.
func (d *engineDispatcher) DispatchWriteFailure(callbackIdx uint32, err error) {
	d.mux.Fail(callbackIdx, err)
}

func (d *engineDispatcher) completeHandshake(res handshakeResult) {
	select {
	case d.handshake <- res:
	default:
		// Already delivered (or closing raced a response): the handshake
		// only ever waits for the first of either.
	}
}
