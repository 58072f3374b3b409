// Package mux implements the Request Multiplexer (C4): the slot table and
// free list, argument inline-vs-pointer selection, span attach/drop around
// dispatch, batch semantics, and closure propagation to every live awaiter.
package mux

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/valkey-io/valkey-glide-go/internal/glideerr"
	"github.com/valkey-io/valkey-glide-go/internal/ipc"
	"github.com/valkey-io/valkey-glide-go/internal/logger"
	"github.com/valkey-io/valkey-glide-go/internal/runtime"
	"github.com/valkey-io/valkey-glide-go/pkg/metrics"
)

// ClosedMessage is the closing-error message synthesized when any send
// method is called on an already-closed multiplexer.
const ClosedMessage = "The communication layer was unexpectedly closed."

// Scheduler is the subset of the Connection Session the multiplexer writes
// through. internal/session.Session satisfies it.
type Scheduler interface {
	Schedule(ipc.Message) error
}

// Multiplexer is the Request Multiplexer (C4): it owns the slot table, the
// argument-payload decision, and resolves every awaiter from the stream of
// Response values the session hands it.
type Multiplexer struct {
	scheduler Scheduler
	core      runtime.Core
	constants runtime.Constants
	sampler   Sampler
	metrics   metrics.EngineMetrics

	slots *slotTable

	closed    atomic.Bool
	closeOnce sync.Once
}

// New builds a Multiplexer. sampler and m (metrics) may be nil: a nil
// sampler traces nothing, a nil EngineMetrics is a documented no-op
// throughout pkg/metrics. The scheduler (normally the Connection Session)
// is wired in afterwards via SetScheduler: the session's Dispatcher needs
// the multiplexer to exist first, so construction is necessarily
// two-phase at the call site.
func New(core runtime.Core, constants runtime.Constants, sampler Sampler, m metrics.EngineMetrics) *Multiplexer {
	if sampler == nil {
		sampler = NeverSample
	}
	return &Multiplexer{
		core:      core,
		constants: constants,
		sampler:   sampler,
		metrics:   m,
		slots:     newSlotTable(),
	}
}

// SetScheduler wires the Connection Session this multiplexer dispatches
// writes through. Must be called once, before the first send.
func (mx *Multiplexer) SetScheduler(scheduler Scheduler) {
	mx.scheduler = scheduler
}

// send bundles what every send method needs to install an awaiter,
// attach tracing, and schedule the write.
func (mx *Multiplexer) send(ctx context.Context, requestName string, build func(callbackIdx uint32, spanPtr uint64) (ipc.Message, error)) (any, error) {
	if mx.isClosed() {
		return nil, &glideerr.ClosingError{Message: ClosedMessage}
	}

	id := mx.slots.allocSlot()
	aw := newAwaiter()

	if mx.sampler.Sample() {
		aw.spanPtr = runtime.CreateOtelSpan(ctx, requestName)
	}

	msg, err := build(id, aw.spanPtr)
	if err != nil {
		mx.slots.release(id)
		if aw.spanPtr != 0 {
			runtime.DropOtelSpan(aw.spanPtr)
		}
		return nil, err
	}

	mx.slots.install(id, aw)
	mx.reportOccupancy()

	start := time.Now()
	if err := mx.scheduler.Schedule(msg); err != nil {
		// The write never reached the coalescer (e.g. encode failure
		// surfaced synchronously); the slot will never be completed by a
		// response, so it is taken back out of the table here instead of
		// by Resolve.
		if _, ok := mx.slots.take(id); ok {
			mx.reportOccupancy()
		}
		if aw.spanPtr != 0 {
			runtime.DropOtelSpan(aw.spanPtr)
		}
		return nil, err
	}

	res := <-aw.ch
	metrics.ObserveResponse(mx.metrics, responseKindFor(res.err), time.Since(start))
	return res.value, res.err
}

// SendSingleCommand dispatches a single request-type + argument list.
func (mx *Multiplexer) SendSingleCommand(ctx context.Context, requestName string, requestType uint32, route []byte, args [][]byte) (any, error) {
	return mx.send(ctx, requestName, func(callbackIdx uint32, spanPtr uint64) (ipc.Message, error) {
		inline, pointer, err := mx.selectArgsPayload(args)
		if err != nil {
			return nil, err
		}
		return &ipc.CommandRequest{
			CallbackIdx: callbackIdx,
			Route:       route,
			RootSpanPtr: spanPtr,
			Kind:        ipc.KindSingleCommand,
			SingleCommand: &ipc.SingleCommand{
				RequestType:    requestType,
				ArgsArray:      inline,
				ArgsVecPointer: pointer,
			},
		}, nil
	})
}

// SendScript dispatches a script invocation. The union of keys and args is
// the inline-vs-pointer selector; both move to pointer together.
func (mx *Multiplexer) SendScript(ctx context.Context, hash string, keys, args [][]byte, route []byte) (any, error) {
	return mx.send(ctx, "Script", func(callbackIdx uint32, spanPtr uint64) (ipc.Message, error) {
		union := make([][]byte, 0, len(keys)+len(args))
		union = append(union, keys...)
		union = append(union, args...)

		inline, pointer, err := mx.selectArgsPayload(union)
		if err != nil {
			return nil, err
		}

		script := &ipc.Script{Hash: hash, ArgsVecPointer: pointer}
		if pointer == 0 {
			script.KeysArray = keys
			script.ArgsArray = args
		}
		return &ipc.CommandRequest{
			CallbackIdx: callbackIdx,
			Route:       route,
			RootSpanPtr: spanPtr,
			Kind:        ipc.KindScript,
			Script:      script,
		}, nil
	})
}

// SendBatch dispatches an ordered list of commands as one callback slot.
// Batch sub-command arguments are always carried inline: the wire type has
// no pointer branch for them.
func (mx *Multiplexer) SendBatch(ctx context.Context, commands []ipc.BatchCommand, isAtomic, raiseOnError, retryServerError, retryConnectionError bool, route []byte, timeout time.Duration) (any, error) {
	return mx.send(ctx, "Batch", func(callbackIdx uint32, spanPtr uint64) (ipc.Message, error) {
		return &ipc.CommandRequest{
			CallbackIdx: callbackIdx,
			Route:       route,
			RootSpanPtr: spanPtr,
			Kind:        ipc.KindBatch,
			Batch: &ipc.Batch{
				Commands:             commands,
				IsAtomic:             isAtomic,
				RaiseOnError:         raiseOnError,
				RetryServerError:     retryServerError,
				RetryConnectionError: retryConnectionError,
				TimeoutMs:            uint64(timeout.Milliseconds()),
			},
		}, nil
	})
}

// SendUpdatePassword rotates the connection password.
func (mx *Multiplexer) SendUpdatePassword(ctx context.Context, password string, immediateAuth bool) (any, error) {
	return mx.send(ctx, "UpdateConnectionPassword", func(callbackIdx uint32, spanPtr uint64) (ipc.Message, error) {
		return &ipc.CommandRequest{
			CallbackIdx:    callbackIdx,
			RootSpanPtr:    spanPtr,
			Kind:           ipc.KindUpdatePassword,
			UpdatePassword: &ipc.UpdatePassword{Password: password, ImmediateAuth: immediateAuth},
		}, nil
	})
}

// SendRefreshIamToken requests an IAM token refresh.
func (mx *Multiplexer) SendRefreshIamToken(ctx context.Context) (any, error) {
	return mx.send(ctx, "RefreshIamToken", func(callbackIdx uint32, spanPtr uint64) (ipc.Message, error) {
		return &ipc.CommandRequest{CallbackIdx: callbackIdx, RootSpanPtr: spanPtr, Kind: ipc.KindRefreshIamToken}, nil
	})
}

// SendClusterScan requests the next cluster-scan cursor page.
func (mx *Multiplexer) SendClusterScan(ctx context.Context, scan ipc.ClusterScan) (any, error) {
	return mx.send(ctx, "ClusterScan", func(callbackIdx uint32, spanPtr uint64) (ipc.Message, error) {
		return &ipc.CommandRequest{CallbackIdx: callbackIdx, RootSpanPtr: spanPtr, Kind: ipc.KindClusterScan, ClusterScan: &scan}, nil
	})
}

// selectArgsPayload sums argument byte-lengths against MaxInlineArgsBytes:
// below the threshold the arguments stay inline; at or above it, they are
// leaked to the runtime and only the pointer travels on the wire.
func (mx *Multiplexer) selectArgsPayload(args [][]byte) (inline [][]byte, pointer uint64, err error) {
	var total int64
	for _, a := range args {
		total += int64(len(a))
	}
	metrics.ObserveRequestBytes(mx.metrics, total)

	if uint64(total) < mx.constants.MaxInlineArgsBytes {
		return args, 0, nil
	}

	ptr, err := mx.core.LeakByteVec(args)
	if err != nil {
		return nil, 0, fmt.Errorf("mux: leak byte vec: %w", err)
	}
	return nil, ptr, nil
}

// Resolve completes the awaiter named by resp.CallbackIdx. An unknown slot
// (already recycled, or a stray response) is logged, not an error: the
// reader loop must keep running regardless.
func (mx *Multiplexer) Resolve(resp *ipc.Response) {
	aw, ok := mx.slots.take(resp.CallbackIdx)
	mx.reportOccupancy()
	if !ok {
		logger.Warn("mux: response for unknown callback slot", "callback_idx", resp.CallbackIdx)
		return
	}

	if resp.RootSpanPtr != 0 {
		runtime.DropOtelSpan(resp.RootSpanPtr)
	}

	switch resp.Kind {
	case ipc.RespKindRequestError:
		aw.fail(requestErrorFor(resp.RequestError))
	case ipc.RespKindPointer:
		value, err := mx.core.ValueFromPointer(resp.RespPointer)
		if err != nil {
			aw.fail(fmt.Errorf("mux: value from pointer: %w", err))
			return
		}
		aw.resolve(value)
	case ipc.RespKindConstant:
		aw.resolve("OK")
	default:
		aw.resolve(nil)
	}
}

// Fail reports a write failure for the request installed under
// callbackIdx, used when the session's writer coalescer could not get the
// encoded request onto the wire at all.
func (mx *Multiplexer) Fail(callbackIdx uint32, err error) {
	aw, ok := mx.slots.take(callbackIdx)
	mx.reportOccupancy()
	if !ok {
		logger.Warn("mux: write failure for unknown callback slot", "callback_idx", callbackIdx, "error", err)
		return
	}
	if aw.spanPtr != 0 {
		runtime.DropOtelSpan(aw.spanPtr)
	}
	aw.fail(err)
}

// Close resolves every live awaiter with a closing error carrying msg and
// marks the multiplexer closed: any send after this returns the same
// error synchronously. Idempotent — callers invoke it once per session
// close, but a second call is harmless.
func (mx *Multiplexer) Close(msg string) {
	mx.closeOnce.Do(func() {
		mx.closed.Store(true)
		for _, aw := range mx.slots.drainAll() {
			if aw.spanPtr != 0 {
				runtime.DropOtelSpan(aw.spanPtr)
			}
			aw.fail(&glideerr.ClosingError{Message: msg})
		}
		mx.reportOccupancy()
	})
}

func (mx *Multiplexer) isClosed() bool {
	return mx.closed.Load()
}

func (mx *Multiplexer) reportOccupancy() {
	inUse, capacity := mx.slots.occupancy()
	metrics.SetSlotTableOccupancy(mx.metrics, inUse, capacity)
	metrics.SetFreeListLength(mx.metrics, mx.slots.freeListLength())
}

// requestErrorFor maps a wire request_error's typed kind onto the matching
// glideerr kind.
func requestErrorFor(e ipc.RequestError) error {
	switch e.Type {
	case ipc.RequestErrorDisconnect:
		return &glideerr.ConnectionError{Message: e.Message}
	case ipc.RequestErrorExecAbort:
		return &glideerr.ExecAbortError{Message: e.Message}
	case ipc.RequestErrorTimeout:
		return &glideerr.TimeoutError{Message: e.Message}
	default:
		return &glideerr.RequestError{Message: e.Message}
	}
}

func responseKindFor(err error) string {
	if err == nil {
		return metrics.ResponseKindOK
	}
	switch err.(type) {
	case *glideerr.ClosingError:
		return metrics.ResponseKindClosing
	case *glideerr.ConnectionError:
		return metrics.ResponseKindConnection
	case *glideerr.TimeoutError:
		return metrics.ResponseKindTimeout
	case *glideerr.ExecAbortError:
		return metrics.ResponseKindExecAbort
	case *glideerr.ConfigurationError:
		return metrics.ResponseKindConfiguration
	default:
		return metrics.ResponseKindRequest
	}
}
