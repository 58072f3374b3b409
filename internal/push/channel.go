package push

import (
	"context"
	"sync"

	"github.com/valkey-io/valkey-glide-go/internal/glideerr"
	"github.com/valkey-io/valkey-glide-go/internal/ipc"
	"github.com/valkey-io/valkey-glide-go/internal/logger"
	"github.com/valkey-io/valkey-glide-go/internal/runtime"
	"github.com/valkey-io/valkey-glide-go/pkg/metrics"
)

// ClosedMessage mirrors internal/session's closing-error text: a push
// awaiter closed by the same session shutdown carries the same message.
const ClosedMessage = "The communication layer was unexpectedly closed."

// Callback is the user function registered in callback mode. It is called
// synchronously on the reader task; it must not block.
type Callback func(msg *PubSubMessage)

// Mode selects callback or pull delivery, fixed at construction from the
// connection's subscription configuration.
type Mode int

const (
	ModeCallback Mode = iota
	ModePull
)

type pullResult struct {
	msg *PubSubMessage
	err error
}

// Channel is the Push Channel (C5). Exactly one of callback mode or pull
// mode is active for its lifetime.
type Channel struct {
	mode       Mode
	callback   Callback
	configured bool
	core       runtime.Core
	metrics    metrics.EngineMetrics

	mu       sync.Mutex
	pending  []*PubSubMessage
	awaiters []chan pullResult
	closed   bool
}

// NewCallbackChannel builds a Channel that delivers every message
// synchronously to cb. configured reports whether the connection requested
// any subscriptions; GetPubSubMessage/TryGetPubSubMessage are always a
// configuration error in this mode.
func NewCallbackChannel(cb Callback, configured bool, core runtime.Core, m metrics.EngineMetrics) *Channel {
	return &Channel{mode: ModeCallback, callback: cb, configured: configured, core: core, metrics: m}
}

// NewPullChannel builds a Channel that queues messages for
// GetPubSubMessage/TryGetPubSubMessage. configured reports whether the
// connection requested any subscriptions; both pull methods are a
// configuration error when it is false.
func NewPullChannel(configured bool, core runtime.Core, m metrics.EngineMetrics) *Channel {
	return &Channel{mode: ModePull, configured: configured, core: core, metrics: m}
}

// Dispatch handles one push Response off the reader loop: it decodes the
// notification, silently consumes control confirmations, logs
// disconnections, and otherwise delivers or queues the message.
func (c *Channel) Dispatch(resp *ipc.Response) {
	if resp.Kind != ipc.RespKindPointer {
		return
	}

	value, err := c.core.ValueFromPointer(resp.RespPointer)
	if err != nil {
		logger.Warn("push: value from pointer", "error", err)
		return
	}

	kind, msg, err := ClassifyNotification(value)
	if err != nil {
		logger.Warn("push: could not classify notification", "error", err)
		return
	}

	switch kind {
	case NotificationDisconnect:
		logger.Warn("push: disconnection notice")
	case NotificationMessage:
		c.deliver(msg)
	case NotificationControl:
		// subscribe/unsubscribe confirmations: consumed silently
	}
}

func (c *Channel) deliver(msg *PubSubMessage) {
	if c.callback != nil {
		c.callback(msg)
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.awaiters) > 0 {
		aw := c.awaiters[0]
		c.awaiters = c.awaiters[1:]
		aw <- pullResult{msg: msg}
		return
	}

	c.pending = append(c.pending, msg)
	metrics.SetPushQueueDepth(c.metrics, len(c.pending))
}

// GetPubSubMessage appends a new awaiter and blocks until a notification
// matches it, ctx is cancelled, or the session closes.
func (c *Channel) GetPubSubMessage(ctx context.Context) (*PubSubMessage, error) {
	if err := c.guardPullMode(); err != nil {
		return nil, err
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, &glideerr.ClosingError{Message: ClosedMessage}
	}
	if len(c.pending) > 0 {
		msg := c.pending[0]
		c.pending = c.pending[1:]
		metrics.SetPushQueueDepth(c.metrics, len(c.pending))
		c.mu.Unlock()
		return msg, nil
	}
	ch := make(chan pullResult, 1)
	c.awaiters = append(c.awaiters, ch)
	c.mu.Unlock()

	select {
	case res := <-ch:
		return res.msg, res.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// TryGetPubSubMessage drains a match without blocking, returning (nil, nil)
// if none is available.
func (c *Channel) TryGetPubSubMessage() (*PubSubMessage, error) {
	if err := c.guardPullMode(); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, &glideerr.ClosingError{Message: ClosedMessage}
	}
	if len(c.pending) == 0 {
		return nil, nil
	}
	msg := c.pending[0]
	c.pending = c.pending[1:]
	metrics.SetPushQueueDepth(c.metrics, len(c.pending))
	return msg, nil
}

func (c *Channel) guardPullMode() error {
	if c.mode != ModePull {
		return &glideerr.ConfigurationError{Message: "cannot request a pubsub message when a callback is installed"}
	}
	if !c.configured {
		return &glideerr.ConfigurationError{Message: "cannot request a pubsub message when no subscriptions are configured"}
	}
	return nil
}

// Close resolves every live pull-mode awaiter with a closing error carrying
// msg. Idempotent.
func (c *Channel) Close(msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true

	for _, aw := range c.awaiters {
		aw <- pullResult{err: &glideerr.ClosingError{Message: msg}}
	}
	c.awaiters = nil
}
