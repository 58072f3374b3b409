package glide

import (
	"context"

	"github.com/valkey-io/valkey-glide-go/internal/push"
)

// PubSubMessage is a decoded Message/PMessage/SMessage push notification.
// Pattern is nil unless the subscription that produced it was
// pattern-based.
type PubSubMessage = push.PubSubMessage

// PubSubCallback is the user function registered in callback mode. It runs
// synchronously on the session's reader goroutine; it must not block.
type PubSubCallback = push.Callback

// PubSubMode selects how push notifications reach the caller, fixed for
// the Client's lifetime by ClientConfiguration.
type PubSubMode int

const (
	// PubSubModePull is the default: GetPubSubMessage/TryGetPubSubMessage
	// drain notifications.
	PubSubModePull PubSubMode = iota
	// PubSubModeCallback delivers every notification to Callback
	// synchronously; GetPubSubMessage/TryGetPubSubMessage become a
	// ConfigurationError in this mode.
	PubSubModeCallback
)

// PubSubOptions selects delivery mode at Create time.
type PubSubOptions struct {
	Mode     PubSubMode
	Callback PubSubCallback // required when Mode is PubSubModeCallback
}

// GetPubSubMessage blocks until a notification matches, ctx is cancelled,
// or the client closes. Pull mode only.
func (c *Client) GetPubSubMessage(ctx context.Context) (*PubSubMessage, error) {
	return c.pushChannel.GetPubSubMessage(ctx)
}

// TryGetPubSubMessage drains a queued notification without blocking,
// returning (nil, nil) if none is available. Pull mode only.
func (c *Client) TryGetPubSubMessage() (*PubSubMessage, error) {
	return c.pushChannel.TryGetPubSubMessage()
}
