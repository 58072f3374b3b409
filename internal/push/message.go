// Package push implements the Push Channel (C5): callback-mode and
// pull-mode delivery of pub/sub notifications decoded off the reader loop.
package push

import "fmt"

// PubSubMessage is the decoded form of a Message/PMessage/SMessage push
// notification. Pattern is nil unless the subscription that produced it
// was pattern-based.
type PubSubMessage struct {
	Channel []byte
	Message []byte
	Pattern []byte
}

// NotificationKind classifies a decoded push notification's disposition.
type NotificationKind int

const (
	// NotificationControl is a subscribe/unsubscribe confirmation: it is
	// silently consumed, never delivered to the caller.
	NotificationControl NotificationKind = iota
	// NotificationMessage is a Message/PMessage/SMessage: delivered to
	// the callback or queued for a pull-mode awaiter.
	NotificationMessage
	// NotificationDisconnect is a transport-level disconnection notice,
	// logged at WARN and otherwise ignored.
	NotificationDisconnect
)

// ClassifyNotification decodes the native value produced by
// value_from_pointer for a push response into a disposition and, for
// message kinds, the PubSubMessage it carries.
func ClassifyNotification(value any) (NotificationKind, *PubSubMessage, error) {
	fields, ok := value.(map[string]any)
	if !ok {
		return NotificationControl, nil, fmt.Errorf("push: notification: unexpected decoded shape %T", value)
	}

	kind, _ := fields["kind"].(string)
	switch kind {
	case "Message", "PMessage", "SMessage":
		values, _ := fields["values"].([]any)
		msg, err := messageFromValues(kind, values)
		if err != nil {
			return NotificationControl, nil, err
		}
		return NotificationMessage, msg, nil
	case "Disconnection":
		return NotificationDisconnect, nil, nil
	default:
		// Subscribe/Unsubscribe/PSubscribe/PUnsubscribe confirmations,
		// and anything else not yet named on the wire.
		return NotificationControl, nil, nil
	}
}

func messageFromValues(kind string, values []any) (*PubSubMessage, error) {
	if kind == "PMessage" {
		if len(values) != 3 {
			return nil, fmt.Errorf("push: pmessage: expected 3 values, got %d", len(values))
		}
		return &PubSubMessage{
			Pattern: toBytes(values[0]),
			Channel: toBytes(values[1]),
			Message: toBytes(values[2]),
		}, nil
	}

	if len(values) != 2 {
		return nil, fmt.Errorf("push: %s: expected 2 values, got %d", kind, len(values))
	}
	return &PubSubMessage{
		Channel: toBytes(values[0]),
		Message: toBytes(values[1]),
	}, nil
}

func toBytes(v any) []byte {
	switch t := v.(type) {
	case []byte:
		return t
	case string:
		return []byte(t)
	default:
		return nil
	}
}
