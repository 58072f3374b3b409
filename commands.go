package glide

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"strconv"
	"time"

	"github.com/valkey-io/valkey-glide-go/internal/ipc"
)

// Get returns the string value of key, or "" if it does not exist.
func (c *Client) Get(ctx context.Context, key string) (string, error) {
	v, err := c.mux.SendSingleCommand(ctx, "GET", uint32(reqTypeGet), nil, [][]byte{[]byte(key)})
	if err != nil {
		return "", err
	}
	return decodeString(v)
}

// Set stores value under key, returning the server's "OK" acknowledgement.
func (c *Client) Set(ctx context.Context, key, value string) (string, error) {
	v, err := c.mux.SendSingleCommand(ctx, "SET", uint32(reqTypeSet), nil, [][]byte{[]byte(key), []byte(value)})
	if err != nil {
		return "", err
	}
	return decodeString(v)
}

// Del removes the given keys, returning the number actually removed.
func (c *Client) Del(ctx context.Context, keys ...string) (int64, error) {
	v, err := c.mux.SendSingleCommand(ctx, "DEL", uint32(reqTypeDel), nil, toByteSlices(keys))
	if err != nil {
		return 0, err
	}
	return decodeInt64(v)
}

// Exists counts how many of the given keys exist.
func (c *Client) Exists(ctx context.Context, keys ...string) (int64, error) {
	v, err := c.mux.SendSingleCommand(ctx, "EXISTS", uint32(reqTypeExists), nil, toByteSlices(keys))
	if err != nil {
		return 0, err
	}
	return decodeInt64(v)
}

// Expire sets key's time-to-live, in seconds. Returns false if key does
// not exist.
func (c *Client) Expire(ctx context.Context, key string, seconds int64) (bool, error) {
	v, err := c.mux.SendSingleCommand(ctx, "EXPIRE", uint32(reqTypeExpire), nil,
		[][]byte{[]byte(key), []byte(strconv.FormatInt(seconds, 10))})
	if err != nil {
		return false, err
	}
	return decodeBool(v)
}

// Incr atomically increments key's integer value by one and returns the
// result.
func (c *Client) Incr(ctx context.Context, key string) (int64, error) {
	v, err := c.mux.SendSingleCommand(ctx, "INCR", uint32(reqTypeIncr), nil, [][]byte{[]byte(key)})
	if err != nil {
		return 0, err
	}
	return decodeInt64(v)
}

// Ping checks liveness. If message is non-empty the server echoes it back
// instead of "PONG".
func (c *Client) Ping(ctx context.Context, message string) (string, error) {
	var args [][]byte
	if message != "" {
		args = [][]byte{[]byte(message)}
	}
	v, err := c.mux.SendSingleCommand(ctx, "PING", uint32(reqTypePing), nil, args)
	if err != nil {
		return "", err
	}
	return decodeString(v)
}

// Publish sends message on channel and returns the number of clients that
// received it.
func (c *Client) Publish(ctx context.Context, channel, message string) (int64, error) {
	v, err := c.mux.SendSingleCommand(ctx, "PUBLISH", uint32(reqTypePublish), nil,
		[][]byte{[]byte(channel), []byte(message)})
	if err != nil {
		return 0, err
	}
	return decodeInt64(v)
}

// Subscribe adds exact-match channel subscriptions. The subscription
// confirmations and subsequent messages arrive through the push channel,
// not this call's return value.
func (c *Client) Subscribe(ctx context.Context, channels ...string) error {
	_, err := c.mux.SendSingleCommand(ctx, "SUBSCRIBE", uint32(reqTypeSubscribe), nil, toByteSlices(channels))
	return err
}

// Unsubscribe removes exact-match channel subscriptions. An empty list
// unsubscribes from all of them.
func (c *Client) Unsubscribe(ctx context.Context, channels ...string) error {
	_, err := c.mux.SendSingleCommand(ctx, "UNSUBSCRIBE", uint32(reqTypeUnsubscribe), nil, toByteSlices(channels))
	return err
}

// PSubscribe adds pattern-match subscriptions.
func (c *Client) PSubscribe(ctx context.Context, patterns ...string) error {
	_, err := c.mux.SendSingleCommand(ctx, "PSUBSCRIBE", uint32(reqTypePSubscribe), nil, toByteSlices(patterns))
	return err
}

// PUnsubscribe removes pattern-match subscriptions. An empty list
// unsubscribes from all of them.
func (c *Client) PUnsubscribe(ctx context.Context, patterns ...string) error {
	_, err := c.mux.SendSingleCommand(ctx, "PUNSUBSCRIBE", uint32(reqTypePUnsubscribe), nil, toByteSlices(patterns))
	return err
}

// SSubscribe adds sharded-channel subscriptions (cluster mode).
func (c *Client) SSubscribe(ctx context.Context, channels ...string) error {
	_, err := c.mux.SendSingleCommand(ctx, "SSUBSCRIBE", uint32(reqTypeSSubscribe), nil, toByteSlices(channels))
	return err
}

// SUnsubscribe removes sharded-channel subscriptions.
func (c *Client) SUnsubscribe(ctx context.Context, channels ...string) error {
	_, err := c.mux.SendSingleCommand(ctx, "SUNSUBSCRIBE", uint32(reqTypeSUnsubscribe), nil, toByteSlices(channels))
	return err
}

// EvalSha invokes a script already cached under hash (e.g. via a prior
// Eval), with keys and args bound per the Lua calling convention.
func (c *Client) EvalSha(ctx context.Context, hash string, keys, args []string) (any, error) {
	return c.mux.SendScript(ctx, hash, toByteSlices(keys), toByteSlices(args), nil)
}

// Eval invokes script, identified to the Runtime Core by its SHA1 hash
// exactly as EVALSHA would; the Runtime Core is responsible for the
// NOSCRIPT load-and-retry dance (spec.md leaves script caching to it, not
// this binding).
func (c *Client) Eval(ctx context.Context, script string, keys, args []string) (any, error) {
	return c.EvalSha(ctx, scriptSha1(script), keys, args)
}

// BatchCommand is one entry of an ordered batch passed to ExecuteBatch: a
// request-type opcode plus its argument list, mirroring SingleCommand's
// shape but without a callback slot of its own (the whole batch shares
// one).
type BatchCommand struct {
	RequestType RequestType
	Args        []string
}

// ExecuteBatch runs commands as a single callback slot: isAtomic makes it
// a transaction (MULTI/EXEC-style), raiseOnError controls whether the
// first sub-error is re-raised here or returned embedded in the result
// list, and the retry bits and timeout are passed straight through to the
// Runtime Core (spec.md §4.4's batch semantics — this layer does not
// evaluate sub-results itself). Resolves to the ordered sub-result list;
// an atomic batch whose watched keys were invalidated server-side
// resolves to a nil list instead, with no error.
func (c *Client) ExecuteBatch(
	ctx context.Context,
	commands []BatchCommand,
	isAtomic, raiseOnError, retryServerError, retryConnectionError bool,
	route []byte,
	timeout time.Duration,
) ([]any, error) {
	ipcCommands := make([]ipc.BatchCommand, len(commands))
	for i, cmd := range commands {
		ipcCommands[i] = ipc.BatchCommand{
			RequestType: uint32(cmd.RequestType),
			ArgsArray:   toByteSlices(cmd.Args),
		}
	}

	v, err := c.mux.SendBatch(ctx, ipcCommands, isAtomic, raiseOnError, retryServerError, retryConnectionError, route, timeout)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, nil
	}

	results, ok := v.([]any)
	if !ok {
		return nil, &batchShapeError{value: v}
	}
	return results, nil
}

type batchShapeError struct{ value any }

func (e *batchShapeError) Error() string {
	return "glide: execute batch: unexpected response shape"
}

// Scan requests one page of a cluster scan. Pass a nil cursor to begin
// iteration from StartCursor, and the returned cursor to continue it. Call
// Release on the returned cursor once its page range is no longer needed.
func (c *Client) Scan(ctx context.Context, cursor *ClusterScanCursor, matchPattern, keyType string, count int64, allowNonCoveredSlots bool) ([]string, *ClusterScanCursor, error) {
	if cursor == nil {
		cursor = newClusterScanCursor(StartCursor)
	}

	v, err := c.mux.SendClusterScan(ctx, ipc.ClusterScan{
		Cursor:               cursor.GetCursor(),
		Match:                matchPattern,
		Count:                count,
		Type:                 keyType,
		AllowNonCoveredSlots: allowNonCoveredSlots,
	})
	if err != nil {
		return nil, nil, err
	}

	keys, nextCursor, err := decodeScanPage(v)
	if err != nil {
		return nil, nil, err
	}
	return keys, newClusterScanCursor(nextCursor), nil
}

// decodeScanPage expects the Runtime Core's decoded scan reply: a
// two-element value of (next cursor, matched keys), the RESP SCAN shape.
func decodeScanPage(v any) ([]string, string, error) {
	pair, ok := v.([]any)
	if !ok || len(pair) != 2 {
		return nil, "", &scanShapeError{value: v}
	}
	next, err := decodeString(pair[0])
	if err != nil {
		return nil, "", err
	}
	rawKeys, ok := pair[1].([]any)
	if !ok {
		return nil, "", &scanShapeError{value: v}
	}
	keys := make([]string, len(rawKeys))
	for i, rk := range rawKeys {
		s, err := decodeString(rk)
		if err != nil {
			return nil, "", err
		}
		keys[i] = s
	}
	return keys, next, nil
}

type scanShapeError struct{ value any }

func (e *scanShapeError) Error() string {
	return "glide: scan: unexpected response shape"
}

func scriptSha1(script string) string {
	sum := sha1.Sum([]byte(script))
	return hex.EncodeToString(sum[:])
}

