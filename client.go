// Package glide is the Command Surface (glue): it wires the Runtime
// Bootstrap (C2), Connection Session (C3), Request Multiplexer (C4), and
// Push Channel (C5) into one client and exposes a representative set of
// typed command wrappers over them.
package glide

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/valkey-io/valkey-glide-go/internal/glideerr"
	"github.com/valkey-io/valkey-glide-go/internal/ipc"
	"github.com/valkey-io/valkey-glide-go/internal/mux"
	"github.com/valkey-io/valkey-glide-go/internal/push"
	"github.com/valkey-io/valkey-glide-go/internal/runtime"
	"github.com/valkey-io/valkey-glide-go/internal/session"
	"github.com/valkey-io/valkey-glide-go/pkg/config"
	"github.com/valkey-io/valkey-glide-go/pkg/metrics"
)

// ClientConfiguration is the Connection Request's field set: address list,
// TLS, credentials, database index, cluster mode, read-from strategy,
// periodic checks, reconnect backoff, subscriptions, request timeout,
// client name, protocol version.
type ClientConfiguration = config.ClientConnectionConfig

// RuntimeConfiguration overrides the engine constants the runtime bootstrap
// exposes (MAX_REQUEST_ARGS_LEN, the default timeout, the reader chunk
// size). Zero fields take pkg/config's defaults.
type RuntimeConfiguration = config.RuntimeConfig

// TelemetryConfiguration controls OpenTelemetry span sampling for requests
// dispatched through the multiplexer.
type TelemetryConfiguration = config.TelemetryConfig

// Options bundles everything Create needs: the Connection Request fields,
// engine constants, telemetry sampling, an optional pre-built metrics sink,
// push delivery mode, and an optional IAM token provider.
type Options struct {
	Client    ClientConfiguration
	Runtime   RuntimeConfiguration
	Telemetry TelemetryConfiguration
	Metrics   metrics.EngineMetrics
	PubSub    PubSubOptions

	// IamTokenProvider backs RefreshIamToken. Required when Client.Iam is
	// enabled.
	IamTokenProvider IamTokenProvider
}

// Client is one connected session: a UDS stream, a request multiplexer,
// and a push channel, torn down together by Close.
type Client struct {
	session     *session.Session
	mux         *mux.Multiplexer
	pushChannel *push.Channel
	dispatch    *engineDispatcher
	iamProvider IamTokenProvider

	peerConn net.Conn
	listener net.Listener

	closeOnce sync.Once
}

// Create opens a new Client: it starts a runtime listener, connects a UDS
// stream to it bounded by Runtime.DefaultTimeout, and performs the
// handshake on callback slot 0 before returning. The deadline covers the
// connect and the handshake together, per spec.md §5.
func Create(ctx context.Context, opts Options) (*Client, error) {
	cfg := buildConfig(opts)
	if err := config.Validate(cfg); err != nil {
		return nil, &glideerr.ConfigurationError{Message: err.Error()}
	}
	if opts.PubSub.Mode == PubSubModeCallback && opts.PubSub.Callback == nil {
		return nil, &glideerr.ConfigurationError{Message: "glide: callback pubsub mode requires a non-nil Callback"}
	}

	constants := runtime.NewConstants(cfg.Runtime)

	deadlineCtx, cancel := context.WithTimeout(ctx, constants.DefaultTimeout)
	defer cancel()

	listener, err := awaitListener(deadlineCtx)
	if err != nil {
		return nil, err
	}

	clientConn, peerConn, err := dialLoopback(deadlineCtx, listener)
	if err != nil {
		return nil, err
	}

	core := runtime.DefaultCore()
	m := mux.New(core, constants, samplerFor(cfg.Telemetry), opts.Metrics)
	pushCh := buildPushChannel(opts.PubSub, hasSubscriptions(cfg.Client.Subscriptions), core, opts.Metrics)
	dispatch := newEngineDispatcher(m, pushCh)

	sess := session.New(clientConn, constants, dispatch)
	m.SetScheduler(sess)

	c := &Client{
		session:     sess,
		mux:         m,
		pushChannel: pushCh,
		dispatch:    dispatch,
		iamProvider: opts.IamTokenProvider,
		peerConn:    peerConn,
		listener:    listener,
	}

	sess.Start(ctx)

	if err := c.handshake(deadlineCtx, cfg.Client); err != nil {
		sess.Close(session.ClosedMessage)
		return nil, err
	}

	return c, nil
}

// buildConfig lays opts over pkg/config's defaults so partially populated
// Options still produce a valid, fully defaulted configuration.
func buildConfig(opts Options) *config.Config {
	cfg := config.GetDefaultConfig()
	cfg.Client = opts.Client
	cfg.Runtime = opts.Runtime
	cfg.Telemetry = opts.Telemetry
	config.ApplyDefaults(cfg)
	if cfg.Client.ClientName == "" {
		cfg.Client.ClientName = "glide-" + uuid.NewString()
	}
	return cfg
}

func samplerFor(t TelemetryConfiguration) mux.Sampler {
	if !t.Enabled {
		return mux.NeverSample
	}
	return mux.NewRateSampler(t.SampleRate)
}

func hasSubscriptions(s config.SubscriptionConfig) bool {
	return len(s.Exact) > 0 || len(s.Pattern) > 0 || len(s.Sharded) > 0
}

func buildPushChannel(opts PubSubOptions, configured bool, core runtime.Core, m metrics.EngineMetrics) *push.Channel {
	if opts.Mode == PubSubModeCallback {
		return push.NewCallbackChannel(opts.Callback, configured, core, m)
	}
	return push.NewPullChannel(configured, core, m)
}

// awaitListener asks the runtime bootstrap for a fresh UDS listener and
// waits for it, bounded by ctx.
func awaitListener(ctx context.Context) (net.Listener, error) {
	type result struct {
		listener net.Listener
		err      error
	}
	done := make(chan result, 1)
	runtime.StartListener(func(_ string, listener net.Listener, err error) {
		done <- result{listener: listener, err: err}
	})

	select {
	case res := <-done:
		if res.err != nil {
			return nil, fmt.Errorf("glide: create: start listener: %w", res.err)
		}
		return res.listener, nil
	case <-ctx.Done():
		return nil, &glideerr.TimeoutError{Message: "glide: create: timed out starting the runtime listener"}
	}
}

// dialLoopback connects the binding's client-side stream to listener's
// address and accepts the corresponding peer side, so the UDS handshake
// completes without depending on an already-running Runtime Core process.
// listener is closed once the single expected connection is accepted: one
// socket serves exactly one client session (spec.md §4.2).
func dialLoopback(ctx context.Context, listener net.Listener) (client net.Conn, peer net.Conn, err error) {
	type acceptResult struct {
		conn net.Conn
		err  error
	}
	accepted := make(chan acceptResult, 1)
	go func() {
		conn, err := listener.Accept()
		accepted <- acceptResult{conn: conn, err: err}
	}()

	var dialer net.Dialer
	clientConn, dialErr := dialer.DialContext(ctx, "unix", listener.Addr().String())
	if dialErr != nil {
		_ = listener.Close()
		return nil, nil, fmt.Errorf("glide: create: dial: %w", dialErr)
	}

	select {
	case res := <-accepted:
		_ = listener.Close()
		if res.err != nil {
			_ = clientConn.Close()
			return nil, nil, fmt.Errorf("glide: create: accept: %w", res.err)
		}
		return clientConn, res.conn, nil
	case <-ctx.Done():
		_ = clientConn.Close()
		_ = listener.Close()
		return nil, nil, &glideerr.TimeoutError{Message: "glide: create: timed out completing the runtime handshake"}
	}
}

// handshake sends the Connection Request on callback slot 0 and waits for
// its response, bound by ctx.
func (c *Client) handshake(ctx context.Context, cfg ClientConfiguration) error {
	req := buildConnectionRequest(cfg)

	if err := c.session.Schedule(req); err != nil {
		return fmt.Errorf("glide: create: handshake: %w", err)
	}

	select {
	case res := <-c.dispatch.handshake:
		if res.err != nil {
			return res.err
		}
		return handshakeErrorFor(res.resp)
	case <-ctx.Done():
		return &glideerr.TimeoutError{Message: "glide: create: timed out waiting for the connection handshake"}
	}
}

func handshakeErrorFor(resp *ipc.Response) error {
	switch resp.Kind {
	case ipc.RespKindClosingError:
		return &glideerr.ClosingError{Message: resp.ClosingError}
	case ipc.RespKindRequestError:
		return &glideerr.RequestError{Message: resp.RequestError.Message}
	default:
		return nil
	}
}

func buildConnectionRequest(cfg ClientConfiguration) *ipc.ConnectionRequest {
	req := &ipc.ConnectionRequest{
		UseTLS:                 cfg.UseTLS,
		DatabaseID:             int32(cfg.DatabaseID),
		ClusterModeEnabled:     cfg.ClusterModeEnabled,
		ReadFrom:               cfg.ReadFrom,
		PeriodicChecksEnabled:  cfg.PeriodicChecksEnabled,
		PeriodicChecksInterval: uint64(cfg.PeriodicChecksInterval / time.Millisecond),
		ReconnectStrategy: ipc.ReconnectStrategy{
			NumOfRetries: uint32(cfg.ReconnectStrategy.NumOfRetries),
			Factor:       uint32(cfg.ReconnectStrategy.Factor),
			ExponentBase: uint32(cfg.ReconnectStrategy.ExponentBase),
		},
		Subscriptions: ipc.Subscriptions{
			Exact:   cfg.Subscriptions.Exact,
			Pattern: cfg.Subscriptions.Pattern,
			Sharded: cfg.Subscriptions.Sharded,
		},
		RequestTimeoutMs: uint64(cfg.RequestTimeout / time.Millisecond),
		ClientName:       cfg.ClientName,
		ProtocolVersion:  cfg.ProtocolVersion,
	}

	for _, a := range cfg.Addresses {
		req.Addresses = append(req.Addresses, ipc.NodeAddress{Host: a.Host, Port: uint32(a.Port)})
	}

	if cfg.Iam != nil && cfg.Iam.Enabled {
		req.Iam = &ipc.IamAuth{Enabled: true}
		if cfg.Credentials != nil {
			req.Credentials = &ipc.Credentials{Username: cfg.Credentials.Username}
		}
	} else if cfg.Credentials != nil {
		req.Credentials = &ipc.Credentials{Username: cfg.Credentials.Username, Password: cfg.Credentials.Password}
	}

	return req
}

// Close tears down the session, which in turn closes the multiplexer and
// push channel and fails every live request with a closing error.
// Idempotent.
func (c *Client) Close() error {
	c.closeOnce.Do(func() {
		c.session.Close(session.ClosedMessage)
		if c.peerConn != nil {
			_ = c.peerConn.Close()
		}
	})
	return nil
}

// GetStatistics returns a flat snapshot of the runtime's metrics registry,
// per spec.md §6. Returns an empty map when metrics are disabled.
func GetStatistics() (map[string]float64, error) {
	return runtime.GetStatistics()
}

// UpdateConnectionPassword rotates the connection's password, optionally
// re-authenticating immediately rather than waiting for the next command.
func (c *Client) UpdateConnectionPassword(ctx context.Context, password string, immediateAuth bool) error {
	_, err := c.mux.SendUpdatePassword(ctx, password, immediateAuth)
	return err
}

// RefreshIamToken asks the Runtime Core to refresh its IAM auth token if
// the configured IamTokenProvider reports the current one is close enough
// to expiry to warrant it.
func (c *Client) RefreshIamToken(ctx context.Context) error {
	if c.iamProvider == nil {
		return &glideerr.ConfigurationError{Message: "glide: refresh iam token: no IamTokenProvider configured"}
	}
	if !c.iamProvider.NeedsRefresh() {
		return nil
	}
	_, err := c.mux.SendRefreshIamToken(ctx)
	return err
}
