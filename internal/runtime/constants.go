// Package runtime is the process-global bootstrap (C2): it starts the
// networking runtime exactly once, hands each client session an
// independent UDS endpoint, and exposes the constants and admin hooks
// (statistics, tracing, OpenTelemetry init) that the rest of the engine
// treats as external collaborators.
package runtime

import (
	"time"

	"github.com/valkey-io/valkey-glide-go/pkg/config"
)

// Constants are the engine knobs the runtime exposes to the multiplexer and
// session layers, sourced from pkg/config.RuntimeConfig (env GLIDE_*, YAML
// file, or viper defaults).
type Constants struct {
	// DefaultTimeout bounds the UDS connect and handshake in create.
	DefaultTimeout time.Duration
	// MaxInlineArgsBytes is the inline-vs-pointer threshold (MAX_REQUEST_ARGS_LEN).
	MaxInlineArgsBytes uint64
	// ReadChunkBytes is the reader loop's default socket read chunk size.
	ReadChunkBytes uint64
}

// NewConstants derives the runtime Constants from a loaded RuntimeConfig.
func NewConstants(cfg config.RuntimeConfig) Constants {
	return Constants{
		DefaultTimeout:     cfg.DefaultTimeout,
		MaxInlineArgsBytes: cfg.MaxInlineArgsBytes.Uint64(),
		ReadChunkBytes:     cfg.ReadChunkBytes.Uint64(),
	}
}
