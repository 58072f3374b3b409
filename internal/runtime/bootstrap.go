package runtime

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
)

var (
	bootstrapOnce sync.Once
	socketSeq     atomic.Uint64
)

// initialize runs the process-global runtime startup exactly once.
// Real work (beyond the sync.Once guard itself) belongs to the Runtime
// Core this package talks to over UDS; here it just establishes the
// directory new sockets are minted under.
func initialize() {
	bootstrapOnce.Do(func() {
		_ = os.MkdirAll(socketDir(), 0o700)
	})
}

// socketDir is where per-client UDS endpoints are created.
func socketDir() string {
	dir := os.Getenv("GLIDE_RUNTIME_SOCKET_DIR")
	if dir == "" {
		dir = os.TempDir()
	}
	return dir
}

// StartListener ensures the process-global runtime has started, then
// asynchronously creates a fresh UDS listener and invokes cb(socketPath,
// err) once it is ready to accept. Safe to call concurrently; each call
// yields an independent socket, and the listener persists until the caller
// (the session holding that path) closes it.
//
// Re-entrant by construction: the sync.Once guard in initialize makes every
// call after the first a no-op beyond minting a new socket.
func StartListener(cb func(socketPath string, listener net.Listener, err error)) {
	initialize()

	go func() {
		path := newSocketPath()
		ln, err := net.Listen("unix", path)
		if err != nil {
			cb("", nil, fmt.Errorf("runtime: start listener: %w", err))
			return
		}
		cb(path, ln, nil)
	}()
}

func newSocketPath() string {
	n := socketSeq.Add(1)
	name := fmt.Sprintf("glide-%d-%d.sock", os.Getpid(), n)
	return filepath.Join(socketDir(), name)
}
