package session

import (
	"sync"

	"github.com/valkey-io/valkey-glide-go/internal/ipc"
)

// writerQueue is the writer coalescer: a buffered queue plus a
// single-holder mutex. Any number of callers may schedule a write; exactly
// one at a time drains the queue to the wire. Callers that cannot become
// the drainer simply append and return — the current holder will carry
// their entry in a later pass.
type writerQueue struct {
	mu       sync.Mutex
	pending  []ipc.Message
	draining bool
}

// schedule appends msg to the queue and, if no other caller is currently
// draining, becomes the drainer: repeatedly snapshots the queue, hands it
// to write, and loops until the queue is empty. write receives the whole
// batch so the caller can attribute a failure back to every message it
// contains (needed to fail the right callback slots on a write error).
func (q *writerQueue) schedule(msg ipc.Message, write func([]ipc.Message) error) error {
	q.mu.Lock()
	q.pending = append(q.pending, msg)
	if q.draining {
		q.mu.Unlock()
		return nil
	}
	q.draining = true
	q.mu.Unlock()

	for {
		q.mu.Lock()
		batch := q.pending
		q.pending = nil
		q.mu.Unlock()

		if len(batch) == 0 {
			q.mu.Lock()
			q.draining = false
			q.mu.Unlock()
			return nil
		}

		if err := write(batch); err != nil {
			q.mu.Lock()
			q.pending = nil
			q.draining = false
			q.mu.Unlock()
			return err
		}
	}
}
