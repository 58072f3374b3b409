package session

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valkey-io/valkey-glide-go/internal/ipc"
)

// TestWriterQueue_ConcurrentSchedulesCoalesceIntoOneBatch exercises the
// testable property from spec.md §8: N requests scheduled while the writer
// is busy are drained together, in submission order, by whichever caller is
// holding the drain.
func TestWriterQueue_ConcurrentSchedulesCoalesceIntoOneBatch(t *testing.T) {
	var q writerQueue

	var mu sync.Mutex
	var batches [][]ipc.Message

	release := make(chan struct{})
	firstWriteStarted := make(chan struct{})

	write := func(msgs []ipc.Message) error {
		mu.Lock()
		batches = append(batches, msgs)
		first := len(batches) == 1
		mu.Unlock()

		if first {
			close(firstWriteStarted)
			<-release
		}
		return nil
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		require.NoError(t, q.schedule(&ipc.CommandRequest{CallbackIdx: 0}, write))
	}()

	<-firstWriteStarted

	// While the first write is blocked, schedule N more. Since the drain
	// flag is already held, each call appends and returns immediately
	// without blocking, so calling them in sequence is sufficient to prove
	// submission order is preserved and deterministic for the assertion
	// below.
	const n = 5
	for i := 1; i <= n; i++ {
		require.NoError(t, q.schedule(&ipc.CommandRequest{CallbackIdx: uint32(i)}, write))
	}

	close(release)
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()

	require.Len(t, batches, 2)
	assert.Len(t, batches[0], 1)
	assert.Len(t, batches[1], n)

	for i, msg := range batches[1] {
		cmd, ok := msg.(*ipc.CommandRequest)
		require.True(t, ok)
		assert.Equal(t, uint32(i+1), cmd.CallbackIdx)
	}
}

func TestWriterQueue_WriteErrorStopsDraining(t *testing.T) {
	var q writerQueue

	calls := 0
	writeErr := assert.AnError
	write := func(msgs []ipc.Message) error {
		calls++
		return writeErr
	}

	err := q.schedule(&ipc.CommandRequest{CallbackIdx: 1}, write)
	assert.ErrorIs(t, err, writeErr)
	assert.Equal(t, 1, calls)

	q.mu.Lock()
	draining := q.draining
	pending := len(q.pending)
	q.mu.Unlock()
	assert.False(t, draining)
	assert.Zero(t, pending)
}
