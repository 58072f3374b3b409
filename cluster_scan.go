package glide

import (
	goruntime "runtime"
	"sync/atomic"

	"github.com/valkey-io/valkey-glide-go/internal/logger"
)

// ClusterScanCursor is the opaque cursor handle from spec.md §3: born on
// the first Scan call, advanced on each subsequent call, and released when
// the binding drops it. StartCursor is the "iteration start" value.
const StartCursor = "0"

// ClusterScanCursor wraps the cursor id the Runtime Core mints for a
// cluster scan. Release notifies the runtime the cursor's server-side scan
// state can be freed; it also runs automatically via a finalizer if the
// caller lets the cursor become unreachable, matching spec.md's
// GC-driven lifecycle. Calling Release explicitly is still preferred:
// finalizers run on Go's schedule, not the caller's.
type ClusterScanCursor struct {
	id       string
	released atomic.Bool
}

func newClusterScanCursor(id string) *ClusterScanCursor {
	cur := &ClusterScanCursor{id: id}
	goruntime.SetFinalizer(cur, func(c *ClusterScanCursor) { c.Release() })
	return cur
}

// GetCursor returns the cursor id to pass to the next Scan call.
func (c *ClusterScanCursor) GetCursor() string {
	return c.id
}

// Release is idempotent and safe to call even though a finalizer may also
// call it. The Runtime Core this would notify over the wire is out of
// scope for this binding (spec.md §1); Release is the seam a Core
// implementation hooks to actually free server-side scan state.
func (c *ClusterScanCursor) Release() {
	if !c.released.CompareAndSwap(false, true) {
		return
	}
	goruntime.SetFinalizer(c, nil)
	logger.Debug("glide: cluster scan cursor released", "cursor", c.id)
}
