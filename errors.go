package texcache

import "errors"

// The failure taxonomy of the cache. Nothing in this package substitutes
// default data on failure: malformed input is rejected before any backend
// call, and device failures are surfaced unrecoverably.
var (
	// ErrResourceExhausted reports device out-of-memory during resource or
	// commit allocation. There is no degraded-residency path; recovery, if
	// any, belongs to the external eviction policy which must free
	// surfaces before allocation is attempted again.
	ErrResourceExhausted = errors.New("texcache: device resources exhausted")

	// ErrMalformedDescriptor reports inconsistent surface parameters at
	// construction time. This is a caller bug, not a runtime state.
	ErrMalformedDescriptor = errors.New("texcache: malformed surface descriptor")

	// ErrSchedulerTimeout reports a fence wait that never signalled during
	// DownloadTexture. A GPU hang means the pending-use bookkeeping can no
	// longer be trusted, so callers must treat this as fatal.
	ErrSchedulerTimeout = errors.New("texcache: scheduler fence wait timed out")
)
