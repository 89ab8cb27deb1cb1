package event

import (
	"context"
	"time"
)

// Host is the script-engine contract TTEL calls against. TTEL does not
// implement Host itself: the engine, the snapshot extractor, and the
// heap inflater are a separate concern, but the facade and its tests
// are written entirely in terms of this interface so the record/replay
// control flow is real and exercised.
type Host interface {
	// Now returns the host's wall-clock time, consumed by RecordNow
	// during record and never called during replay.
	Now() time.Time

	// RandomSeed returns a fresh, non-deterministic seed, consumed by
	// RecordRandomSeed during record.
	RandomSeed() uint64

	// Extract walks the live object graph reachable from roots and
	// returns an opaque snapshot blob plus the tag counters in effect
	// at capture time.
	Extract(ctx context.Context, roots []Value) (blob []byte, logTag, identityTag uint64, err error)

	// Inflate rebuilds engine state from blob. reuse is true when the
	// existing InflateMap may be reused for an incremental
	// re-inflation into the same context; false requires a fresh
	// context to be built first.
	Inflate(ctx context.Context, blob []byte, reuse bool) error

	// Execute re-applies a single HostAction record against live
	// engine state. It is never called for non-HostAction kinds.
	Execute(rec *Record) error

	// HasImmediateExceptionFrame reports whether the call frame that
	// is about to be popped is itself the first frame to observe the
	// in-flight exception, used by guard.External to avoid double
	// reporting in nested external calls.
	HasImmediateExceptionFrame() bool
}
