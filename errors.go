package ttel

import (
	"errors"
	"fmt"

	"github.com/scriptlab/ttel/cursor"
)

// ErrEndOfLog and ErrOutOfSync are re-exported from package cursor
// directly (same error values) so callers never need to import cursor
// themselves just to compare against them.
var (
	ErrEndOfLog  = cursor.ErrEndOfLog
	ErrOutOfSync = cursor.ErrOutOfSync
)

// Sentinel errors for TTEL's fatal conditions, declared with
// errors.New/fmt.Errorf at package scope rather than behind a
// third-party error-wrapping framework.
var (
	// ErrModeMisuse is returned by the replay-side operations
	// (ReplaySingleEntry, InflateSnapshotAt) when the mode machine is
	// not replaying. Record hooks never return it: outside
	// RecordEnabled they skip logging instead.
	ErrModeMisuse = errors.New("ttel: hook invoked while mode machine disagrees (record vs. replay)")

	// ErrNotAttached is returned by operations that require an
	// attached script context when none is attached.
	ErrNotAttached = errors.New("ttel: no script context attached")

	// ErrAlreadyAttached is returned by Attach when a context is
	// already attached; TTEL supports exactly one context per Log.
	ErrAlreadyAttached = errors.New("ttel: a script context is already attached")

	// ErrNoRestorePoint is returned by time-travel operations that
	// cannot find any snapshot or inline-snapshot root call at or
	// before the requested event time.
	ErrNoRestorePoint = errors.New("ttel: no snapshot or inline-snapshot root call at or before the requested event time")
)

// ArchMismatchError reports that the replaying host's architecture tag
// disagrees with the one recorded in the log.
type ArchMismatchError struct {
	Recorded, Replaying string
}

func (e *ArchMismatchError) Error() string {
	return fmt.Sprintf("ttel: architecture mismatch: log was recorded on %q, replaying on %q", e.Recorded, e.Replaying)
}

// DiagMismatchError reports that the replaying build's diagnostics flag
// disagrees with the one recorded in the log.
type DiagMismatchError struct {
	Recorded, Replaying bool
}

func (e *DiagMismatchError) Error() string {
	return fmt.Sprintf("ttel: diagnostics-enabled mismatch: log was recorded with %v, replaying with %v", e.Recorded, e.Replaying)
}

// PropertyGapError reports that one or more property ids referenced by
// the log have no pinned entry. MissingIDs names each missing id,
// useful for diagnostics even though the gap itself is fatal rather
// than a logged warning.
type PropertyGapError struct {
	MissingIDs []uint32
}

func (e *PropertyGapError) Error() string {
	return fmt.Sprintf("ttel: %d property id(s) referenced by the log are not pinned: %v", len(e.MissingIDs), e.MissingIDs)
}

// TTDebuggerAbort is an intentional, structured cancellation: raised to
// unwind a replay in progress back to the host loop, optionally
// carrying a target event time the host should re-enter replay at.
type TTDebuggerAbort struct {
	TargetEventTime *int64
	Message         string
}

func (a *TTDebuggerAbort) Error() string {
	if a.TargetEventTime != nil {
		return fmt.Sprintf("ttel: debugger abort (target event time %d): %s", *a.TargetEventTime, a.Message)
	}
	return fmt.Sprintf("ttel: debugger abort: %s", a.Message)
}

// abortSignal is the panic payload used internally by ReplayFullTrace
// to unwind the dispatch loop in one shot; it is recovered and
// converted back into a *TTDebuggerAbort at the function boundary, the
// one place in this codebase that uses panic/recover for control flow.
type abortSignal struct {
	abort *TTDebuggerAbort
}
