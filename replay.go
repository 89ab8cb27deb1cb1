package ttel

import (
	"context"
	"errors"
	"fmt"

	"github.com/scriptlab/ttel/event"
	"github.com/scriptlab/ttel/snapshot"
)

// This file implements the replay-side operations: single-step
// dispatch, seeking to an arbitrary event time, and running a trace to
// completion.

// ReplaySingleEntry advances the cursor by one record, applies whatever
// call-stack bookkeeping that record implies, and, for HostAction
// kinds, re-invokes the host. It requires the mode machine to be in a
// replaying state.
func (l *Log) ReplaySingleEntry() (*event.Record, error) {
	if !l.mode.Current().ShouldReplay() {
		return nil, ErrModeMisuse
	}
	rec, err := l.curs.Advance()
	if err != nil {
		return nil, err
	}
	l.recordKindSeen(rec.Kind())

	switch p := rec.Payload.(type) {
	case event.CallFunctionBeginPayload:
		functionTime := l.clock.FunctionTime.Advance()
		l.calls.Push(p.FunctionRef, rec.EventTime, functionTime)
		if p.IsRootCall {
			l.clock.EnterRoot(rec.EventTime)
		}
		return rec, nil
	case event.CallFunctionEndPayload:
		if l.calls.Depth() > 0 {
			l.calls.Pop()
		}
		if l.calls.Depth() == 0 {
			l.clock.ExitRoot()
		}
		return rec, nil
	}

	if rec.Kind().IsHostAction() {
		tok := l.mode.PushExcluded()
		err := rec.Execute(l.host)
		l.mode.PopExcluded(tok)
		if err != nil {
			return rec, fmt.Errorf("ttel: replaying %s at event time %d: %w", rec.Kind(), rec.EventTime, err)
		}
	}
	if _, ok := rec.Payload.(event.GetAndClearExceptionPayload); ok {
		l.calls.ClearException()
	}
	return rec, nil
}

// ReplayToTime drives ReplaySingleEntry until the cursor's event time
// reaches or passes target.
func (l *Log) ReplayToTime(ctx context.Context, target int64) error {
	for l.curs.EventTime() < target {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := l.ReplaySingleEntry(); err != nil {
			return err
		}
	}
	return nil
}

// ReplayFullTrace drives replay to the end of the log. A TTDebuggerAbort
// raised by host code during Execute unwinds the loop in one step via
// panic/recover, the one intentional use of that mechanism in this
// codebase.
func (l *Log) ReplayFullTrace(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if sig, ok := r.(abortSignal); ok {
				err = sig.abort
				return
			}
			panic(r)
		}
	}()
	for {
		if e := ctx.Err(); e != nil {
			return e
		}
		_, err := l.ReplaySingleEntry()
		if err != nil {
			if errors.Is(err, ErrEndOfLog) {
				return nil
			}
			return err
		}
	}
}

// Abort unwinds an in-progress ReplayFullTrace back to its caller,
// optionally naming the event time the host intends to resume replay
// at. It is only meaningful called from within host code invoked by
// Execute during ReplayFullTrace.
func Abort(targetEventTime *int64, message string) {
	panic(abortSignal{abort: &TTDebuggerAbort{TargetEventTime: targetEventTime, Message: message}})
}

// FindSnapTimeForEventTime reports the event time of the nearest
// snapshot or inline-snapshot root call at or before target.
func (l *Log) FindSnapTimeForEventTime(target int64) (int64, error) {
	rec, ok := snapshot.FindRestorePoint(l.list, l.decode, target)
	if !ok {
		return 0, ErrNoRestorePoint
	}
	switch p := rec.Payload.(type) {
	case event.SnapshotPayload:
		return p.RestoreEventTime, nil
	case event.CallFunctionBeginPayload:
		if p.InlineSnapshot != nil {
			return p.InlineSnapshot.RestoreEventTime, nil
		}
	}
	return 0, ErrNoRestorePoint
}

// InflateSnapshotAt rebuilds engine state from the nearest restore
// point at or before target and repositions the cursor immediately
// after it. The caller must already be in DebuggingEnabled mode.
func (l *Log) InflateSnapshotAt(ctx context.Context, target int64) error {
	if !l.mode.Current().ShouldReplay() {
		return ErrModeMisuse
	}
	rec, ok := snapshot.FindRestorePoint(l.list, l.decode, target)
	if !ok {
		return ErrNoRestorePoint
	}
	if err := l.snap.Inflate(ctx, rec); err != nil {
		return err
	}
	if _, isBareSnapshot := rec.Payload.(event.SnapshotPayload); isBareSnapshot {
		// The snapshot record itself carries no host action; step past
		// it so the next ReplaySingleEntry lands on the first record
		// that actually needs replaying (snapshot.Coordinator's own
		// doc comment on Inflate, step 6).
		if _, err := l.curs.Advance(); err != nil && !errors.Is(err, ErrEndOfLog) {
			return err
		}
	}
	return nil
}

// SnapshotCount reports how many snapshots this Log has taken.
func (l *Log) SnapshotCount() int { return l.snap.Count() }
