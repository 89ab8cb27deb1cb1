// Package ttel implements a time-travel event log for a host scripting
// engine: an append-only record of every non-deterministic query and
// every host-visible engine action, replayable byte-for-byte against a
// fresh or snapshot-restored engine state.
//
// Log is the single orchestrating type, in the same spirit as a
// root-package coordinator struct: it owns every other package's state
// and is the only thing application code constructs directly.
package ttel

import (
	"context"
	"fmt"
	"log"
	"runtime"
	"time"

	"github.com/armon/circbuf"
	"github.com/hashicorp/go-multierror"
	"github.com/hashicorp/go-uuid"
	"github.com/hashicorp/logutils"

	"github.com/scriptlab/ttel/arena"
	"github.com/scriptlab/ttel/callstack"
	"github.com/scriptlab/ttel/clock"
	"github.com/scriptlab/ttel/cursor"
	"github.com/scriptlab/ttel/event"
	"github.com/scriptlab/ttel/eventlist"
	"github.com/scriptlab/ttel/guard"
	"github.com/scriptlab/ttel/internal/telemetry"
	"github.com/scriptlab/ttel/mode"
	"github.com/scriptlab/ttel/property"
	"github.com/scriptlab/ttel/snapshot"
)

func defaultArch() string { return runtime.GOARCH }

// Log is the single orchestrator owning the arena, event list, mode
// stack, call stack, property pin set, clock set, and replay cursor. It
// holds a non-owning reference to the single event.Host it drives.
type Log struct {
	cfg    Config
	host   event.Host
	logger *log.Logger
	id     string

	arena   *arena.Slab
	list    *eventlist.List
	records map[arena.Handle]*event.Record

	mode  *mode.Stack
	clock *clock.Set
	calls *callstack.Stack
	props *property.PinSet
	curs  *cursor.Replay
	snap  *snapshot.Coordinator
	recent *circbuf.Buffer

	logTag, identityTag uint64
}

// New constructs a Log around host, ready to Attach for recording or
// Load an existing stream for replay.
func New(cfg Config, host event.Host) (*Log, error) {
	if host == nil {
		return nil, fmt.Errorf("ttel: New requires a non-nil Host")
	}
	if cfg.Arch == "" {
		cfg.Arch = defaultArch()
	}
	if cfg.BlockSize <= 0 {
		cfg.BlockSize = arena.DefaultBlockSize
	}
	if cfg.RecentKindWindow <= 0 {
		cfg.RecentKindWindow = 64
	}

	id, err := uuid.GenerateUUID()
	if err != nil {
		return nil, fmt.Errorf("ttel: generating session id: %w", err)
	}

	filter := &logutils.LevelFilter{
		Levels:   []logutils.LogLevel{"DEBUG", "INFO", "WARN", "ERROR"},
		MinLevel: logutils.LogLevel(cfg.LogLevel),
		Writer:   cfg.LogOutput,
	}
	logger := log.New(filter, fmt.Sprintf("[ttel %s] ", id[:8]), log.LstdFlags)

	telemetry.Setup(cfg.ServiceName)

	recent, err := circbuf.NewBuffer(cfg.RecentKindWindow)
	if err != nil {
		return nil, fmt.Errorf("ttel: allocating recent-kind ring: %w", err)
	}

	l := &Log{
		cfg:     cfg,
		host:    host,
		logger:  logger,
		id:      id,
		arena:   arena.NewSlab(cfg.BlockSize),
		list:    eventlist.New(),
		records: make(map[arena.Handle]*event.Record),
		mode:    mode.NewStack(mode.Pending),
		clock:   clock.NewSet(),
		calls:   callstack.New(),
		props:   property.New(),
		recent:  recent,
	}
	l.curs = cursor.New(l.list, l.decode)
	l.mode.SetOnChange(func(eff mode.Effective) {
		logger.Printf("[DEBUG] mode transition: %s", eff)
	})
	l.snap = snapshot.New(cfg.Dir, host, cfg.SnapshotThreshold, snapshot.Hooks{
		ResetTagCounters: func(logTag, identityTag uint64) {
			l.logTag, l.identityTag = logTag, identityTag
		},
		SetEventTime: l.clock.EventTime.Set,
		SeekCursor:   func(target int64) bool { return l.curs.SeekTo(target) },
		ResetCallStack: l.calls.ResetForNewTopLevelCall,
	}, logger)

	return l, nil
}

// ID returns the session identifier minted for this Log at construction.
func (l *Log) ID() string { return l.id }

func (l *Log) decode(h arena.Handle) *event.Record { return l.records[h] }

// recordSize estimates the arena footprint of rec, standing in for the
// byte-exact serialization a production allocator would perform; the
// wire-accurate encoding lives in package stream and is only exercised
// at Flush/Load boundaries, not on every hot-path append.
func recordSize(rec *event.Record) int {
	base := 32
	switch p := rec.Payload.(type) {
	case event.StringPayload:
		base += len(p.Value)
	case event.AllocStringPayload:
		base += len(p.Value)
	case event.CodeParsePayload:
		base += len(p.Source) + len(p.URL)
	case event.CallFunctionBeginPayload:
		base += 16 * len(p.Args)
	case event.ConstructCallPayload:
		base += 16 * len(p.Args)
	case event.CallbackOpPayload:
		base += 16 * len(p.Args)
	case event.SnapshotPayload:
		base += len(p.Blob)
	}
	return base
}

// append installs rec as the new tail of the event list, keyed by a
// fresh arena handle sized to approximate rec's footprint.
func (l *Log) append(rec *event.Record) arena.Handle {
	h := l.arena.Alloc(recordSize(rec))
	l.records[h] = rec
	l.list.Append(h, rec.EventTime)
	return h
}

// record advances event time by one tick, builds the Record, appends
// it, and returns it, the common tail of every Record* hook.
func (l *Log) record(payload event.Payload) *event.Record {
	et := l.clock.EventTime.Advance()
	rec := &event.Record{EventTime: et, Payload: payload}
	l.append(rec)
	l.recordKindSeen(rec.Kind())
	return rec
}

func (l *Log) recordKindSeen(k event.Kind) {
	l.recent.Write([]byte{byte(k)})
}

// RecentKinds reports the most recently appended or replayed record
// kinds, oldest first.
func (l *Log) RecentKinds() []event.Kind {
	b := l.recent.Bytes()
	out := make([]event.Kind, len(b))
	for i, kb := range b {
		out[i] = event.Kind(kb)
	}
	return out
}

// Len returns the number of records currently held in the event list.
func (l *Log) Len() int { return l.list.Len() }

// UsedMemory and ReservedMemory report the arena's footprint counters.
func (l *Log) UsedMemory() int64     { return l.arena.Used() }
func (l *Log) ReservedMemory() int64 { return l.arena.Reserved() }

// PinProperty interns a property id/name binding so later HostAction
// records naming that id can be resolved during inspection and replay.
func (l *Log) PinProperty(id uint32, name string, numeric, bound, symbol bool) {
	l.props.Pin(id, name, numeric, bound, symbol)
}

// Properties returns every pinned property, sorted by id.
func (l *Log) Properties() []property.Entry { return l.props.All() }

func (l *Log) checkPropertyGap(ids ...uint32) error {
	if missing := l.props.Gap(ids); len(missing) > 0 {
		return &PropertyGapError{MissingIDs: missing}
	}
	return nil
}

// --- mode control ---

// Attach transitions the mode machine into RecordEnabled. It fails if a
// context is already attached (base is neither Pending nor Detached).
func (l *Log) Attach() error {
	b := l.mode.Base()
	if b != mode.Pending && b != mode.Detached {
		return ErrAlreadyAttached
	}
	l.mode.SetBase(mode.RecordEnabled)
	return nil
}

// Detach transitions the mode machine to Detached, disabling both
// recording and replay while keeping the log's accumulated state.
func (l *Log) Detach() error {
	l.mode.SetBase(mode.Detached)
	return nil
}

// BeginDebugging transitions into DebuggingEnabled (replay) mode and
// resets the replay cursor and call stack to the start of the log.
func (l *Log) BeginDebugging() error {
	l.mode.SetBase(mode.DebuggingEnabled)
	l.curs = cursor.New(l.list, l.decode)
	l.calls.ResetForNewTopLevelCall()
	return nil
}

// Mode reports the mode machine's current effective mode.
func (l *Log) Mode() mode.Effective { return l.mode.Current() }

// PushExcluded and PopExcluded bracket a region of excluded execution,
// e.g. while extracting a snapshot.
func (l *Log) PushExcluded() int    { return l.mode.PushExcluded() }
func (l *Log) PopExcluded(tok int)  { l.mode.PopExcluded(tok) }

// HasImmediateExceptionFrame satisfies guard.Recorder/HostCallRecorder
// by delegating straight to the host, the only party that actually
// knows whether the frame about to unwind first observed the
// in-flight exception.
func (l *Log) HasImmediateExceptionFrame() bool { return l.host.HasImmediateExceptionFrame() }

// RecordExternalCallEnd satisfies guard.Recorder.
func (l *Log) RecordExternalCallEnd(matchingBeginTime int64, rootNestingDepth int, hasScriptException, hasTerminatingException bool, ret event.Value) {
	if !l.mode.Current().ShouldRecord() {
		return
	}
	l.record(event.ExternalCallEndPayload{
		MatchingBeginTime:       matchingBeginTime,
		RootNestingDepth:        rootNestingDepth,
		WallClockEnd:            time.Now(),
		HasScriptException:      hasScriptException,
		HasTerminatingException: hasTerminatingException,
		ReturnValue:             ret,
	})
}

// RecordCallFunctionEnd satisfies guard.HostCallRecorder.
func (l *Log) RecordCallFunctionEnd(matchingBeginTime int64, ret event.Value) {
	if l.mode.Current().ShouldRecord() {
		l.record(event.CallFunctionEndPayload{MatchingBeginTime: matchingBeginTime, ReturnValue: ret})
	}
	if l.calls.Depth() > 0 {
		l.calls.Pop()
	}
	if l.calls.Depth() == 0 {
		l.clock.ExitRoot()
	}
}

// BeginExternalCall opens an external-call boundary. The returned
// guard's Close must be deferred immediately by the caller.
func (l *Log) BeginExternalCall(hostCallbackID uint64, rootNestingDepth int) *guard.External {
	var beginTime int64
	if l.mode.Current().ShouldRecord() {
		rec := l.record(event.ExternalCallBeginPayload{
			RootNestingDepth: rootNestingDepth,
			WallClockBegin:   time.Now(),
			HostCallbackID:   hostCallbackID,
		})
		beginTime = rec.EventTime
	}
	return guard.Begin(l, beginTime, rootNestingDepth)
}

// BeginHostCall opens a script-invokes-host-invokes-script boundary,
// taking a lazily-placed inline snapshot when functionRef opens a new
// root call and the snapshot policy says it is time.
func (l *Log) BeginHostCall(ctx context.Context, functionRef uint64, args []event.Value, isRootCall bool, hostCallbackID uint64) *guard.HostCall {
	var beginTime int64
	if l.mode.Current().ShouldRecord() {
		payload := event.CallFunctionBeginPayload{
			FunctionRef:    functionRef,
			Args:           event.CopyArgs(args),
			IsRootCall:     isRootCall,
			HostCallbackID: hostCallbackID,
		}
		if isRootCall && l.snap.ShouldTake(time.Now()) {
			restoreAt := l.clock.EventTime.Time() + 1
			tok := l.mode.PushExcluded()
			snapRec, err := l.snap.Take(ctx, args, restoreAt)
			l.mode.PopExcluded(tok)
			if err == nil {
				sp := snapRec.Payload.(event.SnapshotPayload)
				payload.InlineSnapshot = &sp
			} else {
				l.logger.Printf("[WARN] inline snapshot skipped: %v", err)
			}
		}
		rec := l.record(payload)
		beginTime = rec.EventTime
		functionTime := l.clock.FunctionTime.Advance()
		l.calls.Push(functionRef, rec.EventTime, functionTime)
		if isRootCall {
			l.clock.EnterRoot(rec.EventTime)
		}
	}
	return guard.BeginHostCall(l, beginTime)
}

// Close tears down the Log's owned resources, aggregating every
// teardown error with hashicorp/go-multierror: flushing the stream
// writer if recording, then closing the snapshot coordinator.
func (l *Log) Close() error {
	var result *multierror.Error
	if l.mode.Current().ShouldRecord() {
		if err := l.Flush(); err != nil {
			result = multierror.Append(result, fmt.Errorf("ttel: flushing on close: %w", err))
		}
	}
	if err := l.snap.Close(); err != nil {
		result = multierror.Append(result, fmt.Errorf("ttel: closing snapshot coordinator: %w", err))
	}
	return result.ErrorOrNil()
}
