package ttel

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/scriptlab/ttel/event"
	"github.com/scriptlab/ttel/internal/hostsim"
)

func newTestLog(t *testing.T) (*Log, *hostsim.Host) {
	t.Helper()
	host := hostsim.New()
	cfg := DefaultConfig()
	cfg.Dir = t.TempDir()
	cfg.SnapshotThreshold = 0
	cfg.LogOutput = io.Discard
	l, err := New(cfg, host)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return l, host
}

func TestAttachDetachModeTransitions(t *testing.T) {
	l, _ := newTestLog(t)
	if err := l.Attach(); err != nil {
		t.Fatalf("Attach: %v", err)
	}
	if !l.Mode().ShouldRecord() {
		t.Fatalf("expected ShouldRecord after Attach")
	}
	if err := l.Attach(); err == nil {
		t.Fatalf("expected ErrAlreadyAttached on double Attach")
	}
	if err := l.Detach(); err != nil {
		t.Fatalf("Detach: %v", err)
	}
	if l.Mode().ShouldRecord() {
		t.Fatalf("expected recording disabled after Detach")
	}
}

func TestRecordReplayRoundTrip(t *testing.T) {
	l, host := newTestLog(t)
	if err := l.Attach(); err != nil {
		t.Fatalf("Attach: %v", err)
	}
	l.PinProperty(7, "value", false, false, false)

	ctx := context.Background()
	g := l.BeginHostCall(ctx, 1, nil, true, 0)
	l.RecordAllocObject(0)
	if err := l.RecordSetProperty(1, 7, event.Value{Kind: event.ValueNumber, Number: 42}); err != nil {
		t.Fatalf("RecordSetProperty: %v", err)
	}
	g.NormalReturn(event.Value{Kind: event.ValueUndefined})

	recordedValue, ok := host.PropertyOf(1, 7)
	if !ok || recordedValue.Number != 42 {
		t.Fatalf("expected property set during record, got %+v (%v)", recordedValue, ok)
	}
	if got := l.Len(); got == 0 {
		t.Fatalf("expected events appended during record, got 0")
	}

	replayHost := hostsim.New()
	cfg2 := l.cfg
	replayLog, err := New(cfg2, replayHost)
	if err != nil {
		t.Fatalf("New (replay): %v", err)
	}
	for _, e := range l.allRecords() {
		replayLog.append(e)
	}
	replayLog.clock.EventTime.Set(l.clock.EventTime.Time())

	if err := replayLog.BeginDebugging(); err != nil {
		t.Fatalf("BeginDebugging: %v", err)
	}
	if err := replayLog.ReplayFullTrace(ctx); err != nil {
		t.Fatalf("ReplayFullTrace: %v", err)
	}

	replayedValue, ok := replayHost.PropertyOf(1, 7)
	if !ok || replayedValue.Number != 42 {
		t.Fatalf("expected property set during replay, got %+v (%v)", replayedValue, ok)
	}
	if host.ObjectCount() != replayHost.ObjectCount() {
		t.Fatalf("object count diverged: record=%d replay=%d", host.ObjectCount(), replayHost.ObjectCount())
	}
}

func TestPropertyGapReturnsError(t *testing.T) {
	l, _ := newTestLog(t)
	if err := l.Attach(); err != nil {
		t.Fatalf("Attach: %v", err)
	}
	err := l.RecordGetProperty(1, 99)
	var gapErr *PropertyGapError
	if !errors.As(err, &gapErr) {
		t.Fatalf("expected *PropertyGapError, got %T: %v", err, err)
	}
	if len(gapErr.MissingIDs) != 1 || gapErr.MissingIDs[0] != 99 {
		t.Fatalf("unexpected missing ids: %v", gapErr.MissingIDs)
	}
}

func TestFlushLoadRoundTrip(t *testing.T) {
	l, _ := newTestLog(t)
	if err := l.Attach(); err != nil {
		t.Fatalf("Attach: %v", err)
	}
	l.PinProperty(3, "count", true, false, false)
	l.RecordRandomSeed()
	l.RecordAllocNumber(3.14)

	if err := l.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	host := hostsim.New()
	cfg := l.cfg
	reloaded, err := New(cfg, host)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := reloaded.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if reloaded.Len() != l.Len() {
		t.Fatalf("event count mismatch after reload: got %d want %d", reloaded.Len(), l.Len())
	}
	if _, ok := reloaded.props.Lookup(3); !ok {
		t.Fatalf("expected property 3 to survive Flush/Load round trip")
	}
}

func TestRecentKindsTracksAppends(t *testing.T) {
	l, _ := newTestLog(t)
	if err := l.Attach(); err != nil {
		t.Fatalf("Attach: %v", err)
	}
	l.RecordRandomSeed()
	l.RecordAllocNumber(1)
	kinds := l.RecentKinds()
	if len(kinds) != 2 {
		t.Fatalf("expected 2 recent kinds, got %d: %v", len(kinds), kinds)
	}
	if kinds[0] != event.KindRandomSeed || kinds[1] != event.KindAllocNumber {
		t.Fatalf("unexpected kind order: %v", kinds)
	}
}
