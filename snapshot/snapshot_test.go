package snapshot

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/scriptlab/ttel/arena"
	"github.com/scriptlab/ttel/event"
	"github.com/scriptlab/ttel/eventlist"
)

type fakeHost struct {
	blob []byte
}

func (f *fakeHost) Now() time.Time     { return time.Time{} }
func (f *fakeHost) RandomSeed() uint64 { return 1 }
func (f *fakeHost) Extract(ctx context.Context, roots []event.Value) ([]byte, uint64, uint64, error) {
	return f.blob, 5, 6, nil
}
func (f *fakeHost) Inflate(ctx context.Context, blob []byte, reuse bool) error { return nil }
func (f *fakeHost) Execute(rec *event.Record) error                           { return nil }
func (f *fakeHost) HasImmediateExceptionFrame() bool                          { return false }

func TestTakeAndFindRestorePoint(t *testing.T) {
	dir := t.TempDir()
	host := &fakeHost{blob: []byte("state")}
	c := New(dir, host, 0, Hooks{}, nil)

	list := eventlist.New()
	slab := arena.NewSlab(1024)
	records := map[arena.Handle]*event.Record{}
	decode := func(h arena.Handle) *event.Record { return records[h] }
	put := func(r *event.Record) {
		h := slab.Alloc(8)
		records[h] = r
		list.Append(h, r.EventTime)
	}

	put(&event.Record{EventTime: 5, Payload: event.DoublePayload{Value: 1}})
	snap10, err := c.Take(context.Background(), nil, 10)
	if err != nil {
		t.Fatalf("Take: %v", err)
	}
	put(snap10)
	put(&event.Record{EventTime: 20, Payload: event.DoublePayload{Value: 2}})
	snap30, err := c.Take(context.Background(), nil, 30)
	if err != nil {
		t.Fatalf("Take: %v", err)
	}
	put(snap30)

	rec, ok := FindRestorePoint(list, decode, 27)
	if !ok || rec.EventTime != 10 {
		t.Fatalf("FindRestorePoint(27) = %+v, %v, want event time 10", rec, ok)
	}

	if _, err := os.Stat(c.blobPath(10)); err != nil {
		t.Fatalf("expected snapshot blob on disk: %v", err)
	}
}

func TestInflateResetsViaHooks(t *testing.T) {
	host := &fakeHost{blob: []byte("state")}
	var resetLogTag, resetIdentityTag uint64
	var gotEventTime int64
	var seekTarget int64
	var calledResetStack bool
	hooks := Hooks{
		ResetTagCounters: func(lt, it uint64) { resetLogTag, resetIdentityTag = lt, it },
		SetEventTime:     func(et int64) { gotEventTime = et },
		SeekCursor:       func(target int64) bool { seekTarget = target; return true },
		ResetCallStack:   func() { calledResetStack = true },
	}
	c := New(t.TempDir(), host, 0, hooks, nil)

	rec := &event.Record{
		EventTime: 10,
		Payload:   event.SnapshotPayload{RestoreEventTime: 10, Blob: []byte("x"), LogTag: 3, IdentityTag: 4},
	}
	if err := c.Inflate(context.Background(), rec); err != nil {
		t.Fatalf("Inflate: %v", err)
	}
	if resetLogTag != 3 || resetIdentityTag != 4 {
		t.Fatalf("tag counters not reset: %d %d", resetLogTag, resetIdentityTag)
	}
	if gotEventTime != 10 || seekTarget != 10 {
		t.Fatalf("event time / seek target not set to 10: %d %d", gotEventTime, seekTarget)
	}
	if !calledResetStack {
		t.Fatalf("expected call stack reset")
	}
}

func TestNeedsNewContext(t *testing.T) {
	host := &fakeHost{blob: []byte("x")}
	c := New(t.TempDir(), host, 0, Hooks{}, nil)
	rec := &event.Record{EventTime: 5, Payload: event.SnapshotPayload{RestoreEventTime: 5, Blob: []byte("x")}}
	if !c.NeedsNewContext(rec) {
		t.Fatalf("expected true before any inflation")
	}
	if err := c.Inflate(context.Background(), rec); err != nil {
		t.Fatalf("Inflate: %v", err)
	}
	if c.NeedsNewContext(rec) {
		t.Fatalf("expected false for the same restore point already inflated")
	}
	other := &event.Record{EventTime: 9, Payload: event.SnapshotPayload{RestoreEventTime: 9, Blob: []byte("y")}}
	if !c.NeedsNewContext(other) {
		t.Fatalf("expected true for a different restore point")
	}
}
