package cursor

import (
	"testing"

	"github.com/scriptlab/ttel/arena"
	"github.com/scriptlab/ttel/event"
	"github.com/scriptlab/ttel/eventlist"
)

func buildLog(t *testing.T, n int) (*eventlist.List, Decode) {
	t.Helper()
	slab := arena.NewSlab(1024)
	list := eventlist.New()
	records := map[arena.Handle]*event.Record{}
	for i := 1; i <= n; i++ {
		h := slab.Alloc(8)
		rec := &event.Record{EventTime: int64(i), Payload: event.DoublePayload{Value: float64(i)}}
		records[h] = rec
		list.Append(h, int64(i))
	}
	decode := func(h arena.Handle) *event.Record { return records[h] }
	return list, decode
}

func TestAdvanceInLockstep(t *testing.T) {
	list, decode := buildLog(t, 3)
	c := New(list, decode)
	for i := int64(1); i <= 3; i++ {
		rec, err := c.Advance()
		if err != nil {
			t.Fatalf("Advance: %v", err)
		}
		if rec.EventTime != i || c.EventTime() != i {
			t.Fatalf("rec.EventTime=%d cursor=%d want %d", rec.EventTime, c.EventTime(), i)
		}
	}
	if _, err := c.Advance(); err != ErrEndOfLog {
		t.Fatalf("Advance past end = %v, want ErrEndOfLog", err)
	}
}

func TestOutOfSyncDetected(t *testing.T) {
	slab := arena.NewSlab(1024)
	list := eventlist.New()
	h0 := slab.Alloc(8)
	h1 := slab.Alloc(8)
	list.Append(h0, 1)
	list.Append(h1, 5) // gap: not contiguous
	records := map[arena.Handle]*event.Record{
		h0: {EventTime: 1, Payload: event.DoublePayload{}},
		h1: {EventTime: 5, Payload: event.DoublePayload{}},
	}
	c := New(list, func(h arena.Handle) *event.Record { return records[h] })
	if _, err := c.Advance(); err != nil {
		t.Fatalf("first advance: %v", err)
	}
	if _, err := c.Advance(); err != ErrOutOfSync {
		t.Fatalf("second advance = %v, want ErrOutOfSync", err)
	}
}

func TestSeekTo(t *testing.T) {
	list, decode := buildLog(t, 5)
	c := New(list, decode)
	if !c.SeekTo(2) {
		t.Fatalf("SeekTo(2) failed")
	}
	rec, err := c.Advance()
	if err != nil || rec.EventTime != 3 {
		t.Fatalf("Advance after SeekTo(2) = %+v, %v, want event time 3", rec, err)
	}
}
