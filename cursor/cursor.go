// Package cursor implements the replay cursor state machine: an
// iterator into eventlist.List that advances one event at a time in
// lockstep with a mirrored event-time counter, raising ErrEndOfLog
// once exhausted and ErrOutOfSync if the log disagrees with the
// counter.
package cursor

import (
	"errors"

	"github.com/scriptlab/ttel/arena"
	"github.com/scriptlab/ttel/event"
	"github.com/scriptlab/ttel/eventlist"
)

// ErrEndOfLog is returned once the cursor has consumed every record in
// the list. Callers convert it into a TTDebuggerAbort at the host-loop
// boundary.
var ErrEndOfLog = errors.New("cursor: end of log")

// ErrOutOfSync is returned when the record under the cursor disagrees
// with the mirrored event-time counter, a fatal condition during
// replay.
var ErrOutOfSync = errors.New("cursor: record event time does not match cursor event time")

// Decode resolves an arena handle back into the Record it names.
// ttel.Log supplies this so cursor stays decoupled from how records
// are actually stored.
type Decode func(h arena.Handle) *event.Record

// Replay is the cursor that walks an event list during replay.
type Replay struct {
	list      *eventlist.List
	it        *eventlist.Iterator
	eventTime int64
	decode    Decode
}

// New returns a Replay cursor over list, positioned before the first
// record.
func New(list *eventlist.List, decode Decode) *Replay {
	return &Replay{list: list, it: list.Front(), decode: decode}
}

// Advance moves to the next record, increments the mirrored
// event-time counter, and asserts the record's own event time equals
// the counter.
func (r *Replay) Advance() (*event.Record, error) {
	if !r.it.Next() {
		return nil, ErrEndOfLog
	}
	r.eventTime++
	rec := r.decode(r.it.Handle())
	if rec.EventTime != r.eventTime {
		return nil, ErrOutOfSync
	}
	return rec, nil
}

// EventTime returns the cursor's mirrored event-time counter.
func (r *Replay) EventTime() int64 { return r.eventTime }

// SeekTo repositions the cursor so that it is as if the record with
// EventTime == target had just been consumed: the next Advance
// returns the record immediately following it. This is how
// snapshot.Coordinator.Inflate repositions the cursor after restoring
// state; the caller decides separately whether to call Advance once
// more when target names the snapshot record itself.
func (r *Replay) SeekTo(target int64) bool {
	it := r.list.Front()
	for it.Next() {
		if it.EventTime() == target {
			r.it = it
			r.eventTime = target
			return true
		}
	}
	// Not found: position past the end so the next Advance reports
	// ErrEndOfLog rather than silently replaying from the start.
	r.it = r.list.Back()
	r.eventTime = -1
	return false
}
