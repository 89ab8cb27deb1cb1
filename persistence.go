package ttel

import (
	"github.com/scriptlab/ttel/cursor"
	"github.com/scriptlab/ttel/event"
	"github.com/scriptlab/ttel/stream"
)

// Flush persists the full event list and property pin set to cfg.Stream
// in the structured record format.
func (l *Log) Flush() error {
	w, err := l.cfg.Stream.OpenWrite(l.cfg.Dir)
	if err != nil {
		return err
	}
	defer w.Close()

	records := l.allRecords()
	if err := (stream.Writer{}).Write(w, l.cfg.Arch, l.cfg.DiagEnabled, l.arena.Used(), l.arena.Reserved(), records, l.props.All()); err != nil {
		return err
	}
	return w.Close()
}

// Load reads a previously Flushed stream back into this Log, appending
// its events to the event list and pinning its properties on top of
// any already held (nothing is cleared first), then repositions the
// replay cursor at the start. It fails with ArchMismatchError/DiagMismatchError
// if the stream's header disagrees with this Log's Config.
func (l *Log) Load() error {
	r, err := l.cfg.Stream.OpenRead(l.cfg.Dir)
	if err != nil {
		return err
	}
	defer r.Close()

	arch, diag, _, _, events, props, err := (stream.Reader{}).Parse(r)
	if err != nil {
		return err
	}
	if arch != l.cfg.Arch {
		return &ArchMismatchError{Recorded: arch, Replaying: l.cfg.Arch}
	}
	if diag != l.cfg.DiagEnabled {
		return &DiagMismatchError{Recorded: diag, Replaying: l.cfg.DiagEnabled}
	}

	for _, e := range props {
		l.props.Pin(e.ID, e.Name, e.Numeric, e.Bound, e.Symbol)
	}

	var lastEventTime int64
	for _, rec := range events {
		l.append(rec)
		lastEventTime = rec.EventTime
	}
	l.clock.EventTime.Set(lastEventTime)
	l.curs = cursor.New(l.list, l.decode)
	return nil
}

// allRecords walks the event list front to back, decoding each handle,
// for Flush's wire encoding.
func (l *Log) allRecords() []*event.Record {
	out := make([]*event.Record, 0, l.list.Len())
	it := l.list.Front()
	for it.Next() {
		out = append(out, l.decode(it.Handle()))
	}
	return out
}
