// Package clock implements TTEL's monotonic logical clocks,
// generalizing a single Lamport-style counter into the independent
// event/function/loop clocks TTEL needs. TTEL is single-writer, so the
// cross-process witness operation a gossiped clock would need has no
// analog here and is dropped.
package clock

import "sync/atomic"

// Counter is a monotonically increasing int64, advanced one tick at a
// time. It tolerates concurrent reads from another thread while the
// owning Log thread advances it, even though TTEL's single-threaded
// model never actually calls Advance concurrently with Time.
type Counter struct {
	v int64
}

// Time returns the counter's current value without advancing it.
func (c *Counter) Time() int64 { return atomic.LoadInt64(&c.v) }

// Advance increments the counter by one and returns the new value.
func (c *Counter) Advance() int64 { return atomic.AddInt64(&c.v, 1) }

// Set forces the counter to v, used when repositioning event_time
// after a snapshot inflation.
func (c *Counter) Set(v int64) { atomic.StoreInt64(&c.v, v) }

// Set owns the event and function clocks plus the top-level callback
// marker.
type Set struct {
	EventTime                 Counter
	FunctionTime              Counter
	topLevelCallbackEventTime int64
}

// NewSet returns a Set with all clocks at zero and no root call active.
func NewSet() *Set {
	s := &Set{}
	s.topLevelCallbackEventTime = -1
	return s
}

// TopLevelCallbackEventTime returns the event time of the outermost
// root call currently executing, or -1 outside any root call.
func (s *Set) TopLevelCallbackEventTime() int64 {
	return atomic.LoadInt64(&s.topLevelCallbackEventTime)
}

// EnterRoot records the event time of a newly entered root call.
func (s *Set) EnterRoot(eventTime int64) {
	atomic.StoreInt64(&s.topLevelCallbackEventTime, eventTime)
}

// ExitRoot clears the root-call marker.
func (s *Set) ExitRoot() {
	atomic.StoreInt64(&s.topLevelCallbackEventTime, -1)
}

// Loop is the per-frame loop-time counter, owned by a callstack.Frame
// rather than by Set, since it must reset to zero on every new frame
// rather than being process-global.
type Loop struct {
	v int64
}

func (l *Loop) Time() int64     { return l.v }
func (l *Loop) Advance() int64  { l.v++; return l.v }
