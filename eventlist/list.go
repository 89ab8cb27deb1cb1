// Package eventlist implements EventList: a doubly-linked list of
// fixed-size blocks of event handles. Append is tail-only, deletion is
// head-only, and forward/backward iteration crosses block boundaries
// transparently. All memory referenced by a List is owned by the
// caller's arena.Slab; the List itself only tracks slab handles and
// event times.
package eventlist

import (
	"errors"

	"github.com/scriptlab/ttel/arena"
)

// BlockSize is the number of entries held by each block. Its value is
// not load-bearing; anything in the 128-1024 range works equally well.
const BlockSize = 256

// ErrNotOldest is the panic value raised when the head block is about
// to be unlinked while it still holds live entries. PopFront only
// unlinks an emptied head block, so reaching this is a programming
// error.
var ErrNotOldest = errors.New("eventlist: DeleteFirstEntry invoked on a block that is not the oldest")

type entry struct {
	handle    arena.Handle
	eventTime int64
}

type block struct {
	entries    [BlockSize]entry
	start, end int // live range [start, end)
	next, prev *block
}

func (b *block) empty() bool { return b.start == b.end }
func (b *block) full() bool  { return b.end == BlockSize }

// List is an append-at-tail, pop-from-head event queue.
type List struct {
	head, tail *block
	len        int
}

// New returns an empty List.
func New() *List { return &List{} }

// Len returns the number of live entries across all blocks.
func (l *List) Len() int { return l.len }

// Append adds (h, eventTime) as the new tail entry. eventTime must be
// strictly greater than the eventTime of the previous tail entry; the
// caller (ttel.Log) is responsible for that invariant.
func (l *List) Append(h arena.Handle, eventTime int64) {
	if l.tail == nil || l.tail.full() {
		b := &block{prev: l.tail}
		if l.tail != nil {
			l.tail.next = b
		}
		l.tail = b
		if l.head == nil {
			l.head = b
		}
	}
	b := l.tail
	b.entries[b.end] = entry{handle: h, eventTime: eventTime}
	b.end++
	l.len++
}

// PopFront removes and returns the oldest live entry. It reports false
// if the list is empty.
func (l *List) PopFront() (arena.Handle, int64, bool) {
	if l.head == nil {
		return arena.Handle{}, 0, false
	}
	b := l.head
	e := b.entries[b.start]
	b.start++
	l.len--
	if b.empty() {
		l.unlinkHead()
	}
	return e.handle, e.eventTime, true
}

// unlinkHead removes the (now empty) head block from the list.
func (l *List) unlinkHead() {
	b := l.head
	if b.start != b.end {
		panic(ErrNotOldest)
	}
	l.head = b.next
	if l.head != nil {
		l.head.prev = nil
	} else {
		l.tail = nil
	}
	b.next = nil
}

// Front returns an iterator positioned before the oldest live entry;
// call Next to advance onto it.
func (l *List) Front() *Iterator {
	return &Iterator{list: l, block: l.head, idx: -1, dir: forward}
}

// Back returns an iterator positioned after the newest live entry;
// call Prev to advance onto it.
func (l *List) Back() *Iterator {
	it := &Iterator{list: l, block: l.tail, dir: backward}
	if l.tail != nil {
		it.idx = l.tail.end
	}
	return it
}

type direction int

const (
	forward direction = iota
	backward
)

// Iterator walks a List in either direction, crossing block
// boundaries transparently. It is invalidated only by deletion of its
// current block (PopFront unlinking the block the iterator sits in).
type Iterator struct {
	list  *List
	block *block
	idx   int
	dir   direction
}

// Next advances the iterator to the next-newer entry, returning false
// once it runs past the tail.
func (it *Iterator) Next() bool {
	if it.block == nil {
		return false
	}
	it.idx++
	for it.idx >= it.block.end {
		it.block = it.block.next
		if it.block == nil {
			return false
		}
		it.idx = it.block.start
	}
	if it.idx < it.block.start {
		it.idx = it.block.start
	}
	return true
}

// Prev advances the iterator to the next-older entry, returning false
// once it runs past the head.
func (it *Iterator) Prev() bool {
	if it.block == nil {
		return false
	}
	it.idx--
	for it.idx < it.block.start {
		it.block = it.block.prev
		if it.block == nil {
			return false
		}
		it.idx = it.block.end - 1
	}
	return true
}

// Valid reports whether the iterator currently sits on a live entry.
func (it *Iterator) Valid() bool {
	return it.block != nil && it.idx >= it.block.start && it.idx < it.block.end
}

// Handle returns the arena handle at the iterator's current position.
func (it *Iterator) Handle() arena.Handle {
	return it.block.entries[it.idx].handle
}

// EventTime returns the event time at the iterator's current position.
func (it *Iterator) EventTime() int64 {
	return it.block.entries[it.idx].eventTime
}
