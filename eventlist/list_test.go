package eventlist

import (
	"testing"

	"github.com/scriptlab/ttel/arena"
)

func TestAppendOrderPreserved(t *testing.T) {
	l := New()
	s := arena.NewSlab(64)
	for i := int64(0); i < 3; i++ {
		l.Append(s.Alloc(8), i)
	}
	it := l.Front()
	var got []int64
	for it.Next() {
		got = append(got, it.EventTime())
	}
	if len(got) != 3 || got[0] != 0 || got[1] != 1 || got[2] != 2 {
		t.Fatalf("unexpected order: %v", got)
	}
}

func TestHeadTrim(t *testing.T) {
	l := New()
	s := arena.NewSlab(64)
	for i := int64(0); i < 3; i++ {
		l.Append(s.Alloc(8), i)
	}
	_, et, ok := l.PopFront()
	if !ok || et != 0 {
		t.Fatalf("PopFront = %d, %v", et, ok)
	}
	if l.Len() != 2 {
		t.Fatalf("Len = %d, want 2", l.Len())
	}
	it := l.Front()
	it.Next()
	if it.EventTime() != 1 {
		t.Fatalf("oldest event time = %d, want 1", it.EventTime())
	}
}

func TestHeadTrimToEmpty(t *testing.T) {
	l := New()
	s := arena.NewSlab(64)
	l.Append(s.Alloc(8), 0)
	l.PopFront()
	if l.Len() != 0 {
		t.Fatalf("Len = %d, want 0", l.Len())
	}
	if l.head != nil || l.tail != nil {
		t.Fatalf("expected head and tail to be nil after draining the list")
	}
}

func TestBackwardIteration(t *testing.T) {
	l := New()
	s := arena.NewSlab(64)
	for i := int64(0); i < BlockSize+5; i++ {
		l.Append(s.Alloc(8), i)
	}
	it := l.Back()
	var got []int64
	for it.Prev() {
		got = append(got, it.EventTime())
	}
	if len(got) != BlockSize+5 {
		t.Fatalf("got %d entries, want %d", len(got), BlockSize+5)
	}
	if got[0] != BlockSize+4 {
		t.Fatalf("first backward entry = %d, want %d", got[0], BlockSize+4)
	}
}

func TestCrossBlockForwardIteration(t *testing.T) {
	l := New()
	s := arena.NewSlab(64)
	n := int64(BlockSize*2 + 3)
	for i := int64(0); i < n; i++ {
		l.Append(s.Alloc(8), i)
	}
	it := l.Front()
	var count int64
	for it.Next() {
		if it.EventTime() != count {
			t.Fatalf("entry %d has event time %d", count, it.EventTime())
		}
		count++
	}
	if count != n {
		t.Fatalf("iterated %d entries, want %d", count, n)
	}
}
