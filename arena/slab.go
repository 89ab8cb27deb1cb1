// Package arena implements the bump/slab allocator that backs event
// records, their variable-length argument arrays, and copied strings.
//
// A Slab never moves or compacts live memory: every allocation is a
// contiguous byte run inside a fixed-size block, and freeing one is an
// O(1) unlink via a back-link stored alongside the allocation, not a
// shift of surrounding data.
package arena

import "fmt"

// DefaultBlockSize is used when a Slab is constructed with a
// non-positive block size. Its value is not load-bearing.
const DefaultBlockSize = 64 * 1024

// Handle identifies a single allocation inside a Slab. The zero Handle
// never refers to a live allocation.
type Handle struct {
	block int
	off   int
	size  int
}

// Valid reports whether h is a non-zero Handle, as returned by Alloc.
// It does not track whether h has since been freed.
func (h Handle) Valid() bool {
	return h.size > 0
}

type block struct {
	data  []byte
	live  int // bytes currently allocated out of this block
	tail  int // next free offset
	index int
}

// Slab is a bump allocator over a growing list of fixed-size blocks.
// It is not safe for concurrent use; every Slab is owned by exactly one
// Log and touched only from that Log's goroutine.
type Slab struct {
	blockSize int
	blocks    []*block
	used      int64
	reserved  int64
}

// NewSlab creates a Slab that allocates blocks of blockSize bytes. A
// non-positive blockSize falls back to DefaultBlockSize.
func NewSlab(blockSize int) *Slab {
	if blockSize <= 0 {
		blockSize = DefaultBlockSize
	}
	return &Slab{blockSize: blockSize}
}

// Alloc reserves n contiguous bytes and returns a Handle to them. The
// returned bytes are zeroed.
func (s *Slab) Alloc(n int) Handle {
	if n <= 0 {
		panic("arena: Alloc requires n > 0")
	}
	if n > s.blockSize {
		// Oversized allocations get a dedicated block; this keeps the
		// allocator simple at the cost of some waste for the rare
		// large argument array or copied string.
		b := s.newBlock(n)
		b.tail = n
		b.live = n
		s.used += int64(n)
		return Handle{block: b.index, off: 0, size: n}
	}

	b := s.tailBlock()
	if b == nil || b.tail+n > len(b.data) {
		b = s.newBlock(s.blockSize)
	}
	off := b.tail
	b.tail += n
	b.live += n
	s.used += int64(n)
	return Handle{block: b.index, off: off, size: n}
}

// Bytes returns the live slice backing h. The slice must not be
// retained past a call to Free(h).
func (s *Slab) Bytes(h Handle) []byte {
	if !h.Valid() {
		return nil
	}
	b := s.blocks[h.block]
	return b.data[h.off : h.off+h.size]
}

// Free releases h's allocation in O(1). It does not compact the
// surrounding block; the block itself is reclaimed once its last live
// allocation is freed.
func (s *Slab) Free(h Handle) {
	if !h.Valid() {
		return
	}
	b := s.blocks[h.block]
	if b == nil {
		return
	}
	b.live -= h.size
	s.used -= int64(h.size)
	if b.live <= 0 {
		s.blocks[h.block] = nil
		s.reserved -= int64(len(b.data))
	}
}

// Used returns the number of bytes currently live across all blocks,
// the diagnostic "used_memory" counter.
func (s *Slab) Used() int64 { return s.used }

// Reserved returns the number of bytes currently backing allocated
// blocks (including dead space within a block not yet freed), the
// diagnostic "reserved_memory" counter.
func (s *Slab) Reserved() int64 { return s.reserved }

func (s *Slab) tailBlock() *block {
	for i := len(s.blocks) - 1; i >= 0; i-- {
		if s.blocks[i] != nil {
			return s.blocks[i]
		}
	}
	return nil
}

func (s *Slab) newBlock(size int) *block {
	b := &block{data: make([]byte, size), index: len(s.blocks)}
	s.blocks = append(s.blocks, b)
	s.reserved += int64(size)
	return b
}

func (h Handle) String() string {
	if !h.Valid() {
		return "<nil>"
	}
	return fmt.Sprintf("arena.Handle{block:%d off:%d size:%d}", h.block, h.off, h.size)
}
