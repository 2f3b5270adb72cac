package alloc

import (
	"sync/atomic"
)

const (
	blockAlign   = 8 - 1
	maxArenaSize = 1 << 32 // offsets stay addressable by uint32
)

var _ Allocator = (*Arena)(nil)

// Arena is a bump allocator over a single byte buffer.
// Released blocks are only accounted for; the space is reused after Reset.
type Arena struct {
	n          uint64 // next free offset
	released   uint64
	shouldGrow bool
	buffer     []byte
}

type ArenaOption func(*Arena)

// WithArenaGrowth lets the arena double its buffer instead of failing
// when it runs out of space.
func WithArenaGrowth() ArenaOption {
	return func(arena *Arena) {
		arena.shouldGrow = true
	}
}

func NewArena(n int64, opts ...ArenaOption) *Arena {
	if n < 0 {
		n = 0
	}
	arena := &Arena{
		buffer: make([]byte, n),
	}
	for _, o := range opts {
		o(arena)
	}
	return arena
}

func alignUp(size uint64) uint64 {
	return (size + blockAlign) &^ uint64(blockAlign)
}

// Allocate returns an 8-byte aligned block, or nil if a fixed arena is full
// or the request cannot fit in maxArenaSize.
func (arena *Arena) Allocate(size uintptr) []byte {
	alloc := alignUp(uint64(size))
	if alloc < uint64(size) {
		return nil
	}
	if alloc == 0 {
		alloc = blockAlign + 1
	}
	offset := atomic.AddUint64(&arena.n, alloc)
	if offset < alloc {
		arena.rollback(alloc)
		return nil
	}
	start := offset - alloc
	s := uint64(len(arena.buffer))
	if offset > s {
		if !arena.shouldGrow || offset > maxArenaSize {
			arena.rollback(alloc)
			return nil
		}
		// double size increase
		growth := s
		if growth > 1<<30 {
			growth = alloc
		}
		if growth < offset-s {
			growth = offset - s
		}
		if s+growth > maxArenaSize {
			growth = maxArenaSize - s
		}
		nbuf := make([]byte, s+growth)
		copy(nbuf, arena.buffer)
		arena.buffer = nbuf
	}
	return arena.buffer[start : start+uint64(size) : start+alloc]
}

func (arena *Arena) rollback(alloc uint64) {
	atomic.AddUint64(&arena.n, ^(alloc - 1))
}

func (arena *Arena) Release(mem []byte) {
	atomic.AddUint64(&arena.released, alignUp(uint64(cap(mem))))
}

// Allocated is the number of bytes handed out since the last Reset.
func (arena *Arena) Allocated() uint64 {
	return atomic.LoadUint64(&arena.n)
}

func (arena *Arena) Released() uint64 {
	return atomic.LoadUint64(&arena.released)
}

func (arena *Arena) InUse() uint64 {
	return arena.Allocated() - arena.Released()
}

func (arena *Arena) Cap() int {
	return len(arena.buffer)
}

// Reset makes the whole buffer available again. Blocks handed out before
// must no longer be used.
func (arena *Arena) Reset() {
	atomic.StoreUint64(&arena.n, 0)
	atomic.StoreUint64(&arena.released, 0)
	clear(arena.buffer)
}
