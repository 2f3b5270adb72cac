package alloc

// References:
// https://github.com/andy-kimball/arenaskl
// https://github.com/dgraph-io/badger/tree/master/skl

import (
	"errors"
)

var (
	ErrNilAllocator = errors.New("[alloc] allocator is nil")
	ErrNoAllocate   = errors.New("[alloc] allocate function is not registered")
	ErrNoRelease    = errors.New("[alloc] release function is not registered")
	ErrAllocFailed  = errors.New("[alloc] allocation failed")
)

// AllocateFunc returns a block of at least size bytes.
// A nil or shorter block means the allocation failed.
type AllocateFunc func(size uintptr) []byte

// ReleaseFunc gives back a block previously returned by an AllocateFunc.
type ReleaseFunc func(mem []byte)

// Allocator is the allocate/release strategy installed into a Registry.
type Allocator interface {
	Allocate(size uintptr) []byte
	Release(mem []byte)
}

var (
	_ Allocator = Funcs{}
	_ Allocator = HeapAllocator{}
)

// Funcs adapts a plain function pair into an Allocator.
type Funcs struct {
	AllocateFn AllocateFunc
	ReleaseFn  ReleaseFunc
}

func (f Funcs) Allocate(size uintptr) []byte {
	if f.AllocateFn == nil {
		return nil
	}
	return f.AllocateFn(size)
}

func (f Funcs) Release(mem []byte) {
	if f.ReleaseFn == nil {
		return
	}
	f.ReleaseFn(mem)
}

// HeapAllocator delegates to the Go runtime. Release is a no-op and the
// garbage collector reclaims the blocks.
type HeapAllocator struct{}

func (HeapAllocator) Allocate(size uintptr) []byte {
	return make([]byte, size)
}

func (HeapAllocator) Release([]byte) {}

func granted(mem []byte, size uintptr) bool {
	return mem != nil && uintptr(len(mem)) >= size
}
