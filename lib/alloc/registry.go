package alloc

import (
	"reflect"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/benz9527/xlinked/lib/infra"
)

// Registry holds the pluggable allocate/release pair used by every
// operation that creates or destroys list memory.
// It is not thread safe. Registration must be serialized by the caller.
type Registry struct {
	allocate AllocateFunc
	release  ReleaseFunc
	logger   *zap.Logger
}

type RegistryOption func(*Registry)

func WithRegistryLogger(logger *zap.Logger) RegistryOption {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		logger: zap.NewNop(),
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

var defaultRegistry = NewRegistry()

// Default returns the process-wide registry.
func Default() *Registry {
	return defaultRegistry
}

// SetDefault replaces the process-wide registry and returns the previous
// one. A nil r is ignored.
func SetDefault(r *Registry) *Registry {
	prev := defaultRegistry
	if r != nil {
		defaultRegistry = r
	}
	return prev
}

func RegisterAllocate(fn AllocateFunc) bool { return defaultRegistry.RegisterAllocate(fn) }
func RegisterRelease(fn ReleaseFunc) bool   { return defaultRegistry.RegisterRelease(fn) }
func Register(a Allocator) bool             { return defaultRegistry.Register(a) }

// RegisterAllocate installs fn, replacing any previous allocate function.
// It returns false and keeps the current one if fn is nil.
func (r *Registry) RegisterAllocate(fn AllocateFunc) bool {
	if r == nil || fn == nil {
		return false
	}
	r.allocate = fn
	r.logger.Debug("allocate function registered")
	return true
}

func (r *Registry) RegisterRelease(fn ReleaseFunc) bool {
	if r == nil || fn == nil {
		return false
	}
	r.release = fn
	r.logger.Debug("release function registered")
	return true
}

// Register installs both methods of a. Nil strategies, including typed nil
// pointers and Funcs with a missing function, are rejected and nothing is
// installed.
func (r *Registry) Register(a Allocator) bool {
	if r == nil || isNilAllocator(a) {
		return false
	}
	switch f := a.(type) {
	case Funcs:
		return r.registerFuncs(f)
	case *Funcs:
		return r.registerFuncs(*f)
	}
	return r.RegisterAllocate(a.Allocate) && r.RegisterRelease(a.Release)
}

func (r *Registry) registerFuncs(f Funcs) bool {
	if f.AllocateFn == nil || f.ReleaseFn == nil {
		return false
	}
	return r.RegisterAllocate(f.AllocateFn) && r.RegisterRelease(f.ReleaseFn)
}

func isNilAllocator(a Allocator) bool {
	if a == nil {
		return true
	}
	v := reflect.ValueOf(a)
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return v.IsNil()
	}
	return false
}

func (r *Registry) CanAllocate() bool { return r != nil && r.allocate != nil }
func (r *Registry) CanRelease() bool  { return r != nil && r.release != nil }

// Validate reports every missing function at once.
func (r *Registry) Validate() error {
	if r == nil {
		return infra.WrapErrorStack(ErrNilAllocator)
	}
	var merr error
	if r.allocate == nil {
		merr = multierr.Append(merr, ErrNoAllocate)
	}
	if r.release == nil {
		merr = multierr.Append(merr, ErrNoRelease)
	}
	return merr
}

// Allocate asks the registered function for a block of size bytes.
func (r *Registry) Allocate(size uintptr) ([]byte, error) {
	if !r.CanAllocate() {
		return nil, ErrNoAllocate
	}
	mem := r.allocate(size)
	if !granted(mem, size) {
		r.logger.Debug("allocation failed", zap.Uint64("size", uint64(size)))
		return nil, ErrAllocFailed
	}
	return mem, nil
}

func (r *Registry) Release(mem []byte) error {
	if !r.CanRelease() {
		return ErrNoRelease
	}
	r.release(mem)
	return nil
}

func (r *Registry) Logger() *zap.Logger {
	if r == nil {
		return zap.NewNop()
	}
	return r.logger
}
