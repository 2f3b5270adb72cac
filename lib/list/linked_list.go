package list

import (
	"errors"
	"math"
	"strconv"
	"unsafe"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/benz9527/xlinked/lib/alloc"
	"github.com/benz9527/xlinked/lib/infra"
)

// Invalid is returned by Size and Find when the list cannot be queried.
// No real count or index can reach it.
const Invalid uint64 = math.MaxUint64

// NotFound is returned by Find when no node holds the value.
const NotFound = Invalid

var (
	ErrNilList         = errors.New("[slist] list is nil")
	ErrListDeleted     = errors.New("[slist] list has been deleted")
	ErrEmptyList       = errors.New("[slist] there is no element")
	ErrIndexOutOfRange = errors.New("[slist] index out of range")
	ErrNilIterator     = errors.New("[slist] iterator is nil")
	ErrIteratorDeleted = errors.New("[slist] iterator has been deleted")
)

type Option func(*SinglyLinkedList)

// WithRegistry makes the list allocate through r instead of the
// process-wide registry.
func WithRegistry(r *alloc.Registry) Option {
	return func(l *SinglyLinkedList) {
		if r != nil {
			l.reg = r
		}
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(l *SinglyLinkedList) {
		if logger != nil {
			l.logger = logger
		}
	}
}

var (
	_ LinkedList = (*SinglyLinkedList)(nil)

	listSize = unsafe.Sizeof(SinglyLinkedList{})
)

// SinglyLinkedList exclusively owns the node chain reachable from head.
type SinglyLinkedList struct {
	head    *node
	reg     *alloc.Registry
	logger  *zap.Logger
	mem     []byte
	deleted bool
}

// NewSinglyLinkedList returns an empty list. It fails if no allocate
// function is registered or the allocation is refused.
func NewSinglyLinkedList(opts ...Option) (*SinglyLinkedList, error) {
	l := &SinglyLinkedList{
		reg: alloc.Default(),
	}
	for _, o := range opts {
		o(l)
	}
	if l.logger == nil {
		l.logger = l.reg.Logger()
	}
	mem, err := l.reg.Allocate(listSize)
	if err != nil {
		return nil, l.fail("create list", err)
	}
	l.mem = mem
	return l, nil
}

func (l *SinglyLinkedList) fail(op string, err error, fields ...zap.Field) error {
	l.logger.Debug("linked list operation failed",
		append(fields, zap.String("op", op), zap.Error(err))...,
	)
	return infra.WrapErrorStackWithMessage(err, op)
}

// check validates the handle itself.
func (l *SinglyLinkedList) check() error {
	if l == nil {
		return infra.WrapErrorStack(ErrNilList)
	}
	if l.deleted {
		return infra.WrapErrorStack(ErrListDeleted)
	}
	return nil
}

func (l *SinglyLinkedList) newNode(op string, v uint32) (*node, error) {
	mem, err := l.reg.Allocate(nodeSize)
	if err != nil {
		return nil, l.fail(op, err, zap.Uint32("value", v))
	}
	return &node{mem: mem, value: v}, nil
}

// Delete releases every node from head to tail, then the list block.
// Iterators still referencing the list exhaust on their next advance.
func (l *SinglyLinkedList) Delete() error {
	if err := l.check(); err != nil {
		return err
	}
	if !l.reg.CanRelease() {
		return l.fail("delete list", alloc.ErrNoRelease)
	}
	var merr error
	for cur := l.head; cur != nil; {
		next := cur.unlink()
		merr = multierr.Append(merr, l.reg.Release(cur.mem))
		cur.mem = nil
		cur = next
	}
	l.head = nil
	merr = multierr.Append(merr, l.reg.Release(l.mem))
	l.mem = nil
	l.deleted = true
	if merr != nil {
		return l.fail("delete list", merr)
	}
	return nil
}

func (l *SinglyLinkedList) Size() uint64 {
	if l.check() != nil {
		return Invalid
	}
	count := uint64(0)
	for cur := l.head; cur != nil; cur = cur.next {
		count++
	}
	return count
}

func (l *SinglyLinkedList) InsertEnd(v uint32) error {
	if err := l.check(); err != nil {
		return err
	}
	n, err := l.newNode("insert end", v)
	if err != nil {
		return err
	}
	if l.head == nil {
		l.head = n
		return nil
	}
	cur := l.head
	for cur.next != nil {
		cur = cur.next
	}
	cur.next = n
	return nil
}

func (l *SinglyLinkedList) InsertFront(v uint32) error {
	if err := l.check(); err != nil {
		return err
	}
	n, err := l.newNode("insert front", v)
	if err != nil {
		return err
	}
	n.next = l.head
	l.head = n
	return nil
}

// InsertAt fails without allocating when the node at index-1 does not
// exist. Index 0 always inserts at the front, even on an empty list.
func (l *SinglyLinkedList) InsertAt(index uint64, v uint32) error {
	if err := l.check(); err != nil {
		return err
	}
	if !l.reg.CanAllocate() {
		return l.fail("insert at", alloc.ErrNoAllocate, zap.Uint64("index", index))
	}
	if index == 0 {
		return l.InsertFront(v)
	}
	cur := l.head
	for i := uint64(0); cur != nil && i < index-1; i++ {
		cur = cur.next
	}
	if cur == nil {
		return l.fail("insert at "+strconv.FormatUint(index, 10), ErrIndexOutOfRange,
			zap.Uint64("index", index),
		)
	}
	n, err := l.newNode("insert at", v)
	if err != nil {
		return err
	}
	n.next = cur.next
	cur.next = n
	return nil
}

func (l *SinglyLinkedList) Find(v uint32) uint64 {
	if l.check() != nil {
		return Invalid
	}
	idx := uint64(0)
	for cur := l.head; cur != nil; cur = cur.next {
		if cur.value == v {
			return idx
		}
		idx++
	}
	return NotFound
}

// RemoveAt leaves the chain untouched when index is out of range.
func (l *SinglyLinkedList) RemoveAt(index uint64) error {
	if err := l.check(); err != nil {
		return err
	}
	if !l.reg.CanRelease() {
		return l.fail("remove at", alloc.ErrNoRelease, zap.Uint64("index", index))
	}
	if l.head == nil {
		return l.fail("remove at", ErrEmptyList, zap.Uint64("index", index))
	}
	if index == 0 {
		target := l.head
		l.head = target.unlink()
		return l.release(target)
	}
	cur := l.head
	for i := uint64(0); cur.next != nil && i < index-1; i++ {
		cur = cur.next
	}
	if cur.next == nil {
		return l.fail("remove at "+strconv.FormatUint(index, 10), ErrIndexOutOfRange,
			zap.Uint64("index", index),
		)
	}
	target := cur.next
	cur.next = target.unlink()
	return l.release(target)
}

func (l *SinglyLinkedList) release(n *node) error {
	mem := n.mem
	n.mem = nil
	if err := l.reg.Release(mem); err != nil {
		return l.fail("release node", err)
	}
	return nil
}

func (l *SinglyLinkedList) Foreach(fn func(idx uint64, v uint32) bool) {
	if l.check() != nil || fn == nil {
		return
	}
	idx := uint64(0)
	for cur := l.head; cur != nil; cur = cur.next {
		if !fn(idx, cur.value) {
			return
		}
		idx++
	}
}
