package list

import (
	"strconv"
	"unsafe"

	"go.uber.org/zap"

	"github.com/benz9527/xlinked/lib/alloc"
	"github.com/benz9527/xlinked/lib/infra"
)

var (
	_ ForwardIterator = (*Iterator)(nil)

	iteratorSize = unsafe.Sizeof(Iterator{})
)

// Iterator is a forward cursor over a SinglyLinkedList.
// It neither owns the list nor the node it points to. Removing the node
// under the cursor exhausts it on the next advance.
type Iterator struct {
	list     *SinglyLinkedList
	current  *node // nil once exhausted
	index    uint64
	data     uint32
	mem      []byte
	released bool
}

// NewIterator positions a new iterator on the node at index.
func (l *SinglyLinkedList) NewIterator(index uint64) (*Iterator, error) {
	if err := l.check(); err != nil {
		return nil, err
	}
	if !l.reg.CanAllocate() {
		return nil, l.fail("create iterator", alloc.ErrNoAllocate, zap.Uint64("index", index))
	}
	cur := l.head
	for i := uint64(0); cur != nil && i < index; i++ {
		cur = cur.next
	}
	if cur == nil {
		return nil, l.fail("create iterator at "+strconv.FormatUint(index, 10), ErrIndexOutOfRange,
			zap.Uint64("index", index),
		)
	}
	mem, err := l.reg.Allocate(iteratorSize)
	if err != nil {
		return nil, l.fail("create iterator", err, zap.Uint64("index", index))
	}
	return &Iterator{
		list:    l,
		current: cur,
		index:   index,
		data:    cur.value,
		mem:     mem,
	}, nil
}

// Delete releases the iterator only, the list is left as is.
func (it *Iterator) Delete() error {
	if it == nil || it.list == nil {
		return infra.WrapErrorStack(ErrNilIterator)
	}
	if it.released {
		return infra.WrapErrorStack(ErrIteratorDeleted)
	}
	if err := it.list.reg.Release(it.mem); err != nil {
		return it.list.fail("delete iterator", err)
	}
	it.mem = nil
	it.current = nil
	it.released = true
	return nil
}

func (it *Iterator) Next() bool {
	if it == nil || it.current == nil || it.list == nil {
		return false
	}
	if it.list.deleted {
		it.current = nil
		return false
	}
	it.current = it.current.next
	if it.current == nil {
		return false
	}
	it.index++
	it.data = it.current.value
	return true
}

// Index is the position the iterator was last moved to.
func (it *Iterator) Index() uint64 {
	if it == nil {
		return Invalid
	}
	return it.index
}

// Value is the cached value of the node at Index.
func (it *Iterator) Value() uint32 {
	if it == nil {
		return 0
	}
	return it.data
}

func (it *Iterator) Exhausted() bool {
	return it == nil || it.current == nil
}
