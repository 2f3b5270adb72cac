package list

import (
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/require"

	"github.com/benz9527/xlinked/lib/alloc"
)

func fillList(t *testing.T, vals ...uint32) (*SinglyLinkedList, *countingAllocator) {
	l, a := newTestList(t)
	for _, v := range vals {
		require.NoError(t, l.InsertEnd(v))
	}
	return l, a
}

func TestIterator_Walk(t *testing.T) {
	vals := lo.Map(lo.Range(8), func(i int, _ int) uint32 { return uint32(i * 10) })
	l, a := fillList(t, vals...)

	for start := uint64(0); start < l.Size(); start++ {
		it, err := l.NewIterator(start)
		require.NoError(t, err)
		require.Equal(t, start, it.Index())
		require.Equal(t, vals[start], it.Value())
		visited := []uint32{it.Value()}
		for it.Next() {
			require.Equal(t, vals[it.Index()], it.Value())
			visited = append(visited, it.Value())
		}
		require.True(t, it.Exhausted())
		require.Equal(t, vals[start:], visited)
		require.NoError(t, it.Delete())
	}
	require.NoError(t, l.Delete())
	require.Equal(t, a.allocs, a.releases)
}

func TestIterator_OutOfRange(t *testing.T) {
	l, _ := fillList(t, 1, 2, 3)
	for _, idx := range []uint64{3, 4, 1 << 40, Invalid} {
		it, err := l.NewIterator(idx)
		require.Nil(t, it)
		require.ErrorIs(t, err, ErrIndexOutOfRange)
	}

	empty, _ := newTestList(t)
	_, err := empty.NewIterator(0)
	require.ErrorIs(t, err, ErrIndexOutOfRange)
}

func TestIterator_ExhaustionIsPermanent(t *testing.T) {
	l, _ := fillList(t, 1, 2, 3)
	it, err := l.NewIterator(l.Size() - 1)
	require.NoError(t, err)
	require.False(t, it.Exhausted())
	require.Equal(t, uint32(3), it.Value())

	for i := 0; i < 5; i++ {
		require.False(t, it.Next())
		require.True(t, it.Exhausted())
	}
	// Appending after exhaustion does not revive the iterator.
	require.NoError(t, l.InsertEnd(4))
	require.False(t, it.Next())
	require.Equal(t, uint64(2), it.Index())
}

func TestIterator_NilAndDelete(t *testing.T) {
	var it *Iterator
	require.False(t, it.Next())
	require.True(t, it.Exhausted())
	require.Equal(t, Invalid, it.Index())
	require.Zero(t, it.Value())
	require.ErrorIs(t, it.Delete(), ErrNilIterator)

	l, a := fillList(t, 7)
	it, err := l.NewIterator(0)
	require.NoError(t, err)
	releases := a.releases
	require.NoError(t, it.Delete())
	require.Equal(t, releases+1, a.releases)
	require.ErrorIs(t, it.Delete(), ErrIteratorDeleted)
	require.False(t, it.Next())

	// The list is untouched by the iterator deletion.
	require.Equal(t, uint64(1), l.Size())
	require.Equal(t, uint64(0), l.Find(7))
}

func TestIterator_ListDeleted(t *testing.T) {
	l, a := fillList(t, 1, 2, 3)
	it, err := l.NewIterator(0)
	require.NoError(t, err)
	require.NoError(t, l.Delete())

	require.False(t, it.Next())
	require.True(t, it.Exhausted())
	require.Equal(t, uint32(1), it.Value())
	require.NoError(t, it.Delete())
	require.Equal(t, a.allocs, a.releases)
}

func TestIterator_RemovedCurrentNode(t *testing.T) {
	l, _ := fillList(t, 1, 2, 3)
	it, err := l.NewIterator(1)
	require.NoError(t, err)
	require.NoError(t, l.RemoveAt(1))
	require.Equal(t, uint32(2), it.Value())
	require.False(t, it.Next())
	require.True(t, it.Exhausted())
	require.Equal(t, []uint32{1, 3}, values(l))
}

func TestIterator_SeesLaterInserts(t *testing.T) {
	l, _ := fillList(t, 1, 3)
	it, err := l.NewIterator(0)
	require.NoError(t, err)
	require.NoError(t, l.InsertAt(1, 2))
	require.True(t, it.Next())
	require.Equal(t, uint32(2), it.Value())
	require.True(t, it.Next())
	require.Equal(t, uint32(3), it.Value())
	require.Equal(t, uint64(2), it.Index())
	require.False(t, it.Next())
}

func TestIterator_Unregistered(t *testing.T) {
	a := &countingAllocator{}
	r := alloc.NewRegistry()
	require.True(t, r.RegisterAllocate(a.Allocate))
	l, err := NewSinglyLinkedList(WithRegistry(r))
	require.NoError(t, err)
	require.NoError(t, l.InsertEnd(1))

	it, err := l.NewIterator(0)
	require.NoError(t, err)
	require.ErrorIs(t, it.Delete(), alloc.ErrNoRelease)
	// A failed deletion keeps the iterator usable.
	require.False(t, it.Exhausted())

	require.True(t, r.RegisterRelease(a.Release))
	require.NoError(t, it.Delete())
	require.Equal(t, 1, a.releases)
}
