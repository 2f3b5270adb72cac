package list

// Note that the singly linked list is not thread safe.
// Every node, list and iterator is backed by a block from the
// allocator registry, so a registry must be populated before use.

// LinkedList is the positional singly linked list interface.
type LinkedList interface {
	// Size counts the nodes by a full traversal.
	// It returns Invalid if the list is nil or deleted.
	Size() uint64
	// InsertEnd appends v after the current tail.
	InsertEnd(v uint32) error
	// InsertFront makes v the new head.
	InsertFront(v uint32) error
	// InsertAt places v so that it occupies position index.
	// The index may be at most Size().
	InsertAt(index uint64, v uint32) error
	// Find returns the index of the first node holding v, or NotFound.
	Find(v uint32) uint64
	// RemoveAt unlinks and releases the node at index.
	RemoveAt(index uint64) error
	// Foreach traverses the list from head to tail until fn returns false.
	Foreach(fn func(idx uint64, v uint32) bool)
	// NewIterator returns a forward cursor positioned at index.
	NewIterator(index uint64) (*Iterator, error)
	// Delete releases every node and then the list itself.
	Delete() error
}

// ForwardIterator is a cursor that only moves towards the tail.
type ForwardIterator interface {
	// Next moves to the successor. Once it returns false the iterator is
	// exhausted for good.
	Next() bool
	Index() uint64
	Value() uint32
	Exhausted() bool
	Delete() error
}
