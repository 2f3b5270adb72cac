package list

import (
	"unsafe"
)

var nodeSize = unsafe.Sizeof(node{})

// node is owned by its predecessor, or by the list for the head.
type node struct {
	next  *node
	mem   []byte // block granted for this node, handed back on release
	value uint32
}

// unlink detaches n from the chain and returns its former successor.
func (n *node) unlink() *node {
	next := n.next
	n.next = nil
	return next
}
