package cache

// Node is an element of a List. It carries a value and its neighbours.
// A node removed from its list must not be reinserted.
type Node[V any] struct {
	Value V

	prev *Node[V]
	next *Node[V]
	list *List[V]
}

// Prev returns the neighbour closer to the front (more recently used),
// or nil at the front of the list.
func (n *Node[V]) Prev() *Node[V] {
	return n.prev
}

// Next returns the neighbour closer to the back (less recently used),
// or nil at the back of the list.
func (n *Node[V]) Next() *Node[V] {
	return n.next
}

// List is a doubly-linked recency list.
// The front is the most recently used node, the back the least recently used.
//
// List is not safe for concurrent use; callers must handle synchronization.
type List[V any] struct {
	head *Node[V]
	tail *Node[V]
	len  int
}

// NewList creates an empty list.
func NewList[V any]() *List[V] {
	return &List[V]{}
}

// Len returns the number of nodes in the list.
func (l *List[V]) Len() int {
	return l.len
}

// Front returns the most recently used node, or nil if the list is empty.
func (l *List[V]) Front() *Node[V] {
	return l.head
}

// Back returns the least recently used node, or nil if the list is empty.
func (l *List[V]) Back() *Node[V] {
	return l.tail
}

// PushFront inserts a new node holding v at the front and returns it.
func (l *List[V]) PushFront(v V) *Node[V] {
	node := &Node[V]{Value: v, list: l}
	l.linkFront(node)
	return node
}

// MoveToFront moves node to the front. Nodes of other lists are ignored.
func (l *List[V]) MoveToFront(node *Node[V]) {
	if node == nil || node.list != l || node == l.head {
		return
	}
	l.unlink(node)
	l.linkFront(node)
}

// Remove unlinks node from the list. Nodes of other lists are ignored.
func (l *List[V]) Remove(node *Node[V]) {
	if node == nil || node.list != l {
		return
	}
	l.unlink(node)
	node.list = nil
}

// Clear drops every node. Detached nodes keep no reference to the list.
func (l *List[V]) Clear() {
	for n := l.head; n != nil; {
		next := n.next
		n.prev, n.next, n.list = nil, nil, nil
		n = next
	}
	l.head = nil
	l.tail = nil
	l.len = 0
}

func (l *List[V]) linkFront(node *Node[V]) {
	node.prev = nil
	node.next = l.head
	if l.head != nil {
		l.head.prev = node
	}
	l.head = node
	if l.tail == nil {
		l.tail = node
	}
	l.len++
}

// unlink removes a node from the chain and clears its neighbour pointers.
func (l *List[V]) unlink(node *Node[V]) {
	if node.prev != nil {
		node.prev.next = node.next
	} else {
		l.head = node.next
	}

	if node.next != nil {
		node.next.prev = node.prev
	} else {
		l.tail = node.prev
	}

	node.prev = nil
	node.next = nil
	l.len--
}
