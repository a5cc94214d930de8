// Package chain stores singly-linked chains in an index-addressed arena.
//
// A chain is identified by the index of its head node. Each node owns the
// rest of its chain through Next; no node is reachable from two heads.
// Releasing nodes never recurses over the chain.
package chain

// Nil is the index that terminates a chain.
const Nil = -1

// Node is one arena slot.
type Node[T any] struct {
	Value T
	Next  int
}

// Arena holds the nodes of one or more disjoint chains.
//
// An Arena is not safe for concurrent use. The one exception is sorting:
// goroutines that each relink a disjoint set of already-allocated nodes may
// call Next, SetNext and Value concurrently.
type Arena[T any] struct {
	nodes []Node[T]
	free  []int
}

// Alloc stores v in a free slot linked to next and returns its index.
func (a *Arena[T]) Alloc(v T, next int) int {
	if n := len(a.free); n > 0 {
		i := a.free[n-1]
		a.free = a.free[:n-1]
		a.nodes[i] = Node[T]{Value: v, Next: next}
		return i
	}
	a.nodes = append(a.nodes, Node[T]{Value: v, Next: next})
	return len(a.nodes) - 1
}

// Release returns slot i to the free list and zeroes its value.
func (a *Arena[T]) Release(i int) {
	var zero T
	a.nodes[i] = Node[T]{Value: zero, Next: Nil}
	a.free = append(a.free, i)
}

// Reset drops every node.
func (a *Arena[T]) Reset() {
	clear(a.nodes)
	a.nodes = a.nodes[:0]
	a.free = a.free[:0]
}

// Len returns the number of live slots.
func (a *Arena[T]) Len() int {
	return len(a.nodes) - len(a.free)
}

// Value returns the value stored at i.
func (a *Arena[T]) Value(i int) T { return a.nodes[i].Value }

// SetValue overwrites the value stored at i.
func (a *Arena[T]) SetValue(i int, v T) { a.nodes[i].Value = v }

// Next returns the successor of i, or Nil.
func (a *Arena[T]) Next(i int) int { return a.nodes[i].Next }

// SetNext links i to next.
func (a *Arena[T]) SetNext(i, next int) { a.nodes[i].Next = next }

// Walk calls fn for each node of the chain starting at head, in order, until
// fn returns false.
func (a *Arena[T]) Walk(head int, fn func(i int, v T) bool) {
	for i := head; i != Nil; i = a.nodes[i].Next {
		if !fn(i, a.nodes[i].Value) {
			return
		}
	}
}

// Length counts the nodes of the chain starting at head.
func (a *Arena[T]) Length(head int) int {
	n := 0
	for i := head; i != Nil; i = a.nodes[i].Next {
		n++
	}
	return n
}

// At returns the index of the node at position pos of the chain starting at
// head, or Nil when the chain is shorter.
func (a *Arena[T]) At(head, pos int) int {
	if pos < 0 {
		return Nil
	}
	i := head
	for ; i != Nil && pos > 0; pos-- {
		i = a.nodes[i].Next
	}
	return i
}

// Unlink removes node i from the chain starting at head and releases it.
// pred is the node before i, or Nil when i is the head. It returns the head
// of the shortened chain.
func (a *Arena[T]) Unlink(head, pred, i int) int {
	next := a.nodes[i].Next
	if pred == Nil {
		head = next
	} else {
		a.nodes[pred].Next = next
	}
	a.Release(i)
	return head
}
