package scheduler

import (
	"container/heap"

	"github.com/vk/gridwork/internal/element"
)

// readySet is the scheduler's ready-element priority queue: pop a
// highest-level ready element, ties broken by insertion order. It replaces a
// linear scan over "elements with left_depend == 0" with a container/heap
// indexed by (level desc, seq asc), per spec.md §4.5's level-ordered
// dispatch requirement.
type readySet struct {
	items []*element.Node
}

func newReadySet() *readySet {
	rs := &readySet{}
	heap.Init(rs)
	return rs
}

func (rs *readySet) push(n *element.Node) {
	heap.Push(rs, n)
}

// pop removes and returns the highest-priority ready element, or nil if the
// set is empty.
func (rs *readySet) pop() *element.Node {
	if rs.Len() == 0 {
		return nil
	}
	return heap.Pop(rs).(*element.Node)
}

func (rs *readySet) Len() int { return len(rs.items) }

func (rs *readySet) Less(i, j int) bool {
	a, b := rs.items[i], rs.items[j]
	if a.Level() != b.Level() {
		return a.Level() > b.Level() // higher level runs earlier
	}
	return a.Seq() < b.Seq() // ties: insertion order
}

func (rs *readySet) Swap(i, j int) { rs.items[i], rs.items[j] = rs.items[j], rs.items[i] }

func (rs *readySet) Push(x any) { rs.items = append(rs.items, x.(*element.Node)) }

func (rs *readySet) Pop() any {
	old := rs.items
	n := len(old)
	item := old[n-1]
	rs.items = old[:n-1]
	return item
}
