package pathfind

import "container/heap"

// openList is a min-heap of node ids ordered by estimate, then by id so that
// equal estimates pop in creation order.
type openList struct {
	store *NodeStore
	items []NodeID
}

func (o *openList) Len() int { return len(o.items) }

func (o *openList) Less(i, j int) bool {
	a, b := o.store.Node(o.items[i]), o.store.Node(o.items[j])
	if a.Estimate != b.Estimate {
		return a.Estimate < b.Estimate
	}
	return o.items[i] < o.items[j]
}

func (o *openList) Swap(i, j int) {
	o.items[i], o.items[j] = o.items[j], o.items[i]
	o.store.Node(o.items[i]).heapIndex = i
	o.store.Node(o.items[j]).heapIndex = j
}

func (o *openList) Push(x any) {
	id := x.(NodeID)
	o.store.Node(id).heapIndex = len(o.items)
	o.items = append(o.items, id)
}

func (o *openList) Pop() any {
	n := len(o.items)
	id := o.items[n-1]
	o.items = o.items[:n-1]
	o.store.Node(id).heapIndex = -1
	return id
}

func (o *openList) push(id NodeID) {
	heap.Push(o, id)
}

func (o *openList) pop() NodeID {
	return heap.Pop(o).(NodeID)
}

func (o *openList) fix(id NodeID) {
	if idx := o.store.Node(id).heapIndex; idx >= 0 {
		heap.Fix(o, idx)
	}
}

func (o *openList) reset(store *NodeStore) {
	o.store = store
	o.items = o.items[:0]
}
