package container

import "container/heap"

// item is a single entry in the priority queue.
type item[T any] struct {
	Value    T
	Priority float64
	// seq is the insertion sequence number, used to break priority ties.
	seq uint64
	// index is maintained by heap.Interface's Swap/Push/Pop.
	index int
}

// priorityQueue implements heap.Interface over items.
type priorityQueue[T any] []*item[T]

func (pq priorityQueue[T]) Len() int { return len(pq) }

// Less uses < so that Pop returns the lowest-priority item (min-heap);
// among equal priorities the earlier-inserted item comes first.
func (pq priorityQueue[T]) Less(i, j int) bool {
	if pq[i].Priority != pq[j].Priority {
		return pq[i].Priority < pq[j].Priority
	}
	return pq[i].seq < pq[j].seq
}

func (pq priorityQueue[T]) Swap(i, j int) {
	pq[i], pq[j] = pq[j], pq[i]
	pq[i].index = i
	pq[j].index = j
}

func (pq *priorityQueue[T]) Push(x any) {
	n := len(*pq)
	it := x.(*item[T])
	it.index = n
	*pq = append(*pq, it)
}

func (pq *priorityQueue[T]) Pop() any {
	old := *pq
	n := len(old)
	it := old[n-1]
	old[n-1] = nil
	it.index = -1
	*pq = old[0 : n-1]
	return it
}

// PriorityQueue is a generic min-priority queue, used by the route
// planner's A* open set.
type PriorityQueue[T any] struct {
	queue   priorityQueue[T]
	nextSeq uint64
}

func NewPriorityQueue[T any]() *PriorityQueue[T] {
	return &PriorityQueue[T]{queue: make(priorityQueue[T], 0)}
}

func (q *PriorityQueue[T]) Len() int { return len(q.queue) }

// First returns the lowest-priority value without removing it.
func (q *PriorityQueue[T]) First() T { return q.queue[0].Value }

// HeapPush inserts value at priority, preserving the heap invariant.
func (q *PriorityQueue[T]) HeapPush(value T, priority float64) {
	heap.Push(&q.queue, &item[T]{Value: value, Priority: priority, seq: q.nextSeq})
	q.nextSeq++
}

// HeapPop removes and returns the lowest-priority value.
func (q *PriorityQueue[T]) HeapPop() (value T, priority float64) {
	it := heap.Pop(&q.queue).(*item[T])
	return it.Value, it.Priority
}
