// Package pqueue provides an indexed binary min-heap with decrease-key.
//
// Each key appears at most once. A position index maps keys to heap slots,
// so [Queue.Update] runs in O(log n). Equal priorities pop in the order
// their keys were first pushed, which keeps Dijkstra runs reproducible.
package pqueue

import "errors"

var (
	// ErrDuplicateKey is returned by [Queue.Push] for a key already queued.
	ErrDuplicateKey = errors.New("key already in queue")

	// ErrKeyNotFound is returned by [Queue.Update] for a key not queued.
	ErrKeyNotFound = errors.New("key not in queue")
)

type entry[K comparable] struct {
	key  K
	prio float64
	seq  uint64
}

// Queue is a min-priority queue of unique keys.
// The zero value is not usable; create one with [New].
// A Queue is not safe for concurrent use.
type Queue[K comparable] struct {
	heap  []entry[K]
	index map[K]int
	seq   uint64
}

// New returns an empty queue.
func New[K comparable]() *Queue[K] {
	return &Queue[K]{index: make(map[K]int)}
}

// Len returns the number of queued keys.
func (q *Queue[K]) Len() int { return len(q.heap) }

// Contains reports whether key is queued.
func (q *Queue[K]) Contains(key K) bool {
	_, ok := q.index[key]
	return ok
}

// Priority returns the current priority of key.
func (q *Queue[K]) Priority(key K) (float64, bool) {
	i, ok := q.index[key]
	if !ok {
		return 0, false
	}
	return q.heap[i].prio, true
}

// Push inserts key with priority prio.
func (q *Queue[K]) Push(key K, prio float64) error {
	if _, ok := q.index[key]; ok {
		return ErrDuplicateKey
	}
	q.heap = append(q.heap, entry[K]{key: key, prio: prio, seq: q.seq})
	q.seq++
	i := len(q.heap) - 1
	q.index[key] = i
	q.up(i)
	return nil
}

// Update changes the priority of a queued key. The key keeps its original
// insertion rank for tie-breaking.
func (q *Queue[K]) Update(key K, prio float64) error {
	i, ok := q.index[key]
	if !ok {
		return ErrKeyNotFound
	}
	old := q.heap[i].prio
	q.heap[i].prio = prio
	if prio < old {
		q.up(i)
	} else {
		q.down(i)
	}
	return nil
}

// PushOrUpdate inserts key or changes its priority if already queued.
func (q *Queue[K]) PushOrUpdate(key K, prio float64) {
	if q.Contains(key) {
		_ = q.Update(key, prio)
		return
	}
	_ = q.Push(key, prio)
}

// Pop removes and returns the key with the lowest priority.
// The boolean is false when the queue is empty.
func (q *Queue[K]) Pop() (K, float64, bool) {
	if len(q.heap) == 0 {
		var zero K
		return zero, 0, false
	}
	top := q.heap[0]
	last := len(q.heap) - 1
	q.swap(0, last)
	q.heap = q.heap[:last]
	delete(q.index, top.key)
	if last > 0 {
		q.down(0)
	}
	return top.key, top.prio, true
}

func (q *Queue[K]) less(i, j int) bool {
	a, b := q.heap[i], q.heap[j]
	if a.prio != b.prio {
		return a.prio < b.prio
	}
	return a.seq < b.seq
}

func (q *Queue[K]) swap(i, j int) {
	q.heap[i], q.heap[j] = q.heap[j], q.heap[i]
	q.index[q.heap[i].key] = i
	q.index[q.heap[j].key] = j
}

func (q *Queue[K]) up(i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if !q.less(i, parent) {
			return
		}
		q.swap(i, parent)
		i = parent
	}
}

func (q *Queue[K]) down(i int) {
	n := len(q.heap)
	for {
		smallest := i
		if l := 2*i + 1; l < n && q.less(l, smallest) {
			smallest = l
		}
		if r := 2*i + 2; r < n && q.less(r, smallest) {
			smallest = r
		}
		if smallest == i {
			return
		}
		q.swap(i, smallest)
		i = smallest
	}
}
