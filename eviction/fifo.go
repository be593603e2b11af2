// This file implements FIFO eviction.

package eviction

import "container/list"

type fifo[K comparable] struct {
	// queue keeps keys in the order they were inserted.
	// The front of the queue is the oldest key.
	queue *list.List

	// index finds a key's element so Remove is O(1).
	index map[K]*list.Element
}

func newFIFO[K comparable]() *fifo[K] {
	return &fifo[K]{
		queue: list.New(),
		index: make(map[K]*list.Element),
	}
}

// OnGet is a no-op. FIFO ignores reads completely.
func (f *fifo[K]) OnGet(K) {}

// OnPut appends a new key to the back of the queue.
// A key that is already tracked keeps its original position: FIFO only
// cares about the first insertion.
func (f *fifo[K]) OnPut(k K) {
	if _, ok := f.index[k]; ok {
		return
	}
	f.index[k] = f.queue.PushBack(k)
}

// Evict pops the oldest key.
func (f *fifo[K]) Evict() (K, bool) {
	front := f.queue.Front()
	if front == nil {
		var zero K
		return zero, false
	}
	k := f.queue.Remove(front).(K)
	delete(f.index, k)
	return k, true
}

// Remove drops a key wherever it sits, preserving the order of the rest.
func (f *fifo[K]) Remove(k K) {
	el, ok := f.index[k]
	if !ok {
		return
	}
	f.queue.Remove(el)
	delete(f.index, k)
}

func (f *fifo[K]) Len() int { return f.queue.Len() }
