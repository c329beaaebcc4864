package flow

import "sync"

// Queue is an unbounded FIFO decoupling a producer from a consumer
// that drains it on its own schedule. Pushing never blocks, popping
// never waits.
//
// Queue implements Sink, so it can be subscribed to a Source directly.
type Queue[T any] struct {
	mu    sync.Mutex
	items []T
}

func NewQueue[T any]() *Queue[T] {
	return &Queue[T]{}
}

func (q *Queue[T]) Push(v T) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = append(q.items, v)
}

// TryPop removes and returns the oldest queued value, if any.
func (q *Queue[T]) TryPop() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	var zero T
	if len(q.items) == 0 {
		return zero, false
	}
	v := q.items[0]
	q.items[0] = zero // release the reference for the collector
	q.items = q.items[1:]
	return v, true
}

func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Submit implements Sink.
func (q *Queue[T]) Submit(v T) error {
	q.Push(v)
	return nil
}

// Close implements Sink. A queue holds no resources to release.
func (q *Queue[T]) Close() {}
