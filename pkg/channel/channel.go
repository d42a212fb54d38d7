package channel

import "sync"

type queue[T any] struct {
	mu     sync.Mutex
	items  []T
	closed bool
	notify func()
}

// Sender is the producing half of a queue. It is safe for concurrent use and
// may be shared freely between goroutines.
type Sender[T any] struct {
	q *queue[T]
}

// Receiver is the consuming half of a queue.
type Receiver[T any] struct {
	q *queue[T]
}

// New creates an empty unbounded queue.
func New[T any]() (*Sender[T], *Receiver[T]) {
	q := &queue[T]{}
	return &Sender[T]{q: q}, &Receiver[T]{q: q}
}

// Send appends v to the queue. It reports false when the receiver has been
// closed, in which case v is discarded.
func (s *Sender[T]) Send(v T) bool {
	s.q.mu.Lock()
	if s.q.closed {
		s.q.mu.Unlock()
		return false
	}
	s.q.items = append(s.q.items, v)
	notify := s.q.notify
	s.q.mu.Unlock()

	if notify != nil {
		notify()
	}
	return true
}

// Closed reports whether the receiver is gone.
func (s *Sender[T]) Closed() bool {
	s.q.mu.Lock()
	defer s.q.mu.Unlock()
	return s.q.closed
}

// TryReceive pops the oldest item, if any.
func (r *Receiver[T]) TryReceive() (T, bool) {
	r.q.mu.Lock()
	defer r.q.mu.Unlock()

	var zero T
	if len(r.q.items) == 0 {
		return zero, false
	}
	v := r.q.items[0]
	r.q.items[0] = zero
	r.q.items = r.q.items[1:]
	return v, true
}

// Drain removes and returns everything queued so far in FIFO order.
// Returns nil when the queue is empty.
func (r *Receiver[T]) Drain() []T {
	r.q.mu.Lock()
	defer r.q.mu.Unlock()

	if len(r.q.items) == 0 {
		return nil
	}
	items := r.q.items
	r.q.items = nil
	return items
}

// Len returns the number of queued items.
func (r *Receiver[T]) Len() int {
	r.q.mu.Lock()
	defer r.q.mu.Unlock()
	return len(r.q.items)
}

// Notify installs fn to be called after every successful send. Passing nil
// removes the hook.
func (r *Receiver[T]) Notify(fn func()) {
	r.q.mu.Lock()
	r.q.notify = fn
	r.q.mu.Unlock()
}

// Close marks the consumer as gone. Buffered items are dropped and further
// sends report false. Close is idempotent.
func (r *Receiver[T]) Close() {
	r.q.mu.Lock()
	r.q.closed = true
	r.q.items = nil
	r.q.notify = nil
	r.q.mu.Unlock()
}

// Closed reports whether Close has been called.
func (r *Receiver[T]) Closed() bool {
	r.q.mu.Lock()
	defer r.q.mu.Unlock()
	return r.q.closed
}
