package request

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// Kind is the resolution arity of a request.
type Kind uint8

const (
	Never Kind = iota // fire-and-forget, no response expected
	Once              // exactly one response
	Many              // a stream of responses
)

// String implements fmt.Stringer.
func (k Kind) String() string {
	switch k {
	case Once:
		return "once"
	case Many:
		return "many"
	default:
		return "never"
	}
}

// Resolve is the handle that delivers output for a request back to whoever is
// waiting for it. It is safe for concurrent use: resolves are serialized by the
// handle's own lock, and the finished flag is flipped under that lock, so two
// racing resolves against a Many handle cannot both get past a completion
// signal.
type Resolve[O any] struct {
	mu       sync.Mutex
	kind     Kind
	once     func(O)
	many     func(O) error
	finished atomic.Bool
}

// ResolvesNever creates a handle for a notification.
func ResolvesNever[O any]() *Resolve[O] {
	r := &Resolve[O]{kind: Never}
	r.finished.Store(true)
	return r
}

// ResolvesOnce creates a handle whose callback runs exactly once.
func ResolvesOnce[O any](fn func(O)) *Resolve[O] {
	return &Resolve[O]{kind: Once, once: fn}
}

// ResolvesMany creates a handle for a stream of outputs. The callback returns a
// non-nil error once the consumer is gone; the handle is finished from then on.
func ResolvesMany[O any](fn func(O) error) *Resolve[O] {
	return &Resolve[O]{kind: Many, many: fn}
}

// Kind returns the arity the handle was created with.
func (r *Resolve[O]) Kind() Kind {
	return r.kind
}

// Finished reports whether the handle can no longer be resolved.
func (r *Resolve[O]) Finished() bool {
	return r.finished.Load()
}

// Resolve delivers out to the waiting side.
func (r *Resolve[O]) Resolve(out O) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch r.kind {
	case Once:
		if r.once == nil {
			return ErrAlreadyResolved
		}
		fn := r.once
		r.once = nil
		r.finished.Store(true)
		fn(out)
		return nil

	case Many:
		if r.finished.Load() {
			return ErrFinished
		}
		if err := r.many(out); err != nil {
			r.finished.Store(true)
			r.many = nil
			return fmt.Errorf("%w: %w", ErrFinished, err)
		}
		return nil

	default:
		return ErrNever
	}
}
