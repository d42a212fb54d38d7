package timer

import (
	"context"
	"sync"

	"github.com/dmitrymomot/appcore/core/middleware"
)

// Handler resolves timer operations in-process using a Clock. It implements
// middleware.EffectHandler.
type Handler struct {
	clock Clock

	mu      sync.Mutex
	pending map[ID]chan struct{}
	// cleared holds IDs cleared before their NotifyAfter was handled.
	cleared map[ID]struct{}
}

var _ middleware.EffectHandler = (*Handler)(nil)

// NewHandler creates a Handler on clock. A nil clock means Real().
func NewHandler(clock Clock) *Handler {
	if clock == nil {
		clock = Real()
	}
	return &Handler{
		clock:   clock,
		pending: make(map[ID]chan struct{}),
		cleared: make(map[ID]struct{}),
	}
}

// Handles reports whether op is a timer operation.
func (h *Handler) Handles(op any) bool {
	switch op.(type) {
	case Now, NotifyAfter, Clear:
		return true
	}
	return false
}

// Handle performs op.
func (h *Handler) Handle(ctx context.Context, op any, resolve func(out any) error) error {
	switch op := op.(type) {
	case Now:
		return resolve(InstantOf(h.clock.Now()))
	case Clear:
		h.clear(op.ID)
		return nil
	case NotifyAfter:
		return h.notifyAfter(ctx, op, resolve)
	}
	return middleware.ErrUnhandled
}

func (h *Handler) notifyAfter(ctx context.Context, op NotifyAfter, resolve func(out any) error) error {
	h.mu.Lock()
	if _, ok := h.cleared[op.ID]; ok {
		delete(h.cleared, op.ID)
		h.mu.Unlock()
		return resolve(Response{ID: op.ID, Cancelled: true})
	}
	cancel := make(chan struct{})
	h.pending[op.ID] = cancel
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		// The ID may already belong to a newer NotifyAfter.
		if h.pending[op.ID] == cancel {
			delete(h.pending, op.ID)
		}
		h.mu.Unlock()
	}()

	var cancelled bool
	err := middleware.Blocking(ctx, func() {
		select {
		case <-h.clock.After(op.Duration):
		case <-cancel:
			cancelled = true
		case <-ctx.Done():
		}
	})
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return resolve(Response{ID: op.ID, Cancelled: cancelled})
}

func (h *Handler) clear(id ID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if cancel, ok := h.pending[id]; ok {
		close(cancel)
		delete(h.pending, id)
		return
	}
	h.cleared[id] = struct{}{}
}

// Pending returns the number of timers waiting to elapse.
func (h *Handler) Pending() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.pending)
}
