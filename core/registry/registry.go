package registry

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/dmitrymomot/appcore/core/logger"
	"github.com/dmitrymomot/appcore/core/request"
)

// EffectID identifies a request in a sequential registry.
type EffectID uint32

// Registry maps ids to requests awaiting output.
type Registry[ID comparable] struct {
	mu      sync.Mutex
	entries map[ID]request.Resolver
	next    func() ID
	logger  *slog.Logger
}

// Option configures a Registry.
type Option func(*options)

type options struct {
	logger *slog.Logger
}

// WithLogger enables debug records for register and resume.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// New creates a registry that draws ids from next. next is called under the
// registry lock and must not return an id that is still registered.
func New[ID comparable](next func() ID, opts ...Option) *Registry[ID] {
	o := options{logger: logger.Discard()}
	for _, opt := range opts {
		opt(&o)
	}
	return &Registry[ID]{
		entries: make(map[ID]request.Resolver),
		next:    next,
		logger:  o.logger,
	}
}

// NewUUID creates a registry with random UUID ids.
func NewUUID(opts ...Option) *Registry[uuid.UUID] {
	return New(uuid.New, opts...)
}

// NewSequential creates a registry with EffectIDs counting up from 1.
func NewSequential(opts ...Option) *Registry[EffectID] {
	var counter atomic.Uint32
	return New(func() EffectID {
		return EffectID(counter.Add(1))
	}, opts...)
}

// Register stores r under a fresh id. Notifications need no response and are
// not stored; Register reports false for them.
func (reg *Registry[ID]) Register(r request.Resolver) (ID, bool) {
	if r.Kind() == request.Never {
		var zero ID
		return zero, false
	}

	reg.mu.Lock()
	id := reg.next()
	reg.entries[id] = r
	reg.mu.Unlock()

	reg.logger.Debug("request registered",
		logger.EffectID(id),
		slog.String("kind", r.Kind().String()),
	)
	return id, true
}

// Resume looks up id and calls resolve with its request.
//
// A Once request is taken out of the registry before resolve runs and is put
// back only if resolve failed without consuming it (for example, output that
// could not be decoded). A Many request is removed as soon as it reports
// finished.
func (reg *Registry[ID]) Resume(id ID, resolve func(r request.Resolver) error) error {
	reg.mu.Lock()
	r, ok := reg.entries[id]
	if ok && r.Kind() == request.Once {
		delete(reg.entries, id)
	}
	reg.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %v", ErrNotFound, id)
	}

	err := resolve(r)

	switch {
	case r.Kind() == request.Once && err != nil && !r.Finished():
		reg.mu.Lock()
		reg.entries[id] = r
		reg.mu.Unlock()
	case r.Kind() == request.Many && r.Finished():
		reg.mu.Lock()
		if cur, ok := reg.entries[id]; ok && cur == r {
			delete(reg.entries, id)
		}
		reg.mu.Unlock()
	}

	if err != nil {
		reg.logger.Debug("request resume failed", logger.EffectID(id), logger.Error(err))
		return fmt.Errorf("resume %v: %w", id, err)
	}
	return nil
}

// ResumeValue resolves the request behind id with a native output value.
func (reg *Registry[ID]) ResumeValue(id ID, out any) error {
	return reg.Resume(id, func(r request.Resolver) error {
		return r.ResolveValue(out)
	})
}

// ResumeEncoded resolves the request behind id with serialized output.
func (reg *Registry[ID]) ResumeEncoded(id ID, decode func(dst any) error) error {
	return reg.Resume(id, func(r request.Resolver) error {
		return r.ResolveEncoded(decode)
	})
}

// Contains reports whether id is registered.
func (reg *Registry[ID]) Contains(id ID) bool {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	_, ok := reg.entries[id]
	return ok
}

// Clear forgets every outstanding request and returns how many there were.
func (reg *Registry[ID]) Clear() int {
	reg.mu.Lock()
	n := len(reg.entries)
	clear(reg.entries)
	reg.mu.Unlock()

	if n > 0 {
		reg.logger.Debug("requests cleared", logger.Count("requests", n))
	}
	return n
}

// Len returns the number of outstanding requests.
func (reg *Registry[ID]) Len() int {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	return len(reg.entries)
}
