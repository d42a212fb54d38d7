package app

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/dmitrymomot/appcore/core/command"
	"github.com/dmitrymomot/appcore/core/logger"
	"github.com/dmitrymomot/appcore/core/request"
)

// App is implemented by applications.
//
// Update must not perform I/O itself; anything it needs from the outside
// world goes through the returned command. A nil command is treated as
// command.Done. View must not mutate the model.
type App[Ev, M, VM any, E request.Effect] interface {
	Update(ev Ev, model *M) *command.Command[E, Ev]
	View(model *M) VM
}

// Option configures a Core.
type Option func(*options)

type options struct {
	model  any
	logger *slog.Logger
}

// WithModel sets the initial model. The value must have the Core's model type.
func WithModel(model any) Option {
	return func(o *options) {
		o.model = model
	}
}

// WithLogger enables debug logging of processed events and settle passes.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// Core runs an App.
type Core[Ev, M, VM any, E request.Effect] struct {
	app App[Ev, M, VM, E]

	modelMu sync.RWMutex
	model   M

	processMu sync.Mutex
	root      *command.Command[E, Ev]
	closed    bool

	logger *slog.Logger
}

// New creates a Core for a. The model starts as the zero M unless WithModel is
// given. It panics if WithModel was given a value of another type.
func New[Ev, M, VM any, E request.Effect](a App[Ev, M, VM, E], opts ...Option) *Core[Ev, M, VM, E] {
	o := options{logger: logger.Discard()}
	for _, opt := range opts {
		opt(&o)
	}

	c := &Core[Ev, M, VM, E]{
		app:    a,
		root:   command.Done[E, Ev](),
		logger: o.logger,
	}
	if o.model != nil {
		m, ok := o.model.(M)
		if !ok {
			panic(fmt.Sprintf("app: initial model has type %T, want %T", o.model, c.model))
		}
		c.model = m
	}
	return c
}

// ProcessEvent applies ev and runs every resulting command until no more
// events are pending. It returns the effects the shell has to handle.
func (c *Core[Ev, M, VM, E]) ProcessEvent(ev Ev) []E {
	c.processMu.Lock()
	defer c.processMu.Unlock()

	if c.closed {
		c.logger.Debug("event dropped after close", slog.String("event", fmt.Sprintf("%T", ev)))
		return nil
	}
	c.update(ev)
	return c.settle()
}

// Resolve delivers output for a request previously returned by this Core and
// continues the tasks waiting on it. The returned effects are whatever those
// tasks, and the events they emitted, asked for next.
func (c *Core[Ev, M, VM, E]) Resolve(r request.Resolver, out any) ([]E, error) {
	if err := r.ResolveValue(out); err != nil {
		return nil, err
	}
	return c.ProcessTasks(), nil
}

// ResolveEncoded is Resolve for serialized output.
func (c *Core[Ev, M, VM, E]) ResolveEncoded(r request.Resolver, decode func(dst any) error) ([]E, error) {
	if err := r.ResolveEncoded(decode); err != nil {
		return nil, err
	}
	return c.ProcessTasks(), nil
}

// ProcessTasks runs every task that became ready since the last call, for
// example because a request was resolved from another goroutine.
func (c *Core[Ev, M, VM, E]) ProcessTasks() []E {
	c.processMu.Lock()
	defer c.processMu.Unlock()

	if c.closed {
		return nil
	}
	return c.settle()
}

// Close aborts every running task. Tasks waiting on outstanding requests are
// dropped and their deferred calls run; resolving those requests afterwards
// is inert. A Core that is discarded while requests are outstanding must be
// closed, or the tasks stay parked for the life of the process.
//
// After Close the Core ignores events, and View keeps returning the last
// model. Close is idempotent.
func (c *Core[Ev, M, VM, E]) Close() {
	c.processMu.Lock()
	defer c.processMu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	c.root.Abort()
	c.logger.Debug("core closed")
}

// View returns the current view model.
func (c *Core[Ev, M, VM, E]) View() VM {
	c.modelMu.RLock()
	defer c.modelMu.RUnlock()

	return c.app.View(&c.model)
}

func (c *Core[Ev, M, VM, E]) update(ev Ev) {
	cmd := c.apply(ev)
	if cmd != nil {
		c.root.Add(cmd)
	}
}

func (c *Core[Ev, M, VM, E]) apply(ev Ev) *command.Command[E, Ev] {
	c.modelMu.Lock()
	defer c.modelMu.Unlock()

	c.logger.Debug("update", slog.String("event", fmt.Sprintf("%T", ev)))
	return c.app.Update(ev, &c.model)
}

// settle must be called with processMu held.
func (c *Core[Ev, M, VM, E]) settle() []E {
	var (
		effects []E
		passes  int
	)
	for {
		passes++
		events, effs := c.root.Drain()
		effects = append(effects, effs...)
		if len(events) == 0 {
			break
		}
		for _, ev := range events {
			c.update(ev)
		}
	}

	c.logger.Debug("settled",
		logger.Count("passes", passes),
		logger.Count("effects", len(effects)),
	)
	return effects
}
