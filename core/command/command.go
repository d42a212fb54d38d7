package command

import (
	"log/slog"
	"sync/atomic"

	"github.com/dmitrymomot/appcore/core/executor"
	"github.com/dmitrymomot/appcore/core/logger"
	"github.com/dmitrymomot/appcore/core/request"
	"github.com/dmitrymomot/appcore/pkg/channel"
)

// Command is one unit of orchestration returned by an application's update
// function. It owns a set of concurrently running tasks and buffers the effects
// and events they emit until the caller drains them.
//
// E is the effect type handed to the shell and must be an interface type that
// every *request.Request satisfies (request.Effect itself, or an interface
// embedding it). Ev is the application's event type.
//
// A Command is driven by calling Effects, Events, Drain or RunUntilSettled. It
// does not start goroutines of its own accord and never blocks waiting for the
// shell; suspended tasks resume when their requests are resolved and the
// command is settled again.
type Command[E request.Effect, Ev any] struct {
	effectsTx *channel.Sender[E]
	effectsRx *channel.Receiver[E]
	eventsTx  *channel.Sender[Ev]
	eventsRx  *channel.Receiver[Ev]

	exec    *executor.Executor
	spawner *executor.Spawner

	aborted atomic.Bool
	logger  *slog.Logger
}

func newCommand[E request.Effect, Ev any]() *Command[E, Ev] {
	effectsTx, effectsRx := channel.New[E]()
	eventsTx, eventsRx := channel.New[Ev]()
	exec, spawner := executor.New()

	return &Command[E, Ev]{
		effectsTx: effectsTx,
		effectsRx: effectsRx,
		eventsTx:  eventsTx,
		eventsRx:  eventsRx,
		exec:      exec,
		spawner:   spawner,
		logger:    logger.Discard(),
	}
}

// New creates a Command whose single root task runs fn.
//
// Example:
//
//	cmd := command.New(func(ctx *command.Context[Effect, Event]) {
//		value := command.Request[kv.Result](ctx, kv.Get{Key: "count"})
//		ctx.SendEvent(Loaded{Value: value.Value})
//	})
func New[E request.Effect, Ev any](fn func(ctx *Context[E, Ev])) *Command[E, Ev] {
	c := newCommand[E, Ev]()
	c.Spawn(fn)
	return c
}

// Done returns a Command with no tasks. It is finished immediately.
func Done[E request.Effect, Ev any]() *Command[E, Ev] {
	return newCommand[E, Ev]()
}

// WithLogger attaches a logger used for debug records about the command's
// tasks and returns the command.
func (c *Command[E, Ev]) WithLogger(l *slog.Logger) *Command[E, Ev] {
	if l != nil {
		c.logger = l
	}
	return c
}

// Spawn adds a concurrent task running fn to the command. The task starts the
// next time the command settles.
func (c *Command[E, Ev]) Spawn(fn func(ctx *Context[E, Ev])) *JoinHandle {
	co := newCoroutine()
	ctx := &Context[E, Ev]{cmd: c, co: co}
	co.body = func() { fn(ctx) }
	return c.spawnFuture(co)
}

func (c *Command[E, Ev]) spawnFuture(f executor.Future) *JoinHandle {
	state := &joinState{}
	t := &task{inner: f, state: state}
	if c.aborted.Load() || !c.spawner.Spawn(t) {
		t.Cancel()
	}
	return &JoinHandle{state: state}
}

// RunUntilSettled polls every ready task until none can make progress.
// It is idempotent: calling it again without an intervening resolve or spawn
// does no work. On an aborted command it drops any remaining tasks.
//
// Panics raised inside tasks propagate to the caller.
func (c *Command[E, Ev]) RunUntilSettled() {
	if c.aborted.Load() {
		c.exec.Clear()
		return
	}
	c.exec.RunAll()
}

// Effects settles the command and returns every effect emitted so far, in
// emission order.
func (c *Command[E, Ev]) Effects() []E {
	c.RunUntilSettled()
	return c.effectsRx.Drain()
}

// Events settles the command and returns every event emitted so far, in
// emission order.
func (c *Command[E, Ev]) Events() []Ev {
	c.RunUntilSettled()
	return c.eventsRx.Drain()
}

// Drain settles the command once and returns both buffers. Events produced in
// the same pass come first by convention.
func (c *Command[E, Ev]) Drain() ([]Ev, []E) {
	c.RunUntilSettled()
	return c.eventsRx.Drain(), c.effectsRx.Drain()
}

// IsDone reports whether the command has no tasks left.
func (c *Command[E, Ev]) IsDone() bool {
	return c.aborted.Load() || c.exec.Idle()
}

// WasAborted reports whether the command has been aborted. Permanent once set.
func (c *Command[E, Ev]) WasAborted() bool {
	return c.aborted.Load()
}

// Abort cancels every task. Suspended tasks are dropped without being resumed;
// their deferred calls run. Nothing the command's tasks do afterwards is
// emitted. Safe to call from any goroutine and from inside one of the
// command's own tasks.
func (c *Command[E, Ev]) Abort() {
	if c.aborted.Swap(true) {
		return
	}
	c.logger.Debug("command aborted", logger.Count("tasks", c.exec.Len()))
	c.exec.Clear()
}

// AbortHandle returns a handle that aborts this command.
func (c *Command[E, Ev]) AbortHandle() AbortHandle {
	return AbortHandle{abort: c.Abort, aborted: c.WasAborted}
}

func (c *Command[E, Ev]) emitEffect(eff E) {
	if c.aborted.Load() {
		return
	}
	c.effectsTx.Send(eff)
}

func (c *Command[E, Ev]) emitEvent(ev Ev) {
	if c.aborted.Load() {
		return
	}
	c.eventsTx.Send(ev)
}
