package command

import (
	"github.com/dmitrymomot/appcore/core/executor"
	"github.com/dmitrymomot/appcore/core/request"
)

// Event returns a command that emits ev and finishes.
func Event[E request.Effect, Ev any](ev Ev) *Command[E, Ev] {
	return New(func(ctx *Context[E, Ev]) {
		ctx.SendEvent(ev)
	})
}

// NotifyShell returns a command that sends a single notification.
func NotifyShell[E request.Effect, Ev any, O any](op request.Operation[O]) *Command[E, Ev] {
	return New(func(ctx *Context[E, Ev]) {
		Notify(ctx, op)
	})
}

// RequestFromShell returns a command that sends op and emits then(output) once
// the shell resolves it.
//
// Example:
//
//	cmd := command.RequestFromShell[Effect, Event](kv.Get{Key: "count"}, func(r kv.Result) Event {
//		return Loaded{Result: r}
//	})
func RequestFromShell[E request.Effect, Ev any, O any](op request.Operation[O], then func(O) Ev) *Command[E, Ev] {
	return New(func(ctx *Context[E, Ev]) {
		ctx.SendEvent(then(Request(ctx, op)))
	})
}

// StreamFromShell returns a command that subscribes to op and emits each(output)
// for every output until the stream ends or the command is aborted.
func StreamFromShell[E request.Effect, Ev any, O any](op request.Operation[O], each func(O) Ev) *Command[E, Ev] {
	return New(func(ctx *Context[E, Ev]) {
		s := Subscribe(ctx, op)
		for {
			out, ok := s.Next()
			if !ok {
				return
			}
			ctx.SendEvent(each(out))
		}
	})
}

// All runs every command concurrently. The result is done once all of them
// are; aborting it aborts them all.
func All[E request.Effect, Ev any](cmds ...*Command[E, Ev]) *Command[E, Ev] {
	c := newCommand[E, Ev]()
	for _, sub := range cmds {
		c.Add(sub)
	}
	return c
}

// Add runs sub as a task of c: sub's effects and events are re-emitted by c,
// and aborting c aborts sub. The returned handle finishes when sub is done.
func (c *Command[E, Ev]) Add(sub *Command[E, Ev]) *JoinHandle {
	return c.spawnFuture(forwardAll(sub, c))
}

// Sequence runs the commands one after another. A command is not started
// until the previous one is done.
func Sequence[E request.Effect, Ev any](cmds ...*Command[E, Ev]) *Command[E, Ev] {
	return New(func(ctx *Context[E, Ev]) {
		for _, sub := range cmds {
			ctx.Run(sub)
		}
	})
}

// Then runs next after c is done.
func (c *Command[E, Ev]) Then(next *Command[E, Ev]) *Command[E, Ev] {
	return Sequence(c, next)
}

// MapEvent converts the events of cmd with f, typically to lift a child
// component's events into the parent's event type. Effects pass through.
func MapEvent[E request.Effect, Ev any, Ev2 any](cmd *Command[E, Ev], f func(Ev) Ev2) *Command[E, Ev2] {
	c := newCommand[E, Ev2]()
	c.spawnFuture(&forward[E, Ev]{
		sub:      cmd,
		onEvent:  func(ev Ev) { c.emitEvent(f(ev)) },
		onEffect: c.emitEffect,
	})
	return c
}

// MapEffect converts the effects of cmd with f. Events pass through.
func MapEffect[E request.Effect, Ev any, E2 request.Effect](cmd *Command[E, Ev], f func(E) E2) *Command[E2, Ev] {
	c := newCommand[E2, Ev]()
	c.spawnFuture(&forward[E, Ev]{
		sub:      cmd,
		onEvent:  c.emitEvent,
		onEffect: func(eff E) { c.emitEffect(f(eff)) },
	})
	return c
}

func forwardAll[E request.Effect, Ev any](sub, into *Command[E, Ev]) *forward[E, Ev] {
	return &forward[E, Ev]{
		sub:      sub,
		onEvent:  into.emitEvent,
		onEffect: into.emitEffect,
	}
}

// forward drives a sub-command from inside another executor: each poll settles
// the sub-command and hands over what it emitted. Wakes inside the
// sub-command reach the outer task through the executor's parent waker.
type forward[E request.Effect, Ev any] struct {
	sub      *Command[E, Ev]
	onEvent  func(Ev)
	onEffect func(E)
}

// Poll implements executor.Future.
func (f *forward[E, Ev]) Poll(w executor.Waker) executor.Poll {
	f.sub.exec.SetWaker(w)
	events, effects := f.sub.Drain()
	for _, ev := range events {
		f.onEvent(ev)
	}
	for _, eff := range effects {
		f.onEffect(eff)
	}

	if f.sub.IsDone() {
		f.sub.exec.SetWaker(nil)
		return executor.Ready
	}
	return executor.Pending
}

// Cancel implements executor.Canceler.
func (f *forward[E, Ev]) Cancel() {
	f.sub.exec.SetWaker(nil)
	f.sub.Abort()
}
