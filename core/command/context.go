package command

import (
	"fmt"
	"sync"

	"github.com/dmitrymomot/appcore/core/executor"
	"github.com/dmitrymomot/appcore/core/request"
	"github.com/dmitrymomot/appcore/pkg/channel"
)

// Context is handed to every task body. It is bound to that task: its
// suspending helpers (Request, Stream.Next, Join, Select) must only be called
// from the body that received it.
type Context[E request.Effect, Ev any] struct {
	cmd *Command[E, Ev]
	co  *coroutine
}

// SendEvent emits an event for the application's update function.
func (ctx *Context[E, Ev]) SendEvent(ev Ev) {
	ctx.cmd.emitEvent(ev)
}

// Spawn starts a sibling task in the same command.
func (ctx *Context[E, Ev]) Spawn(fn func(ctx *Context[E, Ev])) *JoinHandle {
	return ctx.cmd.Spawn(fn)
}

// Run executes another command as part of this task: its effects and events are
// forwarded to this task's command, and Run returns once it is done. Aborting
// this task aborts sub.
func (ctx *Context[E, Ev]) Run(sub *Command[E, Ev]) {
	h := ctx.cmd.Add(sub)
	ctx.co.onCleanup(func() {
		if !h.IsFinished() {
			sub.Abort()
		}
	})
	ctx.Join(h)
}

// Join suspends until the task behind h has finished or been dropped.
func (ctx *Context[E, Ev]) Join(h *JoinHandle) {
	ctx.co.await(h.state.poll)
}

// Select suspends until at least one of the handles has finished and returns
// the index of the first finished one. It is the building block for races such
// as timeouts: spawn the operation and a timer, Select, abort the loser.
// Select with no handles returns -1 immediately.
func (ctx *Context[E, Ev]) Select(handles ...*JoinHandle) int {
	if len(handles) == 0 {
		return -1
	}

	winner := -1
	ctx.co.await(func(w executor.Waker) bool {
		for i, h := range handles {
			if h.state.poll(w) {
				winner = i
				return true
			}
		}
		return false
	})
	return winner
}

// Aborted reports whether this task's command has been aborted.
func (ctx *Context[E, Ev]) Aborted() bool {
	return ctx.cmd.aborted.Load()
}

func (ctx *Context[E, Ev]) emit(eff request.Effect) {
	typed, ok := eff.(E)
	if !ok {
		var zero E
		panic(fmt.Sprintf("command: effect type %T does not accept %T", &zero, eff))
	}
	ctx.cmd.emitEffect(typed)
}

// Notify sends a fire-and-forget request to the shell.
func Notify[O any, E request.Effect, Ev any](ctx *Context[E, Ev], op request.Operation[O]) {
	ctx.emit(request.NewNever(op))
}

// Request sends a request to the shell and suspends the task until it is
// resolved. If the task or its command is aborted first, Request never
// returns: the task is dropped at this point.
//
// Example:
//
//	result := command.Request[kv.Result](ctx, kv.Get{Key: "count"})
func Request[O any, E request.Effect, Ev any](ctx *Context[E, Ev], op request.Operation[O]) O {
	return RequestAsync(ctx, op).Await()
}

// RequestAsync sends a request to the shell without suspending. The effect is
// emitted immediately; the returned Pending is awaited later, which lets a task
// have several requests in flight at once.
func RequestAsync[O any, E request.Effect, Ev any](ctx *Context[E, Ev], op request.Operation[O]) *Pending[O] {
	p := &Pending[O]{co: ctx.co}
	ctx.co.onCleanup(p.close)
	ctx.emit(request.NewOnce(op, p.send))
	return p
}

// Subscribe sends a streaming request to the shell. Outputs are read with
// Stream.Next. The request is finished, and further resolves fail, once the
// stream is closed or the owning task ends.
func Subscribe[O any, E request.Effect, Ev any](ctx *Context[E, Ev], op request.Operation[O]) *Stream[O] {
	tx, rx := channel.New[O]()
	s := &Stream[O]{rx: rx, co: ctx.co}
	rx.Notify(ctx.co.Wake)
	ctx.co.onCleanup(s.Close)

	ctx.emit(request.NewMany(op, func(out O) error {
		if !tx.Send(out) {
			return errStreamClosed
		}
		return nil
	}))
	return s
}

// Pending is the output slot of a request sent with RequestAsync.
type Pending[O any] struct {
	co *coroutine

	mu     sync.Mutex
	value  O
	ready  bool
	closed bool
}

func (p *Pending[O]) send(out O) {
	p.mu.Lock()
	if p.closed || p.ready {
		p.mu.Unlock()
		return
	}
	p.value = out
	p.ready = true
	p.mu.Unlock()

	p.co.Wake()
}

func (p *Pending[O]) close() {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
}

func (p *Pending[O]) poll(executor.Waker) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ready
}

// Await suspends the owning task until the output arrives.
func (p *Pending[O]) Await() O {
	p.co.await(p.poll)
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.value
}

// IsReady reports whether the output has arrived.
func (p *Pending[O]) IsReady() bool {
	return p.poll(nil)
}

// Stream delivers the outputs of a streaming request in order.
type Stream[O any] struct {
	rx *channel.Receiver[O]
	co *coroutine
}

// Next suspends until the next output arrives. It returns false once the
// stream has been closed.
func (s *Stream[O]) Next() (O, bool) {
	var (
		out O
		ok  bool
	)
	s.co.await(func(executor.Waker) bool {
		if s.rx.Closed() {
			return true
		}
		out, ok = s.rx.TryReceive()
		return ok
	})
	return out, ok
}

// Close stops the stream. The shell's next resolve of the request fails and
// the request is evicted from whatever registry holds it.
func (s *Stream[O]) Close() {
	s.rx.Close()
}
