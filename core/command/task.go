package command

import (
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/dmitrymomot/appcore/core/executor"
)

type resumeSignal uint8

const (
	resumeContinue resumeSignal = iota
	resumeCancel
)

type yieldKind uint8

const (
	yieldSuspended yieldKind = iota
	yieldFinished
	yieldPanicked
)

type yieldSignal struct {
	kind  yieldKind
	value any
}

// coroutine runs a task body on its own goroutine, but only while the executor
// is polling it: Poll hands control to the goroutine and blocks until the body
// either suspends or returns. At most one side runs at any time, so the body
// observes the same single-threaded semantics as the rest of the executor.
//
// The goroutine is started lazily on the first poll. A suspended coroutine that
// is cancelled is unwound with runtime.Goexit, so its deferred calls run but no
// code past the suspension point does.
type coroutine struct {
	body func()

	resume chan resumeSignal
	yield  chan yieldSignal

	started   bool
	done      bool
	cancelled bool

	mu       sync.Mutex
	waker    executor.Waker
	cleanups []func()
}

func newCoroutine() *coroutine {
	return &coroutine{
		resume: make(chan resumeSignal),
		yield:  make(chan yieldSignal),
	}
}

// Poll implements executor.Future.
func (c *coroutine) Poll(w executor.Waker) executor.Poll {
	if c.done {
		return executor.Ready
	}

	c.mu.Lock()
	c.waker = w
	c.mu.Unlock()

	if !c.started {
		c.started = true
		go c.run()
	} else {
		c.resume <- resumeContinue
	}

	sig := <-c.yield
	switch sig.kind {
	case yieldSuspended:
		return executor.Pending
	case yieldPanicked:
		c.finish()
		panic(sig.value)
	default:
		c.finish()
		return executor.Ready
	}
}

// Cancel implements executor.Canceler. It must not be called while the
// coroutine is being polled.
func (c *coroutine) Cancel() {
	if c.done {
		return
	}
	if !c.started {
		c.finish()
		return
	}

	c.cancelled = true
	c.resume <- resumeCancel
	sig := <-c.yield
	c.finish()
	if sig.kind == yieldPanicked {
		panic(sig.value)
	}
}

func (c *coroutine) run() {
	defer func() {
		if r := recover(); r != nil {
			c.yield <- yieldSignal{kind: yieldPanicked, value: r}
			return
		}
		// Normal return, unwinding after Cancel, or a Goexit raised by the body
		// itself (t.FailNow in a test) all end the task.
		c.yield <- yieldSignal{kind: yieldFinished}
	}()

	c.body()
}

// suspend parks the body until the next poll. Called on the coroutine goroutine.
// A body that is already unwinding (a deferred call trying to wait) is never
// parked again.
func (c *coroutine) suspend() {
	if c.cancelled {
		runtime.Goexit()
	}
	c.yield <- yieldSignal{kind: yieldSuspended}
	if <-c.resume == resumeCancel {
		runtime.Goexit()
	}
}

// await suspends until poll reports true. poll is always given the waker of the
// current executor poll.
func (c *coroutine) await(poll func(w executor.Waker) bool) {
	for !poll(c) {
		c.suspend()
	}
}

// Wake wakes whichever executor task is currently driving the coroutine.
// Resources owned by the body (request slots, streams) use the coroutine itself
// as their waker so they never hold on to a stale one.
func (c *coroutine) Wake() {
	c.mu.Lock()
	w := c.waker
	c.mu.Unlock()
	if w != nil {
		w.Wake()
	}
}

// onCleanup registers fn to run when the coroutine finishes or is dropped.
func (c *coroutine) onCleanup(fn func()) {
	c.mu.Lock()
	c.cleanups = append(c.cleanups, fn)
	c.mu.Unlock()
}

func (c *coroutine) finish() {
	c.done = true

	c.mu.Lock()
	cleanups := c.cleanups
	c.cleanups = nil
	c.waker = nil
	c.mu.Unlock()

	for _, fn := range cleanups {
		fn()
	}
}

// joinState is shared between a task and all of its JoinHandles.
type joinState struct {
	aborted atomic.Bool

	mu       sync.Mutex
	finished bool
	joiners  executor.WakerSet
	task     executor.Waker
}

func (s *joinState) setTaskWaker(w executor.Waker) {
	s.mu.Lock()
	s.task = w
	s.mu.Unlock()
}

func (s *joinState) finish() {
	s.mu.Lock()
	if s.finished {
		s.mu.Unlock()
		return
	}
	s.finished = true
	s.task = nil
	wakers := s.joiners.Take()
	s.mu.Unlock()

	executor.WakeAll(wakers)
}

func (s *joinState) poll(w executor.Waker) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.finished {
		return true
	}
	s.joiners.Add(w)
	return false
}

// task is the unit stored in a Command's executor: any future plus the abort
// and completion bookkeeping its JoinHandles observe.
type task struct {
	inner executor.Future
	state *joinState
}

// Poll implements executor.Future. The abort flag is checked before every poll;
// an aborted task is dropped without being polled again.
func (t *task) Poll(w executor.Waker) executor.Poll {
	if t.state.aborted.Load() {
		t.Cancel()
		return executor.Ready
	}

	t.state.setTaskWaker(w)
	if t.inner.Poll(w) == executor.Ready {
		t.state.finish()
		return executor.Ready
	}
	return executor.Pending
}

// Cancel implements executor.Canceler.
func (t *task) Cancel() {
	if c, ok := t.inner.(executor.Canceler); ok {
		c.Cancel()
	}
	t.state.finish()
}

// JoinHandle refers to a task spawned into a Command. It can be awaited from
// another task with Context.Join and used to abort the task. Copies of a handle
// share the same state.
type JoinHandle struct {
	state *joinState
}

// Abort marks the task as aborted. It will not be polled again; if it is
// suspended, it is dropped the next time its command settles.
func (h *JoinHandle) Abort() {
	h.state.aborted.Store(true)

	h.state.mu.Lock()
	w := h.state.task
	h.state.mu.Unlock()
	if w != nil {
		w.Wake()
	}
}

// IsFinished reports whether the task has completed or been dropped.
func (h *JoinHandle) IsFinished() bool {
	h.state.mu.Lock()
	defer h.state.mu.Unlock()
	return h.state.finished
}

// WasAborted reports whether Abort has been called.
func (h *JoinHandle) WasAborted() bool {
	return h.state.aborted.Load()
}

// Poll makes the handle usable as an executor.Future that becomes ready once
// the task is finished.
func (h *JoinHandle) Poll(w executor.Waker) executor.Poll {
	if h.state.poll(w) {
		return executor.Ready
	}
	return executor.Pending
}

// AbortHandle aborts a whole Command.
type AbortHandle struct {
	abort   func()
	aborted func() bool
}

// Abort cancels every task of the command. Idempotent.
func (h AbortHandle) Abort() {
	h.abort()
}

// WasAborted reports whether the command has been aborted.
func (h AbortHandle) WasAborted() bool {
	return h.aborted()
}
