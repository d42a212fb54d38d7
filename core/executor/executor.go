package executor

import (
	"log/slog"
	"sync"

	"github.com/dmitrymomot/appcore/core/logger"
	"github.com/dmitrymomot/appcore/pkg/channel"
)

type pollOutcome int

const (
	outcomePolled pollOutcome = iota
	outcomeBusy
	outcomeGone
)

// Executor owns a slab of tasks and polls them when they are woken.
// All methods are safe for concurrent use.
type Executor struct {
	spawnRx *channel.Receiver[Future]
	readyTx *channel.Sender[int]
	readyRx *channel.Receiver[int]

	mu     sync.Mutex
	tasks  slab[Future]
	epoch  uint64
	parent Waker

	logger *slog.Logger
}

// Spawner submits futures to an Executor. It is safe for concurrent use and
// may outlive the RunAll call that created it.
type Spawner struct {
	tx *channel.Sender[Future]
}

// Option configures an Executor.
type Option func(*Executor)

// WithLogger configures debug logging of task lifecycle events.
func WithLogger(l *slog.Logger) Option {
	return func(e *Executor) {
		if l != nil {
			e.logger = l
		}
	}
}

// New creates an executor and the spawner feeding it.
//
// Example:
//
//	exec, spawner := executor.New(executor.WithLogger(logger))
//	spawner.Spawn(task)
//	exec.RunAll()
func New(opts ...Option) (*Executor, *Spawner) {
	spawnTx, spawnRx := channel.New[Future]()
	readyTx, readyRx := channel.New[int]()

	e := &Executor{
		spawnRx: spawnRx,
		readyTx: readyTx,
		readyRx: readyRx,
		logger:  logger.Discard(),
	}
	for _, opt := range opts {
		opt(e)
	}

	spawnRx.Notify(e.wakeParent)
	readyRx.Notify(e.wakeParent)

	return e, &Spawner{tx: spawnTx}
}

// Spawn queues f for its first poll on the next RunAll.
// Returns false if the executor has been shut down.
func (s *Spawner) Spawn(f Future) bool {
	return s.tx.Send(f)
}

// SetWaker installs a waker that is notified whenever a task is spawned or
// woken. Pass nil to remove it.
func (e *Executor) SetWaker(w Waker) {
	e.mu.Lock()
	e.parent = w
	e.mu.Unlock()
}

func (e *Executor) wakeParent() {
	e.mu.Lock()
	w := e.parent
	e.mu.Unlock()
	if w != nil {
		w.Wake()
	}
}

// RunAll polls spawned and woken tasks until neither queue yields any more
// work. Newly spawned tasks are polled once immediately; woken tasks are polled
// in wake order.
//
// Panics raised by a future are not recovered.
func (e *Executor) RunAll() {
	for {
		progressed := false

		for _, f := range e.spawnRx.Drain() {
			e.mu.Lock()
			id := e.tasks.insert(f)
			e.mu.Unlock()
			e.logger.Debug("task spawned", logger.TaskID(id))

			// The fresh task is polled directly; a wake raised during this poll
			// lands on the ready queue and is handled below.
			e.poll(id)
			progressed = true
		}

		var busy []int
		for _, id := range e.readyRx.Drain() {
			switch e.poll(id) {
			case outcomePolled:
				progressed = true
			case outcomeBusy:
				busy = append(busy, id)
			}
		}

		// Tasks checked out elsewhere are requeued for whoever polls next, but
		// they do not keep this loop alive.
		for _, id := range busy {
			e.readyTx.Send(id)
		}

		if !progressed {
			return
		}
	}
}

func (e *Executor) poll(id int) pollOutcome {
	e.mu.Lock()
	f, state := e.tasks.take(id)
	epoch := e.epoch
	e.mu.Unlock()

	switch state {
	case slotCheckedOut:
		return outcomeBusy
	case slotVacant:
		return outcomeGone
	}

	result := f.Poll(&taskWaker{id: id, ready: e.readyTx})

	e.mu.Lock()
	if epoch != e.epoch {
		// Clear ran while the task was checked out; the slot is gone.
		e.mu.Unlock()
		cancel(f)
		return outcomePolled
	}
	if result == Ready {
		e.tasks.remove(id)
	} else {
		e.tasks.put(id, f)
	}
	e.mu.Unlock()

	if result == Ready {
		e.logger.Debug("task finished", logger.TaskID(id))
	}
	return outcomePolled
}

// Clear drops every task, spawned or queued, without polling it again.
// Futures implementing Canceler are cancelled, then the parent waker fires.
// Clear may be called from inside a poll of one of this executor's tasks; the
// task being polled is dropped when its poll returns.
func (e *Executor) Clear() {
	pending := e.spawnRx.Drain()
	e.readyRx.Drain()

	e.mu.Lock()
	dropped := e.tasks.reset()
	e.epoch++
	e.mu.Unlock()

	for _, f := range append(pending, dropped...) {
		cancel(f)
	}
	if n := len(pending) + len(dropped); n > 0 {
		e.logger.Debug("tasks cleared", slog.Int("count", n))
	}

	// Whoever drives this executor should notice that it went idle.
	e.wakeParent()
}

// Len returns the number of live tasks, including those waiting for their
// first poll.
func (e *Executor) Len() int {
	e.mu.Lock()
	n := e.tasks.len()
	e.mu.Unlock()
	return n + e.spawnRx.Len()
}

// Idle reports whether there are no live tasks.
func (e *Executor) Idle() bool {
	return e.Len() == 0
}

func cancel(f Future) {
	if c, ok := f.(Canceler); ok {
		c.Cancel()
	}
}

type taskWaker struct {
	id    int
	ready *channel.Sender[int]
}

func (w *taskWaker) Wake() {
	w.ready.Send(w.id)
}
