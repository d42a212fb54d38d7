// Package executor implements a minimal cooperative executor for poll-based
// futures.
//
// A Future is polled with a Waker. When it cannot make progress it returns
// Pending and arranges for the waker to be called once it can; the executor then
// polls it again. The executor never creates goroutines and never blocks: RunAll
// polls whatever is ready until a fixed point is reached and returns.
//
// Tasks are stored in a slab, an index-stable slot table, so a task id stays
// valid for the lifetime of the task and insert/remove/take are O(1). Before a
// task is polled its future is taken out of the slot and the slab lock is
// released, so a future is free to spawn new tasks or wake itself (or any other
// task) during its own poll.
//
// Basic usage:
//
//	exec, spawner := executor.New()
//	spawner.Spawn(executor.FutureFunc(func(w executor.Waker) executor.Poll {
//		return executor.Ready
//	}))
//	exec.RunAll()
//
// # Cross-goroutine wakes
//
// Wakers only push task ids onto a thread-safe queue, so they may be invoked from
// any goroutine. If a ready task is currently checked out by another goroutine's
// RunAll, the id is re-queued without counting as progress; the pass ends and the
// owner of the in-flight poll picks it up on its next pass.
//
// # Nesting
//
// An executor can itself be driven from inside a future: SetWaker installs a
// parent waker that is notified whenever a task is woken or spawned.
package executor
