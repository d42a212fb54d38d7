// Package command implements the unit of orchestration an application's update
// function returns.
//
// A Command owns a set of tasks. Each task is an ordinary Go function that
// talks to the shell through its Context: it can send notifications, issue
// requests and wait for their output, subscribe to streams, emit events and
// spawn more tasks. Tasks never block an OS thread. A task that waits for the
// shell is suspended and resumes only when the request is resolved and the
// command is settled again.
//
// # Effects and operations
//
// Capability operations are plain structs that embed request.Returns with
// their output type:
//
//	type Get struct {
//		request.Returns[Result]
//		Key string
//	}
//
// Every effect emitted by a command is a *request.Request. The command's effect
// type parameter E is an interface (request.Effect, or an application interface
// embedding it) that the shell type-switches on through Operation().
//
// # Writing tasks
//
//	cmd := command.New(func(ctx *command.Context[request.Effect, Event]) {
//		res := command.Request[kv.Result](ctx, kv.Get{Key: "count"})
//		ctx.SendEvent(Loaded{Result: res})
//	})
//
//	effects := cmd.Effects() // [kv.Get request]
//	// shell resolves the request...
//	events := cmd.Events()   // [Loaded{...}]
//
// Builders cover the common single-step cases: Event, NotifyShell,
// RequestFromShell and StreamFromShell. All runs commands concurrently,
// Sequence runs them in order, MapEvent and MapEffect adapt a child component's
// command to its parent's types.
//
// # Concurrency
//
// Within a command, tasks run cooperatively: at most one task body executes at a
// time and only while the command is being settled. Tasks become ready in the
// order they are woken, so effects reach the shell in the order they were
// requested. Resolves and aborts may come from any goroutine.
//
// # Cancellation
//
// JoinHandle.Abort drops a single task; Command.Abort drops them all. A dropped
// task never runs past its last suspension point, but its deferred calls do
// run. Nothing emitted by an aborted command reaches the caller, and resolving a
// request whose task is gone is a no-op. There is no built-in timeout: race the
// operation against a timer request with Context.Select instead.
//
// # Panics
//
// A panic inside a task is not recovered. It surfaces from the call that
// settled the command (Effects, Events, Drain or RunUntilSettled).
package command
