// Package app hosts an application's model and drives its update loop.
//
// An application is described by the App interface: a pure update function
// that applies an event to the model and returns a command, and a pure view
// function projecting the model for the shell. Core owns the model and runs the
// commands Update returns.
//
//	core := app.New[Event, Model, ViewModel, request.Effect](MyApp{})
//	effects := core.ProcessEvent(Event{Type: "increment"})
//	for _, eff := range effects {
//		// hand eff to the shell
//	}
//	effects, err := core.Resolve(eff, output) // once the shell has the output
//	vm := core.View()
//
// Every call runs to a fixed point: events emitted by commands while the call
// is in progress are fed back into Update before the accumulated effects are
// returned.
//
// Core is safe for concurrent use. Calls that run commands are serialized; the
// model lock is held only for the duration of each Update so View is never
// blocked behind a whole settle loop.
package app
