// Package render is the capability that asks the shell to redraw the view.
package render

import (
	"github.com/dmitrymomot/appcore/core/bridge"
	"github.com/dmitrymomot/appcore/core/command"
	"github.com/dmitrymomot/appcore/core/request"
)

// Render asks the shell to fetch the view model and redraw. It is a
// notification; the shell never resolves it.
type Render struct {
	request.Returns[struct{}]
}

// Notify sends Render from a task.
func Notify[E request.Effect, Ev any](ctx *command.Context[E, Ev]) {
	command.Notify[struct{}](ctx, Render{})
}

// Command returns a command that sends Render.
func Command[E request.Effect, Ev any]() *command.Command[E, Ev] {
	return command.NotifyShell[E, Ev, struct{}](Render{})
}

// Register adds the capability's operations to c.
func Register(c *bridge.Catalog) {
	bridge.Register[Render](c, "render")
}
