package render_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/appcore/core/bridge"
	"github.com/dmitrymomot/appcore/core/capability/render"
	"github.com/dmitrymomot/appcore/core/command"
	"github.com/dmitrymomot/appcore/core/request"
)

func TestCommand(t *testing.T) {
	t.Parallel()

	cmd := render.Command[request.Effect, string]()
	effects := cmd.Effects()
	require.Len(t, effects, 1)
	assert.Equal(t, render.Render{}, effects[0].Operation())
	assert.Equal(t, request.Never, effects[0].Kind())
	assert.True(t, cmd.IsDone())
}

func TestNotify(t *testing.T) {
	t.Parallel()

	cmd := command.New(func(ctx *command.Context[request.Effect, string]) {
		ctx.SendEvent("changed")
		render.Notify(ctx)
	})
	events, effects := cmd.Drain()
	assert.Equal(t, []string{"changed"}, events)
	require.Len(t, effects, 1)
	assert.Equal(t, render.Render{}, effects[0].Operation())
}

func TestRegister(t *testing.T) {
	t.Parallel()

	c := bridge.NewCatalog()
	render.Register(c)

	name, err := c.Name(render.Render{})
	require.NoError(t, err)
	assert.Equal(t, "render", name)
}
