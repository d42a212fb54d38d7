package counter_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/appcore/app/counter"
	"github.com/dmitrymomot/appcore/core/capability/kv"
	"github.com/dmitrymomot/appcore/core/capability/render"
	"github.com/dmitrymomot/appcore/core/capability/timer"
	"github.com/dmitrymomot/appcore/core/middleware"
	"github.com/dmitrymomot/appcore/core/request"
)

func find[Op any](t *testing.T, effects []request.Effect) (request.Effect, Op) {
	t.Helper()
	for _, eff := range effects {
		if op, ok := eff.Operation().(Op); ok {
			return eff, op
		}
	}
	var zero Op
	t.Fatalf("no %T among %d effects", zero, len(effects))
	return nil, zero
}

func has[Op any](effects []request.Effect) bool {
	for _, eff := range effects {
		if _, ok := eff.Operation().(Op); ok {
			return true
		}
	}
	return false
}

func TestIncrementAndDecrement(t *testing.T) {
	t.Parallel()

	core := counter.NewCore(counter.DefaultConfig())

	effects := core.ProcessEvent(counter.Event{Type: counter.Increment})
	require.Len(t, effects, 2)
	_, set := find[kv.Set](t, effects)
	assert.Equal(t, kv.Set{Key: "counter", Value: []byte("1")}, set)
	assert.True(t, has[render.Render](effects))

	core.ProcessEvent(counter.Event{Type: counter.Increment})
	effects = core.ProcessEvent(counter.Event{Type: counter.Decrement})
	_, set = find[kv.Set](t, effects)
	assert.Equal(t, []byte("1"), set.Value)

	assert.Equal(t, counter.View{Count: 1, Label: "Count is 1"}, core.View())
}

func TestReset(t *testing.T) {
	t.Parallel()

	core := counter.NewCore(counter.DefaultConfig())
	core.ProcessEvent(counter.Event{Type: counter.Increment})

	effects := core.ProcessEvent(counter.Event{Type: counter.Reset})
	_, del := find[kv.Delete](t, effects)
	assert.Equal(t, "counter", del.Key)
	assert.Zero(t, core.View().Count)
}

func TestLoad(t *testing.T) {
	t.Parallel()

	t.Run("stored value", func(t *testing.T) {
		t.Parallel()

		core := counter.NewCore(counter.DefaultConfig())
		effects := core.ProcessEvent(counter.Event{Type: counter.Load})
		require.Len(t, effects, 3)
		assert.True(t, core.View().Loading)

		get, op := find[kv.Get](t, effects)
		assert.Equal(t, "counter", op.Key)
		_, after := find[timer.NotifyAfter](t, effects)
		assert.Equal(t, 5*time.Second, after.Duration)

		next, err := core.Resolve(get, kv.Result{Value: []byte("41"), Found: true})
		require.NoError(t, err)
		_, cleared := find[timer.Clear](t, next)
		assert.Equal(t, after.ID, cleared.ID)
		assert.True(t, has[render.Render](next))

		assert.Equal(t, counter.View{Count: 41, Label: "Count is 41"}, core.View())
	})

	t.Run("timeout", func(t *testing.T) {
		t.Parallel()

		core := counter.NewCore(counter.DefaultConfig())
		effects := core.ProcessEvent(counter.Event{Type: counter.Load})
		notify, after := find[timer.NotifyAfter](t, effects)
		get, _ := find[kv.Get](t, effects)

		next, err := core.Resolve(notify, timer.Response{ID: after.ID})
		require.NoError(t, err)
		assert.True(t, has[render.Render](next))

		view := core.View()
		assert.False(t, view.Loading)
		assert.Equal(t, "load timed out", view.Error)

		next, err = core.Resolve(get, kv.Result{Value: []byte("7"), Found: true})
		require.NoError(t, err)
		assert.Empty(t, next)
		assert.Zero(t, core.View().Count)
	})

	t.Run("invalid stored value", func(t *testing.T) {
		t.Parallel()

		core := counter.NewCore(counter.DefaultConfig())
		effects := core.ProcessEvent(counter.Event{Type: counter.Load})
		get, _ := find[kv.Get](t, effects)

		_, err := core.Resolve(get, kv.Result{Value: []byte("seven"), Found: true})
		require.NoError(t, err)
		assert.Contains(t, core.View().Error, "not a number")
	})

	t.Run("store error", func(t *testing.T) {
		t.Parallel()

		core := counter.NewCore(counter.DefaultConfig())
		effects := core.ProcessEvent(counter.Event{Type: counter.Load})
		get, _ := find[kv.Get](t, effects)

		_, err := core.Resolve(get, kv.Result{Error: "connection refused"})
		require.NoError(t, err)
		assert.Contains(t, core.View().Error, "connection refused")
	})
}

func TestWatch(t *testing.T) {
	t.Parallel()

	core := counter.NewCore(counter.Config{Key: "counter", LoadTimeout: time.Second, WatchInterval: time.Minute})

	effects := core.ProcessEvent(counter.Event{Type: counter.StartWatch})
	require.Len(t, effects, 2)
	assert.True(t, core.View().Watching)
	assert.Empty(t, core.ProcessEvent(counter.Event{Type: counter.StartWatch}))

	for want := int64(1); want <= 3; want++ {
		notify, after := find[timer.NotifyAfter](t, effects)
		assert.Equal(t, time.Minute, after.Duration)

		var err error
		effects, err = core.Resolve(notify, timer.Response{ID: after.ID})
		require.NoError(t, err)
		assert.Equal(t, want, core.View().Count)
	}

	pending, after := find[timer.NotifyAfter](t, effects)
	effects = core.ProcessEvent(counter.Event{Type: counter.StopWatch})
	assert.True(t, has[render.Render](effects))
	_, cleared := find[timer.Clear](t, effects)
	assert.Equal(t, after.ID, cleared.ID)
	assert.False(t, core.View().Watching)

	next, err := core.Resolve(pending, timer.Response{ID: after.ID})
	require.NoError(t, err)
	assert.Empty(t, next)
	assert.EqualValues(t, 3, core.View().Count)
}

func TestWithHandlers(t *testing.T) {
	t.Parallel()

	store := kv.NewMemoryStore()
	layer := middleware.HandleEffects(
		middleware.FromCore[request.Effect, counter.Event, counter.View](counter.NewCore(counter.DefaultConfig())),
		kv.Handler(store),
	)

	for range 3 {
		effects := layer.ProcessEvent(counter.Event{Type: counter.Increment}, nil)
		require.Len(t, effects, 1)
		assert.Equal(t, render.Render{}, effects[0].Operation())
	}
	require.NoError(t, layer.Wait())

	value, found, err := store.Get(context.Background(), "counter")
	require.NoError(t, err)
	assert.True(t, found)
	assert.NotEmpty(t, value)
}

func TestCatalog(t *testing.T) {
	t.Parallel()

	names := counter.Catalog().Names()
	assert.Contains(t, names, "render")
	assert.Contains(t, names, "kv.get")
	assert.Contains(t, names, "timer.notify_after")
}
