package registry_test

import (
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/appcore/core/command"
	"github.com/dmitrymomot/appcore/core/registry"
	"github.com/dmitrymomot/appcore/core/request"
)

type count struct {
	request.Returns[int]
}

type ticks struct {
	request.Returns[string]
}

func TestRegister(t *testing.T) {
	t.Parallel()

	t.Run("notifications are not registered", func(t *testing.T) {
		t.Parallel()

		reg := registry.NewSequential()
		id, ok := reg.Register(request.NewNever(count{}))
		assert.False(t, ok)
		assert.Zero(t, id)
		assert.Zero(t, reg.Len())
	})

	t.Run("sequential ids start at one", func(t *testing.T) {
		t.Parallel()

		reg := registry.NewSequential()
		for want := registry.EffectID(1); want <= 3; want++ {
			id, ok := reg.Register(request.NewOnce(count{}, func(int) {}))
			require.True(t, ok)
			assert.Equal(t, want, id)
		}
		assert.Equal(t, 3, reg.Len())
	})

	t.Run("uuid ids are unique", func(t *testing.T) {
		t.Parallel()

		reg := registry.NewUUID()
		seen := make(map[uuid.UUID]bool)
		for range 50 {
			id, ok := reg.Register(request.NewOnce(count{}, func(int) {}))
			require.True(t, ok)
			assert.False(t, seen[id])
			seen[id] = true
		}
		assert.Equal(t, 50, reg.Len())
	})
}

func TestResume_Once(t *testing.T) {
	t.Parallel()

	t.Run("resolves at most once", func(t *testing.T) {
		t.Parallel()

		reg := registry.NewSequential()
		var got []int
		id, _ := reg.Register(request.NewOnce(count{}, func(n int) { got = append(got, n) }))

		require.NoError(t, reg.ResumeValue(id, 1))
		assert.False(t, reg.Contains(id))

		err := reg.ResumeValue(id, 2)
		assert.ErrorIs(t, err, registry.ErrNotFound)
		assert.Equal(t, []int{1}, got)
	})

	t.Run("concurrent resumes race for one success", func(t *testing.T) {
		t.Parallel()

		reg := registry.NewUUID()
		var calls atomic.Int32
		id, _ := reg.Register(request.NewOnce(count{}, func(int) { calls.Add(1) }))

		var (
			wg        sync.WaitGroup
			successes atomic.Int32
		)
		for i := range 16 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if reg.ResumeValue(id, i) == nil {
					successes.Add(1)
				}
			}()
		}
		wg.Wait()

		assert.EqualValues(t, 1, successes.Load())
		assert.EqualValues(t, 1, calls.Load())
		assert.Zero(t, reg.Len())
	})

	t.Run("bad output keeps the request", func(t *testing.T) {
		t.Parallel()

		reg := registry.NewSequential()
		var got int
		id, _ := reg.Register(request.NewOnce(count{}, func(n int) { got = n }))

		err := reg.ResumeEncoded(id, func(dst any) error {
			return json.Unmarshal([]byte(`"text"`), dst)
		})
		assert.ErrorIs(t, err, request.ErrDecodeOutput)
		assert.True(t, reg.Contains(id))

		err = reg.ResumeValue(id, "text")
		assert.ErrorIs(t, err, request.ErrOutputType)
		assert.True(t, reg.Contains(id))

		require.NoError(t, reg.ResumeEncoded(id, func(dst any) error {
			return json.Unmarshal([]byte(`7`), dst)
		}))
		assert.Equal(t, 7, got)
		assert.False(t, reg.Contains(id))
	})

	t.Run("unknown id", func(t *testing.T) {
		t.Parallel()

		reg := registry.NewUUID()
		err := reg.ResumeValue(uuid.New(), 1)
		assert.ErrorIs(t, err, registry.ErrNotFound)
	})
}

func TestResume_Many(t *testing.T) {
	t.Parallel()

	t.Run("resolves until the consumer is gone", func(t *testing.T) {
		t.Parallel()

		errGone := errors.New("gone")
		var got []string
		reg := registry.NewSequential()
		id, _ := reg.Register(request.NewMany(ticks{}, func(s string) error {
			if s == "stop" {
				return errGone
			}
			got = append(got, s)
			return nil
		}))

		for _, s := range []string{"a", "b", "c"} {
			require.NoError(t, reg.ResumeValue(id, s))
			assert.True(t, reg.Contains(id))
		}

		err := reg.ResumeValue(id, "stop")
		assert.ErrorIs(t, err, request.ErrFinished)
		assert.ErrorIs(t, err, errGone)
		assert.False(t, reg.Contains(id))

		assert.ErrorIs(t, reg.ResumeValue(id, "d"), registry.ErrNotFound)
		assert.Equal(t, []string{"a", "b", "c"}, got)
	})

	t.Run("aborted stream task is tolerated", func(t *testing.T) {
		t.Parallel()

		type taskCtx = command.Context[request.Effect, string]
		cmd := command.New(func(ctx *taskCtx) {
			stream := ctx.Spawn(func(ctx *taskCtx) {
				s := command.Subscribe(ctx, ticks{})
				for {
					v, ok := s.Next()
					if !ok {
						return
					}
					ctx.SendEvent(v)
				}
			})
			ctx.Spawn(func(ctx *taskCtx) {
				command.Request[int](ctx, count{})
				stream.Abort()
			})
		})

		reg := registry.NewUUID()
		var ids []uuid.UUID
		for _, eff := range cmd.Effects() {
			id, ok := reg.Register(eff)
			require.True(t, ok)
			ids = append(ids, id)
		}
		require.Len(t, ids, 2)
		streamID, controlID := ids[0], ids[1]

		require.NoError(t, reg.ResumeValue(streamID, "first"))
		assert.Equal(t, []string{"first"}, cmd.Events())

		require.NoError(t, reg.ResumeValue(controlID, 0))
		assert.Empty(t, cmd.Events())
		assert.True(t, cmd.IsDone())

		assert.NotPanics(t, func() {
			err := reg.ResumeValue(streamID, "second")
			assert.ErrorIs(t, err, request.ErrFinished)
		})
		assert.False(t, reg.Contains(streamID))
		assert.Zero(t, reg.Len())
		assert.Empty(t, cmd.Events())
	})
}

func TestResume_CallbackMayReenter(t *testing.T) {
	t.Parallel()

	reg := registry.NewSequential()
	var inner registry.EffectID
	outer, _ := reg.Register(request.NewOnce(count{}, func(int) {
		inner, _ = reg.Register(request.NewOnce(count{}, func(int) {}))
	}))

	require.NoError(t, reg.ResumeValue(outer, 1))
	assert.True(t, reg.Contains(inner))
	assert.Equal(t, 1, reg.Len())
}
