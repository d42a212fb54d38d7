package bridge_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/appcore/core/app"
	"github.com/dmitrymomot/appcore/core/bridge"
	"github.com/dmitrymomot/appcore/core/command"
	"github.com/dmitrymomot/appcore/core/middleware"
	"github.com/dmitrymomot/appcore/core/registry"
	"github.com/dmitrymomot/appcore/core/request"
)

type fetch struct {
	request.Returns[int]
	Key string `json:"key" cbor:"key"`
}

type redraw struct {
	request.Returns[struct{}]
}

type unnamed struct {
	request.Returns[struct{}]
}

type event struct {
	Kind string `json:"kind" cbor:"kind"`
	N    int    `json:"n,omitempty" cbor:"n,omitempty"`
}

type view struct {
	Count int `json:"count" cbor:"count"`
}

type counter struct{}

func (counter) Update(ev event, m *int) *command.Command[request.Effect, event] {
	switch ev.Kind {
	case "load":
		return command.RequestFromShell[request.Effect](fetch{Key: "count"}, func(n int) event {
			return event{Kind: "loaded", N: n}
		})
	case "loaded":
		*m = ev.N
		return command.NotifyShell[request.Effect, event, struct{}](redraw{})
	case "bogus":
		return command.NotifyShell[request.Effect, event, struct{}](unnamed{})
	case "mixed":
		return command.All(
			command.RequestFromShell[request.Effect](fetch{Key: "count"}, func(n int) event {
				return event{Kind: "loaded", N: n}
			}),
			command.NotifyShell[request.Effect, event, struct{}](unnamed{}),
		)
	}
	return nil
}

func (counter) View(m *int) view {
	return view{Count: *m}
}

func newLayer() middleware.Layer[request.Effect, event, view] {
	return middleware.FromCore[request.Effect, event, view](
		app.New[event, int, view, request.Effect](counter{}),
	)
}

func newCatalog() *bridge.Catalog {
	c := bridge.NewCatalog()
	bridge.Register[fetch](c, "fetch")
	bridge.Register[redraw](c, "redraw")
	return c
}

// wireRequest mirrors bridge.Request with the operation left undecoded.
type wireRequest struct {
	ID     []byte `json:"id" cbor:"id"`
	Effect struct {
		Capability string         `json:"capability" cbor:"capability"`
		Operation  map[string]any `json:"operation" cbor:"operation"`
	} `json:"effect" cbor:"effect"`
}

func decode(t *testing.T, f bridge.Format, data []byte) []wireRequest {
	t.Helper()
	var reqs []wireRequest
	require.NoError(t, f.Unmarshal(data, &reqs))
	return reqs
}

func encode(t *testing.T, f bridge.Format, v any) []byte {
	t.Helper()
	data, err := f.Marshal(v)
	require.NoError(t, err)
	return data
}

func TestBridge_RoundTrip(t *testing.T) {
	t.Parallel()

	for _, f := range []bridge.Format{bridge.JSON, bridge.CBOR} {
		t.Run(f.Name(), func(t *testing.T) {
			t.Parallel()

			b := bridge.New(newLayer(), newCatalog(), bridge.WithFormat(f))
			assert.Equal(t, f.Name(), b.Format().Name())

			out, err := b.Update(encode(t, f, event{Kind: "load"}))
			require.NoError(t, err)

			reqs := decode(t, f, out)
			require.Len(t, reqs, 1)
			assert.Equal(t, "fetch", reqs[0].Effect.Capability)
			assert.Equal(t, "count", reqs[0].Effect.Operation["key"])
			require.Len(t, reqs[0].ID, 16)
			assert.Equal(t, 1, b.Outstanding())

			out, err = b.Resolve(reqs[0].ID, encode(t, f, 42))
			require.NoError(t, err)
			reqs = decode(t, f, out)
			require.Len(t, reqs, 1)
			assert.Equal(t, "redraw", reqs[0].Effect.Capability)
			assert.Empty(t, reqs[0].ID)
			assert.Zero(t, b.Outstanding())

			data, err := b.View()
			require.NoError(t, err)
			var got view
			require.NoError(t, f.Unmarshal(data, &got))
			assert.Equal(t, view{Count: 42}, got)
		})
	}
}

func kindOf(t *testing.T, err error) bridge.ErrorKind {
	t.Helper()
	var be *bridge.Error
	require.ErrorAs(t, err, &be)
	return be.Kind
}

func TestBridge_Errors(t *testing.T) {
	t.Parallel()

	pending := func(t *testing.T) (*bridge.Bridge[event, view], []byte) {
		t.Helper()
		b := bridge.New(newLayer(), newCatalog())
		out, err := b.Update([]byte(`{"kind":"load"}`))
		require.NoError(t, err)
		reqs := decode(t, bridge.JSON, out)
		require.Len(t, reqs, 1)
		return b, reqs[0].ID
	}

	t.Run("malformed event", func(t *testing.T) {
		t.Parallel()

		b := bridge.New(newLayer(), newCatalog())
		assert.NotPanics(t, func() {
			_, err := b.Update([]byte(`{"kind":`))
			assert.Equal(t, bridge.KindDecodeEvent, kindOf(t, err))
		})
	})

	t.Run("malformed output keeps the request", func(t *testing.T) {
		t.Parallel()

		b, id := pending(t)
		_, err := b.Resolve(id, []byte(`"forty-two"`))
		assert.Equal(t, bridge.KindDecodeOutput, kindOf(t, err))
		assert.Equal(t, 1, b.Outstanding())

		_, err = b.Resolve(id, []byte(`42`))
		require.NoError(t, err)
	})

	t.Run("resolving twice", func(t *testing.T) {
		t.Parallel()

		b, id := pending(t)
		_, err := b.Resolve(id, []byte(`1`))
		require.NoError(t, err)

		_, err = b.Resolve(id, []byte(`2`))
		assert.Equal(t, bridge.KindUnknownEffect, kindOf(t, err))
		assert.ErrorIs(t, err, registry.ErrNotFound)
	})

	t.Run("unknown id", func(t *testing.T) {
		t.Parallel()

		b, _ := pending(t)
		id := uuid.New()
		_, err := b.Resolve(id[:], []byte(`1`))
		assert.Equal(t, bridge.KindUnknownEffect, kindOf(t, err))
	})

	t.Run("invalid id", func(t *testing.T) {
		t.Parallel()

		b, _ := pending(t)
		_, err := b.Resolve([]byte("short"), []byte(`1`))
		assert.Equal(t, bridge.KindUnknownEffect, kindOf(t, err))
		assert.ErrorIs(t, err, bridge.ErrInvalidID)
	})

	t.Run("operation missing from the catalog", func(t *testing.T) {
		t.Parallel()

		b := bridge.New(newLayer(), newCatalog())
		_, err := b.Update([]byte(`{"kind":"bogus"}`))
		assert.Equal(t, bridge.KindEncodeEffects, kindOf(t, err))
		assert.ErrorIs(t, err, bridge.ErrUnknownCapability)
	})

	t.Run("a failed batch registers nothing", func(t *testing.T) {
		t.Parallel()

		b := bridge.New(newLayer(), newCatalog())
		_, err := b.Update([]byte(`{"kind":"mixed"}`))
		assert.Equal(t, bridge.KindEncodeEffects, kindOf(t, err))
		assert.Zero(t, b.Outstanding())
	})
}

func TestBridge_Close(t *testing.T) {
	t.Parallel()

	b := bridge.New(newLayer(), newCatalog())
	out, err := b.Update([]byte(`{"kind":"load"}`))
	require.NoError(t, err)
	reqs := decode(t, bridge.JSON, out)
	require.Len(t, reqs, 1)
	require.Equal(t, 1, b.Outstanding())

	require.NoError(t, b.Close())
	assert.Zero(t, b.Outstanding())

	_, err = b.Resolve(reqs[0].ID, []byte(`3`))
	assert.Equal(t, bridge.KindUnknownEffect, kindOf(t, err))

	out, err = b.Update([]byte(`{"kind":"load"}`))
	require.NoError(t, err)
	assert.Empty(t, decode(t, bridge.JSON, out))
}

func TestBridge_ProcessEffects(t *testing.T) {
	t.Parallel()

	handled := middleware.HandleEffects(newLayer(), middleware.OperationHandler(
		func(_ context.Context, op fetch) (int, error) {
			return len(op.Key), nil
		},
	))
	b := bridge.New[event, view](handled, newCatalog())

	var (
		mu       sync.Mutex
		received [][]byte
	)
	b.ProcessEffects(func(requests []byte) {
		mu.Lock()
		received = append(received, requests)
		mu.Unlock()
	})

	out, err := b.Update([]byte(`{"kind":"load"}`))
	require.NoError(t, err)
	assert.Empty(t, decode(t, bridge.JSON, out))

	require.NoError(t, handled.Wait())
	mu.Lock()
	defer mu.Unlock()
	require.Len(t, received, 1)
	reqs := decode(t, bridge.JSON, received[0])
	require.Len(t, reqs, 1)
	assert.Equal(t, "redraw", reqs[0].Effect.Capability)

	data, err := b.View()
	require.NoError(t, err)
	assert.JSONEq(t, `{"count":5}`, string(data))
}

func TestNativeBridge(t *testing.T) {
	t.Parallel()

	b := bridge.NewNative(newLayer())
	reqs := b.Update(event{Kind: "load"})
	require.Len(t, reqs, 1)
	assert.Equal(t, registry.EffectID(1), reqs[0].ID)
	assert.Equal(t, fetch{Key: "count"}, reqs[0].Effect.Operation())

	_, err := b.Resolve(reqs[0].ID, "seven")
	var be *bridge.Error
	require.ErrorAs(t, err, &be)
	assert.Equal(t, bridge.KindDecodeOutput, be.Kind)

	next, err := b.Resolve(reqs[0].ID, 7)
	require.NoError(t, err)
	require.Len(t, next, 1)
	assert.Zero(t, next[0].ID)
	assert.Equal(t, redraw{}, next[0].Effect.Operation())
	assert.Equal(t, view{Count: 7}, b.View())
	assert.Zero(t, b.Outstanding())

	reqs = b.Update(event{Kind: "load"})
	require.Len(t, reqs, 1)
	require.NoError(t, b.Close())
	assert.Zero(t, b.Outstanding())
	_, err = b.Resolve(reqs[0].ID, 1)
	require.ErrorAs(t, err, &be)
	assert.Equal(t, bridge.KindUnknownEffect, be.Kind)
}

func TestCatalog(t *testing.T) {
	t.Parallel()

	c := newCatalog()
	assert.Equal(t, []string{"fetch", "redraw"}, c.Names())
	assert.Panics(t, func() { bridge.Register[fetch](c, "other") })
	assert.Panics(t, func() { bridge.Register[unnamed](c, "fetch") })

	_, err := c.Name(unnamed{})
	assert.ErrorIs(t, err, bridge.ErrUnknownCapability)
}

func TestConfig(t *testing.T) {
	t.Parallel()

	t.Run("known format", func(t *testing.T) {
		t.Parallel()

		cfg := bridge.Config{Format: "cbor"}
		require.NoError(t, cfg.Validate())
		b := bridge.New(newLayer(), newCatalog(), bridge.WithConfig(cfg))
		assert.Equal(t, bridge.CBOR, b.Format())
	})

	t.Run("unknown format is reported", func(t *testing.T) {
		t.Parallel()

		cfg := bridge.Config{Format: "xml"}
		assert.ErrorIs(t, cfg.Validate(), bridge.ErrUnknownFormat)

		var buf bytes.Buffer
		b := bridge.New(newLayer(), newCatalog(),
			bridge.WithConfig(cfg),
			bridge.WithLogger(slog.New(slog.NewTextHandler(&buf, nil))),
		)
		assert.Equal(t, bridge.JSON, b.Format())
		assert.Contains(t, buf.String(), "invalid bridge config")
		assert.Contains(t, buf.String(), "xml")
	})
}

func TestFormatByName(t *testing.T) {
	t.Parallel()

	f, err := bridge.FormatByName("CBOR")
	require.NoError(t, err)
	assert.Equal(t, bridge.CBOR, f)

	_, err = bridge.FormatByName("xml")
	assert.ErrorIs(t, err, bridge.ErrUnknownFormat)
}

func TestEnvelope(t *testing.T) {
	t.Parallel()

	env := bridge.Envelope(&bridge.Error{Kind: bridge.KindDecodeEvent, Err: errors.New("bad")})
	assert.Equal(t, bridge.ErrorEnvelope{Kind: bridge.KindDecodeEvent, Message: "bad"}, env)

	env = bridge.Envelope(errors.New("other"))
	assert.Equal(t, bridge.KindResolveFailed, env.Kind)
}
