package bridge

import (
	"sync"

	"github.com/dmitrymomot/appcore/core/middleware"
	"github.com/dmitrymomot/appcore/core/registry"
	"github.com/dmitrymomot/appcore/core/request"
)

// NativeRequest is an outgoing effect for an in-process shell. ID is zero for
// notifications.
type NativeRequest struct {
	ID     registry.EffectID
	Effect request.Effect
}

// NativeBridge is the typed counterpart of Bridge for shells living in the
// same process: nothing is serialized and requests are identified by
// sequential EffectIDs.
type NativeBridge[Ev, VM any] struct {
	layer    middleware.Layer[request.Effect, Ev, VM]
	registry *registry.Registry[registry.EffectID]

	mu       sync.RWMutex
	onEffect func([]NativeRequest)
}

// NewNative creates a NativeBridge over layer.
func NewNative[Ev, VM any](layer middleware.Layer[request.Effect, Ev, VM], opts ...Option) *NativeBridge[Ev, VM] {
	o := newOptions(opts)
	return &NativeBridge[Ev, VM]{
		layer:    layer,
		registry: registry.NewSequential(registry.WithLogger(o.logger)),
	}
}

// Update processes ev and returns the resulting requests.
func (b *NativeBridge[Ev, VM]) Update(ev Ev) []NativeRequest {
	return b.wrap(b.layer.ProcessEvent(ev, b.deliver))
}

// Resolve delivers out to the request with the given id.
func (b *NativeBridge[Ev, VM]) Resolve(id registry.EffectID, out any) ([]NativeRequest, error) {
	var effects []request.Effect
	err := b.registry.Resume(id, func(r request.Resolver) error {
		var err error
		effects, err = b.layer.Resolve(r, out, b.deliver)
		return err
	})
	if err != nil {
		return nil, resolveError(err)
	}
	return b.wrap(effects), nil
}

// View returns the view model.
func (b *NativeBridge[Ev, VM]) View() VM {
	return b.layer.View()
}

// ProcessEffects registers fn to receive requests produced in the background.
func (b *NativeBridge[Ev, VM]) ProcessEffects(fn func([]NativeRequest)) {
	b.mu.Lock()
	b.onEffect = fn
	b.mu.Unlock()
}

// Outstanding returns the number of requests waiting for the shell.
func (b *NativeBridge[Ev, VM]) Outstanding() int {
	return b.registry.Len()
}

// Close closes the layer below and forgets the outstanding requests.
func (b *NativeBridge[Ev, VM]) Close() error {
	b.ProcessEffects(nil)
	err := b.layer.Close()
	b.registry.Clear()
	return err
}

func (b *NativeBridge[Ev, VM]) deliver(effects []request.Effect) {
	requests := b.wrap(effects)

	b.mu.RLock()
	fn := b.onEffect
	b.mu.RUnlock()
	if fn != nil {
		fn(requests)
	}
}

func (b *NativeBridge[Ev, VM]) wrap(effects []request.Effect) []NativeRequest {
	requests := make([]NativeRequest, 0, len(effects))
	for _, eff := range effects {
		id, _ := b.registry.Register(eff)
		requests = append(requests, NativeRequest{ID: id, Effect: eff})
	}
	return requests
}
