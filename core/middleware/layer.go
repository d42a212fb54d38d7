package middleware

import "github.com/dmitrymomot/appcore/core/request"

// EffectCallback receives effects produced outside of the call that caused
// them. It may be invoked from any goroutine.
type EffectCallback[E any] func(effects []E)

// Layer is a Core, possibly wrapped in middleware.
type Layer[E, Ev, VM any] interface {
	ProcessEvent(ev Ev, cb EffectCallback[E]) []E
	Resolve(r request.Resolver, out any, cb EffectCallback[E]) ([]E, error)
	ResolveEncoded(r request.Resolver, decode func(dst any) error, cb EffectCallback[E]) ([]E, error)
	ProcessTasks(cb EffectCallback[E]) []E
	View() VM
	// Close stops the layer and everything below it. Outstanding requests
	// become inert.
	Close() error
}

// Core is the subset of app.Core a Layer is built on.
type Core[E, Ev, VM any] interface {
	ProcessEvent(ev Ev) []E
	Resolve(r request.Resolver, out any) ([]E, error)
	ResolveEncoded(r request.Resolver, decode func(dst any) error) ([]E, error)
	ProcessTasks() []E
	View() VM
	Close()
}

// FromCore adapts a Core to the Layer interface. A Core never produces effects
// on its own, so the callbacks are not used.
func FromCore[E, Ev, VM any](core Core[E, Ev, VM]) Layer[E, Ev, VM] {
	return coreLayer[E, Ev, VM]{core: core}
}

type coreLayer[E, Ev, VM any] struct {
	core Core[E, Ev, VM]
}

func (l coreLayer[E, Ev, VM]) ProcessEvent(ev Ev, _ EffectCallback[E]) []E {
	return l.core.ProcessEvent(ev)
}

func (l coreLayer[E, Ev, VM]) Resolve(r request.Resolver, out any, _ EffectCallback[E]) ([]E, error) {
	return l.core.Resolve(r, out)
}

func (l coreLayer[E, Ev, VM]) ResolveEncoded(r request.Resolver, decode func(dst any) error, _ EffectCallback[E]) ([]E, error) {
	return l.core.ResolveEncoded(r, decode)
}

func (l coreLayer[E, Ev, VM]) ProcessTasks(_ EffectCallback[E]) []E {
	return l.core.ProcessTasks()
}

func (l coreLayer[E, Ev, VM]) View() VM {
	return l.core.View()
}

func (l coreLayer[E, Ev, VM]) Close() error {
	l.core.Close()
	return nil
}
