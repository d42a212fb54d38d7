package middleware

import "github.com/dmitrymomot/appcore/core/request"

// MapEffect converts the effects leaving next with f. Effects for which f
// reports false are dropped: a lower layer has already taken care of them.
func MapEffect[E, E2, Ev, VM any](next Layer[E, Ev, VM], f func(E) (E2, bool)) Layer[E2, Ev, VM] {
	return &mapEffect[E, E2, Ev, VM]{next: next, f: f}
}

type mapEffect[E, E2, Ev, VM any] struct {
	next Layer[E, Ev, VM]
	f    func(E) (E2, bool)
}

func (m *mapEffect[E, E2, Ev, VM]) ProcessEvent(ev Ev, cb EffectCallback[E2]) []E2 {
	return m.mapAll(m.next.ProcessEvent(ev, m.wrap(cb)))
}

func (m *mapEffect[E, E2, Ev, VM]) Resolve(r request.Resolver, out any, cb EffectCallback[E2]) ([]E2, error) {
	effects, err := m.next.Resolve(r, out, m.wrap(cb))
	return m.mapAll(effects), err
}

func (m *mapEffect[E, E2, Ev, VM]) ResolveEncoded(r request.Resolver, decode func(dst any) error, cb EffectCallback[E2]) ([]E2, error) {
	effects, err := m.next.ResolveEncoded(r, decode, m.wrap(cb))
	return m.mapAll(effects), err
}

func (m *mapEffect[E, E2, Ev, VM]) ProcessTasks(cb EffectCallback[E2]) []E2 {
	return m.mapAll(m.next.ProcessTasks(m.wrap(cb)))
}

func (m *mapEffect[E, E2, Ev, VM]) View() VM {
	return m.next.View()
}

func (m *mapEffect[E, E2, Ev, VM]) Close() error {
	return m.next.Close()
}

func (m *mapEffect[E, E2, Ev, VM]) mapAll(effects []E) []E2 {
	if len(effects) == 0 {
		return nil
	}
	out := make([]E2, 0, len(effects))
	for _, eff := range effects {
		if mapped, ok := m.f(eff); ok {
			out = append(out, mapped)
		}
	}
	return out
}

func (m *mapEffect[E, E2, Ev, VM]) wrap(cb EffectCallback[E2]) EffectCallback[E] {
	if cb == nil {
		return nil
	}
	return func(effects []E) {
		if mapped := m.mapAll(effects); len(mapped) > 0 {
			cb(mapped)
		}
	}
}
