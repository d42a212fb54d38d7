package middleware

import (
	"fmt"
	"log/slog"

	"github.com/dmitrymomot/appcore/core/logger"
	"github.com/dmitrymomot/appcore/core/request"
)

// Log writes a debug record for every call through next and a warning for
// every failed resolve.
func Log[E request.Effect, Ev, VM any](next Layer[E, Ev, VM], l *slog.Logger) Layer[E, Ev, VM] {
	if l == nil {
		l = logger.Discard()
	}
	return &logged[E, Ev, VM]{next: next, logger: l}
}

type logged[E request.Effect, Ev, VM any] struct {
	next   Layer[E, Ev, VM]
	logger *slog.Logger
}

func (l *logged[E, Ev, VM]) ProcessEvent(ev Ev, cb EffectCallback[E]) []E {
	effects := l.next.ProcessEvent(ev, l.wrap(cb))
	l.logger.Debug("event processed",
		slog.String("event", fmt.Sprintf("%T", ev)),
		logger.Count("effects", len(effects)),
	)
	return effects
}

func (l *logged[E, Ev, VM]) Resolve(r request.Resolver, out any, cb EffectCallback[E]) ([]E, error) {
	effects, err := l.next.Resolve(r, out, l.wrap(cb))
	l.resolved(r, effects, err)
	return effects, err
}

func (l *logged[E, Ev, VM]) ResolveEncoded(r request.Resolver, decode func(dst any) error, cb EffectCallback[E]) ([]E, error) {
	effects, err := l.next.ResolveEncoded(r, decode, l.wrap(cb))
	l.resolved(r, effects, err)
	return effects, err
}

func (l *logged[E, Ev, VM]) ProcessTasks(cb EffectCallback[E]) []E {
	effects := l.next.ProcessTasks(l.wrap(cb))
	if len(effects) > 0 {
		l.logger.Debug("tasks processed", logger.Count("effects", len(effects)))
	}
	return effects
}

func (l *logged[E, Ev, VM]) View() VM {
	return l.next.View()
}

func (l *logged[E, Ev, VM]) Close() error {
	err := l.next.Close()
	l.logger.Debug("layer closed", logger.Error(err))
	return err
}

func (l *logged[E, Ev, VM]) resolved(r request.Resolver, effects []E, err error) {
	if err != nil {
		l.logger.Warn("resolve failed", slog.String("kind", r.Kind().String()), logger.Error(err))
		return
	}
	l.logger.Debug("request resolved",
		slog.String("kind", r.Kind().String()),
		logger.Count("effects", len(effects)),
	)
}

func (l *logged[E, Ev, VM]) wrap(cb EffectCallback[E]) EffectCallback[E] {
	if cb == nil {
		return nil
	}
	return func(effects []E) {
		l.logger.Debug("effects delivered", logger.Count("effects", len(effects)))
		cb(effects)
	}
}
