package middleware

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/dmitrymomot/appcore/core/request"
)

// Metrics are the collectors recorded by Instrument.
type Metrics struct {
	Events       prometheus.Counter
	Resolves     *prometheus.CounterVec
	Effects      *prometheus.CounterVec
	CallDuration *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with reg. A nil reg
// leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Events: factory.NewCounter(prometheus.CounterOpts{
			Name: "appcore_events_total",
			Help: "Events processed by the core",
		}),
		Resolves: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "appcore_resolves_total",
			Help: "Request resolutions by result",
		}, []string{"result"}),
		Effects: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "appcore_effects_total",
			Help: "Effects handed to the shell by operation type",
		}, []string{"operation"}),
		CallDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "appcore_call_duration_seconds",
			Help:    "Duration of calls into the core",
			Buckets: []float64{0.00001, 0.0001, 0.001, 0.01, 0.1, 1},
		}, []string{"call"}),
	}
}

// Instrument records metrics about every call through next.
func Instrument[E request.Effect, Ev, VM any](next Layer[E, Ev, VM], m *Metrics) Layer[E, Ev, VM] {
	return &instrumented[E, Ev, VM]{next: next, m: m}
}

type instrumented[E request.Effect, Ev, VM any] struct {
	next Layer[E, Ev, VM]
	m    *Metrics
}

func (l *instrumented[E, Ev, VM]) ProcessEvent(ev Ev, cb EffectCallback[E]) []E {
	defer l.observe("process_event", time.Now())
	l.m.Events.Inc()
	return l.count(l.next.ProcessEvent(ev, l.wrap(cb)))
}

func (l *instrumented[E, Ev, VM]) Resolve(r request.Resolver, out any, cb EffectCallback[E]) ([]E, error) {
	defer l.observe("resolve", time.Now())
	effects, err := l.next.Resolve(r, out, l.wrap(cb))
	l.resolved(err)
	return l.count(effects), err
}

func (l *instrumented[E, Ev, VM]) ResolveEncoded(r request.Resolver, decode func(dst any) error, cb EffectCallback[E]) ([]E, error) {
	defer l.observe("resolve", time.Now())
	effects, err := l.next.ResolveEncoded(r, decode, l.wrap(cb))
	l.resolved(err)
	return l.count(effects), err
}

func (l *instrumented[E, Ev, VM]) ProcessTasks(cb EffectCallback[E]) []E {
	defer l.observe("process_tasks", time.Now())
	return l.count(l.next.ProcessTasks(l.wrap(cb)))
}

func (l *instrumented[E, Ev, VM]) View() VM {
	defer l.observe("view", time.Now())
	return l.next.View()
}

func (l *instrumented[E, Ev, VM]) Close() error {
	return l.next.Close()
}

func (l *instrumented[E, Ev, VM]) observe(call string, start time.Time) {
	l.m.CallDuration.WithLabelValues(call).Observe(time.Since(start).Seconds())
}

func (l *instrumented[E, Ev, VM]) resolved(err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	l.m.Resolves.WithLabelValues(result).Inc()
}

func (l *instrumented[E, Ev, VM]) count(effects []E) []E {
	for _, eff := range effects {
		l.m.Effects.WithLabelValues(request.Describe(eff.Operation())).Inc()
	}
	return effects
}

func (l *instrumented[E, Ev, VM]) wrap(cb EffectCallback[E]) EffectCallback[E] {
	if cb == nil {
		return nil
	}
	return func(effects []E) {
		cb(l.count(effects))
	}
}
