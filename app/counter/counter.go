// Package counter is a small application built on appcore. It keeps a count,
// persists it through the kv capability, asks the shell to render after each
// change, loads the stored value under a timeout and can tick on its own.
//
// Shells run it with NewCore and name its operations with Catalog.
package counter

import (
	"errors"
	"strconv"
	"time"

	"github.com/dmitrymomot/appcore/core/app"
	"github.com/dmitrymomot/appcore/core/bridge"
	"github.com/dmitrymomot/appcore/core/capability/kv"
	"github.com/dmitrymomot/appcore/core/capability/render"
	"github.com/dmitrymomot/appcore/core/capability/timer"
	"github.com/dmitrymomot/appcore/core/command"
	"github.com/dmitrymomot/appcore/core/request"
)

// EventType names an Event.
type EventType string

const (
	Increment  EventType = "increment"
	Decrement  EventType = "decrement"
	Reset      EventType = "reset"
	Load       EventType = "load"
	Loaded     EventType = "loaded"
	Timeout    EventType = "timeout"
	Failed     EventType = "failed"
	StartWatch EventType = "start_watch"
	StopWatch  EventType = "stop_watch"
	Tick       EventType = "tick"
)

// Event is the counter's input. Count is set for Loaded, Error for Failed.
type Event struct {
	Type  EventType `json:"type" cbor:"type"`
	Count int64     `json:"count,omitempty" cbor:"count,omitempty"`
	Error string    `json:"error,omitempty" cbor:"error,omitempty"`
}

// Model is the counter state.
type Model struct {
	Count    int64
	Loading  bool
	Watching bool
	Error    string

	watch      command.AbortHandle
	watchTimer timer.ID
}

// View is what the shell renders.
type View struct {
	Count    int64  `json:"count" cbor:"count"`
	Label    string `json:"label" cbor:"label"`
	Loading  bool   `json:"loading,omitempty" cbor:"loading,omitempty"`
	Watching bool   `json:"watching,omitempty" cbor:"watching,omitempty"`
	Error    string `json:"error,omitempty" cbor:"error,omitempty"`
}

// Config tunes the counter.
type Config struct {
	Key           string        `env:"COUNTER_KEY" envDefault:"counter"`
	LoadTimeout   time.Duration `env:"COUNTER_LOAD_TIMEOUT" envDefault:"5s"`
	WatchInterval time.Duration `env:"COUNTER_WATCH_INTERVAL" envDefault:"1s"`
}

// DefaultConfig returns the defaults from the env tags.
func DefaultConfig() Config {
	return Config{Key: "counter", LoadTimeout: 5 * time.Second, WatchInterval: time.Second}
}

type (
	// Command is a counter command.
	Command = command.Command[request.Effect, Event]
	// Context is the context of a counter task.
	Context = command.Context[request.Effect, Event]
	// Core runs the counter.
	Core = app.Core[Event, Model, View, request.Effect]
)

var errInvalidCount = errors.New("counter: stored value is not a number")

// App implements app.App.
type App struct {
	cfg Config
}

// New creates the application.
func New(cfg Config) App {
	return App{cfg: cfg}
}

// NewCore creates a Core running the counter.
func NewCore(cfg Config, opts ...app.Option) *Core {
	return app.New[Event, Model, View, request.Effect](New(cfg), opts...)
}

// Catalog returns the operations the counter can request, by name.
func Catalog() *bridge.Catalog {
	c := bridge.NewCatalog()
	render.Register(c)
	kv.Register(c)
	timer.Register(c)
	return c
}

// Update implements app.App.
func (a App) Update(ev Event, m *Model) *Command {
	switch ev.Type {
	case Increment:
		m.Count++
		return command.All(a.save(m.Count), render.Command[request.Effect, Event]())

	case Decrement:
		m.Count--
		return command.All(a.save(m.Count), render.Command[request.Effect, Event]())

	case Reset:
		m.Count = 0
		m.Error = ""
		return command.All(a.forget(), render.Command[request.Effect, Event]())

	case Load:
		m.Loading = true
		return command.All(a.load(), render.Command[request.Effect, Event]())

	case Loaded:
		m.Count = ev.Count
		m.Loading = false
		m.Error = ""
		return render.Command[request.Effect, Event]()

	case Timeout:
		m.Loading = false
		m.Error = "load timed out"
		return render.Command[request.Effect, Event]()

	case Failed:
		m.Loading = false
		m.Error = ev.Error
		return render.Command[request.Effect, Event]()

	case StartWatch:
		if m.Watching {
			return nil
		}
		m.watchTimer = timer.NewID()
		watch := a.watch(m.watchTimer)
		m.watch = watch.AbortHandle()
		m.Watching = true
		return command.All(watch, render.Command[request.Effect, Event]())

	case StopWatch:
		if !m.Watching {
			return nil
		}
		m.watch.Abort()
		m.Watching = false
		return command.All(
			command.NotifyShell[request.Effect, Event, struct{}](timer.Clear{ID: m.watchTimer}),
			render.Command[request.Effect, Event](),
		)

	case Tick:
		m.Count++
		return render.Command[request.Effect, Event]()
	}
	return nil
}

// View implements app.App.
func (App) View(m *Model) View {
	return View{
		Count:    m.Count,
		Label:    "Count is " + strconv.FormatInt(m.Count, 10),
		Loading:  m.Loading,
		Watching: m.Watching,
		Error:    m.Error,
	}
}

func (a App) save(count int64) *Command {
	return command.New(func(ctx *Context) {
		if _, err := kv.Write(ctx, a.cfg.Key, []byte(strconv.FormatInt(count, 10))); err != nil {
			ctx.SendEvent(Event{Type: Failed, Error: err.Error()})
		}
	})
}

func (a App) forget() *Command {
	return command.New(func(ctx *Context) {
		if _, err := kv.Remove(ctx, a.cfg.Key); err != nil {
			ctx.SendEvent(Event{Type: Failed, Error: err.Error()})
		}
	})
}

type loadResult struct {
	count int64
	err   error
}

func (a App) load() *Command {
	return command.New(func(ctx *Context) {
		res, ok := timer.WithTimeout(ctx, a.cfg.LoadTimeout, func(ctx *Context) loadResult {
			value, found, err := kv.Read(ctx, a.cfg.Key)
			if err != nil || !found {
				return loadResult{err: err}
			}
			n, err := strconv.ParseInt(string(value), 10, 64)
			if err != nil {
				return loadResult{err: errors.Join(errInvalidCount, err)}
			}
			return loadResult{count: n}
		})

		switch {
		case !ok:
			ctx.SendEvent(Event{Type: Timeout})
		case res.err != nil:
			ctx.SendEvent(Event{Type: Failed, Error: res.err.Error()})
		default:
			ctx.SendEvent(Event{Type: Loaded, Count: res.count})
		}
	})
}

// watch ticks every WatchInterval on the timer id until aborted or until the
// timer is cleared.
func (a App) watch(id timer.ID) *Command {
	return command.New(func(ctx *Context) {
		for timer.SleepWithID(ctx, id, a.cfg.WatchInterval) {
			ctx.SendEvent(Event{Type: Tick})
		}
	})
}
