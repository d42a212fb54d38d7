// Package timer is the time capability: reading the clock, waiting for a
// duration and racing an operation against a timeout.
//
// The timer only ever lives in the shell. A task asks for a NotifyAfter and
// suspends until the shell resolves it; a Clear with the same ID makes the
// shell resolve it early with Cancelled set.
package timer

import (
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/appcore/core/bridge"
	"github.com/dmitrymomot/appcore/core/command"
	"github.com/dmitrymomot/appcore/core/request"
)

// ID identifies a timer so that it can be cleared.
type ID string

// NewID returns a fresh timer ID.
func NewID() ID {
	return ID(uuid.NewString())
}

// Now asks for the current time.
type Now struct {
	request.Returns[Instant]
}

// NotifyAfter asks the shell to resolve the request once Duration has
// elapsed.
type NotifyAfter struct {
	request.Returns[Response]
	ID       ID            `json:"id" cbor:"id"`
	Duration time.Duration `json:"duration" cbor:"duration"`
}

// Clear cancels the NotifyAfter with the same ID. It is a notification.
type Clear struct {
	request.Returns[struct{}]
	ID ID `json:"id" cbor:"id"`
}

// Instant is a point in time as nanoseconds since the Unix epoch.
type Instant struct {
	UnixNano int64 `json:"unix_nano" cbor:"unix_nano"`
}

// InstantOf converts t.
func InstantOf(t time.Time) Instant {
	return Instant{UnixNano: t.UnixNano()}
}

// Time converts i back to a time.Time.
func (i Instant) Time() time.Time {
	return time.Unix(0, i.UnixNano)
}

// Response resolves a NotifyAfter.
type Response struct {
	ID        ID   `json:"id" cbor:"id"`
	Cancelled bool `json:"cancelled,omitempty" cbor:"cancelled,omitempty"`
}

// Register adds the capability's operations to c.
func Register(c *bridge.Catalog) {
	bridge.Register[Now](c, "timer.now")
	bridge.Register[NotifyAfter](c, "timer.notify_after")
	bridge.Register[Clear](c, "timer.clear")
}

// CurrentTime asks the shell for the current time.
func CurrentTime[E request.Effect, Ev any](ctx *command.Context[E, Ev]) time.Time {
	return command.Request[Instant](ctx, Now{}).Time()
}

// Sleep suspends the task for d.
func Sleep[E request.Effect, Ev any](ctx *command.Context[E, Ev], d time.Duration) {
	SleepWithID(ctx, NewID(), d)
}

// SleepWithID suspends the task for d on the timer id. It returns false if the
// timer was cleared, by sending Clear{ID: id} from elsewhere, before it
// elapsed. An id may be reused once its previous sleep has returned.
func SleepWithID[E request.Effect, Ev any](ctx *command.Context[E, Ev], id ID, d time.Duration) bool {
	return !command.Request[Response](ctx, NotifyAfter{ID: id, Duration: d}).Cancelled
}

// WithTimeout runs fn in its own task and races it against a timer of d. If fn
// finishes first its result is returned with ok set and the timer is cleared.
// Otherwise fn's task is aborted and the zero value is returned.
//
// Example:
//
//	value, ok := timer.WithTimeout(ctx, 5*time.Second, func(ctx *Ctx) []byte {
//		v, _, _ := kv.Read(ctx, "count")
//		return v
//	})
func WithTimeout[T any, E request.Effect, Ev any](
	ctx *command.Context[E, Ev],
	d time.Duration,
	fn func(ctx *command.Context[E, Ev]) T,
) (result T, ok bool) {
	var out T
	work := ctx.Spawn(func(ctx *command.Context[E, Ev]) {
		out = fn(ctx)
	})

	id := NewID()
	expiry := ctx.Spawn(func(ctx *command.Context[E, Ev]) {
		command.Request[Response](ctx, NotifyAfter{ID: id, Duration: d})
	})

	if ctx.Select(work, expiry) == 0 {
		expiry.Abort()
		command.Notify[struct{}](ctx, Clear{ID: id})
		return out, true
	}

	work.Abort()
	return result, false
}
