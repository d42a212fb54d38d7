package bridge

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/dmitrymomot/appcore/core/logger"
	"github.com/dmitrymomot/appcore/core/middleware"
	"github.com/dmitrymomot/appcore/core/registry"
	"github.com/dmitrymomot/appcore/core/request"
)

// Request is one outgoing effect. ID is empty for notifications, which are
// never resolved.
type Request struct {
	ID     []byte    `json:"id,omitempty" cbor:"id,omitempty"`
	Effect EffectFFI `json:"effect" cbor:"effect"`
}

// Option configures a Bridge or NativeBridge.
type Option func(*options)

type options struct {
	format Format
	logger *slog.Logger
	// configErr is reported once the logger is known.
	configErr error
}

// WithFormat sets the serialization format. The default is JSON.
func WithFormat(f Format) Option {
	return func(o *options) {
		if f != nil {
			o.format = f
		}
	}
}

// WithConfig picks the format named in cfg. An unknown name keeps the
// current format and is logged as a warning; use Config.Validate to reject it
// up front.
func WithConfig(cfg Config) Option {
	return func(o *options) {
		f, err := FormatByName(cfg.Format)
		if err != nil {
			o.configErr = err
			return
		}
		o.format = f
		o.configErr = nil
	}
}

// WithLogger sets the logger for failures that cannot be returned to a caller,
// such as encoding effects produced in the background.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

func newOptions(opts []Option) options {
	o := options{format: JSON, logger: logger.Discard()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.configErr != nil {
		o.logger.Warn("invalid bridge config, keeping format",
			slog.String("format", o.format.Name()),
			logger.Error(o.configErr),
		)
	}
	return o
}

// Bridge exposes a Layer to a shell through serialized values. Events,
// outputs, effects and the view all cross as bytes in the configured format.
// Requests are identified by random UUIDs.
//
// A Bridge never panics on malformed shell input; every such failure is an
// *Error.
type Bridge[Ev, VM any] struct {
	layer    middleware.Layer[request.Effect, Ev, VM]
	catalog  *Catalog
	registry *registry.Registry[uuid.UUID]
	format   Format
	logger   *slog.Logger

	mu       sync.RWMutex
	onEffect func([]byte)
}

// New creates a Bridge over layer. catalog must contain every operation type
// the application can emit.
func New[Ev, VM any](layer middleware.Layer[request.Effect, Ev, VM], catalog *Catalog, opts ...Option) *Bridge[Ev, VM] {
	o := newOptions(opts)
	return &Bridge[Ev, VM]{
		layer:    layer,
		catalog:  catalog,
		registry: registry.NewUUID(registry.WithLogger(o.logger)),
		format:   o.format,
		logger:   o.logger,
	}
}

// Format returns the bridge's serialization format.
func (b *Bridge[Ev, VM]) Format() Format {
	return b.format
}

// Update decodes an event, processes it and returns the encoded requests.
func (b *Bridge[Ev, VM]) Update(event []byte) ([]byte, error) {
	var ev Ev
	if err := b.format.Unmarshal(event, &ev); err != nil {
		return nil, &Error{Kind: KindDecodeEvent, Err: err}
	}
	return b.encode(b.layer.ProcessEvent(ev, b.deliver))
}

// Resolve decodes output for the request with the given id and returns the
// encoded requests that follow from it.
func (b *Bridge[Ev, VM]) Resolve(id, output []byte) ([]byte, error) {
	uid, err := uuid.FromBytes(id)
	if err != nil {
		return nil, &Error{Kind: KindUnknownEffect, Err: errors.Join(ErrInvalidID, err)}
	}

	var effects []request.Effect
	err = b.registry.Resume(uid, func(r request.Resolver) error {
		var err error
		effects, err = b.layer.ResolveEncoded(r, func(dst any) error {
			return b.format.Unmarshal(output, dst)
		}, b.deliver)
		return err
	})
	if err != nil {
		return nil, resolveError(err)
	}
	return b.encode(effects)
}

// View returns the encoded view model.
func (b *Bridge[Ev, VM]) View() ([]byte, error) {
	data, err := b.format.Marshal(b.layer.View())
	if err != nil {
		return nil, &Error{Kind: KindEncodeView, Err: err}
	}
	return data, nil
}

// ProcessEffects registers fn to receive requests produced in the background,
// after the call that caused them has returned. fn may be called from any
// goroutine. Passing nil unregisters it.
func (b *Bridge[Ev, VM]) ProcessEffects(fn func(requests []byte)) {
	b.mu.Lock()
	b.onEffect = fn
	b.mu.Unlock()
}

// Outstanding returns the number of requests waiting for the shell.
func (b *Bridge[Ev, VM]) Outstanding() int {
	return b.registry.Len()
}

// Close closes the layer below, which aborts every running task, and forgets
// the outstanding requests. Resolving them afterwards fails with
// KindUnknownEffect.
func (b *Bridge[Ev, VM]) Close() error {
	b.ProcessEffects(nil)
	err := b.layer.Close()
	b.registry.Clear()
	return err
}

func (b *Bridge[Ev, VM]) deliver(effects []request.Effect) {
	data, err := b.encode(effects)
	if err != nil {
		b.logger.Error("failed to encode background effects", logger.Error(err))
		return
	}

	b.mu.RLock()
	fn := b.onEffect
	b.mu.RUnlock()
	if fn == nil {
		b.logger.Warn("background effects dropped, no effect callback registered",
			logger.Count("effects", len(effects)),
		)
		return
	}
	fn(data)
}

func (b *Bridge[Ev, VM]) encode(effects []request.Effect) ([]byte, error) {
	requests := make([]Request, 0, len(effects))
	for _, eff := range effects {
		ffi, err := b.catalog.Project(eff)
		if err != nil {
			return nil, &Error{Kind: KindEncodeEffects, Err: err}
		}
		requests = append(requests, Request{Effect: ffi})
	}
	// Register only once every effect is known to the catalog, so a failed
	// batch leaves nothing behind that the shell could never resolve.
	for i, eff := range effects {
		if id, ok := b.registry.Register(eff); ok {
			requests[i].ID = id[:]
		}
	}

	data, err := b.format.Marshal(requests)
	if err != nil {
		return nil, &Error{Kind: KindEncodeEffects, Err: err}
	}
	return data, nil
}

func resolveError(err error) error {
	switch {
	case errors.Is(err, registry.ErrNotFound):
		return &Error{Kind: KindUnknownEffect, Err: err}
	case errors.Is(err, request.ErrDecodeOutput), errors.Is(err, request.ErrOutputType):
		return &Error{Kind: KindDecodeOutput, Err: err}
	default:
		return &Error{Kind: KindResolveFailed, Err: err}
	}
}
