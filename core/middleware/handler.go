package middleware

import "context"

// EffectHandler resolves operations in-process instead of sending them to the
// shell.
type EffectHandler interface {
	// Handles reports whether the handler takes care of op.
	Handles(op any) bool
	// Handle performs op and delivers its output through resolve: never for a
	// notification, once for a request, any number of times for a stream.
	// Handle runs on a background goroutine; ctx is cancelled when the layer
	// is closed.
	Handle(ctx context.Context, op any, resolve func(out any) error) error
}

// OperationHandler handles every Op with fn and resolves the request with its
// result.
//
// Example:
//
//	h := middleware.OperationHandler(func(ctx context.Context, op kv.Get) (kv.Result, error) {
//		v, found, err := store.Get(ctx, op.Key)
//		return kv.Result{Value: v, Found: found}, err
//	})
func OperationHandler[Op, O any](fn func(ctx context.Context, op Op) (O, error)) EffectHandler {
	return operationHandler[Op, O](fn)
}

type operationHandler[Op, O any] func(ctx context.Context, op Op) (O, error)

func (h operationHandler[Op, O]) Handles(op any) bool {
	_, ok := op.(Op)
	return ok
}

func (h operationHandler[Op, O]) Handle(ctx context.Context, op any, resolve func(out any) error) error {
	out, err := h(ctx, op.(Op))
	if err != nil {
		return err
	}
	return resolve(out)
}

// NotificationHandler handles every Op with fn. Nothing is resolved.
func NotificationHandler[Op any](fn func(ctx context.Context, op Op) error) EffectHandler {
	return notificationHandler[Op](fn)
}

type notificationHandler[Op any] func(ctx context.Context, op Op) error

func (h notificationHandler[Op]) Handles(op any) bool {
	_, ok := op.(Op)
	return ok
}

func (h notificationHandler[Op]) Handle(ctx context.Context, op any, _ func(out any) error) error {
	return h(ctx, op.(Op))
}

// StreamHandler handles every Op with fn, which calls emit once per output.
// emit fails once the consuming task has gone away; fn should return then.
// Only emissions count against the layer's Concurrency, so a subscription may
// stay open indefinitely.
func StreamHandler[Op, O any](fn func(ctx context.Context, op Op, emit func(O) error) error) EffectHandler {
	return streamHandler[Op, O](fn)
}

type streamHandler[Op, O any] func(ctx context.Context, op Op, emit func(O) error) error

func (h streamHandler[Op, O]) Handles(op any) bool {
	_, ok := op.(Op)
	return ok
}

func (h streamHandler[Op, O]) Handle(ctx context.Context, op any, resolve func(out any) error) error {
	if s := slotFrom(ctx); s != nil {
		s.release()
	}
	return h(ctx, op.(Op), func(out O) error {
		return busy(ctx, func() error { return resolve(out) })
	})
}

// Handlers combines several handlers. The first one that handles an operation
// wins.
func Handlers(hs ...EffectHandler) EffectHandler {
	return handlers(hs)
}

type handlers []EffectHandler

func (hs handlers) Handles(op any) bool {
	return hs.find(op) != nil
}

func (hs handlers) Handle(ctx context.Context, op any, resolve func(out any) error) error {
	h := hs.find(op)
	if h == nil {
		return ErrUnhandled
	}
	return h.Handle(ctx, op, resolve)
}

func (hs handlers) find(op any) EffectHandler {
	for _, h := range hs {
		if h.Handles(op) {
			return h
		}
	}
	return nil
}
