package kv

import (
	"context"

	"github.com/dmitrymomot/appcore/core/middleware"
)

// Handler resolves kv operations in-process against store. Store errors are
// returned to the task in Result.Error rather than failing the request.
func Handler(store Store) middleware.EffectHandler {
	return middleware.Handlers(
		middleware.OperationHandler(func(ctx context.Context, op Get) (Result, error) {
			v, found, err := store.Get(ctx, op.Key)
			return Result{Value: v, Found: found, Error: errString(err)}, nil
		}),
		middleware.OperationHandler(func(ctx context.Context, op Set) (Result, error) {
			prev, err := store.Set(ctx, op.Key, op.Value)
			return Result{Previous: prev, Error: errString(err)}, nil
		}),
		middleware.OperationHandler(func(ctx context.Context, op Delete) (Result, error) {
			prev, err := store.Delete(ctx, op.Key)
			return Result{Previous: prev, Error: errString(err)}, nil
		}),
		middleware.OperationHandler(func(ctx context.Context, op Exists) (Result, error) {
			found, err := store.Exists(ctx, op.Key)
			return Result{Found: found, Error: errString(err)}, nil
		}),
		middleware.OperationHandler(func(ctx context.Context, op ListKeys) (Result, error) {
			keys, next, err := store.ListKeys(ctx, op.Prefix, op.Cursor)
			return Result{Keys: keys, NextCursor: next, Error: errString(err)}, nil
		}),
	)
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
