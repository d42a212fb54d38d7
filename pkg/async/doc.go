// Package async runs work on background goroutines and hands back futures.
//
// A Future carries the result of one computation:
//
//	f := async.Async(ctx, key, func(ctx context.Context, key string) (string, error) {
//		return store.Get(ctx, key)
//	})
//	value, err := f.Await()
//
// A Group tracks every future started through it, so the owner can wait for
// all background work, including work started while waiting:
//
//	var g async.Group
//	g.Go(ctx, func(ctx context.Context) error { return handle(ctx) })
//	err := g.Wait()
//
// A context that is already cancelled when the goroutine starts short-circuits
// the computation with the context's error.
package async
