// Package redis connects to Redis and backs the kv capability with it.
//
// Connect creates a client from a Config, retrying with exponential backoff
// until a ping succeeds; Healthcheck wraps a ping for readiness probes. Store
// implements kv.Store on top of a client so a shell can serve kv requests from
// Redis:
//
//	var cfg redis.Config
//	config.MustLoad(&cfg)
//
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer client.Close()
//
//	store := redis.NewStore(client, redis.WithKeyPrefix(cfg.KeyPrefix), redis.WithScanBatchSize(cfg.ScanBatchSize))
//	layer := middleware.HandleEffects(middleware.FromCore[request.Effect, Event, ViewModel](core), kv.Handler(store))
//
// Both redis:// and rediss:// (TLS) URLs are accepted.
//
// # Errors
//
//   - ErrFailedToParseRedisConnString: the connection URL is malformed
//   - ErrRedisNotReady: no ping succeeded within the retry budget
//   - ErrEmptyConnectionURL: no connection URL was configured
//   - ErrHealthcheckFailed: a health check ping failed
//
// Store methods return go-redis errors wrapped with the failing operation.
package redis
