// Package health provides HTTP probes for processes that host shells, such as
// the WebSocket transport.
//
//   - Liveness: the process is running (no dependency checks)
//   - Readiness: every dependency check passes
//
// Usage:
//
//	mux.Handle("/shell", websocket.New(newSession))
//	mux.Handle("/health/live", health.Liveness())
//	mux.Handle("/health/ready", health.Readiness(log, redis.Healthcheck(client)))
//
// Dependency checks have the signature func(context.Context) error.
package health
