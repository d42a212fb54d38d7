// Package appcore is a framework for application cores with a unidirectional
// data flow. A core owns the application state and describes side effects as
// requests; a thin platform shell performs them and resolves the results back
// into the core. The core never does I/O itself, so the same core can run
// under a native UI, a WebSocket client or a test.
//
// The heart of the module is the command engine: a cooperative scheduler that
// runs tasks written as straight-line code, multiplexes many of them, pairs
// every request with its resolution, cancels whole trees of work and exposes
// everything to shells through a serialized request/response protocol.
//
// # Getting Documentation
//
//	go doc github.com/dmitrymomot/appcore/core/command
//	go doc -all github.com/dmitrymomot/appcore/core/bridge
//
// # Core Packages
//
//	github.com/dmitrymomot/appcore/core/executor          - Poll-based task scheduler with wakers
//	github.com/dmitrymomot/appcore/core/request           - Typed operations, effects and one-shot/stream resolution
//	github.com/dmitrymomot/appcore/core/command           - Commands, task contexts, join and abort handles, builders
//	github.com/dmitrymomot/appcore/core/registry          - Outstanding request registries keyed by UUID or sequential id
//	github.com/dmitrymomot/appcore/core/app               - Core: the update loop around an application's model
//	github.com/dmitrymomot/appcore/core/middleware        - Layers between the core and the shell (handlers, metrics, logging)
//	github.com/dmitrymomot/appcore/core/bridge            - Serialized (JSON/CBOR) and native bridges for shells
//	github.com/dmitrymomot/appcore/core/capability/render - Render notification
//	github.com/dmitrymomot/appcore/core/capability/kv     - Key-value storage capability with an in-memory store
//	github.com/dmitrymomot/appcore/core/capability/timer  - Time capability, sleeps and timeouts
//	github.com/dmitrymomot/appcore/core/config            - Type-safe environment variable loading
//	github.com/dmitrymomot/appcore/core/logger            - Structured logging built on slog
//	github.com/dmitrymomot/appcore/core/health            - HTTP liveness and readiness probes
//
// # Utility Packages
//
//	github.com/dmitrymomot/appcore/pkg/channel            - Unbounded non-blocking queues with wake-up hooks
//	github.com/dmitrymomot/appcore/pkg/async              - Futures and goroutine groups for background handlers
//
// # Integration Packages
//
//	github.com/dmitrymomot/appcore/integration/database/redis   - Redis connection and kv store
//	github.com/dmitrymomot/appcore/integration/shell/websocket  - WebSocket transport for the serialized bridge
//
// # Example Application
//
//	github.com/dmitrymomot/appcore/app/counter            - Counter using render, kv and timer
//
// # Quick Start
//
//	core := counter.NewCore(counter.DefaultConfig())
//	layer := middleware.HandleEffects(
//		middleware.FromCore[request.Effect, counter.Event, counter.View](core),
//		kv.Handler(kv.NewMemoryStore()),
//	)
//	b := bridge.New[counter.Event, counter.View](layer, counter.Catalog())
//
//	requests, err := b.Update([]byte(`{"type":"increment"}`))
package appcore
