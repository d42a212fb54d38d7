// Package logger provides structured logging helpers built on Go's standard slog
// package.
//
// Every component in appcore accepts a *slog.Logger through a WithLogger option and
// defaults to Discard, so nothing is written unless the embedding application opts in.
// The attribute helpers in this package keep record keys consistent across the
// executor, the core, the middleware layers and the bridges.
//
// # Basic Usage
//
//	import "github.com/dmitrymomot/appcore/core/logger"
//
//	log := logger.New(logger.WithConfig(logger.Config{Level: "debug", Format: "json"}))
//
//	log.Debug("effect registered",
//		logger.EffectID(id),
//		logger.Operation(op),
//		logger.Capability("kv"),
//	)
//
// # Nil Safety
//
// Helpers that take an error or an arbitrary value return an empty slog.Attr for nil
// input, which slog silently drops:
//
//	log.Error("resolve failed", logger.Error(err)) // safe when err == nil
//
// # Configuration
//
// Config carries env tags and can be loaded with core/config:
//
//	var cfg logger.Config
//	config.MustLoad(&cfg) // APPCORE_LOG_LEVEL, APPCORE_LOG_FORMAT, APPCORE_LOG_COMPONENT
package logger
