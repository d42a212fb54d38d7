package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Config selects the handler built by New. Fields map to environment
// variables so it can be loaded with core/config.
type Config struct {
	Level  string `env:"APPCORE_LOG_LEVEL" envDefault:"info"`
	Format string `env:"APPCORE_LOG_FORMAT" envDefault:"text"`
	// Component is attached to every record when set.
	Component string `env:"APPCORE_LOG_COMPONENT"`
}

// Option configures New.
type Option func(*options)

type options struct {
	cfg    Config
	output io.Writer
}

// WithConfig applies a loaded Config.
func WithConfig(cfg Config) Option {
	return func(o *options) {
		o.cfg = cfg
	}
}

// WithOutput redirects log output. Defaults to os.Stderr.
func WithOutput(w io.Writer) Option {
	return func(o *options) {
		if w != nil {
			o.output = w
		}
	}
}

// New builds a slog.Logger from the given options.
//
// Example:
//
//	var cfg logger.Config
//	config.MustLoad(&cfg)
//	log := logger.New(logger.WithConfig(cfg))
func New(opts ...Option) *slog.Logger {
	o := &options{
		cfg:    Config{Level: "info", Format: "text"},
		output: os.Stderr,
	}
	for _, opt := range opts {
		opt(o)
	}

	handlerOpts := &slog.HandlerOptions{Level: ParseLevel(o.cfg.Level)}

	var h slog.Handler
	if strings.EqualFold(o.cfg.Format, "json") {
		h = slog.NewJSONHandler(o.output, handlerOpts)
	} else {
		h = slog.NewTextHandler(o.output, handlerOpts)
	}

	l := slog.New(h)
	if o.cfg.Component != "" {
		l = l.With(Component(o.cfg.Component))
	}
	return l
}

// Discard returns a logger that drops every record. Components use it as their
// default so logging stays opt-in.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// ParseLevel maps a level name to slog.Level. Unknown names map to Info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
