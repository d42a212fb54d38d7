package middleware

// Config holds the settings of the effect-handling layer.
type Config struct {
	// Concurrency bounds how many handlers run at the same time.
	Concurrency int64 `env:"APPCORE_HANDLER_CONCURRENCY" envDefault:"16"`
}

// DefaultConfig returns the defaults used when no configuration is given.
func DefaultConfig() Config {
	return Config{Concurrency: 16}
}
