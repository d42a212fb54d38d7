package websocket

import "time"

// Config holds connection limits.
type Config struct {
	ReadBufferSize   int           `env:"APPCORE_WS_READ_BUFFER" envDefault:"1024"`
	WriteBufferSize  int           `env:"APPCORE_WS_WRITE_BUFFER" envDefault:"1024"`
	HandshakeTimeout time.Duration `env:"APPCORE_WS_HANDSHAKE_TIMEOUT" envDefault:"10s"`
	WriteTimeout     time.Duration `env:"APPCORE_WS_WRITE_TIMEOUT" envDefault:"10s"`
	MaxMessageSize   int64         `env:"APPCORE_WS_MAX_MESSAGE_SIZE" envDefault:"1048576"`
	OutboxSize       int           `env:"APPCORE_WS_OUTBOX_SIZE" envDefault:"64"`
	AllowAnyOrigin   bool          `env:"APPCORE_WS_ALLOW_ANY_ORIGIN" envDefault:"false"`
}

// DefaultConfig returns the values used when no Config is supplied.
func DefaultConfig() Config {
	return Config{
		ReadBufferSize:   1024,
		WriteBufferSize:  1024,
		HandshakeTimeout: 10 * time.Second,
		WriteTimeout:     10 * time.Second,
		MaxMessageSize:   1 << 20,
		OutboxSize:       64,
	}
}
