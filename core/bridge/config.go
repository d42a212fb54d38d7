package bridge

// Config selects the bridge's serialization format.
type Config struct {
	Format string `env:"APPCORE_BRIDGE_FORMAT" envDefault:"json"`
}

// Validate reports ErrUnknownFormat if Format names no known format.
func (c Config) Validate() error {
	_, err := FormatByName(c.Format)
	return err
}
