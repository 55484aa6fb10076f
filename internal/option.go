package internal

// Option is a functional option for assembling the Margin runtime; Run and
// RunMCP both consume the same option set.
type Option func(*application)

type application struct {
	config *Config
}

// WithConfig sets the loaded application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}
