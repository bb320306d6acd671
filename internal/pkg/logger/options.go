package logger

// Option mutates a Config before the logger is built.
type Option func(*Config)

// WithLevel sets the log level.
func WithLevel(level string) Option {
	return func(c *Config) { c.Level = level }
}

// WithFormat sets the log format, json or console.
func WithFormat(format string) Option {
	return func(c *Config) { c.Format = format }
}

// WithOutput sets the log output, console, file or both.
func WithOutput(output string) Option {
	return func(c *Config) { c.Output = output }
}

// WithCaller toggles caller annotation.
func WithCaller(enabled bool) Option {
	return func(c *Config) { c.EnableCaller = enabled }
}

// WithStacktrace toggles stacktraces on error-level entries.
func WithStacktrace(enabled bool) Option {
	return func(c *Config) { c.EnableStacktrace = enabled }
}

// NewWithOptions builds a logger from the default configuration plus options.
func NewWithOptions(opts ...Option) (*Logger, error) {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return New(cfg)
}

// Development returns a colorized debug-level console logger.
func Development() (*Logger, error) {
	return NewWithOptions(
		WithLevel("debug"),
		WithFormat("console"),
		WithOutput("console"),
		WithCaller(true),
		WithStacktrace(true),
	)
}
