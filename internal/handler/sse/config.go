package sse

import "time"

// Config holds SSE connection settings
type Config struct {
	// KeepAliveInterval is how often a comment line is sent while the
	// model is thinking, so proxies don't drop an idle connection.
	KeepAliveInterval time.Duration
}

// DefaultConfig returns the default SSE configuration
func DefaultConfig() *Config {
	return &Config{
		KeepAliveInterval: 15 * time.Second,
	}
}
