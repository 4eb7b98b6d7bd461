package ws

import (
	"fmt"
	"strings"
	"time"
)

// Config defines the observer gateway settings.
type Config struct {
	Addr           string   `json:"addr"`
	Path           string   `json:"path"`
	WriteTimeoutMS int      `json:"write_timeout_ms"`
	ReadLimitBytes int64    `json:"read_limit_bytes"`
	AllowedOrigins []string `json:"allowed_origins"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.Addr == "" {
		c.Addr = ":8081"
	}
	if c.Path == "" {
		c.Path = "/agents/manager"
	}
	if c.WriteTimeoutMS <= 0 {
		c.WriteTimeoutMS = 2000
	}
	if c.ReadLimitBytes <= 0 {
		c.ReadLimitBytes = 64 << 10
	}
}

// Validate checks mandatory fields.
func (c Config) Validate() error {
	if !strings.HasPrefix(c.Path, "/") {
		return fmt.Errorf("path must start with /")
	}
	return nil
}

// WriteTimeout returns the deadline applied to every write.
func (c Config) WriteTimeout() time.Duration {
	return time.Duration(c.WriteTimeoutMS) * time.Millisecond
}
