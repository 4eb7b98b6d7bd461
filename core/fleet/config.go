package fleet

import (
	"fmt"
	"time"

	"github.com/kilianp07/fleetsim/core/vehicle"
)

// Config holds the manager settings.
type Config struct {
	// Vehicle is the base template every created vehicle is built from.
	Vehicle vehicle.Config `json:"vehicle"`
	// FanOut bounds the number of concurrent deliveries of one report.
	FanOut int `json:"fan_out"`
	// DeliveryTimeoutMS bounds a single delivery to an observer. Zero leaves
	// the timeout to the transport.
	DeliveryTimeoutMS int `json:"delivery_timeout_ms"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.FanOut <= 0 {
		c.FanOut = 16
	}
	c.Vehicle.SetDefaults()
}

// Validate checks the base vehicle template and manager settings.
func (c Config) Validate() error {
	if c.DeliveryTimeoutMS < 0 {
		return fmt.Errorf("delivery_timeout_ms must not be negative")
	}
	if err := c.Vehicle.ValidateTemplate(); err != nil {
		return fmt.Errorf("vehicle template: %w", err)
	}
	return nil
}

// DeliveryTimeout returns the per-observer delivery timeout.
func (c Config) DeliveryTimeout() time.Duration {
	return time.Duration(c.DeliveryTimeoutMS) * time.Millisecond
}
