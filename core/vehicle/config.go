package vehicle

import (
	"fmt"
	"time"
)

const (
	// ManagerLocal makes vehicles report to the in-process manager.
	ManagerLocal = "local"
	// ManagerMQTT makes vehicles publish their reports over MQTT.
	ManagerMQTT = "mqtt"
)

// Config is the template used to build vehicles. The manager copies it and
// fills in ID for every vehicle it creates.
type Config struct {
	ID string `json:"id"`
	// ReportIntervalMS is the period of position reports. Zero disables
	// periodic reporting.
	ReportIntervalMS int64 `json:"report_interval_ms"`
	// Manager selects how reports reach the manager: "local" or "mqtt".
	Manager string `json:"manager"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.Manager == "" {
		c.Manager = ManagerLocal
	}
}

// ValidateTemplate checks every field except ID.
func (c Config) ValidateTemplate() error {
	if c.ReportIntervalMS < 0 {
		return fmt.Errorf("report_interval_ms must not be negative")
	}
	switch c.Manager {
	case "", ManagerLocal, ManagerMQTT:
	default:
		return fmt.Errorf("unknown manager %q", c.Manager)
	}
	return nil
}

// Validate checks the configuration of a concrete vehicle.
func (c Config) Validate() error {
	if c.ID == "" {
		return fmt.Errorf("id is required")
	}
	return c.ValidateTemplate()
}

// ReportInterval returns the reporting period.
func (c Config) ReportInterval() time.Duration {
	return time.Duration(c.ReportIntervalMS) * time.Millisecond
}

// WithID returns a copy of the template for vehicle id.
func (c Config) WithID(id string) Config {
	c.ID = id
	return c
}

// Endpoint returns the address under which vehicle id is reachable in process.
func Endpoint(id string) string { return "local:" + id }
