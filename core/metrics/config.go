package metrics

import (
	"fmt"

	"github.com/kilianp07/fleetsim/core/factory"
)

// Config defines settings for metrics recorders.
type Config struct {
	Recorders []factory.ModuleConfig `json:"recorders"`
	// PrometheusAddr is the listen address of the /metrics endpoint. Empty
	// disables the endpoint.
	PrometheusAddr string `json:"prometheus_addr"`
}

// Validate checks that every recorder names a type.
func (c Config) Validate() error {
	for i, r := range c.Recorders {
		if r.Type == "" {
			return fmt.Errorf("recorders[%d]: type is required", i)
		}
	}
	return nil
}
