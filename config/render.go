package config

import (
	"encoding/json"

	"gopkg.in/yaml.v3"
)

const redacted = "****"

// secretKeys are masked by Render wherever they appear.
var secretKeys = map[string]bool{"password": true, "token": true}

// Render returns the configuration as YAML using the same keys Load reads.
// Secrets are masked.
func Render(c *Config) ([]byte, error) {
	raw, err := json.Marshal(c)
	if err != nil {
		return nil, err
	}
	var tree map[string]any
	if err := json.Unmarshal(raw, &tree); err != nil {
		return nil, err
	}
	redact(tree)
	return yaml.Marshal(tree)
}

func redact(v any) {
	switch t := v.(type) {
	case map[string]any:
		for k, child := range t {
			if s, ok := child.(string); ok && secretKeys[k] && s != "" {
				t[k] = redacted
				continue
			}
			redact(child)
		}
	case []any:
		for _, child := range t {
			redact(child)
		}
	}
}
