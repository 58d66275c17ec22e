package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadFile reads an explicit configuration layer from a YAML file.
// An empty path yields an empty layer.
func LoadFile(path string) (Layer, error) {
	if path == "" {
		return Layer{}, nil
	}

	// #nosec G304
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return ParseLayer(data)
}

// ParseLayer parses YAML into a normalized layer.
func ParseLayer(data []byte) (Layer, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to unmarshal yaml: %w", err)
	}
	return NormalizeLayer(raw), nil
}
