package config

import (
	"fmt"
	"os"

	"github.com/srwicak/freelance-directory/yaml"
)

// bindings is the on-disk shape of a platform bindings file.
//
// Both a flat mapping and a mapping nested under "vars" are accepted:
//
//	DATABASE_URL: libsql://directory.turso.io
//
//	vars:
//	  DATABASE_URL: libsql://directory.turso.io
type bindings struct {
	Vars map[string]string `yaml:"vars"`
}

// File reads a YAML bindings file into a Map.
func File(path string) (Map, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read bindings: %w", err)
	}

	return ParseBindings(data)
}

// ParseBindings decodes YAML bindings into a Map.
func ParseBindings(data []byte) (Map, error) {
	c := yaml.New()

	var nested bindings
	if err := c.Unmarshal(data, &nested); err == nil && len(nested.Vars) > 0 {
		return Map(nested.Vars), nil
	}

	var flat map[string]any
	if err := c.Unmarshal(data, &flat); err != nil {
		return nil, fmt.Errorf("decode bindings: %w", err)
	}

	m := make(Map, len(flat))
	for k, v := range flat {
		if v == nil {
			continue
		}
		m[k] = fmt.Sprint(v)
	}

	return m, nil
}
