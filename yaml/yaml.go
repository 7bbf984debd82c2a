// Package yaml provides a YAML codec used to read platform binding files.
package yaml

import (
	"bytes"
	"errors"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/srwicak/freelance-directory/codec"
)

// yamlCodec implements codec.Codec for YAML.
type yamlCodec struct{}

// New returns a YAML codec.
func New() codec.Codec {
	return &yamlCodec{}
}

// ContentType returns the MIME type for YAML.
func (c *yamlCodec) ContentType() string {
	return "application/yaml"
}

// Marshal encodes v as YAML.
func (c *yamlCodec) Marshal(v any) ([]byte, error) {
	return yaml.Marshal(v)
}

// Unmarshal decodes the first YAML document in data into v.
// An empty document leaves v untouched.
func (c *yamlCodec) Unmarshal(data []byte, v any) error {
	err := yaml.NewDecoder(bytes.NewReader(data)).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}
