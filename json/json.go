// Package json provides the JSON codec used on the Hrana wire.
package json

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/srwicak/freelance-directory/codec"
)

// jsonCodec implements codec.Codec for JSON.
type jsonCodec struct{}

// New returns a JSON codec.
//
// Numbers decoded into interface values are kept as json.Number so that
// integer cells wider than 53 bits survive the round trip.
func New() codec.Codec {
	return &jsonCodec{}
}

// ContentType returns the MIME type for JSON.
func (c *jsonCodec) ContentType() string {
	return "application/json"
}

// Marshal encodes v as JSON.
func (c *jsonCodec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

// Unmarshal decodes a single JSON document into v.
func (c *jsonCodec) Unmarshal(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	if err := dec.Decode(v); err != nil {
		return err
	}

	if _, err := dec.Token(); err != io.EOF {
		return fmt.Errorf("unexpected data after top-level value")
	}

	return nil
}
