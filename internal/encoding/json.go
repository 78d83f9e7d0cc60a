// Package encoding provides the request and response body codecs for the
// dispatcher.
package encoding

import (
	"encoding/json"
	"fmt"
	"io"
)

// JSONConfig configures the JSON codec.
type JSONConfig struct {
	// PrettyPrint indents encoded output for readability.
	PrettyPrint bool
}

// jsonCodec implements Codec for JSON bodies.
type jsonCodec struct {
	cfg *JSONConfig
}

// NewJSONCodec creates a new JSON codec.
func NewJSONCodec(cfg *JSONConfig) Codec {
	if cfg == nil {
		cfg = &JSONConfig{}
	}
	return &jsonCodec{cfg: cfg}
}

// Encode writes the JSON encoding of v to w.
func (c *jsonCodec) Encode(w io.Writer, v interface{}) error {
	if v == nil {
		return ErrNilValue
	}

	encoder := json.NewEncoder(w)

	if c.cfg.PrettyPrint {
		encoder.SetIndent("", "  ")
	}

	if err := encoder.Encode(v); err != nil {
		return fmt.Errorf("%w: %w", ErrEncodingFailed, err)
	}

	return nil
}

// Decode reads JSON from r and decodes it into v.
func (c *jsonCodec) Decode(r io.Reader, v interface{}) error {
	decoder := json.NewDecoder(r)

	// Use number type for better precision
	decoder.UseNumber()

	if err := decoder.Decode(v); err != nil {
		return fmt.Errorf("%w: %w", ErrDecodingFailed, err)
	}

	return nil
}

// ContentType returns the JSON content type.
func (c *jsonCodec) ContentType() string {
	return ContentTypeJSON
}
