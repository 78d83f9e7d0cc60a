// Package encoding provides the request and response body codecs for the
// dispatcher.
package encoding

import (
	"errors"
	"io"
)

// Common encoding errors.
var (
	// ErrEncodingFailed indicates that encoding failed.
	ErrEncodingFailed = errors.New("encoding failed")

	// ErrDecodingFailed indicates that decoding failed.
	ErrDecodingFailed = errors.New("decoding failed")

	// ErrNilValue indicates that the value to encode is nil.
	ErrNilValue = errors.New("nil value")
)

// ContentTypeJSON is the content type produced and consumed by the JSON codec.
const ContentTypeJSON = "application/json"

// Encoder encodes values onto a stream.
type Encoder interface {
	// Encode writes the encoded value to w.
	Encode(w io.Writer, v interface{}) error

	// ContentType returns the content type for this encoder.
	ContentType() string
}

// Decoder decodes values from a stream.
type Decoder interface {
	// Decode reads from r and decodes into v.
	Decode(r io.Reader, v interface{}) error
}

// Codec combines Encoder and Decoder.
type Codec interface {
	Encoder
	Decoder
}
