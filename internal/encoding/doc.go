// Package encoding provides the request and response body codecs for the
// dispatcher.
//
// The dispatcher serializes handler results and the argument binder decodes
// request bodies through the Codec interface, never through encoding/json
// directly. JSON is the only wire format.
//
// # Example Usage
//
//	codec := encoding.NewJSONCodec(nil)
//
//	// Encode a handler result onto the response stream
//	err := codec.Encode(w, result)
//
//	// Decode a request body
//	var payload CreateUserRequest
//	err = codec.Decode(r.Body, &payload)
//
// # Thread Safety
//
// All codecs are safe for concurrent use.
package encoding
