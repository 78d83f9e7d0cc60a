// Package binding declares the sources handler arguments are drawn from and
// performs their extraction and coercion.
//
// A handler's arguments are described by an ordered list of Binding values,
// one per parameter. At request time the Binder walks that list and produces
// a positional argument slice: path captures, query parameters, headers, and
// cookies are coerced through explicit ConvertFunc values; Body bindings
// decode the request body; Binary bindings hand the raw stream through.
//
// Extraction failures are reported as *util.CoercionError naming the
// offending parameter.
package binding

import "io"

// Kind identifies the request source a binding draws its value from.
type Kind int

const (
	// KindPath sources the value from a named path capture.
	KindPath Kind = iota
	// KindQuery sources the value from the query string.
	KindQuery
	// KindHeader sources the value from a request header.
	KindHeader
	// KindCookie sources the value from a request cookie.
	KindCookie
	// KindBody decodes the request body into a factory-allocated target.
	KindBody
	// KindBinary passes the raw body stream through without consuming it.
	KindBinary
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindPath:
		return "path"
	case KindQuery:
		return "query"
	case KindHeader:
		return "header"
	case KindCookie:
		return "cookie"
	case KindBody:
		return "body"
	case KindBinary:
		return "binary"
	default:
		return "unknown"
	}
}

// Binding declares one handler argument and the request source it is
// extracted from. Bindings are declared in handler parameter order; the
// Binder produces arguments positionally.
type Binding struct {
	Kind    Kind
	Name    string
	Convert ConvertFunc

	// Default is the raw fallback for absent query parameters. Only Query
	// bindings carry one; a Query binding without it is required.
	Default *string

	// Factory allocates the decode target for a Body binding.
	Factory func() interface{}
}

// Path declares an argument extracted from the named path capture.
func Path(name string, convert ConvertFunc) Binding {
	return Binding{Kind: KindPath, Name: name, Convert: convert}
}

// Query declares a required argument extracted from the named query
// parameter.
func Query(name string, convert ConvertFunc) Binding {
	return Binding{Kind: KindQuery, Name: name, Convert: convert}
}

// QueryDefault declares an optional query argument. When the parameter is
// absent the default value is coerced instead.
func QueryDefault(name string, convert ConvertFunc, defaultValue string) Binding {
	return Binding{Kind: KindQuery, Name: name, Convert: convert, Default: &defaultValue}
}

// Header declares a required argument extracted from the named header.
func Header(name string, convert ConvertFunc) Binding {
	return Binding{Kind: KindHeader, Name: name, Convert: convert}
}

// Cookie declares a required argument extracted from the named cookie.
func Cookie(name string, convert ConvertFunc) Binding {
	return Binding{Kind: KindCookie, Name: name, Convert: convert}
}

// Body declares an argument decoded from the request body. factory
// allocates the decode target; a request without a body gets a fresh target
// populated from same-named query parameters instead.
func Body(factory func() interface{}) Binding {
	return Binding{Kind: KindBody, Name: "body", Factory: factory}
}

// Binary declares an argument carrying the raw request body stream.
func Binary() Binding {
	return Binding{Kind: KindBinary, Name: "body"}
}

// Stream is the argument produced by a Binary binding. The handler owns
// Body and is responsible for closing it.
type Stream struct {
	Body          io.ReadCloser
	ContentLength int64
}
