package router

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/vyrodovalexey/avrouter/internal/binding"
)

// HandlerFunc is the application-facing handler signature. The dispatcher
// invokes it with the call's bound arguments and serializes the returned
// value: nil yields an empty 200, []byte is written verbatim, anything
// else is encoded as JSON. A returned *util.ServerError keeps its status
// code; any other error becomes an internal fault.
type HandlerFunc func(c *Call) (interface{}, error)

// Endpoint is one registered operation: a verb, a declared path pattern,
// the handler, and the ordered bindings that produce its arguments.
type Endpoint struct {
	// Verb is the HTTP method the endpoint is registered under.
	Verb string

	// Path is the declared pattern, e.g. "/content/sites/{siteId}".
	Path string

	// Name identifies the endpoint in logs and route listings.
	Name string

	// Public marks the endpoint callable from any origin; the dispatcher
	// answers CORS for it with a wildcard instead of consulting policy.
	Public bool

	// Handler is invoked once all arguments are bound.
	Handler HandlerFunc

	// Bindings declare, in positional order, how each handler argument is
	// extracted from the request.
	Bindings []binding.Binding
}

// Call carries one dispatched request into a handler: the request
// context, the positionally bound arguments, and a staging area for
// response headers written only if the handler succeeds.
type Call struct {
	ctx     context.Context
	args    []interface{}
	headers http.Header
}

// NewCall builds a Call for a dispatched request.
func NewCall(ctx context.Context, args []interface{}) *Call {
	return &Call{
		ctx:     ctx,
		args:    args,
		headers: make(http.Header),
	}
}

// Context returns the request context.
func (c *Call) Context() context.Context {
	return c.ctx
}

// Args returns all bound arguments in declaration order.
func (c *Call) Args() []interface{} {
	return c.args
}

// Arg returns the i-th bound argument.
func (c *Call) Arg(i int) interface{} {
	return c.args[i]
}

// The typed accessors below assert the argument type produced by the
// matching converter and panic on a mismatch between the binding
// declaration and the handler; the dispatcher recovers such panics into
// internal faults.

// String returns the i-th argument as a string.
func (c *Call) String(i int) string {
	return c.args[i].(string)
}

// Int returns the i-th argument as an int.
func (c *Call) Int(i int) int {
	return c.args[i].(int)
}

// Int64 returns the i-th argument as an int64.
func (c *Call) Int64(i int) int64 {
	return c.args[i].(int64)
}

// Float64 returns the i-th argument as a float64.
func (c *Call) Float64(i int) float64 {
	return c.args[i].(float64)
}

// Bool returns the i-th argument as a bool.
func (c *Call) Bool(i int) bool {
	return c.args[i].(bool)
}

// Duration returns the i-th argument as a time.Duration.
func (c *Call) Duration(i int) time.Duration {
	return c.args[i].(time.Duration)
}

// Time returns the i-th argument as a time.Time.
func (c *Call) Time(i int) time.Time {
	return c.args[i].(time.Time)
}

// UUID returns the i-th argument as a uuid.UUID.
func (c *Call) UUID(i int) uuid.UUID {
	return c.args[i].(uuid.UUID)
}

// Stream returns the i-th argument as the raw body stream of a binary
// binding. The handler owns the stream and must close it.
func (c *Call) Stream(i int) *binding.Stream {
	return c.args[i].(*binding.Stream)
}

// SetHeader stages a response header. Staged headers reach the client
// only when the handler returns successfully.
func (c *Call) SetHeader(key, value string) {
	c.headers.Set(key, value)
}

// Headers returns the staged response headers.
func (c *Call) Headers() http.Header {
	return c.headers
}
