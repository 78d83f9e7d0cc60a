// Package dispatch drives the per-request protocol over a frozen route
// registry.
//
// Every request moves through a strict sequence of states: resolve the
// endpoint, apply the CORS decision, extract and coerce the declared
// arguments, invoke the handler, and serialize the result. Any state can
// fail the request into a fault, which is mapped to an HTTP status and a
// JSON error envelope; nothing escapes the dispatcher into the server
// loop, including handler panics.
//
// OPTIONS requests never reach handlers. They are answered as CORS
// preflights: the endpoint targeted by Access-Control-Request-Method
// decides the public flag, and denied preflights complete silently with
// no CORS headers rather than an error status.
package dispatch
