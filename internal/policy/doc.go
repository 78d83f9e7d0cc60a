// Package policy decides whether a cross-origin request may reach a
// non-public endpoint.
//
// A policy is a stateless function of the request and its parsed Origin
// header. The package ships two implementations: a static allow-list with
// subdomain wildcards, and a CEL expression compiled once at startup. The
// Store wraps the active policy in an atomic pointer so configuration
// reloads can swap it without re-wiring the dispatcher.
package policy
