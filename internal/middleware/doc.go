// Package middleware provides the HTTP middleware around the dispatcher:
// request identity, access logging, panic recovery, and the admission
// pool that bounds concurrent dispatch.
//
// All middleware follows the func(http.Handler) http.Handler shape and is
// composed outermost-first by the server package.
package middleware
