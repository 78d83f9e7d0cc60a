// Package util provides shared error types, context helpers, and HTTP
// plumbing for the router.
//
// # Error Conventions
//
// This project follows a standardized error pattern across all packages:
//
//   - Sentinel errors (errors.New) for well-known, stable conditions
//     that callers check with errors.Is(). Example: ErrRouteNotFound.
//   - Structured error types for context-rich errors that carry
//     additional fields (e.g., CoercionError, StartupValidationError).
//     Each type implements Error(), Unwrap() (if wrapping), and Is().
//   - fmt.Errorf with %w for ad-hoc wrapping that adds context to an
//     existing error without introducing a new type.
package util

import (
	"errors"
	"fmt"
)

// Common sentinel errors.
var (
	ErrRouteNotFound    = errors.New("route not found")
	ErrVerbNotSupported = errors.New("verb not supported")
	ErrAmbiguousRoute   = errors.New("ambiguous route")
	ErrOriginForbidden  = errors.New("origin forbidden")
	ErrCoercionFailed   = errors.New("argument coercion failed")
	ErrRegistryFrozen   = errors.New("route registry is frozen")
)

// RouteNotFoundError reports that a supported verb has no route matching
// the request path.
type RouteNotFoundError struct {
	Verb string
	Path string
}

// Error implements the error interface.
func (e *RouteNotFoundError) Error() string {
	return fmt.Sprintf("no route found for %s %s", e.Verb, e.Path)
}

// Is checks if the error matches the target.
func (e *RouteNotFoundError) Is(target error) bool {
	if target == ErrRouteNotFound {
		return true
	}
	_, ok := target.(*RouteNotFoundError)
	return ok
}

// NewRouteNotFoundError creates a new RouteNotFoundError.
func NewRouteNotFoundError(verb, path string) *RouteNotFoundError {
	return &RouteNotFoundError{Verb: verb, Path: path}
}

// VerbNotSupportedError reports that no route table exists for the verb
// at all, which is distinct from a path miss on a supported verb.
type VerbNotSupportedError struct {
	Verb string
	Path string
}

// Error implements the error interface.
func (e *VerbNotSupportedError) Error() string {
	return fmt.Sprintf("verb %s is not supported (requested %s)", e.Verb, e.Path)
}

// Is checks if the error matches the target.
func (e *VerbNotSupportedError) Is(target error) bool {
	if target == ErrVerbNotSupported {
		return true
	}
	_, ok := target.(*VerbNotSupportedError)
	return ok
}

// NewVerbNotSupportedError creates a new VerbNotSupportedError.
func NewVerbNotSupportedError(verb, path string) *VerbNotSupportedError {
	return &VerbNotSupportedError{Verb: verb, Path: path}
}

// AmbiguousRouteError reports that more than one compiled matcher accepted
// the same request path. This is a configuration defect: two handlers
// cannot be told apart for some input and must be fixed at the source.
type AmbiguousRouteError struct {
	Path     string
	Patterns []string
}

// Error implements the error interface.
func (e *AmbiguousRouteError) Error() string {
	return fmt.Sprintf("ambiguous route for %s: %d patterns match %v", e.Path, len(e.Patterns), e.Patterns)
}

// Is checks if the error matches the target.
func (e *AmbiguousRouteError) Is(target error) bool {
	if target == ErrAmbiguousRoute {
		return true
	}
	_, ok := target.(*AmbiguousRouteError)
	return ok
}

// NewAmbiguousRouteError creates a new AmbiguousRouteError.
func NewAmbiguousRouteError(path string, patterns []string) *AmbiguousRouteError {
	return &AmbiguousRouteError{Path: path, Patterns: patterns}
}

// CoercionError reports a failure to extract or coerce a declared handler
// argument. The message always names the offending parameter.
type CoercionError struct {
	Parameter string
	Message   string
	Cause     error
}

// Error implements the error interface.
func (e *CoercionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("parameter %q: %s: %v", e.Parameter, e.Message, e.Cause)
	}
	return fmt.Sprintf("parameter %q: %s", e.Parameter, e.Message)
}

// Unwrap returns the underlying error.
func (e *CoercionError) Unwrap() error {
	return e.Cause
}

// Is checks if the error matches the target.
func (e *CoercionError) Is(target error) bool {
	if target == ErrCoercionFailed {
		return true
	}
	_, ok := target.(*CoercionError)
	return ok || errors.Is(e.Cause, target)
}

// NewCoercionError creates a new CoercionError.
func NewCoercionError(parameter, message string) *CoercionError {
	return &CoercionError{Parameter: parameter, Message: message}
}

// NewCoercionErrorWithCause creates a new CoercionError with a cause.
func NewCoercionErrorWithCause(parameter, message string, cause error) *CoercionError {
	return &CoercionError{Parameter: parameter, Message: message, Cause: cause}
}

// StartupValidationError reports an invalid route declaration detected
// while building the route tables. It aborts startup; it is never a
// request-time error kind.
type StartupValidationError struct {
	Endpoint string
	Path     string
	Message  string
}

// Error implements the error interface.
func (e *StartupValidationError) Error() string {
	if e.Endpoint != "" {
		return fmt.Sprintf("invalid route declaration %s (%s): %s", e.Endpoint, e.Path, e.Message)
	}
	return fmt.Sprintf("invalid route declaration (%s): %s", e.Path, e.Message)
}

// Is checks if the error matches the target.
func (e *StartupValidationError) Is(target error) bool {
	_, ok := target.(*StartupValidationError)
	return ok
}

// NewStartupValidationError creates a new StartupValidationError.
func NewStartupValidationError(endpoint, path, message string) *StartupValidationError {
	return &StartupValidationError{Endpoint: endpoint, Path: path, Message: message}
}
