package dispatch

import (
	"errors"
	"net/http"

	"github.com/vyrodovalexey/avrouter/internal/observability"
	"github.com/vyrodovalexey/avrouter/internal/util"
)

// Fault kinds, used as metric labels and in fault logs.
const (
	KindVerbNotSupported = "verb_not_supported"
	KindRouteNotFound    = "route_not_found"
	KindAmbiguousRoute   = "ambiguous_route"
	KindOriginForbidden  = "origin_forbidden"
	KindCoercionFailed   = "coercion_failed"
	KindHandlerError     = "handler_error"
)

// faultEnvelope is the JSON error body. Detail is populated only for
// server-side failures; client faults get just the message.
type faultEnvelope struct {
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

// classify maps an error to its fault kind and HTTP status code.
func classify(err error) (string, int) {
	var serverErr *util.ServerError

	switch {
	case errors.Is(err, util.ErrVerbNotSupported):
		return KindVerbNotSupported, http.StatusMethodNotAllowed
	case errors.Is(err, util.ErrRouteNotFound):
		return KindRouteNotFound, http.StatusNotFound
	case errors.Is(err, util.ErrAmbiguousRoute):
		// A configuration defect, never a client fault.
		return KindAmbiguousRoute, http.StatusInternalServerError
	case errors.Is(err, util.ErrOriginForbidden):
		return KindOriginForbidden, http.StatusForbidden
	case errors.Is(err, util.ErrCoercionFailed):
		return KindCoercionFailed, http.StatusBadRequest
	case errors.As(err, &serverErr):
		return KindHandlerError, serverErr.StatusCode
	default:
		return KindHandlerError, http.StatusInternalServerError
	}
}

// fault converts an error into the response envelope: the kind decides
// the status, client faults carry the error message directly, and
// server faults get a generic message with the error in the detail field.
func (d *Dispatcher) fault(w http.ResponseWriter, r *http.Request, at state, err error) {
	kind, status := classify(err)

	if d.metrics != nil {
		d.metrics.RecordFault(kind, at.String())
	}
	observability.AnnotateSpanFault(r.Context(), kind, at.String())

	fields := []observability.Field{
		observability.String("kind", kind),
		observability.String("state", at.String()),
		observability.Int("status", status),
		observability.String("method", r.Method),
		observability.String("path", r.URL.Path),
		observability.Error(err),
	}
	if status >= http.StatusInternalServerError {
		d.logger.Error("request faulted", fields...)
	} else {
		d.logger.Warn("request faulted", fields...)
	}

	var serverErr *util.ServerError

	envelope := faultEnvelope{Message: err.Error()}
	switch {
	case errors.As(err, &serverErr) && serverErr.Message != "":
		envelope.Message = serverErr.Message
	case status >= http.StatusInternalServerError:
		envelope.Message = "internal server error"
	}
	if status >= http.StatusInternalServerError {
		envelope.Detail = err.Error()
	}

	w.Header().Set("Content-Type", d.codec.ContentType())
	w.WriteHeader(status)
	if encodeErr := d.codec.Encode(w, envelope); encodeErr != nil {
		d.logger.Error("failed to encode fault envelope", observability.Error(encodeErr))
	}
}
