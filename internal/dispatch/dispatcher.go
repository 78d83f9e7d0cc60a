package dispatch

import (
	"bytes"
	"fmt"
	"net/http"
	"runtime/debug"
	"sort"
	"strings"
	"time"

	"github.com/vyrodovalexey/avrouter/internal/binding"
	"github.com/vyrodovalexey/avrouter/internal/encoding"
	"github.com/vyrodovalexey/avrouter/internal/observability"
	"github.com/vyrodovalexey/avrouter/internal/policy"
	"github.com/vyrodovalexey/avrouter/internal/router"
	"github.com/vyrodovalexey/avrouter/internal/util"
)

// DefaultPreflightMaxAge is how long browsers may cache a preflight
// decision.
const DefaultPreflightMaxAge = 24 * time.Hour

// Dispatcher resolves requests against a frozen registry and runs the
// request protocol. It is an http.Handler; one instance serves all
// requests concurrently because every field is read-only after New.
type Dispatcher struct {
	registry     *router.Registry
	binder       *binding.Binder
	codec        encoding.Codec
	policy       *policy.Store
	logger       observability.Logger
	metrics      *observability.Metrics
	maxAge       time.Duration
	allowHeaders string
}

// Option is a functional option for the dispatcher.
type Option func(*Dispatcher)

// WithLogger sets the logger.
func WithLogger(logger observability.Logger) Option {
	return func(d *Dispatcher) {
		d.logger = logger
	}
}

// WithMetrics sets the metrics bundle.
func WithMetrics(metrics *observability.Metrics) Option {
	return func(d *Dispatcher) {
		d.metrics = metrics
	}
}

// WithPolicy sets the origin policy store consulted for non-public
// endpoints. Without it, every cross-origin request to a non-public
// endpoint is rejected.
func WithPolicy(store *policy.Store) Option {
	return func(d *Dispatcher) {
		d.policy = store
	}
}

// WithCodec sets the response codec.
func WithCodec(codec encoding.Codec) Option {
	return func(d *Dispatcher) {
		d.codec = codec
	}
}

// WithPreflightMaxAge sets the Access-Control-Max-Age granted on allowed
// preflights.
func WithPreflightMaxAge(maxAge time.Duration) Option {
	return func(d *Dispatcher) {
		d.maxAge = maxAge
	}
}

// WithAllowedHeaders pins Access-Control-Allow-Headers on allowed
// preflights to a fixed list. By default the requested headers are echoed
// back.
func WithAllowedHeaders(headers []string) Option {
	return func(d *Dispatcher) {
		d.allowHeaders = strings.Join(headers, ", ")
	}
}

// New creates a dispatcher over a registry. The registry should be frozen
// before the first request.
func New(registry *router.Registry, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		registry: registry,
		codec:    encoding.NewJSONCodec(nil),
		policy:   policy.NewStore(nil),
		logger:   observability.NopLogger(),
		maxAge:   DefaultPreflightMaxAge,
	}

	for _, opt := range opts {
		opt(d)
	}

	d.binder = binding.NewBinder(d.codec)
	return d
}

// ServeHTTP implements http.Handler.
func (d *Dispatcher) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		d.preflight(w, r)
		return
	}

	d.dispatch(w, r)
}

// dispatch runs the request protocol for a non-preflight request.
func (d *Dispatcher) dispatch(w http.ResponseWriter, r *http.Request) {
	match, err := d.registry.Lookup(r.Method, r.URL.Path)
	if err != nil {
		d.fault(w, r, stateResolving, err)
		return
	}

	ep := match.Endpoint
	if match.TieBroken && d.metrics != nil {
		d.metrics.RecordTieBreak()
	}

	// Publish the matched pattern to the surrounding middleware and make
	// it available to context-aware logging below the handler.
	if info := util.RouteInfoFromContext(r.Context()); info != nil {
		info.Pattern = ep.Path
	}
	ctx := util.ContextWithRoute(r.Context(), ep.Path)
	r = r.WithContext(ctx)

	allowOrigin, err := d.corsCheck(r, ep.Public)
	if err != nil {
		d.fault(w, r, stateCORS, err)
		return
	}
	writeAllowOrigin(w.Header(), allowOrigin)

	args, err := d.binder.Bind(r, match.PathVars(r.URL.Path), ep.Bindings)
	if err != nil {
		d.fault(w, r, stateExtracting, err)
		return
	}

	call := router.NewCall(ctx, args)
	result, err := d.invoke(r, ep, call)
	if err != nil {
		d.fault(w, r, stateInvoking, err)
		return
	}

	if err := d.serialize(w, call, result); err != nil {
		d.fault(w, r, stateSerializing, err)
	}
}

// invoke calls the handler and converts panics into handler errors so a
// defective handler cannot take down the server loop.
func (d *Dispatcher) invoke(r *http.Request, ep *router.Endpoint, call *router.Call) (result interface{}, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			stack := debug.Stack()

			d.logger.Error("panic recovered",
				observability.String("endpoint", ep.Name),
				observability.String("path", r.URL.Path),
				observability.String("method", r.Method),
				observability.Any("error", rec),
				observability.String("stack", string(stack)),
			)

			result = nil
			err = fmt.Errorf("handler %s panicked: %v", ep.Name, rec)
		}
	}()

	return ep.Handler(call)
}

// serialize writes a successful response. Staged handler headers are
// merged into the output and their names exposed to browser clients; a
// nil result is an empty 200, []byte is written verbatim, anything else
// goes through the codec.
func (d *Dispatcher) serialize(w http.ResponseWriter, call *router.Call, result interface{}) error {
	staged := call.Headers()
	if len(staged) > 0 {
		names := make([]string, 0, len(staged))
		for name, values := range staged {
			for _, value := range values {
				w.Header().Add(name, value)
			}
			names = append(names, name)
		}
		sort.Strings(names)
		w.Header().Set("Access-Control-Expose-Headers", strings.Join(names, ", "))
	}

	if result == nil {
		w.WriteHeader(http.StatusOK)
		return nil
	}

	if raw, ok := result.([]byte); ok {
		if w.Header().Get("Content-Type") == "" {
			w.Header().Set("Content-Type", "application/octet-stream")
		}
		w.WriteHeader(http.StatusOK)
		d.write(w, raw)
		return nil
	}

	// Encode to a buffer first so codec failures can still fault with a
	// clean status line.
	var buf bytes.Buffer
	if err := d.codec.Encode(&buf, result); err != nil {
		return err
	}

	w.Header().Set("Content-Type", d.codec.ContentType())
	w.WriteHeader(http.StatusOK)
	d.write(w, buf.Bytes())
	return nil
}

// write sends body bytes, logging instead of faulting because the status
// line is already on the wire.
func (d *Dispatcher) write(w http.ResponseWriter, body []byte) {
	if _, err := w.Write(body); err != nil {
		d.logger.Debug("response write failed", observability.Error(err))
	}
}
