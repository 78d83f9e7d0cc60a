package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vyrodovalexey/avrouter/internal/util"
)

// unmatchedRoute is the label value used for requests that do not
// resolve to any registered route, ensuring bounded cardinality.
const unmatchedRoute = "unmatched"

// Metrics holds all Prometheus metrics for the dispatcher.
type Metrics struct {
	requestsTotal    *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	responseSize     *prometheus.HistogramVec
	inFlight         prometheus.Gauge
	faultsTotal      *prometheus.CounterVec
	tieBreaksTotal   prometheus.Counter
	routesRegistered *prometheus.GaugeVec
	buildInfo        *prometheus.GaugeVec
	startTime        prometheus.Gauge
	registry         *prometheus.Registry
}

// NewMetrics creates a new Metrics instance.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "router"
	}

	m := &Metrics{
		registry: prometheus.NewRegistry(),
	}

	m.requestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Total number of dispatched HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	m.requestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets: []float64{
				.001, .005, .01, .025, .05,
				.1, .25, .5, 1, 2.5, 5, 10,
			},
		},
		[]string{"method", "route"},
	)

	m.responseSize = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "response_size_bytes",
			Help:      "HTTP response size in bytes",
			Buckets:   prometheus.ExponentialBuckets(100, 10, 8),
		},
		[]string{"method", "route"},
	)

	m.inFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "requests_in_flight",
			Help:      "Number of requests currently being dispatched",
		},
	)

	m.faultsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "faults_total",
			Help:      "Total number of dispatch faults by kind and protocol state",
		},
		[]string{"kind", "state"},
	)

	m.tieBreaksTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "route_tiebreaks_total",
			Help:      "Total number of resolutions that required regex disambiguation",
		},
	)

	m.routesRegistered = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "routes_registered",
			Help:      "Number of registered routes per verb",
		},
		[]string{"method"},
	)

	m.buildInfo = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "build_info",
			Help:      "Build information for the router",
		},
		[]string{"version", "commit", "build_time"},
	)

	m.startTime = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "start_time_seconds",
			Help:      "Start time of the router in unix seconds",
		},
	)

	m.registerCollectors()

	m.startTime.SetToCurrentTime()

	return m
}

// registerCollectors registers all metric collectors with the
// Prometheus registry.
func (m *Metrics) registerCollectors() {
	m.registry.MustRegister(
		m.requestsTotal,
		m.requestDuration,
		m.responseSize,
		m.inFlight,
		m.faultsTotal,
		m.tieBreaksTotal,
		m.routesRegistered,
		m.buildInfo,
		m.startTime,
	)

	m.registry.MustRegister(collectors.NewGoCollector())
	m.registry.MustRegister(
		collectors.NewProcessCollector(
			collectors.ProcessCollectorOpts{},
		),
	)
}

// RecordRequest records a completed HTTP request. The route parameter is
// the declared route pattern, not the raw request path, to prevent
// cardinality explosion.
func (m *Metrics) RecordRequest(method, route string, status int, duration time.Duration, respSize int64) {
	if route == "" {
		route = unmatchedRoute
	}
	statusStr := strconv.Itoa(status)

	m.requestsTotal.WithLabelValues(method, route, statusStr).Inc()
	m.requestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
	m.responseSize.WithLabelValues(method, route).Observe(float64(respSize))
}

// RecordFault records a dispatch fault by taxonomy kind and the protocol
// state in which it occurred.
func (m *Metrics) RecordFault(kind, state string) {
	m.faultsTotal.WithLabelValues(kind, state).Inc()
}

// RecordTieBreak records a resolution that needed regex disambiguation
// between parameterized siblings.
func (m *Metrics) RecordTieBreak() {
	m.tieBreaksTotal.Inc()
}

// SetRoutesRegistered sets the registered-route count for a verb. Called
// once when the registry is frozen.
func (m *Metrics) SetRoutesRegistered(method string, count int) {
	m.routesRegistered.WithLabelValues(method).Set(float64(count))
}

// SetBuildInfo sets the build information metric.
func (m *Metrics) SetBuildInfo(version, commit, buildTime string) {
	m.buildInfo.WithLabelValues(version, commit, buildTime).Set(1)
}

// Handler returns an HTTP handler for the metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(
		m.registry,
		promhttp.HandlerOpts{EnableOpenMetrics: true},
	)
}

// Registry returns the Prometheus registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// MetricsMiddleware returns a middleware that records request metrics.
// The route label comes from the RouteInfo holder the middleware seeds
// into the context; the dispatcher fills it once resolution succeeds, so
// dynamic path segments never leak into label values.
func MetricsMiddleware(metrics *Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			info := util.RouteInfoFromContext(r.Context())
			if info == nil {
				info = &util.RouteInfo{}
				r = r.WithContext(util.ContextWithRouteInfo(r.Context(), info))
			}

			rw := util.NewStatusCapturingResponseWriter(w)

			metrics.inFlight.Inc()
			next.ServeHTTP(rw, r)
			metrics.inFlight.Dec()

			metrics.RecordRequest(
				r.Method, info.Pattern, rw.StatusCode,
				time.Since(start), int64(rw.BytesWritten),
			)
		})
	}
}
