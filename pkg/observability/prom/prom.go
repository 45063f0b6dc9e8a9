// Package prom implements the observability hooks with Prometheus metrics
// and provides HTTP server instrumentation.
//
//	m := prom.New(prometheus.NewRegistry(), "brickguide")
//	m.Register()              // install as the global hooks
//	r.Use(m.Middleware)
//	r.Handle("/metrics", m.Handler())
//
// Metrics:
//   - render_total{kind,status}, render_duration_seconds{kind}, render_layers{kind}
//   - guide_steps_total{blueprint}, guide_acks_total{source,direction},
//     guide_sessions_total{event}
//   - cache_events_total{key_type,event}
//   - http_client_requests_total{host,status}
//   - http_request_duration_seconds{method,route,status}, http_requests_inflight,
//     http_request_errors_total{method,route,status}
package prom

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/assys/brickguide/pkg/observability"
)

// Metrics holds every collector. It implements all observability hook
// interfaces.
type Metrics struct {
	registry *prometheus.Registry

	renders      *prometheus.CounterVec
	renderTime   *prometheus.HistogramVec
	renderLayers *prometheus.HistogramVec

	steps    *prometheus.CounterVec
	acks     *prometheus.CounterVec
	sessions *prometheus.CounterVec

	cacheEvents *prometheus.CounterVec
	clientReqs  *prometheus.CounterVec

	reqDuration *prometheus.HistogramVec
	reqInflight prometheus.Gauge
	reqErrors   *prometheus.CounterVec
}

// New creates the collectors under namespace and registers them with reg.
func New(reg *prometheus.Registry, namespace string) *Metrics {
	m := &Metrics{
		registry: reg,
		renders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "render_total",
			Help:      "Rendered step, control and support artifacts.",
		}, []string{"kind", "status"}),
		renderTime: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "render_duration_seconds",
			Help:      "Render duration.",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		}, []string{"kind"}),
		renderLayers: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "render_layers",
			Help:      "Layers in rendered voxel models.",
			Buckets:   prometheus.LinearBuckets(1, 2, 10),
		}, []string{"kind"}),
		steps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "guide_steps_total",
			Help:      "Guide step transitions.",
		}, []string{"blueprint"}),
		acks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "guide_acks_total",
			Help:      "Acknowledgments received from input clients.",
		}, []string{"source", "direction"}),
		sessions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "guide_sessions_total",
			Help:      "Session lifecycle events.",
		}, []string{"event"}),
		cacheEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_events_total",
			Help:      "Cache hits, misses and writes.",
		}, []string{"key_type", "event"}),
		clientReqs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_client_requests_total",
			Help:      "Outgoing HTTP requests.",
		}, []string{"host", "status"}),
		reqDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration.",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		}, []string{"method", "route", "status"}),
		reqInflight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_requests_inflight",
			Help:      "HTTP requests currently being served.",
		}),
		reqErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_request_errors_total",
			Help:      "HTTP requests answered with 4xx or 5xx.",
		}, []string{"method", "route", "status"}),
	}
	reg.MustRegister(
		m.renders, m.renderTime, m.renderLayers,
		m.steps, m.acks, m.sessions,
		m.cacheEvents, m.clientReqs,
		m.reqDuration, m.reqInflight, m.reqErrors,
	)
	return m
}

// Register installs m as the global observability hooks.
func (m *Metrics) Register() {
	observability.SetRenderHooks(m)
	observability.SetGuideHooks(m)
	observability.SetCacheHooks(m)
	observability.SetHTTPHooks(m)
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Middleware records duration, in-flight count and errors per chi route
// pattern.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		m.reqInflight.Inc()
		defer m.reqInflight.Dec()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		code := ww.Status()
		if code == 0 {
			code = http.StatusOK
		}
		status := strconv.Itoa(code)
		route := routePattern(r)
		m.reqDuration.WithLabelValues(r.Method, route, status).Observe(time.Since(start).Seconds())
		if code >= 400 {
			m.reqErrors.WithLabelValues(r.Method, route, status).Inc()
		}
	})
}

// routePattern returns the matched chi pattern, or "unmatched" so that
// arbitrary paths cannot blow up label cardinality.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}

func (m *Metrics) OnRenderStart(context.Context, string, []string) {}

func (m *Metrics) OnRenderComplete(_ context.Context, kind string, _ []string, layers int, d time.Duration, err error) {
	m.renders.WithLabelValues(kind, statusLabel(err)).Inc()
	m.renderTime.WithLabelValues(kind).Observe(d.Seconds())
	if err == nil && layers > 0 {
		m.renderLayers.WithLabelValues(kind).Observe(float64(layers))
	}
}

func (m *Metrics) OnStep(_ context.Context, blueprint string, _, _ int) {
	m.steps.WithLabelValues(blueprint).Inc()
}

func (m *Metrics) OnAcknowledge(_ context.Context, source, direction string) {
	m.acks.WithLabelValues(source, direction).Inc()
}

func (m *Metrics) OnSession(_ context.Context, event string) {
	m.sessions.WithLabelValues(event).Inc()
}

func (m *Metrics) OnCacheHit(_ context.Context, keyType string) {
	m.cacheEvents.WithLabelValues(keyType, "hit").Inc()
}

func (m *Metrics) OnCacheMiss(_ context.Context, keyType string) {
	m.cacheEvents.WithLabelValues(keyType, "miss").Inc()
}

func (m *Metrics) OnCacheSet(_ context.Context, keyType string, _ int) {
	m.cacheEvents.WithLabelValues(keyType, "set").Inc()
}

func (m *Metrics) OnRequest(context.Context, string, string, string) {}

func (m *Metrics) OnResponse(_ context.Context, _, host, _ string, statusCode int, _ time.Duration) {
	m.clientReqs.WithLabelValues(host, strconv.Itoa(statusCode)).Inc()
}

func (m *Metrics) OnError(_ context.Context, _, host, _ string, _ error) {
	m.clientReqs.WithLabelValues(host, "error").Inc()
}

func statusLabel(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

var (
	_ observability.RenderHooks = (*Metrics)(nil)
	_ observability.GuideHooks  = (*Metrics)(nil)
	_ observability.CacheHooks  = (*Metrics)(nil)
	_ observability.HTTPHooks   = (*Metrics)(nil)
)
