// Package metrics exposes Prometheus instrumentation for the HTTP surface,
// the authorization guards and the verification flow.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/cardhub-api/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "cardhub"

// Recorder owns a private registry so tests and multiple servers in one
// process do not collide on the global one.
type Recorder struct {
	registry *prometheus.Registry

	httpRequests     *prometheus.CounterVec
	httpDuration     *prometheus.HistogramVec
	guardDenials     *prometheus.CounterVec
	codeRequests     *prometheus.CounterVec
	codeRedemptions  *prometheus.CounterVec
	codesPurged      prometheus.Counter
	rateLimitBlocked prometheus.Counter
}

// NewRecorder registers every collector on a fresh registry, together with
// the Go runtime and process collectors.
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Recorder{
		registry: reg,
		httpRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "The total number of HTTP requests by route and status code",
		}, []string{"method", "route", "status"}),
		httpDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "The request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		guardDenials: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "guard_denials_total",
			Help:      "The total number of requests refused by an authorization guard",
		}, []string{"guard", "status"}),
		codeRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "verification_code_requests_total",
			Help:      "The total number of verification code requests by outcome",
		}, []string{"purpose", "outcome"}),
		codeRedemptions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "verification_code_redemptions_total",
			Help:      "The total number of verification code redemptions by outcome",
		}, []string{"purpose", "outcome"}),
		codesPurged: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "verification_codes_purged_total",
			Help:      "The total number of expired verification codes removed by the sweeper",
		}),
		rateLimitBlocked: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limit_exceeded_total",
			Help:      "The total number of requests rejected by the rate limiter",
		}),
	}
}

// Handler serves the registry in the Prometheus text format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// Middleware counts requests by chi route pattern, so path parameters do not
// explode label cardinality.
func (r *Recorder) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, req.ProtoMajor)

		next.ServeHTTP(ww, req)

		route := "unmatched"
		if rctx := chi.RouteContext(req.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		r.httpRequests.WithLabelValues(req.Method, route, strconv.Itoa(status)).Inc()
		r.httpDuration.WithLabelValues(req.Method, route).Observe(time.Since(start).Seconds())
	})
}

// ObserveGuardDenial records a request refused by guard with status.
func (r *Recorder) ObserveGuardDenial(guard string, status int) {
	r.guardDenials.WithLabelValues(guard, strconv.Itoa(status)).Inc()
}

// ObserveCodeRequest implements verification.Metrics.
func (r *Recorder) ObserveCodeRequest(purpose domain.Purpose, outcome string) {
	r.codeRequests.WithLabelValues(string(purpose), outcome).Inc()
}

// ObserveCodeRedeem implements verification.Metrics.
func (r *Recorder) ObserveCodeRedeem(purpose domain.Purpose, outcome string) {
	r.codeRedemptions.WithLabelValues(string(purpose), outcome).Inc()
}

// ObserveCodesPurged adds n to the purged-codes counter.
func (r *Recorder) ObserveCodesPurged(n int64) {
	if n > 0 {
		r.codesPurged.Add(float64(n))
	}
}

// ObserveRateLimited counts a request rejected by the rate limiter.
func (r *Recorder) ObserveRateLimited() {
	r.rateLimitBlocked.Inc()
}
