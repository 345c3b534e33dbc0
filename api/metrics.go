package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/purelabio/ethgate/gateway"
)

const metricsNamespace = "ethgate"

/*
Request metrics, kept in their own registry so that tests and multiple servers
in one process don't collide on the global one.
*/
type Metrics struct {
	Registry *prometheus.Registry
	Requests *prometheus.CounterVec
	Latency  *prometheus.HistogramVec
}

/*
Creates the request metrics along with the Go runtime and process collectors.
When "decimals" is non-nil, the number of cached tokens is exported too.
*/
func NewMetrics(decimals *gateway.DecimalsCache) *Metrics {
	self := &Metrics{
		Registry: prometheus.NewRegistry(),
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status code.",
		}, []string{"route", "status"}),
		Latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
	}

	self.Registry.MustRegister(
		self.Requests,
		self.Latency,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	if decimals != nil {
		self.Registry.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "decimals_cache_tokens",
			Help:      "Tokens whose decimals are currently cached.",
		}, func() float64 { return float64(decimals.Len()) }))
	}
	return self
}

// Serves the registry in the Prometheus exposition format.
func (self *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(self.Registry, promhttp.HandlerOpts{})
}

/*
Middleware observing every request. Routes are labeled by their chi pattern
rather than the raw path, which keeps the label set bounded.
*/
func (self *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(rew http.ResponseWriter, req *http.Request) {
		start := time.Now()
		wrapped := middleware.NewWrapResponseWriter(rew, req.ProtoMajor)

		next.ServeHTTP(wrapped, req)

		route := routePattern(req)
		status := wrapped.Status()
		if status == 0 {
			status = http.StatusOK
		}
		self.Requests.WithLabelValues(route, strconv.Itoa(status)).Inc()
		self.Latency.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

func routePattern(req *http.Request) string {
	rctx := chi.RouteContext(req.Context())
	if rctx != nil {
		pattern := rctx.RoutePattern()
		if pattern != "" {
			return pattern
		}
	}
	return "unmatched"
}
