// Package metrics exposes request and provider-call counters through a
// dedicated Prometheus registry.
package metrics

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/codepix/codepix/internal/apperrors"
	"github.com/codepix/codepix/internal/provider"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels for provider calls.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// Recorder owns the collectors for one server instance.
type Recorder struct {
	registry      *prometheus.Registry
	requests      *prometheus.CounterVec
	providerCalls *prometheus.CounterVec
	callSeconds   *prometheus.HistogramVec
}

// NewRecorder registers the collectors on registry. A nil registry gets a
// fresh one.
func NewRecorder(registry *prometheus.Registry) (*Recorder, error) {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	r := &Recorder{
		registry: registry,
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "codepix_http_requests_total",
			Help: "HTTP requests served, by route and status code",
		}, []string{"route", "status"}),
		providerCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "codepix_provider_calls_total",
			Help: "Calls made to model providers, by outcome",
		}, []string{"provider", "outcome"}),
		callSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "codepix_provider_call_seconds",
			Help:    "Model provider call latency in seconds",
			Buckets: []float64{0.25, 0.5, 1, 2, 4, 8, 16, 32, 64, 120},
		}, []string{"provider"}),
	}

	for _, collector := range []prometheus.Collector{r.requests, r.providerCalls, r.callSeconds} {
		if err := registry.Register(collector); err != nil {
			return nil, fmt.Errorf("register collector: %w", err)
		}
	}
	return r, nil
}

// ObserveProviderCall matches provider.Observer.
func (r *Recorder) ObserveProviderCall(key provider.Key, _ string, err error, seconds float64) {
	outcome := OutcomeOK
	if err != nil {
		outcome = OutcomeError
		if kind, ok := apperrors.KindOf(err); ok {
			outcome = string(kind)
		}
	}
	r.providerCalls.WithLabelValues(key.String(), outcome).Inc()
	r.callSeconds.WithLabelValues(key.String()).Observe(seconds)
}

// ObserveRequest counts one served HTTP request.
func (r *Recorder) ObserveRequest(route string, status int, _ time.Duration) {
	r.requests.WithLabelValues(route, strconv.Itoa(status)).Inc()
}

// Handler serves the registry in the Prometheus text format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}
