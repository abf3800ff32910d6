package observability

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus implements every hook interface on top of Prometheus
// collectors.
type Prometheus struct {
	Transitions   *prometheus.CounterVec
	Slices        *prometheus.CounterVec
	SliceDuration *prometheus.HistogramVec
	CacheEvents   *prometheus.CounterVec
	CacheBytes    *prometheus.CounterVec
	HTTPRequests  *prometheus.CounterVec
	HTTPDuration  *prometheus.HistogramVec
	HTTPErrors    *prometheus.CounterVec
}

var (
	_ ExtractionHooks = (*Prometheus)(nil)
	_ CacheHooks      = (*Prometheus)(nil)
	_ HTTPHooks       = (*Prometheus)(nil)
)

// NewPrometheus registers the TimeNexus collectors with reg.
func NewPrometheus(reg prometheus.Registerer) *Prometheus {
	f := promauto.With(reg)
	return &Prometheus{
		Transitions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "timenexus_extraction_transitions_total",
			Help: "Extraction state transitions",
		}, []string{"strategy", "state"}),
		Slices: f.NewCounterVec(prometheus.CounterOpts{
			Name: "timenexus_extraction_slices_total",
			Help: "Service calls made on slices of layers",
		}, []string{"strategy", "status"}),
		SliceDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "timenexus_extraction_slice_duration_seconds",
			Help:    "Duration of a service call on a slice of layers",
			Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60, 300},
		}, []string{"strategy"}),
		CacheEvents: f.NewCounterVec(prometheus.CounterOpts{
			Name: "timenexus_cache_events_total",
			Help: "Cache hits, misses and writes",
		}, []string{"key_type", "event"}),
		CacheBytes: f.NewCounterVec(prometheus.CounterOpts{
			Name: "timenexus_cache_written_bytes_total",
			Help: "Bytes written to the cache",
		}, []string{"key_type"}),
		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "timenexus_service_requests_total",
			Help: "Requests sent to extraction services",
		}, []string{"method", "host", "status"}),
		HTTPDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "timenexus_service_request_duration_seconds",
			Help:    "Duration of requests sent to extraction services",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "host"}),
		HTTPErrors: f.NewCounterVec(prometheus.CounterOpts{
			Name: "timenexus_service_errors_total",
			Help: "Failed requests to extraction services",
		}, []string{"method", "host"}),
	}
}

func (p *Prometheus) OnStateChange(_ context.Context, strategy, _, to string) {
	p.Transitions.WithLabelValues(strategy, to).Inc()
}

func (p *Prometheus) OnSliceComplete(_ context.Context, strategy string, _ []int, d time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	p.Slices.WithLabelValues(strategy, status).Inc()
	p.SliceDuration.WithLabelValues(strategy).Observe(d.Seconds())
}

func (p *Prometheus) OnCacheHit(_ context.Context, keyType string) {
	p.CacheEvents.WithLabelValues(keyType, "hit").Inc()
}

func (p *Prometheus) OnCacheMiss(_ context.Context, keyType string) {
	p.CacheEvents.WithLabelValues(keyType, "miss").Inc()
}

func (p *Prometheus) OnCacheSet(_ context.Context, keyType string, size int) {
	p.CacheEvents.WithLabelValues(keyType, "set").Inc()
	p.CacheBytes.WithLabelValues(keyType).Add(float64(size))
}

func (p *Prometheus) OnRequest(context.Context, string, string, string) {}

func (p *Prometheus) OnResponse(_ context.Context, method, host, _ string, status int, d time.Duration) {
	p.HTTPRequests.WithLabelValues(method, host, strconv.Itoa(status)).Inc()
	p.HTTPDuration.WithLabelValues(method, host).Observe(d.Seconds())
}

func (p *Prometheus) OnError(_ context.Context, method, host, _ string, _ error) {
	p.HTTPErrors.WithLabelValues(method, host).Inc()
}
