package prometheus

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var registry = prometheus.NewRegistry()

var registerer = prometheus.WrapRegistererWith(nil, registry)

var (
	// Latency buckets in milliseconds; sanitization is expected to stay
	// in the low single digits except for adversarial input near the
	// size cap.
	latencyBuckets = []float64{
		1, 2, 5,
		10, 25, 50,
		100, 250, 500,
		1000, 2500,
	}

	SanitizationsTotal = promauto.With(registerer).NewCounterVec(
		prometheus.CounterOpts{
			Name: "contentguard_sanitizations_total",
			Help: "Total number of sanitization calls",
		},
		[]string{"content_type", "valid"},
	)

	ViolationsTotal = promauto.With(registerer).NewCounterVec(
		prometheus.CounterOpts{
			Name: "contentguard_violations_total",
			Help: "Total number of security violations detected",
		},
		[]string{"kind", "severity"},
	)

	SanitizeDuration = promauto.With(registerer).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "contentguard_sanitize_duration_ms",
			Help:    "Sanitization pipeline latency in milliseconds",
			Buckets: latencyBuckets,
		},
		[]string{"content_type"},
	)

	CacheEventsTotal = promauto.With(registerer).NewCounterVec(
		prometheus.CounterOpts{
			Name: "contentguard_cache_events_total",
			Help: "Result cache hits and misses",
		},
		[]string{"event"},
	)

	ReportFailuresTotal = promauto.With(registerer).NewCounterVec(
		prometheus.CounterOpts{
			Name: "contentguard_report_failures_total",
			Help: "Security event deliveries that failed",
		},
		[]string{"exporter"},
	)
)

func Initialize() {
	registry.MustRegister(
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	prometheus.DefaultRegisterer = registry
	prometheus.DefaultGatherer = registry
}
