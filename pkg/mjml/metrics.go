package mjml

import "github.com/zeromicro/go-zero/core/metric"

var (
	renderDuration = metric.NewHistogramVec(&metric.HistogramVecOpts{
		Namespace: "plat_mailfix",
		Subsystem: "mjml",
		Name:      "render_duration_ms",
		Help:      "MJML compile duration in milliseconds",
		Labels:    []string{"template"},
		Buckets:   []float64{5, 10, 25, 50, 100, 250, 500},
	})

	renderCacheHits = metric.NewCounterVec(&metric.CounterVecOpts{
		Namespace: "plat_mailfix",
		Subsystem: "mjml",
		Name:      "cache_hits_total",
		Help:      "Render cache hits",
		Labels:    []string{"template"},
	})

	renderCacheMisses = metric.NewCounterVec(&metric.CounterVecOpts{
		Namespace: "plat_mailfix",
		Subsystem: "mjml",
		Name:      "cache_misses_total",
		Help:      "Render cache misses",
		Labels:    []string{"template"},
	})
)
