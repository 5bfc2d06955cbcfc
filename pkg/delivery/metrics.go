package delivery

import "github.com/zeromicro/go-zero/core/metric"

var (
	emailsSent = metric.NewCounterVec(&metric.CounterVecOpts{
		Namespace: "plat_mailfix",
		Subsystem: "delivery",
		Name:      "test_sends_total",
		Help:      "Total test sends delivered",
		Labels:    []string{"template"},
	})

	emailsFailed = metric.NewCounterVec(&metric.CounterVecOpts{
		Namespace: "plat_mailfix",
		Subsystem: "delivery",
		Name:      "test_sends_failed_total",
		Help:      "Total test sends abandoned",
		Labels:    []string{"template", "reason"},
	})

	emailsRetried = metric.NewCounterVec(&metric.CounterVecOpts{
		Namespace: "plat_mailfix",
		Subsystem: "delivery",
		Name:      "test_sends_retried_total",
		Help:      "Total test send retries",
		Labels:    []string{"template"},
	})

	deliveryDuration = metric.NewHistogramVec(&metric.HistogramVecOpts{
		Namespace: "plat_mailfix",
		Subsystem: "delivery",
		Name:      "duration_seconds",
		Help:      "Test send duration in seconds, retries included",
		Labels:    []string{"template"},
		Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
	})
)
