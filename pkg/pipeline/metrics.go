package pipeline

import "github.com/zeromicro/go-zero/core/metric"

var (
	phaseDuration = metric.NewHistogramVec(&metric.HistogramVecOpts{
		Namespace: "plat_mailfix",
		Subsystem: "pipeline",
		Name:      "phase_duration_ms",
		Help:      "Repair phase duration in milliseconds",
		Labels:    []string{"phase"},
		Buckets:   []float64{1, 5, 10, 25, 50, 100, 250},
	})

	checksTotal = metric.NewCounterVec(&metric.CounterVecOpts{
		Namespace: "plat_mailfix",
		Subsystem: "pipeline",
		Name:      "checks_total",
		Help:      "Checks recorded by status",
		Labels:    []string{"status"},
	})

	processFailures = metric.NewCounterVec(&metric.CounterVecOpts{
		Namespace: "plat_mailfix",
		Subsystem: "pipeline",
		Name:      "failures_total",
		Help:      "Runs discarded after a phase panicked",
		Labels:    []string{"phase"},
	})

	vmlSyntheses = metric.NewCounterVec(&metric.CounterVecOpts{
		Namespace: "plat_mailfix",
		Subsystem: "cta",
		Name:      "vml_syntheses_total",
		Help:      "Outlook VML fallbacks synthesized by button type",
		Labels:    []string{"type"},
	})
)
