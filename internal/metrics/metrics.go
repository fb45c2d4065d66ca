package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Sink receives one record per evaluated scenario.
type Sink interface {
	RecordScenario(label string, ok bool, elapsed time.Duration)
	RecordSweep(total, failed int)
}

// NopSink discards every record.
type NopSink struct{}

func (NopSink) RecordScenario(string, bool, time.Duration) {}
func (NopSink) RecordSweep(int, int)                       {}

// PromSink records scenario evaluations in Prometheus metrics.
type PromSink struct {
	scenarios *prometheus.CounterVec
	duration  prometheus.Histogram
	lastSweep *prometheus.GaugeVec
}

// NewPromSink registers scenario metrics on reg. A nil registerer defaults to
// the global Prometheus registerer.
func NewPromSink(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	scenarios := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "bca_scenarios_total",
		Help: "Scenarios evaluated, by outcome",
	}, []string{"outcome"})
	duration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "bca_scenario_duration_seconds",
		Help:    "Wall time to simulate and summarize one scenario",
		Buckets: prometheus.DefBuckets,
	})
	lastSweep := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "bca_last_sweep_scenarios",
		Help: "Scenario counts of the most recent sweep",
	}, []string{"outcome"})

	if err := reg.Register(scenarios); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			scenarios = are.ExistingCollector.(*prometheus.CounterVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(duration); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			duration = are.ExistingCollector.(prometheus.Histogram)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(lastSweep); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			lastSweep = are.ExistingCollector.(*prometheus.GaugeVec)
		} else {
			return nil, err
		}
	}
	return &PromSink{scenarios: scenarios, duration: duration, lastSweep: lastSweep}, nil
}

func (s *PromSink) RecordScenario(_ string, ok bool, elapsed time.Duration) {
	outcome := "succeeded"
	if !ok {
		outcome = "failed"
	}
	s.scenarios.WithLabelValues(outcome).Inc()
	s.duration.Observe(elapsed.Seconds())
}

func (s *PromSink) RecordSweep(total, failed int) {
	s.lastSweep.WithLabelValues("succeeded").Set(float64(total - failed))
	s.lastSweep.WithLabelValues("failed").Set(float64(failed))
}
