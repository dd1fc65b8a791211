// Package metrics exposes build and watch-loop metrics in Prometheus format.
package metrics

import (
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
)

const namespace = "kiln"

var _ ports.MetricsRecorder = (*PrometheusRecorder)(nil)

// PrometheusRecorder implements ports.MetricsRecorder. A nil recorder
// discards all observations.
type PrometheusRecorder struct {
	buildDuration  *prom.HistogramVec
	buildOutcomes  *prom.CounterVec
	targetDuration *prom.HistogramVec
	targetResults  *prom.CounterVec
	watchEvents    prom.Counter
	runStepUp      prom.Gauge
}

// NewPrometheusRecorder creates the collectors and registers them with reg.
// A nil reg gets a fresh registry.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}

	r := &PrometheusRecorder{
		buildDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "build_duration_seconds",
			Help:      "Duration of complete builds",
			Buckets:   prom.DefBuckets,
		}, []string{"mode"}),
		buildOutcomes: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "builds_total",
			Help:      "Builds by mode and outcome",
		}, []string{"mode", "outcome"}),
		targetDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "target_duration_seconds",
			Help:      "Duration of individual targets",
			Buckets:   prom.DefBuckets,
		}, []string{"target"}),
		targetResults: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "target_results_total",
			Help:      "Target results by final status",
		}, []string{"target", "status"}),
		watchEvents: prom.NewCounter(prom.CounterOpts{
			Namespace: namespace,
			Name:      "watch_events_total",
			Help:      "Filesystem events that qualified for a rebuild",
		}),
		runStepUp: prom.NewGauge(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "run_step_up",
			Help:      "1 while the supervised run step is alive",
		}),
	}
	reg.MustRegister(r.buildDuration, r.buildOutcomes, r.targetDuration, r.targetResults, r.watchEvents, r.runStepUp)
	return r
}

// ObserveBuild records one finished build.
func (r *PrometheusRecorder) ObserveBuild(mode domain.Mode, success bool, d time.Duration) {
	if r == nil {
		return
	}
	outcome := "failed"
	if success {
		outcome = "success"
	}
	r.buildDuration.WithLabelValues(string(mode)).Observe(d.Seconds())
	r.buildOutcomes.WithLabelValues(string(mode), outcome).Inc()
}

// ObserveTarget records one visited target. Only targets whose action ran
// contribute to the duration histogram.
func (r *PrometheusRecorder) ObserveTarget(name string, status domain.TargetStatus, d time.Duration) {
	if r == nil {
		return
	}
	r.targetResults.WithLabelValues(name, string(status)).Inc()
	if status == domain.StatusSucceeded || status == domain.StatusFailed {
		r.targetDuration.WithLabelValues(name).Observe(d.Seconds())
	}
}

// IncWatchEvents adds count qualifying watch events.
func (r *PrometheusRecorder) IncWatchEvents(count int) {
	if r == nil || count <= 0 {
		return
	}
	r.watchEvents.Add(float64(count))
}

// SetRunStepUp records whether the run step is alive.
func (r *PrometheusRecorder) SetRunStepUp(up bool) {
	if r == nil {
		return
	}
	if up {
		r.runStepUp.Set(1)
		return
	}
	r.runStepUp.Set(0)
}
