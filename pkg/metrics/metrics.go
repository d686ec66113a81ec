// Package metrics records run-level Prometheus metrics for the batch job.
package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Recorder owns a private registry so a run never collides with the global one.
type Recorder struct {
	registry *prometheus.Registry

	StageDuration     *prometheus.HistogramVec
	RecordsLoaded     prometheus.Gauge
	Profiles          prometheus.Gauge
	SegmentCustomers  *prometheus.GaugeVec
	SelectedCustomers *prometheus.GaugeVec
}

func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		StageDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "rfm_stage_duration_seconds",
				Help:    "Duration of each pipeline stage in seconds",
				Buckets: prometheus.ExponentialBuckets(0.001, 4, 8),
			},
			[]string{"stage"},
		),
		RecordsLoaded: factory.NewGauge(prometheus.GaugeOpts{
			Name: "rfm_records_loaded",
			Help: "Purchase records read by the last run",
		}),
		Profiles: factory.NewGauge(prometheus.GaugeOpts{
			Name: "rfm_profiles",
			Help: "Customer profiles produced by the last run",
		}),
		SegmentCustomers: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "rfm_segment_customers",
				Help: "Customers per segment",
			},
			[]string{"segment"},
		),
		SelectedCustomers: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "rfm_selected_customers",
				Help: "Customers selected per targeting rule",
			},
			[]string{"rule"},
		),
	}
}

func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// ObserveStage records the time elapsed since start under the stage label.
func (r *Recorder) ObserveStage(stage string, start time.Time) {
	r.StageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}

// SetSegments replaces the per-segment gauges.
func (r *Recorder) SetSegments(counts map[string]int) {
	r.SegmentCustomers.Reset()
	for segment, n := range counts {
		r.SegmentCustomers.WithLabelValues(segment).Set(float64(n))
	}
}

func (r *Recorder) SetSelected(rule string, n int) {
	r.SelectedCustomers.WithLabelValues(rule).Set(float64(n))
}

// Push sends the registry to a Pushgateway under the given job name.
func (r *Recorder) Push(ctx context.Context, url, job, runID string) error {
	return push.New(url, job).
		Gatherer(r.registry).
		Grouping("run_id", runID).
		PushContext(ctx)
}
