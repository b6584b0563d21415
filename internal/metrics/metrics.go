// Package metrics records the outcome of a batch run as Prometheus metrics
// and writes them in the node exporter textfile format.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"qosst-scope/internal/failure"
)

// Run holds the metrics of a single tool invocation
type Run struct {
	registry *prometheus.Registry
	start    time.Time

	samples  prometheus.Gauge
	symbols  prometheus.Gauge
	stage    *prometheus.GaugeVec
	success  prometheus.Gauge
	failure  *prometheus.GaugeVec
	duration prometheus.Gauge
	lastRun  prometheus.Gauge
}

// NewRun creates the metrics of one run of tool
func NewRun(tool string) *Run {
	labels := prometheus.Labels{"tool": tool}
	r := &Run{
		registry: prometheus.NewRegistry(),
		start:    time.Now(),
		samples: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "qosst_capture_samples",
			Help:        "Number of I/Q samples in the loaded capture",
			ConstLabels: labels,
		}),
		symbols: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "qosst_symbol_rows",
			Help:        "Number of rows in the loaded symbol table",
			ConstLabels: labels,
		}),
		stage: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name:        "qosst_stage_duration_seconds",
			Help:        "Wall time spent in each stage of the run",
			ConstLabels: labels,
		}, []string{"stage"}),
		success: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "qosst_run_success",
			Help:        "1 if the last run produced its output, 0 otherwise",
			ConstLabels: labels,
		}),
		failure: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name:        "qosst_run_failure",
			Help:        "1 for the failure kind that aborted the last run",
			ConstLabels: labels,
		}, []string{"kind"}),
		duration: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "qosst_run_duration_seconds",
			Help:        "Wall time of the last run",
			ConstLabels: labels,
		}),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "qosst_run_last_timestamp_seconds",
			Help:        "Unix time the last run finished",
			ConstLabels: labels,
		}),
	}

	r.registry.MustRegister(r.samples, r.symbols, r.stage, r.success, r.failure, r.duration, r.lastRun)
	return r
}

// SetSamples records the capture length
func (r *Run) SetSamples(n int) {
	r.samples.Set(float64(n))
}

// SetSymbols records the symbol table length
func (r *Run) SetSymbols(n int) {
	r.symbols.Set(float64(n))
}

// Stage runs fn and records its duration under name
func (r *Run) Stage(name string, fn func() error) error {
	start := time.Now()
	err := fn()
	r.stage.WithLabelValues(name).Set(time.Since(start).Seconds())
	return err
}

// Finish records the outcome of the run
func (r *Run) Finish(err error) {
	now := time.Now()
	r.duration.Set(now.Sub(r.start).Seconds())
	r.lastRun.Set(float64(now.Unix()))
	if err == nil {
		r.success.Set(1)
		return
	}
	r.success.Set(0)
	r.failure.WithLabelValues(failure.Kind(err)).Set(1)
}

// WriteFile writes every metric to path in the textfile format. The file is
// replaced atomically.
func (r *Run) WriteFile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	return nil
}
