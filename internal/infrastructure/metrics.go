package infrastructure

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// RunMetrics holds the Prometheus collectors of one pipeline run. Each run
// owns its registry; nothing is registered globally.
type RunMetrics struct {
	Registry *prometheus.Registry

	FilesTotal     *prometheus.CounterVec
	RowsTotal      *prometheus.CounterVec
	ValuesClipped  prometheus.Counter
	GapsFilled     prometheus.Counter
	LastRunSuccess prometheus.Gauge
	StageDuration  *prometheus.HistogramVec
}

// NewRunMetrics creates and registers the run collectors
func NewRunMetrics() *RunMetrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &RunMetrics{
		Registry: reg,
		FilesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "aqiclean_files_total",
				Help: "Source workbooks seen, by result (read, skipped, failed)",
			},
			[]string{"result"},
		),
		RowsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "aqiclean_rows_total",
				Help: "Rows handled per stage, by result",
			},
			[]string{"stage", "result"},
		),
		ValuesClipped: factory.NewCounter(prometheus.CounterOpts{
			Name: "aqiclean_values_clipped_total",
			Help: "AQI values replaced by an IQR bound",
		}),
		GapsFilled: factory.NewCounter(prometheus.CounterOpts{
			Name: "aqiclean_gaps_filled_total",
			Help: "Missing AQI values filled by time interpolation",
		}),
		LastRunSuccess: factory.NewGauge(prometheus.GaugeOpts{
			Name: "aqiclean_last_run_success",
			Help: "1 if the last run completed, 0 otherwise",
		}),
		StageDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "aqiclean_stage_duration_seconds",
				Help:    "Pipeline stage duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"stage"},
		),
	}
}

// ObserveStage records how long a stage took
func (m *RunMetrics) ObserveStage(stage string, d time.Duration) {
	if m == nil {
		return
	}
	m.StageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

// AddRows adds n to the row counter of stage/result. Zero is still
// recorded so every series shows up in the textfile.
func (m *RunMetrics) AddRows(stage, result string, n int) {
	if m == nil {
		return
	}
	m.RowsTotal.WithLabelValues(stage, result).Add(float64(n))
}

// AddFiles adds n to the file counter of result
func (m *RunMetrics) AddFiles(result string, n int) {
	if m == nil {
		return
	}
	m.FilesTotal.WithLabelValues(result).Add(float64(n))
}

// WriteTextfile writes the registry in text exposition format for the
// node_exporter textfile collector. The write is atomic.
func (m *RunMetrics) WriteTextfile(path string) error {
	if m == nil || path == "" {
		return nil
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create metrics directory %s: %w", dir, err)
		}
	}
	if err := prometheus.WriteToTextfile(path, m.Registry); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return nil
}
