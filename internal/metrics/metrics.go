package metrics

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/goodtune/equtil/internal/equipment"
	"github.com/goodtune/equtil/internal/usage"
	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds every equtil collector. It is separate from the default
// registry so textfile exports carry no Go runtime metrics.
var Registry = prometheus.NewRegistry()

var (
	// Histogram metrics
	ConcurrencyMinutes = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "equtil_concurrency_minutes",
			Help: "Minutes with exactly N machines of a category in use during the last analysis",
		},
		[]string{"category", "machines"},
	)

	PeakMachines = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "equtil_peak_machines",
			Help: "Highest number of machines of a category in use at once during the last analysis",
		},
		[]string{"category"},
	)

	ActiveMinutes = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "equtil_active_minutes",
			Help: "Minutes with at least one machine of a category in use during the last analysis",
		},
		[]string{"category"},
	)

	// Input metrics
	SessionsAnalyzed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "equtil_sessions_analyzed_total",
			Help: "Total sessions analyzed",
		},
		[]string{"category"},
	)

	AnalysisDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "equtil_analysis_duration_seconds",
			Help:    "Analysis duration in seconds",
			Buckets: []float64{.0001, .001, .01, .1, 1, 10},
		},
	)
)

func init() {
	// Register all metrics
	Registry.MustRegister(
		ConcurrencyMinutes,
		PeakMachines,
		ActiveMinutes,
		SessionsAnalyzed,
		AnalysisDuration,
	)
}

// Record updates the collectors from one analysis run. Gauges are reset
// so they describe only the latest results.
func Record(sessions []equipment.Session, results []usage.CategoryUsage, elapsed time.Duration) {
	ConcurrencyMinutes.Reset()
	PeakMachines.Reset()
	ActiveMinutes.Reset()

	for _, s := range sessions {
		SessionsAnalyzed.WithLabelValues(s.Equipment.Category.String()).Inc()
	}

	for _, r := range results {
		category := r.Category.String()
		for _, u := range r.Usages {
			ConcurrencyMinutes.WithLabelValues(category, strconv.Itoa(u.Machines)).Set(float64(u.Minutes))
		}
		PeakMachines.WithLabelValues(category).Set(float64(r.PeakMachines()))
		ActiveMinutes.WithLabelValues(category).Set(float64(r.TotalMinutes()))
	}

	AnalysisDuration.Observe(elapsed.Seconds())
}

// WriteTextfile writes all collectors to path in the node_exporter
// textfile collector format, creating the parent directory if needed.
func WriteTextfile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return prometheus.WriteToTextfile(path, Registry)
}
