package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/goodtune/equtil/internal/equipment"
	"github.com/goodtune/equtil/internal/usage"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecord(t *testing.T) {
	start := time.Date(2022, 1, 1, 9, 0, 0, 0, time.UTC)
	sessions := []equipment.Session{
		{Equipment: equipment.Equipment{Name: "Elliptical 1", Category: equipment.CategoryElliptical}, Start: start, End: start.Add(30 * time.Minute)},
		{Equipment: equipment.Equipment{Name: "Elliptical 2", Category: equipment.CategoryElliptical}, Start: start.Add(26 * time.Minute), End: start.Add(79 * time.Minute)},
	}
	results := []usage.CategoryUsage{
		{Category: equipment.CategoryElliptical, Usages: []usage.Usage{{Machines: 1, Minutes: 75}, {Machines: 2, Minutes: 4}}},
	}

	before := testutil.ToFloat64(SessionsAnalyzed.WithLabelValues("ELLIPTICAL"))
	Record(sessions, results, 5*time.Millisecond)

	if got := testutil.ToFloat64(SessionsAnalyzed.WithLabelValues("ELLIPTICAL")) - before; got != 2 {
		t.Errorf("Expected 2 sessions counted, got %v", got)
	}
	if got := testutil.ToFloat64(ConcurrencyMinutes.WithLabelValues("ELLIPTICAL", "2")); got != 4 {
		t.Errorf("Expected 4 minutes at 2 machines, got %v", got)
	}
	if got := testutil.ToFloat64(PeakMachines.WithLabelValues("ELLIPTICAL")); got != 2 {
		t.Errorf("Expected peak 2, got %v", got)
	}
	if got := testutil.ToFloat64(ActiveMinutes.WithLabelValues("ELLIPTICAL")); got != 79 {
		t.Errorf("Expected 79 active minutes, got %v", got)
	}

	// A later run without ellipticals clears the stale gauges.
	Record(nil, []usage.CategoryUsage{{Category: equipment.CategoryTreadmill, Usages: []usage.Usage{{Machines: 1, Minutes: 10}}}}, time.Millisecond)
	if n := testutil.CollectAndCount(PeakMachines); n != 1 {
		t.Errorf("Expected 1 peak series after reset, got %d", n)
	}
}

func TestWriteTextfile(t *testing.T) {
	Record(nil, []usage.CategoryUsage{{Category: equipment.CategoryTreadmill, Usages: []usage.Usage{{Machines: 1, Minutes: 10}}}}, time.Millisecond)

	path := filepath.Join(t.TempDir(), "collector", "equtil.prom")
	if err := WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	body := string(data)
	for _, want := range []string{
		`equtil_concurrency_minutes{category="TREADMILL",machines="1"} 10`,
		`equtil_peak_machines{category="TREADMILL"} 1`,
		"equtil_analysis_duration_seconds_count",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("Expected textfile to contain %q, got:\n%s", want, body)
		}
	}
}
