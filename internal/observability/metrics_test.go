package observability

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
)

func TestObserveStageRecordsCounts(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector, err := NewBuildCollector(reg)
	if err != nil {
		t.Fatalf("NewBuildCollector: %v", err)
	}

	collector.ObserveStage("contention_freedom", 0, 42, 5*time.Millisecond)

	if got := testutil.ToFloat64(collector.ConstraintsEmitted.WithLabelValues("contention_freedom")); got != 42 {
		t.Fatalf("constraints emitted = %v, want 42", got)
	}

	if count := histogramSampleCount(t, reg, "scheduler_build_stage_duration_seconds", map[string]string{
		"stage": "contention_freedom",
	}); count != 1 {
		t.Fatalf("stage duration sample_count = %d, want 1", count)
	}
}

func TestObserveSolveRecordsResult(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector, err := NewBuildCollector(reg)
	if err != nil {
		t.Fatalf("NewBuildCollector: %v", err)
	}

	collector.ObserveSolve("optimal", 250*time.Millisecond)

	if got := testutil.ToFloat64(collector.SolveResult.WithLabelValues("optimal")); got != 1 {
		t.Fatalf("solve result count = %v, want 1", got)
	}
	if count := histogramSampleCount(t, reg, "scheduler_solve_duration_seconds", nil); count != 1 {
		t.Fatalf("solve duration sample_count = %d, want 1", count)
	}
}

func TestMetricsHandlerExposesBuildMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector, err := NewBuildCollector(reg)
	if err != nil {
		t.Fatalf("NewBuildCollector: %v", err)
	}
	collector.ObserveStage("variable_creation", 10, 0, time.Millisecond)
	collector.ObserveSolve("feasible", time.Second)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rr := httptest.NewRecorder()
	collector.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("/metrics status = %d, want 200", rr.Code)
	}
	body := rr.Body.String()
	for _, metric := range []string{
		"scheduler_build_variables_emitted_total",
		"scheduler_build_constraints_emitted_total",
		"scheduler_build_stage_duration_seconds",
		"scheduler_solve_duration_seconds",
		"scheduler_solve_results_total",
	} {
		if !strings.Contains(body, metric) {
			t.Fatalf("expected %q in /metrics output", metric)
		}
	}
}

func histogramSampleCount(t *testing.T, gatherer prometheus.Gatherer, name string, labels map[string]string) uint64 {
	t.Helper()

	metrics, err := gatherer.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	for _, mf := range metrics {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.Metric {
			if matchLabels(m.GetLabel(), labels) && m.GetHistogram() != nil {
				return m.GetHistogram().GetSampleCount()
			}
		}
	}
	return 0
}

func matchLabels(got []*dto.LabelPair, want map[string]string) bool {
	if len(want) == 0 {
		return true
	}
	matched := 0
	for _, lp := range got {
		if val, ok := want[lp.GetName()]; ok && val == lp.GetValue() {
			matched++
		}
	}
	return matched == len(want)
}
