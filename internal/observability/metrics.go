package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// BuildCollector bundles the Prometheus metrics emitted while the
// constraint builder emits a model (spec.md §4.3.8) and while a solver
// backend solves it (spec.md §4.4). Each builder stage (variable_creation,
// path_selector_variables, path_activation_coupling,
// instance_replica_linkage, path_ordering, end_to_end_delay,
// contention_freedom, distance_objective) reports its own variable/constraint counts and wall time, labeled by
// stage name so a single run's /metrics output shows where the emission
// time and constraint volume went.
type BuildCollector struct {
	gatherer prometheus.Gatherer

	VariablesEmitted   *prometheus.CounterVec
	ConstraintsEmitted *prometheus.CounterVec
	StageDuration      *prometheus.HistogramVec
	SolveDuration      prometheus.Histogram
	SolveResult        *prometheus.CounterVec
}

// NewBuildCollector registers the builder/solver Prometheus metrics
// against the provided registerer, defaulting to the global Prometheus
// registry when nil.
func NewBuildCollector(reg prometheus.Registerer) (*BuildCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	variables := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "scheduler_build_variables_emitted_total",
		Help: "Decision variables emitted by the constraint builder, labeled by stage.",
	}, []string{"stage"})
	variables, err := registerCounterVec(reg, variables, "scheduler_build_variables_emitted_total")
	if err != nil {
		return nil, err
	}

	constraints := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "scheduler_build_constraints_emitted_total",
		Help: "Constraints emitted by the constraint builder, labeled by stage.",
	}, []string{"stage"})
	constraints, err = registerCounterVec(reg, constraints, "scheduler_build_constraints_emitted_total")
	if err != nil {
		return nil, err
	}

	stageDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "scheduler_build_stage_duration_seconds",
		Help:    "Wall time spent in each constraint builder stage.",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
	}, []string{"stage"})
	stageDuration, err = registerHistogramVec(reg, stageDuration, "scheduler_build_stage_duration_seconds")
	if err != nil {
		return nil, err
	}

	solveDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "scheduler_solve_duration_seconds",
		Help:    "Wall time spent inside a single Adapter.Solve call.",
		Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60, 300},
	})
	solveDuration, err = registerHistogram(reg, solveDuration, "scheduler_solve_duration_seconds")
	if err != nil {
		return nil, err
	}

	solveResult := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "scheduler_solve_results_total",
		Help: "Solve outcomes, labeled by solver.Status string (optimal, feasible, infeasible, timeout).",
	}, []string{"status"})
	solveResult, err = registerCounterVec(reg, solveResult, "scheduler_solve_results_total")
	if err != nil {
		return nil, err
	}

	return &BuildCollector{
		gatherer:           gatherer,
		VariablesEmitted:   variables,
		ConstraintsEmitted: constraints,
		StageDuration:      stageDuration,
		SolveDuration:      solveDuration,
		SolveResult:        solveResult,
	}, nil
}

// ObserveStage records the variables and constraints emitted, and the
// time taken, by one named builder stage.
func (c *BuildCollector) ObserveStage(stage string, variables, constraints int, d time.Duration) {
	if c == nil {
		return
	}
	if c.VariablesEmitted != nil {
		c.VariablesEmitted.WithLabelValues(stage).Add(float64(variables))
	}
	if c.ConstraintsEmitted != nil {
		c.ConstraintsEmitted.WithLabelValues(stage).Add(float64(constraints))
	}
	if c.StageDuration != nil {
		c.StageDuration.WithLabelValues(stage).Observe(d.Seconds())
	}
}

// ObserveSolve records one Adapter.Solve call's outcome and duration.
func (c *BuildCollector) ObserveSolve(status string, d time.Duration) {
	if c == nil {
		return
	}
	if c.SolveDuration != nil {
		c.SolveDuration.Observe(d.Seconds())
	}
	if c.SolveResult != nil {
		c.SolveResult.WithLabelValues(status).Inc()
	}
}

// Handler exposes a ready-to-use /metrics handler.
func (c *BuildCollector) Handler() http.Handler {
	gatherer := c.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
