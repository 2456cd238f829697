// Package driver orchestrates one scheduling run end to end: load the
// network and schedule-configuration documents, build the constraint
// model, run the solver (or tuner), write the solved start times back onto
// the model, and serialize the result. Grounded on the teacher's
// cmd/simulator/main.go top-to-bottom orchestration style (load config,
// build stateful objects, run, report) and the field-per-concern
// composition of internal/sbi/controller/scheduler.go's Scheduler struct,
// now adapted to a one-shot batch pipeline instead of a driving simulation
// loop.
package driver

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/signalsfoundry/tsn-scheduler/core"
	"github.com/signalsfoundry/tsn-scheduler/internal/builder"
	"github.com/signalsfoundry/tsn-scheduler/internal/config"
	"github.com/signalsfoundry/tsn-scheduler/internal/logging"
	"github.com/signalsfoundry/tsn-scheduler/internal/observability"
	"github.com/signalsfoundry/tsn-scheduler/internal/solver"
	"github.com/signalsfoundry/tsn-scheduler/internal/xerr"
)

// Driver holds everything a single scheduling run needs, assembled once
// per invocation rather than as a process-wide singleton (spec.md §9
// "Global mutable state": "Rebuild as an owned context value threaded
// through the pipeline").
type Driver struct {
	Network       *core.Network
	Configuration *config.ScheduleConfigurationDocument
	Adapter       solver.Adapter
	Log           logging.Logger
	Collector     *observability.BuildCollector
}

// New assembles a Driver from already-loaded inputs. adapter must be a
// fresh, empty solver.Adapter matching cfg.Solver (the caller picks the
// concrete smt/milp backend; Driver is backend-agnostic).
func New(net *core.Network, cfg *config.ScheduleConfigurationDocument, adapter solver.Adapter, log logging.Logger, collector *observability.BuildCollector) *Driver {
	if log == nil {
		log = logging.Noop()
	}
	return &Driver{Network: net, Configuration: cfg, Adapter: adapter, Log: log, Collector: collector}
}

// Result is what Run reports back to the caller.
type Result struct {
	Status   solver.Status
	Schedule *config.ScheduleDocument
}

// Run executes the full build-and-solve (or build-and-tune) pipeline.
// Tune mode (Configuration.Tune != 0) runs Adapter.Tune instead of Solve
// and returns a nil *Result alongside the ParamSet; the caller is responsible for persisting the
// returned ParamSet via config.WriteTuneParams.
func (d *Driver) Run(ctx context.Context) (*Result, *solver.ParamSet, error) {
	if err := d.Network.RecomputeDerivedQuantities(); err != nil {
		return nil, nil, err
	}

	opts := builder.Options{
		PathSelector:        d.Configuration.PathSelector != 0,
		Optimization:        d.Configuration.Optimization != 0,
		FrameDistanceWeight: d.Configuration.FrameDistanceWeigth,
		LinkDistanceWeight:  d.Configuration.LinkDistanceWeigth,
	}

	d.Log.Info(ctx, "emitting constraint model", logging.Any("path_selector", opts.PathSelector), logging.Any("optimization", opts.Optimization))

	buildResult, err := builder.Emit(ctx, d.Network, d.Adapter, opts, d.Collector)
	if err != nil {
		return nil, nil, err
	}

	if d.Configuration.Tune != 0 {
		tuneCtx, cancel := context.WithTimeout(ctx, time.Duration(d.Configuration.TuneTimeLimit)*time.Second)
		defer cancel()

		start := time.Now()
		params, err := d.Adapter.Tune(tuneCtx)
		if d.Collector != nil {
			d.Collector.ObserveSolve("tune", time.Since(start))
		}
		if err != nil {
			return nil, nil, xerr.Wrap(xerr.SolverError, "tune", "parameter search failed", err)
		}
		return nil, &params, nil
	}

	solveCtx, cancel := context.WithTimeout(ctx, time.Duration(d.Configuration.TimeLimit)*time.Second)
	defer cancel()

	start := time.Now()
	status, err := d.Adapter.Solve(solveCtx)
	if d.Collector != nil {
		d.Collector.ObserveSolve(status.String(), time.Since(start))
	}
	if err != nil {
		return nil, nil, xerr.Wrap(xerr.SolverError, "solve", "backend reported an error", err)
	}
	if status == solver.StatusInfeasible || status == solver.StatusTimeout {
		d.Log.Warn(ctx, "solve did not produce a feasible schedule", logging.String("status", status.String()))
		return &Result{Status: status}, nil, nil
	}

	if err := d.writeBack(buildResult); err != nil {
		return nil, nil, err
	}

	doc, err := d.buildScheduleDocument(buildResult, opts)
	if err != nil {
		return nil, nil, err
	}

	return &Result{Status: status, Schedule: doc}, nil, nil
}

// writeBack reads every offset variable's solved value out of the adapter
// and records it on the owning model.Offset (spec.md §4.5: "write
// start_time[i][r] back onto model.Offset").
func (d *Driver) writeBack(br *builder.Result) error {
	for _, f := range d.Network.FramesInOrder() {
		for _, o := range f.Offsets() {
			for i := 0; i < o.NumInstances; i++ {
				for r := 0; r < o.NumReplicas; r++ {
					h := o.VarHandles[i][r]
					val, err := d.Adapter.ValueOf(solver.Var(h))
					if err != nil {
						return xerr.Wrap(xerr.InternalInvariant, fmt.Sprintf("%s/%s", f.ID, o.Link), "read back offset value", err)
					}
					if err := o.SetStartTime(i, r, val); err != nil {
						return err
					}
				}
			}
			o.MarkConstrained()
		}
	}
	return nil
}

// buildScheduleDocument assembles the output document (spec.md §6) from
// the now-populated model.Offset values, including the selected path per
// (frame, receiver) when path selection was active.
func (d *Driver) buildScheduleDocument(br *builder.Result, opts builder.Options) (*config.ScheduleDocument, error) {
	frames := d.Network.FramesInOrder()
	sort.Slice(frames, func(i, j int) bool { return frames[i].ID < frames[j].ID })

	doc := &config.ScheduleDocument{Frames: make([]config.ScheduledFrameXML, 0, len(frames))}
	for _, f := range frames {
		sf := config.ScheduledFrameXML{FrameID: f.ID}

		for _, o := range f.Offsets() {
			for i := 0; i < o.NumInstances; i++ {
				for r := 0; r < o.NumReplicas; r++ {
					sf.Offsets = append(sf.Offsets, config.ScheduledOffsetXML{
						LinkID:    o.Link,
						Instance:  i,
						Replica:   r,
						StartTime: o.StartTime[i][r],
					})
				}
			}
		}

		if opts.PathSelector {
			for _, k := range f.Receivers {
				paths := d.Network.Paths().PathsBetween(f.Sender, k)
				for idx := range paths {
					v, ok := br.PathChoice[pathChoiceKey(f.ID, k, idx)]
					if !ok {
						continue
					}
					val, err := d.Adapter.ValueOf(v)
					if err != nil {
						return nil, xerr.Wrap(xerr.InternalInvariant, f.ID, "read back path choice", err)
					}
					if val == 1 {
						sf.SelectedPaths = append(sf.SelectedPaths, config.SelectedPathXML{ReceiverID: k, PathIndex: idx})
						break
					}
				}
			}
		}

		doc.Frames = append(doc.Frames, sf)
	}
	return doc, nil
}

func pathChoiceKey(frameID, receiverID string, pathIdx int) string {
	return fmt.Sprintf("%s|%s|%d", frameID, receiverID, pathIdx)
}
