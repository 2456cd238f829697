package builder

import (
	"github.com/signalsfoundry/tsn-scheduler/internal/solver"
	"github.com/signalsfoundry/tsn-scheduler/internal/vartable"
	"github.com/signalsfoundry/tsn-scheduler/model"
)

// emitVariables is stage 1 (spec.md §4.3.1): for every frame, every offset,
// every instance, every replica, allocate the O[f,ℓ,i,r] integer variable
// with the range §4.3.1 pins. It also predeclares the distance variables of
// §4.3.7 (D_f per frame, D_ℓ per link) even though their bracketing
// constraints and the objective are not asserted until stage 8
// (emitDistanceObjective): spec.md §4.3.8 requires every variable be
// declared before any constraint references it, and stage 7's contention
// freedom already needs D_ℓ as additive slack, so its declaration is
// pulled forward here rather than left until stage 8.
func (e *emitter) emitVariables() error {
	for _, f := range e.sortedFrames() {
		for _, o := range f.Offsets() {
			for i := 0; i < o.NumInstances; i++ {
				lo, hi := offsetRange(f, o, i, e.opts.PathSelector)
				for r := 0; r < o.NumReplicas; r++ {
					name := vartable.OffsetVarName(f.ID, i, r, o.Link)
					v, err := e.adapter.NewInteger(name, lo, hi)
					if err != nil {
						return err
					}
					if err := o.AllocateVariable(i, r, model.VarHandle(v)); err != nil {
						return err
					}
				}
			}
		}
	}

	if err := e.declareFrameDistances(); err != nil {
		return err
	}
	return e.declareLinkDistances()
}

// offsetRange computes [lo, hi] for instance i of offset o on frame f per
// spec.md §4.3.1's two branches.
func offsetRange(f *model.Frame, o *model.Offset, i int, pathSelector bool) (lo, hi int64) {
	hi = f.Deadline - o.Timeslots + int64(i)*f.Period
	if pathSelector {
		return 0, hi
	}
	return f.Starting + int64(i)*f.Period + 1, hi
}

func (e *emitter) declareFrameDistances() error {
	for _, f := range e.sortedFrames() {
		name := vartable.DistanceFrameVarName(f.ID)
		hi := f.EndToEnd
		if !e.opts.Optimization {
			hi = 0
		}
		v, err := e.adapter.NewInteger(name, 0, hi)
		if err != nil {
			return err
		}
		e.result.FrameDistance[f.ID] = v
	}
	return nil
}

func (e *emitter) declareLinkDistances() error {
	seen := map[string]bool{}
	for _, f := range e.sortedFrames() {
		for _, o := range f.Offsets() {
			if seen[o.Link] {
				continue
			}
			seen[o.Link] = true
			name := vartable.DistanceLinkVarName(o.Link)
			hi := e.net.Hyperperiod
			if !e.opts.Optimization {
				hi = 0
			}
			v, err := e.adapter.NewInteger(name, 0, hi)
			if err != nil {
				return err
			}
			e.result.LinkDistance[o.Link] = v
		}
	}
	return nil
}

// offsetVar returns the solver variable for offset o at (instance, replica).
func offsetVar(o *model.Offset, instance, replica int) solver.Var {
	return solver.Var(o.VarHandles[instance][replica])
}
