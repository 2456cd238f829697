package builder

import "github.com/signalsfoundry/tsn-scheduler/internal/solver"

// emitPathOrdering is stage 5 (spec.md §4.3.4): for every selected path and
// every consecutive link pair on it, the downstream link's base offset must
// start at least timeslots(upstream) + switch_minimum_time after the
// upstream link's base offset. Guarded by the path's X[f,k,p]=1 indicator
// when path selection is active; unconditional otherwise.
func (e *emitter) emitPathOrdering() error {
	for _, f := range e.sortedFrames() {
		for _, k := range f.Receivers {
			paths := e.net.Paths().PathsBetween(f.Sender, k)
			candidates := paths
			if !e.opts.PathSelector {
				candidates = paths[:1]
			}
			for idx, p := range candidates {
				var condVar solver.Var
				var guarded bool
				if e.opts.PathSelector {
					condVar = e.result.PathChoice[pathChoiceKey(f.ID, k, idx)]
					guarded = true
				}

				var outerErr error
				p.ConsecutivePairs(func(a, b string) {
					if outerErr != nil {
						return
					}
					oa, ok := f.OffsetFor(a)
					if !ok {
						return
					}
					ob, ok := f.OffsetFor(b)
					if !ok {
						return
					}
					// O[b,0,0] - O[a,0,0] >= timeslots(oa) + switch_minimum_time
					lin := solver.Linear{
						Terms: []solver.Term{
							{Coeff: 1, Var: offsetVar(ob, 0, 0)},
							{Coeff: -1, Var: offsetVar(oa, 0, 0)},
						},
						Cmp: solver.GE,
						RHS: oa.Timeslots + e.net.SwitchMinimumTime,
					}
					if guarded {
						outerErr = e.adapter.AssertIndicator(condVar, 1, lin)
						return
					}
					outerErr = e.adapter.AssertLinear(lin)
				})
				if outerErr != nil {
					return outerErr
				}
			}
		}
	}
	return nil
}
