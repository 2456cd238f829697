package builder

import "github.com/signalsfoundry/tsn-scheduler/internal/solver"

// emitEndToEndDelay is stage 6 (spec.md §4.3.6): for every (frame,
// receiver, path), the last link's departure minus the first link's start
// must not exceed the frame's end-to-end bound. Guarded by the path's
// X[f,k,p]=1 indicator when path selection is active.
func (e *emitter) emitEndToEndDelay() error {
	for _, f := range e.sortedFrames() {
		for _, k := range f.Receivers {
			paths := e.net.Paths().PathsBetween(f.Sender, k)
			candidates := paths
			if !e.opts.PathSelector {
				candidates = paths[:1]
			}
			for idx, p := range candidates {
				first, ok := f.OffsetFor(p.First())
				if !ok {
					continue
				}
				last, ok := f.OffsetFor(p.Last())
				if !ok {
					continue
				}
				lin := solver.Linear{
					Terms: []solver.Term{
						{Coeff: 1, Var: offsetVar(last, 0, 0)},
						{Coeff: -1, Var: offsetVar(first, 0, 0)},
					},
					Cmp: solver.LE,
					RHS: f.EndToEnd - last.Timeslots,
				}
				if e.opts.PathSelector {
					condVar := e.result.PathChoice[pathChoiceKey(f.ID, k, idx)]
					if err := e.adapter.AssertIndicator(condVar, 1, lin); err != nil {
						return err
					}
					continue
				}
				if err := e.adapter.AssertLinear(lin); err != nil {
					return err
				}
			}
		}
	}
	return nil
}
