package builder

import (
	"math"
	"sort"

	"github.com/signalsfoundry/tsn-scheduler/internal/solver"
)

// emitDistanceObjective is stage 8 (spec.md §4.3.7): bracket each frame's
// D_f between its first and last offset on every candidate path, and
// maximize the weighted sum of every D_f and D_ℓ. Variables were already
// declared in stage 1 (declareFrameDistances, declareLinkDistances) since
// stage 7 references D_ℓ as slack; no constraint on D_ℓ is added here, so
// its declared range and its stage-7 slack role are all that bound it.
// Only the D_f bracketing constraints and the objective belong here.
//
// When optimization is disabled the distance variables were bounded to
// [0,0] at declaration time, which alone is enough to pin them -- the
// bracketing constraints below still apply and are trivially satisfiable
// at D=0 because every schedule that reaches this stage already satisfies
// the underlying timing and ordering constraints without slack.
func (e *emitter) emitDistanceObjective() error {
	for _, f := range e.sortedFrames() {
		df := e.result.FrameDistance[f.ID]
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
				// O_first >= starting(f) + D_f
				lower := solver.Linear{
					Terms: []solver.Term{
						{Coeff: 1, Var: offsetVar(first, 0, 0)},
						{Coeff: -1, Var: df},
					},
					Cmp: solver.GE,
					RHS: f.Starting,
				}
				// O_last <= deadline(f) - timeslots(last) - D_f
				upper := solver.Linear{
					Terms: []solver.Term{
						{Coeff: 1, Var: offsetVar(last, 0, 0)},
						{Coeff: 1, Var: df},
					},
					Cmp: solver.LE,
					RHS: f.Deadline - last.Timeslots,
				}
				if e.opts.PathSelector {
					condVar := e.result.PathChoice[pathChoiceKey(f.ID, k, idx)]
					if err := e.adapter.AssertIndicator(condVar, 1, lower); err != nil {
						return err
					}
					if err := e.adapter.AssertIndicator(condVar, 1, upper); err != nil {
						return err
					}
					continue
				}
				if err := e.adapter.AssertLinear(lower); err != nil {
					return err
				}
				if err := e.adapter.AssertLinear(upper); err != nil {
					return err
				}
			}
		}
	}

	if !e.opts.Optimization {
		return nil
	}

	// solver.Term coefficients are integers, so both real-valued weights are
	// scaled by 1000 and rounded; their ratio is kept to three decimals.
	frameWeight := int64(math.Round(e.opts.FrameDistanceWeight * 1000))
	linkWeight := int64(math.Round(e.opts.LinkDistanceWeight * 1000))
	var terms []solver.Term
	for _, f := range e.sortedFrames() {
		terms = append(terms, solver.Term{Coeff: frameWeight, Var: e.result.FrameDistance[f.ID]})
	}
	for _, link := range e.sortedLinkDistanceKeys() {
		terms = append(terms, solver.Term{Coeff: linkWeight, Var: e.result.LinkDistance[link]})
	}
	return e.adapter.SetObjective(terms, solver.Maximize)
}

// sortedLinkDistanceKeys returns the link IDs that have a declared D_ℓ
// variable, in ascending order, so the objective's term list is built
// deterministically.
func (e *emitter) sortedLinkDistanceKeys() []string {
	keys := make([]string, 0, len(e.result.LinkDistance))
	for k := range e.result.LinkDistance {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
