package builder

import "github.com/signalsfoundry/tsn-scheduler/internal/solver"

// emitInstanceReplicaLinkage is stage 4 (spec.md §4.3.2): for every
// (instance, replica) other than (0,0), tie O[f,ℓ,i,r] to the instance's
// base offset O[f,ℓ,0,0] plus i·period(f). Under path selection the
// equality is conditional on the same U(ℓ,f) indicator stage 3 already
// derived, reusing it directly: U=1 means O[f,ℓ,0,0] is active so the
// linkage equation holds; U=0 means O[f,ℓ,0,0]=0 (asserted in stage 3) and
// every (i,r) is forced to 0 too.
func (e *emitter) emitInstanceReplicaLinkage() error {
	for _, f := range e.sortedFrames() {
		for _, o := range f.Offsets() {
			base := offsetVar(o, 0, 0)
			uVar, gated := e.active[f.ID][o.Link]
			for i := 0; i < o.NumInstances; i++ {
				for r := 0; r < o.NumReplicas; r++ {
					if i == 0 && r == 0 {
						continue
					}
					v := offsetVar(o, i, r)
					linkEq := solver.Linear{
						Terms: []solver.Term{{Coeff: 1, Var: v}, {Coeff: -1, Var: base}},
						Cmp:   solver.EQ,
						RHS:   int64(i) * f.Period,
					}
					if !gated {
						if err := e.adapter.AssertLinear(linkEq); err != nil {
							return err
						}
						continue
					}
					zeroEq := solver.Linear{Terms: []solver.Term{{Coeff: 1, Var: v}}, Cmp: solver.EQ, RHS: 0}
					if err := e.adapter.AssertIte(uVar, linkEq, zeroEq); err != nil {
						return err
					}
				}
			}
		}
	}
	return nil
}
