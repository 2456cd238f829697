package builder

import (
	"fmt"

	"github.com/signalsfoundry/tsn-scheduler/core"
	"github.com/signalsfoundry/tsn-scheduler/internal/solver"
	"github.com/signalsfoundry/tsn-scheduler/model"
)

// emitContentionFreedom is stage 7 (spec.md §4.3.5): for every distinct
// pair of frames sharing a link, for every pair of instances whose
// admissible windows can collide (core.CollidingInstancePairs already
// applies the interval-admissibility filter that keeps this scalable), and
// for every combination of their replicas, assert that the two
// transmissions do not overlap in time.
//
// The per-link distance D_ℓ (declared in stage 1, summed into the
// objective in stage 8) is folded in here as additive slack, widening the gap the order
// constraint demands -- spec.md §4.3.7: "used as an additive slack in the
// pairwise non-overlap assertions".
func (e *emitter) emitContentionFreedom() error {
	linksToFrames := map[string][]*model.Frame{}
	var linkOrder []string
	for _, f := range e.sortedFrames() {
		for _, o := range f.Offsets() {
			if _, ok := linksToFrames[o.Link]; !ok {
				linkOrder = append(linkOrder, o.Link)
			}
			linksToFrames[o.Link] = append(linksToFrames[o.Link], f)
		}
	}

	for _, link := range linkOrder {
		frames := linksToFrames[link]
		dLink := e.result.LinkDistance[link]
		for i := 0; i < len(frames); i++ {
			for j := i + 1; j < len(frames); j++ {
				f1, f2 := frames[i], frames[j]
				if err := e.emitLinkPairNonOverlap(link, f1, f2, dLink); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func (e *emitter) emitLinkPairNonOverlap(link string, f1, f2 *model.Frame, dLink solver.Var) error {
	o1, ok := f1.OffsetFor(link)
	if !ok {
		return nil
	}
	o2, ok := f2.OffsetFor(link)
	if !ok {
		return nil
	}

	n1 := f1.NumInstances(e.net.Hyperperiod)
	n2 := f2.NumInstances(e.net.Hyperperiod)
	pairs := core.CollidingInstancePairs(f1, n1, f2, n2)

	active1, gated1 := e.active[f1.ID][link]
	active2, gated2 := e.active[f2.ID][link]

	for _, pair := range pairs {
		i1, i2 := pair[0], pair[1]
		for r1 := 0; r1 < o1.NumReplicas; r1++ {
			for r2 := 0; r2 < o2.NumReplicas; r2++ {
				v1 := offsetVar(o1, i1, r1)
				v2 := offsetVar(o2, i2, r2)
				name := fmt.Sprintf("%s_%s_%s_%d_%d_%d_%d_%d", f1.ID, f2.ID, link, i1, r1, i2, r2, e.nextSeq())
				if err := e.assertNonOverlap(name, v1, o1.Timeslots, v2, o2.Timeslots, dLink, active1, gated1, active2, gated2); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// assertNonOverlap encodes "v1+ts1+slack <= v2 OR v2+ts2+slack <= v1" using
// a fresh binary `before` switch and AssertIte, the builder's translation
// of spec.md §2's assert_non_overlap_or_unused primitive onto the lower
// level assert_ite/assert_indicator contract of §4.4.
//
// Under path selection, the disjunction must additionally tolerate either
// side being unused (O=0): rather than building AND-of-OR gadgets, a
// single auxiliary integer "pairState" variable encodes the 3-way product
// of (active1, active2, before) as pairState = active1 + 2*active2 +
// 4*before, and the two order constraints are each indicator-guarded on
// one specific pairState value (7 = both active and before; 3 = both
// active and not before). Every other pairState value leaves the pair
// unconstrained, which is correct: if either side is inactive its offset
// is already pinned to 0 by stage 3, and an inactive offset cannot
// contend.
func (e *emitter) assertNonOverlap(name string, v1 solver.Var, ts1 int64, v2 solver.Var, ts2 int64, dLink solver.Var, active1 solver.Var, gated1 bool, active2 solver.Var, gated2 bool) error {
	before, err := e.adapter.NewBinary("BEFORE_" + name)
	if err != nil {
		return err
	}

	order1 := solver.Linear{
		Terms: []solver.Term{{Coeff: 1, Var: v1}, {Coeff: 1, Var: dLink}, {Coeff: -1, Var: v2}},
		Cmp:   solver.LE,
		RHS:   -ts1,
	}
	order2 := solver.Linear{
		Terms: []solver.Term{{Coeff: 1, Var: v2}, {Coeff: 1, Var: dLink}, {Coeff: -1, Var: v1}},
		Cmp:   solver.LE,
		RHS:   -ts2,
	}

	if !gated1 && !gated2 {
		if err := e.adapter.AssertIndicator(before, 1, order1); err != nil {
			return err
		}
		return e.adapter.AssertIndicator(before, 0, order2)
	}

	one := func(gated bool, v solver.Var) (solver.Var, error) {
		if gated {
			return v, nil
		}
		return e.constActive(name + "_const")
	}
	aVar1, err := one(gated1, active1)
	if err != nil {
		return err
	}
	aVar2, err := one(gated2, active2)
	if err != nil {
		return err
	}

	pairState, err := e.adapter.NewInteger("PS_"+name, 0, 7)
	if err != nil {
		return err
	}
	if err := e.adapter.AssertLinear(solver.Linear{
		Terms: []solver.Term{
			{Coeff: 1, Var: pairState},
			{Coeff: -1, Var: aVar1},
			{Coeff: -2, Var: aVar2},
			{Coeff: -4, Var: before},
		},
		Cmp: solver.EQ,
		RHS: 0,
	}); err != nil {
		return err
	}
	if err := e.adapter.AssertIndicator(pairState, 7, order1); err != nil {
		return err
	}
	return e.adapter.AssertIndicator(pairState, 3, order2)
}

// constActive returns a binary variable pinned to 1, used in place of a
// missing U(ℓ,f) indicator when one side of a pair is always active (path
// selection disabled for that frame/link but the other side is gated).
func (e *emitter) constActive(name string) (solver.Var, error) {
	v, err := e.adapter.NewBinary("ACTIVE_" + name)
	if err != nil {
		return 0, err
	}
	if err := e.adapter.AssertLinear(solver.Linear{
		Terms: []solver.Term{{Coeff: 1, Var: v}},
		Cmp:   solver.EQ,
		RHS:   1,
	}); err != nil {
		return 0, err
	}
	return v, nil
}
