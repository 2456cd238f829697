package builder

import (
	"fmt"

	"github.com/signalsfoundry/tsn-scheduler/internal/solver"
	"github.com/signalsfoundry/tsn-scheduler/internal/vartable"
	"github.com/signalsfoundry/tsn-scheduler/model"
)

// emitPathSelectorVariables is stage 2 (spec.md §4.3.3): for each (frame,
// receiver), one binary X[f,k,p] per candidate path, constrained to sum to
// exactly one. A no-op when path selection is disabled.
func (e *emitter) emitPathSelectorVariables() error {
	if !e.opts.PathSelector {
		return nil
	}
	for _, f := range e.sortedFrames() {
		for _, k := range f.Receivers {
			paths := e.net.Paths().PathsBetween(f.Sender, k)
			terms := make([]solver.Term, 0, len(paths))
			for idx := range paths {
				name := vartable.PathChoiceVarName(f.ID, k, idx)
				v, err := e.adapter.NewBinary(name)
				if err != nil {
					return err
				}
				e.result.PathChoice[pathChoiceKey(f.ID, k, idx)] = v
				terms = append(terms, solver.Term{Coeff: 1, Var: v})
			}
			if err := e.adapter.AssertLinear(solver.Linear{Terms: terms, Cmp: solver.EQ, RHS: 1}); err != nil {
				return err
			}
		}
	}
	return nil
}

// emitPathActivationCoupling is stage 3 (spec.md §4.3.3): for every link ℓ
// touched by frame f, derive U(ℓ,f) = OR over receivers k of (S(ℓ,f,k) ≥ 1),
// then assert U(ℓ,f)=1 ⇒ O[f,ℓ,0,0] ≥ 1 and U(ℓ,f)=0 ⇒ O[f,ℓ,0,0] = 0 via a
// single AssertIte (the two branches are exactly complementary). A no-op
// when path selection is disabled, since every materialized offset is then
// unconditionally active.
func (e *emitter) emitPathActivationCoupling() error {
	if !e.opts.PathSelector {
		return nil
	}
	for _, f := range e.sortedFrames() {
		e.active[f.ID] = map[string]solver.Var{}
		for _, o := range f.Offsets() {
			link := o.Link
			var usesLink []solver.Var
			for _, k := range f.Receivers {
				paths := e.net.Paths().PathsBetween(f.Sender, k)
				var containing []solver.Var
				for idx, p := range paths {
					if !pathContainsLink(p.Links, link) {
						continue
					}
					x := e.result.PathChoice[pathChoiceKey(f.ID, k, idx)]
					o.PathUsed[fmt.Sprintf("%s|%d", k, idx)] = model.VarHandle(x)
					containing = append(containing, x)
				}
				if len(containing) == 0 {
					continue
				}
				sVar := containing[0]
				if len(containing) > 1 {
					var err error
					sVar, err = e.adapter.NewBinary(fmt.Sprintf("S_%s_%s_%s_%d", f.ID, k, link, e.nextSeq()))
					if err != nil {
						return err
					}
					if err := e.adapter.AssertOr(sVar, containing); err != nil {
						return err
					}
				}
				usesLink = append(usesLink, sVar)
			}
			if len(usesLink) == 0 {
				continue
			}
			uVar := usesLink[0]
			if len(usesLink) > 1 {
				var err error
				uVar, err = e.adapter.NewBinary(fmt.Sprintf("U_%s_%s", f.ID, link))
				if err != nil {
					return err
				}
				if err := e.adapter.AssertOr(uVar, usesLink); err != nil {
					return err
				}
			}
			e.active[f.ID][link] = uVar

			o00 := offsetVar(o, 0, 0)
			then := solver.Linear{Terms: []solver.Term{{Coeff: 1, Var: o00}}, Cmp: solver.GE, RHS: 1}
			els := solver.Linear{Terms: []solver.Term{{Coeff: 1, Var: o00}}, Cmp: solver.EQ, RHS: 0}
			if err := e.adapter.AssertIte(uVar, then, els); err != nil {
				return err
			}
		}
	}
	return nil
}

func pathChoiceKey(frameID, receiverID string, pathIdx int) string {
	return fmt.Sprintf("%s|%s|%d", frameID, receiverID, pathIdx)
}

func pathContainsLink(links []string, linkID string) bool {
	for _, l := range links {
		if l == linkID {
			return true
		}
	}
	return false
}
