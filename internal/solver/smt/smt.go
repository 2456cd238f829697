// Package smt implements solver.Adapter with a bounded integer-domain
// constraint propagation and backtracking search, standing in for an
// SMT-integer-theory-with-optimize backend (spec.md §4.4).
//
// No SMT Go binding appears anywhere in the retrieved corpus this module
// was built from (see DESIGN.md), and spec.md §1 itself treats the solver
// kernel as an opaque, swappable backend behind a narrow emit/solve
// interface -- what's specified is the contract, not the kernel. This
// backend honors that contract on the standard library alone: exact
// integer arithmetic, no floating point in any returned value.
package smt

import (
	"context"
	"fmt"
	"time"

	"github.com/signalsfoundry/tsn-scheduler/internal/solver"
	"github.com/signalsfoundry/tsn-scheduler/internal/vartable"
)

type domain struct{ lo, hi int64 }

type indicatorC struct {
	cond  solver.Var
	value int64
	lin   solver.Linear
}

type iteC struct {
	cond       solver.Var
	then, els  solver.Linear
}

type orC struct {
	condOut solver.Var
	inputs  []solver.Var
}

// Adapter is the SMT-flavored solver.Adapter implementation.
type Adapter struct {
	vt *vartable.Table

	linears    []solver.Linear
	indicators []indicatorC
	ites       []iteC
	ors        []orC

	objTerms []solver.Term
	objDir   solver.Direction
	hasObj   bool

	domains []domain // original bounds, indexed by solver.Var

	solved  bool
	status  solver.Status
	values  []int64
}

// New returns an empty SMT-style adapter.
func New() *Adapter {
	return &Adapter{vt: vartable.New()}
}

func (a *Adapter) NewInteger(name string, lo, hi int64) (solver.Var, error) {
	v, err := a.vt.NewInteger(name, lo, hi)
	if err != nil {
		return 0, err
	}
	a.domains = append(a.domains, domain{lo, hi})
	return v, nil
}

func (a *Adapter) NewBinary(name string) (solver.Var, error) {
	v, err := a.vt.NewBinary(name)
	if err != nil {
		return 0, err
	}
	a.domains = append(a.domains, domain{0, 1})
	return v, nil
}

func (a *Adapter) AssertLinear(l solver.Linear) error {
	a.linears = append(a.linears, l)
	return nil
}

func (a *Adapter) AssertIndicator(cond solver.Var, value int64, l solver.Linear) error {
	a.indicators = append(a.indicators, indicatorC{cond: cond, value: value, lin: l})
	return nil
}

func (a *Adapter) AssertOr(condOut solver.Var, inputs []solver.Var) error {
	a.ors = append(a.ors, orC{condOut: condOut, inputs: append([]solver.Var{}, inputs...)})
	return nil
}

func (a *Adapter) AssertIte(cond solver.Var, then, els solver.Linear) error {
	a.ites = append(a.ites, iteC{cond: cond, then: then, els: els})
	return nil
}

func (a *Adapter) SetObjective(terms []solver.Term, direction solver.Direction) error {
	a.objTerms = append([]solver.Term{}, terms...)
	a.objDir = direction
	a.hasObj = len(terms) > 0
	return nil
}

func (a *Adapter) Stats() solver.Stats {
	return solver.Stats{
		Variables:   a.vt.Len(),
		Constraints: len(a.linears) + len(a.indicators) + len(a.ites) + len(a.ors),
	}
}

func (a *Adapter) ValueOf(v solver.Var) (int64, error) {
	if !a.solved || a.status == solver.StatusInfeasible {
		return 0, fmt.Errorf("smt: no solution available")
	}
	if int(v) < 0 || int(v) >= len(a.values) {
		return 0, fmt.Errorf("smt: unknown variable %d", v)
	}
	return a.values[v], nil
}

// Tune has nothing to search over for this stand-in backend (it has no
// solver-specific knobs), so it reports the empty parameter set.
func (a *Adapter) Tune(ctx context.Context) (solver.ParamSet, error) {
	return solver.ParamSet{}, nil
}

// search holds the mutable state threaded through the recursive
// backtracking search, separated from Adapter so Solve stays re-entrant.
type search struct {
	a        *Adapter
	deadline time.Time
	nodes    int

	domains []domain
	values  []int64
	fixed   []bool

	bestValues []int64
	bestObj    int64
	haveBest   bool
}

func (a *Adapter) Solve(ctx context.Context) (solver.Status, error) {
	deadline := time.Now().Add(1 * time.Hour)
	if d, ok := ctx.Deadline(); ok {
		deadline = d
	}

	s := &search{
		a:        a,
		deadline: deadline,
		domains:  append([]domain{}, a.domains...),
		values:   make([]int64, len(a.domains)),
		fixed:    make([]bool, len(a.domains)),
	}

	if !s.propagate() {
		a.solved = true
		a.status = solver.StatusInfeasible
		return a.status, nil
	}

	timedOut := s.search(0)

	a.solved = true
	switch {
	case s.haveBest && timedOut:
		a.status = solver.StatusFeasible
	case s.haveBest && !timedOut:
		a.status = solver.StatusOptimal
	case !s.haveBest && timedOut:
		a.status = solver.StatusTimeout
	default:
		a.status = solver.StatusInfeasible
	}
	if s.haveBest {
		a.values = s.bestValues
	}
	return a.status, nil
}

// search performs branch-and-bound DFS starting at variable index `from`,
// returning true if it exits because of the deadline rather than because
// the tree was exhausted.
func (s *search) search(from int) (timedOut bool) {
	s.nodes++
	if s.nodes%256 == 0 && time.Now().After(s.deadline) {
		return true
	}

	// Find next unassigned variable.
	idx := -1
	for i := from; i < len(s.domains); i++ {
		if !s.fixed[i] {
			idx = i
			break
		}
	}
	if idx == -1 {
		// Complete assignment: verify every constraint, record if better.
		if s.a.verify(s.values) {
			obj := s.a.objectiveValue(s.values)
			if !s.haveBest || s.betterObjective(obj) {
				s.bestObj = obj
				s.bestValues = append([]int64{}, s.values...)
				s.haveBest = true
			}
		}
		return false
	}

	lo, hi := s.domains[idx].lo, s.domains[idx].hi
	for val := lo; val <= hi; val++ {
		saved := append([]domain{}, s.domains...)
		s.domains[idx] = domain{val, val}
		s.values[idx] = val
		s.fixed[idx] = true

		if s.propagate() {
			if s.search(idx + 1) {
				s.domains = saved
				s.fixed[idx] = false
				return true
			}
		}
		s.domains = saved
		s.fixed[idx] = false

		// Without an objective, the first feasible leaf is optimal; stop
		// as soon as we have one to avoid paying for exhaustive search.
		if s.haveBest && !s.a.hasObj {
			return false
		}
	}
	return false
}

func (s *search) betterObjective(obj int64) bool {
	if s.a.objDir == solver.Maximize {
		return obj > s.bestObj
	}
	return obj < s.bestObj
}

func (a *Adapter) objectiveValue(values []int64) int64 {
	var sum int64
	for _, t := range a.objTerms {
		sum += t.Coeff * values[t.Var]
	}
	return sum
}

// verify checks every asserted constraint against a complete assignment.
// This is the decisive correctness check; propagate is only a pruning
// heuristic and is allowed to be conservative.
func (a *Adapter) verify(values []int64) bool {
	for _, l := range a.linears {
		if !evalLinear(l, values) {
			return false
		}
	}
	for _, ind := range a.indicators {
		if values[ind.cond] == ind.value && !evalLinear(ind.lin, values) {
			return false
		}
	}
	for _, it := range a.ites {
		if values[it.cond] == 1 {
			if !evalLinear(it.then, values) {
				return false
			}
		} else if !evalLinear(it.els, values) {
			return false
		}
	}
	for _, or := range a.ors {
		any := false
		for _, in := range or.inputs {
			if values[in] == 1 {
				any = true
				break
			}
		}
		want := int64(0)
		if any {
			want = 1
		}
		if values[or.condOut] != want {
			return false
		}
	}
	return true
}

func evalLinear(l solver.Linear, values []int64) bool {
	var sum int64
	for _, t := range l.Terms {
		sum += t.Coeff * values[t.Var]
	}
	switch l.Cmp {
	case solver.LE:
		return sum <= l.RHS
	case solver.GE:
		return sum >= l.RHS
	default:
		return sum == l.RHS
	}
}

// propagate runs bound-consistency tightening to a fixpoint over every
// linear constraint (decomposing EQ/GE into LE form), then resolves
// indicator/ite/or constraints whose guard variable has already settled to
// a singleton domain. Returns false if any domain becomes empty.
func (s *search) propagate() bool {
	changed := true
	for iter := 0; changed && iter < 64; iter++ {
		changed = false
		for _, l := range s.a.linears {
			ok, ch := tighten(l, s.domains)
			if !ok {
				return false
			}
			changed = changed || ch
		}
		for _, ind := range s.a.indicators {
			lo, hi := s.domains[ind.cond].lo, s.domains[ind.cond].hi
			if lo == hi && lo == ind.value {
				ok, ch := tighten(ind.lin, s.domains)
				if !ok {
					return false
				}
				changed = changed || ch
			}
		}
		for _, it := range s.a.ites {
			lo, hi := s.domains[it.cond].lo, s.domains[it.cond].hi
			if lo == hi {
				lin := it.els
				if lo == 1 {
					lin = it.then
				}
				ok, ch := tighten(lin, s.domains)
				if !ok {
					return false
				}
				changed = changed || ch
			}
		}
		for _, or := range s.a.ors {
			ch, ok := s.propagateOr(or)
			if !ok {
				return false
			}
			changed = changed || ch
		}
		for _, d := range s.domains {
			if d.lo > d.hi {
				return false
			}
		}
	}
	return true
}

func (s *search) propagateOr(or orC) (changed, ok bool) {
	anyForcedOne := false
	allForcedZero := true
	freeCount := 0
	freeIdx := -1
	for _, in := range or.inputs {
		d := s.domains[in]
		if d.lo == 1 && d.hi == 1 {
			anyForcedOne = true
		}
		if !(d.lo == 0 && d.hi == 0) {
			allForcedZero = false
		}
		if d.lo != d.hi {
			freeCount++
			freeIdx = int(in)
		}
	}
	condOut := s.domains[or.condOut]

	if anyForcedOne && condOut.lo == 0 {
		s.domains[or.condOut] = domain{1, 1}
		return true, true
	}
	if allForcedZero && condOut.hi == 1 && condOut.lo != condOut.hi {
		s.domains[or.condOut] = domain{0, 0}
		return true, true
	}
	if condOut.lo == 1 && condOut.hi == 1 && allForcedZero {
		return false, false // no input can become 1, but condOut forced 1
	}
	if condOut.lo == 0 && condOut.hi == 0 && anyForcedOne {
		return false, false
	}
	if condOut.lo == 1 && condOut.hi == 1 && !anyForcedOne && freeCount == 1 {
		s.domains[solver.Var(freeIdx)] = domain{1, 1}
		return true, true
	}
	return false, true
}

// tighten applies bound-consistency to a single linear constraint,
// narrowing each unassigned variable's domain to the range still
// compatible with some assignment of the others. Returns ok=false if the
// constraint is provably infeasible given current domains.
func tighten(l solver.Linear, domains []domain) (ok bool, changed bool) {
	// Normalize to <=: EQ decomposes into <= and >=; GE becomes <= with
	// negated coefficients and rhs.
	switch l.Cmp {
	case solver.EQ:
		ok1, ch1 := tightenLE(l.Terms, l.RHS, domains)
		if !ok1 {
			return false, false
		}
		negTerms := negate(l.Terms)
		ok2, ch2 := tightenLE(negTerms, -l.RHS, domains)
		return ok2, ch1 || ch2
	case solver.GE:
		return tightenLE(negate(l.Terms), -l.RHS, domains)
	default:
		return tightenLE(l.Terms, l.RHS, domains)
	}
}

func negate(terms []solver.Term) []solver.Term {
	out := make([]solver.Term, len(terms))
	for i, t := range terms {
		out[i] = solver.Term{Coeff: -t.Coeff, Var: t.Var}
	}
	return out
}

// tightenLE bound-propagates sum(terms) <= rhs.
func tightenLE(terms []solver.Term, rhs int64, domains []domain) (ok bool, changed bool) {
	var minSum int64
	for _, t := range terms {
		d := domains[t.Var]
		if t.Coeff >= 0 {
			minSum += t.Coeff * d.lo
		} else {
			minSum += t.Coeff * d.hi
		}
	}
	if minSum > rhs {
		return false, false
	}
	for _, t := range terms {
		if t.Coeff == 0 {
			continue
		}
		d := domains[t.Var]
		var minContrib int64
		if t.Coeff >= 0 {
			minContrib = t.Coeff * d.lo
		} else {
			minContrib = t.Coeff * d.hi
		}
		minOthers := minSum - minContrib
		slack := rhs - minOthers
		if t.Coeff > 0 {
			newHi := floorDiv(slack, t.Coeff)
			if newHi < d.hi {
				domains[t.Var] = domain{d.lo, newHi}
				changed = true
			}
		} else {
			newLo := ceilDiv(slack, t.Coeff)
			if newLo > d.lo {
				domains[t.Var] = domain{newLo, d.hi}
				changed = true
			}
		}
		if domains[t.Var].lo > domains[t.Var].hi {
			return false, changed
		}
	}
	return true, changed
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func ceilDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) == (b < 0)) {
		q++
	}
	return q
}
