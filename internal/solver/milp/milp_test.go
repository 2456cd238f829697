package milp

import (
	"context"
	"testing"

	"github.com/signalsfoundry/tsn-scheduler/internal/solver"
)

func TestSolveSimpleLinearSystemIsOptimal(t *testing.T) {
	a := New()
	x, err := a.NewInteger("x", 0, 10)
	if err != nil {
		t.Fatalf("NewInteger: %v", err)
	}
	y, err := a.NewInteger("y", 0, 10)
	if err != nil {
		t.Fatalf("NewInteger: %v", err)
	}

	if err := a.AssertLinear(solver.Linear{Terms: []solver.Term{{Coeff: 1, Var: x}, {Coeff: 1, Var: y}}, Cmp: solver.EQ, RHS: 7}); err != nil {
		t.Fatalf("AssertLinear: %v", err)
	}
	if err := a.AssertLinear(solver.Linear{Terms: []solver.Term{{Coeff: 1, Var: x}}, Cmp: solver.GE, RHS: 3}); err != nil {
		t.Fatalf("AssertLinear: %v", err)
	}

	status, err := a.Solve(context.Background())
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if status != solver.StatusOptimal {
		t.Fatalf("status = %s, want optimal", status)
	}
	xv, err := a.ValueOf(x)
	if err != nil {
		t.Fatalf("ValueOf(x): %v", err)
	}
	yv, err := a.ValueOf(y)
	if err != nil {
		t.Fatalf("ValueOf(y): %v", err)
	}
	if xv+yv != 7 {
		t.Fatalf("x+y = %d, want 7", xv+yv)
	}
	if xv < 3 {
		t.Fatalf("x = %d, want >= 3", xv)
	}
}

func TestSolveContradictoryBoundsIsInfeasible(t *testing.T) {
	a := New()
	x, err := a.NewInteger("x", 0, 5)
	if err != nil {
		t.Fatalf("NewInteger: %v", err)
	}
	if err := a.AssertLinear(solver.Linear{Terms: []solver.Term{{Coeff: 1, Var: x}}, Cmp: solver.GE, RHS: 10}); err != nil {
		t.Fatalf("AssertLinear: %v", err)
	}

	status, err := a.Solve(context.Background())
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if status != solver.StatusInfeasible {
		t.Fatalf("status = %s, want infeasible", status)
	}
}

// TestAssertIteDecomposesIntoIndicatorPair exercises the MILP backend's
// distinguishing behavior: AssertIte splits into two AssertIndicator calls
// at assertion time rather than being kept as a native ternary.
func TestAssertIteDecomposesIntoIndicatorPair(t *testing.T) {
	a := New()
	cond, err := a.NewBinary("cond")
	if err != nil {
		t.Fatalf("NewBinary: %v", err)
	}
	x, err := a.NewInteger("x", 0, 10)
	if err != nil {
		t.Fatalf("NewInteger: %v", err)
	}
	if err := a.AssertLinear(solver.Linear{Terms: []solver.Term{{Coeff: 1, Var: cond}}, Cmp: solver.EQ, RHS: 0}); err != nil {
		t.Fatalf("AssertLinear: %v", err)
	}

	then := solver.Linear{Terms: []solver.Term{{Coeff: 1, Var: x}}, Cmp: solver.EQ, RHS: 9}
	els := solver.Linear{Terms: []solver.Term{{Coeff: 1, Var: x}}, Cmp: solver.EQ, RHS: 2}
	if err := a.AssertIte(cond, then, els); err != nil {
		t.Fatalf("AssertIte: %v", err)
	}

	if len(a.indicators) != 2 {
		t.Fatalf("expected AssertIte to register 2 indicators, got %d", len(a.indicators))
	}

	status, err := a.Solve(context.Background())
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if status != solver.StatusOptimal {
		t.Fatalf("status = %s, want optimal", status)
	}
	xv, err := a.ValueOf(x)
	if err != nil {
		t.Fatalf("ValueOf: %v", err)
	}
	if xv != 2 {
		t.Fatalf("x = %d, want 2 (cond == 0 branch)", xv)
	}
}

func TestSolveOrGateDerivesOutput(t *testing.T) {
	a := New()
	in1, _ := a.NewBinary("in1")
	in2, _ := a.NewBinary("in2")
	out, _ := a.NewBinary("out")

	if err := a.AssertLinear(solver.Linear{Terms: []solver.Term{{Coeff: 1, Var: in1}}, Cmp: solver.EQ, RHS: 0}); err != nil {
		t.Fatalf("AssertLinear: %v", err)
	}
	if err := a.AssertLinear(solver.Linear{Terms: []solver.Term{{Coeff: 1, Var: in2}}, Cmp: solver.EQ, RHS: 1}); err != nil {
		t.Fatalf("AssertLinear: %v", err)
	}
	if err := a.AssertOr(out, []solver.Var{in1, in2}); err != nil {
		t.Fatalf("AssertOr: %v", err)
	}

	status, err := a.Solve(context.Background())
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if status != solver.StatusOptimal {
		t.Fatalf("status = %s, want optimal", status)
	}
	ov, err := a.ValueOf(out)
	if err != nil {
		t.Fatalf("ValueOf: %v", err)
	}
	if ov != 1 {
		t.Fatalf("out = %d, want 1", ov)
	}
}

func TestSolveWithObjectiveMaximizesWithinBounds(t *testing.T) {
	a := New()
	x, err := a.NewInteger("x", 0, 20)
	if err != nil {
		t.Fatalf("NewInteger: %v", err)
	}
	if err := a.AssertLinear(solver.Linear{Terms: []solver.Term{{Coeff: 1, Var: x}}, Cmp: solver.LE, RHS: 12}); err != nil {
		t.Fatalf("AssertLinear: %v", err)
	}
	if err := a.SetObjective([]solver.Term{{Coeff: 1, Var: x}}, solver.Maximize); err != nil {
		t.Fatalf("SetObjective: %v", err)
	}

	status, err := a.Solve(context.Background())
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if status != solver.StatusOptimal {
		t.Fatalf("status = %s, want optimal", status)
	}
	xv, err := a.ValueOf(x)
	if err != nil {
		t.Fatalf("ValueOf: %v", err)
	}
	if xv != 12 {
		t.Fatalf("x = %d, want 12 (the maximum within bounds)", xv)
	}
}

func TestStatsCountsVariablesAndConstraints(t *testing.T) {
	a := New()
	x, _ := a.NewInteger("x", 0, 1)
	y, _ := a.NewBinary("y")
	_ = a.AssertLinear(solver.Linear{Terms: []solver.Term{{Coeff: 1, Var: x}, {Coeff: 1, Var: y}}, Cmp: solver.LE, RHS: 1})

	stats := a.Stats()
	if stats.Variables != 2 {
		t.Fatalf("Variables = %d, want 2", stats.Variables)
	}
	if stats.Constraints != 1 {
		t.Fatalf("Constraints = %d, want 1", stats.Constraints)
	}
}
