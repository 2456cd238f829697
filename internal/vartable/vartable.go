// Package vartable provides the variable bookkeeping shared by both solver
// backends: a stable-handle table plus the deterministic naming scheme
// pinned by spec.md §5 (O_<frame>_<instance>_<replica>_<link>,
// X_<frame>_<receiver>_<path>). Grounded on the arena-style handle maps the
// teacher codebase uses to track simulator entities by stable string/int
// IDs (internal/sim/state.ScenarioState's map-of-pointer fields) --
// generalized here to integer variable domains instead of domain objects.
package vartable

import (
	"fmt"

	"github.com/signalsfoundry/tsn-scheduler/internal/solver"
)

// entry is one variable's bookkeeping: its name, its domain, and whether it
// is binary.
type entry struct {
	name     string
	lo, hi   int64
	isBinary bool
}

// Table owns the variable arena: entities live at contiguous indices
// (solver.Var values), addressed by that stable integer handle for the
// lifetime of the adapter.
type Table struct {
	entries []entry
}

// New returns an empty Table.
func New() *Table {
	return &Table{}
}

// NewInteger allocates a new integer variable and returns its handle.
func (t *Table) NewInteger(name string, lo, hi int64) (solver.Var, error) {
	if lo > hi {
		return 0, fmt.Errorf("vartable: %s: lo (%d) > hi (%d)", name, lo, hi)
	}
	h := solver.Var(len(t.entries))
	t.entries = append(t.entries, entry{name: name, lo: lo, hi: hi})
	return h, nil
}

// NewBinary allocates a new {0,1} variable and returns its handle.
func (t *Table) NewBinary(name string) (solver.Var, error) {
	h := solver.Var(len(t.entries))
	t.entries = append(t.entries, entry{name: name, lo: 0, hi: 1, isBinary: true})
	return h, nil
}

// Len returns the number of variables allocated so far.
func (t *Table) Len() int { return len(t.entries) }

// Bounds returns the [lo, hi] domain of v.
func (t *Table) Bounds(v solver.Var) (lo, hi int64, err error) {
	if int(v) < 0 || int(v) >= len(t.entries) {
		return 0, 0, fmt.Errorf("vartable: unknown variable handle %d", v)
	}
	e := t.entries[v]
	return e.lo, e.hi, nil
}

// Name returns the deterministic name assigned to v.
func (t *Table) Name(v solver.Var) string {
	if int(v) < 0 || int(v) >= len(t.entries) {
		return fmt.Sprintf("<unknown:%d>", v)
	}
	return t.entries[v].name
}

// IsBinary reports whether v was allocated via NewBinary.
func (t *Table) IsBinary(v solver.Var) bool {
	if int(v) < 0 || int(v) >= len(t.entries) {
		return false
	}
	return t.entries[v].isBinary
}

// OffsetVarName builds the deterministic offset-variable name from
// spec.md §5: O_<frame>_<instance>_<replica>_<link>.
func OffsetVarName(frameID string, instance, replica int, linkID string) string {
	return fmt.Sprintf("O_%s_%d_%d_%s", frameID, instance, replica, linkID)
}

// PathChoiceVarName builds the deterministic path-selector name from
// spec.md §5: X_<frame>_<receiver>_<path>.
func PathChoiceVarName(frameID, receiverID string, pathIdx int) string {
	return fmt.Sprintf("X_%s_%s_%d", frameID, receiverID, pathIdx)
}

// DistanceFrameVarName names a per-frame distance objective variable.
func DistanceFrameVarName(frameID string) string {
	return fmt.Sprintf("D_frame_%s", frameID)
}

// DistanceLinkVarName names a per-link distance objective variable.
func DistanceLinkVarName(linkID string) string {
	return fmt.Sprintf("D_link_%s", linkID)
}
