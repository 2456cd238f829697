package model

import "github.com/signalsfoundry/tsn-scheduler/internal/xerr"

// VarHandle is a stable, solver-owned integer handle to a decision
// variable. The model never holds solver pointers directly (spec.md §3
// ownership/lifecycle); it only stores these handles, which the solver
// adapter resolves back to its own internal variable representation.
type VarHandle int64

// NoHandle is the sentinel (-1, not the zero value) meaning "no variable allocated yet".
const NoHandle VarHandle = -1

// offsetState is the per-offset lifecycle state machine from spec.md §4.1:
// created -> initialized -> variables_allocated -> constrained. Transitions
// are monotonic; there is no way back and no deletion.
type offsetState int

const (
	offsetCreated offsetState = iota
	offsetInitialized
	offsetVariablesAllocated
	offsetConstrained
)

// Offset is the per-(frame, link) transmission record described in
// spec.md §3. StartTime[i][r] holds the solved start time in nanoseconds
// once a solution has been read back; VarHandles[i][r] holds the stable
// solver handle for that same (instance, replica) cell.
type Offset struct {
	Link      string
	Timeslots int64

	NumInstances int
	NumReplicas  int

	StartTime  [][]int64
	VarHandles [][]VarHandle

	// PathUsed holds, when path selection is active, one binary VarHandle
	// per (receiver, path index) combination that would activate this
	// offset's link. Keyed "receiver|pathIndex".
	PathUsed map[string]VarHandle

	state offsetState
}

// NewOffset creates an offset in the `created` state for the given link,
// with its per-instance/replica transmission duration already computed
// (spec.md pins timeslots as a property of the (frame, link) pair, not of
// an individual instance).
func NewOffset(linkID string, timeslots int64) *Offset {
	return &Offset{
		Link:      linkID,
		Timeslots: timeslots,
		PathUsed:  map[string]VarHandle{},
		state:     offsetCreated,
	}
}

// Initialize fixes the instance/replica counts (the `created ->
// initialized` transition). numInstances must be hyperperiod/period and
// numReplicas must be >= 1, with >1 only permitted for wireless links
// (enforced by the caller, which has the Link's type in hand).
func (o *Offset) Initialize(numInstances, numReplicas int) error {
	if o.state != offsetCreated {
		return xerr.New(xerr.InternalInvariant, o.Link, "offset already initialized")
	}
	if numInstances <= 0 {
		return xerr.New(xerr.InvalidInput, o.Link, "num_instances must be positive")
	}
	if numReplicas <= 0 {
		return xerr.New(xerr.InvalidInput, o.Link, "num_replicas must be positive")
	}
	o.NumInstances = numInstances
	o.NumReplicas = numReplicas
	o.StartTime = make([][]int64, numInstances)
	o.VarHandles = make([][]VarHandle, numInstances)
	for i := range o.StartTime {
		o.StartTime[i] = make([]int64, numReplicas)
		o.VarHandles[i] = make([]VarHandle, numReplicas)
		for r := range o.VarHandles[i] {
			o.VarHandles[i][r] = NoHandle
		}
	}
	o.state = offsetInitialized
	return nil
}

// AllocateVariable records the solver handle for (instance, replica) and
// advances the offset to `variables_allocated` the first time it's called.
func (o *Offset) AllocateVariable(instance, replica int, h VarHandle) error {
	if o.state != offsetInitialized && o.state != offsetVariablesAllocated {
		return xerr.New(xerr.InternalInvariant, o.Link, "cannot allocate variables before initialization")
	}
	if instance < 0 || instance >= o.NumInstances || replica < 0 || replica >= o.NumReplicas {
		return xerr.New(xerr.InternalInvariant, o.Link, "instance/replica out of range")
	}
	o.VarHandles[instance][replica] = h
	o.state = offsetVariablesAllocated
	return nil
}

// MarkConstrained advances the offset to its terminal `constrained` state.
// Idempotent.
func (o *Offset) MarkConstrained() {
	if o.state == offsetVariablesAllocated {
		o.state = offsetConstrained
	}
}

// SetStartTime records a solved value for (instance, replica), used by the
// driver when reading the solution back from the adapter.
func (o *Offset) SetStartTime(instance, replica int, value int64) error {
	if instance < 0 || instance >= o.NumInstances || replica < 0 || replica >= o.NumReplicas {
		return xerr.New(xerr.InternalInvariant, o.Link, "instance/replica out of range")
	}
	o.StartTime[instance][replica] = value
	return nil
}

// Unused reports whether start time 0 at (i,r) means "unused on this path
// choice" -- only meaningful when path selection is active.
func (o *Offset) Unused(instance, replica int) bool {
	return o.StartTime[instance][replica] == 0
}
