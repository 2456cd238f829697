package core

import (
	"fmt"

	"github.com/signalsfoundry/tsn-scheduler/internal/xerr"
	"github.com/signalsfoundry/tsn-scheduler/model"
)

// PathTable maps (sender end-system, receiver end-system) to the list of
// alternative Paths between them (spec.md §4.2). End-system IDs are sparse
// in the node-id space, so the table assigns each one it has seen a dense
// index and stores paths behind that index rather than the raw ID.
type PathTable struct {
	index map[string]int // end-system ID -> dense index
	next  int

	// paths[senderIdx][receiverIdx] is the ordered list of alternative
	// paths from sender to receiver.
	paths map[int]map[int][]model.Path
}

// NewPathTable returns an empty PathTable.
func NewPathTable() *PathTable {
	return &PathTable{
		index: map[string]int{},
		paths: map[int]map[int][]model.Path{},
	}
}

// indexFor returns the dense index for an end-system ID, assigning a new
// one the first time it is seen.
func (t *PathTable) indexFor(endSystemID string) int {
	if idx, ok := t.index[endSystemID]; ok {
		return idx
	}
	idx := t.next
	t.index[endSystemID] = idx
	t.next++
	return idx
}

// EndSystemIndex returns the dense index assigned to endSystemID and
// whether it has been seen by this table yet.
func (t *PathTable) EndSystemIndex(endSystemID string) (int, bool) {
	idx, ok := t.index[endSystemID]
	return idx, ok
}

// AddPath appends a new path from sender to receiver.
func (t *PathTable) AddPath(sender, receiver string, p model.Path) error {
	if p.Len() == 0 {
		return xerr.New(xerr.InvalidInput, fmt.Sprintf("%s->%s", sender, receiver), "path has no links")
	}
	sIdx := t.indexFor(sender)
	rIdx := t.indexFor(receiver)
	if t.paths[sIdx] == nil {
		t.paths[sIdx] = map[int][]model.Path{}
	}
	t.paths[sIdx][rIdx] = append(t.paths[sIdx][rIdx], p)
	return nil
}

// NumPaths returns the number of alternative paths registered between
// sender and receiver (0 if either end-system is unknown).
func (t *PathTable) NumPaths(sender, receiver string) int {
	sIdx, ok := t.index[sender]
	if !ok {
		return 0
	}
	rIdx, ok := t.index[receiver]
	if !ok {
		return 0
	}
	return len(t.paths[sIdx][rIdx])
}

// Path returns the path at pathID between sender and receiver.
//
// This resolves spec.md §9 Open Question (a): the original C
// implementation's get_path guarded with `num_paths >= path_id` (inverted;
// it should reject when path_id is out of range, not admit it) and indexed
// `receivers[sender_pos].paths[path_id]` (wrong axis; a sender cannot be
// its own receiver index). The obvious intent implemented here is the
// straightforward `0 <= path_id < num_paths` bound, indexed by the
// receiver's own dense position.
func (t *PathTable) Path(sender, receiver string, pathID int) (model.Path, error) {
	sIdx, ok := t.index[sender]
	if !ok {
		return model.Path{}, xerr.New(xerr.StructuralError, sender, "unknown sender end system")
	}
	rIdx, ok := t.index[receiver]
	if !ok {
		return model.Path{}, xerr.New(xerr.StructuralError, receiver, "unknown receiver end system")
	}
	paths := t.paths[sIdx][rIdx]
	if pathID < 0 || pathID >= len(paths) {
		return model.Path{}, xerr.New(xerr.StructuralError, fmt.Sprintf("%s->%s[%d]", sender, receiver, pathID),
			"path does not exist, there are not that many paths between both end systems")
	}
	return paths[pathID], nil
}

// PathsBetween returns every alternative path from sender to receiver, in
// registration order.
func (t *PathTable) PathsBetween(sender, receiver string) []model.Path {
	sIdx, ok := t.index[sender]
	if !ok {
		return nil
	}
	rIdx, ok := t.index[receiver]
	if !ok {
		return nil
	}
	return t.paths[sIdx][rIdx]
}
