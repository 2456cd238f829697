package core

import (
	"fmt"
	"sync"

	"github.com/signalsfoundry/tsn-scheduler/internal/xerr"
	"github.com/signalsfoundry/tsn-scheduler/model"
)

// Sentinel entities named in xerr.Error.Entity carry the offending link,
// frame, or path index so a caller can print a human-readable diagnostic
// per spec.md §7 without string-matching the message.

// Network is the global registry described by spec.md §3: it exclusively
// owns Links, Frames, and Paths. Everything is constructed once while
// ingesting a network document and mutated only while allocating solver
// variable handles; after the constraint builder starts emitting, reads are
// the only operation performed against it.
//
// NOTE: guarded by an internal RWMutex so construction (single-threaded per
// spec.md §5) and any future concurrent read access (e.g. serving the
// solved schedule over more than one output sink) are both safe.
type Network struct {
	mu sync.RWMutex

	links  map[string]*model.Link
	frames map[string]*model.Frame
	// frameOrder preserves insertion order so FramesInOrder is
	// deterministic; the builder sorts frames by ID on its own.
	frameOrder []string

	paths *PathTable

	// SwitchMinimumTime is the dwell time (ns) a frame must spend in a
	// switch before being forwarded onward (spec.md §3).
	SwitchMinimumTime int64
	// ProtocolPeriod and ProtocolTime describe the self-healing protocol
	// window reserved on every link (spec.md §3).
	ProtocolPeriod int64
	ProtocolTime   int64

	// Hyperperiod is the LCM of all frame periods, computed lazily by
	// RecomputeDerivedQuantities once all frames have been added.
	Hyperperiod int64
}

// NewNetwork returns an empty Network ready to be populated by a config
// loader.
func NewNetwork() *Network {
	return &Network{
		links:  map[string]*model.Link{},
		frames: map[string]*model.Frame{},
		paths:  NewPathTable(),
	}
}

// AddLink inserts a new, immutable Link. Re-inserting the same ID is a
// structural error: link identity is assigned once at parse time.
func (n *Network) AddLink(l model.Link) error {
	if l.ID == "" {
		return xerr.New(xerr.InvalidInput, "link", "empty link ID")
	}
	if l.Speed <= 0 {
		return xerr.New(xerr.InvalidInput, l.ID, "link speed must be positive")
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	if _, exists := n.links[l.ID]; exists {
		return xerr.New(xerr.StructuralError, l.ID, "link already exists")
	}
	cp := l
	n.links[l.ID] = &cp
	return nil
}

// GetLink returns the link with the given ID, or ok=false if it is not
// registered -- never a phantom link (spec.md §4.2 Failure contract).
func (n *Network) GetLink(id string) (model.Link, bool) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	l, ok := n.links[id]
	if !ok {
		return model.Link{}, false
	}
	return *l, true
}

// Links returns every registered link. Order is unspecified; callers that
// need determinism should sort by ID.
func (n *Network) Links() []model.Link {
	n.mu.RLock()
	defer n.mu.RUnlock()
	out := make([]model.Link, 0, len(n.links))
	for _, l := range n.links {
		out = append(out, *l)
	}
	return out
}

// AddFrame registers a new Frame by ID, preserving insertion order for
// deterministic builder traversal.
func (n *Network) AddFrame(f *model.Frame) error {
	if f == nil || f.ID == "" {
		return xerr.New(xerr.InvalidInput, "frame", "nil or empty frame ID")
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	if _, exists := n.frames[f.ID]; exists {
		return xerr.New(xerr.StructuralError, f.ID, "frame already exists")
	}
	n.frames[f.ID] = f
	n.frameOrder = append(n.frameOrder, f.ID)
	return nil
}

// GetFrame returns the frame with the given ID, or ok=false.
func (n *Network) GetFrame(id string) (*model.Frame, bool) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	f, ok := n.frames[id]
	return f, ok
}

// FramesInOrder returns frames in the order AddFrame registered them; it
// does not sort them by frame ID.
func (n *Network) FramesInOrder() []*model.Frame {
	n.mu.RLock()
	defer n.mu.RUnlock()
	out := make([]*model.Frame, 0, len(n.frameOrder))
	for _, id := range n.frameOrder {
		out = append(out, n.frames[id])
	}
	return out
}

// Paths exposes the Network's PathTable.
func (n *Network) Paths() *PathTable {
	return n.paths
}

// AddPath validates that every referenced link exists (spec.md §3 Path
// invariant) before delegating to the PathTable.
func (n *Network) AddPath(sender, receiver string, linkIDs []string) error {
	for _, lid := range linkIDs {
		if _, ok := n.GetLink(lid); !ok {
			return xerr.New(xerr.StructuralError, lid, fmt.Sprintf("path %s->%s references missing link", sender, receiver))
		}
	}
	p, err := model.NewPath(linkIDs)
	if err != nil {
		return err
	}
	return n.paths.AddPath(sender, receiver, p)
}

// RecomputeDerivedQuantities sets Hyperperiod from the current frame set.
// Must be called after all frames are registered and before any offset is
// initialized, since Offset.Initialize needs hyperperiod/period.
func (n *Network) RecomputeDerivedQuantities() error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if len(n.frames) == 0 {
		return xerr.New(xerr.InvalidInput, "network", "cannot compute hyperperiod with zero frames")
	}
	var periods []int64
	for _, f := range n.frames {
		periods = append(periods, f.Period)
	}
	n.Hyperperiod = LCMAll(periods)
	return nil
}
