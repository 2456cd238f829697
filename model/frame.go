package model

import "github.com/signalsfoundry/tsn-scheduler/internal/xerr"

// Frame is a periodic message transmitted from Sender to each of Receivers,
// per spec.md §3. All durations are nanoseconds, Size is bytes.
type Frame struct {
	ID         string
	Size       int64
	Period     int64
	Deadline   int64
	Starting   int64
	EndToEnd   int64
	Sender     string
	Receivers  []string

	offsets      []*Offset
	offsetByLink map[string]*Offset
}

// NewFrame validates the invariants pinned by spec.md §3 (deadline <=
// period, starting in [0, deadline), end_to_end <= deadline) and returns an
// initialized Frame with no offsets yet.
func NewFrame(id string, size, period, deadline, starting, endToEnd int64, sender string, receivers []string) (*Frame, error) {
	if size <= 0 {
		return nil, xerr.New(xerr.InvalidInput, id, "size must be positive")
	}
	if period <= 0 {
		return nil, xerr.New(xerr.InvalidInput, id, "period must be positive")
	}
	if deadline <= 0 || deadline > period {
		return nil, xerr.New(xerr.InvalidInput, id, "deadline must be positive and <= period")
	}
	if starting < 0 || starting >= deadline {
		return nil, xerr.New(xerr.InvalidInput, id, "starting must be in [0, deadline)")
	}
	if endToEnd <= 0 || endToEnd > deadline {
		return nil, xerr.New(xerr.InvalidInput, id, "end_to_end must be positive and <= deadline")
	}
	if sender == "" {
		return nil, xerr.New(xerr.InvalidInput, id, "sender must be set")
	}
	if len(receivers) == 0 {
		return nil, xerr.New(xerr.InvalidInput, id, "frame must have at least one receiver")
	}
	rcopy := make([]string, len(receivers))
	copy(rcopy, receivers)
	return &Frame{
		ID:           id,
		Size:         size,
		Period:       period,
		Deadline:     deadline,
		Starting:     starting,
		EndToEnd:     endToEnd,
		Sender:       sender,
		Receivers:    rcopy,
		offsetByLink: map[string]*Offset{},
	}, nil
}

// AddOffset de-duplicates by link: a repeated call for the same link
// returns the already-existing Offset rather than creating a second one
// (spec.md §4.1).
func (f *Frame) AddOffset(link Link) *Offset {
	if existing, ok := f.offsetByLink[link.ID]; ok {
		return existing
	}
	timeslots := link.TimeslotsForSize(f.Size)
	o := NewOffset(link.ID, timeslots)
	f.offsets = append(f.offsets, o)
	f.offsetByLink[link.ID] = o
	return o
}

// OffsetFor is the O(1) accessor required by spec.md §4.1.
func (f *Frame) OffsetFor(linkID string) (*Offset, bool) {
	o, ok := f.offsetByLink[linkID]
	return o, ok
}

// Offsets returns offsets in insertion order (the order in which AddOffset
// first saw each link), which is the order the builder must iterate in to
// keep variable emission deterministic (spec.md §5).
func (f *Frame) Offsets() []*Offset {
	return f.offsets
}

// NumInstances returns hyperperiod/period for this frame (spec.md §4.1).
// Callers must ensure period divides hyperperiod evenly; Network guarantees
// this since hyperperiod is the LCM of all frame periods.
func (f *Frame) NumInstances(hyperperiod int64) int {
	return int(hyperperiod / f.Period)
}

// HasReceiver reports whether receiverID is among this frame's receivers.
func (f *Frame) HasReceiver(receiverID string) bool {
	for _, r := range f.Receivers {
		if r == receiverID {
			return true
		}
	}
	return false
}
