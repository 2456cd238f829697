package model

import "github.com/signalsfoundry/tsn-scheduler/internal/xerr"

// Path is an ordered, non-empty sequence of link IDs from one end system to
// another. Paths are immutable once constructed; link existence is verified
// by the caller (typically core.Network.AddPath) at construction time, not
// re-checked on every access.
type Path struct {
	Links []string
}

// NewPath validates that links is non-empty and returns a Path over a
// defensive copy of it.
func NewPath(links []string) (Path, error) {
	if len(links) == 0 {
		return Path{}, xerr.New(xerr.InvalidInput, "path", "path must contain at least one link")
	}
	cp := make([]string, len(links))
	copy(cp, links)
	return Path{Links: cp}, nil
}

// Len returns the number of links in the path.
func (p Path) Len() int { return len(p.Links) }

// First returns the first link ID in the path.
func (p Path) First() string { return p.Links[0] }

// Last returns the last link ID in the path.
func (p Path) Last() string { return p.Links[len(p.Links)-1] }

// ConsecutivePairs calls fn for every (link[j], link[j+1]) pair in the path,
// in order. Used by the builder to emit path-ordering / switch-dwell
// constraints (spec.md §4.3.4).
func (p Path) ConsecutivePairs(fn func(a, b string)) {
	for j := 0; j+1 < len(p.Links); j++ {
		fn(p.Links[j], p.Links[j+1])
	}
}
