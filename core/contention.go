package core

import "github.com/signalsfoundry/tsn-scheduler/model"

// instanceWindow returns [min, max) for instance i of frame f, per spec.md
// §4.3.5: min = period*i + starting + 1, max = period*i + deadline + 1.
func instanceWindow(f *model.Frame, i int) (min, max int64) {
	min = f.Period*int64(i) + f.Starting + 1
	max = f.Period*int64(i) + f.Deadline + 1
	return
}

// IntervalsCollide reports whether instance i1 of f1 and instance i2 of f2
// have admissible windows that intersect, per the test pinned by spec.md
// §4.3.5. Pairs that cannot collide must not receive a non-overlap
// constraint -- this is the filter that keeps contention-freedom emission
// scalable (spec.md §4.3.5, §8 coprime-periods boundary case).
func IntervalsCollide(f1 *model.Frame, i1 int, f2 *model.Frame, i2 int) bool {
	min1, max1 := instanceWindow(f1, i1)
	min2, max2 := instanceWindow(f2, i2)
	return min1 < max2 && min2 < max1
}

// CollidingInstancePairs enumerates every (i1, i2) instance pair between
// frames f1 and f2 whose admissible windows intersect. It is used by the
// constraint builder instead of a naive full cross-product so that
// coprime-period frames on the same link still terminate in roughly
// lcm/gcd pair checks rather than numInstances1*numInstances2.
func CollidingInstancePairs(f1 *model.Frame, numInstances1 int, f2 *model.Frame, numInstances2 int) [][2]int {
	var out [][2]int
	for i1 := 0; i1 < numInstances1; i1++ {
		min1, max1 := instanceWindow(f1, i1)
		for i2 := 0; i2 < numInstances2; i2++ {
			min2, max2 := instanceWindow(f2, i2)
			if min1 < max2 && min2 < max1 {
				out = append(out, [2]int{i1, i2})
			}
		}
	}
	return out
}
