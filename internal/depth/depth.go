// Package depth orders bodies back to front for painting.
package depth

import (
	"cmp"
	"slices"
)

// Sequencer computes the painting order of bodies from their screen y and
// reuses its index slice across frames.
type Sequencer struct {
	order []int
}

// Order returns the indices of keys sorted ascending. Smaller keys are farther
// back and get painted first. The sort is stable, so equal keys keep their
// input order from frame to frame. The returned slice is owned by the
// Sequencer and valid until the next call.
func (s *Sequencer) Order(keys []float64) []int {
	if cap(s.order) < len(keys) {
		s.order = make([]int, len(keys))
	}
	s.order = s.order[:len(keys)]
	for i := range s.order {
		s.order[i] = i
	}
	slices.SortStableFunc(s.order, func(a, b int) int {
		return cmp.Compare(keys[a], keys[b])
	})
	return s.order
}
