// Package solver walks the combinatorial space of (resource x source)
// assignments with backtracking and pruning. A candidate is a vector
// assigning each of width resources to one of depth sources; the solvers
// enumerate, in lexicographic order, every candidate whose selected cells
// are all available, querying a host-supplied tester and memoizing each
// cell outcome so no cell is ever tested twice.
//
// Source index 0 is the highest-priority source, so the first candidate
// emitted prefers the highest-priority source for every resource where
// possible.
package solver

type cellState int8

const (
	cellUntested cellState = iota
	cellMissing
	cellPresent
)

// Solution is the pure backtracking state shared by both solvers: the
// current candidate vector, the cursor into it, and the memoization matrix
// of per-cell test outcomes.
type Solution struct {
	width, depth int

	candidate []int
	idx       int
	dirty     bool

	cells [][]cellState
}

func newSolution(width, depth int) Solution {
	cells := make([][]cellState, width)
	for i := range cells {
		cells[i] = make([]cellState, depth)
	}
	return Solution{
		width:     width,
		depth:     depth,
		candidate: make([]int, width),
		cells:     cells,
	}
}

func (s *Solution) mark(resIdx, sourceIdx int, present bool) {
	if present {
		s.cells[resIdx][sourceIdx] = cellPresent
	} else {
		s.cells[resIdx][sourceIdx] = cellMissing
	}
}

func (s *Solution) isCellMissing(resIdx, sourceIdx int) bool {
	return s.cells[resIdx][sourceIdx] == cellMissing
}

func (s *Solution) isCurrentCellMissing() bool {
	return s.isCellMissing(s.idx, s.candidate[s.idx])
}

// IsComplete reports whether the cursor sits on the last resource.
func (s *Solution) IsComplete() bool {
	return s.idx == s.width-1
}

// TryAdvanceSource advances the current resource to the next source that is
// not known missing. It reports false when the row is exhausted.
func (s *Solution) TryAdvanceSource() bool {
	for s.candidate[s.idx] < s.depth-1 {
		s.candidate[s.idx]++
		if !s.isCurrentCellMissing() {
			return true
		}
	}
	return false
}

// TryAdvanceResource moves the cursor to the next resource, skipping over
// sources known missing for it. It reports false at full width or when the
// next row has no viable source at or after its current position.
func (s *Solution) TryAdvanceResource() bool {
	if s.idx >= s.width-1 {
		return false
	}
	s.idx++
	for s.isCurrentCellMissing() {
		if !s.TryAdvanceSource() {
			return false
		}
	}
	return true
}

// TryBacktrack rewinds to the nearest resource with sources left to try,
// advances it, and re-primes the suffix. It reports false when the whole
// space is exhausted.
func (s *Solution) TryBacktrack() bool {
	for s.candidate[s.idx] == s.depth-1 {
		if s.idx == 0 {
			return false
		}
		s.idx--
	}
	s.candidate[s.idx]++
	return s.prune()
}

// prune resets every row after the cursor to its first source not known
// missing. It reports false when some row has no viable source at all, in
// which case the entire search is dead.
func (s *Solution) prune() bool {
	for i := s.idx + 1; i < s.width; i++ {
		sourceIdx := 0
		for s.isCellMissing(i, sourceIdx) {
			if sourceIdx >= s.depth-1 {
				return false
			}
			sourceIdx++
		}
		s.candidate[i] = sourceIdx
	}
	return true
}

// Bail advances the current source or, failing that, backtracks. It reports
// false when the search space is exhausted.
func (s *Solution) Bail() bool {
	return s.TryAdvanceSource() || s.TryBacktrack()
}

// tryGenerateCompleteCandidate walks the cursor to full width using only
// memoized knowledge, never proposing a candidate with a known-missing
// cell.
func (s *Solution) tryGenerateCompleteCandidate() bool {
	for !s.IsComplete() {
		for s.isCurrentCellMissing() {
			if !s.TryAdvanceSource() {
				return false
			}
		}
		if !s.TryAdvanceResource() {
			return false
		}
	}
	return true
}

// missingRows returns the resources for which every source is known
// missing. Meaningful once a solver has exhausted its search.
func (s *Solution) missingRows() []int {
	var rows []int
	for i := range s.width {
		all := true
		for j := range s.depth {
			if s.cells[i][j] != cellMissing {
				all = false
				break
			}
		}
		if all {
			rows = append(rows, i)
		}
	}
	return rows
}
