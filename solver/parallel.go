package solver

import "context"

// Cell identifies one (resource, source) pair under test.
type Cell struct {
	Res    int
	Source int
}

// AsyncTester answers a batch of cell queries in one round trip. The cells
// arrive in resource order; the result slice must be parallel to it.
// Implementations are expected to probe all cells concurrently and return
// when every answer is in. An error aborts the solve; availability
// questions are answered with false, never an error.
type AsyncTester interface {
	TestCells(ctx context.Context, cells []Cell) ([]bool, error)
}

// Parallel enumerates the same candidate sequence as Serial, but tests an
// entire candidate's unresolved cells in a single batched round trip. It
// walks to a full-width candidate using only memoized knowledge, fires all
// untested cells along it at once, and on a miss prunes from the first
// missing resource.
type Parallel struct {
	sol Solution
}

// NewParallel creates a parallel solver over width resources and depth
// sources.
func NewParallel(width, depth int) *Parallel {
	return &Parallel{sol: newSolution(width, depth)}
}

// Next returns the next valid candidate, or nil when the space is
// exhausted. An error from the tester, such as ctx's, is returned unchanged.
// The returned slice is owned by the solver and only valid until the
// following call.
func (p *Parallel) Next(ctx context.Context, t AsyncTester) ([]int, error) {
	if p.sol.width == 0 || p.sol.depth == 0 {
		return nil, nil
	}
	if p.sol.dirty {
		if !p.sol.Bail() {
			return nil, nil
		}
		p.sol.dirty = false
	}
	for p.sol.tryGenerateCompleteCandidate() {
		var cells []Cell
		for resIdx, sourceIdx := range p.sol.candidate {
			if p.sol.cells[resIdx][sourceIdx] == cellUntested {
				cells = append(cells, Cell{Res: resIdx, Source: sourceIdx})
			}
		}
		if len(cells) > 0 {
			results, err := t.TestCells(ctx, cells)
			if err != nil {
				return nil, err
			}
			firstMissing := -1
			for i, present := range results {
				p.sol.mark(cells[i].Res, cells[i].Source, present)
				if !present && firstMissing < 0 {
					firstMissing = cells[i].Res
				}
			}
			if firstMissing >= 0 {
				p.sol.idx = firstMissing
				if !p.sol.prune() || !p.sol.Bail() {
					return nil, nil
				}
				continue
			}
		}
		p.sol.dirty = true
		return p.sol.candidate, nil
	}
	return nil, nil
}

// MissingResources returns the resource indices for which every source
// tested missing.
func (p *Parallel) MissingResources() []int {
	return p.sol.missingRows()
}
