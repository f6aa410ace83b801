package solver

// SyncTester answers whether a single cell is available, blocking the
// caller for however long the probe takes. The serial solver queries it one
// cell at a time and memoizes every answer.
type SyncTester interface {
	TestSync(resIdx, sourceIdx int) bool
}

// SyncTesterFunc adapts a function to the SyncTester interface.
type SyncTesterFunc func(resIdx, sourceIdx int) bool

var _ SyncTester = SyncTesterFunc(nil)

func (f SyncTesterFunc) TestSync(resIdx, sourceIdx int) bool {
	return f(resIdx, sourceIdx)
}

// Serial enumerates valid candidates by testing one cell at a time.
type Serial struct {
	sol Solution
}

// NewSerial creates a serial solver over width resources and depth sources.
func NewSerial(width, depth int) *Serial {
	return &Serial{sol: newSolution(width, depth)}
}

func (s *Serial) testCurrentCell(t SyncTester) bool {
	resIdx := s.sol.idx
	sourceIdx := s.sol.candidate[resIdx]
	switch s.sol.cells[resIdx][sourceIdx] {
	case cellPresent:
		return true
	case cellMissing:
		return false
	}
	present := t.TestSync(resIdx, sourceIdx)
	s.sol.mark(resIdx, sourceIdx, present)
	return present
}

// Next returns the next valid candidate, or nil when the space is
// exhausted. The returned slice is owned by the solver and only valid until
// the following call.
func (s *Serial) Next(t SyncTester) []int {
	if s.sol.width == 0 || s.sol.depth == 0 {
		return nil
	}
	if s.sol.dirty {
		if !s.sol.Bail() {
			return nil
		}
		s.sol.dirty = false
	}
	for {
		if !s.testCurrentCell(t) {
			if !s.sol.Bail() {
				return nil
			}
			continue
		}
		if s.sol.IsComplete() {
			s.sol.dirty = true
			return s.sol.candidate
		}
		if !s.sol.TryAdvanceResource() {
			return nil
		}
	}
}

// MissingResources returns the resource indices for which every source
// tested missing.
func (s *Serial) MissingResources() []int {
	return s.sol.missingRows()
}
