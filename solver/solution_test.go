package solver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSolutionAdvanceSourceSkipsMissing(t *testing.T) {
	s := newSolution(1, 3)
	s.mark(0, 1, false)
	require.True(t, s.TryAdvanceSource())
	assert.Equal(t, []int{2}, s.candidate, "source 1 is known missing and must be skipped")
	require.False(t, s.TryAdvanceSource())
}

func TestSolutionAdvanceResourceSkipsMissing(t *testing.T) {
	s := newSolution(2, 2)
	s.mark(1, 0, false)
	require.True(t, s.TryAdvanceResource())
	assert.Equal(t, 1, s.idx)
	assert.Equal(t, []int{0, 1}, s.candidate)
}

func TestSolutionAdvanceResourceDeadRow(t *testing.T) {
	s := newSolution(2, 2)
	s.mark(1, 0, false)
	s.mark(1, 1, false)
	require.False(t, s.TryAdvanceResource())
}

func TestSolutionBacktrack(t *testing.T) {
	s := newSolution(3, 2)
	s.candidate = []int{0, 1, 1}
	s.idx = 2
	require.True(t, s.TryBacktrack())
	assert.Equal(t, []int{1, 0, 0}, s.candidate)
	assert.Equal(t, 0, s.idx)
}

func TestSolutionBacktrackExhausted(t *testing.T) {
	s := newSolution(2, 2)
	s.candidate = []int{1, 1}
	s.idx = 1
	require.False(t, s.TryBacktrack())
}

func TestSolutionPruneSkipsToFirstViableSource(t *testing.T) {
	s := newSolution(3, 3)
	s.candidate = []int{0, 2, 2}
	s.mark(1, 0, false)
	s.mark(1, 1, false)
	require.True(t, s.prune())
	assert.Equal(t, []int{0, 2, 0}, s.candidate)
}

func TestSolutionPruneDead(t *testing.T) {
	s := newSolution(2, 2)
	s.mark(1, 0, false)
	s.mark(1, 1, false)
	require.False(t, s.prune())
}

func TestSolutionMissingRows(t *testing.T) {
	s := newSolution(3, 2)
	s.mark(0, 0, false)
	s.mark(0, 1, false)
	s.mark(1, 0, false)
	s.mark(2, 0, true)
	assert.Equal(t, []int{0}, s.missingRows())
}

func TestSolutionGenerateCompleteCandidate(t *testing.T) {
	s := newSolution(3, 2)
	s.mark(1, 0, false)
	require.True(t, s.tryGenerateCompleteCandidate())
	assert.Equal(t, []int{0, 1, 0}, s.candidate)
	assert.True(t, s.IsComplete())
}
