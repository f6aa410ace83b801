package solver_test

import (
	"context"
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bufbuild/fallback/internal/testutil"
	"github.com/bufbuild/fallback/solver"
)

// matrixAsyncTester answers batched queries from a presence matrix and
// records every batch it receives.
type matrixAsyncTester struct {
	matrix  [][]bool
	batches [][]solver.Cell
}

func (t *matrixAsyncTester) TestCells(_ context.Context, cells []solver.Cell) ([]bool, error) {
	t.batches = append(t.batches, slices.Clone(cells))
	results := make([]bool, len(cells))
	for i, cell := range cells {
		results[i] = t.matrix[cell.Res][cell.Source]
	}
	return results, nil
}

func collectParallel(t *testing.T, p *solver.Parallel, tester solver.AsyncTester) [][]int {
	t.Helper()
	out := [][]int{}
	for {
		order, err := p.Next(context.Background(), tester)
		require.NoError(t, err)
		if order == nil {
			return out
		}
		out = append(out, slices.Clone(order))
	}
}

func TestParallelScenarios(t *testing.T) {
	for _, sc := range testutil.Scenarios() {
		t.Run(sc.Name, func(t *testing.T) {
			tester := &matrixAsyncTester{matrix: sc.Matrix()}
			p := solver.NewParallel(len(sc.ResIDs), len(sc.Sources))
			got := collectParallel(t, p, tester)
			if diff := cmp.Diff(sc.Solutions, got); diff != "" {
				t.Errorf("candidate sequence mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParallelMatchesSerial(t *testing.T) {
	for _, sc := range testutil.Scenarios() {
		t.Run(sc.Name, func(t *testing.T) {
			matrix := sc.Matrix()

			serial := solver.NewSerial(len(sc.ResIDs), len(sc.Sources))
			serialSeq := collectSerial(t, serial, &testutil.MatrixSyncTester{Matrix: matrix})

			parallel := solver.NewParallel(len(sc.ResIDs), len(sc.Sources))
			parallelSeq := collectParallel(t, parallel, &matrixAsyncTester{matrix: matrix})

			if diff := cmp.Diff(serialSeq, parallelSeq); diff != "" {
				t.Errorf("serial and parallel disagree (-serial +parallel):\n%s", diff)
			}
		})
	}
}

func TestParallelBatchesCellsInResourceOrder(t *testing.T) {
	sc := testutil.Scenarios()[1] // "small": everything present
	tester := &matrixAsyncTester{matrix: sc.Matrix()}
	p := solver.NewParallel(len(sc.ResIDs), len(sc.Sources))
	collectParallel(t, p, tester)
	for _, batch := range tester.batches {
		for i := 1; i < len(batch); i++ {
			assert.Less(t, batch[i-1].Res, batch[i].Res,
				"batch %v not in resource order", batch)
		}
	}
}

func TestParallelTestsEachCellOnce(t *testing.T) {
	for _, sc := range testutil.Scenarios() {
		t.Run(sc.Name, func(t *testing.T) {
			tester := &matrixAsyncTester{matrix: sc.Matrix()}
			p := solver.NewParallel(len(sc.ResIDs), len(sc.Sources))
			collectParallel(t, p, tester)
			seen := make(map[solver.Cell]bool)
			for _, batch := range tester.batches {
				for _, cell := range batch {
					assert.False(t, seen[cell], "cell %v tested twice", cell)
					seen[cell] = true
				}
			}
		})
	}
}

func TestParallelDegenerate(t *testing.T) {
	tester := &matrixAsyncTester{}
	for _, dims := range [][2]int{{0, 3}, {3, 0}, {0, 0}} {
		p := solver.NewParallel(dims[0], dims[1])
		order, err := p.Next(context.Background(), tester)
		require.NoError(t, err)
		require.Nil(t, order)
		require.Empty(t, tester.batches)
	}
}

func TestParallelContextError(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	tester := solverCtxTester{}
	p := solver.NewParallel(2, 2)
	order, err := p.Next(ctx, tester)
	require.ErrorIs(t, err, context.Canceled)
	require.Nil(t, order)
}

type solverCtxTester struct{}

func (solverCtxTester) TestCells(ctx context.Context, cells []solver.Cell) ([]bool, error) {
	return nil, ctx.Err()
}

func BenchmarkSerial(b *testing.B) {
	sc := testutil.Scenarios()[6] // "preferences"
	matrix := sc.Matrix()
	for b.Loop() {
		tester := &testutil.MatrixSyncTester{Matrix: matrix}
		s := solver.NewSerial(len(sc.ResIDs), len(sc.Sources))
		for s.Next(tester) != nil {
		}
	}
}

func BenchmarkParallel(b *testing.B) {
	sc := testutil.Scenarios()[6]
	matrix := sc.Matrix()
	ctx := context.Background()
	for b.Loop() {
		tester := &matrixAsyncTester{matrix: matrix}
		p := solver.NewParallel(len(sc.ResIDs), len(sc.Sources))
		for {
			order, err := p.Next(ctx, tester)
			if err != nil || order == nil {
				break
			}
		}
	}
}
