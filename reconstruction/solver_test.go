package reconstruction

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

// unitTet is the reference tetrahedron whose barycentric coordinates
// coincide with the cartesian coordinates of the interior point.
func unitTet(t *testing.T) *Mesh {
	t.Helper()
	msh, err := NewMeshFromRaw(
		[]r3.Vec{
			{},
			{X: 1},
			{Y: 1},
			{Z: 1},
		},
		[][]int{{0, 1, 2, 3}},
	)
	require.NoError(t, err)
	return msh
}

// linearCounts evaluates four linear detector fields (x, y, z, x+y+z+1) at
// the given mesh vertices. Linear fields make the per-cell least-squares
// fit exact, so reconstruction recovers interior points to round-off.
func linearCounts(msh *Mesh) *NodalCounts {
	fields := []func(v r3.Vec) float64{
		func(v r3.Vec) float64 { return v.X },
		func(v r3.Vec) float64 { return v.Y },
		func(v r3.Vec) float64 { return v.Z },
		func(v r3.Vec) float64 { return v.X + v.Y + v.Z + 1 },
	}
	nc := &NodalCounts{Counts: make([][]float64, len(fields))}
	for d, field := range fields {
		nc.Counts[d] = make([]float64, len(msh.Vertices))
		for i, v := range msh.Vertices {
			nc.Counts[d][i] = field(v)
		}
	}
	return nc
}

func sampleAt(p r3.Vec) []float64 {
	return []float64{p.X, p.Y, p.Z, p.X + p.Y + p.Z + 1}
}

func TestGlobalSearchRecoversInteriorPoint(t *testing.T) {
	msh := unitTet(t)
	solver, err := NewSolver(msh, linearCounts(msh), Config{
		CostFunction: CostAbsolute,
		Search:       SearchGlobal,
		Tolerance:    0.005,
	})
	require.NoError(t, err)

	want := r3.Vec{X: 0.2, Y: 0.3, Z: 0.4}
	found := solver.FindPositionGlobalSearch(sampleAt(want))

	require.True(t, found)
	require.Len(t, solver.Positions, 1)
	got := solver.Positions[0]
	assert.InDelta(t, want.X, got.X, 1e-10)
	assert.InDelta(t, want.Y, got.Y, 1e-10)
	assert.InDelta(t, want.Z, got.Z, 1e-10)
}

func TestRelativeCostRecoversInteriorPoint(t *testing.T) {
	msh := unitTet(t)
	solver, err := NewSolver(msh, linearCounts(msh), Config{
		CostFunction: CostRelative,
		Search:       SearchGlobal,
		Tolerance:    0.005,
	})
	require.NoError(t, err)

	want := r3.Vec{X: 0.1, Y: 0.1, Z: 0.5}
	require.True(t, solver.FindPositionGlobalSearch(sampleAt(want)))
	got := solver.Positions[0]
	assert.InDelta(t, want.X, got.X, 1e-10)
	assert.InDelta(t, want.Y, got.Y, 1e-10)
	assert.InDelta(t, want.Z, got.Z, 1e-10)
}

func TestGlobalSearchRejectsExteriorPoint(t *testing.T) {
	msh := unitTet(t)
	solver, err := NewSolver(msh, linearCounts(msh), Config{
		CostFunction: CostAbsolute,
		Search:       SearchGlobal,
		Tolerance:    0.005,
	})
	require.NoError(t, err)

	// Far outside the mesh: the fitted reference location violates the
	// simplex constraints well past the extrapolation tolerance.
	found := solver.FindPositionGlobalSearch(sampleAt(r3.Vec{X: 2, Y: 2, Z: 2}))

	assert.False(t, found)
	// A position row is still emitted so sample and position indices stay
	// aligned across the trajectory.
	require.Len(t, solver.Positions, 1)
	assert.Equal(t, r3.Vec{}, solver.Positions[0])
}

func TestMarginalExtrapolationWithinTolerance(t *testing.T) {
	msh := unitTet(t)
	solver, err := NewSolver(msh, linearCounts(msh), Config{
		CostFunction: CostAbsolute,
		Search:       SearchGlobal,
		Tolerance:    0.005,
	})
	require.NoError(t, err)

	// Slightly outside one face: squared violation (0.01)^2 = 1e-4 < 0.005.
	want := r3.Vec{X: -0.01, Y: 0.3, Z: 0.3}
	require.True(t, solver.FindPositionGlobalSearch(sampleAt(want)))
	assert.InDelta(t, want.X, solver.Positions[0].X, 1e-10)
}

func TestDegenerateDetectorsRejectCell(t *testing.T) {
	msh := unitTet(t)
	// Three collinear fields leave the normal-equations matrix singular.
	counts := &NodalCounts{Counts: [][]float64{
		{0, 1, 0, 0},
		{0, 2, 0, 0},
		{0, 3, 0, 0},
	}}
	solver, err := NewSolver(msh, counts, Config{
		CostFunction: CostAbsolute,
		Search:       SearchGlobal,
		Tolerance:    0.005,
	})
	require.NoError(t, err)

	found := solver.FindPositionGlobalSearch([]float64{0.2, 0.4, 0.6})
	assert.False(t, found)
}

func twoTetMesh(t *testing.T) *Mesh {
	t.Helper()
	msh, err := NewMeshFromRaw(
		[]r3.Vec{
			{},
			{X: 1},
			{Y: 1},
			{Z: 1},
			{X: 1, Y: 1, Z: 1},
		},
		[][]int{
			{0, 1, 2, 3},
			{1, 2, 3, 4},
		},
	)
	require.NoError(t, err)
	return msh
}

func TestAdjacentCells(t *testing.T) {
	msh := twoTetMesh(t)
	assert.Equal(t, []int{0, 1}, msh.AdjacentCells(0, 1))
	assert.Equal(t, []int{0, 1}, msh.AdjacentCells(1, 1))
	assert.Equal(t, []int{0, 1}, msh.AdjacentCells(0, 3))
}

func TestTrajectoryLocalSearchFollowsParticle(t *testing.T) {
	msh := twoTetMesh(t)
	solver, err := NewSolver(msh, linearCounts(msh), Config{
		CostFunction:   CostAbsolute,
		Search:         SearchLocal,
		ProximityLevel: 1,
		Tolerance:      0.005,
	})
	require.NoError(t, err)

	// First sample in cell 0, second in cell 1, third back in cell 0. The
	// first goes through the global sweep; the rest ride the warm start.
	points := []r3.Vec{
		{X: 0.2, Y: 0.2, Z: 0.2},
		{X: 0.5, Y: 0.5, Z: 0.5}, // centroid of cell 1
		{X: 0.1, Y: 0.1, Z: 0.1},
	}
	samples := make([][]float64, len(points))
	for i, p := range points {
		samples[i] = sampleAt(p)
	}
	solver.Trajectory(samples)

	require.Len(t, solver.Positions, len(points))
	for i, want := range points {
		assert.InDelta(t, want.X, solver.Positions[i].X, 1e-10, "sample %d", i)
		assert.InDelta(t, want.Y, solver.Positions[i].Y, 1e-10, "sample %d", i)
		assert.InDelta(t, want.Z, solver.Positions[i].Z, 1e-10, "sample %d", i)
	}
}

func TestTrajectoryLocalSearchFallsBackOnMiss(t *testing.T) {
	msh := twoTetMesh(t)
	solver, err := NewSolver(msh, linearCounts(msh), Config{
		CostFunction:   CostAbsolute,
		Search:         SearchLocal,
		ProximityLevel: 1,
		Tolerance:      0.005,
	})
	require.NoError(t, err)

	// An exterior sample misses locally and globally; the fallback still
	// emits a placeholder row, and the next interior sample recovers.
	inside := r3.Vec{X: 0.2, Y: 0.2, Z: 0.2}
	solver.Trajectory([][]float64{
		sampleAt(inside),
		sampleAt(r3.Vec{X: 5, Y: 5, Z: 5}),
		sampleAt(inside),
	})

	require.Len(t, solver.Positions, 3)
	assert.Equal(t, r3.Vec{}, solver.Positions[1])
	assert.InDelta(t, inside.X, solver.Positions[2].X, 1e-10)
}

func TestNewSolverValidation(t *testing.T) {
	msh := unitTet(t)
	good := Config{CostFunction: CostAbsolute, Search: SearchGlobal, Tolerance: 0.005}

	_, err := NewSolver(msh, &NodalCounts{Counts: [][]float64{{0, 1, 0, 0}}}, good)
	assert.Error(t, err, "too few detectors")

	short := &NodalCounts{Counts: [][]float64{{0, 1}, {0, 2}, {0, 3}}}
	_, err = NewSolver(msh, short, good)
	assert.Error(t, err, "count field shorter than the vertex list")

	bad := good
	bad.Tolerance = 0
	_, err = NewSolver(msh, linearCounts(msh), bad)
	assert.Error(t, err, "non-positive tolerance")

	bad = good
	bad.Search = SearchLocal
	bad.ProximityLevel = 0
	_, err = NewSolver(msh, linearCounts(msh), bad)
	assert.Error(t, err, "local search without a proximity level")
}

func TestNewMeshFromRawValidation(t *testing.T) {
	_, err := NewMeshFromRaw([]r3.Vec{{}, {X: 1}, {Y: 1}}, [][]int{{0, 1, 2}})
	assert.Error(t, err, "non-tetrahedral cell")

	_, err = NewMeshFromRaw([]r3.Vec{{}, {X: 1}, {Y: 1}}, [][]int{{0, 1, 2, 7}})
	assert.Error(t, err, "vertex id out of range")
}

func TestParseSelections(t *testing.T) {
	cf, err := ParseCostFunction("relative")
	require.NoError(t, err)
	assert.Equal(t, CostRelative, cf)
	_, err = ParseCostFunction("chi2")
	assert.Error(t, err)

	sm, err := ParseSearchMode("local")
	require.NoError(t, err)
	assert.Equal(t, SearchLocal, sm)
	_, err = ParseSearchMode("annealed")
	assert.Error(t, err)
}
