package reconstruction

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

// CostFunction weighs the per-detector residuals of a candidate cell.
type CostFunction int

const (
	// CostAbsolute uses unweighted squared residuals
	CostAbsolute CostFunction = iota
	// CostRelative weighs each residual by the inverse squared measurement
	CostRelative
)

// ParseCostFunction maps a configuration name onto a CostFunction.
func ParseCostFunction(name string) (CostFunction, error) {
	switch name {
	case "absolute":
		return CostAbsolute, nil
	case "relative":
		return CostRelative, nil
	}
	return 0, fmt.Errorf("unknown cost function %q", name)
}

// SearchMode selects between a full sweep over all cells and a warm-started
// neighborhood search around the previous position's cell.
type SearchMode int

const (
	SearchGlobal SearchMode = iota
	SearchLocal
)

// ParseSearchMode maps a configuration name onto a SearchMode.
func ParseSearchMode(name string) (SearchMode, error) {
	switch name {
	case "global":
		return SearchGlobal, nil
	case "local":
		return SearchLocal, nil
	}
	return 0, fmt.Errorf("unknown search mode %q", name)
}

// Config carries the solver selections. All enum selections are validated
// at construction; an invalid configuration refuses to build.
type Config struct {
	CostFunction   CostFunction
	Search         SearchMode
	ProximityLevel int     // neighborhood depth for local search, >= 1
	Tolerance      float64 // extrapolation limit on the squared simplex violation
}

// Solver reconstructs particle positions from detector counts. Positions
// accumulates one entry per processed sample, in sample order.
type Solver struct {
	Mesh   *Mesh
	Counts *NodalCounts

	cfg          Config
	previousCell int
	Positions    []r3.Vec
}

// NewSolver validates the configuration against the mesh and count fields.
func NewSolver(msh *Mesh, counts *NodalCounts, cfg Config) (*Solver, error) {
	if counts.NumDetectors() < 3 {
		return nil, fmt.Errorf("need at least 3 detectors to resolve 3 reference coordinates, got %d",
			counts.NumDetectors())
	}
	for d, field := range counts.Counts {
		if len(field) != len(msh.Vertices) {
			return nil, fmt.Errorf("detector %d: %d nodal counts for %d mesh vertices",
				d, len(field), len(msh.Vertices))
		}
	}
	if cfg.Tolerance <= 0 {
		return nil, fmt.Errorf("extrapolation tolerance must be positive, got %g", cfg.Tolerance)
	}
	if cfg.Search == SearchLocal && cfg.ProximityLevel < 1 {
		return nil, fmt.Errorf("local search requires proximity level >= 1, got %d", cfg.ProximityLevel)
	}
	switch cfg.CostFunction {
	case CostAbsolute, CostRelative:
	default:
		return nil, fmt.Errorf("unknown cost function %d", cfg.CostFunction)
	}
	return &Solver{Mesh: msh, Counts: counts, cfg: cfg}, nil
}

// detectorWeights returns the residual weights of the configured cost
// function for one sample.
func (s *Solver) detectorWeights(experimental []float64) []float64 {
	weights := make([]float64, len(experimental))
	for d := range weights {
		if s.cfg.CostFunction == CostRelative {
			weights[d] = 1 / (experimental[d]*experimental[d] + math.SmallestNonzeroFloat64)
		} else {
			weights[d] = 1
		}
	}
	return weights
}

// cellVertexCounts gathers the nodal counts of one cell: counts[d][v] for
// detector d at the cell's v-th vertex.
func (s *Solver) cellVertexCounts(cell int) [][4]float64 {
	out := make([][4]float64, s.Counts.NumDetectors())
	for d := range out {
		for v, vertex := range s.Mesh.EtoV[cell] {
			out[d][v] = s.Counts.Counts[d][vertex]
		}
	}
	return out
}

// referenceLocation solves the normal equations of the weighted
// least-squares fit for the first three barycentric coordinates of the
// measured point within one cell.
func referenceLocation(vertexCounts [][4]float64, experimental, weights []float64) ([3]float64, error) {
	var ref [3]float64

	sys := mat.NewDense(3, 3, nil)
	rhs := mat.NewVecDense(3, nil)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			var sigma float64
			for d := range vertexCounts {
				sigma += (vertexCounts[d][j+1] - vertexCounts[d][0]) *
					(vertexCounts[d][i+1] - vertexCounts[d][0]) * weights[d]
			}
			sys.Set(i, j, sigma)
		}
		var sigma float64
		for d := range vertexCounts {
			sigma += (vertexCounts[d][0] - experimental[d]) *
				(vertexCounts[d][i+1] - vertexCounts[d][0]) * weights[d]
		}
		rhs.SetVec(i, -sigma)
	}

	var lu mat.LU
	lu.Factorize(sys)
	sol := mat.NewVecDense(3, nil)
	if err := lu.SolveVecTo(sol, false, rhs); err != nil {
		if _, nearSingular := err.(mat.Condition); !nearSingular {
			return ref, err
		}
	}
	ref[0], ref[1], ref[2] = sol.AtVec(0), sol.AtVec(1), sol.AtVec(2)
	return ref, nil
}

// referenceViolation measures how far a reference location falls outside
// the reference simplex: the squared violation norm over all four
// barycentric constraints.
func referenceViolation(ref [3]float64, last float64) float64 {
	var violation float64
	for _, coord := range ref {
		switch {
		case coord > 1:
			violation += (coord - 1) * (coord - 1)
		case coord < 0:
			violation += coord * coord
		}
	}
	switch {
	case last < 0:
		violation += last * last
	case last > 1:
		violation += (last - 1) * (last - 1)
	}
	return violation
}

// cellCost evaluates the weighted residual of the fitted location against
// the measured counts across all detectors.
func cellCost(vertexCounts [][4]float64, ref [3]float64, last float64, experimental, weights []float64) float64 {
	var cost float64
	for d := range vertexCounts {
		count := vertexCounts[d][0] * last
		for i := 0; i < 3; i++ {
			count += vertexCounts[d][i+1] * ref[i]
		}
		count -= experimental[d]
		cost += count * count * weights[d]
	}
	return cost
}

// searchCells runs the acceptance test and running-minimum cost over the
// given cells, in order, so cost ties resolve to the first-encountered
// cell. It returns the best cell and the reconstructed real-space position.
func (s *Solver) searchCells(cells []int, experimental []float64) (bestCell int, position r3.Vec, found bool) {
	weights := s.detectorWeights(experimental)
	minCost := math.MaxFloat64

	for _, cell := range cells {
		vertexCounts := s.cellVertexCounts(cell)
		ref, err := referenceLocation(vertexCounts, experimental, weights)
		if err != nil {
			// Degenerate fit for this cell; excluded from the minimum
			// search, same as a geometric rejection.
			continue
		}

		last := 1 - ref[0] - ref[1] - ref[2]
		if referenceViolation(ref, last) >= s.cfg.Tolerance {
			continue
		}

		cost := cellCost(vertexCounts, ref, last, experimental, weights)
		if cost < minCost {
			minCost = cost
			bestCell = cell
			found = true

			verts := s.Mesh.CellVertices(cell)
			position = verts[0]
			for i := 0; i < 3; i++ {
				position = r3.Add(position, r3.Scale(ref[i], r3.Sub(verts[i+1], verts[0])))
			}
		}
	}
	return
}

// FindPositionGlobalSearch sweeps every cell for one sample. The best
// reconstructed position is appended to Positions whether or not any cell
// accepted the sample; the return value reports acceptance.
func (s *Solver) FindPositionGlobalSearch(experimental []float64) bool {
	cells := make([]int, s.Mesh.NumCells())
	for k := range cells {
		cells[k] = k
	}
	bestCell, position, found := s.searchCells(cells, experimental)
	if found {
		s.previousCell = bestCell
	}
	s.Positions = append(s.Positions, position)
	return found
}

// FindPositionLocalSearch tries the neighborhood of the previous sample's
// cell first. On acceptance the position is appended and the warm start
// advances; on rejection nothing is appended and the caller falls back to
// the global sweep.
func (s *Solver) FindPositionLocalSearch(experimental []float64) bool {
	cells := s.Mesh.AdjacentCells(s.previousCell, s.cfg.ProximityLevel)
	bestCell, position, found := s.searchCells(cells, experimental)
	if !found {
		return false
	}
	s.previousCell = bestCell
	s.Positions = append(s.Positions, position)
	return true
}

// Trajectory processes all samples in order, appending one position each.
// In local mode the first sample (and every sample after a local miss)
// goes through the global sweep.
func (s *Solver) Trajectory(samples [][]float64) {
	if s.cfg.Search == SearchLocal {
		warm := false
		for _, experimental := range samples {
			if warm {
				warm = s.FindPositionLocalSearch(experimental)
			}
			if !warm {
				warm = s.FindPositionGlobalSearch(experimental)
			}
		}
		return
	}
	for _, experimental := range samples {
		s.FindPositionGlobalSearch(experimental)
	}
}
