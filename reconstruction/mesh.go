// Package reconstruction recovers particle positions inside a tetrahedral
// mesh from detector-count measurements. Each candidate cell yields a small
// dense least-squares solve for the barycentric coordinates of the measured
// point; the accepted cell with minimum residual cost wins.
package reconstruction

import (
	"fmt"
	"sort"

	"github.com/notargets/gocfd/DG3D/mesh"
	"github.com/notargets/gocfd/DG3D/mesh/readers"
	"gonum.org/v1/gonum/spatial/r3"
)

// Mesh is the tetrahedral search substrate. Cells are linear tets; vertex
// adjacency drives the local neighbor-expansion search.
type Mesh struct {
	Vertices []r3.Vec
	EtoV     [][]int // 4 vertex ids per cell

	// VertexToCells lists, for each vertex, the cells sharing it
	VertexToCells [][]int
}

// ReadMesh loads a tetrahedral mesh file through the gocfd readers.
func ReadMesh(meshfile string) (*Mesh, error) {
	m, err := readers.ReadMeshFile(meshfile)
	if err != nil {
		return nil, fmt.Errorf("reading mesh file %s: %v", meshfile, err)
	}
	return NewMesh(m)
}

// NewMesh builds the search substrate from a gocfd mesh.
func NewMesh(m *mesh.Mesh) (*Mesh, error) {
	verts := make([]r3.Vec, len(m.Vertices))
	for i := range m.Vertices {
		v := m.Vertices[i]
		verts[i] = r3.Vec{X: v[0], Y: v[1], Z: v[2]}
	}
	etov := make([][]int, len(m.EtoV))
	for k := range m.EtoV {
		etov[k] = append([]int(nil), m.EtoV[k]...)
	}
	return NewMeshFromRaw(verts, etov)
}

// NewMeshFromRaw builds the search substrate from explicit vertex
// coordinates and cell-to-vertex connectivity.
func NewMeshFromRaw(vertices []r3.Vec, etov [][]int) (*Mesh, error) {
	msh := &Mesh{
		Vertices:      vertices,
		EtoV:          etov,
		VertexToCells: make([][]int, len(vertices)),
	}
	for k, cell := range etov {
		if len(cell) != 4 {
			return nil, fmt.Errorf("cell %d has %d vertices, tetrahedra require 4", k, len(cell))
		}
		for _, v := range cell {
			if v < 0 || v >= len(vertices) {
				return nil, fmt.Errorf("cell %d references vertex %d of %d", k, v, len(vertices))
			}
			msh.VertexToCells[v] = append(msh.VertexToCells[v], k)
		}
	}
	return msh, nil
}

// NumCells returns the number of tetrahedral cells.
func (m *Mesh) NumCells() int {
	return len(m.EtoV)
}

// CellVertices returns the four vertex positions of one cell.
func (m *Mesh) CellVertices(cell int) [4]r3.Vec {
	var out [4]r3.Vec
	for i, v := range m.EtoV[cell] {
		out[i] = m.Vertices[v]
	}
	return out
}

// AdjacentCells expands the vertex-sharing neighborhood of a cell out to
// the given proximity level (level 1 = cells sharing a vertex with the
// seed). The seed itself is included. The result is sorted in cell
// enumeration order so that cost ties resolve deterministically.
func (m *Mesh) AdjacentCells(cell, proximityLevel int) []int {
	if proximityLevel < 1 {
		proximityLevel = 1
	}
	visited := map[int]bool{cell: true}
	frontier := []int{cell}

	for level := 0; level < proximityLevel; level++ {
		var next []int
		for _, c := range frontier {
			for _, v := range m.EtoV[c] {
				for _, neighbor := range m.VertexToCells[v] {
					if !visited[neighbor] {
						visited[neighbor] = true
						next = append(next, neighbor)
					}
				}
			}
		}
		if len(next) == 0 {
			break
		}
		frontier = next
	}

	cells := make([]int, 0, len(visited))
	for c := range visited {
		cells = append(cells, c)
	}
	sort.Ints(cells)
	return cells
}
