// Package geom provides the geometric projection routines used by the
// floating-mesh contact pass.
package geom

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// barycentricTol admits projections marginally outside an edge; contacts
// right on a shared triangle edge must not be dropped by both neighbors.
const barycentricTol = 1e-12

// ProjectParticlesOnTriangle projects a batch of particle centers onto the
// plane of one triangle. For each location it reports
//   - pass: whether the orthogonal projection falls inside the triangle,
//   - point: the projection point on the triangle plane,
//   - normal: the unit plane normal oriented from the triangle toward the
//     particle.
//
// A degenerate (zero-area) triangle fails every location.
func ProjectParticlesOnTriangle(triangle [3]r3.Vec, locations []r3.Vec) (pass []bool, points []r3.Vec, normals []r3.Vec) {
	n := len(locations)
	pass = make([]bool, n)
	points = make([]r3.Vec, n)
	normals = make([]r3.Vec, n)

	e0 := r3.Sub(triangle[1], triangle[0])
	e1 := r3.Sub(triangle[2], triangle[0])
	planeNormal := r3.Cross(e0, e1)
	area2 := r3.Norm(planeNormal)
	if area2 < math.SmallestNonzeroFloat64 {
		return
	}
	unitNormal := r3.Scale(1/area2, planeNormal)

	dot00 := r3.Dot(e0, e0)
	dot01 := r3.Dot(e0, e1)
	dot11 := r3.Dot(e1, e1)
	denom := dot00*dot11 - dot01*dot01

	for i, loc := range locations {
		d := r3.Sub(loc, triangle[0])
		dist := r3.Dot(d, unitNormal)
		proj := r3.Sub(loc, r3.Scale(dist, unitNormal))
		points[i] = proj

		if dist < 0 {
			normals[i] = r3.Scale(-1, unitNormal)
		} else {
			normals[i] = unitNormal
		}

		dp := r3.Sub(proj, triangle[0])
		dp0 := r3.Dot(dp, e0)
		dp1 := r3.Dot(dp, e1)
		u := (dot11*dp0 - dot01*dp1) / denom
		v := (dot00*dp1 - dot01*dp0) / denom
		pass[i] = u >= -barycentricTol && v >= -barycentricTol && u+v <= 1+barycentricTol
	}
	return
}
