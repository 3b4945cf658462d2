package dem

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/DEMKernel/geom"
)

// FloatingSolid is the rigid-body view of one moving triangulated boundary.
// Triangle vertex positions are current for the step being evaluated; the
// kinematic quantities describe the solid's rigid motion and are used only
// to compute relative velocities at contact points.
type FloatingSolid interface {
	Triangle(cellID int) [3]r3.Vec
	TranslationalVelocity() r3.Vec
	AngularVelocity() r3.Vec
	CenterOfRotation() r3.Vec
}

// FloatingMeshContacts holds, per floating solid, the contact records of
// each contacting surface cell: contacts[solid][cellID][particleID].
type FloatingMeshContacts []map[int]map[int]*ContactInfo

// CalculateFloatingMeshContactForce runs the floating-mesh force pass. All
// contacting particles of a surface cell are batch-projected onto its
// triangle; particles whose projection passes the distance check and whose
// overlap is positive go through the JKR kernel. Because the boundary
// moves, the record's normal, contact point and boundary id are refreshed
// from the projection before the kernel runs.
func (f *JKRForce) CalculateFloatingMeshContactForce(contacts FloatingMeshContacts, solids []FloatingSolid,
	dt float64, force, torque []r3.Vec) {

	var locations []r3.Vec
	var records []*ContactInfo

	for solidID, solid := range solids {
		if solidID >= len(contacts) {
			break
		}
		translational := solid.TranslationalVelocity()
		angular := solid.AngularVelocity()
		centerOfRotation := solid.CenterOfRotation()

		for cellID, cellContacts := range contacts[solidID] {
			if len(cellContacts) == 0 {
				continue
			}
			locations = locations[:0]
			records = records[:0]
			for _, info := range cellContacts {
				locations = append(locations, info.Particle.Location())
				records = append(records, info)
			}

			triangle := solid.Triangle(cellID)
			pass, points, normals := geom.ProjectParticlesOnTriangle(triangle, locations)

			for i, info := range records {
				if !pass[i] {
					continue
				}
				p := info.Particle
				overlap := p.Radius() - r3.Norm(r3.Sub(p.Location(), points[i]))

				if overlap <= 0 {
					info.NormalOverlap = 0
					info.TangentialOverlap = r3.Vec{}
					continue
				}

				info.NormalOverlap = overlap
				info.Normal = normals[i]
				info.PointOnBoundary = points[i]
				info.BoundaryID = solidID

				updateFloatingContactVelocity(info, dt, translational, angular, centerOfRotation)

				normalForce, tangentialForce, tangentialTorque, rollingTorque := f.ForcesAndTorques(info)
				f.applyForceAndTorque(normalForce, tangentialForce, tangentialTorque, rollingTorque,
					force, torque, p.LocalIndex(), points[i], info.BoundaryID)
			}
		}
	}
}
