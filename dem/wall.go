package dem

import "gonum.org/v1/gonum/spatial/r3"

// CalculateWallContactForce runs the flat-wall force pass: for every active
// contact record it recomputes the normal overlap from the current particle
// position and the stored boundary geometry, evaluates the JKR kernel while
// in contact, and folds the results into the caller-owned force and torque
// slices indexed by local particle index.
//
// Records whose overlap has dropped to <= 0 have their overlap state zeroed
// in place; removal of stale records is left to the external pair
// maintenance.
func (f *JKRForce) CalculateWallContactForce(store *ContactStore, dt float64, force, torque []r3.Vec) {
	f.resetBoundaryAccumulators()
	store.Range(func(info *ContactInfo) {
		f.evaluateWallPair(info, dt, force, torque)
	})
}

// evaluateWallPair processes one flat-wall record. Shared by the sequential
// and the partition-parallel passes.
func (f *JKRForce) evaluateWallPair(info *ContactInfo, dt float64, force, torque []r3.Vec) {
	p := info.Particle

	// Project the center-to-boundary vector on the boundary normal to get
	// the particle-wall distance.
	toParticle := r3.Sub(p.Location(), info.PointOnBoundary)
	projected := projectOnto(toParticle, info.Normal)
	overlap := p.Radius() - r3.Norm(projected)

	if overlap <= 0 {
		info.NormalOverlap = 0
		info.TangentialOverlap = r3.Vec{}
		return
	}

	info.NormalOverlap = overlap
	updateWallContactVelocity(info, dt)

	normalForce, tangentialForce, tangentialTorque, rollingTorque := f.ForcesAndTorques(info)
	f.applyForceAndTorque(normalForce, tangentialForce, tangentialTorque, rollingTorque,
		force, torque, p.LocalIndex(), info.PointOnBoundary, info.BoundaryID)
}

// projectOnto returns the projection of v on the direction of n.
func projectOnto(v, n r3.Vec) r3.Vec {
	return r3.Scale(r3.Dot(v, n)/(r3.Norm2(n)+dblMin), n)
}
