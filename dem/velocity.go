package dem

import "gonum.org/v1/gonum/spatial/r3"

// updateWallContactVelocity refreshes the relative velocity decomposition
// of a particle against a static wall and integrates the tangential overlap
// over dt. The velocity of the contact point on the particle surface
// includes the rotational contribution at radius R along the inward normal.
func updateWallContactVelocity(info *ContactInfo, dt float64) {
	updateContactVelocity(info, dt, r3.Vec{})
}

// updateFloatingContactVelocity refreshes the relative velocity of a
// particle against a moving rigid solid. The solid contributes its
// translational velocity plus the rotational velocity of the contact point
// about the center of rotation.
func updateFloatingContactVelocity(info *ContactInfo, dt float64, translational, angular, centerOfRotation r3.Vec) {
	wallVel := r3.Add(translational,
		r3.Cross(angular, r3.Sub(info.PointOnBoundary, centerOfRotation)))
	updateContactVelocity(info, dt, wallVel)
}

func updateContactVelocity(info *ContactInfo, dt float64, wallVel r3.Vec) {
	p := info.Particle

	// Contact point sits at radius R along the inward normal.
	surfaceVel := r3.Add(p.Velocity(),
		r3.Cross(p.AngularVelocity(), r3.Scale(-p.Radius(), info.Normal)))
	rel := r3.Sub(surfaceVel, wallVel)

	info.NormalRelativeVelocity = r3.Dot(rel, info.Normal)
	normalComponent := r3.Scale(info.NormalRelativeVelocity, info.Normal)
	info.TangentialRelativeVelocity = r3.Sub(rel, normalComponent)

	info.TangentialOverlap = r3.Add(info.TangentialOverlap,
		r3.Scale(dt, info.TangentialRelativeVelocity))
}
