package dem

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// radicalFloor is the floor applied to every radical argument in the patch
// radius solve. Floating round-off near zero overlap can drive these
// arguments slightly negative; the floor keeps NaN out of the force path.
const radicalFloor = 1e-16

// JKRForce evaluates cohesive particle-wall contact forces with the
// Johnson-Kendall-Roberts adhesion model. One instance serves both the flat
// wall and the floating mesh passes; it carries the effective property
// table, the rolling-resistance selection and, optionally, per-boundary
// force/torque instrumentation.
type JKRForce struct {
	Table   *PropertyTable
	Rolling RollingModel

	// Boundary instrumentation. ForceOnWalls and TorqueOnWalls are only
	// maintained for the registered boundary ids, and only when tracking
	// is enabled; both are reset at the start of each wall pass.
	TrackBoundaryForces bool
	CenterOfMass        r3.Vec
	ForceOnWalls        map[int]r3.Vec
	TorqueOnWalls       map[int]r3.Vec
}

// NewJKRForce builds the force model from a precomputed property table and
// a rolling-resistance selection.
func NewJKRForce(table *PropertyTable, rolling RollingModel) *JKRForce {
	return &JKRForce{Table: table, Rolling: rolling}
}

// EnableBoundaryTracking turns on per-boundary force/torque accumulation
// for the given boundary ids. Torques are taken about centerOfMass.
func (f *JKRForce) EnableBoundaryTracking(boundaryIDs []int, centerOfMass r3.Vec) {
	f.TrackBoundaryForces = true
	f.CenterOfMass = centerOfMass
	f.ForceOnWalls = make(map[int]r3.Vec, len(boundaryIDs))
	f.TorqueOnWalls = make(map[int]r3.Vec, len(boundaryIDs))
	for _, id := range boundaryIDs {
		f.ForceOnWalls[id] = r3.Vec{}
		f.TorqueOnWalls[id] = r3.Vec{}
	}
}

func (f *JKRForce) resetBoundaryAccumulators() {
	for id := range f.ForceOnWalls {
		f.ForceOnWalls[id] = r3.Vec{}
		f.TorqueOnWalls[id] = r3.Vec{}
	}
}

// patchRadius solves the JKR contact patch radius from the closed-form
// depressed-quartic reduction. Every radical argument is floored so that
// near-degenerate inputs recover locally instead of propagating NaN.
func patchRadius(radius, overlap, effYoung, effSurfaceEnergy float64) float64 {
	c0 := radius * overlap * radius * overlap
	c1 := -2 * radius * radius * math.Pi * effSurfaceEnergy / effYoung
	c2 := -2 * overlap * radius

	// Resolvent cubic of the depressed quartic.
	p := -c2*c2/12 - c0
	q := -c2*c2*c2/108 + c0*c2/3 - c1*c1*0.125
	root1 := math.Max(0, 0.25*q*q+p*p*p/27)
	u := math.Cbrt(-0.5*q + math.Sqrt(root1))
	s := -c2*(5.0/6.0) + u - p/(3*u)

	w := math.Sqrt(math.Max(radicalFloor, c2+2*s))
	lambda := 0.5 * c1 / w
	root2 := math.Max(radicalFloor, w*w-4*(c2+s+lambda))
	return 0.5 * (w + math.Sqrt(root2))
}

// ForcesAndTorques evaluates one contact pair. The caller guarantees
// info.NormalOverlap > 0 and up-to-date relative velocities. Returned
// vectors follow the (i -> j) convention with i the particle and j the
// wall: the normal force for a compressed Hertzian contact points into the
// wall, and the accumulator applies the opposite sign on the particle.
//
// As a side effect, gross sliding clamps info.TangentialOverlap so that
// subsequent steps see the corrected spring deformation history.
func (f *JKRForce) ForcesAndTorques(info *ContactInfo) (normalForce, tangentialForce, tangentialTorque, rollingTorque r3.Vec) {
	p := info.Particle
	ptype := p.Type()
	radius := p.Radius()

	// Flip the stored boundary normal to respect the (i -> j) convention.
	normal := r3.Scale(-1, info.Normal)

	effYoung := f.Table.EffectiveYoungsModulus[ptype]
	effShear := f.Table.EffectiveShearModulus[ptype]
	effSurface := f.Table.EffectiveSurfaceEnergy[ptype]

	// Stiffness proxies for the nonlinear normal/tangential response.
	radiusOverlapSqrt := math.Sqrt(radius * info.NormalOverlap)
	sn := 2 * effYoung * radiusOverlapSqrt
	st := 8 * effShear * radiusOverlapSqrt

	a := patchRadius(radius, info.NormalOverlap, effYoung, effSurface)

	// Beta is <= 0, so the damping terms oppose approach without an
	// explicit sign flip. 1.8257 = 2*sqrt(5/6).
	normalDamping := 1.8257 * f.Table.Beta[ptype] * math.Sqrt(sn*p.Mass())

	// The tangential spring constant is defined negative, matching the
	// other particle-wall models; the damping ratio square root accounts
	// for that separately.
	kt := -8 * effShear * radiusOverlapSqrt
	tangentialDamping := normalDamping * math.Sqrt(st/(sn+dblMin))

	a3 := a * a * a
	normalForceNorm := 4*effYoung*a3/(3*radius) -
		math.Sqrt(8*math.Pi*effSurface*effYoung*a3) +
		normalDamping*info.NormalRelativeVelocity
	normalForce = r3.Scale(normalForceNorm, normal)

	dampingForce := r3.Scale(tangentialDamping, info.TangentialRelativeVelocity)
	tangentialForce = r3.Add(r3.Scale(kt, info.TangentialOverlap), dampingForce)
	tangentialForceNorm := r3.Norm(tangentialForce)

	// Coulomb threshold raised by the JKR pull-out force (Thornton 1991).
	coulombThreshold := (normalForceNorm + 3*math.Pi*effSurface*radius) *
		f.Table.EffectiveFriction[ptype]

	if tangentialForceNorm > coulombThreshold {
		// Gross sliding: cap the stored overlap itself, not just the
		// returned force, then recompute the force from the corrected
		// history.
		limited := r3.Scale(coulombThreshold/(tangentialForceNorm+dblMin), tangentialForce)
		info.TangentialOverlap = r3.Scale(1/(kt+dblMin), r3.Sub(limited, dampingForce))
		tangentialForce = r3.Add(r3.Scale(kt, info.TangentialOverlap), dampingForce)
	}

	// The reaction on the particle is opposite the tangential force.
	tangentialTorque = r3.Cross(r3.Scale(radius, normal), r3.Scale(-1, tangentialForce))

	rollingTorque = rollingResistanceTorque(f.Rolling, p,
		f.Table.EffectiveRollingFriction[ptype], r3.Norm(normalForce), info.Normal)
	return
}

// applyForceAndTorque folds one pair's forces and torques into the
// per-particle output slices and, when enabled, the per-boundary
// accumulators. The kernel returns forces in the (i -> j) convention, so
// the particle receives the opposite sign while the boundary receives the
// force as returned.
func (f *JKRForce) applyForceAndTorque(normalForce, tangentialForce, tangentialTorque, rollingTorque r3.Vec,
	force, torque []r3.Vec, particleIndex int, pointOnBoundary r3.Vec, boundaryID int) {

	total := r3.Add(normalForce, tangentialForce)
	force[particleIndex] = r3.Sub(force[particleIndex], total)
	torque[particleIndex] = r3.Add(torque[particleIndex], r3.Add(tangentialTorque, rollingTorque))

	if !f.TrackBoundaryForces {
		return
	}
	if _, ok := f.ForceOnWalls[boundaryID]; !ok {
		return
	}
	f.ForceOnWalls[boundaryID] = r3.Add(f.ForceOnWalls[boundaryID], total)
	arm := r3.Sub(pointOnBoundary, f.CenterOfMass)
	f.TorqueOnWalls[boundaryID] = r3.Add(f.TorqueOnWalls[boundaryID], r3.Cross(arm, total))
}
