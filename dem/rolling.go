package dem

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"
)

// RollingModel selects the rolling-resistance torque model. The selection is
// made once at construction and is immutable afterwards.
type RollingModel int

const (
	NoResistance RollingModel = iota
	ConstantResistance
	ViscousResistance
)

// ParseRollingModel maps a configuration name onto a RollingModel. Unknown
// names refuse to build rather than fail mid-loop.
func ParseRollingModel(name string) (RollingModel, error) {
	switch name {
	case "no_resistance":
		return NoResistance, nil
	case "constant_resistance":
		return ConstantResistance, nil
	case "viscous_resistance":
		return ViscousResistance, nil
	}
	return 0, fmt.Errorf("unknown rolling resistance method %q", name)
}

func (m RollingModel) String() string {
	switch m {
	case NoResistance:
		return "no_resistance"
	case ConstantResistance:
		return "constant_resistance"
	case ViscousResistance:
		return "viscous_resistance"
	}
	return fmt.Sprintf("RollingModel(%d)", int(m))
}

// rollingResistanceTorque dispatches the configured model. normal points
// outward from the boundary toward the particle; normalForceNorm is the
// magnitude of the JKR normal force.
func rollingResistanceTorque(model RollingModel, p Particle, rollingFriction, normalForceNorm float64, normal r3.Vec) r3.Vec {
	switch model {
	case ConstantResistance:
		omega := p.AngularVelocity()
		omegaHat := r3.Scale(1/(r3.Norm(omega)+dblMin), omega)
		return r3.Scale(-rollingFriction*normalForceNorm*p.Radius(), omegaHat)
	case ViscousResistance:
		// Relative surface velocity at the contact point due to rotation.
		surfaceVel := r3.Cross(p.AngularVelocity(), r3.Scale(p.Radius(), normal))
		return r3.Scale(-rollingFriction*normalForceNorm*p.Radius(), surfaceVel)
	}
	return r3.Vec{}
}
