package dem

import (
	"fmt"
	"math"
)

// Material holds the raw physical properties of one particle type or of the
// wall material.
type Material struct {
	YoungsModulus   float64 // Pa
	PoissonRatio    float64
	Restitution     float64
	Friction        float64
	RollingFriction float64
	SurfaceEnergy   float64 // J/m^2
}

// PhysicalProperties bundles the per-type particle materials with the wall
// material they contact.
type PhysicalProperties struct {
	Particle []Material // indexed by particle type id
	Wall     Material
}

// PropertyTable holds the effective particle-wall coefficients for every
// particle type. All slices are indexed by particle type id and are computed
// once at construction; the table is immutable afterwards.
type PropertyTable struct {
	EffectiveYoungsModulus   []float64
	EffectiveShearModulus    []float64
	EffectiveRestitution     []float64
	EffectiveSurfaceEnergy   []float64
	EffectiveFriction        []float64
	EffectiveRollingFriction []float64

	// Beta is the damping model parameter ln(e)/sqrt(ln(e)^2 + pi^2),
	// always <= 0 for restitution coefficients in (0, 1].
	Beta []float64
}

// dblMin is the additive guard used in every division by a physically
// vanishing quantity. Degenerate inputs are recovered locally, never
// surfaced as errors.
const dblMin = math.SmallestNonzeroFloat64

// BuildPropertyTable combines wall and particle-type elastic, adhesive and
// frictional properties into effective particle-wall coefficients.
func BuildPropertyTable(props PhysicalProperties) (*PropertyTable, error) {
	n := len(props.Particle)
	if n == 0 {
		return nil, fmt.Errorf("property table requires at least one particle type")
	}

	t := &PropertyTable{
		EffectiveYoungsModulus:   make([]float64, n),
		EffectiveShearModulus:    make([]float64, n),
		EffectiveRestitution:     make([]float64, n),
		EffectiveSurfaceEnergy:   make([]float64, n),
		EffectiveFriction:        make([]float64, n),
		EffectiveRollingFriction: make([]float64, n),
		Beta:                     make([]float64, n),
	}

	wall := props.Wall
	for i, p := range props.Particle {
		// Series compliance combination of the two elastic moduli.
		t.EffectiveYoungsModulus[i] = (p.YoungsModulus * wall.YoungsModulus) /
			(wall.YoungsModulus*(1-p.PoissonRatio*p.PoissonRatio) +
				p.YoungsModulus*(1-wall.PoissonRatio*wall.PoissonRatio) + dblMin)

		t.EffectiveShearModulus[i] = (p.YoungsModulus * wall.YoungsModulus) /
			(2*wall.YoungsModulus*(2-p.PoissonRatio)*(1+p.PoissonRatio) +
				2*p.YoungsModulus*(2-wall.PoissonRatio)*(1+wall.PoissonRatio) + dblMin)

		t.EffectiveRestitution[i] = 2 * p.Restitution * wall.Restitution /
			(p.Restitution + wall.Restitution + dblMin)

		// Mixing rule; non-negative for any valid pair of surface energies.
		t.EffectiveSurfaceEnergy[i] = p.SurfaceEnergy + wall.SurfaceEnergy -
			math.Pow(math.Sqrt(p.SurfaceEnergy)-math.Sqrt(wall.SurfaceEnergy), 2)

		logE := math.Log(t.EffectiveRestitution[i])
		t.Beta[i] = logE / math.Sqrt(logE*logE+math.Pi*math.Pi)

		t.EffectiveFriction[i] = 2 * p.Friction * wall.Friction /
			(p.Friction + wall.Friction + dblMin)

		t.EffectiveRollingFriction[i] = 2 * p.RollingFriction * wall.RollingFriction /
			(p.RollingFriction + wall.RollingFriction + dblMin)
	}
	return t, nil
}

// NumTypes returns the number of particle types covered by the table.
func (t *PropertyTable) NumTypes() int {
	return len(t.EffectiveYoungsModulus)
}
