package dem

import "gonum.org/v1/gonum/spatial/r3"

// Particle is the read-only view of one particle in an external particle
// store. The force kernels never mutate particle state; computed forces and
// torques go into caller-owned slices indexed by LocalIndex.
type Particle interface {
	Radius() float64
	Mass() float64
	Type() int
	Location() r3.Vec
	Velocity() r3.Vec
	AngularVelocity() r3.Vec
	LocalIndex() int
}

// Sphere is a minimal concrete Particle, used by the examples and tests as a
// stand-in for an external particle store.
type Sphere struct {
	R     float64
	M     float64
	TypeI int
	Pos   r3.Vec
	Vel   r3.Vec
	Omega r3.Vec
	Index int
}

func (s *Sphere) Radius() float64         { return s.R }
func (s *Sphere) Mass() float64           { return s.M }
func (s *Sphere) Type() int               { return s.TypeI }
func (s *Sphere) Location() r3.Vec        { return s.Pos }
func (s *Sphere) Velocity() r3.Vec        { return s.Vel }
func (s *Sphere) AngularVelocity() r3.Vec { return s.Omega }
func (s *Sphere) LocalIndex() int         { return s.Index }
