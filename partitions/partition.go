// Package partitions decomposes the particle index range into disjoint
// partitions for the lock-free parallel force passes. Partitions never share
// particle indices, so per-particle force/torque accumulation needs no
// synchronization.
package partitions

import "fmt"

// Partition is one disjoint set of particle indices owned by a single
// execution unit.
type Partition struct {
	// Unique identifier for this partition
	ID int

	// Particle membership
	Particles    []int // Global particle indices in this partition
	NumParticles int   // Number of particles owned
}

// Layout manages the complete particle decomposition.
type Layout struct {
	// All partitions in the decomposition
	Partitions []Partition

	// Global sizing information
	TotalParticles int
	NumPartitions  int

	// Particle-to-partition mapping, indexed by particle index
	PToP []int
}

// Owner returns the partition id owning the given particle index.
func (l *Layout) Owner(particleIndex int) int {
	return l.PToP[particleIndex]
}

// ValidateLayout checks that the partitions cover every particle exactly
// once.
func (l *Layout) ValidateLayout() error {
	if l.NumPartitions != len(l.Partitions) {
		return fmt.Errorf("layout reports %d partitions but holds %d",
			l.NumPartitions, len(l.Partitions))
	}
	seen := make([]bool, l.TotalParticles)
	total := 0
	for _, p := range l.Partitions {
		if p.NumParticles != len(p.Particles) {
			return fmt.Errorf("partition %d reports %d particles but holds %d",
				p.ID, p.NumParticles, len(p.Particles))
		}
		for _, idx := range p.Particles {
			if idx < 0 || idx >= l.TotalParticles {
				return fmt.Errorf("partition %d holds out-of-range particle %d", p.ID, idx)
			}
			if seen[idx] {
				return fmt.Errorf("particle %d assigned to more than one partition", idx)
			}
			seen[idx] = true
		}
		total += p.NumParticles
	}
	if total != l.TotalParticles {
		return fmt.Errorf("partitions cover %d of %d particles", total, l.TotalParticles)
	}
	return nil
}
