package partitions

import (
	"fmt"
	"math"
)

// Strategy defines how particle indices are grouped into partitions.
type Strategy int

const (
	// BlockPartition assigns consecutive index ranges
	BlockPartition Strategy = iota
	// RoundRobin distributes indices cyclically
	RoundRobin
)

// Builder constructs particle partitions.
type Builder struct {
	NumParticles int

	// Partitioning parameters
	TargetPartitionSize int // Desired particles per partition
	Strategy            Strategy
}

// BuildLayout creates a partition layout covering the particle index range.
func (b *Builder) BuildLayout() (*Layout, error) {
	if b.NumParticles < 0 {
		return nil, fmt.Errorf("negative particle count %d", b.NumParticles)
	}
	if b.TargetPartitionSize <= 0 {
		return nil, fmt.Errorf("target partition size must be positive, got %d", b.TargetPartitionSize)
	}

	numPartitions := b.calculateNumPartitions()
	pToP := b.partitionParticles(numPartitions)
	parts := createPartitions(pToP, numPartitions)

	layout := &Layout{
		Partitions:     parts,
		TotalParticles: b.NumParticles,
		NumPartitions:  numPartitions,
		PToP:           pToP,
	}

	if err := layout.ValidateLayout(); err != nil {
		return nil, fmt.Errorf("invalid partition layout: %w", err)
	}
	return layout, nil
}

// calculateNumPartitions determines the partition count from the target
// size, with at least one partition.
func (b *Builder) calculateNumPartitions() int {
	numPartitions := int(math.Ceil(float64(b.NumParticles) / float64(b.TargetPartitionSize)))
	if numPartitions < 1 {
		numPartitions = 1
	}
	return numPartitions
}

// partitionParticles assigns particle indices to partitions.
func (b *Builder) partitionParticles(numPartitions int) []int {
	pToP := make([]int, b.NumParticles)

	switch b.Strategy {
	case RoundRobin:
		for i := 0; i < b.NumParticles; i++ {
			pToP[i] = i % numPartitions
		}
	default:
		// Block partitioning of consecutive index ranges
		perPartition := int(math.Ceil(float64(b.NumParticles) / float64(numPartitions)))
		for i := 0; i < b.NumParticles; i++ {
			pToP[i] = i / perPartition
			if pToP[i] >= numPartitions {
				pToP[i] = numPartitions - 1
			}
		}
	}
	return pToP
}

// createPartitions builds partition structures from the index assignment.
func createPartitions(pToP []int, numPartitions int) []Partition {
	parts := make([]Partition, numPartitions)
	for i := range parts {
		parts[i] = Partition{ID: i, Particles: make([]int, 0)}
	}
	for idx, part := range pToP {
		parts[part].Particles = append(parts[part].Particles, idx)
		parts[part].NumParticles++
	}
	return parts
}
