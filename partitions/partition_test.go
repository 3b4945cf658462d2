package partitions

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlockPartitionLayout(t *testing.T) {
	builder := &Builder{NumParticles: 100, TargetPartitionSize: 32, Strategy: BlockPartition}
	layout, err := builder.BuildLayout()
	require.NoError(t, err)

	assert.Equal(t, 4, layout.NumPartitions)
	assert.Equal(t, 100, layout.TotalParticles)
	require.NoError(t, layout.ValidateLayout())

	// Block assignment keeps consecutive indices together.
	assert.Equal(t, 0, layout.Owner(0))
	assert.Equal(t, 0, layout.Owner(24))
	assert.Equal(t, 1, layout.Owner(25))
	assert.Equal(t, 3, layout.Owner(99))
}

func TestRoundRobinLayout(t *testing.T) {
	builder := &Builder{NumParticles: 10, TargetPartitionSize: 4, Strategy: RoundRobin}
	layout, err := builder.BuildLayout()
	require.NoError(t, err)

	assert.Equal(t, 3, layout.NumPartitions)
	for i := 0; i < 10; i++ {
		assert.Equal(t, i%3, layout.Owner(i))
	}
	require.NoError(t, layout.ValidateLayout())
}

func TestPartitionsAreDisjointAndCovering(t *testing.T) {
	for _, strategy := range []Strategy{BlockPartition, RoundRobin} {
		builder := &Builder{NumParticles: 257, TargetPartitionSize: 16, Strategy: strategy}
		layout, err := builder.BuildLayout()
		require.NoError(t, err)

		seen := make(map[int]int)
		for _, p := range layout.Partitions {
			assert.Equal(t, len(p.Particles), p.NumParticles)
			for _, idx := range p.Particles {
				seen[idx]++
			}
		}
		assert.Len(t, seen, 257)
		for idx, count := range seen {
			assert.Equal(t, 1, count, "particle %d owned %d times", idx, count)
		}
	}
}

func TestBuildLayoutSmallCounts(t *testing.T) {
	// Fewer particles than the target size collapse to one partition.
	builder := &Builder{NumParticles: 3, TargetPartitionSize: 64, Strategy: BlockPartition}
	layout, err := builder.BuildLayout()
	require.NoError(t, err)
	assert.Equal(t, 1, layout.NumPartitions)

	// Zero particles still builds a valid, empty layout.
	builder = &Builder{NumParticles: 0, TargetPartitionSize: 64, Strategy: BlockPartition}
	layout, err = builder.BuildLayout()
	require.NoError(t, err)
	assert.Equal(t, 1, layout.NumPartitions)
	assert.Equal(t, 0, layout.TotalParticles)
}

func TestBuildLayoutRejectsBadParameters(t *testing.T) {
	builder := &Builder{NumParticles: 10, TargetPartitionSize: 0, Strategy: BlockPartition}
	if _, err := builder.BuildLayout(); err == nil {
		t.Fatal("expected an error for a non-positive target partition size")
	}
	builder = &Builder{NumParticles: -1, TargetPartitionSize: 8, Strategy: BlockPartition}
	if _, err := builder.BuildLayout(); err == nil {
		t.Fatal("expected an error for a negative particle count")
	}
}
