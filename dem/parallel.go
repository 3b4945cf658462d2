package dem

import (
	"fmt"
	"sync"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/DEMKernel/partitions"
)

// CalculateWallContactForceParallel runs the flat-wall pass with one worker
// per partition. Every contact record of a particle lands in the partition
// owning that particle's index, so the per-particle force/torque writes are
// disjoint across workers and no lock is taken.
//
// Per-boundary instrumentation sums across particles of all partitions and
// is only available from the sequential pass.
func (f *JKRForce) CalculateWallContactForceParallel(store *ContactStore, layout *partitions.Layout,
	dt float64, force, torque []r3.Vec) error {

	if f.TrackBoundaryForces {
		return fmt.Errorf("boundary force tracking requires the sequential wall pass")
	}

	buckets := make([][]*ContactInfo, layout.NumPartitions)
	var rangeErr error
	store.Range(func(info *ContactInfo) {
		idx := info.Particle.LocalIndex()
		if idx < 0 || idx >= layout.TotalParticles {
			rangeErr = fmt.Errorf("particle index %d outside partition layout of %d particles",
				idx, layout.TotalParticles)
			return
		}
		owner := layout.Owner(idx)
		buckets[owner] = append(buckets[owner], info)
	})
	if rangeErr != nil {
		return rangeErr
	}

	var wg sync.WaitGroup
	for _, records := range buckets {
		if len(records) == 0 {
			continue
		}
		wg.Add(1)
		go func(records []*ContactInfo) {
			defer wg.Done()
			for _, info := range records {
				f.evaluateWallPair(info, dt, force, torque)
			}
		}(records)
	}
	wg.Wait()
	return nil
}
