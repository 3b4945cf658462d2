package dem

import "gonum.org/v1/gonum/spatial/r3"

// ContactKey identifies one particle-boundary pair. BoundaryID is the flat
// wall or floating solid identity; ParticleID is the particle's local index.
type ContactKey struct {
	BoundaryID int
	ParticleID int
}

// ContactInfo is the persistent state of one active particle-boundary pair.
// TangentialOverlap accumulates over the lifetime of the contact; it is
// zeroed the instant NormalOverlap drops to <= 0 and may be clamped by the
// force kernel when gross sliding occurs.
type ContactInfo struct {
	Particle Particle

	NormalOverlap     float64 // penetration depth, > 0 while in contact
	TangentialOverlap r3.Vec  // accumulated tangential displacement

	NormalRelativeVelocity     float64
	TangentialRelativeVelocity r3.Vec

	// Boundary geometry snapshot. Normal points outward from the boundary
	// toward the particle. For floating solids these fields are refreshed
	// every step since the boundary moves.
	Normal          r3.Vec
	PointOnBoundary r3.Vec
	BoundaryID      int
}

// ContactStore indexes the active contact records by (boundary, particle)
// identity. Record creation and removal are driven by an external
// broad-phase search and pair-maintenance routine; the store itself only
// owns the map.
type ContactStore struct {
	pairs map[ContactKey]*ContactInfo
}

// NewContactStore returns an empty store.
func NewContactStore() *ContactStore {
	return &ContactStore{pairs: make(map[ContactKey]*ContactInfo)}
}

// Put registers a contact record under its (boundary, particle) key and
// returns it. An existing record under the same key is replaced.
func (s *ContactStore) Put(info *ContactInfo) *ContactInfo {
	key := ContactKey{BoundaryID: info.BoundaryID, ParticleID: info.Particle.LocalIndex()}
	s.pairs[key] = info
	return info
}

// Get looks up the record for one pair.
func (s *ContactStore) Get(boundaryID, particleID int) (*ContactInfo, bool) {
	info, ok := s.pairs[ContactKey{BoundaryID: boundaryID, ParticleID: particleID}]
	return info, ok
}

// Remove drops one pair from the store. Called by the external pair
// maintenance once separation has been confirmed for its configured
// duration.
func (s *ContactStore) Remove(boundaryID, particleID int) {
	delete(s.pairs, ContactKey{BoundaryID: boundaryID, ParticleID: particleID})
}

// Len returns the number of active records.
func (s *ContactStore) Len() int {
	return len(s.pairs)
}

// Range calls fn for every active record.
func (s *ContactStore) Range(fn func(info *ContactInfo)) {
	for _, info := range s.pairs {
		fn(info)
	}
}
