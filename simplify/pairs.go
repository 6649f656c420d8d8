package simplify

import (
	"github.com/smiley22/MeshSimplify/mesh"
	"github.com/smiley22/MeshSimplify/vecmath"
)

// solveCost is the cost solver of §4.E: given the combined quadric of a
// candidate pair, compute the optimal contraction target and its error,
// falling back to the three-candidate minimum (u, v, midpoint) when the
// quadric's derivative matrix is singular (§7 SingularSolve — recovered
// locally, never surfaced).
func solveCost(qu, qv vecmath.Quadric, u, v vecmath.Vec) (target vecmath.Vec, cost float64) {
	combined := qu.Add(qv)
	if t, c, err := combined.Solve(); err == nil {
		return t, c
	}
	return combined.BestCandidate(u, v)
}

// seedEdgePairs enumerates the three unordered vertex pairs of every
// surviving face, deduplicated by vertex-index set, and populates the
// incidence map as it walks the face list (§4.D edge pairs).
func (s *state) seedEdgePairs() {
	for fi, f := range s.faces {
		for i := 0; i < 3; i++ {
			a, b := f[i], f[(i+1)%3]
			s.addIncidence(a, fi)
			s.ensurePair(a, b)
		}
	}
}

// seedDistancePairs adds every unordered pair of live vertices whose
// Euclidean distance is strictly below threshold (§4.D distance pairs).
// O(|V|^2); only run when the caller opted in via a positive threshold.
func (s *state) seedDistancePairs(threshold float64) {
	if threshold <= 0 {
		return
	}
	for a := 0; a < len(s.pos); a++ {
		if !s.alive[a] {
			continue
		}
		for b := a + 1; b < len(s.pos); b++ {
			if !s.alive[b] {
				continue
			}
			if vecmath.Distance(s.pos[a], s.pos[b]) < threshold {
				s.ensurePair(a, b)
			}
		}
	}
}

// ensurePair registers the pair {a,b} (if not already present), computes
// its cost via the solver, tracks it in PairsOfVertex for both endpoints,
// and inserts it into the priority queue.
func (s *state) ensurePair(a, b int) {
	key := makeKey(a, b)
	if _, exists := s.pairs[key]; exists {
		return
	}
	target, cost := solveCost(s.quadrics[key.v1], s.quadrics[key.v2], s.pos[key.v1], s.pos[key.v2])
	item := &pairItem{v1: key.v1, v2: key.v2, target: target, cost: cost, index: -1}
	s.pairs[key] = item
	s.pairsOfVertex[key.v1][key] = struct{}{}
	s.pairsOfVertex[key.v2][key] = struct{}{}
	s.queue.insert(item)
}

// addIncidence records that vertex v touches face fi (§3 IncidenceMap).
func (s *state) addIncidence(v, fi int) {
	set, ok := s.incidence[v]
	if !ok {
		set = make(map[int]struct{})
		s.incidence[v] = set
	}
	set[fi] = struct{}{}
}

// faceAt returns the current (possibly already rewired) triangle at fi.
func (s *state) faceAt(fi int) mesh.Triangle {
	return s.faces[fi]
}
