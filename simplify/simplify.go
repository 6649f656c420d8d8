// Package simplify implements the Pair-Contraction Simplifier: quadric
// error metric pair seeding, the minimum-cost target solver, the
// incidence-maintaining contraction loop, and (optionally) the
// vertex-split recorder that makes the result a progressive mesh
// (§4.D–§4.H of the spec).
package simplify

import (
	"context"
	"errors"
	"log/slog"

	"github.com/smiley22/MeshSimplify/mesh"
	"github.com/smiley22/MeshSimplify/quadric"
	"github.com/smiley22/MeshSimplify/vecmath"
)

// ErrIncompatibleOptions is returned when RecordSplits is requested
// against a mesh that already carries split history (§7 IncompatibleOptions).
var ErrIncompatibleOptions = errors.New("simplify: mesh already carries splits")

// ErrInvalidTarget is returned for a non-positive target face count.
var ErrInvalidTarget = errors.New("simplify: target face count must be >= 1")

// Options configures a single Simplify call (§6 Core API surface).
type Options struct {
	// TargetFaces is the face count the loop tries to reach or drop below.
	TargetFaces int
	// RecordSplits enables the vertex-split recorder (§4.H).
	RecordSplits bool
	// Strict makes a degenerate face fatal instead of a dropped warning (§7).
	Strict bool
	// DistanceThreshold, if > 0, seeds additional pairs between any two
	// live vertices closer than this distance (§4.D).
	DistanceThreshold float64
	// Logger receives Info/Warn diagnostics; a nil Logger disables logging.
	Logger *slog.Logger
}

func (o Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.New(discardHandler{})
}

// state holds everything the contraction loop mutates: live vertex
// positions and quadrics in the original stable index space, the
// incidence and pairs-of-vertex maps, the priority queue, and (if
// requested) the in-progress split recording (§3 data model).
type state struct {
	pos           []vecmath.Vec
	alive         []bool
	quadrics      []vecmath.Quadric
	faces         []mesh.Triangle
	faceAlive     []bool
	liveFaces     int
	incidence     map[int]map[int]struct{}
	pairsOfVertex map[int]map[pairKey]struct{}
	pairs         map[pairKey]*pairItem
	queue         *pairQueue

	recordSplits bool
	splits       []recordedSplit

	log *slog.Logger
}

// recordedSplit is the internal, unresolved form of a §3 VertexSplit:
// s and folded are original (pre-compaction) vertex indices, and faces
// carry mesh.Sentinel in the slot that folded used to occupy.
type recordedSplit struct {
	s, folded int
	sPos      vecmath.Vec
	tPos      vecmath.Vec
	faces     []mesh.Triangle
}

// Simplify reduces m to at most Options.TargetFaces faces by repeated
// minimum-cost pair contraction (§4.G). The input mesh is never mutated;
// a fresh mesh is returned. If Options.RecordSplits is set, the returned
// mesh's Splits field lets expand.Expand regenerate m (§4.H, §8 P5).
func Simplify(ctx context.Context, m *mesh.Mesh, opts Options) (*mesh.Mesh, error) {
	if opts.TargetFaces < 1 {
		return nil, ErrInvalidTarget
	}
	if opts.RecordSplits && len(m.Splits) > 0 {
		return nil, ErrIncompatibleOptions
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}

	log := opts.logger()

	if len(m.Faces) <= opts.TargetFaces {
		log.Info("simplify: already at or below target", "faces", len(m.Faces), "target", opts.TargetFaces)
		return m.Clone(), nil
	}

	qs, survivingFaces, err := quadric.Vertices(m, opts.Strict, func(faceIndex int, t mesh.Triangle) {
		log.Warn("simplify: dropping degenerate face", "face", faceIndex, "indices", t)
	})
	if err != nil {
		return nil, err
	}

	s := &state{
		pos:           append([]vecmath.Vec(nil), m.Vertices...),
		alive:         make([]bool, len(m.Vertices)),
		quadrics:      qs,
		faces:         survivingFaces,
		faceAlive:     make([]bool, len(survivingFaces)),
		liveFaces:     len(survivingFaces),
		incidence:     make(map[int]map[int]struct{}),
		pairsOfVertex: make(map[int]map[pairKey]struct{}),
		pairs:         make(map[pairKey]*pairItem),
		queue:         newPairQueue(),
		recordSplits:  opts.RecordSplits,
		log:           log,
	}
	for i := range s.alive {
		s.alive[i] = true
	}
	for i := range s.faceAlive {
		s.faceAlive[i] = true
	}
	for v := range s.pos {
		s.pairsOfVertex[v] = make(map[pairKey]struct{})
	}

	s.seedEdgePairs()
	s.seedDistancePairs(opts.DistanceThreshold)

	log.Info("simplify: seeded", "vertices", len(s.pos), "faces", s.liveFaces, "pairs", len(s.pairs))

	target := opts.TargetFaces
	for s.liveFaces > target && s.queue.len() > 0 {
		select {
		case <-ctx.Done():
			log.Warn("simplify: cancelled", "faces", s.liveFaces)
			return nil, ctx.Err()
		default:
		}

		item := s.queue.popMin()
		if s.recordSplits {
			s.recordSplit(item)
		}
		s.contract(item.v1, item.v2, item.target)
	}

	if s.queue.len() == 0 && s.liveFaces > target {
		log.Warn("simplify: queue exhausted before reaching target", "faces", s.liveFaces, "target", target)
	}

	return s.finish(), nil
}

// contract performs §4.G steps 3-9: move v1 to target, merge quadrics,
// rewire v2's incident faces onto v1 (dropping ones that degenerate),
// retire v2, and recompute every pair now touching v1.
func (s *state) contract(v1, v2 int, target vecmath.Vec) {
	s.pos[v1] = target
	s.quadrics[v1] = s.quadrics[v1].Add(s.quadrics[v2])

	for fi := range s.incidence[v2] {
		if _, dup := s.incidence[v1][fi]; dup {
			s.faceAlive[fi] = false
			s.liveFaces--
			delete(s.incidence[v1], fi)
			for _, w := range s.faceAt(fi) {
				if w != v1 && w != v2 {
					delete(s.incidence[w], fi)
				}
			}
		} else {
			s.faces[fi] = s.faceAt(fi).Replace(v2, v1)
			s.addIncidence(v1, fi)
		}
	}
	delete(s.incidence, v2)
	s.alive[v2] = false

	keys := make([]pairKey, 0, len(s.pairsOfVertex[v1])+len(s.pairsOfVertex[v2]))
	for k := range s.pairsOfVertex[v1] {
		keys = append(keys, k)
	}
	for k := range s.pairsOfVertex[v2] {
		keys = append(keys, k)
	}
	delete(s.pairsOfVertex, v2)
	s.pairsOfVertex[v1] = make(map[pairKey]struct{}, len(keys))

	for _, key := range keys {
		if item, ok := s.pairs[key]; ok {
			if s.queue.contains(item) {
				s.queue.remove(item)
			}
			delete(s.pairs, key)
		}

		// other is the third vertex of this pair, if any: the endpoint
		// that is neither v1 nor v2. key is always stale once v2 is
		// retired, so its entry in other's PairsOfVertex set must be
		// dropped regardless of what (if anything) replaces it (I3/I7).
		other := -1
		if key.v1 != v1 && key.v1 != v2 {
			other = key.v1
		} else if key.v2 != v1 && key.v2 != v2 {
			other = key.v2
		}
		if other != -1 {
			delete(s.pairsOfVertex[other], key)
		}

		a, b := key.v1, key.v2
		if a == v2 {
			a = v1
		}
		if b == v2 {
			b = v1
		}
		if a == b {
			continue // self-loop: discarded (§4.G step 9)
		}
		nk := makeKey(a, b)
		if _, exists := s.pairs[nk]; exists {
			if other != -1 {
				s.pairsOfVertex[other][nk] = struct{}{}
			}
			continue
		}
		tgt, cost := solveCost(s.quadrics[nk.v1], s.quadrics[nk.v2], s.pos[nk.v1], s.pos[nk.v2])
		ni := &pairItem{v1: nk.v1, v2: nk.v2, target: tgt, cost: cost, index: -1}
		s.pairs[nk] = ni
		s.pairsOfVertex[nk.v1][nk] = struct{}{}
		s.pairsOfVertex[nk.v2][nk] = struct{}{}
		s.queue.insert(ni)
	}
}

// recordSplit pushes a split record before contract() mutates state
// (§4.H): it needs v1's pre-move position and v2's incident faces.
func (s *state) recordSplit(item *pairItem) {
	rs := recordedSplit{
		s:      item.v1,
		folded: item.v2,
		sPos:   s.pos[item.v1],
		tPos:   s.pos[item.v2],
	}
	for fi := range s.incidence[item.v2] {
		f := s.faceAt(fi)
		var rf mesh.Triangle
		for i, idx := range f {
			if idx == item.v2 {
				rf[i] = mesh.Sentinel
			} else {
				rf[i] = idx
			}
		}
		rs.faces = append(rs.faces, rf)
	}
	s.splits = append(s.splits, rs)
}

// finish compacts the working state into an output mesh: live vertices
// are renumbered contiguously, live faces are translated through that
// renumbering, and (if recording) every split's indices are resolved —
// each folded vertex resolves to the index it will receive when
// expand.Expand replays splits front-to-back starting from the
// compacted vertex count (§9 "resolved at serialization time").
func (s *state) finish() *mesh.Mesh {
	resolved := make([]int, len(s.pos))
	next := 0
	for v, alive := range s.alive {
		if alive {
			resolved[v] = next
			next++
		}
	}
	nFinal := next

	n := len(s.splits)
	for i, sp := range s.splits {
		resolved[sp.folded] = nFinal + (n - 1 - i)
	}

	out := mesh.New()
	out.Vertices = make([]vecmath.Vec, nFinal)
	for v, alive := range s.alive {
		if alive {
			out.Vertices[resolved[v]] = s.pos[v]
		}
	}
	for fi, alive := range s.faceAlive {
		if !alive {
			continue
		}
		f := s.faces[fi]
		out.Faces = append(out.Faces, mesh.Triangle{resolved[f[0]], resolved[f[1]], resolved[f[2]]})
	}

	if s.recordSplits {
		out.Splits = make([]mesh.VertexSplit, n)
		for i, sp := range s.splits {
			p := n - 1 - i
			rs := mesh.VertexSplit{
				S:     resolved[sp.s],
				SPos:  sp.sPos,
				TPos:  sp.tPos,
				Faces: make([]mesh.Triangle, len(sp.faces)),
			}
			for j, f := range sp.faces {
				var rf mesh.Triangle
				for k, idx := range f {
					if idx == mesh.Sentinel {
						rf[k] = resolved[sp.folded]
					} else {
						rf[k] = resolved[idx]
					}
				}
				rs.Faces[j] = rf
			}
			out.Splits[p] = rs
		}
	}

	s.log.Info("simplify: done", "faces", len(out.Faces), "vertices", len(out.Vertices), "splits", len(out.Splits))
	return out
}

// discardHandler is a no-op slog.Handler used when Options.Logger is nil.
type discardHandler struct{}

func (discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (discardHandler) WithAttrs([]slog.Attr) slog.Handler        { return discardHandler{} }
func (discardHandler) WithGroup(string) slog.Handler             { return discardHandler{} }
