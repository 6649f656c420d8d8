// Package expand implements the Progressive-Mesh Expander: replaying
// vertex-split records to grow a simplified mesh back toward a higher
// resolution (§4.I of the spec).
package expand

import (
	"context"
	"log/slog"

	"github.com/smiley22/MeshSimplify/mesh"
)

// Options configures a single Expand call (§6 Core API surface).
type Options struct {
	// TargetFaces is the face count the replay loop tries to reach.
	TargetFaces int
	// Logger receives Info/Warn diagnostics; a nil Logger disables logging.
	Logger *slog.Logger
}

func (o Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.New(discardHandler{})
}

// Expand replays m's recorded splits, front to back, until Faces
// reaches Options.TargetFaces or the split queue is exhausted (§4.I,
// §8 P8). The input mesh is not mutated; a grown copy is returned.
func Expand(ctx context.Context, m *mesh.Mesh, opts Options) (*mesh.Mesh, error) {
	log := opts.logger()
	out := m.Clone()

	incidence := make(map[int]map[int]struct{}, len(out.Vertices))
	for fi, f := range out.Faces {
		for _, v := range f {
			addIncidence(incidence, v, fi)
		}
	}

	cursor := 0
	for len(out.Faces) < opts.TargetFaces && cursor < len(out.Splits) {
		select {
		case <-ctx.Done():
			log.Warn("expand: cancelled", "faces", len(out.Faces))
			return nil, ctx.Err()
		default:
		}

		split := out.Splits[cursor]
		cursor++
		applySplit(out, incidence, split)
	}

	if cursor == len(out.Splits) && len(out.Faces) < opts.TargetFaces {
		log.Warn("expand: split queue exhausted before reaching target", "faces", len(out.Faces), "target", opts.TargetFaces)
	}

	out.Splits = out.Splits[cursor:]
	log.Info("expand: done", "faces", len(out.Faces), "vertices", len(out.Vertices), "splits_remaining", len(out.Splits))
	return out, nil
}

// applySplit performs §4.I steps 1-4 for a single, already-resolved
// split record: restore s's pre-contraction position, materialize the
// folded vertex t at the next vertex index, reclaim any currently-live
// face that used to touch t (identified by the vertex set it would have
// had before t was collapsed into s), and recreate any recorded face
// that no longer exists at all.
func applySplit(out *mesh.Mesh, incidence map[int]map[int]struct{}, split mesh.VertexSplit) {
	s := split.S
	out.Vertices[s] = split.SPos

	t := len(out.Vertices)
	out.Vertices = append(out.Vertices, split.TPos)
	incidence[t] = make(map[int]struct{})

	candidates := make(map[[3]int]int, len(incidence[s]))
	for fi := range incidence[s] {
		candidates[sortedTriple(out.Faces[fi])] = fi
	}

	for _, rf := range split.Faces {
		preKey := sortedTriple(replaceValue(rf, t, s))
		if fi, ok := candidates[preKey]; ok {
			delete(candidates, preKey)
			f := out.Faces[fi]
			for slot, idx := range f {
				if idx == s && rf.Has(t) {
					f[slot] = t
					break
				}
			}
			out.Faces[fi] = f
			delete(incidence[s], fi)
			addIncidence(incidence, t, fi)
			addIncidence(incidence, f[0], fi)
			addIncidence(incidence, f[1], fi)
			addIncidence(incidence, f[2], fi)
			continue
		}

		fi := len(out.Faces)
		out.Faces = append(out.Faces, rf)
		addIncidence(incidence, rf[0], fi)
		addIncidence(incidence, rf[1], fi)
		addIncidence(incidence, rf[2], fi)
	}
}

func addIncidence(incidence map[int]map[int]struct{}, v, fi int) {
	set, ok := incidence[v]
	if !ok {
		set = make(map[int]struct{})
		incidence[v] = set
	}
	set[fi] = struct{}{}
}

func sortedTriple(t mesh.Triangle) [3]int {
	a := [3]int{t[0], t[1], t[2]}
	if a[0] > a[1] {
		a[0], a[1] = a[1], a[0]
	}
	if a[1] > a[2] {
		a[1], a[2] = a[2], a[1]
	}
	if a[0] > a[1] {
		a[0], a[1] = a[1], a[0]
	}
	return a
}

func replaceValue(t mesh.Triangle, old, n int) mesh.Triangle {
	for i, v := range t {
		if v == old {
			t[i] = n
		}
	}
	return t
}

// discardHandler is a no-op slog.Handler used when Options.Logger is nil.
type discardHandler struct{}

func (discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (discardHandler) WithAttrs([]slog.Attr) slog.Handler        { return discardHandler{} }
func (discardHandler) WithGroup(string) slog.Handler             { return discardHandler{} }
