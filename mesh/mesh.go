// Package mesh defines the shared data model for the simplifier and the
// expander: vertices, triangles, and the vertex-split records that let a
// simplified mesh be replayed back to a higher resolution (§3 of the spec).
package mesh

import (
	"fmt"

	"github.com/smiley22/MeshSimplify/vecmath"
)

// Sentinel marks "the vertex being re-materialized" inside a recorded
// split face, before it has been resolved to a concrete index (§3
// VertexSplit record, §9).
const Sentinel = -1

// Triangle is an ordered triple of vertex indices. Orientation carries
// the front-face normal and is preserved throughout simplification.
type Triangle [3]int

// Has reports whether v appears in the triangle.
func (t Triangle) Has(v int) bool { return t[0] == v || t[1] == v || t[2] == v }

// Distinct reports whether all three indices differ (§8 P1).
func (t Triangle) Distinct() bool { return t[0] != t[1] && t[1] != t[2] && t[0] != t[2] }

// Replace returns a copy of t with every occurrence of old replaced by n.
func (t Triangle) Replace(old, n int) Triangle {
	for i, idx := range t {
		if idx == old {
			t[i] = n
		}
	}
	return t
}

// VertexSplit is the reversible inverse of a pair-contraction (§3).
// S is the surviving vertex, SPos/TPos are its position and the folded
// vertex's position at the moment of contraction, and Faces are the
// triangles that were incident to the folded vertex, with its slot
// marked Sentinel until compaction resolves it to the vertex index the
// expander will allocate when it replays this record.
type VertexSplit struct {
	S     int
	SPos  vecmath.Vec
	TPos  vecmath.Vec
	Faces []Triangle
}

// Mesh is a typed container of vertices, faces and an (possibly empty)
// progressive-mesh split history (§3 / §4.B).
type Mesh struct {
	Vertices []vecmath.Vec
	Faces    []Triangle
	Splits   []VertexSplit
}

// New returns an empty mesh.
func New() *Mesh {
	return &Mesh{
		Vertices: make([]vecmath.Vec, 0),
		Faces:    make([]Triangle, 0),
	}
}

// Clone returns a deep copy, so callers (notably Simplify) never mutate
// the mesh the caller handed them (§7: "the core never partially commits").
func (m *Mesh) Clone() *Mesh {
	out := &Mesh{
		Vertices: append([]vecmath.Vec(nil), m.Vertices...),
		Faces:    append([]Triangle(nil), m.Faces...),
	}
	if len(m.Splits) > 0 {
		out.Splits = make([]VertexSplit, len(m.Splits))
		for i, s := range m.Splits {
			out.Splits[i] = VertexSplit{
				S: s.S, SPos: s.SPos, TPos: s.TPos,
				Faces: append([]Triangle(nil), s.Faces...),
			}
		}
	}
	return out
}

// AddVertex appends a vertex and returns its index.
func (m *Mesh) AddVertex(v vecmath.Vec) int {
	m.Vertices = append(m.Vertices, v)
	return len(m.Vertices) - 1
}

// AddFace appends a triangle.
func (m *Mesh) AddFace(t Triangle) {
	m.Faces = append(m.Faces, t)
}

// Validate checks the structural invariants of §3/§8 (I1, P1) that must
// hold for any mesh handed across a package boundary.
func (m *Mesh) Validate() error {
	n := len(m.Vertices)
	for i, f := range m.Faces {
		if !f.Distinct() {
			return fmt.Errorf("mesh: face %d is degenerate (repeated index): %v", i, f)
		}
		for _, idx := range f {
			if idx < 0 || idx >= n {
				return fmt.Errorf("mesh: face %d references out-of-range vertex %d (have %d vertices)", i, idx, n)
			}
		}
	}
	return nil
}
