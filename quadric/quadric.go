// Package quadric computes the per-face plane quadrics and per-vertex
// error quadrics that drive the simplifier's cost model (§4.C).
package quadric

import (
	"errors"
	"fmt"

	"github.com/smiley22/MeshSimplify/mesh"
	"github.com/smiley22/MeshSimplify/vecmath"
	"gonum.org/v1/gonum/spatial/r3"
)

// ErrDegenerateFace is returned in strict mode when a face's three
// vertices are collinear (§4.C, §7 DegenerateFace).
var ErrDegenerateFace = errors.New("quadric: degenerate face")

// degenerateTolerance bounds how close to collinear a triangle's
// vertices may be before its cross-product normal is treated as zero.
const degenerateTolerance = 1e-10

// Face computes the plane quadric Kp for a single triangle, via the
// unit normal n=(a,b,c) of (p1-p0)x(p2-p0) and d=-n.p0. ok is false if
// the triangle is degenerate (§4.C).
func Face(p0, p1, p2 vecmath.Vec) (q vecmath.Quadric, ok bool) {
	tri := r3.Triangle{p0, p1, p2}
	n := tri.Normal()
	length := vecmath.Norm(n)
	if length < degenerateTolerance {
		return vecmath.Quadric{}, false
	}
	unit := vecmath.Scale(1/length, n)
	a, b, c := unit.X(), unit.Y(), unit.Z()
	d := -vecmath.Dot(unit, p0)
	return vecmath.PlaneQuadric(a, b, c, d), true
}

// Vertices computes, for every vertex of m, the sum of the plane
// quadrics of its incident faces (§4.C: Q[v] = ΣKp over faces incident
// to v). When strict is true a degenerate face is a fatal error; when
// false it is dropped (reported via warnFn, which may be nil) before it
// can contribute to any vertex's quadric, and the surviving face list
// is returned alongside the quadrics so later pipeline stages (pair
// seeding) only ever see post-drop faces (§9).
func Vertices(m *mesh.Mesh, strict bool, warnFn func(faceIndex int, t mesh.Triangle)) ([]vecmath.Quadric, []mesh.Triangle, error) {
	qs := make([]vecmath.Quadric, len(m.Vertices))
	faces := make([]mesh.Triangle, 0, len(m.Faces))

	for i, f := range m.Faces {
		p0, p1, p2 := m.Vertices[f[0]], m.Vertices[f[1]], m.Vertices[f[2]]
		q, ok := Face(p0, p1, p2)
		if !ok {
			if strict {
				return nil, nil, fmt.Errorf("%w: face %d is collinear (%v, %v, %v)", ErrDegenerateFace, i, p0, p1, p2)
			}
			if warnFn != nil {
				warnFn(i, f)
			}
			continue
		}
		faces = append(faces, f)
		qs[f[0]] = qs[f[0]].Add(q)
		qs[f[1]] = qs[f[1]].Add(q)
		qs[f[2]] = qs[f[2]].Add(q)
	}

	return qs, faces, nil
}
