// Package vecmath adapts the gonum numerics stack to the 3-vector and
// 4x4 symmetric-quadric arithmetic the simplifier needs: point/vector
// ops from gonum's spatial/r3 package, and 4x4 solves via gonum/mat.
package vecmath

import (
	"errors"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

// Vec is a 3D point or vector in double precision.
type Vec = r3.Vec

// New builds a Vec from components.
func New(x, y, z float64) Vec { return Vec{x, y, z} }

// Add returns a+b.
func Add(a, b Vec) Vec { return r3.Add(a, b) }

// Sub returns a-b.
func Sub(a, b Vec) Vec { return r3.Sub(a, b) }

// Scale returns v scaled by f.
func Scale(f float64, v Vec) Vec { return r3.Scale(f, v) }

// Cross returns a x b.
func Cross(a, b Vec) Vec { return r3.Cross(a, b) }

// Dot returns a . b.
func Dot(a, b Vec) float64 { return r3.Dot(a, b) }

// Norm returns the Euclidean length of v.
func Norm(v Vec) float64 { return r3.Norm(v) }

// Distance returns the Euclidean distance between a and b.
func Distance(a, b Vec) float64 { return r3.Norm(r3.Sub(a, b)) }

// Midpoint returns the point halfway between a and b.
func Midpoint(a, b Vec) Vec { return r3.Scale(0.5, r3.Add(a, b)) }

// ErrSingular is returned by Quadric.Solve when the quadric's derivative
// matrix cannot be inverted (§4.E / §7 SingularSolve).
var ErrSingular = errors.New("vecmath: singular quadric matrix")

// Quadric is the symmetric 4x4 error matrix of Garland & Heckbert,
// stored as its 10 unique entries (§3 Quadric).
type Quadric struct {
	a11, a12, a13, a14 float64
	a22, a23, a24      float64
	a33, a34           float64
	a44                float64
}

// PlaneQuadric builds the rank-1 quadric Kp = [a b c d]^T [a b c d] for
// a plane ax+by+cz+d=0 with (a,b,c) unit length (§4.C).
func PlaneQuadric(a, b, c, d float64) Quadric {
	return Quadric{
		a11: a * a, a12: a * b, a13: a * c, a14: a * d,
		a22: b * b, a23: b * c, a24: b * d,
		a33: c * c, a34: c * d,
		a44: d * d,
	}
}

// Add returns the component-wise sum of two quadrics.
func (q Quadric) Add(o Quadric) Quadric {
	return Quadric{
		a11: q.a11 + o.a11, a12: q.a12 + o.a12, a13: q.a13 + o.a13, a14: q.a14 + o.a14,
		a22: q.a22 + o.a22, a23: q.a23 + o.a23, a24: q.a24 + o.a24,
		a33: q.a33 + o.a33, a34: q.a34 + o.a34,
		a44: q.a44 + o.a44,
	}
}

// ErrorAt evaluates the quadric's quadratic form at a homogeneous point
// (v,1): v^T Q v (§3 I4).
func (q Quadric) ErrorAt(v Vec) float64 {
	x, y, z := v.X(), v.Y(), v.Z()
	return q.a11*x*x + 2*q.a12*x*y + 2*q.a13*x*z + 2*q.a14*x +
		q.a22*y*y + 2*q.a23*y*z + 2*q.a24*y +
		q.a33*z*z + 2*q.a34*z +
		q.a44
}

// dense returns the full symmetric 4x4 matrix backing q.
func (q Quadric) dense() *mat.Dense {
	return mat.NewDense(4, 4, []float64{
		q.a11, q.a12, q.a13, q.a14,
		q.a12, q.a22, q.a23, q.a24,
		q.a13, q.a23, q.a33, q.a34,
		q.a14, q.a24, q.a34, q.a44,
	})
}

// Solve computes the optimal contraction target and its error for this
// (already-summed) quadric, per §4.E: replace the last row of Q with
// (0,0,0,1) and invert; the target is the last column of the inverse.
// Returns ErrSingular if the derivative matrix is not invertible — the
// caller is expected to fall back to the three-candidate minimum.
func (q Quadric) Solve() (target Vec, cost float64, err error) {
	m := q.dense()
	m.SetRow(3, []float64{0, 0, 0, 1})

	var inv mat.Dense
	if err := inv.Inverse(m); err != nil {
		return Vec{}, 0, ErrSingular
	}

	target = Vec{inv.At(0, 3), inv.At(1, 3), inv.At(2, 3)}
	return target, q.ErrorAt(target), nil
}

// BestCandidate picks the minimum-cost point among u, v and their
// midpoint, for use when Solve reports a singular matrix (§4.E).
func (q Quadric) BestCandidate(u, v Vec) (Vec, float64) {
	mid := Midpoint(u, v)
	best, bestCost := u, q.ErrorAt(u)
	if c := q.ErrorAt(v); c < bestCost {
		best, bestCost = v, c
	}
	if c := q.ErrorAt(mid); c < bestCost {
		best, bestCost = mid, c
	}
	return best, bestCost
}
