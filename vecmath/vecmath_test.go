package vecmath

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlaneQuadricZeroOnOwnPlane(t *testing.T) {
	p0 := New(0, 0, 0)
	p1 := New(1, 0, 0)
	p2 := New(0, 1, 0)

	n := Cross(Sub(p1, p0), Sub(p2, p0))
	length := Norm(n)
	require.Greater(t, length, 0.0)
	unit := Scale(1/length, n)
	d := -Dot(unit, p0)

	q := PlaneQuadric(unit.X(), unit.Y(), unit.Z(), d)

	assert.InDelta(t, 0, q.ErrorAt(p0), 1e-9)
	assert.InDelta(t, 0, q.ErrorAt(p1), 1e-9)
	assert.InDelta(t, 0, q.ErrorAt(p2), 1e-9)

	off := New(0, 0, 1)
	assert.Greater(t, q.ErrorAt(off), 0.0)
}

func TestQuadricAddIsErrorSum(t *testing.T) {
	q1 := PlaneQuadric(1, 0, 0, 0)
	q2 := PlaneQuadric(0, 1, 0, 0)
	sum := q1.Add(q2)

	p := New(3, 4, 5)
	assert.InDelta(t, q1.ErrorAt(p)+q2.ErrorAt(p), sum.ErrorAt(p), 1e-9)
}

func TestSolveRecoversPlaneIntersection(t *testing.T) {
	qx := PlaneQuadric(1, 0, 0, -1) // x=1
	qy := PlaneQuadric(0, 1, 0, -2) // y=2
	qz := PlaneQuadric(0, 0, 1, -3) // z=3
	combined := qx.Add(qy).Add(qz)

	target, cost, err := combined.Solve()
	require.NoError(t, err)
	assert.InDelta(t, 1, target.X(), 1e-9)
	assert.InDelta(t, 2, target.Y(), 1e-9)
	assert.InDelta(t, 3, target.Z(), 1e-9)
	assert.InDelta(t, 0, cost, 1e-9)
}

func TestSolveSingularReportsErrSingular(t *testing.T) {
	// A single plane quadric alone always has a singular derivative
	// matrix: only one constraint on three unknowns.
	q := PlaneQuadric(1, 0, 0, -1)
	_, _, err := q.Solve()
	require.ErrorIs(t, err, ErrSingular)
}

func TestBestCandidatePicksMinimumOfThree(t *testing.T) {
	q := PlaneQuadric(1, 0, 0, 0) // error is x^2
	u := New(5, 0, 0)
	v := New(-1, 0, 0)

	best, cost := q.BestCandidate(u, v)
	assert.Equal(t, v, best)
	assert.InDelta(t, 1, cost, 1e-9)
}

func TestMidpointAndDistance(t *testing.T) {
	a := New(0, 0, 0)
	b := New(2, 0, 0)
	assert.Equal(t, New(1, 0, 0), Midpoint(a, b))
	assert.InDelta(t, 2, Distance(a, b), 1e-9)
}
