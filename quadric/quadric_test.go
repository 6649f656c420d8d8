package quadric

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smiley22/MeshSimplify/mesh"
	"github.com/smiley22/MeshSimplify/vecmath"
)

func TestFaceReturnsNotOkForCollinearTriangle(t *testing.T) {
	p0 := vecmath.New(0, 0, 0)
	p1 := vecmath.New(1, 0, 0)
	p2 := vecmath.New(2, 0, 0) // collinear with p0,p1
	_, ok := Face(p0, p1, p2)
	assert.False(t, ok)
}

func TestFaceErrorZeroOnItsOwnPlane(t *testing.T) {
	p0 := vecmath.New(0, 0, 0)
	p1 := vecmath.New(1, 0, 0)
	p2 := vecmath.New(0, 1, 0)
	q, ok := Face(p0, p1, p2)
	require.True(t, ok)
	assert.InDelta(t, 0, q.ErrorAt(p0), 1e-9)
	assert.InDelta(t, 0, q.ErrorAt(p1), 1e-9)
	assert.InDelta(t, 0, q.ErrorAt(p2), 1e-9)
}

func singleTriangleMesh() *mesh.Mesh {
	m := mesh.New()
	m.AddVertex(vecmath.New(0, 0, 0))
	m.AddVertex(vecmath.New(1, 0, 0))
	m.AddVertex(vecmath.New(0, 1, 0))
	m.AddFace(mesh.Triangle{0, 1, 2})
	return m
}

func TestVerticesSumsIncidentFaceQuadrics(t *testing.T) {
	m := singleTriangleMesh()
	qs, faces, err := Vertices(m, false, nil)
	require.NoError(t, err)
	require.Len(t, faces, 1)

	for _, v := range m.Vertices {
		assert.InDelta(t, 0, qs[0].ErrorAt(v), 1e-9)
	}
}

func TestVerticesStrictModeFailsOnDegenerateFace(t *testing.T) {
	m := mesh.New()
	m.AddVertex(vecmath.New(0, 0, 0))
	m.AddVertex(vecmath.New(1, 0, 0))
	m.AddVertex(vecmath.New(2, 0, 0))
	m.AddFace(mesh.Triangle{0, 1, 2})

	_, _, err := Vertices(m, true, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDegenerateFace))
}

func TestVerticesLenientModeDropsAndWarns(t *testing.T) {
	m := mesh.New()
	m.AddVertex(vecmath.New(0, 0, 0))
	m.AddVertex(vecmath.New(1, 0, 0))
	m.AddVertex(vecmath.New(2, 0, 0))
	m.AddFace(mesh.Triangle{0, 1, 2})

	var warned []int
	qs, faces, err := Vertices(m, false, func(faceIndex int, t mesh.Triangle) {
		warned = append(warned, faceIndex)
	})
	require.NoError(t, err)
	assert.Empty(t, faces)
	assert.Equal(t, []int{0}, warned)
	assert.Equal(t, vecmath.Quadric{}, qs[0])
}
