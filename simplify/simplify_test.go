package simplify

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smiley22/MeshSimplify/mesh"
	"github.com/smiley22/MeshSimplify/vecmath"
)

// octahedron returns a closed, manifold 6-vertex/8-face mesh with no
// degenerate faces, used as the end-to-end fixture for the contraction
// loop (§8 scenarios).
func octahedron() *mesh.Mesh {
	m := mesh.New()
	m.AddVertex(vecmath.New(1, 0, 0))  // 0
	m.AddVertex(vecmath.New(-1, 0, 0)) // 1
	m.AddVertex(vecmath.New(0, 1, 0))  // 2
	m.AddVertex(vecmath.New(0, -1, 0)) // 3
	m.AddVertex(vecmath.New(0, 0, 1))  // 4
	m.AddVertex(vecmath.New(0, 0, -1)) // 5

	for _, f := range []mesh.Triangle{
		{0, 2, 4}, {2, 1, 4}, {1, 3, 4}, {3, 0, 4},
		{2, 0, 5}, {1, 2, 5}, {3, 1, 5}, {0, 3, 5},
	} {
		m.AddFace(f)
	}
	return m
}

func TestSimplifyRejectsInvalidTarget(t *testing.T) {
	_, err := Simplify(context.Background(), octahedron(), Options{TargetFaces: 0})
	assert.ErrorIs(t, err, ErrInvalidTarget)
}

func TestSimplifyPassesThroughWhenAlreadyAtTarget(t *testing.T) {
	in := octahedron()
	out, err := Simplify(context.Background(), in, Options{TargetFaces: 100})
	require.NoError(t, err)
	assert.Equal(t, len(in.Faces), len(out.Faces))
	assert.Equal(t, len(in.Vertices), len(out.Vertices))
}

func TestSimplifyRejectsRecordSplitsOnMeshWithExistingSplits(t *testing.T) {
	in := octahedron()
	in.Splits = []mesh.VertexSplit{{S: 0}}
	_, err := Simplify(context.Background(), in, Options{TargetFaces: 1, RecordSplits: true})
	assert.ErrorIs(t, err, ErrIncompatibleOptions)
}

func TestSimplifyReducesToTargetAndStaysValid(t *testing.T) {
	out, err := Simplify(context.Background(), octahedron(), Options{TargetFaces: 4, RecordSplits: true, Strict: true})
	require.NoError(t, err)

	require.NoError(t, out.Validate())
	assert.LessOrEqual(t, len(out.Faces), 4)
	assert.NotEmpty(t, out.Splits)
	assert.Equal(t, 6-len(out.Vertices), len(out.Splits), "one split per contracted vertex (§3 P5)")

	for _, f := range out.Faces {
		assert.True(t, f.Distinct(), "no face may repeat a vertex index (P1)")
	}
}

// edgeCounts returns, for every unordered edge of faces, how many
// faces use it. A closed 2-manifold mesh uses every edge exactly
// twice; a stale PairsOfVertex entry resurrecting a dead vertex (see
// DESIGN.md's contract() fix) breaks this by leaving a face that
// points at an index nothing else references.
func edgeCounts(faces []mesh.Triangle) map[[2]int]int {
	counts := make(map[[2]int]int)
	for _, f := range faces {
		for i := 0; i < 3; i++ {
			a, b := f[i], f[(i+1)%3]
			if a > b {
				a, b = b, a
			}
			counts[[2]int{a, b}]++
		}
	}
	return counts
}

func TestSimplifyPreservesClosedManifoldTopology(t *testing.T) {
	out, err := Simplify(context.Background(), octahedron(), Options{TargetFaces: 4, RecordSplits: true, Strict: true})
	require.NoError(t, err)
	require.NoError(t, out.Validate())

	for edge, n := range edgeCounts(out.Faces) {
		assert.Equal(t, 2, n, "edge %v must be shared by exactly two faces in a closed manifold", edge)
	}
}

func TestSimplifyIsDeterministic(t *testing.T) {
	out1, err := Simplify(context.Background(), octahedron(), Options{TargetFaces: 4})
	require.NoError(t, err)
	out2, err := Simplify(context.Background(), octahedron(), Options{TargetFaces: 4})
	require.NoError(t, err)

	assert.Equal(t, out1.Faces, out2.Faces)
	assert.Equal(t, out1.Vertices, out2.Vertices)
}

func TestSimplifyRespectsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Simplify(ctx, octahedron(), Options{TargetFaces: 1})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSimplifyOnSphereReachesTargetWithDistancePairs(t *testing.T) {
	sphere := mesh.GenerateSphere(1, 12, 16)
	original := len(sphere.Faces)
	require.Greater(t, original, 100)

	out, err := Simplify(context.Background(), sphere, Options{
		TargetFaces:       original / 4,
		DistanceThreshold: 0.05,
	})
	require.NoError(t, err)
	require.NoError(t, out.Validate())
	assert.LessOrEqual(t, len(out.Faces), original/4)
	assert.Less(t, len(out.Faces), original)
}

func TestSimplifyDoesNotMutateInput(t *testing.T) {
	in := octahedron()
	before := append([]mesh.Triangle(nil), in.Faces...)

	_, err := Simplify(context.Background(), in, Options{TargetFaces: 4})
	require.NoError(t, err)

	assert.Equal(t, before, in.Faces)
}
