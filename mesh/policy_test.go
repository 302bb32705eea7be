package mesh

import (
	"math"
	"testing"

	"github.com/akmonengine/bvh"
	"github.com/akmonengine/bvh/construct"
	"github.com/akmonengine/bvh/volume"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func build(t *testing.T, m *TriangleMesh) *Tree {
	t.Helper()
	tree, err := m.Build(construct.DefaultConfig(), quiet)
	require.NoError(t, err)
	return tree
}

// wall is a vertical grid in the plane z = 1.5 crossing Grid(4, 4, 1) along x in [0.25, 2.25]
func wall() *TriangleMesh {
	g := Grid(2, 2, 1)
	m := &TriangleMesh{Faces: g.Faces}
	for _, v := range g.Vertices {
		m.Vertices = append(m.Vertices, mgl64.Vec3{v.X() + 0.25, v.Z() - 1, 1.5})
	}
	return m
}

func bruteSelf(m *TriangleMesh) []FacePair {
	var out []FacePair
	for i := 0; i < m.FaceCount(); i++ {
		for j := i + 1; j < m.FaceCount(); j++ {
			if m.SharesVertex(i, j) {
				continue
			}
			if TrianglesIntersect(m.Triangle(i), m.Triangle(j)) {
				out = append(out, FacePair{A: i, B: j})
			}
		}
	}
	return out
}

// =============================================================================
// Single Query Tests
// =============================================================================

func TestBoxQuery(t *testing.T) {
	m := Grid(4, 4, 1)
	tree := build(t, m)
	query := bvh.SingleQuery[volume.AABB, int, volume.Transform, volume.AABB, int]{Policy: BoxQuery{Mesh: m}}

	box := volume.AABB{Min: mgl64.Vec3{1.2, -0.1, 1.2}, Max: mgl64.Vec3{1.8, 0.1, 2.6}}

	var want []int
	for f := 0; f < m.FaceCount(); f++ {
		if m.FaceAABB(f).Overlaps(box) {
			want = append(want, f)
		}
	}
	require.NotEmpty(t, want)

	t.Run("identity", func(t *testing.T) {
		results := []int{99}
		query.Run(volume.NewTransform(), tree, box, &results)
		assert.ElementsMatch(t, want, results)
	})

	t.Run("translated frame", func(t *testing.T) {
		xform := volume.NewTransform()
		xform.Position = mgl64.Vec3{10, 0, 0}
		moved := box
		moved.Min = moved.Min.Add(xform.Position)
		moved.Max = moved.Max.Add(xform.Position)

		var results []int
		query.Run(xform, tree, moved, &results)
		assert.ElementsMatch(t, want, results)
	})

	t.Run("miss", func(t *testing.T) {
		results := []int{1, 2}
		far := volume.AABB{Min: mgl64.Vec3{10, 10, 10}, Max: mgl64.Vec3{11, 11, 11}}
		query.Run(volume.NewTransform(), tree, far, &results)
		assert.Empty(t, results)
	})
}

func TestTriangleQuery(t *testing.T) {
	m := Grid(4, 4, 1)
	tree := build(t, m)
	query := bvh.SingleQuery[volume.AABB, int, volume.Transform, Triangle, int]{Policy: TriangleQuery{Mesh: m}}

	probe := Triangle{{0.5, -1, 0.5}, {0.5, 1, 0.5}, {3.5, 0, 0.5}}
	var want []int
	for f := 0; f < m.FaceCount(); f++ {
		if TrianglesIntersect(m.Triangle(f), probe) {
			want = append(want, f)
		}
	}
	require.NotEmpty(t, want)

	var results []int
	query.Run(volume.NewTransform(), tree, probe, &results)
	assert.ElementsMatch(t, want, results)
}

// =============================================================================
// World Query Tests
// =============================================================================

func TestWorldCollider(t *testing.T) {
	floor, w := Grid(4, 4, 1), wall()
	floorTree, wallTree := build(t, floor), build(t, w)

	var want []FacePair
	for a := 0; a < floor.FaceCount(); a++ {
		for b := 0; b < w.FaceCount(); b++ {
			if TrianglesIntersect(floor.Triangle(a), w.Triangle(b)) {
				want = append(want, FacePair{A: a, B: b})
			}
		}
	}
	require.NotEmpty(t, want)

	query := bvh.WorldQuery[volume.AABB, int, FacePair]{Policy: WorldCollider{A: floor, B: w}}
	var results []FacePair
	query.Run(floorTree, wallTree, &results)
	assert.ElementsMatch(t, want, results)

	t.Run("separated", func(t *testing.T) {
		lifted := Translate(w, mgl64.Vec3{0, 5, 0})
		query := bvh.WorldQuery[volume.AABB, int, FacePair]{Policy: WorldCollider{A: floor, B: lifted}}
		query.Run(floorTree, build(t, lifted), &results)
		assert.Empty(t, results)
	})
}

// =============================================================================
// Self Query Tests
// =============================================================================

func TestSelfCollider_Flat(t *testing.T) {
	m := Grid(4, 4, 1)
	tree := build(t, m)
	collider := NewSelfCollider(m)

	var results []FacePair
	bvh.SelfQuery[volume.AABB, int, FacePair]{Policy: collider}.Run(tree, &results)

	assert.Empty(t, results)
	assert.True(t, collider.Curvature(tree.Root()))
}

func TestSelfCollider_Folded(t *testing.T) {
	m := Fold(Grid(4, 1, 1), 2, math.Pi)
	tree := build(t, m)
	collider := NewSelfCollider(m)

	want := bruteSelf(m)
	require.NotEmpty(t, want)

	var results []FacePair
	query := bvh.SelfQuery[volume.AABB, int, FacePair]{Policy: collider}
	query.Run(tree, &results)
	assert.ElementsMatch(t, want, results)

	assert.False(t, collider.Curvature(tree.Root()))

	// A second run starts from fresh memo tables
	query.Run(tree, &results)
	assert.ElementsMatch(t, want, results)
}

func TestSelfCollider_Adjacent(t *testing.T) {
	m := Grid(2, 1, 1)
	tree := build(t, m)
	collider := NewSelfCollider(m)

	leaves := make(map[int]*Node)
	for _, leaf := range tree.Leaves() {
		leaves[leaf.Geometry()[0]] = leaf
	}

	assert.True(t, collider.Adjacent(leaves[0], leaves[2]))
	assert.False(t, collider.Adjacent(leaves[0], leaves[3]))
	assert.True(t, collider.CurvaturePair(leaves[0], leaves[3]))

	var results []FacePair
	collider.Reset(&results)
	assert.Empty(t, collider.cones)
	assert.Empty(t, collider.vertices)
}

func TestSelfCollider_MaxAngle(t *testing.T) {
	m := Fold(Grid(2, 1, 1), 1, math.Pi/3)
	tree := build(t, m)

	assert.False(t, (&SelfCollider{Mesh: m, MaxAngle: math.Pi / 8}).Curvature(tree.Root()))
	assert.True(t, (&SelfCollider{Mesh: m}).Curvature(tree.Root()))
}

// =============================================================================
// Benchmarks
// =============================================================================

func BenchmarkBuild(b *testing.B) {
	m := Grid(32, 32, 1)
	for i := 0; i < b.N; i++ {
		if _, err := m.Build(construct.DefaultConfig(), quiet); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkSelfQuery(b *testing.B) {
	m := Fold(Grid(32, 8, 1), 16, math.Pi)
	tree, err := m.Build(construct.DefaultConfig(), quiet)
	if err != nil {
		b.Fatal(err)
	}
	query := bvh.SelfQuery[volume.AABB, int, FacePair]{Policy: NewSelfCollider(m)}

	var results []FacePair
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		query.Run(tree, &results)
	}
}
