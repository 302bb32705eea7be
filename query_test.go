package bvh

import (
	"testing"

	"github.com/akmonengine/bvh/volume"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Single Collision Query Tests
// =============================================================================

func TestSingleQuery(t *testing.T) {
	tree := buildPairwise(interval{0, 1}, interval{1, 2}, interval{2, 3}, interval{3, 4})

	tests := []struct {
		name     string
		offset   float64
		point    float64
		expected []int
	}{
		{"outside the root volume", 0, 10, []int{}},
		{"inside one leaf", 0, 0.5, []int{0}},
		{"on a shared boundary", 0, 2, []int{1, 2}},
		{"transform shifts the tree", 10, 13.5, []int{3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			policy := &pointPolicy{}
			query := SingleQuery[interval, int, float64, float64, int]{Policy: policy}

			results := []int{99}
			query.Run(tt.offset, tree, tt.point, &results)

			assert.Equal(t, tt.expected, results)
			assert.Equal(t, 1, policy.resets)
		})
	}
}

func TestSingleQuery_NonOverlappingRoot(t *testing.T) {
	tree := buildPairwise(interval{0, 1}, interval{1, 2})
	policy := &pointPolicy{}
	query := SingleQuery[interval, int, float64, float64, int]{Policy: policy}

	var results []int
	query.Run(0, tree, -5, &results)

	assert.Empty(t, results)
	require.Len(t, policy.visited, 1, "only the root is tested")
	assert.Same(t, tree.Root(), policy.visited[0])
}

func TestSingleQuery_PruningSoundness(t *testing.T) {
	tree := buildPairwise(interval{0, 1}, interval{1, 2}, interval{5, 6}, interval{6, 7}, interval{10, 11})
	policy := &pointPolicy{}
	query := SingleQuery[interval, int, float64, float64, int]{Policy: policy}

	var results []int
	query.Run(0, tree, 0.5, &results)
	assert.Equal(t, []int{0}, results)

	// No node is visited below a pruned one
	var pruned []*testNode
	for _, n := range policy.visited {
		if !(n.Volume.lo <= 0.5 && 0.5 <= n.Volume.hi) {
			pruned = append(pruned, n)
		}
	}
	for _, n := range policy.visited {
		for _, p := range pruned {
			assert.False(t, isDescendant(n, p), "visited a descendant of a pruned node")
		}
	}
}

func TestSingleQuery_EmptyTree(t *testing.T) {
	policy := &pointPolicy{}
	query := SingleQuery[interval, int, float64, float64, int]{Policy: policy}

	results := []int{1, 2}
	query.Run(0, NewTree[interval, int](), 0, &results)
	assert.Empty(t, results)
	assert.Equal(t, 1, policy.resets)

	query.Run(0, nil, 0, &results)
	assert.Equal(t, 2, policy.resets)
}

// =============================================================================
// World Collision Query Tests
// =============================================================================

func TestWorldQuery_SingleLeaves(t *testing.T) {
	treeA := buildPairwise(interval{0, 2})
	treeB := buildPairwise(interval{1, 3})
	policy := &intervalPolicy{}
	query := WorldQuery[interval, int, leafPair]{Policy: policy}

	var results []leafPair
	query.Run(treeA, treeB, &results)

	assert.Equal(t, []leafPair{{0, 0}}, results)
	assert.Len(t, policy.visitedPair, 1)
}

func TestWorldQuery_Disjoint(t *testing.T) {
	treeA := buildPairwise(interval{0, 1}, interval{1, 2})
	treeB := buildPairwise(interval{5, 6}, interval{6, 7})
	policy := &intervalPolicy{}
	query := WorldQuery[interval, int, leafPair]{Policy: policy}

	var results []leafPair
	query.Run(treeA, treeB, &results)

	assert.Empty(t, results)
	assert.Len(t, policy.visitedPair, 1)
}

func TestWorldQuery_ReportsAllOverlappingLeaves(t *testing.T) {
	treeA := buildPairwise(interval{0, 1}, interval{2, 3}, interval{4, 5}, interval{6, 7})
	treeB := buildPairwise(interval{0.5, 2.5}, interval{6.5, 8})
	policy := &intervalPolicy{}
	query := WorldQuery[interval, int, leafPair]{Policy: policy}

	var results []leafPair
	query.Run(treeA, treeB, &results)

	assert.ElementsMatch(t, []leafPair{{0, 0}, {1, 0}, {3, 1}}, results)
}

func TestWorldQuery_SplitsLargerVolumeFirst(t *testing.T) {
	treeA := buildPairwise(interval{0, 1}, interval{1, 2})   // root measure 2
	treeB := buildPairwise(interval{0, 5}, interval{5, 10}) // root measure 10
	policy := &intervalPolicy{}
	query := WorldQuery[interval, int, leafPair]{Policy: policy}

	var results []leafPair
	query.Run(treeA, treeB, &results)

	require.GreaterOrEqual(t, len(policy.visitedPair), 3)
	// B is larger, so the second and third pairs keep A's root and split B
	for _, p := range policy.visitedPair[1:3] {
		assert.Same(t, treeA.Root(), p[0])
		assert.Same(t, treeB.Root(), p[1].Parent())
	}
	assert.ElementsMatch(t, []leafPair{{0, 0}, {1, 0}}, results)
}

func TestWorldQuery_PruningSoundness(t *testing.T) {
	treeA := buildPairwise(interval{0, 1}, interval{1, 2}, interval{8, 9}, interval{9, 10})
	treeB := buildPairwise(interval{0.5, 1.5}, interval{20, 21})
	policy := &intervalPolicy{}
	query := WorldQuery[interval, int, leafPair]{Policy: policy}

	var results []leafPair
	query.Run(treeA, treeB, &results)

	var pruned [][2]*testNode
	for _, p := range policy.visitedPair {
		if !p[0].Volume.overlaps(p[1].Volume) {
			pruned = append(pruned, p)
		}
	}
	for _, p := range policy.visitedPair {
		for _, q := range pruned {
			below := (p[0] == q[0] || isDescendant(p[0], q[0])) && (p[1] == q[1] || isDescendant(p[1], q[1]))
			assert.False(t, below && p != q, "visited a pair below a pruned pair")
		}
	}
	assert.ElementsMatch(t, []leafPair{{0, 0}, {1, 0}}, results)
}

func TestWorldQuery_NilRoot(t *testing.T) {
	policy := &intervalPolicy{}
	query := WorldQuery[interval, int, leafPair]{Policy: policy}

	results := []leafPair{{1, 1}}
	query.Run(NewTree[interval, int](), buildPairwise(interval{0, 1}), &results)
	assert.Empty(t, results)
	assert.Equal(t, 1, policy.resets)
}

// =============================================================================
// Self Collision Query Tests
// =============================================================================

func TestSelfQuery_AdjacentFlatLeavesArePruned(t *testing.T) {
	tree := buildPairwise(interval{0, 1}, interval{1, 2})
	policy := &intervalPolicy{
		adjacent:      func(a, b *testNode) bool { return true },
		curvaturePair: func(a, b *testNode) bool { return true },
	}
	query := SelfQuery[interval, int, leafPair]{Policy: policy}

	var results []leafPair
	children := tree.Root().Children()
	query.Tandem(children[0], children[1], &results)

	assert.Empty(t, results)
	assert.Len(t, policy.visitedPair, 1, "pruned at the root pair")
}

func TestSelfQuery_AdjacentBentLeavesAreReported(t *testing.T) {
	tree := buildPairwise(interval{0, 1}, interval{1, 2})
	policy := &intervalPolicy{
		adjacent: func(a, b *testNode) bool { return true },
	}
	query := SelfQuery[interval, int, leafPair]{Policy: policy}

	var results []leafPair
	query.Run(tree, &results)

	assert.Equal(t, []leafPair{{0, 1}}, results)
}

func TestSelfQuery_CurvatureOnNodeSkipsSubtree(t *testing.T) {
	tree := buildPairwise(interval{0, 1}, interval{0.5, 1.5}, interval{1, 2}, interval{1.5, 2.5})
	root := tree.Root()
	policy := &intervalPolicy{
		curvature: func(n *testNode) bool { return n == root },
	}
	query := SelfQuery[interval, int, leafPair]{Policy: policy}

	var results []leafPair
	query.Run(tree, &results)

	assert.Empty(t, results)
	assert.Empty(t, policy.visitedPair)
}

func TestSelfQuery_ReportsOnlyPairsFromDifferentSubtrees(t *testing.T) {
	tree := buildPairwise(interval{0, 1}, interval{0.5, 1.5}, interval{1, 2}, interval{5, 6})
	policy := &intervalPolicy{}
	query := SelfQuery[interval, int, leafPair]{Policy: policy}

	var results []leafPair
	query.Run(tree, &results)

	var normalized []leafPair
	for _, r := range results {
		assert.NotEqual(t, r.a, r.b, "a leaf is never tested against itself")
		normalized = append(normalized, r.normalized())
	}
	assert.ElementsMatch(t, []leafPair{{0, 1}, {0, 2}, {1, 2}}, normalized)
}

func TestSelfQuery_AdjacencyStopsOnceFalse(t *testing.T) {
	// Siblings hold leaves 0,1 and 2,3. Only the top pair is adjacent.
	tree := buildPairwise(interval{0, 1}, interval{0, 1}, interval{0.5, 1}, interval{0.5, 1})
	children := tree.Root().Children()
	top := [2]*testNode{children[0], children[1]}

	var adjacentCalls int
	policy := &intervalPolicy{
		adjacent: func(a, b *testNode) bool {
			adjacentCalls++
			return a == top[0] && b == top[1]
		},
		// Would prune every pair if it were consulted below the top pair
		curvaturePair: func(a, b *testNode) bool { return !(a == top[0] && b == top[1]) },
	}
	query := SelfQuery[interval, int, leafPair]{Policy: policy}

	var results []leafPair
	query.Tandem(top[0], top[1], &results)

	assert.Len(t, results, 4)
	// Asked for the top pair and its two children pairs, which answered false
	assert.Equal(t, 3, adjacentCalls)
}

func TestSelfQuery_TandemSymmetry(t *testing.T) {
	tree := buildPairwise(
		interval{0, 1}, interval{0.8, 2}, interval{3, 4}, interval{4.5, 5},
		interval{1.5, 3.2}, interval{3.9, 4.1}, interval{6, 7}, interval{0.2, 0.3},
	)
	children := tree.Root().Children()
	require.Len(t, children, 2)

	collect := func(a, b *testNode) []leafPair {
		query := SelfQuery[interval, int, leafPair]{Policy: &intervalPolicy{}}
		var results []leafPair
		query.Tandem(a, b, &results)

		var out []leafPair
		for _, r := range results {
			out = append(out, r.normalized())
		}
		return out
	}

	ab := collect(children[0], children[1])
	ba := collect(children[1], children[0])
	assert.NotEmpty(t, ab)
	assert.ElementsMatch(t, ab, ba)
}

func TestSelfQuery_NilRoot(t *testing.T) {
	policy := &intervalPolicy{}
	query := SelfQuery[interval, int, leafPair]{Policy: policy}

	results := []leafPair{{1, 2}}
	query.Run(NewTree[interval, int](), &results)
	assert.Empty(t, results)
	assert.Equal(t, 1, policy.resets)

	query.Run(buildPairwise(interval{0, 1}), &results)
	assert.Empty(t, results, "a single leaf cannot collide with itself")
}

// =============================================================================
// Benchmarks
// =============================================================================

func BenchmarkWorldQuery(b *testing.B) {
	leaves := make([]interval, 1024)
	for i := range leaves {
		leaves[i] = interval{float64(i), float64(i) + 1.5}
	}
	treeA := buildPairwise(leaves...)
	treeB := buildPairwise(leaves...)
	query := WorldQuery[interval, int, leafPair]{Policy: &intervalPolicy{}}

	var results []leafPair
	b.ResetTimer()
	for range b.N {
		query.Run(treeA, treeB, &results)
	}
}

func TestSplitFirst_FlatBoxes(t *testing.T) {
	tree := NewTree[volume.AABB, int]()
	flat := func(x0, x1 float64) volume.AABB {
		return volume.AABB{Min: mgl64.Vec3{x0, 0, 0}, Max: mgl64.Vec3{x1, 0, 1}}
	}
	node := func(x0, x1 float64) *Node[volume.AABB, int] {
		left := tree.Insert(flat(x0, (x0+x1)/2), []int{0}, true)
		right := tree.Insert(flat((x0+x1)/2, x1), []int{1}, true)
		return tree.Insert(flat(x0, x1), nil, false, left, right)
	}

	large, small := node(0, 4), node(0, 1)
	assert.True(t, splitFirst(large, small), "the larger flat box is expanded")
	assert.False(t, splitFirst(small, large))
}
