package bvh

import "fmt"

// interval is a 1D volume, enough to exercise the traversal control flow
type interval struct {
	lo, hi float64
}

func (i interval) Measure() float64 { return i.hi - i.lo }

func (i interval) overlaps(o interval) bool { return i.hi >= o.lo && i.lo <= o.hi }

func (i interval) union(o interval) interval {
	return interval{lo: min(i.lo, o.lo), hi: max(i.hi, o.hi)}
}

type testTree = Tree[interval, int]
type testNode = Node[interval, int]

// buildPairwise creates one annotated leaf per interval, geometry i, then merges
// neighbours two by two until a single root remains
func buildPairwise(leaves ...interval) *testTree {
	tree := NewTree[interval, int]()
	if len(leaves) == 0 {
		return tree
	}

	level := make([]*testNode, 0, len(leaves))
	for i, iv := range leaves {
		level = append(level, tree.Insert(iv, []int{i}, true))
	}
	for len(level) > 1 {
		var next []*testNode
		for i := 0; i < len(level); i += 2 {
			if i+1 == len(level) {
				next = append(next, level[i])
				continue
			}
			a, b := level[i], level[i+1]
			next = append(next, tree.Insert(a.Volume.union(b.Volume), nil, false, a, b))
		}
		level = next
	}
	tree.SetRoot(level[0])
	return tree
}

func leafID(n *testNode) int {
	if len(n.Geometry()) != 1 {
		panic(fmt.Sprintf("leaf holds %d elements", len(n.Geometry())))
	}
	return n.Geometry()[0]
}

type leafPair struct{ a, b int }

// normalized orders the pair so that sets can be compared regardless of traversal order
func (p leafPair) normalized() leafPair {
	if p.b < p.a {
		return leafPair{p.b, p.a}
	}
	return p
}

// intervalPolicy implements every policy interface over intervals and records its calls
type intervalPolicy struct {
	resets      int
	visited     []*testNode
	visitedPair [][2]*testNode

	adjacent      func(a, b *testNode) bool
	curvature     func(n *testNode) bool
	curvaturePair func(a, b *testNode) bool
}

func (p *intervalPolicy) Reset(results *[]leafPair) {
	*results = (*results)[:0]
	p.resets++
	p.visited = nil
	p.visitedPair = nil
}

func (p *intervalPolicy) Overlap(a, b *testNode) bool {
	p.visitedPair = append(p.visitedPair, [2]*testNode{a, b})
	return a.Volume.overlaps(b.Volume)
}

func (p *intervalPolicy) Report(a, b *testNode, results *[]leafPair) {
	*results = append(*results, leafPair{leafID(a), leafID(b)})
}

func (p *intervalPolicy) Adjacent(a, b *testNode) bool {
	if p.adjacent == nil {
		return false
	}
	return p.adjacent(a, b)
}

func (p *intervalPolicy) Curvature(n *testNode) bool {
	if p.curvature == nil {
		return false
	}
	return p.curvature(n)
}

func (p *intervalPolicy) CurvaturePair(a, b *testNode) bool {
	if p.curvaturePair == nil {
		return false
	}
	return p.curvaturePair(a, b)
}

// pointPolicy is a single-query policy testing a tree shifted by an offset against a point
type pointPolicy struct {
	resets  int
	visited []*testNode
}

func (p *pointPolicy) Reset(results *[]int) {
	*results = (*results)[:0]
	p.resets++
	p.visited = nil
}

func (p *pointPolicy) Overlap(offset float64, node *testNode, point float64) bool {
	p.visited = append(p.visited, node)
	return node.Volume.lo+offset <= point && point <= node.Volume.hi+offset
}

func (p *pointPolicy) Report(offset float64, leaf *testNode, point float64, results *[]int) {
	*results = append(*results, leafID(leaf))
}

// isDescendant reports whether n lies in the subtree of ancestor, ancestor excluded
func isDescendant(n, ancestor *testNode) bool {
	for p := n.Parent(); p != nil; p = p.Parent() {
		if p == ancestor {
			return true
		}
	}
	return false
}
