package construct

import (
	"fmt"
	"strings"

	"github.com/akmonengine/bvh"
)

// span is a 1D volume
type span struct {
	lo, hi float64
}

func (s span) Measure() float64 { return s.hi - s.lo }

type spanTree = bvh.Tree[span, int]
type spanNode = bvh.Node[span, int]

// fitSpans treats geometry element i as the unit span [i, i+1]
func fitSpans(geometry []int, volumes []span) span {
	out := span{lo: 1e300, hi: -1e300}
	for _, g := range geometry {
		out.lo = min(out.lo, float64(g))
		out.hi = max(out.hi, float64(g+1))
	}
	for _, v := range volumes {
		out.lo = min(out.lo, v.lo)
		out.hi = max(out.hi, v.hi)
	}
	return out
}

// chainGraph inserts one node per geometry element and links consecutive nodes
func chainGraph(n int) *Graph[span, int] {
	g := NewGraph[span, int]()
	for i := 0; i < n; i++ {
		g.InsertNode(span{}, i)
	}
	for i := 0; i+1 < n; i++ {
		g.InsertEdge(NodeID(i), NodeID(i+1))
	}
	return g
}

// lowestPairPolicy always merges the edge whose endpoints have the lowest ids
type lowestPairPolicy struct {
	graph  *Graph[span, int]
	create func(g *Graph[span, int], n NodeID) bool
}

func (p *lowestPairPolicy) Init(graph *Graph[span, int]) { p.graph = graph }

func (p *lowestPairPolicy) MoreEdges() bool { return p.graph.EdgeCount() > 0 }

func (p *lowestPairPolicy) NextEdge() EdgeID {
	best := EdgeID(-1)
	var bestLo, bestHi NodeID
	for _, e := range p.graph.Edges() {
		a, b := p.graph.Endpoints(e)
		lo, hi := min(a, b), max(a, b)
		if best < 0 || lo < bestLo || (lo == bestLo && hi < bestHi) {
			best, bestLo, bestHi = e, lo, hi
		}
	}
	return best
}

func (p *lowestPairPolicy) ShouldCreateBV(n NodeID) bool {
	if p.create == nil {
		return true
	}
	return p.create(p.graph, n)
}

func (p *lowestPairPolicy) Fit(geometry []int, volumes []span) span {
	return fitSpans(geometry, volumes)
}

func (p *lowestPairPolicy) Update(NodeID) {}

// shape renders the tree structure with leaf geometry, e.g. ((0,1),(2,3))
func shape(n *spanNode) string {
	if n == nil {
		return "<nil>"
	}
	if n.IsLeaf() {
		parts := make([]string, 0, len(n.Geometry()))
		for _, g := range n.Geometry() {
			parts = append(parts, fmt.Sprint(g))
		}
		return strings.Join(parts, "+")
	}
	parts := make([]string, 0, n.Degree())
	for _, c := range n.Children() {
		parts = append(parts, shape(c))
	}
	return "(" + strings.Join(parts, ",") + ")"
}

// countNodes returns the number of leaves and internal nodes below n
func countNodes(n *spanNode) (leaves, internal int) {
	if n.IsLeaf() {
		return 1, 0
	}
	internal = 1
	for _, c := range n.Children() {
		l, i := countNodes(c)
		leaves += l
		internal += i
	}
	return leaves, internal
}
