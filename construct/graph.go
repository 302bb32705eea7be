// Package construct builds bounding volume hierarchies bottom-up by contracting a graph.
//
// Graph nodes start as the leaves of the future hierarchy and graph edges are the
// merges allowed between them. The Constructor repeatedly collapses the edge chosen by
// a Policy until a single node, the root, remains.
package construct

import (
	"fmt"

	"github.com/akmonengine/bvh"
)

// NodeID addresses a node in the graph arena. It stays valid until Clear.
type NodeID int

// EdgeID addresses an edge in the graph arena. It stays valid until Clear.
type EdgeID int

type graphNode[V bvh.Volume, G any] struct {
	alive bool

	edges    []EdgeID
	coverage []G
	// subNodes are nodes already materialized as BV nodes, waiting for a parent BV
	subNodes    []NodeID
	subtreeSize int
	height      int

	volume V
	bv     *bvh.Node[V, G]
}

type graphEdge struct {
	a, b  NodeID
	alive bool
}

// Graph is the scratch structure of a bottom-up construction.
// Nodes and edges live in arenas and are addressed by index, a collapse only rewires indices.
// It is not safe for concurrent use.
//
// Structural misuse (self loops, dead endpoints, removing a node still in use) panics:
// the graph is never exposed to untrusted input.
type Graph[V bvh.Volume, G any] struct {
	nodes []graphNode[V, G]
	edges []graphEdge

	nodeCount int
	edgeCount int
}

// NewGraph returns an empty graph
func NewGraph[V bvh.Volume, G any]() *Graph[V, G] {
	return &Graph[V, G]{}
}

// InsertNode adds a node covering the given geometry
func (g *Graph[V, G]) InsertNode(volume V, geometry ...G) NodeID {
	id := NodeID(len(g.nodes))
	node := graphNode[V, G]{
		alive:       true,
		subtreeSize: 1,
		volume:      volume,
	}
	if len(geometry) > 0 {
		node.coverage = append(make([]G, 0, len(geometry)), geometry...)
	}
	g.nodes = append(g.nodes, node)
	g.nodeCount++
	return id
}

// InsertEdge links a and b and returns the edge. If the two nodes are already linked
// the existing edge is returned.
func (g *Graph[V, G]) InsertEdge(a, b NodeID) EdgeID {
	if a == b {
		panic(fmt.Sprintf("construct: self loop on node %d", a))
	}
	g.mustBeAlive(a)
	g.mustBeAlive(b)

	for _, id := range g.nodes[a].edges {
		e := g.edges[id]
		if (e.a == a && e.b == b) || (e.a == b && e.b == a) {
			return id
		}
	}

	id := EdgeID(len(g.edges))
	g.edges = append(g.edges, graphEdge{a: a, b: b, alive: true})
	g.nodes[a].edges = append(g.nodes[a].edges, id)
	g.nodes[b].edges = append(g.nodes[b].edges, id)
	g.edgeCount++
	return id
}

// Collapse contracts the edge into a new node and returns it.
//
// The edges of both endpoints move to the new node. Self loops are dropped, and when
// several edges now join the same pair of nodes the first one in the new node's edge
// list survives, that is the endpoint A's edges in their order followed by B's.
// Geometry coverage moves to the new node. Endpoints that are materialized become its
// sub-nodes; the others hand over their own sub-nodes and are discarded.
func (g *Graph[V, G]) Collapse(edge EdgeID) NodeID {
	g.mustBeAliveEdge(edge)
	a, b := g.edges[edge].a, g.edges[edge].b
	g.mustBeAlive(a)
	g.mustBeAlive(b)

	c := g.InsertNode(*new(V))

	// Move every edge to c
	edges := make([]EdgeID, 0, len(g.nodes[a].edges)+len(g.nodes[b].edges))
	edges = append(edges, g.nodes[a].edges...)
	edges = append(edges, g.nodes[b].edges...)
	g.nodes[a].edges = nil
	g.nodes[b].edges = nil

	for _, id := range edges {
		e := &g.edges[id]
		if e.a == a || e.a == b {
			e.a = c
		}
		if e.b == a || e.b == b {
			e.b = c
		}
	}
	g.nodes[c].edges = edges

	// Collect self loops and duplicates first, the list is rewritten by removeEdge
	var obsolete []EdgeID
	linked := make(map[NodeID]bool, len(edges))
	for _, id := range edges {
		e := g.edges[id]
		if e.a == e.b {
			obsolete = append(obsolete, id)
			continue
		}
		other := e.a
		if other == c {
			other = e.b
		}
		if linked[other] {
			obsolete = append(obsolete, id)
			continue
		}
		linked[other] = true
	}
	for _, id := range obsolete {
		g.removeEdge(id)
	}

	// Coverage is transferred, not copied
	nc := &g.nodes[c]
	nc.coverage = append(g.nodes[a].coverage, g.nodes[b].coverage...)
	g.nodes[a].coverage = nil
	g.nodes[b].coverage = nil

	nc.subtreeSize = g.nodes[a].subtreeSize + g.nodes[b].subtreeSize
	for _, n := range [2]NodeID{a, b} {
		if len(g.nodes[n].subNodes) == 0 {
			nc.subNodes = append(nc.subNodes, n)
			continue
		}
		nc.subNodes = append(nc.subNodes, g.nodes[n].subNodes...)
		g.nodes[n].subNodes = nil
		g.removeNode(n)
	}

	height := 0
	for _, s := range nc.subNodes {
		height = max(height, g.nodes[s].height)
	}
	nc.height = height + 1

	return c
}

// RemoveSubNodes evicts the sub-nodes of node from the graph once they hang below a BV node
func (g *Graph[V, G]) RemoveSubNodes(node NodeID) {
	g.mustBeAlive(node)
	for _, s := range g.nodes[node].subNodes {
		g.removeNode(s)
	}
	g.nodes[node].subNodes = nil
}

// Clear drops every node and edge
func (g *Graph[V, G]) Clear() {
	g.nodes = nil
	g.edges = nil
	g.nodeCount = 0
	g.edgeCount = 0
}

func (g *Graph[V, G]) removeEdge(id EdgeID) {
	e := &g.edges[id]
	if !e.alive {
		return
	}
	g.nodes[e.a].edges = withoutEdge(g.nodes[e.a].edges, id)
	if e.b != e.a {
		g.nodes[e.b].edges = withoutEdge(g.nodes[e.b].edges, id)
	}
	e.alive = false
	g.edgeCount--
}

func (g *Graph[V, G]) removeNode(id NodeID) {
	n := &g.nodes[id]
	if !n.alive {
		panic(fmt.Sprintf("construct: node %d removed twice", id))
	}
	if len(n.subNodes) > 0 {
		panic(fmt.Sprintf("construct: node %d still has sub-nodes", id))
	}
	if len(n.edges) > 0 {
		panic(fmt.Sprintf("construct: node %d still has incident edges", id))
	}
	n.alive = false
	n.coverage = nil
	g.nodeCount--
}

// withoutEdge removes every occurrence of id, keeping the order of the others
func withoutEdge(edges []EdgeID, id EdgeID) []EdgeID {
	out := edges[:0]
	for _, e := range edges {
		if e != id {
			out = append(out, e)
		}
	}
	return out
}

func (g *Graph[V, G]) mustBeAlive(id NodeID) {
	if id < 0 || int(id) >= len(g.nodes) || !g.nodes[id].alive {
		panic(fmt.Sprintf("construct: node %d is not in the graph", id))
	}
}

func (g *Graph[V, G]) mustBeAliveEdge(id EdgeID) {
	if id < 0 || int(id) >= len(g.edges) || !g.edges[id].alive {
		panic(fmt.Sprintf("construct: edge %d is not in the graph", id))
	}
}
