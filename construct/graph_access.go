package construct

import "github.com/akmonengine/bvh"

// Nodes returns the live nodes in insertion order
func (g *Graph[V, G]) Nodes() []NodeID {
	ids := make([]NodeID, 0, g.nodeCount)
	for i := range g.nodes {
		if g.nodes[i].alive {
			ids = append(ids, NodeID(i))
		}
	}
	return ids
}

// Edges returns the live edges in insertion order
func (g *Graph[V, G]) Edges() []EdgeID {
	ids := make([]EdgeID, 0, g.edgeCount)
	for i := range g.edges {
		if g.edges[i].alive {
			ids = append(ids, EdgeID(i))
		}
	}
	return ids
}

func (g *Graph[V, G]) NodeCount() int { return g.nodeCount }

func (g *Graph[V, G]) EdgeCount() int { return g.edgeCount }

func (g *Graph[V, G]) NodeAlive(id NodeID) bool {
	return id >= 0 && int(id) < len(g.nodes) && g.nodes[id].alive
}

func (g *Graph[V, G]) EdgeAlive(id EdgeID) bool {
	return id >= 0 && int(id) < len(g.edges) && g.edges[id].alive
}

// Endpoints returns the two nodes joined by the edge
func (g *Graph[V, G]) Endpoints(id EdgeID) (NodeID, NodeID) {
	g.mustBeAliveEdge(id)
	return g.edges[id].a, g.edges[id].b
}

// IncidentEdges returns the edges of node. The slice must not be modified.
func (g *Graph[V, G]) IncidentEdges(id NodeID) []EdgeID {
	g.mustBeAlive(id)
	return g.nodes[id].edges
}

// Neighbors returns the nodes linked to id, following the order of its edges
func (g *Graph[V, G]) Neighbors(id NodeID) []NodeID {
	g.mustBeAlive(id)
	out := make([]NodeID, 0, len(g.nodes[id].edges))
	for _, e := range g.nodes[id].edges {
		a, b := g.edges[e].a, g.edges[e].b
		if a == id {
			out = append(out, b)
		} else {
			out = append(out, a)
		}
	}
	return out
}

// Coverage returns the geometry directly held by the node
func (g *Graph[V, G]) Coverage(id NodeID) []G {
	g.mustBeAlive(id)
	return g.nodes[id].coverage
}

// SubNodes returns the materialized nodes waiting below id
func (g *Graph[V, G]) SubNodes(id NodeID) []NodeID {
	g.mustBeAlive(id)
	return g.nodes[id].subNodes
}

// SubtreeSize returns the number of initial nodes merged into id
func (g *Graph[V, G]) SubtreeSize(id NodeID) int {
	g.mustBeAlive(id)
	return g.nodes[id].subtreeSize
}

// Height returns the height of the BV subtree rooted at id, 0 for initial nodes
func (g *Graph[V, G]) Height(id NodeID) int {
	g.mustBeAlive(id)
	return g.nodes[id].height
}

func (g *Graph[V, G]) Volume(id NodeID) V {
	g.mustBeAlive(id)
	return g.nodes[id].volume
}

func (g *Graph[V, G]) SetVolume(id NodeID, volume V) {
	g.mustBeAlive(id)
	g.nodes[id].volume = volume
}

// BV returns the tree node materialized for id, nil if none yet
func (g *Graph[V, G]) BV(id NodeID) *bvh.Node[V, G] {
	g.mustBeAlive(id)
	return g.nodes[id].bv
}

// subVolumes returns the volumes of the sub-nodes of id
func (g *Graph[V, G]) subVolumes(id NodeID) []V {
	subs := g.nodes[id].subNodes
	volumes := make([]V, 0, len(subs))
	for _, s := range subs {
		volumes = append(volumes, g.nodes[s].volume)
	}
	return volumes
}

// materialize creates the BV node of id in tree. Its children are the BV nodes of the
// sub-nodes and any remaining coverage is moved into it.
func (g *Graph[V, G]) materialize(id NodeID, tree *bvh.Tree[V, G]) *bvh.Node[V, G] {
	g.mustBeAlive(id)
	n := &g.nodes[id]
	if n.bv != nil {
		panic("construct: node materialized twice")
	}

	children := make([]*bvh.Node[V, G], 0, len(n.subNodes))
	for _, s := range n.subNodes {
		child := g.nodes[s].bv
		if child == nil {
			panic("construct: sub-node has no BV node")
		}
		children = append(children, child)
	}

	annotated := len(n.coverage) > 0
	n.bv = tree.Insert(n.volume, n.coverage, annotated, children...)
	n.coverage = nil
	return n.bv
}
