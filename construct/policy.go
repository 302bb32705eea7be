package construct

import "github.com/akmonengine/bvh"

// Policy decides the merge order of a bottom-up construction and when graph nodes
// become permanent BV nodes.
//
// The Constructor calls Init once, then loops while MoreEdges is true:
// NextEdge, collapse, Fit, ShouldCreateBV and finally Update with the new node.
type Policy[V bvh.Volume, G any] interface {
	// Init builds the policy's priority structure from the graph
	Init(graph *Graph[V, G])
	MoreEdges() bool
	// NextEdge returns a live edge of the graph. It is only called when MoreEdges is true.
	NextEdge() EdgeID
	// ShouldCreateBV reports whether the freshly collapsed node becomes a BV node.
	// The last node of a connected graph must be accepted.
	ShouldCreateBV(node NodeID) bool
	// Fit returns a volume enclosing the geometry and the volumes
	Fit(geometry []G, volumes []V) V
	// Update refreshes the bookkeeping touched by the collapse that produced node
	Update(node NodeID)
}

// FitFunc computes a bounding volume over geometry elements and sub-volumes
type FitFunc[V bvh.Volume, G any] func(geometry []G, volumes []V) V
