package bvh

// SinglePolicy supplies the geometry math of a SingleQuery.
// X is the coordinate transform type, Q the external geometry and R the result element.
type SinglePolicy[V Volume, G, X, Q, R any] interface {
	// Reset clears results and any per-run state, it is called first by every run
	Reset(results *[]R)
	// Overlap returns false when nothing below node can touch geometry
	Overlap(xform X, node *Node[V, G], geometry Q) bool
	// Report appends the collisions of a leaf with geometry, if any
	Report(xform X, leaf *Node[V, G], geometry Q, results *[]R)
}

// WorldPolicy supplies the geometry math of a WorldQuery.
// Both hierarchies are expressed in the same frame.
type WorldPolicy[V Volume, G, R any] interface {
	Reset(results *[]R)
	Overlap(a, b *Node[V, G]) bool
	Report(a, b *Node[V, G], results *[]R)
}

// SelfPolicy extends WorldPolicy with the surface heuristics of a SelfQuery.
type SelfPolicy[V Volume, G, R any] interface {
	WorldPolicy[V, G, R]
	// Adjacent reports whether two subtrees share boundary geometry
	Adjacent(a, b *Node[V, G]) bool
	// Curvature passes when the subtree is too flat to intersect itself
	Curvature(node *Node[V, G]) bool
	// CurvaturePair passes when the union of both subtrees is too flat to intersect itself
	CurvaturePair(a, b *Node[V, G]) bool
}

// pair is a queued couple of nodes, adjacent is only meaningful for self collision
type pair[V Volume, G any] struct {
	a, b     *Node[V, G]
	adjacent bool
}

// splitFirst reports whether a should be expanded rather than b:
// b is a leaf, or a is internal with the larger volume
func splitFirst[V Volume, G any](a, b *Node[V, G]) bool {
	return b.IsLeaf() || (!a.IsLeaf() && a.Volume.Measure() > b.Volume.Measure())
}
