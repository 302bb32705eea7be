// Package bvh holds bounding volume hierarchies and the queries that traverse them.
//
// A Tree is built once (see the construct package) and is read-only afterwards,
// so any number of queries may traverse the same tree concurrently as long as each
// query owns its policy.
package bvh

// Volume is the only capability the traversal engine needs from a bounding volume:
// a scalar measure used to decide which side of a pair to split first.
// Fitting and overlap tests belong to the policies.
type Volume interface {
	Measure() float64
}

// Node is a bounding volume in a Tree.
// A parent owns its children. Parent and owner are back references only.
type Node[V Volume, G any] struct {
	// Volume bounds every geometry element below the node
	Volume V

	owner    *Tree[V, G]
	parent   *Node[V, G]
	children []*Node[V, G]

	geometry  []G
	annotated bool
}

// IsLeaf reports whether the node has no children
func (n *Node[V, G]) IsLeaf() bool {
	return len(n.children) == 0
}

// IsRoot reports whether the node has no parent. It panics if the node is not owned by a tree.
func (n *Node[V, G]) IsRoot() bool {
	if n.owner == nil {
		panic("bvh: IsRoot on a node without owner")
	}
	return n.parent == nil
}

// HasGeometry reports whether the node was created as an annotated leaf storing geometry
func (n *Node[V, G]) HasGeometry() bool {
	return n.annotated
}

// Geometry returns the geometry stored in an annotated node
func (n *Node[V, G]) Geometry() []G {
	return n.geometry
}

// Children returns the child nodes. The slice must not be modified.
func (n *Node[V, G]) Children() []*Node[V, G] {
	return n.children
}

// Degree returns the number of children
func (n *Node[V, G]) Degree() int {
	return len(n.children)
}

func (n *Node[V, G]) Parent() *Node[V, G] {
	return n.parent
}

func (n *Node[V, G]) Owner() *Tree[V, G] {
	return n.owner
}
