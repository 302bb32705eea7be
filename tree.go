package bvh

// Tree is a bounding volume hierarchy: it owns its root node.
// It is cleared and rebuilt wholesale, there is no incremental update.
type Tree[V Volume, G any] struct {
	root *Node[V, G]
	size int
}

// NewTree returns an empty tree
func NewTree[V Volume, G any]() *Tree[V, G] {
	return &Tree[V, G]{}
}

// Root returns the root node, nil for an empty tree
func (t *Tree[V, G]) Root() *Node[V, G] {
	return t.root
}

// Size returns the number of nodes created in the tree
func (t *Tree[V, G]) Size() int {
	return t.size
}

// Clear drops every node
func (t *Tree[V, G]) Clear() {
	t.root = nil
	t.size = 0
}

// Insert creates a node owning the given children.
// An annotated node stores geometry; a plain node ignores it.
// Children must be parentless nodes of this tree.
func (t *Tree[V, G]) Insert(volume V, geometry []G, annotated bool, children ...*Node[V, G]) *Node[V, G] {
	node := &Node[V, G]{
		Volume:    volume,
		owner:     t,
		annotated: annotated,
	}
	if annotated && len(geometry) > 0 {
		node.geometry = append(make([]G, 0, len(geometry)), geometry...)
	}

	if len(children) > 0 {
		node.children = make([]*Node[V, G], 0, len(children))
	}
	for _, child := range children {
		if child.owner != t {
			panic("bvh: child belongs to another tree")
		}
		if child.parent != nil {
			panic("bvh: child already has a parent")
		}
		if child == t.root {
			t.root = nil
		}
		child.parent = node
		node.children = append(node.children, child)
	}

	t.size++
	return node
}

// SetRoot makes node the root of the tree. The node must be parentless.
func (t *Tree[V, G]) SetRoot(node *Node[V, G]) {
	if node != nil && (node.owner != t || node.parent != nil) {
		panic("bvh: root must be a parentless node of this tree")
	}
	t.root = node
}

// Walk visits every node in pre-order. Returning false from fn skips the node's subtree.
func (t *Tree[V, G]) Walk(fn func(node *Node[V, G], depth int) bool) {
	if t.root == nil {
		return
	}
	walk(t.root, 0, fn)
}

func walk[V Volume, G any](node *Node[V, G], depth int, fn func(*Node[V, G], int) bool) {
	if !fn(node, depth) {
		return
	}
	for _, child := range node.children {
		walk(child, depth+1, fn)
	}
}

// Leaves returns all leaves in breadth-first order
func (t *Tree[V, G]) Leaves() []*Node[V, G] {
	var leaves []*Node[V, G]
	if t.root == nil {
		return leaves
	}

	queue := []*Node[V, G]{t.root}
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]

		if node.IsLeaf() {
			leaves = append(leaves, node)
			continue
		}
		queue = append(queue, node.children...)
	}
	return leaves
}

// NodesAtDepth returns all nodes at the given depth in breadth-first order, the root being at depth 0
func (t *Tree[V, G]) NodesAtDepth(depth int) []*Node[V, G] {
	var nodes []*Node[V, G]
	if t.root == nil || depth < 0 {
		return nodes
	}

	level := []*Node[V, G]{t.root}
	for d := 0; d < depth && len(level) > 0; d++ {
		var next []*Node[V, G]
		for _, node := range level {
			next = append(next, node.children...)
		}
		level = next
	}
	return append(nodes, level...)
}

// Height returns the number of edges on the longest root-to-leaf path, -1 for an empty tree
func (t *Tree[V, G]) Height() int {
	height := -1
	t.Walk(func(_ *Node[V, G], depth int) bool {
		height = max(height, depth)
		return true
	})
	return height
}
