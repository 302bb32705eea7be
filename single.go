package bvh

// SingleQuery tests one hierarchy against an external geometry placed by a coordinate transform.
type SingleQuery[V Volume, G, X, Q, R any] struct {
	Policy SinglePolicy[V, G, X, Q, R]
}

// Run visits the tree breadth-first, pruning every node the policy does not overlap,
// and reports each reached leaf once.
func (q SingleQuery[V, G, X, Q, R]) Run(xform X, tree *Tree[V, G], geometry Q, results *[]R) {
	q.Policy.Reset(results)
	if tree == nil || tree.Root() == nil {
		return
	}

	queue := []*Node[V, G]{tree.Root()}
	for head := 0; head < len(queue); head++ {
		node := queue[head]
		queue[head] = nil

		if !q.Policy.Overlap(xform, node, geometry) {
			continue
		}
		if node.IsLeaf() {
			q.Policy.Report(xform, node, geometry, results)
			continue
		}
		queue = append(queue, node.children...)
	}
}
