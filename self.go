package bvh

// SelfQuery finds colliding leaf pairs of a single hierarchy, taken from different subtrees.
// It is used for self-intersection of deformable surfaces.
//
// In 2D the curvature test is a flatness test: a surface not bent enough to fold onto
// itself passes. For volumetric meshes the policy may supply any equivalent criterion.
type SelfQuery[V Volume, G, R any] struct {
	Policy SelfPolicy[V, G, R]
}

// Run resets the policy and tests the tree against itself
func (q SelfQuery[V, G, R]) Run(tree *Tree[V, G], results *[]R) {
	q.Policy.Reset(results)
	if tree == nil || tree.Root() == nil {
		return
	}
	q.selfTest(tree.Root(), results)
}

func (q SelfQuery[V, G, R]) selfTest(node *Node[V, G], results *[]R) {
	if node.IsLeaf() {
		return
	}
	if q.Policy.Curvature(node) {
		return
	}

	children := node.children
	for i, child := range children {
		q.selfTest(child, results)
		for _, sibling := range children[i+1:] {
			q.Tandem(child, sibling, results)
		}
	}
}

// Tandem tests two sibling subtrees against each other. It does not reset the policy.
//
// Pairs descending from the initial pair stay flagged adjacent while the policy finds
// them adjacent. An adjacent pair passing the pair curvature test is pruned, which drops
// neighbouring flat patches. Once a pair is found non adjacent, its whole branch uses
// plain overlap pruning.
func (q SelfQuery[V, G, R]) Tandem(a, b *Node[V, G], results *[]R) {
	queue := []pair[V, G]{{a: a, b: b, adjacent: true}}
	for head := 0; head < len(queue); head++ {
		p := queue[head]
		queue[head] = pair[V, G]{}

		if !q.Policy.Overlap(p.a, p.b) {
			continue
		}
		adjacent := p.adjacent
		if adjacent {
			adjacent = q.Policy.Adjacent(p.a, p.b)
			if adjacent && q.Policy.CurvaturePair(p.a, p.b) {
				continue
			}
		}

		if p.a.IsLeaf() && p.b.IsLeaf() {
			q.Policy.Report(p.a, p.b, results)
			continue
		}

		if splitFirst(p.a, p.b) {
			for _, child := range p.a.children {
				queue = append(queue, pair[V, G]{a: child, b: p.b, adjacent: adjacent})
			}
		} else {
			for _, child := range p.b.children {
				queue = append(queue, pair[V, G]{a: p.a, b: child, adjacent: adjacent})
			}
		}
	}
}
