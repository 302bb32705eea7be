package bvh

// WorldQuery tests two hierarchies expressed in the same frame,
// typically two deformable bodies in world space.
type WorldQuery[V Volume, G, R any] struct {
	Policy WorldPolicy[V, G, R]
}

// Run traverses the pair of trees breadth-first, always splitting the larger volume.
func (q WorldQuery[V, G, R]) Run(treeA, treeB *Tree[V, G], results *[]R) {
	q.Policy.Reset(results)
	if treeA == nil || treeB == nil || treeA.Root() == nil || treeB.Root() == nil {
		return
	}

	queue := []pair[V, G]{{a: treeA.Root(), b: treeB.Root()}}
	for head := 0; head < len(queue); head++ {
		a, b := queue[head].a, queue[head].b
		queue[head] = pair[V, G]{}

		if !q.Policy.Overlap(a, b) {
			continue
		}
		if a.IsLeaf() && b.IsLeaf() {
			q.Policy.Report(a, b, results)
			continue
		}

		if splitFirst(a, b) {
			for _, child := range a.children {
				queue = append(queue, pair[V, G]{a: child, b: b})
			}
		} else {
			for _, child := range b.children {
				queue = append(queue, pair[V, G]{a: a, b: child})
			}
		}
	}
}
