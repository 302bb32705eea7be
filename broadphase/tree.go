package broadphase

import (
	"fmt"

	"github.com/akmonengine/bvh"
	"github.com/akmonengine/bvh/construct"
	"github.com/akmonengine/bvh/volume"
	"github.com/charmbracelet/log"
)

// BoxTree is a hierarchy of body boxes, its leaves hold body indices
type BoxTree = bvh.Tree[volume.AABB, int]

// BuildTree builds a hierarchy over the boxes with the default priority policy.
// Every pair of boxes is a merge candidate, which suits scenes of a few hundred bodies.
// Empty boxes are left out.
func BuildTree(boxes []volume.AABB, cfg construct.Config, logger *log.Logger) (*BoxTree, error) {
	graph := construct.NewGraph[volume.AABB, int]()
	var nodes []construct.NodeID
	for i, box := range boxes {
		if box.IsEmpty() {
			continue
		}
		nodes = append(nodes, graph.InsertNode(box, i))
	}
	for i := range nodes {
		for j := i + 1; j < len(nodes); j++ {
			graph.InsertEdge(nodes[i], nodes[j])
		}
	}

	fit := func(indices []int, children []volume.AABB) volume.AABB {
		box := volume.FitAABBs(children...)
		for _, i := range indices {
			box = box.Union(boxes[i])
		}
		return box
	}
	c := construct.NewConstructor[volume.AABB, int](fit, volume.AABB.SurfaceArea, cfg)
	c.Logger = logger

	tree := bvh.NewTree[volume.AABB, int]()
	if err := c.Run(graph, tree); err != nil {
		return nil, fmt.Errorf("broadphase: build box tree: %w", err)
	}
	return tree, nil
}

// FindPairsTree returns the overlapping pairs of boxes using a box tree queried against itself
func FindPairsTree(tree *BoxTree, boxes []volume.AABB, policy *StampedPolicy, results *[]Pair) {
	query := bvh.WorldQuery[volume.AABB, int, Pair]{Policy: &TreePolicy{Boxes: boxes, Stamped: policy}}
	query.Run(tree, tree, results)
}
