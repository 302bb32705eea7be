package construct

import (
	"fmt"

	"github.com/akmonengine/bvh"
	"github.com/charmbracelet/log"
)

// Constructor is a graph-based deterministic bottom-up BVH construction algorithm.
// Given the same graph and a deterministic policy, Run always produces the same tree.
type Constructor[V bvh.Volume, G any] struct {
	Policy Policy[V, G]
	Config Config
	// Logger defaults to log.Default()
	Logger *log.Logger
}

// NewConstructor returns a constructor using the default priority policy
func NewConstructor[V bvh.Volume, G any](fit FitFunc[V, G], measure func(V) float64, cfg Config) *Constructor[V, G] {
	return &Constructor[V, G]{
		Policy: NewPriorityPolicy(fit, measure, cfg),
		Config: cfg,
	}
}

// Run consumes graph and stores the resulting hierarchy in tree.
//
// The nodes of graph become the leaves of tree and its edges are the merges allowed
// during construction. The graph is cleared on return, also on error. On error the tree
// is cleared as well.
func (c *Constructor[V, G]) Run(graph *Graph[V, G], tree *bvh.Tree[V, G]) error {
	logger := c.Logger
	if logger == nil {
		logger = log.Default()
	}
	defer graph.Clear()

	tree.Clear()

	// Create the leaf BVs
	for _, id := range graph.Nodes() {
		if coverage := graph.Coverage(id); len(coverage) > 0 {
			graph.SetVolume(id, c.Policy.Fit(coverage, nil))
		}
		graph.materialize(id, tree)
	}
	leaves := graph.NodeCount()
	if leaves == 0 {
		return nil
	}

	limit := c.Config.MaxIterations
	if limit <= 0 {
		limit = leaves
	}

	c.Policy.Init(graph)

	// Merge leaves into parents until only a single root exists
	collapses := 0
	for c.Policy.MoreEdges() {
		if collapses >= limit {
			tree.Clear()
			return fmt.Errorf("%w: %d collapses over %d leaves", ErrIterationLimit, collapses, leaves)
		}

		node := graph.Collapse(c.Policy.NextEdge())
		collapses++

		graph.SetVolume(node, c.Policy.Fit(graph.Coverage(node), graph.subVolumes(node)))

		if c.Policy.ShouldCreateBV(node) {
			graph.materialize(node, tree)
			graph.RemoveSubNodes(node)
		}
		c.Policy.Update(node)
	}

	roots := graph.Nodes()
	if len(roots) != 1 || graph.BV(roots[0]) == nil {
		tree.Clear()
		return fmt.Errorf("%w: %d nodes left after %d collapses", ErrIncomplete, len(roots), collapses)
	}
	tree.SetRoot(graph.BV(roots[0]))

	logger.Debug("bottom-up construction finished", "leaves", leaves, "nodes", tree.Size(), "collapses", collapses)
	return nil
}
