package construct

import (
	"github.com/akmonengine/bvh"
	"github.com/tidwall/btree"
)

type priorityEntry struct {
	priority float64
	size     int
	edge     EdgeID
}

// lower growth first, then smaller merged subtrees, then the oldest edge
func lessPriority(a, b priorityEntry) bool {
	if a.priority != b.priority {
		return a.priority < b.priority
	}
	if a.size != b.size {
		return a.size < b.size
	}
	return a.edge < b.edge
}

// PriorityPolicy merges first the edge whose merged volume grows the least over the
// larger of its two endpoint volumes. Ties go to the smaller merged subtree, then to the
// lower edge id, which keeps construction deterministic.
//
// A BV node is created once a graph node has gathered Degree sub-nodes, or when it has
// no edge left to merge along.
type PriorityPolicy[V bvh.Volume, G any] struct {
	fit     FitFunc[V, G]
	measure func(V) float64
	degree  int

	graph   *Graph[V, G]
	queue   *btree.BTreeG[priorityEntry]
	entries map[EdgeID]priorityEntry
}

// NewPriorityPolicy returns a policy fitting volumes with fit.
// measure defaults to V.Measure when nil.
func NewPriorityPolicy[V bvh.Volume, G any](fit FitFunc[V, G], measure func(V) float64, cfg Config) *PriorityPolicy[V, G] {
	if measure == nil {
		measure = func(v V) float64 { return v.Measure() }
	}
	degree := cfg.Degree
	if degree < 2 {
		degree = DEFAULT_DEGREE
	}

	return &PriorityPolicy[V, G]{
		fit:     fit,
		measure: measure,
		degree:  degree,
		queue:   btree.NewBTreeGOptions(lessPriority, btree.Options{NoLocks: true}),
		entries: make(map[EdgeID]priorityEntry),
	}
}

func (p *PriorityPolicy[V, G]) Init(graph *Graph[V, G]) {
	p.graph = graph
	p.queue.Clear()
	clear(p.entries)

	for _, e := range graph.Edges() {
		p.push(e)
	}
}

// MoreEdges drops queued edges removed by earlier collapses and reports if any remains
func (p *PriorityPolicy[V, G]) MoreEdges() bool {
	for {
		top, ok := p.queue.Min()
		if !ok {
			return false
		}
		if p.graph.EdgeAlive(top.edge) {
			return true
		}
		p.queue.Delete(top)
		delete(p.entries, top.edge)
	}
}

func (p *PriorityPolicy[V, G]) NextEdge() EdgeID {
	if !p.MoreEdges() {
		panic("construct: NextEdge on an empty queue")
	}
	top, _ := p.queue.PopMin()
	delete(p.entries, top.edge)
	return top.edge
}

func (p *PriorityPolicy[V, G]) ShouldCreateBV(node NodeID) bool {
	return len(p.graph.SubNodes(node)) >= p.degree || len(p.graph.IncidentEdges(node)) == 0
}

func (p *PriorityPolicy[V, G]) Fit(geometry []G, volumes []V) V {
	return p.fit(geometry, volumes)
}

func (p *PriorityPolicy[V, G]) Update(node NodeID) {
	p.UpdatePriorities(node)
}

// UpdatePriorities recomputes the priority of every edge incident to node.
// After a collapse these are the only edges whose endpoints changed.
func (p *PriorityPolicy[V, G]) UpdatePriorities(node NodeID) {
	for _, e := range p.graph.IncidentEdges(node) {
		if old, ok := p.entries[e]; ok {
			p.queue.Delete(old)
		}
		p.push(e)
	}
}

// Priority returns the volume growth caused by collapsing the edge
func (p *PriorityPolicy[V, G]) Priority(edge EdgeID) float64 {
	a, b := p.graph.Endpoints(edge)
	va, vb := p.graph.Volume(a), p.graph.Volume(b)

	merged := p.fit(nil, []V{va, vb})
	return p.measure(merged) - max(p.measure(va), p.measure(vb))
}

func (p *PriorityPolicy[V, G]) push(edge EdgeID) {
	a, b := p.graph.Endpoints(edge)
	entry := priorityEntry{
		priority: p.Priority(edge),
		size:     p.graph.SubtreeSize(a) + p.graph.SubtreeSize(b),
		edge:     edge,
	}
	p.queue.Set(entry)
	p.entries[edge] = entry
}
