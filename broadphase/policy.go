package broadphase

import (
	"github.com/akmonengine/bvh"
	"github.com/akmonengine/bvh/volume"
)

// StampedPolicy filters the candidates of a broad phase pass.
//
// Two boxes sharing several cells are reported as candidates once per cell. Every pass
// has its own time stamp and a pair already stamped with it is skipped, so each
// overlapping pair is reported once per pass.
type StampedPolicy struct {
	stamp  uint64
	stamps map[Pair]uint64
}

func NewStampedPolicy() *StampedPolicy {
	return &StampedPolicy{stamps: make(map[Pair]uint64)}
}

// Reset starts a new pass
func (p *StampedPolicy) Reset(results *[]Pair) {
	*results = (*results)[:0]
	p.stamp++
}

func (p *StampedPolicy) Stamp() uint64 {
	return p.stamp
}

// Report appends the pair (a, b) when a < b, it is not stamped yet and the boxes overlap
func (p *StampedPolicy) Report(a, b int, boxes []volume.AABB, results *[]Pair) {
	if a == b || a > b {
		return
	}
	key := Pair{A: a, B: b}
	if stamp, ok := p.stamps[key]; ok && stamp == p.stamp {
		return
	}
	if boxes[a].Overlaps(boxes[b]) {
		if p.stamps == nil {
			p.stamps = make(map[Pair]uint64)
		}
		p.stamps[key] = p.stamp
		*results = append(*results, key)
	}
}

// Forget drops the stamps of every pair involving index
func (p *StampedPolicy) Forget(index int) {
	for key := range p.stamps {
		if key.A == index || key.B == index {
			delete(p.stamps, key)
		}
	}
}

var _ bvh.WorldPolicy[volume.AABB, int, Pair] = (*TreePolicy)(nil)

// TreePolicy runs the stamped filter as a bvh world query over a tree of body boxes,
// the leaves holding body indices. Querying the tree against itself yields every
// overlapping pair once.
type TreePolicy struct {
	Boxes   []volume.AABB
	Stamped *StampedPolicy
}

func (p *TreePolicy) Reset(results *[]Pair) {
	p.Stamped.Reset(results)
}

func (p *TreePolicy) Overlap(a, b *bvh.Node[volume.AABB, int]) bool {
	return a.Volume.Overlaps(b.Volume)
}

func (p *TreePolicy) Report(a, b *bvh.Node[volume.AABB, int], results *[]Pair) {
	for _, ia := range a.Geometry() {
		for _, ib := range b.Geometry() {
			p.Stamped.Report(min(ia, ib), max(ia, ib), p.Boxes, results)
		}
	}
}
