package mesh

import (
	"math"
	"slices"

	"github.com/akmonengine/bvh"
	"github.com/akmonengine/bvh/volume"
)

var (
	_ bvh.SinglePolicy[volume.AABB, int, volume.Transform, volume.AABB, int] = BoxQuery{}
	_ bvh.SinglePolicy[volume.AABB, int, volume.Transform, Triangle, int]    = TriangleQuery{}
	_ bvh.WorldPolicy[volume.AABB, int, FacePair]                            = WorldCollider{}
	_ bvh.SelfPolicy[volume.AABB, int, FacePair]                             = (*SelfCollider)(nil)
)

// FacePair is a pair of intersecting faces. For a self collision A < B.
type FacePair struct {
	A, B int
}

// BoxQuery finds the faces of a mesh whose box overlaps a query box.
// The transform maps the mesh frame into the frame of the query box.
type BoxQuery struct {
	Mesh *TriangleMesh
}

func (q BoxQuery) Reset(results *[]int) {
	*results = (*results)[:0]
}

func (q BoxQuery) Overlap(xform volume.Transform, node *Node, box volume.AABB) bool {
	return node.Volume.Transform(xform).Overlaps(box)
}

func (q BoxQuery) Report(xform volume.Transform, leaf *Node, box volume.AABB, results *[]int) {
	for _, f := range leaf.Geometry() {
		if q.Mesh.Triangle(f).Transform(xform).AABB().Overlaps(box) {
			*results = append(*results, f)
		}
	}
}

// TriangleQuery finds the faces of a mesh intersecting a triangle
// given in the frame the transform maps the mesh into.
type TriangleQuery struct {
	Mesh *TriangleMesh
}

func (q TriangleQuery) Reset(results *[]int) {
	*results = (*results)[:0]
}

func (q TriangleQuery) Overlap(xform volume.Transform, node *Node, t Triangle) bool {
	return node.Volume.Transform(xform).Overlaps(t.AABB())
}

func (q TriangleQuery) Report(xform volume.Transform, leaf *Node, t Triangle, results *[]int) {
	for _, f := range leaf.Geometry() {
		if TrianglesIntersect(q.Mesh.Triangle(f).Transform(xform), t) {
			*results = append(*results, f)
		}
	}
}

// WorldCollider finds intersecting faces between two meshes in the same frame.
// Results hold faces of A in FacePair.A and faces of B in FacePair.B.
type WorldCollider struct {
	A, B *TriangleMesh
}

func (c WorldCollider) Reset(results *[]FacePair) {
	*results = (*results)[:0]
}

func (c WorldCollider) Overlap(a, b *Node) bool {
	return a.Volume.Overlaps(b.Volume)
}

func (c WorldCollider) Report(a, b *Node, results *[]FacePair) {
	reportFaces(c.A, c.B, a.Geometry(), b.Geometry(), results)
}

func reportFaces(ma, mb *TriangleMesh, facesA, facesB []int, results *[]FacePair) {
	for _, fa := range facesA {
		for _, fb := range facesB {
			if TrianglesIntersect(ma.Triangle(fa), mb.Triangle(fb)) {
				*results = append(*results, FacePair{A: fa, B: fb})
			}
		}
	}
}

// SelfCollider finds intersecting non neighbouring faces of a single mesh.
//
// Two subtrees are adjacent when they share a vertex. A subtree is flat when the cone
// bounding its face normals has a half angle below MaxAngle, π/2 when zero.
// Cones and vertex sets are computed once per node and dropped on Reset.
type SelfCollider struct {
	Mesh     *TriangleMesh
	MaxAngle float64

	cones    map[*Node]cone
	vertices map[*Node][]int
}

func NewSelfCollider(mesh *TriangleMesh) *SelfCollider {
	return &SelfCollider{Mesh: mesh}
}

func (c *SelfCollider) Reset(results *[]FacePair) {
	*results = (*results)[:0]
	clear(c.cones)
	clear(c.vertices)
}

func (c *SelfCollider) Overlap(a, b *Node) bool {
	return a.Volume.Overlaps(b.Volume)
}

func (c *SelfCollider) Report(a, b *Node, results *[]FacePair) {
	for _, fa := range a.Geometry() {
		for _, fb := range b.Geometry() {
			if fa == fb || c.Mesh.SharesVertex(fa, fb) {
				continue
			}
			if TrianglesIntersect(c.Mesh.Triangle(fa), c.Mesh.Triangle(fb)) {
				*results = append(*results, FacePair{A: min(fa, fb), B: max(fa, fb)})
			}
		}
	}
}

func (c *SelfCollider) Adjacent(a, b *Node) bool {
	va, vb := c.vertexSet(a), c.vertexSet(b)
	i, j := 0, 0
	for i < len(va) && j < len(vb) {
		switch {
		case va[i] == vb[j]:
			return true
		case va[i] < vb[j]:
			i++
		default:
			j++
		}
	}
	return false
}

func (c *SelfCollider) Curvature(node *Node) bool {
	return c.flat(c.cone(node))
}

func (c *SelfCollider) CurvaturePair(a, b *Node) bool {
	return c.flat(c.cone(a).merge(c.cone(b)))
}

func (c *SelfCollider) flat(k cone) bool {
	limit := c.MaxAngle
	if limit <= 0 {
		limit = math.Pi / 2
	}
	return k.angle < limit
}

func (c *SelfCollider) cone(node *Node) cone {
	if k, ok := c.cones[node]; ok {
		return k
	}
	if c.cones == nil {
		c.cones = make(map[*Node]cone)
	}

	var k cone
	first := true
	add := func(o cone) {
		if first {
			k, first = o, false
			return
		}
		k = k.merge(o)
	}
	for _, f := range node.Geometry() {
		add(normalCone(c.Mesh.FaceNormal(f)))
	}
	for _, child := range node.Children() {
		add(c.cone(child))
	}
	if first {
		k = fullCone
	}

	c.cones[node] = k
	return k
}

// vertexSet returns the sorted vertex indices used below node
func (c *SelfCollider) vertexSet(node *Node) []int {
	if v, ok := c.vertices[node]; ok {
		return v
	}
	if c.vertices == nil {
		c.vertices = make(map[*Node][]int)
	}

	var set []int
	for _, f := range node.Geometry() {
		set = append(set, c.Mesh.Faces[f][:]...)
	}
	for _, child := range node.Children() {
		set = append(set, c.vertexSet(child)...)
	}
	slices.Sort(set)
	set = slices.Compact(set)

	c.vertices[node] = set
	return set
}
