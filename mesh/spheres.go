package mesh

import (
	"github.com/akmonengine/bvh"
	"github.com/akmonengine/bvh/construct"
	"github.com/akmonengine/bvh/volume"
	"github.com/charmbracelet/log"
)

var (
	_ bvh.SinglePolicy[volume.Sphere, int, volume.Transform, volume.AABB, int] = SphereBoxQuery{}
	_ bvh.WorldPolicy[volume.Sphere, int, FacePair]                            = SphereCollider{}
)

// SphereTree is a hierarchy of bounding spheres over the faces of a mesh
type SphereTree = bvh.Tree[volume.Sphere, int]

// SphereNode is a node of a SphereTree
type SphereNode = bvh.Node[volume.Sphere, int]

// FaceSphere returns the sphere circumscribing the box of face i
func (m *TriangleMesh) FaceSphere(i int) volume.Sphere {
	return volume.SphereFromAABB(m.FaceAABB(i))
}

// FitSphere is the construct.FitFunc of sphere hierarchies
func (m *TriangleMesh) FitSphere(faces []int, spheres []volume.Sphere) volume.Sphere {
	all := make([]volume.Sphere, 0, len(faces)+len(spheres))
	all = append(all, spheres...)
	for _, i := range faces {
		all = append(all, m.FaceSphere(i))
	}
	return volume.FitSpheres(all...)
}

// BuildSpheres constructs a sphere hierarchy over the faces.
// Sphere volume never vanishes, so it orders the merges directly.
func (m *TriangleMesh) BuildSpheres(cfg construct.Config, logger *log.Logger) (*SphereTree, error) {
	return buildTree(m, m.FaceSphere, m.FitSphere, volume.Sphere.Measure, cfg, logger)
}

// SphereBoxQuery finds the faces of a mesh whose box overlaps a query box, pruning with
// a sphere hierarchy. The transform maps the mesh frame into the frame of the query box.
type SphereBoxQuery struct {
	Mesh *TriangleMesh
}

func (q SphereBoxQuery) Reset(results *[]int) {
	*results = (*results)[:0]
}

func (q SphereBoxQuery) Overlap(xform volume.Transform, node *SphereNode, box volume.AABB) bool {
	return node.Volume.Transform(xform).OverlapsAABB(box)
}

func (q SphereBoxQuery) Report(xform volume.Transform, leaf *SphereNode, box volume.AABB, results *[]int) {
	for _, f := range leaf.Geometry() {
		if q.Mesh.Triangle(f).Transform(xform).AABB().Overlaps(box) {
			*results = append(*results, f)
		}
	}
}

// SphereCollider is WorldCollider over sphere hierarchies
type SphereCollider struct {
	A, B *TriangleMesh
}

func (c SphereCollider) Reset(results *[]FacePair) {
	*results = (*results)[:0]
}

func (c SphereCollider) Overlap(a, b *SphereNode) bool {
	return a.Volume.Overlaps(b.Volume)
}

func (c SphereCollider) Report(a, b *SphereNode, results *[]FacePair) {
	reportFaces(c.A, c.B, a.Geometry(), b.Geometry(), results)
}
