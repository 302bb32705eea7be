package scene

import (
	"fmt"

	"github.com/akmonengine/bvh/construct"
	"github.com/akmonengine/bvh/mesh"
	"github.com/akmonengine/bvh/volume"
	"github.com/charmbracelet/log"
)

// Body is a triangle surface in world space with its face hierarchy.
// The hierarchy is not refitted: call Rebuild once the vertices have moved.
type Body struct {
	Id   any
	Mesh *mesh.TriangleMesh
	Tree *mesh.Tree
	// SelfCollision enables the self intersection test of the surface
	SelfCollision bool
	// MaxAngle is the normal cone half angle under which a patch is considered flat
	MaxAngle float64
}

// NewBody builds the hierarchy of m
func NewBody(m *mesh.TriangleMesh, cfg construct.Config, logger *log.Logger) (*Body, error) {
	b := &Body{Mesh: m}
	if err := b.Rebuild(cfg, logger); err != nil {
		return nil, err
	}
	return b, nil
}

// Rebuild constructs the hierarchy again from the current vertices
func (b *Body) Rebuild(cfg construct.Config, logger *log.Logger) error {
	tree, err := b.Mesh.Build(cfg, logger)
	if err != nil {
		return fmt.Errorf("scene: body %v: %w", b.Id, err)
	}
	b.Tree = tree
	return nil
}

// AABB returns the root box, empty for a body without faces
func (b *Body) AABB() volume.AABB {
	if b.Tree == nil || b.Tree.Root() == nil {
		return volume.EmptyAABB()
	}
	return b.Tree.Root().Volume
}
