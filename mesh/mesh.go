// Package mesh is the triangle surface side of the hierarchy: it seeds the construction
// graph from face adjacency, fits face boxes and supplies the collision policies run by
// the bvh queries.
package mesh

import (
	"errors"
	"fmt"
	"slices"

	"github.com/akmonengine/bvh"
	"github.com/akmonengine/bvh/construct"
	"github.com/akmonengine/bvh/volume"
	"github.com/charmbracelet/log"
	"github.com/go-gl/mathgl/mgl64"
)

// Tree is a hierarchy of face boxes, its leaves hold face indices
type Tree = bvh.Tree[volume.AABB, int]

// Node is a node of a Tree
type Node = bvh.Node[volume.AABB, int]

var ErrInvalidFace = errors.New("mesh: invalid face")

// TriangleMesh is an indexed triangle surface
type TriangleMesh struct {
	Vertices []mgl64.Vec3
	Faces    [][3]int
}

// Validate checks that every face references three distinct existing vertices
func (m *TriangleMesh) Validate() error {
	for i, f := range m.Faces {
		for _, v := range f {
			if v < 0 || v >= len(m.Vertices) {
				return fmt.Errorf("%w: face %d references vertex %d of %d", ErrInvalidFace, i, v, len(m.Vertices))
			}
		}
		if f[0] == f[1] || f[1] == f[2] || f[0] == f[2] {
			return fmt.Errorf("%w: face %d repeats a vertex", ErrInvalidFace, i)
		}
	}
	return nil
}

func (m *TriangleMesh) FaceCount() int {
	return len(m.Faces)
}

// Triangle returns the corners of face i
func (m *TriangleMesh) Triangle(i int) Triangle {
	f := m.Faces[i]
	return Triangle{m.Vertices[f[0]], m.Vertices[f[1]], m.Vertices[f[2]]}
}

func (m *TriangleMesh) FaceAABB(i int) volume.AABB {
	return m.Triangle(i).AABB()
}

// FaceNormal returns the unit normal of face i, zero for a degenerate face
func (m *TriangleMesh) FaceNormal(i int) mgl64.Vec3 {
	return m.Triangle(i).Normal()
}

// SharesVertex reports whether faces i and j have a common vertex index
func (m *TriangleMesh) SharesVertex(i, j int) bool {
	for _, a := range m.Faces[i] {
		for _, b := range m.Faces[j] {
			if a == b {
				return true
			}
		}
	}
	return false
}

// EdgeAdjacency returns the pairs of faces sharing an edge, sorted, each as {lower, higher}
func (m *TriangleMesh) EdgeAdjacency() [][2]int {
	faces := make(map[[2]int][]int, len(m.Faces)*3/2)
	for i, f := range m.Faces {
		for k := 0; k < 3; k++ {
			a, b := f[k], f[(k+1)%3]
			key := [2]int{min(a, b), max(a, b)}
			faces[key] = append(faces[key], i)
		}
	}

	var pairs [][2]int
	for _, shared := range faces {
		for x := 0; x < len(shared); x++ {
			for y := x + 1; y < len(shared); y++ {
				pairs = append(pairs, [2]int{min(shared[x], shared[y]), max(shared[x], shared[y])})
			}
		}
	}
	slices.SortFunc(pairs, func(p, q [2]int) int {
		if p[0] != q[0] {
			return p[0] - q[0]
		}
		return p[1] - q[1]
	})
	return slices.Compact(pairs)
}

// FitAABB is the fit function of the construction: the box enclosing the given faces and boxes
func (m *TriangleMesh) FitAABB(faces []int, boxes []volume.AABB) volume.AABB {
	box := volume.FitAABBs(boxes...)
	for _, i := range faces {
		box = box.Union(m.FaceAABB(i))
	}
	return box
}

// Graph seeds a construction graph with one node per face and one edge per shared mesh edge.
// Disconnected pieces are chained through their lowest face so construction ends on a single root.
func (m *TriangleMesh) Graph() *construct.Graph[volume.AABB, int] {
	return seedGraph(m, m.FaceAABB)
}

func seedGraph[V bvh.Volume](m *TriangleMesh, leaf func(face int) V) *construct.Graph[V, int] {
	g := construct.NewGraph[V, int]()
	for i := range m.Faces {
		g.InsertNode(leaf(i), i)
	}

	adjacency := m.EdgeAdjacency()
	for _, p := range adjacency {
		g.InsertEdge(construct.NodeID(p[0]), construct.NodeID(p[1]))
	}

	roots := components(len(m.Faces), adjacency)
	for k := 1; k < len(roots); k++ {
		g.InsertEdge(construct.NodeID(roots[k-1]), construct.NodeID(roots[k]))
	}
	return g
}

// Build constructs the face hierarchy with the default priority policy.
// Priorities use the box surface area so flat patches still order correctly.
func (m *TriangleMesh) Build(cfg construct.Config, logger *log.Logger) (*Tree, error) {
	return buildTree(m, m.FaceAABB, m.FitAABB, volume.AABB.SurfaceArea, cfg, logger)
}

func buildTree[V bvh.Volume](m *TriangleMesh, leaf func(int) V, fit construct.FitFunc[V, int], measure func(V) float64, cfg construct.Config, logger *log.Logger) (*bvh.Tree[V, int], error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}

	c := construct.NewConstructor[V, int](fit, measure, cfg)
	c.Logger = logger

	tree := bvh.NewTree[V, int]()
	if err := c.Run(seedGraph(m, leaf), tree); err != nil {
		return nil, fmt.Errorf("mesh: build hierarchy: %w", err)
	}
	return tree, nil
}

// components labels the faces by connected piece and returns the lowest face of each piece
func components(n int, adjacency [][2]int) []int {
	neighbors := make([][]int, n)
	for _, p := range adjacency {
		neighbors[p[0]] = append(neighbors[p[0]], p[1])
		neighbors[p[1]] = append(neighbors[p[1]], p[0])
	}

	seen := make([]bool, n)
	var roots []int
	var stack []int
	for i := 0; i < n; i++ {
		if seen[i] {
			continue
		}
		roots = append(roots, i)
		seen[i] = true
		stack = append(stack[:0], i)
		for len(stack) > 0 {
			f := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			for _, o := range neighbors[f] {
				if !seen[o] {
					seen[o] = true
					stack = append(stack, o)
				}
			}
		}
	}
	return roots
}
