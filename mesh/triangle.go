package mesh

import (
	"github.com/akmonengine/bvh/volume"
	"github.com/go-gl/mathgl/mgl64"
)

// EPSILON is the distance under which two triangles are considered touching
const EPSILON = 1e-9

// Triangle holds three corners in counter-clockwise order
type Triangle [3]mgl64.Vec3

func (t Triangle) AABB() volume.AABB {
	return volume.FitPoints(t[0], t[1], t[2])
}

// Normal returns the unit normal, zero for a degenerate triangle.
// Degeneracy is judged relative to the edge lengths, so tiny triangles keep their normal.
func (t Triangle) Normal() mgl64.Vec3 {
	n := unit(t[1].Sub(t[0])).Cross(unit(t[2].Sub(t[0])))
	if n.Len() < EPSILON {
		return mgl64.Vec3{}
	}
	return n.Normalize()
}

// unit returns v scaled to length one, zero for a zero vector
func unit(v mgl64.Vec3) mgl64.Vec3 {
	length := v.Len()
	if length == 0 {
		return mgl64.Vec3{}
	}
	return v.Mul(1 / length)
}

func (t Triangle) Transform(x volume.Transform) Triangle {
	return Triangle{x.Apply(t[0]), x.Apply(t[1]), x.Apply(t[2])}
}

// edges returns the unit edge directions
func (t Triangle) edges() [3]mgl64.Vec3 {
	return [3]mgl64.Vec3{unit(t[1].Sub(t[0])), unit(t[2].Sub(t[1])), unit(t[0].Sub(t[2]))}
}

// TrianglesIntersect runs a separating axis test between two triangles.
// Touching triangles intersect. The candidate axes are both face normals, the nine edge
// cross products, and the in-plane edge normals that separate coplanar triangles.
// Axes are built from unit edges, so parallel edges are detected the same way at any scale.
func TrianglesIntersect(a, b Triangle) bool {
	ea, eb := a.edges(), b.edges()
	na := unit(ea[0].Cross(ea[1]))
	nb := unit(eb[0].Cross(eb[1]))

	axes := make([]mgl64.Vec3, 0, 17)
	axes = append(axes, na, nb)
	for _, u := range ea {
		for _, v := range eb {
			axes = append(axes, u.Cross(v))
		}
	}
	for i := 0; i < 3; i++ {
		axes = append(axes, na.Cross(ea[i]), nb.Cross(eb[i]))
	}

	for _, axis := range axes {
		length := axis.Len()
		if length < EPSILON {
			continue
		}
		if separates(axis.Mul(1/length), a, b) {
			return false
		}
	}
	return true
}

func separates(axis mgl64.Vec3, a, b Triangle) bool {
	minA, maxA := project(axis, a)
	minB, maxB := project(axis, b)
	return maxA < minB-EPSILON || maxB < minA-EPSILON
}

func project(axis mgl64.Vec3, t Triangle) (float64, float64) {
	p0, p1, p2 := axis.Dot(t[0]), axis.Dot(t[1]), axis.Dot(t[2])
	return min(p0, p1, p2), max(p0, p1, p2)
}
