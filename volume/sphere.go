package volume

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Sphere represents a bounding sphere
type Sphere struct {
	Center mgl64.Vec3
	Radius float64
}

// SphereFromAABB returns the sphere circumscribing the box
func SphereFromAABB(box AABB) Sphere {
	if box.IsEmpty() {
		return Sphere{}
	}
	return Sphere{
		Center: box.Center(),
		Radius: box.Extents().Len() / 2,
	}
}

// Overlaps checks if two spheres intersect or touch
func (s Sphere) Overlaps(other Sphere) bool {
	r := s.Radius + other.Radius
	return s.Center.Sub(other.Center).LenSqr() <= r*r
}

// OverlapsAABB checks if the sphere touches the box
func (s Sphere) OverlapsAABB(box AABB) bool {
	var closest mgl64.Vec3
	for i := 0; i < 3; i++ {
		closest[i] = math.Max(box.Min[i], math.Min(s.Center[i], box.Max[i]))
	}
	return closest.Sub(s.Center).LenSqr() <= s.Radius*s.Radius
}

// Measure returns the sphere volume
func (s Sphere) Measure() float64 {
	return (4.0 / 3.0) * math.Pi * math.Pow(s.Radius, 3)
}

// Transform moves the sphere, the radius is invariant under rigid motion
func (s Sphere) Transform(t Transform) Sphere {
	return Sphere{Center: t.Apply(s.Center), Radius: s.Radius}
}

// Merge returns the smallest sphere enclosing both spheres
func (s Sphere) Merge(other Sphere) Sphere {
	d := other.Center.Sub(s.Center)
	dist := d.Len()

	// One sphere already encloses the other
	if dist+other.Radius <= s.Radius {
		return s
	}
	if dist+s.Radius <= other.Radius {
		return other
	}

	radius := (dist + s.Radius + other.Radius) / 2
	center := s.Center.Add(d.Mul((radius - s.Radius) / dist))
	return Sphere{Center: center, Radius: radius}
}

// FitSpheres returns a sphere enclosing all given spheres.
// It is not the minimal sphere, only a conservative incremental merge.
func FitSpheres(spheres ...Sphere) Sphere {
	if len(spheres) == 0 {
		return Sphere{}
	}
	out := spheres[0]
	for _, s := range spheres[1:] {
		out = out.Merge(s)
	}
	return out
}
