package volume

import "github.com/go-gl/mathgl/mgl64"

// Transform represents a rigid placement in 3D space
type Transform struct {
	Position mgl64.Vec3
	Rotation mgl64.Quat
}

// NewTransform creates an identity transform
func NewTransform() Transform {
	return Transform{
		Position: mgl64.Vec3{0, 0, 0},
		Rotation: mgl64.QuatIdent(),
	}
}

// Apply maps a point from the local frame into the parent frame
func (t Transform) Apply(point mgl64.Vec3) mgl64.Vec3 {
	return t.Rotation.Rotate(point).Add(t.Position)
}

// ApplyVector rotates a direction, ignoring translation
func (t Transform) ApplyVector(v mgl64.Vec3) mgl64.Vec3 {
	return t.Rotation.Rotate(v)
}

// Inverse returns the transform mapping parent coordinates back to local ones
func (t Transform) Inverse() Transform {
	inv := t.Rotation.Inverse()
	return Transform{
		Position: inv.Rotate(t.Position).Mul(-1),
		Rotation: inv,
	}
}

// Mul composes two transforms: the result applies other first, then t
func (t Transform) Mul(other Transform) Transform {
	return Transform{
		Position: t.Apply(other.Position),
		Rotation: t.Rotation.Mul(other.Rotation).Normalize(),
	}
}
