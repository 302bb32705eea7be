package mesh

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// cone bounds a set of unit normals: every normal is within angle of axis
type cone struct {
	axis  mgl64.Vec3
	angle float64
}

var fullCone = cone{angle: math.Pi}

func normalCone(n mgl64.Vec3) cone {
	if n.LenSqr() == 0 {
		return fullCone
	}
	return cone{axis: n}
}

func (c cone) full() bool {
	return c.angle >= math.Pi
}

// merge returns a cone bounding both cones
func (c cone) merge(o cone) cone {
	if c.full() || o.full() {
		return fullCone
	}

	theta := math.Acos(mgl64.Clamp(c.axis.Dot(o.axis), -1, 1))
	if theta+o.angle <= c.angle {
		return c
	}
	if theta+c.angle <= o.angle {
		return o
	}

	angle := (c.angle + theta + o.angle) / 2
	if angle >= math.Pi || theta > math.Pi-1e-9 {
		return fullCone
	}

	// Rotate c.axis towards o.axis so both cones fit
	t := (angle - c.angle) / theta
	sinTheta := math.Sin(theta)
	axis := c.axis.Mul(math.Sin((1-t)*theta) / sinTheta).Add(o.axis.Mul(math.Sin(t*theta) / sinTheta))
	return cone{axis: axis.Normalize(), angle: angle}
}
