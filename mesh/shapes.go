package mesh

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Grid returns a flat nx*ny quad grid of the given cell size in the XZ plane, two faces per quad.
// Faces are ordered row by row.
func Grid(nx, ny int, size float64) *TriangleMesh {
	m := &TriangleMesh{
		Vertices: make([]mgl64.Vec3, 0, (nx+1)*(ny+1)),
		Faces:    make([][3]int, 0, 2*nx*ny),
	}
	for j := 0; j <= ny; j++ {
		for i := 0; i <= nx; i++ {
			m.Vertices = append(m.Vertices, mgl64.Vec3{float64(i) * size, 0, float64(j) * size})
		}
	}

	row := nx + 1
	for j := 0; j < ny; j++ {
		for i := 0; i < nx; i++ {
			v := j*row + i
			m.Faces = append(m.Faces,
				[3]int{v, v + row, v + 1},
				[3]int{v + 1, v + row, v + row + 1},
			)
		}
	}
	return m
}

// Fold bends a copy of the mesh around the line x = pivot, rotating the part beyond it by
// angle radians around the Z axis. Angle π lays the far half back over the near half.
func Fold(m *TriangleMesh, pivot, angle float64) *TriangleMesh {
	out := &TriangleMesh{
		Vertices: make([]mgl64.Vec3, len(m.Vertices)),
		Faces:    append([][3]int(nil), m.Faces...),
	}
	sin, cos := math.Sincos(angle)
	for i, v := range m.Vertices {
		dx := v.X() - pivot
		if dx <= 0 {
			out.Vertices[i] = v
			continue
		}
		out.Vertices[i] = mgl64.Vec3{pivot + dx*cos, v.Y() + dx*sin, v.Z()}
	}
	return out
}

// Translate returns a copy of the mesh moved by offset
func Translate(m *TriangleMesh, offset mgl64.Vec3) *TriangleMesh {
	out := &TriangleMesh{
		Vertices: make([]mgl64.Vec3, len(m.Vertices)),
		Faces:    append([][3]int(nil), m.Faces...),
	}
	for i, v := range m.Vertices {
		out.Vertices[i] = v.Add(offset)
	}
	return out
}
