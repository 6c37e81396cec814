package kernel

import (
	"github.com/chazu/grindpath"
	"github.com/chazu/grindpath/internal/meshgeom"
	"gonum.org/v1/gonum/spatial/r3"
)

// Mesh is the flat triangle-soup form a Kernel's marching-cubes backend
// produces: one vertex/normal triple per triangle corner, no sharing.
type Mesh struct {
	Vertices []float32
	Normals  []float32
	Indices  []uint32
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int { return len(m.Vertices) / 3 }

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int { return len(m.Indices) / 3 }

// IsEmpty returns true if the mesh has no geometry.
func (m *Mesh) IsEmpty() bool { return len(m.Vertices) == 0 }

// ToTrajectoryMesh welds the triangle soup into an indexed
// trajectory.Mesh with averaged, renormalized per-vertex normals —
// MeshOps' normal computation, not the kernel backend's replicated
// per-corner normals.
func (m *Mesh) ToTrajectoryMesh() trajectory.Mesh {
	numTri := m.TriangleCount()
	soup := make([][3]r3.Vec, numTri)
	for i := 0; i < numTri; i++ {
		for j := 0; j < 3; j++ {
			vi := m.Indices[i*3+j]
			soup[i][j] = r3.Vec{
				X: float64(m.Vertices[vi*3+0]),
				Y: float64(m.Vertices[vi*3+1]),
				Z: float64(m.Vertices[vi*3+2]),
			}
		}
	}
	return meshgeom.BuildIndexed(soup)
}
