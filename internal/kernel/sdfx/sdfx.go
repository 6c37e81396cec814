// Package sdfx implements the kernel.Kernel interface using the
// github.com/deadsy/sdfx SDF-based CAD library. The Cylinder primitive
// drops the segment count a polygonal mesher would need (SDFs render
// smooth surfaces regardless), and ToMesh's tessellation resolution is
// tuned down for small test fixtures instead of production-quality
// export meshes.
package sdfx

import (
	"fmt"
	"math"

	"github.com/chazu/grindpath/internal/kernel"
	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

var _ kernel.Kernel = (*SdfxKernel)(nil)

// meshCells controls marching-cubes tessellation resolution for the
// small primitive fixtures this package builds.
const meshCells = 80

type sdfxSolid struct {
	s sdf.SDF3
}

func (s *sdfxSolid) BoundingBox() (min, max [3]float64) {
	bb := s.s.BoundingBox()
	return [3]float64{bb.Min.X, bb.Min.Y, bb.Min.Z}, [3]float64{bb.Max.X, bb.Max.Y, bb.Max.Z}
}

// SdfxKernel implements kernel.Kernel using sdfx.
type SdfxKernel struct{}

// New returns a new SdfxKernel.
func New() *SdfxKernel { return &SdfxKernel{} }

func unwrap(s kernel.Solid) sdf.SDF3 { return s.(*sdfxSolid).s }
func wrap(s sdf.SDF3) kernel.Solid   { return &sdfxSolid{s: s} }

// Box creates a box with the given dimensions, its minimum corner at
// the origin.
func (k *SdfxKernel) Box(x, y, z float64) kernel.Solid {
	s, err := sdf.Box3D(v3.Vec{X: x, Y: y, Z: z}, 0)
	if err != nil {
		panic(fmt.Sprintf("sdfx.Box3D: %v", err))
	}
	m := sdf.Translate3d(v3.Vec{X: x / 2, Y: y / 2, Z: z / 2})
	return wrap(sdf.Transform3D(s, m))
}

// Cylinder creates a cylinder of the given height and radius, centered
// on the Z axis.
func (k *SdfxKernel) Cylinder(height, radius float64) kernel.Solid {
	s, err := sdf.Cylinder3D(height, radius, 0)
	if err != nil {
		panic(fmt.Sprintf("sdfx.Cylinder3D: %v", err))
	}
	return wrap(s)
}

func (k *SdfxKernel) Union(a, b kernel.Solid) kernel.Solid        { return wrap(sdf.Union3D(unwrap(a), unwrap(b))) }
func (k *SdfxKernel) Difference(a, b kernel.Solid) kernel.Solid   { return wrap(sdf.Difference3D(unwrap(a), unwrap(b))) }
func (k *SdfxKernel) Intersection(a, b kernel.Solid) kernel.Solid { return wrap(sdf.Intersect3D(unwrap(a), unwrap(b))) }

// Translate moves a solid by (x, y, z).
func (k *SdfxKernel) Translate(s kernel.Solid, x, y, z float64) kernel.Solid {
	m := sdf.Translate3d(v3.Vec{X: x, Y: y, Z: z})
	return wrap(sdf.Transform3D(unwrap(s), m))
}

// Rotate rotates a solid by Euler angles (degrees) around X, Y, Z.
func (k *SdfxKernel) Rotate(s kernel.Solid, x, y, z float64) kernel.Solid {
	xRad, yRad, zRad := x*math.Pi/180, y*math.Pi/180, z*math.Pi/180
	m := sdf.RotateZ(zRad).Mul(sdf.RotateY(yRad)).Mul(sdf.RotateX(xRad))
	return wrap(sdf.Transform3D(unwrap(s), m))
}

// ToMesh converts a solid to a triangle mesh using marching cubes.
func (k *SdfxKernel) ToMesh(s kernel.Solid) (*kernel.Mesh, error) {
	sdf3 := unwrap(s)
	renderer := render.NewMarchingCubesUniform(meshCells)
	triangles := render.ToTriangles(sdf3, renderer)

	vertices := make([]float32, 0, len(triangles)*9)
	normals := make([]float32, 0, len(triangles)*9)
	indices := make([]uint32, 0, len(triangles)*3)

	for i, tri := range triangles {
		n := tri.Normal()
		nx, ny, nz := float32(n.X), float32(n.Y), float32(n.Z)
		for j := 0; j < 3; j++ {
			v := tri[j]
			vertices = append(vertices, float32(v.X), float32(v.Y), float32(v.Z))
			normals = append(normals, nx, ny, nz)
			indices = append(indices, uint32(i*3+j))
		}
	}

	return &kernel.Mesh{Vertices: vertices, Normals: normals, Indices: indices}, nil
}
