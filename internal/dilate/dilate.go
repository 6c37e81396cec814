// Package dilate implements the Dilator: morphological dilation of a
// triangle mesh by a signed distance, via implicit distance sampling and
// marching-cubes isosurfacing, followed by half-shell pruning of the
// inward-facing half of the resulting shell. The distance field wraps
// github.com/deadsy/sdfx's SDF3 interface and its marching-cubes
// renderer, the same way a boolean CSG tree would, except the SDF3 here
// is a custom nearest-mesh-point distance query instead of a CSG tree.
package dilate

import (
	"fmt"
	"math"

	"github.com/chazu/grindpath"
	"github.com/chazu/grindpath/internal/meshgeom"
	"github.com/chazu/grindpath/internal/spatial"
	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"gonum.org/v1/gonum/spatial/r3"
)

// gridCells is the number of marching-cubes cells along the longest axis
// of the sampling box. The other axes get as many cells of the same size
// as their extent needs, so the grid is 50x50x50 only for a cube-shaped
// box.
const gridCells = 50

// meshDistance implements sdf.SDF3 over a mesh's nearest-vertex
// distance field, signed by the nearest vertex's outward normal,
// saturating beyond capDist and shifted by depth so that its zero level
// set is the offset surface.
type meshDistance struct {
	index    *spatial.VertexIndex
	min, max r3.Vec
	capDist  float64
	depth    float64
}

func (d *meshDistance) Evaluate(p v3.Vec) float64 {
	q := r3.Vec{X: p.X, Y: p.Y, Z: p.Z}
	idx, distSq := d.index.Nearest(q)
	dist := math.Sqrt(distSq)
	src := d.index.Mesh.Vertices[idx]
	n := d.index.Mesh.VertexNormals[idx]
	v := r3.Sub(q, src)
	signed := dist
	if r3.Dot(n, v) < 0 {
		signed = -dist
	}
	if signed > d.capDist {
		signed = d.capDist
	}
	if signed < -d.capDist {
		signed = -d.capDist
	}
	return signed - d.depth
}

func (d *meshDistance) BoundingBox() sdf.Box3 {
	return sdf.Box3{
		Min: v3.Vec{X: d.min.X, Y: d.min.Y, Z: d.min.Z},
		Max: v3.Vec{X: d.max.X, Y: d.max.Y, Z: d.max.Z},
	}
}

// Dilate produces a triangulated offset shell of mesh at signed distance
// depth, restricted to the half-shell that faces outward from mesh.
func Dilate(mesh trajectory.Mesh, depth float64) (trajectory.Mesh, error) {
	if len(mesh.Vertices) == 0 || !mesh.HasVertexNormals() {
		return trajectory.Mesh{}, fmt.Errorf("dilate: %w", trajectory.ErrInputInvalid)
	}
	if !meshgeom.AllFinite(mesh) {
		return trajectory.Mesh{}, fmt.Errorf("dilate: %w", trajectory.ErrInputInvalid)
	}

	l := meshgeom.MaxExtent(mesh)
	if l == 0 {
		return trajectory.Mesh{}, fmt.Errorf("dilate: %w", trajectory.ErrInputInvalid)
	}
	t := depth / l
	margin := t * l

	min, max := meshgeom.Bounds(mesh)
	min = r3.Sub(min, r3.Vec{X: margin, Y: margin, Z: margin})
	max = r3.Add(max, r3.Vec{X: margin, Y: margin, Z: margin})

	capDist := math.Min(1.0, 2*t) * l

	index := spatial.NewVertexIndex(mesh)
	field := &meshDistance{index: index, min: min, max: max, capDist: capDist, depth: depth}

	renderer := render.NewMarchingCubesUniform(gridCells)
	triangles := render.ToTriangles(field, renderer)

	soup := make([][3]r3.Vec, 0, len(triangles))
	for _, tri := range triangles {
		a := r3.Vec{X: tri[0].X, Y: tri[0].Y, Z: tri[0].Z}
		b := r3.Vec{X: tri[1].X, Y: tri[1].Y, Z: tri[1].Z}
		c := r3.Vec{X: tri[2].X, Y: tri[2].Y, Z: tri[2].Z}
		if !meshgeom.IsFinite(a) || !meshgeom.IsFinite(b) || !meshgeom.IsFinite(c) {
			continue
		}
		centre := r3.Scale(1.0/3.0, r3.Add(a, r3.Add(b, c)))
		src, n := index.NearestVertexAndNormal(centre)
		v := r3.Sub(centre, src)
		if r3.Dot(n, v) <= 0 {
			continue // inward half-shell, discarded
		}
		soup = append(soup, [3]r3.Vec{a, b, c})
	}

	if len(soup) == 0 {
		return trajectory.Mesh{}, fmt.Errorf("dilate: depth %g: %w", depth, trajectory.ErrOffsetDegenerate)
	}

	return meshgeom.BuildIndexed(soup), nil
}
