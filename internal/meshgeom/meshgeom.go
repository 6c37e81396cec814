// Package meshgeom provides the MeshOps primitives shared by the rest
// of the planner: bounds, per-vertex/per-face normal computation, and
// assembly of an indexed mesh from raw triangle soup (the shape marching
// cubes hands back).
package meshgeom

import (
	"math"

	"github.com/chazu/grindpath"
	"gonum.org/v1/gonum/spatial/r3"
)

// Bounds returns the axis-aligned bounding box of the mesh's vertices.
func Bounds(m trajectory.Mesh) (min, max r3.Vec) {
	if len(m.Vertices) == 0 {
		return r3.Vec{}, r3.Vec{}
	}
	min, max = m.Vertices[0], m.Vertices[0]
	for _, v := range m.Vertices[1:] {
		min = r3.Vec{X: math.Min(min.X, v.X), Y: math.Min(min.Y, v.Y), Z: math.Min(min.Z, v.Z)}
		max = r3.Vec{X: math.Max(max.X, v.X), Y: math.Max(max.Y, v.Y), Z: math.Max(max.Z, v.Z)}
	}
	return min, max
}

// Extent returns the per-axis size of the mesh's bounding box.
func Extent(m trajectory.Mesh) r3.Vec {
	min, max := Bounds(m)
	return r3.Sub(max, min)
}

// MaxExtent returns the largest of the bounding box's three axis extents.
func MaxExtent(m trajectory.Mesh) float64 {
	e := Extent(m)
	return math.Max(e.X, math.Max(e.Y, e.Z))
}

// Centroid returns the average of the mesh's vertex positions.
func Centroid(m trajectory.Mesh) r3.Vec {
	if len(m.Vertices) == 0 {
		return r3.Vec{}
	}
	sum := r3.Vec{}
	for _, v := range m.Vertices {
		sum = r3.Add(sum, v)
	}
	return r3.Scale(1/float64(len(m.Vertices)), sum)
}

// FaceNormal returns the unit geometric normal of triangle tri, using a
// right-handed winding (v1-v0) x (v2-v0).
func FaceNormal(m trajectory.Mesh, tri [3]int) r3.Vec {
	v0, v1, v2 := m.Vertices[tri[0]], m.Vertices[tri[1]], m.Vertices[tri[2]]
	n := r3.Cross(r3.Sub(v1, v0), r3.Sub(v2, v0))
	norm := r3.Norm(n)
	if norm == 0 {
		return r3.Vec{}
	}
	return r3.Scale(1/norm, n)
}

// ComputeFaceNormals fills m.FaceNormals with one geometric normal per
// triangle, overwriting any normals already present.
func ComputeFaceNormals(m *trajectory.Mesh) {
	m.FaceNormals = make([]r3.Vec, len(m.Triangles))
	for i, tri := range m.Triangles {
		m.FaceNormals[i] = FaceNormal(*m, tri)
	}
}

// ComputeVertexNormals fills m.VertexNormals by averaging the normals of
// every triangle incident to each vertex, weighted by triangle area, and
// renormalizing. Vertices touched by no triangle get a zero normal.
func ComputeVertexNormals(m *trajectory.Mesh) {
	acc := make([]r3.Vec, len(m.Vertices))
	for _, tri := range m.Triangles {
		v0, v1, v2 := m.Vertices[tri[0]], m.Vertices[tri[1]], m.Vertices[tri[2]]
		n := r3.Cross(r3.Sub(v1, v0), r3.Sub(v2, v0)) // magnitude = 2*area, used as weight
		for _, idx := range tri {
			acc[idx] = r3.Add(acc[idx], n)
		}
	}
	out := make([]r3.Vec, len(m.Vertices))
	for i, n := range acc {
		norm := r3.Norm(n)
		if norm > 0 {
			out[i] = r3.Scale(1/norm, n)
		}
	}
	m.VertexNormals = out
}

// IsFinite reports whether every component of v is finite.
func IsFinite(v r3.Vec) bool {
	return !math.IsNaN(v.X) && !math.IsInf(v.X, 0) &&
		!math.IsNaN(v.Y) && !math.IsInf(v.Y, 0) &&
		!math.IsNaN(v.Z) && !math.IsInf(v.Z, 0)
}

// AllFinite reports whether every vertex of the mesh is finite.
func AllFinite(m trajectory.Mesh) bool {
	for _, v := range m.Vertices {
		if !IsFinite(v) {
			return false
		}
	}
	return true
}

// weldTolerance is the default distance under which two triangle-soup
// corners are considered the same vertex when indexing.
const weldTolerance = 1e-9

// BuildIndexed assembles an indexed Mesh from raw triangle soup — the
// flat, vertex-duplicated form marching cubes produces — welding
// corners within tolerance into shared vertices and computing per-vertex
// normals by averaging the incident face normals (MeshOps' normal
// computation, reused here rather than duplicated).
func BuildIndexed(soup [][3]r3.Vec) trajectory.Mesh {
	type key struct{ x, y, z int64 }
	quant := func(v r3.Vec) key {
		const inv = 1 / weldTolerance
		return key{int64(math.Round(v.X * inv)), int64(math.Round(v.Y * inv)), int64(math.Round(v.Z * inv))}
	}

	m := trajectory.Mesh{}
	cache := make(map[key]int)
	for _, tri := range soup {
		var idx [3]int
		for j, v := range tri {
			k := quant(v)
			vi, ok := cache[k]
			if !ok {
				vi = len(m.Vertices)
				cache[k] = vi
				m.Vertices = append(m.Vertices, v)
			}
			idx[j] = vi
		}
		if idx[0] == idx[1] || idx[1] == idx[2] || idx[0] == idx[2] {
			continue // degenerate triangle after welding
		}
		m.Triangles = append(m.Triangles, idx)
	}
	ComputeVertexNormals(&m)
	ComputeFaceNormals(&m)
	return m
}
