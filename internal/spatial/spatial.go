// Package spatial provides a KD-tree nearest-vertex index over a mesh,
// and the NearestSignedSide predicate used by the Pruner's default-mesh
// pruning. The Dilator's half-shell pruning queries the same index
// through NearestVertexAndNormal. Grounded on soypat-sdf's helpers/sdfexp,
// which builds a gonum kdtree.Interface over mesh geometry; here the
// indexed geometry is vertices rather than triangles.
package spatial

import (
	"math"

	"github.com/chazu/grindpath"
	"gonum.org/v1/gonum/spatial/kdtree"
	"gonum.org/v1/gonum/spatial/r3"
)

// VertexIndex is a KD-tree over a mesh's vertex positions, giving
// nearest-vertex queries with the matching vertex normal.
type VertexIndex struct {
	tree     *kdtree.Tree
	points   vertexPoints
	Mesh     trajectory.Mesh
}

// vertexPoints implements kdtree.Interface over mesh vertices.
type vertexPoints struct {
	positions []r3.Vec
	ids       []int // original mesh vertex index of each position
}

func (p vertexPoints) Len() int                     { return len(p.positions) }
func (p vertexPoints) Index(i int) kdtree.Comparable { return point{v: p.positions[i], idx: p.ids[i]} }
func (p vertexPoints) Pivot(d kdtree.Dim) int {
	plane := axisPlane{dim: int(d), positions: p.positions, ids: p.ids}
	return kdtree.Partition(plane, kdtree.MedianOfMedians(plane))
}
func (p vertexPoints) Slice(start, end int) kdtree.Interface {
	return vertexPoints{positions: p.positions[start:end], ids: p.ids[start:end]}
}
func (p vertexPoints) Bounds() *kdtree.Bounding {
	if len(p.positions) == 0 {
		return nil
	}
	min := point{v: r3.Vec{X: math.MaxFloat64, Y: math.MaxFloat64, Z: math.MaxFloat64}}
	max := point{v: r3.Vec{X: -math.MaxFloat64, Y: -math.MaxFloat64, Z: -math.MaxFloat64}}
	for _, v := range p.positions {
		min.v = r3.Vec{X: math.Min(min.v.X, v.X), Y: math.Min(min.v.Y, v.Y), Z: math.Min(min.v.Z, v.Z)}
		max.v = r3.Vec{X: math.Max(max.v.X, v.X), Y: math.Max(max.v.Y, v.Y), Z: math.Max(max.v.Z, v.Z)}
	}
	return &kdtree.Bounding{Min: &min, Max: &max}
}

// point implements kdtree.Comparable for a single vertex.
type point struct {
	v   r3.Vec
	idx int
}

func (p point) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	q := c.(point)
	switch d {
	case 0:
		return p.v.X - q.v.X
	case 1:
		return p.v.Y - q.v.Y
	default:
		return p.v.Z - q.v.Z
	}
}

func (p point) Dims() int { return 3 }

func (p point) Distance(c kdtree.Comparable) float64 {
	q := c.(point)
	return r3.Norm2(r3.Sub(p.v, q.v))
}

// axisPlane sorts/partitions vertex positions along one axis for Pivot.
type axisPlane struct {
	dim       int
	positions []r3.Vec
	ids       []int
}

func (a axisPlane) Less(i, j int) bool { return axisOf(a.positions[i], a.dim) < axisOf(a.positions[j], a.dim) }
func (a axisPlane) Swap(i, j int) {
	a.positions[i], a.positions[j] = a.positions[j], a.positions[i]
	a.ids[i], a.ids[j] = a.ids[j], a.ids[i]
}
func (a axisPlane) Len() int { return len(a.positions) }
func (a axisPlane) Slice(start, end int) kdtree.SortSlicer {
	a.positions = a.positions[start:end]
	a.ids = a.ids[start:end]
	return a
}

func axisOf(v r3.Vec, dim int) float64 {
	switch dim {
	case 0:
		return v.X
	case 1:
		return v.Y
	default:
		return v.Z
	}
}

// NewVertexIndex builds a KD-tree over m's vertices. m must have
// per-vertex normals.
func NewVertexIndex(m trajectory.Mesh) *VertexIndex {
	pts := vertexPoints{positions: append([]r3.Vec(nil), m.Vertices...), ids: make([]int, len(m.Vertices))}
	for i := range pts.ids {
		pts.ids[i] = i
	}
	tree := kdtree.New(pts, true)
	return &VertexIndex{tree: tree, points: pts, Mesh: m}
}

// Nearest returns the index of, and squared distance to, the mesh vertex
// nearest to q.
func (vi *VertexIndex) Nearest(q r3.Vec) (idx int, distSq float64) {
	nearest, d2 := vi.tree.Nearest(point{v: q})
	return nearest.(point).idx, d2
}

// NearestSignedSide reports whether q lies on the protected side of the
// mesh indexed by vi: it finds the nearest vertex q* with normal n*,
// and tests whether n*.(q* - q)/|q* - q| exceeds threshold. Used by the Pruner's
// default-mesh test (threshold 0.1 by default) to keep cells that
// intrude into the indexed mesh's protected half-space.
func (vi *VertexIndex) NearestSignedSide(q r3.Vec, threshold float64) bool {
	idx, _ := vi.Nearest(q)
	p := vi.Mesh.Vertices[idx]
	n := vi.Mesh.VertexNormals[idx]
	v := r3.Sub(p, q)
	nv := r3.Norm(v)
	if nv == 0 {
		return false
	}
	return r3.Dot(n, r3.Scale(1/nv, v)) > threshold
}

// NearestVertexAndNormal returns the position and normal of the mesh
// vertex nearest to q.
func (vi *VertexIndex) NearestVertexAndNormal(q r3.Vec) (pos, normal r3.Vec) {
	idx, _ := vi.Nearest(q)
	return vi.Mesh.Vertices[idx], vi.Mesh.VertexNormals[idx]
}
