// Package slicer implements the Slicer: cutting a mesh with a family of
// parallel planes into ordered stripped polylines, with the
// expected-vs-real line accounting that compensates for holes
// introduced by dilation.
package slicer

import (
	"math"
	"sort"

	"github.com/chazu/grindpath"
	"github.com/chazu/grindpath/internal/meshgeom"
	"gonum.org/v1/gonum/spatial/r3"
)

// weldTolerance is the distance under which two segment endpoints are
// considered the same point when chaining strip segments into polylines.
const weldTolerance = 1e-6

// ExpectedLineCount computes the one-off expected line count for mesh
// along sweepDir: the vertex spread along sweepDir divided by the
// effective line spacing, rounded up.
func ExpectedLineCount(mesh trajectory.Mesh, sweepDir r3.Vec, effectorDiameter, covering float64) int {
	if len(mesh.Vertices) == 0 {
		return 0
	}
	minP := r3.Dot(sweepDir, mesh.Vertices[0])
	maxP := minP
	for _, v := range mesh.Vertices[1:] {
		p := r3.Dot(sweepDir, v)
		if p < minP {
			minP = p
		}
		if p > maxP {
			maxP = p
		}
	}
	spacing := effectorDiameter * (1 - covering)
	if spacing <= 0 {
		return 0
	}
	spread := maxP - minP
	return int(math.Ceil(spread / spacing))
}

// segment is one plane/triangle intersection, an edge of the strip.
type segment struct {
	a, b PointNormal
}

// PointNormal mirrors trajectory.PointNormal to avoid importing the
// root package's Polyline element type name inside this package's
// internal chaining helpers.
type PointNormal = trajectory.PointNormal

// Slice cuts mesh with planes normal to cutNormal, retrying with more
// planes until the real (deduplicated) line count reaches
// expectedLineCount or maxRetries is exhausted.
func Slice(mesh trajectory.Mesh, cutNormal r3.Vec, expectedLineCount int, effectorDiameter, covering float64, maxRetries int) (trajectory.LineBundle, error) {
	if expectedLineCount <= 0 {
		return trajectory.LineBundle{CutNormal: cutNormal}, nil
	}
	if maxRetries <= 0 {
		maxRetries = 2*expectedLineCount + 8
	}

	centre := meshgeom.Centroid(mesh)
	min, max := meshgeom.Bounds(mesh)
	dMin := r3.Norm(r3.Sub(min, centre))
	dMax := r3.Norm(r3.Sub(max, centre))

	eps := effectorDiameter * (1 - covering) / 20

	var lines []trajectory.Polyline
	r := 0
	for retry := 0; retry <= maxRetries; retry++ {
		n := expectedLineCount + r
		if n <= 0 {
			n = 1
		}
		planeOffsets := linspace(-dMin, dMax, n)

		lines = nil
		for _, off := range planeOffsets {
			planePoint := r3.Add(centre, r3.Scale(off, cutNormal))
			for _, strip := range cutMeshAtPlane(mesh, cutNormal, planePoint) {
				if len(strip) >= 2 {
					lines = append(lines, strip)
				}
			}
		}

		real := realLineCount(lines, cutNormal, eps)
		if real >= expectedLineCount {
			break
		}
		r++
		if retry == maxRetries {
			achieved := real
			return trajectory.LineBundle{CutNormal: cutNormal, Lines: lines}, &trajectory.SliceExhaustionError{
				Achieved: achieved,
				Expected: expectedLineCount,
				Retries:  retry,
			}
		}
	}

	return trajectory.LineBundle{CutNormal: cutNormal, Lines: lines}, nil
}

// linspace returns n equally spaced values in [lo, hi]. For n == 1 it
// returns the midpoint.
func linspace(lo, hi float64, n int) []float64 {
	if n <= 1 {
		return []float64{(lo + hi) / 2}
	}
	out := make([]float64, n)
	step := (hi - lo) / float64(n-1)
	for i := range out {
		out[i] = lo + float64(i)*step
	}
	return out
}

// realLineCount collapses strips whose mid-point projections onto
// cutNormal differ by less than eps, the line-count deduplication rule.
func realLineCount(lines []trajectory.Polyline, cutNormal r3.Vec, eps float64) int {
	if len(lines) == 0 {
		return 0
	}
	projections := make([]float64, 0, len(lines))
	for _, line := range lines {
		mid := line[len(line)/2].Pos
		projections = append(projections, r3.Dot(cutNormal, mid))
	}
	sort.Float64s(projections)

	count := 1
	last := projections[0]
	for _, p := range projections[1:] {
		if p-last >= eps {
			count++
			last = p
		}
	}
	return count
}

// cutMeshAtPlane intersects mesh with the plane through planePoint
// normal to cutNormal, returning the resulting strips as chained
// polylines.
func cutMeshAtPlane(mesh trajectory.Mesh, cutNormal, planePoint r3.Vec) []trajectory.Polyline {
	var segs []segment
	for fi, tri := range mesh.Triangles {
		n := faceNormal(mesh, fi, tri)
		if s, ok := cutTriangle(mesh, tri, n, cutNormal, planePoint); ok {
			segs = append(segs, s)
		}
	}
	return chainSegments(segs)
}

// cutTriangle returns the segment where the plane crosses triangle tri,
// if any. Triangles entirely on one side, or merely touching the plane
// at a single vertex, produce no segment.
func cutTriangle(mesh trajectory.Mesh, tri [3]int, faceN, cutNormal, planePoint r3.Vec) (segment, bool) {
	var pts []PointNormal
	for i := 0; i < 3; i++ {
		ia, ib := tri[i], tri[(i+1)%3]
		va, vb := mesh.Vertices[ia], mesh.Vertices[ib]
		da := r3.Dot(cutNormal, r3.Sub(va, planePoint))
		db := r3.Dot(cutNormal, r3.Sub(vb, planePoint))
		if (da < 0 && db < 0) || (da > 0 && db > 0) {
			continue
		}
		if da == db {
			continue
		}
		f := da / (da - db)
		pos := r3.Add(va, r3.Scale(f, r3.Sub(vb, va)))
		pts = append(pts, PointNormal{Pos: pos, Normal: faceN})
		if len(pts) == 2 {
			break
		}
	}
	if len(pts) != 2 || r3.Norm(r3.Sub(pts[0].Pos, pts[1].Pos)) < weldTolerance {
		return segment{}, false
	}
	return segment{a: pts[0], b: pts[1]}, true
}

// faceNormal returns the precomputed face normal for triangle index fi,
// falling back to a fresh geometric computation if the mesh carries none.
func faceNormal(mesh trajectory.Mesh, fi int, tri [3]int) r3.Vec {
	if fi < len(mesh.FaceNormals) {
		return mesh.FaceNormals[fi]
	}
	return meshgeom.FaceNormal(mesh, tri)
}

// chainSegments greedily links plane/triangle intersection segments that
// share an endpoint (within weldTolerance) into ordered polylines.
func chainSegments(segs []segment) []trajectory.Polyline {
	used := make([]bool, len(segs))
	var lines []trajectory.Polyline

	near := func(a, b r3.Vec) bool { return r3.Norm(r3.Sub(a, b)) < weldTolerance }

	for start := range segs {
		if used[start] {
			continue
		}
		used[start] = true
		line := trajectory.Polyline{segs[start].a, segs[start].b}

		extended := true
		for extended {
			extended = false
			tail := line[len(line)-1].Pos
			for i, s := range segs {
				if used[i] {
					continue
				}
				switch {
				case near(tail, s.a.Pos):
					line = append(line, s.b)
				case near(tail, s.b.Pos):
					line = append(line, s.a)
				default:
					continue
				}
				used[i] = true
				extended = true
				break
			}
		}

		extended = true
		for extended {
			extended = false
			head := line[0].Pos
			for i, s := range segs {
				if used[i] {
					continue
				}
				switch {
				case near(head, s.a.Pos):
					line = prepend(line, s.b)
				case near(head, s.b.Pos):
					line = prepend(line, s.a)
				default:
					continue
				}
				used[i] = true
				extended = true
				break
			}
		}

		lines = append(lines, line)
	}
	return lines
}

func prepend(line trajectory.Polyline, p PointNormal) trajectory.Polyline {
	out := make(trajectory.Polyline, 0, len(line)+1)
	out = append(out, p)
	out = append(out, line...)
	return out
}
