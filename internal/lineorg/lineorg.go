// Package lineorg implements the LineOrganiser: sorting polylines along
// the sweep direction, aligning each polyline's traversal direction, and
// decimating near-duplicate points.
package lineorg

import (
	"sort"

	"github.com/chazu/grindpath"
	"gonum.org/v1/gonum/spatial/r3"
)

// decimateTolerance is the minimum spacing between consecutive points on
// a line after decimation.
const decimateTolerance = 1e-3

// Sort orders bundle.Lines ascending by sweepDir . firstPoint. The sort
// is stable and curries sweepDir directly into the comparator rather
// than holding a back-reference to the bundle, to avoid a cyclic
// reference between a bundle and its own sort order.
func Sort(bundle trajectory.LineBundle, sweepDir r3.Vec) trajectory.LineBundle {
	lines := append([]trajectory.Polyline(nil), bundle.Lines...)
	sort.SliceStable(lines, func(i, j int) bool {
		return r3.Dot(sweepDir, lines[i][0].Pos) < r3.Dot(sweepDir, lines[j][0].Pos)
	})
	bundle.Lines = lines
	return bundle
}

// Orient reverses any polyline whose net travel opposes ref = sweepDir ×
// meshNormal, so that every line in the bundle is traversed consistently.
func Orient(bundle trajectory.LineBundle, sweepDir, meshNormal r3.Vec) trajectory.LineBundle {
	ref := r3.Unit(r3.Cross(sweepDir, meshNormal))
	lines := make([]trajectory.Polyline, len(bundle.Lines))
	for i, line := range bundle.Lines {
		if len(line) == 0 {
			lines[i] = line
			continue
		}
		travel := r3.Sub(line[len(line)-1].Pos, line[0].Pos)
		if r3.Dot(ref, travel) < 0 {
			lines[i] = reverse(line)
		} else {
			lines[i] = line
		}
	}
	bundle.Lines = lines
	return bundle
}

func reverse(line trajectory.Polyline) trajectory.Polyline {
	out := make(trajectory.Polyline, len(line))
	for i, p := range line {
		out[len(line)-1-i] = p
	}
	return out
}

// Decimate removes points whose distance to the next point is below
// decimateTolerance: when pi and pi+1 are too close, pi+1 is dropped, or
// pi if it is the penultimate point.
func Decimate(line trajectory.Polyline) trajectory.Polyline {
	if len(line) < 2 {
		return line
	}
	out := make(trajectory.Polyline, 0, len(line))
	out = append(out, line[0])
	for i := 1; i < len(line); i++ {
		prev := out[len(out)-1]
		if r3.Norm(r3.Sub(prev.Pos, line[i].Pos)) < decimateTolerance {
			if i == len(line)-1 {
				// line[i] is the last point; drop the penultimate kept
				// point instead so the endpoint survives.
				if len(out) > 1 {
					out = out[:len(out)-1]
				}
				out = append(out, line[i])
			}
			continue
		}
		out = append(out, line[i])
	}
	return out
}

// FlipNormals negates every point normal on line. The input mesh's
// recorded normals point inward relative to the tool side, so lines
// sliced from it must have their normals flipped before framing; lines
// sliced from dilated offsets keep their normals as-is.
func FlipNormals(line trajectory.Polyline) trajectory.Polyline {
	out := make(trajectory.Polyline, len(line))
	for i, p := range line {
		out[i] = trajectory.PointNormal{Pos: p.Pos, Normal: r3.Scale(-1, p.Normal)}
	}
	return out
}
