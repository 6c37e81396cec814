package planner

import (
	"math"

	"github.com/chazu/grindpath"
	"github.com/chazu/grindpath/internal/frame"
	"github.com/chazu/grindpath/internal/slicer"
	"gonum.org/v1/gonum/spatial/r3"
)

// runPass frames and emits one pass's grinding lines, weaving in
// inter-line extrication and the end-of-pass return.
func runPass(b *builder, lines []trajectory.Polyline, extricationSurface trajectory.Mesh, extricationLines []trajectory.Polyline, meshNormal r3.Vec, liftDistance float64, cfg trajectory.Config) {
	if len(lines) == 0 {
		return
	}

	framedLines := make([][]trajectory.Pose, len(lines))
	for li, line := range lines {
		framed := frameLine(line)
		framedLines[li] = framed
		if len(framed) == 0 {
			continue
		}

		b.append(framed[0], false) // approach marker
		for _, p := range framed {
			b.append(p, true)
		}
		b.append(framed[len(framed)-1], false) // retract marker

		if li < len(lines)-1 {
			for _, p := range interLineExtrication(framed[len(framed)-1], line[0], line[len(line)-1], liftDistance, extricationLines) {
				b.append(p, false)
			}
		}
	}

	endOfPassReturn(b, lines, framedLines, extricationSurface, meshNormal, liftDistance, cfg)
}

// frameLine builds one pose per point of line: each non-terminal point
// is framed against its successor; the terminal point reuses the
// orientation of the final advance, translated to the terminal
// position. Non-finite frames are dropped silently.
func frameLine(line trajectory.Polyline) []trajectory.Pose {
	if len(line) < 2 {
		return nil
	}
	var poses []trajectory.Pose
	var lastValid trajectory.Pose
	haveLast := false
	for i := 0; i < len(line)-1; i++ {
		p, err := frame.Frame(line[i].Pos, line[i+1].Pos, line[i].Normal)
		if err != nil {
			continue
		}
		poses = append(poses, p)
		lastValid = p
		haveLast = true
	}
	if !haveLast {
		return nil
	}
	terminal := lastValid
	terminal.Translation = line[len(line)-1].Pos
	poses = append(poses, terminal)
	return poses
}

// interLineExtrication routes from the end of one grinding line to the
// start of the next along the extrication surface.
func interLineExtrication(endPose trajectory.Pose, lineStart, lineEnd trajectory.PointNormal, liftDistance float64, extricationLines []trajectory.Polyline) []trajectory.Pose {
	if len(extricationLines) == 0 {
		return nil
	}

	endAir := r3.Add(endPose.Translation, r3.Scale(liftDistance, endPose.X))
	startLifted := r3.Add(lineStart.Pos, r3.Scale(-liftDistance, endPose.Z))
	endLifted := r3.Add(lineEnd.Pos, r3.Scale(-liftDistance, endPose.Z))

	polyIdx := -1
	best := math.MaxFloat64
	for i, poly := range extricationLines {
		if len(poly) == 0 {
			continue
		}
		d := r3.Norm2(r3.Sub(poly[len(poly)-1].Pos, endAir))
		if d < best {
			best = d
			polyIdx = i
		}
	}
	if polyIdx < 0 {
		return nil
	}
	poly := extricationLines[polyIdx]

	idxEnd := nearestIndex(poly, endLifted)
	idxStart := nearestIndex(poly, startLifted)
	sub := orderedSubsequence(poly, idxEnd, idxStart)

	poses := make([]trajectory.Pose, 0, len(sub))
	for _, pn := range sub {
		poses = append(poses, trajectory.Pose{Translation: pn.Pos, X: endPose.X, Y: endPose.Y, Z: endPose.Z})
	}
	return poses
}

// endOfPassReturn routes from the last line's retract point back to
// the first line's approach point along the extrication surface.
func endOfPassReturn(b *builder, lines []trajectory.Polyline, framedLines [][]trajectory.Pose, extricationSurface trajectory.Mesh, meshNormal r3.Vec, liftDistance float64, cfg trajectory.Config) {
	firstLine := lines[0]
	lastLine := lines[len(lines)-1]
	if len(firstLine) == 0 || len(lastLine) == 0 || len(extricationSurface.Triangles) == 0 {
		return
	}
	passStart := firstLine[0]
	passEnd := lastLine[len(lastLine)-1]

	passDir := r3.Sub(passEnd.Pos, passStart.Pos)
	if r3.Norm(passDir) == 0 {
		return
	}
	passDir = r3.Unit(passDir)

	proj := r3.Sub(passDir, r3.Scale(r3.Dot(passDir, meshNormal), meshNormal))
	if r3.Norm(proj) == 0 {
		return
	}
	passDirProjected := r3.Unit(proj)
	cutDir := r3.Unit(r3.Cross(passDirProjected, meshNormal))
	if r3.Norm(cutDir) == 0 {
		return
	}

	bundle, err := slicer.Slice(extricationSurface, cutDir, 1, cfg.EffectorDiameter, cfg.Covering, cfg.MaxSliceRetries)
	if err != nil {
		if _, ok := err.(*trajectory.SliceExhaustionError); !ok {
			return
		}
	}
	if len(bundle.Lines) == 0 {
		return
	}

	strip := longestLine(bundle.Lines)
	travel := r3.Sub(strip[len(strip)-1].Pos, strip[0].Pos)
	if r3.Dot(passDir, travel) > 0 {
		strip = reversePolyline(strip)
	}

	startLifted := r3.Add(passStart.Pos, r3.Scale(liftDistance, passStart.Normal))
	endLifted := r3.Add(passEnd.Pos, r3.Scale(liftDistance, passEnd.Normal))

	idxEnd := nearestIndex(strip, endLifted)
	idxStart := nearestIndex(strip, startLifted)
	sub := orderedSubsequence(strip, idxEnd, idxStart)
	if len(sub) == 0 {
		return
	}

	ref := lastNonEmptyPose(framedLines)
	for _, pn := range sub {
		b.append(trajectory.Pose{Translation: pn.Pos, X: ref.X, Y: ref.Y, Z: ref.Z}, false)
	}
}

// nearestIndex returns the index of the point in poly nearest to target.
func nearestIndex(poly trajectory.Polyline, target r3.Vec) int {
	best := 0
	bestDist := math.MaxFloat64
	for i, pn := range poly {
		d := r3.Norm2(r3.Sub(pn.Pos, target))
		if d < bestDist {
			bestDist = d
			best = i
		}
	}
	return best
}

// orderedSubsequence returns poly's points walking from index from to
// index to, inclusive, in whichever index direction connects them.
func orderedSubsequence(poly trajectory.Polyline, from, to int) trajectory.Polyline {
	if from <= to {
		out := make(trajectory.Polyline, to-from+1)
		copy(out, poly[from:to+1])
		return out
	}
	out := make(trajectory.Polyline, 0, from-to+1)
	for i := from; i >= to; i-- {
		out = append(out, poly[i])
	}
	return out
}

func reversePolyline(line trajectory.Polyline) trajectory.Polyline {
	out := make(trajectory.Polyline, len(line))
	for i, p := range line {
		out[len(line)-1-i] = p
	}
	return out
}

// longestLine returns the polyline with the greatest cumulative arc
// length among lines.
func longestLine(lines []trajectory.Polyline) trajectory.Polyline {
	var best trajectory.Polyline
	bestLen := -1.0
	for _, line := range lines {
		total := 0.0
		for i := 1; i < len(line); i++ {
			total += r3.Norm(r3.Sub(line[i].Pos, line[i-1].Pos))
		}
		if total > bestLen {
			bestLen = total
			best = line
		}
	}
	return best
}

// lastNonEmptyPose returns the last pose of the last non-empty framed
// line, used as the fixed orientation for the end-of-pass return path.
func lastNonEmptyPose(framedLines [][]trajectory.Pose) trajectory.Pose {
	for i := len(framedLines) - 1; i >= 0; i-- {
		if len(framedLines[i]) > 0 {
			return framedLines[i][len(framedLines[i])-1]
		}
	}
	return trajectory.Pose{}
}
