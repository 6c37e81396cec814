package planner

import (
	"testing"

	"github.com/chazu/grindpath"
	"gonum.org/v1/gonum/spatial/r3"
)

func samplePoly() trajectory.Polyline {
	return trajectory.Polyline{
		{Pos: r3.Vec{X: 0}},
		{Pos: r3.Vec{X: 1}},
		{Pos: r3.Vec{X: 2}},
		{Pos: r3.Vec{X: 3}},
	}
}

func TestNearestIndex(t *testing.T) {
	poly := samplePoly()
	if got := nearestIndex(poly, r3.Vec{X: 2.1}); got != 2 {
		t.Errorf("nearestIndex() = %d, want 2", got)
	}
	if got := nearestIndex(poly, r3.Vec{X: -5}); got != 0 {
		t.Errorf("nearestIndex() = %d, want 0", got)
	}
}

func TestOrderedSubsequenceForward(t *testing.T) {
	poly := samplePoly()
	sub := orderedSubsequence(poly, 1, 3)
	if len(sub) != 3 {
		t.Fatalf("len(sub) = %d, want 3", len(sub))
	}
	if sub[0].Pos.X != 1 || sub[2].Pos.X != 3 {
		t.Errorf("sub = %v, want x values 1,2,3", sub)
	}
}

func TestOrderedSubsequenceBackward(t *testing.T) {
	poly := samplePoly()
	sub := orderedSubsequence(poly, 3, 1)
	if len(sub) != 3 {
		t.Fatalf("len(sub) = %d, want 3", len(sub))
	}
	if sub[0].Pos.X != 3 || sub[2].Pos.X != 1 {
		t.Errorf("sub = %v, want x values 3,2,1", sub)
	}
}

func TestReversePolyline(t *testing.T) {
	poly := samplePoly()
	rev := reversePolyline(poly)
	if rev[0].Pos.X != 3 || rev[len(rev)-1].Pos.X != 0 {
		t.Errorf("reversePolyline() = %v, want reversed order", rev)
	}
}

func TestLongestLine(t *testing.T) {
	short := trajectory.Polyline{{Pos: r3.Vec{X: 0}}, {Pos: r3.Vec{X: 1}}}
	long := trajectory.Polyline{{Pos: r3.Vec{X: 0}}, {Pos: r3.Vec{X: 5}}}
	got := longestLine([]trajectory.Polyline{short, long})
	if len(got) != 2 || got[1].Pos.X != 5 {
		t.Errorf("longestLine() = %v, want the length-5 line", got)
	}
}

func TestLastNonEmptyPose(t *testing.T) {
	want := trajectory.Pose{Translation: r3.Vec{X: 9}}
	framed := [][]trajectory.Pose{
		{{Translation: r3.Vec{X: 1}}},
		{},
		{{Translation: r3.Vec{X: 5}}, want},
	}
	got := lastNonEmptyPose(framed)
	if got != want {
		t.Errorf("lastNonEmptyPose() = %v, want %v", got, want)
	}
}

func TestLastNonEmptyPoseAllEmpty(t *testing.T) {
	got := lastNonEmptyPose([][]trajectory.Pose{{}, {}})
	if got != (trajectory.Pose{}) {
		t.Errorf("lastNonEmptyPose() = %v, want zero value", got)
	}
}

func TestFrameLineDropsShortLines(t *testing.T) {
	if got := frameLine(trajectory.Polyline{{Pos: r3.Vec{}}}); got != nil {
		t.Errorf("frameLine() on single-point line = %v, want nil", got)
	}
}

func TestFrameLineTerminalPoseTranslation(t *testing.T) {
	line := trajectory.Polyline{
		{Pos: r3.Vec{X: 0}, Normal: r3.Vec{Z: 1}},
		{Pos: r3.Vec{X: 1}, Normal: r3.Vec{Z: 1}},
		{Pos: r3.Vec{X: 2}, Normal: r3.Vec{Z: 1}},
	}
	poses := frameLine(line)
	if len(poses) != 3 {
		t.Fatalf("len(frameLine()) = %d, want 3", len(poses))
	}
	terminal := poses[len(poses)-1]
	if terminal.Translation != (r3.Vec{X: 2}) {
		t.Errorf("terminal translation = %v, want (2,0,0)", terminal.Translation)
	}
	if terminal.X != poses[len(poses)-2].X {
		t.Error("terminal pose orientation should reuse the last valid frame's axes")
	}
}
