// Package frame implements the Framer: building a right-handed
// orthonormal pose frame at a point along a polyline.
package frame

import (
	"errors"
	"math"

	"github.com/chazu/grindpath"
	"gonum.org/v1/gonum/spatial/r3"
)

// ErrDegenerate is returned when the advance vector is zero or the
// resulting frame has a non-finite axis, recovered locally by the
// caller dropping the pose.
var ErrDegenerate = errors.New("frame: degenerate")

// Frame builds a pose at p advancing toward next with outward normal n:
// X = normalize(next - p), Z = normalize(n), Y = Z × X.
func Frame(p, next, n r3.Vec) (trajectory.Pose, error) {
	advance := r3.Sub(next, p)
	advanceNorm := r3.Norm(advance)
	if advanceNorm == 0 {
		return trajectory.Pose{}, ErrDegenerate
	}
	x := r3.Scale(1/advanceNorm, advance)

	zNorm := r3.Norm(n)
	if zNorm == 0 {
		return trajectory.Pose{}, ErrDegenerate
	}
	z := r3.Scale(1/zNorm, n)

	y := r3.Unit(r3.Cross(z, x))
	if !finite(y) || !finite(x) || !finite(z) {
		return trajectory.Pose{}, ErrDegenerate
	}

	return trajectory.Pose{Translation: p, X: x, Y: y, Z: z}, nil
}

func finite(v r3.Vec) bool {
	return isFinite(v.X) && isFinite(v.Y) && isFinite(v.Z)
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
