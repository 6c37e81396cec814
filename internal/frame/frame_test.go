package frame

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

func TestFrameOrthonormalRightHanded(t *testing.T) {
	p := r3.Vec{X: 0, Y: 0, Z: 0}
	next := r3.Vec{X: 1, Y: 0, Z: 0}
	n := r3.Vec{X: 0, Y: 0, Z: 1}

	pose, err := Frame(p, next, n)
	if err != nil {
		t.Fatalf("Frame() error = %v", err)
	}
	if pose.Translation != p {
		t.Errorf("Translation = %v, want %v", pose.Translation, p)
	}
	if r3.Norm(r3.Sub(pose.X, r3.Vec{X: 1})) > 1e-12 {
		t.Errorf("X = %v, want (1,0,0)", pose.X)
	}
	if r3.Norm(r3.Sub(pose.Z, r3.Vec{Z: 1})) > 1e-12 {
		t.Errorf("Z = %v, want (0,0,1)", pose.Z)
	}
	if r3.Norm(r3.Sub(pose.Y, r3.Vec{Y: 1})) > 1e-12 {
		t.Errorf("Y = %v, want (0,1,0) (Z x X)", pose.Y)
	}

	for _, axis := range [][2]r3.Vec{{pose.X, pose.Y}, {pose.Y, pose.Z}, {pose.X, pose.Z}} {
		if d := r3.Dot(axis[0], axis[1]); math.Abs(d) > 1e-9 {
			t.Errorf("axes not orthogonal: dot = %g", d)
		}
	}
}

func TestFrameZeroAdvanceIsDegenerate(t *testing.T) {
	p := r3.Vec{X: 1, Y: 1, Z: 1}
	_, err := Frame(p, p, r3.Vec{Z: 1})
	if !errors.Is(err, ErrDegenerate) {
		t.Errorf("Frame() error = %v, want ErrDegenerate", err)
	}
}

func TestFrameZeroNormalIsDegenerate(t *testing.T) {
	_, err := Frame(r3.Vec{}, r3.Vec{X: 1}, r3.Vec{})
	if !errors.Is(err, ErrDegenerate) {
		t.Errorf("Frame() error = %v, want ErrDegenerate", err)
	}
}

func TestFrameYUnitWhenXZNotOrthogonal(t *testing.T) {
	// Advance and normal that are not perpendicular: Z x X is shorter
	// than 1 before normalization.
	p := r3.Vec{X: 0, Y: 0, Z: 0}
	next := r3.Vec{X: 1, Y: 0, Z: 0.5}
	n := r3.Vec{X: 0.3, Y: 0, Z: 1}

	pose, err := Frame(p, next, n)
	if err != nil {
		t.Fatalf("Frame() error = %v", err)
	}
	if math.Abs(r3.Norm(pose.Y)-1) > 1e-9 {
		t.Errorf("Y not unit length: %v, norm = %g", pose.Y, r3.Norm(pose.Y))
	}
}

func TestFrameNonUnitInputsAreNormalized(t *testing.T) {
	pose, err := Frame(r3.Vec{}, r3.Vec{X: 5}, r3.Vec{Z: 3})
	if err != nil {
		t.Fatalf("Frame() error = %v", err)
	}
	if math.Abs(r3.Norm(pose.X)-1) > 1e-12 {
		t.Errorf("X not unit length: %v", pose.X)
	}
	if math.Abs(r3.Norm(pose.Z)-1) > 1e-12 {
		t.Errorf("Z not unit length: %v", pose.Z)
	}
}
