package trajectory

import (
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

func TestConfigLineSpacing(t *testing.T) {
	tests := []struct {
		name             string
		effectorDiameter float64
		covering         float64
		want             float64
	}{
		{"no overlap", 0.01, 0, 0.01},
		{"half overlap", 0.01, 0.5, 0.005},
		{"near full overlap", 0.01, 0.9, 0.001},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Config{EffectorDiameter: tt.effectorDiameter, Covering: tt.covering}
			if got := c.LineSpacing(); !almostEqual(got, tt.want, 1e-9) {
				t.Errorf("LineSpacing() = %g, want %g", got, tt.want)
			}
		})
	}
}

func TestConfigCornerToleranceDefault(t *testing.T) {
	c := Config{}
	if got := c.CornerTolerance(); got != 0.1 {
		t.Errorf("CornerTolerance() default = %g, want 0.1", got)
	}
	c.PruneCornerTolerance = 0.25
	if got := c.CornerTolerance(); got != 0.25 {
		t.Errorf("CornerTolerance() override = %g, want 0.25", got)
	}
}

func TestMeshHasVertexNormals(t *testing.T) {
	m := Mesh{Vertices: []r3.Vec{{}, {}, {}}}
	if m.HasVertexNormals() {
		t.Error("HasVertexNormals() = true for mesh with no normals")
	}
	m.VertexNormals = []r3.Vec{{Z: 1}, {Z: 1}, {Z: 1}}
	if !m.HasVertexNormals() {
		t.Error("HasVertexNormals() = false for mesh with matching normals")
	}
}

func TestTrajectoryLen(t *testing.T) {
	tr := Trajectory{Poses: make([]Pose, 5)}
	if got := tr.Len(); got != 5 {
		t.Errorf("Len() = %d, want 5", got)
	}
}

func almostEqual(a, b, eps float64) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d < eps
}
