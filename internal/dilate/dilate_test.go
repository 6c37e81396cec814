package dilate

import (
	"errors"
	"math"
	"testing"

	"github.com/chazu/grindpath"
	"github.com/chazu/grindpath/internal/kernel"
	"github.com/chazu/grindpath/internal/kernel/sdfx"
	"gonum.org/v1/gonum/spatial/r3"
)

func flatPlate() trajectory.Mesh {
	return kernel.FlatPlate(sdfx.New(), 0.1, 0.1, 0.01)
}

func TestDilateRejectsEmptyMesh(t *testing.T) {
	_, err := Dilate(trajectory.Mesh{}, 0.001)
	if !errors.Is(err, trajectory.ErrInputInvalid) {
		t.Errorf("Dilate() error = %v, want ErrInputInvalid", err)
	}
}

func TestDilateRejectsMeshWithoutNormals(t *testing.T) {
	m := trajectory.Mesh{
		Vertices:  []r3.Vec{{}, {X: 1}, {Y: 1}},
		Triangles: [][3]int{{0, 1, 2}},
	}
	_, err := Dilate(m, 0.001)
	if !errors.Is(err, trajectory.ErrInputInvalid) {
		t.Errorf("Dilate() error = %v, want ErrInputInvalid", err)
	}
}

func TestDilateRejectsNonFiniteVertices(t *testing.T) {
	m := flatPlate()
	m.Vertices[0].X = math.NaN()
	_, err := Dilate(m, 0.001)
	if !errors.Is(err, trajectory.ErrInputInvalid) {
		t.Errorf("Dilate() error = %v, want ErrInputInvalid", err)
	}
}

func TestDilateFlatPlateProducesOutwardShell(t *testing.T) {
	plate := flatPlate()
	offset, err := Dilate(plate, 0.01)
	if err != nil {
		t.Fatalf("Dilate() error = %v", err)
	}
	if offset.NumTriangles() == 0 {
		t.Fatal("Dilate() produced an empty offset shell")
	}
	if !offset.HasVertexNormals() {
		t.Error("Dilate() result has no vertex normals")
	}
	pMin, pMax := boundsOf(plate.Vertices)
	oMin, oMax := boundsOf(offset.Vertices)
	// The dilated shell's top face should sit further from the plate
	// centre along Z than the plate's own top face.
	if oMax.Z <= pMax.Z {
		t.Errorf("offset top Z = %g, want > plate top Z = %g", oMax.Z, pMax.Z)
	}
	_ = pMin
	_ = oMin
}

func boundsOf(vs []r3.Vec) (min, max r3.Vec) {
	if len(vs) == 0 {
		return r3.Vec{}, r3.Vec{}
	}
	min, max = vs[0], vs[0]
	for _, v := range vs[1:] {
		min = r3.Vec{X: math.Min(min.X, v.X), Y: math.Min(min.Y, v.Y), Z: math.Min(min.Z, v.Z)}
		max = r3.Vec{X: math.Max(max.X, v.X), Y: math.Max(max.Y, v.Y), Z: math.Max(max.Z, v.Z)}
	}
	return min, max
}
