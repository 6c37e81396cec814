package prune

import (
	"testing"

	"github.com/chazu/grindpath"
	"github.com/chazu/grindpath/internal/meshgeom"
	"gonum.org/v1/gonum/spatial/r3"
)

// plate returns a flat z=0 square plate spanning [lo, hi] in x and y.
func plate(lo, hi float64) trajectory.Mesh {
	m := trajectory.Mesh{
		Vertices: []r3.Vec{
			{X: lo, Y: lo, Z: 0},
			{X: hi, Y: lo, Z: 0},
			{X: hi, Y: hi, Z: 0},
			{X: lo, Y: hi, Z: 0},
		},
		Triangles: [][3]int{{0, 1, 2}, {0, 2, 3}},
	}
	meshgeom.ComputeVertexNormals(&m)
	meshgeom.ComputeFaceNormals(&m)
	return m
}

func TestPruneAgainstDefaultRejectsMeshWithoutNormals(t *testing.T) {
	_, _, err := PruneAgainstDefault(plate(0, 1), trajectory.Mesh{}, 0.1)
	if err == nil {
		t.Error("PruneAgainstDefault() error = nil, want non-nil for default mesh without normals")
	}
}

func TestPruneAgainstDefaultKeepsIntersectingCells(t *testing.T) {
	// A plate dropped below a coincident-in-xy default plate: every vertex
	// of mesh lies on the protected (-Z, opposite defaultMesh's +Z normal)
	// side of defaultMesh's nearest vertex, so every cell should be kept.
	mesh := plate(0, 1)
	for i := range mesh.Vertices {
		mesh.Vertices[i].Z = -0.01
	}
	def := plate(0, 1)

	pruned, intersects, err := PruneAgainstDefault(mesh, def, 0.1)
	if err != nil {
		t.Fatalf("PruneAgainstDefault() error = %v", err)
	}
	if !intersects {
		t.Fatal("PruneAgainstDefault() intersects = false, want true")
	}
	if pruned.NumTriangles() != mesh.NumTriangles() {
		t.Errorf("pruned has %d triangles, want %d (all kept)", pruned.NumTriangles(), mesh.NumTriangles())
	}
}

func TestPruneAgainstDefaultDropsNonIntersectingCells(t *testing.T) {
	// A plate lifted above the default plate's surface: every vertex lies
	// on the outward (+Z) side of defaultMesh's normal, not the protected
	// side, so no cell should be kept.
	mesh := plate(0, 1)
	for i := range mesh.Vertices {
		mesh.Vertices[i].Z = 0.01
	}
	def := plate(0, 1)

	pruned, intersects, err := PruneAgainstDefault(mesh, def, 0.1)
	if err != nil {
		t.Fatalf("PruneAgainstDefault() error = %v", err)
	}
	if intersects {
		t.Error("PruneAgainstDefault() intersects = true, want false")
	}
	if pruned.NumTriangles() != 0 {
		t.Errorf("pruned has %d triangles, want 0", pruned.NumTriangles())
	}
}
