package plyio

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/chazu/grindpath"
	"gonum.org/v1/gonum/spatial/r3"
)

func sampleMesh() trajectory.Mesh {
	return trajectory.Mesh{
		Vertices: []r3.Vec{
			{X: 0, Y: 0, Z: 0},
			{X: 1, Y: 0, Z: 0},
			{X: 0, Y: 1, Z: 0},
		},
		VertexNormals: []r3.Vec{
			{Z: 1}, {Z: 1}, {Z: 1},
		},
		Triangles: [][3]int{{0, 1, 2}},
	}
}

func TestSaveAndLoadMeshRoundTrip(t *testing.T) {
	mesh := sampleMesh()
	path := filepath.Join(t.TempDir(), "mesh.ply")

	if !SaveMesh(path, mesh) {
		t.Fatal("SaveMesh() returned false")
	}

	loaded, err := LoadMesh(path)
	if err != nil {
		t.Fatalf("LoadMesh() error = %v", err)
	}
	if len(loaded.Vertices) != len(mesh.Vertices) {
		t.Fatalf("len(Vertices) = %d, want %d", len(loaded.Vertices), len(mesh.Vertices))
	}
	if len(loaded.Triangles) != len(mesh.Triangles) {
		t.Fatalf("len(Triangles) = %d, want %d", len(loaded.Triangles), len(mesh.Triangles))
	}
	for i, v := range mesh.Vertices {
		if r3.Norm(r3.Sub(v, loaded.Vertices[i])) > 1e-6 {
			t.Errorf("vertex %d = %v, want %v", i, loaded.Vertices[i], v)
		}
	}
	if !loaded.HasVertexNormals() {
		t.Fatal("loaded mesh has no vertex normals")
	}
	for i, n := range mesh.VertexNormals {
		if r3.Norm(r3.Sub(n, loaded.VertexNormals[i])) > 1e-6 {
			t.Errorf("normal %d = %v, want %v", i, loaded.VertexNormals[i], n)
		}
	}
	if loaded.Triangles[0] != mesh.Triangles[0] {
		t.Errorf("triangle = %v, want %v", loaded.Triangles[0], mesh.Triangles[0])
	}
}

func TestSaveMeshWithoutNormals(t *testing.T) {
	mesh := sampleMesh()
	mesh.VertexNormals = nil
	path := filepath.Join(t.TempDir(), "mesh.ply")

	if !SaveMesh(path, mesh) {
		t.Fatal("SaveMesh() returned false")
	}
	loaded, err := LoadMesh(path)
	if err != nil {
		t.Fatalf("LoadMesh() error = %v", err)
	}
	if loaded.HasVertexNormals() {
		t.Error("loaded mesh has vertex normals, want none")
	}
}

func TestLoadMeshRejectsNonPlyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "not-ply.txt")
	if err := os.WriteFile(path, []byte("this is not a ply file\n"), 0o644); err != nil {
		t.Fatalf("failed to write fixture file: %v", err)
	}
	_, err := LoadMesh(path)
	if err == nil {
		t.Error("LoadMesh() error = nil, want non-nil for a non-PLY file")
	}
}

func TestLoadMeshMissingFile(t *testing.T) {
	_, err := LoadMesh(filepath.Join(t.TempDir(), "does-not-exist.ply"))
	if err == nil {
		t.Error("LoadMesh() error = nil, want non-nil for a missing file")
	}
}

func TestPlyFloatRoundTripPrecision(t *testing.T) {
	// Sanity check that ASCII round-tripping does not introduce gross
	// precision loss for typical mesh coordinate magnitudes.
	v := r3.Vec{X: 0.123456, Y: -1.654321, Z: 10.0}
	mesh := trajectory.Mesh{Vertices: []r3.Vec{v, v, v}, Triangles: [][3]int{{0, 1, 2}}}
	path := filepath.Join(t.TempDir(), "precision.ply")
	if !SaveMesh(path, mesh) {
		t.Fatal("SaveMesh() returned false")
	}
	loaded, err := LoadMesh(path)
	if err != nil {
		t.Fatalf("LoadMesh() error = %v", err)
	}
	if math.Abs(loaded.Vertices[0].X-v.X) > 1e-5 {
		t.Errorf("X = %g, want %g", loaded.Vertices[0].X, v.X)
	}
}
