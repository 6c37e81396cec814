// Package prune implements the Pruner: removing cells of a mesh that do
// not intrude into the protected half-space of a second ("default")
// reference mesh, using internal/spatial's NearestSignedSide predicate.
package prune

import (
	"github.com/chazu/grindpath"
	"github.com/chazu/grindpath/internal/meshgeom"
	"github.com/chazu/grindpath/internal/spatial"
	"gonum.org/v1/gonum/spatial/r3"
)

// PruneAgainstDefault removes every cell of mesh none of whose vertices
// lies on the protected side of defaultMesh (behind its nearest vertex,
// against that vertex's outward normal), and reports whether at least
// one cell was kept.
func PruneAgainstDefault(mesh, defaultMesh trajectory.Mesh, cornerTolerance float64) (pruned trajectory.Mesh, intersects bool, err error) {
	if !defaultMesh.HasVertexNormals() {
		return trajectory.Mesh{}, false, trajectory.ErrInputInvalid
	}

	index := spatial.NewVertexIndex(defaultMesh)

	var kept [][3]int
	for _, tri := range mesh.Triangles {
		keep := false
		for _, vi := range tri {
			p := mesh.Vertices[vi]
			if !meshgeom.IsFinite(p) {
				continue
			}
			if index.NearestSignedSide(p, cornerTolerance) {
				keep = true
				break
			}
		}
		if keep {
			kept = append(kept, tri)
		}
	}

	if len(kept) == 0 {
		return trajectory.Mesh{}, false, nil
	}

	return buildFromIndices(mesh, kept), true, nil
}

// buildFromIndices reconstructs a welded mesh containing exactly the
// given triangles (by original vertex index) from src, recomputing
// normals so the pruned cells carry a consistent shell orientation.
func buildFromIndices(src trajectory.Mesh, tris [][3]int) trajectory.Mesh {
	soup := make([][3]r3.Vec, len(tris))
	for i, tri := range tris {
		soup[i] = [3]r3.Vec{src.Vertices[tri[0]], src.Vertices[tri[1]], src.Vertices[tri[2]]}
	}
	return meshgeom.BuildIndexed(soup)
}
