// Package planefit is the boundary collaborator that fits the dominant
// plane of a mesh's vertex cloud and returns its unit normal, using
// only the standard library (no off-the-shelf plane-fit or RANSAC
// library is pulled in for this).
package planefit

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/chazu/grindpath"
	"github.com/chazu/grindpath/internal/meshgeom"
	"gonum.org/v1/gonum/spatial/r3"
)

// minIterations is the RANSAC iteration floor.
const minIterations = 2000

// FitPlaneNormal returns the unit normal of the dominant plane through
// mesh's vertices, found by RANSAC with a distance threshold of the
// mesh's largest bounding-box extent.
func FitPlaneNormal(mesh trajectory.Mesh) (r3.Vec, error) {
	n := len(mesh.Vertices)
	if n < 3 {
		return r3.Vec{}, fmt.Errorf("planefit: %w", trajectory.ErrInputInvalid)
	}

	threshold := meshgeom.MaxExtent(mesh)
	if threshold == 0 {
		return r3.Vec{}, fmt.Errorf("planefit: %w", trajectory.ErrInputInvalid)
	}

	rng := rand.New(rand.NewSource(1))

	var bestNormal r3.Vec
	bestInliers := -1

	for iter := 0; iter < minIterations; iter++ {
		i, j, k := rng.Intn(n), rng.Intn(n), rng.Intn(n)
		if i == j || j == k || i == k {
			continue
		}
		a, bPt, c := mesh.Vertices[i], mesh.Vertices[j], mesh.Vertices[k]
		normal := r3.Cross(r3.Sub(bPt, a), r3.Sub(c, a))
		mag := r3.Norm(normal)
		if mag == 0 {
			continue
		}
		normal = r3.Scale(1/mag, normal)

		inliers := 0
		for _, v := range mesh.Vertices {
			dist := math.Abs(r3.Dot(normal, r3.Sub(v, a)))
			if dist <= threshold {
				inliers++
			}
		}
		if inliers > bestInliers {
			bestInliers = inliers
			bestNormal = normal
		}
	}

	if bestInliers < 0 {
		return r3.Vec{}, fmt.Errorf("planefit: %w", trajectory.ErrInputInvalid)
	}
	return bestNormal, nil
}
