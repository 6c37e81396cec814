// Package trajectory defines the data model shared by every stage of the
// tool-path planner: meshes, polylines, poses and the final trajectory.
// It has no dependency on any other package in this module so that both
// the geometry stages and the CLI driver can import it without creating
// an import cycle.
package trajectory

import "gonum.org/v1/gonum/spatial/r3"

// Mesh is a triangulated surface. Vertices and Triangles are required;
// VertexNormals and FaceNormals are optional and, when present, must be
// unit length and consistently oriented outward.
type Mesh struct {
	Vertices      []r3.Vec
	Triangles     [][3]int
	VertexNormals []r3.Vec
	FaceNormals   []r3.Vec
}

// NumVertices returns the number of vertices in the mesh.
func (m Mesh) NumVertices() int { return len(m.Vertices) }

// NumTriangles returns the number of triangles in the mesh.
func (m Mesh) NumTriangles() int { return len(m.Triangles) }

// HasVertexNormals reports whether per-vertex normals are present and
// match the vertex count.
func (m Mesh) HasVertexNormals() bool {
	return len(m.VertexNormals) == len(m.Vertices) && len(m.Vertices) > 0
}

// PointNormal is a position paired with a unit surface normal.
type PointNormal struct {
	Pos    r3.Vec
	Normal r3.Vec
}

// Polyline is a finite ordered sequence of points-with-normal. Callers
// must discard polylines shorter than two points after decimation.
type Polyline []PointNormal

// LineBundle is an ordered sequence of polylines sharing a cut-plane
// normal, ordered by the signed projection of each polyline's first
// point onto the sweep direction.
type LineBundle struct {
	CutNormal r3.Vec
	Lines     []Polyline
}

// Pose is a rigid transform: translation plus an orthonormal frame whose
// columns are (X, Y, Z) with X forward along the polyline, Z the surface
// outward normal, and Y = Z × X.
type Pose struct {
	Translation r3.Vec
	X, Y, Z     r3.Vec
}

// Config holds the Planner's recognised tuning parameters.
type Config struct {
	// GrindDepth is the step, in metres, between successive passes.
	GrindDepth float64
	// EffectorDiameter is the tool diameter in metres.
	EffectorDiameter float64
	// Covering is the fractional overlap between adjacent lines, in [0, 1).
	Covering float64
	// ExtricationCoefficient is the additional pass-count worth of lift
	// for the extrication surface; must be >= 1.
	ExtricationCoefficient int
	// ExtricationFrequency regenerates the extrication surface every N
	// passes; must be >= 1.
	ExtricationFrequency int
	// PruneCornerTolerance is the dot-product tolerance used by the
	// Pruner to avoid spurious deletion along near-tangent corners.
	// Defaults to 0.1 when zero.
	PruneCornerTolerance float64
	// MaxSliceRetries bounds the Slicer's expected-line-count retry
	// loop. Defaults to 2*expected+8 when zero (per line count).
	MaxSliceRetries int
}

// LineSpacing returns the effective spacing between adjacent lines.
func (c Config) LineSpacing() float64 {
	return c.EffectorDiameter * (1 - c.Covering)
}

// CornerTolerance returns the configured Pruner corner tolerance, or the
// documented default of 0.1 if unset.
func (c Config) CornerTolerance() float64 {
	if c.PruneCornerTolerance == 0 {
		return 0.1
	}
	return c.PruneCornerTolerance
}

// PassStack is the ordered sequence of offset meshes M0..M(k-1), M0 the
// outermost (first ground) offset and M(k-1) the input mesh itself.
type PassStack struct {
	Meshes []Mesh
}

// ExtricationSurface is a dilation of the input mesh at a larger
// distance than any grinding pass, recomputed every ExtricationFrequency
// passes and reused until then.
type ExtricationSurface struct {
	Mesh Mesh
}

// Trajectory is the Planner's output: a pose stream, a per-pose flag
// marking grinding vs. extrication/transition points, and the index of
// the last pose of each pass.
type Trajectory struct {
	Poses        []Pose
	IsGrinding   []bool
	PassEndIndex []int
}

// Len returns the number of poses in the trajectory.
func (t Trajectory) Len() int { return len(t.Poses) }
