// Package kernel defines an abstract geometry kernel interface used to
// synthesize primitive test solids (a flat plate, a half-cylinder) used
// as fixtures by the Dilator's tests and this package's own tests.
// Trimmed to two primitives plus boolean and transform operations, and
// re-pointed at trajectory.Mesh instead of a JSON rendering format.
package kernel

// Solid is an opaque handle to a geometry kernel solid.
type Solid interface {
	// BoundingBox returns the axis-aligned bounding box.
	BoundingBox() (min, max [3]float64)
}

// Kernel is the abstract geometry kernel interface. The sdfx backend is
// the only implementation in this module.
type Kernel interface {
	Box(x, y, z float64) Solid
	Cylinder(height, radius float64) Solid

	Union(a, b Solid) Solid
	Difference(a, b Solid) Solid
	Intersection(a, b Solid) Solid

	Translate(s Solid, x, y, z float64) Solid
	Rotate(s Solid, x, y, z float64) Solid // Euler angles in degrees

	ToMesh(s Solid) (*Mesh, error)
}
