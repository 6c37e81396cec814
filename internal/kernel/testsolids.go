package kernel

import "github.com/chazu/grindpath"

// FlatPlate returns a width x depth x thickness plate centred on the
// origin in X and Y, used as the S1/S2 flat-plate fixture.
func FlatPlate(k Kernel, width, depth, thickness float64) trajectory.Mesh {
	box := k.Box(width, depth, thickness)
	box = k.Translate(box, -width/2, -depth/2, -thickness/2)
	mesh, err := k.ToMesh(box)
	if err != nil {
		panic(err)
	}
	return mesh.ToTrajectoryMesh()
}

// HalfCylinder returns a half-cylinder of the given radius and length,
// the S3 curved-surface fixture: a full cylinder intersected with a box
// spanning only the y >= 0 half-space.
func HalfCylinder(k Kernel, radius, length float64) trajectory.Mesh {
	cyl := k.Cylinder(length, radius)
	clip := k.Box(2*radius, radius, 2*length)
	clip = k.Translate(clip, -radius, 0, -length/2)
	half := k.Intersection(cyl, clip)
	mesh, err := k.ToMesh(half)
	if err != nil {
		panic(err)
	}
	return mesh.ToTrajectoryMesh()
}
