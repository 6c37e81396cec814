// Command grindpath loads an input mesh and a default (forbidden
// material) mesh, plans a layered grinding trajectory, and writes the
// result, following kennylevinsen-gocnc's flag-based CLI conventions:
// one flag per option, flag.Usage() printed on bad arguments, explicit
// os.Exit codes per failure class.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/chazu/grindpath"
	"github.com/chazu/grindpath/internal/planner"
	"github.com/chazu/grindpath/plyio"
	"gonum.org/v1/gonum/spatial/r3"
)

var (
	inputFile   = flag.String("input", "", "PLY file for the surface to grind")
	defaultFile = flag.String("default", "", "PLY file for the forbidden reference surface")

	grindDepth             = flag.Float64("grinddepth", 0.001, "Step between successive passes, in metres")
	effectorDiameter       = flag.Float64("effectordiameter", 0.01, "Tool diameter, in metres")
	covering               = flag.Float64("covering", 0.3, "Fractional overlap between adjacent lines, in [0, 1)")
	extricationCoefficient = flag.Int("extricationcoefficient", 2, "Extra pass-count worth of lift for the extrication surface")
	extricationFrequency   = flag.Int("extricationfrequency", 1, "Regenerate the extrication surface every N passes")
	cornerTolerance        = flag.Float64("cornertolerance", 0.1, "Pruner's near-tangent corner tolerance")

	dumpStack      = flag.String("dumpstack", "", "Directory to write the computed pass stack as mesh_0.ply..mesh_k-1.ply")
	dumpTrajectory = flag.String("dumptrajectory", "", "Path to write the final pose stream as a PLY point cloud")
)

func main() {
	flag.Parse()
	if len(flag.Args()) > 0 {
		flag.Usage()
		os.Exit(1)
	}
	if *inputFile == "" || *defaultFile == "" {
		fmt.Fprintln(os.Stderr, "Error: -input and -default are required")
		flag.Usage()
		os.Exit(1)
	}

	inputMesh, err := plyio.LoadMesh(*inputFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: loading input mesh: %s\n", err)
		os.Exit(2)
	}
	defaultMesh, err := plyio.LoadMesh(*defaultFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: loading default mesh: %s\n", err)
		os.Exit(2)
	}

	cfg := trajectory.Config{
		GrindDepth:             *grindDepth,
		EffectorDiameter:       *effectorDiameter,
		Covering:               *covering,
		ExtricationCoefficient: *extricationCoefficient,
		ExtricationFrequency:   *extricationFrequency,
		PruneCornerTolerance:   *cornerTolerance,
	}

	log.Printf("planning: %d input vertices, %d default vertices, grindDepth=%g effectorDiameter=%g covering=%g",
		len(inputMesh.Vertices), len(defaultMesh.Vertices), cfg.GrindDepth, cfg.EffectorDiameter, cfg.Covering)

	traj, err := planner.Generate(inputMesh, defaultMesh, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: planning failed: %s\n", err)
		os.Exit(3)
	}

	log.Printf("planned %d poses across %d passes", traj.Len(), len(traj.PassEndIndex))

	if *dumpTrajectory != "" {
		if !plyio.SaveMesh(*dumpTrajectory, trajectoryToPointCloud(traj)) {
			fmt.Fprintf(os.Stderr, "Error: writing trajectory dump to %s\n", *dumpTrajectory)
			os.Exit(2)
		}
	}

	if *dumpStack != "" {
		if err := os.MkdirAll(*dumpStack, 0o755); err != nil {
			fmt.Fprintf(os.Stderr, "Error: creating dump directory: %s\n", err)
			os.Exit(2)
		}
		stack, err := planner.BuildPassStack(inputMesh, defaultMesh, cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: building pass stack: %s\n", err)
			os.Exit(3)
		}
		for i, m := range stack.Meshes {
			path := filepath.Join(*dumpStack, fmt.Sprintf("mesh_%d.ply", i))
			if !plyio.SaveMesh(path, m) {
				fmt.Fprintf(os.Stderr, "Error: writing %s\n", path)
				os.Exit(2)
			}
		}
	}
}

// trajectoryToPointCloud renders poses as a point cloud (position +
// outward normal) suitable for visual inspection in any PLY viewer,
// giving the CLI a way to hand the result to a human without a
// dedicated visualization layer. No faces are emitted.
func trajectoryToPointCloud(traj trajectory.Trajectory) trajectory.Mesh {
	mesh := trajectory.Mesh{
		Vertices:      make([]r3.Vec, len(traj.Poses)),
		VertexNormals: make([]r3.Vec, len(traj.Poses)),
	}
	for i, p := range traj.Poses {
		mesh.Vertices[i] = p.Translation
		mesh.VertexNormals[i] = p.Z
	}
	return mesh
}

func init() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s -input <ply> -default <ply> [options]\n", filepath.Base(os.Args[0]))
		flag.PrintDefaults()
	}
}
