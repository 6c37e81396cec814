// Package planner implements the Planner: orchestrating layered passes
// over the dilation stack, weaving grinding lines with extrication
// segments, and emitting the final pose/flag/pass-index streams. It is
// the Generate entry point and the only package that wires every other
// geometry stage together.
package planner

import (
	"fmt"

	"github.com/chazu/grindpath"
	"github.com/chazu/grindpath/internal/dilate"
	"github.com/chazu/grindpath/internal/lineorg"
	"github.com/chazu/grindpath/internal/meshgeom"
	"github.com/chazu/grindpath/internal/prune"
	"github.com/chazu/grindpath/internal/slicer"
	"github.com/chazu/grindpath/planefit"
	"gonum.org/v1/gonum/spatial/r3"
)

// builder accumulates the trajectory across passes.
type builder struct {
	poses        []trajectory.Pose
	isGrinding   []bool
	passEndIndex []int
}

func (b *builder) append(p trajectory.Pose, grinding bool) {
	b.poses = append(b.poses, p)
	b.isGrinding = append(b.isGrinding, grinding)
}

func (b *builder) endPass() {
	b.passEndIndex = append(b.passEndIndex, len(b.poses)-1)
}

func (b *builder) result() trajectory.Trajectory {
	return trajectory.Trajectory{Poses: b.poses, IsGrinding: b.isGrinding, PassEndIndex: b.passEndIndex}
}

// Generate computes the layered tool-path trajectory for inputMesh,
// avoiding defaultMesh.
func Generate(inputMesh, defaultMesh trajectory.Mesh, cfg trajectory.Config) (trajectory.Trajectory, error) {
	if len(inputMesh.Vertices) == 0 || !meshgeom.AllFinite(inputMesh) {
		return trajectory.Trajectory{}, fmt.Errorf("planner: %w", trajectory.ErrInputInvalid)
	}
	if cfg.ExtricationCoefficient < 1 {
		cfg.ExtricationCoefficient = 1
	}
	if cfg.ExtricationFrequency < 1 {
		cfg.ExtricationFrequency = 1
	}

	input := inputMesh
	if !input.HasVertexNormals() {
		meshgeom.ComputeVertexNormals(&input)
	}

	meshNormal, err := planefit.FitPlaneNormal(input)
	if err != nil {
		return trajectory.Trajectory{}, fmt.Errorf("planner: plane fit: %w", err)
	}
	sweepDir := r3.Unit(r3.Vec{X: meshNormal.Z, Y: 0, Z: -meshNormal.X})

	stack, noIntersection, err := buildPassStack(input, defaultMesh, cfg)
	if err != nil {
		return trajectory.Trajectory{}, err
	}
	if noIntersection {
		return trajectory.Trajectory{}, nil
	}

	k := len(stack)
	b := &builder{}

	var extricationSurface trajectory.Mesh
	var extricationLines []trajectory.Polyline

	for i := 0; i < k; i++ {
		if i%cfg.ExtricationFrequency == 0 {
			depth := float64(cfg.ExtricationCoefficient+k-1-i) * cfg.GrindDepth
			surf, lines, err := regenerateExtrication(input, depth, sweepDir, cfg)
			if err != nil {
				return b.result(), fmt.Errorf("planner: pass %d: extrication surface: %w", i, err)
			}
			extricationSurface = surf
			extricationLines = lines
		}

		liftDistance := float64(cfg.ExtricationCoefficient+i) * cfg.GrindDepth

		mesh := stack[i]
		isInput := i == k-1
		lines, err := sliceOrderedLines(mesh, sweepDir, meshNormal, isInput, cfg)
		if err != nil {
			if serr, ok := err.(*trajectory.SliceExhaustionError); ok {
				serr.Pass = i
			}
			return b.result(), err
		}

		runPass(b, lines, extricationSurface, extricationLines, meshNormal, liftDistance, cfg)
		b.endPass()
	}

	return b.result(), nil
}

// BuildPassStack exposes the PassStack construction for callers that
// only need it for inspection, such as dumping intermediate offset
// meshes, independent of running a full Generate call.
func BuildPassStack(input, defaultMesh trajectory.Mesh, cfg trajectory.Config) (trajectory.PassStack, error) {
	if !input.HasVertexNormals() {
		meshgeom.ComputeVertexNormals(&input)
	}
	meshes, _, err := buildPassStack(input, defaultMesh, cfg)
	if err != nil {
		return trajectory.PassStack{}, err
	}
	return trajectory.PassStack{Meshes: meshes}, nil
}

// buildPassStack constructs the PassStack by repeatedly dilating input
// further outward until the offset no longer intersects defaultMesh. It
// returns noIntersection = true when the very first candidate offset
// already fails to intersect defaultMesh, signalling that there is no
// material to remove at all; any later non-intersecting offset just
// ends the accretion loop normally, and input is still appended as the
// innermost stack entry.
func buildPassStack(input, defaultMesh trajectory.Mesh, cfg trajectory.Config) (stack []trajectory.Mesh, noIntersection bool, err error) {
	var layers []trajectory.Mesh
	tol := cfg.CornerTolerance()

	d := cfg.GrindDepth
	for {
		m, derr := dilate.Dilate(input, d)
		if derr != nil {
			if d == cfg.GrindDepth {
				return nil, false, fmt.Errorf("planner: initial dilation at depth %g: %w", d, derr)
			}
			break
		}
		pruned, intersects, perr := prune.PruneAgainstDefault(m, defaultMesh, tol)
		if perr != nil {
			return nil, false, fmt.Errorf("planner: pruning offset at depth %g: %w", d, perr)
		}
		if !intersects {
			if d == cfg.GrindDepth {
				return nil, true, nil
			}
			break
		}
		if pruned.NumTriangles() <= 10 {
			break
		}
		layers = append(layers, m)
		d += cfg.GrindDepth
	}

	stack = make([]trajectory.Mesh, 0, len(layers)+1)
	for i := len(layers) - 1; i >= 0; i-- {
		stack = append(stack, layers[i])
	}
	stack = append(stack, input)
	return stack, false, nil
}

// regenerateExtrication dilates input at depth to build the extrication
// surface and slices it along sweepDir.
func regenerateExtrication(input trajectory.Mesh, depth float64, sweepDir r3.Vec, cfg trajectory.Config) (trajectory.Mesh, []trajectory.Polyline, error) {
	surf, err := dilate.Dilate(input, depth)
	if err != nil {
		return trajectory.Mesh{}, nil, err
	}
	expected := slicer.ExpectedLineCount(surf, sweepDir, cfg.EffectorDiameter, cfg.Covering)
	bundle, err := slicer.Slice(surf, sweepDir, expected, cfg.EffectorDiameter, cfg.Covering, cfg.MaxSliceRetries)
	if err != nil {
		if _, ok := err.(*trajectory.SliceExhaustionError); !ok {
			return trajectory.Mesh{}, nil, err
		}
		// A degraded extrication surface is still usable for lift-off
		// routing; only grinding-line slicing is fatal on exhaustion.
	}
	return surf, bundle.Lines, nil
}

// sliceOrderedLines slices mesh along sweepDir and runs the
// LineOrganiser's sort/orient/decimate pipeline, flipping normals when
// mesh is the input mesh itself.
func sliceOrderedLines(mesh trajectory.Mesh, sweepDir, meshNormal r3.Vec, isInput bool, cfg trajectory.Config) ([]trajectory.Polyline, error) {
	expected := slicer.ExpectedLineCount(mesh, sweepDir, cfg.EffectorDiameter, cfg.Covering)
	bundle, err := slicer.Slice(mesh, sweepDir, expected, cfg.EffectorDiameter, cfg.Covering, cfg.MaxSliceRetries)
	if err != nil {
		if _, ok := err.(*trajectory.SliceExhaustionError); ok {
			return nil, err
		}
		return nil, err
	}

	bundle = lineorg.Sort(bundle, sweepDir)
	bundle = lineorg.Orient(bundle, sweepDir, meshNormal)

	lines := make([]trajectory.Polyline, 0, len(bundle.Lines))
	for _, line := range bundle.Lines {
		line = lineorg.Decimate(line)
		if len(line) < 2 {
			continue
		}
		if isInput {
			line = lineorg.FlipNormals(line)
		}
		lines = append(lines, line)
	}
	return lines, nil
}
