// Package plyio is the boundary collaborator for loading and saving
// meshes in the PLY format. Like planefit, this is a
// standard-library-only component, using bufio and encoding/binary for
// both the ASCII and binary_little_endian variants.
package plyio

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/chazu/grindpath"
	"gonum.org/v1/gonum/spatial/r3"
)

type header struct {
	ascii        bool
	vertexCount  int
	faceCount    int
	hasNormals   bool
	vertexFields []string // in file order: x,y,z[,nx,ny,nz]
}

// LoadMesh reads a triangulated PLY file (ASCII or binary_little_endian)
// and returns its mesh.
func LoadMesh(path string) (trajectory.Mesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return trajectory.Mesh{}, fmt.Errorf("plyio: open %s: %w", path, err)
	}
	defer f.Close()

	r := bufio.NewReader(f)
	h, err := parseHeader(r)
	if err != nil {
		return trajectory.Mesh{}, fmt.Errorf("plyio: %s: %w", path, err)
	}

	var mesh trajectory.Mesh
	if h.ascii {
		mesh, err = readASCIIBody(r, h)
	} else {
		mesh, err = readBinaryBody(r, h)
	}
	if err != nil {
		return trajectory.Mesh{}, fmt.Errorf("plyio: %s: %w", path, err)
	}
	return mesh, nil
}

func parseHeader(r *bufio.Reader) (header, error) {
	line, err := readLine(r)
	if err != nil || strings.TrimSpace(line) != "ply" {
		return header{}, fmt.Errorf("not a ply file")
	}

	h := header{}
	inVertexElement := false
	for {
		line, err := readLine(r)
		if err != nil {
			return header{}, fmt.Errorf("unexpected eof in header: %w", err)
		}
		fields := strings.Fields(strings.TrimSpace(line))
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "comment":
			continue
		case "format":
			if len(fields) < 2 {
				return header{}, fmt.Errorf("malformed format line")
			}
			switch fields[1] {
			case "ascii":
				h.ascii = true
			case "binary_little_endian":
				h.ascii = false
			default:
				return header{}, fmt.Errorf("unsupported format %q", fields[1])
			}
		case "element":
			if len(fields) < 3 {
				return header{}, fmt.Errorf("malformed element line")
			}
			n, err := strconv.Atoi(fields[2])
			if err != nil {
				return header{}, fmt.Errorf("malformed element count: %w", err)
			}
			switch fields[1] {
			case "vertex":
				h.vertexCount = n
				inVertexElement = true
			case "face":
				h.faceCount = n
				inVertexElement = false
			default:
				inVertexElement = false
			}
		case "property":
			if !inVertexElement || len(fields) < 3 {
				continue
			}
			name := fields[len(fields)-1]
			h.vertexFields = append(h.vertexFields, name)
			if name == "nx" || name == "ny" || name == "nz" {
				h.hasNormals = true
			}
		case "end_header":
			return h, nil
		}
	}
}

func readLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return line, nil
}

func readASCIIBody(r *bufio.Reader, h header) (trajectory.Mesh, error) {
	mesh := trajectory.Mesh{
		Vertices: make([]r3.Vec, 0, h.vertexCount),
	}
	var normals []r3.Vec
	if h.hasNormals {
		normals = make([]r3.Vec, 0, h.vertexCount)
	}

	xi, yi, zi, nxi, nyi, nzi := fieldIndices(h.vertexFields)

	for i := 0; i < h.vertexCount; i++ {
		line, err := readLine(r)
		if err != nil {
			return trajectory.Mesh{}, fmt.Errorf("reading vertex %d: %w", i, err)
		}
		fields := strings.Fields(line)
		if len(fields) < len(h.vertexFields) {
			return trajectory.Mesh{}, fmt.Errorf("vertex %d: too few fields", i)
		}
		vals := make([]float64, len(fields))
		for j, s := range fields {
			vals[j], err = strconv.ParseFloat(s, 64)
			if err != nil {
				return trajectory.Mesh{}, fmt.Errorf("vertex %d: %w", i, err)
			}
		}
		mesh.Vertices = append(mesh.Vertices, r3.Vec{X: vals[xi], Y: vals[yi], Z: vals[zi]})
		if h.hasNormals {
			normals = append(normals, r3.Vec{X: vals[nxi], Y: vals[nyi], Z: vals[nzi]})
		}
	}
	mesh.VertexNormals = normals

	for i := 0; i < h.faceCount; i++ {
		line, err := readLine(r)
		if err != nil {
			return trajectory.Mesh{}, fmt.Errorf("reading face %d: %w", i, err)
		}
		fields := strings.Fields(line)
		if len(fields) < 4 {
			return trajectory.Mesh{}, fmt.Errorf("face %d: too few fields", i)
		}
		count, err := strconv.Atoi(fields[0])
		if err != nil || count != 3 {
			return trajectory.Mesh{}, fmt.Errorf("face %d: only triangles are supported", i)
		}
		var tri [3]int
		for j := 0; j < 3; j++ {
			idx, err := strconv.Atoi(fields[1+j])
			if err != nil {
				return trajectory.Mesh{}, fmt.Errorf("face %d: %w", i, err)
			}
			tri[j] = idx
		}
		mesh.Triangles = append(mesh.Triangles, tri)
	}
	return mesh, nil
}

func fieldIndices(fields []string) (xi, yi, zi, nxi, nyi, nzi int) {
	index := func(name string) int {
		for i, f := range fields {
			if f == name {
				return i
			}
		}
		return -1
	}
	return index("x"), index("y"), index("z"), index("nx"), index("ny"), index("nz")
}

func readBinaryBody(r *bufio.Reader, h header) (trajectory.Mesh, error) {
	mesh := trajectory.Mesh{Vertices: make([]r3.Vec, h.vertexCount)}
	var normals []r3.Vec
	if h.hasNormals {
		normals = make([]r3.Vec, h.vertexCount)
	}

	floatsPerVertex := len(h.vertexFields)
	xi, yi, zi, nxi, nyi, nzi := fieldIndices(h.vertexFields)

	buf := make([]byte, 4*floatsPerVertex)
	vals := make([]float32, floatsPerVertex)
	for i := 0; i < h.vertexCount; i++ {
		if _, err := io.ReadFull(r, buf); err != nil {
			return trajectory.Mesh{}, fmt.Errorf("reading vertex %d: %w", i, err)
		}
		for j := 0; j < floatsPerVertex; j++ {
			bits := binary.LittleEndian.Uint32(buf[j*4 : j*4+4])
			vals[j] = math.Float32frombits(bits)
		}
		mesh.Vertices[i] = r3.Vec{X: float64(vals[xi]), Y: float64(vals[yi]), Z: float64(vals[zi])}
		if h.hasNormals {
			normals[i] = r3.Vec{X: float64(vals[nxi]), Y: float64(vals[nyi]), Z: float64(vals[nzi])}
		}
	}
	mesh.VertexNormals = normals

	for i := 0; i < h.faceCount; i++ {
		var countByte [1]byte
		if _, err := io.ReadFull(r, countByte[:]); err != nil {
			return trajectory.Mesh{}, fmt.Errorf("reading face %d count: %w", i, err)
		}
		count := int(countByte[0])
		if count != 3 {
			return trajectory.Mesh{}, fmt.Errorf("face %d: only triangles are supported", i)
		}
		idxBuf := make([]byte, 4*3)
		if _, err := io.ReadFull(r, idxBuf); err != nil {
			return trajectory.Mesh{}, fmt.Errorf("reading face %d indices: %w", i, err)
		}
		var tri [3]int
		for j := 0; j < 3; j++ {
			tri[j] = int(int32(binary.LittleEndian.Uint32(idxBuf[j*4 : j*4+4])))
		}
		mesh.Triangles = append(mesh.Triangles, tri)
	}
	return mesh, nil
}

// SaveMesh writes mesh to path in ASCII PLY format, including per-vertex
// normals when present. It reports whether the write succeeded.
func SaveMesh(path string, mesh trajectory.Mesh) bool {
	f, err := os.Create(path)
	if err != nil {
		return false
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	hasNormals := mesh.HasVertexNormals()

	fmt.Fprintln(w, "ply")
	fmt.Fprintln(w, "format ascii 1.0")
	fmt.Fprintf(w, "element vertex %d\n", len(mesh.Vertices))
	fmt.Fprintln(w, "property float x")
	fmt.Fprintln(w, "property float y")
	fmt.Fprintln(w, "property float z")
	if hasNormals {
		fmt.Fprintln(w, "property float nx")
		fmt.Fprintln(w, "property float ny")
		fmt.Fprintln(w, "property float nz")
	}
	fmt.Fprintf(w, "element face %d\n", len(mesh.Triangles))
	fmt.Fprintln(w, "property list uchar int vertex_indices")
	fmt.Fprintln(w, "end_header")

	for i, v := range mesh.Vertices {
		if hasNormals {
			n := mesh.VertexNormals[i]
			fmt.Fprintf(w, "%g %g %g %g %g %g\n", v.X, v.Y, v.Z, n.X, n.Y, n.Z)
		} else {
			fmt.Fprintf(w, "%g %g %g\n", v.X, v.Y, v.Z)
		}
	}
	for _, tri := range mesh.Triangles {
		fmt.Fprintf(w, "3 %d %d %d\n", tri[0], tri[1], tri[2])
	}

	return w.Flush() == nil
}
