package loaders

import (
	"bufio"
	"encoding/binary"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/df07/go-grid-raytracer/pkg/core"
)

// ErrUnsupportedFormat is returned for files the loaders cannot interpret
var ErrUnsupportedFormat = errors.New("unsupported format")

const (
	// maxFaceVertices bounds a single polygon's index list
	maxFaceVertices = 1 << 16
	maxPrealloc     = 1 << 20
)

// PLYHeader represents the parsed header information from a PLY file
type PLYHeader struct {
	Format      string // "binary_little_endian" or "ascii"
	Version     string // Usually "1.0"
	VertexCount int
	FaceCount   int
	VertexProps []PLYProperty
	FaceProps   []PLYProperty
}

// PLYProperty represents a property definition in the PLY header
type PLYProperty struct {
	Name     string
	Type     string
	IsList   bool
	ListType string // For list properties, the type of the count
	DataType string // For list properties, the type of the data
}

// PLYData contains the mesh data loaded from a PLY file
type PLYData struct {
	Vertices  []core.Vec3 // Vertex positions (x, y, z)
	Faces     []int       // Triangle indices (3 per triangle), polygons are fan triangulated
	Normals   []core.Vec3 // Per-vertex normals - empty if not present
	TexCoords []core.Vec2 // Per-vertex texture coordinates - empty if not present
}

// SurfacePoints returns one mesh vertex per PLY vertex. Missing normals are
// computed by averaging the normals of adjacent faces.
func (d *PLYData) SurfacePoints() []core.SurfacePoint {
	normals := d.Normals
	if len(normals) != len(d.Vertices) {
		normals = make([]core.Vec3, len(d.Vertices))
		for i := 0; i+2 < len(d.Faces); i += 3 {
			a, b, c := d.Vertices[d.Faces[i]], d.Vertices[d.Faces[i+1]], d.Vertices[d.Faces[i+2]]
			// Area weighted
			faceNormal := b.Subtract(a).Cross(c.Subtract(a))
			for _, index := range d.Faces[i : i+3] {
				normals[index] = normals[index].Add(faceNormal)
			}
		}
	}

	points := make([]core.SurfacePoint, len(d.Vertices))
	for i, position := range d.Vertices {
		points[i] = core.SurfacePoint{Position: position, Normal: normals[i].Normalize()}
		if len(d.TexCoords) == len(d.Vertices) {
			points[i].Coordinate = d.TexCoords[i]
		}
	}
	return points
}

// LoadPLY loads a PLY file and returns its vertex and face data
func LoadPLY(filename string) (*PLYData, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, errors.Wrap(err, "open PLY file")
	}
	defer file.Close()

	data, err := ReadPLY(file)
	if err != nil {
		return nil, errors.Wrapf(err, "load %s", filename)
	}
	return data, nil
}

// ReadPLY parses an ascii or binary little-endian PLY stream
func ReadPLY(r io.Reader) (*PLYData, error) {
	reader := bufio.NewReader(r)

	header, err := parsePLYHeader(reader)
	if err != nil {
		return nil, errors.Wrap(err, "parse PLY header")
	}

	var values valueReader
	switch header.Format {
	case "ascii":
		values = &asciiReader{reader: reader}
	case "binary_little_endian":
		values = &binaryReader{reader: reader}
	default:
		return nil, errors.Wrapf(ErrUnsupportedFormat, "PLY format %q", header.Format)
	}

	data := &PLYData{Vertices: make([]core.Vec3, 0, min(header.VertexCount, maxPrealloc))}
	if err := readVertices(values, header, data); err != nil {
		return nil, err
	}
	if err := readFaces(values, header, data); err != nil {
		return nil, err
	}
	return data, nil
}

// parsePLYHeader reads header lines up to and including end_header
func parsePLYHeader(reader *bufio.Reader) (*PLYHeader, error) {
	header := &PLYHeader{}
	var currentElement string

	magic, err := reader.ReadString('\n')
	if err != nil || strings.TrimSpace(magic) != "ply" {
		return nil, errors.Wrap(ErrUnsupportedFormat, "missing ply magic")
	}

	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			return nil, errors.Wrap(err, "read header line")
		}
		line = strings.TrimSpace(line)
		if line == "end_header" {
			break
		}

		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}

		switch parts[0] {
		case "format":
			if len(parts) >= 3 {
				header.Format = parts[1]
				header.Version = parts[2]
			}
		case "comment", "obj_info":
			// Ignore comments
		case "element":
			if len(parts) < 3 {
				return nil, errors.Errorf("invalid element line %q", line)
			}
			count, err := strconv.Atoi(parts[2])
			if err != nil || count < 0 {
				return nil, errors.Errorf("invalid element count: %s", parts[2])
			}
			currentElement = parts[1]
			switch currentElement {
			case "vertex":
				header.VertexCount = count
			case "face":
				header.FaceCount = count
			default:
				if count > 0 {
					return nil, errors.Wrapf(ErrUnsupportedFormat, "element %q", currentElement)
				}
			}
		case "property":
			prop, err := parsePLYProperty(parts[1:])
			if err != nil {
				return nil, err
			}
			switch currentElement {
			case "vertex":
				header.VertexProps = append(header.VertexProps, prop)
			case "face":
				header.FaceProps = append(header.FaceProps, prop)
			}
		}
	}

	return header, nil
}

// parsePLYProperty parses a property line from the PLY header
func parsePLYProperty(parts []string) (PLYProperty, error) {
	if len(parts) < 2 {
		return PLYProperty{}, errors.New("invalid property definition")
	}

	if parts[0] == "list" {
		if len(parts) < 4 {
			return PLYProperty{}, errors.New("invalid list property definition")
		}
		return PLYProperty{IsList: true, ListType: parts[1], DataType: parts[2], Name: parts[3]}, nil
	}
	return PLYProperty{Type: parts[0], Name: parts[1]}, nil
}

func readVertices(values valueReader, header *PLYHeader, data *PLYData) error {
	index := make(map[string]int, len(header.VertexProps))
	for i, prop := range header.VertexProps {
		if prop.IsList {
			return errors.Wrapf(ErrUnsupportedFormat, "list vertex property %q", prop.Name)
		}
		index[prop.Name] = i
	}

	for _, name := range []string{"x", "y", "z"} {
		if _, ok := index[name]; !ok {
			return errors.Errorf("vertex property %q missing", name)
		}
	}
	_, hasNormals := index["nx"]
	u, hasU := lookup(index, "u", "s", "texture_u")
	v, hasV := lookup(index, "v", "t", "texture_v")
	hasTexCoords := hasU && hasV

	row := make([]float64, len(header.VertexProps))
	for i := 0; i < header.VertexCount; i++ {
		for j, prop := range header.VertexProps {
			value, err := values.read(prop.Type)
			if err != nil {
				return errors.Wrapf(err, "read vertex %d", i)
			}
			row[j] = value
		}

		data.Vertices = append(data.Vertices, core.NewVec3(row[index["x"]], row[index["y"]], row[index["z"]]))
		if hasNormals {
			data.Normals = append(data.Normals, core.NewVec3(row[index["nx"]], row[index["ny"]], row[index["nz"]]))
		}
		if hasTexCoords {
			data.TexCoords = append(data.TexCoords, core.NewVec2(row[u], row[v]))
		}
	}
	return nil
}

func lookup(index map[string]int, names ...string) (int, bool) {
	for _, name := range names {
		if i, ok := index[name]; ok {
			return i, true
		}
	}
	return 0, false
}

func readFaces(values valueReader, header *PLYHeader, data *PLYData) error {
	for i := 0; i < header.FaceCount; i++ {
		for _, prop := range header.FaceProps {
			if !prop.IsList {
				if _, err := values.read(prop.Type); err != nil {
					return errors.Wrapf(err, "read face %d", i)
				}
				continue
			}

			count, err := values.read(prop.ListType)
			if err != nil {
				return errors.Wrapf(err, "read face %d", i)
			}
			if !(count >= 0 && count <= maxFaceVertices && count == math.Trunc(count)) {
				return errors.Errorf("face %d: invalid list count %v", i, count)
			}
			indices := make([]int, int(count))
			for j := range indices {
				value, err := values.read(prop.DataType)
				if err != nil {
					return errors.Wrapf(err, "read face %d", i)
				}
				indices[j] = int(value)
			}

			if prop.Name != "vertex_indices" && prop.Name != "vertex_index" {
				continue
			}
			for _, index := range indices {
				if index < 0 || index >= len(data.Vertices) {
					return errors.Errorf("face %d references vertex %d of %d", i, index, len(data.Vertices))
				}
			}
			// Fan triangulation
			for j := 1; j+1 < len(indices); j++ {
				data.Faces = append(data.Faces, indices[0], indices[j], indices[j+1])
			}
		}
	}
	return nil
}

// valueReader reads one scalar of a PLY type as float64
type valueReader interface {
	read(plyType string) (float64, error)
}

type asciiReader struct {
	reader *bufio.Reader
	fields []string
}

func (a *asciiReader) read(plyType string) (float64, error) {
	for len(a.fields) == 0 {
		line, err := a.reader.ReadString('\n')
		a.fields = strings.Fields(line)
		if err != nil && len(a.fields) == 0 {
			return 0, errors.Wrap(err, "read ascii value")
		}
	}

	field := a.fields[0]
	a.fields = a.fields[1:]
	value, err := strconv.ParseFloat(field, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "parse %s value", plyType)
	}
	return value, nil
}

type binaryReader struct {
	reader  *bufio.Reader
	scratch [8]byte
}

func (b *binaryReader) read(plyType string) (float64, error) {
	size := typeSize(plyType)
	if size == 0 {
		return 0, errors.Wrapf(ErrUnsupportedFormat, "property type %q", plyType)
	}
	buf := b.scratch[:size]
	if _, err := io.ReadFull(b.reader, buf); err != nil {
		return 0, errors.Wrap(err, "read binary value")
	}

	le := binary.LittleEndian
	switch plyType {
	case "char", "int8":
		return float64(int8(buf[0])), nil
	case "uchar", "uint8":
		return float64(buf[0]), nil
	case "short", "int16":
		return float64(int16(le.Uint16(buf))), nil
	case "ushort", "uint16":
		return float64(le.Uint16(buf)), nil
	case "int", "int32":
		return float64(int32(le.Uint32(buf))), nil
	case "uint", "uint32":
		return float64(le.Uint32(buf)), nil
	case "float", "float32":
		return float64(math.Float32frombits(le.Uint32(buf))), nil
	default:
		return math.Float64frombits(le.Uint64(buf)), nil
	}
}

// typeSize returns the byte size of a PLY scalar type, 0 if unknown
func typeSize(plyType string) int {
	switch plyType {
	case "char", "uchar", "int8", "uint8":
		return 1
	case "short", "ushort", "int16", "uint16":
		return 2
	case "int", "uint", "int32", "uint32", "float", "float32":
		return 4
	case "double", "float64":
		return 8
	default:
		return 0
	}
}
