package geometry

import (
	"cmp"
	"fmt"
	"iter"
	"math"
	"slices"
	"strings"

	"github.com/pkg/errors"

	"github.com/df07/go-grid-raytracer/pkg/core"
)

// MeshMode selects the intersection strategy of a Mesh
type MeshMode int

const (
	// MeshNaive tests every triangle and sorts all hits
	MeshNaive MeshMode = iota
	// MeshGrid walks a uniform grid cell by cell along the ray
	MeshGrid
)

// DefaultGridSize is the number of cells along each axis of a mesh grid
const DefaultGridSize = 20

const (
	// gridDirectionEpsilon is added to every direction component before the
	// grid walk so an exactly axis-aligned ray never divides by zero. It is
	// only used for stepping; triangle tests use the unmodified ray.
	gridDirectionEpsilon = 1e-9

	// gridPadding widens the grid cube and each triangle's binned bounds, as a
	// fraction of the cell size, so the perturbed walk can't step past a
	// triangle whose hit lies exactly on a cell boundary.
	gridPadding = 1e-4
)

func (m MeshMode) String() string {
	switch m {
	case MeshNaive:
		return "naive"
	case MeshGrid:
		return "grid"
	default:
		return fmt.Sprintf("MeshMode(%d)", int(m))
	}
}

// ParseMeshMode converts a configuration string into a MeshMode
func ParseMeshMode(s string) (MeshMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "naive":
		return MeshNaive, nil
	case "grid", "":
		return MeshGrid, nil
	default:
		return 0, errors.Errorf("unknown mesh acceleration %q (want naive or grid)", s)
	}
}

// MeshOptions contains optional parameters for mesh creation
type MeshOptions struct {
	Mode     MeshMode // Intersection strategy (default MeshGrid)
	GridSize int      // Cells per axis for MeshGrid (0 = DefaultGridSize)
}

// Mesh is an indexed triangle mesh whose hits interpolate vertex attributes
// with barycentric weights
type Mesh[V Vertex[V]] struct {
	vertices []V
	indices  []int
	mode     MeshMode
	bounds   core.AABB
	grid     *uniformGrid
}

// NewMesh creates a mesh from vertices and triangle indices (3 per triangle).
// options may be nil for a grid-accelerated mesh with the default grid size.
// It panics on malformed indices or an unsupported mode.
func NewMesh[V Vertex[V]](vertices []V, indices []int, options *MeshOptions) *Mesh[V] {
	if len(indices)%3 != 0 {
		panic("Face indices must be a multiple of 3")
	}
	for _, index := range indices {
		if index < 0 || index >= len(vertices) {
			panic("Face index out of bounds")
		}
	}

	opts := MeshOptions{Mode: MeshGrid, GridSize: DefaultGridSize}
	if options != nil {
		opts.Mode = options.Mode
		if options.GridSize != 0 {
			opts.GridSize = options.GridSize
		}
	}
	if opts.GridSize < 1 {
		panic(fmt.Sprintf("invalid grid size %d", opts.GridSize))
	}

	mesh := &Mesh[V]{
		vertices: vertices,
		indices:  indices,
		mode:     opts.Mode,
	}

	boxes := make([]core.AABB, mesh.TriangleCount())
	for i := range boxes {
		a, b, c := mesh.corners(i)
		boxes[i] = core.NewAABBFromPoints(a, b, c)
		if i == 0 {
			mesh.bounds = boxes[i]
		} else {
			mesh.bounds = mesh.bounds.Union(boxes[i])
		}
	}

	switch opts.Mode {
	case MeshNaive:
	case MeshGrid:
		mesh.grid = newUniformGrid(boxes, mesh.bounds, opts.GridSize)
	default:
		panic(fmt.Sprintf("unsupported mesh mode %v", opts.Mode))
	}

	return mesh
}

// NewNaiveMesh creates a mesh that tests every triangle per ray
func NewNaiveMesh[V Vertex[V]](vertices []V, indices []int) *Mesh[V] {
	return NewMesh(vertices, indices, &MeshOptions{Mode: MeshNaive})
}

// NewGridMesh creates a mesh accelerated by a size^3 uniform grid
func NewGridMesh[V Vertex[V]](vertices []V, indices []int, size int) *Mesh[V] {
	return NewMesh(vertices, indices, &MeshOptions{Mode: MeshGrid, GridSize: size})
}

// TriangleCount returns the number of triangles in this mesh
func (m *Mesh[V]) TriangleCount() int {
	return len(m.indices) / 3
}

// Bounds returns the axis-aligned bounds of all triangles
func (m *Mesh[V]) Bounds() core.AABB {
	return m.bounds
}

// Mode returns the mesh's intersection strategy
func (m *Mesh[V]) Mode() MeshMode {
	return m.mode
}

// Hits yields triangle hits inside the ray interval ordered by T
func (m *Mesh[V]) Hits(ray core.Ray) iter.Seq[HitInfo[V]] {
	if m.mode == MeshNaive {
		return m.naiveHits(ray)
	}
	return m.gridHits(ray)
}

func (m *Mesh[V]) corners(triangle int) (a, b, c core.Vec3) {
	return m.vertices[m.indices[triangle*3]].Point(),
		m.vertices[m.indices[triangle*3+1]].Point(),
		m.vertices[m.indices[triangle*3+2]].Point()
}

// hitTriangle intersects one triangle and interpolates its vertex attributes
func (m *Mesh[V]) hitTriangle(triangle int, ray core.Ray) (HitInfo[V], bool) {
	va := m.vertices[m.indices[triangle*3]]
	vb := m.vertices[m.indices[triangle*3+1]]
	vc := m.vertices[m.indices[triangle*3+2]]

	hit, ok := IntersectTriangle(ray, va.Point(), vb.Point(), vc.Point())
	if !ok {
		return HitInfo[V]{}, false
	}

	attribute := va.Multiply(hit.Alpha).Add(vb.Multiply(hit.Beta)).Add(vc.Multiply(hit.Gamma))
	return HitInfo[V]{T: hit.T, Attribute: attribute}, true
}

func sortHits[V any](hits []HitInfo[V]) {
	slices.SortStableFunc(hits, func(a, b HitInfo[V]) int {
		return cmp.Compare(a.T, b.T)
	})
}

func (m *Mesh[V]) naiveHits(ray core.Ray) iter.Seq[HitInfo[V]] {
	return func(yield func(HitInfo[V]) bool) {
		var hits []HitInfo[V]
		for triangle := 0; triangle < m.TriangleCount(); triangle++ {
			if hit, ok := m.hitTriangle(triangle, ray); ok {
				hits = append(hits, hit)
			}
		}

		sortHits(hits)
		for _, hit := range hits {
			if !yield(hit) {
				return
			}
		}
	}
}

// uniformGrid bins triangle indices into size^3 cells covering a cube
type uniformGrid struct {
	bounds   core.AABB
	size     int
	cellSize float64
	cells    [][]int32
}

func newUniformGrid(boxes []core.AABB, bounds core.AABB, size int) *uniformGrid {
	cube := bounds.Cube()
	side := cube.Size().X
	if side == 0 {
		side = 1
	}
	cube = cube.Expand(side / float64(size) * gridPadding)

	grid := &uniformGrid{
		bounds:   cube,
		size:     size,
		cellSize: cube.Size().X / float64(size),
		cells:    make([][]int32, size*size*size),
	}

	pad := grid.cellSize * gridPadding
	for triangle, box := range boxes {
		lo := box.Min.Subtract(core.NewVec3(pad, pad, pad))
		hi := box.Max.Add(core.NewVec3(pad, pad, pad))

		x0, x1 := grid.coordinate(lo.X, 0), grid.coordinate(hi.X, 0)
		y0, y1 := grid.coordinate(lo.Y, 1), grid.coordinate(hi.Y, 1)
		z0, z1 := grid.coordinate(lo.Z, 2), grid.coordinate(hi.Z, 2)

		for z := z0; z <= z1; z++ {
			for y := y0; y <= y1; y++ {
				for x := x0; x <= x1; x++ {
					cell := grid.index(x, y, z)
					grid.cells[cell] = append(grid.cells[cell], int32(triangle))
				}
			}
		}
	}

	return grid
}

// coordinate returns the clamped cell index containing value along axis
func (g *uniformGrid) coordinate(value float64, axis int) int {
	cell := int(math.Floor((value - g.bounds.Min.Component(axis)) / g.cellSize))
	return max(0, min(g.size-1, cell))
}

func (g *uniformGrid) index(x, y, z int) int {
	return (z*g.size+y)*g.size + x
}

// gridHits walks the cells pierced by the ray with a 3D-DDA. Each visited cell
// owns the half-open window [entry, exit) of ray parameters (the final cell
// also owns its exit), so hits come out in order and a triangle spanning
// several cells is reported once.
func (m *Mesh[V]) gridHits(ray core.Ray) iter.Seq[HitInfo[V]] {
	return func(yield func(HitInfo[V]) bool) {
		g := m.grid
		if g == nil || m.TriangleCount() == 0 {
			return
		}

		walk := ray
		walk.Direction = ray.Direction.Add(core.NewVec3(gridDirectionEpsilon, gridDirectionEpsilon, gridDirectionEpsilon))

		boxMin, boxMax, ok := IntersectBox(walk, g.bounds)
		if !ok {
			return
		}
		tStart := math.Max(boxMin, ray.MinT)
		tEnd := math.Min(boxMax, ray.MaxT)
		if tStart > tEnd {
			return
		}

		// Entry cell, step direction and parametric distances per axis
		entry := walk.At(tStart)
		var cell, step [3]int
		var tNext, tDelta [3]float64
		for axis := 0; axis < 3; axis++ {
			cell[axis] = g.coordinate(entry.Component(axis), axis)
			origin := walk.Origin.Component(axis)
			direction := walk.Direction.Component(axis)
			lower := g.bounds.Min.Component(axis) + float64(cell[axis])*g.cellSize

			switch {
			case direction > 0:
				step[axis] = 1
				tNext[axis] = (lower + g.cellSize - origin) / direction
				tDelta[axis] = g.cellSize / direction
			case direction < 0:
				step[axis] = -1
				tNext[axis] = (lower - origin) / direction
				tDelta[axis] = -g.cellSize / direction
			default:
				tNext[axis] = math.Inf(1)
				tDelta[axis] = math.Inf(1)
			}
		}

		current := tStart
		var cellHits []HitInfo[V]
		for {
			exit := min(tNext[0], tNext[1], tNext[2])
			last := exit >= tEnd
			if last {
				exit = tEnd
			}

			cellHits = cellHits[:0]
			for _, triangle := range g.cells[g.index(cell[0], cell[1], cell[2])] {
				hit, ok := m.hitTriangle(int(triangle), ray)
				if !ok || hit.T < current {
					continue
				}
				if hit.T > exit || (!last && hit.T == exit) {
					continue
				}
				cellHits = append(cellHits, hit)
			}

			sortHits(cellHits)
			for _, hit := range cellHits {
				if !yield(hit) {
					return
				}
			}

			if last {
				return
			}

			// Step into the neighbour across the nearest boundary
			axis := 0
			if tNext[1] < tNext[axis] {
				axis = 1
			}
			if tNext[2] < tNext[axis] {
				axis = 2
			}
			current = math.Max(current, tNext[axis])
			cell[axis] += step[axis]
			if cell[axis] < 0 || cell[axis] >= g.size {
				// Numerical overrun past the grid: nothing more to report
				return
			}
			tNext[axis] += tDelta[axis]
		}
	}
}
