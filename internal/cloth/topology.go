package cloth

import "math"

// LinksPerParticle is the number of spring slots every particle carries.
const LinksPerParticle = 12

type SpringClass int

const (
	Structural SpringClass = iota
	Shear
	Bend
)

func (c SpringClass) String() string {
	switch c {
	case Structural:
		return "structural"
	case Shear:
		return "shear"
	case Bend:
		return "bend"
	}
	return "unknown"
}

// Offset is a (row, col) displacement on the grid.
type Offset struct {
	DRow, DCol int
}

// Len is the offset's length in grid units.
func (o Offset) Len() float64 {
	return math.Hypot(float64(o.DRow), float64(o.DCol))
}

// SpringOffsets is the fixed link order shared by every particle.
var SpringOffsets = [LinksPerParticle]Offset{
	{1, 0}, {0, 1}, {-1, 0}, {0, -1},
	{-1, -1}, {-1, 1}, {1, -1}, {1, 1},
	{0, 2}, {0, -2}, {2, 0}, {-2, 0},
}

// ClassOf returns the spring class of a link slot.
func ClassOf(slot int) SpringClass {
	switch {
	case slot < 4:
		return Structural
	case slot < 8:
		return Shear
	default:
		return Bend
	}
}

// Topology is the immutable spring adjacency of a grid. Links[i][k] is the
// flat index of the particle that particle i reaches through SpringOffsets[k],
// or i itself when that neighbor falls off the grid.
type Topology struct {
	Rows, Cols int
	Links      [][LinksPerParticle]int
}

func BuildTopology(rows, cols int) *Topology {
	t := &Topology{
		Rows:  rows,
		Cols:  cols,
		Links: make([][LinksPerParticle]int, rows*cols),
	}

	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			i := t.Index(r, c)
			for k, o := range SpringOffsets {
				nr, nc := r+o.DRow, c+o.DCol
				if t.InBounds(nr, nc) {
					t.Links[i][k] = t.Index(nr, nc)
				} else {
					t.Links[i][k] = i
				}
			}
		}
	}

	return t
}

func (t *Topology) Len() int { return t.Rows * t.Cols }

func (t *Topology) Index(row, col int) int { return row*t.Cols + col }

func (t *Topology) Coord(i int) (row, col int) { return i / t.Cols, i % t.Cols }

func (t *Topology) InBounds(row, col int) bool {
	return row >= 0 && row < t.Rows && col >= 0 && col < t.Cols
}

// Pinned returns the flat indices of the hung corners (0,0) and (0,cols-1).
func (t *Topology) Pinned() [2]int {
	return [2]int{t.Index(0, 0), t.Index(0, t.Cols-1)}
}

func (t *Topology) IsPinned(i int) bool {
	p := t.Pinned()
	return i == p[0] || i == p[1]
}

// RestLengths returns the natural length of each link slot. It depends only on
// the offset and the grid spacing, never on the particle.
func RestLengths(initLength float64) [LinksPerParticle]float64 {
	var rest [LinksPerParticle]float64
	for k, o := range SpringOffsets {
		rest[k] = o.Len() * initLength
	}
	return rest
}

// TriangleIndices lists two triangles per grid quad,
// (i,j)-(i+1,j)-(i+1,j+1) and (i,j)-(i+1,j+1)-(i,j+1), as flat vertex indices
// for a triangle-list draw call.
func TriangleIndices(rows, cols int) []uint32 {
	if rows < 2 || cols < 2 {
		return nil
	}
	indices := make([]uint32, 0, (rows-1)*(cols-1)*6)
	at := func(r, c int) uint32 { return uint32(r*cols + c) }
	for i := 0; i < rows-1; i++ {
		for j := 0; j < cols-1; j++ {
			indices = append(indices,
				at(i, j), at(i+1, j), at(i+1, j+1),
				at(i, j), at(i+1, j+1), at(i, j+1),
			)
		}
	}
	return indices
}
