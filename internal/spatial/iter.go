// Package spatial provides the integer-coordinate helpers shared by
// the chunk array: lexicographic range iteration, face adjacency, and
// the row-major (Z fastest) linearization used for chunk grids. Voxel
// buffers inside a chunk use their own x + S*y + S^2*z index instead.
package spatial

// Vec3i is an integer 3-component coordinate, used interchangeably for
// voxel positions, chunk positions, and grid indices.
type Vec3i struct {
	X, Y, Z int
}

// Add returns the componentwise sum.
func (v Vec3i) Add(o Vec3i) Vec3i {
	return Vec3i{v.X + o.X, v.Y + o.Y, v.Z + o.Z}
}

// Sub returns the componentwise difference.
func (v Vec3i) Sub(o Vec3i) Vec3i {
	return Vec3i{v.X - o.X, v.Y - o.Y, v.Z - o.Z}
}

// SpaceIter iterates integer coordinates in [start, end) lexicographic
// order with Z fastest, matching the row-major linearization used
// elsewhere in this package.
type SpaceIter struct {
	start, end Vec3i
	cur        Vec3i
	done       bool
}

// NewSpaceIter builds an iterator over the half-open box [start, end).
// An empty or inverted box produces an iterator that yields nothing.
func NewSpaceIter(start, end Vec3i) *SpaceIter {
	it := &SpaceIter{start: start, end: end, cur: start}
	if start.X >= end.X || start.Y >= end.Y || start.Z >= end.Z {
		it.done = true
	}
	return it
}

// Next returns the next coordinate and true, or the zero value and
// false once the box is exhausted.
func (it *SpaceIter) Next() (Vec3i, bool) {
	if it.done {
		return Vec3i{}, false
	}
	result := it.cur

	it.cur.Z++
	if it.cur.Z >= it.end.Z {
		it.cur.Z = it.start.Z
		it.cur.Y++
		if it.cur.Y >= it.end.Y {
			it.cur.Y = it.start.Y
			it.cur.X++
			if it.cur.X >= it.end.X {
				it.done = true
			}
		}
	}
	return result, true
}

// faceOffsets is the fixed (+X,-X,+Y,-Y,+Z,-Z) adjacency order.
var faceOffsets = [6]Vec3i{
	{1, 0, 0}, {-1, 0, 0},
	{0, 1, 0}, {0, -1, 0},
	{0, 0, 1}, {0, 0, -1},
}

// AdjIter returns the six face-adjacent positions to pos, in the fixed
// order (+X, -X, +Y, -Y, +Z, -Z).
func AdjIter(pos Vec3i) [6]Vec3i {
	var out [6]Vec3i
	for i, off := range faceOffsets {
		out[i] = pos.Add(off)
	}
	return out
}

// OffsetsFromBorder returns the unit offsets toward the face-adjacent
// chunks a voxel at local coordinates (in [0,bounds)) touches: zero
// offsets for an interior voxel, one for a face voxel, two for an
// edge, three for a corner.
func OffsetsFromBorder(local, bounds Vec3i) []Vec3i {
	coords := [3]int{local.X, local.Y, local.Z}
	size := [3]int{bounds.X, bounds.Y, bounds.Z}

	var out []Vec3i
	for axis := 0; axis < 3; axis++ {
		var off Vec3i
		switch {
		case coords[axis] == 0:
			off = axisUnit(axis, -1)
		case coords[axis] == size[axis]-1:
			off = axisUnit(axis, 1)
		default:
			continue
		}
		out = append(out, off)
	}
	return out
}

func axisUnit(axis, sign int) Vec3i {
	switch axis {
	case 0:
		return Vec3i{X: sign}
	case 1:
		return Vec3i{Y: sign}
	default:
		return Vec3i{Z: sign}
	}
}

// IdxToCoordIdx converts a row-major linear index into a 3D grid
// coordinate, Z fastest, for a grid of the given dimensions.
func IdxToCoordIdx(idx int, sizes Vec3i) Vec3i {
	z := idx % sizes.Z
	idx /= sizes.Z
	y := idx % sizes.Y
	x := idx / sizes.Y
	return Vec3i{x, y, z}
}

// CoordIdxToIdx is the inverse of IdxToCoordIdx.
func CoordIdxToIdx(c, sizes Vec3i) int {
	return c.X*sizes.Y*sizes.Z + c.Y*sizes.Z + c.Z
}

// CoordIdxToPos maps a grid coordinate to the chunk position centered
// on the origin: coord_idx_to_pos(sizes, c) = c - sizes/2.
func CoordIdxToPos(sizes, c Vec3i) Vec3i {
	return Vec3i{c.X - sizes.X/2, c.Y - sizes.Y/2, c.Z - sizes.Z/2}
}

// PosToCoordIdx is the inverse of CoordIdxToPos; it reports false if p
// falls outside the grid.
func PosToCoordIdx(sizes, p Vec3i) (Vec3i, bool) {
	c := Vec3i{p.X + sizes.X/2, p.Y + sizes.Y/2, p.Z + sizes.Z/2}
	if c.X < 0 || c.X >= sizes.X || c.Y < 0 || c.Y >= sizes.Y || c.Z < 0 || c.Z >= sizes.Z {
		return Vec3i{}, false
	}
	return c, true
}

// FloorDiv performs Euclidean (floor) integer division, used to map a
// global voxel position to its owning chunk position.
func FloorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// FloorMod performs the complementary modulo so that
// FloorDiv(a,b)*b + FloorMod(a,b) == a and FloorMod always lands in
// [0,b).
func FloorMod(a, b int) int {
	m := a % b
	if m < 0 {
		m += b
	}
	return m
}
