package chunk

import (
	"voxelarray/internal/spatial"
	"voxelarray/internal/voxel"
)

// Neighbor slot order, matching spatial's AdjIter face order: +X,-X,+Y,-Y,+Z,-Z.
const (
	neighborPosX = iota
	neighborNegX
	neighborPosY
	neighborNegY
	neighborPosZ
	neighborNegZ
)

// FullVertexSize is the float stride of one LOD-0 vertex: position(3),
// texcoord+atlas-layer(3), normal(3), tangent(3).
const FullVertexSize = 12

// LowVertexSize is the float stride of one LOD>0 vertex: position(3),
// color(3), normal(3).
const LowVertexSize = 9

// Adj is a read-only view of a chunk plus its six face-adjacent
// neighbors, handed to a mesh builder task for the task's lifetime.
// A nil neighbor means absent, treated as transparent.
type Adj struct {
	Center    *Chunk
	Neighbors [6]*Chunk
}

// resolve maps a local coordinate that has overflowed the center
// chunk's bounds on exactly one axis to (neighbor slot, wrapped local
// coordinate in the neighbor's frame). ok is false if local is within
// bounds (no resolution needed, query Center directly).
func resolve(local spatial.Vec3i, side int) (slot int, wrapped spatial.Vec3i, ok bool) {
	switch {
	case local.X < 0:
		return neighborNegX, spatial.Vec3i{X: side - 1, Y: local.Y, Z: local.Z}, true
	case local.X >= side:
		return neighborPosX, spatial.Vec3i{X: 0, Y: local.Y, Z: local.Z}, true
	case local.Y < 0:
		return neighborNegY, spatial.Vec3i{X: local.X, Y: side - 1, Z: local.Z}, true
	case local.Y >= side:
		return neighborPosY, spatial.Vec3i{X: local.X, Y: 0, Z: local.Z}, true
	case local.Z < 0:
		return neighborNegZ, spatial.Vec3i{X: local.X, Y: local.Y, Z: side - 1}, true
	case local.Z >= side:
		return neighborPosZ, spatial.Vec3i{X: local.X, Y: local.Y, Z: 0}, true
	default:
		return 0, local, false
	}
}

// at returns the voxel at local (possibly one step outside the center
// chunk on a single axis) and whether that position is backed by a
// generated chunk. A missing or ungenerated neighbor reports
// (Air, false).
func (a Adj) at(local spatial.Vec3i) (voxel.Id, bool) {
	side := a.Center.side
	slot, wrapped, overflowed := resolve(local, side)
	if !overflowed {
		id, err := a.Center.GetVoxelLocal(wrapped)
		if err != nil {
			return voxel.Air, false
		}
		return id, true
	}
	n := a.Neighbors[slot]
	if n == nil || !n.Generated() {
		return voxel.Air, false
	}
	id, err := n.GetVoxelLocal(wrapped)
	if err != nil {
		return voxel.Air, false
	}
	return id, true
}

type faceSpec struct {
	offset  spatial.Vec3i
	normal  [3]float32
	tangent [3]float32
	corners [4][3]float32
}

var fullFaces = [6]faceSpec{
	{ // +X
		offset: spatial.Vec3i{X: 1}, normal: [3]float32{1, 0, 0}, tangent: [3]float32{0, 0, -1},
		corners: [4][3]float32{{1, 0, 1}, {1, 1, 1}, {1, 1, 0}, {1, 0, 0}},
	},
	{ // -X
		offset: spatial.Vec3i{X: -1}, normal: [3]float32{-1, 0, 0}, tangent: [3]float32{0, 0, 1},
		corners: [4][3]float32{{0, 0, 0}, {0, 1, 0}, {0, 1, 1}, {0, 0, 1}},
	},
	{ // +Y
		offset: spatial.Vec3i{Y: 1}, normal: [3]float32{0, 1, 0}, tangent: [3]float32{1, 0, 0},
		corners: [4][3]float32{{0, 1, 0}, {1, 1, 0}, {1, 1, 1}, {0, 1, 1}},
	},
	{ // -Y
		offset: spatial.Vec3i{Y: -1}, normal: [3]float32{0, -1, 0}, tangent: [3]float32{1, 0, 0},
		corners: [4][3]float32{{0, 0, 1}, {1, 0, 1}, {1, 0, 0}, {0, 0, 0}},
	},
	{ // +Z
		offset: spatial.Vec3i{Z: 1}, normal: [3]float32{0, 0, 1}, tangent: [3]float32{1, 0, 0},
		corners: [4][3]float32{{1, 0, 1}, {0, 0, 1}, {0, 1, 1}, {1, 1, 1}},
	},
	{ // -Z
		offset: spatial.Vec3i{Z: -1}, normal: [3]float32{0, 0, -1}, tangent: [3]float32{-1, 0, 0},
		corners: [4][3]float32{{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0}},
	},
}

var faceUV = [4][2]float32{{0, 1}, {1, 1}, {1, 0}, {0, 0}}

func appendTri(vertices []float32, idx [3]int, verts [4][]float32) []float32 {
	for _, i := range idx {
		vertices = append(vertices, verts[i]...)
	}
	return vertices
}

// appendFace emits one voxel face: six vertices, two triangles, no
// index buffer, since per-face atlas texture coordinates can't be
// shared between faces. world is the voxel's min corner in world
// space.
func appendFace(vertices []float32, def voxel.Definition, face faceSpec, world spatial.Vec3i) []float32 {
	texLayer := float32(def.TextureSide)
	if face.offset.Y == 1 {
		texLayer = float32(def.TextureTop)
	} else if face.offset.Y == -1 {
		texLayer = float32(def.TextureBottom)
	}

	base := [4][]float32{}
	for i, corner := range face.corners {
		base[i] = []float32{
			float32(world.X) + corner[0],
			float32(world.Y) + corner[1],
			float32(world.Z) + corner[2],
			faceUV[i][0], faceUV[i][1], texLayer,
			face.normal[0], face.normal[1], face.normal[2],
			face.tangent[0], face.tangent[1], face.tangent[2],
		}
	}
	vertices = appendTri(vertices, [3]int{0, 1, 2}, base)
	return appendTri(vertices, [3]int{0, 2, 3}, base)
}

// MakeVerticesDetailed produces LOD-0 triangle data for a. A face
// between a solid voxel and a transparent voxel belongs to the chunk
// holding the transparent voxel: each chunk emits faces for its own
// solid voxels against transparent voxels inside itself, plus the
// faces of neighbor-chunk border voxels that look into it across the
// seam. Faces against absent or ungenerated neighbor chunks are
// emitted by the solid side.
func MakeVerticesDetailed(a Adj) []float32 {
	c := a.Center
	if c.fill.Kind == FillAllSame && c.allSameNeighborsOccludeFully(a) {
		return nil
	}

	vertices := make([]float32, 0, 1024)
	side := c.side
	// Positions are baked in world space so draws need no per-chunk
	// model transform.
	origin := spatial.Vec3i{X: c.pos.X * side, Y: c.pos.Y * side, Z: c.pos.Z * side}
	it := spatial.NewSpaceIter(spatial.Vec3i{}, spatial.Vec3i{X: side, Y: side, Z: side})
	for local, ok := it.Next(); ok; local, ok = it.Next() {
		id, _ := c.GetVoxelLocal(local)
		def := voxel.Get(id)

		for fi, face := range fullFaces {
			q := local.Add(face.offset)

			if c.inBounds(q) {
				if id.IsAir() {
					continue
				}
				nid, _ := c.GetVoxelLocal(q)
				if !voxel.Get(nid).Transparent {
					continue
				}
				vertices = appendFace(vertices, def, face, origin.Add(local))
				continue
			}

			// Seam face. The adjacent voxel lives in another chunk.
			nid, present := a.at(q)
			if !present {
				// Absent/ungenerated neighbor counts as transparent; the
				// solid side emits.
				if !id.IsAir() {
					vertices = appendFace(vertices, def, face, origin.Add(local))
				}
				continue
			}
			if def.Transparent && !nid.IsAir() {
				// This side is transparent: it owns the neighbor border
				// voxel's face looking back in.
				opposite := fullFaces[fi^1]
				vertices = appendFace(vertices, voxel.Get(nid), opposite, origin.Add(q))
			}
		}
	}
	return vertices
}

// allSameNeighborsOccludeFully reports whether every face-adjacent
// neighbor of a uniformly solid chunk is itself uniformly solid and
// opaque, in which case the chunk's entire surface is hidden and its
// LOD-0 mesh is empty.
func (c *Chunk) allSameNeighborsOccludeFully(a Adj) bool {
	if c.fill.Kind != FillAllSame {
		return false
	}
	if voxel.Get(c.fill.Uniform).Transparent {
		return false
	}
	for _, n := range a.Neighbors {
		if n == nil || !n.Generated() {
			return false
		}
		if n.fill.Kind != FillAllSame {
			return false
		}
		if voxel.Get(n.fill.Uniform).Transparent {
			return false
		}
	}
	return true
}

// lowGroup is the aggregate state of one 2^lod voxel cube.
type lowGroup struct {
	present    bool
	avgColor   [3]float32
	avgOpacity float32
}

// MakeVerticesLow groups a's voxels into 2^lod cubes and produces a
// colored, textureless cube mesh: one averaged color/opacity per
// group, with faces emitted where the adjacent group is transparent
// by majority (its averaged opacity below 0.5) or absent.
func MakeVerticesLow(a Adj, lod int) []float32 {
	c := a.Center
	groupSize := 1 << uint(lod)
	side := c.side
	groupsPerAxis := side / groupSize
	if groupsPerAxis < 1 {
		groupsPerAxis = 1
	}

	groups := make(map[spatial.Vec3i]lowGroup, groupsPerAxis*groupsPerAxis*groupsPerAxis)
	it := spatial.NewSpaceIter(spatial.Vec3i{}, spatial.Vec3i{X: groupsPerAxis, Y: groupsPerAxis, Z: groupsPerAxis})
	for gc, ok := it.Next(); ok; gc, ok = it.Next() {
		groups[gc] = computeGroup(c, gc, groupSize)
	}

	vertices := make([]float32, 0, 256)
	chunkOrigin := spatial.Vec3i{X: c.pos.X * side, Y: c.pos.Y * side, Z: c.pos.Z * side}
	for gc, group := range groups {
		if !group.present {
			continue
		}
		origin := spatial.Vec3i{X: gc.X * groupSize, Y: gc.Y * groupSize, Z: gc.Z * groupSize}

		for _, face := range fullFaces {
			neighborGC := gc.Add(face.offset)
			var neighbor lowGroup
			var haveNeighbor bool
			if ng, ok := groups[neighborGC]; ok {
				neighbor, haveNeighbor = ng, true
			} else {
				neighborLocal := origin.Add(spatial.Vec3i{
					X: face.offset.X * groupSize,
					Y: face.offset.Y * groupSize,
					Z: face.offset.Z * groupSize,
				})
				neighbor, haveNeighbor = computeGroupAcrossBoundary(a, neighborLocal, groupSize)
			}

			transparentNeighbor := !haveNeighbor || !neighbor.present || neighbor.avgOpacity < 0.5
			if !transparentNeighbor {
				continue
			}

			base := [4][]float32{}
			for i, corner := range face.corners {
				pos := [3]float32{
					float32(chunkOrigin.X+origin.X) + corner[0]*float32(groupSize),
					float32(chunkOrigin.Y+origin.Y) + corner[1]*float32(groupSize),
					float32(chunkOrigin.Z+origin.Z) + corner[2]*float32(groupSize),
				}
				base[i] = []float32{
					pos[0], pos[1], pos[2],
					group.avgColor[0], group.avgColor[1], group.avgColor[2],
					face.normal[0], face.normal[1], face.normal[2],
				}
			}
			vertices = appendTri(vertices, [3]int{0, 1, 2}, base)
			vertices = appendTri(vertices, [3]int{0, 2, 3}, base)
		}
	}
	return vertices
}

// computeGroup averages the voxels of one groupSize^3 cube local to
// c. Color is averaged over the non-air voxels; opacity is averaged
// over every voxel of the cube, air counting as opacity 0. All-air
// groups report present=false and are skipped.
func computeGroup(c *Chunk, groupCoord spatial.Vec3i, groupSize int) lowGroup {
	start := spatial.Vec3i{X: groupCoord.X * groupSize, Y: groupCoord.Y * groupSize, Z: groupCoord.Z * groupSize}
	end := start.Add(spatial.Vec3i{X: groupSize, Y: groupSize, Z: groupSize})

	var sum [3]float32
	var opacitySum float32
	count := 0
	total := 0

	it := spatial.NewSpaceIter(start, end)
	for local, ok := it.Next(); ok; local, ok = it.Next() {
		id, err := c.GetVoxelLocal(local)
		if err != nil {
			continue
		}
		total++
		if id.IsAir() {
			continue
		}
		def := voxel.Get(id)
		sum[0] += def.Color[0]
		sum[1] += def.Color[1]
		sum[2] += def.Color[2]
		opacitySum += def.Opacity
		count++
	}
	if count == 0 {
		return lowGroup{}
	}
	n := float32(count)
	return lowGroup{
		present:    true,
		avgColor:   [3]float32{sum[0] / n, sum[1] / n, sum[2] / n},
		avgOpacity: opacitySum / float32(total),
	}
}

// computeGroupAcrossBoundary evaluates a neighbor-chunk group for a
// low-detail face test; an absent or ungenerated neighbor chunk
// reports (zero value, false), treated as transparent.
func computeGroupAcrossBoundary(a Adj, local spatial.Vec3i, groupSize int) (lowGroup, bool) {
	side := a.Center.side
	slot, wrapped, overflowed := resolve(local, side)
	if !overflowed {
		return computeGroup(a.Center, spatial.Vec3i{X: wrapped.X / groupSize, Y: wrapped.Y / groupSize, Z: wrapped.Z / groupSize}, groupSize), true
	}
	n := a.Neighbors[slot]
	if n == nil || !n.Generated() {
		return lowGroup{}, false
	}
	return computeGroup(n, spatial.Vec3i{X: wrapped.X / groupSize, Y: wrapped.Y / groupSize, Z: wrapped.Z / groupSize}, groupSize), true
}
