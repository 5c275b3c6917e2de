// Package render provides view-frustum culling via Gribb-Hartmann
// plane extraction from the combined view-projection matrix.
package render

import "github.com/go-gl/mathgl/mgl32"

// plane is ax + by + cz + d = 0, normalized so (a,b,c) is unit length.
type plane struct {
	normal mgl32.Vec3
	d      float32
}

func (p plane) distance(point mgl32.Vec3) float32 {
	return p.normal.Dot(point) + p.d
}

func normalizePlane(a, b, c, d float32) plane {
	n := mgl32.Vec3{a, b, c}
	length := n.Len()
	if length == 0 {
		return plane{}
	}
	return plane{normal: n.Mul(1 / length), d: d / length}
}

// frustumPlanes holds the 6 clip planes (left, right, bottom, top,
// near, far) of a view-projection matrix.
type frustumPlanes struct {
	planes [6]plane
}

// extractFrustumPlanes derives the frustum planes from vp = proj *
// view via the Gribb-Hartmann method: each plane is a row combination
// of vp's rows, taken directly from its column-major form.
func extractFrustumPlanes(vp mgl32.Mat4) frustumPlanes {
	// mgl32.Mat4 is stored column-major: m[col*4+row].
	m := vp
	row := func(r int) (float32, float32, float32, float32) {
		return m[r], m[4+r], m[8+r], m[12+r]
	}
	r0a, r0b, r0c, r0d := row(0)
	r1a, r1b, r1c, r1d := row(1)
	r2a, r2b, r2c, r2d := row(2)
	r3a, r3b, r3c, r3d := row(3)

	var f frustumPlanes
	f.planes[0] = normalizePlane(r3a+r0a, r3b+r0b, r3c+r0c, r3d+r0d) // left
	f.planes[1] = normalizePlane(r3a-r0a, r3b-r0b, r3c-r0c, r3d-r0d) // right
	f.planes[2] = normalizePlane(r3a+r1a, r3b+r1b, r3c+r1c, r3d+r1d) // bottom
	f.planes[3] = normalizePlane(r3a-r1a, r3b-r1b, r3c-r1c, r3d-r1d) // top
	f.planes[4] = normalizePlane(r3a+r2a, r3b+r2b, r3c+r2c, r3d+r2d) // near
	f.planes[5] = normalizePlane(r3a-r2a, r3b-r2b, r3c-r2c, r3d-r2d) // far
	return f
}

// intersectsAABB reports whether the box [min,max] lies at least
// partly on the positive side of every frustum plane. Conservative:
// false positives near edges are acceptable, false negatives are not.
func (f frustumPlanes) intersectsAABB(min, max mgl32.Vec3) bool {
	for _, p := range f.planes {
		positive := mgl32.Vec3{
			pick(p.normal.X() >= 0, max.X(), min.X()),
			pick(p.normal.Y() >= 0, max.Y(), min.Y()),
			pick(p.normal.Z() >= 0, max.Z(), min.Z()),
		}
		if p.distance(positive) < 0 {
			return false
		}
	}
	return true
}

func pick(cond bool, a, b float32) float32 {
	if cond {
		return a
	}
	return b
}
