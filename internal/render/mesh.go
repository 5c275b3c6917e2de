// Package render provides mesh upload and draw for OpenGL
package render

import (
	"github.com/go-gl/gl/v4.1-core/gl"

	"voxelarray/internal/chunk"
	"voxelarray/internal/gfx"
)

// glMesh is one uploaded chunk mesh: a VAO/VBO pair plus the shader
// kind it draws with. It implements gfx.MeshHandle; a zero VAO is the
// empty-mesh marker (a valid upload that draws nothing).
type glMesh struct {
	facade      *Facade
	vao, vbo    uint32
	vertexCount int32
	full        bool
}

// Facade creates GPU buffers for chunk mesh uploads and owns the two
// shader programs the meshes draw with. It implements gfx.Facade.
type Facade struct {
	fullShader *Shader
	lowShader  *Shader
	textures   *TextureManager
}

// NewFacade wires the facade to its shaders and the block texture
// array the full-detail shader samples.
func NewFacade(fullShader, lowShader *Shader, textures *TextureManager) *Facade {
	return &Facade{fullShader: fullShader, lowShader: lowShader, textures: textures}
}

// UploadFull uploads LOD-0 vertex data: interleaved position(3),
// texcoord+atlas-layer(3), normal(3), tangent(3) per chunk.FullVertexSize.
func (f *Facade) UploadFull(vertices []float32, indices []uint32) gfx.MeshHandle {
	m := &glMesh{facade: f, full: true}
	m.upload(vertices, chunk.FullVertexSize, [][2]int32{{3, 0}, {3, 3}, {3, 6}, {3, 9}})
	return m
}

// UploadLow uploads LOD>0 vertex data: interleaved position(3),
// color(3), normal(3) per chunk.LowVertexSize.
func (f *Facade) UploadLow(vertices []float32, indices []uint32) gfx.MeshHandle {
	m := &glMesh{facade: f}
	m.upload(vertices, chunk.LowVertexSize, [][2]int32{{3, 0}, {3, 3}, {3, 6}})
	return m
}

// upload builds the VAO/VBO for an interleaved float buffer. attribs
// is (component count, float offset) per attribute location, in order.
func (m *glMesh) upload(vertices []float32, stride int, attribs [][2]int32) {
	if len(vertices) == 0 {
		return
	}
	m.vertexCount = int32(len(vertices) / stride)

	gl.GenVertexArrays(1, &m.vao)
	gl.BindVertexArray(m.vao)

	gl.GenBuffers(1, &m.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, m.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(vertices)*4, gl.Ptr(vertices), gl.STATIC_DRAW)

	byteStride := int32(stride * 4)
	for loc, a := range attribs {
		gl.VertexAttribPointerWithOffset(uint32(loc), a[0], gl.FLOAT, false, byteStride, uintptr(a[1]*4))
		gl.EnableVertexAttribArray(uint32(loc))
	}

	gl.BindVertexArray(0)
}

// Draw issues the draw call for this mesh. target is unused by the GL
// backend (draws always go to the bound framebuffer); uniforms must be
// the *FrameUniforms the engine assembled this frame.
func (m *glMesh) Draw(target gfx.Surface, uniforms gfx.Uniforms) {
	if m.vao == 0 {
		return
	}
	u, ok := uniforms.(*FrameUniforms)
	if !ok {
		return
	}

	shader := m.facade.lowShader
	if m.full {
		shader = m.facade.fullShader
	}
	shader.Use()
	shader.SetMat4("uView", u.View)
	shader.SetMat4("uProjection", u.Projection)
	shader.SetVec3("uCameraPos", u.CameraPos)
	shader.SetVec3("uSunDirection", u.SunDirection)
	if m.full {
		m.facade.textures.BindBlockTextures(0)
		shader.SetInt("uBlockAtlas", 0)
	}

	gl.BindVertexArray(m.vao)
	gl.DrawArrays(gl.TRIANGLES, 0, m.vertexCount)
	gl.BindVertexArray(0)
}

// Release frees the GPU buffers. Safe on an empty mesh.
func (m *glMesh) Release() {
	if m.vao != 0 {
		gl.DeleteVertexArrays(1, &m.vao)
		m.vao = 0
	}
	if m.vbo != 0 {
		gl.DeleteBuffers(1, &m.vbo)
		m.vbo = 0
	}
}

// Empty reports whether this handle holds zero triangles.
func (m *glMesh) Empty() bool {
	return m.vao == 0
}
