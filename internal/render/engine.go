// Package render provides the OpenGL engine the chunk array draws
// through: window and context setup, the frame loop, and the concrete
// implementations of the gfx interfaces the core consumes (Facade,
// Surface, Camera, Input, Uniforms).
package render

import (
	"fmt"
	"os"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"

	"voxelarray/internal/config"
)

// FrameUniforms is the per-frame uniform payload handed to every mesh
// draw call. The core treats it as opaque (gfx.Uniforms); only this
// package reads it back.
type FrameUniforms struct {
	View         mgl32.Mat4
	Projection   mgl32.Mat4
	CameraPos    mgl32.Vec3
	SunDirection mgl32.Vec3
}

// Engine owns the window, GL context, camera, input state, and the
// mesh-upload facade.
type Engine struct {
	window *glfw.Window
	width  int
	height int

	camera *Camera
	input  *Input
	facade *Facade

	fullShader *Shader
	lowShader  *Shader
	textures   *TextureManager

	lastFrame float64
	deltaTime float32
}

// WindowConfig contains window/context configuration.
type WindowConfig struct {
	Width  int
	Height int
	Title  string
	VSync  bool
}

// DefaultWindowConfig returns the default window configuration.
func DefaultWindowConfig() WindowConfig {
	return WindowConfig{
		Width:  1280,
		Height: 720,
		Title:  "Voxel Array",
		VSync:  true,
	}
}

// NewEngine initializes GLFW, creates the window and GL context, loads
// shaders and the block texture array, and wires input callbacks. The
// clear color comes from the core's static configuration record.
func NewEngine(win WindowConfig, cfg config.Config) (*Engine, error) {
	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("render: initialize GLFW: %w", err)
	}

	glfw.WindowHint(glfw.Resizable, glfw.True)
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.Samples, 4)

	window, err := glfw.CreateWindow(win.Width, win.Height, win.Title, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("render: create window: %w", err)
	}
	window.MakeContextCurrent()

	if win.VSync {
		glfw.SwapInterval(1)
	} else {
		glfw.SwapInterval(0)
	}

	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("render: initialize OpenGL: %w", err)
	}

	gl.Enable(gl.DEPTH_TEST)
	gl.Enable(gl.CULL_FACE)
	gl.CullFace(gl.BACK)
	gl.FrontFace(gl.CW)
	gl.Enable(gl.MULTISAMPLE)

	cc := cfg.ClearColor
	gl.ClearColor(cc[0], cc[1], cc[2], 1.0)

	textures := NewTextureManager()
	if err := textures.LoadBlockTextures(blockTextureFiles()); err != nil {
		fmt.Printf("[Engine] texture load: %v\n", err)
	}

	fullShader, err := loadShader("assets/shaders/voxel_full.vert", "assets/shaders/voxel_full.frag")
	if err != nil {
		return nil, err
	}
	lowShader, err := loadShader("assets/shaders/voxel_low.vert", "assets/shaders/voxel_low.frag")
	if err != nil {
		return nil, err
	}

	e := &Engine{
		window:     window,
		width:      win.Width,
		height:     win.Height,
		camera:     NewCamera(mgl32.Vec3{0, 40, 0}),
		input:      NewInput(),
		fullShader: fullShader,
		lowShader:  lowShader,
		textures:   textures,
	}
	e.facade = NewFacade(fullShader, lowShader, textures)
	e.camera.SetAspect(float32(win.Width) / float32(win.Height))

	window.SetFramebufferSizeCallback(e.framebufferSizeCallback)
	window.SetKeyCallback(e.keyCallback)
	window.SetCursorPosCallback(e.cursorPosCallback)
	window.SetMouseButtonCallback(e.mouseButtonCallback)
	window.SetInputMode(glfw.CursorMode, glfw.CursorDisabled)

	return e, nil
}

// blockTextureFiles lists one atlas layer per texture index the voxel
// registry references, in layer order.
func blockTextureFiles() []string {
	return []string{
		"assets/textures/stone.png",       // 0
		"assets/textures/dirt.png",        // 1
		"assets/textures/grass_top.png",   // 2
		"assets/textures/grass_side.png",  // 3
		"assets/textures/sand.png",        // 4
		"assets/textures/snow.png",        // 5
		"assets/textures/water.png",       // 6
		"assets/textures/glass.png",       // 7
		"assets/textures/wood.png",        // 8
		"assets/textures/leaves.png",      // 9
		"assets/textures/cobblestone.png", // 10
		"assets/textures/bedrock.png",     // 11
	}
}

func loadShader(vertPath, fragPath string) (*Shader, error) {
	vSource, err := os.ReadFile(vertPath)
	if err != nil {
		return nil, fmt.Errorf("render: read vertex shader %s: %w", vertPath, err)
	}
	fSource, err := os.ReadFile(fragPath)
	if err != nil {
		return nil, fmt.Errorf("render: read fragment shader %s: %w", fragPath, err)
	}
	shader, err := NewShader(string(vSource), string(fSource))
	if err != nil {
		return nil, fmt.Errorf("render: compile %s: %w", vertPath, err)
	}
	return shader, nil
}

// Run drives the frame loop until the window closes. onTick runs once
// per frame between event polling and buffer swap; draws issued inside
// it land on this frame.
func (e *Engine) Run(onTick func(dt float32)) {
	e.lastFrame = glfw.GetTime()

	for !e.window.ShouldClose() {
		currentFrame := glfw.GetTime()
		e.deltaTime = float32(currentFrame - e.lastFrame)
		e.lastFrame = currentFrame
		if e.deltaTime > 0.1 {
			e.deltaTime = 0.1
		}

		glfw.PollEvents()
		gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)

		if onTick != nil {
			onTick(e.deltaTime)
		}

		e.input.EndFrame()
		e.window.SwapBuffers()
	}
}

// Cleanup releases GL resources and terminates GLFW.
func (e *Engine) Cleanup() {
	if e.fullShader != nil {
		e.fullShader.Delete()
	}
	if e.lowShader != nil {
		e.lowShader.Delete()
	}
	if e.textures != nil {
		e.textures.Cleanup()
	}
	glfw.Terminate()
}

// Camera returns the engine's camera (implements gfx.Camera).
func (e *Engine) Camera() *Camera { return e.camera }

// Input returns the engine's input state (implements gfx.Input).
func (e *Engine) Input() *Input { return e.input }

// Facade returns the mesh-upload facade (implements gfx.Facade).
func (e *Engine) Facade() *Facade { return e.facade }

// Surface returns the frame target passed into ChunkArray.Render. The
// GL backend draws to the bound default framebuffer, so this is just
// the window.
func (e *Engine) Surface() *glfw.Window { return e.window }

// FrameUniforms assembles this frame's uniform payload from the
// current camera state.
func (e *Engine) FrameUniforms() *FrameUniforms {
	return &FrameUniforms{
		View:         e.camera.GetViewMatrix(),
		Projection:   e.camera.GetProjectionMatrix(),
		CameraPos:    e.camera.Position,
		SunDirection: mgl32.Vec3{0.5, 0.8, 0.3}.Normalize(),
	}
}

// CloseWindow asks the frame loop to exit after the current frame.
func (e *Engine) CloseWindow() {
	e.window.SetShouldClose(true)
}

func (e *Engine) framebufferSizeCallback(w *glfw.Window, width, height int) {
	e.width = width
	e.height = height
	gl.Viewport(0, 0, int32(width), int32(height))
	if height > 0 {
		e.camera.SetAspect(float32(width) / float32(height))
	}
}

func (e *Engine) keyCallback(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
	e.input.HandleKey(key, action)
}

func (e *Engine) cursorPosCallback(w *glfw.Window, xpos, ypos float64) {
	e.input.HandleMouseMove(xpos, ypos)
	dx, dy := e.input.GetMouseDelta()
	e.camera.ProcessMouseMovement(float32(dx), float32(dy))
}

func (e *Engine) mouseButtonCallback(w *glfw.Window, button glfw.MouseButton, action glfw.Action, mods glfw.ModifierKey) {
	e.input.HandleMouseButton(button, action)
}
