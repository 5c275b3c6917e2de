// Package render provides input handling
package render

import (
	"strings"

	"github.com/go-gl/glfw/v3.3/glfw"
)

// Input handles keyboard and mouse input. It tracks current and
// previous-frame state so edge queries don't fire twice within one
// held press.
type Input struct {
	// Keyboard state
	keys     map[glfw.Key]bool
	prevKeys map[glfw.Key]bool

	// Mouse state
	mouseButtons     map[glfw.MouseButton]bool
	prevMouseButtons map[glfw.MouseButton]bool

	// Mouse position
	mouseX, mouseY         float64
	lastMouseX, lastMouseY float64
	firstMouse             bool

	// Mouse delta
	mouseDeltaX, mouseDeltaY float64

	// Scroll
	scrollX, scrollY float64
}

// NewInput creates a new input handler
func NewInput() *Input {
	return &Input{
		keys:             make(map[glfw.Key]bool),
		prevKeys:         make(map[glfw.Key]bool),
		mouseButtons:     make(map[glfw.MouseButton]bool),
		prevMouseButtons: make(map[glfw.MouseButton]bool),
		firstMouse:       true,
	}
}

// HandleKey processes keyboard events
func (i *Input) HandleKey(key glfw.Key, action glfw.Action) {
	if action == glfw.Press {
		i.keys[key] = true
	} else if action == glfw.Release {
		i.keys[key] = false
	}
}

// HandleMouseMove processes mouse movement
func (i *Input) HandleMouseMove(xpos, ypos float64) {
	if i.firstMouse {
		i.lastMouseX = xpos
		i.lastMouseY = ypos
		i.firstMouse = false
	}

	i.mouseDeltaX = xpos - i.lastMouseX
	i.mouseDeltaY = i.lastMouseY - ypos // Y is inverted

	i.lastMouseX = xpos
	i.lastMouseY = ypos
	i.mouseX = xpos
	i.mouseY = ypos
}

// HandleMouseButton processes mouse button events
func (i *Input) HandleMouseButton(button glfw.MouseButton, action glfw.Action) {
	if action == glfw.Press {
		i.mouseButtons[button] = true
	} else if action == glfw.Release {
		i.mouseButtons[button] = false
	}
}

// HandleScroll processes scroll events
func (i *Input) HandleScroll(xoff, yoff float64) {
	i.scrollX = xoff
	i.scrollY = yoff
}

// IsKeyPressed returns true if a key is currently pressed
func (i *Input) IsKeyPressed(key glfw.Key) bool {
	return i.keys[key]
}

// IsMouseButtonPressed returns true if a mouse button is pressed
func (i *Input) IsMouseButtonPressed(button glfw.MouseButton) bool {
	return i.mouseButtons[button]
}

// GetMousePosition returns current mouse position
func (i *Input) GetMousePosition() (x, y float64) {
	return i.mouseX, i.mouseY
}

// GetMouseDelta returns mouse movement since last frame and resets it
func (i *Input) GetMouseDelta() (dx, dy float64) {
	dx = i.mouseDeltaX
	dy = i.mouseDeltaY
	i.mouseDeltaX = 0
	i.mouseDeltaY = 0
	return
}

// GetScroll returns scroll wheel movement and resets it
func (i *Input) GetScroll() (x, y float64) {
	x = i.scrollX
	y = i.scrollY
	i.scrollX = 0
	i.scrollY = 0
	return
}

// ResetMouse resets mouse state (call when resuming from pause)
func (i *Input) ResetMouse() {
	i.firstMouse = true
	i.mouseDeltaX = 0
	i.mouseDeltaY = 0
}

// EndFrame snapshots this frame's held state as "previous", so the
// next frame's edge queries compare against it. Must be called
// exactly once per tick, after the core has read its edge queries.
func (i *Input) EndFrame() {
	for k, v := range i.keys {
		i.prevKeys[k] = v
	}
	for b, v := range i.mouseButtons {
		i.prevMouseButtons[b] = v
	}
}

// keyNames maps the lowercase key names JustPressedCombo accepts to
// their glfw key codes. Only the subset the voxel-editing commands
// actually bind to is listed; extend as new bindings are added.
var keyNames = map[string]glfw.Key{
	"leftcontrol":  glfw.KeyLeftControl,
	"rightcontrol": glfw.KeyRightControl,
	"leftshift":    glfw.KeyLeftShift,
	"rightshift":   glfw.KeyRightShift,
	"leftalt":      glfw.KeyLeftAlt,
	"space":        glfw.KeySpace,
	"delete":       glfw.KeyDelete,
	"backspace":    glfw.KeyBackspace,
	"enter":        glfw.KeyEnter,
	"escape":       glfw.KeyEscape,
	"0":            glfw.Key0, "1": glfw.Key1, "2": glfw.Key2, "3": glfw.Key3, "4": glfw.Key4,
	"5": glfw.Key5, "6": glfw.Key6, "7": glfw.Key7, "8": glfw.Key8, "9": glfw.Key9,
}

func keyFromName(name string) (glfw.Key, bool) {
	lower := strings.ToLower(name)
	if k, ok := keyNames[lower]; ok {
		return k, true
	}
	if len(lower) == 1 && lower[0] >= 'a' && lower[0] <= 'z' {
		return glfw.KeyA + glfw.Key(lower[0]-'a'), true
	}
	return 0, false
}

// JustPressedCombo reports whether every named key is held this frame
// and the combo as a whole was not fully held last frame.
func (i *Input) JustPressedCombo(keys ...string) bool {
	if len(keys) == 0 {
		return false
	}
	allNow := true
	allBefore := true
	for _, name := range keys {
		k, ok := keyFromName(name)
		if !ok {
			return false
		}
		if !i.keys[k] {
			allNow = false
		}
		if !i.prevKeys[k] {
			allBefore = false
		}
	}
	return allNow && !allBefore
}

// JustLeftPressed reports whether the left mouse button transitioned
// from released to pressed this frame.
func (i *Input) JustLeftPressed() bool {
	return i.mouseButtons[glfw.MouseButtonLeft] && !i.prevMouseButtons[glfw.MouseButtonLeft]
}
