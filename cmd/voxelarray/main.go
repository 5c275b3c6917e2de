// Voxel Array - Main entry point
package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"

	"voxelarray/internal/chunkarray"
	"voxelarray/internal/command"
	"voxelarray/internal/config"
	"voxelarray/internal/corelog"
	"voxelarray/internal/render"
	"voxelarray/internal/save"
	"voxelarray/internal/spatial"
	"voxelarray/internal/task"
	"voxelarray/internal/worldgen"
)

const (
	saveName = "world"
	saveDir  = "saves"
	logTag   = "Main"
)

func init() {
	// GLFW event handling must run on the main OS thread.
	runtime.LockOSThread()
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "voxelarray: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.Default()

	engine, err := render.NewEngine(render.DefaultWindowConfig(), cfg)
	if err != nil {
		return err
	}
	defer engine.Cleanup()

	pool := task.NewRuntime(cfg.MaxTasks)
	gen := worldgen.New(worldgen.DefaultConfig())

	array, err := chunkarray.New(cfg, spatial.Vec3i{X: 8, Y: 4, Z: 8}, pool, gen)
	if err != nil {
		return err
	}

	saves, err := save.NewManager(saveDir)
	if err != nil {
		return err
	}

	commands := command.NewChannel(256)
	observer := render.LogLoadingObserver{}

	cam := engine.Camera()
	input := engine.Input()
	facade := engine.Facade()

	engine.Run(func(dt float32) {
		moveCamera(cam, input, dt)

		if input.JustPressedCombo("escape") {
			engine.CloseWindow()
		}
		if input.JustPressedCombo("leftcontrol", "s") {
			if err := array.Save(saves, saveName, observer); err != nil {
				corelog.Warnf(logTag, "save: %v", err)
			}
		}
		if input.JustPressedCombo("leftcontrol", "l") {
			if err := array.Load(saves, saveName, observer); err != nil {
				corelog.Warnf(logTag, "load: %v", err)
			}
		}
		if input.JustPressedCombo("leftcontrol", "m") {
			commands.Send(command.DropAllMeshes())
		}
		if input.JustLeftPressed() {
			if cmd, ok := command.PickAndClear(cam.Pos(), cam.Front(), array.GetVoxelGlobal); ok {
				commands.Send(cmd)
			}
		}

		array.Update(commands, facade)

		cam.UpdateFrustum()
		array.Render(engine.Surface(), engine.FrameUniforms(), cam, facade)
	})

	return nil
}

// moveCamera applies free-fly movement from held keys. Held-state
// movement stays out here in the shell; the core only ever consumes
// edge-detected input.
func moveCamera(cam *render.Camera, input *render.Input, dt float32) {
	move := mgl32.Vec3{}
	if input.IsKeyPressed(glfw.KeyW) {
		move = move.Add(cam.Front())
	}
	if input.IsKeyPressed(glfw.KeyS) {
		move = move.Sub(cam.Front())
	}
	if input.IsKeyPressed(glfw.KeyA) {
		move = move.Sub(cam.Right)
	}
	if input.IsKeyPressed(glfw.KeyD) {
		move = move.Add(cam.Right)
	}
	if input.IsKeyPressed(glfw.KeySpace) {
		move = move.Add(mgl32.Vec3{0, 1, 0})
	}
	if input.IsKeyPressed(glfw.KeyLeftShift) {
		move = move.Sub(mgl32.Vec3{0, 1, 0})
	}
	if move.Len() == 0 {
		return
	}

	const speed = float32(30.0)
	cam.SetPosition(cam.Pos().Add(move.Normalize().Mul(speed * dt)))
}
