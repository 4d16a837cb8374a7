// Package game runs the frame loop and turns input into camera and player
// movement.
package game

import (
	"github.com/charmbracelet/log"

	"scene-renderer/asset"
	"scene-renderer/input"
	"scene-renderer/logging"
	"scene-renderer/math"
	"scene-renderer/renderer"
	"scene-renderer/scene"
)

const (
	mouseLookSpeed = 0.01
	// the cursor is parked here between mouse-look events
	cursorHome = 1
)

// Window is the part of core.Window the loop drives.
type Window interface {
	Attach(d *input.DispatchTable)
	OnResize(fn func(width, height int))
	PollEvents()
	ShouldClose() bool
	SetCursorLocked(locked bool)
	SetCursorPos(x, y float64)
}

type Option func(*Game)

func WithLogger(l *log.Logger) Option {
	return func(g *Game) { g.logger = l }
}

// WithFPS caps the frame rate. The default is 60.
func WithFPS(fps float32) Option {
	return func(g *Game) { g.fps = fps }
}

func WithClock(c *Clock) Option {
	return func(g *Game) { g.clock = c }
}

type Game struct {
	window   Window
	renderer *renderer.Renderer
	dispatch *input.DispatchTable
	clock    *Clock
	data     *GameData
	logger   *log.Logger
	fps      float32

	camera    scene.Camera
	pc        *scene.Character
	watcher   *asset.Watcher
	mouseLook bool
	terminate bool
}

// New wires the default controls: Escape quits, WASD moves the player
// character and releasing the right mouse button toggles mouse look.
func New(window Window, r *renderer.Renderer, opts ...Option) *Game {
	g := &Game{
		window:   window,
		renderer: r,
		dispatch: input.NewDispatchTable(),
		data:     NewGameData(),
		fps:      60,
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.logger == nil {
		g.logger = logging.New("game")
	}
	if g.clock == nil {
		g.clock = NewClock()
	}

	g.dispatch.RegisterKey(input.KeyEscape, g.escape)
	g.dispatch.RegisterKey(input.KeyW, g.moveForward)
	g.dispatch.RegisterKey(input.KeyS, g.moveBackward)
	g.dispatch.RegisterKey(input.KeyA, g.moveLeft)
	g.dispatch.RegisterKey(input.KeyD, g.moveRight)
	g.dispatch.RegisterMouseButton(input.MouseButtonRight, g.toggleMouseLook)

	window.Attach(g.dispatch)
	window.OnResize(r.Resize)
	return g
}

// Dispatch exposes the control table so callers can bind more keys.
func (g *Game) Dispatch() *input.DispatchTable { return g.dispatch }
func (g *Game) Clock() *Clock { return g.clock }
func (g *Game) Data() *GameData { return g.data }

// Run loops until Terminate is called or the window is closed.
func (g *Game) Run() error {
	for !g.terminate {
		dt := g.clock.Tick(g.fps)
		if g.clock.nticks == 0 {
			g.logger.Debug("frame rate", "fps", g.clock.FPS())
		}

		g.data.Update(dt)
		g.reloadAssets()

		if err := g.renderer.Update(dt); err != nil {
			return err
		}

		g.window.PollEvents()
		if g.window.ShouldClose() {
			g.terminate = true
		}
	}
	return nil
}

// Terminate makes Run return after the current frame.
func (g *Game) Terminate() { g.terminate = true }

func (g *Game) AddEntity(e scene.Renderable) { g.renderer.AddEntity(e) }
func (g *Game) RemoveEntity(e scene.Renderable) { g.renderer.RemoveEntity(e) }

func (g *Game) AddCharacter(c *scene.Character) {
	g.data.AddCharacter(c)
	g.AddEntity(c)
}

func (g *Game) RemoveCharacter(c *scene.Character) {
	g.data.RemoveCharacter(c)
	g.RemoveEntity(c)
}

// SetPlayerCharacter gives pc the controls and follows it with an orbital
// camera five units behind.
func (g *Game) SetPlayerCharacter(pc *scene.Character) {
	g.pc = pc
	g.AddCharacter(pc)

	cam := scene.NewOrbitalCamera(pc, math.NewVec3(0, 0, 5))
	g.SetCamera(cam)
	pc.BindCamera(cam)
}

func (g *Game) PlayerCharacter() *scene.Character { return g.pc }

func (g *Game) SetCamera(c scene.Camera) {
	g.camera = c
	g.renderer.SetCamera(c)
	g.data.SetCamera(c)
}

// WatchAssets re-uploads textures whose files change under w. Events are
// handled between frames on the loop's goroutine.
func (g *Game) WatchAssets(w *asset.Watcher) { g.watcher = w }

func (g *Game) reloadAssets() {
	if g.watcher == nil {
		return
	}
	for {
		select {
		case path, ok := <-g.watcher.Events():
			if !ok {
				g.watcher = nil
				return
			}
			g.reload(path)
		default:
			return
		}
	}
}

func (g *Game) reload(path string) {
	img, err := asset.LoadImage(path)
	if err != nil {
		g.logger.Debug("skip changed file", "path", path, "err", err)
		return
	}
	if _, err := g.renderer.ReloadTexture(path, img); err != nil {
		g.logger.Warn("reload texture", "path", path, "err", err)
	}
}

func (g *Game) escape(_ input.Key, action input.Action, _ input.ModifierKey) {
	if action == input.Press {
		g.Terminate()
	}
}

func (g *Game) toggleMouseLook(_ input.MouseButton, action input.Action, _ input.ModifierKey) {
	if action != input.Release {
		return
	}
	if !g.mouseLook {
		g.window.SetCursorLocked(true)
		g.dispatch.RegisterMouseMotion(g.look)
		g.mouseLook = true
		g.window.SetCursorPos(cursorHome, cursorHome)
		return
	}
	g.window.SetCursorLocked(false)
	g.dispatch.UnregisterMouseMotion()
	g.mouseLook = false
}

func (g *Game) look(x, y float64) {
	if g.camera != nil {
		g.camera.Yaw(float32(x-cursorHome) * mouseLookSpeed)
		g.camera.Pitch(float32(y-cursorHome) * mouseLookSpeed)
	}
	g.window.SetCursorPos(cursorHome, cursorHome)
}

// move runs fn with +1 on press and -1 on release so opposite keys cancel.
func (g *Game) move(action input.Action, sign float32, fn func(*scene.Character, float32)) {
	if g.pc == nil {
		return
	}
	switch action {
	case input.Press:
		fn(g.pc, sign)
	case input.Release:
		fn(g.pc, -sign)
	}
}

func (g *Game) moveForward(_ input.Key, action input.Action, _ input.ModifierKey) {
	g.move(action, 1, (*scene.Character).ForwardsBackwards)
}

func (g *Game) moveBackward(_ input.Key, action input.Action, _ input.ModifierKey) {
	g.move(action, -1, (*scene.Character).ForwardsBackwards)
}

func (g *Game) moveLeft(_ input.Key, action input.Action, _ input.ModifierKey) {
	g.move(action, -1, (*scene.Character).LeftRight)
}

func (g *Game) moveRight(_ input.Key, action input.Action, _ input.ModifierKey) {
	g.move(action, 1, (*scene.Character).LeftRight)
}
