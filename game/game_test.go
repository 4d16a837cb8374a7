package game

import (
	"bytes"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scene-renderer/asset"
	"scene-renderer/gpu/gputest"
	"scene-renderer/input"
	"scene-renderer/logging"
	"scene-renderer/math"
	"scene-renderer/renderer"
	"scene-renderer/scene"
)

type fakeWindow struct {
	dispatch *input.DispatchTable
	resize   []func(int, int)
	polls    int
	closeAt  int
	swaps    int
	locked   bool
	cursorX  float64
	cursorY  float64
	onPoll   func()
}

func (w *fakeWindow) Attach(d *input.DispatchTable) { w.dispatch = d }
func (w *fakeWindow) OnResize(fn func(int, int)) { w.resize = append(w.resize, fn) }
func (w *fakeWindow) ShouldClose() bool { return w.closeAt > 0 && w.polls >= w.closeAt }
func (w *fakeWindow) SetCursorLocked(l bool) { w.locked = l }
func (w *fakeWindow) SetCursorPos(x, y float64) { w.cursorX, w.cursorY = x, y }
func (w *fakeWindow) FramebufferSize() (int, int) { return 640, 480 }
func (w *fakeWindow) SwapBuffers() { w.swaps++ }

func (w *fakeWindow) PollEvents() {
	w.polls++
	if w.onPoll != nil {
		w.onPoll()
	}
}

func fakeClock() *Clock {
	t := time.Unix(0, 0)
	return NewClockWith(func() time.Time { return t }, func(d time.Duration) { t = t.Add(d) })
}

func newGame(t *testing.T) (*Game, *fakeWindow, *gputest.Device) {
	t.Helper()
	dev := gputest.NewDevice()
	w := &fakeWindow{}
	r, err := renderer.New(dev, w, renderer.WithLogger(logging.Discard()))
	require.NoError(t, err)
	t.Cleanup(r.Destroy)

	require.NoError(t, r.AddModel("quad", func() (*scene.Model, error) {
		return scene.NewQuadModel(dev, nil)
	}))
	g := New(w, r, WithLogger(logging.Discard()), WithClock(fakeClock()))
	return g, w, dev
}

func TestClockCapsFrameRate(t *testing.T) {
	c := fakeClock()

	dt := c.Tick(60)
	assert.InDelta(t, 1.0/60, dt, 1e-6)
	assert.Zero(t, c.FPS())

	for i := 1; i < FPSUpdateFreq; i++ {
		c.Tick(60)
	}
	assert.InDelta(t, 60, c.FPS(), 1e-3)
}

func TestClockDoesNotSleepWhenBehind(t *testing.T) {
	now := time.Unix(0, 0)
	slept := time.Duration(0)
	c := NewClockWith(func() time.Time { return now }, func(d time.Duration) { slept += d })

	now = now.Add(50 * time.Millisecond)
	dt := c.Tick(60)
	assert.InDelta(t, 0.05, dt, 1e-6)
	assert.Zero(t, slept)
}

func TestGameDataUpdate(t *testing.T) {
	d := NewGameData()
	pc := scene.NewCharacter("quad", 2)
	pc.LeftRight(1)
	d.AddCharacter(pc)
	cam := scene.NewOrbitalCamera(pc, math.NewVec3(0, 0, 5))
	d.SetCamera(cam)

	d.Update(0.5)
	assert.InDelta(t, 1, pc.Pos().X, 1e-6)
	// the camera follows within the same frame
	assert.InDelta(t, pc.Pos().X, cam.Pos().X, 1e-5)

	d.RemoveCharacter(pc)
	d.Update(0.5)
	assert.InDelta(t, 1, pc.Pos().X, 1e-6)
	assert.InDelta(t, 1, cam.Pos().X, 1e-5)
}

func TestRunUntilWindowCloses(t *testing.T) {
	g, w, dev := newGame(t)
	pc := scene.NewCharacter("quad", 3)
	g.SetPlayerCharacter(pc)
	w.closeAt = 3

	require.NoError(t, g.Run())

	assert.Equal(t, 3, w.polls)
	assert.Equal(t, 3, w.swaps)
	assert.Equal(t, 3, dev.Draws[0])
	assert.Same(t, pc, g.PlayerCharacter())
}

func TestRunWithoutCamera(t *testing.T) {
	g, w, _ := newGame(t)
	w.closeAt = 1
	assert.ErrorIs(t, g.Run(), renderer.ErrNoCamera)
}

func TestEscapeTerminates(t *testing.T) {
	g, w, _ := newGame(t)
	g.SetCamera(scene.NewFirstPersonCamera(math.Vec3Zero, 0, 0))
	w.onPoll = func() {
		w.dispatch.HandleKey(input.KeyEscape, input.Release, 0)
		if w.polls == 2 {
			w.dispatch.HandleKey(input.KeyEscape, input.Press, 0)
		}
	}

	require.NoError(t, g.Run())
	assert.Equal(t, 2, w.polls)
}

func TestMovementKeys(t *testing.T) {
	g, w, _ := newGame(t)
	pc := scene.NewCharacter("quad", 1)
	g.SetPlayerCharacter(pc)
	d := w.dispatch

	d.HandleKey(input.KeyW, input.Press, 0)
	assert.Equal(t, float32(-1), pc.Movement().Z)
	d.HandleKey(input.KeyS, input.Press, 0)
	assert.Equal(t, float32(0), pc.Movement().Z)
	d.HandleKey(input.KeyW, input.Release, 0)
	assert.Equal(t, float32(1), pc.Movement().Z)
	d.HandleKey(input.KeyS, input.Release, 0)
	assert.Equal(t, float32(0), pc.Movement().Z)

	d.HandleKey(input.KeyA, input.Press, 0)
	assert.Equal(t, float32(-1), pc.Movement().X)
	d.HandleKey(input.KeyA, input.Repeat, 0)
	assert.Equal(t, float32(-1), pc.Movement().X)
	d.HandleKey(input.KeyA, input.Release, 0)
	d.HandleKey(input.KeyD, input.Press, 0)
	assert.Equal(t, float32(1), pc.Movement().X)
}

func TestMovementWithoutPlayer(t *testing.T) {
	g, w, _ := newGame(t)
	assert.Nil(t, g.PlayerCharacter())
	assert.True(t, w.dispatch.HandleKey(input.KeyW, input.Press, 0))
}

func TestMouseLook(t *testing.T) {
	g, w, _ := newGame(t)
	cam := scene.NewFirstPersonCamera(math.Vec3Zero, 0, 0)
	g.SetCamera(cam)
	d := w.dispatch

	d.HandleMouseButton(input.MouseButtonRight, input.Press, 0)
	assert.False(t, w.locked)
	assert.False(t, d.HandleCursor(5, 5))

	d.HandleMouseButton(input.MouseButtonRight, input.Release, 0)
	assert.True(t, w.locked)
	assert.Equal(t, 1.0, w.cursorX)

	w.cursorX, w.cursorY = 0, 0
	require.True(t, d.HandleCursor(11, -9))
	assert.InDelta(t, 0.1, cam.Azimuth(), 1e-6)
	assert.InDelta(t, -0.1, cam.Elevation(), 1e-6)
	assert.Equal(t, 1.0, w.cursorX)
	assert.Equal(t, 1.0, w.cursorY)

	d.HandleMouseButton(input.MouseButtonRight, input.Release, 0)
	assert.False(t, w.locked)
	assert.False(t, d.HandleCursor(11, 1))
}

func TestResizeReachesRenderer(t *testing.T) {
	g, w, _ := newGame(t)
	require.Len(t, w.resize, 1)

	w.resize[0](200, 100)
	p := g.renderer.Perspective()
	assert.InDelta(t, p[1][1]/2, p[0][0], 1e-5)
}

func TestWatchAssetsReloadsTexture(t *testing.T) {
	g, _, dev := newGame(t)
	dir := t.TempDir()
	texPath := filepath.Join(dir, "tex.png")

	mat, err := scene.NewMaterial(dev, math.Vec3One, nil)
	require.NoError(t, err)
	mat.Source = texPath
	require.NoError(t, g.renderer.AddModel("textured", func() (*scene.Model, error) {
		return scene.NewQuadModel(dev, mat)
	}))

	w, err := asset.NewWatcher(dir)
	require.NoError(t, err)
	defer w.Close()
	g.WatchAssets(w)

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewNRGBA(image.Rect(0, 0, 3, 2))))
	require.NoError(t, os.WriteFile(texPath, buf.Bytes(), 0o644))

	require.Eventually(t, func() bool {
		g.reloadAssets()
		return dev.TexImages[mat.Texture()].Width == 3
	}, 5*time.Second, 10*time.Millisecond)

	require.NoError(t, w.Close())
	g.reloadAssets()
	assert.Nil(t, g.watcher)
}
