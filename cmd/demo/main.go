package main

import (
	"fmt"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/chewxy/math32"

	"scene-renderer/asset"
	"scene-renderer/config"
	"scene-renderer/core"
	"scene-renderer/game"
	"scene-renderer/internal/opengl"
	"scene-renderer/logging"
	"scene-renderer/math"
	"scene-renderer/renderer"
	"scene-renderer/scene"
)

func main() {
	logger := logging.New("demo")
	if err := run(logger); err != nil {
		logger.Fatal("demo", "err", err)
	}
}

// run owns every resource so deferred teardown happens before main exits.
func run(logger *log.Logger) error {
	cfg, path, err := config.Find(".")
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := logging.SetLevel(cfg.LogLevel); err != nil {
		return err
	}
	if path != "" {
		logger.Info("config loaded", "path", path)
	}

	wc := core.DefaultWindowConfig()
	wc.Width, wc.Height = cfg.ScreenWidth, cfg.ScreenHeight
	wc.Title = cfg.Title
	wc.Samples = cfg.AASamples
	wc.Fullscreen = cfg.Fullscreen
	window, err := core.NewWindow(wc)
	if err != nil {
		return err
	}
	defer window.Destroy()

	dev, err := opengl.NewDevice(logging.New("gl"))
	if err != nil {
		return fmt.Errorf("init OpenGL: %w", err)
	}

	r, err := renderer.New(dev, window)
	if err != nil {
		return fmt.Errorf("create renderer: %w", err)
	}
	defer r.Destroy()
	if err := r.SetFOV(cfg.FOV); err != nil {
		return err
	}

	g := game.New(window, r, game.WithFPS(cfg.FPS))
	if err := buildScene(g, r, dev, cfg.AssetDir, logger); err != nil {
		return fmt.Errorf("build scene: %w", err)
	}

	if cfg.WatchAssets {
		w, err := asset.NewWatcher(cfg.AssetDir)
		if err != nil {
			logger.Warn("asset watcher disabled", "err", err)
		} else {
			defer w.Close()
			g.WatchAssets(w)
		}
	}

	return g.Run()
}

func buildScene(g *game.Game, r *renderer.Renderer, dev *opengl.Device, assets string, logger *log.Logger) error {
	load := func(name string) func() (*scene.Model, error) {
		return func() (*scene.Model, error) {
			return scene.LoadModel(dev, filepath.Join(assets, name), logger)
		}
	}

	if err := r.AddModel("cube", load("obj/cube.obj")); err != nil {
		return err
	}
	if err := r.AddModel("spider", func() (*scene.Model, error) {
		m, err := load("obj/spider.obj")()
		if err != nil {
			return nil, err
		}
		m.Rotate(math.NewVec3(0, math32.Pi/2, 0))
		m.Translate(math.NewVec3(-0.05, 0, 0))
		m.Scale(math.NewVec3(0.01, 0.01, 0.01))
		return m, nil
	}); err != nil {
		return err
	}
	if err := r.AddModel("duck", func() (*scene.Model, error) {
		m, err := load("gltf/duck.glb")()
		if err != nil {
			return nil, err
		}
		m.Scale(math.NewVec3(0.01, 0.01, 0.01))
		return m, nil
	}); err != nil {
		return err
	}
	if err := r.AddModel("sphere", func() (*scene.Model, error) {
		return scene.NewAssetModel(dev, asset.Sphere(0.5, 32, 16), assets, logger)
	}); err != nil {
		return err
	}
	if err := r.AddModel("ui_quad", func() (*scene.Model, error) {
		return scene.NewQuadModel(dev, nil)
	}); err != nil {
		return err
	}

	place := func(model scene.ModelID, pos math.Vec3) *scene.Entity {
		e := scene.NewEntity(model)
		e.Translate(pos)
		g.AddEntity(e)
		return e
	}
	place("cube", math.NewVec3(0, 4, 0))
	place("cube", math.NewVec3(-1, 0, -3))
	place("sphere", math.NewVec3(3, 0, -4))
	spider := place("spider", math.NewVec3(-3, 0, 0))
	spider.Rotate(math.NewVec3(0, -math32.Pi/2, 0))
	spider.Rotate(math.NewVec3(math32.Pi/6, 0, 0))
	place("duck", math.NewVec3(5, 0, -1))

	hud := scene.DefaultUILayout()
	hud.Width, hud.Height = scene.Percent(20), scene.Percent(10)
	hud.HOffset, hud.VOffset = scene.Percent(2), scene.Percent(2)
	r.AddUIEntity(scene.NewUIEntity("ui_quad", hud))

	ambient := r.Ambient()
	ambient.SetColour(math.Vec3One)
	ambient.SetAmplitude(0.1)

	sun, err := r.AcquireDirectionalLight()
	if err != nil {
		return err
	}
	if err := sun.SetDirection(math.NewVec3(-0.707107, 0, -0.707107)); err != nil {
		return err
	}
	sun.SetColour(math.NewVec3(0.75, 0.75, 0.75))

	lamp, err := r.AcquirePointLight()
	if err != nil {
		return err
	}
	lamp.SetPosition(math.NewVec3(-3, 0, -3))
	lamp.SetAmplitude(5)
	lamp.SetColour(math.NewVec3(1, 0.25, 0))

	pc := scene.NewCharacter("spider", 3)
	pc.Translate(math.NewVec3(2, 0, 0))
	g.SetPlayerCharacter(pc)
	return nil
}
