// Package renderer draws a set of entities with forward lighting and
// shadow-mapped directional lights.
package renderer

import (
	"embed"
	"errors"
	"fmt"
	"image"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/chewxy/math32"
	"github.com/google/uuid"

	"scene-renderer/gpu"
	"scene-renderer/logging"
	"scene-renderer/math"
	"scene-renderer/scene"
)

const (
	MinFOV     float32 = math32.Pi / 100
	MaxFOV     float32 = math32.Pi / 3
	DefaultFOV float32 = math32.Pi / 4

	minZ = 0.1
)

var (
	ErrUnknownModel = errors.New("unknown model")
	ErrNoCamera     = errors.New("no camera")
)

//go:embed shaders/*.glsl
var shaderFiles embed.FS

// Surface is what the renderer presents to.
type Surface interface {
	FramebufferSize() (width, height int)
	SwapBuffers()
}

// FrameStats counts the draw calls of the last frame.
type FrameStats struct {
	ShadowDraws int
	ColourDraws int
	UIDraws     int
}

type Option func(*Renderer)

func WithLogger(l *log.Logger) Option {
	return func(r *Renderer) { r.logger = l }
}

// WithShaderFS loads the GLSL sources from fsys instead of the built-in ones.
// The four stage files must sit at the root of fsys.
func WithShaderFS(fsys fs.FS) Option {
	return func(r *Renderer) { r.shaders = fsys }
}

func WithClearColour(red, green, blue, alpha float32) Option {
	return func(r *Renderer) { r.clear = [4]float32{red, green, blue, alpha} }
}

// WithShadowSize sets the edge length of new directional lights' shadow maps.
func WithShadowSize(size int) Option {
	return func(r *Renderer) { r.shadowSize = size }
}

// renderHandles are the render program's per-frame uniforms.
type renderHandles struct {
	useLighting  gpu.UniformInt
	modelMatrix  gpu.UniformMat4
	normalMatrix gpu.UniformMat4
	viewMatrix   gpu.UniformMat4
	texture      *gpu.UniformSampler
	diffuse      gpu.UniformVec3
	alpha        gpu.UniformFloat
	cameraPos    gpu.UniformVec3
}

type depthHandles struct {
	modelMatrix gpu.UniformMat4
	viewMatrix  gpu.UniformMat4
}

// Renderer owns the shader programs, the light slots, the registered models
// and the entities drawn each frame. All methods must be called on the
// thread that owns the graphics context.
type Renderer struct {
	dev     gpu.Device
	surface Surface
	logger  *log.Logger
	shaders fs.FS

	clear      [4]float32
	shadowSize int

	render *gpu.Program
	depth  *gpu.Program
	rh     renderHandles
	dh     depthHandles

	ambient *AmbientLight
	pool    *lightPool

	models     map[scene.ModelID]*scene.Model
	entities   *entitySet
	uiEntities *entitySet
	camera     scene.Camera

	fov, maxZ   float32
	aspect      float32
	perspective math.Mat4

	stats     FrameStats
	destroyed bool
}

// New compiles both programs and sets up the fixed pipeline state. The field
// of view starts at DefaultFOV.
func New(dev gpu.Device, surface Surface, opts ...Option) (*Renderer, error) {
	sub, err := fs.Sub(shaderFiles, "shaders")
	if err != nil {
		return nil, fmt.Errorf("embedded shaders: %w", err)
	}
	r := &Renderer{
		dev:        dev,
		surface:    surface,
		shaders:    sub,
		clear:      [4]float32{1, 1, 1, 0},
		shadowSize: ShadowMapSize,
		pool:       newLightPool(),
		models:     make(map[scene.ModelID]*scene.Model),
		entities:   newEntitySet(),
		uiEntities: newEntitySet(),
		aspect:     1,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = logging.New("renderer")
	}

	dev.Enable(gpu.Multisample)
	dev.Enable(gpu.DepthTest)
	dev.DepthFunc(gpu.Less)
	dev.Enable(gpu.CullFace)
	dev.Enable(gpu.Blend)
	dev.BlendFunc(gpu.SrcAlpha, gpu.OneMinusSrcAlpha)
	dev.ClearColor(r.clear[0], r.clear[1], r.clear[2], r.clear[3])

	consts := map[string]any{
		"NUM_LIGHTS":   NumLights,
		"SHADOW_CASES": shadowCases(NumLights),
	}
	r.render, err = r.program("vertex_shader.glsl", "fragment_shader.glsl", consts)
	if err != nil {
		return nil, fmt.Errorf("render program: %w", err)
	}
	r.depth, err = r.program("depth_vertex_shader.glsl", "depth_fragment_shader.glsl", nil)
	if err != nil {
		r.render.Delete()
		return nil, fmt.Errorf("depth program: %w", err)
	}

	r.depth.Use()
	r.dh = depthHandles{
		modelMatrix: r.depth.UniformMat4("modelMatrix"),
		viewMatrix:  r.depth.UniformMat4("viewMatrix"),
	}

	r.render.Use()
	texture, err := r.render.UniformSampler("matTextureSampler")
	if err != nil {
		r.render.Delete()
		r.depth.Delete()
		return nil, err
	}
	r.rh = renderHandles{
		useLighting:  r.render.UniformInt("useLighting"),
		modelMatrix:  r.render.UniformMat4("modelMatrix"),
		normalMatrix: r.render.UniformMat4("normalMatrix"),
		viewMatrix:   r.render.UniformMat4("viewMatrix"),
		texture:      texture,
		diffuse:      r.render.UniformVec3("matDiffuseColour"),
		alpha:        r.render.UniformFloat("matAlpha"),
		cameraPos:    r.render.UniformVec3("cameraPosition"),
	}
	r.ambient = newAmbientLight(r.render)

	if w, h := surface.FramebufferSize(); h != 0 {
		r.aspect = float32(w) / float32(h)
	}
	if err := r.SetFOV(DefaultFOV); err != nil {
		r.render.Delete()
		r.depth.Delete()
		return nil, err
	}
	return r, nil
}

// shadowCases expands to one switch case per light slot, each sampling its
// shadow map with a constant index.
func shadowCases(n int) string {
	var b strings.Builder
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, "\tcase %d: return texture(lightShadowMapSampler[%d], uv).r;\n", i, i)
	}
	return b.String()
}

func (r *Renderer) program(vertex, fragment string, consts map[string]any) (*gpu.Program, error) {
	vs, err := gpu.NewShaderFromFile(r.dev, gpu.VertexShader, r.shaders, vertex, consts)
	if err != nil {
		r.logger.Error("shader", "file", vertex, "err", err)
		return nil, err
	}
	frag, err := gpu.NewShaderFromFile(r.dev, gpu.FragmentShader, r.shaders, fragment, consts)
	if err != nil {
		vs.Delete()
		r.logger.Error("shader", "file", fragment, "err", err)
		return nil, err
	}
	p, err := gpu.NewProgram(r.dev, vs, frag)
	if err != nil {
		vs.Delete()
		frag.Delete()
		r.logger.Error("link", "err", err)
		return nil, err
	}
	return p, nil
}

// SetFOV clamps fov to [MinFOV, MaxFOV] and moves the far plane so the
// visible area stays roughly constant.
func (r *Renderer) SetFOV(fov float32) error {
	r.fov = math.Clamp(fov, MinFOV, MaxFOV)
	r.maxZ = 100 / math32.Sqrt(math32.Tan(r.fov))
	return r.rebuildPerspective()
}

func (r *Renderer) FOV() float32 { return r.fov }
func (r *Renderer) MaxZ() float32 { return r.maxZ }
func (r *Renderer) MinZ() float32 { return minZ }
func (r *Renderer) Perspective() math.Mat4 { return r.perspective }

// Resize updates the aspect ratio. A zero height is ignored.
func (r *Renderer) Resize(width, height int) {
	if height == 0 {
		return
	}
	r.aspect = float32(width) / float32(height)
	if err := r.rebuildPerspective(); err != nil {
		r.logger.Error("resize", "width", width, "height", height, "err", err)
	}
}

func (r *Renderer) rebuildPerspective() error {
	p, err := math.Mat4Perspective(r.fov, r.aspect, minZ, r.maxZ)
	if err != nil {
		return err
	}
	r.perspective = p
	return nil
}

// AddModel registers the model built by build under id and binds its meshes
// to the render program. Registering an id twice does nothing; build is not
// called the second time.
func (r *Renderer) AddModel(id scene.ModelID, build func() (*scene.Model, error)) error {
	if _, ok := r.models[id]; ok {
		return nil
	}
	m, err := build()
	if err != nil {
		return fmt.Errorf("model %q: %w", id, err)
	}
	for _, mesh := range m.Meshes() {
		mesh.BindAttributes(r.render)
	}
	r.dev.BindVertexArray(0)

	r.models[id] = m
	r.logger.Debug("added model", "id", id, "meshes", len(m.Meshes()))
	return nil
}

// RemoveModel unregisters id and frees its GPU resources. Entities still
// referring to it are skipped when drawing.
func (r *Renderer) RemoveModel(id scene.ModelID) error {
	m, ok := r.models[id]
	if !ok {
		return fmt.Errorf("remove model %q: %w", id, ErrUnknownModel)
	}
	m.Release()
	delete(r.models, id)
	r.logger.Debug("removed model", "id", id)
	return nil
}

// Model returns the registered model for id, or nil.
func (r *Renderer) Model(id scene.ModelID) *scene.Model { return r.models[id] }

func (r *Renderer) AddEntity(e scene.Renderable) { r.entities.add(e) }
func (r *Renderer) RemoveEntity(e scene.Renderable) { r.entities.remove(e) }
func (r *Renderer) AddUIEntity(e scene.Renderable) { r.uiEntities.add(e) }
func (r *Renderer) RemoveUIEntity(e scene.Renderable) { r.uiEntities.remove(e) }

func (r *Renderer) SetCamera(c scene.Camera) { r.camera = c }
func (r *Renderer) Camera() scene.Camera { return r.camera }

// Stats returns the draw counts of the last Update.
func (r *Renderer) Stats() FrameStats { return r.stats }

// Update draws one frame: a depth pass per shadow-casting light, then the
// lit world and the unlit UI overlay, then presents.
func (r *Renderer) Update(dt float32) error {
	if r.camera == nil {
		return ErrNoCamera
	}
	r.stats = FrameStats{}

	r.depth.Use()
	r.dev.CullFace(gpu.Front)
	for _, l := range r.pool.lights {
		dl, ok := l.(*DirectionalLight)
		if !ok || !dl.shadows {
			continue
		}
		dl.target.Bind()
		r.dev.Clear(gpu.DepthBufferBit)
		r.dh.viewMatrix.Set(dl.matrix)
		r.stats.ShadowDraws += r.entities.each(r, func(m *scene.Model, matrix math.Mat4) int {
			r.dh.modelMatrix.Set(m.Matrix(matrix))
			for _, mesh := range m.Meshes() {
				mesh.Draw()
			}
			return len(m.Meshes())
		})
		dl.setShadowMap()
	}
	r.dev.BindFramebuffer(0)

	r.render.Use()
	r.dev.CullFace(gpu.Back)
	w, h := r.surface.FramebufferSize()
	r.dev.Viewport(0, 0, w, h)
	r.dev.Clear(gpu.ColorBufferBit | gpu.DepthBufferBit)

	r.rh.viewMatrix.Set(r.camera.Matrix().Mul(r.perspective))
	r.rh.cameraPos.Set(r.camera.Pos())
	r.rh.useLighting.Set(1)
	r.stats.ColourDraws = r.entities.each(r, r.drawEntity)

	r.rh.viewMatrix.Set(math.Mat4Identity())
	r.rh.useLighting.Set(0)
	r.stats.UIDraws = r.uiEntities.each(r, r.drawEntity)

	r.surface.SwapBuffers()
	return nil
}

func (r *Renderer) drawEntity(m *scene.Model, matrix math.Mat4) int {
	model := m.Matrix(matrix)
	r.rh.modelMatrix.Set(model)
	r.rh.normalMatrix.Set(model.Inverse().Transpose())

	for _, mesh := range m.Meshes() {
		if mat := mesh.Material; mat != nil {
			r.rh.texture.Set(mat.Texture())
			r.rh.diffuse.Set(mat.Colour)
			r.rh.alpha.Set(mat.Alpha)
		}
		mesh.Draw()
	}
	return len(m.Meshes())
}

// ReloadTexture re-uploads img into every material loaded from path and
// reports how many were updated.
func (r *Renderer) ReloadTexture(path string, img image.Image) (int, error) {
	path = filepath.Clean(path)
	n := 0
	for id, m := range r.models {
		for _, mat := range m.Materials() {
			if mat.Source == "" || filepath.Clean(mat.Source) != path {
				continue
			}
			if err := mat.Reload(img); err != nil {
				return n, fmt.Errorf("model %q: %w", id, err)
			}
			n++
		}
	}
	if n > 0 {
		r.logger.Info("reloaded texture", "path", path, "materials", n)
	}
	return n, nil
}

// Destroy releases every light, model and program. Later calls do nothing.
func (r *Renderer) Destroy() {
	if r.destroyed {
		return
	}
	r.destroyed = true

	for i, l := range r.pool.lights {
		if l != nil {
			l.release()
			r.pool.lights[i] = nil
		}
	}
	for id, m := range r.models {
		m.Release()
		delete(r.models, id)
	}
	r.render.Delete()
	r.depth.Delete()
}

// entitySet keeps insertion order so overlapping UI quads stack
// predictably.
type entitySet struct {
	order []scene.Renderable
	index map[uuid.UUID]int
}

func newEntitySet() *entitySet {
	return &entitySet{index: make(map[uuid.UUID]int)}
}

func (s *entitySet) add(e scene.Renderable) {
	if _, ok := s.index[e.ID()]; ok {
		return
	}
	s.index[e.ID()] = len(s.order)
	s.order = append(s.order, e)
}

func (s *entitySet) remove(e scene.Renderable) {
	i, ok := s.index[e.ID()]
	if !ok {
		return
	}
	copy(s.order[i:], s.order[i+1:])
	s.order[len(s.order)-1] = nil
	s.order = s.order[:len(s.order)-1]
	delete(s.index, e.ID())
	for j := i; j < len(s.order); j++ {
		s.index[s.order[j].ID()] = j
	}
}

// each calls draw for every entity whose model is registered and sums what
// draw returns.
func (s *entitySet) each(r *Renderer, draw func(*scene.Model, math.Mat4) int) int {
	n := 0
	for _, e := range s.order {
		m, ok := r.models[e.Model()]
		if !ok {
			r.logger.Debug("entity without model", "entity", e.ID(), "model", e.Model())
			continue
		}
		n += draw(m, e.Matrix())
	}
	return n
}
