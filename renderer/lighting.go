package renderer

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/chewxy/math32"

	"scene-renderer/gpu"
	"scene-renderer/math"
)

const (
	// NumLights is the size of the light arrays in the render program.
	NumLights = 20
	// ShadowMapSize is the default edge length of a directional light's
	// depth target.
	ShadowMapSize = 2048

	shadowEyeDistance = 20
)

var (
	ErrLightPoolExhausted = errors.New("light pool exhausted")
	ErrDoubleRelease      = errors.New("light released twice")
)

// LightKind matches the lightType values the fragment shader switches on.
type LightKind int32

const (
	LightDisabled LightKind = iota
	LightDirectional
	LightPoint
)

func (k LightKind) String() string {
	switch k {
	case LightDirectional:
		return "directional"
	case LightPoint:
		return "point"
	}
	return "disabled"
}

// AmbientLight is the single unshadowed fill light.
type AmbientLight struct {
	program   *gpu.Program
	amplitude gpu.UniformFloat
	colour    gpu.UniformVec3
}

func newAmbientLight(p *gpu.Program) *AmbientLight {
	return &AmbientLight{
		program:   p,
		amplitude: p.UniformFloat("ambientLightAmplitude"),
		colour:    p.UniformVec3("ambientLightColour"),
	}
}

func (a *AmbientLight) SetAmplitude(v float32) {
	a.program.Use()
	a.amplitude.Set(v)
}

func (a *AmbientLight) SetColour(c math.Vec3) {
	a.program.Use()
	a.colour.Set(c)
}

// Light is a light occupying one slot of the render program's light arrays.
// Its setters are only valid until it is released.
type Light interface {
	Index() int
	Kind() LightKind
	SetAmplitude(v float32)
	SetColour(c math.Vec3)

	release()
}

// slot holds the uniforms shared by every light kind at one array index.
type slot struct {
	AmbientLight
	index  int
	kind   LightKind
	typ    gpu.UniformInt
	vector gpu.UniformVec3
}

func slotUniform(name string, i int) string {
	return name + "[" + strconv.Itoa(i) + "]"
}

func newSlot(p *gpu.Program, index int, kind LightKind) slot {
	s := slot{
		AmbientLight: AmbientLight{
			program:   p,
			amplitude: p.UniformFloat(slotUniform("lightAmplitude", index)),
			colour:    p.UniformVec3(slotUniform("lightColour", index)),
		},
		index:  index,
		kind:   kind,
		typ:    p.UniformInt(slotUniform("lightType", index)),
		vector: p.UniformVec3(slotUniform("lightVector", index)),
	}
	p.Use()
	s.typ.Set(int32(kind))
	return s
}

func (s *slot) Index() int { return s.index }
func (s *slot) Kind() LightKind { return s.kind }

func (s *slot) disable() {
	s.program.Use()
	s.typ.Set(int32(LightDisabled))
}

// PointLight shines in every direction from a position, falling off with
// distance.
type PointLight struct {
	slot
	pos math.Vec3
}

func (l *PointLight) Pos() math.Vec3 { return l.pos }

func (l *PointLight) SetPosition(p math.Vec3) {
	l.pos = p
	l.program.Use()
	l.vector.Set(p)
}

func (l *PointLight) release() { l.disable() }

// DirectionalLight is a parallel light that renders a shadow map of the
// region around the origin.
type DirectionalLight struct {
	slot
	target    *gpu.DepthTarget
	sampler   *gpu.UniformSampler
	viewProj  gpu.UniformMat4
	direction math.Vec3
	matrix    math.Mat4
	shadows   bool
}

// Direction is the normalized direction the light travels in.
func (l *DirectionalLight) Direction() math.Vec3 { return l.direction }

// Matrix is the light's view-projection used for the shadow pass.
func (l *DirectionalLight) Matrix() math.Mat4 { return l.matrix }

// ShadowTexture is the depth texture the shadow pass renders into.
func (l *DirectionalLight) ShadowTexture() uint32 { return l.target.Texture }

func (l *DirectionalLight) ShadowMapping() bool { return l.shadows }
func (l *DirectionalLight) SetShadowMapping(enabled bool) { l.shadows = enabled }

// SetDirection points the light along d and rebuilds its view-projection:
// an eye 20 units back from the origin along d, looking at the origin, with
// an orthographic box of [-10,10]×[-10,10]×[1,40].
func (l *DirectionalLight) SetDirection(d math.Vec3) error {
	if d.LengthSqr() == 0 {
		return fmt.Errorf("light direction is zero: %w", math.ErrInvalidArgument)
	}
	f := d.Normalize()

	up := math.Vec3Up
	if math32.Abs(f.Y) > 0.999 {
		up = math.Vec3Back
	}
	s := f.Cross(up).Normalize()
	u := s.Cross(f)
	pos := f.Mul(-shadowEyeDistance)

	view := math.Mat4Identity()
	view[0][0], view[1][0], view[2][0] = s.X, s.Y, s.Z
	view[0][1], view[1][1], view[2][1] = u.X, u.Y, u.Z
	view[0][2], view[1][2], view[2][2] = -f.X, -f.Y, -f.Z
	view[3][0] = -s.Dot(pos)
	view[3][1] = -u.Dot(pos)
	view[3][2] = f.Dot(pos)

	l.direction = f
	l.matrix = view.Mul(math.Mat4Orthographic(-10, 10, -10, 10, 1, 40))

	l.program.Use()
	l.vector.Set(f)
	l.viewProj.Set(l.matrix)
	return nil
}

// setShadowMap points the light's sampler at its depth texture.
func (l *DirectionalLight) setShadowMap() {
	l.sampler.Set(l.target.Texture)
}

func (l *DirectionalLight) release() {
	l.disable()
	l.target.Release()
}

// lightPool hands out slot indices, lowest first. A released index is the
// next one handed out.
type lightPool struct {
	free   []int
	lights [NumLights]Light
}

func newLightPool() *lightPool {
	p := &lightPool{free: make([]int, NumLights)}
	for i := range p.free {
		p.free[i] = NumLights - 1 - i
	}
	return p
}

func (p *lightPool) acquire() (int, error) {
	if len(p.free) == 0 {
		return 0, ErrLightPoolExhausted
	}
	i := p.free[len(p.free)-1]
	p.free = p.free[:len(p.free)-1]
	return i, nil
}

func (p *lightPool) put(i int) {
	p.free = append(p.free, i)
}

// available reports the number of free slots.
func (p *lightPool) available() int { return len(p.free) }

// Ambient returns the scene's ambient light.
func (r *Renderer) Ambient() *AmbientLight { return r.ambient }

// AcquirePointLight claims a slot for a new point light at the origin.
func (r *Renderer) AcquirePointLight() (*PointLight, error) {
	i, err := r.pool.acquire()
	if err != nil {
		return nil, err
	}
	l := &PointLight{slot: newSlot(r.render, i, LightPoint)}
	l.SetPosition(math.Vec3Zero)
	r.pool.lights[i] = l
	r.logger.Debug("acquired light", "kind", l.kind, "slot", i)
	return l, nil
}

// AcquireDirectionalLight claims a slot for a new shadow-casting light
// pointing down -Z.
func (r *Renderer) AcquireDirectionalLight() (*DirectionalLight, error) {
	i, err := r.pool.acquire()
	if err != nil {
		return nil, err
	}

	target, err := gpu.NewDepthTarget(r.dev, r.shadowSize)
	if err != nil {
		r.pool.put(i)
		return nil, fmt.Errorf("shadow map for light %d: %w", i, err)
	}
	sampler, err := r.render.UniformSampler(slotUniform("lightShadowMapSampler", i))
	if err != nil {
		target.Release()
		r.pool.put(i)
		return nil, err
	}

	l := &DirectionalLight{
		slot:     newSlot(r.render, i, LightDirectional),
		target:   target,
		sampler:  sampler,
		viewProj: r.render.UniformMat4(slotUniform("lightViewMatrix", i)),
		shadows:  true,
	}
	if err := l.SetDirection(math.Vec3Back); err != nil {
		l.release()
		r.pool.put(i)
		return nil, err
	}
	r.pool.lights[i] = l
	r.logger.Debug("acquired light", "kind", l.kind, "slot", i)
	return l, nil
}

// ReleaseLight disables l in the shader and frees its slot. Releasing a
// light that no longer holds its slot returns ErrDoubleRelease.
func (r *Renderer) ReleaseLight(l Light) error {
	i := l.Index()
	if i < 0 || i >= NumLights || r.pool.lights[i] != l {
		return fmt.Errorf("light slot %d: %w", i, ErrDoubleRelease)
	}
	l.release()
	r.pool.lights[i] = nil
	r.pool.put(i)
	r.logger.Debug("released light", "kind", l.Kind(), "slot", i)
	return nil
}

// FreeLights reports how many light slots are unclaimed.
func (r *Renderer) FreeLights() int { return r.pool.available() }
