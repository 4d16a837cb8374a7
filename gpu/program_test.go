package gpu_test

import (
	"errors"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scene-renderer/gpu"
	"scene-renderer/gpu/gputest"
	"scene-renderer/math"
)

func newProgram(t *testing.T, dev *gputest.Device) *gpu.Program {
	t.Helper()
	vs, err := gpu.NewShader(dev, gpu.VertexShader, "void main() {}")
	require.NoError(t, err)
	fs, err := gpu.NewShader(dev, gpu.FragmentShader, "void main() {}")
	require.NoError(t, err)
	p, err := gpu.NewProgram(dev, vs, fs)
	require.NoError(t, err)
	return p
}

func TestSubstituteConstants(t *testing.T) {
	src := "uniform int lightType[@NUM_LIGHTS@];\nconst float k = @K@; // @UNKNOWN@"
	out := gpu.SubstituteConstants(src, map[string]any{"NUM_LIGHTS": 20, "K": 0.5})
	assert.Equal(t, "uniform int lightType[20];\nconst float k = 0.5; // @UNKNOWN@", out)
	assert.Equal(t, src, gpu.SubstituteConstants(src, nil))
}

func TestShaderFromFile(t *testing.T) {
	dev := gputest.NewDevice()
	fsys := fstest.MapFS{
		"shaders/a.glsl": {Data: []byte("#define N @N@\nvoid main() {}")},
	}

	s, err := gpu.NewShaderFromFile(dev, gpu.VertexShader, fsys, "shaders/a.glsl", map[string]any{"N": 4})
	require.NoError(t, err)
	assert.Equal(t, gpu.VertexShader, s.Kind())

	_, err = gpu.NewShaderFromFile(dev, gpu.VertexShader, fsys, "missing.glsl", nil)
	assert.Error(t, err)
}

func TestShaderCompileError(t *testing.T) {
	dev := gputest.NewDevice()
	dev.FailCompile = true
	dev.InfoLog = "0:1(1): error: syntax error\x00"

	_, err := gpu.NewShader(dev, gpu.FragmentShader, "garbage")
	var compileErr *gpu.ShaderCompileError
	require.True(t, errors.As(err, &compileErr))
	assert.Equal(t, gpu.FragmentShader, compileErr.Kind)
	assert.Equal(t, "0:1(1): error: syntax error", compileErr.Log)
	assert.Equal(t, 0, dev.Live("shader"))
}

func TestShaderEmptySource(t *testing.T) {
	_, err := gpu.NewShader(gputest.NewDevice(), gpu.VertexShader, "  \n")
	assert.ErrorIs(t, err, gpu.ErrNoShaderSource)
}

func TestProgramLinkError(t *testing.T) {
	dev := gputest.NewDevice()
	vs, err := gpu.NewShader(dev, gpu.VertexShader, "void main() {}")
	require.NoError(t, err)

	dev.FailLink = true
	dev.InfoLog = "undefined varying"
	_, err = gpu.NewProgram(dev, vs)

	var linkErr *gpu.ShaderLinkError
	require.True(t, errors.As(err, &linkErr))
	assert.Equal(t, "undefined varying", linkErr.Log)
	assert.Equal(t, 0, dev.Live("program"))
}

func TestUniformLocationsAreMemoized(t *testing.T) {
	dev := gputest.NewDevice()
	p := newProgram(t, dev)

	a := p.UniformMat4("modelMatrix")
	b := p.UniformMat4("modelMatrix")
	assert.Equal(t, a.Location(), b.Location())
	assert.Equal(t, 1, dev.LocationQueries(p.ID()))

	p.UniformFloat("matAlpha")
	assert.Equal(t, 2, dev.LocationQueries(p.ID()))
}

func TestUniformValues(t *testing.T) {
	dev := gputest.NewDevice()
	p := newProgram(t, dev)
	p.Use()

	p.UniformInt("useLighting").Set(1)
	p.UniformFloat("matAlpha").Set(0.5)
	p.UniformVec3("cameraPosition").Set(math.NewVec3(1, 2, 3))
	p.UniformMat4("viewMatrix").Set(math.Mat4Identity().Translate(math.NewVec3(4, 5, 6)))
	p.UniformMat3("rot").Set(math.Mat4Identity())

	v, _ := dev.Uniform(p.ID(), "useLighting")
	assert.Equal(t, int32(1), v)
	v, _ = dev.Uniform(p.ID(), "matAlpha")
	assert.Equal(t, float32(0.5), v)
	v, _ = dev.Uniform(p.ID(), "cameraPosition")
	assert.Equal(t, [3]float32{1, 2, 3}, v)
	v, _ = dev.Uniform(p.ID(), "viewMatrix")
	m := v.([16]float32)
	assert.Equal(t, []float32{4, 5, 6, 1}, m[12:])
	v, _ = dev.Uniform(p.ID(), "rot")
	assert.Equal(t, [9]float32{1, 0, 0, 0, 1, 0, 0, 0, 1}, v)
}

func TestSamplerUnitPool(t *testing.T) {
	dev := gputest.NewDevice()
	dev.MaxUnits = 3
	p := newProgram(t, dev)

	s0, err := p.UniformSampler("matTextureSampler")
	require.NoError(t, err)
	assert.Equal(t, 0, s0.Unit())

	again, err := p.UniformSampler("matTextureSampler")
	require.NoError(t, err)
	assert.Same(t, s0, again)

	s1, err := p.UniformSampler("lightShadowMapSampler[0]")
	require.NoError(t, err)
	assert.Equal(t, 1, s1.Unit())
	_, err = p.UniformSampler("lightShadowMapSampler[1]")
	require.NoError(t, err)
	assert.Equal(t, 0, p.FreeUnits())

	_, err = p.UniformSampler("lightShadowMapSampler[2]")
	assert.ErrorIs(t, err, gpu.ErrTextureUnitsExhausted)

	v, _ := dev.Uniform(p.ID(), "lightShadowMapSampler[0]")
	assert.Equal(t, int32(1), v)

	s1.Set(42)
	assert.Equal(t, uint32(42), dev.Bound[1])
}

func TestAttributes(t *testing.T) {
	dev := gputest.NewDevice()
	dev.MissingAttributes["vertexUv"] = true
	p := newProgram(t, dev)

	pos := p.Attribute("vertexPosition")
	assert.Same(t, pos, p.Attribute("vertexPosition"))
	pos.Enable()
	assert.True(t, dev.EnabledAttribs[uint32(pos.Location())])
	pos.Disable()
	assert.False(t, dev.EnabledAttribs[uint32(pos.Location())])

	uv := p.Attribute("vertexUv")
	assert.Equal(t, int32(-1), uv.Location())
	uv.Enable()
	assert.Empty(t, dev.EnabledAttribs)
}

func TestProgramDelete(t *testing.T) {
	dev := gputest.NewDevice()
	p := newProgram(t, dev)
	p.Delete()
	p.Delete()

	assert.Equal(t, 0, dev.Live("program"))
	assert.Equal(t, 0, dev.Live("shader"))
	assert.Empty(t, dev.DoubleDeletes)
}

func TestDepthTarget(t *testing.T) {
	dev := gputest.NewDevice()
	target, err := gpu.NewDepthTarget(dev, 2048)
	require.NoError(t, err)

	img := dev.TexImages[target.Texture]
	assert.Equal(t, 2048, img.Width)
	assert.Equal(t, gpu.DepthComponent32F, img.InternalFormat)
	assert.Equal(t, uint32(0), dev.CurrentFramebuffer)

	target.Bind()
	assert.Equal(t, target.Framebuffer, dev.CurrentFramebuffer)
	assert.Equal(t, 2048, dev.ViewportWidth)

	target.Release()
	target.Release()
	assert.Equal(t, 0, dev.Live("framebuffer"))
	assert.Equal(t, 0, dev.Live("texture"))
	assert.Empty(t, dev.DoubleDeletes)
}

func TestDepthTargetIncomplete(t *testing.T) {
	dev := gputest.NewDevice()
	dev.IncompleteFramebuffers = true
	_, err := gpu.NewDepthTarget(dev, 16)
	assert.ErrorIs(t, err, gpu.ErrFramebufferIncomplete)
	assert.Equal(t, 0, dev.Live("texture"))
}

func TestNewTexture(t *testing.T) {
	dev := gputest.NewDevice()
	tex := gpu.NewTexture(dev, 1, 1, gpu.RGB, []byte{255, 255, 255})
	img := dev.TexImages[tex]
	assert.Equal(t, gpu.RGB, img.Format)
	assert.Equal(t, 3, img.Bytes)
}
