// Package gpu wraps the graphics calls the renderer makes behind a Device
// interface, and builds shader programs, textures and depth targets on top of
// it.
package gpu

// Enum values match the OpenGL constants so a GL backend can pass them
// straight through.

type ShaderKind uint32

const (
	FragmentShader ShaderKind = 0x8B30
	VertexShader   ShaderKind = 0x8B31
)

func (k ShaderKind) String() string {
	switch k {
	case VertexShader:
		return "vertex"
	case FragmentShader:
		return "fragment"
	}
	return "unknown"
}

type Capability uint32

const (
	CullFace    Capability = 0x0B44
	DepthTest   Capability = 0x0B71
	Blend       Capability = 0x0BE2
	Multisample Capability = 0x809D
)

type Face uint32

const (
	Front Face = 0x0404
	Back  Face = 0x0405
)

type DepthFunc uint32

const (
	Less DepthFunc = 0x0201
)

type BlendFactor uint32

const (
	SrcAlpha         BlendFactor = 0x0302
	OneMinusSrcAlpha BlendFactor = 0x0303
)

type ClearMask uint32

const (
	DepthBufferBit ClearMask = 0x0100
	ColorBufferBit ClearMask = 0x4000
)

type BufferTarget uint32

const (
	ArrayBuffer        BufferTarget = 0x8892
	ElementArrayBuffer BufferTarget = 0x8893
)

type PixelFormat uint32

const (
	DepthComponent    PixelFormat = 0x1902
	RGB               PixelFormat = 0x1907
	RGBA              PixelFormat = 0x1908
	DepthComponent32F PixelFormat = 0x8CAC
)

type TexParam uint32

const (
	TextureMagFilter TexParam = 0x2800
	TextureMinFilter TexParam = 0x2801
	TextureWrapS     TexParam = 0x2802
	TextureWrapT     TexParam = 0x2803
)

const (
	Nearest            int32 = 0x2600
	Linear             int32 = 0x2601
	LinearMipmapLinear int32 = 0x2703
	Repeat             int32 = 0x2901
	ClampToBorder      int32 = 0x812D
)

// Device is the set of graphics calls used by this module. Every method must
// be called on the thread that owns the context.
type Device interface {
	CreateShader(kind ShaderKind) uint32
	CompileShader(shader uint32, source string) (ok bool, infoLog string)
	DeleteShader(shader uint32)

	CreateProgram() uint32
	AttachShader(program, shader uint32)
	DetachShader(program, shader uint32)
	LinkProgram(program uint32) (ok bool, infoLog string)
	UseProgram(program uint32)
	DeleteProgram(program uint32)

	UniformLocation(program uint32, name string) int32
	AttribLocation(program uint32, name string) int32
	MaxTextureImageUnits() int

	Uniform1i(location, v int32)
	Uniform1f(location int32, v float32)
	Uniform3f(location int32, x, y, z float32)
	UniformMatrix3fv(location int32, m [9]float32)
	UniformMatrix4fv(location int32, m [16]float32)

	EnableVertexAttribArray(index uint32)
	DisableVertexAttribArray(index uint32)
	// VertexAttribPointer describes tightly packed float components read
	// from the buffer bound to ArrayBuffer.
	VertexAttribPointer(index uint32, size int32)

	CreateTexture() uint32
	ActiveTexture(unit int)
	BindTexture(texture uint32)
	TexImage2D(width, height int, internalFormat, format PixelFormat, pixels []byte)
	TexParameteri(param TexParam, value int32)
	TexBorderColor(rgba [4]float32)
	GenerateMipmap()
	DeleteTexture(texture uint32)

	CreateFramebuffer() uint32
	BindFramebuffer(framebuffer uint32)
	FramebufferDepthTexture(texture uint32)
	DisableColorBuffers()
	FramebufferComplete() bool
	DeleteFramebuffer(framebuffer uint32)

	CreateVertexArray() uint32
	BindVertexArray(vao uint32)
	DeleteVertexArray(vao uint32)
	CreateBuffer() uint32
	BindBuffer(target BufferTarget, buffer uint32)
	BufferFloat32(target BufferTarget, data []float32)
	BufferUint32(target BufferTarget, data []uint32)
	DeleteBuffer(buffer uint32)

	Enable(c Capability)
	Disable(c Capability)
	DepthFunc(fn DepthFunc)
	BlendFunc(src, dst BlendFactor)
	CullFace(face Face)
	ClearColor(r, g, b, a float32)
	Clear(mask ClearMask)
	Viewport(x, y, width, height int)

	// DrawTriangles issues an indexed triangle draw of count uint32 indices
	// from the bound vertex array.
	DrawTriangles(count int)
}
