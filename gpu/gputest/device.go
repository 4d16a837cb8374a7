// Package gputest provides a recording gpu.Device for tests that run
// without a graphics context.
package gputest

import (
	"fmt"

	"scene-renderer/gpu"
)

// TexImage records the last upload made to a texture.
type TexImage struct {
	Width, Height  int
	InternalFormat gpu.PixelFormat
	Format         gpu.PixelFormat
	Bytes          int
}

// Device records every call that matters to the renderer. The zero value is
// not usable; call NewDevice.
type Device struct {
	// MaxUnits is returned by MaxTextureImageUnits.
	MaxUnits int
	// FailCompile makes every shader compile fail with InfoLog.
	FailCompile bool
	// FailLink makes every program link fail with InfoLog.
	FailLink bool
	// IncompleteFramebuffers makes FramebufferComplete report false.
	IncompleteFramebuffers bool
	InfoLog                string

	// Sources holds the text passed to CompileShader, by shader id.
	Sources map[uint32]string

	nextID uint32
	live   map[string]map[uint32]bool
	// DoubleDeletes lists deletions of objects that were not alive.
	DoubleDeletes []string

	locations map[uint32]map[string]int32
	attribs   map[uint32]map[string]int32
	values    map[uint32]map[int32]any
	// MissingAttributes names attributes reported as inactive (-1).
	MissingAttributes map[string]bool

	CurrentProgram     uint32
	CurrentFramebuffer uint32
	CurrentVertexArray uint32
	CullFaceMode       gpu.Face
	Enabled            map[gpu.Capability]bool
	ViewportWidth      int
	ViewportHeight     int
	Clears             []gpu.ClearMask

	activeUnit int
	Bound      map[int]uint32
	TexImages  map[uint32]TexImage

	EnabledAttribs map[uint32]bool
	BufferLengths  map[uint32]int
	buffers        map[gpu.BufferTarget]uint32

	// Draws counts DrawTriangles calls per bound framebuffer.
	Draws       map[uint32]int
	DrawIndices []int
}

func NewDevice() *Device {
	return &Device{
		MaxUnits:          32,
		Sources:           make(map[uint32]string),
		live:              make(map[string]map[uint32]bool),
		locations:         make(map[uint32]map[string]int32),
		attribs:           make(map[uint32]map[string]int32),
		values:            make(map[uint32]map[int32]any),
		MissingAttributes: make(map[string]bool),
		Enabled:           make(map[gpu.Capability]bool),
		Bound:             make(map[int]uint32),
		TexImages:         make(map[uint32]TexImage),
		EnabledAttribs:    make(map[uint32]bool),
		BufferLengths:     make(map[uint32]int),
		buffers:           make(map[gpu.BufferTarget]uint32),
		Draws:             make(map[uint32]int),
	}
}

func (d *Device) create(kind string) uint32 {
	d.nextID++
	if d.live[kind] == nil {
		d.live[kind] = make(map[uint32]bool)
	}
	d.live[kind][d.nextID] = true
	return d.nextID
}

func (d *Device) delete(kind string, id uint32) {
	if !d.live[kind][id] {
		d.DoubleDeletes = append(d.DoubleDeletes, fmt.Sprintf("%s %d", kind, id))
		return
	}
	delete(d.live[kind], id)
}

// Live reports how many objects of a kind are alive. Kinds are "shader",
// "program", "texture", "framebuffer", "vertex array" and "buffer".
func (d *Device) Live(kind string) int {
	return len(d.live[kind])
}

// TotalDraws sums draws across all framebuffers.
func (d *Device) TotalDraws() int {
	n := 0
	for _, c := range d.Draws {
		n += c
	}
	return n
}

// ResetDraws clears the draw counters.
func (d *Device) ResetDraws() {
	d.Draws = make(map[uint32]int)
	d.DrawIndices = nil
	d.Clears = nil
}

// Uniform returns the last value written to a uniform of a program. Values
// are int32, float32, [3]float32, [9]float32 or [16]float32.
func (d *Device) Uniform(program uint32, name string) (any, bool) {
	loc, ok := d.locations[program][name]
	if !ok {
		return nil, false
	}
	v, ok := d.values[program][loc]
	return v, ok
}

func (d *Device) CreateShader(gpu.ShaderKind) uint32 { return d.create("shader") }

func (d *Device) CompileShader(shader uint32, source string) (bool, string) {
	d.Sources[shader] = source
	if d.FailCompile {
		return false, d.InfoLog
	}
	return true, ""
}

func (d *Device) DeleteShader(shader uint32) { d.delete("shader", shader) }

func (d *Device) CreateProgram() uint32 { return d.create("program") }
func (d *Device) AttachShader(uint32, uint32) {}
func (d *Device) DetachShader(uint32, uint32) {}

func (d *Device) LinkProgram(uint32) (bool, string) {
	if d.FailLink {
		return false, d.InfoLog
	}
	return true, ""
}

func (d *Device) UseProgram(program uint32) { d.CurrentProgram = program }
func (d *Device) DeleteProgram(program uint32) { d.delete("program", program) }

func (d *Device) UniformLocation(program uint32, name string) int32 {
	locs := d.locations[program]
	if locs == nil {
		locs = make(map[string]int32)
		d.locations[program] = locs
	}
	if loc, ok := locs[name]; ok {
		return loc
	}
	loc := int32(len(locs))
	locs[name] = loc
	return loc
}

// LocationQueries reports how many distinct uniform names were resolved.
func (d *Device) LocationQueries(program uint32) int {
	return len(d.locations[program])
}

func (d *Device) AttribLocation(program uint32, name string) int32 {
	if d.MissingAttributes[name] {
		return -1
	}
	locs := d.attribs[program]
	if locs == nil {
		locs = make(map[string]int32)
		d.attribs[program] = locs
	}
	if loc, ok := locs[name]; ok {
		return loc
	}
	loc := int32(len(locs))
	locs[name] = loc
	return loc
}

func (d *Device) MaxTextureImageUnits() int { return d.MaxUnits }

func (d *Device) set(loc int32, v any) {
	vals := d.values[d.CurrentProgram]
	if vals == nil {
		vals = make(map[int32]any)
		d.values[d.CurrentProgram] = vals
	}
	vals[loc] = v
}

func (d *Device) Uniform1i(loc, v int32) { d.set(loc, v) }
func (d *Device) Uniform1f(loc int32, v float32) { d.set(loc, v) }
func (d *Device) Uniform3f(loc int32, x, y, z float32) { d.set(loc, [3]float32{x, y, z}) }
func (d *Device) UniformMatrix3fv(loc int32, m [9]float32) { d.set(loc, m) }
func (d *Device) UniformMatrix4fv(loc int32, m [16]float32) { d.set(loc, m) }

func (d *Device) EnableVertexAttribArray(index uint32) { d.EnabledAttribs[index] = true }
func (d *Device) DisableVertexAttribArray(index uint32) { delete(d.EnabledAttribs, index) }
func (d *Device) VertexAttribPointer(uint32, int32) {}

func (d *Device) CreateTexture() uint32 { return d.create("texture") }
func (d *Device) ActiveTexture(unit int) { d.activeUnit = unit }
func (d *Device) BindTexture(texture uint32) { d.Bound[d.activeUnit] = texture }

func (d *Device) TexImage2D(width, height int, internalFormat, format gpu.PixelFormat, pixels []byte) {
	d.TexImages[d.Bound[d.activeUnit]] = TexImage{
		Width:          width,
		Height:         height,
		InternalFormat: internalFormat,
		Format:         format,
		Bytes:          len(pixels),
	}
}

func (d *Device) TexParameteri(gpu.TexParam, int32) {}
func (d *Device) TexBorderColor([4]float32) {}
func (d *Device) GenerateMipmap() {}
func (d *Device) DeleteTexture(texture uint32) { d.delete("texture", texture) }

func (d *Device) CreateFramebuffer() uint32 { return d.create("framebuffer") }
func (d *Device) BindFramebuffer(framebuffer uint32) { d.CurrentFramebuffer = framebuffer }
func (d *Device) FramebufferDepthTexture(uint32) {}
func (d *Device) DisableColorBuffers() {}
func (d *Device) FramebufferComplete() bool { return !d.IncompleteFramebuffers }
func (d *Device) DeleteFramebuffer(framebuffer uint32) {
	d.delete("framebuffer", framebuffer)
}

func (d *Device) CreateVertexArray() uint32 { return d.create("vertex array") }
func (d *Device) BindVertexArray(vao uint32) { d.CurrentVertexArray = vao }
func (d *Device) DeleteVertexArray(vao uint32) { d.delete("vertex array", vao) }
func (d *Device) CreateBuffer() uint32 { return d.create("buffer") }

func (d *Device) BindBuffer(target gpu.BufferTarget, buffer uint32) {
	d.buffers[target] = buffer
}

func (d *Device) BufferFloat32(target gpu.BufferTarget, data []float32) {
	d.BufferLengths[d.buffers[target]] = len(data)
}

func (d *Device) BufferUint32(target gpu.BufferTarget, data []uint32) {
	d.BufferLengths[d.buffers[target]] = len(data)
}

func (d *Device) DeleteBuffer(buffer uint32) { d.delete("buffer", buffer) }

func (d *Device) Enable(c gpu.Capability) { d.Enabled[c] = true }
func (d *Device) Disable(c gpu.Capability) { d.Enabled[c] = false }
func (d *Device) DepthFunc(gpu.DepthFunc) {}
func (d *Device) BlendFunc(gpu.BlendFactor, gpu.BlendFactor) {}
func (d *Device) CullFace(face gpu.Face) { d.CullFaceMode = face }
func (d *Device) ClearColor(float32, float32, float32, float32) {}
func (d *Device) Clear(mask gpu.ClearMask) { d.Clears = append(d.Clears, mask) }

func (d *Device) Viewport(_, _, width, height int) {
	d.ViewportWidth, d.ViewportHeight = width, height
}

func (d *Device) DrawTriangles(count int) {
	d.Draws[d.CurrentFramebuffer]++
	d.DrawIndices = append(d.DrawIndices, count)
}

var _ gpu.Device = (*Device)(nil)
