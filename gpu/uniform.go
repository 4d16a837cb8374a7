package gpu

import "scene-renderer/math"

type UniformInt struct {
	dev Device
	loc int32
}

func (u UniformInt) Location() int32 { return u.loc }
func (u UniformInt) Set(v int32) { u.dev.Uniform1i(u.loc, v) }

type UniformFloat struct {
	dev Device
	loc int32
}

func (u UniformFloat) Location() int32 { return u.loc }
func (u UniformFloat) Set(v float32) { u.dev.Uniform1f(u.loc, v) }

type UniformVec3 struct {
	dev Device
	loc int32
}

func (u UniformVec3) Location() int32 { return u.loc }
func (u UniformVec3) Set(v math.Vec3) { u.dev.Uniform3f(u.loc, v.X, v.Y, v.Z) }

// UniformMat3 uploads the upper-left 3×3 block of a Mat4.
type UniformMat3 struct {
	dev Device
	loc int32
}

func (u UniformMat3) Location() int32 { return u.loc }

func (u UniformMat3) Set(m math.Mat4) {
	u.dev.UniformMatrix3fv(u.loc, [9]float32{
		m[0][0], m[0][1], m[0][2],
		m[1][0], m[1][1], m[1][2],
		m[2][0], m[2][1], m[2][2],
	})
}

type UniformMat4 struct {
	dev Device
	loc int32
}

func (u UniformMat4) Location() int32 { return u.loc }
func (u UniformMat4) Set(m math.Mat4) { u.dev.UniformMatrix4fv(u.loc, m.Flatten()) }

// UniformSampler owns one texture unit of its program.
type UniformSampler struct {
	dev  Device
	loc  int32
	unit int
}

func (u *UniformSampler) Location() int32 { return u.loc }
func (u *UniformSampler) Unit() int { return u.unit }

// Set binds texture to the sampler's unit.
func (u *UniformSampler) Set(texture uint32) {
	u.dev.ActiveTexture(u.unit)
	u.dev.BindTexture(texture)
}

type Attribute struct {
	dev Device
	loc int32
}

// Location is negative when the program has no active attribute of that name.
func (a *Attribute) Location() int32 { return a.loc }

func (a *Attribute) Enable() {
	if a.loc >= 0 {
		a.dev.EnableVertexAttribArray(uint32(a.loc))
	}
}

func (a *Attribute) Disable() {
	if a.loc >= 0 {
		a.dev.DisableVertexAttribArray(uint32(a.loc))
	}
}
