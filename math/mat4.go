package math

import (
	"errors"
	"fmt"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// ErrInvalidArgument is returned by matrix builders given degenerate input.
var ErrInvalidArgument = errors.New("invalid argument")

// Mat4 is a 4×4 matrix used with row vectors: a point p transforms as p·M and
// the translation lives in row 3.
type Mat4 [4][4]float32

func Mat4Identity() Mat4 {
	return Mat4{
		{1, 0, 0, 0},
		{0, 1, 0, 0},
		{0, 0, 1, 0},
		{0, 0, 0, 1},
	}
}

func Mat4Zero() Mat4 {
	return Mat4{}
}

func (m Mat4) Mul(other Mat4) Mat4 {
	result := Mat4Zero()
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			for k := 0; k < 4; k++ {
				result[i][j] += m[i][k] * other[k][j]
			}
		}
	}
	return result
}

func (m Mat4) MulVec(v Vec4) Vec4 {
	return v.MulMat(m)
}

func (m Mat4) Transpose() Mat4 {
	return Mat4{
		{m[0][0], m[1][0], m[2][0], m[3][0]},
		{m[0][1], m[1][1], m[2][1], m[3][1]},
		{m[0][2], m[1][2], m[2][2], m[3][2]},
		{m[0][3], m[1][3], m[2][3], m[3][3]},
	}
}

// Inverse returns the inverse of m, or the identity when m is singular.
func (m Mat4) Inverse() Mat4 {
	// mgl32 is column-major, so the flattened rows are read back as the
	// transpose. Inverting a transpose and transposing back is the inverse.
	g := mgl32.Mat4(m.Flatten())
	if g.Det() == 0 {
		return Mat4Identity()
	}
	inv := g.Inv()
	var r Mat4
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			r[i][j] = inv[i*4+j]
		}
	}
	return r
}

// Flatten returns the matrix rows back to back, ready for a GL upload
// without transposition.
func (m Mat4) Flatten() [16]float32 {
	var out [16]float32
	for i := 0; i < 4; i++ {
		copy(out[i*4:i*4+4], m[i][:])
	}
	return out
}

// Translation reads the translation row.
func (m Mat4) Translation() Vec3 {
	return Vec3{X: m[3][0], Y: m[3][1], Z: m[3][2]}
}

func (m Mat4) row(i int) Vec4 {
	return Vec4{X: m[i][0], Y: m[i][1], Z: m[i][2], W: m[i][3]}
}

func (m *Mat4) setRow(i int, v Vec4) {
	m[i] = [4]float32{v.X, v.Y, v.Z, v.W}
}

// Translate returns m moved by v along its own basis rows.
func (m Mat4) Translate(v Vec3) Mat4 {
	m.TranslateInPlace(v)
	return m
}

// TranslateInPlace rewrites only the translation row:
// row3 = row0*v.X + row1*v.Y + row2*v.Z + row3.
func (m *Mat4) TranslateInPlace(v Vec3) {
	r := m.row(0).Mul(v.X).
		Add(m.row(1).Mul(v.Y)).
		Add(m.row(2).Mul(v.Z)).
		Add(m.row(3))
	m.setRow(3, r)
}

// RotateAxis rotates the upper three rows of m by theta radians about axis.
// The fourth row is left untouched.
func (m Mat4) RotateAxis(theta float32, axis Vec3) Mat4 {
	a := axis.Normalize()
	c := math32.Cos(theta)
	s := math32.Sin(theta)
	t := a.Mul(1 - c)

	rot := [3][3]float32{
		{t.X*a.X + c, t.X*a.Y + s*a.Z, t.X*a.Z - s*a.Y},
		{t.Y*a.X - s*a.Z, t.Y*a.Y + c, t.Y*a.Z + s*a.X},
		{t.Z*a.X + s*a.Y, t.Z*a.Y - s*a.X, t.Z*a.Z + c},
	}

	r := m
	for i := 0; i < 3; i++ {
		row := m.row(0).Mul(rot[i][0]).
			Add(m.row(1).Mul(rot[i][1])).
			Add(m.row(2).Mul(rot[i][2]))
		r.setRow(i, row)
	}
	return r
}

// Mat4Euler builds the rotation for Euler angles r = (pitch, yaw, roll).
func Mat4Euler(r Vec3) Mat4 {
	a, b := math32.Cos(r.X), math32.Sin(r.X)
	c, d := math32.Cos(r.Y), math32.Sin(r.Y)
	e, f := math32.Cos(r.Z), math32.Sin(r.Z)
	ad, bd := a*d, b*d

	return Mat4{
		{c * e, -c * f, d, 0},
		{bd*e + a*f, -bd*f + a*e, -b * c, 0},
		{-ad*e + b*f, ad*f + b*e, a * c, 0},
		{0, 0, 0, 1},
	}
}

// Rotate returns R·m where R is the Euler rotation for r. Unlike Translate
// and Scale this multiplies on the left, so the delta is taken in the
// parent frame.
func (m Mat4) Rotate(r Vec3) Mat4 {
	return Mat4Euler(r).Mul(m)
}

func (m *Mat4) RotateInPlace(r Vec3) {
	*m = m.Rotate(r)
}

// Scale multiplies the three basis rows of m by the matching component of v.
func (m Mat4) Scale(v Vec3) Mat4 {
	m.ScaleInPlace(v)
	return m
}

func (m *Mat4) ScaleInPlace(v Vec3) {
	m.setRow(0, m.row(0).Mul(v.X))
	m.setRow(1, m.row(1).Mul(v.Y))
	m.setRow(2, m.row(2).Mul(v.Z))
}

// Mat4Perspective builds a symmetric frustum projection. fovY is in radians.
func Mat4Perspective(fovY, aspect, near, far float32) (Mat4, error) {
	if aspect == 0 {
		return Mat4{}, fmt.Errorf("perspective: aspect ratio is zero: %w", ErrInvalidArgument)
	}
	if near > far {
		return Mat4{}, fmt.Errorf("perspective: near %v beyond far %v: %w", near, far, ErrInvalidArgument)
	}

	tanHalfFovy := math32.Tan(fovY / 2)

	m := Mat4Zero()
	m[0][0] = 1 / (aspect * tanHalfFovy)
	m[1][1] = 1 / tanHalfFovy
	m[2][2] = -(far + near) / (far - near)
	m[2][3] = -1
	m[3][2] = -(2 * far * near) / (far - near)
	return m, nil
}

func Mat4Orthographic(left, right, bottom, top, near, far float32) Mat4 {
	m := Mat4Identity()
	m[0][0] = 2 / (right - left)
	m[1][1] = 2 / (top - bottom)
	m[2][2] = -2 / (far - near)
	m[3][0] = -(right + left) / (right - left)
	m[3][1] = -(top + bottom) / (top - bottom)
	m[3][2] = -(far + near) / (far - near)
	return m
}
