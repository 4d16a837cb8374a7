package scene

import (
	"github.com/chewxy/math32"

	"scene-renderer/math"
)

const (
	// MovementSpeed is how far a free camera travels per second of input.
	MovementSpeed float32 = 3
	// PitchCap bounds elevation short of straight up or down.
	PitchCap = float32(math32.Pi/2 - 0.1)
)

// Camera produces the world-to-camera matrix for a frame.
type Camera interface {
	Matrix() math.Mat4
	Pos() math.Vec3
	Azimuth() float32
	Elevation() float32
	Yaw(angle float32)
	Pitch(angle float32)
	Update(dt float32)
}

// Positioned is anything a camera can follow.
type Positioned interface {
	Pos() math.Vec3
}

// orientation holds the yaw/pitch shared by both camera kinds.
type orientation struct {
	az, el float32
}

func (o *orientation) Azimuth() float32 { return o.az }
func (o *orientation) Elevation() float32 { return o.el }

// Yaw turns around the vertical axis, keeping the azimuth in (-π, π].
func (o *orientation) Yaw(angle float32) {
	o.az += angle
	for o.az > math32.Pi {
		o.az -= 2 * math32.Pi
	}
	for o.az <= -math32.Pi {
		o.az += 2 * math32.Pi
	}
}

// Pitch tilts up or down, clamped to ±PitchCap.
func (o *orientation) Pitch(angle float32) {
	o.el = math.Clamp(o.el+angle, -PitchCap, PitchCap)
}

// FirstPersonCamera moves freely through the world along a heading relative
// to its yaw.
type FirstPersonCamera struct {
	orientation
	pos     math.Vec3
	heading math.Vec3
}

func NewFirstPersonCamera(pos math.Vec3, az, el float32) *FirstPersonCamera {
	c := &FirstPersonCamera{pos: pos}
	c.Yaw(az)
	c.Pitch(el)
	return c
}

func (c *FirstPersonCamera) Pos() math.Vec3 { return c.pos }
func (c *FirstPersonCamera) Heading() math.Vec3 { return c.heading }

func (c *FirstPersonCamera) Matrix() math.Mat4 {
	return math.Mat4Identity().
		RotateAxis(c.el, math.Vec3Right).
		RotateAxis(c.az, math.Vec3Up).
		Translate(c.pos.Negate())
}

// ForwardsBackwards adds mag to the forward intent. Opposing inputs cancel;
// repeated input in one direction never exceeds |mag|.
func (c *FirstPersonCamera) ForwardsBackwards(mag float32) {
	c.heading.Z -= mag
	if math32.Abs(c.heading.Z) > math32.Abs(mag) {
		c.heading.Z = -mag
	}
}

// LeftRight adds mag to the strafe intent, clamped like ForwardsBackwards.
func (c *FirstPersonCamera) LeftRight(mag float32) {
	c.heading.X += mag
	if math32.Abs(c.heading.X) > math32.Abs(mag) {
		c.heading.X = mag
	}
}

func (c *FirstPersonCamera) Update(dt float32) {
	sin, cos := math32.Sincos(c.az)
	h := c.heading
	world := math.NewVec3(h.X*cos-h.Z*sin, h.Y, h.Z*cos+h.X*sin)
	c.pos = c.pos.Add(world.Mul(MovementSpeed * dt))
}

// OrbitalCamera circles a subject at a fixed offset. It has no motion of its
// own; Update re-reads the subject's position.
type OrbitalCamera struct {
	orientation
	subject    Positioned
	subjectPos math.Vec3
	distance   math.Vec3
}

func NewOrbitalCamera(subject Positioned, distance math.Vec3) *OrbitalCamera {
	return &OrbitalCamera{
		subject:    subject,
		subjectPos: subject.Pos(),
		distance:   distance,
	}
}

func (c *OrbitalCamera) Distance() math.Vec3 { return c.distance }

// Pos is the eye position in world space.
func (c *OrbitalCamera) Pos() math.Vec3 {
	return math.Mat4Identity().
		Translate(c.subjectPos).
		RotateAxis(-c.az, math.Vec3Up).
		RotateAxis(-c.el, math.Vec3Right).
		Translate(c.distance).
		Translation()
}

func (c *OrbitalCamera) Matrix() math.Mat4 {
	return math.Mat4Identity().
		Translate(c.distance.Negate()).
		RotateAxis(c.el, math.Vec3Right).
		RotateAxis(c.az, math.Vec3Up).
		Translate(c.subjectPos.Negate())
}

func (c *OrbitalCamera) Update(float32) {
	c.subjectPos = c.subject.Pos()
}

var (
	_ Camera = (*FirstPersonCamera)(nil)
	_ Camera = (*OrbitalCamera)(nil)
)
