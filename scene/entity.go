package scene

import (
	"github.com/chewxy/math32"
	"github.com/google/uuid"

	"scene-renderer/math"
)

// ModelID names a registered Model.
type ModelID string

// Renderable is what the renderer draws: a pose and the model to draw at it.
type Renderable interface {
	ID() uuid.UUID
	Model() ModelID
	Matrix() math.Mat4
}

// Entity is a placed instance of a model with its own pose.
type Entity struct {
	id     uuid.UUID
	model  ModelID
	matrix math.Mat4
}

func NewEntity(model ModelID) *Entity {
	return &Entity{
		id:     uuid.New(),
		model:  model,
		matrix: math.Mat4Identity(),
	}
}

func (e *Entity) ID() uuid.UUID { return e.id }
func (e *Entity) Model() ModelID { return e.model }
func (e *Entity) Matrix() math.Mat4 { return e.matrix }
func (e *Entity) Pos() math.Vec3 { return e.matrix.Translation() }

// Translate moves the entity relative to its current position and
// orientation.
func (e *Entity) Translate(t math.Vec3) { e.matrix.TranslateInPlace(t) }

// Rotate applies an Euler delta relative to the entity's current rotation.
func (e *Entity) Rotate(r math.Vec3) { e.matrix.RotateInPlace(r) }

// Character is an entity that moves along its movement vector each update.
// With a bound camera it turns to face the camera's yaw whenever it moves.
type Character struct {
	*Entity
	movement math.Vec3
	speed    float32
	heading  float32
	camera   Camera
}

func NewCharacter(model ModelID, speed float32) *Character {
	return &Character{Entity: NewEntity(model), speed: speed}
}

func (c *Character) Movement() math.Vec3 { return c.movement }
func (c *Character) Speed() float32 { return c.speed }
func (c *Character) SetSpeed(s float32) { c.speed = s }
func (c *Character) Heading() float32 { return c.heading }
func (c *Character) Camera() Camera { return c.camera }

// BindCamera sets the camera whose yaw steers the character. The camera is
// not owned.
func (c *Character) BindCamera(cam Camera) { c.camera = cam }

// ForwardsBackwards adds mag to the forward intent; the component never
// exceeds |mag| in either direction.
func (c *Character) ForwardsBackwards(mag float32) {
	c.movement.Z -= mag
	if math32.Abs(c.movement.Z) > math32.Abs(mag) {
		c.movement.Z = -mag
	}
}

func (c *Character) LeftRight(mag float32) {
	c.movement.X += mag
	if math32.Abs(c.movement.X) > math32.Abs(mag) {
		c.movement.X = mag
	}
}

func (c *Character) Update(dt float32) {
	if c.camera != nil && (c.movement.X != 0 || c.movement.Z != 0) {
		az := c.camera.Azimuth()
		c.Rotate(math.NewVec3(0, az-c.heading, 0))
		c.heading = az
	}
	c.Translate(c.movement.Mul(c.speed * dt))
}
