package scene

import (
	"fmt"

	"github.com/achilleasa/tiletrace/types"
)

type CameraDirection uint8

// Supported camera movement directions.
const (
	Forward CameraDirection = iota
	Backward
	Left
	Right
	Up
	Down
)

// The camera type controls the scene camera. The Forward, Right and Up
// vectors form an orthonormal basis which is kept up to date by the camera
// methods.
type Camera struct {
	Position types.Vec3
	Forward  types.Vec3
	Right    types.Vec3
	Up       types.Vec3

	// The up direction used to rebuild the camera basis.
	WorldUp types.Vec3

	// Vertical field of view in degrees.
	FOV float32

	// Lens parameters. An aperture of 0 disables depth of field.
	FocalDist float32
	Aperture  float32

	// Set whenever the camera is moved; cleared when a frame snapshot is taken.
	Moving bool
}

func NewCamera(fov float32) *Camera {
	c := &Camera{
		Position:  types.XYZ(0, 0, 0),
		Forward:   types.XYZ(0, 0, -1),
		WorldUp:   types.XYZ(0, 1, 0),
		FOV:       fov,
		FocalDist: 1,
	}
	c.update()
	return c
}

// Point the camera at target from eye.
func (c *Camera) LookAt(eye, target types.Vec3) {
	c.Position = eye
	c.Forward = target.Sub(eye).Normalize()
	c.update()
	c.Moving = true
}

// Move the camera along one of its basis vectors.
func (c *Camera) Move(dir CameraDirection, amount float32) {
	var delta types.Vec3
	switch dir {
	case Forward:
		delta = c.Forward.Mul(amount)
	case Backward:
		delta = c.Forward.Mul(-amount)
	case Left:
		delta = c.Right.Mul(-amount)
	case Right:
		delta = c.Right.Mul(amount)
	case Up:
		delta = c.WorldUp.Mul(amount)
	case Down:
		delta = c.WorldUp.Mul(-amount)
	}

	c.Position = c.Position.Add(delta)
	c.Moving = true
}

// Rotate the view direction by the given yaw and pitch angles (radians).
func (c *Camera) Orbit(yaw, pitch float32) {
	pitchQuat := types.QuatFromAxisAngle(c.Right, pitch)
	yawQuat := types.QuatFromAxisAngle(c.WorldUp, yaw)
	orientQuat := pitchQuat.Mul(yawQuat).Normalize()

	dir := orientQuat.Rotate(c.Forward).Normalize()

	// Refuse to pitch through the poles; the basis would flip.
	if abs32(dir.Dot(c.WorldUp.Normalize())) > 0.999 {
		dir = yawQuat.Rotate(c.Forward).Normalize()
	}

	c.Forward = dir
	c.update()
	c.Moving = true
}

func (c *Camera) update() {
	c.Right = c.Forward.Cross(c.WorldUp).Normalize()
	c.Up = c.Right.Cross(c.Forward).Normalize()
}

func (c *Camera) String() string {
	return fmt.Sprintf(
		"camera pos (%3.3f, %3.3f, %3.3f) dir (%3.3f, %3.3f, %3.3f) fov %3.1f",
		c.Position[0], c.Position[1], c.Position[2],
		c.Forward[0], c.Forward[1], c.Forward[2],
		c.FOV,
	)
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
