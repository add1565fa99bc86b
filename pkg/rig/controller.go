// Package rig drives the viewer camera.
//
// In dev mode the controller turns held movement keys and right-button drags
// into an inertial, smoothed pose: keys accelerate a velocity that is clamped
// to the speed ceiling, drags move a target yaw/pitch, and every frame the
// actual pose is blended toward the target. In presentation mode the camera is
// pinned to a fixed pose and input is ignored.
//
// Controller is not safe for concurrent use; the viewer serializes access.
package rig

import (
	"math"
	"strings"
	"time"

	"github.com/teslashibe/go-synth/pkg/scene"
)

// Mouse buttons, numbered like DOM MouseEvent.button.
const (
	ButtonLeft   = 0
	ButtonMiddle = 1
	ButtonRight  = 2
)

// MaxPitch is the pitch limit in radians (90 degrees).
const MaxPitch = math.Pi / 2

// framesPerSecond is the rate the per-frame constants are tuned for.
const framesPerSecond = 60

// Mode selects how the controller treats input.
type Mode int

const (
	// ModePresentation pins the camera to the fixed pose.
	ModePresentation Mode = iota
	// ModeDev enables keyboard and mouse control.
	ModeDev
)

// String implements fmt.Stringer.
func (m Mode) String() string {
	if m == ModeDev {
		return "dev"
	}
	return "presentation"
}

// Listener receives the pose produced by each frame.
type Listener func(scene.Pose)

// Controller blends input into a smoothed camera pose.
type Controller struct {
	cfg  Config
	mode Mode

	position scene.Vec3
	rotation scene.Vec3
	target   scene.Pose
	velocity scene.Vec3

	keys     map[string]bool
	dragging bool
	lastX    float64
	lastY    float64

	listener Listener
}

// NewController creates a controller starting at pose, in presentation mode.
func NewController(start scene.Pose, opts ...Option) *Controller {
	cfg := DefaultConfig()
	cfg.Apply(opts...)
	if cfg.MaxSpeed < 0 {
		cfg.MaxSpeed = 0
	}

	c := &Controller{
		cfg:  cfg,
		keys: make(map[string]bool),
	}
	c.Teleport(start)
	return c
}

// OnUpdate registers the per-frame listener.
func (c *Controller) OnUpdate(l Listener) {
	c.listener = l
}

// Mode returns the current mode.
func (c *Controller) Mode() Mode {
	return c.mode
}

// SetMode switches mode. Leaving dev mode drops held keys and any drag.
func (c *Controller) SetMode(m Mode) {
	if c.mode == ModeDev && m != ModeDev {
		c.releaseInput()
	}
	c.mode = m
}

// MaxSpeed returns the speed ceiling.
func (c *Controller) MaxSpeed() float64 {
	return c.cfg.MaxSpeed
}

// SetMaxSpeed changes the speed ceiling. Negative values are ignored.
func (c *Controller) SetMaxSpeed(v float64) {
	if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return
	}
	c.cfg.MaxSpeed = v
}

// FixedPose returns the presentation pose.
func (c *Controller) FixedPose() scene.Pose {
	return c.cfg.FixedPose
}

// Teleport jumps to p without smoothing and stops any motion.
func (c *Controller) Teleport(p scene.Pose) {
	p.Rotation[0] = scene.Clamp(p.Rotation[0], -MaxPitch, MaxPitch)
	c.position = p.Position
	c.rotation = p.Rotation
	c.target = p
	c.velocity = scene.Vec3{}
}

// Pose returns the current camera pose.
func (c *Controller) Pose() scene.Pose {
	if c.mode != ModeDev {
		return c.cfg.FixedPose
	}
	return scene.Pose{Position: c.position, Rotation: c.rotation}
}

// Target returns the pose the camera is easing toward.
func (c *Controller) Target() scene.Pose {
	return c.target
}

// Velocity returns the current velocity in camera space (x right, y up, z forward).
func (c *Controller) Velocity() scene.Vec3 {
	return c.velocity
}

// KeyDown records a held key. Keys are case-insensitive.
func (c *Controller) KeyDown(key string) {
	if c.mode != ModeDev {
		return
	}
	c.keys[strings.ToLower(key)] = true
}

// KeyUp releases a key.
func (c *Controller) KeyUp(key string) {
	delete(c.keys, strings.ToLower(key))
}

// Held reports whether a key is currently held.
func (c *Controller) Held(key string) bool {
	return c.keys[strings.ToLower(key)]
}

// MouseDown starts a drag when the drag button is pressed.
func (c *Controller) MouseDown(button int, x, y float64) {
	if c.mode != ModeDev || button != c.cfg.DragButton {
		return
	}
	c.dragging = true
	c.lastX, c.lastY = x, y
}

// MouseUp ends any drag.
func (c *Controller) MouseUp() {
	c.dragging = false
}

// Dragging reports whether a rotation drag is active.
func (c *Controller) Dragging() bool {
	return c.dragging
}

// MouseMove adjusts the target yaw/pitch while dragging.
// Moving right turns left (yaw decreases); moving down pitches down.
func (c *Controller) MouseMove(x, y float64) {
	if !c.dragging {
		return
	}
	dx := (x - c.lastX) * c.cfg.RotateSpeed
	dy := (y - c.lastY) * c.cfg.RotateSpeed
	c.lastX, c.lastY = x, y

	c.target.Rotation[0] = scene.Clamp(c.target.Rotation[0]-dy, -MaxPitch, MaxPitch)
	c.target.Rotation[1] -= dx
}

// Update advances one frame of dt and returns the resulting pose.
// The listener, if any, receives the same pose.
func (c *Controller) Update(dt time.Duration) scene.Pose {
	if c.mode != ModeDev {
		pose := c.cfg.FixedPose
		c.emit(pose)
		return pose
	}

	frames := dt.Seconds() * framesPerSecond
	c.integrate(frames)

	yaw := c.rotation[1]
	v := c.velocity
	moveX := math.Sin(yaw)*-v[2] + math.Cos(yaw)*v[0]
	moveZ := math.Cos(yaw)*-v[2] - math.Sin(yaw)*v[0]
	c.target.Position = c.target.Position.Add(scene.V(moveX, v[1], moveZ))

	k := c.cfg.SmoothFactor
	c.position = c.position.Lerp(c.target.Position, k)
	c.rotation[0] = scene.Lerp(c.rotation[0], c.target.Rotation[0], k)
	c.rotation[1] = scene.Lerp(c.rotation[1], c.target.Rotation[1], k)

	pose := scene.Pose{Position: c.position, Rotation: c.rotation}
	c.emit(pose)
	return pose
}

// integrate applies acceleration or decay and the speed ceiling.
func (c *Controller) integrate(frames float64) {
	dir := c.direction()
	if dir.Len() > 0 {
		c.velocity = c.velocity.Add(dir.Scale(c.cfg.Acceleration * frames))
	} else {
		decay := 1 - c.cfg.Deceleration*frames
		if decay < 0 {
			decay = 0
		}
		c.velocity = c.velocity.Scale(decay)
	}

	if c.velocity.Len() > c.cfg.MaxSpeed {
		c.velocity = c.velocity.Normalize().Scale(c.cfg.MaxSpeed)
	}
}

// direction builds the normalized movement vector from held keys.
// w/s move forward/back, d/a right/left, e/q up/down.
func (c *Controller) direction() scene.Vec3 {
	axis := func(pos, neg string) float64 {
		switch {
		case c.keys[pos]:
			return 1
		case c.keys[neg]:
			return -1
		}
		return 0
	}
	return scene.V(axis("d", "a"), axis("e", "q"), axis("w", "s")).Normalize()
}

func (c *Controller) releaseInput() {
	clear(c.keys)
	c.dragging = false
}

func (c *Controller) emit(p scene.Pose) {
	if c.listener != nil {
		c.listener(p)
	}
}
