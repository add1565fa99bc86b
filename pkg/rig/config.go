package rig

import (
	"github.com/teslashibe/go-synth/pkg/scene"
)

// Config holds the camera rig tuning.
// Rates are expressed per 60 Hz frame and scaled by the real frame time.
type Config struct {
	// Acceleration added to velocity per frame while a movement key is held.
	Acceleration float64 `yaml:"acceleration" json:"acceleration"`

	// Deceleration is the fraction of velocity shed per frame with no keys held.
	Deceleration float64 `yaml:"deceleration" json:"deceleration"`

	// MaxSpeed caps the velocity magnitude (scene units per frame).
	MaxSpeed float64 `yaml:"max_speed" json:"max_speed"`

	// RotateSpeed converts mouse-drag pixels to radians.
	RotateSpeed float64 `yaml:"rotate_speed" json:"rotate_speed"`

	// SmoothFactor is the per-frame blend toward the target pose (0..1].
	SmoothFactor float64 `yaml:"smooth_factor" json:"smooth_factor"`

	// DragButton is the mouse button that rotates the camera (2 = right).
	DragButton int `yaml:"drag_button" json:"drag_button"`

	// FixedPose is where presentation mode pins the camera.
	FixedPose scene.Pose `yaml:"fixed_pose" json:"fixed_pose"`
}

// DefaultConfig returns the tuning used by the showcase.
func DefaultConfig() Config {
	return Config{
		Acceleration: 0.1,
		Deceleration: 0.05,
		MaxSpeed:     scene.DefaultMoveSpeed,
		RotateSpeed:  0.002,
		SmoothFactor: 0.1,
		DragButton:   ButtonRight,
		FixedPose:    scene.FixedCamera(),
	}
}

// Option is a functional option for configuring the controller.
type Option func(*Config)

// WithMaxSpeed sets the speed ceiling.
func WithMaxSpeed(v float64) Option {
	return func(c *Config) { c.MaxSpeed = v }
}

// WithSmoothFactor sets the per-frame blend factor.
func WithSmoothFactor(v float64) Option {
	return func(c *Config) { c.SmoothFactor = v }
}

// WithFixedPose sets the presentation pose.
func WithFixedPose(p scene.Pose) Option {
	return func(c *Config) { c.FixedPose = p }
}

// WithConfig replaces the whole configuration.
func WithConfig(cfg Config) Option {
	return func(c *Config) { *c = cfg }
}

// Apply applies functional options to the config.
func (c *Config) Apply(opts ...Option) {
	for _, opt := range opts {
		opt(c)
	}
}
