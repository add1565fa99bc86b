package viewer

import (
	"log/slog"
	"time"

	"github.com/teslashibe/go-synth/pkg/rig"
	"github.com/teslashibe/go-synth/pkg/scene"
)

// DefaultSaveNotice is how long the "camera saved" notice stays up.
const DefaultSaveNotice = 2 * time.Second

// Config holds viewer configuration.
// Use functional options (WithXxx) to set these values.
type Config struct {
	// FrameRate is the number of camera updates per second.
	FrameRate int

	// Presets are the scene's starting values. Presets.Camera is also the
	// fixed presentation pose and Presets.MoveSpeed the initial speed ceiling.
	Presets scene.Presets

	// Rig tunes the camera controller.
	Rig rig.Config

	// ClipDuration is the length of the model's animation clip.
	// Zero means the model has no clip.
	ClipDuration time.Duration

	// SaveNotice is how long State reports the save notice after a save.
	SaveNotice time.Duration

	// StartDev starts in dev mode with the camera on Presets.DevCamera.
	StartDev bool

	// RestoreLayout applies the layout remembered in Deps.Memory over the
	// presets at startup.
	RestoreLayout bool

	// KeyframeEvery forces a pose broadcast every n frames even when nothing moved,
	// so late subscribers catch up.
	KeyframeEvery uint64

	Logger *slog.Logger
}

// Option is a functional option for configuring the viewer.
type Option func(*Config)

// WithFrameRate sets the frame loop rate.
func WithFrameRate(fps int) Option {
	return func(c *Config) { c.FrameRate = fps }
}

// WithPresets sets the starting scene.
func WithPresets(p scene.Presets) Option {
	return func(c *Config) { c.Presets = p }
}

// WithRig sets the camera controller tuning.
func WithRig(cfg rig.Config) Option {
	return func(c *Config) { c.Rig = cfg }
}

// WithClipDuration sets the model animation length.
func WithClipDuration(d time.Duration) Option {
	return func(c *Config) { c.ClipDuration = d }
}

// WithSaveNotice sets how long the save notice is shown.
func WithSaveNotice(d time.Duration) Option {
	return func(c *Config) { c.SaveNotice = d }
}

// WithDevMode starts the viewer in dev mode.
func WithDevMode(on bool) Option {
	return func(c *Config) { c.StartDev = on }
}

// WithRestoreLayout starts from the remembered layout.
func WithRestoreLayout(on bool) Option {
	return func(c *Config) { c.RestoreLayout = on }
}

// WithKeyframeEvery sets the forced broadcast interval in frames.
func WithKeyframeEvery(n uint64) Option {
	return func(c *Config) { c.KeyframeEvery = n }
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Config) { c.Logger = logger }
}

// DefaultConfig returns the showcase defaults.
func DefaultConfig() *Config {
	return &Config{
		FrameRate:     60,
		Presets:       scene.DefaultPresets(),
		Rig:           rig.DefaultConfig(),
		SaveNotice:    DefaultSaveNotice,
		KeyframeEvery: 60,
		Logger:        slog.Default(),
	}
}

// Apply applies functional options to the config.
func (c *Config) Apply(opts ...Option) {
	for _, opt := range opts {
		opt(c)
	}
	if c.FrameRate <= 0 {
		c.FrameRate = 60
	}
	if c.KeyframeEvery == 0 {
		c.KeyframeEvery = uint64(c.FrameRate)
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}
