package speech

import (
	"log/slog"
	"time"
)

// DefaultSettleDelay is the pause between cancelling the previous utterance
// and starting the next one.
const DefaultSettleDelay = 100 * time.Millisecond

// Config holds sequencer and engine configuration.
type Config struct {
	SettleDelay     time.Duration `yaml:"settle_delay"`
	Lang            string        `yaml:"lang"`
	PreferredVoices []string      `yaml:"preferred_voices"`
	Rate            float64       `yaml:"rate"`
	Pitch           float64       `yaml:"pitch"`
	Volume          float64       `yaml:"volume"`

	Clock  Clock        `yaml:"-"`
	Logger *slog.Logger `yaml:"-"`
}

// Option is a functional option for configuring speech components.
type Option func(*Config)

// WithSettleDelay sets the pause before a new utterance starts.
func WithSettleDelay(d time.Duration) Option {
	return func(c *Config) { c.SettleDelay = d }
}

// WithLang sets the utterance language tag.
func WithLang(lang string) Option {
	return func(c *Config) { c.Lang = lang }
}

// WithPreferredVoices sets the voice names tried first, in priority order.
func WithPreferredVoices(names ...string) Option {
	return func(c *Config) { c.PreferredVoices = names }
}

// WithClock replaces the clock used for the settle delay and playback timers.
func WithClock(clock Clock) Option {
	return func(c *Config) { c.Clock = clock }
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Config) { c.Logger = logger }
}

// WithConfig copies the tunable fields of cfg.
func WithConfig(cfg Config) Option {
	return func(c *Config) {
		c.SettleDelay = cfg.SettleDelay
		c.Lang = cfg.Lang
		c.PreferredVoices = cfg.PreferredVoices
		c.Rate = cfg.Rate
		c.Pitch = cfg.Pitch
		c.Volume = cfg.Volume
	}
}

// DefaultConfig returns the default sequencer configuration.
func DefaultConfig() *Config {
	return &Config{
		SettleDelay:     DefaultSettleDelay,
		Lang:            DefaultLang,
		PreferredVoices: append([]string(nil), DefaultPreferredVoices...),
		Rate:            1.0,
		Pitch:           1.0,
		Volume:          1.0,
		Clock:           SystemClock{},
		Logger:          slog.Default(),
	}
}

// Apply applies functional options to the config.
func (c *Config) Apply(opts ...Option) {
	for _, opt := range opts {
		opt(c)
	}
	if c.SettleDelay < 0 {
		c.SettleDelay = 0
	}
	if c.Clock == nil {
		c.Clock = SystemClock{}
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	if c.Rate <= 0 {
		c.Rate = 1.0
	}
	if c.Pitch <= 0 {
		c.Pitch = 1.0
	}
	if c.Volume < 0 {
		c.Volume = 1.0
	}
}
