package chat

import (
	"log/slog"
	"time"
)

// Backend names accepted by New.
const (
	BackendREST  = "rest"
	BackendSDK   = "sdk"
	BackendChain = "chain"
)

// Defaults for the Gemini API.
const (
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	DefaultModel   = "gemini-2.0-flash"
)

// DefaultPersona is prepended to every user message.
const DefaultPersona = "You are SYNTH-01, an advanced AI robot created by Synthetica. " +
	"Reply to the following message in Brazilian Portuguese, in a friendly and " +
	"professional way, but WITHOUT opening greetings: "

// Config holds responder configuration.
type Config struct {
	Backend string        `yaml:"backend"`
	APIKey  string        `yaml:"api_key"`
	BaseURL string        `yaml:"base_url"`
	Model   string        `yaml:"model"`
	Persona string        `yaml:"persona"`
	Timeout time.Duration `yaml:"timeout"`

	Logger *slog.Logger `yaml:"-"`
}

// Option is a functional option for configuring responders.
type Option func(*Config)

// WithAPIKey sets the API key.
func WithAPIKey(key string) Option {
	return func(c *Config) { c.APIKey = key }
}

// WithBaseURL sets the API base URL.
func WithBaseURL(url string) Option {
	return func(c *Config) { c.BaseURL = url }
}

// WithModel sets the model name.
func WithModel(model string) Option {
	return func(c *Config) { c.Model = model }
}

// WithPersona sets the text prepended to user messages.
func WithPersona(persona string) Option {
	return func(c *Config) { c.Persona = persona }
}

// WithTimeout sets the request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Config) { c.Timeout = d }
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Config) { c.Logger = l }
}

// WithConfig copies every non-empty field of cfg.
func WithConfig(cfg Config) Option {
	return func(c *Config) {
		if cfg.Backend != "" {
			c.Backend = cfg.Backend
		}
		if cfg.APIKey != "" {
			c.APIKey = cfg.APIKey
		}
		if cfg.BaseURL != "" {
			c.BaseURL = cfg.BaseURL
		}
		if cfg.Model != "" {
			c.Model = cfg.Model
		}
		if cfg.Persona != "" {
			c.Persona = cfg.Persona
		}
		if cfg.Timeout > 0 {
			c.Timeout = cfg.Timeout
		}
	}
}

// DefaultConfig returns defaults for the Gemini REST API.
func DefaultConfig() *Config {
	return &Config{
		Backend: BackendREST,
		BaseURL: DefaultBaseURL,
		Model:   DefaultModel,
		Persona: DefaultPersona,
		Timeout: 30 * time.Second,
		Logger:  slog.Default(),
	}
}

// Apply applies functional options to the config.
func (c *Config) Apply(opts ...Option) {
	for _, opt := range opts {
		opt(c)
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Validate checks that required configuration is present.
func (c *Config) Validate() error {
	if c.APIKey == "" {
		return ErrNoAPIKey
	}
	return nil
}

// Prompt builds the text sent for message.
func (c *Config) Prompt(message string) string {
	return c.Persona + message
}
