// Package config loads the showcase configuration from YAML, environment
// variables and defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/teslashibe/go-synth/pkg/chat"
	"github.com/teslashibe/go-synth/pkg/rig"
	"github.com/teslashibe/go-synth/pkg/scene"
	"github.com/teslashibe/go-synth/pkg/speech"
	"github.com/teslashibe/go-synth/pkg/tts"
)

// Speech engines
const (
	EngineBrowser = "browser"
	EngineCloud   = "cloud"
)

// Environment variables read by ApplyEnv
const (
	EnvGeminiKey = "GEMINI_API_KEY"
	EnvOpenAIKey = "OPENAI_API_KEY"
	EnvPort      = "PORT"
	EnvLogLevel  = "LOG_LEVEL"
)

type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Chat    chat.Config   `yaml:"chat"`
	Speech  SpeechConfig  `yaml:"speech"`
	Rig     rig.Config    `yaml:"rig"`
	Scene   scene.Presets `yaml:"scene"`
	Logging LoggingConfig `yaml:"logging"`
}

type ServerConfig struct {
	Host      string `yaml:"host"`
	Port      int    `yaml:"port"`
	StaticDir string `yaml:"static_dir"`
	FrameRate int    `yaml:"frame_rate"`

	// DevMode starts the viewer in dev mode.
	DevMode bool `yaml:"dev_mode"`

	// MemoryFile persists the camera bookmark and collected layout.
	// Empty keeps them in memory only.
	MemoryFile string `yaml:"memory_file"`

	// RestoreLayout starts from the remembered layout instead of the presets.
	RestoreLayout bool `yaml:"restore_layout"`
}

type SpeechConfig struct {
	Engine        string `yaml:"engine"`
	speech.Config `yaml:",inline"`
	OpenAIKey     string `yaml:"openai_api_key"`
	Voice         string `yaml:"voice"`
	Model         string `yaml:"model"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// Default returns the built-in configuration.
func Default() *Config {
	sp := speech.DefaultConfig()
	return &Config{
		Server: ServerConfig{
			Port:      8080,
			StaticDir: "./web",
			FrameRate: 60,
		},
		Chat: *chat.DefaultConfig(),
		Speech: SpeechConfig{
			Engine: EngineBrowser,
			Config: speech.Config{
				SettleDelay:     sp.SettleDelay,
				Lang:            sp.Lang,
				PreferredVoices: sp.PreferredVoices,
				Rate:            sp.Rate,
				Pitch:           sp.Pitch,
				Volume:          sp.Volume,
			},
			Voice: tts.VoiceOnyx,
			Model: tts.ModelTTS1,
		},
		Rig:     rig.DefaultConfig(),
		Scene:   scene.DefaultPresets(),
		Logging: LoggingConfig{Level: "info"},
	}
}

// Load reads path over the defaults and applies environment overrides.
// An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides settings from the environment.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvGeminiKey); ok && v != "" {
		c.Chat.APIKey = v
	}
	if v, ok := lookup(EnvOpenAIKey); ok && v != "" {
		c.Speech.OpenAIKey = v
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		c.Logging.Level = v
	}
	if v, ok := lookup(EnvPort); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: %s=%q: %w", EnvPort, v, err)
		}
		c.Server.Port = port
	}
	return nil
}

// Validate checks the configuration for values the showcase cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("config: server.port %d out of range", c.Server.Port))
	}
	if c.Server.FrameRate <= 0 {
		errs = append(errs, fmt.Errorf("config: server.frame_rate must be positive"))
	}
	switch strings.ToLower(c.Chat.Backend) {
	case chat.BackendREST, chat.BackendSDK, chat.BackendChain:
	default:
		errs = append(errs, fmt.Errorf("config: unknown chat.backend %q", c.Chat.Backend))
	}
	switch c.Speech.Engine {
	case EngineBrowser:
	case EngineCloud:
		if c.Speech.OpenAIKey == "" {
			errs = append(errs, fmt.Errorf("config: speech.engine cloud needs %s", EnvOpenAIKey))
		}
	default:
		errs = append(errs, fmt.Errorf("config: unknown speech.engine %q", c.Speech.Engine))
	}
	if c.Speech.SettleDelay < 0 {
		errs = append(errs, fmt.Errorf("config: speech.settle_delay must not be negative"))
	}
	if c.Rig.MaxSpeed < 0 || c.Scene.MoveSpeed < 0 {
		errs = append(errs, fmt.Errorf("config: move speed must not be negative"))
	}
	return errors.Join(errs...)
}
