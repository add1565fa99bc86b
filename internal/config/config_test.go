package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teslashibe/go-synth/pkg/chat"
	"github.com/teslashibe/go-synth/pkg/scene"
	"github.com/teslashibe/go-synth/pkg/speech"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "synth.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func noEnv(string) (string, bool) { return "", false }

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, EngineBrowser, cfg.Speech.Engine)
	assert.Equal(t, speech.DefaultSettleDelay, cfg.Speech.SettleDelay)
	assert.Equal(t, speech.DefaultLang, cfg.Speech.Lang)
	assert.Equal(t, chat.DefaultModel, cfg.Chat.Model)
	assert.Equal(t, scene.FixedCamera(), cfg.Scene.Camera)
}

func TestLoadYAML(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		wantErr  bool
		validate func(t *testing.T, cfg *Config)
	}{
		{
			name: "overrides keep other defaults",
			content: `
server:
  port: 9090
chat:
  backend: sdk
  model: gemini-2.5-flash
speech:
  settle_delay: 250ms
  lang: en-US
rig:
  max_speed: 0.3
scene:
  camera:
    position: [1, 2, 3]
`,
			validate: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 9090, cfg.Server.Port)
				assert.Equal(t, 60, cfg.Server.FrameRate)
				assert.Equal(t, chat.BackendSDK, cfg.Chat.Backend)
				assert.Equal(t, "gemini-2.5-flash", cfg.Chat.Model)
				assert.Equal(t, chat.DefaultPersona, cfg.Chat.Persona)
				assert.Equal(t, 250*time.Millisecond, cfg.Speech.SettleDelay)
				assert.Equal(t, "en-US", cfg.Speech.Lang)
				assert.Equal(t, 0.3, cfg.Rig.MaxSpeed)
				assert.Equal(t, 0.1, cfg.Rig.SmoothFactor)
				assert.Equal(t, scene.V(1, 2, 3), cfg.Scene.Camera.Position)
				assert.Equal(t, scene.FixedLight(), cfg.Scene.Light)
			},
		},
		{
			name: "dev mode memory",
			content: `
server:
  dev_mode: true
  memory_file: /tmp/synth-memory.json
  restore_layout: true
`,
			validate: func(t *testing.T, cfg *Config) {
				assert.True(t, cfg.Server.DevMode)
				assert.Equal(t, "/tmp/synth-memory.json", cfg.Server.MemoryFile)
				assert.True(t, cfg.Server.RestoreLayout)
			},
		},
		{
			name:    "unknown engine",
			content: "speech:\n  engine: radio\n",
			wantErr: true,
		},
		{
			name:    "cloud engine without key",
			content: "speech:\n  engine: cloud\n",
			wantErr: true,
		},
		{
			name:    "malformed yaml",
			content: "server: [port",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(EnvOpenAIKey, "")
			cfg, err := Load(writeFile(t, tt.content))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.validate(t, cfg)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		EnvGeminiKey: "gem-key",
		EnvOpenAIKey: "oai-key",
		EnvPort:      "3000",
		EnvLogLevel:  "debug",
	}
	cfg := Default()
	require.NoError(t, cfg.ApplyEnv(func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}))

	assert.Equal(t, "gem-key", cfg.Chat.APIKey)
	assert.Equal(t, "oai-key", cfg.Speech.OpenAIKey)
	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, ":3000", cfg.Server.Addr())
}

func TestApplyEnvBadPort(t *testing.T) {
	cfg := Default()
	err := cfg.ApplyEnv(func(k string) (string, bool) {
		if k == EnvPort {
			return "eighty", true
		}
		return noEnv(k)
	})
	assert.Error(t, err)
}
