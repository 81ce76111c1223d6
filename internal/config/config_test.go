package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("ELEVEN_LABS_API_KEY", "")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, []string{"*"}, cfg.Server.CORSOrigins)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "gemini", cfg.STT.Provider)
	assert.Equal(t, "mp3", cfg.Audio.Format)
	assert.Equal(t, "alignment", cfg.LipSync.Engine)
	assert.Equal(t, 60*time.Second, cfg.TTS.Timeout)
	assert.Equal(t, 60*time.Second, cfg.Gemini.Timeout)
	assert.False(t, cfg.Pipeline.AbortOnDisconnect)
	assert.False(t, cfg.Credentials.Complete())
	assert.Equal(t, []string{"GEMINI_API_KEY", "ELEVEN_LABS_API_KEY"}, cfg.Credentials.Missing())
}

func TestLoad_Env(t *testing.T) {
	t.Setenv("PORT", "8081")
	t.Setenv("GEMINI_API_KEY", "gemini-key")
	t.Setenv("ELEVEN_LABS_API_KEY", "eleven-key")
	t.Setenv("ELEVEN_LABS_VOICE_ID", "voice-123")
	t.Setenv("ENRICH_CONCURRENCY", "2")
	t.Setenv("ABORT_ON_DISCONNECT", "true")
	t.Setenv("GEMINI_TIMEOUT", "15s")
	t.Setenv("CORS_ORIGINS", "http://localhost:5173,https://avatar.example")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8081, cfg.Server.Port)
	assert.True(t, cfg.Credentials.Complete())
	assert.Empty(t, cfg.Credentials.Missing())
	assert.Equal(t, "voice-123", cfg.TTS.VoiceID)
	assert.Equal(t, 2, cfg.Pipeline.EnrichConcurrency)
	assert.True(t, cfg.Pipeline.AbortOnDisconnect)
	assert.Equal(t, 15*time.Second, cfg.Gemini.Timeout)
	assert.Equal(t, []string{"http://localhost:5173", "https://avatar.example"}, cfg.Server.CORSOrigins)
}

func TestLoad_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
stt:
  provider: google
audio:
  format: flac
lipsync:
  engine: rhubarb
  rhubarb_path: /opt/rhubarb/rhubarb
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "google", cfg.STT.Provider)
	assert.Equal(t, "flac", cfg.Audio.Format)
	assert.Equal(t, "rhubarb", cfg.LipSync.Engine)
	assert.Equal(t, "/opt/rhubarb/rhubarb", cfg.LipSync.RhubarbPath)
}

func TestLoad_MissingConfigFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Server:  ServerConfig{Port: 3000},
			STT:     STTConfig{Provider: "gemini"},
			Audio:   AudioConfig{Format: "mp3"},
			LipSync: LipSyncConfig{Engine: "alignment"},
		}
	}

	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"port", func(c *Config) { c.Server.Port = 0 }},
		{"stt provider", func(c *Config) { c.STT.Provider = "whisper" }},
		{"audio format", func(c *Config) { c.Audio.Format = "aac" }},
		{"google needs lossless", func(c *Config) { c.STT.Provider = "google" }},
		{"lipsync engine", func(c *Config) { c.LipSync.Engine = "oculus" }},
		{"concurrency", func(c *Config) { c.Pipeline.EnrichConcurrency = -1 }},
		{"gemini timeout", func(c *Config) { c.Gemini.Timeout = -time.Second }},
	}

	base := valid()
	require.NoError(t, base.Validate())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
