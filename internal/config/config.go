// Package config loads the service configuration once at startup. Values come
// from defaults, an optional config file, a .env file and the environment, in
// increasing priority.
package config

import (
	"time"
)

// Config holds all service configuration
type Config struct {
	Server      ServerConfig   `mapstructure:"server"`
	Credentials Credentials    `mapstructure:"credentials"`
	Gemini      GeminiConfig   `mapstructure:"gemini"`
	STT         STTConfig      `mapstructure:"stt"`
	Audio       AudioConfig    `mapstructure:"audio"`
	TTS         TTSConfig      `mapstructure:"tts"`
	LipSync     LipSyncConfig  `mapstructure:"lipsync"`
	Assets      AssetsConfig   `mapstructure:"assets"`
	Pipeline    PipelineConfig `mapstructure:"pipeline"`
	Logging     LoggingConfig  `mapstructure:"logging"`
}

type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	CORSOrigins     []string      `mapstructure:"cors_origins"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	BodyLimit       string        `mapstructure:"body_limit"`
}

// Credentials are the keys of the external services. A missing key is not a
// startup error: the default-response gate answers with a canned reminder.
type Credentials struct {
	GeminiAPIKey     string `mapstructure:"gemini_api_key"`
	ElevenLabsAPIKey string `mapstructure:"eleven_labs_api_key"`
}

// Missing returns the env names of the credentials that are not set
func (c Credentials) Missing() []string {
	var missing []string
	if c.GeminiAPIKey == "" {
		missing = append(missing, "GEMINI_API_KEY")
	}
	if c.ElevenLabsAPIKey == "" {
		missing = append(missing, "ELEVEN_LABS_API_KEY")
	}
	return missing
}

// Complete reports whether every credential is set
func (c Credentials) Complete() bool {
	return len(c.Missing()) == 0
}

type GeminiConfig struct {
	Model           string  `mapstructure:"model"`
	TranscribeModel string  `mapstructure:"transcribe_model"`
	Temperature     float32 `mapstructure:"temperature"`
	MaxOutputTokens int     `mapstructure:"max_output_tokens"`

	// Timeout bounds one reply generation call
	Timeout time.Duration `mapstructure:"timeout"`
}

type STTConfig struct {
	Provider        string `mapstructure:"provider"` // gemini, google
	Language        string `mapstructure:"language"`
	CredentialsFile string `mapstructure:"credentials_file"` // google provider only
}

type AudioConfig struct {
	FFmpegPath string `mapstructure:"ffmpeg_path"`
	Format     string `mapstructure:"format"` // mp3, flac, ogg, wav
	SampleRate int    `mapstructure:"sample_rate"`
	TempDir    string `mapstructure:"temp_dir"`
}

type TTSConfig struct {
	APIBaseURL   string        `mapstructure:"base_url"`
	VoiceID      string        `mapstructure:"voice_id"`
	ModelID      string        `mapstructure:"model_id"`
	OutputFormat string        `mapstructure:"output_format"`
	Stability    float64       `mapstructure:"stability"`
	Clarity      float64       `mapstructure:"clarity"`
	Timeout      time.Duration `mapstructure:"timeout"`
}

type LipSyncConfig struct {
	Engine      string `mapstructure:"engine"` // alignment, rhubarb
	RhubarbPath string `mapstructure:"rhubarb_path"`
}

type AssetsConfig struct {
	// Dir overrides the embedded canned responses when set
	Dir string `mapstructure:"dir"`
}

type PipelineConfig struct {
	// EnrichConcurrency caps parallel synthesis calls per request, 0 means
	// one per utterance
	EnrichConcurrency int `mapstructure:"enrich_concurrency"`
	// AbortOnDisconnect cancels in-flight external calls when the client
	// goes away
	AbortOnDisconnect bool `mapstructure:"abort_on_disconnect"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // json, console
}
