package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

var envBindings = map[string][]string{
	"server.port":                     {"PORT"},
	"server.cors_origins":             {"CORS_ORIGINS"},
	"credentials.gemini_api_key":      {"GEMINI_API_KEY"},
	"credentials.eleven_labs_api_key": {"ELEVEN_LABS_API_KEY"},
	"gemini.model":                    {"GEMINI_MODEL"},
	"gemini.transcribe_model":         {"GEMINI_TRANSCRIBE_MODEL"},
	"gemini.temperature":              {"GEMINI_TEMPERATURE"},
	"gemini.timeout":                  {"GEMINI_TIMEOUT"},
	"stt.provider":                    {"STT_PROVIDER"},
	"stt.language":                    {"STT_LANGUAGE"},
	"stt.credentials_file":            {"GOOGLE_APPLICATION_CREDENTIALS"},
	"audio.ffmpeg_path":               {"FFMPEG_PATH"},
	"audio.format":                    {"AUDIO_FORMAT"},
	"audio.temp_dir":                  {"TEMP_DIR"},
	"tts.base_url":                    {"ELEVEN_LABS_API_BASE_URL"},
	"tts.voice_id":                    {"ELEVEN_LABS_VOICE_ID"},
	"tts.model_id":                    {"ELEVEN_LABS_MODEL_ID"},
	"tts.output_format":               {"ELEVEN_LABS_OUTPUT_FORMAT"},
	"tts.stability":                   {"ELEVEN_LABS_STABILITY"},
	"tts.clarity":                     {"ELEVEN_LABS_CLARITY"},
	"lipsync.engine":                  {"LIPSYNC_ENGINE"},
	"lipsync.rhubarb_path":            {"RHUBARB_PATH"},
	"assets.dir":                      {"ASSETS_DIR"},
	"pipeline.enrich_concurrency":     {"ENRICH_CONCURRENCY"},
	"pipeline.abort_on_disconnect":    {"ABORT_ON_DISCONNECT"},
	"logging.level":                   {"LOG_LEVEL"},
	"logging.format":                  {"LOG_FORMAT"},
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 3000)
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("server.body_limit", "20M")

	v.SetDefault("gemini.model", "gemini-2.0-flash")
	v.SetDefault("gemini.transcribe_model", "gemini-2.0-flash")
	v.SetDefault("gemini.temperature", 0.6)
	v.SetDefault("gemini.max_output_tokens", 1000)
	v.SetDefault("gemini.timeout", "60s")

	v.SetDefault("stt.provider", "gemini")
	v.SetDefault("stt.language", "en-US")

	v.SetDefault("audio.ffmpeg_path", "ffmpeg")
	v.SetDefault("audio.format", "mp3")
	v.SetDefault("audio.sample_rate", 16000)

	v.SetDefault("tts.timeout", "60s")

	v.SetDefault("lipsync.engine", "alignment")
	v.SetDefault("lipsync.rhubarb_path", "rhubarb")

	v.SetDefault("pipeline.enrich_concurrency", 0)
	v.SetDefault("pipeline.abort_on_disconnect", false)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// Load reads the configuration. configFile may be empty, in which case
// config.yaml is looked up in . and ./configs and is optional.
func Load(configFile string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
	}

	v.SetEnvPrefix("AVATAR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, names := range envBindings {
		if err := v.BindEnv(append([]string{key}, names...)...); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks enumerated and numeric settings
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server port must be between 1 and 65535, got %d", c.Server.Port)
	}
	switch c.STT.Provider {
	case "gemini", "google":
	default:
		return fmt.Errorf("unsupported stt provider %q", c.STT.Provider)
	}
	switch c.Audio.Format {
	case "mp3", "flac", "ogg", "wav":
	default:
		return fmt.Errorf("unsupported audio format %q", c.Audio.Format)
	}
	if c.STT.Provider == "google" && c.Audio.Format == "mp3" {
		return fmt.Errorf("google stt provider needs flac, ogg or wav audio, got mp3")
	}
	switch c.LipSync.Engine {
	case "alignment", "rhubarb":
	default:
		return fmt.Errorf("unsupported lipsync engine %q", c.LipSync.Engine)
	}
	if c.Gemini.Timeout < 0 {
		return fmt.Errorf("gemini timeout must not be negative, got %s", c.Gemini.Timeout)
	}
	if c.Pipeline.EnrichConcurrency < 0 {
		return fmt.Errorf("enrich concurrency must not be negative, got %d", c.Pipeline.EnrichConcurrency)
	}
	return nil
}
