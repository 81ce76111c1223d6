package repositories

import "context"

// SpeechToText abstracts speech recognition services
type SpeechToText interface {
	// TranscribeAudio converts normalized audio to text. A successful call
	// may return "" when the clip holds no speech.
	TranscribeAudio(ctx context.Context, audioData []byte, config AudioConfig) (string, error)
}

// AudioConfig describes the normalized audio handed to the transcriber
type AudioConfig struct {
	Format     string `json:"format"` // mp3, flac, ogg, wav
	MIMEType   string `json:"mime_type"`
	SampleRate int    `json:"sample_rate"`
}

// AudioNormalizer converts recorded audio of any container into the single
// format the transcriber accepts
type AudioNormalizer interface {
	Normalize(ctx context.Context, raw []byte) ([]byte, error)
	// AudioConfig describes what Normalize produces
	AudioConfig() AudioConfig
}
