package stt

import (
	"context"
	"fmt"
	"strings"

	speech "cloud.google.com/go/speech/apiv1"
	"cloud.google.com/go/speech/apiv1/speechpb"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"github.com/satriahrh/arunika/avatar/domain"
	"github.com/satriahrh/arunika/avatar/domain/repositories"
	"github.com/satriahrh/arunika/avatar/internal/breaker"
)

// GoogleSTTConfig configures GoogleSpeechToText
type GoogleSTTConfig struct {
	Language        string
	CredentialsFile string // empty uses application default credentials
}

// GoogleSpeechToText implements SpeechToText for Google Cloud
type GoogleSpeechToText struct {
	client   *speech.Client
	language string
	cb       *gobreaker.CircuitBreaker
	logger   *zap.Logger
}

var _ repositories.SpeechToText = (*GoogleSpeechToText)(nil)

// NewGoogleSpeechToText creates a Cloud Speech client. Call Close when done.
func NewGoogleSpeechToText(ctx context.Context, config GoogleSTTConfig, logger *zap.Logger) (*GoogleSpeechToText, error) {
	var opts []option.ClientOption
	if config.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(config.CredentialsFile))
	}

	client, err := speech.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create speech client: %w", err)
	}

	language := config.Language
	if language == "" {
		language = "en-US"
	}

	return &GoogleSpeechToText{
		client:   client,
		language: language,
		cb:       breaker.New("google-stt", logger),
		logger:   logger,
	}, nil
}

// TranscribeAudio converts audio data to text with a single Recognize call.
// No recognized speech yields "".
func (g *GoogleSpeechToText) TranscribeAudio(ctx context.Context, audioData []byte, config repositories.AudioConfig) (string, error) {
	encoding, err := getAudioEncoding(config.Format)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrTranscriptionFailure, err)
	}

	req := &speechpb.RecognizeRequest{
		Config: &speechpb.RecognitionConfig{
			Encoding:                   encoding,
			SampleRateHertz:            int32(config.SampleRate),
			LanguageCode:               g.language,
			EnableAutomaticPunctuation: true,
		},
		Audio: &speechpb.RecognitionAudio{
			AudioSource: &speechpb.RecognitionAudio_Content{Content: audioData},
		},
	}

	resp, err := breaker.Do(g.cb, func() (*speechpb.RecognizeResponse, error) {
		return g.client.Recognize(ctx, req)
	})
	if err != nil {
		g.logger.Error("Speech recognition failed", zap.Error(err))
		return "", fmt.Errorf("%w: %v", domain.ErrTranscriptionFailure, err)
	}

	return joinTranscript(resp), nil
}

// Close releases the underlying gRPC connection
func (g *GoogleSpeechToText) Close() error {
	return g.client.Close()
}

// joinTranscript concatenates the best alternative of every result
func joinTranscript(resp *speechpb.RecognizeResponse) string {
	var parts []string
	for _, result := range resp.GetResults() {
		alternatives := result.GetAlternatives()
		if len(alternatives) == 0 {
			continue
		}
		if text := strings.TrimSpace(alternatives[0].GetTranscript()); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, " ")
}

// getAudioEncoding maps a normalized audio format to the Speech API enum
func getAudioEncoding(format string) (speechpb.RecognitionConfig_AudioEncoding, error) {
	switch strings.ToLower(format) {
	case "wav", "linear16":
		return speechpb.RecognitionConfig_LINEAR16, nil
	case "flac":
		return speechpb.RecognitionConfig_FLAC, nil
	case "ogg", "ogg_opus":
		return speechpb.RecognitionConfig_OGG_OPUS, nil
	case "webm", "webm_opus":
		return speechpb.RecognitionConfig_WEBM_OPUS, nil
	default:
		return speechpb.RecognitionConfig_ENCODING_UNSPECIFIED, fmt.Errorf("unsupported encoding: %s", format)
	}
}
