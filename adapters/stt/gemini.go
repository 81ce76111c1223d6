package stt

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/satriahrh/arunika/avatar/domain"
	"github.com/satriahrh/arunika/avatar/domain/repositories"
	"github.com/satriahrh/arunika/avatar/internal/breaker"
	"github.com/satriahrh/arunika/avatar/internal/tempfile"
)

const (
	defaultTranscribeModel = "gemini-2.0-flash"
	fileActivePollInterval = 500 * time.Millisecond
	fileActivePollAttempts = 20
	fileDeleteTimeout      = 10 * time.Second
)

const transcribePrompt = `Transcribe the speech in this audio recording verbatim.
Reply with the transcript only, without quotes, labels or commentary.
If the recording contains no speech, reply with nothing.`

// GeminiSTTConfig configures GeminiSpeechToText
type GeminiSTTConfig struct {
	Model    string
	Language string // BCP-47 hint, e.g. en-US
	TempDir  string
}

// GeminiSpeechToText transcribes audio by uploading it to the Gemini Files
// API and asking the model for a verbatim transcript
type GeminiSpeechToText struct {
	client   *genai.Client
	model    string
	language string
	tempDir  string
	cb       *gobreaker.CircuitBreaker
	logger   *zap.Logger
}

var _ repositories.SpeechToText = (*GeminiSpeechToText)(nil)

// NewGeminiSpeechToText creates a transcriber on an existing genai client
func NewGeminiSpeechToText(client *genai.Client, config GeminiSTTConfig, logger *zap.Logger) (*GeminiSpeechToText, error) {
	if client == nil {
		return nil, fmt.Errorf("genai client is required")
	}

	model := config.Model
	if model == "" {
		model = defaultTranscribeModel
		logger.Info("Using default transcribe model", zap.String("model", model))
	}

	return &GeminiSpeechToText{
		client:   client,
		model:    model,
		language: config.Language,
		tempDir:  config.TempDir,
		cb:       breaker.New("gemini-stt", logger),
		logger:   logger,
	}, nil
}

// TranscribeAudio uploads the normalized audio and returns its transcript.
// The local temp file and the remote file are deleted on every path.
func (s *GeminiSpeechToText) TranscribeAudio(ctx context.Context, audioData []byte, config repositories.AudioConfig) (string, error) {
	if len(audioData) == 0 {
		return "", fmt.Errorf("%w: no audio data", domain.ErrTranscriptionFailure)
	}

	path, cleanup, err := tempfile.Write(s.tempDir, "transcribe-*."+config.Format, audioData)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrTranscriptionFailure, err)
	}
	defer cleanup()

	file, err := breaker.Do(s.cb, func() (*genai.File, error) {
		return s.client.Files.UploadFromPath(ctx, path, &genai.UploadFileConfig{
			MIMEType:    config.MIMEType,
			DisplayName: "utterance-" + uuid.NewString(),
		})
	})
	if err != nil {
		return "", fmt.Errorf("%w: failed to upload audio: %v", domain.ErrTranscriptionFailure, err)
	}
	defer s.deleteRemote(ctx, file.Name)

	file, err = s.waitActive(ctx, file)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrTranscriptionFailure, err)
	}

	prompt := transcribePrompt
	if s.language != "" {
		prompt += "\nThe speaker most likely uses the language " + s.language + "."
	}

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromText(prompt),
			genai.NewPartFromURI(file.URI, file.MIMEType),
		}, genai.RoleUser),
	}

	resp, err := breaker.Do(s.cb, func() (*genai.GenerateContentResponse, error) {
		return s.client.Models.GenerateContent(ctx, s.model, contents, &genai.GenerateContentConfig{
			Temperature: genai.Ptr[float32](0),
		})
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrTranscriptionFailure, err)
	}

	transcript, err := transcriptFromResponse(resp)
	if err != nil {
		return "", err
	}

	s.logger.Debug("Audio transcribed",
		zap.Int("audioSize", len(audioData)),
		zap.Int("transcriptLength", len(transcript)))

	return transcript, nil
}

// waitActive polls until an uploaded file can be referenced in a prompt
func (s *GeminiSpeechToText) waitActive(ctx context.Context, file *genai.File) (*genai.File, error) {
	for attempt := 0; file.State == genai.FileStateProcessing; attempt++ {
		if attempt >= fileActivePollAttempts {
			return nil, fmt.Errorf("uploaded file %s still processing", file.Name)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(fileActivePollInterval):
		}

		var err error
		file, err = s.client.Files.Get(ctx, file.Name, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to get uploaded file: %w", err)
		}
	}

	if file.State == genai.FileStateFailed {
		return nil, fmt.Errorf("uploaded file %s failed processing", file.Name)
	}
	return file, nil
}

// deleteRemote runs detached from cancellation so a cancelled request still
// removes its upload
func (s *GeminiSpeechToText) deleteRemote(ctx context.Context, name string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), fileDeleteTimeout)
	defer cancel()

	if _, err := s.client.Files.Delete(ctx, name, nil); err != nil {
		s.logger.Warn("Failed to delete uploaded audio", zap.String("file", name), zap.Error(err))
	}
}

// transcriptFromResponse joins the text parts of the first candidate. A
// candidate without text is silence, no candidate at all is a failure.
func transcriptFromResponse(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", fmt.Errorf("%w: no candidates returned", domain.ErrTranscriptionFailure)
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil {
		return "", nil
	}

	var sb strings.Builder
	for _, part := range candidate.Content.Parts {
		if part != nil && part.Text != "" {
			sb.WriteString(part.Text)
		}
	}
	return strings.TrimSpace(sb.String()), nil
}
