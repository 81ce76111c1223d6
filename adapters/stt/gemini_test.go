package stt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"google.golang.org/genai"

	"github.com/satriahrh/arunika/avatar/domain"
)

func TestTranscriptFromResponse(t *testing.T) {
	t.Run("joins text parts", func(t *testing.T) {
		resp := &genai.GenerateContentResponse{
			Candidates: []*genai.Candidate{{
				Content: genai.NewContentFromParts([]*genai.Part{
					genai.NewPartFromText("  Hello, "),
					genai.NewPartFromText("how are you?\n"),
				}, genai.RoleModel),
			}},
		}

		text, err := transcriptFromResponse(resp)
		require.NoError(t, err)
		assert.Equal(t, "Hello, how are you?", text)
	})

	t.Run("silence is empty", func(t *testing.T) {
		resp := &genai.GenerateContentResponse{
			Candidates: []*genai.Candidate{{Content: nil}},
		}

		text, err := transcriptFromResponse(resp)
		require.NoError(t, err)
		assert.Empty(t, text)
	})

	t.Run("no candidates fails", func(t *testing.T) {
		_, err := transcriptFromResponse(&genai.GenerateContentResponse{})
		assert.ErrorIs(t, err, domain.ErrTranscriptionFailure)

		_, err = transcriptFromResponse(nil)
		assert.ErrorIs(t, err, domain.ErrTranscriptionFailure)
	})
}

func TestNewGeminiSpeechToText_RequiresClient(t *testing.T) {
	_, err := NewGeminiSpeechToText(nil, GeminiSTTConfig{}, zaptest.NewLogger(t))
	assert.Error(t, err)
}
