package api

import (
	"context"
	"encoding/base64"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/satriahrh/arunika/avatar/domain"
	"github.com/satriahrh/arunika/avatar/domain/entities"
	"github.com/satriahrh/arunika/avatar/domain/repositories"
	"github.com/satriahrh/arunika/avatar/usecase"
)

const (
	msgMessageRequired  = "Message is required"
	msgAudioRequired    = "Audio data is required"
	msgInvalidAudio     = "Invalid audio data"
	msgInvalidRequest   = "Invalid request format"
	msgInternalError    = "Internal server error"
	msgDefaultMessage   = "Default message sent"
	serviceName         = "avatar-server"
	dataURLBase64Marker = ";base64,"
)

// Replier runs the reply pipeline
type Replier interface {
	Process(ctx context.Context, req usecase.Request) (*entities.ReplyEnvelope, error)
}

type handler struct {
	pipeline Replier
	voices   repositories.VoiceCatalog
	logger   *zap.Logger
}

// InitRoutes initializes all API routes. voices may be nil when no Eleven
// Labs key is configured.
func InitRoutes(e *echo.Echo, pipeline Replier, voices repositories.VoiceCatalog, logger *zap.Logger) {
	h := &handler{pipeline: pipeline, voices: voices, logger: logger}

	// Health check
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"service": serviceName,
		})
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	e.GET("/voices", h.listVoices)
	e.POST("/tts", h.textToSpeech)
	e.POST("/sts", h.speechToSpeech)
}

func (h *handler) listVoices(c echo.Context) error {
	if h.voices == nil {
		h.logger.Warn("Voices requested but ELEVEN_LABS_API_KEY is not configured")
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: msgInternalError})
	}

	voices, err := h.voices.ListVoices(c.Request().Context())
	if err != nil {
		h.logger.Error("Failed to get voices", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: msgInternalError})
	}

	return c.JSON(http.StatusOK, VoicesResponse{Voices: voices})
}

func (h *handler) textToSpeech(c echo.Context) error {
	var req TTSRequest
	if err := c.Bind(&req); err != nil {
		h.logger.Warn("Failed to bind TTS request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: msgInvalidRequest})
	}

	if req.Message == "" {
		h.logger.Warn(`Invalid request: Missing "message" in request body`)
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: msgMessageRequired})
	}

	return h.reply(c, usecase.Request{ID: requestID(c), Text: req.Message})
}

func (h *handler) speechToSpeech(c echo.Context) error {
	var req STSRequest
	if err := c.Bind(&req); err != nil {
		h.logger.Warn("Failed to bind STS request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: msgInvalidRequest})
	}

	if req.Audio == "" {
		h.logger.Warn(`Invalid request: Missing "audio" in request body`)
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: msgAudioRequired})
	}

	audio, err := decodeAudio(req.Audio)
	if err != nil || len(audio) == 0 {
		h.logger.Warn("Invalid request: Failed to decode base64 audio data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: msgInvalidAudio})
	}

	return h.reply(c, usecase.Request{ID: requestID(c), Audio: audio})
}

func (h *handler) reply(c echo.Context, req usecase.Request) error {
	envelope, err := h.pipeline.Process(c.Request().Context(), req)
	if err != nil {
		if domain.IsBadRequest(err) {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: msgInvalidRequest})
		}
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: msgInternalError})
	}

	if envelope.DefaultSent {
		return c.JSON(http.StatusOK, DefaultMessageResponse{
			Message:         msgDefaultMessage,
			DefaultMessages: envelope.Defaults,
		})
	}

	return c.JSON(http.StatusOK, ReplyResponse{Messages: envelope.Messages})
}

// decodeAudio accepts plain base64 or a data URL such as
// data:audio/webm;base64,....
func decodeAudio(s string) ([]byte, error) {
	if i := strings.Index(s, dataURLBase64Marker); strings.HasPrefix(s, "data:") && i >= 0 {
		s = s[i+len(dataURLBase64Marker):]
	}
	s = strings.TrimSpace(s)

	audio, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return base64.RawStdEncoding.DecodeString(strings.TrimRight(s, "="))
	}
	return audio, nil
}

func requestID(c echo.Context) string {
	if id := c.Response().Header().Get(echo.HeaderXRequestID); id != "" {
		return id
	}
	return c.Request().Header.Get(echo.HeaderXRequestID)
}
