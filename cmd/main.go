package main

import (
	"context"
	"flag"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/satriahrh/arunika/avatar/adapters/audio"
	"github.com/satriahrh/arunika/avatar/adapters/lipsync"
	"github.com/satriahrh/arunika/avatar/adapters/llm"
	"github.com/satriahrh/arunika/avatar/adapters/stt"
	"github.com/satriahrh/arunika/avatar/adapters/tts"
	"github.com/satriahrh/arunika/avatar/assets"
	"github.com/satriahrh/arunika/avatar/domain/repositories"
	"github.com/satriahrh/arunika/avatar/internal/api"
	"github.com/satriahrh/arunika/avatar/internal/config"
	"github.com/satriahrh/arunika/avatar/internal/logging"
	"github.com/satriahrh/arunika/avatar/usecase"
)

func main() {
	configFile := flag.String("config", "", "path to a config file (default: ./config.yaml if present)")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, err := logging.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if missing := cfg.Credentials.Missing(); len(missing) > 0 {
		logger.Warn("API keys missing, every request gets the canned reminder", zap.Strings("missing", missing))
	}

	ctx := context.Background()

	pipeline, voices, closeAdapters, err := buildPipeline(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize pipeline", zap.Error(err))
	}
	defer closeAdapters()

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true

	// Middleware
	e.Use(middleware.Recover())
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(logging.Middleware(logger))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{AllowOrigins: cfg.Server.CORSOrigins}))
	e.Use(middleware.BodyLimit(cfg.Server.BodyLimit))

	api.InitRoutes(e, pipeline, voices, logger)

	port := strconv.Itoa(cfg.Server.Port)

	// Graceful shutdown
	go func() {
		if err := e.Start(":" + port); err != nil && err != http.ErrServerClosed {
			logger.Fatal("shutting down the server", zap.Error(err))
		}
	}()

	logger.Info("Api is listening", zap.String("port", port))

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("Server is shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}

// buildPipeline creates the adapters and wires them into the pipeline.
// Adapters whose credentials are missing stay nil; the gate answers first.
func buildPipeline(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*usecase.Pipeline, repositories.VoiceCatalog, func(), error) {
	var closers []func() error
	closeAll := func() {
		for _, c := range closers {
			if err := c(); err != nil {
				logger.Warn("Failed to close adapter", zap.Error(err))
			}
		}
	}

	var assetsFS fs.FS = assets.Audios
	if cfg.Assets.Dir != "" {
		assetsFS = os.DirFS(cfg.Assets.Dir)
	}
	defaults, err := usecase.LoadDefaultResponses(assetsFS)
	if err != nil {
		return nil, nil, closeAll, err
	}

	transcoder, err := audio.NewFFmpegTranscoder(audio.FFmpegConfig{
		FFmpegPath: cfg.Audio.FFmpegPath,
		Format:     cfg.Audio.Format,
		SampleRate: cfg.Audio.SampleRate,
		TempDir:    cfg.Audio.TempDir,
	}, logger.Named("ffmpeg"))
	if err != nil {
		return nil, nil, closeAll, err
	}

	var genaiClient *genai.Client
	if cfg.Credentials.GeminiAPIKey != "" {
		genaiClient, err = genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  cfg.Credentials.GeminiAPIKey,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			return nil, nil, closeAll, fmt.Errorf("failed to create Gemini client: %w", err)
		}
	}

	var transcriber repositories.SpeechToText
	switch cfg.STT.Provider {
	case "google":
		google, err := stt.NewGoogleSpeechToText(ctx, stt.GoogleSTTConfig{
			Language:        cfg.STT.Language,
			CredentialsFile: cfg.STT.CredentialsFile,
		}, logger.Named("stt"))
		if err != nil {
			return nil, nil, closeAll, err
		}
		closers = append(closers, google.Close)
		transcriber = google
	default:
		if genaiClient != nil {
			gemini, err := stt.NewGeminiSpeechToText(genaiClient, stt.GeminiSTTConfig{
				Model:    cfg.Gemini.TranscribeModel,
				Language: cfg.STT.Language,
				TempDir:  cfg.Audio.TempDir,
			}, logger.Named("stt"))
			if err != nil {
				return nil, nil, closeAll, err
			}
			transcriber = gemini
		}
	}

	var generator repositories.ReplyGenerator
	if genaiClient != nil {
		gemini, err := llm.NewGeminiReplyGenerator(genaiClient, llm.GeminiConfig{
			Model:           cfg.Gemini.Model,
			Temperature:     cfg.Gemini.Temperature,
			MaxOutputTokens: cfg.Gemini.MaxOutputTokens,
			Timeout:         cfg.Gemini.Timeout,
		}, logger.Named("llm"))
		if err != nil {
			return nil, nil, closeAll, err
		}
		generator = gemini
	}

	var speech repositories.TextToSpeech
	var voices repositories.VoiceCatalog
	if cfg.Credentials.ElevenLabsAPIKey != "" {
		elevenLabs, err := tts.NewElevenLabsTTS(tts.ElevenLabsConfig{
			APIKey:       cfg.Credentials.ElevenLabsAPIKey,
			APIBaseURL:   cfg.TTS.APIBaseURL,
			VoiceID:      cfg.TTS.VoiceID,
			ModelID:      cfg.TTS.ModelID,
			OutputFormat: cfg.TTS.OutputFormat,
			Stability:    cfg.TTS.Stability,
			Clarity:      cfg.TTS.Clarity,
			Timeout:      cfg.TTS.Timeout,
		}, logger.Named("tts"))
		if err != nil {
			return nil, nil, closeAll, err
		}
		speech, voices = elevenLabs, elevenLabs
	}

	var lipSyncer repositories.LipSyncer
	switch cfg.LipSync.Engine {
	case "rhubarb":
		rhubarb, err := lipsync.NewRhubarbLipSyncer(lipsync.RhubarbConfig{
			RhubarbPath: cfg.LipSync.RhubarbPath,
			TempDir:     cfg.Audio.TempDir,
		}, transcoder, logger.Named("lipsync"))
		if err != nil {
			return nil, nil, closeAll, err
		}
		lipSyncer = rhubarb
	default:
		lipSyncer = lipsync.NewAlignmentLipSyncer(logger.Named("lipsync"))
	}

	enricher := usecase.NewUtteranceEnricher(speech, lipSyncer, cfg.Pipeline.EnrichConcurrency, logger.Named("enricher"))
	gate := usecase.NewDefaultResponseGate(cfg.Credentials, defaults)

	pipeline := usecase.NewPipeline(
		transcoder,
		transcriber,
		gate,
		generator,
		enricher,
		cfg.Pipeline.AbortOnDisconnect,
		logger.Named("pipeline"),
	)

	return pipeline, voices, closeAll, nil
}
