// Command cannedgen records the canned default responses: it synthesizes
// every canned line with Eleven Labs, converts it to wav and writes the clip
// with its lip-sync track to <out>/audios.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/satriahrh/arunika/avatar/adapters/audio"
	"github.com/satriahrh/arunika/avatar/adapters/lipsync"
	"github.com/satriahrh/arunika/avatar/adapters/tts"
	"github.com/satriahrh/arunika/avatar/domain/repositories"
	"github.com/satriahrh/arunika/avatar/internal/config"
	"github.com/satriahrh/arunika/avatar/usecase"
)

func main() {
	configFile := flag.String("config", "", "path to a config file")
	outDir := flag.String("out", "assets", "directory that receives audios/")
	flag.Parse()

	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	cfg, err := config.Load(*configFile)
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}
	if cfg.Credentials.ElevenLabsAPIKey == "" {
		logger.Fatal("ELEVEN_LABS_API_KEY environment variable is required")
	}

	ttsService, err := tts.NewElevenLabsTTS(tts.ElevenLabsConfig{
		APIKey:       cfg.Credentials.ElevenLabsAPIKey,
		APIBaseURL:   cfg.TTS.APIBaseURL,
		VoiceID:      cfg.TTS.VoiceID,
		ModelID:      cfg.TTS.ModelID,
		OutputFormat: cfg.TTS.OutputFormat,
		Stability:    cfg.TTS.Stability,
		Clarity:      cfg.TTS.Clarity,
		Timeout:      cfg.TTS.Timeout,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to create TTS service", zap.Error(err))
	}

	// canned clips are plain wav whatever the transcription format is
	transcoder, err := audio.NewFFmpegTranscoder(audio.FFmpegConfig{
		FFmpegPath: cfg.Audio.FFmpegPath,
		Format:     string(audio.FormatWAV),
		TempDir:    cfg.Audio.TempDir,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to create transcoder", zap.Error(err))
	}

	var lipSyncer repositories.LipSyncer = lipsync.NewAlignmentLipSyncer(logger)
	if cfg.LipSync.Engine == "rhubarb" {
		lipSyncer, err = lipsync.NewRhubarbLipSyncer(lipsync.RhubarbConfig{
			RhubarbPath: cfg.LipSync.RhubarbPath,
			TempDir:     cfg.Audio.TempDir,
		}, transcoder, logger)
		if err != nil {
			logger.Fatal("Failed to create lip-syncer", zap.Error(err))
		}
	}

	audiosDir := filepath.Join(*outDir, "audios")
	if err := os.MkdirAll(audiosDir, 0o755); err != nil {
		logger.Fatal("Failed to create output directory", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	for _, line := range usecase.CannedLines() {
		if err := record(ctx, line, audiosDir, ttsService, transcoder, lipSyncer); err != nil {
			logger.Fatal("Failed to record canned line", zap.String("clip", line.Clip), zap.Error(err))
		}
		logger.Info("Recorded canned line", zap.String("clip", line.Clip), zap.String("text", line.Utterance.Text))
	}

	fmt.Printf("Canned responses written to %s\n", audiosDir)
}

func record(
	ctx context.Context,
	line usecase.CannedLine,
	dir string,
	synth repositories.TextToSpeech,
	transcoder *audio.FFmpegTranscoder,
	lipSyncer repositories.LipSyncer,
) error {
	speech, err := synth.Synthesize(ctx, line.Utterance.Text)
	if err != nil {
		return err
	}

	wav, err := transcoder.Transcode(ctx, speech.Audio, audio.FormatWAV)
	if err != nil {
		return err
	}

	lipSync, err := lipSyncer.LipSync(ctx, speech, line.Utterance.Text)
	if err != nil {
		return err
	}
	lipSync.Metadata.SoundFile = "audios/" + line.Clip + ".wav"

	track, err := json.MarshalIndent(lipSync, "", "  ")
	if err != nil {
		return err
	}

	if err := os.WriteFile(filepath.Join(dir, line.Clip+".wav"), wav, 0o644); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, line.Clip+".json"), track, 0o644)
}
