package lipsync

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"time"

	"go.uber.org/zap"

	"github.com/satriahrh/arunika/avatar/adapters/audio"
	"github.com/satriahrh/arunika/avatar/domain/entities"
	"github.com/satriahrh/arunika/avatar/domain/repositories"
	"github.com/satriahrh/arunika/avatar/internal/tempfile"
)

const defaultRhubarbPath = "rhubarb"

// Transcoder turns synthesized audio into the wav Rhubarb reads
type Transcoder interface {
	Transcode(ctx context.Context, data []byte, target audio.Format) ([]byte, error)
}

// RhubarbConfig configures the RhubarbLipSyncer
type RhubarbConfig struct {
	RhubarbPath string // default: "rhubarb" from PATH
	Recognizer  string // pocketSphinx or phonetic (default)
	TempDir     string
}

// RhubarbLipSyncer runs the Rhubarb Lip Sync CLI on the synthesized audio
type RhubarbLipSyncer struct {
	path       string
	recognizer string
	tempDir    string
	transcoder Transcoder
	logger     *zap.Logger
}

var _ repositories.LipSyncer = (*RhubarbLipSyncer)(nil)

func NewRhubarbLipSyncer(config RhubarbConfig, transcoder Transcoder, logger *zap.Logger) (*RhubarbLipSyncer, error) {
	if transcoder == nil {
		return nil, fmt.Errorf("transcoder is required")
	}

	path := config.RhubarbPath
	if path == "" {
		path = defaultRhubarbPath
	}
	if resolved, err := exec.LookPath(path); err != nil {
		logger.Warn("rhubarb not found, lip-sync will fail", zap.String("path", path), zap.Error(err))
	} else {
		path = resolved
	}

	recognizer := config.Recognizer
	if recognizer == "" {
		recognizer = "phonetic"
	}

	return &RhubarbLipSyncer{
		path:       path,
		recognizer: recognizer,
		tempDir:    config.TempDir,
		transcoder: transcoder,
		logger:     logger,
	}, nil
}

// LipSync writes the audio and the spoken text to temp files, runs rhubarb
// and parses its JSON output. All temp files are removed before returning.
func (r *RhubarbLipSyncer) LipSync(ctx context.Context, speech *repositories.Speech, text string) (entities.LipSync, error) {
	if speech == nil || len(speech.Audio) == 0 {
		return entities.LipSync{}, fmt.Errorf("no audio to lip-sync")
	}
	start := time.Now()

	wav := speech.Audio
	if speech.Format != string(audio.FormatWAV) {
		var err error
		wav, err = r.transcoder.Transcode(ctx, speech.Audio, audio.FormatWAV)
		if err != nil {
			return entities.LipSync{}, fmt.Errorf("failed to convert speech to wav: %w", err)
		}
	}

	wavPath, cleanupWav, err := tempfile.Write(r.tempDir, "lipsync-*.wav", wav)
	if err != nil {
		return entities.LipSync{}, err
	}
	defer cleanupWav()

	dialogPath, cleanupDialog, err := tempfile.Write(r.tempDir, "dialog-*.txt", []byte(text))
	if err != nil {
		return entities.LipSync{}, err
	}
	defer cleanupDialog()

	outPath, cleanupOut, err := tempfile.Reserve(r.tempDir, "lipsync-*.json")
	if err != nil {
		return entities.LipSync{}, err
	}
	defer cleanupOut()

	cmd := exec.CommandContext(ctx, r.path,
		"-f", "json",
		"-r", r.recognizer,
		"--dialogFile", dialogPath,
		"-o", outPath,
		wavPath)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		r.logger.Error("rhubarb failed", zap.String("stderr", stderr.String()), zap.Error(err))
		return entities.LipSync{}, fmt.Errorf("rhubarb: %w", err)
	}

	out, err := os.ReadFile(outPath)
	if err != nil {
		return entities.LipSync{}, fmt.Errorf("failed to read rhubarb output: %w", err)
	}

	var lipSync entities.LipSync
	if err := json.Unmarshal(out, &lipSync); err != nil {
		return entities.LipSync{}, fmt.Errorf("failed to decode rhubarb output: %w", err)
	}
	if lipSync.Empty() {
		return entities.LipSync{}, fmt.Errorf("rhubarb produced no mouth cues")
	}
	// the temp path means nothing to the client
	lipSync.Metadata.SoundFile = ""

	r.logger.Debug("Lip-sync generated",
		zap.Int("cues", len(lipSync.MouthCues)),
		zap.Float64("audioSeconds", lipSync.Metadata.Duration),
		zap.Duration("duration", time.Since(start)))

	return lipSync, nil
}
