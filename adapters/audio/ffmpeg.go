package audio

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/satriahrh/arunika/avatar/domain"
	"github.com/satriahrh/arunika/avatar/domain/repositories"
	"github.com/satriahrh/arunika/avatar/internal/tempfile"
)

const (
	defaultFFmpegPath = "ffmpeg"
	stderrTailBytes   = 512
)

// FFmpegConfig configures the FFmpegTranscoder
type FFmpegConfig struct {
	FFmpegPath string // default: "ffmpeg" from PATH
	Format     string // normalized output format (default: mp3)
	SampleRate int    // 0 keeps the source rate
	TempDir    string // default: os.TempDir()
}

// FFmpegTranscoder shells out to ffmpeg to re-encode audio. Input and output
// go through temp files because browser recordings (webm) are not seekable
// from a pipe.
type FFmpegTranscoder struct {
	ffmpegPath string
	format     Format
	sampleRate int
	tempDir    string
	logger     *zap.Logger
}

var _ repositories.AudioNormalizer = (*FFmpegTranscoder)(nil)

// NewFFmpegTranscoder creates a transcoder. A missing ffmpeg binary is only
// logged: text requests do not need it.
func NewFFmpegTranscoder(config FFmpegConfig, logger *zap.Logger) (*FFmpegTranscoder, error) {
	ffmpegPath := config.FFmpegPath
	if ffmpegPath == "" {
		ffmpegPath = defaultFFmpegPath
	}

	format := FormatMP3
	if config.Format != "" {
		f, err := ParseFormat(config.Format)
		if err != nil {
			return nil, err
		}
		format = f
	}

	if resolved, err := exec.LookPath(ffmpegPath); err != nil {
		logger.Warn("ffmpeg not found, audio requests will fail", zap.String("path", ffmpegPath), zap.Error(err))
	} else {
		ffmpegPath = resolved
	}

	return &FFmpegTranscoder{
		ffmpegPath: ffmpegPath,
		format:     format,
		sampleRate: config.SampleRate,
		tempDir:    config.TempDir,
		logger:     logger,
	}, nil
}

// Normalize converts a recording in any container to mono audio in the
// configured format
func (t *FFmpegTranscoder) Normalize(ctx context.Context, raw []byte) ([]byte, error) {
	return t.Transcode(ctx, raw, t.format)
}

// AudioConfig describes what Normalize produces
func (t *FFmpegTranscoder) AudioConfig() repositories.AudioConfig {
	return repositories.AudioConfig{
		Format:     string(t.format),
		MIMEType:   t.format.MIMEType(),
		SampleRate: t.sampleRate,
	}
}

// Transcode re-encodes data as mono audio in the target format. Both temp
// files are removed before it returns.
func (t *FFmpegTranscoder) Transcode(ctx context.Context, data []byte, target Format) ([]byte, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty input", domain.ErrTranscodeFailure)
	}

	start := time.Now()

	inPath, cleanupIn, err := tempfile.Write(t.tempDir, "input-*", data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrTranscodeFailure, err)
	}
	defer cleanupIn()

	outPath, cleanupOut, err := tempfile.Reserve(t.tempDir, "output-*."+string(target))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrTranscodeFailure, err)
	}
	defer cleanupOut()

	args := []string{"-hide_banner", "-loglevel", "error", "-y", "-i", inPath, "-vn", "-ac", "1"}
	if t.sampleRate > 0 {
		args = append(args, "-ar", strconv.Itoa(t.sampleRate))
	}
	args = append(args, target.codecArgs()...)
	args = append(args, outPath)

	cmd := exec.CommandContext(ctx, t.ffmpegPath, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		t.logger.Error("ffmpeg transcoding failed",
			zap.String("format", string(target)),
			zap.Int("inputSize", len(data)),
			zap.String("stderr", tail(stderr.Bytes(), stderrTailBytes)),
			zap.Error(err))
		return nil, fmt.Errorf("%w: ffmpeg: %v", domain.ErrTranscodeFailure, err)
	}

	out, err := os.ReadFile(outPath)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read output: %v", domain.ErrTranscodeFailure, err)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: ffmpeg produced no output", domain.ErrTranscodeFailure)
	}

	t.logger.Debug("Audio transcoded",
		zap.String("format", string(target)),
		zap.Int("inputSize", len(data)),
		zap.Int("outputSize", len(out)),
		zap.Duration("duration", time.Since(start)))

	return out, nil
}

func tail(b []byte, n int) string {
	if len(b) > n {
		b = b[len(b)-n:]
	}
	return string(b)
}
