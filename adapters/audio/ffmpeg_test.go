package audio

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/satriahrh/arunika/avatar/domain"
)

// fakeFFmpeg copies the file after -i to the last argument
const fakeFFmpeg = `#!/bin/sh
in=""
prev=""
for a in "$@"; do
  if [ "$prev" = "-i" ]; then in="$a"; fi
  prev="$a"
  out="$a"
done
cp "$in" "$out"
`

func writeScript(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ffmpeg")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o755))
	return path
}

func newTestTranscoder(t *testing.T, script string) (*FFmpegTranscoder, string) {
	t.Helper()
	tempDir := t.TempDir()
	transcoder, err := NewFFmpegTranscoder(FFmpegConfig{
		FFmpegPath: writeScript(t, script),
		Format:     "mp3",
		TempDir:    tempDir,
	}, zaptest.NewLogger(t))
	require.NoError(t, err)
	return transcoder, tempDir
}

func assertNoResidue(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "temp files left behind")
}

func TestFFmpegTranscoder_Normalize(t *testing.T) {
	transcoder, tempDir := newTestTranscoder(t, fakeFFmpeg)

	out, err := transcoder.Normalize(context.Background(), []byte("webm-bytes"))
	require.NoError(t, err)
	assert.Equal(t, []byte("webm-bytes"), out)
	assertNoResidue(t, tempDir)
}

func TestFFmpegTranscoder_NormalizeIsIdempotent(t *testing.T) {
	transcoder, tempDir := newTestTranscoder(t, fakeFFmpeg)
	ctx := context.Background()

	first, err := transcoder.Normalize(ctx, []byte("recording"))
	require.NoError(t, err)
	assertNoResidue(t, tempDir)

	second, err := transcoder.Normalize(ctx, []byte("recording"))
	require.NoError(t, err)
	assertNoResidue(t, tempDir)

	assert.Equal(t, first, second)
}

func TestFFmpegTranscoder_Failure(t *testing.T) {
	transcoder, tempDir := newTestTranscoder(t, "#!/bin/sh\necho 'Invalid data found when processing input' >&2\nexit 1\n")

	_, err := transcoder.Normalize(context.Background(), []byte("garbage"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrTranscodeFailure))
	assertNoResidue(t, tempDir)
}

func TestFFmpegTranscoder_EmptyOutput(t *testing.T) {
	transcoder, tempDir := newTestTranscoder(t, "#!/bin/sh\nexit 0\n")

	_, err := transcoder.Normalize(context.Background(), []byte("garbage"))
	assert.ErrorIs(t, err, domain.ErrTranscodeFailure)
	assertNoResidue(t, tempDir)
}

func TestFFmpegTranscoder_EmptyInput(t *testing.T) {
	transcoder, _ := newTestTranscoder(t, fakeFFmpeg)

	_, err := transcoder.Normalize(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrTranscodeFailure)
}

func TestFFmpegTranscoder_AudioConfig(t *testing.T) {
	transcoder, _ := newTestTranscoder(t, fakeFFmpeg)

	config := transcoder.AudioConfig()
	assert.Equal(t, "mp3", config.Format)
	assert.Equal(t, "audio/mpeg", config.MIMEType)
}

func TestNewFFmpegTranscoder_UnsupportedFormat(t *testing.T) {
	_, err := NewFFmpegTranscoder(FFmpegConfig{Format: "aac"}, zaptest.NewLogger(t))
	assert.Error(t, err)
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		name    string
		want    Format
		wantErr bool
	}{
		{"mp3", FormatMP3, false},
		{"flac", FormatFLAC, false},
		{"ogg", FormatOgg, false},
		{"wav", FormatWAV, false},
		{"webm", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseFormat(tt.name)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
