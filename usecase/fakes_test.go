package usecase

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"

	"github.com/satriahrh/arunika/avatar/assets"
	"github.com/satriahrh/arunika/avatar/domain/entities"
	"github.com/satriahrh/arunika/avatar/domain/repositories"
)

type fakeNormalizer struct {
	calls int32
	err   error
}

func (f *fakeNormalizer) Normalize(ctx context.Context, raw []byte) ([]byte, error) {
	atomic.AddInt32(&f.calls, 1)
	if f.err != nil {
		return nil, f.err
	}
	return append([]byte("mp3:"), raw...), nil
}

func (f *fakeNormalizer) AudioConfig() repositories.AudioConfig {
	return repositories.AudioConfig{Format: "mp3", MIMEType: "audio/mpeg"}
}

type fakeTranscriber struct {
	text string
	err  error
	got  []byte
}

func (f *fakeTranscriber) TranscribeAudio(ctx context.Context, audio []byte, config repositories.AudioConfig) (string, error) {
	f.got = audio
	return f.text, f.err
}

type fakeGenerator struct {
	utterances []entities.Utterance
	err        error
	calls      int32
}

func (f *fakeGenerator) Generate(ctx context.Context, question string) ([]entities.Utterance, error) {
	atomic.AddInt32(&f.calls, 1)
	return f.utterances, f.err
}

// fakeTTS returns "audio:<text>" and fails for texts in failOn
type fakeTTS struct {
	mu     sync.Mutex
	failOn map[string]error
	empty  bool
	texts  []string
}

func (f *fakeTTS) Synthesize(ctx context.Context, text string) (*repositories.Speech, error) {
	f.mu.Lock()
	f.texts = append(f.texts, text)
	f.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err, ok := f.failOn[text]; ok {
		return nil, err
	}
	if f.empty {
		return &repositories.Speech{Format: "mp3"}, nil
	}
	return &repositories.Speech{Audio: []byte("audio:" + text), Format: "mp3"}, nil
}

type fakeLipSyncer struct {
	empty bool
	err   error
}

func (f *fakeLipSyncer) LipSync(ctx context.Context, speech *repositories.Speech, text string) (entities.LipSync, error) {
	if f.err != nil {
		return entities.LipSync{}, f.err
	}
	if f.empty {
		return entities.LipSync{}, nil
	}
	return entities.LipSync{
		Metadata: entities.LipSyncMetadata{Duration: 0.5},
		MouthCues: []entities.MouthCue{
			{Start: 0, End: 0.2, Value: entities.ShapeX},
			{Start: 0.2, End: 0.5, Value: entities.ShapeB},
		},
	}, nil
}

var errEngine = errors.New("engine down")

func loadTestDefaults(t *testing.T) *DefaultResponses {
	t.Helper()
	defaults, err := LoadDefaultResponses(assets.Audios)
	require.NoError(t, err)
	return defaults
}

func cannedFS(clips ...string) fstest.MapFS {
	fsys := fstest.MapFS{}
	for _, clip := range clips {
		fsys["audios/"+clip+".wav"] = &fstest.MapFile{Data: []byte("RIFF" + clip)}
		fsys["audios/"+clip+".json"] = &fstest.MapFile{Data: []byte(`{"metadata":{"soundFile":"audios/` + clip + `.wav","duration":1},"mouthCues":[{"start":0,"end":1,"value":"X"}]}`)}
	}
	return fsys
}
