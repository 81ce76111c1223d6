package usecase

import (
	"context"
	"encoding/base64"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/satriahrh/arunika/avatar/domain"
	"github.com/satriahrh/arunika/avatar/domain/entities"
	"github.com/satriahrh/arunika/avatar/domain/repositories"
)

func utterances(texts ...string) []entities.Utterance {
	out := make([]entities.Utterance, 0, len(texts))
	for _, text := range texts {
		out = append(out, entities.Utterance{
			Text:             text,
			FacialExpression: entities.ExpressionSmile,
			Animation:        entities.AnimationTalkingOne,
		})
	}
	return out
}

func TestUtteranceEnricher_Enrich(t *testing.T) {
	enricher := NewUtteranceEnricher(&fakeTTS{}, &fakeLipSyncer{}, 0, zaptest.NewLogger(t))

	enriched, err := enricher.Enrich(context.Background(), utterances("Hello")[0])
	require.NoError(t, err)

	assert.Equal(t, "Hello", enriched.Text)
	assert.Equal(t, entities.ExpressionSmile, enriched.FacialExpression)
	assert.Equal(t, base64.StdEncoding.EncodeToString([]byte("audio:Hello")), enriched.Audio)
	assert.Len(t, enriched.LipSync.MouthCues, 2)
}

func TestUtteranceEnricher_EnrichFailures(t *testing.T) {
	u := utterances("Hello")[0]
	ctx := context.Background()

	tests := []struct {
		name      string
		tts       *fakeTTS
		lipSyncer *fakeLipSyncer
	}{
		{"synthesis error", &fakeTTS{failOn: map[string]error{"Hello": errEngine}}, &fakeLipSyncer{}},
		{"empty audio", &fakeTTS{empty: true}, &fakeLipSyncer{}},
		{"lip-sync error", &fakeTTS{}, &fakeLipSyncer{err: errEngine}},
		{"empty cues", &fakeTTS{}, &fakeLipSyncer{empty: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			enricher := NewUtteranceEnricher(tt.tts, tt.lipSyncer, 0, zaptest.NewLogger(t))
			_, err := enricher.Enrich(ctx, u)
			assert.ErrorIs(t, err, domain.ErrSynthesisFailure)
		})
	}
}

func TestUtteranceEnricher_EnrichAllPreservesOrder(t *testing.T) {
	texts := make([]string, 8)
	for i := range texts {
		texts[i] = fmt.Sprintf("line %d", i)
	}

	for _, concurrency := range []int{0, 1, 3} {
		t.Run(fmt.Sprintf("concurrency %d", concurrency), func(t *testing.T) {
			enricher := NewUtteranceEnricher(&slowTTS{}, &fakeLipSyncer{}, concurrency, zaptest.NewLogger(t))

			enriched, err := enricher.EnrichAll(context.Background(), utterances(texts...))
			require.NoError(t, err)
			require.Len(t, enriched, len(texts))
			for i, e := range enriched {
				assert.Equal(t, texts[i], e.Text)
				assert.Equal(t, base64.StdEncoding.EncodeToString([]byte("audio:"+texts[i])), e.Audio)
			}
		})
	}
}

func TestUtteranceEnricher_EnrichAllFailsWhole(t *testing.T) {
	tts := &fakeTTS{failOn: map[string]error{"second": errEngine}}
	enricher := NewUtteranceEnricher(tts, &fakeLipSyncer{}, 0, zaptest.NewLogger(t))

	enriched, err := enricher.EnrichAll(context.Background(), utterances("first", "second", "third"))
	assert.Nil(t, enriched)
	assert.ErrorIs(t, err, domain.ErrSynthesisFailure)
	assert.ErrorIs(t, err, errEngine)
}

func TestUtteranceEnricher_EnrichAllRespectsLimit(t *testing.T) {
	tts := &slowTTS{}
	enricher := NewUtteranceEnricher(tts, &fakeLipSyncer{}, 2, zaptest.NewLogger(t))

	_, err := enricher.EnrichAll(context.Background(), utterances("a", "b", "c", "d", "e"))
	require.NoError(t, err)
	assert.LessOrEqual(t, atomic.LoadInt32(&tts.peak), int32(2))
}

func TestUtteranceEnricher_EnrichAllEmpty(t *testing.T) {
	enricher := NewUtteranceEnricher(&fakeTTS{}, &fakeLipSyncer{}, 0, zaptest.NewLogger(t))

	enriched, err := enricher.EnrichAll(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, enriched)
}

// slowTTS sleeps a text dependent time and records peak concurrency
type slowTTS struct {
	active int32
	peak   int32
}

func (s *slowTTS) Synthesize(ctx context.Context, text string) (*repositories.Speech, error) {
	n := atomic.AddInt32(&s.active, 1)
	defer atomic.AddInt32(&s.active, -1)
	for {
		peak := atomic.LoadInt32(&s.peak)
		if n <= peak || atomic.CompareAndSwapInt32(&s.peak, peak, n) {
			break
		}
	}

	delay := time.Duration(5+int(text[len(text)-1])%5*5) * time.Millisecond
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(delay):
	}
	return &repositories.Speech{Audio: []byte("audio:" + text), Format: "mp3"}, nil
}
