package usecase

import (
	"context"
	"encoding/base64"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/satriahrh/arunika/avatar/domain"
	"github.com/satriahrh/arunika/avatar/domain/entities"
	"github.com/satriahrh/arunika/avatar/domain/repositories"
	"github.com/satriahrh/arunika/avatar/internal/metrics"
)

// UtteranceEnricher gives utterances their speech audio and lip-sync track
type UtteranceEnricher struct {
	tts         repositories.TextToSpeech
	lipSyncer   repositories.LipSyncer
	concurrency int
	logger      *zap.Logger
}

// NewUtteranceEnricher creates an enricher. concurrency caps the parallel
// enrichments of one batch, 0 runs them all at once.
func NewUtteranceEnricher(tts repositories.TextToSpeech, lipSyncer repositories.LipSyncer, concurrency int, logger *zap.Logger) *UtteranceEnricher {
	return &UtteranceEnricher{
		tts:         tts,
		lipSyncer:   lipSyncer,
		concurrency: concurrency,
		logger:      logger,
	}
}

// Enrich synthesizes u and derives its lip-sync. Any failure, including
// empty audio or an empty cue track, is domain.ErrSynthesisFailure.
func (e *UtteranceEnricher) Enrich(ctx context.Context, u entities.Utterance) (entities.EnrichedUtterance, error) {
	speech, err := e.tts.Synthesize(ctx, u.Text)
	if err != nil {
		return entities.EnrichedUtterance{}, fmt.Errorf("%w: synthesize: %w", domain.ErrSynthesisFailure, err)
	}
	if speech == nil || len(speech.Audio) == 0 {
		return entities.EnrichedUtterance{}, fmt.Errorf("%w: empty audio", domain.ErrSynthesisFailure)
	}

	lipSync, err := e.lipSyncer.LipSync(ctx, speech, u.Text)
	if err != nil {
		return entities.EnrichedUtterance{}, fmt.Errorf("%w: lip-sync: %w", domain.ErrSynthesisFailure, err)
	}
	if lipSync.Empty() {
		return entities.EnrichedUtterance{}, fmt.Errorf("%w: empty lip-sync", domain.ErrSynthesisFailure)
	}

	return entities.EnrichedUtterance{
		Utterance: u,
		Audio:     base64.StdEncoding.EncodeToString(speech.Audio),
		LipSync:   lipSync,
	}, nil
}

// EnrichAll enriches every utterance concurrently. The result keeps the
// input order. The first failure cancels the rest and fails the batch.
func (e *UtteranceEnricher) EnrichAll(ctx context.Context, utterances []entities.Utterance) ([]entities.EnrichedUtterance, error) {
	g, gctx := errgroup.WithContext(ctx)
	if e.concurrency > 0 {
		g.SetLimit(e.concurrency)
	}

	results := make([]entities.EnrichedUtterance, len(utterances))
	for i, u := range utterances {
		g.Go(func() error {
			enriched, err := e.Enrich(gctx, u)
			if err != nil {
				e.logger.Warn("Failed to enrich utterance", zap.Int("index", i), zap.Error(err))
				return fmt.Errorf("utterance %d: %w", i, err)
			}
			results[i] = enriched
			metrics.UtterancesEnrichedTotal.Inc()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
