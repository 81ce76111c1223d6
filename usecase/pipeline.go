package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/satriahrh/arunika/avatar/domain"
	"github.com/satriahrh/arunika/avatar/domain/entities"
	"github.com/satriahrh/arunika/avatar/domain/repositories"
	"github.com/satriahrh/arunika/avatar/internal/logging"
	"github.com/satriahrh/arunika/avatar/internal/metrics"
)

const logInputRunes = 50

// Request is one client turn: either typed text or a recorded clip
type Request struct {
	ID    string // generated when empty
	Text  string
	Audio []byte
}

func (r Request) inputKind() string {
	if len(r.Audio) > 0 {
		return "audio"
	}
	return "text"
}

// Pipeline turns a client turn into the avatar's enriched reply
type Pipeline struct {
	normalizer        repositories.AudioNormalizer
	transcriber       repositories.SpeechToText
	gate              *DefaultResponseGate
	generator         repositories.ReplyGenerator
	enricher          *UtteranceEnricher
	abortOnDisconnect bool
	logger            *zap.Logger
}

// NewPipeline wires the stages. transcriber and generator may be nil when
// their credentials are missing; the gate then answers before they are used.
func NewPipeline(
	normalizer repositories.AudioNormalizer,
	transcriber repositories.SpeechToText,
	gate *DefaultResponseGate,
	generator repositories.ReplyGenerator,
	enricher *UtteranceEnricher,
	abortOnDisconnect bool,
	logger *zap.Logger,
) *Pipeline {
	return &Pipeline{
		normalizer:        normalizer,
		transcriber:       transcriber,
		gate:              gate,
		generator:         generator,
		enricher:          enricher,
		abortOnDisconnect: abortOnDisconnect,
		logger:            logger,
	}
}

// run is the state of a single Process call
type run struct {
	input  string
	stage  domain.Stage
	text   string
	logger *zap.Logger
}

func (r *run) enter(stage domain.Stage) {
	r.logger.Debug("Pipeline stage", zap.String("from", string(r.stage)), zap.String("to", string(stage)))
	r.stage = stage
}

func (r *run) fail(err error) error {
	stage := r.stage
	r.stage = domain.StageFailed

	metrics.StageFailuresTotal.WithLabelValues(string(stage)).Inc()
	r.logger.Error("Pipeline failed",
		zap.String("stage", string(stage)),
		zap.String("text", logging.Truncate(r.text, logInputRunes)),
		zap.Error(err))

	return &domain.StageError{Stage: stage, Err: err}
}

// Process runs start → audio_decode? → gated | generating → enriching → done.
// Failures come back as *domain.StageError; the envelope is never partial.
func (p *Pipeline) Process(ctx context.Context, req Request) (*entities.ReplyEnvelope, error) {
	if !p.abortOnDisconnect {
		ctx = context.WithoutCancel(ctx)
	}

	id := req.ID
	if id == "" {
		id = uuid.NewString()
	}
	r := &run{
		input:  req.inputKind(),
		stage:  domain.StageStart,
		text:   req.Text,
		logger: p.logger.With(zap.String("requestID", id), zap.String("input", req.inputKind())),
	}

	envelope, err := p.process(ctx, r, req)

	outcome := metrics.OutcomeReplied
	switch {
	case domain.IsBadRequest(err):
		outcome = metrics.OutcomeBadRequest
	case err != nil:
		outcome = metrics.OutcomeFailed
	case envelope.DefaultSent:
		outcome = metrics.OutcomeDefault
	}
	metrics.PipelineRequestsTotal.WithLabelValues(r.input, outcome).Inc()

	return envelope, err
}

func (p *Pipeline) process(ctx context.Context, r *run, req Request) (*entities.ReplyEnvelope, error) {
	hasText, hasAudio := req.Text != "", len(req.Audio) > 0
	if hasText == hasAudio {
		return nil, r.fail(fmt.Errorf("%w: exactly one of text or audio is required", domain.ErrBadRequest))
	}

	transcript := req.Text
	if hasAudio {
		r.enter(domain.StageAudioDecode)
		text, decision, err := p.transcribe(ctx, req.Audio)
		if err != nil {
			return nil, r.fail(err)
		}
		if decision.Triggered {
			return p.respondDefault(r, decision), nil
		}
		transcript = text
		r.text = text
		r.logger.Info("Converted audio to text", zap.String("text", logging.Truncate(text, logInputRunes)))
	}

	r.logger.Info("Processing user message", zap.String("text", logging.Truncate(transcript, logInputRunes)))

	if decision := p.gate.Evaluate(transcript); decision.Triggered {
		return p.respondDefault(r, decision), nil
	}

	r.enter(domain.StageGenerating)
	start := time.Now()
	utterances, err := p.generator.Generate(ctx, transcript)
	if err != nil {
		return nil, r.fail(err)
	}
	if len(utterances) == 0 {
		return nil, r.fail(fmt.Errorf("%w: no utterances", domain.ErrSchemaViolation))
	}
	metrics.ObserveStage(string(domain.StageGenerating), start)
	r.logger.Info("Reply generated", zap.Int("messages", len(utterances)))

	r.enter(domain.StageEnriching)
	start = time.Now()
	enriched, err := p.enricher.EnrichAll(ctx, utterances)
	if err != nil {
		return nil, r.fail(withSentinel(err, domain.ErrSynthesisFailure))
	}
	metrics.ObserveStage(string(domain.StageEnriching), start)

	r.enter(domain.StageDone)
	r.logger.Info("Reply ready", zap.Int("messages", len(enriched)))

	return &entities.ReplyEnvelope{Messages: enriched}, nil
}

// transcribe normalizes and transcribes a recording. Without a transcriber
// the missing-credentials decision is returned before any audio work.
func (p *Pipeline) transcribe(ctx context.Context, raw []byte) (string, GateDecision, error) {
	start := time.Now()
	defer metrics.ObserveStage(string(domain.StageAudioDecode), start)

	if p.transcriber == nil {
		return "", p.gate.MissingCredentials(), nil
	}

	normalized, err := p.normalizer.Normalize(ctx, raw)
	if err != nil {
		return "", GateDecision{}, withSentinel(err, domain.ErrTranscodeFailure)
	}

	text, err := p.transcriber.TranscribeAudio(ctx, normalized, p.normalizer.AudioConfig())
	if err != nil {
		return "", GateDecision{}, withSentinel(err, domain.ErrTranscriptionFailure)
	}
	return text, GateDecision{}, nil
}

func (p *Pipeline) respondDefault(r *run, decision GateDecision) *entities.ReplyEnvelope {
	r.enter(domain.StageGated)
	metrics.DefaultResponsesTotal.WithLabelValues(string(decision.Reason)).Inc()
	r.logger.Info("Default message response sent", zap.String("reason", string(decision.Reason)))
	r.enter(domain.StageDone)

	return &entities.ReplyEnvelope{DefaultSent: true, Defaults: decision.Messages}
}

// withSentinel makes sure err matches sentinel under errors.Is
func withSentinel(err, sentinel error) error {
	if errors.Is(err, sentinel) {
		return err
	}
	return fmt.Errorf("%w: %w", sentinel, err)
}
