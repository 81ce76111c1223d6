package lipsync

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"go.uber.org/zap"

	"github.com/satriahrh/arunika/avatar/domain/entities"
	"github.com/satriahrh/arunika/avatar/domain/repositories"
)

// Estimated durations in seconds, used when the engine returns no timings
const (
	vowelSeconds     = 0.10
	fricativeSeconds = 0.08
	consonantSeconds = 0.06
	spaceSeconds     = 0.08
	clauseSeconds    = 0.10
	sentenceSeconds  = 0.15
	leadInSeconds    = 0.05
)

// AlignmentLipSyncer maps the per-character timings returned with the
// synthesized speech onto mouth shapes
type AlignmentLipSyncer struct {
	logger *zap.Logger
}

var _ repositories.LipSyncer = (*AlignmentLipSyncer)(nil)

func NewAlignmentLipSyncer(logger *zap.Logger) *AlignmentLipSyncer {
	return &AlignmentLipSyncer{logger: logger}
}

// LipSync builds the cue track. Without alignment it falls back to an
// estimate from text.
func (l *AlignmentLipSyncer) LipSync(ctx context.Context, speech *repositories.Speech, text string) (entities.LipSync, error) {
	var alignment *repositories.Alignment
	if speech != nil {
		alignment = speech.Alignment
	}
	if alignment == nil || len(alignment.Characters) == 0 {
		l.logger.Debug("No alignment returned, estimating from text")
		alignment = EstimateAlignment(text)
	}

	cues, err := CuesFromAlignment(alignment)
	if err != nil {
		return entities.LipSync{}, err
	}
	if len(cues) == 0 {
		return entities.LipSync{}, fmt.Errorf("no mouth cues produced")
	}

	return entities.LipSync{
		Metadata: entities.LipSyncMetadata{
			Duration: round2(alignment.Duration()),
		},
		MouthCues: cues,
	}, nil
}

// CuesFromAlignment converts character timings to a contiguous cue track
// starting at 0 and ending at the alignment's duration
func CuesFromAlignment(a *repositories.Alignment) ([]entities.MouthCue, error) {
	if a == nil {
		return nil, fmt.Errorf("alignment is nil")
	}
	n := len(a.Characters)
	if len(a.StartTimes) != n || len(a.EndTimes) != n {
		return nil, fmt.Errorf("alignment length mismatch: %d characters, %d starts, %d ends",
			n, len(a.StartTimes), len(a.EndTimes))
	}

	var b cueBuilder
	for i := 0; i < n; {
		shape, span := shapeAt(a.Characters, i)
		b.add(a.StartTimes[i], a.EndTimes[i+span-1], shape)
		i += span
	}
	return b.finish(a.Duration()), nil
}

// EstimateAlignment assigns rough per-character timings to text
func EstimateAlignment(text string) *repositories.Alignment {
	text = strings.TrimSpace(text)
	a := &repositories.Alignment{}

	t := leadInSeconds
	for _, r := range text {
		d := consonantSeconds
		switch {
		case unicode.IsSpace(r):
			d = spaceSeconds
		case strings.ContainsRune(".!?", r):
			d = sentenceSeconds
		case strings.ContainsRune(",;:", r):
			d = clauseSeconds
		case strings.ContainsRune("aeiouAEIOU", r):
			d = vowelSeconds
		case strings.ContainsRune("szfvSZFV", r):
			d = fricativeSeconds
		}

		a.Characters = append(a.Characters, string(r))
		a.StartTimes = append(a.StartTimes, t)
		t += d
		a.EndTimes = append(a.EndTimes, t)
	}
	return a
}
