package repositories

import (
	"context"

	"github.com/satriahrh/arunika/avatar/domain/entities"
)

// TextToSpeech abstracts voice synthesis services
type TextToSpeech interface {
	Synthesize(ctx context.Context, text string) (*Speech, error)
}

// Speech is synthesized audio with optional character timing
type Speech struct {
	Audio     []byte
	Format    string // mp3, wav, pcm
	Alignment *Alignment
}

// Alignment holds per-character timings in seconds, as returned by the
// synthesis engine
type Alignment struct {
	Characters []string  `json:"characters"`
	StartTimes []float64 `json:"character_start_times_seconds"`
	EndTimes   []float64 `json:"character_end_times_seconds"`
}

// Duration is the end time of the last aligned character
func (a *Alignment) Duration() float64 {
	if a == nil || len(a.EndTimes) == 0 {
		return 0
	}
	return a.EndTimes[len(a.EndTimes)-1]
}

// LipSyncer derives a mouth-shape track for synthesized speech
type LipSyncer interface {
	LipSync(ctx context.Context, speech *Speech, text string) (entities.LipSync, error)
}

// VoiceCatalog lists the voices offered by the synthesis engine
type VoiceCatalog interface {
	ListVoices(ctx context.Context) ([]map[string]interface{}, error)
}
