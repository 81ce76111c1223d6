package usecase

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io/fs"
	"path"

	"github.com/satriahrh/arunika/avatar/domain/entities"
)

// CannedLine is a pre-recorded utterance stored as audios/<Clip>.{wav,json}
type CannedLine struct {
	Clip      string
	Utterance entities.Utterance
}

// CannedLines lists every pre-recorded utterance, intro first
func CannedLines() []CannedLine {
	return append(append([]CannedLine(nil), introLines...), missingCredentialsLines...)
}

var introLines = []CannedLine{
	{"intro_0", entities.Utterance{
		Text:             "Hey there... How was your day?",
		FacialExpression: entities.ExpressionSmile,
		Animation:        entities.AnimationTalkingOne,
	}},
	{"intro_1", entities.Utterance{
		Text:             "I'm Jack, your personal AI assistant. I'm here to help you with anything you need.",
		FacialExpression: entities.ExpressionSmile,
		Animation:        entities.AnimationTalkingTwo,
	}},
}

var missingCredentialsLines = []CannedLine{
	{"api_0", entities.Utterance{
		Text:             "Please my friend, don't forget to add your API keys!",
		FacialExpression: entities.ExpressionAngry,
		Animation:        entities.AnimationTalkingThree,
	}},
	{"api_1", entities.Utterance{
		Text:             "You don't want to ruin Jack with a crazy ChatGPT and ElevenLabs bill, right?",
		FacialExpression: entities.ExpressionSmile,
		Animation:        entities.AnimationAngry,
	}},
}

// DefaultResponses are the canned, already enriched replies sent instead of
// a generated one
type DefaultResponses struct {
	Intro              []entities.EnrichedUtterance
	MissingCredentials []entities.EnrichedUtterance
}

// LoadDefaultResponses reads the canned clips and lip-sync tracks from fsys,
// which holds an audios/ directory
func LoadDefaultResponses(fsys fs.FS) (*DefaultResponses, error) {
	intro, err := loadCanned(fsys, introLines)
	if err != nil {
		return nil, err
	}
	missing, err := loadCanned(fsys, missingCredentialsLines)
	if err != nil {
		return nil, err
	}
	return &DefaultResponses{Intro: intro, MissingCredentials: missing}, nil
}

func loadCanned(fsys fs.FS, lines []CannedLine) ([]entities.EnrichedUtterance, error) {
	out := make([]entities.EnrichedUtterance, 0, len(lines))
	for _, line := range lines {
		wav, err := fs.ReadFile(fsys, path.Join("audios", line.Clip+".wav"))
		if err != nil {
			return nil, fmt.Errorf("failed to read canned audio %s: %w", line.Clip, err)
		}
		if len(wav) == 0 {
			return nil, fmt.Errorf("canned audio %s is empty", line.Clip)
		}

		raw, err := fs.ReadFile(fsys, path.Join("audios", line.Clip+".json"))
		if err != nil {
			return nil, fmt.Errorf("failed to read canned lip-sync %s: %w", line.Clip, err)
		}
		var lipSync entities.LipSync
		if err := json.Unmarshal(raw, &lipSync); err != nil {
			return nil, fmt.Errorf("failed to decode canned lip-sync %s: %w", line.Clip, err)
		}
		if lipSync.Empty() {
			return nil, fmt.Errorf("canned lip-sync %s has no mouth cues", line.Clip)
		}

		out = append(out, entities.EnrichedUtterance{
			Utterance: line.Utterance,
			Audio:     base64.StdEncoding.EncodeToString(wav),
			LipSync:   lipSync,
		})
	}
	return out, nil
}
