package entities

import "fmt"

// FacialExpression is the face the avatar wears while speaking an utterance
type FacialExpression string

const (
	ExpressionNeutral   FacialExpression = "neutral"
	ExpressionSmile     FacialExpression = "smile"
	ExpressionSad       FacialExpression = "sad"
	ExpressionAngry     FacialExpression = "angry"
	ExpressionSurprised FacialExpression = "surprised"
	ExpressionFunnyFace FacialExpression = "funnyFace"
	ExpressionDefault   FacialExpression = "default"
)

// FacialExpressions lists every accepted expression in schema order
var FacialExpressions = []FacialExpression{
	ExpressionNeutral,
	ExpressionSmile,
	ExpressionSad,
	ExpressionAngry,
	ExpressionSurprised,
	ExpressionFunnyFace,
	ExpressionDefault,
}

// Valid reports whether e is one of the known expressions
func (e FacialExpression) Valid() bool {
	for _, known := range FacialExpressions {
		if e == known {
			return true
		}
	}
	return false
}

// Animation is the body animation clip played by the avatar
type Animation string

const (
	AnimationIdle                Animation = "Idle"
	AnimationTalkingOne          Animation = "TalkingOne"
	AnimationTalkingTwo          Animation = "TalkingTwo"
	AnimationTalkingThree        Animation = "TalkingThree"
	AnimationSadIdle             Animation = "SadIdle"
	AnimationDefeated            Animation = "Defeated"
	AnimationAngry               Animation = "Angry"
	AnimationSurprised           Animation = "Surprised"
	AnimationDismissingGesture   Animation = "DismissingGesture"
	AnimationThoughtfulHeadShake Animation = "ThoughtfulHeadShake"
)

// Animations lists every accepted animation in schema order
var Animations = []Animation{
	AnimationIdle,
	AnimationTalkingOne,
	AnimationTalkingTwo,
	AnimationTalkingThree,
	AnimationSadIdle,
	AnimationDefeated,
	AnimationAngry,
	AnimationSurprised,
	AnimationDismissingGesture,
	AnimationThoughtfulHeadShake,
}

// Valid reports whether a is one of the known animations
func (a Animation) Valid() bool {
	for _, known := range Animations {
		if a == known {
			return true
		}
	}
	return false
}

// Utterance is one line of dialogue before synthesis
type Utterance struct {
	Text             string           `json:"text"`
	FacialExpression FacialExpression `json:"facialExpression"`
	Animation        Animation        `json:"animation"`
}

// Validate checks the utterance against the reply schema
func (u Utterance) Validate() error {
	if u.Text == "" {
		return fmt.Errorf("text is required")
	}
	if !u.FacialExpression.Valid() {
		return fmt.Errorf("invalid facialExpression %q", u.FacialExpression)
	}
	if !u.Animation.Valid() {
		return fmt.Errorf("invalid animation %q", u.Animation)
	}
	return nil
}

// EnrichedUtterance is an utterance with its speech audio and lip-sync track
type EnrichedUtterance struct {
	Utterance
	Audio   string  `json:"audio"` // base64 encoded
	LipSync LipSync `json:"lipsync"`
}

// ReplyEnvelope is the result of one pipeline run.
// Messages is nil exactly when DefaultSent is true; Defaults then holds the
// canned pair chosen by the gate.
type ReplyEnvelope struct {
	Messages    []EnrichedUtterance `json:"messages"`
	DefaultSent bool                `json:"defaultSent"`
	Defaults    []EnrichedUtterance `json:"-"`
}
