package usecase

import (
	"slices"
	"strings"

	"github.com/satriahrh/arunika/avatar/domain/entities"
	"github.com/satriahrh/arunika/avatar/internal/config"
)

// GateReason says why a canned reply was chosen
type GateReason string

const (
	ReasonEmptyInput         GateReason = "empty_input"
	ReasonMissingCredentials GateReason = "missing_credentials"
)

// GateDecision is the outcome of the default-response gate
type GateDecision struct {
	Triggered bool
	Reason    GateReason
	Messages  []entities.EnrichedUtterance
}

// DefaultResponseGate short-circuits the pipeline with a canned reply when
// there is nothing to answer or no credentials to answer with
type DefaultResponseGate struct {
	credentials config.Credentials
	defaults    *DefaultResponses
}

func NewDefaultResponseGate(credentials config.Credentials, defaults *DefaultResponses) *DefaultResponseGate {
	return &DefaultResponseGate{credentials: credentials, defaults: defaults}
}

// Evaluate checks empty input first, then credentials
func (g *DefaultResponseGate) Evaluate(transcript string) GateDecision {
	if strings.TrimSpace(transcript) == "" {
		return GateDecision{
			Triggered: true,
			Reason:    ReasonEmptyInput,
			Messages:  slices.Clone(g.defaults.Intro),
		}
	}
	if !g.credentials.Complete() {
		return g.MissingCredentials()
	}
	return GateDecision{}
}

// MissingCredentials is the decision used when no transcript can be
// produced for lack of keys
func (g *DefaultResponseGate) MissingCredentials() GateDecision {
	return GateDecision{
		Triggered: true,
		Reason:    ReasonMissingCredentials,
		Messages:  slices.Clone(g.defaults.MissingCredentials),
	}
}
