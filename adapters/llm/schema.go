package llm

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/satriahrh/arunika/avatar/domain"
	"github.com/satriahrh/arunika/avatar/domain/entities"
)

type replyPayload struct {
	Messages []utterancePayload `json:"messages"`
}

// pointers tell a missing field from an empty one
type utterancePayload struct {
	Text             *string `json:"text"`
	FacialExpression *string `json:"facialExpression"`
	Animation        *string `json:"animation"`
}

// ParseReply decodes model output into utterances. Anything that is not
// exactly {messages: [{text, facialExpression, animation}]} with known enum
// values and at least one message fails with domain.ErrSchemaViolation.
func ParseReply(raw string) ([]entities.Utterance, error) {
	body := stripCodeFence(raw)
	if body == "" {
		return nil, fmt.Errorf("%w: empty reply", domain.ErrSchemaViolation)
	}

	dec := json.NewDecoder(strings.NewReader(body))
	dec.DisallowUnknownFields()

	var payload replyPayload
	if err := dec.Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSchemaViolation, err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("%w: trailing data after reply", domain.ErrSchemaViolation)
	}

	if len(payload.Messages) == 0 {
		return nil, fmt.Errorf("%w: no messages", domain.ErrSchemaViolation)
	}

	utterances := make([]entities.Utterance, 0, len(payload.Messages))
	for i, m := range payload.Messages {
		if m.Text == nil || m.FacialExpression == nil || m.Animation == nil {
			return nil, fmt.Errorf("%w: message %d is missing a field", domain.ErrSchemaViolation, i)
		}

		u := entities.Utterance{
			Text:             strings.TrimSpace(*m.Text),
			FacialExpression: entities.FacialExpression(*m.FacialExpression),
			Animation:        entities.Animation(*m.Animation),
		}
		if err := u.Validate(); err != nil {
			return nil, fmt.Errorf("%w: message %d: %v", domain.ErrSchemaViolation, i, err)
		}
		utterances = append(utterances, u)
	}

	return utterances, nil
}

// stripCodeFence removes a ```json ... ``` wrapper some models add
func stripCodeFence(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}

	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	} else {
		s = strings.TrimPrefix(s, "json")
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
