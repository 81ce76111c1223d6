package repositories

import (
	"context"

	"github.com/satriahrh/arunika/avatar/domain/entities"
)

// ReplyGenerator produces the avatar's reply as ordered utterances.
// Output that does not match the reply schema fails with
// domain.ErrSchemaViolation.
type ReplyGenerator interface {
	Generate(ctx context.Context, question string) ([]entities.Utterance, error)
}
