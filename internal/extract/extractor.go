// Package extract asks a language model to pull structured expense entries
// out of free-form transcript text.
package extract

import (
	"context"
	"errors"

	"vittrack/internal/core"
)

// ErrInvalidResponse marks an extraction payload that could not be parsed
// into the expected shape. The wrapping error carries the specific reason.
var ErrInvalidResponse = errors.New("invalid extraction response")

// Extractor produces candidate expenses from a transcript. Implementations
// are stateless per request and safe for concurrent use.
type Extractor interface {
	Extract(ctx context.Context, transcript string, userID int64) ([]core.CandidateExpense, error)
}
