// Package llm turns a free-text prompt into location and line records by
// calling a generative model with function declarations.
package llm

import (
	"context"

	"github.com/pkordes/dayplanner/internal/domain"
)

// Client returns the records the model produced for prompt, in the order the
// model emitted them. A response without any function call yields an empty,
// non-nil slice and no error.
type Client interface {
	Generate(ctx context.Context, prompt string) ([]domain.Record, error)
}
