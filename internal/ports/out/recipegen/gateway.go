package recipegen

import (
	"context"
	"errors"
)

// Result is a generated recipe with the token cost reported by the model.
type Result struct {
	Body       string
	TokensUsed int
}

// Gateway is the external recipe-generation service (a hosted language model).
// Every call costs money; admission control happens before this port is
// reached.
type Gateway interface {
	Generate(ctx context.Context, ingredients string) (Result, error)
}

// ErrGenerationFailed indicates the gateway call did not complete.
var ErrGenerationFailed = errors.New("recipe generation failed")
