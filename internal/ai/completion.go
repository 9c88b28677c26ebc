package ai

import (
	"context"
	"errors"
	"strings"
)

var (
	// ErrEmptyCompletion is reported when the provider answered with blank text.
	ErrEmptyCompletion = errors.New("provider returned empty completion")
	// ErrProviderDisabled is reported when no provider is configured.
	ErrProviderDisabled = errors.New("generative provider is disabled")
)

// Generator is a generative-text provider: a system instruction and a user
// message in, text out.
type Generator interface {
	GenerateContent(ctx context.Context, systemInstruction, message string) (string, error)
}

// Completion is the outcome of a single provider call. Exactly one of Text and
// Err is meaningful: Err is nil only when Text is non-blank.
type Completion struct {
	Text string
	Err  error
}

// OK reports whether the provider produced usable text.
func (c Completion) OK() bool {
	return c.Err == nil
}

// Complete calls the generator and folds thrown errors and blank answers into
// a failed Completion.
func Complete(ctx context.Context, gen Generator, systemInstruction, message string) Completion {
	if gen == nil {
		return Completion{Err: ErrProviderDisabled}
	}

	text, err := gen.GenerateContent(ctx, systemInstruction, message)
	if err != nil {
		return Completion{Err: err}
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return Completion{Err: ErrEmptyCompletion}
	}

	return Completion{Text: text}
}
