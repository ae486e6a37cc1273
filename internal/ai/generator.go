// Package ai holds the text-generation abstraction used for insights and
// process generation, plus helpers for coaxing JSON out of model output.
package ai

import (
	"context"
	"errors"
)

// ErrNotConfigured is returned by Disabled for every call.
var ErrNotConfigured = errors.New("text generator not configured")

// Generator turns a prompt into model text.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Name() string
}

// Disabled is the Generator used when no provider is configured. Callers
// fall back to their heuristic answers.
type Disabled struct{}

func (Disabled) Generate(context.Context, string) (string, error) {
	return "", ErrNotConfigured
}

func (Disabled) Name() string { return "disabled" }
