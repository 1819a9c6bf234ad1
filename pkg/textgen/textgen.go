// Package textgen talks to an optional text-generation backend.
package textgen

import (
	"context"
	"errors"
)

// ErrUnavailable is returned when no backend is configured.
var ErrUnavailable = errors.New("text generation backend not configured")

// Generator produces free text for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Model() string
	Available() bool
}

// Disabled is the Generator used when no backend is configured.
type Disabled struct{}

// Generate implements Generator.
func (Disabled) Generate(context.Context, string) (string, error) {
	return "", ErrUnavailable
}

// Model implements Generator.
func (Disabled) Model() string { return "" }

// Available implements Generator.
func (Disabled) Available() bool { return false }
