// Package provider wraps the external AI services behind small interfaces so
// the services can walk a fallback chain without caring which vendor answered.
package provider

import "context"

// ImageKind selects the generation parameters for a request.
type ImageKind string

const (
	ImageKindSanctuary ImageKind = "sanctuary"
	ImageKindStory     ImageKind = "story"
)

// TextOptions tune a single completion request.
type TextOptions struct {
	MaxTokens   int
	Temperature float32
	TopP        float32
}

// TextProvider produces a completion for a prompt pair.
type TextProvider interface {
	Name() string
	Complete(ctx context.Context, systemPrompt, userPrompt string, opts TextOptions) (string, error)
}

// ImageProvider renders a prompt to an image and returns a URL or data URL.
type ImageProvider interface {
	Name() string
	Generate(ctx context.Context, prompt string, kind ImageKind) (string, error)
}
