package providers

import (
	"context"
	"strings"
)

const (
	// DefaultMaxOutputTokens bounds the cost and latency of a single extraction.
	DefaultMaxOutputTokens = 8192
	// DefaultTemperature keeps the model close to deterministic, schema-faithful output.
	DefaultTemperature = 0.1
	// DefaultTopP is paired with DefaultTemperature.
	DefaultTopP = 0.95
)

// Config represents the fixed generation settings of an LLM provider.
// A Config is built once at startup and never mutated.
type Config struct {
	Model           string
	Temperature     float32
	TopP            float32
	MaxOutputTokens int32
}

// DefaultConfig returns the generation settings used for invoice extraction
func DefaultConfig(model string) Config {
	return Config{
		Model:           model,
		Temperature:     DefaultTemperature,
		TopP:            DefaultTopP,
		MaxOutputTokens: DefaultMaxOutputTokens,
	}
}

// Document is the binary payload sent to the model alongside the prompt
type Document struct {
	Data     []byte
	MIMEType string
}

// IsImage reports whether the document carries an image/* MIME type
func (d Document) IsImage() bool {
	return strings.HasPrefix(strings.ToLower(d.MIMEType), "image/")
}

// Provider defines the interface for a multimodal LLM provider.
//
// GenerateContent sends a single-turn "user" request made of the document and
// the prompt text, and returns the text of the first candidate's first part.
// Implementations hold a long-lived handle and must be safe for concurrent use.
type Provider interface {
	Name() string
	GenerateContent(ctx context.Context, doc Document, prompt string) (string, error)
}
