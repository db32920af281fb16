package extraction

import (
	"context"
	"log/slog"

	"github.com/lehigh-university-libraries/invoice-extractor/internal/providers"
)

// Client turns an invoice document into a Result using a model provider.
// A Client is created once and shared by all requests.
type Client struct {
	provider providers.Provider
}

// NewClient returns a Client backed by the given provider
func NewClient(provider providers.Provider) *Client {
	return &Client{provider: provider}
}

// Provider returns the name of the backing provider
func (c *Client) Provider() string {
	return c.provider.Name()
}

// Extract sends the document and instructions to the model and normalizes the
// answer. Every failure is returned as a *ModelInvocationError.
func (c *Client) Extract(ctx context.Context, document []byte, contentType, instructions string) (*Result, error) {
	slog.Info("Sending request to model", "provider", c.provider.Name(), "mime_type", contentType, "bytes", len(document))

	text, err := c.provider.GenerateContent(ctx, providers.Document{Data: document, MIMEType: contentType}, instructions)
	if err != nil {
		return nil, c.fail(err)
	}

	slog.Info("Received response from model", "provider", c.provider.Name(), "length", len(text))

	result, err := Normalize(text)
	if err != nil {
		return nil, c.fail(err)
	}

	if err := ValidateSchema(result); err != nil {
		slog.Warn("Model response does not match invoice schema", "provider", c.provider.Name(), "err", err)
	}

	return result, nil
}

func (c *Client) fail(err error) error {
	slog.Error("Model extraction error", "provider", c.provider.Name(), "err", err)
	return newModelInvocationError(err)
}
