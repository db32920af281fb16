package gemini

import (
	"context"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"github.com/lehigh-university-libraries/invoice-extractor/internal/providers"
	"google.golang.org/api/option"
)

// Gemini is a provider for the Google Gemini API
type Gemini struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

// New returns a new Gemini provider. The client and model are created once and
// reused for every request.
func New(ctx context.Context, apiKey string, config providers.Config) (*Gemini, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY environment variable not set")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create new gemini client: %w", err)
	}

	model := client.GenerativeModel(config.Model)
	model.SetTemperature(config.Temperature)
	model.SetTopP(config.TopP)
	model.SetMaxOutputTokens(config.MaxOutputTokens)

	return &Gemini{client: client, model: model}, nil
}

// Name returns the provider name
func (g *Gemini) Name() string {
	return "gemini"
}

// GenerateContent sends the document and prompt to Gemini
func (g *Gemini) GenerateContent(ctx context.Context, doc providers.Document, prompt string) (string, error) {
	resp, err := g.model.GenerateContent(ctx,
		genai.Blob{MIMEType: doc.MIMEType, Data: doc.Data},
		genai.Text(prompt),
	)
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	return candidateText(resp)
}

// Close releases the underlying client
func (g *Gemini) Close() error {
	return g.client.Close()
}

func candidateText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no candidates returned from Gemini")
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", fmt.Errorf("empty content returned from Gemini")
	}

	if txt, ok := candidate.Content.Parts[0].(genai.Text); ok {
		return string(txt), nil
	}

	return "", fmt.Errorf("unexpected response format from Gemini")
}
