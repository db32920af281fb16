package vertex

import (
	"context"
	"fmt"

	"cloud.google.com/go/vertexai/genai"
	"github.com/lehigh-university-libraries/invoice-extractor/internal/providers"
	"google.golang.org/api/option"
)

// Vertex is a provider for Gemini models served by Vertex AI.
// Credentials come from Application Default Credentials unless a
// credentials file is supplied.
type Vertex struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

// New returns a new Vertex AI provider for the given project and region
func New(ctx context.Context, project, location, credentialsFile string, config providers.Config) (*Vertex, error) {
	if project == "" {
		return nil, fmt.Errorf("GCLOUD_PROJECT environment variable not set")
	}
	if location == "" {
		return nil, fmt.Errorf("GCLOUD_LOCATION environment variable not set")
	}

	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	client, err := genai.NewClient(ctx, project, location, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create new vertex ai client: %w", err)
	}

	model := client.GenerativeModel(config.Model)
	model.SetTemperature(config.Temperature)
	model.SetTopP(config.TopP)
	model.SetMaxOutputTokens(config.MaxOutputTokens)

	return &Vertex{client: client, model: model}, nil
}

// Name returns the provider name
func (v *Vertex) Name() string {
	return "vertex"
}

// GenerateContent sends the document and prompt to the Vertex AI model
func (v *Vertex) GenerateContent(ctx context.Context, doc providers.Document, prompt string) (string, error) {
	resp, err := v.model.GenerateContent(ctx,
		genai.Blob{MIMEType: doc.MIMEType, Data: doc.Data},
		genai.Text(prompt),
	)
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	return candidateText(resp)
}

// Close releases the underlying client
func (v *Vertex) Close() error {
	return v.client.Close()
}

func candidateText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no candidates returned from Vertex AI")
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", fmt.Errorf("empty content returned from Vertex AI")
	}

	if txt, ok := candidate.Content.Parts[0].(genai.Text); ok {
		return string(txt), nil
	}

	return "", fmt.Errorf("unexpected response format from Vertex AI")
}
