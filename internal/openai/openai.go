package openai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/lehigh-university-libraries/invoice-extractor/internal/providers"
)

const DefaultBaseURL = "https://api.openai.com/v1"

// OpenAI is a provider for OpenAI chat completions
type OpenAI struct {
	apiKey     string
	baseURL    string
	config     providers.Config
	httpClient *http.Client
}

// New returns a new OpenAI provider
func New(apiKey, baseURL string, config providers.Config) (*OpenAI, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY environment variable not set")
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	return &OpenAI{
		apiKey:     apiKey,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		config:     config,
		httpClient: &http.Client{},
	}, nil
}

// Name returns the provider name
func (o *OpenAI) Name() string {
	return "openai"
}

// GenerateContent sends the document and prompt as a single user message
func (o *OpenAI) GenerateContent(ctx context.Context, doc providers.Document, prompt string) (string, error) {
	requestBody, err := json.Marshal(map[string]interface{}{
		"model": o.config.Model,
		"messages": []map[string]interface{}{
			{
				"role": "user",
				"content": []map[string]interface{}{
					documentPart(doc),
					{
						"type": "text",
						"text": prompt,
					},
				},
			},
		},
		"max_tokens":  o.config.MaxOutputTokens,
		"temperature": o.config.Temperature,
		"top_p":       o.config.TopP,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", o.baseURL+"/chat/completions", bytes.NewBuffer(requestBody))
	if err != nil {
		return "", fmt.Errorf("failed to create new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+o.apiKey)

	resp, err := o.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("received non-200 status code: %d - %s", resp.StatusCode, string(body))
	}

	var response struct {
		Choices []struct {
			Message struct {
				Content *string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return "", fmt.Errorf("failed to decode response body: %w", err)
	}

	if len(response.Choices) == 0 {
		return "", fmt.Errorf("no choices returned from OpenAI")
	}
	if response.Choices[0].Message.Content == nil {
		return "", fmt.Errorf("empty content returned from OpenAI")
	}

	return *response.Choices[0].Message.Content, nil
}

// documentPart encodes the document as a data URL. Images go through
// image_url, everything else (PDF) as an inline file.
func documentPart(doc providers.Document) map[string]interface{} {
	dataURL := "data:" + doc.MIMEType + ";base64," + base64.StdEncoding.EncodeToString(doc.Data)

	if doc.IsImage() {
		return map[string]interface{}{
			"type": "image_url",
			"image_url": map[string]string{
				"url": dataURL,
			},
		}
	}

	return map[string]interface{}{
		"type": "file",
		"file": map[string]string{
			"filename":  "invoice" + extensionFor(doc.MIMEType),
			"file_data": dataURL,
		},
	}
}

func extensionFor(mimeType string) string {
	switch strings.ToLower(mimeType) {
	case "application/pdf":
		return ".pdf"
	default:
		return ""
	}
}
