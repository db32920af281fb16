package ollama

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

const DefaultURL = "http://localhost:11434"

// Ollama is a provider for a local Ollama server.
// Ollama only accepts images, so PDF documents are rejected.
type Ollama struct {
	url        string
	config     providers.Config
	httpClient *http.Client
}

// New returns a new Ollama provider
func New(ollamaURL string, config providers.Config) *Ollama {
	if ollamaURL == "" {
		ollamaURL = DefaultURL
	}
	return &Ollama{
		url:        strings.TrimSuffix(ollamaURL, "/"),
		config:     config,
		httpClient: &http.Client{},
	}
}

// Name returns the provider name
func (o *Ollama) Name() string {
	return "ollama"
}

// GenerateContent sends the image document and prompt to Ollama
func (o *Ollama) GenerateContent(ctx context.Context, doc providers.Document, prompt string) (string, error) {
	if !doc.IsImage() {
		return "", fmt.Errorf("ollama does not accept %s documents, send an image instead", doc.MIMEType)
	}

	requestBody, err := json.Marshal(map[string]interface{}{
		"model":  o.config.Model,
		"prompt": prompt,
		"images": []string{base64.StdEncoding.EncodeToString(doc.Data)},
		"stream": false,
		"format": "json",
		"options": map[string]interface{}{
			"temperature": o.config.Temperature,
			"top_p":       o.config.TopP,
			"num_predict": o.config.MaxOutputTokens,
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", o.url+"/api/generate", bytes.NewBuffer(requestBody))
	if err != nil {
		return "", fmt.Errorf("failed to create new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

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
		Response string `json:"response"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return "", fmt.Errorf("failed to decode response body: %w", err)
	}

	return response.Response, nil
}
