package cmd

import (
	"context"
	"fmt"

	"github.com/lehigh-university-libraries/invoice-extractor/internal/config"
	"github.com/lehigh-university-libraries/invoice-extractor/internal/gemini"
	"github.com/lehigh-university-libraries/invoice-extractor/internal/ollama"
	"github.com/lehigh-university-libraries/invoice-extractor/internal/openai"
	"github.com/lehigh-university-libraries/invoice-extractor/internal/providers"
	"github.com/lehigh-university-libraries/invoice-extractor/internal/vertex"
)

// newProvider builds the configured provider. The returned close func
// releases SDK clients and is never nil.
func newProvider(ctx context.Context, cfg *config.Config) (providers.Provider, func() error, error) {
	genConfig := providers.DefaultConfig(cfg.Model)
	noop := func() error { return nil }

	switch cfg.Provider {
	case config.ProviderVertex:
		p, err := vertex.New(ctx, cfg.Project, cfg.Location, cfg.CredentialsFile, genConfig)
		if err != nil {
			return nil, noop, err
		}
		return p, p.Close, nil
	case config.ProviderGemini:
		p, err := gemini.New(ctx, cfg.GeminiAPIKey, genConfig)
		if err != nil {
			return nil, noop, err
		}
		return p, p.Close, nil
	case config.ProviderOpenAI:
		p, err := openai.New(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, genConfig)
		if err != nil {
			return nil, noop, err
		}
		return p, noop, nil
	case config.ProviderOllama:
		return ollama.New(cfg.OllamaURL, genConfig), noop, nil
	default:
		return nil, noop, fmt.Errorf("unsupported provider: %s", cfg.Provider)
	}
}
