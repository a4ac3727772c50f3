// Package llm builds the chat model and embedder for the configured
// provider. Every supported provider speaks the OpenAI-compatible API, so
// one client covers them all.
package llm

import (
	"fmt"
	"log"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"foodflow/internal/candidates"
	"foodflow/internal/config"
)

// githubModelsBaseURL is the OpenAI-compatible endpoint for GitHub Models
const githubModelsBaseURL = "https://models.inference.ai.azure.com"

// New builds the chat model and embedder for cfg. Without an API key the
// chat model is nil and embeddings are computed locally: the service keeps
// running, candidate gathering degrades, and ingredients fall back to
// donation.
func New(cfg config.LLMConfig) (llms.Model, candidates.Embedder, error) {
	if cfg.APIKey == "" {
		log.Println("No API key configured; running with local embeddings and no chat model")
		return nil, candidates.HashEmbedder{Dim: 100}, nil
	}

	opts := []openai.Option{
		openai.WithModel(cfg.Model),
		openai.WithToken(cfg.APIKey),
		openai.WithEmbeddingModel(cfg.EmbeddingModel),
	}

	switch cfg.Provider {
	case "", "openai":
		if cfg.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
		}
	case "azure":
		if cfg.BaseURL == "" {
			return nil, nil, fmt.Errorf("azure provider requires base_url")
		}
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL), openai.WithAPIType(openai.APITypeAzure))
	case "github":
		opts = append(opts, openai.WithBaseURL(githubModelsBaseURL))
	default:
		return nil, nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}

	client, err := openai.New(opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create %s client: %w", providerName(cfg.Provider), err)
	}

	if cfg.Provider == "github" {
		// GitHub Models does not serve embeddings; fall back to local
		// vectors and keep the hosted chat model.
		return client, candidates.HashEmbedder{Dim: 100}, nil
	}

	embedder, err := embeddings.NewEmbedder(client)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create embedder: %w", err)
	}
	return client, embedder, nil
}

func providerName(p string) string {
	if p == "" {
		return "openai"
	}
	return p
}
