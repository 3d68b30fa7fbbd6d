package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// Embedder turns taxonomy labels into vectors through an OpenAI-compatible
// /v1/embeddings endpoint (llama.cpp, Ollama or a hosted API).
type Embedder struct {
	client     *openai.Client
	model      string
	vectorSize int
}

// NewEmbeddingsClient creates an Embedder. baseURL is the server root without
// the /v1 suffix. Every vector must have vectorSize dimensions so it fits the
// index collection.
func NewEmbeddingsClient(baseURL, apiKey, model string, vectorSize int) *Embedder {
	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = strings.TrimRight(baseURL, "/") + "/v1"
	cfg.HTTPClient = newHTTPClient()
	return &Embedder{
		client:     openai.NewClientWithConfig(cfg),
		model:      model,
		vectorSize: vectorSize,
	}
}

// VectorSize is the dimension every returned vector has.
func (e *Embedder) VectorSize() int { return e.vectorSize }

// EmbedTexts returns one vector per label, in input order.
func (e *Embedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, fmt.Errorf("no labels to embed")
	}

	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequestStrings{
		Input:          texts,
		Model:          openai.EmbeddingModel(e.model),
		EncodingFormat: openai.EmbeddingEncodingFormatFloat,
	})
	if err != nil {
		var apiErr *openai.APIError
		var reqErr *openai.RequestError
		if errors.As(err, &apiErr) || errors.As(err, &reqErr) {
			return nil, fmt.Errorf("embeddings request failed: %w", err)
		}
		return nil, classifyTransportError(err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("expected %d embeddings, got %d", len(texts), len(resp.Data))
	}

	// Servers may answer out of order; Index ties each vector to its input.
	vectors := make([][]float32, len(texts))
	for _, d := range resp.Data {
		if d.Index < 0 || d.Index >= len(texts) || vectors[d.Index] != nil {
			return nil, fmt.Errorf("embedding index %d is out of range or repeated", d.Index)
		}
		if len(d.Embedding) != e.vectorSize {
			return nil, fmt.Errorf("embedding %d has size %d, expected %d", d.Index, len(d.Embedding), e.vectorSize)
		}
		vectors[d.Index] = d.Embedding
	}
	return vectors, nil
}
