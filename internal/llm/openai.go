package llm

import (
	"context"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIProvider categorizes through the OpenAI chat completions API.
type OpenAIProvider struct {
	client *openai.Client
	model  string
}

// NewOpenAIProvider creates an OpenAI provider. baseURL overrides the API
// endpoint when non-empty (Azure proxies, gateways).
func NewOpenAIProvider(apiKey, model, baseURL string) *OpenAIProvider {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	cfg.HTTPClient = newHTTPClient()
	return &OpenAIProvider{client: openai.NewClientWithConfig(cfg), model: model}
}

func (p *OpenAIProvider) complete(ctx context.Context, system, user string, maxTokens int) (string, error) {
	messages := make([]openai.ChatCompletionMessage, 0, 2)
	if system != "" {
		messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: system})
	}
	messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: user})

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       p.model,
		Messages:    messages,
		MaxTokens:   maxTokens,
		Temperature: 0.2,
	})
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			return "", fmt.Errorf("openai request failed: %w", err)
		}
		return "", classifyTransportError(err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices returned")
	}
	return resp.Choices[0].Message.Content, nil
}

// CategorizeFile implements Provider.
func (p *OpenAIProvider) CategorizeFile(ctx context.Context, name, path string, isDir bool, hints string) (string, error) {
	reply, err := p.complete(ctx, CategorizationSystemPrompt, BuildCategorizationPrompt(name, path, isDir, hints), CategorizationMaxTokens)
	if err != nil {
		return "", err
	}
	return SanitizeCategoryLine(reply), nil
}

// CompletePrompt implements Provider.
func (p *OpenAIProvider) CompletePrompt(ctx context.Context, prompt string, maxTokens int) (string, error) {
	return p.complete(ctx, "", prompt, completionBudget(maxTokens))
}

// IsLocal implements Provider.
func (p *OpenAIProvider) IsLocal() bool { return false }
