package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// AnthropicProvider categorizes through the Anthropic Messages API.
type AnthropicProvider struct {
	client anthropic.Client
	model  string
}

// NewAnthropicProvider creates an Anthropic provider.
func NewAnthropicProvider(apiKey, model, baseURL string) *AnthropicProvider {
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithHTTPClient(newHTTPClient()),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &AnthropicProvider{client: anthropic.NewClient(opts...), model: model}
}

func (p *AnthropicProvider) complete(ctx context.Context, system, user string, maxTokens int) (string, error) {
	params := anthropic.MessageNewParams{
		Model:     p.model,
		MaxTokens: int64(maxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(user)),
		},
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{
			{Text: system},
		}
	}

	resp, err := p.client.Messages.New(ctx, params)
	if err != nil {
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) {
			return "", fmt.Errorf("anthropic request failed: %w", err)
		}
		return "", classifyTransportError(err)
	}

	var b strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	if b.Len() == 0 {
		return "", fmt.Errorf("no text content returned")
	}
	return b.String(), nil
}

// CategorizeFile implements Provider.
func (p *AnthropicProvider) CategorizeFile(ctx context.Context, name, path string, isDir bool, hints string) (string, error) {
	reply, err := p.complete(ctx, CategorizationSystemPrompt, BuildCategorizationPrompt(name, path, isDir, hints), CategorizationMaxTokens)
	if err != nil {
		return "", err
	}
	return SanitizeCategoryLine(reply), nil
}

// CompletePrompt implements Provider.
func (p *AnthropicProvider) CompletePrompt(ctx context.Context, prompt string, maxTokens int) (string, error) {
	return p.complete(ctx, "", prompt, completionBudget(maxTokens))
}

// IsLocal implements Provider.
func (p *AnthropicProvider) IsLocal() bool { return false }
