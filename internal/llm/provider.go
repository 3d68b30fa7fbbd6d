package llm

import (
	"context"
	"fmt"
	"strings"
)

// Provider is the model contract used by categorization and the consistency pass.
type Provider interface {
	// CategorizeFile returns a "Category : Subcategory" line for one item.
	CategorizeFile(ctx context.Context, name, path string, isDir bool, hints string) (string, error)
	// CompletePrompt returns the raw reply to a prompt.
	CompletePrompt(ctx context.Context, prompt string, maxTokens int) (string, error)
	// IsLocal reports whether the model runs on this machine.
	IsLocal() bool
}

// Provider kinds.
const (
	KindLocal     = "local"
	KindCustom    = "custom"
	KindOpenAI    = "openai"
	KindAnthropic = "anthropic"
)

// ProviderConfig selects and configures a Provider.
type ProviderConfig struct {
	Kind    string
	BaseURL string
	Model   string
	APIKey  string
}

// New builds the provider for cfg.Kind.
func New(cfg ProviderConfig) (Provider, error) {
	switch strings.ToLower(cfg.Kind) {
	case KindLocal, "":
		return NewClient(cfg.BaseURL, cfg.APIKey, cfg.Model), nil
	case KindCustom:
		if cfg.BaseURL == "" {
			return nil, fmt.Errorf("custom provider requires a base URL")
		}
		return NewCustomClient(cfg.BaseURL, cfg.APIKey, cfg.Model), nil
	case KindOpenAI:
		return NewOpenAIProvider(cfg.APIKey, cfg.Model, cfg.BaseURL), nil
	case KindAnthropic:
		return NewAnthropicProvider(cfg.APIKey, cfg.Model, cfg.BaseURL), nil
	default:
		return nil, fmt.Errorf("unknown provider kind %q", cfg.Kind)
	}
}
