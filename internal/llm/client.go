package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"syscall"
)

// ErrUnavailable reports that the model server could not be reached.
var ErrUnavailable = errors.New("llm provider unavailable")

// Client talks to an OpenAI-compatible chat completions endpoint such as a
// llama.cpp server. It serves both the local and custom provider kinds.
type Client struct {
	BaseURL string
	APIKey  string
	Model   string
	local   bool
	client  *http.Client
}

// NewClient creates a new LLM client for a local server.
func NewClient(baseURL, apiKey, model string) *Client {
	return &Client{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Model:   model,
		local:   true,
		client:  newHTTPClient(),
	}
}

// NewCustomClient creates a client for a user supplied remote endpoint.
func NewCustomClient(baseURL, apiKey, model string) *Client {
	c := NewClient(baseURL, apiKey, model)
	c.local = false
	return c
}

// newHTTPClient returns the client used for model servers. It has no
// overall timeout: callers bound each request through its context.
func newHTTPClient() *http.Client {
	return &http.Client{Transport: http.DefaultTransport}
}

// ChatRequest represents the request payload for chat completions.
type ChatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
	Temperature float32   `json:"temperature,omitempty"`
}

// ChatChoiceMessage represents the message in a chat choice.
type ChatChoiceMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatChoice represents a single choice in the chat response.
type ChatChoice struct {
	Index        int               `json:"index"`
	Message      ChatChoiceMessage `json:"message"`
	FinishReason string            `json:"finish_reason"`
}

// ChatResponse represents the response from the chat completions API.
type ChatResponse struct {
	ID      string       `json:"id"`
	Object  string       `json:"object"`
	Choices []ChatChoice `json:"choices"`
}

// Chat sends a single user message and returns the reply.
func (c *Client) Chat(ctx context.Context, message string) (string, error) {
	return c.ChatWithMessages(ctx, []Message{{Role: RoleUser, Content: message}}, ChatParams{})
}

// ChatWithMessages sends a full conversation to the chat completions API.
func (c *Client) ChatWithMessages(ctx context.Context, messages []Message, params ChatParams) (string, error) {
	endpoint := fmt.Sprintf("%s/v1/chat/completions", c.BaseURL)

	model := params.Model
	if model == "" {
		model = c.Model
	}
	payload := ChatRequest{
		Model:       model,
		Messages:    messages,
		MaxTokens:   params.MaxTokens,
		Temperature: params.Temperature,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewBuffer(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	if c.APIKey != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.APIKey))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", classifyTransportError(err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("bad status %d: %s", resp.StatusCode, string(raw))
	}

	var chatResp ChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("no choices returned")
	}

	return chatResp.Choices[0].Message.Content, nil
}

// CategorizeFile asks the model for a "Category : Subcategory" line.
func (c *Client) CategorizeFile(ctx context.Context, name, path string, isDir bool, hints string) (string, error) {
	reply, err := c.ChatWithMessages(ctx, []Message{
		{Role: RoleSystem, Content: CategorizationSystemPrompt},
		{Role: RoleUser, Content: BuildCategorizationPrompt(name, path, isDir, hints)},
	}, ChatParams{MaxTokens: CategorizationMaxTokens})
	if err != nil {
		return "", err
	}
	return SanitizeCategoryLine(reply), nil
}

// CompletePrompt sends a raw prompt and returns the reply text.
func (c *Client) CompletePrompt(ctx context.Context, prompt string, maxTokens int) (string, error) {
	return c.ChatWithMessages(ctx, []Message{{Role: RoleUser, Content: prompt}},
		ChatParams{MaxTokens: completionBudget(maxTokens)})
}

// IsLocal reports whether the client targets an on-device server.
func (c *Client) IsLocal() bool {
	return c.local
}

// classifyTransportError marks connection failures with ErrUnavailable so
// callers can tell "server down" from "server answered badly".
func classifyTransportError(err error) error {
	var opErr *net.OpError
	var dnsErr *net.DNSError
	if errors.As(err, &opErr) || errors.As(err, &dnsErr) || errors.Is(err, syscall.ECONNREFUSED) {
		if !errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("%w: %w", ErrUnavailable, err)
		}
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) && errors.Is(urlErr.Err, io.EOF) {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return fmt.Errorf("failed to send request: %w", err)
}
