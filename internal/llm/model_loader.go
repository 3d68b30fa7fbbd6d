package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// ModelLoader warms a model on a llama.cpp router server via /models/load so
// the first categorization does not pay the load time inside its timeout.
type ModelLoader struct {
	baseURL      string
	client       *http.Client
	pollInterval time.Duration
	maxAttempts  int
}

// NewModelLoader creates a new model loader.
func NewModelLoader(baseURL string) *ModelLoader {
	return &ModelLoader{
		baseURL:      baseURL,
		client:       newHTTPClient(),
		pollInterval: time.Second,
		maxAttempts:  30,
	}
}

// LoadModelRequest represents the request payload for loading a model.
type LoadModelRequest struct {
	Model     string   `json:"model"`
	ExtraArgs []string `json:"extra_args,omitempty"`
}

// LoadModelResponse represents the response from the load model endpoint.
type LoadModelResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// ModelStatus represents the status of a model from the /models endpoint.
type ModelStatus struct {
	ID      string `json:"id"`
	InCache bool   `json:"in_cache"`
	Status  struct {
		Value    string `json:"value"`
		ExitCode *int   `json:"exit_code,omitempty"`
		Failed   *bool  `json:"failed,omitempty"`
	} `json:"status"`
}

// ModelsResponse represents the response from the /models endpoint.
type ModelsResponse struct {
	Data []ModelStatus `json:"data"`
}

// status returns the entry for modelName, or nil when the server does not list it.
func (ml *ModelLoader) status(ctx context.Context, modelName string) (*ModelStatus, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ml.baseURL+"/models", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create status request: %w", err)
	}

	resp, err := ml.client.Do(req)
	if err != nil {
		return nil, classifyTransportError(err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("bad status %d: %s", resp.StatusCode, string(raw))
	}

	var models ModelsResponse
	if err := json.NewDecoder(resp.Body).Decode(&models); err != nil {
		return nil, fmt.Errorf("failed to decode models response: %w", err)
	}
	for i := range models.Data {
		if models.Data[i].ID == modelName {
			return &models.Data[i], nil
		}
	}
	return nil, nil
}

// IsModelLoaded checks if a model is already loaded (in cache) in the llama.cpp server.
func (ml *ModelLoader) IsModelLoaded(ctx context.Context, modelName string) (bool, error) {
	st, err := ml.status(ctx, modelName)
	if err != nil {
		return false, err
	}
	return st != nil && st.InCache, nil
}

// LoadModel loads a model unless it is already cached, then polls /models
// until the server reports it loaded or failed.
func (ml *ModelLoader) LoadModel(ctx context.Context, modelName string, extraArgs []string) error {
	loaded, err := ml.IsModelLoaded(ctx, modelName)
	if err == nil && loaded {
		slog.DebugContext(ctx, "Model already loaded", "model", modelName)
		return nil
	}

	body, err := json.Marshal(LoadModelRequest{Model: modelName, ExtraArgs: extraArgs})
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, ml.baseURL+"/models/load", bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := ml.client.Do(req)
	if err != nil {
		return classifyTransportError(err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("bad status %d: %s", resp.StatusCode, string(raw))
	}

	var loadResp LoadModelResponse
	if err := json.NewDecoder(resp.Body).Decode(&loadResp); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	if !loadResp.Success {
		return fmt.Errorf("model load failed: %s", loadResp.Error)
	}

	// /models/load returns before loading finishes, and loading may still fail.
	for i := 0; i < ml.maxAttempts; i++ {
		st, err := ml.status(ctx, modelName)
		if err == nil && st != nil {
			if st.InCache {
				slog.InfoContext(ctx, "Model loaded", "model", modelName)
				return nil
			}
			if st.Status.Failed != nil && *st.Status.Failed {
				exitCode := 0
				if st.Status.ExitCode != nil {
					exitCode = *st.Status.ExitCode
				}
				return fmt.Errorf("model load failed with exit code %d", exitCode)
			}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(ml.pollInterval):
		}
	}

	return fmt.Errorf("model did not load within timeout period")
}
