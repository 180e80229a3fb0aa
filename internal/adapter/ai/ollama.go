package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/stackmentor/stackmentor/internal/domain"
	"github.com/stackmentor/stackmentor/internal/port"
)

// OllamaConfig holds the configuration for the Ollama REST backend.
type OllamaConfig struct {
	BaseURL    string // e.g. http://localhost:11434 or https://api.ollama.com
	EmbedModel string // e.g. bge-m3
	Token      string // Bearer token for Ollama Cloud (empty = no auth)
}

// OllamaProvider implements port.Embedder and port.Generator using the
// Ollama REST API. A text-only backend: Generate never returns images.
type OllamaProvider struct {
	cfg        OllamaConfig
	httpClient *http.Client
}

// NewOllamaProvider creates an Ollama-backed AI provider.
func NewOllamaProvider(cfg OllamaConfig) *OllamaProvider {
	return &OllamaProvider{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 120 * time.Second},
	}
}

// EmbedModel returns the embedding model identifier.
func (o *OllamaProvider) EmbedModel() string {
	return o.cfg.EmbedModel
}

// Embed generates a vector embedding for the given text.
func (o *OllamaProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	payload := map[string]interface{}{
		"model": o.cfg.EmbedModel,
		"input": text,
	}

	body, err := o.post(ctx, "/api/embed", payload)
	if err != nil {
		return nil, &port.EmbeddingError{Provider: "ollama", Err: err}
	}

	var resp struct {
		Embeddings [][]float32 `json:"embeddings"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &port.EmbeddingError{Provider: "ollama", Err: fmt.Errorf("decode: %w", err)}
	}

	if len(resp.Embeddings) == 0 {
		return nil, &port.EmbeddingError{Provider: "ollama", Err: fmt.Errorf("empty response")}
	}

	return resp.Embeddings[0], nil
}

// Generate runs one chat completion against the named model.
func (o *OllamaProvider) Generate(ctx context.Context, model, prompt string) (*domain.GenerationResult, error) {
	payload := map[string]interface{}{
		"model": model,
		"messages": []map[string]string{
			{"role": "user", "content": prompt},
		},
		"stream": false,
	}

	body, err := o.post(ctx, "/api/chat", payload)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("ollama chat decode: %w", err)
	}

	if resp.Message.Content == "" {
		return nil, fmt.Errorf("ollama chat: empty response")
	}

	return &domain.GenerationResult{Text: resp.Message.Content, Model: model}, nil
}

// post is a helper for POST requests to the Ollama endpoint (with
// optional bearer token).
func (o *OllamaProvider) post(ctx context.Context, path string, payload interface{}) ([]byte, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.cfg.BaseURL+path, bytes.NewReader(payloadBytes))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if o.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+o.cfg.Token)
	}

	resp, err := o.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, &port.ProviderError{
			Provider:   "ollama",
			StatusCode: resp.StatusCode,
			Message:    string(body),
		}
	}

	return io.ReadAll(resp.Body)
}
