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

// GeminiConfig holds the configuration for the Gemini REST backend.
type GeminiConfig struct {
	BaseURL    string // e.g. https://generativelanguage.googleapis.com
	APIKey     string
	EmbedModel string // e.g. text-embedding-004
}

// GeminiProvider implements port.Embedder and port.Generator against
// the Gemini REST API. Generation models are chosen per call so the
// orchestrator can walk its fallback chain over one client.
type GeminiProvider struct {
	cfg        GeminiConfig
	httpClient *http.Client
}

// NewGeminiProvider creates a Gemini-backed AI provider.
func NewGeminiProvider(cfg GeminiConfig) *GeminiProvider {
	return &GeminiProvider{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 120 * time.Second},
	}
}

// EmbedModel returns the embedding model identifier.
func (g *GeminiProvider) EmbedModel() string {
	return g.cfg.EmbedModel
}

// Embed generates a vector embedding for the given text.
func (g *GeminiProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	payload := map[string]interface{}{
		"content": map[string]interface{}{
			"parts": []map[string]string{{"text": text}},
		},
	}

	body, err := g.post(ctx, g.cfg.EmbedModel, "embedContent", payload)
	if err != nil {
		return nil, &port.EmbeddingError{Provider: "gemini", Err: err}
	}

	var resp struct {
		Embedding struct {
			Values []float32 `json:"values"`
		} `json:"embedding"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &port.EmbeddingError{Provider: "gemini", Err: fmt.Errorf("decode: %w", err)}
	}

	if len(resp.Embedding.Values) == 0 {
		return nil, &port.EmbeddingError{Provider: "gemini", Err: fmt.Errorf("empty embedding")}
	}

	return resp.Embedding.Values, nil
}

// Generate runs one completion against the named model. Inline image
// parts (diagram-capable models) are collected base64-encoded.
func (g *GeminiProvider) Generate(ctx context.Context, model, prompt string) (*domain.GenerationResult, error) {
	payload := map[string]interface{}{
		"contents": []map[string]interface{}{
			{"parts": []map[string]string{{"text": prompt}}},
		},
	}

	body, err := g.post(ctx, model, "generateContent", payload)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text       string `json:"text"`
					InlineData *struct {
						MimeType string `json:"mimeType"`
						Data     string `json:"data"`
					} `json:"inlineData"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("gemini generate decode: %w", err)
	}

	if len(resp.Candidates) == 0 {
		return nil, fmt.Errorf("gemini generate: no candidates in response")
	}

	result := &domain.GenerationResult{Model: model}
	for _, part := range resp.Candidates[0].Content.Parts {
		if part.Text != "" {
			result.Text += part.Text
		}
		if part.InlineData != nil && part.InlineData.Data != "" {
			result.Images = append(result.Images, part.InlineData.Data)
		}
	}

	if result.Text == "" && len(result.Images) == 0 {
		return nil, fmt.Errorf("gemini generate: empty response")
	}

	return result, nil
}

// post is a helper for POST requests to a Gemini model endpoint.
func (g *GeminiProvider) post(ctx context.Context, model, method string, payload interface{}) ([]byte, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:%s", g.cfg.BaseURL, model, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payloadBytes))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", g.cfg.APIKey)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, &port.ProviderError{
			Provider:   "gemini",
			Model:      model,
			StatusCode: resp.StatusCode,
			Message:    string(body),
		}
	}

	return io.ReadAll(resp.Body)
}
