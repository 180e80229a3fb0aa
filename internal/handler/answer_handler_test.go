package handler

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stackmentor/stackmentor/internal/domain"
	"github.com/stackmentor/stackmentor/internal/port"
	"github.com/stackmentor/stackmentor/internal/service"
)

type stubEmbedder struct{}

func (stubEmbedder) EmbedModel() string { return "stub" }
func (stubEmbedder) Embed(context.Context, string) ([]float32, error) {
	return []float32{1, 0, 0}, nil
}

type stubVectorStore struct{}

func (stubVectorStore) Upsert(context.Context, *domain.EmbeddingRecord) error { return nil }
func (stubVectorStore) Query(context.Context, domain.ContentType, []float32, int) ([]domain.VectorMatch, error) {
	return nil, nil
}

type stubReader struct{}

func (stubReader) QuestionsByIDs(context.Context, []string) (map[string]domain.QuestionRecord, error) {
	return map[string]domain.QuestionRecord{}, nil
}
func (stubReader) QuestionsByAnswerIDs(context.Context, []string) (map[string]domain.QuestionRecord, error) {
	return map[string]domain.QuestionRecord{}, nil
}

type stubWriter struct{}

func (stubWriter) UpsertAIAnswer(context.Context, *domain.AIAnswer) error { return nil }

// failingGenerator always fails with the configured status code.
type failingGenerator struct {
	status int
}

func (g failingGenerator) Generate(_ context.Context, model, _ string) (*domain.GenerationResult, error) {
	return nil, &port.ProviderError{Provider: "stub", Model: model, StatusCode: g.status, Message: "nope"}
}

func newTestApp(gen port.Generator) *fiber.App {
	search := service.NewSearchService(stubEmbedder{}, stubVectorStore{}, stubReader{}, 0.75)
	builder := service.NewContextBuilder(5, 500)
	cfg := service.GenerationConfig{
		TextModels:     []string{"model-a"},
		DiagramModels:  []string{"model-a"},
		MaxRetries:     0,
		OverloadedBase: time.Millisecond,
		RateLimitBase:  time.Millisecond,
		MaxBackoff:     time.Millisecond,
		SearchLimit:    5,
	}
	gs := service.NewGenerationService(gen, stubWriter{}, search, builder, cfg)

	app := fiber.New()
	NewAnswerHandler(gs).Register(app.Group("/api/v1"))
	return app
}

func postAnswer(t *testing.T, app *fiber.App) (int, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest("POST", "/api/v1/questions/q1/ai-answer",
		strings.NewReader(`{"title":"How do goroutines work?"}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp.StatusCode, body
}

type okGenerator struct{}

func (okGenerator) Generate(_ context.Context, model, _ string) (*domain.GenerationResult, error) {
	return &domain.GenerationResult{Text: "the answer", Model: model}, nil
}

func TestGenerateEndpointSuccess(t *testing.T) {
	status, body := postAnswer(t, newTestApp(okGenerator{}))

	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "the answer", body["answer"])
	assert.Equal(t, "model-a", body["model"])
	assert.Equal(t, "q1", body["question_id"])
}

func TestGenerateEndpointOverloadedMessage(t *testing.T) {
	status, body := postAnswer(t, newTestApp(failingGenerator{status: 503}))

	assert.Equal(t, fiber.StatusServiceUnavailable, status)
	assert.Contains(t, body["error"], "overloaded")
}

func TestGenerateEndpointQuotaMessage(t *testing.T) {
	status, body := postAnswer(t, newTestApp(failingGenerator{status: 429}))

	assert.Equal(t, fiber.StatusTooManyRequests, status)
	assert.Contains(t, body["error"], "quota")
}

func TestGenerateEndpointUnknownFailure(t *testing.T) {
	status, _ := postAnswer(t, newTestApp(failingGenerator{status: 400}))
	assert.Equal(t, fiber.StatusBadGateway, status)
}

func TestGenerateEndpointRequiresTitle(t *testing.T) {
	app := newTestApp(okGenerator{})
	req := httptest.NewRequest("POST", "/api/v1/questions/q1/ai-answer", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
