package port

import (
	"context"

	"github.com/stackmentor/stackmentor/internal/domain"
)

// Embedder abstracts the embedding model backend. Implementations can
// target Gemini, Ollama, or any compatible API.
type Embedder interface {
	// EmbedModel returns the identifier of the embedding model in use.
	EmbedModel() string

	// Embed generates a vector embedding for the given text. It does
	// not retry internally; retry policy belongs to callers that need
	// it.
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Generator abstracts the text/image generation backend.
type Generator interface {
	// Generate runs one completion against the named model. For
	// image-capable models any inline image parts in the response are
	// returned base64-encoded; none is not an error.
	Generate(ctx context.Context, model, prompt string) (*domain.GenerationResult, error)
}
