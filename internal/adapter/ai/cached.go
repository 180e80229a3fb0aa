package ai

import (
	"context"

	"github.com/stackmentor/stackmentor/internal/port"
)

// CachedEmbedder wraps an Embedder with the process-local cache. Only a
// cache miss reaches the backing provider. It adds no retry of its own.
type CachedEmbedder struct {
	inner port.Embedder
	cache *EmbeddingCache
}

// NewCachedEmbedder wraps the given embedder with the given cache.
func NewCachedEmbedder(inner port.Embedder, cache *EmbeddingCache) *CachedEmbedder {
	return &CachedEmbedder{inner: inner, cache: cache}
}

// EmbedModel returns the backing provider's embedding model identifier.
func (e *CachedEmbedder) EmbedModel() string {
	return e.inner.EmbedModel()
}

// Embed returns the cached vector when present, otherwise calls the
// backing provider and caches the result. The cache write after a
// cancelled request may still land; that is harmless and idempotent.
func (e *CachedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if vec, ok := e.cache.Get(text); ok {
		return vec, nil
	}

	vec, err := e.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	e.cache.Put(text, vec)
	return vec, nil
}
