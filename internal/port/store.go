package port

import (
	"context"

	"github.com/stackmentor/stackmentor/internal/domain"
)

// VectorStore is the persistence boundary for embeddings: a dumb,
// reusable primitive. It orders by cosine distance and bounds by limit;
// threshold filtering happens in the caller.
type VectorStore interface {
	// Upsert stores an embedding, idempotent by (content_type, content_id).
	Upsert(ctx context.Context, rec *domain.EmbeddingRecord) error

	// Query returns the top-limit nearest neighbors of the given type,
	// ordered descending by similarity (1 - cosine distance).
	Query(ctx context.Context, contentType domain.ContentType, vector []float32, limit int) ([]domain.VectorMatch, error)
}

// QuestionReader hydrates display metadata for pipeline results.
// Read-only and batched; never one query per id.
type QuestionReader interface {
	// QuestionsByIDs returns records keyed by question id. Missing ids
	// are absent from the map, not an error.
	QuestionsByIDs(ctx context.Context, ids []string) (map[string]domain.QuestionRecord, error)

	// QuestionsByAnswerIDs returns, for each answer id, the record of
	// the question that owns it.
	QuestionsByAnswerIDs(ctx context.Context, answerIDs []string) (map[string]domain.QuestionRecord, error)
}

// AnswerWriter persists the final generation result, keyed uniquely by
// the owning question.
type AnswerWriter interface {
	UpsertAIAnswer(ctx context.Context, a *domain.AIAnswer) error
}
