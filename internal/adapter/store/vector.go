package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/stackmentor/stackmentor/internal/domain"
	"github.com/stackmentor/stackmentor/internal/port"
)

// VectorStore handles pgvector-specific operations for embeddings.
// It stays a dumb primitive: ordered by cosine distance, bounded by
// limit, no threshold filtering of its own.
type VectorStore struct {
	store     *PostgresStore
	dimension int
}

// NewVectorStore creates a vector store backed by the given Postgres
// store, enforcing the embedding provider's fixed dimension.
func NewVectorStore(store *PostgresStore, dimension int) *VectorStore {
	return &VectorStore{store: store, dimension: dimension}
}

// embeddingRow is the named-parameter shape for embedding writes. The
// vector travels as its pgvector text form.
type embeddingRow struct {
	ContentType domain.ContentType `db:"content_type"`
	ContentID   string             `db:"content_id"`
	RawText     string             `db:"raw_text"`
	Vector      string             `db:"vector"`
}

// Upsert persists an embedding record, idempotent by
// (content_type, content_id). Re-ingestion overwrites in place.
func (v *VectorStore) Upsert(ctx context.Context, rec *domain.EmbeddingRecord) error {
	if !rec.ContentType.Valid() {
		return &port.StoreError{Op: "upsert", Err: fmt.Errorf("invalid content type %q", rec.ContentType)}
	}
	if len(rec.Vector) != v.dimension {
		return &port.StoreError{Op: "upsert", Err: fmt.Errorf("%w: got %d, want %d", port.ErrInvalidDimension, len(rec.Vector), v.dimension)}
	}

	query := `INSERT INTO embeddings (content_type, content_id, raw_text, vector, updated_at)
	          VALUES (:content_type, :content_id, :raw_text, CAST(:vector AS vector), NOW())
	          ON CONFLICT (content_type, content_id) DO UPDATE SET
	              raw_text = EXCLUDED.raw_text,
	              vector = EXCLUDED.vector,
	              updated_at = NOW()`

	_, err := v.store.db.NamedExecContext(ctx, query, embeddingRow{
		ContentType: rec.ContentType,
		ContentID:   rec.ContentID,
		RawText:     rec.RawText,
		Vector:      vectorToString(rec.Vector),
	})
	if err != nil {
		return &port.StoreError{Op: "upsert", Err: err}
	}
	return nil
}

// Query performs a cosine similarity search over one content type,
// returning the top-limit rows ordered descending by similarity. Ties
// break on content_id so ordering is stable.
func (v *VectorStore) Query(ctx context.Context, contentType domain.ContentType, vector []float32, limit int) ([]domain.VectorMatch, error) {
	if len(vector) != v.dimension {
		return nil, &port.StoreError{Op: "query", Err: fmt.Errorf("%w: got %d, want %d", port.ErrInvalidDimension, len(vector), v.dimension)}
	}

	vectorStr := vectorToString(vector)
	query := `SELECT content_id, raw_text, 1 - (vector <=> $1::vector) AS similarity
	          FROM embeddings
	          WHERE content_type = $2
	          ORDER BY vector <=> $1::vector, content_id
	          LIMIT $3`

	var results []domain.VectorMatch
	if err := v.store.db.SelectContext(ctx, &results, query, vectorStr, contentType, limit); err != nil {
		return nil, &port.StoreError{Op: "query", Err: err}
	}
	return results, nil
}

// vectorToString converts a float32 slice to pgvector string format:
// [0.1,0.2,0.3].
func vectorToString(v []float32) string {
	parts := make([]string, len(v))
	for i, val := range v {
		parts[i] = fmt.Sprintf("%g", val)
	}
	return "[" + strings.Join(parts, ",") + "]"
}
