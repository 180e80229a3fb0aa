package domain

import "time"

// ContentType partitions the similarity space. Matches never cross
// types within a single query.
type ContentType string

const (
	ContentTypeQuestion ContentType = "question"
	ContentTypeAnswer   ContentType = "answer"
)

// Valid reports whether the content type is one of the known values.
func (t ContentType) Valid() bool {
	return t == ContentTypeQuestion || t == ContentTypeAnswer
}

// EmbeddingRecord is a vectorized piece of content stored in pgvector.
// At most one record exists per (content_type, content_id) pair;
// re-ingestion upserts in place, never duplicates.
type EmbeddingRecord struct {
	ContentType ContentType `json:"content_type"`
	ContentID   string      `json:"content_id"`
	RawText     string      `json:"raw_text"`
	Vector      []float32   `json:"-"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// VectorMatch is a raw nearest-neighbor hit from the vector store,
// before threshold filtering and hydration.
type VectorMatch struct {
	ContentID  string  `json:"content_id" db:"content_id"`
	RawText    string  `json:"raw_text"   db:"raw_text"`
	Similarity float64 `json:"similarity" db:"similarity"`
}

// SimilarQuestion is returned by semantic search: a vector match
// hydrated with the owning question's display metadata.
type SimilarQuestion struct {
	QuestionRecord
	ContentID  string  `json:"content_id"`
	Similarity float64 `json:"similarity"`
}
