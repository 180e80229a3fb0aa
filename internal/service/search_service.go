package service

import (
	"context"
	"log/slog"

	"github.com/stackmentor/stackmentor/internal/domain"
	"github.com/stackmentor/stackmentor/internal/port"
)

// SearchService performs threshold-filtered semantic search over the
// vector store. It is a best-effort enhancement: any embedding or store
// failure degrades to an empty result instead of failing the request.
type SearchService struct {
	embedder  port.Embedder
	vectors   port.VectorStore
	questions port.QuestionReader
	threshold float64
}

// NewSearchService creates a search service with the given relevance
// threshold. Candidates below the threshold are discarded: too low
// floods the generation prompt with irrelevant context, too high
// starves it.
func NewSearchService(embedder port.Embedder, vectors port.VectorStore, questions port.QuestionReader, threshold float64) *SearchService {
	return &SearchService{
		embedder:  embedder,
		vectors:   vectors,
		questions: questions,
		threshold: threshold,
	}
}

// FindSimilar embeds the text, retrieves the top-limit neighbors of the
// given content type, drops candidates below the threshold, and
// hydrates the survivors with the owning question's metadata in one
// batch. Results keep the store's descending-similarity order. On any
// failure it returns an empty list.
func (s *SearchService) FindSimilar(ctx context.Context, text string, contentType domain.ContentType, limit int) []domain.SimilarQuestion {
	queryVector, err := s.embedder.Embed(ctx, text)
	if err != nil {
		slog.Error("similarity search: embed failed", "error", err)
		return nil
	}

	candidates, err := s.vectors.Query(ctx, contentType, queryVector, limit)
	if err != nil {
		slog.Error("similarity search: vector query failed", "error", err)
		return nil
	}

	var kept []domain.VectorMatch
	for _, c := range candidates {
		if c.Similarity >= s.threshold {
			kept = append(kept, c)
		}
	}
	if len(kept) == 0 {
		return nil
	}

	ids := make([]string, len(kept))
	for i, c := range kept {
		ids[i] = c.ContentID
	}

	records, err := s.hydrate(ctx, contentType, ids)
	if err != nil {
		slog.Error("similarity search: hydration failed", "error", err)
		return nil
	}

	matches := make([]domain.SimilarQuestion, 0, len(kept))
	for _, c := range kept {
		rec, ok := records[c.ContentID]
		if !ok {
			// Vector row outlived its domain record; skip it.
			continue
		}
		matches = append(matches, domain.SimilarQuestion{
			QuestionRecord: rec,
			ContentID:      c.ContentID,
			Similarity:     c.Similarity,
		})
	}
	return matches
}

// hydrate batch-fetches display records for the matched content ids.
// Answer matches resolve to their owning question.
func (s *SearchService) hydrate(ctx context.Context, contentType domain.ContentType, ids []string) (map[string]domain.QuestionRecord, error) {
	if contentType == domain.ContentTypeAnswer {
		return s.questions.QuestionsByAnswerIDs(ctx, ids)
	}
	return s.questions.QuestionsByIDs(ctx, ids)
}
