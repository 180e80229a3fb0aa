package service

import (
	"context"
	"sync"

	"github.com/stackmentor/stackmentor/internal/domain"
)

// fakeEmbedder returns a fixed vector, or a per-text error.
type fakeEmbedder struct {
	mu     sync.Mutex
	vector []float32
	err    error
	failOn map[string]error
	calls  []string
}

func (f *fakeEmbedder) EmbedModel() string { return "fake-embed" }

func (f *fakeEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, text)
	if err, ok := f.failOn[text]; ok {
		return nil, err
	}
	if f.err != nil {
		return nil, f.err
	}
	if f.vector != nil {
		return f.vector, nil
	}
	return []float32{1, 0, 0}, nil
}

// fakeVectorStore serves canned matches and records upserts.
type fakeVectorStore struct {
	mu       sync.Mutex
	matches  []domain.VectorMatch
	queryErr error
	upserts  []domain.EmbeddingRecord
	upsertFn func(rec *domain.EmbeddingRecord) error
}

func (f *fakeVectorStore) Upsert(_ context.Context, rec *domain.EmbeddingRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.upsertFn != nil {
		if err := f.upsertFn(rec); err != nil {
			return err
		}
	}
	f.upserts = append(f.upserts, *rec)
	return nil
}

func (f *fakeVectorStore) Query(_ context.Context, _ domain.ContentType, _ []float32, limit int) ([]domain.VectorMatch, error) {
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	if len(f.matches) > limit {
		return f.matches[:limit], nil
	}
	return f.matches, nil
}

// fakeQuestionReader hydrates from an in-memory map.
type fakeQuestionReader struct {
	byID       map[string]domain.QuestionRecord
	byAnswerID map[string]domain.QuestionRecord
	err        error
}

func (f *fakeQuestionReader) QuestionsByIDs(_ context.Context, ids []string) (map[string]domain.QuestionRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make(map[string]domain.QuestionRecord)
	for _, id := range ids {
		if rec, ok := f.byID[id]; ok {
			out[id] = rec
		}
	}
	return out, nil
}

func (f *fakeQuestionReader) QuestionsByAnswerIDs(_ context.Context, ids []string) (map[string]domain.QuestionRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make(map[string]domain.QuestionRecord)
	for _, id := range ids {
		if rec, ok := f.byAnswerID[id]; ok {
			out[id] = rec
		}
	}
	return out, nil
}

// scriptedGenerator plays back a per-model queue of outcomes and
// records the order of calls. A nil error yields a canned success.
type scriptedGenerator struct {
	mu      sync.Mutex
	script  map[string][]error
	text    string
	images  []string
	calls   []string
	prompts []string
}

func (g *scriptedGenerator) Generate(_ context.Context, model, prompt string) (*domain.GenerationResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls = append(g.calls, model)
	g.prompts = append(g.prompts, prompt)

	queue := g.script[model]
	var outcome error
	if len(queue) > 0 {
		outcome = queue[0]
		g.script[model] = queue[1:]
	}
	if outcome != nil {
		return nil, outcome
	}

	text := g.text
	if text == "" {
		text = "generated answer"
	}
	return &domain.GenerationResult{Text: text, Model: model, Images: g.images}, nil
}

// fakeAnswerWriter records persisted answers.
type fakeAnswerWriter struct {
	mu    sync.Mutex
	saved []*domain.AIAnswer
	err   error
}

func (f *fakeAnswerWriter) UpsertAIAnswer(_ context.Context, a *domain.AIAnswer) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.saved = append(f.saved, a)
	return nil
}

func questionRecord(id, title string, accepted string) domain.QuestionRecord {
	return domain.QuestionRecord{
		ID:             id,
		Title:          title,
		Tags:           []string{"go"},
		Category:       "backend",
		AnswerCount:    2,
		ViewCount:      40,
		AcceptedAnswer: accepted,
	}
}
