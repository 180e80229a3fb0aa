package store

import (
	"context"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/stackmentor/stackmentor/internal/domain"
)

// QuestionStore hydrates question display metadata for pipeline
// results and persists AI answers. Read paths are batched.
type QuestionStore struct {
	store *PostgresStore
}

// NewQuestionStore creates a question store over the given Postgres
// store.
func NewQuestionStore(store *PostgresStore) *QuestionStore {
	return &QuestionStore{store: store}
}

const questionColumns = `q.id, q.title, q.tags, q.category, q.answer_count, q.view_count,
	       COALESCE(a.content, '') AS accepted_answer, q.created_at`

// questionRow is the scan shape for question queries; tags come back
// as a Postgres text array.
type questionRow struct {
	ID             string         `db:"id"`
	Title          string         `db:"title"`
	Tags           pq.StringArray `db:"tags"`
	Category       string         `db:"category"`
	AnswerCount    int            `db:"answer_count"`
	ViewCount      int            `db:"view_count"`
	AcceptedAnswer string         `db:"accepted_answer"`
	CreatedAt      time.Time      `db:"created_at"`
}

func (r questionRow) record() domain.QuestionRecord {
	return domain.QuestionRecord{
		ID:             r.ID,
		Title:          r.Title,
		Tags:           r.Tags,
		Category:       r.Category,
		AnswerCount:    r.AnswerCount,
		ViewCount:      r.ViewCount,
		AcceptedAnswer: r.AcceptedAnswer,
		CreatedAt:      r.CreatedAt,
	}
}

// QuestionsByIDs returns records for the given question ids in one
// query, keyed by id. Missing ids are simply absent.
func (s *QuestionStore) QuestionsByIDs(ctx context.Context, ids []string) (map[string]domain.QuestionRecord, error) {
	if len(ids) == 0 {
		return map[string]domain.QuestionRecord{}, nil
	}

	query := `SELECT ` + questionColumns + `
	          FROM questions q
	          LEFT JOIN answers a ON a.id = q.accepted_answer_id
	          WHERE q.id = ANY($1)`

	var rows []questionRow
	if err := s.store.db.SelectContext(ctx, &rows, query, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("questions by ids: %w", err)
	}

	result := make(map[string]domain.QuestionRecord, len(rows))
	for _, r := range rows {
		result[r.ID] = r.record()
	}
	return result, nil
}

// QuestionsByAnswerIDs returns, for each answer id, the record of the
// owning question, keyed by answer id.
func (s *QuestionStore) QuestionsByAnswerIDs(ctx context.Context, answerIDs []string) (map[string]domain.QuestionRecord, error) {
	if len(answerIDs) == 0 {
		return map[string]domain.QuestionRecord{}, nil
	}

	query := `SELECT owner.id AS answer_id, ` + questionColumns + `
	          FROM answers owner
	          JOIN questions q ON q.id = owner.question_id
	          LEFT JOIN answers a ON a.id = q.accepted_answer_id
	          WHERE owner.id = ANY($1)`

	var rows []struct {
		AnswerID string `db:"answer_id"`
		questionRow
	}
	if err := s.store.db.SelectContext(ctx, &rows, query, pq.Array(answerIDs)); err != nil {
		return nil, fmt.Errorf("questions by answer ids: %w", err)
	}

	result := make(map[string]domain.QuestionRecord, len(rows))
	for _, r := range rows {
		result[r.AnswerID] = r.record()
	}
	return result, nil
}

// aiAnswerRow is the named-parameter shape for AI answer writes.
type aiAnswerRow struct {
	QuestionID string         `db:"question_id"`
	Answer     string         `db:"answer"`
	Model      string         `db:"model"`
	Images     pq.StringArray `db:"images"`
}

// UpsertAIAnswer persists a generation result keyed uniquely by the
// owning question. Re-generation overwrites, never duplicates.
func (s *QuestionStore) UpsertAIAnswer(ctx context.Context, a *domain.AIAnswer) error {
	query := `INSERT INTO ai_answers (question_id, answer, model, images, updated_at)
	          VALUES (:question_id, :answer, :model, :images, NOW())
	          ON CONFLICT (question_id) DO UPDATE SET
	              answer = EXCLUDED.answer,
	              model = EXCLUDED.model,
	              images = EXCLUDED.images,
	              updated_at = NOW()`

	_, err := s.store.db.NamedExecContext(ctx, query, aiAnswerRow{
		QuestionID: a.QuestionID,
		Answer:     a.Answer,
		Model:      a.Model,
		Images:     pq.StringArray(a.Images),
	})
	if err != nil {
		return fmt.Errorf("upsert ai answer: %w", err)
	}
	return nil
}
