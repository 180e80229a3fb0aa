package store

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stackmentor/stackmentor/internal/domain"
	"github.com/stackmentor/stackmentor/internal/port"
)

func newMockVectorStore(t *testing.T, dimension int) (*VectorStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	pg := NewPostgresStoreFromDB(sqlx.NewDb(db, "postgres"))
	return NewVectorStore(pg, dimension), mock
}

func TestVectorStoreUpsert(t *testing.T) {
	vs, mock := newMockVectorStore(t, 3)

	mock.ExpectExec(`(?s)INSERT INTO embeddings .+ON CONFLICT \(content_type, content_id\) DO UPDATE`).
		WithArgs("question", "q1", "how do goroutines work", "[0.1,0.2,0.3]").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := vs.Upsert(context.Background(), &domain.EmbeddingRecord{
		ContentType: domain.ContentTypeQuestion,
		ContentID:   "q1",
		RawText:     "how do goroutines work",
		Vector:      []float32{0.1, 0.2, 0.3},
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestVectorStoreUpsertRejectsWrongDimension(t *testing.T) {
	vs, _ := newMockVectorStore(t, 3)

	err := vs.Upsert(context.Background(), &domain.EmbeddingRecord{
		ContentType: domain.ContentTypeQuestion,
		ContentID:   "q1",
		Vector:      []float32{0.1},
	})

	var storeErr *port.StoreError
	require.ErrorAs(t, err, &storeErr)
	assert.ErrorIs(t, err, port.ErrInvalidDimension)
}

func TestVectorStoreUpsertRejectsInvalidContentType(t *testing.T) {
	vs, _ := newMockVectorStore(t, 3)

	err := vs.Upsert(context.Background(), &domain.EmbeddingRecord{
		ContentType: "comment",
		ContentID:   "c1",
		Vector:      []float32{0.1, 0.2, 0.3},
	})

	var storeErr *port.StoreError
	require.ErrorAs(t, err, &storeErr)
}

func TestVectorStoreQuery(t *testing.T) {
	vs, mock := newMockVectorStore(t, 3)

	rows := sqlmock.NewRows([]string{"content_id", "raw_text", "similarity"}).
		AddRow("q9", "closest", 0.93).
		AddRow("q4", "close", 0.81).
		AddRow("q7", "far", 0.41)

	mock.ExpectQuery(`(?s)SELECT content_id, raw_text, 1 - \(vector <=> .+ WHERE content_type = .+ ORDER BY vector <=>`).
		WithArgs("[1,0,0]", "question", 10).
		WillReturnRows(rows)

	matches, err := vs.Query(context.Background(), domain.ContentTypeQuestion, []float32{1, 0, 0}, 10)
	require.NoError(t, err)
	require.Len(t, matches, 3)
	assert.Equal(t, "q9", matches[0].ContentID)
	assert.InDelta(t, 0.93, matches[0].Similarity, 1e-9)
	assert.Equal(t, "q7", matches[2].ContentID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestVectorStoreQueryWrapsFailures(t *testing.T) {
	vs, mock := newMockVectorStore(t, 3)

	mock.ExpectQuery(`SELECT content_id`).
		WillReturnError(errors.New("connection reset"))

	_, err := vs.Query(context.Background(), domain.ContentTypeQuestion, []float32{1, 0, 0}, 5)

	var storeErr *port.StoreError
	require.ErrorAs(t, err, &storeErr)
	assert.Equal(t, "query", storeErr.Op)
}

func TestVectorToString(t *testing.T) {
	assert.Equal(t, "[0.5,-1,0.25]", vectorToString([]float32{0.5, -1, 0.25}))
	assert.Equal(t, "[]", vectorToString(nil))
}
