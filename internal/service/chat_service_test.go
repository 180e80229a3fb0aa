package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stackmentor/stackmentor/internal/domain"
	"github.com/stackmentor/stackmentor/internal/port"
	"github.com/stackmentor/stackmentor/internal/resilience"
)

func testRetryConfig() resilience.Config {
	return resilience.Config{
		MaxRetries:      2,
		InitialInterval: time.Millisecond,
		MaxInterval:     2 * time.Millisecond,
		Multiplier:      2.0,
	}
}

func newTestChatService(gen port.Generator, vectors *fakeVectorStore, reader *fakeQuestionReader) *ChatService {
	search := NewSearchService(&fakeEmbedder{}, vectors, reader, 0.75)
	builder := NewContextBuilder(5, 500)
	return NewChatService(gen, search, builder, "chat-model", testRetryConfig(), 10)
}

func TestChatReturnsAnswerWithRelatedQuestions(t *testing.T) {
	gen := &scriptedGenerator{text: "Try using context.WithTimeout."}
	vectors := &fakeVectorStore{matches: []domain.VectorMatch{
		{ContentID: "q1", Similarity: 0.9},
		{ContentID: "q2", Similarity: 0.3},
	}}
	reader := &fakeQuestionReader{byID: map[string]domain.QuestionRecord{
		"q1": questionRecord("q1", "Timeouts in Go", "Use context."),
		"q2": questionRecord("q2", "Unrelated", ""),
	}}

	s := newTestChatService(gen, vectors, reader)
	result, err := s.Chat(context.Background(), "how do I add a timeout?")

	require.NoError(t, err)
	assert.Equal(t, "Try using context.WithTimeout.", result.Answer)
	assert.Equal(t, "chat-model", result.Model)
	require.Len(t, result.Related, 1, "below-threshold matches are not suggested")
	assert.Equal(t, "q1", result.Related[0].ID)
}

func TestChatRetriesRetryableFailures(t *testing.T) {
	gen := &scriptedGenerator{
		script: map[string][]error{
			"chat-model": {
				&port.ProviderError{Provider: "fake", StatusCode: 429, Message: "rate limited"},
				nil,
			},
		},
		text: "answer",
	}

	s := newTestChatService(gen, &fakeVectorStore{}, &fakeQuestionReader{})
	result, err := s.Chat(context.Background(), "hello")

	require.NoError(t, err)
	assert.Equal(t, "answer", result.Answer)
	assert.Len(t, gen.calls, 2)
}

func TestChatDoesNotRetryFatalFailures(t *testing.T) {
	gen := &scriptedGenerator{script: map[string][]error{
		"chat-model": {
			&port.ProviderError{Provider: "fake", StatusCode: 400, Message: "bad request"},
			nil,
		},
	}}

	s := newTestChatService(gen, &fakeVectorStore{}, &fakeQuestionReader{})
	_, err := s.Chat(context.Background(), "hello")

	require.Error(t, err)
	assert.Len(t, gen.calls, 1)

	var genErr *port.GenerationError
	require.ErrorAs(t, err, &genErr)
	assert.Equal(t, port.CauseUnknown, genErr.Cause)
	assert.Equal(t, 1, genErr.Attempts, "a fatal failure stops after the first attempt")
}

func TestChatExhaustionReportsActualAttempts(t *testing.T) {
	rateLimited := &port.ProviderError{Provider: "fake", StatusCode: 429, Message: "rate limited"}
	gen := &scriptedGenerator{script: map[string][]error{
		"chat-model": {rateLimited, rateLimited, rateLimited},
	}}

	s := newTestChatService(gen, &fakeVectorStore{}, &fakeQuestionReader{})
	_, err := s.Chat(context.Background(), "hello")

	require.Error(t, err)
	assert.Len(t, gen.calls, 3, "two retries on top of the initial attempt")

	var genErr *port.GenerationError
	require.ErrorAs(t, err, &genErr)
	assert.Equal(t, port.CauseQuotaExceeded, genErr.Cause)
	assert.Equal(t, 3, genErr.Attempts)
}

func TestChatCancellationReturnsContextError(t *testing.T) {
	gen := &scriptedGenerator{script: map[string][]error{
		"chat-model": {&port.ProviderError{Provider: "fake", StatusCode: 503, Message: "overloaded"}},
	}}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := newTestChatService(gen, &fakeVectorStore{}, &fakeQuestionReader{})
	_, err := s.Chat(ctx, "hello")

	require.ErrorIs(t, err, context.Canceled)
	var genErr *port.GenerationError
	assert.False(t, errors.As(err, &genErr), "client disconnects are not provider failures")
}

func TestChatRejectsEmptyMessage(t *testing.T) {
	s := newTestChatService(&scriptedGenerator{}, &fakeVectorStore{}, &fakeQuestionReader{})
	_, err := s.Chat(context.Background(), "")
	assert.ErrorIs(t, err, port.ErrEmptyText)
}

func TestChatGroundsPromptInSearchResults(t *testing.T) {
	gen := &scriptedGenerator{}
	vectors := &fakeVectorStore{matches: []domain.VectorMatch{{ContentID: "q1", Similarity: 0.95}}}
	reader := &fakeQuestionReader{byID: map[string]domain.QuestionRecord{
		"q1": questionRecord("q1", "Grounding title", "Grounding answer body."),
	}}

	s := newTestChatService(gen, vectors, reader)
	_, err := s.Chat(context.Background(), "seed message")
	require.NoError(t, err)

	require.Len(t, gen.prompts, 1)
	assert.Contains(t, gen.prompts[0], "seed message")
	assert.Contains(t, gen.prompts[0], "Grounding title")
	assert.Contains(t, gen.prompts[0], "Grounding answer body.")
}
