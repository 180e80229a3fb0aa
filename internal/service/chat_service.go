package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/stackmentor/stackmentor/internal/domain"
	"github.com/stackmentor/stackmentor/internal/port"
	"github.com/stackmentor/stackmentor/internal/resilience"
)

// ChatService is the single-shot generation path: one model with
// retry/backoff, no fallback chain. It folds similarity search results
// into its prompt and returns them as suggested related questions.
type ChatService struct {
	gen     port.Generator
	search  *SearchService
	builder *ContextBuilder
	model   string
	retry   resilience.Config
	limit   int
}

// NewChatService creates a chat service pinned to one model.
func NewChatService(gen port.Generator, search *SearchService, builder *ContextBuilder, model string, retry resilience.Config, searchLimit int) *ChatService {
	retry.RetryIf = port.IsRetryable
	return &ChatService{
		gen:     gen,
		search:  search,
		builder: builder,
		model:   model,
		retry:   retry,
		limit:   searchLimit,
	}
}

const chatSystemPrompt = `You are StackMentor, a helpful assistant on a community Q&A platform.
Answer the user's message conversationally. When similar questions from the
platform are provided, use them to ground your answer and mention that related
questions exist. Use Markdown formatting.`

// Chat answers a free-form message, grounded in similar questions when
// any clear the relevance threshold.
func (s *ChatService) Chat(ctx context.Context, message string) (*domain.ChatResult, error) {
	if message == "" {
		return nil, port.ErrEmptyText
	}

	related := s.search.FindSimilar(ctx, message, domain.ContentTypeQuestion, s.limit)
	rag := s.builder.Build(domain.QuestionInput{Title: message}, related)

	prompt := fmt.Sprintf("%s\n\n%s", chatSystemPrompt, RenderPrompt(rag))

	attempts := 0
	result, err := resilience.RetryWithResult(ctx, s.retry, func() (*domain.GenerationResult, error) {
		attempts++
		return s.gen.Generate(ctx, s.model, prompt)
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		slog.Error("chat generation failed", "model", s.model, "error", err)
		return nil, &port.GenerationError{
			Cause:    port.CauseOf(port.ClassifyProviderError(err)),
			Attempts: attempts,
			Err:      err,
		}
	}

	return &domain.ChatResult{
		Answer:  result.Text,
		Model:   result.Model,
		Related: rag.SimilarQuestions,
	}, nil
}
