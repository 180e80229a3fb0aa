package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/stackmentor/stackmentor/internal/domain"
	"github.com/stackmentor/stackmentor/internal/port"
)

// diagramKeywords mark a question as needing visual output; their
// presence selects the image-capable model chain.
var diagramKeywords = []string{
	"architecture", "diagram", "flow", "flowchart", "lifecycle",
	"sequence", "topology", "pipeline", "state machine", "schema",
}

// GenerationConfig holds the orchestrator's tunables.
type GenerationConfig struct {
	// TextModels and DiagramModels are ordered fallback chains; the
	// diagram chain leads with an image-capable model.
	TextModels    []string
	DiagramModels []string

	// MaxRetries is the per-model retry budget for retryable failures.
	MaxRetries int

	// Backoff bases per error class: overloaded providers get a longer
	// base than rate-limited ones.
	OverloadedBase time.Duration
	RateLimitBase  time.Duration
	MaxBackoff     time.Duration
	SearchLimit    int
}

// DefaultGenerationConfig returns the stock orchestration policy.
func DefaultGenerationConfig() GenerationConfig {
	return GenerationConfig{
		TextModels:     []string{"gemini-2.0-flash", "gemini-1.5-flash", "gemini-1.5-flash-8b"},
		DiagramModels:  []string{"gemini-2.0-flash-exp-image-generation", "gemini-2.0-flash", "gemini-1.5-flash"},
		MaxRetries:     2,
		OverloadedBase: 2 * time.Second,
		RateLimitBase:  500 * time.Millisecond,
		MaxBackoff:     30 * time.Second,
		SearchLimit:    10,
	}
}

// GenerationService drives answer generation across an ordered model
// fallback chain, each candidate with its own retry budget. Candidates
// are always attempted in the precomputed order, never reordered on
// runtime state.
type GenerationService struct {
	gen     port.Generator
	answers port.AnswerWriter
	search  *SearchService
	builder *ContextBuilder
	cfg     GenerationConfig
}

// NewGenerationService creates the generation orchestrator.
func NewGenerationService(gen port.Generator, answers port.AnswerWriter, search *SearchService, builder *ContextBuilder, cfg GenerationConfig) *GenerationService {
	return &GenerationService{gen: gen, answers: answers, search: search, builder: builder, cfg: cfg}
}

const answerSystemPrompt = `You are StackMentor, an expert assistant on a community Q&A platform.
Answer the question below thoroughly and practically. Ground your answer in the
similar questions and accepted answers provided, when they are relevant.
Use Markdown formatting. If the question calls for an architecture or flow
explanation, include a diagram.`

// AnswerQuestion runs the full pipeline for one question: similarity
// search, context assembly, orchestrated generation, and persistence of
// the result keyed by the question id.
func (s *GenerationService) AnswerQuestion(ctx context.Context, question domain.QuestionInput) (*domain.GenerationResult, error) {
	matches := s.search.FindSimilar(ctx, searchText(question), domain.ContentTypeQuestion, s.cfg.SearchLimit)
	rag := s.builder.Build(question, matches)

	prompt := answerSystemPrompt + "\n\n" + RenderPrompt(rag)

	result, err := s.Generate(ctx, prompt, NeedsDiagram(question.Title, question.Description))
	if err != nil {
		return nil, err
	}

	answer := &domain.AIAnswer{
		QuestionID: question.ID,
		Answer:     result.Text,
		Model:      result.Model,
		Images:     result.Images,
	}
	if err := s.answers.UpsertAIAnswer(ctx, answer); err != nil {
		return nil, err
	}

	return result, nil
}

// Generate walks the model chain for the request, retrying each
// candidate on retryable failures before moving to the next. It fails
// with a GenerationError only after every candidate is exhausted.
func (s *GenerationService) Generate(ctx context.Context, prompt string, needsDiagram bool) (*domain.GenerationResult, error) {
	models := s.cfg.TextModels
	if needsDiagram {
		models = s.cfg.DiagramModels
	}
	if len(models) == 0 {
		return nil, port.ErrNoModelCandidates
	}

	attempts := 0
	lastClass := port.ClassFatal
	var lastErr error

	for _, model := range models {
		result, tried, err := s.tryModel(ctx, model, prompt)
		attempts += tried
		if err == nil {
			slog.Info("generation succeeded", "model", model, "attempts", attempts)
			return result, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if class := port.ClassifyProviderError(err); class != port.ClassFatal {
			lastClass = class
		}
		lastErr = err
		slog.Warn("model exhausted, moving to next candidate", "model", model, "error", err)
	}

	return nil, &port.GenerationError{
		Cause:    port.CauseOf(lastClass),
		Attempts: attempts,
		Err:      lastErr,
	}
}

// tryModel attempts one model up to 1+MaxRetries times, backing off
// exponentially between retryable failures with a per-class base delay.
// It returns how many attempts were made.
func (s *GenerationService) tryModel(ctx context.Context, model, prompt string) (*domain.GenerationResult, int, error) {
	overloaded := s.newBackoff(s.cfg.OverloadedBase)
	rateLimited := s.newBackoff(s.cfg.RateLimitBase)

	var lastErr error
	attempts := 0
	for attempt := 0; attempt <= s.cfg.MaxRetries; attempt++ {
		start := time.Now()
		result, err := s.gen.Generate(ctx, model, prompt)
		attempts++
		if err == nil {
			slog.Debug("generation attempt ok", "model", model, "attempt", attempt+1, "latency", time.Since(start))
			return result, attempts, nil
		}
		lastErr = err

		class := port.ClassifyProviderError(err)
		if class == port.ClassFatal || attempt == s.cfg.MaxRetries {
			return nil, attempts, lastErr
		}

		var delay time.Duration
		switch class {
		case port.ClassOverloaded:
			delay = overloaded.NextBackOff()
		case port.ClassRateLimited:
			delay = rateLimited.NextBackOff()
		}
		slog.Warn("generation attempt failed, retrying",
			"model", model, "attempt", attempt+1, "delay", delay, "error", err)

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, attempts, ctx.Err()
		}
	}
	return nil, attempts, lastErr
}

func (s *GenerationService) newBackoff(base time.Duration) *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = base
	b.MaxInterval = s.cfg.MaxBackoff
	b.Multiplier = 2.0
	b.RandomizationFactor = 0.2
	b.MaxElapsedTime = 0
	return b
}

// NeedsDiagram applies a keyword heuristic over title+description to
// decide whether the request should lead with an image-capable model.
func NeedsDiagram(title, description string) bool {
	text := strings.ToLower(title + " " + description)
	for _, kw := range diagramKeywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// searchText is the text a question is matched against: title plus
// description, as given.
func searchText(q domain.QuestionInput) string {
	if q.Description == "" {
		return q.Title
	}
	return q.Title + "\n" + q.Description
}
