package service

import (
	"fmt"
	"strings"

	"github.com/stackmentor/stackmentor/internal/domain"
)

// ContextBuilder assembles the bounded grounding context injected into
// generation prompts. Deterministic: same inputs, same context.
type ContextBuilder struct {
	maxQuestions  int
	excerptBudget int
}

// NewContextBuilder creates a builder capping similar questions at
// maxQuestions and each accepted-answer excerpt at excerptBudget runes.
// The caps are hard requirements: the context is injected verbatim into
// prompts with their own length limits.
func NewContextBuilder(maxQuestions, excerptBudget int) *ContextBuilder {
	return &ContextBuilder{maxQuestions: maxQuestions, excerptBudget: excerptBudget}
}

// Build assembles a RagContext from the current question and the ranked
// matches: at most maxQuestions similar questions, and one truncated
// accepted-answer excerpt per similar question that has one.
func (b *ContextBuilder) Build(question domain.QuestionInput, matches []domain.SimilarQuestion) domain.RagContext {
	if len(matches) > b.maxQuestions {
		matches = matches[:b.maxQuestions]
	}

	rag := domain.RagContext{
		Current:          question,
		SimilarQuestions: matches,
	}

	for _, m := range matches {
		if m.AcceptedAnswer == "" {
			continue
		}
		rag.RelevantAnswers = append(rag.RelevantAnswers, domain.AnswerExcerpt{
			QuestionID: m.ID,
			Title:      m.Title,
			Excerpt:    truncate(m.AcceptedAnswer, b.excerptBudget),
		})
	}

	return rag
}

// RenderPrompt flattens a RagContext into the grounding section of a
// generation prompt.
func RenderPrompt(rag domain.RagContext) string {
	var sb strings.Builder

	sb.WriteString("Question: ")
	sb.WriteString(rag.Current.Title)
	sb.WriteString("\n")
	if rag.Current.Description != "" {
		sb.WriteString(rag.Current.Description)
		sb.WriteString("\n")
	}
	if len(rag.Current.Tags) > 0 {
		sb.WriteString("Tags: ")
		sb.WriteString(strings.Join(rag.Current.Tags, ", "))
		sb.WriteString("\n")
	}
	if rag.Current.Category != "" {
		sb.WriteString("Category: ")
		sb.WriteString(rag.Current.Category)
		sb.WriteString("\n")
	}

	if len(rag.SimilarQuestions) > 0 {
		sb.WriteString("\nSimilar questions already asked on the platform:\n")
		for i, q := range rag.SimilarQuestions {
			fmt.Fprintf(&sb, "%d. %s (similarity %.2f", i+1, q.Title, q.Similarity)
			if len(q.Tags) > 0 {
				fmt.Fprintf(&sb, ", tags: %s", strings.Join(q.Tags, ", "))
			}
			sb.WriteString(")\n")
		}
	}

	if len(rag.RelevantAnswers) > 0 {
		sb.WriteString("\nAccepted answers from those questions:\n")
		for _, a := range rag.RelevantAnswers {
			fmt.Fprintf(&sb, "--- From %q ---\n%s\n", a.Title, a.Excerpt)
		}
	}

	return sb.String()
}

// truncate cuts s to at most maxRunes runes without splitting a rune.
func truncate(s string, maxRunes int) string {
	runes := []rune(s)
	if len(runes) <= maxRunes {
		return s
	}
	return string(runes[:maxRunes])
}
