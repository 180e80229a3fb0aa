package handler

import (
	"github.com/gofiber/fiber/v3"
	"github.com/stackmentor/stackmentor/internal/domain"
	"github.com/stackmentor/stackmentor/internal/port"
	"github.com/stackmentor/stackmentor/internal/service"
)

// SearchHandler exposes semantic similarity search directly.
type SearchHandler struct {
	search    *service.SearchService
	questions port.QuestionReader
	limit     int
}

// NewSearchHandler creates a new search handler.
func NewSearchHandler(search *service.SearchService, questions port.QuestionReader, limit int) *SearchHandler {
	return &SearchHandler{search: search, questions: questions, limit: limit}
}

// Register sets up search routes.
func (h *SearchHandler) Register(router fiber.Router) {
	router.Get("/questions/:id/similar", h.SimilarToQuestion)
	router.Post("/search/similar", h.Similar)
}

// SimilarToQuestion finds questions similar to an existing one, matched
// on its stored title.
func (h *SearchHandler) SimilarToQuestion(c fiber.Ctx) error {
	id := c.Params("id")
	records, err := h.questions.QuestionsByIDs(c.Context(), []string{id})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	record, ok := records[id]
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "question not found"})
	}

	matches := h.search.FindSimilar(c.Context(), record.Title, domain.ContentTypeQuestion, h.limit)
	return c.JSON(fiber.Map{"matches": similarPayload(matches, id)})
}

// Similar finds questions similar to an arbitrary text.
func (h *SearchHandler) Similar(c fiber.Ctx) error {
	var body struct {
		Text  string `json:"text"`
		Limit int    `json:"limit"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if body.Text == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "text is required"})
	}
	limit := body.Limit
	if limit <= 0 || limit > h.limit {
		limit = h.limit
	}

	matches := h.search.FindSimilar(c.Context(), body.Text, domain.ContentTypeQuestion, limit)
	return c.JSON(fiber.Map{"matches": similarPayload(matches, "")})
}

// similarPayload shapes matches for the wire, dropping the question the
// search was seeded from.
func similarPayload(matches []domain.SimilarQuestion, excludeID string) []fiber.Map {
	out := make([]fiber.Map, 0, len(matches))
	for _, m := range matches {
		if excludeID != "" && m.ID == excludeID {
			continue
		}
		out = append(out, fiber.Map{
			"question_id":  m.ID,
			"title":        m.Title,
			"tags":         m.Tags,
			"category":     m.Category,
			"answer_count": m.AnswerCount,
			"view_count":   m.ViewCount,
			"similarity":   m.Similarity,
		})
	}
	return out
}
