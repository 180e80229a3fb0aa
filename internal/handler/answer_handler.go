package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/stackmentor/stackmentor/internal/domain"
	"github.com/stackmentor/stackmentor/internal/port"
	"github.com/stackmentor/stackmentor/internal/service"
)

// AnswerHandler handles AI answer generation for questions.
type AnswerHandler struct {
	generation *service.GenerationService
}

// NewAnswerHandler creates a new answer handler.
func NewAnswerHandler(generation *service.GenerationService) *AnswerHandler {
	return &AnswerHandler{generation: generation}
}

// Register sets up answer routes.
func (h *AnswerHandler) Register(router fiber.Router) {
	router.Post("/questions/:id/ai-answer", h.Generate)
}

// Generate runs the RAG pipeline for a question and persists the
// result. Re-generation for the same question overwrites.
func (h *AnswerHandler) Generate(c fiber.Ctx) error {
	var body struct {
		Title       string   `json:"title"`
		Description string   `json:"description"`
		Tags        []string `json:"tags"`
		Category    string   `json:"category"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if body.Title == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "title is required"})
	}

	question := domain.QuestionInput{
		ID:          c.Params("id"),
		Title:       body.Title,
		Description: body.Description,
		Tags:        body.Tags,
		Category:    body.Category,
	}

	result, err := h.generation.AnswerQuestion(c.Context(), question)
	if err != nil {
		return generationErrorResponse(c, err)
	}

	return c.JSON(fiber.Map{
		"question_id": question.ID,
		"answer":      result.Text,
		"model":       result.Model,
		"images":      result.Images,
	})
}

// generationErrorResponse translates the exhaustion cause into a
// specific user-facing message.
func generationErrorResponse(c fiber.Ctx, err error) error {
	var genErr *port.GenerationError
	if errors.As(err, &genErr) {
		switch genErr.Cause {
		case port.CauseOverloaded:
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"error": "the AI service is overloaded right now, please try again in a moment",
			})
		case port.CauseQuotaExceeded:
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "the AI service quota is exhausted, please try again later",
			})
		default:
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
				"error": "AI answer generation failed",
			})
		}
	}
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
}
