package handler

import (
	"github.com/gofiber/fiber/v3"
	"github.com/stackmentor/stackmentor/internal/service"
)

// ChatHandler handles the grounded chat endpoint.
type ChatHandler struct {
	chat *service.ChatService
}

// NewChatHandler creates a new chat handler.
func NewChatHandler(chat *service.ChatService) *ChatHandler {
	return &ChatHandler{chat: chat}
}

// Register sets up chat routes.
func (h *ChatHandler) Register(router fiber.Router) {
	router.Post("/chat", h.Chat)
}

// Chat answers a free-form message, returning suggested related
// questions alongside the answer.
func (h *ChatHandler) Chat(c fiber.Ctx) error {
	var body struct {
		Message string `json:"message"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if body.Message == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "message is required"})
	}

	result, err := h.chat.Chat(c.Context(), body.Message)
	if err != nil {
		return generationErrorResponse(c, err)
	}

	related := make([]fiber.Map, len(result.Related))
	for i, q := range result.Related {
		related[i] = fiber.Map{
			"question_id": q.ID,
			"title":       q.Title,
			"tags":        q.Tags,
			"similarity":  q.Similarity,
		}
	}

	return c.JSON(fiber.Map{
		"answer":  result.Answer,
		"model":   result.Model,
		"related": related,
	})
}
