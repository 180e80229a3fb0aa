package handler

import (
	"github.com/gofiber/fiber/v3"
	"github.com/stackmentor/stackmentor/internal/domain"
	"github.com/stackmentor/stackmentor/internal/service"
)

// IngestHandler handles bulk vector ingestion.
type IngestHandler struct {
	ingest *service.IngestService
}

// NewIngestHandler creates a new ingest handler.
func NewIngestHandler(ingest *service.IngestService) *IngestHandler {
	return &IngestHandler{ingest: ingest}
}

// Register sets up ingestion routes.
func (h *IngestHandler) Register(router fiber.Router) {
	router.Post("/admin/reindex", h.Reindex)
}

// Reindex bulk-loads the posted items into the vector store and returns
// the per-item outcome report.
func (h *IngestHandler) Reindex(c fiber.Ctx) error {
	var body struct {
		Items []domain.IngestItem `json:"items"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if len(body.Items) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "items are required"})
	}
	for _, item := range body.Items {
		if !item.ContentType.Valid() {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid content_type: " + string(item.ContentType)})
		}
	}

	report := h.ingest.Ingest(c.Context(), body.Items)
	return c.JSON(report)
}
