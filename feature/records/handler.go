package records

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"refdesk/core/logger"
	"refdesk/core/middleware/scope"
	"refdesk/feature/records/models"
)

// Handler handles HTTP requests for record snapshots.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the records routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/records")
	group.Get("/", h.HandleFetch)
	group.Post("/replace", h.HandleReplace)
	group.Post("/sync", h.HandleSync)
}

// HandleFetch returns the scope's full snapshot.
func (h *Handler) HandleFetch(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	snap, err := h.service.Fetch(c.Context(), scope.FromCtx(c))
	if err != nil {
		l.Error("Snapshot fetch failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(snap)
}

// HandleReplace overwrites the remote state with the posted snapshot.
func (h *Handler) HandleReplace(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	var snap models.Snapshot
	if err := c.BodyParser(&snap); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := h.service.Replace(c.Context(), scope.FromCtx(c), snap); err != nil {
		l.Error("Snapshot replace failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"ok": true})
}

type syncRequest struct {
	Previous models.Snapshot `json:"previous"`
	Next     models.Snapshot `json:"next"`
}

// HandleSync writes the difference between the posted previous and next
// snapshots. On failure the previous snapshot stays authoritative for the
// caller.
func (h *Handler) HandleSync(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	var req syncRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := h.service.Sync(c.Context(), scope.FromCtx(c), req.Previous, req.Next); err != nil {
		l.Error("Snapshot sync failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"ok": true})
}
