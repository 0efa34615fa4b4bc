package feeds

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"refdesk/core/logger"
	"refdesk/core/middleware/scope"
	"refdesk/feature/feeds/ingest"
)

// Handler handles HTTP requests for calendar feeds.
type Handler struct {
	service *Service
	syncer  *ingest.Syncer
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service, syncer *ingest.Syncer) *Handler {
	return &Handler{service: service, syncer: syncer}
}

// RegisterRoutes registers the feed routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/feeds")
	group.Get("/", h.HandleList)
	group.Post("/", h.HandleCreate)
	group.Put("/:id", h.HandleUpdate)
	group.Delete("/:id", h.HandleDelete)
	group.Post("/sync", h.HandleSync)
}

// HandleList returns the scope's feeds with masked URLs.
func (h *Handler) HandleList(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	feeds, err := h.service.List(c.Context(), scope.FromCtx(c))
	if err != nil {
		l.Error("Feed listing failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"feeds": feeds})
}

// HandleCreate registers a new feed.
func (h *Handler) HandleCreate(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	var params CreateParams
	if err := c.BodyParser(&params); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	feed, err := h.service.Create(c.Context(), scope.FromCtx(c), params)
	if err != nil {
		return h.feedError(c, l, "Feed create failed", err)
	}
	return c.JSON(fiber.Map{"feed": feed})
}

// HandleUpdate applies a partial update to a feed.
func (h *Handler) HandleUpdate(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	var params UpdateParams
	if err := c.BodyParser(&params); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	feed, err := h.service.Update(c.Context(), scope.FromCtx(c), c.Params("id"), params)
	if err != nil {
		return h.feedError(c, l, "Feed update failed", err)
	}
	return c.JSON(fiber.Map{"feed": feed})
}

// HandleDelete removes a feed.
func (h *Handler) HandleDelete(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	if err := h.service.Delete(c.Context(), scope.FromCtx(c), c.Params("id")); err != nil {
		return h.feedError(c, l, "Feed delete failed", err)
	}
	return c.JSON(fiber.Map{"ok": true})
}

type syncRequest struct {
	FeedID string `json:"feed_id"`
}

// HandleSync syncs one feed by id, or every enabled feed when the body
// names none. Per-feed failures come back in the errors list alongside the
// successful feeds' counters.
func (h *Handler) HandleSync(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	var req syncRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
		}
	}

	res, err := h.syncer.SyncAll(c.Context(), scope.FromCtx(c), req.FeedID)
	if err != nil {
		l.Error("Feed sync failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(res)
}

func (h *Handler) feedError(c *fiber.Ctx, l *zap.Logger, msg string, err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, ErrInvalid):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	default:
		l.Error(msg, zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
}
