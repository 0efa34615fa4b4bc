package feeds

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"refdesk/core/store"
	"refdesk/feature/feeds/ingest"
)

// Feature implements the loader.Feature interface.
type Feature struct {
	service *Service
	handler *Handler
}

// NewFeature creates the calendar feeds feature.
func NewFeature(st store.Client, syncer *ingest.Syncer, logger *zap.Logger) *Feature {
	svc := NewService(st, logger)
	h := NewHandler(svc, syncer)
	return &Feature{service: svc, handler: h}
}

// Name returns the name of the feature.
func (f *Feature) Name() string {
	return "feeds"
}

// IsEnabled checks if the feature is enabled.
func (f *Feature) IsEnabled() bool {
	return true
}

// Load registers the feature's routes.
func (f *Feature) Load(app fiber.Router) error {
	f.handler.RegisterRoutes(app)
	return nil
}
