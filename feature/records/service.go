package records

import (
	"context"

	"go.uber.org/zap"

	"refdesk/core/store"
	"refdesk/feature/records/models"
	"refdesk/feature/records/sync"
)

// Service fronts the reconciliation engine for the HTTP surface.
type Service struct {
	engine *sync.Engine
	logger *zap.Logger
}

// NewService creates a new records service.
func NewService(st store.Client, logger *zap.Logger) *Service {
	return &Service{
		engine: sync.NewEngine(st, logger),
		logger: logger,
	}
}

// Fetch ensures the scope's settings row exists, then reads the full
// snapshot.
func (s *Service) Fetch(ctx context.Context, scope string) (models.Snapshot, error) {
	if err := s.engine.EnsureSettings(ctx, scope, models.DefaultSettings()); err != nil {
		return models.Snapshot{}, err
	}
	return s.engine.FetchAll(ctx, scope)
}

// Replace overwrites the scope's remote state with the given snapshot.
func (s *Service) Replace(ctx context.Context, scope string, snap models.Snapshot) error {
	return s.engine.FullReplace(ctx, scope, snap)
}

// Sync writes the difference between the previously confirmed snapshot and
// the next one.
func (s *Service) Sync(ctx context.Context, scope string, previous, next models.Snapshot) error {
	return s.engine.IncrementalSync(ctx, scope, previous, next)
}
