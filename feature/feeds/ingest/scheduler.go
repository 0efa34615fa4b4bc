package ingest

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"refdesk/core/store"
	"refdesk/core/utils"
)

// Scheduler periodically syncs every enabled feed across all scopes.
type Scheduler struct {
	cron   *cron.Cron
	syncer *Syncer
	store  store.Client
	logger *zap.Logger
}

func NewScheduler(syncer *Syncer, st store.Client, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		cron:   cron.New(),
		syncer: syncer,
		store:  st,
		logger: logger,
	}
}

// Start registers the sync job under the given cron expression and starts
// the scheduler.
func (s *Scheduler) Start(schedule string) error {
	if _, err := s.cron.AddFunc(schedule, s.run); err != nil {
		return fmt.Errorf("invalid sync schedule %q: %w", schedule, err)
	}
	s.cron.Start()
	s.logger.Info("feed sync scheduler started", zap.String("schedule", schedule))
	return nil
}

// Stop halts the scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

func (s *Scheduler) run() {
	ctx := context.Background()

	// One unscoped read to discover which scopes have enabled feeds, then
	// a normal scoped sync per scope.
	rows, err := s.store.Select(ctx, feedsTable, store.Filter{Eq: map[string]any{"enabled": true}})
	if err != nil {
		s.logger.Error("scheduled sync: feed listing failed", zap.Error(err))
		return
	}
	scopes := make(map[string]struct{}, len(rows))
	for _, r := range rows {
		scopes[utils.ToString(r["user_id"])] = struct{}{}
	}

	for scope := range scopes {
		res, err := s.syncer.SyncAll(ctx, scope, "")
		if err != nil {
			s.logger.Error("scheduled sync failed", zap.String("scope", scope), zap.Error(err))
			continue
		}
		s.logger.Info("scheduled sync complete",
			zap.String("scope", scope),
			zap.Int("created_events", res.CreatedEvents),
			zap.Int("updated_events", res.UpdatedEvents),
			zap.Int("created_games", res.CreatedGames),
			zap.Int("updated_games", res.UpdatedGames),
			zap.Strings("errors", res.Errors))
	}
}
