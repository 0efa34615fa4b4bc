package feeds

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"refdesk/core/store"
	"refdesk/feature/records/models"
)

// ErrNotFound is returned when a feed id does not exist for the scope.
var ErrNotFound = errors.New("feed not found")

// ErrInvalid wraps every validation rejection. Validation runs before any
// store write.
var ErrInvalid = errors.New("invalid feed")

// CreateParams carries the fields accepted when registering a feed.
type CreateParams struct {
	Platform      string `json:"platform"`
	Name          string `json:"name"`
	FeedURL       string `json:"feed_url"`
	Enabled       *bool  `json:"enabled"`
	Sport         string `json:"sport"`
	DefaultLeague string `json:"default_league"`
}

// UpdateParams carries a partial feed update. Nil fields are left unchanged.
type UpdateParams struct {
	Platform      *string `json:"platform"`
	Name          *string `json:"name"`
	FeedURL       *string `json:"feed_url"`
	Enabled       *bool   `json:"enabled"`
	Sport         *string `json:"sport"`
	DefaultLeague *string `json:"default_league"`
}

// Service manages calendar feed subscriptions.
type Service struct {
	store  store.Client
	logger *zap.Logger
	now    func() time.Time
	newID  func() string
}

// NewService creates a new feeds service.
func NewService(st store.Client, logger *zap.Logger) *Service {
	return &Service{
		store:  st,
		logger: logger,
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

// List returns the scope's feeds ordered by platform then creation time,
// with masked URLs.
func (s *Service) List(ctx context.Context, scope string) ([]models.CalendarFeed, error) {
	rows, err := s.store.Select(ctx, Table, store.Filter{Scope: scope})
	if err != nil {
		return nil, fmt.Errorf("select %s: %w", Table, err)
	}
	feeds := make([]models.CalendarFeed, 0, len(rows))
	for _, r := range rows {
		feeds = append(feeds, feedFromRow(r))
	}
	sort.SliceStable(feeds, func(i, j int) bool {
		if feeds[i].Platform != feeds[j].Platform {
			return feeds[i].Platform < feeds[j].Platform
		}
		return feeds[i].CreatedAt.Before(feeds[j].CreatedAt)
	})
	return feeds, nil
}

// Create registers a new feed after validating its fields and the scope's
// platform limit.
func (s *Service) Create(ctx context.Context, scope string, p CreateParams) (models.CalendarFeed, error) {
	platform := models.FeedPlatform(p.Platform)
	if !models.ValidPlatform(platform) {
		return models.CalendarFeed{}, fmt.Errorf("%w: platform must be RefQuest or DragonFly", ErrInvalid)
	}
	name := strings.TrimSpace(p.Name)
	if name == "" {
		return models.CalendarFeed{}, fmt.Errorf("%w: name is required", ErrInvalid)
	}
	feedURL, err := mustURL(p.FeedURL)
	if err != nil {
		return models.CalendarFeed{}, err
	}
	if err := s.enforcePlatformLimit(ctx, scope, platform, ""); err != nil {
		return models.CalendarFeed{}, err
	}

	enabled := true
	if p.Enabled != nil {
		enabled = *p.Enabled
	}
	now := s.now().UTC()
	row := store.Row{
		"id":             s.newID(),
		"user_id":        scope,
		"platform":       string(platform),
		"name":           name,
		"feed_url":       feedURL,
		"enabled":        enabled,
		"sport":          nullableSport(p.Sport),
		"default_league": nullable(strings.TrimSpace(p.DefaultLeague)),
		"last_synced_at": nil,
		"created_at":     now,
		"updated_at":     now,
	}
	if err := s.store.Insert(ctx, Table, []store.Row{row}); err != nil {
		return models.CalendarFeed{}, fmt.Errorf("insert %s: %w", Table, err)
	}
	s.logger.Info("feed created",
		zap.String("scope", scope),
		zap.String("platform", string(platform)),
		zap.String("name", name))
	return feedFromRow(row), nil
}

// Update applies a partial update to an existing feed. The platform limit is
// re-checked against the target platform, excluding the feed being updated.
func (s *Service) Update(ctx context.Context, scope, id string, p UpdateParams) (models.CalendarFeed, error) {
	rows, err := s.store.Select(ctx, Table, store.Filter{Scope: scope, IDs: []string{id}})
	if err != nil {
		return models.CalendarFeed{}, fmt.Errorf("select %s: %w", Table, err)
	}
	if len(rows) == 0 {
		return models.CalendarFeed{}, ErrNotFound
	}
	existing := feedFromRow(rows[0])

	platform := existing.Platform
	if p.Platform != nil {
		platform = models.FeedPlatform(*p.Platform)
		if !models.ValidPlatform(platform) {
			return models.CalendarFeed{}, fmt.Errorf("%w: platform must be RefQuest or DragonFly", ErrInvalid)
		}
	}
	if err := s.enforcePlatformLimit(ctx, scope, platform, id); err != nil {
		return models.CalendarFeed{}, err
	}

	patch := store.Row{
		"platform":   string(platform),
		"updated_at": s.now().UTC(),
	}
	if p.Name != nil {
		name := strings.TrimSpace(*p.Name)
		if name == "" {
			return models.CalendarFeed{}, fmt.Errorf("%w: name cannot be blank", ErrInvalid)
		}
		patch["name"] = name
	}
	if p.FeedURL != nil {
		feedURL, err := mustURL(*p.FeedURL)
		if err != nil {
			return models.CalendarFeed{}, err
		}
		patch["feed_url"] = feedURL
	}
	if p.Enabled != nil {
		patch["enabled"] = *p.Enabled
	}
	if p.Sport != nil {
		patch["sport"] = nullableSport(*p.Sport)
	}
	if p.DefaultLeague != nil {
		patch["default_league"] = nullable(strings.TrimSpace(*p.DefaultLeague))
	}

	if err := s.store.Update(ctx, Table, patch, store.Filter{Scope: scope, IDs: []string{id}}); err != nil {
		return models.CalendarFeed{}, fmt.Errorf("update %s: %w", Table, err)
	}

	rows, err = s.store.Select(ctx, Table, store.Filter{Scope: scope, IDs: []string{id}})
	if err != nil {
		return models.CalendarFeed{}, fmt.Errorf("select %s: %w", Table, err)
	}
	if len(rows) == 0 {
		return models.CalendarFeed{}, ErrNotFound
	}
	return feedFromRow(rows[0]), nil
}

// Delete removes a feed.
func (s *Service) Delete(ctx context.Context, scope, id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%w: id is required", ErrInvalid)
	}
	if err := s.store.Delete(ctx, Table, store.Filter{Scope: scope, IDs: []string{id}}); err != nil {
		return fmt.Errorf("delete %s: %w", Table, err)
	}
	return nil
}

func (s *Service) enforcePlatformLimit(ctx context.Context, scope string, platform models.FeedPlatform, excludeID string) error {
	rows, err := s.store.Select(ctx, Table, store.Filter{
		Scope: scope,
		Eq:    map[string]any{"platform": string(platform)},
	})
	if err != nil {
		return fmt.Errorf("select %s: %w", Table, err)
	}
	count := 0
	for _, r := range rows {
		if excludeID != "" && fmt.Sprint(r["id"]) == excludeID {
			continue
		}
		count++
	}
	if platform == models.PlatformDragonFly && count >= maxDragonFlyFeeds {
		return fmt.Errorf("%w: DragonFly supports only 1 feed URL", ErrInvalid)
	}
	if platform == models.PlatformRefQuest && count >= maxRefQuestFeeds {
		return fmt.Errorf("%w: RefQuest supports at most 8 feed URLs", ErrInvalid)
	}
	return nil
}

func mustURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("%w: feed_url is required", ErrInvalid)
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "", fmt.Errorf("%w: feed_url must be a valid URL", ErrInvalid)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("%w: feed_url must be http(s)", ErrInvalid)
	}
	return u.String(), nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullableSport(s string) any {
	if s == string(models.SportSoccer) || s == string(models.SportLacrosse) {
		return s
	}
	return nil
}
