package ingest

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"refdesk/core/store"
	"refdesk/core/utils"
	"refdesk/feature/feeds/classify"
	"refdesk/feature/records/models"
	recsync "refdesk/feature/records/sync"
)

const feedsTable = "calendar_feeds"

// Result sums the outcome of one or more feed syncs. Errors collects one
// line per failed feed or per non-fatal step failure; successful feeds'
// counters are reported alongside.
type Result struct {
	CreatedEvents int      `json:"created_events"`
	UpdatedEvents int      `json:"updated_events"`
	CreatedGames  int      `json:"created_games"`
	UpdatedGames  int      `json:"updated_games"`
	Errors        []string `json:"errors"`
}

func (r *Result) merge(other Result) {
	r.CreatedEvents += other.CreatedEvents
	r.UpdatedEvents += other.UpdatedEvents
	r.CreatedGames += other.CreatedGames
	r.UpdatedGames += other.UpdatedGames
	r.Errors = append(r.Errors, other.Errors...)
}

// feed is the internal subscription record. Unlike models.CalendarFeed it
// carries the real feed URL, which never leaves this package.
type feed struct {
	ID            string
	Name          string
	Platform      models.FeedPlatform
	Sport         models.Sport
	DefaultLeague string
	URL           string
	Enabled       bool
}

func feedFromRow(r store.Row) feed {
	return feed{
		ID:            utils.ToString(r["id"]),
		Name:          utils.ToString(r["name"]),
		Platform:      models.FeedPlatform(utils.ToString(r["platform"])),
		Sport:         models.Sport(utils.ToString(r["sport"])),
		DefaultLeague: utils.ToString(r["default_league"]),
		URL:           utils.ToString(r["feed_url"]),
		Enabled:       utils.ToBool(r["enabled"]),
	}
}

// Syncer runs feed ingestion for one scope at a time.
type Syncer struct {
	store    store.Client
	http     *http.Client
	archiver Archiver
	loc      *time.Location
	logger   *zap.Logger
	now      func() time.Time
	newID    func() string
}

// NewSyncer creates a feed syncer. The archiver may be nil, in which case
// fetched bodies are not retained.
func NewSyncer(st store.Client, cfg Config, archiver Archiver, logger *zap.Logger) *Syncer {
	return &Syncer{
		store:    st,
		http:     &http.Client{Timeout: cfg.FetchTimeout()},
		archiver: archiver,
		loc:      cfg.Location(),
		logger:   logger,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// SyncAll syncs one feed by id, or every enabled feed for the scope when
// feedID is empty. Feeds run strictly sequentially; a failing feed is
// converted into a single error line naming it and sibling feeds still run.
func (s *Syncer) SyncAll(ctx context.Context, scope, feedID string) (Result, error) {
	f := store.Filter{Scope: scope}
	if feedID != "" {
		f.IDs = []string{feedID}
	} else {
		f.Eq = map[string]any{"enabled": true}
	}
	rows, err := s.store.Select(ctx, feedsTable, f)
	if err != nil {
		return Result{}, fmt.Errorf("select %s: %w", feedsTable, err)
	}

	var out Result
	for _, row := range rows {
		fd := feedFromRow(row)
		res, err := s.syncFeed(ctx, scope, fd)
		if err != nil {
			out.Errors = append(out.Errors, fmt.Sprintf("%s: %v", fd.Name, err))
			continue
		}
		out.merge(res)
	}
	return out, nil
}

// normalized is one feed entry after parsing and classification.
type normalized struct {
	externalRef string
	title       string
	location    string
	notes       string
	start       time.Time
	end         time.Time
	allDay      bool
	gameDate    string
	startTime   string
	cls         classify.Result
}

// syncFeed ingests a single feed. Fetch and parse failures are reported in
// the result, never as an error; a store failure aborts the remaining steps
// and is returned so the caller can attribute it to this feed.
func (s *Syncer) syncFeed(ctx context.Context, scope string, fd feed) (Result, error) {
	var res Result
	now := s.now().UTC()

	body, err := s.fetch(ctx, fd.URL)
	if err != nil {
		res.Errors = append(res.Errors, fmt.Sprintf("%s: fetch failed: %v", fd.Name, err))
		return res, nil
	}

	if s.archiver != nil {
		if err := s.archiver.Archive(ctx, fd.ID, body); err != nil {
			s.logger.Warn("feed archive failed", zap.String("feed", fd.Name), zap.Error(err))
		}
	}

	entries, err := ParseEvents(body)
	if err != nil {
		res.Errors = append(res.Errors, fmt.Sprintf("%s: parse failed: %v", fd.Name, err))
		return res, nil
	}

	if len(entries) == 0 {
		if err := s.stampSynced(ctx, scope, fd.ID, now); err != nil {
			res.Errors = append(res.Errors, fmt.Sprintf("%s: last_synced_at update failed: %v", fd.Name, err))
		}
		return res, nil
	}

	items := make([]normalized, 0, len(entries))
	for _, ev := range entries {
		items = append(items, s.normalize(fd, ev))
	}

	refs := make([]string, 0, len(items))
	for _, n := range items {
		refs = append(refs, n.externalRef)
	}
	existingRows, err := s.store.Select(ctx, recsync.TableCalendarEvents, store.Filter{
		Scope: scope,
		In:    map[string][]string{"external_ref": refs},
	})
	if err != nil {
		return res, fmt.Errorf("%s lookup: %w", recsync.TableCalendarEvents, err)
	}
	existingByRef := make(map[string]store.Row, len(existingRows))
	for _, r := range existingRows {
		existingByRef[utils.ToString(r["external_ref"])] = r
	}

	eventRows := make([]store.Row, 0, len(items))
	eventIDByRef := make(map[string]string, len(items))
	for _, n := range items {
		existing := existingByRef[n.externalRef]
		id := s.newID()
		createdAt := any(now)
		linkedGameID := any(nil)
		source := string(models.SourceManual)
		if existing != nil {
			id = utils.ToString(existing["id"])
			createdAt = existing["created_at"]
			linkedGameID = existing["linked_game_id"]
			if v := utils.ToString(existing["source"]); v != "" {
				source = v
			}
			res.UpdatedEvents++
		} else {
			res.CreatedEvents++
		}
		eventIDByRef[n.externalRef] = id
		eventRows = append(eventRows, store.Row{
			"id":                     id,
			"user_id":                scope,
			"event_type":             string(models.EventGame),
			"title":                  n.title,
			"start_ts":               n.start,
			"end_ts":                 n.end,
			"all_day":                n.allDay,
			"timezone":               s.loc.String(),
			"location_address":       nullable(n.location),
			"notes":                  nullable(n.notes),
			"source":                 source,
			"external_ref":           n.externalRef,
			"status":                 string(models.EventScheduled),
			"linked_game_id":         linkedGameID,
			"platform_confirmations": "{}",
			"created_at":             createdAt,
			"updated_at":             now,
		})
	}
	if err := s.store.Upsert(ctx, recsync.TableCalendarEvents, eventRows, []string{"user_id", "external_ref"}); err != nil {
		return res, fmt.Errorf("%s upsert: %w", recsync.TableCalendarEvents, err)
	}

	eventIDs := make([]string, 0, len(eventIDByRef))
	for _, id := range eventIDByRef {
		eventIDs = append(eventIDs, id)
	}
	gameRows, err := s.store.Select(ctx, recsync.TableGames, store.Filter{
		Scope: scope,
		In:    map[string][]string{"calendar_event_id": eventIDs},
	})
	if err != nil {
		return res, fmt.Errorf("%s lookup: %w", recsync.TableGames, err)
	}
	gameByEventID := make(map[string]store.Row, len(gameRows))
	for _, r := range gameRows {
		gameByEventID[utils.ToString(r["calendar_event_id"])] = r
	}

	upserts := make([]store.Row, 0, len(items))
	linkByEvent := make(map[string]string, len(items))
	for _, n := range items {
		eventID := eventIDByRef[n.externalRef]
		existing := gameByEventID[eventID]
		row := s.buildGameRow(scope, fd, n, eventID, existing, now)
		if existing != nil {
			res.UpdatedGames++
		} else {
			res.CreatedGames++
		}
		linkByEvent[eventID] = utils.ToString(row["id"])
		upserts = append(upserts, row)
	}
	if err := s.store.Upsert(ctx, recsync.TableGames, upserts, []string{"id"}); err != nil {
		return res, fmt.Errorf("%s upsert: %w", recsync.TableGames, err)
	}

	// Second-pass link repair: point each event back at its game.
	for eventID, gameID := range linkByEvent {
		patch := store.Row{"linked_game_id": gameID, "updated_at": now}
		if err := s.store.Update(ctx, recsync.TableCalendarEvents, patch, store.Filter{Scope: scope, IDs: []string{eventID}}); err != nil {
			res.Errors = append(res.Errors, fmt.Sprintf("%s: link update failed for event %s: %v", fd.Name, eventID, err))
		}
	}

	if err := s.stampSynced(ctx, scope, fd.ID, now); err != nil {
		res.Errors = append(res.Errors, fmt.Sprintf("%s: last_synced_at update failed: %v", fd.Name, err))
	}

	s.logger.Info("feed synced",
		zap.String("scope", scope),
		zap.String("feed", fd.Name),
		zap.Int("created_events", res.CreatedEvents),
		zap.Int("updated_events", res.UpdatedEvents),
		zap.Int("created_games", res.CreatedGames),
		zap.Int("updated_games", res.UpdatedGames),
		zap.Int("errors", len(res.Errors)))
	return res, nil
}

func (s *Syncer) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("HTTP %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

func (s *Syncer) normalize(fd feed, ev Event) normalized {
	start := ev.Start
	end := ev.End
	if end.IsZero() {
		end = start.Add(2 * time.Hour)
	}
	text := classify.EventText(ev.Summary, ev.Description, ev.Location)

	title := ev.Summary
	if title == "" {
		title = "Assigned Game"
	}

	local := start.In(s.loc)
	startTime := local.Format("15:04")
	if ev.AllDay {
		startTime = ""
	}

	return normalized{
		externalRef: fmt.Sprintf("%s:%s:%s", fd.Platform, fd.ID, ev.UID),
		title:       title,
		location:    strings.TrimSpace(ev.Location),
		notes:       strings.TrimSpace(ev.Description),
		start:       start,
		end:         end,
		allDay:      ev.AllDay,
		gameDate:    local.Format("2006-01-02"),
		startTime:   startTime,
		cls:         classify.Event(fd.Platform, fd.Sport, text),
	}
}

// buildGameRow merges one normalized entry with the existing linked game, if
// any. Fee, paid flag/date, and distances are user-entered and always carry
// forward; the feed's default league only fills a blank league.
func (s *Syncer) buildGameRow(scope string, fd feed, n normalized, eventID string, existing store.Row, now time.Time) store.Row {
	id := s.newID()
	createdAt := any(now)
	var gameFee, paidDate, distance, roundtrip, homeTeam, awayTeam, payConfirmations any
	paidConfirmed := false
	status := string(models.GameScheduled)
	league := nullable(fd.DefaultLeague)
	levelDetail := nullable(n.cls.LevelDetail)
	role := nullable(n.cls.Role)
	startTime := nullable(n.startTime)
	location := n.location
	notes := nullable(n.notes)
	payConfirmations = "{}"

	if existing != nil {
		id = utils.ToString(existing["id"])
		createdAt = existing["created_at"]
		gameFee = existing["game_fee"]
		paidConfirmed = utils.ToBool(existing["paid_confirmed"])
		paidDate = existing["paid_date"]
		distance = existing["distance_miles"]
		roundtrip = existing["roundtrip_miles"]
		homeTeam = existing["home_team"]
		awayTeam = existing["away_team"]
		payConfirmations = existing["platform_confirmations"]
		if v := utils.ToString(existing["status"]); v != "" {
			status = v
		}
		if v := utils.ToString(existing["league"]); v != "" {
			league = v
		}
		if n.cls.LevelDetail == "" {
			levelDetail = existing["level_detail"]
		}
		if n.cls.Role == "" {
			role = existing["role"]
		}
		if n.startTime == "" {
			startTime = existing["start_time"]
		}
		if location == "" {
			location = utils.ToString(existing["location_address"])
		}
		if n.notes == "" {
			notes = existing["notes"]
		}
	}

	return store.Row{
		"id":                     id,
		"user_id":                scope,
		"sport":                  string(n.cls.Sport),
		"competition_level":      string(n.cls.CompetitionLevel),
		"league":                 league,
		"level_detail":           levelDetail,
		"game_date":              n.gameDate,
		"start_time":             startTime,
		"location_address":       location,
		"distance_miles":         distance,
		"roundtrip_miles":        roundtrip,
		"role":                   role,
		"status":                 status,
		"game_fee":               gameFee,
		"paid_confirmed":         paidConfirmed,
		"paid_date":              paidDate,
		"home_team":              homeTeam,
		"away_team":              awayTeam,
		"notes":                  notes,
		"platform_confirmations": payConfirmations,
		"calendar_event_id":      eventID,
		"created_at":             createdAt,
		"updated_at":             now,
	}
}

func (s *Syncer) stampSynced(ctx context.Context, scope, feedID string, now time.Time) error {
	patch := store.Row{"last_synced_at": now, "updated_at": now}
	return s.store.Update(ctx, feedsTable, patch, store.Filter{Scope: scope, IDs: []string{feedID}})
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
