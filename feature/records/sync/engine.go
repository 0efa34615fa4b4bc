package sync

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"refdesk/core/diff"
	"refdesk/core/store"
	"refdesk/feature/records/models"
)

// Engine performs snapshot reconciliation against the remote store. All
// operations are scoped to one owning account and never touch rows outside
// it. A remote write failure aborts the remaining steps of the current call;
// no transaction wraps the sequence, so partial effects from an aborted
// FullReplace are possible.
type Engine struct {
	store  store.Client
	logger *zap.Logger
	now    func() time.Time
}

func NewEngine(st store.Client, logger *zap.Logger) *Engine {
	return &Engine{store: st, logger: logger, now: time.Now}
}

// EnsureSettings creates the per-scope settings row when none exists yet.
// An existing row is left untouched.
func (e *Engine) EnsureSettings(ctx context.Context, scope string, s models.Settings) error {
	rows, err := e.store.Select(ctx, TableUserSettings, store.Filter{Scope: scope})
	if err != nil {
		return fmt.Errorf("select %s: %w", TableUserSettings, err)
	}
	if len(rows) > 0 {
		return nil
	}
	row := models.RowFromSettings(scope, s, e.now().UTC())
	if err := e.store.Insert(ctx, TableUserSettings, []store.Row{row}); err != nil {
		return fmt.Errorf("insert %s: %w", TableUserSettings, err)
	}
	return nil
}

// FullReplace deletes every remote record for scope across all collections
// and reinserts the snapshot in full. On success the remote state equals the
// snapshot exactly, including repaired game/event links.
func (e *Engine) FullReplace(ctx context.Context, scope string, snap models.Snapshot) error {
	deleteOrder := []string{
		TableCsvImportRows,
		TableCsvImports,
		TableRequirementActivities,
		TableRequirementInstances,
		TableRequirementDefinitions,
		TableExpenses,
		TableCalendarEvents,
		TableGames,
		TableUserSettings,
	}
	for _, table := range deleteOrder {
		if err := e.store.Delete(ctx, table, store.Filter{Scope: scope}); err != nil {
			return fmt.Errorf("delete %s: %w", table, err)
		}
	}

	settingsRow := models.RowFromSettings(scope, snap.Settings, e.now().UTC())
	if err := e.store.Upsert(ctx, TableUserSettings, []store.Row{settingsRow}, []string{"user_id"}); err != nil {
		return fmt.Errorf("upsert %s: %w", TableUserSettings, err)
	}

	// Insert games and events with the cross-link columns cleared. The
	// links are backfilled below once both sides exist.
	gameRows := make([]store.Row, 0, len(snap.Games))
	for _, g := range snap.Games {
		r := models.RowFromGame(scope, g)
		r["calendar_event_id"] = nil
		gameRows = append(gameRows, r)
	}
	eventRows := make([]store.Row, 0, len(snap.CalendarEvents))
	for _, ev := range snap.CalendarEvents {
		r := models.RowFromCalendarEvent(scope, ev)
		r["linked_game_id"] = nil
		eventRows = append(eventRows, r)
	}
	if len(gameRows) > 0 {
		if err := e.store.Insert(ctx, TableGames, gameRows); err != nil {
			return fmt.Errorf("insert %s: %w", TableGames, err)
		}
	}
	if len(eventRows) > 0 {
		if err := e.store.Insert(ctx, TableCalendarEvents, eventRows); err != nil {
			return fmt.Errorf("insert %s: %w", TableCalendarEvents, err)
		}
	}

	inserts := []struct {
		table string
		rows  []store.Row
	}{
		{TableExpenses, expenseRows(scope, snap.Expenses)},
		{TableRequirementDefinitions, definitionRows(scope, snap.RequirementDefinitions)},
		{TableRequirementInstances, instanceRows(scope, snap.RequirementInstances)},
		{TableRequirementActivities, activityRows(scope, snap.RequirementActivities)},
		{TableCsvImports, importRows(scope, snap.CsvImports)},
		{TableCsvImportRows, importRowRows(scope, snap.CsvImportRows)},
	}
	for _, ins := range inserts {
		if len(ins.rows) == 0 {
			continue
		}
		if err := e.store.Insert(ctx, ins.table, ins.rows); err != nil {
			return fmt.Errorf("insert %s: %w", ins.table, err)
		}
	}

	if err := e.repairLinks(ctx, scope, snap.Games, snap.CalendarEvents, snap, false); err != nil {
		return err
	}

	e.logger.Info("full replace complete",
		zap.String("scope", scope),
		zap.Int("games", len(snap.Games)),
		zap.Int("calendar_events", len(snap.CalendarEvents)))
	return nil
}

// IncrementalSync computes per-collection diffs between the previously
// confirmed snapshot and the next one, deletes removed identities, and
// upserts changed or added records. Writes are minimal: an unchanged
// collection produces no store calls.
func (e *Engine) IncrementalSync(ctx context.Context, scope string, previous, next models.Snapshot) error {
	if !diff.Equal(previous.Settings, next.Settings) {
		row := models.RowFromSettings(scope, next.Settings, e.now().UTC())
		if err := e.store.Upsert(ctx, TableUserSettings, []store.Row{row}, []string{"user_id"}); err != nil {
			return fmt.Errorf("upsert %s: %w", TableUserSettings, err)
		}
	}

	games := diff.ByKey(previous.Games, next.Games)
	events := diff.ByKey(previous.CalendarEvents, next.CalendarEvents)
	expenses := diff.ByKey(previous.Expenses, next.Expenses)
	definitions := diff.ByKey(previous.RequirementDefinitions, next.RequirementDefinitions)
	instances := diff.ByKey(previous.RequirementInstances, next.RequirementInstances)
	activities := diff.ByKey(previous.RequirementActivities, next.RequirementActivities)
	imports := diff.ByKey(previous.CsvImports, next.CsvImports)
	importRowsDiff := diff.ByKey(previous.CsvImportRows, next.CsvImportRows)

	// Dependents delete before owners.
	deletes := []struct {
		table string
		ids   []string
	}{
		{TableCsvImportRows, importRowsDiff.Deletes},
		{TableCsvImports, imports.Deletes},
		{TableRequirementActivities, activities.Deletes},
		{TableRequirementInstances, instances.Deletes},
		{TableExpenses, expenses.Deletes},
		{TableCalendarEvents, events.Deletes},
		{TableGames, games.Deletes},
		{TableRequirementDefinitions, definitions.Deletes},
	}
	for _, del := range deletes {
		if len(del.ids) == 0 {
			continue
		}
		if err := e.store.Delete(ctx, del.table, store.Filter{Scope: scope, IDs: del.ids}); err != nil {
			return fmt.Errorf("delete %s: %w", del.table, err)
		}
	}

	gameRows := make([]store.Row, 0, len(games.Upserts))
	for _, g := range games.Upserts {
		r := models.RowFromGame(scope, g)
		r["calendar_event_id"] = nil
		gameRows = append(gameRows, r)
	}
	eventRows := make([]store.Row, 0, len(events.Upserts))
	for _, ev := range events.Upserts {
		r := models.RowFromCalendarEvent(scope, ev)
		r["linked_game_id"] = nil
		eventRows = append(eventRows, r)
	}
	if len(gameRows) > 0 {
		if err := e.store.Upsert(ctx, TableGames, gameRows, []string{"id"}); err != nil {
			return fmt.Errorf("upsert %s: %w", TableGames, err)
		}
	}
	if len(eventRows) > 0 {
		if err := e.store.Upsert(ctx, TableCalendarEvents, eventRows, []string{"id"}); err != nil {
			return fmt.Errorf("upsert %s: %w", TableCalendarEvents, err)
		}
	}

	if err := e.repairLinks(ctx, scope, games.Upserts, events.Upserts, next, true); err != nil {
		return err
	}

	upserts := []struct {
		table string
		rows  []store.Row
	}{
		{TableRequirementDefinitions, definitionRows(scope, definitions.Upserts)},
		{TableRequirementInstances, instanceRows(scope, instances.Upserts)},
		{TableRequirementActivities, activityRows(scope, activities.Upserts)},
		{TableExpenses, expenseRows(scope, expenses.Upserts)},
		{TableCsvImports, importRows(scope, imports.Upserts)},
		{TableCsvImportRows, importRowRows(scope, importRowsDiff.Upserts)},
	}
	for _, up := range upserts {
		if len(up.rows) == 0 {
			continue
		}
		if err := e.store.Upsert(ctx, up.table, up.rows, []string{"id"}); err != nil {
			return fmt.Errorf("upsert %s: %w", up.table, err)
		}
	}
	return nil
}

// repairLinks backfills the game/event cross-links that were cleared before
// insert. games and events are the records whose rows were just written; link
// targets are resolved against the full snapshot, not that subset, so a link
// to an unchanged record on the other side survives. References to records
// absent from the snapshot are skipped rather than written dangling. In
// clearStale mode a written record with no link writes an explicit NULL,
// clearing whatever the remote row held before.
func (e *Engine) repairLinks(ctx context.Context, scope string, games []models.Game, events []models.CalendarEvent, snap models.Snapshot, clearStale bool) error {
	gameIDs := make(map[string]struct{}, len(snap.Games))
	for _, g := range snap.Games {
		gameIDs[g.ID] = struct{}{}
	}
	eventIDs := make(map[string]struct{}, len(snap.CalendarEvents))
	for _, ev := range snap.CalendarEvents {
		eventIDs[ev.ID] = struct{}{}
	}

	for _, g := range games {
		var value any
		switch {
		case g.CalendarEventID == "" && clearStale:
			value = nil
		case g.CalendarEventID == "":
			continue
		default:
			if _, ok := eventIDs[g.CalendarEventID]; !ok {
				continue
			}
			value = g.CalendarEventID
		}
		patch := store.Row{"calendar_event_id": value}
		if err := e.store.Update(ctx, TableGames, patch, store.Filter{Scope: scope, IDs: []string{g.ID}}); err != nil {
			return fmt.Errorf("link %s: %w", TableGames, err)
		}
	}
	for _, ev := range events {
		var value any
		switch {
		case ev.LinkedGameID == "" && clearStale:
			value = nil
		case ev.LinkedGameID == "":
			continue
		default:
			if _, ok := gameIDs[ev.LinkedGameID]; !ok {
				continue
			}
			value = ev.LinkedGameID
		}
		patch := store.Row{"linked_game_id": value}
		if err := e.store.Update(ctx, TableCalendarEvents, patch, store.Filter{Scope: scope, IDs: []string{ev.ID}}); err != nil {
			return fmt.Errorf("link %s: %w", TableCalendarEvents, err)
		}
	}
	return nil
}

// FetchAll reads every collection for scope concurrently and reassembles the
// snapshot. Any single collection's failure aborts the whole join.
func (e *Engine) FetchAll(ctx context.Context, scope string) (models.Snapshot, error) {
	var snap models.Snapshot
	var settingsRows []store.Row

	g, ctx := errgroup.WithContext(ctx)
	fetch := func(table string, assign func([]store.Row)) {
		g.Go(func() error {
			rows, err := e.store.Select(ctx, table, store.Filter{Scope: scope})
			if err != nil {
				return fmt.Errorf("select %s: %w", table, err)
			}
			assign(rows)
			return nil
		})
	}

	fetch(TableUserSettings, func(rows []store.Row) { settingsRows = rows })
	fetch(TableGames, func(rows []store.Row) {
		snap.Games = mapRows(rows, models.GameFromRow)
	})
	fetch(TableCalendarEvents, func(rows []store.Row) {
		snap.CalendarEvents = mapRows(rows, models.CalendarEventFromRow)
	})
	fetch(TableExpenses, func(rows []store.Row) {
		snap.Expenses = mapRows(rows, models.ExpenseFromRow)
	})
	fetch(TableRequirementDefinitions, func(rows []store.Row) {
		snap.RequirementDefinitions = mapRows(rows, models.RequirementDefinitionFromRow)
	})
	fetch(TableRequirementInstances, func(rows []store.Row) {
		snap.RequirementInstances = mapRows(rows, models.RequirementInstanceFromRow)
	})
	fetch(TableRequirementActivities, func(rows []store.Row) {
		snap.RequirementActivities = mapRows(rows, models.RequirementActivityFromRow)
	})
	fetch(TableCsvImports, func(rows []store.Row) {
		snap.CsvImports = mapRows(rows, models.CsvImportFromRow)
	})
	fetch(TableCsvImportRows, func(rows []store.Row) {
		snap.CsvImportRows = mapRows(rows, models.CsvImportRowFromRow)
	})

	if err := g.Wait(); err != nil {
		return models.Snapshot{}, err
	}

	snap.Settings = models.DefaultSettings()
	if len(settingsRows) > 0 {
		snap.Settings = models.SettingsFromRow(settingsRows[0])
	}
	return snap, nil
}

func mapRows[T any](rows []store.Row, from func(store.Row) T) []T {
	out := make([]T, 0, len(rows))
	for _, r := range rows {
		out = append(out, from(r))
	}
	return out
}

func expenseRows(scope string, items []models.Expense) []store.Row {
	out := make([]store.Row, 0, len(items))
	for _, it := range items {
		out = append(out, models.RowFromExpense(scope, it))
	}
	return out
}

func definitionRows(scope string, items []models.RequirementDefinition) []store.Row {
	out := make([]store.Row, 0, len(items))
	for _, it := range items {
		out = append(out, models.RowFromRequirementDefinition(scope, it))
	}
	return out
}

func instanceRows(scope string, items []models.RequirementInstance) []store.Row {
	out := make([]store.Row, 0, len(items))
	for _, it := range items {
		out = append(out, models.RowFromRequirementInstance(scope, it))
	}
	return out
}

func activityRows(scope string, items []models.RequirementActivity) []store.Row {
	out := make([]store.Row, 0, len(items))
	for _, it := range items {
		out = append(out, models.RowFromRequirementActivity(scope, it))
	}
	return out
}

func importRows(scope string, items []models.CsvImport) []store.Row {
	out := make([]store.Row, 0, len(items))
	for _, it := range items {
		out = append(out, models.RowFromCsvImport(scope, it))
	}
	return out
}

func importRowRows(scope string, items []models.CsvImportRow) []store.Row {
	out := make([]store.Row, 0, len(items))
	for _, it := range items {
		out = append(out, models.RowFromCsvImportRow(scope, it))
	}
	return out
}
