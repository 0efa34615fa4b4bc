package sync

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"refdesk/core/store"
	"refdesk/feature/records/models"
)

func floatPtr(f float64) *float64 { return &f }

func intValuePtr(i int) *int { return &i }

func snapshotFixture() models.Snapshot {
	created := time.Date(2025, 2, 1, 9, 0, 0, 0, time.UTC)
	settings := models.DefaultSettings()
	settings.HomeAddress = "12 Elm St, Rochester NY"

	return models.Snapshot{
		Settings: settings,
		Games: []models.Game{
			{
				ID:               "g1",
				Sport:            models.SportLacrosse,
				CompetitionLevel: models.LevelHighSchool,
				LevelDetail:      "Varsity",
				GameDate:         "2025-03-01",
				StartTime:        "17:00",
				LocationAddress:  "Central HS Field 2",
				Status:           models.GameScheduled,
				GameFee:          floatPtr(85),
				PaidConfirmed:    true,
				PaidDate:         "2025-03-05",
				PlatformConfirmations: map[string]bool{
					string(models.PlatformRefQuest): true,
				},
				CalendarEventID: "e1",
				CreatedAt:       created,
				UpdatedAt:       created,
			},
			{
				ID:               "g2",
				Sport:            models.SportSoccer,
				CompetitionLevel: models.LevelClub,
				LevelDetail:      "U15",
				GameDate:         "2025-03-02",
				LocationAddress:  "Riverside Park",
				Status:           models.GameScheduled,
				CreatedAt:        created,
				UpdatedAt:        created,
			},
		},
		CalendarEvents: []models.CalendarEvent{
			{
				ID:           "e1",
				EventType:    models.EventGame,
				Title:        "Varsity Boys Lacrosse",
				Start:        time.Date(2025, 3, 1, 17, 0, 0, 0, time.UTC),
				End:          time.Date(2025, 3, 1, 19, 0, 0, 0, time.UTC),
				Timezone:     "America/New_York",
				Source:       models.SourceManual,
				Status:       models.EventScheduled,
				LinkedGameID: "g1",
				CreatedAt:    created,
				UpdatedAt:    created,
			},
			{
				ID:        "e2",
				EventType: models.EventBlock,
				Title:     "Unavailable",
				Start:     time.Date(2025, 3, 3, 8, 0, 0, 0, time.UTC),
				End:       time.Date(2025, 3, 3, 12, 0, 0, 0, time.UTC),
				AllDay:    false,
				Timezone:  "America/New_York",
				Source:    models.SourceManual,
				Status:    models.EventScheduled,
				CreatedAt: created,
				UpdatedAt: created,
			},
		},
		Expenses: []models.Expense{
			{
				ID:            "x1",
				ExpenseDate:   "2025-02-20",
				Amount:        42.50,
				Category:      "Equipment",
				TaxDeductible: true,
				CreatedAt:     created,
				UpdatedAt:     created,
			},
		},
		RequirementDefinitions: []models.RequirementDefinition{
			{
				ID:            "d1",
				Name:          "Annual rules exam",
				Frequency:     "annual",
				RequiredCount: intValuePtr(1),
				EvidenceType:  "score",
				CreatedAt:     created,
				UpdatedAt:     created,
			},
		},
		RequirementInstances: []models.RequirementInstance{
			{
				ID:           "i1",
				DefinitionID: "d1",
				Year:         intValuePtr(2025),
				Status:       "pending",
				CreatedAt:    created,
				UpdatedAt:    created,
			},
		},
		RequirementActivities: []models.RequirementActivity{
			{
				ID:           "a1",
				InstanceID:   "i1",
				ActivityDate: "2025-02-15",
				Quantity:     1,
				CreatedAt:    created,
				UpdatedAt:    created,
			},
		},
		CsvImports: []models.CsvImport{
			{
				ID:         "c1",
				ImportType: "games",
				FileName:   "spring.csv",
				ImportedAt: created,
				RowCount:   1,
			},
		},
		CsvImportRows: []models.CsvImportRow{
			{
				ID:        "r1",
				ImportID:  "c1",
				RowNumber: 1,
				RawJSON:   map[string]any{"home": "Tigers", "away": "Lions"},
				Status:    "created",
			},
		},
	}
}

func newTestEngine(st store.Client) *Engine {
	e := NewEngine(st, zap.NewNop())
	e.now = func() time.Time { return time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC) }
	return e
}

func TestFullReplaceThenFetchAllRoundTrips(t *testing.T) {
	st := store.NewMemoryStore()
	engine := newTestEngine(st)
	snap := snapshotFixture()

	require.NoError(t, engine.FullReplace(context.Background(), "user-1", snap))

	got, err := engine.FetchAll(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, snap, got)

	// Links survive the strip/backfill passes.
	require.Len(t, got.Games, 2)
	assert.Equal(t, "e1", got.Games[0].CalendarEventID)
	assert.Equal(t, "g1", got.CalendarEvents[0].LinkedGameID)
	assert.Empty(t, got.Games[1].CalendarEventID)
}

func TestFullReplaceIsScoped(t *testing.T) {
	st := store.NewMemoryStore()
	engine := newTestEngine(st)

	require.NoError(t, engine.FullReplace(context.Background(), "user-1", snapshotFixture()))
	require.NoError(t, engine.FullReplace(context.Background(), "user-2", snapshotFixture()))

	// Replacing one scope leaves the other untouched.
	require.NoError(t, engine.FullReplace(context.Background(), "user-1", models.Snapshot{Settings: models.DefaultSettings()}))

	other, err := engine.FetchAll(context.Background(), "user-2")
	require.NoError(t, err)
	assert.Len(t, other.Games, 2)

	cleared, err := engine.FetchAll(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Empty(t, cleared.Games)
}

func TestIncrementalSyncNoChangesWritesNothing(t *testing.T) {
	st := store.NewMemoryStore()
	engine := newTestEngine(st)
	snap := snapshotFixture()
	require.NoError(t, engine.FullReplace(context.Background(), "user-1", snap))
	st.Ops = nil

	require.NoError(t, engine.IncrementalSync(context.Background(), "user-1", snap, snapshotFixture()))
	assert.Empty(t, st.Ops)
}

func TestIncrementalSyncWritesOnlyChangedCollections(t *testing.T) {
	st := store.NewMemoryStore()
	engine := newTestEngine(st)
	prev := snapshotFixture()
	require.NoError(t, engine.FullReplace(context.Background(), "user-1", prev))
	st.Ops = nil

	next := snapshotFixture()
	next.Games[1].GameFee = floatPtr(60)
	next.Expenses = nil

	require.NoError(t, engine.IncrementalSync(context.Background(), "user-1", prev, next))
	assert.Equal(t, []string{
		"delete:" + TableExpenses,
		"upsert:" + TableGames,
		"update:" + TableGames,
	}, st.Ops)

	got, err := engine.FetchAll(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, got.Games, 2)
	assert.Equal(t, floatPtr(60), got.Games[1].GameFee)
	assert.Empty(t, got.Expenses)
	// The untouched game keeps its link.
	assert.Equal(t, "e1", got.Games[0].CalendarEventID)
}

func TestIncrementalSyncDeletesDependentsFirst(t *testing.T) {
	st := store.NewMemoryStore()
	engine := newTestEngine(st)
	prev := snapshotFixture()
	require.NoError(t, engine.FullReplace(context.Background(), "user-1", prev))
	st.Ops = nil

	next := models.Snapshot{Settings: prev.Settings}
	require.NoError(t, engine.IncrementalSync(context.Background(), "user-1", prev, next))

	assert.Equal(t, []string{
		"delete:" + TableCsvImportRows,
		"delete:" + TableCsvImports,
		"delete:" + TableRequirementActivities,
		"delete:" + TableRequirementInstances,
		"delete:" + TableExpenses,
		"delete:" + TableCalendarEvents,
		"delete:" + TableGames,
		"delete:" + TableRequirementDefinitions,
	}, st.Ops)
}

func TestIncrementalSyncKeepsLinkWhenOneSideChanges(t *testing.T) {
	st := store.NewMemoryStore()
	engine := newTestEngine(st)
	prev := snapshotFixture()
	require.NoError(t, engine.FullReplace(context.Background(), "user-1", prev))

	// Only the game changes; its linked event is untouched and never
	// re-upserted.
	next := snapshotFixture()
	next.Games[0].Notes = "moved to field 3"

	require.NoError(t, engine.IncrementalSync(context.Background(), "user-1", prev, next))

	got, err := engine.FetchAll(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, "e1", got.Games[0].CalendarEventID)
	assert.Equal(t, "g1", got.CalendarEvents[0].LinkedGameID)

	// Symmetric case: only the event changes.
	prev = next
	next = snapshotFixture()
	next.Games[0].Notes = "moved to field 3"
	next.CalendarEvents[0].Notes = "rescheduled"

	require.NoError(t, engine.IncrementalSync(context.Background(), "user-1", prev, next))

	got, err = engine.FetchAll(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, "e1", got.Games[0].CalendarEventID)
	assert.Equal(t, "g1", got.CalendarEvents[0].LinkedGameID)
}

func TestIncrementalSyncClearsRemovedLink(t *testing.T) {
	st := store.NewMemoryStore()
	engine := newTestEngine(st)
	prev := snapshotFixture()
	require.NoError(t, engine.FullReplace(context.Background(), "user-1", prev))

	next := snapshotFixture()
	next.Games[0].CalendarEventID = ""
	next.CalendarEvents[0].LinkedGameID = ""

	require.NoError(t, engine.IncrementalSync(context.Background(), "user-1", prev, next))

	got, err := engine.FetchAll(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Empty(t, got.Games[0].CalendarEventID)
	assert.Empty(t, got.CalendarEvents[0].LinkedGameID)
}

func TestIncrementalSyncSkipsDanglingLink(t *testing.T) {
	st := store.NewMemoryStore()
	engine := newTestEngine(st)
	prev := models.Snapshot{Settings: models.DefaultSettings()}

	next := prev
	next.Games = []models.Game{{
		ID:               "g1",
		Sport:            models.SportSoccer,
		CompetitionLevel: models.LevelHighSchool,
		GameDate:         "2025-04-01",
		Status:           models.GameScheduled,
		CalendarEventID:  "ghost",
	}}

	require.NoError(t, engine.IncrementalSync(context.Background(), "user-1", prev, next))

	rows, err := st.Select(context.Background(), TableGames, store.Filter{Scope: "user-1"})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Nil(t, rows[0]["calendar_event_id"])
}

func TestFullReplaceFailureNamesCollection(t *testing.T) {
	st := store.NewMemoryStore()
	st.FailOn["insert:"+TableGames] = errors.New("connection reset")
	engine := newTestEngine(st)

	err := engine.FullReplace(context.Background(), "user-1", snapshotFixture())
	require.Error(t, err)
	assert.Contains(t, err.Error(), TableGames)
}

func TestIncrementalSyncFailureAbortsRemainingSteps(t *testing.T) {
	st := store.NewMemoryStore()
	engine := newTestEngine(st)
	prev := snapshotFixture()
	require.NoError(t, engine.FullReplace(context.Background(), "user-1", prev))
	st.Ops = nil

	st.FailOn["upsert:"+TableCalendarEvents] = errors.New("boom")

	next := snapshotFixture()
	next.Games[0].Notes = "changed"
	next.CalendarEvents[0].Notes = "changed"
	next.Expenses[0].Amount = 99

	err := engine.IncrementalSync(context.Background(), "user-1", prev, next)
	require.Error(t, err)
	assert.Contains(t, err.Error(), TableCalendarEvents)
	// Nothing after the failing step ran.
	assert.NotContains(t, st.Ops, "upsert:"+TableExpenses)
}

func TestFetchAllFailurePropagates(t *testing.T) {
	st := store.NewMemoryStore()
	st.FailOn["select:"+TableExpenses] = errors.New("timeout")
	engine := newTestEngine(st)

	_, err := engine.FetchAll(context.Background(), "user-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), TableExpenses)
}

func TestEnsureSettingsCreatesOnce(t *testing.T) {
	st := store.NewMemoryStore()
	engine := newTestEngine(st)
	settings := models.DefaultSettings()
	settings.HomeAddress = "original"

	require.NoError(t, engine.EnsureSettings(context.Background(), "user-1", settings))
	require.Equal(t, 1, st.Count(TableUserSettings))

	changed := settings
	changed.HomeAddress = "changed"
	require.NoError(t, engine.EnsureSettings(context.Background(), "user-1", changed))
	require.Equal(t, 1, st.Count(TableUserSettings))

	rows, err := st.Select(context.Background(), TableUserSettings, store.Filter{Scope: "user-1"})
	require.NoError(t, err)
	assert.Equal(t, "original", models.SettingsFromRow(rows[0]).HomeAddress)
}
