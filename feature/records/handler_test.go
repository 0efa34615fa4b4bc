package records_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"refdesk/core/middleware/scope"
	"refdesk/core/store"
	"refdesk/feature/records"
	"refdesk/feature/records/models"
)

func newTestApp(t *testing.T) (*fiber.App, *store.MemoryStore) {
	t.Helper()
	st := store.NewMemoryStore()
	app := fiber.New()
	app.Use(scope.New())
	require.NoError(t, records.NewFeature(st, zap.NewNop()).Load(app))
	return app, st
}

func TestHandleFetchRequiresScope(t *testing.T) {
	app, _ := newTestApp(t)

	req := httptest.NewRequest("GET", "/records", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestHandleFetchReturnsDefaultsForNewScope(t *testing.T) {
	app, st := newTestApp(t)

	req := httptest.NewRequest("GET", "/records", nil)
	req.Header.Set(scope.Header, "user-1")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var snap models.Snapshot
	require.NoError(t, json.Unmarshal(body, &snap))
	assert.Equal(t, models.DefaultSettings(), snap.Settings)
	assert.Empty(t, snap.Games)

	// First fetch creates the settings row.
	assert.Equal(t, 1, st.Count("user_settings"))
}

func TestReplaceThenFetch(t *testing.T) {
	app, _ := newTestApp(t)

	snap := models.Snapshot{
		Settings: models.DefaultSettings(),
		Games: []models.Game{{
			ID:               "g1",
			Sport:            models.SportSoccer,
			CompetitionLevel: models.LevelClub,
			GameDate:         "2025-04-01",
			LocationAddress:  "Riverside Park",
			Status:           models.GameScheduled,
		}},
	}
	payload, err := json.Marshal(snap)
	require.NoError(t, err)

	req := httptest.NewRequest("POST", "/records/replace", bytes.NewReader(payload))
	req.Header.Set(scope.Header, "user-1")
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	req = httptest.NewRequest("GET", "/records", nil)
	req.Header.Set(scope.Header, "user-1")
	resp, err = app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var got models.Snapshot
	require.NoError(t, json.Unmarshal(body, &got))
	require.Len(t, got.Games, 1)
	assert.Equal(t, "g1", got.Games[0].ID)
	assert.Equal(t, models.SportSoccer, got.Games[0].Sport)
}

func TestHandleSyncRejectsBadBody(t *testing.T) {
	app, _ := newTestApp(t)

	req := httptest.NewRequest("POST", "/records/sync", bytes.NewReader([]byte("{not json")))
	req.Header.Set(scope.Header, "user-1")
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestHandleSyncAppliesDiff(t *testing.T) {
	app, st := newTestApp(t)

	prev := models.Snapshot{Settings: models.DefaultSettings()}
	next := prev
	next.Expenses = []models.Expense{{
		ID:          "x1",
		ExpenseDate: "2025-04-02",
		Amount:      12.75,
		Category:    "Travel",
	}}

	payload, err := json.Marshal(map[string]models.Snapshot{"previous": prev, "next": next})
	require.NoError(t, err)

	req := httptest.NewRequest("POST", "/records/sync", bytes.NewReader(payload))
	req.Header.Set(scope.Header, "user-1")
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	assert.Equal(t, 1, st.Count("expenses"))
}
