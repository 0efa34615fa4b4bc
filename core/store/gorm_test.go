package store

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"refdesk/core/database"
)

func setupSQLiteStore(t *testing.T) Client {
	db, err := database.Connect(database.Config{Driver: "sqlite", Name: ":memory:"})
	require.NoError(t, err)

	require.NoError(t, db.Exec(`CREATE TABLE calendar_events (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		external_ref TEXT,
		title TEXT,
		source TEXT,
		UNIQUE (user_id, external_ref)
	)`).Error)

	return NewGormStore(db)
}

func TestGormStoreInsertAndSelect(t *testing.T) {
	st := setupSQLiteStore(t)
	ctx := context.Background()

	err := st.Insert(ctx, "calendar_events", []Row{
		{"id": "e1", "user_id": "user-1", "external_ref": "RQ:f:1", "title": "First", "source": "RefQuest"},
		{"id": "e2", "user_id": "user-1", "external_ref": "RQ:f:2", "title": "Second", "source": "RefQuest"},
		{"id": "e3", "user_id": "user-2", "external_ref": "RQ:f:3", "title": "Other", "source": "Manual"},
	})
	require.NoError(t, err)

	rows, err := st.Select(ctx, "calendar_events", Filter{Scope: "user-1"})
	require.NoError(t, err)
	assert.Len(t, rows, 2)

	rows, err = st.Select(ctx, "calendar_events", Filter{
		Scope: "user-1",
		IDs:   []string{"e2"},
	})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Second", rows[0]["title"])

	rows, err = st.Select(ctx, "calendar_events", Filter{
		Eq: map[string]any{"source": "Manual"},
	})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "e3", rows[0]["id"])

	rows, err = st.Select(ctx, "calendar_events", Filter{
		Scope: "user-1",
		In:    map[string][]string{"external_ref": {"RQ:f:1", "RQ:f:2"}},
	})
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestGormStoreUpsertOnConflict(t *testing.T) {
	st := setupSQLiteStore(t)
	ctx := context.Background()

	first := []Row{{"id": "e1", "user_id": "user-1", "external_ref": "RQ:f:1", "title": "Before", "source": "RefQuest"}}
	require.NoError(t, st.Upsert(ctx, "calendar_events", first, []string{"user_id", "external_ref"}))

	// Same (user_id, external_ref) must update in place rather than insert.
	second := []Row{{"id": "e1", "user_id": "user-1", "external_ref": "RQ:f:1", "title": "After", "source": "RefQuest"}}
	require.NoError(t, st.Upsert(ctx, "calendar_events", second, []string{"user_id", "external_ref"}))

	rows, err := st.Select(ctx, "calendar_events", Filter{Scope: "user-1"})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "After", rows[0]["title"])

	// A different ref inserts a new row.
	third := []Row{{"id": "e2", "user_id": "user-1", "external_ref": "RQ:f:2", "title": "New", "source": "RefQuest"}}
	require.NoError(t, st.Upsert(ctx, "calendar_events", third, []string{"user_id", "external_ref"}))

	rows, err = st.Select(ctx, "calendar_events", Filter{Scope: "user-1"})
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestGormStoreUpdateAndDelete(t *testing.T) {
	st := setupSQLiteStore(t)
	ctx := context.Background()

	require.NoError(t, st.Insert(ctx, "calendar_events", []Row{
		{"id": "e1", "user_id": "user-1", "external_ref": "RQ:f:1", "title": "One", "source": "RefQuest"},
		{"id": "e2", "user_id": "user-1", "external_ref": "RQ:f:2", "title": "Two", "source": "RefQuest"},
		{"id": "e3", "user_id": "user-2", "external_ref": "RQ:f:3", "title": "Three", "source": "RefQuest"},
	}))

	err := st.Update(ctx, "calendar_events", Row{"source": "Manual"}, Filter{Scope: "user-1", IDs: []string{"e1"}})
	require.NoError(t, err)

	rows, err := st.Select(ctx, "calendar_events", Filter{IDs: []string{"e1"}})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Manual", rows[0]["source"])

	require.NoError(t, st.Delete(ctx, "calendar_events", Filter{Scope: "user-1"}))

	rows, err = st.Select(ctx, "calendar_events", Filter{})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "e3", rows[0]["id"])
}

func TestGormStoreEmptyBatchesAreNoOps(t *testing.T) {
	st := setupSQLiteStore(t)
	ctx := context.Background()

	assert.NoError(t, st.Insert(ctx, "calendar_events", nil))
	assert.NoError(t, st.Upsert(ctx, "calendar_events", nil, []string{"id"}))
}

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to open mock sql db: %v", err)
	}

	dialector := mysql.New(mysql.Config{
		Conn:                      db,
		SkipInitializeWithVersion: true,
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to open gorm db: %v", err)
	}

	return gormDB, mock
}

func TestGormStoreWrapsErrorsWithTable(t *testing.T) {
	db, mock := setupMockDB(t)
	st := NewGormStore(db)
	ctx := context.Background()
	boom := errors.New("connection lost")

	mock.ExpectQuery("SELECT (.+) FROM `games`").WillReturnError(boom)
	_, err := st.Select(ctx, "games", Filter{Scope: "user-1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "select games:")
	assert.ErrorIs(t, err, boom)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM `games`").WillReturnError(boom)
	mock.ExpectRollback()
	err = st.Delete(ctx, "games", Filter{Scope: "user-1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "delete games:")

	assert.NoError(t, mock.ExpectationsWereMet())
}
