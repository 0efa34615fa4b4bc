package feeds

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"refdesk/core/store"
	"refdesk/feature/records/models"
)

func newTestService(st store.Client) *Service {
	s := NewService(st, zap.NewNop())
	base := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	seq := 0
	s.now = func() time.Time {
		seq++
		return base.Add(time.Duration(seq) * time.Minute)
	}
	id := 0
	s.newID = func() string {
		id++
		return fmt.Sprintf("feed-%d", id)
	}
	return s
}

func boolPtr(b bool) *bool { return &b }

func strPtr(s string) *string { return &s }

func TestCreateFeed(t *testing.T) {
	st := store.NewMemoryStore()
	svc := newTestService(st)

	feed, err := svc.Create(context.Background(), "user-1", CreateParams{
		Platform:      "RefQuest",
		Name:          "  Spring Lacrosse  ",
		FeedURL:       "https://refquest.example.com/ics?token=secret-token",
		Sport:         "Lacrosse",
		DefaultLeague: "CNY League",
	})
	require.NoError(t, err)
	assert.Equal(t, "feed-1", feed.ID)
	assert.Equal(t, models.PlatformRefQuest, feed.Platform)
	assert.Equal(t, "Spring Lacrosse", feed.Name)
	assert.True(t, feed.Enabled)
	assert.Equal(t, models.SportLacrosse, feed.Sport)
	assert.Equal(t, "CNY League", feed.DefaultLeague)
	assert.Nil(t, feed.LastSyncedAt)
	// The raw URL, token included, never comes back.
	assert.Equal(t, "https://refquest.example.com/...", feed.MaskedFeedURL)
}

func TestCreateFeedValidation(t *testing.T) {
	tests := []struct {
		name   string
		params CreateParams
		want   string
	}{
		{"bad platform", CreateParams{Platform: "Arbiter", Name: "x", FeedURL: "https://a.example.com/f"}, "platform"},
		{"blank name", CreateParams{Platform: "RefQuest", Name: "   ", FeedURL: "https://a.example.com/f"}, "name"},
		{"missing url", CreateParams{Platform: "RefQuest", Name: "x"}, "feed_url"},
		{"non-http url", CreateParams{Platform: "RefQuest", Name: "x", FeedURL: "ftp://a.example.com/f"}, "http"},
		{"garbage url", CreateParams{Platform: "RefQuest", Name: "x", FeedURL: "://nope"}, "valid URL"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := store.NewMemoryStore()
			svc := newTestService(st)
			_, err := svc.Create(context.Background(), "user-1", tt.params)
			require.ErrorIs(t, err, ErrInvalid)
			assert.Contains(t, err.Error(), tt.want)
			// Validation rejects before any write.
			assert.Zero(t, st.Count(Table))
		})
	}
}

func TestPlatformLimits(t *testing.T) {
	st := store.NewMemoryStore()
	svc := newTestService(st)
	ctx := context.Background()

	_, err := svc.Create(ctx, "user-1", CreateParams{Platform: "DragonFly", Name: "df", FeedURL: "https://df.example.com/1"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, "user-1", CreateParams{Platform: "DragonFly", Name: "df2", FeedURL: "https://df.example.com/2"})
	require.ErrorIs(t, err, ErrInvalid)
	assert.Contains(t, err.Error(), "DragonFly")

	for i := 0; i < 8; i++ {
		_, err = svc.Create(ctx, "user-1", CreateParams{
			Platform: "RefQuest",
			Name:     fmt.Sprintf("rq-%d", i),
			FeedURL:  fmt.Sprintf("https://rq.example.com/%d", i),
		})
		require.NoError(t, err)
	}
	_, err = svc.Create(ctx, "user-1", CreateParams{Platform: "RefQuest", Name: "rq-9", FeedURL: "https://rq.example.com/9"})
	require.ErrorIs(t, err, ErrInvalid)
	assert.Contains(t, err.Error(), "RefQuest")

	// Limits count per scope: another user still has room.
	_, err = svc.Create(ctx, "user-2", CreateParams{Platform: "DragonFly", Name: "df", FeedURL: "https://df.example.com/1"})
	require.NoError(t, err)
}

func TestUpdateFeed(t *testing.T) {
	st := store.NewMemoryStore()
	svc := newTestService(st)
	ctx := context.Background()

	created, err := svc.Create(ctx, "user-1", CreateParams{Platform: "RefQuest", Name: "rq", FeedURL: "https://rq.example.com/1"})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, "user-1", created.ID, UpdateParams{
		Name:          strPtr("renamed"),
		Enabled:       boolPtr(false),
		DefaultLeague: strPtr("New League"),
	})
	require.NoError(t, err)
	assert.Equal(t, "renamed", updated.Name)
	assert.False(t, updated.Enabled)
	assert.Equal(t, "New League", updated.DefaultLeague)
	// Unspecified fields stay put.
	assert.Equal(t, models.PlatformRefQuest, updated.Platform)
	assert.Equal(t, "https://rq.example.com/...", updated.MaskedFeedURL)
}

func TestUpdateFeedExcludesSelfFromLimit(t *testing.T) {
	st := store.NewMemoryStore()
	svc := newTestService(st)
	ctx := context.Background()

	created, err := svc.Create(ctx, "user-1", CreateParams{Platform: "DragonFly", Name: "df", FeedURL: "https://df.example.com/1"})
	require.NoError(t, err)

	// Updating the sole DragonFly feed must not trip the 1-feed limit.
	_, err = svc.Update(ctx, "user-1", created.ID, UpdateParams{Name: strPtr("still df")})
	require.NoError(t, err)
}

func TestUpdateFeedNotFound(t *testing.T) {
	st := store.NewMemoryStore()
	svc := newTestService(st)

	_, err := svc.Update(context.Background(), "user-1", "missing", UpdateParams{Name: strPtr("x")})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateFeedScoped(t *testing.T) {
	st := store.NewMemoryStore()
	svc := newTestService(st)
	ctx := context.Background()

	created, err := svc.Create(ctx, "user-1", CreateParams{Platform: "RefQuest", Name: "rq", FeedURL: "https://rq.example.com/1"})
	require.NoError(t, err)

	_, err = svc.Update(ctx, "user-2", created.ID, UpdateParams{Name: strPtr("hijacked")})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteFeed(t *testing.T) {
	st := store.NewMemoryStore()
	svc := newTestService(st)
	ctx := context.Background()

	created, err := svc.Create(ctx, "user-1", CreateParams{Platform: "RefQuest", Name: "rq", FeedURL: "https://rq.example.com/1"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, "user-1", created.ID))
	feeds, err := svc.List(ctx, "user-1")
	require.NoError(t, err)
	assert.Empty(t, feeds)

	require.ErrorIs(t, svc.Delete(ctx, "user-1", " "), ErrInvalid)
}

func TestListOrdersByPlatformThenCreation(t *testing.T) {
	st := store.NewMemoryStore()
	svc := newTestService(st)
	ctx := context.Background()

	_, err := svc.Create(ctx, "user-1", CreateParams{Platform: "RefQuest", Name: "rq-a", FeedURL: "https://rq.example.com/a"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, "user-1", CreateParams{Platform: "DragonFly", Name: "df", FeedURL: "https://df.example.com/1"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, "user-1", CreateParams{Platform: "RefQuest", Name: "rq-b", FeedURL: "https://rq.example.com/b"})
	require.NoError(t, err)

	feeds, err := svc.List(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, feeds, 3)
	assert.Equal(t, "df", feeds[0].Name)
	assert.Equal(t, "rq-a", feeds[1].Name)
	assert.Equal(t, "rq-b", feeds[2].Name)
}

func TestMaskURL(t *testing.T) {
	assert.Equal(t, "https://host.example.com/...", MaskURL("https://host.example.com/path?token=abc"))
	assert.Equal(t, "http://host.example.com/...", MaskURL("http://host.example.com:8080/x"))
	assert.Equal(t, "invalid-url", MaskURL("not a url"))
	assert.Equal(t, "invalid-url", MaskURL(""))
}
