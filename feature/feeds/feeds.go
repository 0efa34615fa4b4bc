package feeds

import (
	"net/url"

	"refdesk/core/store"
	"refdesk/core/utils"
	"refdesk/feature/records/models"
)

// Table is the calendar feed store table.
const Table = "calendar_feeds"

// Platform cardinality limits, counted per scope.
const (
	maxDragonFlyFeeds = 1
	maxRefQuestFeeds  = 8
)

// MaskURL reduces a feed URL to scheme, host, and an ellipsis. Feed URLs
// often embed per-user tokens, so the full value never leaves the service
// after creation.
func MaskURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "invalid-url"
	}
	return u.Scheme + "://" + u.Hostname() + "/..."
}

func feedFromRow(r store.Row) models.CalendarFeed {
	return models.CalendarFeed{
		ID:            utils.ToString(r["id"]),
		Platform:      models.FeedPlatform(utils.ToString(r["platform"])),
		Name:          utils.ToString(r["name"]),
		Enabled:       utils.ToBool(r["enabled"]),
		Sport:         models.Sport(utils.ToString(r["sport"])),
		DefaultLeague: utils.ToString(r["default_league"]),
		LastSyncedAt:  utils.ToTimePtr(r["last_synced_at"]),
		CreatedAt:     utils.ToTime(r["created_at"]),
		UpdatedAt:     utils.ToTime(r["updated_at"]),
		MaskedFeedURL: MaskURL(utils.ToString(r["feed_url"])),
	}
}
