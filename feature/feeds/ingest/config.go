package ingest

import "time"

// Config holds configuration for calendar feed ingestion.
type Config struct {
	// Timezone is the IANA zone used to derive game dates and start times
	// from feed event instants.
	Timezone string `mapstructure:"timezone" default:"America/New_York"`
	// FetchTimeoutSeconds bounds a single feed fetch. A feed that exceeds
	// it is reported as a fetch failure for that feed only.
	FetchTimeoutSeconds int `mapstructure:"fetch_timeout_seconds" default:"30"`
	// SyncSchedule is an optional cron expression for periodic syncing of
	// all enabled feeds. Empty disables the scheduler.
	SyncSchedule string `mapstructure:"sync_schedule" default:""`
}

// Location resolves the configured timezone, falling back to UTC when the
// zone name is unknown.
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// FetchTimeout returns the fetch timeout as a duration.
func (c Config) FetchTimeout() time.Duration {
	if c.FetchTimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.FetchTimeoutSeconds) * time.Second
}
