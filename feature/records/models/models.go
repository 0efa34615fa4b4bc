package models

import "time"

// Sport is the officiated sport.
type Sport string

const (
	SportSoccer   Sport = "Soccer"
	SportLacrosse Sport = "Lacrosse"
)

// CompetitionLevel is the level of play an assignment belongs to.
type CompetitionLevel string

const (
	LevelHighSchool CompetitionLevel = "High School"
	LevelCollege    CompetitionLevel = "College"
	LevelClub       CompetitionLevel = "Club"
)

// GameStatus is the lifecycle state of an assignment.
type GameStatus string

const (
	GameScheduled GameStatus = "Scheduled"
	GameCompleted GameStatus = "Completed"
	GameCanceled  GameStatus = "Canceled"
)

// EventType distinguishes the kinds of placed calendar entries.
type EventType string

const (
	EventGame   EventType = "Game"
	EventBlock  EventType = "Block"
	EventAdmin  EventType = "Admin"
	EventTravel EventType = "Travel"
)

// EventStatus is the lifecycle state of a calendar entry.
type EventStatus string

const (
	EventScheduled EventStatus = "Scheduled"
	EventCanceled  EventStatus = "Canceled"
)

// EventSource records how a calendar entry came to exist.
type EventSource string

const (
	SourceManual EventSource = "Manual"
	SourceCSV    EventSource = "CSV Import"
)

// FeedPlatform is an assigning platform that publishes calendar feeds.
type FeedPlatform string

const (
	PlatformRefQuest  FeedPlatform = "RefQuest"
	PlatformDragonFly FeedPlatform = "DragonFly"
)

// ValidPlatform reports whether p is one of the two supported platforms.
func ValidPlatform(p FeedPlatform) bool {
	return p == PlatformRefQuest || p == PlatformDragonFly
}

// Game is a single officiating assignment.
type Game struct {
	ID               string           `json:"id"`
	Sport            Sport            `json:"sport"`
	CompetitionLevel CompetitionLevel `json:"competition_level"`
	League           string           `json:"league,omitempty"`
	LevelDetail      string           `json:"level_detail,omitempty"`

	// GameDate is the local calendar date (YYYY-MM-DD); StartTime is the
	// local wall-clock start (HH:MM), empty when unknown.
	GameDate  string `json:"game_date"`
	StartTime string `json:"start_time,omitempty"`

	LocationAddress string   `json:"location_address"`
	DistanceMiles   *float64 `json:"distance_miles,omitempty"`
	RoundtripMiles  *float64 `json:"roundtrip_miles,omitempty"`

	Role   string     `json:"role,omitempty"`
	Status GameStatus `json:"status"`

	GameFee       *float64 `json:"game_fee,omitempty"`
	PaidConfirmed bool     `json:"paid_confirmed"`
	PaidDate      string   `json:"paid_date,omitempty"`

	HomeTeam string `json:"home_team,omitempty"`
	AwayTeam string `json:"away_team,omitempty"`
	Notes    string `json:"notes,omitempty"`

	PlatformConfirmations map[string]bool `json:"platform_confirmations"`

	// CalendarEventID links to the placed calendar entry, if any.
	CalendarEventID string `json:"calendar_event_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Key implements diff.Keyed.
func (g Game) Key() string { return g.ID }

// CalendarEvent is a placed calendar entry (game, manual block, admin, travel).
type CalendarEvent struct {
	ID        string      `json:"id"`
	EventType EventType   `json:"event_type"`
	Title     string      `json:"title"`
	Start     time.Time   `json:"start"`
	End       time.Time   `json:"end"`
	AllDay    bool        `json:"all_day"`
	Timezone  string      `json:"timezone"`
	Location  string      `json:"location_address,omitempty"`
	Notes     string      `json:"notes,omitempty"`
	Source    EventSource `json:"source"`

	// ExternalRef is the feed deduplication key
	// ("platform:feedID:entryUID") for feed-derived entries.
	ExternalRef string `json:"external_ref,omitempty"`

	Status EventStatus `json:"status"`

	// LinkedGameID links back to the owning Game, if any.
	LinkedGameID string `json:"linked_game_id,omitempty"`

	PlatformConfirmations map[string]bool `json:"platform_confirmations"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Key implements diff.Keyed.
func (e CalendarEvent) Key() string { return e.ID }

// Settings is the per-scope singleton configuration record.
type Settings struct {
	HomeAddress        string   `json:"home_address"`
	AssigningPlatforms []string `json:"assigning_platforms"`
	Leagues            []string `json:"leagues"`
}

// DefaultSettings returns the seed settings for a fresh scope.
func DefaultSettings() Settings {
	return Settings{
		AssigningPlatforms: []string{string(PlatformDragonFly), string(PlatformRefQuest)},
		Leagues:            []string{},
	}
}

// Expense is an opaque auxiliary record to the core engines.
type Expense struct {
	ID            string    `json:"id"`
	ExpenseDate   string    `json:"expense_date"`
	Amount        float64   `json:"amount"`
	Category      string    `json:"category"`
	Vendor        string    `json:"vendor,omitempty"`
	Description   string    `json:"description,omitempty"`
	TaxDeductible bool      `json:"tax_deductible"`
	GameID        string    `json:"game_id,omitempty"`
	Miles         *float64  `json:"miles,omitempty"`
	Notes         string    `json:"notes,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Key implements diff.Keyed.
func (e Expense) Key() string { return e.ID }

// RequirementDefinition describes a recurring compliance requirement.
type RequirementDefinition struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	GoverningBody    string    `json:"governing_body,omitempty"`
	Sport            string    `json:"sport,omitempty"`
	CompetitionLevel string    `json:"competition_level,omitempty"`
	Frequency        string    `json:"frequency"`
	RequiredCount    *int      `json:"required_count,omitempty"`
	EvidenceType     string    `json:"evidence_type"`
	Notes            string    `json:"notes,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// Key implements diff.Keyed.
func (d RequirementDefinition) Key() string { return d.ID }

// RequirementInstance is one season/year instantiation of a definition.
type RequirementInstance struct {
	ID              string    `json:"id"`
	DefinitionID    string    `json:"definition_id"`
	SeasonName      string    `json:"season_name,omitempty"`
	Year            *int      `json:"year,omitempty"`
	DueDate         string    `json:"due_date,omitempty"`
	Status          string    `json:"status"`
	CompletedDate   string    `json:"completed_date,omitempty"`
	CompletionNotes string    `json:"completion_notes,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Key implements diff.Keyed.
func (i RequirementInstance) Key() string { return i.ID }

// RequirementActivity is one logged activity against an instance.
type RequirementActivity struct {
	ID           string    `json:"id"`
	InstanceID   string    `json:"instance_id"`
	ActivityDate string    `json:"activity_date"`
	Quantity     int       `json:"quantity"`
	Result       string    `json:"result,omitempty"`
	EvidenceLink string    `json:"evidence_link,omitempty"`
	Notes        string    `json:"notes,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Key implements diff.Keyed.
func (a RequirementActivity) Key() string { return a.ID }

// CsvImport records one CSV import run.
type CsvImport struct {
	ID         string    `json:"id"`
	ImportType string    `json:"import_type"`
	FileName   string    `json:"file_name"`
	ImportedAt time.Time `json:"imported_at"`
	RowCount   int       `json:"row_count"`
	Notes      string    `json:"notes,omitempty"`
}

// Key implements diff.Keyed.
func (i CsvImport) Key() string { return i.ID }

// CsvImportRow records the outcome of one imported CSV row.
type CsvImportRow struct {
	ID                     string         `json:"id"`
	ImportID               string         `json:"import_id"`
	RowNumber              int            `json:"row_number"`
	RawJSON                map[string]any `json:"raw_json"`
	Status                 string         `json:"status"`
	ErrorMessage           string         `json:"error_message,omitempty"`
	CreatedCalendarEventID string         `json:"created_calendar_event_id,omitempty"`
	CreatedGameID          string         `json:"created_game_id,omitempty"`
}

// Key implements diff.Keyed.
func (r CsvImportRow) Key() string { return r.ID }

// CalendarFeed is a remote feed subscription. The feed URL is write-only:
// it is accepted at create/update time and never returned to calling code;
// read paths carry MaskedFeedURL instead.
type CalendarFeed struct {
	ID            string       `json:"id"`
	Platform      FeedPlatform `json:"platform"`
	Name          string       `json:"name"`
	Enabled       bool         `json:"enabled"`
	Sport         Sport        `json:"sport,omitempty"`
	DefaultLeague string       `json:"default_league,omitempty"`
	LastSyncedAt  *time.Time   `json:"last_synced_at,omitempty"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
	MaskedFeedURL string       `json:"masked_feed_url,omitempty"`
}

// Key implements diff.Keyed.
func (f CalendarFeed) Key() string { return f.ID }

// Snapshot is the complete set of a scope's records across all collections
// at one point in time. Calendar feeds are managed independently and are
// not part of the snapshot.
type Snapshot struct {
	Settings               Settings                `json:"settings"`
	Games                  []Game                  `json:"games"`
	CalendarEvents         []CalendarEvent         `json:"calendar_events"`
	Expenses               []Expense               `json:"expenses"`
	RequirementDefinitions []RequirementDefinition `json:"requirement_definitions"`
	RequirementInstances   []RequirementInstance   `json:"requirement_instances"`
	RequirementActivities  []RequirementActivity   `json:"requirement_activities"`
	CsvImports             []CsvImport             `json:"csv_imports"`
	CsvImportRows          []CsvImportRow          `json:"csv_import_rows"`
}
