package models

import (
	"encoding/json"
	"time"

	"refdesk/core/store"
	"refdesk/core/utils"
)

// The functions below are the only place store column naming appears for
// snapshot records. Optional text columns are written as NULL rather than
// empty strings so the remote rows stay readable.

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullIfNilFloat(f *float64) any {
	if f == nil {
		return nil
	}
	return *f
}

func nullIfNilInt(i *int) any {
	if i == nil {
		return nil
	}
	return *i
}

// truncDate trims a store date value ("2025-03-01T00:00:00Z" or
// "2025-03-01") down to YYYY-MM-DD.
func truncDate(val any) string {
	s := utils.ToString(val)
	if len(s) > 10 {
		s = s[:10]
	}
	return s
}

// truncClock trims a store time value ("17:00:00") down to HH:MM.
func truncClock(val any) string {
	s := utils.ToString(val)
	if len(s) > 5 {
		s = s[:5]
	}
	return s
}

// RowFromGame maps a Game to its store row for the given scope.
func RowFromGame(scope string, g Game) store.Row {
	return store.Row{
		"id":                     g.ID,
		"user_id":                scope,
		"sport":                  string(g.Sport),
		"competition_level":      string(g.CompetitionLevel),
		"league":                 nullIfEmpty(g.League),
		"level_detail":           nullIfEmpty(g.LevelDetail),
		"game_date":              g.GameDate,
		"start_time":             nullIfEmpty(g.StartTime),
		"location_address":       g.LocationAddress,
		"distance_miles":         nullIfNilFloat(g.DistanceMiles),
		"roundtrip_miles":        nullIfNilFloat(g.RoundtripMiles),
		"role":                   nullIfEmpty(g.Role),
		"status":                 string(g.Status),
		"game_fee":               nullIfNilFloat(g.GameFee),
		"paid_confirmed":         g.PaidConfirmed,
		"paid_date":              nullIfEmpty(g.PaidDate),
		"home_team":              nullIfEmpty(g.HomeTeam),
		"away_team":              nullIfEmpty(g.AwayTeam),
		"notes":                  nullIfEmpty(g.Notes),
		"platform_confirmations": utils.BoolMapJSON(g.PlatformConfirmations),
		"calendar_event_id":      nullIfEmpty(g.CalendarEventID),
		"created_at":             g.CreatedAt,
		"updated_at":             g.UpdatedAt,
	}
}

// GameFromRow maps a store row back to a Game.
func GameFromRow(r store.Row) Game {
	return Game{
		ID:                    utils.ToString(r["id"]),
		Sport:                 Sport(utils.ToString(r["sport"])),
		CompetitionLevel:      CompetitionLevel(utils.ToString(r["competition_level"])),
		League:                utils.ToString(r["league"]),
		LevelDetail:           utils.ToString(r["level_detail"]),
		GameDate:              truncDate(r["game_date"]),
		StartTime:             truncClock(r["start_time"]),
		LocationAddress:       utils.ToString(r["location_address"]),
		DistanceMiles:         utils.ToFloatPtr(r["distance_miles"]),
		RoundtripMiles:        utils.ToFloatPtr(r["roundtrip_miles"]),
		Role:                  utils.ToString(r["role"]),
		Status:                GameStatus(utils.ToString(r["status"])),
		GameFee:               utils.ToFloatPtr(r["game_fee"]),
		PaidConfirmed:         utils.ToBool(r["paid_confirmed"]),
		PaidDate:              truncDate(r["paid_date"]),
		HomeTeam:              utils.ToString(r["home_team"]),
		AwayTeam:              utils.ToString(r["away_team"]),
		Notes:                 utils.ToString(r["notes"]),
		PlatformConfirmations: utils.ToBoolMap(r["platform_confirmations"]),
		CalendarEventID:       utils.ToString(r["calendar_event_id"]),
		CreatedAt:             utils.ToTime(r["created_at"]),
		UpdatedAt:             utils.ToTime(r["updated_at"]),
	}
}

// RowFromCalendarEvent maps a CalendarEvent to its store row.
func RowFromCalendarEvent(scope string, e CalendarEvent) store.Row {
	return store.Row{
		"id":                     e.ID,
		"user_id":                scope,
		"event_type":             string(e.EventType),
		"title":                  e.Title,
		"start_ts":               e.Start,
		"end_ts":                 e.End,
		"all_day":                e.AllDay,
		"timezone":               e.Timezone,
		"location_address":       nullIfEmpty(e.Location),
		"notes":                  nullIfEmpty(e.Notes),
		"source":                 string(e.Source),
		"external_ref":           nullIfEmpty(e.ExternalRef),
		"status":                 string(e.Status),
		"linked_game_id":         nullIfEmpty(e.LinkedGameID),
		"platform_confirmations": utils.BoolMapJSON(e.PlatformConfirmations),
		"created_at":             e.CreatedAt,
		"updated_at":             e.UpdatedAt,
	}
}

// CalendarEventFromRow maps a store row back to a CalendarEvent.
func CalendarEventFromRow(r store.Row) CalendarEvent {
	return CalendarEvent{
		ID:                    utils.ToString(r["id"]),
		EventType:             EventType(utils.ToString(r["event_type"])),
		Title:                 utils.ToString(r["title"]),
		Start:                 utils.ToTime(r["start_ts"]),
		End:                   utils.ToTime(r["end_ts"]),
		AllDay:                utils.ToBool(r["all_day"]),
		Timezone:              utils.ToString(r["timezone"]),
		Location:              utils.ToString(r["location_address"]),
		Notes:                 utils.ToString(r["notes"]),
		Source:                EventSource(utils.ToString(r["source"])),
		ExternalRef:           utils.ToString(r["external_ref"]),
		Status:                EventStatus(utils.ToString(r["status"])),
		LinkedGameID:          utils.ToString(r["linked_game_id"]),
		PlatformConfirmations: utils.ToBoolMap(r["platform_confirmations"]),
		CreatedAt:             utils.ToTime(r["created_at"]),
		UpdatedAt:             utils.ToTime(r["updated_at"]),
	}
}

// RowFromSettings maps the settings singleton to its store row. The merge
// key is user_id: one row per scope.
func RowFromSettings(scope string, s Settings, now time.Time) store.Row {
	platforms, _ := json.Marshal(s.AssigningPlatforms)
	leagues, _ := json.Marshal(s.Leagues)
	return store.Row{
		"user_id":             scope,
		"home_address":        s.HomeAddress,
		"assigning_platforms": string(platforms),
		"leagues":             string(leagues),
		"updated_at":          now,
	}
}

// SettingsFromRow maps a store row back to Settings.
func SettingsFromRow(r store.Row) Settings {
	return Settings{
		HomeAddress:        utils.ToString(r["home_address"]),
		AssigningPlatforms: stringSlice(r["assigning_platforms"]),
		Leagues:            stringSlice(r["leagues"]),
	}
}

func stringSlice(val any) []string {
	switch v := val.(type) {
	case []string:
		return v
	case string:
		var out []string
		if err := json.Unmarshal([]byte(v), &out); err != nil {
			return []string{}
		}
		return out
	case []byte:
		var out []string
		if err := json.Unmarshal(v, &out); err != nil {
			return []string{}
		}
		return out
	default:
		return []string{}
	}
}

// RowFromExpense maps an Expense to its store row.
func RowFromExpense(scope string, e Expense) store.Row {
	return store.Row{
		"id":             e.ID,
		"user_id":        scope,
		"expense_date":   e.ExpenseDate,
		"amount":         e.Amount,
		"category":       e.Category,
		"vendor":         nullIfEmpty(e.Vendor),
		"description":    nullIfEmpty(e.Description),
		"tax_deductible": e.TaxDeductible,
		"game_id":        nullIfEmpty(e.GameID),
		"miles":          nullIfNilFloat(e.Miles),
		"notes":          nullIfEmpty(e.Notes),
		"created_at":     e.CreatedAt,
		"updated_at":     e.UpdatedAt,
	}
}

// ExpenseFromRow maps a store row back to an Expense.
func ExpenseFromRow(r store.Row) Expense {
	return Expense{
		ID:            utils.ToString(r["id"]),
		ExpenseDate:   truncDate(r["expense_date"]),
		Amount:        utils.ToFloat(r["amount"]),
		Category:      utils.ToString(r["category"]),
		Vendor:        utils.ToString(r["vendor"]),
		Description:   utils.ToString(r["description"]),
		TaxDeductible: utils.ToBool(r["tax_deductible"]),
		GameID:        utils.ToString(r["game_id"]),
		Miles:         utils.ToFloatPtr(r["miles"]),
		Notes:         utils.ToString(r["notes"]),
		CreatedAt:     utils.ToTime(r["created_at"]),
		UpdatedAt:     utils.ToTime(r["updated_at"]),
	}
}

// RowFromRequirementDefinition maps a RequirementDefinition to its store row.
func RowFromRequirementDefinition(scope string, d RequirementDefinition) store.Row {
	return store.Row{
		"id":                d.ID,
		"user_id":           scope,
		"name":              d.Name,
		"governing_body":    nullIfEmpty(d.GoverningBody),
		"sport":             nullIfEmpty(d.Sport),
		"competition_level": nullIfEmpty(d.CompetitionLevel),
		"frequency":         d.Frequency,
		"required_count":    nullIfNilInt(d.RequiredCount),
		"evidence_type":     d.EvidenceType,
		"notes":             nullIfEmpty(d.Notes),
		"created_at":        d.CreatedAt,
		"updated_at":        d.UpdatedAt,
	}
}

// RequirementDefinitionFromRow maps a store row back to a RequirementDefinition.
func RequirementDefinitionFromRow(r store.Row) RequirementDefinition {
	return RequirementDefinition{
		ID:               utils.ToString(r["id"]),
		Name:             utils.ToString(r["name"]),
		GoverningBody:    utils.ToString(r["governing_body"]),
		Sport:            utils.ToString(r["sport"]),
		CompetitionLevel: utils.ToString(r["competition_level"]),
		Frequency:        utils.ToString(r["frequency"]),
		RequiredCount:    intPtr(r["required_count"]),
		EvidenceType:     utils.ToString(r["evidence_type"]),
		Notes:            utils.ToString(r["notes"]),
		CreatedAt:        utils.ToTime(r["created_at"]),
		UpdatedAt:        utils.ToTime(r["updated_at"]),
	}
}

func intPtr(val any) *int {
	if val == nil {
		return nil
	}
	i := utils.ToInt(val)
	return &i
}

// RowFromRequirementInstance maps a RequirementInstance to its store row.
func RowFromRequirementInstance(scope string, i RequirementInstance) store.Row {
	return store.Row{
		"id":               i.ID,
		"user_id":          scope,
		"definition_id":    i.DefinitionID,
		"season_name":      nullIfEmpty(i.SeasonName),
		"year":             nullIfNilInt(i.Year),
		"due_date":         nullIfEmpty(i.DueDate),
		"status":           i.Status,
		"completed_date":   nullIfEmpty(i.CompletedDate),
		"completion_notes": nullIfEmpty(i.CompletionNotes),
		"created_at":       i.CreatedAt,
		"updated_at":       i.UpdatedAt,
	}
}

// RequirementInstanceFromRow maps a store row back to a RequirementInstance.
func RequirementInstanceFromRow(r store.Row) RequirementInstance {
	return RequirementInstance{
		ID:              utils.ToString(r["id"]),
		DefinitionID:    utils.ToString(r["definition_id"]),
		SeasonName:      utils.ToString(r["season_name"]),
		Year:            intPtr(r["year"]),
		DueDate:         truncDate(r["due_date"]),
		Status:          utils.ToString(r["status"]),
		CompletedDate:   truncDate(r["completed_date"]),
		CompletionNotes: utils.ToString(r["completion_notes"]),
		CreatedAt:       utils.ToTime(r["created_at"]),
		UpdatedAt:       utils.ToTime(r["updated_at"]),
	}
}

// RowFromRequirementActivity maps a RequirementActivity to its store row.
func RowFromRequirementActivity(scope string, a RequirementActivity) store.Row {
	return store.Row{
		"id":            a.ID,
		"user_id":       scope,
		"instance_id":   a.InstanceID,
		"activity_date": a.ActivityDate,
		"quantity":      a.Quantity,
		"result":        nullIfEmpty(a.Result),
		"evidence_link": nullIfEmpty(a.EvidenceLink),
		"notes":         nullIfEmpty(a.Notes),
		"created_at":    a.CreatedAt,
		"updated_at":    a.UpdatedAt,
	}
}

// RequirementActivityFromRow maps a store row back to a RequirementActivity.
func RequirementActivityFromRow(r store.Row) RequirementActivity {
	return RequirementActivity{
		ID:           utils.ToString(r["id"]),
		InstanceID:   utils.ToString(r["instance_id"]),
		ActivityDate: truncDate(r["activity_date"]),
		Quantity:     utils.ToInt(r["quantity"]),
		Result:       utils.ToString(r["result"]),
		EvidenceLink: utils.ToString(r["evidence_link"]),
		Notes:        utils.ToString(r["notes"]),
		CreatedAt:    utils.ToTime(r["created_at"]),
		UpdatedAt:    utils.ToTime(r["updated_at"]),
	}
}

// RowFromCsvImport maps a CsvImport to its store row.
func RowFromCsvImport(scope string, i CsvImport) store.Row {
	return store.Row{
		"id":          i.ID,
		"user_id":     scope,
		"import_type": i.ImportType,
		"file_name":   i.FileName,
		"imported_at": i.ImportedAt,
		"row_count":   i.RowCount,
		"notes":       nullIfEmpty(i.Notes),
	}
}

// CsvImportFromRow maps a store row back to a CsvImport.
func CsvImportFromRow(r store.Row) CsvImport {
	return CsvImport{
		ID:         utils.ToString(r["id"]),
		ImportType: utils.ToString(r["import_type"]),
		FileName:   utils.ToString(r["file_name"]),
		ImportedAt: utils.ToTime(r["imported_at"]),
		RowCount:   utils.ToInt(r["row_count"]),
		Notes:      utils.ToString(r["notes"]),
	}
}

// RowFromCsvImportRow maps a CsvImportRow to its store row.
func RowFromCsvImportRow(scope string, row CsvImportRow) store.Row {
	raw, _ := json.Marshal(row.RawJSON)
	return store.Row{
		"id":                        row.ID,
		"user_id":                   scope,
		"import_id":                 row.ImportID,
		"row_number":                row.RowNumber,
		"raw_json":                  string(raw),
		"status":                    row.Status,
		"error_message":             nullIfEmpty(row.ErrorMessage),
		"created_calendar_event_id": nullIfEmpty(row.CreatedCalendarEventID),
		"created_game_id":           nullIfEmpty(row.CreatedGameID),
	}
}

// CsvImportRowFromRow maps a store row back to a CsvImportRow.
func CsvImportRowFromRow(r store.Row) CsvImportRow {
	return CsvImportRow{
		ID:                     utils.ToString(r["id"]),
		ImportID:               utils.ToString(r["import_id"]),
		RowNumber:              utils.ToInt(r["row_number"]),
		RawJSON:                anyMap(r["raw_json"]),
		Status:                 utils.ToString(r["status"]),
		ErrorMessage:           utils.ToString(r["error_message"]),
		CreatedCalendarEventID: utils.ToString(r["created_calendar_event_id"]),
		CreatedGameID:          utils.ToString(r["created_game_id"]),
	}
}

func anyMap(val any) map[string]any {
	switch v := val.(type) {
	case map[string]any:
		return v
	case string:
		var out map[string]any
		if err := json.Unmarshal([]byte(v), &out); err != nil {
			return map[string]any{}
		}
		return out
	case []byte:
		var out map[string]any
		if err := json.Unmarshal(v, &out); err != nil {
			return map[string]any{}
		}
		return out
	default:
		return map[string]any{}
	}
}
