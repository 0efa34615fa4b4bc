package sync

// Store table names for the snapshot collections.
const (
	TableUserSettings           = "user_settings"
	TableGames                  = "games"
	TableCalendarEvents         = "calendar_events"
	TableExpenses               = "expenses"
	TableRequirementDefinitions = "requirement_definitions"
	TableRequirementInstances   = "requirement_instances"
	TableRequirementActivities  = "requirement_activities"
	TableCsvImports             = "csv_imports"
	TableCsvImportRows          = "csv_import_rows"
)

// Tables lists every snapshot collection table. Used for schema checks at
// startup.
func Tables() []string {
	return []string{
		TableUserSettings,
		TableGames,
		TableCalendarEvents,
		TableExpenses,
		TableRequirementDefinitions,
		TableRequirementInstances,
		TableRequirementActivities,
		TableCsvImports,
		TableCsvImportRows,
	}
}
