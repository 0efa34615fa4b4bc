package store

import "context"

// Row is a single table row in store-native shape: snake_case column names
// mapped to plain values. Translation between rows and domain records
// happens at the feature boundary, never inside the engines.
type Row = map[string]any

// Filter restricts an operation to a subset of a table's rows.
type Filter struct {
	// Scope is the owning account. When set, every match is additionally
	// restricted to user_id = Scope. Unscoped filters are reserved for
	// cross-account maintenance reads (e.g. the periodic feed scheduler).
	Scope string

	// IDs restricts matches to id IN (IDs) when non-empty.
	IDs []string

	// Eq adds column = value conditions.
	Eq map[string]any

	// In adds column IN (values) conditions.
	In map[string][]string
}

// Client is the row-oriented remote store contract. Implementations must be
// safe for concurrent use by independent operations.
type Client interface {
	// Select returns all rows matching the filter.
	Select(ctx context.Context, table string, f Filter) ([]Row, error)

	// Insert writes new rows. Inserting an existing identity is an error.
	Insert(ctx context.Context, table string, rows []Row) error

	// Upsert writes rows, replacing any existing row that collides on the
	// conflict columns (e.g. ["id"] or ["user_id", "external_ref"]).
	Upsert(ctx context.Context, table string, rows []Row, conflictCols []string) error

	// Update applies patch to every row matching the filter.
	Update(ctx context.Context, table string, patch Row, f Filter) error

	// Delete removes every row matching the filter.
	Delete(ctx context.Context, table string, f Filter) error
}
