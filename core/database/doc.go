// Package database handles record store connections and schema inspection.
//
// It provides a wrapper around GORM (Go Object Relational Mapping) to
// properly configure MySQL connections based on the application's
// configuration. SQLite (including :memory:) is supported for tests and
// local runs.
//
// # Connect
//
// The generic Connect function establishes a connection to the database.
// Connection establishment is agnostic to the record schema; the schema
// inspector relies on knowing the expected tables.
//
// # Schema Inspection
//
// The package includes tools to inspect the database schema. MissingTables
// verifies that every collection table the reconciliation engine writes to
// actually exists, so a misconfigured database is reported at startup
// instead of on the first sync.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    log.Fatal("Database connection failed", err)
//	}
//
//	missing, err := database.MissingTables(db, recsync.Tables())
package database
