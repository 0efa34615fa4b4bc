// Package store defines the minimal row-oriented contract the reconciliation
// and ingestion engines need from the remote store, plus the concrete
// implementations.
//
// Every table carries an owner column (user_id); every operation is
// parameterized by a Filter whose Scope restricts reads and writes to one
// account. The engines never depend on a particular database client shape,
// only on the Client interface.
//
// # Implementations
//
//   - gormStore: production implementation on top of GORM (MySQL in
//     production, SQLite in tests).
//   - MemoryStore: in-memory fake with an operation log and fault injection,
//     used by engine tests.
//
// A testify mock lives in store/mocks for call-level assertions.
package store
