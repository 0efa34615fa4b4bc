// Package records exposes the snapshot reconciliation engine over HTTP:
// fetching a scope's full snapshot, replacing it outright, and syncing the
// difference between two snapshots.
package records
