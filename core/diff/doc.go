// Package diff computes per-collection change sets between two snapshots
// of the same record kind.
//
// The differencer is a pure function: given a previous and a next list of
// identity-keyed records, it returns the records that must be written to
// bring a remote copy up to date (Upserts) and the identities that must be
// removed (Deletes). Records are compared by deep structural equality, so
// any field difference marks the next copy as an upsert.
//
// # Ordering
//
// Input order is irrelevant. Output order is deterministic: upserts follow
// the next list's order, deletes follow the previous list's order.
//
// # Usage
//
//	d := diff.ByKey(prev.Games, next.Games)
//	// d.Upserts -> write these rows
//	// d.Deletes -> delete these identities
package diff
