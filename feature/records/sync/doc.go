// Package sync reconciles a caller-held snapshot with the remote store.
//
// The engine is stateless: callers own the snapshot lifecycle and pass the
// previously confirmed snapshot into IncrementalSync. Games and calendar
// events may reference each other, so both write paths insert with the link
// columns cleared and backfill them in a second pass of point updates.
package sync
