// Package ingest fetches external calendar feeds, classifies their events,
// and merges the result into the scope's calendar events and games.
//
// Synchronization is idempotent: each feed entry maps to a deterministic
// external reference (platform:feedID:uid) and repeated runs over an
// unchanged feed create nothing new. User-entered financial and logistics
// fields on existing linked games are never overwritten.
package ingest
