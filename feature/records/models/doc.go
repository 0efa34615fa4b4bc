// Package models defines the shared record types for the officiating
// record keeper: games, calendar events, calendar feeds, and the auxiliary
// record kinds the reconciliation engine moves opaquely.
//
// Every record carries a stable string identity and implements Key() for
// the snapshot differencer. Row-mapping functions translate between the
// domain shape and the store-native column naming; nothing outside this
// package touches store field names for these records.
//
// # Cross-reference invariant
//
// Game.CalendarEventID and CalendarEvent.LinkedGameID are either both
// empty or mutually consistent (each points back to the other), and at
// most one record links each way. The reconciliation engine's two-pass
// link repair maintains this when writing to a store that enforces
// reference integrity.
package models
