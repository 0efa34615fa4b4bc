// Package feeds manages calendar feed subscriptions: CRUD with per-platform
// cardinality limits, URL masking on every read path, and the HTTP surface
// that triggers feed synchronization.
package feeds
