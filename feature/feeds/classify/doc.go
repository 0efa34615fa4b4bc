// Package classify infers structured game fields from free-form feed event
// text. The heuristics are ordered (predicate, outcome) rules with
// first-match-wins semantics, kept separate from the ingestion control flow
// so the rule set can be tested and extended on its own.
package classify
