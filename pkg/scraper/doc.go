// Package scraper contains the pagination engine and the session
// orchestrator.
//
// The engine is a sequential state machine:
//
//	AUTHENTICATING -> SEARCHING -> CONSUMING_PAGE -> ADVANCING_PAGE
//	                                   |                   |
//	                                   v                   v
//	                     {PROMPT_NEEDED | DONE}    {CONSUMING_PAGE | DONE}
//
// with ABORTED reachable from any yield point. Records flow through
// normalize, dedupe, and the keyword filter before reaching the export
// sink, and the session checkpoint is saved every fixed number of
// accepted records and on every exit path. Cancellation is cooperative:
// the stop predicate is polled before each record, before each page
// advance, and once per second inside any wait, so a stop loses at most
// the rows appended since the last flush.
//
// The orchestrator layers the three run modes on top: single (one
// query), batch (a list of accounts, per-account failures isolated),
// and links (direct tweet URLs fetched one by one). All three accept
// the same Hooks and can resume from a saved checkpoint.
package scraper
