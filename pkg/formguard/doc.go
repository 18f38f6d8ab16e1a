// Package formguard is the advisory, browser-side mirror of the contact
// form checks.
//
// The server renders Config as JSON into the form's data-guard attribute and
// serves the embedded guard.js, which debounces per-field checks and keeps a
// local submission counter before the request is sent. Nothing here is
// authoritative: the server pipeline repeats every check.
//
// The Go types model the same behaviour with an explicit Scheduler (timer
// handle plus cancel) instead of captured closures, so debounce and throttle
// semantics are testable with ManualScheduler and shared with the script
// through Config.
//
// Guard, Debouncer and Throttle are the reference model that guard.js
// mirrors. The server never runs them; it only serves Config and the script.
// A behaviour change belongs in both places, with the Go tests updated first.
package formguard
