// Package audit records security events: write-only records of terminal
// rejections in the submission pipeline (rate limit, forged token, dispatch
// failure). The pipeline never reads them back.
//
// A Recorder stamps each event with an id, timestamp and request id and hands
// it to a Storage. LogStorage writes WARN records through slog,
// RedisStreamStorage appends to a capped Redis stream and MemoryStorage keeps
// events for tests and the self-check. MultiStorage fans out to several.
//
// Identifiers are client addresses; WithIdentifierHashing replaces them with
// a salted SHA-256 prefix before storage.
package audit
