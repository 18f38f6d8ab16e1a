// Package session keeps short-lived anonymous visitor sessions.
//
// A session is identified by a random token carried in an encrypted cookie
// (see pkg/cookie) and holds a small string map. The contact form uses it to
// bind the anti-forgery token to the visitor; nothing about the visitor is
// stored beyond that.
//
// Two stores are provided: MemoryStore for single-instance deployments and
// tests, and RedisStore for deployments sharing state across replicas. Both
// hand out copies so callers may mutate a session freely and persist it with
// Manager.Save.
//
// Middleware ensures a session on safe requests (GET/HEAD) and only looks one
// up on other methods, so a flood of POSTs without cookies does not create
// store entries.
package session
