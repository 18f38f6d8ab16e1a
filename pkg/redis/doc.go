// Package redis connects to the optional Redis backend that holds shared
// rate-limit windows, sessions and the security event stream when the
// service runs as more than one replica.
//
// An empty REDIS_URL means "no Redis"; callers check Config.Enabled and fall
// back to in-memory stores.
package redis
