// Package clientip resolves the client address of an HTTP request.
//
// The address is the identity half of the contact form rate-limit key, so
// proxy headers are honoured only when the Resolver is told the service runs
// behind a trusted proxy. Otherwise RemoteAddr is the only source.
package clientip
