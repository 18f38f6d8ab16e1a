// Package cookie writes and reads encrypted HTTP cookies.
//
// Values are sealed with AES-256-GCM. The AES key for each configured secret
// is derived with HKDF-SHA256, so operators can supply any secret of at least
// 32 characters. Secrets are tried in order on read, which lets an old secret
// stay listed during rotation while new cookies use the first one.
package cookie
