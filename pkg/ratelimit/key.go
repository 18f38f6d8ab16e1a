package ratelimit

import (
	"crypto/sha256"
	"encoding/hex"
)

// maxKeyLength bounds storage key size; longer keys are hashed.
const maxKeyLength = 64

// Key identifies one rate-limit record.
type Key struct {
	Client string
	Action string
}

func (k Key) Valid() bool {
	return k.Client != "" && k.Action != ""
}

// String returns "action:client", or a 128-bit SHA-256 hex digest prefixed
// with the action when that would exceed maxKeyLength.
func (k Key) String() string {
	combined := k.Action + ":" + k.Client
	if len(combined) <= maxKeyLength {
		return combined
	}
	sum := sha256.Sum256([]byte(combined))
	return k.Action + ":" + hex.EncodeToString(sum[:16])
}
