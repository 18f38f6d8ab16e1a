package contact

import (
	"errors"

	"github.com/dmitrymomot/contactguard/pkg/validator"
)

var (
	ErrRateLimitExceeded = errors.New("contact: rate limit exceeded")
	ErrInvalidToken      = errors.New("contact: invalid token")
	// ErrValidationFailed is matched by the validator.ValidationErrors that
	// Handle returns, so field detail is available via
	// validator.ExtractValidationErrors.
	ErrValidationFailed = validator.ErrValidationFailed
	ErrDispatchFailed   = errors.New("contact: dispatch failed")
	// ErrUnavailable reports an infrastructure failure before dispatch, such
	// as an unreachable rate-limit store.
	ErrUnavailable = errors.New("contact: temporarily unavailable")
)

// Messages shown to submitters. None of them carry internal detail.
const (
	MessageSuccess      = "Thank you! Your message has been sent successfully."
	MessageRateLimited  = "Too many submissions. Please wait a few minutes and try again."
	MessageInvalidToken = "Security validation failed. Please reload the page and try again."
	MessageInvalidInput = "Please correct the errors below."
	MessageTryLater     = "Oops, something went wrong. Please try again later"
)

// PublicMessage maps a Handle error to the text shown to the submitter.
func PublicMessage(err error) string {
	switch {
	case err == nil:
		return MessageSuccess
	case errors.Is(err, ErrRateLimitExceeded):
		return MessageRateLimited
	case errors.Is(err, ErrInvalidToken):
		return MessageInvalidToken
	case errors.Is(err, ErrValidationFailed):
		return MessageInvalidInput
	default:
		return MessageTryLater
	}
}
