package validator

import "errors"

var ErrValidationFailed = errors.New("validation failed")

// Short machine-stable reasons carried by ValidationError.Reason.
const (
	ReasonRequired     = "is required"
	ReasonTooShort     = "too short"
	ReasonTooLong      = "too long"
	ReasonInvalidEmail = "invalid email address"
	ReasonInvalidPhone = "invalid phone number"
	ReasonInvalid      = "invalid value"
)
