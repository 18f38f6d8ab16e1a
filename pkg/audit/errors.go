package audit

import "errors"

var (
	ErrEventValidation = errors.New("audit: invalid event")
	ErrStorage         = errors.New("audit: storage failure")
)
