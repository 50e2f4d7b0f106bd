package moderation

import "errors"

var (
	// ErrForbidden is returned when the actor lacks admin privilege.
	ErrForbidden = errors.New("admin privilege required")
	// ErrReportNotFound is returned when the report id does not exist.
	ErrReportNotFound = errors.New("report not found")
	// ErrInvalidAction is returned for anything other than approve or reject.
	ErrInvalidAction = errors.New("invalid action")
)
