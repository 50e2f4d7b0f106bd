package moderation

import (
	"fmt"

	"agora/internal/models"
)

// Action is an admin decision on a report.
type Action string

const (
	// ActionApprove upholds the report and removes the content.
	ActionApprove Action = "approve"
	// ActionReject dismisses the report and leaves the content alone.
	ActionReject Action = "reject"
)

// ParseAction converts request input into an Action. Only the exact empty
// string (an omitted field) defaults to approve; matching is case-sensitive
// and whitespace is not trimmed.
func ParseAction(raw string) (Action, error) {
	switch Action(raw) {
	case "", ActionApprove:
		return ActionApprove, nil
	case ActionReject:
		return ActionReject, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidAction, raw)
	}
}

// Valid reports whether a is one of the known actions.
func (a Action) Valid() bool {
	return a == ActionApprove || a == ActionReject
}

// Status is the report status this action produces.
func (a Action) Status() models.ReportStatus {
	if a == ActionReject {
		return models.ReportStatusRejected
	}
	return models.ReportStatusApproved
}

// Outcome describes what a resolution did.
type Outcome string

const (
	// OutcomeRemoved: approved and the post was deleted now.
	OutcomeRemoved Outcome = "removed"
	// OutcomeAlreadyRemoved: approved but the post was already gone.
	OutcomeAlreadyRemoved Outcome = "already_removed"
	// OutcomeRejected: the report was dismissed.
	OutcomeRejected Outcome = "rejected"
)

// Message is the human readable confirmation shown to the admin.
func (o Outcome) Message() string {
	switch o {
	case OutcomeRemoved:
		return "Report approved and content removed"
	case OutcomeAlreadyRemoved:
		return "Report approved but post not found"
	case OutcomeRejected:
		return "Report rejected"
	default:
		return string(o)
	}
}
