package moderation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"agora/internal/models"
	"agora/internal/repository"
)

// Resolver applies admin decisions to reports.
type Resolver struct {
	reports repository.ReportRepository
	now     func() time.Time
}

// NewResolver returns a Resolver backed by reports.
func NewResolver(reports repository.ReportRepository) *Resolver {
	return &Resolver{reports: reports, now: time.Now}
}

// Resolution is the result of one Resolve call.
type Resolution struct {
	ReportID uint
	PostID   uint
	Action   Action
	Outcome  Outcome
	// Cascaded is how many sibling PENDING reports were approved with it.
	Cascaded int64
}

// Resolve applies action to the report reportID on behalf of actor.
//
// Approve marks the report APPROVED and deletes the post with its likes and
// comments, then approves every other PENDING report on that post. If the
// post is already gone the report is still marked and OutcomeAlreadyRemoved
// is returned. Reject marks only this report REJECTED. All writes happen in
// one transaction; any failure or context cancellation leaves storage as it
// was.
//
// Resolving an already resolved report re-applies the decision.
func (r *Resolver) Resolve(ctx context.Context, actor Actor, reportID uint, action Action) (Resolution, error) {
	if err := actor.Authorize(); err != nil {
		return Resolution{}, err
	}
	if !action.Valid() {
		return Resolution{}, fmt.Errorf("%w: %q", ErrInvalidAction, action)
	}

	res := Resolution{ReportID: reportID, Action: action}
	err := r.reports.Transaction(ctx, func(tx repository.ReportRepository) error {
		// Post before report: concurrent approvals on one post serialise here.
		if err := tx.LockReportedPost(ctx, reportID); err != nil {
			return err
		}
		report, err := tx.GetByID(ctx, reportID)
		if err != nil {
			return mapNotFound(err)
		}
		res.PostID = report.PostID

		at := r.now().UTC()
		if err := tx.SetStatus(ctx, report.ID, action.Status(), actor.UserID, at); err != nil {
			return mapNotFound(err)
		}

		if action == ActionReject {
			res.Outcome = OutcomeRejected
			return nil
		}

		removed, err := tx.DeletePostCascade(ctx, report.PostID)
		if err != nil {
			return err
		}
		if !removed {
			res.Outcome = OutcomeAlreadyRemoved
			return nil
		}

		n, err := tx.ResolvePendingForPost(ctx, report.PostID, models.ReportStatusApproved, actor.UserID, at)
		if err != nil {
			return err
		}
		res.Cascaded = n
		res.Outcome = OutcomeRemoved
		return nil
	})
	if err != nil {
		return Resolution{}, err
	}
	return res, nil
}

func mapNotFound(err error) error {
	var appErr *models.AppError
	if errors.As(err, &appErr) && appErr.Code == models.CodeNotFound {
		return fmt.Errorf("%w: %s", ErrReportNotFound, appErr.Message)
	}
	return err
}
