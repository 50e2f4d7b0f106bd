package service

import (
	"context"

	"agora/internal/models"
)

// AdminCheck reports whether userID holds the admin flag.
type AdminCheck func(ctx context.Context, userID uint) (bool, error)

// ownerOrAdmin passes when actorID owns the resource or is an admin, and
// otherwise returns a forbidden error carrying denied.
func ownerOrAdmin(ctx context.Context, isAdmin AdminCheck, ownerID, actorID uint, denied string) error {
	if ownerID == actorID {
		return nil
	}
	ok, err := isAdmin(ctx, actorID)
	switch {
	case err != nil:
		return err
	case !ok:
		return models.NewForbiddenError(denied)
	}
	return nil
}
