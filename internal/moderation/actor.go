package moderation

// Actor is the caller on whose behalf a moderation operation runs. The HTTP
// layer builds it from the authenticated user; the admin CLI builds one for
// the operator.
type Actor struct {
	UserID  uint
	IsAdmin bool
}

// Admin returns an admin Actor for userID.
func Admin(userID uint) Actor {
	return Actor{UserID: userID, IsAdmin: true}
}

// Authorize returns ErrForbidden unless the actor is an admin.
func (a Actor) Authorize() error {
	if !a.IsAdmin {
		return ErrForbidden
	}
	return nil
}
