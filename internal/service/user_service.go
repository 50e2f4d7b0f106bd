package service

import (
	"context"
	"strings"

	"agora/internal/models"
	"agora/internal/repository"
)

type UserService struct {
	userRepo repository.UserRepository
}

// UpdateProfileInput carries the editable profile fields. Nil fields are
// left unchanged.
type UpdateProfileInput struct {
	UserID   uint
	Name     *string
	Bio      *string
	Headline *string
	Location *string
	Image    *string
}

func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

func (s *UserService) ListUsers(ctx context.Context, limit, offset int) ([]models.User, error) {
	return s.userRepo.List(ctx, limit, offset)
}

func (s *UserService) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

// GetProfile returns a user with follow and post counts as seen by viewerID.
func (s *UserService) GetProfile(ctx context.Context, id, viewerID uint) (*models.User, error) {
	return s.userRepo.GetProfile(ctx, id, viewerID)
}

func (s *UserService) SearchUsers(ctx context.Context, query string, limit int) ([]models.User, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, models.NewValidationError("Search query is required")
	}
	return s.userRepo.Search(ctx, query, limit)
}

func (s *UserService) UpdateProfile(ctx context.Context, in UpdateProfileInput) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	const (
		maxNameLen     = 100
		maxBioLen      = 500
		maxHeadlineLen = 150
		maxLocationLen = 100
	)

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, models.NewValidationError("Name cannot be empty")
		}
		if len(name) > maxNameLen {
			return nil, models.NewValidationError("Name too long (max 100 characters)")
		}
		user.Name = name
	}
	if in.Bio != nil {
		if len(*in.Bio) > maxBioLen {
			return nil, models.NewValidationError("Bio too long (max 500 characters)")
		}
		user.Bio = *in.Bio
	}
	if in.Headline != nil {
		if len(*in.Headline) > maxHeadlineLen {
			return nil, models.NewValidationError("Headline too long (max 150 characters)")
		}
		user.Headline = *in.Headline
	}
	if in.Location != nil {
		if len(*in.Location) > maxLocationLen {
			return nil, models.NewValidationError("Location too long (max 100 characters)")
		}
		user.Location = *in.Location
	}
	if in.Image != nil {
		user.Image = strings.TrimSpace(*in.Image)
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// ToggleBan flips the banned flag of targetID. Admins cannot ban themselves.
func (s *UserService) ToggleBan(ctx context.Context, actorID, targetID uint) (*models.User, error) {
	if actorID == targetID {
		return nil, models.NewValidationError("You cannot ban yourself")
	}
	user, err := s.userRepo.GetByID(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if err := s.userRepo.SetBanned(ctx, targetID, !user.IsBanned); err != nil {
		return nil, err
	}
	user.IsBanned = !user.IsBanned
	return user, nil
}

// Promote grants admin rights. Promoting an existing admin is a conflict.
func (s *UserService) Promote(ctx context.Context, targetID uint) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if user.IsAdmin {
		return nil, models.NewConflictError("User is already an admin")
	}
	if err := s.userRepo.SetAdmin(ctx, targetID, true); err != nil {
		return nil, err
	}
	user.IsAdmin = true
	return user, nil
}

func (s *UserService) Demote(ctx context.Context, targetID uint) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if !user.IsAdmin {
		return nil, models.NewConflictError("User is not an admin")
	}
	if err := s.userRepo.SetAdmin(ctx, targetID, false); err != nil {
		return nil, err
	}
	user.IsAdmin = false
	return user, nil
}

func (s *UserService) ListAdmins(ctx context.Context) ([]models.User, error) {
	return s.userRepo.ListAdmins(ctx)
}

// IsAdmin reports whether userID holds admin rights.
func (s *UserService) IsAdmin(ctx context.Context, userID uint) (bool, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return false, err
	}
	return user.IsAdmin, nil
}
