package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"agora/internal/models"
	"agora/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// postRepoStub is a stub for repository.PostRepository.
type postRepoStub struct {
	createFn        func(context.Context, *models.Post) error
	getByIDFn       func(context.Context, uint, uint) (*models.Post, error)
	listFn          func(context.Context, int, int, uint) ([]*models.Post, error)
	listByUserFn    func(context.Context, uint, int, int, uint) ([]*models.Post, error)
	feedFn          func(context.Context, uint, int, int) ([]*models.Post, error)
	searchFn        func(context.Context, string, int, int, uint) ([]*models.Post, error)
	deleteCascadeFn func(context.Context, uint) error
	toggleLikeFn    func(context.Context, uint, uint) (bool, error)
	isLikedFn       func(context.Context, uint, uint) (bool, error)
}

func (s *postRepoStub) Create(ctx context.Context, post *models.Post) error {
	return s.createFn(ctx, post)
}
func (s *postRepoStub) GetByID(ctx context.Context, id, viewerID uint) (*models.Post, error) {
	return s.getByIDFn(ctx, id, viewerID)
}
func (s *postRepoStub) List(ctx context.Context, limit, offset int, viewerID uint) ([]*models.Post, error) {
	return s.listFn(ctx, limit, offset, viewerID)
}
func (s *postRepoStub) ListByUser(ctx context.Context, userID uint, limit, offset int, viewerID uint) ([]*models.Post, error) {
	return s.listByUserFn(ctx, userID, limit, offset, viewerID)
}
func (s *postRepoStub) Feed(ctx context.Context, userID uint, limit, offset int) ([]*models.Post, error) {
	return s.feedFn(ctx, userID, limit, offset)
}
func (s *postRepoStub) Search(ctx context.Context, query string, limit, offset int, viewerID uint) ([]*models.Post, error) {
	return s.searchFn(ctx, query, limit, offset, viewerID)
}
func (s *postRepoStub) DeleteCascade(ctx context.Context, id uint) error {
	return s.deleteCascadeFn(ctx, id)
}
func (s *postRepoStub) ToggleLike(ctx context.Context, userID, postID uint) (bool, error) {
	return s.toggleLikeFn(ctx, userID, postID)
}
func (s *postRepoStub) IsLiked(ctx context.Context, userID, postID uint) (bool, error) {
	return s.isLikedFn(ctx, userID, postID)
}

func noopPostRepo() *postRepoStub {
	return &postRepoStub{
		createFn:        func(_ context.Context, _ *models.Post) error { return nil },
		getByIDFn:       func(_ context.Context, id, _ uint) (*models.Post, error) { return &models.Post{ID: id}, nil },
		listFn:          func(_ context.Context, _, _ int, _ uint) ([]*models.Post, error) { return nil, nil },
		listByUserFn:    func(_ context.Context, _ uint, _, _ int, _ uint) ([]*models.Post, error) { return nil, nil },
		feedFn:          func(_ context.Context, _ uint, _, _ int) ([]*models.Post, error) { return nil, nil },
		searchFn:        func(_ context.Context, _ string, _, _ int, _ uint) ([]*models.Post, error) { return nil, nil },
		deleteCascadeFn: func(_ context.Context, _ uint) error { return nil },
		toggleLikeFn:    func(_ context.Context, _, _ uint) (bool, error) { return true, nil },
		isLikedFn:       func(_ context.Context, _, _ uint) (bool, error) { return false, nil },
	}
}

// reportRepoStub is a stub for repository.ReportRepository. Transaction runs
// fn against the stub itself.
type reportRepoStub struct {
	listPendingFn           func(context.Context) ([]models.Report, error)
	getByIDFn               func(context.Context, uint) (*models.Report, error)
	createFn                func(context.Context, *models.Report) error
	setStatusFn             func(context.Context, uint, models.ReportStatus, uint, time.Time) error
	deletePostCascadeFn     func(context.Context, uint) (bool, error)
	resolvePendingForPostFn func(context.Context, uint, models.ReportStatus, uint, time.Time) (int64, error)
	countPendingFn          func(context.Context) (int64, error)
}

func (s *reportRepoStub) ListPending(ctx context.Context) ([]models.Report, error) {
	return s.listPendingFn(ctx)
}
func (s *reportRepoStub) GetByID(ctx context.Context, id uint) (*models.Report, error) {
	return s.getByIDFn(ctx, id)
}
func (s *reportRepoStub) LockReportedPost(context.Context, uint) error { return nil }
func (s *reportRepoStub) Create(ctx context.Context, report *models.Report) error {
	return s.createFn(ctx, report)
}
func (s *reportRepoStub) SetStatus(ctx context.Context, id uint, status models.ReportStatus, resolvedBy uint, at time.Time) error {
	return s.setStatusFn(ctx, id, status, resolvedBy, at)
}
func (s *reportRepoStub) DeletePostCascade(ctx context.Context, postID uint) (bool, error) {
	return s.deletePostCascadeFn(ctx, postID)
}
func (s *reportRepoStub) ResolvePendingForPost(ctx context.Context, postID uint, status models.ReportStatus, resolvedBy uint, at time.Time) (int64, error) {
	return s.resolvePendingForPostFn(ctx, postID, status, resolvedBy, at)
}
func (s *reportRepoStub) CountPending(ctx context.Context) (int64, error) {
	return s.countPendingFn(ctx)
}
func (s *reportRepoStub) Transaction(_ context.Context, fn func(tx repository.ReportRepository) error) error {
	return fn(s)
}

func noopReportRepo() *reportRepoStub {
	return &reportRepoStub{
		listPendingFn: func(_ context.Context) ([]models.Report, error) { return nil, nil },
		getByIDFn: func(_ context.Context, id uint) (*models.Report, error) {
			return &models.Report{ID: id, PostID: 1, Status: models.ReportStatusPending}, nil
		},
		createFn:            func(_ context.Context, _ *models.Report) error { return nil },
		setStatusFn:         func(_ context.Context, _ uint, _ models.ReportStatus, _ uint, _ time.Time) error { return nil },
		deletePostCascadeFn: func(_ context.Context, _ uint) (bool, error) { return true, nil },
		resolvePendingForPostFn: func(_ context.Context, _ uint, _ models.ReportStatus, _ uint, _ time.Time) (int64, error) {
			return 0, nil
		},
		countPendingFn: func(_ context.Context) (int64, error) { return 0, nil },
	}
}

// userRepoStub is a stub for repository.UserRepository.
type userRepoStub struct {
	getByIDFn    func(context.Context, uint) (*models.User, error)
	getProfileFn func(context.Context, uint, uint) (*models.User, error)
	getByEmailFn func(context.Context, string) (*models.User, error)
	createFn     func(context.Context, *models.User) error
	updateFn     func(context.Context, *models.User) error
	listFn       func(context.Context, int, int) ([]models.User, error)
	searchFn     func(context.Context, string, int) ([]models.User, error)
	listAdminsFn func(context.Context) ([]models.User, error)
	setAdminFn   func(context.Context, uint, bool) error
	setBannedFn  func(context.Context, uint, bool) error
}

func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetProfile(ctx context.Context, id, viewerID uint) (*models.User, error) {
	return s.getProfileFn(ctx, id, viewerID)
}
func (s *userRepoStub) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getByEmailFn(ctx, email)
}
func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	return s.createFn(ctx, user)
}
func (s *userRepoStub) Update(ctx context.Context, user *models.User) error {
	return s.updateFn(ctx, user)
}
func (s *userRepoStub) List(ctx context.Context, limit, offset int) ([]models.User, error) {
	return s.listFn(ctx, limit, offset)
}
func (s *userRepoStub) Search(ctx context.Context, query string, limit int) ([]models.User, error) {
	return s.searchFn(ctx, query, limit)
}
func (s *userRepoStub) ListAdmins(ctx context.Context) ([]models.User, error) {
	return s.listAdminsFn(ctx)
}
func (s *userRepoStub) SetAdmin(ctx context.Context, id uint, isAdmin bool) error {
	return s.setAdminFn(ctx, id, isAdmin)
}
func (s *userRepoStub) SetBanned(ctx context.Context, id uint, banned bool) error {
	return s.setBannedFn(ctx, id, banned)
}

func noopUserRepo() *userRepoStub {
	return &userRepoStub{
		getByIDFn:    func(_ context.Context, id uint) (*models.User, error) { return &models.User{ID: id}, nil },
		getProfileFn: func(_ context.Context, id, _ uint) (*models.User, error) { return &models.User{ID: id}, nil },
		getByEmailFn: func(_ context.Context, email string) (*models.User, error) {
			return nil, models.NewNotFoundError("User", email)
		},
		createFn:     func(_ context.Context, _ *models.User) error { return nil },
		updateFn:     func(_ context.Context, _ *models.User) error { return nil },
		listFn:       func(_ context.Context, _, _ int) ([]models.User, error) { return nil, nil },
		searchFn:     func(_ context.Context, _ string, _ int) ([]models.User, error) { return nil, nil },
		listAdminsFn: func(_ context.Context) ([]models.User, error) { return nil, nil },
		setAdminFn:   func(_ context.Context, _ uint, _ bool) error { return nil },
		setBannedFn:  func(_ context.Context, _ uint, _ bool) error { return nil },
	}
}

// commentRepoStub is a stub for repository.CommentRepository.
type commentRepoStub struct {
	createFn     func(context.Context, *models.Comment) error
	getByIDFn    func(context.Context, uint) (*models.Comment, error)
	listByPostFn func(context.Context, uint, int, int) ([]*models.Comment, error)
	deleteFn     func(context.Context, uint) error
}

func (s *commentRepoStub) Create(ctx context.Context, comment *models.Comment) error {
	return s.createFn(ctx, comment)
}
func (s *commentRepoStub) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	return s.getByIDFn(ctx, id)
}
func (s *commentRepoStub) ListByPost(ctx context.Context, postID uint, limit, offset int) ([]*models.Comment, error) {
	return s.listByPostFn(ctx, postID, limit, offset)
}
func (s *commentRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}

func noopCommentRepo() *commentRepoStub {
	return &commentRepoStub{
		createFn:     func(_ context.Context, _ *models.Comment) error { return nil },
		getByIDFn:    func(_ context.Context, id uint) (*models.Comment, error) { return &models.Comment{ID: id}, nil },
		listByPostFn: func(_ context.Context, _ uint, _, _ int) ([]*models.Comment, error) { return nil, nil },
		deleteFn:     func(_ context.Context, _ uint) error { return nil },
	}
}

// followRepoStub is a stub for repository.FollowRepository.
type followRepoStub struct {
	followFn      func(context.Context, uint, uint) error
	unfollowFn    func(context.Context, uint, uint) error
	isFollowingFn func(context.Context, uint, uint) (bool, error)
	followersFn   func(context.Context, uint, int, int) ([]models.User, error)
	followingFn   func(context.Context, uint, int, int) ([]models.User, error)
}

func (s *followRepoStub) Follow(ctx context.Context, followerID, followingID uint) error {
	return s.followFn(ctx, followerID, followingID)
}
func (s *followRepoStub) Unfollow(ctx context.Context, followerID, followingID uint) error {
	return s.unfollowFn(ctx, followerID, followingID)
}
func (s *followRepoStub) IsFollowing(ctx context.Context, followerID, followingID uint) (bool, error) {
	return s.isFollowingFn(ctx, followerID, followingID)
}
func (s *followRepoStub) Followers(ctx context.Context, userID uint, limit, offset int) ([]models.User, error) {
	return s.followersFn(ctx, userID, limit, offset)
}
func (s *followRepoStub) Following(ctx context.Context, userID uint, limit, offset int) ([]models.User, error) {
	return s.followingFn(ctx, userID, limit, offset)
}

func noopFollowRepo() *followRepoStub {
	return &followRepoStub{
		followFn:      func(_ context.Context, _, _ uint) error { return nil },
		unfollowFn:    func(_ context.Context, _, _ uint) error { return nil },
		isFollowingFn: func(_ context.Context, _, _ uint) (bool, error) { return false, nil },
		followersFn:   func(_ context.Context, _ uint, _, _ int) ([]models.User, error) { return nil, nil },
		followingFn:   func(_ context.Context, _ uint, _, _ int) ([]models.User, error) { return nil, nil },
	}
}

// assertAppError asserts that err is an AppError carrying code.
func assertAppError(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	assert.Equal(t, code, appErr.Code)
}

func adminCheck(ids ...uint) func(context.Context, uint) (bool, error) {
	return func(_ context.Context, userID uint) (bool, error) {
		for _, id := range ids {
			if id == userID {
				return true, nil
			}
		}
		return false, nil
	}
}
