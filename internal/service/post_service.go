package service

import (
	"context"
	"strings"

	"agora/internal/models"
	"agora/internal/repository"
)

const (
	maxTitleLen   = 300
	maxContentLen = 10000
)

type PostService struct {
	postRepo repository.PostRepository
	isAdmin  AdminCheck
}

type CreatePostInput struct {
	UserID   uint
	Title    string
	Content  string
	ImageURL string
	Type     string
}

type ListPostsInput struct {
	Limit         int
	Offset        int
	CurrentUserID uint
}

type DeletePostInput struct {
	UserID uint
	PostID uint
}

func NewPostService(postRepo repository.PostRepository, isAdmin AdminCheck) *PostService {
	return &PostService{postRepo: postRepo, isAdmin: isAdmin}
}

func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	content := strings.TrimSpace(in.Content)
	if content == "" {
		return nil, models.NewValidationError("Content is required")
	}
	if len(content) > maxContentLen {
		return nil, models.NewValidationError("Content too long (max 10000 characters)")
	}
	title := strings.TrimSpace(in.Title)
	if len(title) > maxTitleLen {
		return nil, models.NewValidationError("Title too long (max 300 characters)")
	}
	if in.Type == "" {
		return nil, models.NewValidationError("Type is required")
	}
	postType := models.PostType(in.Type)
	if !postType.Valid() {
		return nil, models.NewValidationError("Type must be professional or social")
	}

	post := &models.Post{
		Title:    title,
		Content:  content,
		ImageURL: strings.TrimSpace(in.ImageURL),
		Type:     postType,
		UserID:   in.UserID,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}
	return s.postRepo.GetByID(ctx, post.ID, in.UserID)
}

func (s *PostService) ListPosts(ctx context.Context, in ListPostsInput) ([]*models.Post, error) {
	return s.postRepo.List(ctx, in.Limit, in.Offset, in.CurrentUserID)
}

func (s *PostService) GetPost(ctx context.Context, postID, currentUserID uint) (*models.Post, error) {
	return s.postRepo.GetByID(ctx, postID, currentUserID)
}

func (s *PostService) UserPosts(ctx context.Context, userID uint, in ListPostsInput) ([]*models.Post, error) {
	return s.postRepo.ListByUser(ctx, userID, in.Limit, in.Offset, in.CurrentUserID)
}

// Feed returns posts by the user and everyone they follow, newest first.
func (s *PostService) Feed(ctx context.Context, in ListPostsInput) ([]*models.Post, error) {
	return s.postRepo.Feed(ctx, in.CurrentUserID, in.Limit, in.Offset)
}

func (s *PostService) SearchPosts(ctx context.Context, query string, in ListPostsInput) ([]*models.Post, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, models.NewValidationError("Search query is required")
	}
	return s.postRepo.Search(ctx, query, in.Limit, in.Offset, in.CurrentUserID)
}

// DeletePost removes a post with its likes, comments and reports. Only the
// author or an admin may delete.
func (s *PostService) DeletePost(ctx context.Context, in DeletePostInput) error {
	post, err := s.postRepo.GetByID(ctx, in.PostID, 0)
	if err != nil {
		return err
	}
	if err := ownerOrAdmin(ctx, s.isAdmin, post.UserID, in.UserID, "Not authorized to delete this post"); err != nil {
		return err
	}
	return s.postRepo.DeleteCascade(ctx, in.PostID)
}

// ToggleLike flips the user's like on a post and returns the new state.
func (s *PostService) ToggleLike(ctx context.Context, userID, postID uint) (bool, error) {
	if _, err := s.postRepo.GetByID(ctx, postID, 0); err != nil {
		return false, err
	}
	return s.postRepo.ToggleLike(ctx, userID, postID)
}

func (s *PostService) LikeStatus(ctx context.Context, userID, postID uint) (bool, error) {
	return s.postRepo.IsLiked(ctx, userID, postID)
}
