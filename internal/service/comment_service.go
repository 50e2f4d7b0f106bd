package service

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"agora/internal/models"
	"agora/internal/repository"
)

const maxCommentLen = 2000

// CommentService manages comments attached to posts.
type CommentService struct {
	comments repository.CommentRepository
	posts    repository.PostRepository
	isAdmin  AdminCheck
}

type CreateCommentInput struct {
	UserID  uint
	PostID  uint
	Content string
}

type DeleteCommentInput struct {
	UserID    uint
	CommentID uint
}

func NewCommentService(comments repository.CommentRepository, posts repository.PostRepository, isAdmin AdminCheck) *CommentService {
	return &CommentService{comments: comments, posts: posts, isAdmin: isAdmin}
}

// CreateComment stores trimmed content on an existing post.
func (s *CommentService) CreateComment(ctx context.Context, in CreateCommentInput) (*models.Comment, error) {
	body := strings.TrimSpace(in.Content)
	switch {
	case body == "":
		return nil, models.NewValidationError("Content is required")
	case utf8.RuneCountInString(body) > maxCommentLen:
		return nil, models.NewValidationError(fmt.Sprintf("Comment too long (max %d characters)", maxCommentLen))
	}

	if _, err := s.posts.GetByID(ctx, in.PostID, 0); err != nil {
		return nil, err
	}

	c := &models.Comment{PostID: in.PostID, UserID: in.UserID, Content: body}
	if err := s.comments.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// ListComments pages a post's comments oldest first.
func (s *CommentService) ListComments(ctx context.Context, postID uint, limit, offset int) ([]*models.Comment, error) {
	if _, err := s.posts.GetByID(ctx, postID, 0); err != nil {
		return nil, err
	}
	return s.comments.ListByPost(ctx, postID, limit, offset)
}

// DeleteComment lets the comment author or an admin remove a comment.
func (s *CommentService) DeleteComment(ctx context.Context, in DeleteCommentInput) error {
	c, err := s.comments.GetByID(ctx, in.CommentID)
	if err != nil {
		return err
	}
	if err := ownerOrAdmin(ctx, s.isAdmin, c.UserID, in.UserID, "Not authorized to delete this comment"); err != nil {
		return err
	}
	return s.comments.Delete(ctx, in.CommentID)
}
