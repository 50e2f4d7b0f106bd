package repository

import (
	"context"
	"errors"
	"strings"

	"agora/internal/cache"
	"agora/internal/models"

	"gorm.io/gorm"
)

// PostRepository defines the interface for post data operations
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint, viewerID uint) (*models.Post, error)
	List(ctx context.Context, limit, offset int, viewerID uint) ([]*models.Post, error)
	ListByUser(ctx context.Context, userID uint, limit, offset int, viewerID uint) ([]*models.Post, error)
	Feed(ctx context.Context, userID uint, limit, offset int) ([]*models.Post, error)
	Search(ctx context.Context, query string, limit, offset int, viewerID uint) ([]*models.Post, error)
	DeleteCascade(ctx context.Context, id uint) error
	ToggleLike(ctx context.Context, userID, postID uint) (bool, error)
	IsLiked(ctx context.Context, userID, postID uint) (bool, error)
}

type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	return r.db.WithContext(ctx).Create(post).Error
}

func (r *postRepository) GetByID(ctx context.Context, id uint, viewerID uint) (*models.Post, error) {
	var post models.Post
	err := applyPostDetails(r.db.WithContext(ctx), viewerID).
		Preload("User").
		First(&post, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &post, nil
}

func (r *postRepository) List(ctx context.Context, limit, offset int, viewerID uint) ([]*models.Post, error) {
	return r.page(applyPostDetails(r.db.WithContext(ctx), viewerID), limit, offset)
}

func (r *postRepository) ListByUser(ctx context.Context, userID uint, limit, offset int, viewerID uint) ([]*models.Post, error) {
	q := applyPostDetails(r.db.WithContext(ctx), viewerID).Where("posts.user_id = ?", userID)
	return r.page(q, limit, offset)
}

// Feed returns posts written by userID or by anyone userID follows.
func (r *postRepository) Feed(ctx context.Context, userID uint, limit, offset int) ([]*models.Post, error) {
	following := r.db.Model(&models.Follow{}).Select("following_id").Where("follower_id = ?", userID)
	q := applyPostDetails(r.db.WithContext(ctx), userID).
		Where("posts.user_id = ? OR posts.user_id IN (?)", userID, following)
	return r.page(q, limit, offset)
}

func (r *postRepository) Search(ctx context.Context, query string, limit, offset int, viewerID uint) ([]*models.Post, error) {
	like := "%" + strings.ToLower(strings.TrimSpace(query)) + "%"
	q := applyPostDetails(r.db.WithContext(ctx), viewerID).
		Where("LOWER(posts.title) LIKE ? OR LOWER(posts.content) LIKE ?", like, like)
	return r.page(q, limit, offset)
}

func (r *postRepository) page(q *gorm.DB, limit, offset int) ([]*models.Post, error) {
	limit, offset = clampPage(limit, offset)
	var posts []*models.Post
	err := q.Preload("User").
		Order("posts.created_at DESC").
		Order("posts.id DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

// applyPostDetails adds subqueries to fetch counts and liked status in a single query.
func applyPostDetails(db *gorm.DB, viewerID uint) *gorm.DB {
	selectQuery := "posts.*, " +
		"(SELECT COUNT(*) FROM comments WHERE comments.post_id = posts.id) AS comments_count, " +
		"(SELECT COUNT(*) FROM likes WHERE likes.post_id = posts.id) AS likes_count"

	if viewerID != 0 {
		return db.Model(&models.Post{}).Select(selectQuery+", EXISTS(SELECT 1 FROM likes WHERE likes.post_id = posts.id AND likes.user_id = ?) AS liked", viewerID)
	}
	return db.Model(&models.Post{}).Select(selectQuery + ", false AS liked")
}

// DeleteCascade removes a post with its likes, comments and reports as one
// unit of work. Used when an author or admin deletes a post directly.
func (r *postRepository) DeleteCascade(ctx context.Context, id uint) error {
	var removed bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", id).Delete(&models.Report{}).Error; err != nil {
			return err
		}
		var err error
		removed, err = deletePostRows(tx, id)
		return err
	})
	if err != nil {
		return models.NewInternalError(err)
	}
	if !removed {
		return models.NewNotFoundError("Post", id)
	}
	cache.InvalidatePost(ctx, id)
	cache.InvalidateModerationQueue(ctx)
	return nil
}

// deletePostRows deletes a post's likes and comments and then the post row.
// It reports whether the post row existed.
func deletePostRows(tx *gorm.DB, postID uint) (bool, error) {
	if err := tx.Where("post_id = ?", postID).Delete(&models.Like{}).Error; err != nil {
		return false, err
	}
	if err := tx.Where("post_id = ?", postID).Delete(&models.Comment{}).Error; err != nil {
		return false, err
	}
	res := tx.Where("id = ?", postID).Delete(&models.Post{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// errConcurrentLike aborts the toggle when another request inserted the
// same like first; the end state is liked either way.
var errConcurrentLike = errors.New("like inserted concurrently")

// ToggleLike likes the post if userID has not liked it yet and unlikes it
// otherwise. It returns the resulting liked state.
func (r *postRepository) ToggleLike(ctx context.Context, userID, postID uint) (bool, error) {
	var liked bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("user_id = ? AND post_id = ?", userID, postID).Delete(&models.Like{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			liked = false
			return nil
		}
		if err := tx.Create(&models.Like{UserID: userID, PostID: postID}).Error; err != nil {
			if isUniqueViolation(err) {
				return errConcurrentLike
			}
			return err
		}
		liked = true
		return nil
	})
	if errors.Is(err, errConcurrentLike) {
		return true, nil
	}
	if err != nil {
		return false, models.NewInternalError(err)
	}
	return liked, nil
}

func (r *postRepository) IsLiked(ctx context.Context, userID, postID uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Like{}).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
