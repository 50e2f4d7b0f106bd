package repository

import (
	"context"
	"time"

	"agora/internal/models"

	"gorm.io/gorm"
)

// TypeCount is the number of posts carrying one type tag.
type TypeCount struct {
	Type  models.PostType
	Count int64
}

// StatsRepository answers the read-only aggregate queries behind the admin dashboard.
type StatsRepository interface {
	CountUsers(ctx context.Context, since time.Time) (int64, error)
	CountPosts(ctx context.Context, since time.Time) (int64, error)
	CountComments(ctx context.Context) (int64, error)
	CountLikes(ctx context.Context) (int64, error)
	CountPostsWithImage(ctx context.Context) (int64, error)
	CountPostsByType(ctx context.Context) ([]TypeCount, error)
	CreatedSince(ctx context.Context, model any, since time.Time) ([]time.Time, error)
}

type statsRepository struct {
	db *gorm.DB
}

// NewStatsRepository returns a GORM-backed StatsRepository.
func NewStatsRepository(db *gorm.DB) StatsRepository {
	return &statsRepository{db: db}
}

// CountUsers counts users created at or after since; a zero since counts all.
func (r *statsRepository) CountUsers(ctx context.Context, since time.Time) (int64, error) {
	return r.count(ctx, &models.User{}, since)
}

// CountPosts counts posts created at or after since; a zero since counts all.
func (r *statsRepository) CountPosts(ctx context.Context, since time.Time) (int64, error) {
	return r.count(ctx, &models.Post{}, since)
}

func (r *statsRepository) CountComments(ctx context.Context) (int64, error) {
	return r.count(ctx, &models.Comment{}, time.Time{})
}

func (r *statsRepository) CountLikes(ctx context.Context) (int64, error) {
	return r.count(ctx, &models.Like{}, time.Time{})
}

func (r *statsRepository) count(ctx context.Context, model any, since time.Time) (int64, error) {
	var n int64
	q := r.db.WithContext(ctx).Model(model)
	if !since.IsZero() {
		q = q.Where("created_at >= ?", since)
	}
	err := q.Count(&n).Error
	return n, err
}

func (r *statsRepository) CountPostsWithImage(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Post{}).
		Where("image_url IS NOT NULL AND image_url <> ''").
		Count(&n).Error
	return n, err
}

func (r *statsRepository) CountPostsByType(ctx context.Context) ([]TypeCount, error) {
	var rows []TypeCount
	err := r.db.WithContext(ctx).Model(&models.Post{}).
		Select("type, COUNT(*) AS count").
		Group("type").
		Scan(&rows).Error
	return rows, err
}

// CreatedSince returns the creation timestamps of model rows since the given
// time, for bucketing into daily series.
func (r *statsRepository) CreatedSince(ctx context.Context, model any, since time.Time) ([]time.Time, error) {
	var stamps []time.Time
	err := r.db.WithContext(ctx).Model(model).
		Where("created_at >= ?", since).
		Order("created_at ASC").
		Pluck("created_at", &stamps).Error
	return stamps, err
}
