package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"agora/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ReportRepository is the persistence port of the moderation workflow.
// Transaction hands fn a repository bound to one database transaction;
// every call made through it commits or rolls back together.
type ReportRepository interface {
	ListPending(ctx context.Context) ([]models.Report, error)
	GetByID(ctx context.Context, id uint) (*models.Report, error)
	LockReportedPost(ctx context.Context, reportID uint) error
	Create(ctx context.Context, report *models.Report) error
	SetStatus(ctx context.Context, id uint, status models.ReportStatus, resolvedBy uint, at time.Time) error
	DeletePostCascade(ctx context.Context, postID uint) (bool, error)
	ResolvePendingForPost(ctx context.Context, postID uint, status models.ReportStatus, resolvedBy uint, at time.Time) (int64, error)
	CountPending(ctx context.Context) (int64, error)
	Transaction(ctx context.Context, fn func(tx ReportRepository) error) error
}

type reportRepository struct {
	db   *gorm.DB
	inTx bool
}

// NewReportRepository returns a GORM-backed ReportRepository.
func NewReportRepository(db *gorm.DB) ReportRepository {
	return &reportRepository{db: db}
}

// ListPending returns every PENDING report with its post and the post's
// author, newest first. Post is nil for reports whose post no longer exists.
func (r *reportRepository) ListPending(ctx context.Context) ([]models.Report, error) {
	var reports []models.Report
	err := r.db.WithContext(ctx).
		Preload("Post").
		Preload("Post.User").
		Where("status = ?", models.ReportStatusPending).
		Order("created_at DESC").
		Order("id DESC").
		Find(&reports).Error
	if err != nil {
		return nil, fmt.Errorf("list pending reports: %w", err)
	}
	return reports, nil
}

// GetByID loads a report. Inside a transaction on PostgreSQL the row is
// locked FOR UPDATE until commit.
func (r *reportRepository) GetByID(ctx context.Context, id uint) (*models.Report, error) {
	q := r.db.WithContext(ctx)
	if r.inTx && q.Dialector.Name() == "postgres" {
		q = q.Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate})
	}

	var report models.Report
	if err := q.First(&report, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Report", id)
		}
		return nil, fmt.Errorf("get report %d: %w", id, err)
	}
	return &report, nil
}

// LockReportedPost takes the row lock on the post that reportID points at,
// without locking the report itself. Resolutions on the same post lock the
// post first and so queue behind each other instead of deadlocking on the
// sibling cascade. It is a no-op outside a PostgreSQL transaction or when
// the post is gone.
func (r *reportRepository) LockReportedPost(ctx context.Context, reportID uint) error {
	if !r.inTx || r.db.Dialector.Name() != "postgres" {
		return nil
	}
	var ids []uint
	err := r.db.WithContext(ctx).
		Raw(`SELECT id FROM posts WHERE id = (SELECT post_id FROM reports WHERE id = ?) FOR UPDATE`, reportID).
		Scan(&ids).Error
	if err != nil {
		return fmt.Errorf("lock post of report %d: %w", reportID, err)
	}
	return nil
}

func (r *reportRepository) Create(ctx context.Context, report *models.Report) error {
	if report.Status == "" {
		report.Status = models.ReportStatusPending
	}
	if err := r.db.WithContext(ctx).Create(report).Error; err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("report post %d by %d: %w", report.PostID, report.ReporterID, ErrDuplicate)
		}
		return fmt.Errorf("create report: %w", err)
	}
	return nil
}

func (r *reportRepository) SetStatus(ctx context.Context, id uint, status models.ReportStatus, resolvedBy uint, at time.Time) error {
	res := r.db.WithContext(ctx).Model(&models.Report{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":         status,
			"resolved_by_id": resolvedBy,
			"resolved_at":    at,
			"updated_at":     at,
		})
	if res.Error != nil {
		return fmt.Errorf("set report %d status: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Report", id)
	}
	return nil
}

// DeletePostCascade removes the post with its likes and comments. It reports
// false when the post row was already gone. Reports are left in place so the
// moderation history survives.
func (r *reportRepository) DeletePostCascade(ctx context.Context, postID uint) (bool, error) {
	removed, err := deletePostRows(r.db.WithContext(ctx), postID)
	if err != nil {
		return false, fmt.Errorf("delete post %d: %w", postID, err)
	}
	return removed, nil
}

// ResolvePendingForPost moves every report on postID that is still PENDING
// to status and returns how many rows changed.
func (r *reportRepository) ResolvePendingForPost(ctx context.Context, postID uint, status models.ReportStatus, resolvedBy uint, at time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.Report{}).
		Where("post_id = ? AND status = ?", postID, models.ReportStatusPending).
		Updates(map[string]any{
			"status":         status,
			"resolved_by_id": resolvedBy,
			"resolved_at":    at,
			"updated_at":     at,
		})
	if res.Error != nil {
		return 0, fmt.Errorf("resolve pending reports for post %d: %w", postID, res.Error)
	}
	return res.RowsAffected, nil
}

func (r *reportRepository) CountPending(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Report{}).
		Where("status = ?", models.ReportStatusPending).
		Count(&count).Error
	return count, err
}

// Transaction runs fn inside one database transaction. Nested calls reuse
// the enclosing transaction.
func (r *reportRepository) Transaction(ctx context.Context, fn func(tx ReportRepository) error) error {
	if r.inTx {
		return fn(r)
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&reportRepository{db: tx, inTx: true})
	})
}
