// Package service holds the application use cases behind the HTTP handlers
// and CLI commands.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"agora/internal/cache"
	"agora/internal/models"
	"agora/internal/moderation"
	"agora/internal/notifications"
	"agora/internal/observability"
	"agora/internal/repository"

	"go.opentelemetry.io/otel/attribute"
)

const maxReportReasonLen = 1000

// ErrAlreadyReported is returned when a user reports the same post twice.
var ErrAlreadyReported = models.NewConflictError("You have already reported this post")

type ModerationService struct {
	reports  repository.ReportRepository
	posts    repository.PostRepository
	resolver *moderation.Resolver
	events   notifications.Publisher
	queueTTL time.Duration
}

type CreateReportInput struct {
	ReporterID uint
	PostID     uint
	Reason     string
}

// NewModerationService wires the moderation use cases. events may be nil;
// queueTTL of zero disables queue caching.
func NewModerationService(
	reports repository.ReportRepository,
	posts repository.PostRepository,
	events notifications.Publisher,
	queueTTL time.Duration,
) *ModerationService {
	return &ModerationService{
		reports:  reports,
		posts:    posts,
		resolver: moderation.NewResolver(reports),
		events:   events,
		queueTTL: queueTTL,
	}
}

// ReportedContent returns the aggregated moderation queue, served from the
// cache while it is fresh.
func (s *ModerationService) ReportedContent(ctx context.Context, actor moderation.Actor) ([]models.ReportQueueEntry, error) {
	span, ctx := observability.NewSpan(ctx, "moderation.reported_content",
		attribute.Int64("actor.id", int64(actor.UserID)))
	defer span.End()

	if err := actor.Authorize(); err != nil {
		span.SetError(err)
		return nil, err
	}

	var queue []models.ReportQueueEntry
	err := cache.Aside(ctx, cache.ModerationQueueKey, &queue, s.queueTTL, func() error {
		var fetchErr error
		queue, fetchErr = moderation.Queue(ctx, actor, s.reports)
		return fetchErr
	})
	if err != nil {
		span.SetError(err)
		return nil, err
	}
	if queue == nil {
		queue = []models.ReportQueueEntry{}
	}

	observability.ModerationQueueSize.Set(float64(len(queue)))
	span.AddAttributes(attribute.Int("queue.size", len(queue)))
	return queue, nil
}

// ResolveReport applies an admin decision and notifies listeners.
func (s *ModerationService) ResolveReport(ctx context.Context, actor moderation.Actor, reportID uint, action moderation.Action) (moderation.Resolution, error) {
	span, ctx := observability.NewSpan(ctx, "moderation.resolve_report",
		attribute.Int64("actor.id", int64(actor.UserID)),
		attribute.Int64("report.id", int64(reportID)),
		attribute.String("moderation.action", string(action)),
	)
	defer span.End()

	res, err := s.resolver.Resolve(ctx, actor, reportID, action)
	if err != nil {
		span.SetError(err)
		return res, err
	}

	span.AddAttributes(
		attribute.String("moderation.outcome", string(res.Outcome)),
		attribute.Int64("post.id", int64(res.PostID)),
		attribute.Int64("moderation.cascaded", res.Cascaded),
	)
	observability.ReportsResolved.WithLabelValues(string(res.Action), string(res.Outcome)).Inc()

	cache.InvalidateModerationQueue(ctx)
	if res.Outcome == moderation.OutcomeRemoved {
		cache.InvalidatePost(ctx, res.PostID)
	}

	s.publish(ctx, notifications.ModerationEvent{
		Type:       notifications.EventReportResolved,
		ReportID:   res.ReportID,
		PostID:     res.PostID,
		ActorID:    actor.UserID,
		Action:     string(res.Action),
		Outcome:    string(res.Outcome),
		Cascaded:   res.Cascaded,
		OccurredAt: time.Now().UTC(),
	})
	return res, nil
}

// CreateReport files a report by reporterID against a post.
func (s *ModerationService) CreateReport(ctx context.Context, in CreateReportInput) (*models.Report, error) {
	reason := strings.TrimSpace(in.Reason)
	if reason == "" {
		return nil, models.NewValidationError("Reason is required")
	}
	if utf8.RuneCountInString(reason) > maxReportReasonLen {
		return nil, models.NewValidationError("Reason too long (max 1000 characters)")
	}

	post, err := s.posts.GetByID(ctx, in.PostID, 0)
	if err != nil {
		return nil, err
	}
	if post.UserID == in.ReporterID {
		return nil, models.NewValidationError("You cannot report your own post")
	}

	report := &models.Report{
		PostID:     in.PostID,
		ReporterID: in.ReporterID,
		Reason:     reason,
		Status:     models.ReportStatusPending,
	}
	if err := s.reports.Create(ctx, report); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrAlreadyReported
		}
		return nil, err
	}

	observability.ReportsCreated.Inc()
	cache.InvalidateModerationQueue(ctx)
	s.publish(ctx, notifications.ModerationEvent{
		Type:       notifications.EventReportCreated,
		ReportID:   report.ID,
		PostID:     report.PostID,
		ActorID:    in.ReporterID,
		OccurredAt: time.Now().UTC(),
	})
	return report, nil
}

// ContentRemoved drops cached views of a post deleted outside the
// moderation workflow, so the queue never lists a post that is gone.
func (s *ModerationService) ContentRemoved(ctx context.Context, postID uint) {
	cache.InvalidateModerationQueue(ctx)
	cache.InvalidatePost(ctx, postID)
}

// PendingCount returns the number of unresolved reports.
func (s *ModerationService) PendingCount(ctx context.Context) (int64, error) {
	return s.reports.CountPending(ctx)
}

// publish is best effort: the decision is already committed.
func (s *ModerationService) publish(ctx context.Context, ev notifications.ModerationEvent) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishModerationEvent(ctx, ev); err != nil {
		slog.WarnContext(ctx, "failed to publish moderation event",
			"type", ev.Type, "report_id", ev.ReportID, "error", err)
	}
}
