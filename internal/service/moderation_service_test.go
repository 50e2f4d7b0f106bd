package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"agora/internal/cache"
	"agora/internal/models"
	"agora/internal/moderation"
	"agora/internal/notifications"
	"agora/internal/repository"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type eventSink struct {
	events []notifications.ModerationEvent
	err    error
}

func (s *eventSink) PublishModerationEvent(_ context.Context, ev notifications.ModerationEvent) error {
	s.events = append(s.events, ev)
	return s.err
}

func pendingReport(id, postID uint, reason string, at time.Time) models.Report {
	return models.Report{
		ID:        id,
		PostID:    postID,
		Reason:    reason,
		Status:    models.ReportStatusPending,
		CreatedAt: at,
		Post:      &models.Post{ID: postID, Content: "content", Type: models.PostTypeSocial},
	}
}

func TestModerationService_ReportedContent_RequiresAdmin(t *testing.T) {
	t.Parallel()

	reports := noopReportRepo()
	reports.listPendingFn = func(_ context.Context) ([]models.Report, error) {
		t.Fatal("storage must not be queried for non-admins")
		return nil, nil
	}
	svc := NewModerationService(reports, noopPostRepo(), nil, 0)

	_, err := svc.ReportedContent(context.Background(), moderation.Actor{UserID: 3})
	assert.ErrorIs(t, err, moderation.ErrForbidden)
}

func TestModerationService_ReportedContent_Aggregates(t *testing.T) {
	t.Parallel()

	now := time.Now()
	reports := noopReportRepo()
	reports.listPendingFn = func(_ context.Context) ([]models.Report, error) {
		return []models.Report{
			pendingReport(2, 10, "abuse", now),
			pendingReport(1, 10, "spam", now.Add(-time.Hour)),
			pendingReport(3, 11, "nsfw", now.Add(-2*time.Hour)),
		}, nil
	}
	svc := NewModerationService(reports, noopPostRepo(), nil, 0)

	queue, err := svc.ReportedContent(context.Background(), moderation.Admin(1))
	require.NoError(t, err)
	require.Len(t, queue, 2)
	assert.Equal(t, uint(10), queue[0].ID)
	assert.Equal(t, 2, queue[0].ReportCount)
	assert.Equal(t, "abuse", queue[0].ReportReason)
	assert.Equal(t, uint(2), queue[0].ReportID)
	assert.Equal(t, 1, queue[1].ReportCount)
}

func TestModerationService_ReportedContent_EmptyIsNotNil(t *testing.T) {
	t.Parallel()

	svc := NewModerationService(noopReportRepo(), noopPostRepo(), nil, 0)
	queue, err := svc.ReportedContent(context.Background(), moderation.Admin(1))
	require.NoError(t, err)
	assert.NotNil(t, queue)
	assert.Empty(t, queue)
}

func TestModerationService_ReportedContent_CachedUntilResolved(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer func() { _ = rdb.Close() }()
	cache.SetClient(rdb)
	t.Cleanup(func() { cache.SetClient(nil) })

	calls := 0
	reports := noopReportRepo()
	reports.listPendingFn = func(_ context.Context) ([]models.Report, error) {
		calls++
		return []models.Report{pendingReport(1, 10, "spam", time.Now())}, nil
	}
	svc := NewModerationService(reports, noopPostRepo(), nil, 30*time.Second)
	ctx := context.Background()
	admin := moderation.Admin(1)

	_, err = svc.ReportedContent(ctx, admin)
	require.NoError(t, err)
	queue, err := svc.ReportedContent(ctx, admin)
	require.NoError(t, err)
	require.Len(t, queue, 1)
	assert.Equal(t, 1, calls, "second read should be served from cache")

	_, err = svc.ResolveReport(ctx, admin, 1, moderation.ActionReject)
	require.NoError(t, err)
	assert.False(t, mr.Exists(cache.ModerationQueueKey))

	_, err = svc.ReportedContent(ctx, admin)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestModerationService_ReportedContent_ResolveDuringFillNotCached(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	cache.SetClient(rdb)
	t.Cleanup(func() { cache.SetClient(nil) })

	ctx := context.Background()
	admin := moderation.Admin(1)
	pending := true
	var other *ModerationService

	reports := noopReportRepo()
	reports.listPendingFn = func(_ context.Context) ([]models.Report, error) {
		if !pending {
			return nil, nil
		}
		snapshot := []models.Report{pendingReport(1, 10, "spam", time.Now())}
		// A second admin approves while this read is still in flight.
		pending = false
		_, err := other.ResolveReport(ctx, admin, 1, moderation.ActionApprove)
		require.NoError(t, err)
		return snapshot, nil
	}
	svc := NewModerationService(reports, noopPostRepo(), nil, 30*time.Second)
	other = svc

	queue, err := svc.ReportedContent(ctx, admin)
	require.NoError(t, err)
	assert.Len(t, queue, 1)
	assert.False(t, mr.Exists(cache.ModerationQueueKey))

	queue, err = svc.ReportedContent(ctx, admin)
	require.NoError(t, err)
	assert.Empty(t, queue)
}

func TestModerationService_ResolveReport_ApprovePublishes(t *testing.T) {
	t.Parallel()

	reports := noopReportRepo()
	reports.getByIDFn = func(_ context.Context, id uint) (*models.Report, error) {
		return &models.Report{ID: id, PostID: 42, Status: models.ReportStatusPending}, nil
	}
	reports.resolvePendingForPostFn = func(_ context.Context, postID uint, status models.ReportStatus, by uint, _ time.Time) (int64, error) {
		assert.Equal(t, uint(42), postID)
		assert.Equal(t, models.ReportStatusApproved, status)
		assert.Equal(t, uint(1), by)
		return 2, nil
	}
	sink := &eventSink{}
	svc := NewModerationService(reports, noopPostRepo(), sink, 0)

	res, err := svc.ResolveReport(context.Background(), moderation.Admin(1), 7, moderation.ActionApprove)
	require.NoError(t, err)
	assert.Equal(t, moderation.OutcomeRemoved, res.Outcome)
	assert.Equal(t, int64(2), res.Cascaded)

	require.Len(t, sink.events, 1)
	ev := sink.events[0]
	assert.Equal(t, notifications.EventReportResolved, ev.Type)
	assert.Equal(t, uint(7), ev.ReportID)
	assert.Equal(t, uint(42), ev.PostID)
	assert.Equal(t, "approve", ev.Action)
	assert.Equal(t, "removed", ev.Outcome)
}

func TestModerationService_ResolveReport_PublishFailureIsIgnored(t *testing.T) {
	t.Parallel()

	sink := &eventSink{err: errors.New("nats down")}
	svc := NewModerationService(noopReportRepo(), noopPostRepo(), sink, 0)

	res, err := svc.ResolveReport(context.Background(), moderation.Admin(1), 7, moderation.ActionReject)
	require.NoError(t, err)
	assert.Equal(t, moderation.OutcomeRejected, res.Outcome)
	assert.Len(t, sink.events, 1)
}

func TestModerationService_ResolveReport_Errors(t *testing.T) {
	t.Parallel()

	missing := noopReportRepo()
	missing.getByIDFn = func(_ context.Context, id uint) (*models.Report, error) {
		return nil, models.NewNotFoundError("Report", id)
	}

	tests := []struct {
		name    string
		repo    *reportRepoStub
		actor   moderation.Actor
		action  moderation.Action
		wantErr error
	}{
		{"not admin", noopReportRepo(), moderation.Actor{UserID: 2}, moderation.ActionApprove, moderation.ErrForbidden},
		{"invalid action", noopReportRepo(), moderation.Admin(1), moderation.Action("escalate"), moderation.ErrInvalidAction},
		{"unknown report", missing, moderation.Admin(1), moderation.ActionReject, moderation.ErrReportNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			sink := &eventSink{}
			svc := NewModerationService(tt.repo, noopPostRepo(), sink, 0)
			_, err := svc.ResolveReport(context.Background(), tt.actor, 99, tt.action)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Empty(t, sink.events)
		})
	}
}

func TestModerationService_CreateReport_Validation(t *testing.T) {
	t.Parallel()

	posts := noopPostRepo()
	posts.getByIDFn = func(_ context.Context, id, _ uint) (*models.Post, error) {
		return &models.Post{ID: id, UserID: 5}, nil
	}
	svc := NewModerationService(noopReportRepo(), posts, nil, 0)

	tests := []struct {
		name  string
		input CreateReportInput
	}{
		{"empty reason", CreateReportInput{ReporterID: 1, PostID: 1, Reason: ""}},
		{"whitespace reason", CreateReportInput{ReporterID: 1, PostID: 1, Reason: "   "}},
		{"reason too long", CreateReportInput{ReporterID: 1, PostID: 1, Reason: strings.Repeat("a", maxReportReasonLen+1)}},
		{"own post", CreateReportInput{ReporterID: 5, PostID: 1, Reason: "spam"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := svc.CreateReport(context.Background(), tt.input)
			assertAppError(t, err, models.CodeValidation)
		})
	}
}

func TestModerationService_CreateReport_PostNotFound(t *testing.T) {
	t.Parallel()

	posts := noopPostRepo()
	posts.getByIDFn = func(_ context.Context, id, _ uint) (*models.Post, error) {
		return nil, models.NewNotFoundError("Post", id)
	}
	svc := NewModerationService(noopReportRepo(), posts, nil, 0)

	_, err := svc.CreateReport(context.Background(), CreateReportInput{ReporterID: 1, PostID: 9, Reason: "spam"})
	assertAppError(t, err, models.CodeNotFound)
}

func TestModerationService_CreateReport_Duplicate(t *testing.T) {
	t.Parallel()

	reports := noopReportRepo()
	reports.createFn = func(_ context.Context, _ *models.Report) error {
		return repository.ErrDuplicate
	}
	posts := noopPostRepo()
	posts.getByIDFn = func(_ context.Context, id, _ uint) (*models.Post, error) {
		return &models.Post{ID: id, UserID: 5}, nil
	}
	svc := NewModerationService(reports, posts, nil, 0)

	_, err := svc.CreateReport(context.Background(), CreateReportInput{ReporterID: 1, PostID: 9, Reason: "spam"})
	assert.ErrorIs(t, err, ErrAlreadyReported)
	assert.Equal(t, 409, models.StatusFor(err))
}

func TestModerationService_CreateReport_Success(t *testing.T) {
	t.Parallel()

	var saved *models.Report
	reports := noopReportRepo()
	reports.createFn = func(_ context.Context, r *models.Report) error {
		r.ID = 31
		saved = r
		return nil
	}
	posts := noopPostRepo()
	posts.getByIDFn = func(_ context.Context, id, _ uint) (*models.Post, error) {
		return &models.Post{ID: id, UserID: 5}, nil
	}
	sink := &eventSink{}
	svc := NewModerationService(reports, posts, sink, 0)

	report, err := svc.CreateReport(context.Background(), CreateReportInput{ReporterID: 1, PostID: 9, Reason: "  spam  "})
	require.NoError(t, err)
	require.NotNil(t, saved)
	assert.Equal(t, "spam", report.Reason)
	assert.Equal(t, models.ReportStatusPending, report.Status)
	assert.Equal(t, uint(9), report.PostID)

	require.Len(t, sink.events, 1)
	assert.Equal(t, notifications.EventReportCreated, sink.events[0].Type)
	assert.Equal(t, uint(31), sink.events[0].ReportID)
}

func TestModerationService_PendingCount(t *testing.T) {
	t.Parallel()

	reports := noopReportRepo()
	reports.countPendingFn = func(_ context.Context) (int64, error) { return 4, nil }
	svc := NewModerationService(reports, noopPostRepo(), nil, 0)

	n, err := svc.PendingCount(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)
}
