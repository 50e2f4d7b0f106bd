package moderation

import (
	"context"
	"slices"

	"agora/internal/models"
	"agora/internal/repository"
)

// Aggregate folds PENDING reports into one queue entry per reported post.
//
// Reports are considered newest first. Each entry counts every report on its
// post and carries the reason, date and id of the most recent one; when two
// reports share a timestamp the one seen first wins. Reports whose post no
// longer exists are skipped. The result is never nil.
func Aggregate(reports []models.Report) []models.ReportQueueEntry {
	ordered := slices.Clone(reports)
	slices.SortStableFunc(ordered, func(a, b models.Report) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})

	queue := make([]models.ReportQueueEntry, 0, len(ordered))
	index := make(map[uint]int, len(ordered))

	for _, r := range ordered {
		if r.Post == nil {
			continue
		}

		if i, ok := index[r.Post.ID]; ok {
			entry := &queue[i]
			entry.ReportCount++
			if r.CreatedAt.After(entry.LastReportDate) {
				entry.LastReportDate = r.CreatedAt
				entry.ReportReason = r.Reason
				entry.ReportID = r.ID
			}
			continue
		}

		index[r.Post.ID] = len(queue)
		queue = append(queue, newQueueEntry(r))
	}

	return queue
}

func newQueueEntry(r models.Report) models.ReportQueueEntry {
	p := r.Post
	title := p.Title
	if title == "" {
		title = models.DefaultQueueTitle
	}
	return models.ReportQueueEntry{
		ID:             p.ID,
		Title:          title,
		Content:        p.Content,
		Type:           p.Type,
		ImageURL:       p.ImageURL,
		CreatedAt:      p.CreatedAt,
		Author:         p.User.Summary(),
		ReportCount:    1,
		ReportReason:   r.Reason,
		LastReportDate: r.CreatedAt,
		ReportID:       r.ID,
	}
}

// Queue lists the PENDING reports from store and aggregates them for actor.
func Queue(ctx context.Context, actor Actor, store repository.ReportRepository) ([]models.ReportQueueEntry, error) {
	if err := actor.Authorize(); err != nil {
		return nil, err
	}
	reports, err := store.ListPending(ctx)
	if err != nil {
		return nil, err
	}
	return Aggregate(reports), nil
}
