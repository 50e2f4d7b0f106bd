package service

import (
	"context"
	"time"

	"agora/internal/cache"
	"agora/internal/models"
	"agora/internal/repository"

	"golang.org/x/sync/errgroup"
)

const dashboardDays = 7

// Series is a labelled daily time series, oldest day first.
type Series struct {
	Labels []string `json:"labels"`
	Data   []int64  `json:"data"`
}

type EngagementSeries struct {
	Labels   []string `json:"labels"`
	Posts    []int64  `json:"posts"`
	Comments []int64  `json:"comments"`
	Likes    []int64  `json:"likes"`
}

// DashboardStats is the admin dashboard payload.
type DashboardStats struct {
	TotalUsers          int64            `json:"totalUsers"`
	NewUsersToday       int64            `json:"newUsersToday"`
	TotalPosts          int64            `json:"totalPosts"`
	NewPostsToday       int64            `json:"newPostsToday"`
	TotalComments       int64            `json:"totalComments"`
	TotalLikes          int64            `json:"totalLikes"`
	ReportedContent     int64            `json:"reportedContent"`
	UserGrowthData      Series           `json:"userGrowthData"`
	EngagementData      EngagementSeries `json:"engagementData"`
	ContentDistribution Series           `json:"contentDistribution"`
}

type DashboardService struct {
	stats   repository.StatsRepository
	reports repository.ReportRepository
	now     func() time.Time
}

func NewDashboardService(stats repository.StatsRepository, reports repository.ReportRepository) *DashboardService {
	return &DashboardService{stats: stats, reports: reports, now: time.Now}
}

// Stats computes the dashboard. Days are UTC calendar days ending today.
func (s *DashboardService) Stats(ctx context.Context) (*DashboardStats, error) {
	var out DashboardStats
	err := cache.Aside(ctx, cache.DashboardStatsKey, &out, cache.DashboardTTL, func() error {
		stats, err := s.compute(ctx)
		if err != nil {
			return err
		}
		out = *stats
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *DashboardService) compute(ctx context.Context) (*DashboardStats, error) {
	now := s.now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	windowStart := today.AddDate(0, 0, -(dashboardDays - 1))

	var (
		out                       DashboardStats
		withImage                 int64
		byType                    []repository.TypeCount
		userStamps, postStamps    []time.Time
		commentStamps, likeStamps []time.Time
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { out.TotalUsers, err = s.stats.CountUsers(gctx, time.Time{}); return })
	g.Go(func() (err error) { out.NewUsersToday, err = s.stats.CountUsers(gctx, today); return })
	g.Go(func() (err error) { out.TotalPosts, err = s.stats.CountPosts(gctx, time.Time{}); return })
	g.Go(func() (err error) { out.NewPostsToday, err = s.stats.CountPosts(gctx, today); return })
	g.Go(func() (err error) { out.TotalComments, err = s.stats.CountComments(gctx); return })
	g.Go(func() (err error) { out.TotalLikes, err = s.stats.CountLikes(gctx); return })
	g.Go(func() (err error) { out.ReportedContent, err = s.reports.CountPending(gctx); return })
	g.Go(func() (err error) { withImage, err = s.stats.CountPostsWithImage(gctx); return })
	g.Go(func() (err error) { byType, err = s.stats.CountPostsByType(gctx); return })
	g.Go(func() (err error) {
		userStamps, err = s.stats.CreatedSince(gctx, &models.User{}, windowStart)
		return
	})
	g.Go(func() (err error) {
		postStamps, err = s.stats.CreatedSince(gctx, &models.Post{}, windowStart)
		return
	})
	g.Go(func() (err error) {
		commentStamps, err = s.stats.CreatedSince(gctx, &models.Comment{}, windowStart)
		return
	})
	g.Go(func() (err error) {
		likeStamps, err = s.stats.CreatedSince(gctx, &models.Like{}, windowStart)
		return
	})
	if err := g.Wait(); err != nil {
		return nil, models.NewInternalError(err)
	}

	labels := dayLabels(windowStart)
	out.UserGrowthData = Series{Labels: labels, Data: bucketByDay(userStamps, windowStart)}
	out.EngagementData = EngagementSeries{
		Labels:   labels,
		Posts:    bucketByDay(postStamps, windowStart),
		Comments: bucketByDay(commentStamps, windowStart),
		Likes:    bucketByDay(likeStamps, windowStart),
	}

	var professional, social int64
	for _, tc := range byType {
		switch tc.Type {
		case models.PostTypeProfessional:
			professional = tc.Count
		case models.PostTypeSocial:
			social = tc.Count
		}
	}
	out.ContentDistribution = Series{
		Labels: []string{"Professional", "Social", "With Images", "Text Only"},
		Data:   []int64{professional, social, withImage, out.TotalPosts - withImage},
	}
	return &out, nil
}

func dayLabels(start time.Time) []string {
	labels := make([]string, dashboardDays)
	for i := range labels {
		labels[i] = start.AddDate(0, 0, i).Format("Jan 02")
	}
	return labels
}

// bucketByDay counts stamps per UTC day starting at start. Stamps outside
// the window are ignored.
func bucketByDay(stamps []time.Time, start time.Time) []int64 {
	buckets := make([]int64, dashboardDays)
	for _, ts := range stamps {
		ts = ts.UTC()
		if ts.Before(start) {
			continue
		}
		day := int(ts.Sub(start) / (24 * time.Hour))
		if day < dashboardDays {
			buckets[day]++
		}
	}
	return buckets
}
