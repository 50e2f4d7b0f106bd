// Package seed populates a database with demo users, posts and a moderation
// queue. It is meant for development and testing only.
package seed

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"agora/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const batchSize = 200

var reportReasons = []string{
	"Spam",
	"Harassment or bullying",
	"Hate speech",
	"Misinformation",
	"Inappropriate content",
	"Impersonation",
	"Off-topic self promotion",
}

// Summary counts what a run created.
type Summary struct {
	Users           int
	Posts           int
	Follows         int
	Likes           int
	Comments        int
	Reports         int
	PendingReports  int
	ResolvedReports int
}

// Seeder generates demo data with a deterministic faker.
type Seeder struct {
	db    *gorm.DB
	faker *gofakeit.Faker
	now   func() time.Time
	// bcrypt cost; tests lower it
	cost int
}

// NewSeeder returns a Seeder bound to db.
func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{db: db, now: time.Now, cost: bcrypt.DefaultCost}
}

// ClearAll removes every row the seeder can create, children first.
func (s *Seeder) ClearAll(ctx context.Context) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, model := range []any{&models.Report{}, &models.Like{}, &models.Comment{}, &models.Follow{}, &models.Post{}, &models.User{}} {
			if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(model).Error; err != nil {
				return fmt.Errorf("clear %T: %w", model, err)
			}
		}
		return nil
	})
}

// Run generates the dataset described by p inside one transaction.
func (s *Seeder) Run(ctx context.Context, p *Preset) (Summary, error) {
	p.withDefaults()
	if err := p.Validate(); err != nil {
		return Summary{}, err
	}
	seed := p.Seed
	if seed == 0 {
		seed = s.now().UnixNano()
	}
	s.faker = gofakeit.New(seed)

	var sum Summary
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		users, err := s.users(tx, p)
		if err != nil {
			return err
		}
		sum.Users = len(users)

		if sum.Follows, err = s.follows(tx, p, users); err != nil {
			return err
		}

		posts, err := s.posts(tx, p, users)
		if err != nil {
			return err
		}
		sum.Posts = len(posts)

		if sum.Likes, err = s.likes(tx, p, users, posts); err != nil {
			return err
		}
		if sum.Comments, err = s.comments(tx, p, users, posts); err != nil {
			return err
		}

		reports, err := s.reports(tx, p, users, posts)
		if err != nil {
			return err
		}
		sum.Reports = len(reports)
		for _, r := range reports {
			if r.Status == models.ReportStatusPending {
				sum.PendingReports++
			} else {
				sum.ResolvedReports++
			}
		}
		return nil
	})
	if err != nil {
		return Summary{}, err
	}

	slog.InfoContext(ctx, "seed complete",
		"preset", p.Name, "seed", seed,
		"users", sum.Users, "posts", sum.Posts, "reports", sum.Reports, "pending", sum.PendingReports)
	return sum, nil
}

func (s *Seeder) users(tx *gorm.DB, p *Preset) ([]models.User, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(p.Password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash seed password: %w", err)
	}

	users := make([]models.User, p.Users)
	for i := range users {
		first, last := s.faker.FirstName(), s.faker.LastName()
		users[i] = models.User{
			Name:      first + " " + last,
			Email:     fmt.Sprintf("%s.%s.%d@example.com", strings.ToLower(first), strings.ToLower(last), i),
			Password:  string(hashed),
			Bio:       s.faker.Sentence(12),
			Headline:  s.faker.JobTitle(),
			Location:  s.faker.City(),
			Image:     fmt.Sprintf("https://i.pravatar.cc/150?u=%d", i),
			IsAdmin:   i < p.Admins,
			CreatedAt: s.pastTime(p.MaxDays),
		}
	}
	if err := tx.CreateInBatches(&users, batchSize).Error; err != nil {
		return nil, fmt.Errorf("create users: %w", err)
	}
	return users, nil
}

func (s *Seeder) follows(tx *gorm.DB, p *Preset, users []models.User) (int, error) {
	if len(users) < 2 || p.FollowsPerUser == 0 {
		return 0, nil
	}
	var follows []models.Follow
	for i := range users {
		for _, j := range s.pick(len(users), p.FollowsPerUser, i) {
			follows = append(follows, models.Follow{FollowerID: users[i].ID, FollowingID: users[j].ID})
		}
	}
	if len(follows) == 0 {
		return 0, nil
	}
	if err := tx.CreateInBatches(&follows, batchSize).Error; err != nil {
		return 0, fmt.Errorf("create follows: %w", err)
	}
	return len(follows), nil
}

func (s *Seeder) posts(tx *gorm.DB, p *Preset, users []models.User) ([]models.Post, error) {
	var posts []models.Post
	for _, u := range users {
		for range p.PostsPerUser {
			postType := models.PostTypeSocial
			if s.faker.IntRange(1, 100) <= p.ProfessionalPct {
				postType = models.PostTypeProfessional
			}
			post := models.Post{
				Title:     s.faker.Sentence(5),
				Content:   s.faker.Paragraph(1, 3, 12, "\n"),
				Type:      postType,
				UserID:    u.ID,
				CreatedAt: s.pastTime(p.MaxDays),
			}
			// Some posts are left untitled to exercise the queue fallback title.
			if s.faker.IntRange(1, 10) == 1 {
				post.Title = ""
			}
			if s.faker.IntRange(1, 4) == 1 {
				post.ImageURL = fmt.Sprintf("https://picsum.photos/seed/%s/800/600", s.faker.UUID())
			}
			posts = append(posts, post)
		}
	}
	if len(posts) == 0 {
		return nil, nil
	}
	if err := tx.CreateInBatches(&posts, batchSize).Error; err != nil {
		return nil, fmt.Errorf("create posts: %w", err)
	}
	return posts, nil
}

func (s *Seeder) likes(tx *gorm.DB, p *Preset, users []models.User, posts []models.Post) (int, error) {
	if p.LikesPerPost == 0 {
		return 0, nil
	}
	var likes []models.Like
	for _, post := range posts {
		for _, j := range s.pick(len(users), p.LikesPerPost, -1) {
			likes = append(likes, models.Like{UserID: users[j].ID, PostID: post.ID})
		}
	}
	if len(likes) == 0 {
		return 0, nil
	}
	if err := tx.CreateInBatches(&likes, batchSize).Error; err != nil {
		return 0, fmt.Errorf("create likes: %w", err)
	}
	return len(likes), nil
}

func (s *Seeder) comments(tx *gorm.DB, p *Preset, users []models.User, posts []models.Post) (int, error) {
	if p.CommentsPerPost == 0 {
		return 0, nil
	}
	var comments []models.Comment
	for _, post := range posts {
		for range p.CommentsPerPost {
			author := users[s.faker.IntRange(0, len(users)-1)]
			comments = append(comments, models.Comment{
				Content: s.faker.Sentence(s.faker.IntRange(4, 16)),
				UserID:  author.ID,
				PostID:  post.ID,
			})
		}
	}
	if len(comments) == 0 {
		return 0, nil
	}
	if err := tx.CreateInBatches(&comments, batchSize).Error; err != nil {
		return 0, fmt.Errorf("create comments: %w", err)
	}
	return len(comments), nil
}

// reports flags a share of posts. Reporters are distinct per post and never
// the author. A share of the flagged posts is rejected outright so the
// history holds resolved reports next to the pending queue.
func (s *Seeder) reports(tx *gorm.DB, p *Preset, users []models.User, posts []models.Post) ([]models.Report, error) {
	if p.ReportedRatio == 0 || p.ReportsPerPost == 0 {
		return nil, nil
	}

	var admin *models.User
	for i := range users {
		if users[i].IsAdmin {
			admin = &users[i]
			break
		}
	}

	index := make(map[uint]int, len(users))
	for i, u := range users {
		index[u.ID] = i
	}

	var reports []models.Report
	for _, post := range posts {
		if s.faker.Float64Range(0, 1) >= p.ReportedRatio {
			continue
		}
		status := models.ReportStatusPending
		var resolvedBy *uint
		var resolvedAt *time.Time
		if admin != nil && s.faker.Float64Range(0, 1) < p.ResolvedRatio {
			status = models.ReportStatusRejected
			id, at := admin.ID, s.now().UTC()
			resolvedBy, resolvedAt = &id, &at
		}

		for _, j := range s.pick(len(users), p.ReportsPerPost, index[post.UserID]) {
			reports = append(reports, models.Report{
				PostID:       post.ID,
				ReporterID:   users[j].ID,
				Reason:       s.faker.RandomString(reportReasons),
				Status:       status,
				ResolvedByID: resolvedBy,
				ResolvedAt:   resolvedAt,
				CreatedAt:    s.between(post.CreatedAt, s.now()),
			})
		}
	}
	if len(reports) == 0 {
		return nil, nil
	}
	if err := tx.CreateInBatches(&reports, batchSize).Error; err != nil {
		return nil, fmt.Errorf("create reports: %w", err)
	}
	return reports, nil
}

// pick returns up to n distinct indexes in [0, size), never exclude.
func (s *Seeder) pick(size, n, exclude int) []int {
	candidates := make([]int, 0, size)
	for i := range size {
		if i != exclude {
			candidates = append(candidates, i)
		}
	}
	s.faker.ShuffleAnySlice(candidates)
	if n > len(candidates) {
		n = len(candidates)
	}
	return candidates[:n]
}

func (s *Seeder) pastTime(maxDays int) time.Time {
	now := s.now()
	return s.between(now.AddDate(0, 0, -maxDays), now)
}

func (s *Seeder) between(start, end time.Time) time.Time {
	if !end.After(start) {
		return end
	}
	return s.faker.DateRange(start, end)
}
