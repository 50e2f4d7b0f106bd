package seed

import (
	"context"
	"fmt"
	"testing"
	"time"

	"agora/internal/database"
	"agora/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, database.AutoMigrate(db))
	return db
}

func newTestSeeder(db *gorm.DB) *Seeder {
	s := NewSeeder(db)
	s.cost = bcrypt.MinCost
	s.now = func() time.Time { return time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC) }
	return s
}

func count(t *testing.T, db *gorm.DB, model any) int {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(model).Count(&n).Error)
	return int(n)
}

func TestRun_SmallPreset(t *testing.T) {
	db := setupTestDB(t)
	p, err := LoadPreset("small")
	require.NoError(t, err)

	sum, err := newTestSeeder(db).Run(context.Background(), p)
	require.NoError(t, err)

	assert.Equal(t, 12, sum.Users)
	assert.Equal(t, 36, sum.Posts)
	assert.Equal(t, sum.Users, count(t, db, &models.User{}))
	assert.Equal(t, sum.Posts, count(t, db, &models.Post{}))
	assert.Equal(t, sum.Follows, count(t, db, &models.Follow{}))
	assert.Equal(t, sum.Likes, count(t, db, &models.Like{}))
	assert.Equal(t, sum.Comments, count(t, db, &models.Comment{}))
	assert.Equal(t, sum.Reports, count(t, db, &models.Report{}))
	assert.Equal(t, sum.Reports, sum.PendingReports+sum.ResolvedReports)

	var admins int64
	require.NoError(t, db.Model(&models.User{}).Where("is_admin = ?", true).Count(&admins).Error)
	assert.EqualValues(t, 1, admins)
}

func TestRun_ReportsNeverTargetOwnPost(t *testing.T) {
	db := setupTestDB(t)
	p := &Preset{Name: "own", Seed: 7, Users: 5, Admins: 1, PostsPerUser: 2, ReportedRatio: 1, ReportsPerPost: 10}

	sum, err := newTestSeeder(db).Run(context.Background(), p)
	require.NoError(t, err)
	// Every post is reported by each of the other four users.
	assert.Equal(t, 10*4, sum.Reports)

	var self int64
	require.NoError(t, db.Model(&models.Report{}).
		Joins("JOIN posts ON posts.id = reports.post_id").
		Where("posts.user_id = reports.reporter_id").
		Count(&self).Error)
	assert.Zero(t, self)
}

func TestRun_SameSeedSameData(t *testing.T) {
	db := setupTestDB(t)
	s := newTestSeeder(db)
	p := &Preset{Name: "det", Seed: 99, Users: 4, PostsPerUser: 2}

	contents := func() []string {
		_, err := s.Run(context.Background(), p)
		require.NoError(t, err)
		var out []string
		require.NoError(t, db.Model(&models.Post{}).Order("id").Pluck("content", &out).Error)
		return out
	}

	first := contents()
	require.NoError(t, s.ClearAll(context.Background()))
	second := contents()
	assert.Len(t, first, 8)
	assert.Equal(t, first, second)
}

func TestClearAll(t *testing.T) {
	db := setupTestDB(t)
	s := newTestSeeder(db)
	_, err := s.Run(context.Background(), &Preset{Seed: 1, Users: 3, PostsPerUser: 1, LikesPerPost: 1, ReportedRatio: 1, ReportsPerPost: 1})
	require.NoError(t, err)

	require.NoError(t, s.ClearAll(context.Background()))
	for _, m := range []any{&models.User{}, &models.Post{}, &models.Like{}, &models.Report{}} {
		assert.Zero(t, count(t, db, m))
	}
}

func TestParsePreset(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{"valid", "name: x\nusers: 2\nadmins: 1\n", ""},
		{"unknown key", "users: 2\nbogus: 1\n", "field bogus not found"},
		{"no users", "users: 0\n", "users must be at least 1"},
		{"too many admins", "users: 1\nadmins: 2\n", "admins must be between"},
		{"bad ratio", "users: 1\nreported_ratio: 1.5\n", "reported_ratio"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := ParsePreset([]byte(tt.yaml))
			if tt.wantErr == "" {
				require.NoError(t, err)
				assert.Equal(t, DefaultPassword, p.Password)
				assert.Equal(t, 30, p.MaxDays)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestPresetNames(t *testing.T) {
	assert.Equal(t, []string{"moderation", "populated", "small"}, PresetNames())

	for _, name := range PresetNames() {
		_, err := LoadPreset(name)
		assert.NoError(t, err, name)
	}

	_, err := LoadPreset("does-not-exist")
	assert.Error(t, err)
}
