package repository

import (
	"context"
	"testing"
	"time"

	"agora/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatsRepository_Counts(t *testing.T) {
	db := setupTestDB(t)
	repo := NewStatsRepository(db)
	ctx := context.Background()
	now := time.Now().UTC()

	u := seedUser(t, db, "u")
	old := seedPost(t, db, u, "old", now.Add(-72*time.Hour))
	seedPost(t, db, u, "new", now)
	withImage := &models.Post{UserID: u.ID, Content: "pic", ImageURL: "https://img/x.png", Type: models.PostTypeProfessional}
	require.NoError(t, db.Create(withImage).Error)
	require.NoError(t, db.Create(&models.Like{UserID: u.ID, PostID: old.ID}).Error)
	require.NoError(t, db.Create(&models.Comment{UserID: u.ID, PostID: old.ID, Content: "c"}).Error)

	posts, err := repo.CountPosts(ctx, time.Time{})
	require.NoError(t, err)
	assert.EqualValues(t, 3, posts)

	recent, err := repo.CountPosts(ctx, now.Add(-time.Hour))
	require.NoError(t, err)
	assert.EqualValues(t, 2, recent)

	images, err := repo.CountPostsWithImage(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, images)

	likes, err := repo.CountLikes(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, likes)

	byType, err := repo.CountPostsByType(ctx)
	require.NoError(t, err)
	counts := map[models.PostType]int64{}
	for _, tc := range byType {
		counts[tc.Type] = tc.Count
	}
	assert.EqualValues(t, 2, counts[models.PostTypeSocial])
	assert.EqualValues(t, 1, counts[models.PostTypeProfessional])

	stamps, err := repo.CreatedSince(ctx, &models.Post{}, now.Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Len(t, stamps, 2)
}
