package server

import (
	"fmt"
	"net/http"
	"testing"

	"agora/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostLifecycle(t *testing.T) {
	env := newTestEnv(t, false)
	_, authorToken := env.user(t, "author", false)
	_, otherToken := env.user(t, "other", false)

	status, raw := env.do(t, http.MethodPost, "/api/posts", authorToken,
		map[string]string{"title": "Hello", "content": "First post", "type": "professional"})
	require.Equal(t, http.StatusCreated, status, string(raw))
	post := decode[models.Post](t, raw)
	assert.Equal(t, models.PostTypeProfessional, post.Type)

	status, raw = env.do(t, http.MethodGet, "/api/posts", "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, decode[[]models.Post](t, raw), 1)

	postPath := fmt.Sprintf("/api/posts/%d", post.ID)

	status, raw = env.do(t, http.MethodPost, postPath+"/like", otherToken, nil)
	require.Equal(t, http.StatusOK, status, string(raw))
	assert.JSONEq(t, `{"liked":true}`, string(raw))

	status, raw = env.do(t, http.MethodGet, postPath, otherToken, nil)
	require.Equal(t, http.StatusOK, status)
	got := decode[models.Post](t, raw)
	assert.Equal(t, 1, got.LikesCount)
	assert.True(t, got.Liked)

	status, raw = env.do(t, http.MethodPost, postPath+"/comments", otherToken, map[string]string{"content": "nice"})
	require.Equal(t, http.StatusCreated, status, string(raw))
	comment := decode[models.Comment](t, raw)

	status, _ = env.do(t, http.MethodDelete, fmt.Sprintf("%s/comments/%d", postPath, comment.ID), authorToken, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = env.do(t, http.MethodDelete, postPath, otherToken, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = env.do(t, http.MethodDelete, postPath, authorToken, nil)
	require.Equal(t, http.StatusNoContent, status)

	status, _ = env.do(t, http.MethodGet, postPath, "", nil)
	assert.Equal(t, http.StatusNotFound, status)

	var n int64
	require.NoError(t, env.db.Model(&models.Comment{}).Where("post_id = ?", post.ID).Count(&n).Error)
	assert.Zero(t, n)
}

func TestCreatePost_Validation(t *testing.T) {
	env := newTestEnv(t, false)
	_, token := env.user(t, "author", false)

	status, _ := env.do(t, http.MethodPost, "/api/posts", token, map[string]string{"title": "no content"})
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = env.do(t, http.MethodPost, "/api/posts", token, map[string]string{"content": "x", "type": "memes"})
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = env.do(t, http.MethodPost, "/api/posts", "", map[string]string{"content": "x"})
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestReportPost(t *testing.T) {
	env := newTestEnv(t, false)
	author, authorToken := env.user(t, "author", false)
	_, reporterToken := env.user(t, "reporter", false)
	_, adminToken := env.user(t, "admin", true)
	post := env.post(t, author, "Spammy")
	path := fmt.Sprintf("/api/posts/%d/report", post.ID)

	status, raw := env.do(t, http.MethodPost, path, reporterToken, map[string]string{"reason": "  spam  "})
	require.Equal(t, http.StatusCreated, status, string(raw))
	report := decode[models.Report](t, raw)
	assert.Equal(t, "spam", report.Reason)
	assert.Equal(t, models.ReportStatusPending, report.Status)

	status, _ = env.do(t, http.MethodPost, path, reporterToken, map[string]string{"reason": "again"})
	assert.Equal(t, http.StatusConflict, status)

	status, _ = env.do(t, http.MethodPost, path, authorToken, map[string]string{"reason": "mine"})
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = env.do(t, http.MethodPost, path, adminToken, map[string]string{"reason": ""})
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = env.do(t, http.MethodPost, "/api/posts/9999/report", adminToken, map[string]string{"reason": "gone"})
	assert.Equal(t, http.StatusNotFound, status)

	status, raw = env.do(t, http.MethodGet, "/api/admin/reported-content", adminToken, nil)
	require.Equal(t, http.StatusOK, status)
	queue := decode[[]models.ReportQueueEntry](t, raw)
	require.Len(t, queue, 1)
	assert.Equal(t, "Spammy", queue[0].Title)
	assert.Equal(t, 1, queue[0].ReportCount)
}

func TestDeleteReportedPost_LeavesQueueClean(t *testing.T) {
	env := newTestEnv(t, false)
	author, authorToken := env.user(t, "author", false)
	reporter, _ := env.user(t, "reporter", false)
	_, adminToken := env.user(t, "admin", true)
	post := env.post(t, author, "Regret")
	env.report(t, post, reporter, "spam")

	status, _ := env.do(t, http.MethodDelete, fmt.Sprintf("/api/posts/%d", post.ID), authorToken, nil)
	require.Equal(t, http.StatusNoContent, status)

	status, raw := env.do(t, http.MethodGet, "/api/admin/reported-content", adminToken, nil)
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `[]`, string(raw))
}

func TestFollowAndFeed(t *testing.T) {
	env := newTestEnv(t, false)
	alice, aliceToken := env.user(t, "alice", false)
	bob, _ := env.user(t, "bob", false)
	env.post(t, bob, "from bob")

	status, raw := env.do(t, http.MethodGet, "/api/feed", aliceToken, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, decode[[]models.Post](t, raw))

	followPath := fmt.Sprintf("/api/users/%d/follow", bob.ID)
	status, _ = env.do(t, http.MethodPost, followPath, aliceToken, nil)
	require.Equal(t, http.StatusOK, status)
	status, _ = env.do(t, http.MethodPost, followPath, aliceToken, nil)
	assert.Equal(t, http.StatusConflict, status)
	status, _ = env.do(t, http.MethodPost, fmt.Sprintf("/api/users/%d/follow", alice.ID), aliceToken, nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status, raw = env.do(t, http.MethodGet, "/api/feed", aliceToken, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, decode[[]models.Post](t, raw), 1)

	status, raw = env.do(t, http.MethodGet, fmt.Sprintf("/api/users/%d/followers", bob.ID), aliceToken, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, decode[[]models.User](t, raw), 1)

	status, raw = env.do(t, http.MethodDelete, followPath, aliceToken, nil)
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"following":false}`, string(raw))
}

func TestUpdateMyProfile(t *testing.T) {
	env := newTestEnv(t, false)
	_, token := env.user(t, "carol", false)

	status, raw := env.do(t, http.MethodPut, "/api/users/me", token, map[string]string{"bio": "hello"})
	require.Equal(t, http.StatusOK, status, string(raw))
	u := decode[models.User](t, raw)
	assert.Equal(t, "hello", u.Bio)
	assert.Equal(t, "carol", u.Name)

	status, _ = env.do(t, http.MethodPut, "/api/users/me", token, map[string]string{"name": "   "})
	assert.Equal(t, http.StatusBadRequest, status)
}
