package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"testing"

	"agora/internal/config"
	"agora/internal/database"
	"agora/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testPassword = "correct horse"

type testEnv struct {
	s   *Server
	app *fiber.App
	db  *gorm.DB
	mr  *miniredis.Miniredis
}

func openTestDB(t *testing.T) *gorm.DB {
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

// newTestEnv builds the full app over SQLite. withRedis adds a miniredis
// instance for the features that need one (logout, WebSocket tickets).
func newTestEnv(t *testing.T, withRedis bool) *testEnv {
	t.Helper()
	env := &testEnv{db: openTestDB(t)}

	var rdb *redis.Client
	if withRedis {
		env.mr = miniredis.RunT(t)
		rdb = redis.NewClient(&redis.Options{Addr: env.mr.Addr()})
		t.Cleanup(func() { _ = rdb.Close() })
	}

	cfg := &config.Config{JWTSecret: "test-secret", Env: "test", Port: "0"}
	s, err := NewServerWithDeps(cfg, env.db, rdb)
	require.NoError(t, err)
	env.s = s
	env.app = s.NewApp()
	return env
}

func (e *testEnv) user(t *testing.T, name string, admin bool) (*models.User, string) {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	require.NoError(t, err)
	u := &models.User{Name: name, Email: name + "@example.com", Password: string(hashed), IsAdmin: admin}
	require.NoError(t, e.db.Create(u).Error)
	token, err := e.s.generateToken(u.ID)
	require.NoError(t, err)
	return u, token
}

func (e *testEnv) post(t *testing.T, author *models.User, title string) *models.Post {
	t.Helper()
	p := &models.Post{UserID: author.ID, Title: title, Content: title + " body", Type: models.PostTypeSocial}
	require.NoError(t, e.db.Create(p).Error)
	return p
}

func (e *testEnv) report(t *testing.T, post *models.Post, reporter *models.User, reason string) *models.Report {
	t.Helper()
	r := &models.Report{PostID: post.ID, ReporterID: reporter.ID, Reason: reason, Status: models.ReportStatusPending}
	require.NoError(t, e.db.Create(r).Error)
	return r
}

// do sends a request with an optional bearer token and JSON body. A string
// body is sent verbatim.
func (e *testEnv) do(t *testing.T, method, path, token string, body any) (int, []byte) {
	t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, raw
}

func decode[T any](t *testing.T, raw []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v), string(raw))
	return v
}

