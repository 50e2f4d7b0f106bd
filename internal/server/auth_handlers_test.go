package server

import (
	"net/http"
	"strconv"
	"testing"
	"time"

	"agora/internal/config"
	"agora/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignup(t *testing.T) {
	env := newTestEnv(t, false)

	tests := []struct {
		name   string
		body   map[string]string
		status int
	}{
		{"valid", map[string]string{"name": "Ada", "email": "ada@example.com", "password": "longenough"}, http.StatusCreated},
		{"duplicate email", map[string]string{"name": "Ada2", "email": "ada@example.com", "password": "longenough"}, http.StatusConflict},
		{"missing name", map[string]string{"email": "x@example.com", "password": "longenough"}, http.StatusBadRequest},
		{"bad email", map[string]string{"name": "X", "email": "not-an-email", "password": "longenough"}, http.StatusBadRequest},
		{"short password", map[string]string{"name": "X", "email": "x@example.com", "password": "short"}, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, raw := env.do(t, http.MethodPost, "/api/auth/signup", "", tt.body)
			require.Equal(t, tt.status, status, string(raw))
			if status == http.StatusCreated {
				resp := decode[authResponse](t, raw)
				assert.NotEmpty(t, resp.Token)
				assert.Equal(t, "Ada", resp.User.Name)
				assert.NotContains(t, string(raw), "password")
			}
		})
	}
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t, false)
	u, _ := env.user(t, "grace", false)
	banned, _ := env.user(t, "banned", false)
	require.NoError(t, env.db.Model(banned).Update("is_banned", true).Error)

	status, raw := env.do(t, http.MethodPost, "/api/auth/login", "",
		map[string]string{"email": u.Email, "password": testPassword})
	require.Equal(t, http.StatusOK, status, string(raw))
	token := decode[authResponse](t, raw).Token

	status, raw = env.do(t, http.MethodGet, "/api/users/me", token, nil)
	require.Equal(t, http.StatusOK, status, string(raw))
	assert.Equal(t, "grace", decode[models.User](t, raw).Name)

	status, _ = env.do(t, http.MethodPost, "/api/auth/login", "",
		map[string]string{"email": u.Email, "password": "wrong password"})
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = env.do(t, http.MethodPost, "/api/auth/login", "",
		map[string]string{"email": "nobody@example.com", "password": testPassword})
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = env.do(t, http.MethodPost, "/api/auth/login", "",
		map[string]string{"email": banned.Email, "password": testPassword})
	assert.Equal(t, http.StatusForbidden, status)
}

func TestAuthRequired_RejectsBadTokens(t *testing.T) {
	env := newTestEnv(t, false)
	u, _ := env.user(t, "eve", false)

	sign := func(claims jwt.RegisteredClaims, secret string) string {
		tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
		require.NoError(t, err)
		return tok
	}
	valid := jwt.RegisteredClaims{
		Subject:   jwtSubject(u.ID),
		Issuer:    tokenIssuer,
		Audience:  jwt.ClaimStrings{tokenAudience},
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}

	expired := valid
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Hour))
	wrongAudience := valid
	wrongAudience.Audience = jwt.ClaimStrings{"someone-else"}
	noExpiry := valid
	noExpiry.ExpiresAt = nil

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not-a-jwt"},
		{"wrong secret", sign(valid, "other-secret")},
		{"expired", sign(expired, "test-secret")},
		{"wrong audience", sign(wrongAudience, "test-secret")},
		{"no expiry", sign(noExpiry, "test-secret")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, _ := env.do(t, http.MethodGet, "/api/users/me", tt.token, nil)
			assert.Equal(t, http.StatusUnauthorized, status)
		})
	}

	status, _ := env.do(t, http.MethodGet, "/api/users/me", sign(valid, "test-secret"), nil)
	assert.Equal(t, http.StatusOK, status)
}

func TestLogout_RevokesToken(t *testing.T) {
	env := newTestEnv(t, true)
	_, token := env.user(t, "mallory", false)

	status, _ := env.do(t, http.MethodGet, "/api/users/me", token, nil)
	require.Equal(t, http.StatusOK, status)

	status, _ = env.do(t, http.MethodPost, "/api/auth/logout", token, nil)
	require.Equal(t, http.StatusOK, status)

	status, raw := env.do(t, http.MethodGet, "/api/users/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "Token has been revoked", decode[models.ErrorResponse](t, raw).Error)
}

func TestGenerateToken_RequiresSecret(t *testing.T) {
	s := &Server{config: &config.Config{}}
	_, err := s.generateToken(1)
	assert.Error(t, err)
}

func jwtSubject(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
