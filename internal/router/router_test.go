package router

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	firebaseauth "firebase.google.com/go/v4/auth"
	"github.com/anonto42/social-api/backend/internal/apperror"
	"github.com/anonto42/social-api/backend/internal/auth"
	"github.com/anonto42/social-api/backend/internal/repositories"
	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Message string          `json:"message"`
}

type testServer struct {
	t *testing.T
	e *echo.Echo
}

func newTestServer(t *testing.T, opts ...func(*Dependencies)) *testServer {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "api.db") + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, repositories.AutoMigrate(db))

	tokens, err := auth.NewJWTProvider("router-test-secret-123", time.Hour)
	require.NoError(t, err)
	log := logrus.New()
	log.SetOutput(io.Discard)

	deps := Dependencies{DB: db, Tokens: tokens, Log: log, RequestTimeout: 5 * time.Second}
	for _, opt := range opts {
		opt(&deps)
	}
	e := echo.New()
	SetupMiddleware(e, deps)
	SetupRoutes(e, deps)
	return &testServer{t: t, e: e}
}

func (s *testServer) do(method, path, token string, body any) (int, envelope) {
	s.t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 {
		require.NoError(s.t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	}
	return rec.Code, env
}

type registered struct {
	id    uint
	token string
}

func (s *testServer) register(username string) registered {
	s.t.Helper()
	code, env := s.do(http.MethodPost, "/api/v1/users/register", "", map[string]string{
		"username":  username,
		"email":     username + "@example.com",
		"password":  "s3cret-pass",
		"password2": "s3cret-pass",
	})
	require.Equal(s.t, http.StatusCreated, code, env.Message)

	var session struct {
		User struct {
			ID uint `json:"id"`
		} `json:"user"`
		Access string `json:"access"`
	}
	require.NoError(s.t, json.Unmarshal(env.Data, &session))
	return registered{id: session.User.ID, token: session.Access}
}

func decode[T any](t *testing.T, env envelope) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(env.Data, &v))
	return v
}

type feedItem struct {
	ID             uint   `json:"id"`
	Content        string `json:"content"`
	AuthorUsername string `json:"author_username"`
	LikesCount     int64  `json:"likes_count"`
	CommentsCount  int64  `json:"comments_count"`
	LikedByViewer  bool   `json:"liked_by_viewer"`
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(echo.HeaderXRequestID))
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	s := newTestServer(t)

	code, env := s.do(http.MethodGet, "/api/v1/posts", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "unauthorized", env.Error)

	code, _ = s.do(http.MethodGet, "/api/v1/users/me", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestRegisterAndLogin(t *testing.T) {
	s := newTestServer(t)
	alice := s.register("alice")

	code, env := s.do(http.MethodPost, "/api/v1/users/register", "", map[string]string{
		"username": "alice", "email": "other@example.com", "password": "s3cret-pass", "password2": "s3cret-pass",
	})
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "conflict", env.Error)

	code, env = s.do(http.MethodPost, "/api/v1/users/register", "", map[string]string{
		"username": "bob", "email": "bob@example.com", "password": "s3cret-pass", "password2": "mismatch",
	})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "validation_error", env.Error)

	code, _ = s.do(http.MethodPost, "/api/v1/users/login", "", map[string]string{"username": "alice", "password": "s3cret-pass"})
	assert.Equal(t, http.StatusOK, code)
	code, _ = s.do(http.MethodPost, "/api/v1/users/login", "", map[string]string{"username": "alice", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, code)

	code, env = s.do(http.MethodGet, "/api/v1/users/me", alice.token, nil)
	require.Equal(t, http.StatusOK, code)
	me := decode[struct {
		Username string `json:"username"`
	}](t, env)
	assert.Equal(t, "alice", me.Username)
}

func TestFollowEndpoints(t *testing.T) {
	s := newTestServer(t)
	a := s.register("alice")
	b := s.register("bob")
	followPath := fmt.Sprintf("/api/v1/follows/users/%d/follow", b.id)

	code, env := s.do(http.MethodPost, followPath, a.token, nil)
	assert.Equal(t, http.StatusCreated, code)
	assert.True(t, decode[struct{ Created bool }](t, env).Created)

	code, env = s.do(http.MethodPost, followPath, a.token, nil)
	assert.Equal(t, http.StatusOK, code)
	assert.False(t, decode[struct{ Created bool }](t, env).Created)

	code, env = s.do(http.MethodPost, fmt.Sprintf("/api/v1/follows/users/%d/follow", a.id), a.token, nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "self_reference", env.Error)

	code, _ = s.do(http.MethodPost, "/api/v1/follows/users/999/follow", a.token, nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, env = s.do(http.MethodGet, "/api/v1/follows/following", a.token, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, decode[[]json.RawMessage](t, env), 1)

	code, env = s.do(http.MethodGet, fmt.Sprintf("/api/v1/users/%d", b.id), a.token, nil)
	require.Equal(t, http.StatusOK, code)
	assert.True(t, decode[struct {
		IsFollowing bool `json:"is_following"`
	}](t, env).IsFollowing)

	unfollowPath := fmt.Sprintf("/api/v1/follows/users/%d/unfollow", b.id)
	code, env = s.do(http.MethodDelete, unfollowPath, a.token, nil)
	assert.Equal(t, http.StatusOK, code)
	assert.True(t, decode[struct{ Removed bool }](t, env).Removed)

	code, env = s.do(http.MethodDelete, unfollowPath, a.token, nil)
	assert.Equal(t, http.StatusOK, code)
	assert.False(t, decode[struct{ Removed bool }](t, env).Removed)
}

func TestFeedAndEngagementEndpoints(t *testing.T) {
	s := newTestServer(t)
	a := s.register("alice")
	b := s.register("bob")

	code, _ := s.do(http.MethodPost, fmt.Sprintf("/api/v1/follows/users/%d/follow", b.id), a.token, nil)
	require.Equal(t, http.StatusCreated, code)

	code, env := s.do(http.MethodPost, "/api/v1/posts", b.token, map[string]string{"content": "hello"})
	require.Equal(t, http.StatusCreated, code)
	post := decode[feedItem](t, env)

	code, env = s.do(http.MethodPost, "/api/v1/posts", b.token, map[string]string{"content": "   "})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "validation_error", env.Error)

	likePath := fmt.Sprintf("/api/v1/posts/%d/like", post.ID)
	code, _ = s.do(http.MethodPost, likePath, a.token, nil)
	assert.Equal(t, http.StatusCreated, code)
	code, env = s.do(http.MethodPost, likePath, a.token, nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, int64(1), decode[struct {
		LikesCount int64 `json:"likes_count"`
	}](t, env).LikesCount)

	code, _ = s.do(http.MethodPost, fmt.Sprintf("/api/v1/posts/%d/comment", post.ID), a.token, map[string]string{"content": "nice"})
	assert.Equal(t, http.StatusCreated, code)

	code, env = s.do(http.MethodGet, "/api/v1/posts", a.token, nil)
	require.Equal(t, http.StatusOK, code)
	feed := decode[[]feedItem](t, env)
	require.Len(t, feed, 1)
	assert.Equal(t, "bob", feed[0].AuthorUsername)
	assert.Equal(t, int64(1), feed[0].LikesCount)
	assert.Equal(t, int64(1), feed[0].CommentsCount)
	assert.True(t, feed[0].LikedByViewer)

	code, env = s.do(http.MethodGet, "/api/v1/posts?limit=abc", a.token, nil)
	assert.Equal(t, http.StatusBadRequest, code)

	code, env = s.do(http.MethodGet, fmt.Sprintf("/api/v1/posts/%d/comments", post.ID), a.token, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, decode[[]json.RawMessage](t, env), 1)

	code, env = s.do(http.MethodDelete, fmt.Sprintf("/api/v1/posts/%d/unlike", post.ID), a.token, nil)
	assert.Equal(t, http.StatusOK, code)
	assert.True(t, decode[struct{ Removed bool }](t, env).Removed)
}

func TestDeletePostEndpoint(t *testing.T) {
	s := newTestServer(t)
	a := s.register("alice")
	b := s.register("bob")

	code, env := s.do(http.MethodPost, "/api/v1/posts", a.token, map[string]string{"content": "mine"})
	require.Equal(t, http.StatusCreated, code)
	post := decode[feedItem](t, env)
	path := fmt.Sprintf("/api/v1/posts/%d", post.ID)

	code, _ = s.do(http.MethodPut, path, b.token, map[string]string{"content": "hijack"})
	assert.Equal(t, http.StatusForbidden, code)

	code, env = s.do(http.MethodDelete, path, b.token, nil)
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "forbidden", env.Error)

	code, _ = s.do(http.MethodDelete, path, a.token, nil)
	assert.Equal(t, http.StatusNoContent, code)

	code, _ = s.do(http.MethodDelete, path, a.token, nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = s.do(http.MethodGet, path, a.token, nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestFeedRSS(t *testing.T) {
	s := newTestServer(t)
	a := s.register("alice")
	code, _ := s.do(http.MethodPost, "/api/v1/posts", a.token, map[string]string{"content": "syndicated"})
	require.Equal(t, http.StatusCreated, code)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/posts/feed.rss", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+a.token)
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get(echo.HeaderContentType), "application/rss+xml")
	assert.Contains(t, rec.Body.String(), "syndicated")
}

func TestCommentEndpoint_MultiByteText(t *testing.T) {
	s := newTestServer(t)
	a := s.register("alice")
	code, env := s.do(http.MethodPost, "/api/v1/posts", a.token, map[string]string{"content": "hello"})
	require.Equal(t, http.StatusCreated, code)
	post := decode[feedItem](t, env)
	path := fmt.Sprintf("/api/v1/posts/%d/comment", post.ID)

	// 600 characters, 1200 bytes
	code, env = s.do(http.MethodPost, path, a.token, map[string]string{"content": strings.Repeat("é", 600)})
	assert.Equal(t, http.StatusCreated, code, env.Message)

	code, env = s.do(http.MethodPost, path, a.token, map[string]string{"content": strings.Repeat("é", 1001)})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "validation_error", env.Error)
}

// firebaseTokens maps an ID token to the Firebase user it was minted for.
type firebaseTokens map[string]*firebaseauth.Token

func (m firebaseTokens) VerifyIDToken(_ context.Context, idToken string) (*firebaseauth.Token, error) {
	if tok, ok := m[idToken]; ok {
		return tok, nil
	}
	return nil, apperror.Unauthorized("unknown token")
}

func withFirebase(tokens firebaseTokens) func(*Dependencies) {
	return func(d *Dependencies) {
		p := auth.NewFirebaseProvider(tokens, repositories.NewPostgresUserRepository(d.DB))
		d.Tokens = p
		d.Identities = p
	}
}

func TestFirebaseLoginEndpoint(t *testing.T) {
	s := newTestServer(t, withFirebase(firebaseTokens{
		"id-token-1": {UID: "fb-carol", Claims: map[string]interface{}{
			"email":          "carol@example.com",
			"email_verified": true,
			"name":           "Carol Danvers",
		}},
	}))

	code, _ := s.do(http.MethodGet, "/api/v1/users/me", "id-token-1", nil)
	assert.Equal(t, http.StatusUnauthorized, code, "no local account before the first login")

	code, env := s.do(http.MethodPost, "/api/v1/users/firebase-login", "", map[string]string{"id_token": "id-token-1"})
	require.Equal(t, http.StatusOK, code, env.Message)
	session := decode[struct {
		User struct {
			ID       uint   `json:"id"`
			Username string `json:"username"`
		} `json:"user"`
		Access string `json:"access"`
	}](t, env)
	assert.Equal(t, "carol", session.User.Username)
	assert.Empty(t, session.Access)

	code, env = s.do(http.MethodGet, "/api/v1/users/me", "id-token-1", nil)
	require.Equal(t, http.StatusOK, code, env.Message)
	assert.Equal(t, session.User.ID, decode[struct{ ID uint }](t, env).ID)

	code, _ = s.do(http.MethodPost, "/api/v1/users/firebase-login", "", map[string]string{"id_token": "forged"})
	assert.Equal(t, http.StatusUnauthorized, code)

	code, env = s.do(http.MethodPost, "/api/v1/users/firebase-login", "", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "validation_error", env.Error)
}

func TestFirebaseLoginDisabledWithJWT(t *testing.T) {
	s := newTestServer(t)
	code, _ := s.do(http.MethodPost, "/api/v1/users/firebase-login", "", map[string]string{"id_token": "x"})
	assert.Equal(t, http.StatusForbidden, code)
}
