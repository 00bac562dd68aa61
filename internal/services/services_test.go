package services

import (
	"context"
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/anonto42/social-api/backend/internal/auth"
	"github.com/anonto42/social-api/backend/internal/models"
	"github.com/anonto42/social-api/backend/internal/repositories"
	"github.com/glebarez/sqlite"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type testEnv struct {
	db           *gorm.DB
	users        *repositories.PostgresUserRepository
	posts        *repositories.PostgresPostRepository
	follows      *repositories.PostgresFollowRepository
	likes        *repositories.PostgresLikeRepository
	comments     *repositories.PostgresCommentRepository
	interactions *InteractionService
	feed         *FeedService
	postSvc      *PostService
	userSvc      *UserService
	clock        time.Time
}

func quietLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "svc.db") + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
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

	tokens, err := auth.NewJWTProvider("test-secret-0123456789", time.Hour)
	require.NoError(t, err)

	env := &testEnv{
		db:       db,
		users:    repositories.NewPostgresUserRepository(db),
		posts:    repositories.NewPostgresPostRepository(db),
		follows:  repositories.NewPostgresFollowRepository(db),
		likes:    repositories.NewPostgresLikeRepository(db),
		comments: repositories.NewPostgresCommentRepository(db),
		clock:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	log := quietLogger()
	env.interactions = NewInteractionService(env.users, env.posts, env.follows, env.likes, env.comments, log)
	env.feed = NewFeedService(env.posts, log)
	env.postSvc = NewPostService(env.posts, log)
	// every post is one second newer than the previous one
	env.postSvc.now = func() time.Time {
		env.clock = env.clock.Add(time.Second)
		return env.clock
	}
	env.userSvc = NewUserService(env.users, env.follows, tokens, log)
	return env
}

func (e *testEnv) user(t *testing.T, name string) *models.User {
	t.Helper()
	u := &models.User{Username: name, Email: name + "@example.com"}
	require.NoError(t, e.users.CreateUser(context.Background(), u))
	return u
}

func (e *testEnv) post(t *testing.T, author *models.User, content string) *models.Post {
	t.Helper()
	p, err := e.postSvc.CreatePost(context.Background(), author.ID, content, "")
	require.NoError(t, err)
	return p
}
