package repositories

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/anonto42/social-api/backend/internal/models"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	return openTestDB(t, "", 1)
}

// newPooledTestDB lets goroutines hold separate connections, so concurrent
// inserts reach the unique index instead of queueing on one connection.
func newPooledTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	return openTestDB(t, "&_pragma=journal_mode(WAL)", 8)
}

func openTestDB(t *testing.T, pragmas string, maxConns int) *gorm.DB {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "test.db") + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)" + pragmas
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(maxConns)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, AutoMigrate(db))
	return db
}

func createTestUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	user := &models.User{Username: username, Email: username + "@example.com", Password: "x"}
	require.NoError(t, NewPostgresUserRepository(db).CreateUser(context.Background(), user))
	return user
}

func createTestPost(t *testing.T, db *gorm.DB, author *models.User, content string, at time.Time) *models.Post {
	t.Helper()
	post := &models.Post{AuthorID: author.ID, Content: content, CreatedAt: at, UpdatedAt: at}
	require.NoError(t, NewPostgresPostRepository(db).CreatePost(context.Background(), post))
	return post
}

func baseTime() time.Time {
	return time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
}

func usernames(t *testing.T, summaries []models.UserSummary) []string {
	t.Helper()
	out := make([]string, len(summaries))
	for i, s := range summaries {
		out[i] = s.Username
	}
	return out
}

func contents(posts []models.PostView) []string {
	out := make([]string, len(posts))
	for i, p := range posts {
		out[i] = fmt.Sprintf("%s:%s", p.AuthorUsername, p.Content)
	}
	return out
}
