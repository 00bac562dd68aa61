package repositories

import (
	"context"

	"github.com/anonto42/social-api/backend/internal/models"
	"gorm.io/gorm"
)

// CommentRepository stores append-only comments.
type CommentRepository interface {
	CreateComment(ctx context.Context, comment *models.Comment) error
	GetCommentsByPostID(ctx context.Context, postID uint) ([]models.CommentView, error)
	GetCommentsCountByPostID(ctx context.Context, postID uint) (int64, error)
}

// PostgresCommentRepository implements CommentRepository with GORM
type PostgresCommentRepository struct {
	db *gorm.DB
}

// NewPostgresCommentRepository creates a new PostgresCommentRepository
func NewPostgresCommentRepository(db *gorm.DB) *PostgresCommentRepository {
	return &PostgresCommentRepository{db: db}
}

var _ CommentRepository = (*PostgresCommentRepository)(nil)

func (r *PostgresCommentRepository) CreateComment(ctx context.Context, comment *models.Comment) error {
	return r.db.WithContext(ctx).Create(comment).Error
}

// GetCommentsByPostID lists a post's comments newest first, each with its author's username.
func (r *PostgresCommentRepository) GetCommentsByPostID(ctx context.Context, postID uint) ([]models.CommentView, error) {
	comments := []models.CommentView{}
	err := r.db.WithContext(ctx).Table("comments AS c").
		Select("c.id, c.post_id, c.user_id, c.content, c.created_at, u.username").
		Joins("JOIN users u ON u.id = c.user_id").
		Where("c.post_id = ?", postID).
		Order("c.created_at DESC, c.id DESC").
		Scan(&comments).Error
	return comments, err
}

func (r *PostgresCommentRepository) GetCommentsCountByPostID(ctx context.Context, postID uint) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Comment{}).Where("post_id = ?", postID).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
