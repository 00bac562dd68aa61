package repositories

import (
	"context"
	"errors"

	"github.com/anonto42/social-api/backend/internal/apperror"
	"github.com/anonto42/social-api/backend/internal/models"
	"gorm.io/gorm"
)

// PostRepository defines the interface for post data operations
type PostRepository interface {
	CreatePost(ctx context.Context, post *models.Post) error
	GetPostByID(ctx context.Context, id uint) (*models.Post, error)
	GetPostView(ctx context.Context, id, viewerID uint) (*models.PostView, error)
	GetFeed(ctx context.Context, viewerID uint, opts models.FeedOptions) ([]models.PostView, error)
	UpdatePost(ctx context.Context, post *models.Post) error
	DeletePostCascade(ctx context.Context, id uint) (bool, error)
	PostExists(ctx context.Context, id uint) (bool, error)
}

// PostgresPostRepository implements PostRepository with GORM
type PostgresPostRepository struct {
	db *gorm.DB
}

// NewPostgresPostRepository creates a new PostgresPostRepository
func NewPostgresPostRepository(db *gorm.DB) *PostgresPostRepository {
	return &PostgresPostRepository{db: db}
}

var _ PostRepository = (*PostgresPostRepository)(nil)

// CreatePost inserts post. CreatedAt is kept when already set.
func (r *PostgresPostRepository) CreatePost(ctx context.Context, post *models.Post) error {
	return r.db.WithContext(ctx).Create(post).Error
}

func (r *PostgresPostRepository) GetPostByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).First(&post, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("post", id)
		}
		return nil, err
	}
	return &post, nil
}

func (r *PostgresPostRepository) PostExists(ctx context.Context, id uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Post{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// GetPostView returns one post as viewerID sees it.
func (r *PostgresPostRepository) GetPostView(ctx context.Context, id, viewerID uint) (*models.PostView, error) {
	var views []models.PostView
	if err := postViewQuery(r.db.WithContext(ctx), viewerID).Where("p.id = ?", id).Scan(&views).Error; err != nil {
		return nil, err
	}
	if len(views) == 0 {
		return nil, apperror.NotFound("post", id)
	}
	return &views[0], nil
}

// GetFeed returns the posts authored by viewerID or by anyone viewerID follows,
// newest first with ties broken by id. Counts are aggregated in the same statement.
func (r *PostgresPostRepository) GetFeed(ctx context.Context, viewerID uint, opts models.FeedOptions) ([]models.PostView, error) {
	db := r.db.WithContext(ctx)
	q := postViewQuery(db, viewerID).
		Where("p.author_id = ? OR p.author_id IN (?)",
			viewerID,
			db.Table("follows").Select("followed_id").Where("follower_id = ?", viewerID),
		).
		Order("p.created_at DESC").
		Order("p.id DESC")
	if opts.Limit > 0 {
		q = q.Limit(opts.Limit)
		if opts.Offset > 0 {
			q = q.Offset(opts.Offset)
		}
	}

	posts := []models.PostView{}
	if err := q.Scan(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

// UpdatePost saves content and media of an existing post.
func (r *PostgresPostRepository) UpdatePost(ctx context.Context, post *models.Post) error {
	res := r.db.WithContext(ctx).Model(post).Select("content", "media_url", "updated_at").Updates(post)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperror.NotFound("post", post.ID)
	}
	return nil
}

// DeletePostCascade removes the post with its likes and comments in one transaction.
// It reports false when the post did not exist.
func (r *PostgresPostRepository) DeletePostCascade(ctx context.Context, id uint) (bool, error) {
	deleted := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", id).Delete(&models.Like{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Post{}, id)
		if res.Error != nil {
			return res.Error
		}
		deleted = res.RowsAffected > 0
		return nil
	})
	if err != nil {
		return false, err
	}
	return deleted, nil
}

// postViewQuery selects PostView rows: the post, its author's username, like and
// comment counts from grouped subqueries, and whether viewerID liked it.
func postViewQuery(db *gorm.DB, viewerID uint) *gorm.DB {
	return db.Table("posts AS p").
		Select(`p.id, p.author_id, p.content, p.media_url, p.created_at, p.updated_at,
			u.username AS author_username,
			COALESCE(lc.likes_count, 0) AS likes_count,
			COALESCE(cc.comments_count, 0) AS comments_count,
			EXISTS (SELECT 1 FROM likes vl WHERE vl.post_id = p.id AND vl.user_id = ?) AS liked_by_viewer`, viewerID).
		Joins("JOIN users u ON u.id = p.author_id").
		Joins("LEFT JOIN (SELECT post_id, COUNT(*) AS likes_count FROM likes GROUP BY post_id) lc ON lc.post_id = p.id").
		Joins("LEFT JOIN (SELECT post_id, COUNT(*) AS comments_count FROM comments GROUP BY post_id) cc ON cc.post_id = p.id")
}
