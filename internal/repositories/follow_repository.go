package repositories

import (
	"context"

	"github.com/anonto42/social-api/backend/internal/apperror"
	"github.com/anonto42/social-api/backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FollowRepository is the graph store for directed follow edges.
type FollowRepository interface {
	Follow(ctx context.Context, followerID, followedID uint) (bool, error)
	Unfollow(ctx context.Context, followerID, followedID uint) (bool, error)
	IsFollowing(ctx context.Context, followerID, followedID uint) (bool, error)
	GetFollowing(ctx context.Context, userID uint) ([]models.UserSummary, error)
	GetFollowers(ctx context.Context, userID uint) ([]models.UserSummary, error)
}

// PostgresFollowRepository implements FollowRepository with GORM
type PostgresFollowRepository struct {
	db *gorm.DB
}

// NewPostgresFollowRepository creates a new PostgresFollowRepository
func NewPostgresFollowRepository(db *gorm.DB) *PostgresFollowRepository {
	return &PostgresFollowRepository{db: db}
}

var _ FollowRepository = (*PostgresFollowRepository)(nil)

// Follow inserts the edge follower -> followed and reports whether a row was created.
// An existing edge, including one inserted by a concurrent request, is created=false.
func (r *PostgresFollowRepository) Follow(ctx context.Context, followerID, followedID uint) (bool, error) {
	if followerID == followedID {
		return false, apperror.SelfReference("users cannot follow themselves")
	}

	follow := &models.Follow{FollowerID: followerID, FollowedID: followedID}
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "follower_id"}, {Name: "followed_id"}},
		DoNothing: true,
	}).Create(follow)
	if res.Error != nil {
		if isUniqueViolation(res.Error) {
			return false, nil
		}
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// Unfollow deletes the edge if present. A missing edge is removed=false, not an error.
func (r *PostgresFollowRepository) Unfollow(ctx context.Context, followerID, followedID uint) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("follower_id = ? AND followed_id = ?", followerID, followedID).
		Delete(&models.Follow{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// IsFollowing reports whether the edge follower -> followed exists.
func (r *PostgresFollowRepository) IsFollowing(ctx context.Context, followerID, followedID uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Follow{}).
		Where("follower_id = ? AND followed_id = ?", followerID, followedID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *PostgresFollowRepository) GetFollowing(ctx context.Context, userID uint) ([]models.UserSummary, error) {
	db := r.db.WithContext(ctx)
	users := []models.UserSummary{}
	err := summaryQuery(db).
		Where("u.id IN (?)", db.Table("follows").Select("followed_id").Where("follower_id = ?", userID)).
		Order("u.username").
		Scan(&users).Error
	return users, err
}

func (r *PostgresFollowRepository) GetFollowers(ctx context.Context, userID uint) ([]models.UserSummary, error) {
	db := r.db.WithContext(ctx)
	users := []models.UserSummary{}
	err := summaryQuery(db).
		Where("u.id IN (?)", db.Table("follows").Select("follower_id").Where("followed_id = ?", userID)).
		Order("u.username").
		Scan(&users).Error
	return users, err
}
