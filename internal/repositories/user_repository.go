package repositories

import (
	"context"
	"errors"

	"github.com/anonto42/social-api/backend/internal/apperror"
	"github.com/anonto42/social-api/backend/internal/models"
	"gorm.io/gorm"
)

// UserRepository is the identity store: lookups by id and by credential fields.
type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id uint) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByFirebaseUID(ctx context.Context, firebaseUID string) (*models.User, error)
	UpdateUser(ctx context.Context, user *models.User) error
	UserExists(ctx context.Context, id uint) (bool, error)
	GetUserSummary(ctx context.Context, id uint) (*models.UserSummary, error)
}

// PostgresUserRepository implements UserRepository with GORM
type PostgresUserRepository struct {
	db *gorm.DB
}

// NewPostgresUserRepository creates a new PostgresUserRepository
func NewPostgresUserRepository(db *gorm.DB) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

var _ UserRepository = (*PostgresUserRepository)(nil)

// CreateUser inserts a user. Username/email collisions come back as apperror.ErrConflict.
func (r *PostgresUserRepository) CreateUser(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("user", "username or email already registered")
		}
		return err
	}
	return nil
}

func (r *PostgresUserRepository) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("user", id)
		}
		return nil, err
	}
	return &user, nil
}

func (r *PostgresUserRepository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.findOne(ctx, "username = ?", username)
}

func (r *PostgresUserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, "LOWER(email) = LOWER(?)", email)
}

func (r *PostgresUserRepository) GetUserByFirebaseUID(ctx context.Context, firebaseUID string) (*models.User, error) {
	return r.findOne(ctx, "firebase_uid = ?", firebaseUID)
}

func (r *PostgresUserRepository) findOne(ctx context.Context, query string, arg string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where(query, arg).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("user", arg)
		}
		return nil, err
	}
	return &user, nil
}

// UpdateUser saves every column of user.
func (r *PostgresUserRepository) UpdateUser(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Save(user).Error; err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("user", "username or email already registered")
		}
		return err
	}
	return nil
}

func (r *PostgresUserRepository) UserExists(ctx context.Context, id uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// GetUserSummary returns the public profile with follower/following counts.
func (r *PostgresUserRepository) GetUserSummary(ctx context.Context, id uint) (*models.UserSummary, error) {
	var summaries []models.UserSummary
	if err := summaryQuery(r.db.WithContext(ctx)).Where("u.id = ?", id).Scan(&summaries).Error; err != nil {
		return nil, err
	}
	if len(summaries) == 0 {
		return nil, apperror.NotFound("user", id)
	}
	return &summaries[0], nil
}

// summaryQuery selects UserSummary rows; both counts are correlated subqueries so a
// listing costs one round trip regardless of its length.
func summaryQuery(db *gorm.DB) *gorm.DB {
	return db.Table("users AS u").Select(`u.id, u.username, u.first_name, u.last_name, u.bio, u.profile_picture_url,
		(SELECT COUNT(*) FROM follows f WHERE f.followed_id = u.id) AS followers_count,
		(SELECT COUNT(*) FROM follows f WHERE f.follower_id = u.id) AS following_count`)
}
