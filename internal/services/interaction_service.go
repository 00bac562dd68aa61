// Package services holds the business rules sitting between the HTTP handlers
// and the repositories. Every operation takes the acting user's id explicitly.
package services

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/anonto42/social-api/backend/internal/apperror"
	"github.com/anonto42/social-api/backend/internal/models"
	"github.com/anonto42/social-api/backend/internal/monitoring"
	"github.com/anonto42/social-api/backend/internal/repositories"
	"github.com/sirupsen/logrus"
)

// MaxCommentLength is counted in characters, like the request validator.
const MaxCommentLength = 1000

// InteractionService applies follow, like and comment mutations.
type InteractionService struct {
	users    repositories.UserRepository
	posts    repositories.PostRepository
	follows  repositories.FollowRepository
	likes    repositories.LikeRepository
	comments repositories.CommentRepository
	log      logrus.FieldLogger
}

func NewInteractionService(
	users repositories.UserRepository,
	posts repositories.PostRepository,
	follows repositories.FollowRepository,
	likes repositories.LikeRepository,
	comments repositories.CommentRepository,
	log logrus.FieldLogger,
) *InteractionService {
	return &InteractionService{
		users:    users,
		posts:    posts,
		follows:  follows,
		likes:    likes,
		comments: comments,
		log:      log,
	}
}

// FollowUser makes followerID follow targetID. Following an already followed user
// succeeds with Created=false.
func (s *InteractionService) FollowUser(ctx context.Context, followerID, targetID uint) (models.FollowResult, error) {
	if followerID == targetID {
		return models.FollowResult{}, apperror.SelfReference("you cannot follow yourself")
	}
	if err := s.requireUser(ctx, targetID); err != nil {
		return models.FollowResult{}, err
	}

	created, err := s.follows.Follow(ctx, followerID, targetID)
	if err != nil {
		return models.FollowResult{}, fmt.Errorf("following user: %w", err)
	}
	monitoring.RecordInteraction(monitoring.KindFollow, created)
	if created {
		s.log.WithFields(logrus.Fields{"follower_id": followerID, "followed_id": targetID}).Info("user followed")
	}
	return models.FollowResult{Created: created}, nil
}

// UnfollowUser removes the edge followerID -> targetID if it exists.
func (s *InteractionService) UnfollowUser(ctx context.Context, followerID, targetID uint) (models.UnfollowResult, error) {
	if err := s.requireUser(ctx, targetID); err != nil {
		return models.UnfollowResult{}, err
	}

	removed, err := s.follows.Unfollow(ctx, followerID, targetID)
	if err != nil {
		return models.UnfollowResult{}, fmt.Errorf("unfollowing user: %w", err)
	}
	monitoring.RecordInteraction(monitoring.KindUnfollow, removed)
	if removed {
		s.log.WithFields(logrus.Fields{"follower_id": followerID, "followed_id": targetID}).Info("user unfollowed")
	}
	return models.UnfollowResult{Removed: removed}, nil
}

func (s *InteractionService) ListFollowing(ctx context.Context, userID uint) ([]models.UserSummary, error) {
	users, err := s.follows.GetFollowing(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing following: %w", err)
	}
	return users, nil
}

func (s *InteractionService) ListFollowers(ctx context.Context, userID uint) ([]models.UserSummary, error) {
	users, err := s.follows.GetFollowers(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing followers: %w", err)
	}
	return users, nil
}

// LikePost likes postID as userID. A repeated like succeeds with Created=false.
func (s *InteractionService) LikePost(ctx context.Context, userID, postID uint) (models.LikeResult, error) {
	if err := s.requirePost(ctx, postID); err != nil {
		return models.LikeResult{}, err
	}

	created, err := s.likes.Like(ctx, userID, postID)
	if err != nil {
		return models.LikeResult{}, fmt.Errorf("liking post: %w", err)
	}
	monitoring.RecordInteraction(monitoring.KindLike, created)

	count, err := s.likes.GetLikesCountByPostID(ctx, postID)
	if err != nil {
		return models.LikeResult{}, fmt.Errorf("counting likes: %w", err)
	}
	return models.LikeResult{Created: created, LikesCount: count}, nil
}

// UnlikePost removes userID's like. Unliking a post that was not liked reports
// Removed=false without an error.
func (s *InteractionService) UnlikePost(ctx context.Context, userID, postID uint) (models.LikeResult, error) {
	if err := s.requirePost(ctx, postID); err != nil {
		return models.LikeResult{}, err
	}

	removed, err := s.likes.Unlike(ctx, userID, postID)
	if err != nil {
		return models.LikeResult{}, fmt.Errorf("unliking post: %w", err)
	}
	monitoring.RecordInteraction(monitoring.KindUnlike, removed)

	count, err := s.likes.GetLikesCountByPostID(ctx, postID)
	if err != nil {
		return models.LikeResult{}, fmt.Errorf("counting likes: %w", err)
	}
	return models.LikeResult{Removed: removed, LikesCount: count}, nil
}

// CommentPost appends a comment. Each call creates a new comment.
func (s *InteractionService) CommentPost(ctx context.Context, userID, postID uint, text string) (*models.Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperror.ValidationFailed("content", "comment text is required")
	}
	if utf8.RuneCountInString(text) > MaxCommentLength {
		return nil, apperror.ValidationFailed("content",
			fmt.Sprintf("comment must be %d characters or less", MaxCommentLength))
	}
	if err := s.requirePost(ctx, postID); err != nil {
		return nil, err
	}

	comment := &models.Comment{PostID: postID, UserID: userID, Content: text}
	if err := s.comments.CreateComment(ctx, comment); err != nil {
		s.log.WithError(err).WithField("post_id", postID).Error("failed to create comment")
		return nil, fmt.Errorf("creating comment: %w", err)
	}
	monitoring.RecordInteraction(monitoring.KindComment, true)
	s.log.WithFields(logrus.Fields{"comment_id": comment.ID, "post_id": postID, "user_id": userID}).Info("comment created")
	return comment, nil
}

func (s *InteractionService) ListComments(ctx context.Context, postID uint) ([]models.CommentView, error) {
	if err := s.requirePost(ctx, postID); err != nil {
		return nil, err
	}
	comments, err := s.comments.GetCommentsByPostID(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("listing comments: %w", err)
	}
	return comments, nil
}

func (s *InteractionService) requireUser(ctx context.Context, id uint) error {
	exists, err := s.users.UserExists(ctx, id)
	if err != nil {
		return fmt.Errorf("looking up user: %w", err)
	}
	if !exists {
		return apperror.NotFound("user", id)
	}
	return nil
}

func (s *InteractionService) requirePost(ctx context.Context, id uint) error {
	exists, err := s.posts.PostExists(ctx, id)
	if err != nil {
		return fmt.Errorf("looking up post: %w", err)
	}
	if !exists {
		return apperror.NotFound("post", id)
	}
	return nil
}
