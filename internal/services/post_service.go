package services

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/anonto42/social-api/backend/internal/apperror"
	"github.com/anonto42/social-api/backend/internal/models"
	"github.com/anonto42/social-api/backend/internal/monitoring"
	"github.com/anonto42/social-api/backend/internal/repositories"
	"github.com/sirupsen/logrus"
)

const MaxPostLength = 5000

// PostService creates, reads, edits and deletes posts. Only the author may edit
// or delete a post.
type PostService struct {
	posts repositories.PostRepository
	log   logrus.FieldLogger
	now   func() time.Time
}

func NewPostService(posts repositories.PostRepository, log logrus.FieldLogger) *PostService {
	return &PostService{posts: posts, log: log, now: time.Now}
}

func (s *PostService) CreatePost(ctx context.Context, authorID uint, content, mediaURL string) (*models.Post, error) {
	content, mediaURL, err := validatePostBody(content, mediaURL)
	if err != nil {
		return nil, err
	}

	now := s.now()
	post := &models.Post{
		AuthorID:  authorID,
		Content:   content,
		MediaURL:  mediaURL,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.posts.CreatePost(ctx, post); err != nil {
		s.log.WithError(err).WithField("author_id", authorID).Error("failed to create post")
		return nil, fmt.Errorf("creating post: %w", err)
	}
	monitoring.RecordInteraction(monitoring.KindPost, true)
	s.log.WithFields(logrus.Fields{"post_id": post.ID, "author_id": authorID}).Info("post created")
	return post, nil
}

func (s *PostService) GetPost(ctx context.Context, viewerID, postID uint) (*models.PostView, error) {
	return s.posts.GetPostView(ctx, postID, viewerID)
}

// UpdatePost changes the fields that are non-nil. The result must still carry
// content or media.
func (s *PostService) UpdatePost(ctx context.Context, actorID, postID uint, content, mediaURL *string) (*models.Post, error) {
	post, err := s.posts.GetPostByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post.AuthorID != actorID {
		return nil, apperror.Forbidden("you are not allowed to edit this post")
	}

	newContent, newMedia := post.Content, post.MediaURL
	if content != nil {
		newContent = *content
	}
	if mediaURL != nil {
		newMedia = *mediaURL
	}
	if post.Content, post.MediaURL, err = validatePostBody(newContent, newMedia); err != nil {
		return nil, err
	}
	post.UpdatedAt = s.now()

	if err := s.posts.UpdatePost(ctx, post); err != nil {
		return nil, fmt.Errorf("updating post: %w", err)
	}
	s.log.WithField("post_id", post.ID).Info("post updated")
	return post, nil
}

// DeletePost removes the post with its likes and comments. Deleting a post that
// is already gone is a not-found error.
func (s *PostService) DeletePost(ctx context.Context, actorID, postID uint) error {
	post, err := s.posts.GetPostByID(ctx, postID)
	if err != nil {
		return err
	}
	if post.AuthorID != actorID {
		return apperror.Forbidden("you are not allowed to delete this post")
	}

	deleted, err := s.posts.DeletePostCascade(ctx, postID)
	if err != nil {
		s.log.WithError(err).WithField("post_id", postID).Error("failed to delete post")
		return fmt.Errorf("deleting post: %w", err)
	}
	if !deleted {
		return apperror.NotFound("post", postID)
	}
	monitoring.RecordInteraction(monitoring.KindDelete, true)
	s.log.WithField("post_id", postID).Info("post deleted")
	return nil
}

func validatePostBody(content, mediaURL string) (string, string, error) {
	mediaURL = strings.TrimSpace(mediaURL)
	if strings.TrimSpace(content) == "" && mediaURL == "" {
		return "", "", apperror.ValidationFailed("content", "content or media is required")
	}
	if utf8.RuneCountInString(content) > MaxPostLength {
		return "", "", apperror.ValidationFailed("content",
			fmt.Sprintf("content must be %d characters or less", MaxPostLength))
	}
	return content, mediaURL, nil
}
