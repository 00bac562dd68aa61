package services

import (
	"context"
	"fmt"

	"github.com/anonto42/social-api/backend/internal/models"
	"github.com/anonto42/social-api/backend/internal/repositories"
	"github.com/sirupsen/logrus"
)

const (
	DefaultFeedLimit = 20
	MaxFeedLimit     = 100
)

// FeedService composes a viewer's feed: their own posts plus the posts of
// everyone they follow, newest first.
type FeedService struct {
	posts repositories.PostRepository
	log   logrus.FieldLogger
}

func NewFeedService(posts repositories.PostRepository, log logrus.FieldLogger) *FeedService {
	return &FeedService{posts: posts, log: log}
}

// ComposeFeed returns the viewer's feed. A zero Limit returns every post, unless an
// Offset is given, in which case DefaultFeedLimit applies.
func (s *FeedService) ComposeFeed(ctx context.Context, viewerID uint, opts models.FeedOptions) ([]models.PostView, error) {
	if opts.Offset < 0 {
		opts.Offset = 0
	}
	if opts.Limit < 0 || (opts.Limit == 0 && opts.Offset > 0) {
		opts.Limit = DefaultFeedLimit
	}
	if opts.Limit > MaxFeedLimit {
		opts.Limit = MaxFeedLimit
	}

	posts, err := s.posts.GetFeed(ctx, viewerID, opts)
	if err != nil {
		s.log.WithError(err).WithField("viewer_id", viewerID).Error("failed to compose feed")
		return nil, fmt.Errorf("composing feed: %w", err)
	}
	return posts, nil
}
