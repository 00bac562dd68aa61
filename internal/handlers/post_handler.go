package handlers

import (
	"net/http"

	"github.com/anonto42/social-api/backend/internal/middleware"
	"github.com/anonto42/social-api/backend/internal/models"
	"github.com/anonto42/social-api/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// PostHandler handles HTTP requests related to posts, their likes and comments,
// and the feed.
type PostHandler struct {
	posts        *services.PostService
	feed         *services.FeedService
	interactions *services.InteractionService
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(posts *services.PostService, feed *services.FeedService, interactions *services.InteractionService) *PostHandler {
	return &PostHandler{
		posts:        posts,
		feed:         feed,
		interactions: interactions,
	}
}

// RegisterPostRoutes registers post-related routes
func (h *PostHandler) RegisterPostRoutes(g *echo.Group) {
	g.GET("", h.GetFeed)
	g.POST("", h.CreatePost)
	g.GET("/feed.rss", h.GetFeedRSS)
	g.GET("/:id", h.GetPost)
	g.PUT("/:id", h.UpdatePost)
	g.DELETE("/:id", h.DeletePost)

	g.POST("/:id/like", h.LikePost)
	g.DELETE("/:id/unlike", h.UnlikePost)
	g.POST("/:id/comment", h.CommentPost)
	g.GET("/:id/comments", h.ListComments)
}

// GetFeed returns the caller's feed. Accepts optional limit and offset.
func (h *PostHandler) GetFeed(c echo.Context) error {
	limit, err := queryInt(c, "limit")
	if err != nil {
		return err
	}
	offset, err := queryInt(c, "offset")
	if err != nil {
		return err
	}

	posts, err := h.feed.ComposeFeed(c.Request().Context(), middleware.UserID(c), models.FeedOptions{Limit: limit, Offset: offset})
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, posts)
}

// CreatePost creates a new post
func (h *PostHandler) CreatePost(c echo.Context) error {
	var req models.CreatePostRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	post, err := h.posts.CreatePost(c.Request().Context(), middleware.UserID(c), req.Content, req.MediaURL)
	if err != nil {
		return err
	}
	return success(c, http.StatusCreated, post)
}

// GetPost retrieves a post by ID
func (h *PostHandler) GetPost(c echo.Context) error {
	postID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	post, err := h.posts.GetPost(c.Request().Context(), middleware.UserID(c), postID)
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, post)
}

// UpdatePost updates an existing post. Only the author may do this.
func (h *PostHandler) UpdatePost(c echo.Context) error {
	postID, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req models.UpdatePostRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	post, err := h.posts.UpdatePost(c.Request().Context(), middleware.UserID(c), postID, req.Content, req.MediaURL)
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, post)
}

// DeletePost deletes a post with its likes and comments
func (h *PostHandler) DeletePost(c echo.Context) error {
	postID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	if err := h.posts.DeletePost(c.Request().Context(), middleware.UserID(c), postID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// LikePost likes a post. A new like answers 201, a repeated one 200.
func (h *PostHandler) LikePost(c echo.Context) error {
	postID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	res, err := h.interactions.LikePost(c.Request().Context(), middleware.UserID(c), postID)
	if err != nil {
		return err
	}
	status := http.StatusOK
	if res.Created {
		status = http.StatusCreated
	}
	return success(c, status, res)
}

func (h *PostHandler) UnlikePost(c echo.Context) error {
	postID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	res, err := h.interactions.UnlikePost(c.Request().Context(), middleware.UserID(c), postID)
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, res)
}

func (h *PostHandler) CommentPost(c echo.Context) error {
	postID, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req models.CreateCommentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	comment, err := h.interactions.CommentPost(c.Request().Context(), middleware.UserID(c), postID, req.Content)
	if err != nil {
		return err
	}
	return success(c, http.StatusCreated, comment)
}

// ListComments returns a post's comments, newest first.
func (h *PostHandler) ListComments(c echo.Context) error {
	postID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	comments, err := h.interactions.ListComments(c.Request().Context(), postID)
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, comments)
}
