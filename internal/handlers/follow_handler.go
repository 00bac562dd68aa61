package handlers

import (
	"net/http"

	"github.com/anonto42/social-api/backend/internal/middleware"
	"github.com/anonto42/social-api/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// FollowHandler handles follow/unfollow HTTP requests
type FollowHandler struct {
	interactions *services.InteractionService
}

// NewFollowHandler creates a new FollowHandler
func NewFollowHandler(interactions *services.InteractionService) *FollowHandler {
	return &FollowHandler{interactions: interactions}
}

// RegisterFollowRoutes registers follow-related routes
func (h *FollowHandler) RegisterFollowRoutes(g *echo.Group) {
	g.POST("/users/:id/follow", h.FollowUser)
	g.DELETE("/users/:id/unfollow", h.UnfollowUser)
	g.GET("/following", h.ListFollowing)
	g.GET("/followers", h.ListFollowers)
}

// FollowUser follows a user. A new edge answers 201, an existing one 200.
func (h *FollowHandler) FollowUser(c echo.Context) error {
	targetID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	res, err := h.interactions.FollowUser(c.Request().Context(), middleware.UserID(c), targetID)
	if err != nil {
		return err
	}
	status := http.StatusOK
	if res.Created {
		status = http.StatusCreated
	}
	return success(c, status, res)
}

// UnfollowUser unfollows a user. Unfollowing someone not followed still answers
// 200 with removed=false.
func (h *FollowHandler) UnfollowUser(c echo.Context) error {
	targetID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	res, err := h.interactions.UnfollowUser(c.Request().Context(), middleware.UserID(c), targetID)
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, res)
}

func (h *FollowHandler) ListFollowing(c echo.Context) error {
	users, err := h.interactions.ListFollowing(c.Request().Context(), middleware.UserID(c))
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, users)
}

func (h *FollowHandler) ListFollowers(c echo.Context) error {
	users, err := h.interactions.ListFollowers(c.Request().Context(), middleware.UserID(c))
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, users)
}
