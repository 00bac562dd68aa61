package handlers

import (
	"net/http"

	"github.com/anonto42/social-api/backend/internal/middleware"
	"github.com/anonto42/social-api/backend/internal/models"
	"github.com/anonto42/social-api/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// UserHandler handles HTTP requests related to users
type UserHandler struct {
	users *services.UserService
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(users *services.UserService) *UserHandler {
	return &UserHandler{users: users}
}

// RegisterUserRoutes registers account and profile routes. Register and login
// are public; the rest run behind requireAuth.
func (h *UserHandler) RegisterUserRoutes(g *echo.Group, requireAuth echo.MiddlewareFunc) {
	g.POST("/register", h.Register)
	g.POST("/login", h.Login)
	g.POST("/firebase-login", h.FirebaseLogin)

	g.GET("/me", h.GetProfile, requireAuth)
	g.PUT("/me", h.UpdateProfile, requireAuth)
	g.GET("/:id", h.GetUser, requireAuth)
}

// Register creates an account and returns it with an access token
func (h *UserHandler) Register(c echo.Context) error {
	var req models.RegisterRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	session, err := h.users.Register(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return success(c, http.StatusCreated, session)
}

func (h *UserHandler) Login(c echo.Context) error {
	var req models.LoginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	session, err := h.users.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, session)
}

// FirebaseLogin verifies a Firebase ID token and signs in, linking or creating the
// local account as needed
func (h *UserHandler) FirebaseLogin(c echo.Context) error {
	var req models.FirebaseLoginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	session, err := h.users.FirebaseLogin(c.Request().Context(), req.IDToken)
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, session)
}

// GetProfile retrieves the authenticated user's profile
func (h *UserHandler) GetProfile(c echo.Context) error {
	profile, err := h.users.Profile(c.Request().Context(), middleware.UserID(c))
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, profile)
}

// UpdateProfile updates the authenticated user's profile
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	var req models.UpdateProfileRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	profile, err := h.users.UpdateProfile(c.Request().Context(), middleware.UserID(c), req)
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, profile)
}

// GetUser returns another user's public profile, including whether the caller
// follows them
func (h *UserHandler) GetUser(c echo.Context) error {
	userID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	profile, err := h.users.ViewProfile(c.Request().Context(), middleware.UserID(c), userID)
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, profile)
}
