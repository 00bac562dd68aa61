package router

import (
	"time"

	"github.com/anonto42/social-api/backend/internal/auth"
	"github.com/anonto42/social-api/backend/internal/handlers"
	"github.com/anonto42/social-api/backend/internal/middleware"
	"github.com/anonto42/social-api/backend/internal/monitoring"
	"github.com/anonto42/social-api/backend/internal/repositories"
	"github.com/anonto42/social-api/backend/internal/services"
	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/xid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Dependencies are the process-wide resources the routes are built from.
type Dependencies struct {
	DB             *gorm.DB
	Tokens         auth.TokenProvider
	Identities     auth.IdentityVerifier // optional; enables POST /users/firebase-login
	Log            logrus.FieldLogger
	RequestTimeout time.Duration
}

// SetupMiddleware configures global Echo middleware
func SetupMiddleware(e *echo.Echo, deps Dependencies) {
	e.HideBanner = true
	e.Validator = handlers.NewValidator()
	e.HTTPErrorHandler = handlers.ErrorHandler(deps.Log)

	e.Use(eMiddleware.Recover())
	e.Use(eMiddleware.RequestIDWithConfig(eMiddleware.RequestIDConfig{
		Generator: func() string { return xid.New().String() },
	}))
	// metrics wrap the logger so they see the status the error handler wrote
	e.Use(monitoring.Middleware())
	e.Use(middleware.RequestLogger(deps.Log))
	e.Use(eMiddleware.CORS())
	if deps.RequestTimeout > 0 {
		e.Use(eMiddleware.ContextTimeoutWithConfig(eMiddleware.ContextTimeoutConfig{
			Timeout: deps.RequestTimeout,
		}))
	}
	deps.Log.Debug("Global middleware configured")
}

// SetupRoutes configures all application routes and injects dependencies
func SetupRoutes(e *echo.Echo, deps Dependencies) {
	e.GET("/health", handlers.HealthCheck)

	// --- Initialize Repositories ---
	userRepo := repositories.NewPostgresUserRepository(deps.DB)
	postRepo := repositories.NewPostgresPostRepository(deps.DB)
	followRepo := repositories.NewPostgresFollowRepository(deps.DB)
	likeRepo := repositories.NewPostgresLikeRepository(deps.DB)
	commentRepo := repositories.NewPostgresCommentRepository(deps.DB)

	// --- Services ---
	interactions := services.NewInteractionService(userRepo, postRepo, followRepo, likeRepo, commentRepo, deps.Log)
	feed := services.NewFeedService(postRepo, deps.Log)
	posts := services.NewPostService(postRepo, deps.Log)
	users := services.NewUserService(userRepo, followRepo, deps.Tokens, deps.Log)
	if deps.Identities != nil {
		users.WithIdentityVerifier(deps.Identities)
	}

	requireAuth := middleware.Auth(deps.Tokens)

	api := e.Group("/api/v1")
	api.GET("/health", handlers.HealthCheck)

	handlers.NewUserHandler(users).RegisterUserRoutes(api.Group("/users"), requireAuth)
	handlers.NewFollowHandler(interactions).RegisterFollowRoutes(api.Group("/follows", requireAuth))
	handlers.NewPostHandler(posts, feed, interactions).RegisterPostRoutes(api.Group("/posts", requireAuth))

	deps.Log.WithField("routes", len(e.Routes())).Info("All routes configured")
}
