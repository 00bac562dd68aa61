package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/anonto42/social-api/backend/internal/auth"
	"github.com/anonto42/social-api/backend/internal/monitoring"
	"github.com/anonto42/social-api/backend/internal/repositories"
	"github.com/anonto42/social-api/backend/internal/router"
	"github.com/anonto42/social-api/backend/pkg/config"
	"github.com/anonto42/social-api/backend/pkg/firebase"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"
)

func main() {
	// Load configuration
	cfg := config.Load()
	log := config.NewLogger(cfg)
	if err := cfg.Validate(); err != nil {
		log.WithError(err).Fatal("Invalid configuration")
	}

	// Initialize database connection
	db, err := config.InitDB(cfg, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to initialize database")
	}
	defer db.CloseDB()

	ctx := context.Background()
	tokens, err := newTokenProvider(ctx, cfg, db.Postgres)
	if err != nil {
		log.WithError(err).Fatal("Failed to initialize token provider")
	}
	log.WithField("provider", cfg.AuthProvider).Info("Token provider ready")

	if err := monitoring.Register(prometheus.DefaultRegisterer); err != nil {
		log.WithError(err).Fatal("Failed to register metrics")
	}

	// Create Echo instance
	e := echo.New()
	deps := router.Dependencies{
		DB:             db.Postgres,
		Tokens:         tokens,
		Log:            log,
		RequestTimeout: cfg.RequestTimeout,
	}
	// Firebase tokens also carry an identity that can sign up new accounts
	if identities, ok := tokens.(auth.IdentityVerifier); ok {
		deps.Identities = identities
	}
	router.SetupMiddleware(e, deps)
	router.SetupRoutes(e, deps)

	metricsSrv := &http.Server{
		Addr:              ":" + cfg.MetricsPort,
		Handler:           promhttp.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	serverErrors := make(chan error, 2)
	go func() {
		log.WithField("port", cfg.Port).Info("Server starting")
		serverErrors <- e.Start(":" + cfg.Port)
	}()
	go func() {
		log.WithField("port", cfg.MetricsPort).Info("Metrics server starting")
		serverErrors <- metricsSrv.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("Server error")
		}
	case sig := <-quit:
		log.WithField("signal", sig.String()).Info("Shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Graceful shutdown failed")
	}
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Metrics server shutdown failed")
	}
	log.Info("Server stopped")
}

func newTokenProvider(ctx context.Context, cfg *config.Config, db *gorm.DB) (auth.TokenProvider, error) {
	if cfg.AuthProvider == config.AuthProviderFirebase {
		app, err := firebase.InitFirebase(ctx, cfg.FirebaseCredentialsPath)
		if err != nil {
			return nil, err
		}
		return auth.NewFirebaseProvider(app.AuthClient, repositories.NewPostgresUserRepository(db)), nil
	}
	provider, err := auth.NewJWTProvider(cfg.JWTSecret, cfg.JWTTTL)
	if err != nil {
		return nil, err
	}
	return provider, nil
}
