// Package http provides the HTTP server and route wiring for the survey
// encryption API.
package http

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	authHTTP "github.com/checktick/surveyvault/internal/auth/http"
	authUseCase "github.com/checktick/surveyvault/internal/auth/usecase"
	"github.com/checktick/surveyvault/internal/config"
	surveysHTTP "github.com/checktick/surveyvault/internal/surveys/http"
)

// Server represents the HTTP server for the survey encryption API.
type Server struct {
	server *http.Server
	router *gin.Engine
	db     *sql.DB
	logger *slog.Logger
}

// NewServer creates a new HTTP server. The router is assembled later via
// SetupRouter, which needs the handlers and middleware dependencies.
func NewServer(
	db *sql.DB,
	host string,
	port int,
	logger *slog.Logger,
) *Server {
	return &Server{
		db:     db,
		logger: logger,
		server: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", host, port),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}
}

// RouterConfig holds the handlers and middleware the router depends on.
type RouterConfig struct {
	Config              *config.Config
	ClientUseCase       authUseCase.ClientUseCase
	EncryptionHandler   *surveysHTTP.EncryptionHandler
	OrganizationHandler *surveysHTTP.OrganizationHandler

	// MetricsMiddleware records per-route request metrics. Optional.
	MetricsMiddleware gin.HandlerFunc
}

// SetupRouter assembles the Gin engine: recovery, request IDs, structured
// logging, optional CORS and metrics, then the authenticated /v1 API. Unlock
// endpoints sit behind a second, stricter rate limiter because each unlock
// attempt is a credential guess.
func (s *Server) SetupRouter(rc RouterConfig) {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestid.New(requestid.WithGenerator(func() string {
		return uuid.Must(uuid.NewV7()).String()
	})))
	router.Use(CustomLoggerMiddleware(s.logger))

	if corsMiddleware := createCORSMiddleware(
		rc.Config.CORSEnabled,
		rc.Config.CORSAllowOrigins,
		s.logger,
	); corsMiddleware != nil {
		router.Use(corsMiddleware)
	}

	if rc.MetricsMiddleware != nil {
		router.Use(rc.MetricsMiddleware)
	}

	// Health and readiness endpoints (unauthenticated)
	router.GET("/health", s.healthHandler)
	router.GET("/ready", s.readinessHandler)

	// Authenticated API
	v1 := router.Group("/v1")
	v1.Use(authHTTP.AuthenticationMiddleware(rc.ClientUseCase, s.logger))

	if rc.Config.RateLimitEnabled {
		v1.Use(authHTTP.RateLimitMiddleware(
			rc.Config.RateLimitRequestsPerSec,
			rc.Config.RateLimitBurst,
			s.logger,
		))
	}

	encryption := rc.EncryptionHandler
	v1.POST("/surveys/:survey_id/encryption/dual", encryption.SetupDualHandler)
	v1.POST("/surveys/:survey_id/encryption/sso", encryption.SetupSSOHandler)
	v1.GET("/surveys/:survey_id/encryption", encryption.StatusHandler)
	v1.POST("/surveys/:survey_id/encryption/can-unlock", encryption.CanUnlockHandler)
	v1.POST("/surveys/:survey_id/lock", encryption.LockHandler)
	v1.POST("/sessions/lock-all", encryption.LockAllHandler)
	v1.POST("/surveys/:survey_id/legacy-key/verify", encryption.VerifyLegacyKeyHandler)
	v1.POST("/surveys/:survey_id/demographics/encrypt", encryption.EncryptDemographicsHandler)
	v1.POST("/surveys/:survey_id/demographics/decrypt", encryption.DecryptDemographicsHandler)
	v1.POST("/surveys/:survey_id/demographics/fingerprint", encryption.FingerprintDemographicsHandler)

	unlock := v1.Group("/surveys/:survey_id/unlock")
	if rc.Config.RateLimitUnlockEnabled {
		unlock.Use(authHTTP.RateLimitMiddleware(
			rc.Config.RateLimitUnlockRequestsPerSec,
			rc.Config.RateLimitUnlockBurst,
			s.logger,
		))
	}
	unlock.POST("/password", encryption.UnlockPasswordHandler)
	unlock.POST("/recovery", encryption.UnlockRecoveryHandler)
	unlock.POST("/org", encryption.UnlockOrgHandler)
	unlock.POST("/oidc", encryption.UnlockOIDCHandler)

	organizations := rc.OrganizationHandler
	v1.POST("/organizations", organizations.CreateHandler)
	v1.GET("/organizations/:organization_id", organizations.GetHandler)

	s.router = router
}

// GetHandler returns the assembled router, primarily for tests that mount
// the API in an httptest server.
func (s *Server) GetHandler() http.Handler {
	return s.router
}

// healthHandler reports process liveness.
func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// readinessHandler reports readiness to serve traffic, checking the database
// connection.
func (s *Server) readinessHandler(c *gin.Context) {
	components := gin.H{"database": "ok"}
	status := "ready"
	code := http.StatusOK

	if s.db == nil {
		components["database"] = "error"
		status = "not_ready"
		code = http.StatusServiceUnavailable
	} else if err := s.db.PingContext(c.Request.Context()); err != nil {
		s.logger.Error("readiness check failed", slog.Any("error", err))
		components["database"] = "error"
		status = "not_ready"
		code = http.StatusServiceUnavailable
	}

	c.JSON(code, gin.H{
		"status":     status,
		"components": components,
	})
}

// Start starts the HTTP server. SetupRouter must have been called first.
func (s *Server) Start(ctx context.Context) error {
	s.server.Handler = s.router

	s.logger.Info("starting http server", slog.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.server.Shutdown(ctx)
}
