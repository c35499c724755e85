package api

import (
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/funcland/control-plane/internal/api/handler"
	"github.com/funcland/control-plane/internal/api/middleware"
	"github.com/funcland/control-plane/internal/core/domain"
	"github.com/funcland/control-plane/internal/core/ports"
	"github.com/funcland/control-plane/internal/core/service"
	mongorepo "github.com/funcland/control-plane/internal/infrastructure/db/mongo"
	redisstore "github.com/funcland/control-plane/internal/infrastructure/db/redis"
	"github.com/funcland/control-plane/internal/pkg/config"
)

// NewRouter builds and returns the Echo instance with all routes registered.
// The identity provider and the audit recorder are constructed by the caller
// because they own external lifecycles (network client, worker pool).
func NewRouter(
	db *mongo.Database,
	rdb *redis.Client,
	provider ports.IdentityProvider,
	audit ports.AuditRecorder,
	cfg *config.Config,
	log zerolog.Logger,
) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())

	// --- Repositories ---
	userRepo := mongorepo.NewUserRepository(db)
	projectRepo := mongorepo.NewProjectRepository(db)
	deploymentRepo := mongorepo.NewDeploymentRepository(db)
	tokenRepo := mongorepo.NewTokenRepository(db)
	auditRepo := mongorepo.NewAuditRepository(db)
	sessionStore := redisstore.NewSessionStore(rdb)

	// --- Services ---
	sessionService := service.NewSessionService(
		sessionStore, userRepo, provider,
		cfg.Session.ActiveInterval, cfg.Session.TTL, log,
	)
	projectService := service.NewProjectService(projectRepo, deploymentRepo, audit, cfg.Subdomain, log)
	deploymentService := service.NewDeploymentService(projectRepo, deploymentRepo, audit, log)
	promotionService := service.NewPromotionService(projectRepo, deploymentRepo, audit, log)
	tokenService := service.NewTokenService(tokenRepo, audit, log)
	adminService := service.NewAdminService(userRepo, projectRepo, deploymentRepo, auditRepo)

	// --- Handlers ---
	sessionHandler := handler.NewSessionHandler(sessionService)
	projectHandler := handler.NewProjectHandler(projectService)
	deploymentHandler := handler.NewDeploymentHandler(deploymentService, promotionService)
	tokenHandler := handler.NewTokenHandler(tokenService)
	adminHandler := handler.NewAdminHandler(adminService)

	sessionAuth := middleware.Session(sessionService)
	workerAuth := middleware.WorkerToken(tokenService)

	// --- Session routes ---
	e.POST("/v1/session", sessionHandler.Create)
	e.GET("/v1/session", sessionHandler.Get, sessionAuth)
	e.DELETE("/v1/session", sessionHandler.Delete, sessionAuth)

	// --- Project routes ---
	projects := e.Group("/v1/projects", sessionAuth)
	projects.POST("", projectHandler.Create)
	projects.GET("", projectHandler.List)
	projects.GET("/:name", projectHandler.Get)
	projects.PUT("/:uuid/name", projectHandler.Rename)
	projects.DELETE("/:uuid", projectHandler.Remove)
	projects.POST("/:uuid/deployments", deploymentHandler.Create)
	projects.GET("/:uuid/deployments", deploymentHandler.List)

	// --- Deployment routes ---
	deployments := e.Group("/v1/deployments")
	deployments.POST("/:uuid/result", deploymentHandler.Result, workerAuth)
	deployments.POST("/:uuid/disable", deploymentHandler.Disable, sessionAuth)
	deployments.POST("/:uuid/enable", deploymentHandler.Enable, sessionAuth)
	deployments.POST("/:uuid/promote", deploymentHandler.Promote, sessionAuth)

	// --- Token routes ---
	tokens := e.Group("/v1/tokens", sessionAuth)
	tokens.POST("", tokenHandler.Create)
	tokens.GET("", tokenHandler.List)
	tokens.DELETE("/:uuid", tokenHandler.Remove)

	// --- Admin routes ---
	admin := e.Group("/v1/admin", sessionAuth, middleware.RBAC(domain.RoleAdmin))
	admin.GET("/stats", adminHandler.Stats)

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)           // liveness: is the process alive?
	e.GET("/health/ready", readinessHandler.Readiness) // readiness: are dependencies up?

	// --- Metrics ---
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	return e
}
