package main

import (
	"admin-service/internal/handler"
	"admin-service/internal/middleware"
	"admin-service/internal/model"
	"admin-service/pkg/config"
	"admin-service/pkg/database"
	"admin-service/pkg/jwtutil"
	"admin-service/pkg/logger"
	"admin-service/prometheus"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

func main() {
	// Load configuration from .env file and environment variables
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger with config
	logger.InitLogger(cfg)
	log := logger.GetLogger()
	log.Info("Starting admin service...", zap.String("environment", cfg.Server.Env))

	// Initialize database
	if err := database.InitDB(cfg); err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	log.Info("Database connection established")

	// Initialize JWT utility
	jwtutil.Initialize(&cfg.JWT)
	log.Info("JWT utility initialized")

	// Invitation lifetime from config
	handler.InvitationExpiryHours = cfg.Invitation.ExpiryHours

	// Initialize Echo framework
	e := echo.New()

	// Errors escaping any handler are rendered as JSON at this boundary
	e.HTTPErrorHandler = middleware.ErrorHandler()

	// Apply global middleware - order matters
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())
	e.Use(echomiddleware.CSRFWithConfig(echomiddleware.CSRFConfig{
		Skipper: middleware.CSRFSkipper,
	}))
	e.Use(middleware.RequestIDMiddleware)
	e.Use(logger.Middleware(log))
	e.Use(prometheus.MetricsMiddleware())

	// Public routes - no authentication required
	e.GET("/health", handler.HealthCheck)
	e.GET("/metrics", handler.MetricsHandler)

	// Authentication routes
	auth := e.Group("/auth")
	auth.POST("/login", handler.Login)
	auth.POST("/invitations/accept", handler.AcceptInvitation)

	// API routes - all require authentication
	api := e.Group("/api")
	api.Use(middleware.AuthMiddleware)

	// Own profile - any role
	profile := api.Group("/profile")
	profile.GET("", handler.GetProfile)
	profile.PATCH("", handler.UpdateProfile)
	profile.POST("/change-password", handler.ChangePassword)

	// Read-only directory endpoints - viewer and up
	directory := api.Group("", middleware.RequireMinRole(model.RoleViewer))
	directory.GET("/users", handler.ListUsers)
	directory.GET("/users/:id", handler.GetUser)
	directory.GET("/organisations", handler.ListOrganisations)
	directory.GET("/organisations/:id", handler.GetOrganisation)
	directory.GET("/feature-flags", handler.ListFeatureFlags)
	directory.GET("/feature-flags/:key", handler.GetFeatureFlag)

	// Experiments - analyst and up
	experiments := api.Group("/experiments", middleware.RequireMinRole(model.RoleAnalyst))
	experiments.GET("", handler.ListExperiments)
	experiments.GET("/:id", handler.GetExperiment)
	experiments.POST("", handler.CreateExperiment)
	experiments.PATCH("/:id", handler.UpdateExperiment)
	experiments.POST("/:id/results", handler.UploadExperimentResults)
	experiments.DELETE("/:id", handler.DeleteExperiment)

	// Management endpoints - admin and up
	admin := api.Group("", middleware.RequireMinRole(model.RoleAdmin))
	admin.POST("/users", handler.CreateUser)
	admin.PATCH("/users/:id", handler.UpdateUser)
	admin.DELETE("/users/:id", handler.DeleteUser)

	admin.POST("/organisations", handler.CreateOrganisation)
	admin.PATCH("/organisations/:id", handler.UpdateOrganisation)

	admin.GET("/users/:id/access", handler.ListUserAccess)
	admin.POST("/access", handler.GrantAccess)
	admin.DELETE("/users/:id/access/:application", handler.RevokeAccess)

	admin.POST("/invitations", handler.CreateInvitation)
	admin.GET("/invitations", handler.ListInvitations)
	admin.POST("/invitations/:id/revoke", handler.RevokeInvitation)

	admin.POST("/feature-flags", handler.CreateFeatureFlag)
	admin.PATCH("/feature-flags/:key", handler.UpdateFeatureFlag)
	admin.POST("/feature-flags/:key/status", handler.SetFeatureFlagStatus)

	admin.POST("/imports", handler.ImportUsers)
	admin.GET("/imports/:id", handler.GetImportBatch)
	admin.GET("/imports/:id/errors", handler.ListImportErrors)

	// Destructive operations - super_admin only
	super := api.Group("", middleware.RequireRole(model.RoleSuperAdmin))
	super.DELETE("/organisations/:id", handler.DeleteOrganisation)

	// Get server port from configuration
	port := cfg.Server.Port

	// Start server
	log.Info("Starting server", zap.String("port", port))
	if err := e.Start(":" + port); err != nil {
		log.Fatal("Failed to start server", zap.Error(err))
	}
}
