package api

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"portfolio/internal/analytics"
	"portfolio/internal/api/middleware"
	"portfolio/internal/assets"
	"portfolio/internal/auth"
	"portfolio/internal/content"
	"portfolio/internal/storage"
)

// LoginLimits 汇总登录限流参数。
type LoginLimits struct {
	RateLimitPerHour int
	LockThreshold    int
	LockTTL          time.Duration
}

// RegisterRoutes 注册 /api 下的全部路由；写操作统一挂管理员令牌闸门。
func RegisterRoutes(
	router *gin.Engine,
	contentRepo *content.Repository,
	analyticsRepo *analytics.Repository,
	manager *assets.Manager,
	store storage.ObjectStore,
	authService *auth.Service,
	redisClient redis.UniversalClient,
	logger *slog.Logger,
	limits LoginLimits,
) {
	authHandler := NewAuthHandler(authService, redisClient, logger, limits.RateLimitPerHour, limits.LockThreshold, limits.LockTTL)
	profileHandler := NewProfileHandler(contentRepo, manager, store, logger)
	projectHandler := NewProjectHandler(contentRepo, manager, logger)
	analyticsHandler := NewAnalyticsHandler(analyticsRepo, logger)
	adminOnly := middleware.AdminAuthMiddleware(authService)

	apiGroup := router.Group("/api")
	{
		authGroup := apiGroup.Group("/auth")
		{
			authGroup.POST("/login", authHandler.Login)
		}

		profileGroup := apiGroup.Group("/profile")
		{
			profileGroup.GET("", profileHandler.GetProfile)
			profileGroup.GET("/cv/download", profileHandler.DownloadCV)

			profileGroup.PUT("", adminOnly, profileHandler.UpdateProfile)
			profileGroup.POST("/photo", adminOnly, profileHandler.UploadPhoto)
			profileGroup.DELETE("/photo", adminOnly, profileHandler.DeletePhoto)
			profileGroup.POST("/cv", adminOnly, profileHandler.UploadCV)
			profileGroup.PUT("/cv/rename", adminOnly, profileHandler.RenameCV)
			profileGroup.DELETE("/cv", adminOnly, profileHandler.DeleteCV)
			profileGroup.PUT("/skills", adminOnly, profileHandler.ReplaceSkills)
			profileGroup.PUT("/experiences", adminOnly, profileHandler.ReplaceExperiences)
			profileGroup.PUT("/formations", adminOnly, profileHandler.ReplaceFormations)
			profileGroup.PUT("/contacts", adminOnly, profileHandler.ReplaceContacts)
		}

		projectGroup := apiGroup.Group("/projects")
		{
			projectGroup.GET("", projectHandler.ListProjects)

			projectGroup.POST("", adminOnly, projectHandler.CreateProject)
			projectGroup.PUT("/:id", adminOnly, projectHandler.UpdateProject)
			projectGroup.DELETE("/:id", adminOnly, projectHandler.DeleteProject)
			projectGroup.POST("/:id/image", adminOnly, projectHandler.UploadImage)
			projectGroup.DELETE("/:id/image", adminOnly, projectHandler.DeleteImage)
		}

		analyticsGroup := apiGroup.Group("/analytics")
		{
			analyticsGroup.POST("/visit", analyticsHandler.RecordVisit)
			analyticsGroup.PUT("/leave", analyticsHandler.RecordLeave)
			analyticsGroup.GET("/stats", adminOnly, analyticsHandler.Stats)
		}
	}
}
