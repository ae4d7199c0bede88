package app

import (
	"github.com/etiennegwiavander/LinguaFlow2-sub007/docs"
	"github.com/etiennegwiavander/LinguaFlow2-sub007/internal/config"
	"github.com/etiennegwiavander/LinguaFlow2-sub007/internal/middleware"
	"github.com/etiennegwiavander/LinguaFlow2-sub007/internal/model"
	"github.com/etiennegwiavander/LinguaFlow2-sub007/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	a.registerPublicRoutes(router, c)

	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg), middleware.ActivityMiddleware(repos.user))
	{
		a.registerLearnerRoutes(authGroup, c)
		a.registerTutorRoutes(authGroup, c)
	}

	a.registerAdminRoutes(router, c, repos, cfg)
}

func (a *App) registerPublicRoutes(router *gin.Engine, c *controllers) {
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)
	}
}

func (a *App) registerLearnerRoutes(rg *gin.RouterGroup, c *controllers) {
	rg.GET("/profile", c.auth.Profile)
	rg.PUT("/profile", c.auth.UpdateProfile)

	// Lessons and their generated sub-topic plans.
	rg.GET("/lessons", c.lesson.List)
	rg.POST("/lessons", c.lesson.Schedule)
	rg.GET("/lessons/:id", c.lesson.Get)
	rg.PUT("/lessons/:id/status", c.lesson.UpdateStatus)
	rg.POST("/lessons/:id/generate", c.lesson.GeneratePlan)
	rg.GET("/lessons/:id/progress", c.completion.Progress)

	// Interactive documents, keyed by sub-topic id.
	rg.GET("/lessons/:id/subtopics/:subTopicId/document", c.document.Get)

	// Completion ledger.
	rg.POST("/subtopics/:subTopicId/complete", c.completion.Complete)
	rg.GET("/subtopics/:subTopicId/status", c.completion.Status)
	rg.GET("/completions", c.completion.History)

	rg.GET("/subtopics/:subTopicId/audio", c.media.List)
}

func (a *App) registerTutorRoutes(rg *gin.RouterGroup, c *controllers) {
	tutor := rg.Group("")
	tutor.Use(middleware.RoleMiddleware(model.Tutor))
	{
		tutor.POST("/lessons/:id/subtopics/:subTopicId/regenerate", c.document.Regenerate)
		tutor.POST("/subtopics/:subTopicId/audio", c.media.UploadAudio)
	}
}

func (a *App) registerAdminRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	admin := router.Group("/api/admin")
	admin.Use(middleware.AuthMiddleware(cfg), middleware.RoleMiddleware(model.Admin))
	{
		admin.POST("/learners/:learnerId/migrate-legacy", c.admin.MigrateLegacy)
		admin.GET("/diagnostics/fallback-ratio", c.admin.FallbackStats)
		admin.POST("/lessons/:id/warm", c.admin.WarmBatch)
		admin.DELETE("/role-cache", c.admin.ClearRoleCache)
	}
}
