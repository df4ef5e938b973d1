package app

import (
	"bcs_edu_backend/internal/config"
	"bcs_edu_backend/internal/middleware"
	"bcs_edu_backend/internal/model"
	"bcs_edu_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	router.GET("/metrics", monitoring.PrometheusHandler())

	a.registerPublicRoutes(router, c, cfg)

	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg), middleware.ActivityMiddleware(repos.user))
	{
		a.registerStudentRoutes(authGroup, c)
		a.registerFacultyRoutes(authGroup, c)
	}
}

func (a *App) registerPublicRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/auth/register", c.auth.Register)
		public.POST("/auth/login", c.auth.Login)

		public.GET("/modules/tree", c.module.GetTree)
		public.GET("/modules/:slug", c.module.GetBySlug)
		public.GET("/achievements", c.achievement.ListDefinitions)
		public.GET("/achievements/leaderboard", c.achievement.GetLeaderboard)

		// Anonymous visitors get the cached public variants.
		public.GET("/courses/:slug/map", c.course.GetPublicMap)
		public.GET("/curriculum/map", middleware.TryAuthMiddleware(cfg), c.curriculum.GetMap)
	}
}

func (a *App) registerStudentRoutes(group *gin.RouterGroup, c *controllers) {
	group.GET("/auth/profile", c.auth.GetProfile)

	group.POST("/courses/:slug/enroll", c.course.Enroll)
	group.GET("/courses/:slug/quest-map", c.course.GetQuestMap)

	progress := group.Group("/progress")
	{
		progress.POST("/module/complete", c.progress.CompleteModule)
		progress.POST("/module/start", c.progress.StartModule)
		progress.GET("/course/:courseId", c.progress.GetCourseProgress)
		progress.GET("/streaks", c.progress.GetStreaks)
	}

	group.GET("/achievements/mine", c.achievement.ListEarned)
}

func (a *App) registerFacultyRoutes(group *gin.RouterGroup, c *controllers) {
	faculty := group.Group("/faculty")
	faculty.Use(middleware.RoleMiddleware(model.Faculty))
	{
		faculty.PUT("/modules/:moduleId/prerequisites", c.module.UpdatePrerequisites)
	}
}
