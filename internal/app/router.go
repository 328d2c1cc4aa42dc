package app

import (
	"learnpath_backend/docs"
	"learnpath_backend/internal/config"
	"learnpath_backend/internal/middleware"
	"learnpath_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, store *config.Store) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 公共路由(无需登录)
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/auth/register", c.auth.Register)
		public.POST("/auth/login", c.auth.Login)
	}

	// 需要授权的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(store))
	{
		authGroup.GET("/auth/me", c.auth.Me)

		authGroup.GET("/users/profile", c.user.GetProfile)
		authGroup.PUT("/users/profile", c.user.UpdateProfile)
		authGroup.GET("/users/skills", c.user.ListSkills)
		authGroup.POST("/users/skills", c.user.AddSkill)
		authGroup.DELETE("/users/skills/:id", c.user.RemoveSkill)

		authGroup.POST("/goals", c.learningGoal.CreateGoal)
		authGroup.GET("/goals", c.learningGoal.ListGoals)
		authGroup.GET("/goals/:id", c.learningGoal.GetGoal)
		authGroup.DELETE("/goals/:id", c.learningGoal.DeleteGoal)
		authGroup.POST("/goals/:id/preliminary-test", c.test.GeneratePreliminary)
		authGroup.GET("/goals/:id/courses", c.learningGoal.RecommendCourses)

		authGroup.POST("/tests/module", c.test.GenerateModuleTest)
		authGroup.GET("/tests/:id", c.test.GetTest)
		authGroup.POST("/tests/:id/scores", c.test.RecordScore)
		authGroup.POST("/tests/:id/feedback", c.test.SubmitFeedback)

		authGroup.POST("/modules", c.module.GenerateModule)
		authGroup.GET("/modules", c.module.ListModules)
		authGroup.GET("/modules/:id", c.module.GetModule)
		authGroup.POST("/modules/:id/revise", c.module.ReviseModule)

		authGroup.POST("/chat", c.chat.Chat)
	}
}
