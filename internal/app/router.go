package app

import (
	"course_studio_backend/docs"
	"course_studio_backend/internal/config"
	"course_studio_backend/internal/middleware"
	"course_studio_backend/internal/model"
	"course_studio_backend/pkg/monitoring"
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))
	router.GET("/metrics", monitoring.PrometheusHandler())
	router.GET("/api/health", c.health.HealthCheck)

	// 公共接口
	public := router.Group("/api")
	{
		public.POST("/auth/register", c.auth.Register)
		public.POST("/auth/login", c.auth.Login)

		// 学员端读取当前发布版本，登录与否均可访问
		public.GET("/courses/:id/current",
			middleware.TryAuthMiddleware(cfg),
			c.courseVersion.GetCurrentVersion)
	}

	// 需要登录的接口
	authorized := router.Group("/api")
	authorized.Use(middleware.AuthMiddleware(cfg))
	authorized.Use(middleware.ActivityMiddleware(repos.user))
	{
		authorized.GET("/courses", c.course.ListCourses)
		authorized.GET("/courses/:id", c.course.GetCourse)
	}

	// 教师端接口
	teacher := router.Group("/api/teacher")
	teacher.Use(middleware.AuthMiddleware(cfg))
	teacher.Use(middleware.ActivityMiddleware(repos.user))
	teacher.Use(middleware.RoleMiddleware(model.Teacher, model.Admin))
	{
		teacher.POST("/courses", c.course.CreateCourse)
		teacher.PUT("/courses/:id", c.course.UpdateCourse)
		teacher.DELETE("/courses/:id", c.course.DeleteCourse)

		teacher.POST("/courses/:id/modules", c.course.AddModule)
		teacher.PUT("/courses/:id/modules/reorder", c.course.ReorderModules)
		teacher.PUT("/modules/:moduleId", c.course.UpdateModule)
		teacher.DELETE("/modules/:moduleId", c.course.DeleteModule)

		teacher.POST("/modules/:moduleId/activities", c.course.AddActivity)
		teacher.PUT("/modules/:moduleId/activities/reorder", c.course.ReorderActivities)
		teacher.PUT("/activities/:activityId", c.course.UpdateActivity)
		teacher.DELETE("/activities/:activityId", c.course.DeleteActivity)
		teacher.POST("/activities/:activityId/upload", c.course.UploadActivityAsset)

		teacher.POST("/courses/:id/draft", c.courseVersion.CreateDraft)
		teacher.POST("/course-versions/publish", c.courseVersion.PublishVersion)
		teacher.GET("/courses/:id/versions", c.courseVersion.ListVersions)
		teacher.GET("/course-versions/:versionId", c.courseVersion.GetVersion)
		teacher.GET("/course-versions/:versionId/changelog", c.courseVersion.GetChangelog)
	}

	router.NoRoute(func(ctx *gin.Context) {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "route not found"})
	})
}
