package app

import (
	"havenmind_backend/docs"
	"havenmind_backend/internal/util"
	"havenmind_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	router.GET("/", a.rootHandler)

	api := router.Group("/api")
	{
		api.GET("/health", c.health.HealthCheck)

		a.registerSanctuaryRoutes(api, c)
		a.registerSkillsRoutes(api, c)
		a.registerStoryRoutes(api, c)
	}
}

func (a *App) registerSanctuaryRoutes(rg *gin.RouterGroup, c *controllers) {
	sanctuary := rg.Group("/sanctuary")
	{
		sanctuary.POST("/journal-entry", c.sanctuary.CreateJournalEntry)
		sanctuary.GET("/elements/:sessionId", c.sanctuary.GetElements)
		sanctuary.GET("/journal/:sessionId", c.sanctuary.GetJournalEntries)
		sanctuary.GET("/stats/:sessionId", c.sanctuary.GetStats)
		sanctuary.DELETE("/elements/:elementId", c.sanctuary.DeleteElement)
		sanctuary.GET("/session/new", c.sanctuary.NewSession)
	}
}

func (a *App) registerSkillsRoutes(rg *gin.RouterGroup, c *controllers) {
	skills := rg.Group("/skills")
	{
		skills.POST("/practice", c.skills.Practice)
		skills.GET("/guidance/:skillName", c.skills.Guidance)
		skills.GET("/statistics/:sessionId", c.skills.Statistics)
		skills.GET("/recommendations/:sessionId", c.skills.Recommendations)
		skills.GET("/available/list", c.skills.Available)
		skills.POST("/unlock/:sessionId", c.skills.Unlock)
		skills.GET("/:sessionId", c.skills.GetSkills)
	}
}

func (a *App) registerStoryRoutes(rg *gin.RouterGroup, c *controllers) {
	story := rg.Group("/story")
	{
		story.POST("/generate", c.story.Generate)
		story.POST("/generate-image", c.story.GenerateImage)
		story.GET("/history/:sessionId", c.story.History)
		story.GET("/recommend/:sessionId", c.story.Recommend)
		story.GET("/styles", c.story.Styles)
		story.GET("/themes", c.story.Themes)
		story.DELETE("/:storyId", c.story.Delete)
	}
}

// rootHandler advertises the API surface for client discovery.
func (a *App) rootHandler(ctx *gin.Context) {
	util.Success(ctx, gin.H{
		"name":    "HavenMind API",
		"version": "1.0.0",
		"endpoints": gin.H{
			"sanctuary": "/api/sanctuary",
			"skills":    "/api/skills",
			"story":     "/api/story",
			"health":    "/api/health",
			"docs":      "/swagger/index.html",
			"metrics":   "/metrics",
		},
	})
}
