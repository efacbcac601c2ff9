package api

import (
	"github.com/RishiKendai/overlap/internal/config"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(cfg *config.Config, checker Checker, corpus Corpus) *gin.Engine {
	router := gin.New()

	handler := NewHandler(cfg, checker, corpus)

	// Create rate limiter
	rateLimiter := NewRateLimiter(cfg.RateLimitRPS, int(cfg.RateLimitRPS*2))

	// Middleware
	router.Use(gin.Recovery())
	router.Use(RequestLogMiddleware())
	router.Use(MetricsMiddleware())
	router.Use(ErrorHandlerMiddleware())

	// Health endpoint (no auth)
	router.GET("/health", handler.Health)

	// API routes (with auth and rate limiting)
	api := router.Group("/api/v1")
	api.Use(JWTAuthMiddleware(cfg.JWTSecret, cfg.JWTIssuer))
	api.Use(RateLimitMiddleware(rateLimiter))
	{
		api.GET("/algorithms", handler.Algorithms)

		api.POST("/documents", handler.AddDocument)
		api.POST("/documents/import", handler.ImportDocuments)
		api.GET("/documents", handler.ListDocuments)

		api.POST("/check", handler.Check)
		api.POST("/checks", handler.SubmitCheck)
		api.GET("/checks/:id/status", handler.CheckStatus)
		api.GET("/reports/:id", handler.GetReport)
	}

	return router
}
