package api

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/mail-cci/phishguard/internal/api/middleware"
	"github.com/mail-cci/phishguard/internal/config"
)

var logger *zap.Logger

func InitLogger(l *zap.Logger) {
	logger = l
}

// NewServer creates and configures a new Gin server instance.
func NewServer(cfg *config.Config, handler *Handler) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	router := gin.New()

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	router.Use(gin.Recovery(),
		middleware.LoggingMiddleware(logger, cfg.LogLevel),
		middleware.PrometheusMetrics())

	setupRoutes(router, handler)

	return router
}

func setupRoutes(router *gin.Engine, handler *Handler) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"version": "1.0.0"})
	})

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/v1")
	{
		v1.POST("/assess", handler.Assess)
		v1.GET("/assessments/:id", handler.GetAssessment)
	}
}
