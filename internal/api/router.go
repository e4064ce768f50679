package api

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/nebulasur/ventia/internal/api/middleware"
	"github.com/nebulasur/ventia/internal/engine"
	"github.com/nebulasur/ventia/internal/kb"
)

// RouterConfig holds configuration for the router
type RouterConfig struct {
	AdminAPIKey  string
	AllowOrigins []string
	KBDir        string
}

// SetupRouter sets up the Gin router
func SetupRouter(eng *engine.Engine, store *kb.Store, cfg RouterConfig, logger *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.Use(middleware.CORS(cfg.AllowOrigins))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	handler := NewHandler(eng, store, cfg.KBDir, logger)

	apiGroup := r.Group("/api")
	apiGroup.POST("/chat", handler.Chat)

	// Admin API (requires API key)
	adminGroup := apiGroup.Group("/admin")
	adminGroup.Use(middleware.Auth(cfg.AdminAPIKey))
	adminGroup.POST("/reload", handler.Reload)

	return r
}
