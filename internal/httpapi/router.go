package httpapi

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/feast-serving/engine/internal/featurestore"
	"github.com/feast-serving/engine/internal/health"
	"github.com/feast-serving/engine/internal/middleware/logging"
	"github.com/feast-serving/engine/internal/middleware/recovery"
	"github.com/feast-serving/engine/pkg/logger"
)

// RouterConfig controls which cross-cutting middleware and routes get wired
// in, mirroring internal/api/router.go's RouterConfig.
type RouterConfig struct {
	LoggingConfig  logging.Config
	RecoveryConfig recovery.Config
	EnableMetrics  bool
}

// DefaultRouterConfig mirrors the teacher's DefaultRouterConfig, trimmed to
// the routes this adapter actually serves.
func DefaultRouterConfig() RouterConfig {
	return RouterConfig{
		LoggingConfig: logging.Config{
			SkipPaths:      []string{"/health", "/metrics"},
			MaxBodyLogSize: 4096,
		},
		RecoveryConfig: recovery.Config{},
	}
}

// SetupRouter wires recovery, request logging, and the feature-serving
// routes onto engine.
func SetupRouter(
	engine *gin.Engine,
	log logger.Logger,
	cfg RouterConfig,
	store *featurestore.FeatureStore,
	checker *health.Checker,
) *gin.Engine {
	engine.Use(recovery.Handler(log, cfg.RecoveryConfig))
	engine.Use(logging.RequestLogger(log, cfg.LoggingConfig))

	engine.GET("/health", healthHandler(checker))

	if cfg.EnableMetrics {
		engine.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	h := &featureHandler{store: store}
	engine.POST("/get-online-features", h.handle)

	engine.NoRoute(func(c *gin.Context) {
		c.JSON(404, gin.H{"code": "NOT_FOUND", "message": "the requested resource was not found"})
	})

	return engine
}
