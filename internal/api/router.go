package api

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	ginprometheus "github.com/zsais/go-gin-prometheus"
	"go.uber.org/zap"

	"persona-agent/internal/config"
	sharedMiddleware "persona-agent/shared/middleware"
)

// NewRouter builds the gin engine with logging, recovery, CORS, request
// metrics, /health, /metrics and the handler's routes. The /v1 group
// requires an inter-service token accepted by verifier.
func NewRouter(h *Handler, verifier sharedMiddleware.InterServiceTokenVerifier, cfg config.HTTPConfig, production bool, logger *zap.Logger) *gin.Engine {
	if production {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.RedirectTrailingSlash = true
	router.Use(sharedMiddleware.GinZapLogger(logger))
	router.Use(gin.Recovery())

	// No configured origins means no CORS headers at all.
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig := cors.DefaultConfig()
		if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
			corsConfig.AllowAllOrigins = true
		} else {
			corsConfig.AllowOrigins = cfg.AllowedOrigins
		}
		corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
		corsConfig.AllowHeaders = []string{
			"Origin", "Content-Length", "Content-Type", "Authorization",
			sharedMiddleware.RequestIDHeader, sharedMiddleware.InterServiceTokenHeader,
		}
		corsConfig.ExposeHeaders = []string{sharedMiddleware.RequestIDHeader}
		corsConfig.MaxAge = 12 * time.Hour
		router.Use(cors.New(corsConfig))
	}

	p := ginprometheus.NewPrometheus("gin")
	p.ReqCntURLLabelMappingFn = func(c *gin.Context) string {
		if path := c.FullPath(); path != "" {
			return path
		}
		return "unmatched"
	}
	router.Use(p.HandlerFunc())

	healthHandler := func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
	router.GET("/health", healthHandler)
	router.HEAD("/health", healthHandler)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	h.RegisterRoutes(router, sharedMiddleware.InterServiceAuth(verifier, logger))
	return router
}
