// Package http wires the node normalization service's gin router: every
// public endpoint of spec.md §6, plus the cross-cutting middleware stack
// (CORS, rate limiting, request logging).
package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nodenorm/node-normalizer/internal/infrastructure/monitoring/logging"
	"github.com/nodenorm/node-normalizer/internal/infrastructure/monitoring/prometheus"
	"github.com/nodenorm/node-normalizer/internal/interfaces/http/handlers"
	"github.com/nodenorm/node-normalizer/internal/interfaces/http/middleware"
)

// Handlers bundles every handler the router wires to a route. Built by the
// composition root (cmd/normalizer-server) and passed to NewRouter.
type Handlers struct {
	Health    *handlers.HealthHandler
	Normalize *handlers.NormalizeHandler
	SetID     *handlers.SetIDHandler
	Message   *handlers.MessageHandler
	Metadata  *handlers.MetadataHandler
}

// adaptMiddleware lets a standard net/http middleware (func(http.Handler)
// http.Handler) run as a gin.HandlerFunc, so the CORS/ratelimit/logging
// middlewares keep their framework-agnostic signature.
func adaptMiddleware(mw func(http.Handler) http.Handler) gin.HandlerFunc {
	return func(c *gin.Context) {
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c.Request = r
			c.Next()
		})
		mw(next).ServeHTTP(c.Writer, c.Request)
	}
}

// NewRouter builds the gin.Engine serving every endpoint of spec.md §6.
// metricsCollector and appMetrics are optional: pass nil for both to disable
// the /metrics endpoint and per-request metric recording (used by tests that
// don't need a collector wired up).
func NewRouter(h Handlers, log logging.Logger, mode string, metricsCollector prometheus.MetricsCollector, appMetrics *prometheus.AppMetrics) *gin.Engine {
	gin.SetMode(mode)
	r := gin.New()
	r.Use(gin.Recovery())

	r.Use(adaptMiddleware(middleware.CORS(middleware.DefaultCORSConfig())))

	rlConfig := middleware.DefaultRateLimitConfig()
	limiter := middleware.NewTokenBucketLimiter(rlConfig.RequestsPerSecond, rlConfig.BurstSize, time.Minute)
	r.Use(adaptMiddleware(middleware.RateLimit(limiter, rlConfig)))
	r.Use(adaptMiddleware(middleware.RequestLogging(log, middleware.DefaultLoggingConfig())))

	if appMetrics != nil {
		r.Use(adaptMiddleware(middleware.Metrics(appMetrics)))
	}
	if metricsCollector != nil {
		r.GET("/metrics", gin.WrapH(metricsCollector.Handler()))
	}

	r.GET("/healthz", h.Health.Liveness)
	r.GET("/readyz", h.Health.Readiness)
	r.GET("/status", h.Health.Status)

	r.GET("/get_normalized_nodes", h.Normalize.GetPost)
	r.POST("/get_normalized_nodes", h.Normalize.GetPost)

	r.GET("/get_setid", h.SetID.Get)
	r.POST("/get_setid", h.SetID.Post)

	r.POST("/query", h.Message.Query)
	r.POST("/asyncquery", h.Message.AsyncQuery)

	r.GET("/get_semantic_types", h.Metadata.SemanticTypes)
	r.GET("/get_curie_prefixes", h.Metadata.CuriePrefixes)
	r.POST("/get_curie_prefixes", h.Metadata.CuriePrefixes)
	r.GET("/get_allowed_conflations", h.Metadata.AllowedConflations)

	return r
}
