package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/folio-social/folio/pkg/logging"
)

// HealthChecker reports whether the backing store is reachable
type HealthChecker interface {
	Health(ctx context.Context) error
}

// Router sets up API routes
type Router struct {
	accounts *AccountHandler
	health   HealthChecker
	timeout  time.Duration
	metrics  bool
	logger   *zap.Logger
}

// RouterOption customizes a Router
type RouterOption func(*Router)

// WithRequestTimeout bounds every request context
func WithRequestTimeout(d time.Duration) RouterOption {
	return func(r *Router) { r.timeout = d }
}

// WithMetrics exposes the Prometheus registry on /metrics
func WithMetrics(enabled bool) RouterOption {
	return func(r *Router) { r.metrics = enabled }
}

// NewRouter creates a new API router
func NewRouter(accounts AccountService, follows FollowGraph, health HealthChecker, opts ...RouterOption) *Router {
	r := &Router{
		accounts: NewAccountHandler(accounts, follows),
		health:   health,
		timeout:  5 * time.Second,
		logger:   logging.WithComponent("api-router"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// SetupRoutes sets up all API routes
func (r *Router) SetupRoutes(engine *gin.Engine) {
	engine.Use(RequestLogger(r.logger), Tracing(), Timeout(r.timeout))

	engine.GET("/health", r.healthHandler)
	if r.metrics {
		engine.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	user := engine.Group("/user")
	user.POST("/new_user", r.accounts.Register)
	user.POST("/delete", r.accounts.Delete)
	user.GET("/authenticate", r.accounts.Authenticate)
	user.GET("/search", r.accounts.Search)
	user.POST("/follow", r.accounts.Follow)
	user.POST("/unfollow", r.accounts.Unfollow)

	users := engine.Group("/users/:id")
	users.GET("", r.accounts.Get)
	users.GET("/details", r.accounts.Details)
	users.GET("/folios", r.accounts.Folios)
	users.POST("/folios", r.accounts.SetFolios)

	engine.NoRoute(func(c *gin.Context) {
		respond(c, http.StatusNotFound, "Route not found")
	})
}

// healthHandler handles health check requests
func (r *Router) healthHandler(c *gin.Context) {
	if err := r.health.Health(c.Request.Context()); err != nil {
		r.logger.Warn("Health check failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "UNAVAILABLE",
			"service": "folio-api",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":  "OK",
		"service": "folio-api",
	})
}
