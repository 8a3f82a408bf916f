package router

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/health-api/internal/handler/prometheus"
	"github.com/jwalitptl/health-api/internal/middleware"
	"github.com/jwalitptl/health-api/pkg/validator"
)

const (
	apiPrefix   = "/api/v1"
	metricsPath = "/metrics"
)

type Handler interface {
	RegisterRoutes(*gin.RouterGroup)
}

// Handlers are the route groups mounted under /api/v1. Auth is only
// mounted when an AuthMiddleware is configured.
type Handlers struct {
	Health   Handler
	Auth     Handler
	Records  Handler
	Insights Handler
	Analysis Handler
	Reports  Handler
	Export   Handler
	Audit    Handler
}

type RouterConfig struct {
	// Timeout is the request deadline for every route except those that
	// wait on the analysis provider.
	Timeout      time.Duration
	MaxBodyBytes int64
	CORSConfig   middleware.CORSConfig
	// RateLimit is nil when per-client limiting is off.
	RateLimit *middleware.RateLimiterConfig
}

type Router struct {
	engine   *gin.Engine
	auth     *middleware.AuthMiddleware
	metrics  *prometheus.Handler
	handlers Handlers
}

// NewRouter builds the engine and its global middleware. auth and metrics
// may be nil.
func NewRouter(auth *middleware.AuthMiddleware, metrics *prometheus.Handler, handlers Handlers, config RouterConfig) *Router {
	validator.RegisterGin()

	engine := gin.New()

	r := &Router{
		engine:   engine,
		auth:     auth,
		metrics:  metrics,
		handlers: handlers,
	}

	engine.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
	)
	if metrics != nil {
		engine.Use(metrics.Middleware())
	}
	engine.Use(
		middleware.ErrorHandler(),
		middleware.SecurityHeaders(middleware.DefaultSecurityConfig()),
		middleware.CORS(config.CORSConfig),
	)

	sizeLimit := middleware.DefaultSizeLimitConfig()
	if config.MaxBodyBytes > 0 {
		sizeLimit.MaxBodySize = config.MaxBodyBytes
	}
	engine.Use(middleware.SizeLimit(sizeLimit))

	if config.RateLimit != nil {
		engine.Use(middleware.NewRateLimiter(*config.RateLimit).RateLimit())
	}

	compress := middleware.DefaultCompressConfig()
	compress.SkipPaths = []string{apiPrefix + "/export", metricsPath}
	engine.Use(middleware.Compress(compress))

	timeout := middleware.DefaultTimeoutConfig()
	if config.Timeout > 0 {
		timeout.Duration = config.Timeout
	}
	timeout.SkipPaths = []string{apiPrefix + "/analyze", apiPrefix + "/reports/generate"}
	engine.Use(middleware.Timeout(timeout))

	return r
}

func (r *Router) Setup() {
	if r.metrics != nil {
		r.engine.GET(metricsPath, r.metrics.Handler())
	}

	api := r.engine.Group(apiPrefix)

	register(api, r.handlers.Health)

	if r.auth != nil {
		register(api, r.handlers.Auth)
	}

	// Everything below serves health data.
	protected := api.Group("")
	protected.Use(middleware.Cache(middleware.NoStoreConfig()))
	if r.auth != nil {
		protected.Use(r.auth.Authenticate())
	}

	register(protected, r.handlers.Records)
	register(protected, r.handlers.Insights)
	register(protected, r.handlers.Analysis)
	register(protected, r.handlers.Reports)
	register(protected, r.handlers.Export)
	register(protected, r.handlers.Audit)
}

func register(rg *gin.RouterGroup, h Handler) {
	if h != nil {
		h.RegisterRoutes(rg)
	}
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}
