package router

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/churchcomm/admin-api/internal/middleware"
	"github.com/churchcomm/admin-api/pkg/logger"
)

// Handler registers its routes on a group.
type Handler interface {
	RegisterRoutes(*gin.RouterGroup)
}

// AuthHandler additionally registers routes behind authentication.
type AuthHandler interface {
	Handler
	RegisterProtectedRoutes(*gin.RouterGroup)
}

type Config struct {
	RateLimitRPS  float64
	RateBurst     int
	MetricsPrefix string
}

type Router struct {
	engine    *gin.Engine
	auth      *middleware.AuthMiddleware
	authH     AuthHandler
	contactH  Handler
	groupH    Handler
	templateH Handler
	messageH  Handler
	birthdayH Handler
	db        *sqlx.DB
	metrics   *httpMetrics
}

type httpMetrics struct {
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
}

func New(
	auth *middleware.AuthMiddleware,
	authH AuthHandler,
	contactH, groupH, templateH, messageH, birthdayH Handler,
	db *sqlx.DB,
	log *logger.Logger,
	cfg Config,
) *Router {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	r := &Router{
		engine:    engine,
		auth:      auth,
		authH:     authH,
		contactH:  contactH,
		groupH:    groupH,
		templateH: templateH,
		messageH:  messageH,
		birthdayH: birthdayH,
		db:        db,
		metrics:   newHTTPMetrics(cfg.MetricsPrefix),
	}

	engine.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.Logger(log),
		r.metricsMiddleware(),
	)

	if cfg.RateLimitRPS > 0 {
		limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateBurst)
		engine.Use(limiter.RateLimit())
	}

	return r
}

func (r *Router) Setup() {
	r.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.engine.Group("/api/v1")

	health := api.Group("/health")
	{
		health.GET("/live", r.livenessCheck)
		health.GET("/ready", r.readinessCheck)
	}

	// public routes
	r.authH.RegisterRoutes(api)

	// everything else requires a church token
	protected := api.Group("")
	protected.Use(r.auth.Authenticate())

	r.authH.RegisterProtectedRoutes(protected)
	r.contactH.RegisterRoutes(protected)
	r.groupH.RegisterRoutes(protected)
	r.templateH.RegisterRoutes(protected)
	r.messageH.RegisterRoutes(protected)
	r.birthdayH.RegisterRoutes(protected)
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}

func (r *Router) livenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "success", "data": gin.H{"status": "healthy"}})
}

func (r *Router) readinessCheck(c *gin.Context) {
	if r.db != nil {
		if err := r.db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "error", "message": "database unavailable"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "data": gin.H{"status": "ready"}})
}

func newHTTPMetrics(prefix string) *httpMetrics {
	return &httpMetrics{
		requestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: prefix + "_request_duration_seconds",
				Help: "Duration of HTTP requests in seconds",
			},
			[]string{"method", "path", "status"},
		),
		requestTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
	}
}

func (r *Router) metricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.FullPath()

		c.Next()

		status := strconv.Itoa(c.Writer.Status())
		r.metrics.requestDuration.WithLabelValues(c.Request.Method, path, status).Observe(time.Since(start).Seconds())
		r.metrics.requestTotal.WithLabelValues(c.Request.Method, path, status).Inc()
	}
}
