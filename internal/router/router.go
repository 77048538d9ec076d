package router

import (
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/jwalitptl/dental-admin/internal/handler"
	"github.com/jwalitptl/dental-admin/internal/middleware"
	"github.com/jwalitptl/dental-admin/pkg/errors"
	"github.com/jwalitptl/dental-admin/pkg/httputil"
)

const (
	APIPrefix = "/api/v1"
	AppPrefix = APIPrefix + "/app"
)

type Router struct {
	engine  *gin.Engine
	gate    *middleware.Gate
	public  []handler.Registrar
	app     []handler.Registrar
	config  RouterConfig
	metrics *routerMetrics
}

type routerMetrics struct {
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	errorTotal      *prometheus.CounterVec
}

type RouterConfig struct {
	Mode          string
	CORSConfig    middleware.CORSConfig
	Security      middleware.SecurityConfig
	MaxBodyBytes  int64
	StaticDir     string
	MetricsPrefix string
	Registerer    prometheus.Registerer
}

// Handlers groups the resource handlers by audience. Public handlers are
// mounted under /api/v1, App handlers under /api/v1/app behind the gate.
type Handlers struct {
	Public []handler.Registrar
	App    []handler.Registrar
}

func NewRouter(gate *middleware.Gate, handlers Handlers, config RouterConfig) *Router {
	if config.Mode != "" {
		gin.SetMode(config.Mode)
	}
	if config.MaxBodyBytes == 0 {
		config.MaxBodyBytes = 1 << 20
	}

	engine := gin.New()
	engine.HandleMethodNotAllowed = true

	r := &Router{
		engine:  engine,
		gate:    gate,
		public:  handlers.Public,
		app:     handlers.App,
		config:  config,
		metrics: initRouterMetrics(config.MetricsPrefix, config.Registerer),
	}

	engine.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		middleware.ErrorHandler(),
		r.metricsMiddleware(),
		middleware.CORS(config.CORSConfig),
		middleware.SecurityHeaders(config.Security),
		middleware.SizeLimit(config.MaxBodyBytes),
	)
	// The gate runs for every path so page routes served from StaticDir get
	// the same redirects as the API.
	if gate != nil {
		engine.Use(gate.Handle())
	}

	return r
}

func (r *Router) Setup() {
	api := r.engine.Group(APIPrefix)
	api.Use(func(c *gin.Context) {
		c.Header("X-API-Version", "1.0")
		c.Next()
	})

	for _, h := range r.public {
		h.RegisterRoutes(api)
	}

	app := api.Group("/app")
	app.Use(middleware.Cache(middleware.NoStoreConfig()))
	for _, h := range r.app {
		h.RegisterRoutes(app)
	}

	r.setupFallback()
}

// setupFallback serves the built frontend when StaticDir is set. Unknown
// API paths always get a JSON 404.
func (r *Router) setupFallback() {
	dir := r.config.StaticDir
	if dir != "" {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			dir = ""
		}
	}
	if dir != "" {
		r.engine.Static("/assets", filepath.Join(dir, "assets"))
		r.engine.StaticFile("/favicon.ico", filepath.Join(dir, "favicon.ico"))
	}

	r.engine.NoRoute(func(c *gin.Context) {
		if c.Writer.Written() {
			return
		}
		if dir == "" || strings.HasPrefix(c.Request.URL.Path, "/api/") || c.Request.Method != http.MethodGet {
			httputil.RespondWithError(c, errors.NotFound("route", nil))
			return
		}
		c.File(filepath.Join(dir, "index.html"))
	})
	r.engine.NoMethod(func(c *gin.Context) {
		c.AbortWithStatusJSON(http.StatusMethodNotAllowed, httputil.Response{
			Status:  "error",
			Message: "Método no permitido",
		})
	})
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}

func initRouterMetrics(prefix string, reg prometheus.Registerer) *routerMetrics {
	if prefix == "" {
		prefix = "dental_admin_http"
	}
	m := &routerMetrics{
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    prefix + "_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path", "status"},
		),
		requestTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		errorTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_errors_total",
				Help: "Total number of HTTP errors",
			},
			[]string{"method", "path", "class"},
		),
	}
	if reg != nil {
		reg.MustRegister(m.requestDuration, m.requestTotal, m.errorTotal)
	}
	return m
}

func (r *Router) metricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		// unmatched paths share one label to keep cardinality bounded
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		code := c.Writer.Status()
		status := strconv.Itoa(code)

		r.metrics.requestDuration.WithLabelValues(c.Request.Method, path, status).Observe(time.Since(start).Seconds())
		r.metrics.requestTotal.WithLabelValues(c.Request.Method, path, status).Inc()

		switch {
		case code >= 500:
			r.metrics.errorTotal.WithLabelValues(c.Request.Method, path, "server").Inc()
		case code >= 400:
			r.metrics.errorTotal.WithLabelValues(c.Request.Method, path, "client").Inc()
		}
	}
}
