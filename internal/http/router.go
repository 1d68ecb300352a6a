package http

import (
	"log/slog"
	"strconv"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"go.ngs.io/tidegrid/internal/metrics"
	"go.ngs.io/tidegrid/internal/usecase"
)

// RouterConfig configures SetupRouter.
type RouterConfig struct {
	// ServiceName names the server in traces.
	ServiceName string
	// AllowedOrigins lists CORS origins; empty allows all origins.
	AllowedOrigins []string
	Logger         *slog.Logger
}

// SetupRouter creates and configures the Gin router.
func SetupRouter(predictionUC *usecase.PredictionUseCase, cfg RouterConfig) *gin.Engine {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.ServiceName == "" {
		cfg.ServiceName = "tidegrid"
	}

	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(cfg.Logger), countRequests())
	router.Use(otelgin.Middleware(cfg.ServiceName))

	// Setup CORS middleware.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	router.Use(cors.New(corsConfig))

	// Create handler.
	handler := NewHandler(predictionUC, cfg.Logger)

	// API v1 routes.
	v1 := router.Group("/v1")
	tides := v1.Group("/tides")
	tides.GET("/predictions", handler.GetPredictions)
	tides.POST("/evaluate", handler.PostEvaluate)

	v1.GET("/constituents", handler.GetConstituentsList)
	v1.GET("/model", handler.GetModel)

	router.GET("/health", handler.HealthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return router
}

// countRequests records every request by route and status.
func countRequests() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.HTTPRequestsTotal.WithLabelValues(route, strconv.Itoa(c.Writer.Status())).Inc()
	}
}

// requestLogger logs one structured line per request.
func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		logger.LogAttrs(c.Request.Context(), levelFor(c.Writer.Status()), "http request",
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Int("status", c.Writer.Status()),
			slog.String("client_ip", c.ClientIP()),
		)
	}
}

func levelFor(status int) slog.Level {
	switch {
	case status >= 500:
		return slog.LevelError
	case status >= 400:
		return slog.LevelWarn
	default:
		return slog.LevelDebug
	}
}
