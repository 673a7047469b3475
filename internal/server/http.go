package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/lk2023060901/trendpulse-backend/internal/analysis/service"
	"github.com/lk2023060901/trendpulse-backend/internal/conf"
	"github.com/lk2023060901/trendpulse-backend/internal/middleware"
	"github.com/lk2023060901/trendpulse-backend/internal/pkg/logger"
	"github.com/lk2023060901/trendpulse-backend/internal/pkg/redis"
)

// Service metadata served on the root endpoint
const (
	ServiceName        = "TrendPulse AI"
	ServiceVersion     = "1.0.0"
	ServiceDescription = "Analyze Google Trends data with AI-powered insights"
)

type HTTPServer struct {
	server *http.Server
	logger *logger.Logger
}

// NewHTTPServer assembles the gin engine, routes and middleware chain.
// redisClient may be nil when Redis is disabled, which also disables the
// rate limiter.
func NewHTTPServer(
	config *conf.Config,
	log *logger.Logger,
	trendService *service.TrendService,
	redisClient *redis.Client,
) *HTTPServer {
	gin.SetMode(ginMode(config.Server.Mode))

	router := gin.New()
	router.Use(logger.GinLogger(log))
	router.Use(logger.GinRecovery(log))
	router.Use(middleware.CORS())

	// Service metadata
	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"name":        ServiceName,
			"version":     ServiceVersion,
			"description": ServiceDescription,
			"endpoints": gin.H{
				"POST /analyze": "Analyze a keyword for trend data",
			},
		})
	})

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// API routes
	root := router.Group("")
	if config.RateLimit.Enabled && redisClient != nil {
		root.Use(middleware.AnalyzeRateLimiter(
			redisClient,
			config.RateLimit.MaxRequests,
			config.RateLimit.WindowSeconds,
			log,
		))
	}
	trendService.RegisterRoutes(root)

	addr := fmt.Sprintf("%s:%d", config.Server.Host, config.Server.Port)

	return &HTTPServer{
		server: &http.Server{
			Addr:    addr,
			Handler: router,
		},
		logger: log,
	}
}

func (s *HTTPServer) Start() error {
	s.logger.Info("starting HTTP server", zap.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}

	return nil
}

func (s *HTTPServer) Stop(ctx context.Context) error {
	s.logger.Info("stopping HTTP server")
	return s.server.Shutdown(ctx)
}

// Handler exposes the assembled router, mainly for tests
func (s *HTTPServer) Handler() http.Handler {
	return s.server.Handler
}

func ginMode(mode string) string {
	switch mode {
	case "debug":
		return gin.DebugMode
	case "test":
		return gin.TestMode
	default:
		return gin.ReleaseMode
	}
}
