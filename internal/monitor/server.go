// Package monitor is the optional observability HTTP server (§4.13): exposes
// /healthz, /metrics (Prometheus), and /ws/progress (a push feed of per-
// timestamp completion events). Same gin router/middleware/graceful-shutdown
// shape as a typical gin-based service, routes replaced with this engine's
// surface.
package monitor

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"github.com/jakartapm25/kelurahan-engine/internal/logging"
)

// Server is the batch run's observability endpoint. It is entirely optional:
// a run with no --monitor-addr skips it.
type Server struct {
	router     *gin.Engine
	httpServer *http.Server
	logger     *logging.Logger
	progress   *ProgressHub
}

// New builds the server bound to addr; call Start to begin serving.
func New(addr string, logger *logging.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(rateLimitMiddleware(rate.NewLimiter(rate.Limit(50), 100)))

	hub := NewProgressHub(logger)

	s := &Server{
		router: router,
		logger: logger,
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      router,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		progress: hub,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.GET("/healthz", s.healthz)
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	s.router.GET("/ws/progress", s.progress.HandleWebSocket)
}

func (s *Server) healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// rateLimitMiddleware guards the monitor endpoints against a runaway poller;
// a single batch run has few legitimate clients, so a shared limiter suffices.
func rateLimitMiddleware(limiter *rate.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.Allow() {
			c.AbortWithStatus(http.StatusTooManyRequests)
			return
		}
		c.Next()
	}
}

// Progress returns the hub callers use to publish per-timestamp completion events.
func (s *Server) Progress() *ProgressHub { return s.progress }

// Start runs the server; blocks until it stops or fails. Returns
// http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.WithField("address", s.httpServer.Addr).Info("starting monitor server")
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server within ctx's deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	s.progress.Close()
	return s.httpServer.Shutdown(ctx)
}
