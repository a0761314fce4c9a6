// Package control exposes an HTTP API for starting, stopping and inspecting
// the task listener.
package control

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"taskTracker/internal/server"
)

// Listener is the part of server.Server the API drives.
type Listener interface {
	Start(ctx context.Context, host string, port int) error
	Stop() error
	Running() bool
	Addr() net.Addr
	ConnCount() int
	Sessions() []server.SessionInfo
}

// Server provides HTTP handlers for the listener lifecycle.
type Server struct {
	engine   *gin.Engine
	listener Listener
	logger   *zap.Logger
	// baseCtx outlives individual requests; listeners started over HTTP run under it.
	baseCtx context.Context
}

// New constructs the HTTP server with routes and middleware configured.
func New(ctx context.Context, listener Listener, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger(logger))

	srv := &Server{
		engine:   router,
		listener: listener,
		logger:   logger,
		baseCtx:  ctx,
	}
	srv.registerRoutes()
	return srv
}

// Engine exposes the underlying Gin engine.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerRoutes() {
	api := s.engine.Group("/api")
	{
		api.GET("/healthz", s.handleHealth)
		api.GET("/status", s.handleStatus)
		api.POST("/server/start", s.handleStart)
		api.POST("/server/stop", s.handleStop)
	}
}

// Serve listens on addr in the background and returns a shutdown function.
func (s *Server) Serve(addr string) (func(context.Context) error, error) {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	httpSrv := &http.Server{
		Handler:           s.engine,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := httpSrv.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("control API stopped", zap.Error(err))
		}
	}()
	s.logger.Info("control API listening", zap.String("addr", lis.Addr().String()))
	return httpSrv.Shutdown, nil
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("control request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}
