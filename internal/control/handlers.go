package control

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"taskTracker/internal/server"
)

type startRequest struct {
	Host string `json:"host" binding:"required,ip"`
	Port int    `json:"port" binding:"min=0,max=65535"`
}

type statusResponse struct {
	Running     bool                 `json:"running"`
	Address     string               `json:"address,omitempty"`
	Connections int                  `json:"connections"`
	Sessions    []server.SessionInfo `json:"sessions"`
}

// handleHealth provides a basic readiness endpoint.
func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleStatus(c *gin.Context) {
	c.JSON(http.StatusOK, s.status())
}

// handleStart binds the listener to the requested address.
func (s *Server) handleStart(c *gin.Context) {
	var req startRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}
	if err := s.listener.Start(s.baseCtx, req.Host, req.Port); err != nil {
		switch {
		case errors.Is(err, server.ErrAlreadyRunning):
			s.respondError(c, http.StatusConflict, err)
		case errors.Is(err, server.ErrInvalidAddress):
			s.respondError(c, http.StatusBadRequest, err)
		default:
			s.respondError(c, http.StatusInternalServerError, err)
		}
		return
	}
	c.JSON(http.StatusOK, s.status())
}

// handleStop closes the listener and every open session.
func (s *Server) handleStop(c *gin.Context) {
	if err := s.listener.Stop(); err != nil {
		s.respondError(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, s.status())
}

func (s *Server) status() statusResponse {
	resp := statusResponse{
		Running:     s.listener.Running(),
		Connections: s.listener.ConnCount(),
		Sessions:    s.listener.Sessions(),
	}
	if addr := s.listener.Addr(); addr != nil {
		resp.Address = addr.String()
	}
	return resp
}

// respondError logs the error and returns a JSON payload.
func (s *Server) respondError(c *gin.Context, status int, err error) {
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
