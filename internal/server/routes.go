package server

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) registerRoutes() {
	// Health reporting collaborator: fixed status, independent of the chat core
	s.echo.GET("/", s.handleStatus)

	// Observability endpoints (no auth required)
	s.echo.GET("/health/live", s.handleLiveness)
	s.echo.GET("/version", s.handleVersion)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// WebSocket entry point
	s.echo.GET("/ws", s.handleWebSocket)
}
