package server

import (
	"github.com/labstack/echo/v4"

	"github.com/BpsEason/chatroom/internal/version"
)

// handleStatus is the stateless health collaborator: a fixed "running"
// report, independent of the chat core's state.
func (s *Server) handleStatus(c echo.Context) error {
	return c.JSON(200, map[string]string{"status": "Backend is running"})
}

func (s *Server) handleLiveness(c echo.Context) error {
	uptime := s.clock.Since(s.startTime).Seconds()
	return c.JSON(200, map[string]any{
		"status":  "ok",
		"uptime":  uptime,
		"clients": s.hub.ClientCount(),
	})
}

func (s *Server) handleVersion(c echo.Context) error {
	return c.JSON(200, version.Get())
}
