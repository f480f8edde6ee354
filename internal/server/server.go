package server

import (
	"context"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/BpsEason/chatroom/internal/chat"
	"github.com/BpsEason/chatroom/internal/config"
)

type Server struct {
	echo      *echo.Echo
	config    *config.Config
	hub       *chat.Hub
	limits    *ConnectionLimits
	clock     clockwork.Clock
	startTime time.Time
}

func NewServer(cfg *config.Config, hub *chat.Hub, clock clockwork.Clock) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	srv := &Server{
		echo:   e,
		config: cfg,
		hub:    hub,
		limits: NewConnectionLimits(
			int64(cfg.MaxConnections),
			cfg.MaxConnectionsPerIP,
			cfg.ConnectionRatePerSecond,
			cfg.ConnectionBurst,
		),
		clock:     clock,
		startTime: clock.Now(),
	}

	// Register routes
	srv.registerRoutes()

	return srv
}

func (s *Server) Start() error {
	return s.echo.Start(fmt.Sprintf(":%s", s.config.Port))
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
