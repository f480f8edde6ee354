package server

import (
	"log/slog"
	"net"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/BpsEason/chatroom/internal/logging"
	"github.com/BpsEason/chatroom/internal/metrics"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Browser clients connect from any origin
	},
}

// handleWebSocket admits, upgrades, and registers a connection, then runs its
// read loop until the transport closes. Admission limits are checked before
// the upgrade so rejected clients cost no websocket resources.
func (s *Server) handleWebSocket(c echo.Context) error {
	ip := clientIP(c.Request())

	ok, reason := s.limits.Acquire(ip)
	if !ok {
		metrics.WebSocketConnectionsRejectedTotal.WithLabelValues(string(reason)).Inc()
		slog.Warn("Connection rejected", "remote_ip", ip, "reason", reason)
		if reason == LimitReasonRate {
			return c.String(http.StatusTooManyRequests, "connection rate limit exceeded")
		}
		return c.String(http.StatusServiceUnavailable, "connection limit reached")
	}
	defer s.limits.Release(ip)
	metrics.WebSocketConnectionCapacityPct.Set(s.limits.Global().CapacityPct())

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		slog.Error("WebSocket upgrade failed", "remote_ip", ip, "error", err)
		return nil // Upgrade already wrote the HTTP error response
	}

	id, err := s.hub.Register(conn, c.Request().RemoteAddr)
	if err != nil {
		slog.Error("Hub registration failed", "remote_ip", ip, "error", err)
		conn.Close()
		return nil
	}

	log := logging.WithConn(id.String())
	log.Debug("Connection established", "remote_ip", ip)

	// Read pump: blocks until the transport closes. Frame handling happens
	// in the hub; this loop only moves bytes.
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			break
		}
		// Binary frames go through the same path; the parser rejects
		// anything that is not JSON.
		s.hub.Inbound(id, data)
	}

	s.hub.Unregister(id)
	log.Debug("Connection closed", "remote_ip", ip)
	return nil
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
