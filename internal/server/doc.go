// Package server implements the HTTP server using Echo framework.
//
// Routes: status/health/version/metrics endpoints plus the /ws websocket route
// that feeds connections into the chat hub. Connection admission limits
// (global, per-IP, per-IP rate) run before the websocket upgrade.
package server
