package chat

import (
	"log/slog"

	"github.com/google/uuid"

	"github.com/BpsEason/chatroom/internal/logging"
	"github.com/BpsEason/chatroom/internal/metrics"
	"github.com/BpsEason/chatroom/internal/protocol"
)

// handleInbound runs one inbound frame through the protocol state machine.
// Executes inside the hub goroutine, so member state mutation needs no
// further synchronization. Order of checks: size guard and parse, PING,
// HELLO, authorization gate, rate limit, then dispatch on type.
func (h *Hub) handleInbound(id uuid.UUID, data []byte) {
	m, exists := h.members[id]
	if !exists {
		// Connection already closed; frame raced the unregister.
		return
	}

	frame, wireErr := protocol.ParseFrame(data)
	if wireErr != nil {
		h.sendError(m, wireErr.Code, wireErr.Message)
		return
	}

	// Application-level liveness reply: allowed in every state, no
	// authentication or rate-limit checks.
	if frame.Type == protocol.TypePing {
		h.send(m, protocol.Pong())
		return
	}

	if frame.Type == protocol.TypeHello {
		h.handleHello(m, frame)
		return
	}

	if !m.authenticated {
		h.sendError(m, protocol.CodeAuthRequired, "complete the HELLO handshake first")
		return
	}

	if !h.limiter.Allow(&m.window) {
		h.sendError(m, protocol.CodeRateLimit, "sending too fast, limit is 10 messages per second")
		return
	}

	switch frame.Type {
	case protocol.TypeMessage:
		h.handleChatMessage(m, frame)
	default:
		// Unrecognized tags are rejected explicitly rather than dropped,
		// so misbehaving clients get a signal instead of silence.
		h.sendError(m, protocol.CodeGenericError, "unsupported message type")
	}
}

// handleHello runs the authentication handshake. Legal only while
// unauthenticated; a repeated HELLO is rejected rather than treated as chat.
func (h *Hub) handleHello(m *member, frame protocol.Frame) {
	if m.authenticated {
		h.sendError(m, protocol.CodeAuthFailed, "already authenticated")
		return
	}

	nickname := protocol.SanitizeNickname(frame.Nickname)
	if !protocol.ValidNickname(nickname) {
		h.sendError(m, protocol.CodeAuthFailed, "nickname invalid or too short")
		return
	}

	// One-way transition; nickname is immutable from here on.
	m.authenticated = true
	m.nickname = nickname

	metrics.ChatAuthenticatedClients.Inc()
	logging.WithNickname(nickname).Info("Connection authenticated", "conn_id", m.id.String())

	h.send(m, protocol.Welcome(nickname, m.id.String(), h.clock.Now()))
	h.broadcast(protocol.SystemNotice(nickname+" joined the chat.", h.clock.Now()), m.id)
}

// handleChatMessage sanitizes and fans out one chat message, excluding the
// sender. Messages that sanitize to nothing are dropped without an error.
func (h *Hub) handleChatMessage(m *member, frame protocol.Frame) {
	text := protocol.Sanitize(frame.Text)
	if text == "" {
		return
	}

	metrics.ChatMessagesBroadcastTotal.Inc()
	h.broadcast(protocol.ChatMessage(text, m.nickname, h.clock.Now()), m.id)
}

// send delivers an envelope to a single member. Delivery failure means the
// member's buffer is full; it is evicted like any other slow client.
func (h *Hub) send(m *member, envelope protocol.Envelope) {
	if !m.writer.trySend(envelope.Encode()) {
		slog.Warn("Disconnecting slow client", "conn_id", m.id.String())
		metrics.ChatSlowClientsEvictedTotal.Inc()
		h.handleUnregister(m.id)
	}
}

// sendError reports a structured recoverable failure to one member.
// The connection stays open; the client may retry.
func (h *Hub) sendError(m *member, code protocol.ErrorCode, message string) {
	metrics.ChatProtocolErrorsTotal.WithLabelValues(string(code)).Inc()
	h.send(m, protocol.ErrorEnvelope(code, message, h.clock.Now()))
}
