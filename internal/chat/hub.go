package chat

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"

	"github.com/BpsEason/chatroom/internal/metrics"
	"github.com/BpsEason/chatroom/internal/protocol"
)

const (
	commandTimeout = 5 * time.Second
	stopTimeout    = 10 * time.Second
)

// member is one live connection's record. Owned exclusively by the hub
// goroutine; nothing outside the actor loop reads or writes its fields.
type member struct {
	id            uuid.UUID
	nickname      string
	authenticated bool
	alive         bool
	window        RateWindow
	writer        *clientWriter
	remoteAddr    string
}

// hubCmd is the command interface for the Hub actor.
type hubCmd interface{ isHubCmd() }

type baseHubCmd struct{}

func (baseHubCmd) isHubCmd() {}

type registerCmd struct {
	baseHubCmd
	connection *websocket.Conn
	remoteAddr string
	replyCh    chan uuid.UUID
}

type unregisterCmd struct {
	baseHubCmd
	id uuid.UUID
}

type inboundCmd struct {
	baseHubCmd
	id   uuid.UUID
	data []byte
}

type pongCmd struct {
	baseHubCmd
	id uuid.UUID
}

type clientCountCmd struct {
	baseHubCmd
	replyCh chan int
}

type stopCmd struct {
	baseHubCmd
}

// Hub is the single-room registry and broadcast engine. One goroutine owns
// all member state; registration, inbound frames, pong receipts, and the
// heartbeat sweep are serialized through the command channel, which is what
// guarantees the single-writer discipline on authenticated/alive/window.
type Hub struct {
	cmdCh             chan hubCmd
	clock             clockwork.Clock
	members           map[uuid.UUID]*member
	limiter           *FixedWindowLimiter
	heartbeatInterval time.Duration
	done              chan struct{}
	stopTimeout       time.Duration
}

// NewHub creates and starts the hub actor.
// heartbeatInterval is the liveness sweep period; messageLimit is the
// per-connection cap within the fixed 1-second window.
func NewHub(clock clockwork.Clock, heartbeatInterval time.Duration, messageLimit int) *Hub {
	h := &Hub{
		cmdCh:             make(chan hubCmd, 256),
		clock:             clock,
		members:           make(map[uuid.UUID]*member),
		limiter:           NewFixedWindowLimiter(clock, messageLimit),
		heartbeatInterval: heartbeatInterval,
		done:              make(chan struct{}),
		stopTimeout:       stopTimeout,
	}
	go h.run()
	return h
}

// Register adds a connection to the room and returns its assigned id.
// The caller starts its read loop only after Register returns, so installing
// the pong handler here cannot race with reads.
func (h *Hub) Register(conn *websocket.Conn, remoteAddr string) (uuid.UUID, error) {
	replyCh := make(chan uuid.UUID, 1)
	h.cmdCh <- registerCmd{connection: conn, remoteAddr: remoteAddr, replyCh: replyCh}

	timer := h.clock.NewTimer(commandTimeout)
	defer timer.Stop()

	select {
	case id := <-replyCh:
		conn.SetPongHandler(func(string) error {
			h.pong(id)
			return nil
		})
		return id, nil
	case <-timer.Chan():
		return uuid.Nil, fmt.Errorf("register command timed out after %v", commandTimeout)
	}
}

// Unregister removes a connection. Safe to call for ids the hub has already
// dropped (e.g. after a heartbeat termination raced the read loop).
func (h *Hub) Unregister(id uuid.UUID) {
	h.cmdCh <- unregisterCmd{id: id}
}

// Inbound hands one raw frame to the protocol state machine. Blocking send:
// a full command channel applies backpressure to the connection's read loop,
// never to other connections.
func (h *Hub) Inbound(id uuid.UUID, data []byte) {
	h.cmdCh <- inboundCmd{id: id, data: data}
}

// pong records a vendor-level liveness acknowledgment. Posted from the read
// goroutine's pong handler; dropped if the channel is full since the next
// sweep re-probes anyway.
func (h *Hub) pong(id uuid.UUID) {
	select {
	case h.cmdCh <- pongCmd{id: id}:
	default:
	}
}

// ClientCount returns the number of live connections.
// Returns -1 if the command times out.
func (h *Hub) ClientCount() int {
	replyCh := make(chan int, 1)
	h.cmdCh <- clientCountCmd{replyCh: replyCh}

	timer := h.clock.NewTimer(commandTimeout)
	defer timer.Stop()

	select {
	case count := <-replyCh:
		return count
	case <-timer.Chan():
		slog.Warn("ClientCount timed out", "timeout", commandTimeout)
		return -1
	}
}

// Stop shuts down the hub, closing all client connections.
// Blocks until the hub goroutine has exited or the stop timeout is reached.
func (h *Hub) Stop() {
	h.cmdCh <- stopCmd{}

	timer := h.clock.NewTimer(h.stopTimeout)
	defer timer.Stop()

	select {
	case <-h.done:
		slog.Info("Hub stopped gracefully")
	case <-timer.Chan():
		slog.Warn("Hub stop timeout exceeded, forcing exit", "timeout", h.stopTimeout)
		metrics.HubStopTimeoutsTotal.Inc()
		close(h.done)
	}
}

func (h *Hub) run() {
	// Panic recovery wrapper
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Hub panic recovered", "panic", r)
			metrics.HubPanicsTotal.Inc()
			h.closeAllMembers("hub panic")
		}
	}()

	heartbeat := h.clock.NewTicker(h.heartbeatInterval)
	defer heartbeat.Stop()
	defer close(h.done)

	// Track command channel depth every second
	depthTicker := h.clock.NewTicker(1 * time.Second)
	defer depthTicker.Stop()

	for {
		select {
		case <-depthTicker.Chan():
			depth := len(h.cmdCh)
			metrics.HubCommandChannelDepth.Set(float64(depth))
			if depth > 200 { // 80% of 256
				slog.Warn("Hub command channel near capacity", "depth", depth, "capacity", cap(h.cmdCh))
			}

		case cmd := <-h.cmdCh:
			switch c := cmd.(type) {
			case registerCmd:
				h.handleRegister(c)
			case unregisterCmd:
				h.handleUnregister(c.id)
			case inboundCmd:
				h.handleInbound(c.id, c.data)
			case pongCmd:
				h.handlePong(c.id)
			case clientCountCmd:
				c.replyCh <- len(h.members)
			case stopCmd:
				h.handleStop()
				return
			default:
				slog.Warn("Hub received unknown command type", "command_type", fmt.Sprintf("%T", cmd))
			}

		case <-heartbeat.Chan():
			h.handleHeartbeat()
		}
	}
}

func (h *Hub) handleRegister(c registerCmd) {
	m := &member{
		id:         uuid.New(),
		alive:      true,
		writer:     newClientWriter(c.connection, h.clock),
		remoteAddr: c.remoteAddr,
	}
	h.members[m.id] = m

	metrics.ChatConnectedClients.Set(float64(len(h.members)))

	slog.Info("Connection registered", "conn_id", m.id.String(), "remote_addr", c.remoteAddr, "total_clients", len(h.members))
	c.replyCh <- m.id
}

func (h *Hub) handleUnregister(id uuid.UUID) {
	m, exists := h.members[id]
	if !exists {
		return
	}

	m.writer.stop()
	delete(h.members, id)

	metrics.ChatConnectedClients.Set(float64(len(h.members)))
	if m.authenticated {
		metrics.ChatAuthenticatedClients.Dec()
	}

	slog.Info("Connection unregistered", "conn_id", id.String(), "total_clients", len(h.members))

	// Graceful close and heartbeat termination share this path, so an
	// authenticated departure always announces itself to the room.
	if m.authenticated {
		h.broadcast(protocol.SystemNotice(m.nickname+" left the chat.", h.clock.Now()), uuid.Nil)
	}
}

func (h *Hub) handlePong(id uuid.UUID) {
	if m, exists := h.members[id]; exists {
		m.alive = true
	}
}

// handleHeartbeat is the liveness sweep. A connection is terminated only
// after a full missed cycle: the first sweep clears its alive flag and sends
// a probe, the next sweep removes it if no pong arrived in between.
func (h *Hub) handleHeartbeat() {
	var dead []uuid.UUID
	for id, m := range h.members {
		if !m.alive {
			dead = append(dead, id)
			continue
		}
		m.alive = false
		m.writer.ping()
	}

	for _, id := range dead {
		slog.Info("Terminating unresponsive connection", "conn_id", id.String())
		metrics.ChatHeartbeatTerminationsTotal.Inc()
		h.handleUnregister(id)
	}
}

// broadcast serializes the envelope once and writes the identical bytes to
// every member except excludeID. A full send buffer marks the recipient slow;
// slow members are evicted through the normal unregister path after the loop
// so delivery to the rest of the room is never aborted.
func (h *Hub) broadcast(envelope protocol.Envelope, excludeID uuid.UUID) {
	data := envelope.Encode()

	var slow []uuid.UUID
	for id, m := range h.members {
		if id == excludeID {
			continue
		}
		if !m.writer.trySend(data) {
			slow = append(slow, id)
		}
	}

	for _, id := range slow {
		slog.Warn("Disconnecting slow client", "conn_id", id.String())
		metrics.ChatSlowClientsEvictedTotal.Inc()
		h.handleUnregister(id)
	}
}

func (h *Hub) handleStop() {
	total := len(h.members)
	slog.Info("Hub shutting down", "total_clients", total)
	h.closeAllMembers("Server shutting down")
	slog.Info("Hub shutdown complete", "disconnected_clients", total)
}

// closeAllMembers closes every connection with the given reason.
// Used during panic recovery and graceful shutdown.
func (h *Hub) closeAllMembers(reason string) {
	for id, m := range h.members {
		m.writer.stopGraceful(reason)
		delete(h.members, id)
	}
	metrics.ChatConnectedClients.Set(0)
	metrics.ChatAuthenticatedClients.Set(0)
}
