package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Chat core metrics
var (
	// ChatConnectedClients tracks the number of live websocket connections
	ChatConnectedClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "chat_connected_clients",
			Help: "Number of live chat websocket connections",
		},
	)

	// ChatAuthenticatedClients tracks connections that completed the HELLO handshake
	ChatAuthenticatedClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "chat_authenticated_clients",
			Help: "Number of connections that completed the HELLO handshake",
		},
	)

	// ChatMessagesBroadcastTotal counts chat messages fanned out to the room
	ChatMessagesBroadcastTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chat_messages_broadcast_total",
			Help: "Total chat messages fanned out to the room",
		},
	)

	// ChatProtocolErrorsTotal counts structured protocol errors by code
	ChatProtocolErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_protocol_errors_total",
			Help: "Structured protocol errors sent to clients by error code",
		},
		[]string{"code"},
	)

	// ChatHeartbeatTerminationsTotal counts connections closed by the liveness sweep
	ChatHeartbeatTerminationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chat_heartbeat_terminations_total",
			Help: "Connections terminated after missing a full heartbeat cycle",
		},
	)

	// ChatSlowClientsEvictedTotal counts clients dropped for full send buffers
	ChatSlowClientsEvictedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chat_slow_clients_evicted_total",
			Help: "Clients disconnected because their send buffer was full",
		},
	)
)

// Hub metrics
var (
	// HubCommandChannelDepth tracks pending commands in the hub actor channel
	HubCommandChannelDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "hub_command_channel_depth",
			Help: "Current depth of the hub command channel",
		},
	)

	// HubPanicsTotal counts recovered panics in the hub goroutine
	HubPanicsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "hub_panics_total",
			Help: "Total panics recovered in the hub goroutine",
		},
	)

	// HubStopTimeoutsTotal counts hub shutdowns that exceeded the stop timeout
	HubStopTimeoutsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "hub_stop_timeouts_total",
			Help: "Hub shutdowns that exceeded the graceful stop timeout",
		},
	)
)

// Connection admission metrics
var (
	// WebSocketConnectionsRejectedTotal counts rejected connection attempts by reason
	WebSocketConnectionsRejectedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "websocket_connections_rejected_total",
			Help: "WebSocket connection attempts rejected before upgrade, by reason",
		},
		[]string{"reason"},
	)

	// WebSocketConnectionCapacityPct tracks global connection capacity utilization
	WebSocketConnectionCapacityPct = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "websocket_connection_capacity_pct",
			Help: "Current global connection capacity utilization percentage",
		},
	)
)
