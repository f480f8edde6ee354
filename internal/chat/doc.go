// Package chat implements the single-room broadcast core using the actor pattern.
//
// The Hub owns the registry of live connections in a single goroutine fed by a
// command channel (no mutexes); the protocol state machine, the heartbeat sweep,
// and all member-state mutation run inside that goroutine. Per-connection write
// goroutines isolate slow clients from the rest of the room.
package chat
