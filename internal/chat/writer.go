package chat

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
)

const (
	writeDeadline     = 5 * time.Second
	messageBufferSize = 16
)

// clientWriter serializes all writes to one websocket connection through a
// single goroutine. Data frames and liveness probes both go through here so
// the hub never writes to a connection directly.
type clientWriter struct {
	connection *websocket.Conn
	clock      clockwork.Clock
	sendCh     chan []byte
	pingCh     chan struct{}
	doneCh     chan struct{}
	stopOnce   sync.Once
	wg         sync.WaitGroup
}

func newClientWriter(connection *websocket.Conn, clock clockwork.Clock) *clientWriter {
	cw := &clientWriter{
		connection: connection,
		clock:      clock,
		sendCh:     make(chan []byte, messageBufferSize),
		pingCh:     make(chan struct{}, 1),
		doneCh:     make(chan struct{}),
	}
	cw.wg.Add(1)
	go cw.run()
	return cw
}

func (cw *clientWriter) run() {
	defer cw.wg.Done()

	for {
		select {
		case msg, ok := <-cw.sendCh:
			if !ok {
				return
			}
			cw.updateWriteDeadline()
			if err := cw.connection.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-cw.pingCh:
			cw.updateWriteDeadline()
			if err := cw.connection.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-cw.doneCh:
			return
		}
	}
}

// trySend enqueues a data frame without blocking. A false return means the
// client's buffer is full and the hub should evict it.
func (cw *clientWriter) trySend(msg []byte) bool {
	select {
	case cw.sendCh <- msg:
		return true
	default:
		return false
	}
}

// ping requests a websocket control ping. At most one probe is pending at a
// time; a second request while one is queued is a no-op.
func (cw *clientWriter) ping() {
	select {
	case cw.pingCh <- struct{}{}:
	default:
	}
}

func (cw *clientWriter) stop() {
	cw.stopOnce.Do(func() {
		close(cw.doneCh)
		_ = cw.connection.Close()
	})
	cw.wg.Wait()
}

// stopGraceful sends a WebSocket close frame with reason before closing.
func (cw *clientWriter) stopGraceful(reason string) {
	cw.stopOnce.Do(func() {
		// Signal the run goroutine to exit first
		close(cw.doneCh)

		// Wait for run goroutine to exit before writing the close frame.
		// This prevents concurrent writes to the WebSocket connection.
		cw.wg.Wait()

		closeMsg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, reason)
		cw.updateWriteDeadline()
		_ = cw.connection.WriteMessage(websocket.CloseMessage, closeMsg)

		_ = cw.connection.Close()
	})
}

func (cw *clientWriter) updateWriteDeadline() {
	deadline := cw.clock.Now().Add(writeDeadline)
	_ = cw.connection.SetWriteDeadline(deadline)
}
