package hub

import (
	"errors"
	"sync"

	"github.com/gorilla/websocket"
)

// Transport is the minimal write surface of a websocket connection.
// *websocket.Conn satisfies it; tests substitute an in-memory fake.
type Transport interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// DefaultQueueSize bounds the per-connection outbound queue. A consumer
// that falls this far behind is closed rather than allowed to stall the
// room (disconnect-on-overflow policy).
const DefaultQueueSize = 256

var ErrConnClosed = errors.New("connection closed")

// Conn: one live client connection with its outbound queue. All writes
// to the transport happen on the write pump goroutine, so no broadcast
// ever blocks on a slow consumer's socket.
type Conn struct {
	transport Transport
	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

func NewConn(transport Transport, queueSize int) *Conn {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	c := &Conn{
		transport: transport,
		send:      make(chan []byte, queueSize),
		done:      make(chan struct{}),
	}
	go c.writePump()
	return c
}

// Send: enqueues a message for delivery. Never blocks: a full queue
// means the consumer is too slow, and the connection is closed instead.
func (c *Conn) Send(msg []byte) error {
	select {
	case <-c.done:
		return ErrConnClosed
	default:
	}

	select {
	case c.send <- msg:
		return nil
	default:
		c.Close()
		return ErrConnClosed
	}
}

// Close: shuts down the write pump and the underlying transport.
// Safe to call more than once.
func (c *Conn) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
		c.transport.Close()
	})
}

// Closed: reports whether the connection has been closed
func (c *Conn) Closed() bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}

// writePump: drains the outbound queue onto the transport
func (c *Conn) writePump() {
	for {
		select {
		case <-c.done:
			return
		case msg := <-c.send:
			if err := c.transport.WriteMessage(websocket.TextMessage, msg); err != nil {
				c.Close()
				return
			}
		}
	}
}
