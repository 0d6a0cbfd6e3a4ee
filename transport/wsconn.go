package transport

import (
	"sync"

	"github.com/gorilla/websocket"
)

// WSConn adapts a gorilla/websocket connection to Conn, carrying every
// message as a binary frame (spec.md §6 payloads are MessagePack, never
// text). Writes are serialized with a mutex since websocket.Conn forbids
// concurrent writers.
type WSConn struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

// NewWSConn wraps an already-established websocket connection.
func NewWSConn(conn *websocket.Conn) *WSConn {
	return &WSConn{conn: conn}
}

func (c *WSConn) ReadMessage() ([]byte, error) {
	_, data, err := c.conn.ReadMessage()
	return data, err
}

func (c *WSConn) WriteMessage(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteMessage(websocket.BinaryMessage, data)
}

func (c *WSConn) Close() error {
	return c.conn.Close()
}

var _ Conn = (*WSConn)(nil)
