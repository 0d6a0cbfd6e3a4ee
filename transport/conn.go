// Package transport defines the narrow connection boundary a
// session.Server reads/writes framed messages over, and a reference
// gorilla/websocket adapter.
package transport

// Conn is the external interface spec.md §6 calls out: a session never
// touches sockets directly, only this. One ReadMessage/WriteMessage call
// carries one encoded wire batch or message.
type Conn interface {
	ReadMessage() ([]byte, error)
	WriteMessage([]byte) error
	Close() error
}
