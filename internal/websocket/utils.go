package websocket

import (
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait = 10 * time.Second
	// ReadIdle is how long a connection may stay silent before it is dropped.
	ReadIdle = 5 * time.Minute
)

// WriteTyped sends one event payload.
func WriteTyped(conn *websocket.Conn, v any) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(v)
}

// WriteError sends an ErrorResponse with a stable code.
func WriteError(conn *websocket.Conn, code, msg string) error {
	return WriteTyped(conn, ErrorResponse{Event: EventError, Code: code, Error: msg})
}

// ReadRequest reads the next client message, resetting the idle deadline.
func ReadRequest(conn *websocket.Conn) (Request, error) {
	var req Request
	_ = conn.SetReadDeadline(time.Now().Add(ReadIdle))
	err := conn.ReadJSON(&req)
	return req, err
}
