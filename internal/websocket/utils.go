package websocket

import (
	"encoding/json"
	"errors"
	"io"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait = 10 * time.Second
	// readWait closes connections whose client stopped sending, pings included.
	readWait = 5 * time.Minute
)

// WriteTyped sends a strongly-typed response payload over the WebSocket.
func WriteTyped(conn *websocket.Conn, v interface{}) error {
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(v)
}

// WriteError sends a typed ErrorResponse over the WebSocket.
func WriteError(conn *websocket.Conn, code ErrorCode, msg string) error {
	return WriteTyped(conn, NewError(code, msg))
}

// NewError builds an ErrorResponse.
func NewError(code ErrorCode, msg string) ErrorResponse {
	return ErrorResponse{Event: EventError, Code: code, Error: msg}
}

// ReadJSON reads and decodes a message into the provided structure.
// It sets a read deadline.
func ReadJSON(conn *websocket.Conn, v interface{}) error {
	conn.SetReadDeadline(time.Now().Add(readWait))
	return conn.ReadJSON(v)
}

// IsMalformed reports whether a ReadJSON error came from the message body
// rather than the connection. The connection stays usable after it.
func IsMalformed(err error) bool {
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	return errors.As(err, &syntaxErr) || errors.As(err, &typeErr) || errors.Is(err, io.ErrUnexpectedEOF)
}

// CloseNormal sends a normal closure frame. It is safe to call concurrently
// with the writer goroutine.
func CloseNormal(conn *websocket.Conn, reason string) error {
	return conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, reason),
		time.Now().Add(writeWait))
}
