package stream

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// writeWait bounds a single frame write.
const writeWait = 10 * time.Second

// WebSocketOptions configures a WebSocketTransport.
type WebSocketOptions struct {
	URL            string            // ws:// or wss:// endpoint
	Identity       Identity          // Sent in the auth frame
	RequestAlerts  bool              // Send get_active_alerts after auth
	RequestMetrics bool              // Send get_all_metrics after auth
	Header         http.Header       // Extra handshake headers (optional)
	Dialer         *websocket.Dialer // Defaults to websocket.DefaultDialer
}

// WebSocketTransport dials a bidirectional push connection.
type WebSocketTransport struct {
	opts   WebSocketOptions
	dialer *websocket.Dialer
}

// NewWebSocketTransport creates a WebSocket transport.
func NewWebSocketTransport(opts WebSocketOptions) *WebSocketTransport {
	dialer := opts.Dialer
	if dialer == nil {
		dialer = websocket.DefaultDialer
	}
	return &WebSocketTransport{opts: opts, dialer: dialer}
}

// Name implements Transport.
func (t *WebSocketTransport) Name() string {
	return "websocket"
}

// Dial opens the connection, authenticates, then requests the current snapshots.
func (t *WebSocketTransport) Dial(ctx context.Context) (Conn, error) {
	ws, _, err := t.dialer.DialContext(ctx, t.opts.URL, t.opts.Header)
	if err != nil {
		return nil, fmt.Errorf("failed to dial %s: %w", t.opts.URL, err)
	}

	conn := &wsConn{ws: ws}

	frames := []ClientFrame{AuthFrame(t.opts.Identity)}
	if t.opts.RequestAlerts {
		frames = append(frames, ClientFrame{Type: FrameGetActiveAlerts})
	}
	if t.opts.RequestMetrics {
		frames = append(frames, ClientFrame{Type: FrameGetAllMetrics})
	}

	for _, f := range frames {
		if err := conn.Send(ctx, f); err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("handshake failed: %w", err)
		}
	}

	return conn, nil
}

// wsConn is an open WebSocket connection.
// gorilla allows one concurrent reader and one concurrent writer.
type wsConn struct {
	ws        *websocket.Conn
	writeMu   sync.Mutex
	closeOnce sync.Once
	closeErr  error
}

// Read returns the next data message. Control frames are handled by gorilla.
func (c *wsConn) Read(ctx context.Context) ([]byte, error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		mt, data, err := c.ws.ReadMessage()
		if err != nil {
			return nil, err
		}
		if mt == websocket.TextMessage || mt == websocket.BinaryMessage {
			return data, nil
		}
	}
}

// Send writes one client frame as JSON.
func (c *wsConn) Send(ctx context.Context, frame ClientFrame) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	deadline := time.Now().Add(writeWait)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := c.ws.SetWriteDeadline(deadline); err != nil {
		return err
	}
	if err := c.ws.WriteJSON(frame); err != nil {
		return fmt.Errorf("failed to send %s frame: %w", frame.Type, err)
	}
	return nil
}

// Close sends a close frame and closes the underlying connection.
func (c *wsConn) Close() error {
	c.closeOnce.Do(func() {
		c.writeMu.Lock()
		_ = c.ws.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		c.writeMu.Unlock()
		c.closeErr = c.ws.Close()
	})
	return c.closeErr
}
