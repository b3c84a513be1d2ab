package stream

import (
	"context"
	"errors"
)

var (
	// ErrNotConnected is returned by Send when no connection is open.
	ErrNotConnected = errors.New("stream not connected")
	// ErrSendUnsupported is returned by Send when the transport is receive-only.
	ErrSendUnsupported = errors.New("transport does not support sending frames")
)

// Identity is the user identity presented to the server on connect.
type Identity struct {
	UserID   string
	Role     string
	ClientID string
}

// Transport opens push connections to a single endpoint.
// Dial performs the whole handshake; a returned Conn is ready to read.
type Transport interface {
	Name() string
	Dial(ctx context.Context) (Conn, error)
}

// Conn is one open push connection. Close must be safe to call more than once
// and must unblock a pending Read.
type Conn interface {
	Read(ctx context.Context) ([]byte, error)
	Close() error
}

// FrameSender is implemented by connections that can send client frames.
type FrameSender interface {
	Send(ctx context.Context, frame ClientFrame) error
}
