package stream

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"alert-monitor/internal/model"
)

// DefaultReconnectDelay is the fixed wait between connection attempts.
const DefaultReconnectDelay = 5 * time.Second

// Handler receives classified events and connection status changes.
// Both methods are called from the manager goroutine, in stream order.
type Handler interface {
	HandleEvent(ev Event)
	HandleStatus(status model.ConnectionStatus)
}

// Manager keeps one push connection open, reconnecting after a fixed delay on
// any failure, forever, until closed.
type Manager struct {
	transport Transport
	handler   Handler
	delay     time.Duration
	after     func(time.Duration) <-chan time.Time
	logger    zerolog.Logger

	mu      sync.Mutex
	conn    Conn
	status  model.ConnectionStatus
	cancel  context.CancelFunc
	done    chan struct{}
	started bool
	closed  bool
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithReconnectDelay overrides the reconnect delay. Non-positive values are ignored.
func WithReconnectDelay(d time.Duration) ManagerOption {
	return func(m *Manager) {
		if d > 0 {
			m.delay = d
		}
	}
}

// WithAfter replaces time.After for the reconnect wait.
func WithAfter(after func(time.Duration) <-chan time.Time) ManagerOption {
	return func(m *Manager) {
		m.after = after
	}
}

// NewManager creates a connection manager. It does not connect until Run is called.
func NewManager(transport Transport, handler Handler, logger zerolog.Logger, opts ...ManagerOption) *Manager {
	m := &Manager{
		transport: transport,
		handler:   handler,
		delay:     DefaultReconnectDelay,
		after:     time.After,
		status:    model.ConnectionDisconnected,
		done:      make(chan struct{}),
		logger: logger.With().
			Str("component", "stream").
			Str("transport", transport.Name()).
			Logger(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Run connects and serves frames until ctx is cancelled or Close is called.
// Connection failures never end the loop. Run returns nil on shutdown.
func (m *Manager) Run(ctx context.Context) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	if m.started {
		m.mu.Unlock()
		return errors.New("stream manager already running")
	}
	ctx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.started = true
	m.mu.Unlock()

	defer close(m.done)
	defer cancel()

	for attempt := 1; ; attempt++ {
		if err := m.serve(ctx); err != nil {
			m.logger.Warn().Err(err).Int("attempt", attempt).Msg("stream connection lost")
		}
		m.setStatus(model.ConnectionDisconnected)

		if ctx.Err() != nil {
			m.logger.Info().Msg("stream manager stopped")
			return nil
		}

		m.logger.Info().Dur("delay", m.delay).Msg("reconnecting after delay")
		select {
		case <-ctx.Done():
			m.logger.Info().Msg("stream manager stopped")
			return nil
		case <-m.after(m.delay):
		}
	}
}

// serve runs one connection from dial to disconnect.
func (m *Manager) serve(ctx context.Context) error {
	m.setStatus(model.ConnectionConnecting)

	conn, err := m.transport.Dial(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("connect failed: %w", err)
	}
	defer conn.Close()

	// Cancellation unblocks the pending read
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	m.mu.Lock()
	m.conn = conn
	m.mu.Unlock()
	defer func() {
		m.mu.Lock()
		m.conn = nil
		m.mu.Unlock()
	}()

	m.logger.Info().Msg("stream connected")
	m.setStatus(model.ConnectionConnected)

	for {
		data, err := conn.Read(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("read failed: %w", err)
		}

		ev, err := Classify(data)
		if err != nil {
			m.logger.Warn().Err(err).Int("size", len(data)).Msg("dropping frame")
			continue
		}
		m.handler.HandleEvent(ev)
	}
}

// Send writes a client frame on the live connection.
func (m *Manager) Send(ctx context.Context, frame ClientFrame) error {
	m.mu.Lock()
	conn := m.conn
	m.mu.Unlock()

	if conn == nil {
		return ErrNotConnected
	}
	sender, ok := conn.(FrameSender)
	if !ok {
		return ErrSendUnsupported
	}
	return sender.Send(ctx, frame)
}

// Status returns the current connection status.
func (m *Manager) Status() model.ConnectionStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

// Close stops the loop, cancels a pending reconnect wait and closes the live
// connection. It blocks until Run has returned and is safe to call repeatedly.
// It must not be called from a Handler method.
func (m *Manager) Close() {
	m.mu.Lock()
	m.closed = true
	cancel, started := m.cancel, m.started
	m.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if started {
		<-m.done
	}
}

func (m *Manager) setStatus(status model.ConnectionStatus) {
	m.mu.Lock()
	changed := m.status != status
	m.status = status
	m.mu.Unlock()

	if changed {
		m.handler.HandleStatus(status)
	}
}
