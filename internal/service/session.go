package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"alert-monitor/internal/config"
	"alert-monitor/internal/model"
	"alert-monitor/internal/store"
	"alert-monitor/internal/stream"
)

// Session is one live monitoring view: it owns the stores, the push stream and
// the coordinator, and tears all of them down on Close.
type Session struct {
	cfg         *config.Config
	api         API
	clientID    string
	version     string
	alerts      *store.AlertStore
	plugins     *store.PluginStore
	history     *store.History
	coordinator *Coordinator
	manager     *stream.Manager
	notifier    Notifier
	onStatus    func(model.ConnectionStatus)
	now         func() time.Time
	logger      zerolog.Logger

	// Options consumed by NewSession
	transport  stream.Transport
	managerOps []stream.ManagerOption

	mu           sync.RWMutex
	connectionID string
	status       model.ConnectionStatus
	notifyCfg    model.NotificationConfig
	runCtx       context.Context
	cancel       context.CancelFunc
	closed       bool
	closeOnce    sync.Once
	refreshes    sync.WaitGroup
}

// SessionOption is a functional option for configuring a Session.
type SessionOption func(*Session)

// WithTransport replaces the transport built from the stream configuration.
func WithTransport(t stream.Transport) SessionOption {
	return func(s *Session) {
		s.transport = t
	}
}

// WithManagerOptions passes options through to the stream manager.
func WithManagerOptions(opts ...stream.ManagerOption) SessionOption {
	return func(s *Session) {
		s.managerOps = append(s.managerOps, opts...)
	}
}

// WithNotifier sets the notifier for newly pushed alerts.
func WithNotifier(n Notifier) SessionOption {
	return func(s *Session) {
		s.notifier = n
	}
}

// WithStatusListener registers a callback for connection status changes.
func WithStatusListener(fn func(model.ConnectionStatus)) SessionOption {
	return func(s *Session) {
		s.onStatus = fn
	}
}

// WithClientID sets the session client id. By default a random UUID is used.
func WithClientID(id string) SessionOption {
	return func(s *Session) {
		s.clientID = id
	}
}

// WithSessionVersion sets the tool version reported in snapshots.
func WithSessionVersion(version string) SessionOption {
	return func(s *Session) {
		s.version = version
	}
}

// WithSessionClock overrides the clock of the session and its stores.
func WithSessionClock(now func() time.Time) SessionOption {
	return func(s *Session) {
		s.now = now
	}
}

// NewSession creates a session from configuration. Nothing connects until Run.
func NewSession(cfg *config.Config, api API, logger zerolog.Logger, opts ...SessionOption) *Session {
	s := &Session{
		cfg:       cfg,
		api:       api,
		version:   "dev",
		now:       time.Now,
		status:    model.ConnectionDisconnected,
		notifyCfg: model.DefaultNotificationConfig(),
	}

	// Apply options
	for _, opt := range opts {
		opt(s)
	}

	if s.clientID == "" {
		s.clientID = uuid.NewString()
	}
	s.logger = logger.With().Str("component", "session").Str("client_id", s.clientID).Logger()

	capacity := cfg.Session.HistoryCapacity
	if capacity <= 0 {
		capacity = store.DefaultHistoryCapacity
	}
	s.history = store.NewHistory(capacity)
	s.alerts = store.NewAlertStore(store.WithClock(s.now))
	s.plugins = store.NewPluginStore(s.history, store.WithClock(s.now))

	if s.transport == nil {
		s.transport = newTransport(cfg, stream.Identity{
			UserID:   cfg.Identity.UserID,
			Role:     cfg.Identity.Role,
			ClientID: s.clientID,
		})
	}
	managerOps := append([]stream.ManagerOption{stream.WithReconnectDelay(cfg.Stream.ReconnectDelay)}, s.managerOps...)
	s.manager = stream.NewManager(s.transport, s, logger, managerOps...)

	coordOps := []CoordinatorOption{WithCoordinatorClock(s.now)}
	if cfg.Mutation.Channel == config.ChannelStream {
		coordOps = append(coordOps, WithStreamSender(s.manager))
	}
	s.coordinator = NewCoordinator(api, s.alerts, s.plugins, cfg.Session.AlertLimit, logger, coordOps...)

	return s
}

// newTransport builds the configured push transport.
func newTransport(cfg *config.Config, id stream.Identity) stream.Transport {
	if cfg.Stream.Transport == config.TransportSSE {
		return stream.NewSSETransport(stream.SSEOptions{URL: cfg.Stream.URL, Identity: id}, nil)
	}
	return stream.NewWebSocketTransport(stream.WebSocketOptions{
		URL:            cfg.Stream.URL,
		Identity:       id,
		RequestAlerts:  cfg.Stream.RequestAlerts,
		RequestMetrics: cfg.Stream.RequestMetrics,
	})
}

// ClientID returns the session client id.
func (s *Session) ClientID() string {
	return s.clientID
}

// Coordinator returns the mutation coordinator of the session.
func (s *Session) Coordinator() *Coordinator {
	return s.coordinator
}

// Status returns the current connection status.
func (s *Session) Status() model.ConnectionStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// Load fetches the notification preference and performs a full REST reload.
// Failures are logged; the session keeps whatever state it had.
func (s *Session) Load(ctx context.Context) error {
	s.loadNotificationConfig(ctx)
	return s.coordinator.Reload(ctx)
}

// Run loads the initial state, then serves the push stream and the periodic
// refresh until ctx is cancelled or Close is called.
func (s *Session) Run(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	ctx, cancel := context.WithCancel(ctx)
	s.runCtx = ctx
	s.cancel = cancel
	s.mu.Unlock()
	defer cancel()

	s.logger.Info().
		Str("transport", s.transport.Name()).
		Str("mutation_channel", s.cfg.Mutation.Channel).
		Msg("session starting")

	if err := s.Load(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("initial load failed")
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.manager.Run(gctx)
	})
	if interval := s.cfg.Session.RefreshInterval; interval > 0 {
		g.Go(func() error {
			s.refreshLoop(gctx, interval)
			return nil
		})
	}

	err := g.Wait()
	s.logger.Info().Msg("session stopped")
	return err
}

// Close tears the session down: the coordinator stops applying results, the
// refresh loop stops and the push stream is closed. It blocks until the stream
// loop and any event-driven refresh have exited and is safe to call more than once.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.closed = true
		cancel := s.cancel
		s.mu.Unlock()

		s.coordinator.Close()
		if cancel != nil {
			cancel()
		}
		s.manager.Close()
		s.refreshes.Wait()
	})
}

func (s *Session) refreshLoop(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.coordinator.Refresh(ctx); err != nil {
				s.logger.Warn().Err(err).Msg("periodic refresh failed")
			}
		}
	}
}

func (s *Session) loadNotificationConfig(ctx context.Context) {
	cfg, err := s.api.GetNotificationConfig(ctx)
	if err != nil || cfg == nil {
		s.logger.Warn().Err(err).Msg("failed to load notification config, using defaults")
		return
	}

	s.mu.Lock()
	s.notifyCfg = *cfg
	s.mu.Unlock()
}

// refreshOnConnect reports whether the stream handshake leaves the alert
// snapshot to REST: SSE cannot request it, and websocket may be told not to.
func (s *Session) refreshOnConnect() bool {
	return s.cfg.Stream.Transport == config.TransportSSE || !s.cfg.Stream.RequestAlerts
}

// HandleStatus implements stream.Handler.
func (s *Session) HandleStatus(status model.ConnectionStatus) {
	s.mu.Lock()
	s.status = status
	if status != model.ConnectionConnected {
		s.connectionID = ""
	}
	s.mu.Unlock()

	s.logger.Debug().Str("status", string(status)).Msg("connection status changed")
	if s.onStatus != nil {
		s.onStatus(status)
	}

	if status == model.ConnectionConnected && s.refreshOnConnect() {
		s.spawnRefresh("connected")
	}
}

// HandleEvent implements stream.Handler.
func (s *Session) HandleEvent(ev stream.Event) {
	switch e := ev.(type) {
	case stream.ConnectedEvent:
		s.mu.Lock()
		s.connectionID = e.ConnectionID
		s.mu.Unlock()
		s.logger.Info().Str("connection_id", e.ConnectionID).Msg("connection acknowledged")

	case stream.AlertSnapshotEvent:
		s.alerts.ReplaceAll(e.Alerts)
		s.logger.Debug().Int("count", len(e.Alerts)).Msg("alert snapshot applied")

	case stream.AlertPushEvent:
		created := s.alerts.Upsert(e.Alert)
		s.logger.Debug().Str("alert_id", e.Alert.ID).Bool("created", created).Msg("alert pushed")
		if created {
			s.notify(e.Alert)
		}

	case stream.MetricsSnapshotEvent:
		s.plugins.ReplaceMetrics(e.Metrics)
		s.logger.Debug().Int("count", len(e.Metrics)).Msg("metrics snapshot applied")

	case stream.MetricsPushEvent:
		s.plugins.UpsertMetrics(e.PluginID, e.Sample)

	case stream.ResolutionAckEvent:
		if !e.Success {
			s.logger.Warn().Str("alert_id", e.AlertID).Msg("server rejected resolve")
			s.spawnRefresh("resolve rejected")
			return
		}
		at := s.now()
		if e.ResolvedAt != nil {
			at = *e.ResolvedAt
		}
		s.alerts.MarkResolved(e.AlertID, at)

	case stream.HeartbeatEvent:
		// keepalive only

	case stream.UnknownEvent:
		s.logger.Debug().Str("type", e.Type).Msg("ignoring unknown frame")
	}
}

func (s *Session) notify(alert model.Alert) {
	if s.notifier == nil {
		return
	}
	s.mu.RLock()
	cfg := s.notifyCfg
	s.mu.RUnlock()

	if cfg.ShouldNotify(alert) {
		s.notifier.Notify(alert)
	}
}

// spawnRefresh re-reads the alert collection outside the stream goroutine.
// The refresh is bound to the run context, so Close cancels and awaits it.
func (s *Session) spawnRefresh(reason string) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	ctx := s.runCtx
	s.refreshes.Add(1)
	s.mu.Unlock()

	if ctx == nil {
		ctx = context.Background()
	}
	go func() {
		defer s.refreshes.Done()
		if err := s.coordinator.Refresh(ctx); err != nil && ctx.Err() == nil {
			s.logger.Warn().Err(err).Str("reason", reason).Msg("refresh failed")
		}
	}()
}

// Snapshot returns a copy of the session state for presentation and export.
func (s *Session) Snapshot() *model.SessionSnapshot {
	s.mu.RLock()
	connectionID, status := s.connectionID, s.status
	s.mu.RUnlock()

	plugins := s.plugins.List()
	return &model.SessionSnapshot{
		ClientID:      s.clientID,
		ConnectionID:  connectionID,
		Status:        status,
		Version:       s.version,
		Alerts:        s.alerts.List(),
		Statistics:    s.alerts.Statistics(),
		Plugins:       plugins,
		PluginSummary: model.NewPluginSummary(plugins),
		History:       s.history.All(),
		TakenAt:       s.now(),
	}
}
