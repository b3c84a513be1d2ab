// Package service wires the stores, the REST client and the push stream into
// a monitoring session.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"alert-monitor/internal/model"
	"alert-monitor/internal/store"
	"alert-monitor/internal/stream"
)

// ErrUnknownEntity is returned when a mutation targets an entity the session does not know.
var ErrUnknownEntity = errors.New("unknown entity")

// API is the REST boundary used by a session.
type API interface {
	ListAlerts(ctx context.Context, limit int) ([]model.Alert, error)
	ResolveAlert(ctx context.Context, alertID string) error
	BulkResolve(ctx context.Context, alertIDs []string) (int, error)
	ListPlugins(ctx context.Context) ([]model.PluginInfo, error)
	GetPluginMetrics(ctx context.Context) (map[string]model.PluginMetricSample, error)
	ActivatePlugin(ctx context.Context, pluginID string) error
	DeactivatePlugin(ctx context.Context, pluginID string) error
	GetNotificationConfig(ctx context.Context) (*model.NotificationConfig, error)
}

// FrameSender sends client frames over the push stream.
type FrameSender interface {
	Send(ctx context.Context, frame stream.ClientFrame) error
}

// BulkResult reports the outcome of a bulk resolve.
type BulkResult struct {
	Requested        int  // 请求解决的告警数
	Resolved         int  // 服务端确认解决的告警数
	NothingToResolve bool // 没有可解决的告警（未发起请求）
}

// Coordinator issues mutations against the server and reconciles the local stores.
// Local state is updated optimistically; a failed mutation is corrected by
// re-reading the alert collection from the server, never by local rollback.
type Coordinator struct {
	api        API
	alerts     *store.AlertStore
	plugins    *store.PluginStore
	sender     FrameSender
	alertLimit int
	now        func() time.Time
	closed     atomic.Bool
	logger     zerolog.Logger
}

// CoordinatorOption is a functional option for configuring a Coordinator.
type CoordinatorOption func(*Coordinator)

// WithStreamSender routes single resolves through the push stream instead of REST.
func WithStreamSender(sender FrameSender) CoordinatorOption {
	return func(c *Coordinator) {
		c.sender = sender
	}
}

// WithCoordinatorClock overrides the clock used for optimistic resolution times.
func WithCoordinatorClock(now func() time.Time) CoordinatorOption {
	return func(c *Coordinator) {
		c.now = now
	}
}

// NewCoordinator creates a Coordinator over the given stores.
func NewCoordinator(
	api API,
	alerts *store.AlertStore,
	plugins *store.PluginStore,
	alertLimit int,
	logger zerolog.Logger,
	opts ...CoordinatorOption,
) *Coordinator {
	c := &Coordinator{
		api:        api,
		alerts:     alerts,
		plugins:    plugins,
		alertLimit: alertLimit,
		now:        time.Now,
		logger:     logger.With().Str("component", "coordinator").Logger(),
	}

	// Apply options
	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Close marks the coordinator closed. Requests already in flight complete,
// but their results are no longer applied to the stores.
func (c *Coordinator) Close() {
	c.closed.Store(true)
}

// Closed reports whether Close has been called.
func (c *Coordinator) Closed() bool {
	return c.closed.Load()
}

// Resolve marks one alert resolved locally, then asks the server to resolve it.
func (c *Coordinator) Resolve(ctx context.Context, alertID string) error {
	if alertID == "" {
		return fmt.Errorf("alert id is required")
	}
	ctx = context.WithoutCancel(ctx)

	changed := c.alerts.MarkResolved(alertID, c.now())
	c.logger.Debug().Str("alert_id", alertID).Bool("changed", changed).Msg("resolving alert")

	var err error
	if c.sender != nil {
		err = c.sender.Send(ctx, stream.ResolveAlertFrame(alertID))
	} else {
		err = c.api.ResolveAlert(ctx, alertID)
	}
	if err != nil {
		c.logger.Error().Err(err).Str("alert_id", alertID).Msg("resolve failed")
		c.correct(ctx)
		return fmt.Errorf("failed to resolve alert %s: %w", alertID, err)
	}

	c.logger.Info().Str("alert_id", alertID).Msg("alert resolved")
	return nil
}

// BulkResolve resolves the given alerts in one request. Ids that are unknown or
// already resolved are skipped; if none remain no request is made.
func (c *Coordinator) BulkResolve(ctx context.Context, alertIDs []string) (BulkResult, error) {
	seen := make(map[string]bool, len(alertIDs))
	var targets []string
	for _, id := range alertIDs {
		if seen[id] || !c.alerts.IsActive(id) {
			continue
		}
		seen[id] = true
		targets = append(targets, id)
	}

	if len(targets) == 0 {
		c.logger.Info().Int("requested", len(alertIDs)).Msg("nothing to resolve")
		return BulkResult{NothingToResolve: true}, nil
	}
	ctx = context.WithoutCancel(ctx)

	now := c.now()
	for _, id := range targets {
		c.alerts.MarkResolved(id, now)
	}

	resolved, err := c.api.BulkResolve(ctx, targets)
	if err != nil {
		c.logger.Error().Err(err).Int("count", len(targets)).Msg("bulk resolve failed")
		c.correct(ctx)
		return BulkResult{Requested: len(targets)}, fmt.Errorf("failed to bulk resolve %d alerts: %w", len(targets), err)
	}

	c.logger.Info().
		Int("requested", len(targets)).
		Int("resolved", resolved).
		Msg("bulk resolve completed")
	return BulkResult{Requested: len(targets), Resolved: resolved}, nil
}

// ResolveAllActive bulk resolves every unresolved alert.
func (c *Coordinator) ResolveAllActive(ctx context.Context) (BulkResult, error) {
	return c.BulkResolve(ctx, c.alerts.ActiveIDs())
}

// ToggleEntityState activates an inactive plugin or deactivates a running one,
// then reloads everything from the server. It returns the requested status.
func (c *Coordinator) ToggleEntityState(ctx context.Context, pluginID string) (model.PluginStatus, error) {
	state, ok := c.plugins.Get(pluginID)
	if !ok {
		return "", fmt.Errorf("plugin %q: %w", pluginID, ErrUnknownEntity)
	}
	ctx = context.WithoutCancel(ctx)

	var (
		target model.PluginStatus
		err    error
	)
	if state.Status.IsRunning() {
		target = model.PluginStatusInactive
		err = c.api.DeactivatePlugin(ctx, pluginID)
	} else {
		target = model.PluginStatusActive
		err = c.api.ActivatePlugin(ctx, pluginID)
	}
	if err != nil {
		c.logger.Error().Err(err).Str("plugin_id", pluginID).Msg("toggle failed")
		return "", fmt.Errorf("failed to toggle plugin %s: %w", pluginID, err)
	}

	c.logger.Info().
		Str("plugin_id", pluginID).
		Str("from", string(state.Status)).
		Str("to", string(target)).
		Msg("plugin toggled")

	// The server is authoritative for the new state
	if err := c.Reload(ctx); err != nil {
		c.logger.Warn().Err(err).Msg("reload after toggle failed")
	}
	return target, nil
}

// Refresh replaces the alert collection with the server's current list.
func (c *Coordinator) Refresh(ctx context.Context) error {
	alerts, err := c.api.ListAlerts(ctx, c.alertLimit)
	if err != nil {
		return fmt.Errorf("failed to refresh alerts: %w", err)
	}
	if c.Closed() {
		c.logger.Debug().Msg("session closed, dropping refresh result")
		return nil
	}

	c.alerts.ReplaceAll(alerts)
	c.logger.Debug().Int("count", len(alerts)).Msg("alerts refreshed")
	return nil
}

// Reload fetches alerts, plugins and metrics concurrently and applies them
// together. Nothing is applied if any request fails.
func (c *Coordinator) Reload(ctx context.Context) error {
	var (
		alerts  []model.Alert
		plugins []model.PluginInfo
		metrics map[string]model.PluginMetricSample
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		alerts, err = c.api.ListAlerts(gctx, c.alertLimit)
		return err
	})
	g.Go(func() error {
		var err error
		plugins, err = c.api.ListPlugins(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		metrics, err = c.api.GetPluginMetrics(gctx)
		return err
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("failed to reload: %w", err)
	}
	if c.Closed() {
		c.logger.Debug().Msg("session closed, dropping reload result")
		return nil
	}

	// The listing decides membership and status; metrics only fill in samples
	c.alerts.ReplaceAll(alerts)
	c.plugins.ReplaceMetrics(metrics)
	c.plugins.ReplacePlugins(plugins)

	c.logger.Info().
		Int("alerts", len(alerts)).
		Int("plugins", len(plugins)).
		Int("metrics", len(metrics)).
		Msg("reloaded from server")
	return nil
}

// correct re-reads the alert collection after a failed mutation.
func (c *Coordinator) correct(ctx context.Context) {
	if c.Closed() {
		return
	}
	if err := c.Refresh(ctx); err != nil {
		c.logger.Warn().Err(err).Msg("corrective refresh failed")
	}
}
