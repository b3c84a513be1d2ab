// Package api provides a client for the dashboard REST API.
package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"alert-monitor/internal/config"
	"alert-monitor/internal/model"
)

// Client is a client for the dashboard REST API.
type Client struct {
	baseURL    string             // REST API base URL
	token      string             // Bearer token
	timeout    time.Duration      // Request timeout (0 = none)
	retry      config.RetryConfig // Retry configuration (GET only)
	clientID   string             // Session client ID sent as X-Client-ID
	httpClient *resty.Client      // HTTP client
	logger     zerolog.Logger     // Logger
}

// NewClient creates a new REST API client.
// An empty clientID generates a random one.
func NewClient(cfg *config.APIConfig, retryCfg *config.RetryConfig, clientID string, logger zerolog.Logger) *Client {
	// Set default retry config if not specified
	retry := config.RetryConfig{
		MaxRetries: 3,
		BaseDelay:  1 * time.Second,
	}
	if retryCfg != nil {
		retry = *retryCfg
	}

	if clientID == "" {
		clientID = uuid.NewString()
	}

	httpClient := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetHeader("X-Client-ID", clientID).
		SetRetryCount(retry.MaxRetries).
		SetRetryWaitTime(retry.BaseDelay).
		SetRetryMaxWaitTime(retry.BaseDelay * 8). // Max wait time for exponential backoff
		AddRetryCondition(retryCondition)

	// No timeout unless configured
	if cfg.Timeout > 0 {
		httpClient.SetTimeout(cfg.Timeout)
	}
	if cfg.Token != "" {
		httpClient.SetAuthToken(cfg.Token)
	}

	return &Client{
		baseURL:    cfg.BaseURL,
		token:      cfg.Token,
		timeout:    cfg.Timeout,
		retry:      retry,
		clientID:   clientID,
		httpClient: httpClient,
		logger:     logger.With().Str("component", "api-client").Logger(),
	}
}

// ClientID returns the session client ID sent with every request.
func (c *Client) ClientID() string {
	return c.clientID
}

// retryCondition determines whether a request should be retried.
// Only idempotent reads are retried, on transport errors or 5xx responses.
// Mutations are never retried.
func retryCondition(resp *resty.Response, err error) bool {
	if resp == nil || resp.Request == nil || resp.Request.Method != http.MethodGet {
		return false
	}

	// Retry on error (timeout, connection failure, etc.)
	if err != nil {
		return true
	}

	// Retry on 5xx server errors
	return resp.StatusCode() >= 500
}

// call describes a single REST request.
type call struct {
	op         string            // Operation name used in logs and errors
	method     string            // HTTP method
	path       string            // Path relative to base URL, may contain {params}
	pathParams map[string]string // Path parameters (escaped by resty)
	query      map[string]string // Query parameters
	body       any               // Request body (optional)
}

// execute performs the request and checks both the HTTP status and the envelope.
func (c *Client) execute(ctx context.Context, cl call, result enveloped) error {
	req := c.httpClient.R().
		SetContext(ctx).
		SetResult(result).
		SetError(result)

	if len(cl.pathParams) > 0 {
		req.SetPathParams(cl.pathParams)
	}
	if len(cl.query) > 0 {
		req.SetQueryParams(cl.query)
	}
	if cl.body != nil {
		req.SetBody(cl.body)
	}

	resp, err := req.Execute(cl.method, cl.path)
	if err != nil {
		c.logger.Error().Err(err).Str("op", cl.op).Msg("request failed")
		return fmt.Errorf("failed to %s: %w", cl.op, err)
	}

	env := result.envelope()
	if !resp.IsSuccess() || !env.Success {
		apiErr := &Error{
			Op:         cl.op,
			StatusCode: resp.StatusCode(),
			Message:    env.reason(),
		}
		if apiErr.Message == "" && !resp.IsSuccess() {
			apiErr.Message = strings.TrimSpace(string(resp.Body()))
		}
		c.logger.Error().
			Str("op", cl.op).
			Int("status_code", resp.StatusCode()).
			Str("api_error", apiErr.Message).
			Msg("API returned failure")
		return apiErr
	}

	return nil
}

// ListAlerts retrieves up to limit alerts from GET /alerts.
func (c *Client) ListAlerts(ctx context.Context, limit int) ([]model.Alert, error) {
	c.logger.Debug().Int("limit", limit).Msg("fetching alerts")

	var result AlertsResponse
	cl := call{op: "list alerts", method: http.MethodGet, path: "/alerts"}
	if limit > 0 {
		cl.query = map[string]string{"limit": strconv.Itoa(limit)}
	}

	if err := c.execute(ctx, cl, &result); err != nil {
		return nil, err
	}

	c.logger.Debug().Int("count", len(result.Alerts)).Msg("fetched alerts successfully")
	return result.Alerts, nil
}

// GetStatistics retrieves server-side alert statistics from GET /alerts/statistics.
func (c *Client) GetStatistics(ctx context.Context) (*model.AlertStatistics, error) {
	var result StatisticsResponse
	cl := call{op: "get alert statistics", method: http.MethodGet, path: "/alerts/statistics"}

	if err := c.execute(ctx, cl, &result); err != nil {
		return nil, err
	}
	return &result.Statistics, nil
}

// ResolveAlert marks one alert resolved via POST /alerts/{id}/resolve.
func (c *Client) ResolveAlert(ctx context.Context, alertID string) error {
	c.logger.Debug().Str("alert_id", alertID).Msg("resolving alert")

	var result Envelope
	cl := call{
		op:         "resolve alert",
		method:     http.MethodPost,
		path:       "/alerts/{id}/resolve",
		pathParams: map[string]string{"id": alertID},
	}

	if err := c.execute(ctx, cl, &result); err != nil {
		return err
	}

	c.logger.Info().Str("alert_id", alertID).Msg("alert resolved")
	return nil
}

// BulkResolve resolves several alerts via POST /alerts/bulk-resolve.
// It returns the number of alerts the server reports as resolved.
func (c *Client) BulkResolve(ctx context.Context, alertIDs []string) (int, error) {
	c.logger.Debug().Int("count", len(alertIDs)).Msg("bulk resolving alerts")

	var result BulkResolveResponse
	cl := call{
		op:     "bulk resolve alerts",
		method: http.MethodPost,
		path:   "/alerts/bulk-resolve",
		body:   BulkResolveRequest{AlertIDs: alertIDs},
	}

	if err := c.execute(ctx, cl, &result); err != nil {
		return 0, err
	}

	c.logger.Info().
		Int("requested", len(alertIDs)).
		Int("resolved", result.ResolvedCount).
		Msg("alerts bulk resolved")
	return result.ResolvedCount, nil
}

// ListPlugins retrieves the plugin listing from GET /plugins.
func (c *Client) ListPlugins(ctx context.Context) ([]model.PluginInfo, error) {
	var result PluginsResponse
	cl := call{op: "list plugins", method: http.MethodGet, path: "/plugins"}

	if err := c.execute(ctx, cl, &result); err != nil {
		return nil, err
	}

	c.logger.Debug().Int("count", len(result.Plugins)).Msg("fetched plugins successfully")
	return result.Plugins, nil
}

// GetPluginMetrics retrieves the latest metrics of every plugin from GET /plugins/metrics.
func (c *Client) GetPluginMetrics(ctx context.Context) (map[string]model.PluginMetricSample, error) {
	var result PluginMetricsResponse
	cl := call{op: "get plugin metrics", method: http.MethodGet, path: "/plugins/metrics"}

	if err := c.execute(ctx, cl, &result); err != nil {
		return nil, err
	}
	if result.Data == nil {
		result.Data = map[string]model.PluginMetricSample{}
	}
	return result.Data, nil
}

// ActivatePlugin starts a plugin via POST /plugins/{id}/activate.
func (c *Client) ActivatePlugin(ctx context.Context, pluginID string) error {
	return c.setPluginState(ctx, pluginID, "activate")
}

// DeactivatePlugin stops a plugin via POST /plugins/{id}/deactivate.
func (c *Client) DeactivatePlugin(ctx context.Context, pluginID string) error {
	return c.setPluginState(ctx, pluginID, "deactivate")
}

func (c *Client) setPluginState(ctx context.Context, pluginID, action string) error {
	var result Envelope
	cl := call{
		op:         action + " plugin",
		method:     http.MethodPost,
		path:       "/plugins/{id}/" + action,
		pathParams: map[string]string{"id": pluginID},
	}

	if err := c.execute(ctx, cl, &result); err != nil {
		return err
	}

	c.logger.Info().Str("plugin_id", pluginID).Str("action", action).Msg("plugin state changed")
	return nil
}

// GetNotificationConfig retrieves the notification preference from GET /notifications/config.
// A response without config yields the defaults.
func (c *Client) GetNotificationConfig(ctx context.Context) (*model.NotificationConfig, error) {
	var result NotificationConfigResponse
	cl := call{op: "get notification config", method: http.MethodGet, path: "/notifications/config"}

	if err := c.execute(ctx, cl, &result); err != nil {
		return nil, err
	}
	if result.Config == nil {
		cfg := model.DefaultNotificationConfig()
		return &cfg, nil
	}
	return result.Config, nil
}
